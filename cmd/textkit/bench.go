package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/samthor/textkit/rope"
	"github.com/spf13/cobra"
	"github.com/taylorza/go-lfsr"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func benchCmd() *cobra.Command {
	var seed uint32

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Compare repeated middle inserts on a string and a rope",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := BenchConfig{
				Rounds: v.GetInt("bench.rounds"),
				Block:  v.GetInt("bench.block"),
				Jitter: v.GetBool("bench.jitter"),
			}
			if conf.Rounds < 1 || conf.Block < 1 {
				return errors.Errorf("rounds and block must be positive, was rounds=%d block=%d", conf.Rounds, conf.Block)
			}

			res, err := runBench(conf, seed)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(),
				"rounds=%d block=%d\nstring: %v\nrope:   %v (height=%d leaves=%d)\n",
				conf.Rounds, conf.Block, res.stringTime, res.ropeTime, res.height, res.leaves)
			return err
		},
	}

	f := cmd.Flags()
	f.Int("rounds", 400, "number of inserts")
	f.Int("block", 10_000, "runes per insert")
	f.Bool("jitter", false, "move each insert a pseudo-random distance from the middle")
	f.Uint32Var(&seed, "seed", 0xace1, "jitter seed, must be non-zero")
	_ = v.BindPFlag("bench.rounds", f.Lookup("rounds"))
	_ = v.BindPFlag("bench.block", f.Lookup("block"))
	_ = v.BindPFlag("bench.jitter", f.Lookup("jitter"))

	return cmd
}

type benchResult struct {
	stringTime time.Duration
	ropeTime   time.Duration
	height     int
	leaves     int
}

// insertPositions returns where each round inserts, so both runs do identical work.
func insertPositions(conf BenchConfig, seed uint32) []int {
	gen := lfsr.NewLfsr32(seed)
	out := make([]int, conf.Rounds)

	length := conf.Block
	for i := range out {
		pos := length / 2
		if conf.Jitter {
			r, _ := gen.Next()
			pos += int(r%uint32(conf.Block)) - conf.Block/2
			pos = min(max(pos, 0), length)
		}
		out[i] = pos
		length += conf.Block
	}
	return out
}

func benchBlock(size int) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz"
	return strings.Repeat(alphabet, size/len(alphabet)+1)[:size]
}

func runBench(conf BenchConfig, seed uint32) (benchResult, error) {
	if seed == 0 {
		return benchResult{}, errors.New("seed must be non-zero")
	}
	block := benchBlock(conf.Block)
	positions := insertPositions(conf, seed)
	progress := rate.Sometimes{Interval: time.Second}

	var res benchResult

	start := time.Now()
	s := block
	for i, pos := range positions {
		s = s[:pos] + block + s[pos:]
		progress.Do(func() {
			logger.Info("bench progress", zap.String("kind", "string"), zap.Int("round", i), zap.Int("len", len(s)))
		})
	}
	res.stringTime = time.Since(start)

	start = time.Now()
	r := rope.New(block)
	for i, pos := range positions {
		if err := r.Insert(pos, block); err != nil {
			return res, errors.Wrapf(err, "round %d", i)
		}
		progress.Do(func() {
			logger.Info("bench progress", zap.String("kind", "rope"), zap.Int("round", i), zap.Int("height", r.Height()))
		})
	}
	res.ropeTime = time.Since(start)
	res.height = r.Height()
	res.leaves = r.LeafCount()

	if r.String() != s {
		return res, errors.New("rope and string disagree after bench")
	}
	logger.Debug("bench done", zap.Duration("string", res.stringTime), zap.Duration("rope", res.ropeTime))
	return res, nil
}

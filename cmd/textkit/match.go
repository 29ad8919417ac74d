package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"github.com/samthor/textkit/ahocorasick"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
)

const stdinName = "-"

type matchResult struct {
	input   string
	found   ahocorasick.Set
	matches []ahocorasick.Match
}

func matchCmd() *cobra.Command {
	var (
		patternsFile string
		positions    bool
	)

	cmd := &cobra.Command{
		Use:   "match [files...]",
		Short: "Report which patterns occur in each input",
		Long:  "Report which patterns occur in each input, reading stdin when no files are given. Results are printed in argument order.",
		RunE: func(cmd *cobra.Command, args []string) error {
			patterns := slices.Clone(v.GetStringSlice("match.patterns"))
			if patternsFile != "" {
				more, err := readPatterns(patternsFile)
				if err != nil {
					return err
				}
				patterns = append(patterns, more...)
			}
			if len(patterns) == 0 {
				return errors.New("no patterns: use --pattern, --patterns-file or match.patterns")
			}

			fold := v.GetBool("match.fold")
			if fold {
				caser := cases.Fold()
				for i, p := range patterns {
					patterns[i] = caser.String(p)
				}
			}

			a := ahocorasick.BuildFrom(patterns)
			logger.Debug("built automaton", zap.Int("patterns", a.Len()), zap.Bool("fold", fold))
			if logger.Core().Enabled(zap.DebugLevel) {
				a.DebugPrint(logger)
			}

			if len(args) == 0 {
				args = []string{stdinName}
			}
			results, err := runMatch(cmd, a, args, fold, positions)
			if err != nil {
				return err
			}
			return writeResults(cmd.OutOrStdout(), results, positions)
		},
	}

	f := cmd.Flags()
	f.StringArrayP("pattern", "p", nil, "pattern to search for, may be repeated")
	f.StringVar(&patternsFile, "patterns-file", "", "file with one pattern per line")
	f.BoolVar(&positions, "positions", false, "print every occurrence with its byte range (in the folded text with --fold)")
	f.Bool("fold", false, "match case-insensitively using Unicode case folding")
	f.Int("workers", 4, "inputs scanned at once")
	_ = v.BindPFlag("match.patterns", f.Lookup("pattern"))
	_ = v.BindPFlag("match.fold", f.Lookup("fold"))
	_ = v.BindPFlag("match.workers", f.Lookup("workers"))

	return cmd
}

// runMatch scans every input concurrently against a built automaton.
func runMatch(cmd *cobra.Command, a *ahocorasick.Automaton, inputs []string, fold, positions bool) ([]matchResult, error) {
	results := make([]matchResult, len(inputs))

	eg, ctx := errgroup.WithContext(cmd.Context())
	eg.SetLimit(max(1, v.GetInt("match.workers")))

	for i, name := range inputs {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			text, err := readInput(cmd.InOrStdin(), name)
			if err != nil {
				return err
			}
			if fold {
				// a Caser is stateful, so each goroutine gets its own
				text = cases.Fold().String(text)
			}

			r := matchResult{input: name}
			if positions {
				r.matches = a.FindAll(text)
			} else {
				r.found = a.Search(text)
			}
			results[i] = r

			logger.Info("scanned input",
				zap.String("input", name),
				zap.Int("bytes", len(text)),
				zap.Int("found", max(len(r.matches), r.found.Len())),
			)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func writeResults(w io.Writer, results []matchResult, positions bool) error {
	bw := bufio.NewWriter(w)
	for _, r := range results {
		if positions {
			for _, m := range r.matches {
				fmt.Fprintf(bw, "%s:%d-%d:%s\n", r.input, m.Start, m.End, m.Pattern)
			}
			continue
		}
		fmt.Fprintf(bw, "%s: %s\n", r.input, strings.Join(r.found.Sorted(), " "))
	}
	return bw.Flush()
}

func readInput(stdin io.Reader, name string) (string, error) {
	var (
		b   []byte
		err error
	)
	if name == stdinName {
		b, err = io.ReadAll(stdin)
	} else {
		b, err = os.ReadFile(name)
	}
	if err != nil {
		return "", errors.Wrapf(err, "read %s", name)
	}
	return string(b), nil
}

// readPatterns reads one pattern per line, skipping blank lines.
func readPatterns(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open patterns file")
	}
	defer f.Close()
	return parsePatterns(f)
}

func parsePatterns(r io.Reader) ([]string, error) {
	var out []string
	s := bufio.NewScanner(r)
	for s.Scan() {
		line := strings.TrimRight(s.Text(), "\r")
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	if err := s.Err(); err != nil {
		return nil, errors.Wrap(err, "read patterns")
	}
	return out, nil
}

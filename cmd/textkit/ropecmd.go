package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/samthor/textkit/rope"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func ropeCmd() *cobra.Command {
	var (
		text     string
		textFile string
		script   string
	)

	cmd := &cobra.Command{
		Use:   "rope",
		Short: "Apply an edit script to a rope",
		Long: `Apply an edit script to a rope, one command per line, read from --script or stdin.

Commands (positions count runes):
  insert POS TEXT
  delete START END
  replace START END TEXT
  set POS TEXT
  every START END STEP
  index POS
  substring START END
  split POS
  rebalance
  build
  print
  len
  height
  debug

TEXT runs to the end of the line. Quote it as a Go string literal to keep
leading or trailing spaces or to use escapes. Lines starting with # are ignored.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := rope.New(text)
			if textFile != "" {
				f, err := os.Open(textFile)
				if err != nil {
					return errors.Wrap(err, "open text file")
				}
				r, err = rope.FromReader(f)
				f.Close()
				if err != nil {
					return err
				}
			}

			in := cmd.InOrStdin()
			if script != "" {
				f, err := os.Open(script)
				if err != nil {
					return errors.Wrap(err, "open script")
				}
				defer f.Close()
				in = f
			}

			s := &session{r: r, out: cmd.OutOrStdout(), log: logger}
			return s.run(in)
		},
	}

	f := cmd.Flags()
	f.StringVar(&text, "text", "", "initial rope contents")
	f.StringVar(&textFile, "file", "", "read initial rope contents from a file")
	f.StringVar(&script, "script", "", "read the edit script from a file instead of stdin")
	cmd.MarkFlagsMutuallyExclusive("text", "file")

	return cmd
}

// session holds a rope being edited by a script.
type session struct {
	r   *rope.Rope
	out io.Writer
	log *zap.Logger
}

func (s *session) run(in io.Reader) error {
	sc := bufio.NewScanner(in)
	sc.Buffer(nil, 1<<20)

	var lineNo int
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		if err := s.exec(line); err != nil {
			return errors.Wrapf(err, "line %d", lineNo)
		}
	}
	return errors.Wrap(sc.Err(), "read script")
}

// exec runs a single script line.
func (s *session) exec(line string) error {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return nil
	}
	name, rest, _ := strings.Cut(trimmed, " ")

	switch name {
	case "insert":
		var pos int
		text, err := scanArgs(rest, &pos)
		if err != nil {
			return err
		}
		return s.apply(name, func() error { return s.r.Insert(pos, text) })

	case "delete":
		var start, end int
		if err := scanInts(rest, &start, &end); err != nil {
			return err
		}
		return s.apply(name, func() error { return s.r.Delete(start, end) })

	case "replace":
		var start, end int
		text, err := scanArgs(rest, &start, &end)
		if err != nil {
			return err
		}
		return s.apply(name, func() error { return s.r.Replace(start, end, text) })

	case "set":
		var pos int
		text, err := scanArgs(rest, &pos)
		if err != nil {
			return err
		}
		return s.apply(name, func() error { return s.r.Set(pos, text) })

	case "every":
		var start, end, step int
		if err := scanInts(rest, &start, &end, &step); err != nil {
			return err
		}
		picked, err := s.r.Every(start, end, step)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(s.out, picked)
		return err

	case "index":
		var pos int
		if err := scanInts(rest, &pos); err != nil {
			return err
		}
		ch, err := s.r.Index(pos)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(s.out, "%q\n", ch)
		return err

	case "substring":
		var start, end int
		if err := scanInts(rest, &start, &end); err != nil {
			return err
		}
		sub, err := s.r.Substring(start, end)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(s.out, sub)
		return err

	case "split":
		var pos int
		if err := scanInts(rest, &pos); err != nil {
			return err
		}
		left, right, err := s.r.Split(pos)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(s.out, "%s|%s\n", left, right)
		return err

	case "rebalance":
		return s.apply(name, func() error { s.r.Rebalance(); return nil })

	case "build":
		return s.apply(name, func() error { s.r.Build(); return nil })

	case "print":
		_, err := fmt.Fprintln(s.out, s.r.String())
		return err

	case "len":
		_, err := fmt.Fprintln(s.out, s.r.Len())
		return err

	case "height":
		_, err := fmt.Fprintln(s.out, s.r.Height())
		return err

	case "debug":
		s.r.DebugPrint(s.log)
		return nil
	}

	return errors.Errorf("unknown command %q", name)
}

func (s *session) apply(name string, fn func() error) error {
	if err := fn(); err != nil {
		return err
	}
	s.log.Debug("rope edit",
		zap.String("op", name),
		zap.Int("len", s.r.Len()),
		zap.Int("height", s.r.Height()),
		zap.Int("leaves", s.r.LeafCount()),
	)
	return nil
}

// scanInts parses exactly len(dst) integers from args.
func scanInts(args string, dst ...*int) error {
	fields := strings.Fields(args)
	if len(fields) != len(dst) {
		return errors.Errorf("expected %d numeric arguments, got %d", len(dst), len(fields))
	}
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return errors.Wrapf(err, "argument %d", i+1)
		}
		*dst[i] = n
	}
	return nil
}

// scanArgs parses len(dst) leading integers and returns the remainder as text.
func scanArgs(args string, dst ...*int) (string, error) {
	rest := args
	for i := range dst {
		rest = strings.TrimLeft(rest, " ")
		var field string
		field, rest, _ = strings.Cut(rest, " ")
		n, err := strconv.Atoi(field)
		if err != nil {
			return "", errors.Wrapf(err, "argument %d", i+1)
		}
		*dst[i] = n
	}

	if strings.HasPrefix(rest, `"`) {
		unquoted, err := strconv.Unquote(strings.TrimRight(rest, " "))
		if err != nil {
			return "", errors.Wrap(err, "bad quoted text")
		}
		return unquoted, nil
	}
	return rest, nil
}

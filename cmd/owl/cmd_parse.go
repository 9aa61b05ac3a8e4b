package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/leofalp/owlgebra/core/signature"
	"github.com/leofalp/owlgebra/internal/utils"
)

const (
	formatJSON = "json"
	formatLean = "lean"
	formatText = "text"
)

// parserFlags are shared by every command that parses a theorem.
type parserFlags struct {
	strict  bool
	binders bool
}

func (f *parserFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.strict, "strict", false, "fail when the declaration has no top-level :=")
	cmd.Flags().BoolVar(&f.binders, "binders", false, "also capture {implicit} and [instance] binders as hypotheses")
}

func (f parserFlags) parser() *signature.Parser {
	var opts []signature.Option
	if f.strict {
		opts = append(opts, signature.WithProofMarkerPolicy(signature.PolicyStrict))
	}
	if f.binders {
		opts = append(opts, signature.WithBinderBrackets())
	}
	return signature.NewParser(opts...)
}

func newParseCmd(a *app) *cobra.Command {
	var (
		parser parserFlags
		format string
		watch  bool
	)

	cmd := &cobra.Command{
		Use:   "parse [file|-]",
		Short: "Extract name, hypotheses and goal from a theorem declaration",
		Example: `  owl parse theorem.lean
  echo 'theorem t (n : ℕ) : n = n := by' | owl parse --format text
  owl parse --watch --format lean theorem.lean`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format, formatJSON, formatLean, formatText); err != nil {
				return err
			}
			path := sourcePath(args)
			p := parser.parser()
			out := cmd.OutOrStdout()

			if watch {
				if path == "-" {
					return errors.New("--watch needs a file argument")
				}
				return watchFile(cmd.Context(), path, func() {
					if err := parseAndPrint(out, cmd.InOrStdin(), path, p, format); err != nil {
						fmt.Fprintln(cmd.ErrOrStderr(), renderError(err))
					}
				})
			}
			return parseAndPrint(out, cmd.InOrStdin(), path, p, format)
		},
	}

	parser.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", formatJSON, "output format: json, lean or text")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-parse whenever the file changes")
	return cmd
}

func parseAndPrint(out io.Writer, stdin io.Reader, path string, parser *signature.Parser, format string) error {
	sig, err := parseSource(stdin, path, parser)
	if err != nil {
		return err
	}

	switch format {
	case formatLean:
		_, err = fmt.Fprintln(out, sig.Source())
	case formatText:
		_, err = fmt.Fprintln(out, renderSignature(sig))
	default:
		_, err = fmt.Fprintln(out, utils.JSONToString(sig, true))
	}
	return err
}

// parseSource reads path ("-" for stdin) and parses it. Errors name the
// file and, for syntax errors, the line.
func parseSource(stdin io.Reader, path string, parser *signature.Parser) (signature.Signature, error) {
	source, err := readSource(stdin, path)
	if err != nil {
		return signature.Signature{}, err
	}
	sig, err := parser.Parse(source)
	if err != nil {
		return signature.Signature{}, fmt.Errorf("%s: %w", displayName(path), err)
	}
	return sig, nil
}

func readSource(stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", displayName(path), err)
	}
	return string(data), nil
}

func sourcePath(args []string) string {
	if len(args) == 0 {
		return "-"
	}
	return args[0]
}

func displayName(path string) string {
	if path == "-" {
		return "<stdin>"
	}
	return path
}

func checkFormat(format string, allowed ...string) error {
	for _, candidate := range allowed {
		if format == candidate {
			return nil
		}
	}
	return fmt.Errorf("unknown format %q (want one of %v)", format, allowed)
}

// watchFile calls onChange once, then again whenever path is written or
// re-created, until ctx is done. The parent directory is watched so editors
// that save by renaming a temporary file are seen too.
func watchFile(ctx context.Context, path string, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer watcher.Close()

	target, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	onChange()
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			slog.Debug("Source changed", "file", path, "op", event.Op.String())
			onChange()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("File watcher error", "error", err)
		case <-ctx.Done():
			return nil
		}
	}
}

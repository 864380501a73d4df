package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/example/playtestshot/internal/dialog"
)

// annotateCmd opens one source, applies scripted commands and optionally
// saves the result as feedback.
type annotateCmd struct {
	*root
	fs *flag.FlagSet

	source  string
	execs   commandList
	output  string
	comment string
	store   string
	save    bool

	stdout io.Writer
}

func (a *annotateCmd) FlagSet() *flag.FlagSet {
	return a.fs
}

func parseAnnotateCmd(args []string, r *root) (*annotateCmd, error) {
	fs := flag.NewFlagSet("annotate", flag.ContinueOnError)
	a := &annotateCmd{root: r, fs: fs, stdout: os.Stdout}
	fs.Usage = usageFunc(a)
	fs.StringVar(&a.source, "source", "", "image source: file path, URL, data URI or clipboard:")
	fs.Var(&a.execs, "e", "annotation command to run (may be specified multiple times)")
	fs.StringVar(&a.output, "output", "", "write the annotated image to this PNG file")
	fs.StringVar(&a.comment, "comment", "", "feedback comment used when saving")
	fs.BoolVar(&a.save, "save", false, "submit the result to the comment store")
	defaultStore := ""
	if r != nil && r.config != nil {
		defaultStore = r.config.Store
	}
	fs.StringVar(&a.store, "store", defaultStore, "comment store: \"memory\" or a SQLite file")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, &UsageError{of: a}
		}
		return nil, err
	}
	if a.source == "" && fs.NArg() > 0 {
		a.source = fs.Arg(0)
	}
	if a.source == "" {
		return nil, &UsageError{of: a}
	}
	return a, nil
}

func (a *annotateCmd) Run() error {
	ctx := context.Background()
	store, err := openStore(a.store)
	if err != nil {
		return err
	}
	defer closeWithLog("store", store)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	shell := dialog.New(a.service(store), a.resolver(true), a.shellOptions(logger)...)
	if err := shell.Open(ctx, a.source); err != nil {
		return fmt.Errorf("failed to open %s: %w", a.source, err)
	}

	ex := &executor{ctx: ctx, shell: shell, out: a.stdout}
	for _, line := range a.execs {
		done, err := ex.executeLine(line)
		if err != nil {
			return fmt.Errorf("%s: %w", line, err)
		}
		if done {
			break
		}
	}
	if !shell.IsOpen() {
		return nil
	}
	if a.output != "" {
		if err := ex.export(a.output); err != nil {
			return err
		}
	}
	if a.save {
		shell.Panel().SetText(a.comment)
		rec, err := shell.Submit(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "saved %s\n", rec.ID)
	}
	return nil
}

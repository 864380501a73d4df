package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/example/playtestshot/internal/dialog"
)

// interactiveCmd reads annotation commands from stdin.
type interactiveCmd struct {
	*root
	fs *flag.FlagSet

	source string
	store  string

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func (i *interactiveCmd) FlagSet() *flag.FlagSet {
	return i.fs
}

func parseInteractiveCmd(args []string, r *root) (*interactiveCmd, error) {
	fs := flag.NewFlagSet("interactive", flag.ContinueOnError)
	i := &interactiveCmd{root: r, fs: fs, stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	fs.Usage = usageFunc(i)
	fs.StringVar(&i.source, "source", "", "image source to open on start")
	defaultStore := ""
	if r != nil && r.config != nil {
		defaultStore = r.config.Store
	}
	fs.StringVar(&i.store, "store", defaultStore, "comment store: \"memory\" or a SQLite file")
	if err := fs.Parse(args); err != nil {
		return nil, &UsageError{of: i}
	}
	return i, nil
}

func (i *interactiveCmd) Run() error {
	ctx := context.Background()
	store, err := openStore(i.store)
	if err != nil {
		return err
	}
	defer closeWithLog("store", store)

	logger := slog.New(slog.NewTextHandler(i.stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	shell := dialog.New(i.service(store), i.resolver(true), i.shellOptions(logger)...)
	ex := &executor{ctx: ctx, shell: shell, out: i.stdout}
	if i.source != "" {
		if _, err := ex.executeLine("open " + i.source); err != nil {
			return err
		}
	}

	fmt.Fprintln(i.stdout, "Enter commands (type 'help' for a list, 'exit' to quit)")
	scanner := bufio.NewScanner(i.stdin)
	for {
		fmt.Fprint(i.stdout, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		done, err := ex.executeLine(line)
		if err != nil {
			fmt.Fprintln(i.stderr, err)
		}
		if done {
			break
		}
	}
	return scanner.Err()
}

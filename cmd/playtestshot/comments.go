package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/example/playtestshot/internal/comments"
)

// commentsCmd lists and exports stored feedback.
type commentsCmd struct {
	*root
	fs *flag.FlagSet

	op     string
	args   []string
	store  string
	limit  int
	asJSON bool

	stdout io.Writer
}

func (c *commentsCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseCommentsCmd(args []string, r *root) (*commentsCmd, error) {
	fs := flag.NewFlagSet("comments", flag.ContinueOnError)
	c := &commentsCmd{root: r, fs: fs, stdout: os.Stdout}
	fs.Usage = usageFunc(c)
	defaultStore := ""
	if r != nil && r.config != nil {
		defaultStore = r.config.Store
	}
	fs.StringVar(&c.store, "store", defaultStore, "comment store: \"memory\" or a SQLite file")
	fs.IntVar(&c.limit, "limit", 20, "maximum records to list (0 for all)")
	fs.BoolVar(&c.asJSON, "json", false, "print records as JSON")
	if err := fs.Parse(args); err != nil {
		return nil, &UsageError{of: c}
	}
	rest := fs.Args()
	c.op = "list"
	if len(rest) > 0 {
		c.op, c.args = strings.ToLower(rest[0]), rest[1:]
	}
	switch {
	case c.op == "list" && len(c.args) == 0:
	case c.op == "show" && len(c.args) == 1:
	case c.op == "export" && len(c.args) == 2:
	default:
		return nil, &UsageError{of: c}
	}
	return c, nil
}

func (c *commentsCmd) Run() error {
	store, err := openStore(c.store)
	if err != nil {
		return err
	}
	defer closeWithLog("store", store)
	ctx := context.Background()

	switch c.op {
	case "show":
		rec, err := store.Get(ctx, c.args[0])
		if err != nil {
			return err
		}
		return c.print([]comments.Record{rec})
	case "export":
		rec, err := store.Get(ctx, c.args[0])
		if err != nil {
			return err
		}
		png, err := comments.ScreenshotPNG(rec)
		if err != nil {
			return err
		}
		if err := os.WriteFile(c.args[1], png, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", c.args[1], err)
		}
		fmt.Fprintf(c.stdout, "wrote %s\n", c.args[1])
		return nil
	}
	records, err := store.List(ctx, c.limit)
	if err != nil {
		return err
	}
	return c.print(records)
}

func (c *commentsCmd) print(records []comments.Record) error {
	if c.asJSON {
		enc := json.NewEncoder(c.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}
	if len(records) == 0 {
		fmt.Fprintln(c.stdout, "no feedback stored")
		return nil
	}
	for _, rec := range records {
		fmt.Fprintf(c.stdout, "%s  %s  %s\n", rec.ID, rec.Timestamp.Local().Format("2006-01-02 15:04:05"), rec.Comment)
	}
	return nil
}

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/example/playtestshot/internal/theme"
)

type colorsCmd struct {
	*root
	fs     *flag.FlagSet
	stdout io.Writer
}

func (c *colorsCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseColorsCmd(args []string, r *root) (*colorsCmd, error) {
	fs := flag.NewFlagSet("colors", flag.ContinueOnError)
	cmd := &colorsCmd{root: r, fs: fs, stdout: os.Stdout}
	fs.Usage = usageFunc(cmd)
	if err := fs.Parse(args); err != nil {
		return nil, &UsageError{of: cmd}
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: cmd}
	}
	return cmd, nil
}

func (c *colorsCmd) Run() error {
	t := c.activeTheme
	if t == nil {
		t = theme.Default()
	}
	if len(t.Swatches) == 0 {
		fmt.Fprintln(c.stdout, "no colors available")
		return nil
	}
	fmt.Fprintf(c.stdout, "%s swatches (* marks the default color, brush %d of %d-%d):\n",
		t.Name, t.DefaultBrush, theme.MinBrush, theme.MaxBrush)
	def := t.DefaultColor
	if def == "" {
		def = t.Swatches[0].Name
	}
	for idx, s := range t.Swatches {
		marker := " "
		if strings.EqualFold(s.Name, def) {
			marker = "*"
		}
		fmt.Fprintln(c.stdout, swatchLine(marker, idx, s))
	}
	return nil
}

// swatchLine renders one palette entry with a terminal color block.
func swatchLine(marker string, idx int, s theme.Swatch) string {
	hex := theme.Hex(s.Color)
	block := fmt.Sprintf("\x1b[48;2;%d;%d;%dm  \x1b[0m", s.Color.R, s.Color.G, s.Color.B)
	return fmt.Sprintf("%s %2d: %-12s %s %s", marker, idx, s.Name, hex, block)
}

package main

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/example/playtestshot/internal/apperr"
	"github.com/example/playtestshot/internal/dialog"
	"github.com/example/playtestshot/internal/tool"
)

const commandHelp = `commands:
  open REF                 load an image source (path, URL, data URI, clipboard:)
  tool draw|text|eraser    select a tool
  brush N                  set the brush size (1-20)
  color NAME|#RRGGBB       set the brush color
  stroke X,Y X,Y ...       draw a freehand stroke through the points
  down X,Y | move X,Y | up raw pointer events
  click X,Y                pointer down and up
  type TEXT                type into the pending text box
  key enter|escape|backspace
  blur                     commit pending text as if focus left
  shortcut KEY             d, t, ctrl+z or ctrl+y
  undo | redo | clear
  comment TEXT             set the feedback comment
  export FILE              write the current image as PNG
  save [COMMENT]           submit the feedback and close
  cancel                   discard the session
  status                   print the toolbar state
  exit | quit`

// commandList collects repeated -e flags.
type commandList []string

func (c *commandList) String() string {
	return strings.Join(*c, ";")
}

func (c *commandList) Set(value string) error {
	*c = append(*c, value)
	return nil
}

// executor applies text commands to one shell.
type executor struct {
	ctx   context.Context
	shell *dialog.Shell
	out   io.Writer
}

func splitCommand(line string) (name, rest string) {
	line = strings.TrimSpace(line)
	name, rest, _ = strings.Cut(line, " ")
	return strings.ToLower(name), strings.TrimSpace(rest)
}

func parsePoint(s string) (image.Point, error) {
	xs, ys, ok := strings.Cut(strings.TrimSpace(s), ",")
	if !ok {
		return image.Point{}, fmt.Errorf("%w: point %q, want X,Y", apperr.ErrInvalidInput, s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return image.Point{}, fmt.Errorf("%w: point %q: %v", apperr.ErrInvalidInput, s, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return image.Point{}, fmt.Errorf("%w: point %q: %v", apperr.ErrInvalidInput, s, err)
	}
	return image.Pt(x, y), nil
}

func parsePoints(args string) ([]image.Point, error) {
	fields := strings.Fields(args)
	pts := make([]image.Point, 0, len(fields))
	for _, f := range fields {
		pt, err := parsePoint(f)
		if err != nil {
			return nil, err
		}
		pts = append(pts, pt)
	}
	return pts, nil
}

func parseShortcut(s string) (rune, bool, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	key, ctrl := strings.CutPrefix(s, "ctrl+")
	if utf8.RuneCountInString(key) != 1 {
		return 0, false, fmt.Errorf("%w: shortcut %q", apperr.ErrInvalidInput, s)
	}
	r, _ := utf8.DecodeRuneInString(key)
	return r, ctrl, nil
}

func (e *executor) controller() (*tool.Controller, error) {
	c := e.shell.Controller()
	if c == nil {
		return nil, apperr.ErrUninitialized
	}
	return c, nil
}

// executeLine runs one command. done reports a request to stop.
func (e *executor) executeLine(line string) (done bool, err error) {
	if strings.HasPrefix(strings.TrimSpace(line), "#") {
		return false, nil
	}
	name, rest := splitCommand(line)
	switch name {
	case "":
		return false, nil
	case "exit", "quit":
		return true, nil
	case "help":
		fmt.Fprintln(e.out, commandHelp)
		return false, nil
	case "open":
		if rest == "" {
			return false, fmt.Errorf("%w: open needs a source", apperr.ErrInvalidInput)
		}
		if e.shell.IsOpen() {
			if err := e.shell.Cancel(); err != nil {
				return false, err
			}
		}
		if err := e.shell.Open(e.ctx, rest); err != nil {
			return false, err
		}
		return false, e.status()
	case "status":
		return false, e.status()
	case "undo":
		return false, e.shell.Undo()
	case "redo":
		return false, e.shell.Redo()
	case "clear":
		return false, e.shell.Clear()
	case "comment":
		e.shell.Panel().SetText(rest)
		return false, nil
	case "export":
		return false, e.export(rest)
	case "save":
		if rest != "" {
			e.shell.Panel().SetText(rest)
		}
		rec, err := e.shell.Submit(e.ctx)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(e.out, "saved %s\n", rec.ID)
		return false, nil
	case "cancel":
		return false, e.shell.Cancel()
	}

	c, err := e.controller()
	if err != nil {
		return false, fmt.Errorf("%s: %w", name, err)
	}
	switch name {
	case "tool":
		k, err := tool.ParseKind(rest)
		if err != nil {
			return false, err
		}
		return false, c.Select(k)
	case "brush":
		n, err := strconv.Atoi(rest)
		if err != nil {
			return false, fmt.Errorf("%w: brush %q", apperr.ErrInvalidInput, rest)
		}
		c.SetBrushSize(n)
		return false, nil
	case "color":
		return false, c.SetColorName(rest)
	case "stroke":
		pts, err := parsePoints(rest)
		if err != nil {
			return false, err
		}
		if len(pts) == 0 {
			return false, fmt.Errorf("%w: stroke needs points", apperr.ErrInvalidInput)
		}
		if err := c.PointerDown(pts[0]); err != nil {
			return false, err
		}
		for _, pt := range pts[1:] {
			if err := c.PointerMove(pt); err != nil {
				return false, err
			}
		}
		return false, c.PointerUp()
	case "down", "move", "click":
		pt, err := parsePoint(rest)
		if err != nil {
			return false, err
		}
		if name == "move" {
			return false, c.PointerMove(pt)
		}
		if err := c.PointerDown(pt); err != nil {
			return false, err
		}
		if name == "click" {
			return false, c.PointerUp()
		}
		return false, nil
	case "up":
		return false, c.PointerUp()
	case "type":
		c.Type(rest)
		return false, nil
	case "key":
		k, err := tool.ParseKey(rest)
		if err != nil {
			return false, err
		}
		return false, c.Key(k)
	case "blur":
		return false, c.Blur()
	case "shortcut":
		r, ctrl, err := parseShortcut(rest)
		if err != nil {
			return false, err
		}
		ok, err := c.Shortcut(r, ctrl)
		if err == nil && !ok {
			err = fmt.Errorf("%w: %q is not a shortcut", apperr.ErrInvalidInput, rest)
		}
		return false, err
	}
	return false, fmt.Errorf("%w: unknown command %q", apperr.ErrInvalidInput, name)
}

func (e *executor) export(path string) error {
	if path == "" {
		return fmt.Errorf("%w: export needs a file", apperr.ErrInvalidInput)
	}
	art, err := e.shell.Export()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, art.PNG, 0o644); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	fmt.Fprintf(e.out, "wrote %s\n", path)
	return nil
}

func (e *executor) status() error {
	tb := e.shell.Toolbar()
	if !tb.Open {
		fmt.Fprintln(e.out, "closed")
		return nil
	}
	fmt.Fprintf(e.out, "%dx%d scale=%.3f tool=%s brush=%d color=%s undo=%v redo=%v\n",
		tb.Width, tb.Height, tb.Scale, tb.Tool, tb.BrushSize, tb.Color, tb.CanUndo, tb.CanRedo)
	if tb.TextActive && tb.TextPos != nil {
		fmt.Fprintf(e.out, "text at %d,%d: %q\n", tb.TextPos.X, tb.TextPos.Y, tb.Text)
	}
	return nil
}

// Package tool tracks the active annotation tool and brush, and turns
// pointer and keyboard input into raster surface calls.
package tool

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/example/playtestshot/internal/apperr"
	"github.com/example/playtestshot/internal/render"
	"github.com/example/playtestshot/internal/surface"
	"github.com/example/playtestshot/internal/theme"
)

// Kind identifies an annotation tool.
type Kind int

const (
	Draw Kind = iota
	Text
	// Eraser is defined but stays disabled unless WithEraser is set.
	Eraser
	kindCount
)

var kindNames = [kindCount]string{Draw: "draw", Text: "text", Eraser: "eraser"}

// String returns the tool name.
func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind maps a tool name to its Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown tool %q", apperr.ErrInvalidInput, s)
}

// Key is a non-printing key relevant to text entry.
type Key int

const (
	KeyEnter Key = iota + 1
	KeyEscape
	KeyBackspace
)

// ParseKey maps a key name such as "Enter" to a Key.
func ParseKey(s string) (Key, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "enter", "return":
		return KeyEnter, nil
	case "escape", "esc":
		return KeyEscape, nil
	case "backspace":
		return KeyBackspace, nil
	}
	return 0, fmt.Errorf("%w: unknown key %q", apperr.ErrInvalidInput, s)
}

// Target is the subset of the raster surface the controller drives.
type Target interface {
	BeginStroke(pt image.Point, b surface.Brush) error
	ExtendStroke(pt image.Point) error
	EndStroke() error
	CancelStroke() bool
	CommitText(pt image.Point, text string, col color.Color, size float64) error
	Undo() error
	Redo() error
}

var _ Target = (*surface.Surface)(nil)

// handler implements one tool. Every Kind has exactly one handler in the
// handlers table.
type handler interface {
	down(c *Controller, pt image.Point) error
	move(c *Controller, pt image.Point) error
	up(c *Controller) error
	// leave runs when another tool is selected.
	leave(c *Controller)
}

var handlers = [kindCount]handler{
	Draw:   strokeHandler{mode: render.SourceOver},
	Text:   textHandler{},
	Eraser: strokeHandler{mode: render.DestinationOut},
}

// Option configures a Controller.
type Option func(*Controller)

// WithPalette sets the swatch set and the initial brush.
func WithPalette(t *theme.Theme) Option {
	return func(c *Controller) {
		if t == nil {
			return
		}
		c.palette = t
		c.color, c.size = t.Initial()
	}
}

// WithEraser enables the reserved eraser tool.
func WithEraser(enabled bool) Option {
	return func(c *Controller) {
		c.eraser = enabled
	}
}

// Controller holds the tool selection for one session. It is not safe for
// concurrent use.
type Controller struct {
	target  Target
	palette *theme.Theme
	eraser  bool

	kind  Kind
	size  int
	color color.Color

	text Placement
}

// NewController returns a Controller on the draw tool with the palette
// defaults.
func NewController(target Target, opts ...Option) *Controller {
	c := &Controller{target: target, palette: theme.Default()}
	c.color, c.size = c.palette.Initial()
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Kind returns the active tool.
func (c *Controller) Kind() Kind { return c.kind }

// BrushSize returns the brush size.
func (c *Controller) BrushSize() int { return c.size }

// Color returns the brush color.
func (c *Controller) Color() color.Color { return c.color }

// Palette returns the swatch set in use.
func (c *Controller) Palette() *theme.Theme { return c.palette }

// Pending returns the text entry state.
func (c *Controller) Pending() Placement { return c.text }

// TextSize is the font size used for text stamps at the current brush.
func (c *Controller) TextSize() float64 { return float64(c.size + 12) }

// Select switches tools. Leaving draw cancels the stroke in progress and
// leaving text discards pending input; neither commits.
func (c *Controller) Select(k Kind) error {
	if k < 0 || k >= kindCount {
		return fmt.Errorf("%w: tool %d", apperr.ErrInvalidInput, int(k))
	}
	if k == Eraser && !c.eraser {
		return fmt.Errorf("select %s: %w", k, apperr.ErrToolReserved)
	}
	if k == c.kind {
		return nil
	}
	handlers[c.kind].leave(c)
	c.kind = k
	return nil
}

// SetBrushSize sets the brush size, clamped to the supported range.
func (c *Controller) SetBrushSize(n int) int {
	c.size = theme.ClampBrush(n)
	return c.size
}

// SetColor sets the brush color. It persists across tool switches.
func (c *Controller) SetColor(col color.Color) {
	if col != nil {
		c.color = col
	}
}

// SetColorName resolves a swatch name, a CSS color name or a hex value.
func (c *Controller) SetColorName(name string) error {
	col, err := ParseColor(c.palette, name)
	if err != nil {
		return err
	}
	c.color = col
	return nil
}

// ParseColor resolves s against the palette, then CSS color names, then hex.
func ParseColor(palette *theme.Theme, s string) (color.RGBA, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return color.RGBA{}, fmt.Errorf("%w: color cannot be empty", apperr.ErrInvalidInput)
	}
	if col, ok := palette.Lookup(name); ok {
		return col, nil
	}
	if col, ok := colornames.Map[name]; ok {
		return col, nil
	}
	col, err := theme.ParseHex(name)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: color %q: %v", apperr.ErrInvalidInput, s, err)
	}
	return col, nil
}

// PointerDown dispatches a press to the active tool.
func (c *Controller) PointerDown(pt image.Point) error { return handlers[c.kind].down(c, pt) }

// PointerMove dispatches a drag to the active tool.
func (c *Controller) PointerMove(pt image.Point) error { return handlers[c.kind].move(c, pt) }

// PointerUp dispatches a release to the active tool.
func (c *Controller) PointerUp() error { return handlers[c.kind].up(c) }

// Type appends s to the pending text, if any.
func (c *Controller) Type(s string) {
	c.text.Type(s)
}

// Key handles Enter, Escape and Backspace during text entry.
func (c *Controller) Key(k Key) error {
	switch k {
	case KeyEnter:
		return c.commitText()
	case KeyEscape:
		c.text.Cancel()
	case KeyBackspace:
		c.text.Backspace()
	}
	return nil
}

// Blur commits pending text as if focus left the input.
func (c *Controller) Blur() error { return c.commitText() }

// Shortcut applies a keyboard shortcut: d and t pick tools, ctrl+z undoes
// and ctrl+y redoes. Plain letters are ignored while text is being typed.
// It reports whether the key was a shortcut.
func (c *Controller) Shortcut(r rune, ctrl bool) (bool, error) {
	if !ctrl && c.text.Active() {
		return false, nil
	}
	switch {
	case ctrl && (r == 'z' || r == 'Z'):
		return true, c.target.Undo()
	case ctrl && (r == 'y' || r == 'Y'):
		return true, c.target.Redo()
	case !ctrl && (r == 'd' || r == 'D'):
		return true, c.Select(Draw)
	case !ctrl && (r == 't' || r == 'T'):
		return true, c.Select(Text)
	}
	return false, nil
}

func (c *Controller) commitText() error {
	pos, text, ok := c.text.Take()
	if !ok {
		return nil
	}
	return c.target.CommitText(pos, text, c.color, c.TextSize())
}

type strokeHandler struct {
	mode render.Mode
}

func (h strokeHandler) down(c *Controller, pt image.Point) error {
	return c.target.BeginStroke(pt, surface.Brush{Width: c.size, Color: c.color, Mode: h.mode})
}

func (h strokeHandler) move(c *Controller, pt image.Point) error {
	return c.target.ExtendStroke(pt)
}

func (h strokeHandler) up(c *Controller) error {
	return c.target.EndStroke()
}

func (h strokeHandler) leave(c *Controller) {
	c.target.CancelStroke()
}

type textHandler struct{}

func (textHandler) down(c *Controller, pt image.Point) error {
	c.text.Begin(pt)
	return nil
}

func (textHandler) move(*Controller, image.Point) error { return nil }

func (textHandler) up(*Controller) error { return nil }

func (textHandler) leave(c *Controller) {
	c.text.Cancel()
}

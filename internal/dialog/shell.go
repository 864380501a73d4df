// Package dialog orchestrates one annotation session: it opens the raster
// surface on a source image, gates toolbar actions on history state and
// hands the finished artifact to the host on save.
package dialog

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/example/playtestshot/internal/apperr"
	"github.com/example/playtestshot/internal/comments"
	"github.com/example/playtestshot/internal/render"
	"github.com/example/playtestshot/internal/surface"
	"github.com/example/playtestshot/internal/theme"
	"github.com/example/playtestshot/internal/tool"
)

// Host receives the exported screenshot and comment.
type Host interface {
	SaveFeedback(ctx context.Context, art surface.Artifact, comment string) (comments.Record, error)
}

var _ Host = (*comments.Service)(nil)

// Toolbar is the enable/disable state of the shell controls.
type Toolbar struct {
	Open       bool         `json:"open"`
	Tool       string       `json:"tool"`
	BrushSize  int          `json:"brush_size"`
	Color      string       `json:"color"`
	CanUndo    bool         `json:"can_undo"`
	CanRedo    bool         `json:"can_redo"`
	CanClear   bool         `json:"can_clear"`
	Saving     bool         `json:"saving"`
	Width      int          `json:"width"`
	Height     int          `json:"height"`
	Scale      float64      `json:"scale"`
	TextActive bool         `json:"text_active"`
	TextPos    *image.Point `json:"text_pos,omitempty"`
	Text       string       `json:"text,omitempty"`
}

// Option configures a Shell.
type Option func(*Shell)

// WithBounds sets the maximum canvas size.
func WithBounds(w, h int) Option {
	return func(s *Shell) {
		s.maxW, s.maxH = w, h
	}
}

// WithPalette sets the toolbar swatches and brush defaults.
func WithPalette(t *theme.Theme) Option {
	return func(s *Shell) {
		s.palette = t
	}
}

// WithEraser enables the reserved eraser tool.
func WithEraser(enabled bool) Option {
	return func(s *Shell) {
		s.eraser = enabled
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Shell) {
		s.log = l
	}
}

// WithObserver is called with the toolbar state whenever history changes
// and when the shell closes.
func WithObserver(fn func(Toolbar)) Option {
	return func(s *Shell) {
		s.observer = fn
	}
}

// Shell owns the surface and tool controller of one session. It is not safe
// for concurrent use, apart from its Panel.
type Shell struct {
	host     Host
	resolver surface.Resolver
	maxW     int
	maxH     int
	palette  *theme.Theme
	eraser   bool
	log      *slog.Logger
	observer func(Toolbar)

	surface    *surface.Surface
	controller *tool.Controller
	canUndo    bool
	canRedo    bool

	panel Panel
}

// New creates a closed Shell.
func New(host Host, resolver surface.Resolver, opts ...Option) *Shell {
	s := &Shell{
		host:     host,
		resolver: resolver,
		maxW:     render.DefaultMaxWidth,
		maxH:     render.DefaultMaxHeight,
		palette:  theme.Default(),
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open loads ref into a fresh surface. If loading fails the shell stays
// closed and the error wraps apperr.ErrLoadFailure.
func (s *Shell) Open(ctx context.Context, ref string) error {
	surf := surface.New(
		surface.WithBounds(s.maxW, s.maxH),
		surface.WithObserver(surface.ObserverFunc(s.historyChanged)),
	)
	if err := surf.Initialize(ctx, s.resolver, ref); err != nil {
		s.log.Warn("open failed", slog.String("error", err.Error()))
		return fmt.Errorf("open: %w", err)
	}
	s.surface = surf
	s.controller = tool.NewController(surf, tool.WithPalette(s.palette), tool.WithEraser(s.eraser))
	s.canUndo, s.canRedo = surf.CanUndo(), surf.CanRedo()
	size := surf.Size()
	s.log.Debug("session opened", slog.Int("width", size.X), slog.Int("height", size.Y), slog.Float64("scale", surf.Scale()))
	s.emit()
	return nil
}

// IsOpen reports whether a surface is loaded.
func (s *Shell) IsOpen() bool { return s.surface != nil }

// Controller returns the tool controller, or nil while closed.
func (s *Shell) Controller() *tool.Controller { return s.controller }

// Surface returns the raster surface, or nil while closed.
func (s *Shell) Surface() *surface.Surface { return s.surface }

// Panel returns the comment panel.
func (s *Shell) Panel() *Panel { return &s.panel }

// Toolbar reports the current control state. A closed shell reports the
// zero Toolbar.
func (s *Shell) Toolbar() Toolbar {
	if s.surface == nil {
		return Toolbar{}
	}
	tb := Toolbar{Open: true, Saving: s.panel.Saving()}
	size := s.surface.Size()
	c := s.controller
	tb.Tool = c.Kind().String()
	tb.BrushSize = c.BrushSize()
	tb.Color = theme.Hex(c.Color())
	tb.CanUndo = s.canUndo && !tb.Saving
	tb.CanRedo = s.canRedo && !tb.Saving
	tb.CanClear = s.canUndo && !tb.Saving
	tb.Width, tb.Height = size.X, size.Y
	tb.Scale = s.surface.Scale()
	if p := c.Pending(); p.Active() {
		pos := p.Pos()
		tb.TextActive, tb.TextPos, tb.Text = true, &pos, p.Text()
	}
	return tb
}

// Undo steps back when the undo control is enabled.
func (s *Shell) Undo() error {
	if s.surface == nil {
		return apperr.ErrUninitialized
	}
	if !s.canUndo {
		return nil
	}
	return s.surface.Undo()
}

// Redo steps forward when the redo control is enabled.
func (s *Shell) Redo() error {
	if s.surface == nil {
		return apperr.ErrUninitialized
	}
	if !s.canRedo {
		return nil
	}
	return s.surface.Redo()
}

// Clear returns to the first retained snapshot when there is anything to
// clear.
func (s *Shell) Clear() error {
	if s.surface == nil {
		return apperr.ErrUninitialized
	}
	if !s.canUndo {
		return nil
	}
	return s.surface.ClearToOriginal()
}

// Export encodes the current buffer without closing the session.
func (s *Shell) Export() (surface.Artifact, error) {
	if s.surface == nil {
		return surface.Artifact{}, apperr.ErrUninitialized
	}
	return s.surface.ExportCurrent()
}

// Save commits pending text, exports the buffer and hands it to the host
// with comment. The session is closed and its state discarded whatever the
// host returns.
func (s *Shell) Save(ctx context.Context, comment string) (comments.Record, error) {
	if s.surface == nil {
		return comments.Record{}, fmt.Errorf("save: %w", apperr.ErrUninitialized)
	}
	// leaving the text field commits it
	if err := s.controller.Blur(); err != nil {
		s.log.Warn("commit pending text", slog.String("error", err.Error()))
	}
	art, err := s.surface.ExportCurrent()
	if err != nil {
		return comments.Record{}, fmt.Errorf("save: %w", err)
	}
	defer s.close()
	rec, err := s.host.SaveFeedback(ctx, art, comment)
	if err != nil {
		s.log.Error("host save failed", slog.String("error", err.Error()))
		return comments.Record{}, fmt.Errorf("save: %w", err)
	}
	s.log.Info("feedback saved", slog.String("id", rec.ID))
	return rec, nil
}

// Cancel discards the session without exporting. It is refused while a
// save is in flight.
func (s *Shell) Cancel() error {
	if s.panel.Saving() {
		return apperr.ErrSaveInFlight
	}
	s.close()
	return nil
}

func (s *Shell) close() {
	if s.surface == nil {
		return
	}
	s.surface, s.controller = nil, nil
	s.canUndo, s.canRedo = false, false
	s.panel.SetText("")
	s.emit()
}

func (s *Shell) historyChanged(canUndo, canRedo bool) {
	s.canUndo, s.canRedo = canUndo, canRedo
	if s.controller != nil {
		s.emit()
	}
}

func (s *Shell) emit() {
	if s.observer != nil {
		s.observer(s.Toolbar())
	}
}

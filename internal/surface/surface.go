// Package surface implements the raster editing surface: the live pixel
// buffer of one annotation session together with its undo history.
package surface

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"

	"github.com/example/playtestshot/internal/apperr"
	"github.com/example/playtestshot/internal/history"
	"github.com/example/playtestshot/internal/render"
)

// Resolver turns a source reference into a decoded image.
type Resolver interface {
	Resolve(ctx context.Context, ref string) (image.Image, error)
}

// Observer is told whether undo and redo are currently possible.
type Observer interface {
	HistoryChanged(canUndo, canRedo bool)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(canUndo, canRedo bool)

// HistoryChanged calls f.
func (f ObserverFunc) HistoryChanged(canUndo, canRedo bool) { f(canUndo, canRedo) }

// Brush describes how a stroke is painted.
type Brush struct {
	Width int
	Color color.Color
	Mode  render.Mode
}

// Artifact is the PNG encoding of an exported buffer.
type Artifact struct {
	PNG []byte
}

// MIMEType of every artifact.
const MIMEType = "image/png"

// DataURI returns the artifact as an embeddable data URI.
func (a Artifact) DataURI() string {
	return "data:" + MIMEType + ";base64," + base64.StdEncoding.EncodeToString(a.PNG)
}

// Decode parses the artifact back into an image.
func (a Artifact) Decode() (image.Image, error) {
	return png.Decode(bytes.NewReader(a.PNG))
}

// Option configures a Surface.
type Option func(*Surface)

// WithBounds sets the maximum logical canvas size.
func WithBounds(w, h int) Option {
	return func(s *Surface) {
		s.maxW, s.maxH = w, h
	}
}

// WithCapacity sets the history cap.
func WithCapacity(n int) Option {
	return func(s *Surface) {
		s.capacity = n
	}
}

// WithObserver registers the toolbar observer.
func WithObserver(o Observer) Option {
	return func(s *Surface) {
		s.observer = o
	}
}

// Surface owns the live buffer and the history for a single session.
// It is not safe for concurrent use.
type Surface struct {
	maxW, maxH int
	capacity   int
	observer   Observer

	buf     *image.RGBA
	scale   float64
	history *history.History

	stroking bool
	brush    Brush
	last     image.Point
}

// New creates an uninitialized Surface.
func New(opts ...Option) *Surface {
	s := &Surface{
		maxW:     render.DefaultMaxWidth,
		maxH:     render.DefaultMaxHeight,
		capacity: history.DefaultCapacity,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize resolves and decodes ref, scales it to fit and seeds the
// history. On failure the surface keeps whatever state it had before.
func (s *Surface) Initialize(ctx context.Context, r Resolver, ref string) error {
	if r == nil {
		return fmt.Errorf("initialize: %w: no resolver", apperr.ErrLoadFailure)
	}
	src, err := r.Resolve(ctx, ref)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	s.Load(src)
	return nil
}

// Load scales an already decoded image into the surface and seeds the
// history with it.
func (s *Surface) Load(src image.Image) {
	buf, scale := render.ScaleToFit(src, s.maxW, s.maxH)
	h := history.New(s.capacity)
	h.Reset(buf)
	s.buf, s.scale, s.history = buf, scale, h
	s.stroking = false
	s.notify()
}

// Initialized reports whether a source has been loaded.
func (s *Surface) Initialized() bool { return s.buf != nil }

// BeginStroke starts a freehand stroke at pt and paints its first dab.
func (s *Surface) BeginStroke(pt image.Point, b Brush) error {
	if !s.Initialized() {
		return apperr.ErrUninitialized
	}
	if b.Width < 1 {
		b.Width = 1
	}
	if b.Color == nil {
		b.Color = color.Black
	}
	s.stroking, s.brush, s.last = true, b, pt
	render.Segment(s.buf, pt, pt, float64(b.Width), b.Color, b.Mode)
	return nil
}

// ExtendStroke paints a segment from the previous point to pt.
func (s *Surface) ExtendStroke(pt image.Point) error {
	if !s.Initialized() {
		return apperr.ErrUninitialized
	}
	if !s.stroking {
		return nil
	}
	render.Segment(s.buf, s.last, pt, float64(s.brush.Width), s.brush.Color, s.brush.Mode)
	s.last = pt
	return nil
}

// EndStroke commits the stroke in progress. It is a no-op when no stroke
// was begun.
func (s *Surface) EndStroke() error {
	if !s.Initialized() {
		return apperr.ErrUninitialized
	}
	if !s.stroking {
		return nil
	}
	s.stroking = false
	s.commit()
	return nil
}

// CancelStroke abandons the stroke in progress and restores the buffer to
// the current snapshot. It reports whether a stroke was discarded.
func (s *Surface) CancelStroke() bool {
	if !s.Initialized() || !s.stroking {
		return false
	}
	s.stroking = false
	if cur, ok := s.history.Current(); ok {
		cur.RestoreInto(s.buf)
	}
	return true
}

// Stroking reports whether a stroke is in progress.
func (s *Surface) Stroking() bool { return s.stroking }

// CommitText stamps text with its baseline at pt and commits the result.
// Blank text is a no-op.
func (s *Surface) CommitText(pt image.Point, text string, col color.Color, size float64) error {
	if !s.Initialized() {
		return apperr.ErrUninitialized
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if col == nil {
		col = color.Black
	}
	if err := render.DrawText(s.buf, pt, text, col, size); err != nil {
		if cur, ok := s.history.Current(); ok {
			cur.RestoreInto(s.buf)
		}
		return fmt.Errorf("stamp text: %w", err)
	}
	s.commit()
	return nil
}

// Undo restores the previous snapshot. It is a no-op at the first one.
func (s *Surface) Undo() error {
	if !s.Initialized() {
		return apperr.ErrUninitialized
	}
	s.CancelStroke()
	if snap, ok := s.history.Undo(); ok {
		snap.RestoreInto(s.buf)
	}
	s.notify()
	return nil
}

// Redo restores the next snapshot. It is a no-op at the last one.
func (s *Surface) Redo() error {
	if !s.Initialized() {
		return apperr.ErrUninitialized
	}
	s.CancelStroke()
	if snap, ok := s.history.Redo(); ok {
		snap.RestoreInto(s.buf)
	}
	s.notify()
	return nil
}

// ClearToOriginal drops every snapshot but index 0 and restores it. Once
// the original has been evicted this is the oldest retained snapshot.
func (s *Surface) ClearToOriginal() error {
	if !s.Initialized() {
		return apperr.ErrUninitialized
	}
	s.CancelStroke()
	if snap, ok := s.history.ClearToFirst(); ok {
		snap.RestoreInto(s.buf)
	}
	s.notify()
	return nil
}

// ExportCurrent encodes the live buffer as PNG. History is untouched.
func (s *Surface) ExportCurrent() (Artifact, error) {
	if !s.Initialized() {
		return Artifact{}, apperr.ErrUninitialized
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, s.buf); err != nil {
		return Artifact{}, fmt.Errorf("encode png: %w", err)
	}
	return Artifact{PNG: buf.Bytes()}, nil
}

// Frame returns a copy of the live buffer.
func (s *Surface) Frame() *image.RGBA { return render.Clone(s.buf) }

// Snapshot returns the snapshot at history index i.
func (s *Surface) Snapshot(i int) (history.Snapshot, bool) {
	if !s.Initialized() {
		return history.Snapshot{}, false
	}
	return s.history.At(i)
}

// Size returns the logical canvas size.
func (s *Surface) Size() image.Point {
	if s.buf == nil {
		return image.Point{}
	}
	return s.buf.Bounds().Size()
}

// Scale returns the factor the source was scaled by.
func (s *Surface) Scale() float64 { return s.scale }

// HistoryLen returns the number of retained snapshots.
func (s *Surface) HistoryLen() int {
	if s.history == nil {
		return 0
	}
	return s.history.Len()
}

// Cursor returns the current history index.
func (s *Surface) Cursor() int {
	if s.history == nil {
		return 0
	}
	return s.history.Cursor()
}

// CanUndo reports whether Undo would change the buffer.
func (s *Surface) CanUndo() bool { return s.history != nil && s.history.CanUndo() }

// CanRedo reports whether Redo would change the buffer.
func (s *Surface) CanRedo() bool { return s.history != nil && s.history.CanRedo() }

func (s *Surface) commit() {
	s.history.Commit(s.buf)
	s.notify()
}

func (s *Surface) notify() {
	if s.observer != nil {
		s.observer.HistoryChanged(s.CanUndo(), s.CanRedo())
	}
}

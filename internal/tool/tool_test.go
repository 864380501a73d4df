package tool

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/example/playtestshot/internal/apperr"
	"github.com/example/playtestshot/internal/surface"
	"github.com/example/playtestshot/internal/theme"
)

type imageResolver struct{ img image.Image }

func (r imageResolver) Resolve(context.Context, string) (image.Image, error) { return r.img, nil }

func newSurface(t *testing.T) *surface.Surface {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 300, 200))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	s := surface.New()
	if err := s.Initialize(context.Background(), imageResolver{img}, "white"); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return s
}

func samePixels(a, b *image.RGBA) bool { return string(a.Pix) == string(b.Pix) }

func TestDrawGestureCommitsOnce(t *testing.T) {
	s := newSurface(t)
	c := NewController(s)
	if c.Kind() != Draw || c.BrushSize() != 4 {
		t.Fatalf("defaults: kind=%v size=%d", c.Kind(), c.BrushSize())
	}
	c.PointerDown(image.Pt(10, 10))
	c.PointerMove(image.Pt(40, 20))
	c.PointerMove(image.Pt(80, 60))
	if s.HistoryLen() != 1 {
		t.Fatal("moves must not commit")
	}
	if err := c.PointerUp(); err != nil {
		t.Fatalf("PointerUp: %v", err)
	}
	if s.HistoryLen() != 2 {
		t.Fatalf("history len = %d, want 2", s.HistoryLen())
	}
}

func TestScenarioETextCancel(t *testing.T) {
	s := newSurface(t)
	c := NewController(s)
	before := s.Frame()
	if err := c.Select(Text); err != nil {
		t.Fatal(err)
	}
	c.PointerDown(image.Pt(50, 50))
	c.Type("Bug here")
	if p := c.Pending(); !p.Active() || p.Text() != "Bug here" || p.Pos() != image.Pt(50, 50) {
		t.Fatalf("pending = %+v", p)
	}
	if err := c.Key(KeyEscape); err != nil {
		t.Fatal(err)
	}
	if c.Pending().Active() {
		t.Fatal("pending input should be cleared")
	}
	if !samePixels(before, s.Frame()) || s.HistoryLen() != 1 {
		t.Fatal("cancel must not stamp text")
	}
}

func TestTextCommitOnEnterAndBlur(t *testing.T) {
	for _, commit := range []struct {
		name string
		fn   func(*Controller) error
	}{
		{"enter", func(c *Controller) error { return c.Key(KeyEnter) }},
		{"blur", (*Controller).Blur},
	} {
		t.Run(commit.name, func(t *testing.T) {
			s := newSurface(t)
			c := NewController(s)
			c.Select(Text)
			c.PointerDown(image.Pt(20, 40))
			c.Type("Crash")
			if err := commit.fn(c); err != nil {
				t.Fatal(err)
			}
			if s.HistoryLen() != 2 {
				t.Fatalf("history len = %d, want 2", s.HistoryLen())
			}
			if c.Pending().Active() {
				t.Fatal("pending input should be idle after commit")
			}
		})
	}
}

func TestEmptyTextCommitIsNoop(t *testing.T) {
	s := newSurface(t)
	c := NewController(s)
	c.Select(Text)
	c.PointerDown(image.Pt(20, 40))
	if err := c.Key(KeyEnter); err != nil {
		t.Fatal(err)
	}
	if s.HistoryLen() != 1 {
		t.Fatal("empty text must not commit")
	}
}

func TestReclickReseedsAndClearsText(t *testing.T) {
	c := NewController(newSurface(t))
	c.Select(Text)
	c.PointerDown(image.Pt(10, 10))
	c.Type("first")
	c.PointerDown(image.Pt(90, 70))
	p := c.Pending()
	if !p.Active() || p.Pos() != image.Pt(90, 70) || p.Text() != "" {
		t.Fatalf("pending after re-click = %+v", p)
	}
}

func TestBackspace(t *testing.T) {
	c := NewController(newSurface(t))
	c.Select(Text)
	c.PointerDown(image.Pt(1, 1))
	c.Type("héé")
	c.Key(KeyBackspace)
	if got := c.Pending().Text(); got != "hé" {
		t.Fatalf("text = %q, want %q", got, "hé")
	}
}

func TestSelectTextMidStrokeDoesNotCommit(t *testing.T) {
	s := newSurface(t)
	c := NewController(s)
	before := s.Frame()
	c.PointerDown(image.Pt(10, 10))
	c.PointerMove(image.Pt(100, 100))
	if err := c.Select(Text); err != nil {
		t.Fatal(err)
	}
	if s.Stroking() {
		t.Fatal("stroke should be cancelled")
	}
	if s.HistoryLen() != 1 {
		t.Fatal("switching tools must not commit")
	}
	if !samePixels(before, s.Frame()) {
		t.Fatal("cancelled stroke pixels should roll back to the current snapshot")
	}
	// the release that follows lands on the text tool
	if err := c.PointerUp(); err != nil || s.HistoryLen() != 1 {
		t.Fatal("pointer up after switching must not commit")
	}
}

func TestSelectDrawDiscardsPendingText(t *testing.T) {
	s := newSurface(t)
	c := NewController(s)
	c.Select(Text)
	c.PointerDown(image.Pt(5, 5))
	c.Type("unsaved")
	c.Select(Draw)
	if c.Pending().Active() {
		t.Fatal("pending text should be discarded")
	}
	if s.HistoryLen() != 1 {
		t.Fatal("discarding text must not commit")
	}
}

func TestBrushClampAndColorPersist(t *testing.T) {
	c := NewController(newSurface(t))
	if got := c.SetBrushSize(0); got != 1 {
		t.Fatalf("clamp low = %d", got)
	}
	if got := c.SetBrushSize(21); got != 20 {
		t.Fatalf("clamp high = %d", got)
	}
	if err := c.SetColorName("blue"); err != nil {
		t.Fatal(err)
	}
	c.Select(Text)
	c.Select(Draw)
	if c.Color() != (color.RGBA{0x3b, 0x82, 0xf6, 0xff}) {
		t.Fatalf("color = %v, want the blue swatch", c.Color())
	}
	if c.TextSize() != 32 {
		t.Fatalf("text size = %v, want brush+12", c.TextSize())
	}
}

func TestParseColor(t *testing.T) {
	p := theme.Default()
	tests := []struct {
		in   string
		want color.RGBA
	}{
		{"red", color.RGBA{0xef, 0x44, 0x44, 0xff}},
		{"teal", color.RGBA{0x00, 0x80, 0x80, 0xff}},
		{"#123456", color.RGBA{0x12, 0x34, 0x56, 0xff}},
	}
	for _, tt := range tests {
		got, err := ParseColor(p, tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseColor(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseColor(p, "nope"); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestEraserReserved(t *testing.T) {
	c := NewController(newSurface(t))
	if err := c.Select(Eraser); !errors.Is(err, apperr.ErrToolReserved) {
		t.Fatalf("err = %v, want ErrToolReserved", err)
	}
	if c.Kind() != Draw {
		t.Fatal("reserved tool must not become active")
	}

	s := newSurface(t)
	c = NewController(s, WithEraser(true))
	if err := c.Select(Eraser); err != nil {
		t.Fatalf("Select eraser: %v", err)
	}
	c.SetBrushSize(10)
	c.PointerDown(image.Pt(100, 100))
	c.PointerMove(image.Pt(150, 100))
	c.PointerUp()
	if a := s.Frame().RGBAAt(125, 100).A; a != 0 {
		t.Fatalf("alpha = %d, want erased", a)
	}
}

func TestShortcuts(t *testing.T) {
	s := newSurface(t)
	c := NewController(s)
	c.PointerDown(image.Pt(10, 10))
	c.PointerUp()
	if ok, err := c.Shortcut('z', true); !ok || err != nil || s.CanUndo() {
		t.Fatalf("ctrl+z: ok=%v err=%v canUndo=%v", ok, err, s.CanUndo())
	}
	if ok, _ := c.Shortcut('y', true); !ok || !s.CanUndo() {
		t.Fatal("ctrl+y should redo")
	}
	if ok, _ := c.Shortcut('t', false); !ok || c.Kind() != Text {
		t.Fatal("t should select text")
	}
	c.PointerDown(image.Pt(3, 3))
	if ok, _ := c.Shortcut('d', false); ok || c.Kind() != Text {
		t.Fatal("letters are typing while text entry is active")
	}
}

func TestUndoMidStrokeAtFirstSnapshotDiscardsStroke(t *testing.T) {
	s := newSurface(t)
	c := NewController(s)
	before := s.Frame()
	c.PointerDown(image.Pt(10, 10))
	c.PointerMove(image.Pt(30, 30))
	if ok, err := c.Shortcut('z', true); !ok || err != nil {
		t.Fatalf("ctrl+z: ok=%v err=%v", ok, err)
	}
	if err := c.PointerUp(); err != nil {
		t.Fatalf("PointerUp: %v", err)
	}
	if s.HistoryLen() != 1 || s.Cursor() != 0 || s.Stroking() {
		t.Fatalf("len=%d cursor=%d stroking=%v", s.HistoryLen(), s.Cursor(), s.Stroking())
	}
	if !samePixels(s.Frame(), before) {
		t.Fatalf("partial stroke left in buffer: pixel(20,20)=%v", s.Frame().At(20, 20))
	}
}

func TestKindNames(t *testing.T) {
	for _, k := range []Kind{Draw, Text, Eraser} {
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Fatalf("ParseKind(%q) = %v, %v", k, got, err)
		}
	}
	if _, err := ParseKind("lasso"); err == nil {
		t.Fatal("expected error")
	}
}

package dialog

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/example/playtestshot/internal/apperr"
	"github.com/example/playtestshot/internal/comments"
	"github.com/example/playtestshot/internal/surface"
	"github.com/example/playtestshot/internal/tool"
)

type fakeResolver struct {
	img image.Image
	err error
}

func (f fakeResolver) Resolve(context.Context, string) (image.Image, error) { return f.img, f.err }

type fakeHost struct {
	err      error
	calls    int
	artifact surface.Artifact
	comment  string
	block    chan struct{}
	entered  chan struct{}
}

func (h *fakeHost) SaveFeedback(ctx context.Context, art surface.Artifact, comment string) (comments.Record, error) {
	h.calls++
	h.artifact, h.comment = art, comment
	if h.entered != nil {
		close(h.entered)
	}
	if h.block != nil {
		<-h.block
	}
	if h.err != nil {
		return comments.Record{}, h.err
	}
	return comments.Record{ID: "rec-1", Comment: comment}, nil
}

func gray(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{128, 128, 128, 255}), image.Point{}, draw.Src)
	return img
}

func openShell(t *testing.T, host Host, opts ...Option) *Shell {
	t.Helper()
	s := New(host, fakeResolver{img: gray(1800, 1200)}, opts...)
	if err := s.Open(context.Background(), "frame"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func drawLine(t *testing.T, s *Shell) {
	t.Helper()
	c := s.Controller()
	c.PointerDown(image.Pt(10, 10))
	c.PointerMove(image.Pt(200, 150))
	if err := c.PointerUp(); err != nil {
		t.Fatal(err)
	}
}

func TestOpenFitsAndSeeds(t *testing.T) {
	s := openShell(t, &fakeHost{})
	tb := s.Toolbar()
	if !tb.Open || tb.Width != 900 || tb.Height != 600 || tb.Scale != 0.5 {
		t.Fatalf("toolbar = %+v", tb)
	}
	if tb.CanUndo || tb.CanRedo || tb.CanClear {
		t.Fatal("history controls should start disabled")
	}
	if tb.Tool != "draw" || tb.BrushSize != 4 || tb.Color != "#ef4444" {
		t.Fatalf("tool defaults = %+v", tb)
	}
}

func TestOpenFailureStaysClosed(t *testing.T) {
	s := New(&fakeHost{}, fakeResolver{err: apperr.ErrLoadFailure})
	if err := s.Open(context.Background(), "bad"); !errors.Is(err, apperr.ErrLoadFailure) {
		t.Fatalf("err = %v", err)
	}
	if s.IsOpen() {
		t.Fatal("shell should stay closed")
	}
	if _, err := s.Save(context.Background(), "x"); !errors.Is(err, apperr.ErrUninitialized) {
		t.Fatalf("save err = %v, want ErrUninitialized", err)
	}
}

func TestObserverGatesHistoryControls(t *testing.T) {
	var states []Toolbar
	s := openShell(t, &fakeHost{}, WithObserver(func(tb Toolbar) { states = append(states, tb) }))
	drawLine(t, s)
	last := states[len(states)-1]
	if !last.CanUndo || last.CanRedo || !last.CanClear {
		t.Fatalf("after stroke = %+v", last)
	}
	if err := s.Undo(); err != nil {
		t.Fatal(err)
	}
	last = states[len(states)-1]
	if last.CanUndo || !last.CanRedo {
		t.Fatalf("after undo = %+v", last)
	}
	n := s.Surface().Cursor()
	if err := s.Undo(); err != nil || s.Surface().Cursor() != n {
		t.Fatal("disabled undo must be a no-op")
	}
	if err := s.Clear(); err != nil || s.Surface().HistoryLen() != 2 {
		t.Fatal("clear is disabled at the first snapshot")
	}
	s.Redo()
	if err := s.Clear(); err != nil || s.Surface().HistoryLen() != 1 {
		t.Fatal("clear should drop everything after the first snapshot")
	}
}

func TestSaveHandsOffAndCloses(t *testing.T) {
	host := &fakeHost{}
	var closed bool
	s := openShell(t, host, WithObserver(func(tb Toolbar) { closed = !tb.Open }))
	drawLine(t, s)
	want, _ := s.Export()
	rec, err := s.Save(context.Background(), "Texture flicker")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if rec.ID != "rec-1" || host.comment != "Texture flicker" {
		t.Fatalf("record = %+v comment=%q", rec, host.comment)
	}
	if string(host.artifact.PNG) != string(want.PNG) {
		t.Fatal("host received a different artifact")
	}
	if s.IsOpen() || !closed {
		t.Fatal("shell should be closed after save")
	}
}

func TestSubmitFinalFrameIsIdle(t *testing.T) {
	var last Toolbar
	s := openShell(t, &fakeHost{}, WithObserver(func(tb Toolbar) { last = tb }))
	drawLine(t, s)
	s.Panel().SetText("Clipping at spawn")
	if _, err := s.Submit(context.Background()); err != nil {
		t.Fatal(err)
	}
	if last != (Toolbar{}) {
		t.Fatalf("final frame = %+v, want closed and idle", last)
	}
	if tb := s.Toolbar(); tb.Open || tb.Saving {
		t.Fatalf("toolbar after submit = %+v", tb)
	}
}

func TestSaveCommitsPendingText(t *testing.T) {
	host := &fakeHost{}
	s := openShell(t, host)
	c := s.Controller()
	c.Select(tool.Text)
	c.PointerDown(image.Pt(50, 50))
	c.Type("Bug here")
	before, _ := s.Export()
	if _, err := s.Save(context.Background(), ""); err != nil {
		t.Fatal(err)
	}
	if string(host.artifact.PNG) == string(before.PNG) {
		t.Fatal("pending text should be stamped before export")
	}
}

func TestSaveClosesEvenWhenHostFails(t *testing.T) {
	boom := errors.New("disk full")
	s := openShell(t, &fakeHost{err: boom})
	if _, err := s.Save(context.Background(), "x"); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want host error", err)
	}
	if s.IsOpen() {
		t.Fatal("state must be discarded regardless of host outcome")
	}
}

func TestCancelDiscardsWithoutExport(t *testing.T) {
	host := &fakeHost{}
	s := openShell(t, host)
	drawLine(t, s)
	if err := s.Cancel(); err != nil {
		t.Fatal(err)
	}
	if s.IsOpen() || host.calls != 0 {
		t.Fatal("cancel must close without calling the host")
	}
}

func TestPanelPreventsDuplicateSubmit(t *testing.T) {
	host := &fakeHost{block: make(chan struct{}), entered: make(chan struct{})}
	s := openShell(t, host)
	s.Panel().SetText("first")

	done := make(chan error, 1)
	go func() {
		_, err := s.Panel().Submit(context.Background(), func(ctx context.Context, comment string) (comments.Record, error) {
			return host.SaveFeedback(ctx, surface.Artifact{PNG: []byte{1}}, comment)
		})
		done <- err
	}()
	<-host.entered
	if !s.Panel().Saving() {
		t.Fatal("saving flag should be set while the host is busy")
	}
	if _, err := s.Panel().Submit(context.Background(), s.Save); !errors.Is(err, apperr.ErrSaveInFlight) {
		t.Fatalf("second submit err = %v, want ErrSaveInFlight", err)
	}
	if err := s.Cancel(); !errors.Is(err, apperr.ErrSaveInFlight) {
		t.Fatalf("cancel err = %v, want ErrSaveInFlight", err)
	}
	close(host.block)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if s.Panel().Saving() {
		t.Fatal("saving flag should clear once the host settles")
	}
	if host.calls != 1 || host.comment != "first" {
		t.Fatalf("host calls=%d comment=%q", host.calls, host.comment)
	}
}

func TestSubmitUsesPanelText(t *testing.T) {
	host := &fakeHost{}
	s := openShell(t, host)
	s.Panel().SetText("Player falls through floor")
	if _, err := s.Submit(context.Background()); err != nil {
		t.Fatal(err)
	}
	if host.comment != "Player falls through floor" {
		t.Fatalf("comment = %q", host.comment)
	}
	if s.Panel().Text() != "" {
		t.Fatal("panel text should reset with the session")
	}
}

func TestShellsAreIndependent(t *testing.T) {
	a := openShell(t, &fakeHost{})
	b := openShell(t, &fakeHost{})
	drawLine(t, a)
	if b.Toolbar().CanUndo {
		t.Fatal("history leaked between shells")
	}
}

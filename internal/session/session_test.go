package session

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"testing"
	"time"

	"github.com/example/playtestshot/internal/apperr"
	"github.com/example/playtestshot/internal/comments"
	"github.com/example/playtestshot/internal/dialog"
	"github.com/example/playtestshot/internal/surface"
)

type fakeResolver struct{ err error }

func (f fakeResolver) Resolve(context.Context, string) (image.Image, error) {
	if f.err != nil {
		return nil, f.err
	}
	img := image.NewRGBA(image.Rect(0, 0, 400, 300))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{40, 40, 40, 255}), image.Point{}, draw.Src)
	return img, nil
}

type blockingHost struct {
	entered chan struct{}
	release chan struct{}
	comment string
}

func (h *blockingHost) SaveFeedback(_ context.Context, _ surface.Artifact, comment string) (comments.Record, error) {
	h.comment = comment
	close(h.entered)
	<-h.release
	return comments.Record{ID: "slow", Comment: comment}, nil
}

func newManager(t *testing.T) (*Manager, *comments.MemoryStore) {
	t.Helper()
	store := comments.NewMemoryStore()
	ids := 0
	m := NewManager(comments.NewService(store), fakeResolver{}, WithIDGenerator(func() string {
		ids++
		return "s" + string(rune('0'+ids))
	}))
	t.Cleanup(m.Close)
	return m, store
}

func stroke(sh *dialog.Shell) error {
	c := sh.Controller()
	if err := c.PointerDown(image.Pt(5, 5)); err != nil {
		return err
	}
	if err := c.PointerMove(image.Pt(60, 40)); err != nil {
		return err
	}
	return c.PointerUp()
}

func TestOpenAndDo(t *testing.T) {
	m, _ := newManager(t)
	s, err := m.Open(context.Background(), "frame")
	if err != nil {
		t.Fatal(err)
	}
	if m.Len() != 1 {
		t.Fatalf("Len = %d", m.Len())
	}
	got, err := m.Get(s.ID)
	if err != nil || got != s {
		t.Fatalf("Get = %v, %v", got, err)
	}

	tb, err := s.Do(stroke)
	if err != nil {
		t.Fatal(err)
	}
	if !tb.CanUndo || tb.CanRedo {
		t.Fatalf("toolbar after stroke = %+v", tb)
	}
}

func TestOpenFailureRegistersNothing(t *testing.T) {
	m := NewManager(comments.NewService(comments.NewMemoryStore()), fakeResolver{err: apperr.ErrLoadFailure})
	if _, err := m.Open(context.Background(), "broken"); !errors.Is(err, apperr.ErrLoadFailure) {
		t.Fatalf("err = %v", err)
	}
	if m.Len() != 0 {
		t.Fatal("failed open registered a session")
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	m, _ := newManager(t)
	a, _ := m.Open(context.Background(), "frame")
	b, _ := m.Open(context.Background(), "frame")
	if a.ID == b.ID {
		t.Fatal("ids collide")
	}
	if _, err := a.Do(stroke); err != nil {
		t.Fatal(err)
	}
	if tb := b.Toolbar(); tb.CanUndo {
		t.Fatal("edit leaked into second session")
	}
}

func TestSaveRemovesSession(t *testing.T) {
	m, store := newManager(t)
	s, _ := m.Open(context.Background(), "frame")
	if _, err := s.Do(stroke); err != nil {
		t.Fatal(err)
	}

	rec, err := m.Save(context.Background(), s.ID, "door clips through wall")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Comment != "door clips through wall" || !strings.HasPrefix(rec.Screenshot, "data:image/png;base64,") {
		t.Fatalf("record = %+v", rec)
	}
	if _, err := m.Get(s.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("session still registered: %v", err)
	}
	if _, err := s.Do(stroke); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("Do on closed session: %v", err)
	}
	list, _ := store.List(context.Background(), 0)
	if len(list) != 1 {
		t.Fatalf("stored %d records", len(list))
	}
}

func TestDuplicateSaveIsRejected(t *testing.T) {
	host := &blockingHost{entered: make(chan struct{}), release: make(chan struct{})}
	m := NewManager(host, fakeResolver{})
	s, _ := m.Open(context.Background(), "frame")

	done := make(chan error, 1)
	go func() {
		_, err := m.Save(context.Background(), s.ID, "first")
		done <- err
	}()
	<-host.entered

	if _, err := m.Save(context.Background(), s.ID, "second"); !errors.Is(err, apperr.ErrSaveInFlight) {
		t.Fatalf("second save = %v", err)
	}
	if got := s.shell.Panel().Text(); got != "first" {
		t.Fatalf("panel text = %q after rejected save", got)
	}
	close(host.release)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if host.comment != "first" {
		t.Fatalf("host saved comment %q, want the first request's", host.comment)
	}
	if m.Len() != 0 {
		t.Fatal("session not removed after save")
	}
}

func TestCancelRemovesSession(t *testing.T) {
	m, store := newManager(t)
	s, _ := m.Open(context.Background(), "frame")

	ch := s.broker.Subscribe()
	if err := m.Cancel(s.ID); err != nil {
		t.Fatal(err)
	}
	if m.Len() != 0 {
		t.Fatal("session not removed")
	}
	if err := m.Cancel(s.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("second cancel = %v", err)
	}

	var events []string
	timeout := time.After(time.Second)
	for done := false; !done; {
		select {
		case msg, ok := <-ch:
			if !ok {
				done = true
				break
			}
			events = append(events, string(msg))
		case <-timeout:
			t.Fatal("broker not closed")
		}
	}
	if len(events) == 0 || !strings.HasPrefix(events[len(events)-1], "event: closed") {
		t.Fatalf("events = %q", events)
	}
	list, _ := store.List(context.Background(), 0)
	if len(list) != 0 {
		t.Fatal("cancel stored a record")
	}
}

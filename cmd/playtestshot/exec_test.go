package main

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/playtestshot/internal/apperr"
	"github.com/example/playtestshot/internal/comments"
	"github.com/example/playtestshot/internal/dialog"
)

type imageResolver struct{}

func (imageResolver) Resolve(_ context.Context, ref string) (image.Image, error) {
	if ref == "broken" {
		return nil, apperr.ErrLoadFailure
	}
	img := image.NewRGBA(image.Rect(0, 0, 400, 300))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{90, 90, 90, 255}), image.Point{}, draw.Src)
	return img, nil
}

func newExecutor(t *testing.T) (*executor, *comments.MemoryStore, *bytes.Buffer) {
	t.Helper()
	store := comments.NewMemoryStore()
	shell := dialog.New(comments.NewService(store), imageResolver{})
	var out bytes.Buffer
	return &executor{ctx: context.Background(), shell: shell, out: &out}, store, &out
}

func run(t *testing.T, ex *executor, lines ...string) {
	t.Helper()
	for _, line := range lines {
		if _, err := ex.executeLine(line); err != nil {
			t.Fatalf("%q: %v", line, err)
		}
	}
}

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		line, name, rest string
	}{
		{"undo", "undo", ""},
		{"  TYPE  Bug here ", "type", "Bug here"},
		{"save needs a second look", "save", "needs a second look"},
		{"", "", ""},
	}
	for _, tt := range tests {
		name, rest := splitCommand(tt.line)
		if name != tt.name || rest != tt.rest {
			t.Errorf("splitCommand(%q) = %q, %q", tt.line, name, rest)
		}
	}
}

func TestParsePoints(t *testing.T) {
	pts, err := parsePoints("1,2 30, 40 5,6")
	if err == nil {
		t.Fatalf("expected error for split coordinate, got %v", pts)
	}
	pts, err = parsePoints("1,2 30,40")
	if err != nil {
		t.Fatal(err)
	}
	if len(pts) != 2 || pts[1] != image.Pt(30, 40) {
		t.Fatalf("pts = %v", pts)
	}
	if _, err := parsePoint("x,1"); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("err = %v", err)
	}
}

func TestParseShortcut(t *testing.T) {
	tests := []struct {
		in   string
		r    rune
		ctrl bool
		err  bool
	}{
		{"ctrl+z", 'z', true, false},
		{"Ctrl+Y", 'y', true, false},
		{"d", 'd', false, false},
		{"ctrl+", 0, false, true},
		{"dd", 0, false, true},
	}
	for _, tt := range tests {
		r, ctrl, err := parseShortcut(tt.in)
		if (err != nil) != tt.err || r != tt.r || ctrl != tt.ctrl {
			t.Errorf("parseShortcut(%q) = %q, %v, %v", tt.in, r, ctrl, err)
		}
	}
}

func TestExecutorRequiresOpenShell(t *testing.T) {
	ex, _, _ := newExecutor(t)
	if _, err := ex.executeLine("stroke 1,1 5,5"); !errors.Is(err, apperr.ErrUninitialized) {
		t.Fatalf("stroke before open = %v", err)
	}
	if _, err := ex.executeLine("save"); !errors.Is(err, apperr.ErrUninitialized) {
		t.Fatalf("save before open = %v", err)
	}
	if _, err := ex.executeLine("open broken"); !errors.Is(err, apperr.ErrLoadFailure) {
		t.Fatalf("open broken = %v", err)
	}
}

func TestExecutorDrawUndoRedo(t *testing.T) {
	ex, _, out := newExecutor(t)
	run(t, ex, "open frame", "color blue", "brush 6", "stroke 10,10 60,40 90,10")

	s := ex.shell.Surface()
	if s.HistoryLen() != 2 || !s.CanUndo() {
		t.Fatalf("after stroke: len=%d", s.HistoryLen())
	}
	run(t, ex, "shortcut ctrl+z")
	if s.CanUndo() || !s.CanRedo() {
		t.Fatal("ctrl+z did not undo")
	}
	run(t, ex, "redo", "clear", "status")
	if s.HistoryLen() != 1 || s.Cursor() != 0 {
		t.Fatalf("after clear: len=%d cursor=%d", s.HistoryLen(), s.Cursor())
	}
	if !strings.Contains(out.String(), "tool=draw brush=6 color=#3b82f6") {
		t.Fatalf("status output = %q", out.String())
	}
}

func TestExecutorTextCancel(t *testing.T) {
	ex, _, _ := newExecutor(t)
	run(t, ex, "open frame")
	before := ex.shell.Surface().Frame()

	run(t, ex, "tool text", "click 50,50", "type Bug here", "key escape")
	if ex.shell.Controller().Pending().Active() {
		t.Fatal("pending text not cleared")
	}
	if !bytes.Equal(before.Pix, ex.shell.Surface().Frame().Pix) {
		t.Fatal("cancelled text changed the buffer")
	}

	run(t, ex, "click 20,40", "type ok", "blur")
	if ex.shell.Surface().HistoryLen() != 2 {
		t.Fatal("blur did not commit text")
	}
}

func TestExecutorEraserReserved(t *testing.T) {
	ex, _, _ := newExecutor(t)
	run(t, ex, "open frame")
	if _, err := ex.executeLine("tool eraser"); !errors.Is(err, apperr.ErrToolReserved) {
		t.Fatalf("tool eraser = %v", err)
	}
}

func TestExecutorExportAndSave(t *testing.T) {
	ex, store, out := newExecutor(t)
	path := filepath.Join(t.TempDir(), "out.png")
	run(t, ex, "open frame", "stroke 5,5 50,50", "export "+path, "comment first draft", "save door is floating")

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 400 {
		t.Fatalf("exported bounds = %v", img.Bounds())
	}

	list, _ := store.List(context.Background(), 0)
	if len(list) != 1 || list[0].Comment != "door is floating" {
		t.Fatalf("stored = %+v", list)
	}
	if ex.shell.IsOpen() {
		t.Fatal("shell still open after save")
	}
	if !strings.Contains(out.String(), "saved "+list[0].ID) {
		t.Fatalf("output = %q", out.String())
	}
}

func TestExecutorExitAndUnknown(t *testing.T) {
	ex, _, _ := newExecutor(t)
	done, err := ex.executeLine("quit")
	if !done || err != nil {
		t.Fatalf("quit = %v, %v", done, err)
	}
	if done, err := ex.executeLine("# note"); done || err != nil {
		t.Fatalf("comment line = %v, %v", done, err)
	}
	run(t, ex, "open frame")
	if _, err := ex.executeLine("paint 1,1"); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("unknown command = %v", err)
	}
}

func writeTestPNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{30, 60, 90, 255}), image.Point{}, draw.Src)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

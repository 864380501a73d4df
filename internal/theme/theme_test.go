package theme

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultInitial(t *testing.T) {
	col, brush := Default().Initial()
	if col != (color.RGBA{0xef, 0x44, 0x44, 0xff}) {
		t.Fatalf("default color = %v", col)
	}
	if brush != 4 {
		t.Fatalf("default brush = %d, want 4", brush)
	}
	if n := len(Default().Swatches); n != 9 {
		t.Fatalf("swatches = %d, want 9", n)
	}
}

func TestClampBrush(t *testing.T) {
	for in, want := range map[int]int{-3: 1, 0: 1, 1: 1, 12: 12, 20: 20, 99: 20} {
		if got := ClampBrush(in); got != want {
			t.Errorf("ClampBrush(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"#ef4444", color.RGBA{0xef, 0x44, 0x44, 0xff}, false},
		{"#fff", color.RGBA{0xff, 0xff, 0xff, 0xff}, false},
		{"#ffffff80", color.RGBA{0x80, 0x80, 0x80, 0x80}, false},
		{"ef4444", color.RGBA{}, true},
		{"#zzzzzz", color.RGBA{}, true},
	}
	for _, tt := range tests {
		got, err := ParseHex(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseHex(%q) err = %v", tt.in, err)
		}
		if !tt.wantErr && got != tt.want {
			t.Fatalf("ParseHex(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseAndString(t *testing.T) {
	input := `
name: qa
default_color: teal
brush: 30
teal: #14b8a6
black: #000000
`
	th, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if th.Name != "qa" || th.DefaultBrush != 20 || len(th.Swatches) != 2 {
		t.Fatalf("unexpected theme %+v", th)
	}
	col, brush := th.Initial()
	if col != (color.RGBA{0x14, 0xb8, 0xa6, 0xff}) || brush != 20 {
		t.Fatalf("Initial = %v, %d", col, brush)
	}
	again, err := Parse(strings.NewReader(th.String()))
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if again.String() != th.String() {
		t.Fatalf("round trip mismatch:\n%s\nvs\n%s", again, th)
	}
}

func TestLoaderSearchesConfigDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "qa.theme"), []byte("name: qa\nmint: #3eb489\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	l := &Loader{ConfigDir: dir}
	th, err := l.Load("qa")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := th.Lookup("MINT"); !ok {
		t.Fatal("expected mint swatch")
	}
	if _, err := l.Load("missing"); err == nil {
		t.Fatal("expected error for a missing theme")
	}
}

// Package theme defines the toolbar swatch sets and brush defaults offered
// to annotators.
package theme

import (
	"image/color"
	"strings"
)

// Brush size limits and default.
const (
	MinBrush     = 1
	MaxBrush     = 20
	DefaultBrush = 4
)

// Swatch is a named toolbar color.
type Swatch struct {
	Name  string
	Color color.RGBA
}

// Theme is an ordered set of swatches plus the initial brush state.
type Theme struct {
	Name         string
	Swatches     []Swatch
	DefaultColor string
	DefaultBrush int
}

// Default returns the built-in swatch set.
func Default() *Theme {
	return &Theme{
		Name: "default",
		Swatches: []Swatch{
			{"red", color.RGBA{0xef, 0x44, 0x44, 0xff}},
			{"orange", color.RGBA{0xf9, 0x73, 0x16, 0xff}},
			{"yellow", color.RGBA{0xea, 0xb3, 0x08, 0xff}},
			{"green", color.RGBA{0x22, 0xc5, 0x5e, 0xff}},
			{"blue", color.RGBA{0x3b, 0x82, 0xf6, 0xff}},
			{"purple", color.RGBA{0x8b, 0x5c, 0xf6, 0xff}},
			{"pink", color.RGBA{0xec, 0x48, 0x99, 0xff}},
			{"white", color.RGBA{0xff, 0xff, 0xff, 0xff}},
			{"black", color.RGBA{0x00, 0x00, 0x00, 0xff}},
		},
		DefaultColor: "red",
		DefaultBrush: DefaultBrush,
	}
}

// Lookup finds a swatch by case-insensitive name.
func (t *Theme) Lookup(name string) (color.RGBA, bool) {
	if t == nil {
		return color.RGBA{}, false
	}
	for _, s := range t.Swatches {
		if strings.EqualFold(s.Name, name) {
			return s.Color, true
		}
	}
	return color.RGBA{}, false
}

// Initial returns the color and brush size a new session starts with.
func (t *Theme) Initial() (color.RGBA, int) {
	def := Default()
	if t == nil {
		t = def
	}
	col, ok := t.Lookup(t.DefaultColor)
	if !ok {
		if len(t.Swatches) > 0 {
			col = t.Swatches[0].Color
		} else {
			col, _ = def.Lookup(def.DefaultColor)
		}
	}
	return col, ClampBrush(t.DefaultBrush)
}

// Set replaces or appends the swatch called name.
func (t *Theme) Set(name string, c color.RGBA) {
	for i := range t.Swatches {
		if strings.EqualFold(t.Swatches[i].Name, name) {
			t.Swatches[i].Color = c
			return
		}
	}
	t.Swatches = append(t.Swatches, Swatch{Name: name, Color: c})
}

// Clone returns a deep copy of t.
func (t *Theme) Clone() *Theme {
	if t == nil {
		return nil
	}
	out := *t
	out.Swatches = append([]Swatch(nil), t.Swatches...)
	return &out
}

// ClampBrush limits n to the supported brush range.
func ClampBrush(n int) int {
	if n < MinBrush {
		return MinBrush
	}
	if n > MaxBrush {
		return MaxBrush
	}
	return n
}

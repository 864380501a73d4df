package theme

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Parse reads a swatch set. Each line is "Key: value" where the key is a
// swatch name holding a hex color, or one of name, default_color and brush.
// Swatches in the input replace the default set.
func Parse(r io.Reader) (*Theme, error) {
	t := Default()
	t.Swatches = nil
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		sep := strings.IndexAny(line, ":=")
		if sep < 0 {
			continue
		}
		key := strings.TrimSpace(line[:sep])
		value := strings.TrimSpace(line[sep+1:])
		if err := t.SetField(key, value); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(t.Swatches) == 0 {
		t.Swatches = Default().Swatches
	}
	return t, nil
}

// SetField applies one key/value pair from a theme definition.
func (t *Theme) SetField(key, value string) error {
	value = strings.Trim(value, `"`)
	switch strings.ToLower(key) {
	case "name":
		t.Name = value
	case "default_color", "defaultcolor":
		t.DefaultColor = value
	case "brush", "default_brush":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid brush size %q: %w", value, err)
		}
		t.DefaultBrush = ClampBrush(n)
	default:
		col, err := ParseHex(value)
		if err != nil {
			return fmt.Errorf("invalid color for swatch %s: %w", key, err)
		}
		t.Set(key, col)
	}
	return nil
}

// ParseHex parses #RGB, #RRGGBB or #RRGGBBAA.
func ParseHex(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		return color.RGBA{}, fmt.Errorf("color must start with #")
	}
	alpha := uint8(0xff)
	if len(s) == 9 {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return color.RGBA{}, err
		}
		alpha = uint8(a)
		s = s[:7]
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, err
	}
	r, g, b := c.RGB255()
	if alpha == 0xff {
		return color.RGBA{r, g, b, alpha}, nil
	}
	// color.RGBA is premultiplied
	mul := func(v uint8) uint8 { return uint8((uint32(v)*uint32(alpha) + 127) / 255) }
	return color.RGBA{mul(r), mul(g), mul(b), alpha}, nil
}

// Hex formats c as #RRGGBB, or #RRGGBBAA when translucent.
func Hex(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if n.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", n.R, n.G, n.B, n.A)
}

// String renders the theme in the format Parse reads.
func (t *Theme) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "name: %s\n", t.Name)
	if t.DefaultColor != "" {
		fmt.Fprintf(&sb, "default_color: %s\n", t.DefaultColor)
	}
	fmt.Fprintf(&sb, "brush: %d\n", t.DefaultBrush)
	for _, s := range t.Swatches {
		fmt.Fprintf(&sb, "%s: %s\n", s.Name, Hex(s.Color))
	}
	return sb.String()
}

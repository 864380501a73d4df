package render

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

var (
	fontOnce    sync.Once
	regularFont *sfnt.Font
	fontErr     error
	faces       sync.Map // map[float64]font.Face

	// opentype faces keep scratch buffers, so rendering is serialized.
	faceMu sync.Mutex
)

func faceForSize(size float64) (font.Face, error) {
	if size <= 0 {
		return nil, fmt.Errorf("text size must be positive, got %v", size)
	}
	if face, ok := faces.Load(size); ok {
		return face.(font.Face), nil
	}
	fontOnce.Do(func() {
		regularFont, fontErr = opentype.Parse(goregular.TTF)
	})
	if fontErr != nil {
		return nil, fmt.Errorf("parse go regular: %w", fontErr)
	}
	face, err := opentype.NewFace(regularFont, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, err
	}
	actual, _ := faces.LoadOrStore(size, face)
	return actual.(font.Face), nil
}

// DrawText renders text with its baseline starting at origin.
func DrawText(dst *image.RGBA, origin image.Point, text string, col color.Color, size float64) error {
	face, err := faceForSize(size)
	if err != nil {
		return err
	}
	faceMu.Lock()
	defer faceMu.Unlock()
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(origin.X, origin.Y),
	}
	d.DrawString(text)
	return nil
}

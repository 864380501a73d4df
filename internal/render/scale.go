package render

import (
	"image"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
)

// Default bounds the editing canvas is fitted into.
const (
	DefaultMaxWidth  = 900
	DefaultMaxHeight = 600
)

// FitScale returns the factor that shrinks a src sized image to fit within
// maxW by maxH while preserving aspect ratio. It never exceeds 1.
func FitScale(srcW, srcH, maxW, maxH int) float64 {
	if srcW <= 0 || srcH <= 0 {
		return 1
	}
	scale := 1.0
	if maxW > 0 {
		scale = math.Min(scale, float64(maxW)/float64(srcW))
	}
	if maxH > 0 {
		scale = math.Min(scale, float64(maxH)/float64(srcH))
	}
	return scale
}

// FitSize applies FitScale and returns the resulting logical size.
func FitSize(srcW, srcH, maxW, maxH int) (image.Point, float64) {
	scale := FitScale(srcW, srcH, maxW, maxH)
	w := int(math.Floor(float64(srcW) * scale))
	h := int(math.Floor(float64(srcH) * scale))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return image.Pt(w, h), scale
}

// ScaleToFit draws src into a new zero-origin RGBA buffer sized by FitSize.
func ScaleToFit(src image.Image, maxW, maxH int) (*image.RGBA, float64) {
	b := src.Bounds()
	size, scale := FitSize(b.Dx(), b.Dy(), maxW, maxH)
	dst := image.NewRGBA(image.Rectangle{Max: size})
	if size.X == b.Dx() && size.Y == b.Dy() {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
		return dst, scale
	}
	resized := imaging.Resize(src, size.X, size.Y, imaging.Lanczos)
	draw.Draw(dst, dst.Bounds(), resized, image.Point{}, draw.Src)
	return dst, scale
}

// Clone returns a deep copy of img with the same bounds.
func Clone(img *image.RGBA) *image.RGBA {
	if img == nil {
		return nil
	}
	out := image.NewRGBA(img.Bounds())
	copy(out.Pix, img.Pix)
	return out
}

package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"
)

// Mode selects how a stroke is composited onto the buffer.
type Mode int

const (
	// SourceOver paints the brush color over existing pixels.
	SourceOver Mode = iota
	// DestinationOut clears existing pixels by the brush coverage.
	DestinationOut
)

// String returns the compositing operator name.
func (m Mode) String() string {
	switch m {
	case SourceOver:
		return "source-over"
	case DestinationOut:
		return "destination-out"
	default:
		return "unknown"
	}
}

// capSteps is the number of vertices used per half circle of a round cap.
const capSteps = 16

// Segment strokes the line a-b with a round capped pen of the given width.
// Consecutive segments sharing an endpoint join with a round join.
func Segment(dst *image.RGBA, a, b image.Point, width float64, col color.Color, mode Mode) {
	if dst == nil || width <= 0 {
		return
	}
	r := width / 2
	ax, ay := float64(a.X)+0.5, float64(a.Y)+0.5
	bx, by := float64(b.X)+0.5, float64(b.Y)+0.5

	box := image.Rect(
		int(math.Floor(math.Min(ax, bx)-r))-1,
		int(math.Floor(math.Min(ay, by)-r))-1,
		int(math.Ceil(math.Max(ax, bx)+r))+1,
		int(math.Ceil(math.Max(ay, by)+r))+1,
	).Intersect(dst.Bounds())
	if box.Empty() {
		return
	}

	z := vector.NewRasterizer(box.Dx(), box.Dy())
	ox, oy := float64(box.Min.X), float64(box.Min.Y)
	capsule(z, ax-ox, ay-oy, bx-ox, by-oy, r)

	switch mode {
	case DestinationOut:
		mask := image.NewAlpha(image.Rectangle{Max: box.Size()})
		z.DrawOp = draw.Src
		z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
		clearByMask(dst, box.Min, mask)
	default:
		z.DrawOp = draw.Over
		z.Draw(dst, box, image.NewUniform(col), image.Point{})
	}
}

// capsule adds the outline of a segment with round ends to z.
func capsule(z *vector.Rasterizer, ax, ay, bx, by, r float64) {
	dx, dy := bx-ax, by-ay
	theta := 0.0
	if math.Hypot(dx, dy) > 1e-9 {
		theta = math.Atan2(dy, dx)
	}
	first := true
	arc := func(cx, cy, from float64) {
		for i := 0; i <= capSteps; i++ {
			t := from + math.Pi*float64(i)/capSteps
			x := float32(cx + r*math.Cos(t))
			y := float32(cy + r*math.Sin(t))
			if first {
				z.MoveTo(x, y)
				first = false
				continue
			}
			z.LineTo(x, y)
		}
	}
	arc(bx, by, theta-math.Pi/2)
	arc(ax, ay, theta+math.Pi/2)
	z.ClosePath()
}

// clearByMask scales the premultiplied pixels of dst by one minus the mask
// coverage, the destination-out Porter-Duff operator with an opaque source.
func clearByMask(dst *image.RGBA, at image.Point, mask *image.Alpha) {
	mb := mask.Bounds()
	for y := 0; y < mb.Dy(); y++ {
		for x := 0; x < mb.Dx(); x++ {
			m := uint32(mask.Pix[y*mask.Stride+x])
			if m == 0 {
				continue
			}
			i := dst.PixOffset(at.X+x, at.Y+y)
			keep := 255 - m
			for c := 0; c < 4; c++ {
				dst.Pix[i+c] = uint8((uint32(dst.Pix[i+c])*keep + 127) / 255)
			}
		}
	}
}

package canvas

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
)

const (
	DefaultWidth  = 1400
	DefaultHeight = 600
)

// ImagePainter rasterizes strokes into an in-memory RGBA canvas. Pixels
// outside the bounds are silently dropped, matching how a browser canvas
// clips strokes at its edges.
type ImagePainter struct {
	img *image.RGBA
	ink color.RGBA
}

func NewImagePainter(width, height int) *ImagePainter {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return &ImagePainter{
		img: img,
		ink: color.RGBA{A: 255},
	}
}

// DrawLine paints the segment with Bresenham's algorithm. Deterministic for
// a given (from, to), so history replay and live frames produce identical
// pixels.
func (p *ImagePainter) DrawLine(from, to Point) {
	x0, y0 := int(math.Round(from.X)), int(math.Round(from.Y))
	x1, y1 := int(math.Round(to.X)), int(math.Round(to.Y))

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	errAcc := dx + dy

	for {
		p.img.Set(x0, y0, p.ink)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * errAcc
		if e2 >= dy {
			errAcc += dy
			x0 += sx
		}
		if e2 <= dx {
			errAcc += dx
			y0 += sy
		}
	}
}

func (p *ImagePainter) At(x, y int) color.Color {
	return p.img.At(x, y)
}

func (p *ImagePainter) EncodePNG(w io.Writer) error {
	return png.Encode(w, p.img)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

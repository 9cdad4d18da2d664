// Package overlay draws the LED frame presented next to the cursor.
package overlay

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/vector"

	"any-indicator/src/model"
)

// kappa is the cubic Bézier control distance for a quarter circle.
const kappa = 0.5522847

// CursorOffset places the frame below-right of the pointer hotspot so the
// LED never covers the hotspot itself.
var CursorOffset = image.Pt(14, 14)

var highlight = color.NRGBA{R: 255, G: 255, B: 255, A: 150}

// Side returns the frame side for a size preset.
func Side(size model.LedSize) int {
	g := size.Geometry()
	return g.Diameter + 2*g.GlowPadding
}

// Hidden returns the 1×1 fully transparent frame used when nothing is shown.
func Hidden() *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, 1, 1))
}

// TopLeft returns where a frame anchored at the cursor goes on screen.
func TopLeft(anchor image.Point) image.Point {
	return anchor.Add(CursorOffset)
}

// Render builds the LED frame. Layers, back to front: glow halo (on only),
// disc, ring, highlight speck (on only).
func Render(size model.LedSize, palette model.Palette, on, visible bool) *image.RGBA {
	if !visible {
		return Hidden()
	}

	g := size.Geometry()
	side := Side(size)
	frame := image.NewRGBA(image.Rect(0, 0, side, side))
	colors := palette.Colors()

	c := float32(side) / 2
	r := float32(g.Diameter) / 2
	z := vector.NewRasterizer(side, side)

	if on {
		ellipse(z, c, c, c, c, false)
		fill(z, frame, palette.Glow())
	}

	disc := colors.Off
	if on {
		disc = colors.On
	}
	z.Reset(side, side)
	ellipse(z, c, c, r, r, false)
	fill(z, frame, disc)

	// The ring straddles the disc edge like a centered pen stroke.
	half := float32(g.RingWidth) / 2
	z.Reset(side, side)
	ellipse(z, c, c, r+half, r+half, false)
	ellipse(z, c, c, r-half, r-half, true)
	fill(z, frame, palette.Ring())

	if on {
		d := float32(g.Diameter)
		x0 := c - r + 0.2*d
		y0 := c - r + 0.1*d
		w, h := 0.3*d, 0.2*d
		z.Reset(side, side)
		ellipse(z, x0+w/2, y0+h/2, w/2, h/2, false)
		fill(z, frame, highlight)
	}

	return frame
}

func fill(z *vector.Rasterizer, dst *image.RGBA, c color.Color) {
	z.DrawOp = draw.Over
	z.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{})
}

// ellipse appends a closed ellipse path. Reversed paths cut holes in paths
// of the opposite direction.
func ellipse(z *vector.Rasterizer, cx, cy, rx, ry float32, reverse bool) {
	kx, ky := rx*kappa, ry*kappa
	if !reverse {
		z.MoveTo(cx+rx, cy)
		z.CubeTo(cx+rx, cy+ky, cx+kx, cy+ry, cx, cy+ry)
		z.CubeTo(cx-kx, cy+ry, cx-rx, cy+ky, cx-rx, cy)
		z.CubeTo(cx-rx, cy-ky, cx-kx, cy-ry, cx, cy-ry)
		z.CubeTo(cx+kx, cy-ry, cx+rx, cy-ky, cx+rx, cy)
	} else {
		z.MoveTo(cx+rx, cy)
		z.CubeTo(cx+rx, cy-ky, cx+kx, cy-ry, cx, cy-ry)
		z.CubeTo(cx-kx, cy-ry, cx-rx, cy-ky, cx-rx, cy)
		z.CubeTo(cx-rx, cy+ky, cx-kx, cy+ry, cx, cy+ry)
		z.CubeTo(cx+kx, cy+ry, cx+rx, cy+ky, cx+rx, cy)
	}
	z.ClosePath()
}

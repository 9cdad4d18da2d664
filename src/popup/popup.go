// Package popup shows a short-lived, enlarged preview of a freshly captured
// baseline next to the watched point.
package popup

import (
	"image"
	"image/color"
	"log"
	"time"

	"golang.org/x/image/draw"

	"any-indicator/src/compositor"
)

const (
	DefaultDuration = 1500 * time.Millisecond
	DefaultScale    = 6
	border          = 2
	gap             = 8
)

var borderColor = color.RGBA{R: 32, G: 32, B: 32, A: 255}

// Preview owns its own overlay surface. Show and Tick must be called from
// the event loop goroutine.
type Preview struct {
	surface  compositor.Surface
	scale    int
	duration time.Duration

	shown   bool
	armed   bool
	hideAt  time.Duration
	lastPos image.Point
}

// New returns a preview presenting on s. A zero duration disables it.
func New(s compositor.Surface, scale int, duration time.Duration) *Preview {
	if scale <= 0 {
		scale = DefaultScale
	}
	if duration < 0 {
		duration = 0
	}
	return &Preview{surface: s, scale: scale, duration: duration}
}

func (p *Preview) Visible() bool { return p.shown }

// Show presents raster enlarged beside anchor. The countdown starts on the
// next Tick.
func (p *Preview) Show(raster *image.RGBA, anchor image.Point) {
	if p.duration == 0 || raster == nil {
		return
	}
	frame := Frame(raster, p.scale)
	half := raster.Bounds().Dx() / 2
	p.lastPos = anchor.Add(image.Pt(half+gap, half+gap))
	if err := p.surface.Present(frame, p.lastPos); err != nil {
		log.Printf("popup: present failed: %v", err)
		return
	}
	p.shown = true
	p.armed = true
	log.Printf("popup: preview at %v for %v", p.lastPos, p.duration)
}

// Tick hides the preview once its time is up.
func (p *Preview) Tick(now time.Duration) {
	if !p.shown {
		return
	}
	if p.armed {
		p.hideAt = now + p.duration
		p.armed = false
		return
	}
	if now >= p.hideAt {
		p.Hide()
	}
}

func (p *Preview) Hide() {
	if !p.shown {
		return
	}
	if err := p.surface.Present(image.NewRGBA(image.Rect(0, 0, 1, 1)), p.lastPos); err != nil {
		log.Printf("popup: hide failed: %v", err)
	}
	p.shown = false
	p.armed = false
}

// Frame scales raster by an integer factor with hard pixel edges and adds
// an opaque border.
func Frame(raster *image.RGBA, scale int) *image.RGBA {
	if scale <= 0 {
		scale = 1
	}
	b := raster.Bounds()
	w, h := b.Dx()*scale, b.Dy()*scale
	out := image.NewRGBA(image.Rect(0, 0, w+2*border, h+2*border))
	draw.Draw(out, out.Bounds(), image.NewUniform(borderColor), image.Point{}, draw.Src)
	inner := image.Rect(border, border, border+w, border+h)
	draw.NearestNeighbor.Scale(out, inner, raster, b, draw.Src, nil)
	return out
}

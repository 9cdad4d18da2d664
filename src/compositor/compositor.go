// Package compositor presents RGBA frames on a topmost, click-through,
// per-pixel-alpha surface anchored at a screen point.
package compositor

import (
	"image"
	"image/draw"
	"log"

	"any-indicator/src/detect"
)

// Surface shows one frame at a time. The frame's alpha channel governs
// visibility; a 1×1 transparent frame shows nothing. Implementations are
// owned by a single goroutine.
type Surface interface {
	Present(frame *image.RGBA, at image.Point) error
	Close() error
}

// Headless keeps the last presented frame in memory. It is used where no
// native surface exists and in tests.
type Headless struct {
	Name     string
	Frame    *image.RGBA
	At       image.Point
	Presents int
	Closed   bool
}

func NewHeadless(name string) *Headless { return &Headless{Name: name} }

func (h *Headless) Present(frame *image.RGBA, at image.Point) error {
	h.Frame = frame
	h.At = at
	h.Presents++
	return nil
}

func (h *Headless) Close() error {
	if !h.Closed {
		log.Printf("compositor: %s closed after %d presents", h.Name, h.Presents)
	}
	h.Closed = true
	return nil
}

type dedup struct {
	s    Surface
	last *image.RGBA
	at   image.Point
}

// Dedup wraps s so identical frames at the same position are not
// re-presented.
func Dedup(s Surface) Surface { return &dedup{s: s} }

func (d *dedup) Present(frame *image.RGBA, at image.Point) error {
	if d.last != nil && at == d.at && !detect.Changed(d.last, frame) {
		return nil
	}
	if err := d.s.Present(frame, at); err != nil {
		d.last = nil
		return err
	}
	// Callers may reuse their frame buffer.
	d.last = image.NewRGBA(frame.Bounds())
	draw.Draw(d.last, d.last.Bounds(), frame, frame.Bounds().Min, draw.Src)
	d.at = at
	return nil
}

func (d *dedup) Close() error { return d.s.Close() }

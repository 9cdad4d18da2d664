package screenshot

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/kbinani/screenshot"
)

// Desktop is the virtual desktop the sampler reads from.
type Desktop interface {
	// Bounds returns the union of all active displays.
	Bounds() (image.Rectangle, error)
	CaptureRect(r image.Rectangle) (*image.RGBA, error)
}

type displayDesktop struct{}

// NewDesktop returns the desktop backed by the OS capture API.
func NewDesktop() Desktop { return displayDesktop{} }

func (displayDesktop) Bounds() (image.Rectangle, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return image.Rectangle{}, fmt.Errorf("no active displays found")
	}
	// Compute union of all display bounds
	union := screenshot.GetDisplayBounds(0)
	for i := 1; i < n; i++ {
		union = union.Union(screenshot.GetDisplayBounds(i))
	}
	return union, nil
}

func (displayDesktop) CaptureRect(r image.Rectangle) (*image.RGBA, error) {
	img, err := screenshot.CaptureRect(r)
	if err != nil {
		return nil, fmt.Errorf("capture %v: %w", r, err)
	}
	return img, nil
}

// Sampler captures small squares around a point.
type Sampler struct {
	desktop Desktop
}

func NewSampler(d Desktop) *Sampler {
	return &Sampler{desktop: d}
}

// Sample captures the size×size block centered as closely as possible on
// at, clamped into the desktop. The result is a fresh image with its origin
// at (0,0).
func (s *Sampler) Sample(at image.Point, size int) (*image.RGBA, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid sample size %d", size)
	}
	bounds, err := s.desktop.Bounds()
	if err != nil {
		return nil, err
	}
	rect := CaptureRect(at, size, bounds)
	src, err := s.desktop.CaptureRect(rect)
	if err != nil {
		return nil, err
	}
	out := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(out, out.Bounds(), src, src.Bounds().Min, draw.Src)
	return out, nil
}

// CaptureRect returns the size×size rectangle around at, clamped on each
// axis so it stays inside desktop.
func CaptureRect(at image.Point, size int, desktop image.Rectangle) image.Rectangle {
	left := clamp(at.X-size/2, desktop.Min.X, desktop.Max.X-size)
	top := clamp(at.Y-size/2, desktop.Min.Y, desktop.Max.Y-size)
	return image.Rect(left, top, left+size, top+size)
}

// clamp keeps lo when the range is empty, so a desktop narrower than the
// sample starts at its own edge.
func clamp(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

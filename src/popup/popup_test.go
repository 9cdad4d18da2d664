package popup

import (
	"image"
	"image/color"
	"testing"
	"time"

	"any-indicator/src/compositor"
)

const ms = time.Millisecond

func checker(n int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, n, n))
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			c := color.RGBA{A: 255}
			if (x+y)%2 == 0 {
				c = color.RGBA{R: 255, G: 255, B: 255, A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestFrameScalesWithHardEdges(t *testing.T) {
	src := checker(12)
	f := Frame(src, 6)
	if got, want := f.Bounds().Dx(), 12*6+2*border; got != want {
		t.Fatalf("frame width = %d, want %d", got, want)
	}
	for _, tc := range []struct{ sx, sy int }{{0, 0}, {1, 0}, {5, 7}, {11, 11}} {
		want := src.RGBAAt(tc.sx, tc.sy)
		for _, d := range []int{0, 5} {
			x, y := border+tc.sx*6+d, border+tc.sy*6+d
			if got := f.RGBAAt(x, y); got != want {
				t.Errorf("pixel (%d,%d) = %v, want %v from source (%d,%d)", x, y, got, want, tc.sx, tc.sy)
			}
		}
	}
	if f.RGBAAt(0, 0) != borderColor {
		t.Errorf("border = %v", f.RGBAAt(0, 0))
	}
}

func TestPreviewLifetime(t *testing.T) {
	h := compositor.NewHeadless("preview")
	p := New(h, 4, DefaultDuration)

	p.Show(checker(12), image.Pt(100, 100))
	if !p.Visible() || h.Presents != 1 {
		t.Fatalf("not shown: visible=%v presents=%d", p.Visible(), h.Presents)
	}
	if h.At != image.Pt(100+6+gap, 100+6+gap) {
		t.Errorf("preview at %v", h.At)
	}

	p.Tick(1000 * ms)
	p.Tick(2490 * ms)
	if !p.Visible() {
		t.Fatal("hidden early")
	}
	p.Tick(2500 * ms)
	if p.Visible() {
		t.Fatal("still visible after duration")
	}
	if h.Frame.Bounds().Dx() != 1 {
		t.Error("hide did not present an empty frame")
	}
	presents := h.Presents
	p.Tick(3000 * ms)
	if h.Presents != presents {
		t.Error("hidden preview presented again")
	}
}

func TestPreviewDisabled(t *testing.T) {
	h := compositor.NewHeadless("preview")
	p := New(h, 0, 0)
	p.Show(checker(12), image.Point{})
	if p.Visible() || h.Presents != 0 {
		t.Error("disabled preview was shown")
	}
}

func TestShowRestartsCountdown(t *testing.T) {
	h := compositor.NewHeadless("preview")
	p := New(h, 2, 100*ms)
	p.Show(checker(4), image.Point{})
	p.Tick(0)
	p.Tick(90 * ms)
	p.Show(checker(4), image.Point{})
	p.Tick(95 * ms)
	p.Tick(150 * ms)
	if !p.Visible() {
		t.Fatal("second show did not restart the countdown")
	}
	p.Tick(195 * ms)
	if p.Visible() {
		t.Fatal("not hidden after restarted countdown")
	}
}

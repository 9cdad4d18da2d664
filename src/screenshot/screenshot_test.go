package screenshot

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

type fakeDesktop struct {
	bounds image.Rectangle
	rects  []image.Rectangle
	err    error
}

func (f *fakeDesktop) Bounds() (image.Rectangle, error) { return f.bounds, nil }

func (f *fakeDesktop) CaptureRect(r image.Rectangle) (*image.RGBA, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.rects = append(f.rects, r)
	// Mimic the OS API: the result starts at (0,0); encode the screen
	// coordinates in the pixels so tests can check what was read.
	img := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	for y := 0; y < r.Dy(); y++ {
		for x := 0; x < r.Dx(); x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(r.Min.X + x), G: uint8(r.Min.Y + y), A: 255})
		}
	}
	return img, nil
}

func TestCaptureRectStaysInsideDesktop(t *testing.T) {
	desktops := []image.Rectangle{
		image.Rect(0, 0, 1920, 1080),
		image.Rect(-1280, -200, 1920, 1080),
		image.Rect(0, 0, 30, 30),
	}
	points := []image.Point{
		{0, 0}, {5, 5}, {-5000, 3}, {1919, 1079}, {1920, 1080}, {99999, -99999}, {960, 540}, {-1280, -200},
	}
	for _, d := range desktops {
		for _, n := range []int{12, 24} {
			for _, p := range points {
				r := CaptureRect(p, n, d)
				if r.Dx() != n || r.Dy() != n {
					t.Fatalf("CaptureRect(%v, %d, %v) = %v, wrong size", p, n, d, r)
				}
				if !r.In(d) {
					t.Errorf("CaptureRect(%v, %d, %v) = %v, outside desktop", p, n, d, r)
				}
			}
		}
	}
}

func TestCaptureRectCentersAwayFromEdges(t *testing.T) {
	r := CaptureRect(image.Pt(100, 100), 12, image.Rect(0, 0, 1920, 1080))
	if want := image.Rect(94, 94, 106, 106); r != want {
		t.Fatalf("got %v, want %v", r, want)
	}
}

func TestCaptureRectClampsEachAxisIndependently(t *testing.T) {
	r := CaptureRect(image.Pt(2, 500), 24, image.Rect(0, 0, 1920, 1080))
	if want := image.Rect(0, 488, 24, 512); r != want {
		t.Fatalf("got %v, want %v", r, want)
	}
	r = CaptureRect(image.Pt(1000, 1079), 24, image.Rect(0, 0, 1920, 1080))
	if want := image.Rect(988, 1056, 1012, 1080); r != want {
		t.Fatalf("got %v, want %v", r, want)
	}
}

func TestSampleReturnsFreshBuffers(t *testing.T) {
	d := &fakeDesktop{bounds: image.Rect(0, 0, 200, 200)}
	s := NewSampler(d)

	first, err := s.Sample(image.Pt(50, 60), 12)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if first.Bounds() != image.Rect(0, 0, 12, 12) {
		t.Fatalf("unexpected bounds %v", first.Bounds())
	}
	if got := first.RGBAAt(0, 0); got.R != 44 || got.G != 54 {
		t.Fatalf("top-left pixel came from (%d,%d), want (44,54)", got.R, got.G)
	}

	before := append([]byte(nil), first.Pix...)
	second, err := s.Sample(image.Pt(51, 60), 12)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if &second.Pix[0] == &first.Pix[0] {
		t.Fatal("Sample reused the previous buffer")
	}
	for i := range before {
		if before[i] != first.Pix[i] {
			t.Fatal("Sample mutated a previous buffer")
		}
	}
}

func TestSampleErrors(t *testing.T) {
	d := &fakeDesktop{bounds: image.Rect(0, 0, 200, 200), err: errors.New("boom")}
	s := NewSampler(d)
	if _, err := s.Sample(image.Pt(1, 1), 12); err == nil {
		t.Error("expected capture error to propagate")
	}
	if _, err := s.Sample(image.Pt(1, 1), 0); err == nil {
		t.Error("expected invalid size error")
	}
}

func TestDisplayDesktop(t *testing.T) {
	// Needs a display; only check it doesn't panic.
	s := NewSampler(NewDesktop())
	if _, err := s.Sample(image.Pt(0, 0), 12); err != nil {
		t.Logf("Sample failed (expected in headless environment): %v", err)
	}
}

package model

import (
	"image/color"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := DefaultAppConfig()
	if cfg.Palette != Blue || cfg.BlinkSpeed != Normal || cfg.CaptureArea != Size12 || cfg.LedSize != Medium {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestPresetTables(t *testing.T) {
	if got := Slow.Period(); got != 800*time.Millisecond {
		t.Errorf("Slow period = %v", got)
	}
	if got := Normal.Period(); got != 450*time.Millisecond {
		t.Errorf("Normal period = %v", got)
	}
	if got := Fast.Period(); got != 200*time.Millisecond {
		t.Errorf("Fast period = %v", got)
	}
	if Size12.Side() != 12 || Size24.Side() != 24 {
		t.Errorf("capture sides = %d/%d", Size12.Side(), Size24.Side())
	}

	tests := []struct {
		size LedSize
		want LedGeometry
	}{
		{Small, LedGeometry{8, 1, 2}},
		{Medium, LedGeometry{10, 1, 3}},
		{Large, LedGeometry{14, 2, 4}},
	}
	for _, tt := range tests {
		if got := tt.size.Geometry(); got != tt.want {
			t.Errorf("%s geometry = %+v, want %+v", tt.size, got, tt.want)
		}
	}
}

func TestNamesRoundTrip(t *testing.T) {
	for _, p := range AllPalettes() {
		if got, ok := ParsePalette(p.String()); !ok || got != p {
			t.Errorf("ParsePalette(%q) = %v, %v", p.String(), got, ok)
		}
	}
	for _, b := range AllBlinkSpeeds() {
		if got, ok := ParseBlinkSpeed(b.String()); !ok || got != b {
			t.Errorf("ParseBlinkSpeed(%q) = %v, %v", b.String(), got, ok)
		}
	}
	for _, a := range AllCaptureAreas() {
		if got, ok := ParseCaptureArea(a.String()); !ok || got != a {
			t.Errorf("ParseCaptureArea(%q) = %v, %v", a.String(), got, ok)
		}
	}
	for _, s := range AllLedSizes() {
		if got, ok := ParseLedSize(s.String()); !ok || got != s {
			t.Errorf("ParseLedSize(%q) = %v, %v", s.String(), got, ok)
		}
	}
	if _, ok := ParsePalette("Purple"); ok {
		t.Error("expected unknown palette to fail")
	}
}

func TestRingDerivation(t *testing.T) {
	if got, want := Blue.Ring(), (color.RGBA{80, 200, 255, 255}); got != want {
		t.Errorf("Blue ring = %v, want %v", got, want)
	}
	if got, want := Yellow.Ring(), (color.RGBA{255, 255, 80, 255}); got != want {
		t.Errorf("Yellow ring = %v, want %v", got, want)
	}
	for _, p := range AllPalettes() {
		g := p.Glow()
		on := p.Colors().On
		if g.A != GlowAlpha || g.R != on.R || g.G != on.G || g.B != on.B {
			t.Errorf("%s glow = %v", p, g)
		}
	}
}

func TestOutOfRangeFallsBack(t *testing.T) {
	if Palette(42).Colors() != Blue.Colors() {
		t.Error("unknown palette should use Blue colors")
	}
	if BlinkSpeed(-1).Period() != Normal.Period() {
		t.Error("unknown blink speed should use Normal period")
	}
	if CaptureArea(9).Side() != 12 {
		t.Error("unknown capture area should use 12")
	}
	if Palette(42).Valid() || BlinkSpeed(-1).Valid() || CaptureArea(2).Valid() || LedSize(3).Valid() {
		t.Error("out-of-range values reported valid")
	}
	if !Green.Valid() || !Fast.Valid() || !Size24.Valid() || !Large.Valid() {
		t.Error("in-range values reported invalid")
	}
}

func TestBaselineSide(t *testing.T) {
	var b *Baseline
	if b.Side() != 0 {
		t.Error("nil baseline side should be 0")
	}
}

// Package model holds the user-selectable presets, the persisted AppConfig
// record and the committed Baseline capture.
package model

import (
	"image"
	"image/color"
	"time"
)

// Palette selects the LED colors.
type Palette int

const (
	Blue Palette = iota
	Red
	Yellow
	Green
)

// BlinkSpeed selects the on/off phase period.
type BlinkSpeed int

const (
	Slow BlinkSpeed = iota
	Normal
	Fast
)

// CaptureArea selects the side length of the watched square.
type CaptureArea int

const (
	Size12 CaptureArea = iota
	Size24
)

// LedSize selects the LED geometry.
type LedSize int

const (
	Small LedSize = iota
	Medium
	Large
)

// PaletteColors is the fixed on/off pair for a palette. Ring and glow tints
// are derived from On.
type PaletteColors struct {
	On  color.RGBA
	Off color.RGBA
}

// LedGeometry is the pixel geometry of one LED size preset.
type LedGeometry struct {
	Diameter    int
	RingWidth   int
	GlowPadding int
}

type paletteEntry struct {
	name   string
	colors PaletteColors
}

type blinkEntry struct {
	name   string
	period time.Duration
}

type areaEntry struct {
	name string
	side int
}

type ledEntry struct {
	name     string
	geometry LedGeometry
}

var palettes = []paletteEntry{
	Blue:   {"Blue", PaletteColors{On: rgb(0, 120, 255), Off: rgb(25, 45, 85)}},
	Red:    {"Red", PaletteColors{On: rgb(255, 45, 45), Off: rgb(85, 25, 25)}},
	Yellow: {"Yellow", PaletteColors{On: rgb(255, 200, 0), Off: rgb(85, 70, 20)}},
	Green:  {"Green", PaletteColors{On: rgb(40, 220, 80), Off: rgb(20, 70, 35)}},
}

var blinkSpeeds = []blinkEntry{
	Slow:   {"Slow", 800 * time.Millisecond},
	Normal: {"Normal", 450 * time.Millisecond},
	Fast:   {"Fast", 200 * time.Millisecond},
}

var captureAreas = []areaEntry{
	Size12: {"Size12", 12},
	Size24: {"Size24", 24},
}

var ledSizes = []ledEntry{
	Small:  {"Small", LedGeometry{Diameter: 8, RingWidth: 1, GlowPadding: 2}},
	Medium: {"Medium", LedGeometry{Diameter: 10, RingWidth: 1, GlowPadding: 3}},
	Large:  {"Large", LedGeometry{Diameter: 14, RingWidth: 2, GlowPadding: 4}},
}

func rgb(r, g, b uint8) color.RGBA { return color.RGBA{R: r, G: g, B: b, A: 255} }

// Colors returns the palette's on/off pair. Unknown values map to Blue.
func (p Palette) Colors() PaletteColors {
	if p < 0 || int(p) >= len(palettes) {
		return palettes[Blue].colors
	}
	return palettes[p].colors
}

// Ring is the on-color brightened by 80 per channel.
func (p Palette) Ring() color.RGBA {
	on := p.Colors().On
	return color.RGBA{R: brighten(on.R), G: brighten(on.G), B: brighten(on.B), A: 255}
}

// Glow is the on-color at the halo alpha, non-premultiplied.
func (p Palette) Glow() color.NRGBA {
	on := p.Colors().On
	return color.NRGBA{R: on.R, G: on.G, B: on.B, A: GlowAlpha}
}

// GlowAlpha is the halo opacity.
const GlowAlpha = 100

func brighten(c uint8) uint8 {
	if v := int(c) + 80; v < 255 {
		return uint8(v)
	}
	return 255
}

func (p Palette) String() string {
	if p < 0 || int(p) >= len(palettes) {
		return "Unknown"
	}
	return palettes[p].name
}

// Period returns the blink phase length.
func (b BlinkSpeed) Period() time.Duration {
	if b < 0 || int(b) >= len(blinkSpeeds) {
		return blinkSpeeds[Normal].period
	}
	return blinkSpeeds[b].period
}

func (b BlinkSpeed) String() string {
	if b < 0 || int(b) >= len(blinkSpeeds) {
		return "Unknown"
	}
	return blinkSpeeds[b].name
}

// Side returns the watched square's side in pixels.
func (a CaptureArea) Side() int {
	if a < 0 || int(a) >= len(captureAreas) {
		return captureAreas[Size12].side
	}
	return captureAreas[a].side
}

func (a CaptureArea) String() string {
	if a < 0 || int(a) >= len(captureAreas) {
		return "Unknown"
	}
	return captureAreas[a].name
}

// Geometry returns the LED's diameter, ring width and glow padding.
func (s LedSize) Geometry() LedGeometry {
	if s < 0 || int(s) >= len(ledSizes) {
		return ledSizes[Medium].geometry
	}
	return ledSizes[s].geometry
}

func (s LedSize) String() string {
	if s < 0 || int(s) >= len(ledSizes) {
		return "Unknown"
	}
	return ledSizes[s].name
}

func (p Palette) Valid() bool     { return p >= 0 && int(p) < len(palettes) }
func (b BlinkSpeed) Valid() bool  { return b >= 0 && int(b) < len(blinkSpeeds) }
func (a CaptureArea) Valid() bool { return a >= 0 && int(a) < len(captureAreas) }
func (s LedSize) Valid() bool     { return s >= 0 && int(s) < len(ledSizes) }

// ParsePalette looks up a palette by its persisted name.
func ParsePalette(name string) (Palette, bool) {
	for i, e := range palettes {
		if e.name == name {
			return Palette(i), true
		}
	}
	return Blue, false
}

// ParseBlinkSpeed looks up a blink speed by its persisted name.
func ParseBlinkSpeed(name string) (BlinkSpeed, bool) {
	for i, e := range blinkSpeeds {
		if e.name == name {
			return BlinkSpeed(i), true
		}
	}
	return Normal, false
}

// ParseCaptureArea looks up a capture area by its persisted name.
func ParseCaptureArea(name string) (CaptureArea, bool) {
	for i, e := range captureAreas {
		if e.name == name {
			return CaptureArea(i), true
		}
	}
	return Size12, false
}

// ParseLedSize looks up an LED size by its persisted name.
func ParseLedSize(name string) (LedSize, bool) {
	for i, e := range ledSizes {
		if e.name == name {
			return LedSize(i), true
		}
	}
	return Medium, false
}

func AllPalettes() []Palette {
	out := make([]Palette, len(palettes))
	for i := range palettes {
		out[i] = Palette(i)
	}
	return out
}

func AllBlinkSpeeds() []BlinkSpeed {
	out := make([]BlinkSpeed, len(blinkSpeeds))
	for i := range blinkSpeeds {
		out[i] = BlinkSpeed(i)
	}
	return out
}

func AllCaptureAreas() []CaptureArea {
	out := make([]CaptureArea, len(captureAreas))
	for i := range captureAreas {
		out[i] = CaptureArea(i)
	}
	return out
}

func AllLedSizes() []LedSize {
	out := make([]LedSize, len(ledSizes))
	for i := range ledSizes {
		out[i] = LedSize(i)
	}
	return out
}

// AppConfig is the user-visible settings record.
type AppConfig struct {
	Palette     Palette
	BlinkSpeed  BlinkSpeed
	CaptureArea CaptureArea
	LedSize     LedSize
}

// DefaultAppConfig returns Blue/Normal/Size12/Medium.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Palette:     Blue,
		BlinkSpeed:  Normal,
		CaptureArea: Size12,
		LedSize:     Medium,
	}
}

// Baseline is a committed reference capture. Image has its origin at (0,0)
// and must not be mutated after commit.
type Baseline struct {
	Image  *image.RGBA
	Anchor image.Point
}

// Side returns the baseline's width, or 0 when there is no image.
func (b *Baseline) Side() int {
	if b == nil || b.Image == nil {
		return 0
	}
	return b.Image.Bounds().Dx()
}

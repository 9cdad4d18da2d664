// Package indicator ties the capture machine, the LED renderer, the overlay
// surface and persistence together. All methods run on the event loop
// goroutine; every setting change is applied and persisted within the same
// call.
package indicator

import (
	"errors"
	"fmt"
	"image"
	"log"
	"time"

	"any-indicator/src/compositor"
	"any-indicator/src/model"
	"any-indicator/src/monitor"
	"any-indicator/src/overlay"
	"any-indicator/src/store"
)

var (
	ErrNoBaseline  = errors.New("no baseline captured")
	ErrNoClipboard = errors.New("clipboard unavailable")
)

// Persister saves the settings record and baseline.
type Persister interface {
	Save(cfg model.AppConfig, baseline *model.Baseline) error
}

// Clipboard receives exported baselines and watched points.
type Clipboard interface {
	WriteText(text string) error
	WriteImage(png []byte) error
}

type Options struct {
	CaptureDelay    time.Duration
	CompareInterval time.Duration
	Clipboard       Clipboard
}

type Indicator struct {
	cfg     model.AppConfig
	machine *monitor.Machine
	surface compositor.Surface
	store   Persister
	clip    Clipboard

	blinkOn bool
	exited  bool

	// OnBaselineCaptured fires once per committed baseline.
	OnBaselineCaptured func(raster *image.RGBA, anchor image.Point)
	// OnBlinkPeriodChanged fires when the blink speed preset changes.
	OnBlinkPeriodChanged func(period time.Duration)
	// OnConfigChanged fires after any setting change has been applied.
	OnConfigChanged func(cfg model.AppConfig)
}

// New builds an indicator from loaded state. A baseline that does not match
// the configured capture area is dropped and the indicator starts Idle.
func New(cfg model.AppConfig, baseline *model.Baseline, p monitor.Pointer, s monitor.Sampler, surface compositor.Surface, st Persister, opts Options) *Indicator {
	m := monitor.New(p, s, monitor.Options{
		CaptureSize:     cfg.CaptureArea.Side(),
		CaptureDelay:    opts.CaptureDelay,
		CompareInterval: opts.CompareInterval,
	})
	if m.Restore(baseline) {
		log.Printf("indicator: monitoring restored baseline at %v", baseline.Anchor)
	}
	ind := &Indicator{
		cfg:     cfg,
		machine: m,
		surface: surface,
		store:   st,
		clip:    opts.Clipboard,
		blinkOn: true,
	}
	ind.present()
	return ind
}

func (ind *Indicator) Config() model.AppConfig    { return ind.cfg }
func (ind *Indicator) Mode() monitor.Mode         { return ind.machine.Mode() }
func (ind *Indicator) Visible() bool              { return ind.machine.Visible() }
func (ind *Indicator) Baseline() *model.Baseline  { return ind.machine.Baseline() }
func (ind *Indicator) BlinkOn() bool              { return ind.blinkOn }
func (ind *Indicator) BlinkPeriod() time.Duration { return ind.cfg.BlinkSpeed.Period() }
func (ind *Indicator) Exited() bool               { return ind.exited }

// Poll runs one fine-grained tick: button edges, countdown expiry and the
// throttled compare.
func (ind *Indicator) Poll(now time.Duration) {
	if ind.exited {
		return
	}
	u := ind.machine.Tick(now)
	if u.Committed != nil {
		ind.persist()
		if ind.OnBaselineCaptured != nil {
			ind.OnBaselineCaptured(u.Committed.Image, u.Committed.Anchor)
		}
	}
	if u.VisibilityChanged && ind.machine.Visible() {
		ind.blinkOn = true
	}
	if u.Redraw() {
		ind.present()
	}
}

// Blink flips the LED phase.
func (ind *Indicator) Blink(time.Duration) {
	if ind.exited {
		return
	}
	ind.blinkOn = !ind.blinkOn
	if ind.machine.Visible() {
		ind.present()
	}
}

// ArmCapture waits for the next click to pick the watched point.
func (ind *Indicator) ArmCapture() {
	if ind.exited {
		return
	}
	ind.machine.Arm()
	ind.present()
}

func (ind *Indicator) SetPalette(p model.Palette) {
	if ind.exited || !p.Valid() {
		return
	}
	ind.cfg.Palette = p
	ind.changed()
}

func (ind *Indicator) SetBlinkSpeed(b model.BlinkSpeed) {
	if ind.exited || !b.Valid() {
		return
	}
	ind.cfg.BlinkSpeed = b
	if ind.OnBlinkPeriodChanged != nil {
		ind.OnBlinkPeriodChanged(b.Period())
	}
	ind.changed()
}

// SetCaptureArea changes the watched square's size. A different size
// discards the baseline.
func (ind *Indicator) SetCaptureArea(a model.CaptureArea) {
	if ind.exited || !a.Valid() {
		return
	}
	ind.cfg.CaptureArea = a
	ind.machine.SetCaptureSize(a.Side())
	ind.changed()
}

func (ind *Indicator) SetLedSize(s model.LedSize) {
	if ind.exited || !s.Valid() {
		return
	}
	ind.cfg.LedSize = s
	ind.changed()
}

// RequestExit persists state, hides the LED and releases the surface. Only
// the first call has any effect.
func (ind *Indicator) RequestExit() {
	if ind.exited {
		return
	}
	ind.persist()
	if err := ind.surface.Present(overlay.Hidden(), overlay.TopLeft(ind.machine.Anchor())); err != nil {
		log.Printf("indicator: hide on exit failed: %v", err)
	}
	if err := ind.surface.Close(); err != nil {
		log.Printf("indicator: close surface: %v", err)
	}
	ind.exited = true
	log.Printf("indicator: stopped")
}

// CopyBaseline puts the committed baseline on the clipboard as PNG.
func (ind *Indicator) CopyBaseline() error {
	b := ind.machine.Baseline()
	if b == nil {
		return ErrNoBaseline
	}
	if ind.clip == nil {
		return ErrNoClipboard
	}
	data, err := store.EncodePNG(b.Image)
	if err != nil {
		return fmt.Errorf("encode baseline: %w", err)
	}
	if err := ind.clip.WriteImage(data); err != nil {
		return fmt.Errorf("copy baseline: %w", err)
	}
	return nil
}

// CopyWatchedPoint puts the watched point on the clipboard as "x,y".
func (ind *Indicator) CopyWatchedPoint() error {
	b := ind.machine.Baseline()
	if b == nil {
		return ErrNoBaseline
	}
	if ind.clip == nil {
		return ErrNoClipboard
	}
	if err := ind.clip.WriteText(fmt.Sprintf("%d,%d", b.Anchor.X, b.Anchor.Y)); err != nil {
		return fmt.Errorf("copy watched point: %w", err)
	}
	return nil
}

func (ind *Indicator) changed() {
	ind.persist()
	ind.present()
	if ind.OnConfigChanged != nil {
		ind.OnConfigChanged(ind.cfg)
	}
}

func (ind *Indicator) persist() {
	if ind.store == nil {
		return
	}
	if err := ind.store.Save(ind.cfg, ind.machine.Baseline()); err != nil {
		log.Printf("store: save failed: %v", err)
	}
}

func (ind *Indicator) present() {
	frame := overlay.Render(ind.cfg.LedSize, ind.cfg.Palette, ind.blinkOn, ind.machine.Visible())
	if err := ind.surface.Present(frame, overlay.TopLeft(ind.machine.Anchor())); err != nil {
		log.Printf("indicator: present failed: %v", err)
	}
}

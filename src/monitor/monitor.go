// Package monitor implements the capture lifecycle of the watched region:
// Idle -> Armed -> Pending -> Monitoring.
//
// A Machine is not safe for concurrent use. It is owned by the event loop
// goroutine and driven by Tick with a monotonic timestamp.
package monitor

import (
	"image"
	"log"
	"time"

	"any-indicator/src/detect"
	"any-indicator/src/model"
)

const (
	DefaultCaptureDelay    = 2000 * time.Millisecond
	DefaultCompareInterval = 120 * time.Millisecond
)

// Mode is the machine state.
type Mode int

const (
	Idle Mode = iota
	Armed
	Pending
	Monitoring
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	case Pending:
		return "pending"
	case Monitoring:
		return "monitoring"
	default:
		return "unknown"
	}
}

// Pointer reports the cursor position and the primary button level.
type Pointer interface {
	Position() image.Point
	PrimaryDown() bool
}

// Sampler captures the size×size square around a point.
type Sampler interface {
	Sample(at image.Point, size int) (*image.RGBA, error)
}

type Options struct {
	CaptureSize     int
	CaptureDelay    time.Duration
	CompareInterval time.Duration
}

// Update describes what a Tick changed.
type Update struct {
	// Committed is set on the tick a new baseline was taken.
	Committed *model.Baseline
	// VisibilityChanged is set when the LED was shown or hidden.
	VisibilityChanged bool
	// Moved is set when the anchor moved while visible.
	Moved bool
	// Compared is set when a capture+compare actually ran.
	Compared bool
}

// Redraw reports whether the overlay needs presenting.
func (u Update) Redraw() bool { return u.VisibilityChanged || u.Moved }

type Machine struct {
	pointer Pointer
	sampler Sampler
	opts    Options

	mode     Mode
	baseline *model.Baseline

	pendingAt       image.Point
	pendingDeadline time.Duration

	buttonDown  bool
	lastCompare time.Duration
	compared    bool

	visible bool
	anchor  image.Point
}

// New creates an idle machine. Zero option values take the defaults.
func New(p Pointer, s Sampler, opts Options) *Machine {
	if opts.CaptureSize <= 0 {
		opts.CaptureSize = model.Size12.Side()
	}
	if opts.CaptureDelay <= 0 {
		opts.CaptureDelay = DefaultCaptureDelay
	}
	if opts.CompareInterval <= 0 {
		opts.CompareInterval = DefaultCompareInterval
	}
	return &Machine{pointer: p, sampler: s, opts: opts}
}

func (m *Machine) Mode() Mode                { return m.mode }
func (m *Machine) Visible() bool             { return m.visible }
func (m *Machine) Anchor() image.Point       { return m.anchor }
func (m *Machine) Baseline() *model.Baseline { return m.baseline }
func (m *Machine) CaptureSize() int          { return m.opts.CaptureSize }

// Pending returns the recorded click point and commit deadline while
// counting down.
func (m *Machine) Pending() (image.Point, time.Duration, bool) {
	if m.mode != Pending {
		return image.Point{}, 0, false
	}
	return m.pendingAt, m.pendingDeadline, true
}

// Arm waits for the next primary-button press. Any pending capture is
// abandoned. An existing baseline is kept until a new one commits but is no
// longer compared.
func (m *Machine) Arm() {
	m.mode = Armed
	m.pendingAt = image.Point{}
	m.pendingDeadline = 0
	m.visible = false
	// A button still held from the click that armed us is not an edge.
	m.buttonDown = m.pointer.PrimaryDown()
	log.Printf("monitor: armed, waiting for click")
}

// SetCaptureSize changes the watched square's side. A different size
// destroys the baseline and returns to Idle.
func (m *Machine) SetCaptureSize(n int) {
	if n <= 0 || n == m.opts.CaptureSize {
		return
	}
	m.opts.CaptureSize = n
	m.baseline = nil
	m.mode = Idle
	m.visible = false
	m.compared = false
	log.Printf("monitor: capture size now %d, baseline discarded", n)
}

// Restore installs a persisted baseline and starts monitoring it. A baseline
// whose size does not match the configured capture size is ignored.
func (m *Machine) Restore(b *model.Baseline) bool {
	if b == nil || b.Image == nil {
		return false
	}
	r := b.Image.Bounds()
	if r.Dx() != m.opts.CaptureSize || r.Dy() != m.opts.CaptureSize {
		log.Printf("monitor: ignoring %dx%d baseline, capture size is %d", r.Dx(), r.Dy(), m.opts.CaptureSize)
		return false
	}
	m.baseline = b
	m.mode = Monitoring
	m.visible = false
	m.compared = false
	return true
}

// Tick advances the machine to now.
func (m *Machine) Tick(now time.Duration) Update {
	var u Update

	down := m.pointer.PrimaryDown()
	pressed := down && !m.buttonDown
	m.buttonDown = down

	switch m.mode {
	case Armed:
		if pressed {
			m.pendingAt = m.pointer.Position()
			m.pendingDeadline = now + m.opts.CaptureDelay
			m.mode = Pending
			log.Printf("monitor: click at %v, capturing in %v", m.pendingAt, m.opts.CaptureDelay)
		}
	case Pending:
		if now >= m.pendingDeadline {
			u.Committed = m.commit()
		}
	case Monitoring:
		u = m.monitor(now)
	}
	return u
}

func (m *Machine) commit() *model.Baseline {
	img, err := m.sampler.Sample(m.pendingAt, m.opts.CaptureSize)
	if err != nil {
		log.Printf("monitor: baseline capture at %v failed, retrying: %v", m.pendingAt, err)
		return nil
	}
	b := &model.Baseline{Image: img, Anchor: m.pendingAt}
	m.baseline = b
	m.pendingAt = image.Point{}
	m.pendingDeadline = 0
	m.mode = Monitoring
	m.visible = false
	m.compared = false
	log.Printf("monitor: baseline captured at %v (%dx%d)", b.Anchor, m.opts.CaptureSize, m.opts.CaptureSize)
	return b
}

func (m *Machine) monitor(now time.Duration) Update {
	var u Update

	if !m.compared || now-m.lastCompare >= m.opts.CompareInterval {
		cur, err := m.sampler.Sample(m.baseline.Anchor, m.opts.CaptureSize)
		if err != nil {
			log.Printf("monitor: sample failed: %v", err)
		} else {
			m.lastCompare = now
			m.compared = true
			u.Compared = true
			changed := detect.Changed(m.baseline.Image, cur)
			if changed != m.visible {
				m.visible = changed
				u.VisibilityChanged = true
				if changed {
					m.anchor = m.pointer.Position()
				}
			}
		}
	}

	if m.visible && !u.VisibilityChanged {
		if p := m.pointer.Position(); p != m.anchor {
			m.anchor = p
			u.Moved = true
		}
	}
	return u
}

// Package input owns the global input hook. One gohook event pump feeds the
// arm-capture hotkey and the hook-based pointer tracker.
package input

import (
	"image"
	"log"
	"sync"

	gohook "github.com/robotn/gohook"
)

// primaryButton is libuiohook's MOUSE_BUTTON1.
const primaryButton = 1

type binding struct {
	hotkey *Hotkey
	fn     func()
}

// Hook fans global input events out to hotkeys and the pointer tracker.
type Hook struct {
	mu       sync.Mutex
	bindings []binding
	tracker  *Tracker
	started  bool
}

func NewHook() *Hook {
	return &Hook{tracker: &Tracker{}}
}

// Tracker returns the pointer state maintained from hook events.
func (h *Hook) Tracker() *Tracker { return h.tracker }

// OnHotkey registers fn for combo. fn runs on the hook goroutine and must
// not block.
func (h *Hook) OnHotkey(combo string, fn func()) error {
	hk, err := ParseHotkey(combo)
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.bindings = append(h.bindings, binding{hotkey: hk, fn: fn})
	h.mu.Unlock()
	log.Printf("input: hotkey %s registered", combo)
	return nil
}

// Start launches the event pump. Calling it twice is a no-op.
func (h *Hook) Start() {
	h.mu.Lock()
	if h.started {
		h.mu.Unlock()
		return
	}
	h.started = true
	h.mu.Unlock()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("PANIC in input hook goroutine: %v", r)
			}
		}()
		evChan := gohook.Start()
		if evChan == nil {
			log.Printf("ERROR: gohook.Start() returned nil channel")
			return
		}
		for ev := range evChan {
			h.dispatch(ev)
		}
		log.Printf("input: event channel closed")
	}()
}

// Stop ends the event pump.
func (h *Hook) Stop() {
	h.mu.Lock()
	started := h.started
	h.started = false
	h.mu.Unlock()
	if started {
		gohook.End()
	}
}

func (h *Hook) dispatch(ev gohook.Event) {
	switch ev.Kind {
	case gohook.KeyDown, gohook.KeyHold, gohook.KeyUp:
		var fire []func()
		h.mu.Lock()
		for _, b := range h.bindings {
			if b.hotkey.Feed(ev) && b.fn != nil {
				fire = append(fire, b.fn)
			}
		}
		h.mu.Unlock()
		for _, fn := range fire {
			fn()
		}
	default:
		h.tracker.observe(ev)
	}
}

// Tracker is a pointer built from hook events. It satisfies
// monitor.Pointer.
type Tracker struct {
	mu   sync.Mutex
	pos  image.Point
	down bool
}

func (t *Tracker) Position() image.Point {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pos
}

func (t *Tracker) PrimaryDown() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.down
}

// observe follows gohook's naming: a press arrives as MouseHold, a release
// as MouseDown, and a completed click as MouseUp.
func (t *Tracker) observe(ev gohook.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch ev.Kind {
	case gohook.MouseMove, gohook.MouseDrag:
		t.pos = image.Pt(int(ev.X), int(ev.Y))
	case gohook.MouseHold:
		t.pos = image.Pt(int(ev.X), int(ev.Y))
		if ev.Button == primaryButton {
			t.down = true
		}
	case gohook.MouseDown, gohook.MouseUp:
		if ev.Button == primaryButton {
			t.down = false
		}
	}
}

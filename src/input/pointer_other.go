//go:build !windows

package input

import "any-indicator/src/monitor"

// NewPointer returns the pointer source for this platform: the hook's own
// tracker.
func NewPointer(h *Hook) monitor.Pointer { return h.Tracker() }

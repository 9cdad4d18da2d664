//go:build !windows

package compositor

import "log"

// New returns an in-memory surface; native layered windows exist only on
// Windows.
func New(name string) (Surface, error) {
	log.Printf("compositor: no native overlay on this platform, %s is headless", name)
	return NewHeadless(name), nil
}

// PumpMessages is a no-op without a native window.
func PumpMessages() {}

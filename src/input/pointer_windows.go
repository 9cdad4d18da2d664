//go:build windows

package input

import (
	"image"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"

	"any-indicator/src/monitor"
)

const (
	vkLButton    = 0x01
	vkRButton    = 0x02
	smSwapButton = 23
)

var procGetAsyncKeyState = windows.NewLazySystemDLL("user32.dll").NewProc("GetAsyncKeyState")

// cursor polls the live cursor and button state, so it never misses an
// edge the hook thread has not delivered yet.
type cursor struct{}

// NewPointer returns the pointer source for this platform. On Windows the
// cursor is polled directly and the hook is only used for hotkeys.
func NewPointer(*Hook) monitor.Pointer { return cursor{} }

func (cursor) Position() image.Point {
	var pt win.POINT
	if !win.GetCursorPos(&pt) {
		return image.Point{}
	}
	return image.Pt(int(pt.X), int(pt.Y))
}

// PrimaryDown honors swapped mouse buttons.
func (cursor) PrimaryDown() bool {
	vk := uintptr(vkLButton)
	if win.GetSystemMetrics(smSwapButton) != 0 {
		vk = vkRButton
	}
	r, _, _ := procGetAsyncKeyState.Call(vk)
	return r&0x8000 != 0
}

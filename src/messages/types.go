package messages

import "any-indicator/src/model"

// Message is the base interface for all commands posted to the event loop
type Message interface {
	Type() string
}

// MessageType constants for type identification
const (
	TypeArmCapture       = "ArmCapture"
	TypeSetPalette       = "SetPalette"
	TypeSetBlinkSpeed    = "SetBlinkSpeed"
	TypeSetCaptureArea   = "SetCaptureArea"
	TypeSetLedSize       = "SetLedSize"
	TypeCopyBaseline     = "CopyBaseline"
	TypeCopyWatchedPoint = "CopyWatchedPoint"
	TypeRequestExit      = "RequestExit"
)

// ArmCapture - sent by the tray or the hotkey to wait for the next click
type ArmCapture struct {
	Source string // "tray" or "hotkey"
}

func (m ArmCapture) Type() string { return TypeArmCapture }

// SetPalette - sent by the tray when a color is picked
type SetPalette struct {
	Palette model.Palette
}

func (m SetPalette) Type() string { return TypeSetPalette }

// SetBlinkSpeed - sent by the tray when a blink speed is picked
type SetBlinkSpeed struct {
	Speed model.BlinkSpeed
}

func (m SetBlinkSpeed) Type() string { return TypeSetBlinkSpeed }

// SetCaptureArea - sent by the tray; discards the current baseline
type SetCaptureArea struct {
	Area model.CaptureArea
}

func (m SetCaptureArea) Type() string { return TypeSetCaptureArea }

// SetLedSize - sent by the tray when an LED size is picked
type SetLedSize struct {
	Size model.LedSize
}

func (m SetLedSize) Type() string { return TypeSetLedSize }

// CopyBaseline - copy the committed baseline to the clipboard as PNG
type CopyBaseline struct{}

func (m CopyBaseline) Type() string { return TypeCopyBaseline }

// CopyWatchedPoint - copy the watched point to the clipboard as "x,y"
type CopyWatchedPoint struct{}

func (m CopyWatchedPoint) Type() string { return TypeCopyWatchedPoint }

// RequestExit - persist state and stop the loop
type RequestExit struct {
	Reason string
}

func (m RequestExit) Type() string { return TypeRequestExit }

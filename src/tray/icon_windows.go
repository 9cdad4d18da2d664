//go:build windows

package tray

// The Windows tray loads icons from ICO data.
func platformIcon(pngData []byte, side int) []byte { return wrapICO(pngData, side) }

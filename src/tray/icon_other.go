//go:build !windows

package tray

func platformIcon(pngData []byte, _ int) []byte { return pngData }

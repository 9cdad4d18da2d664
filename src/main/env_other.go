//go:build !windows

package main

import (
	"log"

	"any-indicator/src/screenshot"
)

func enableDPIAwareness() {}

func logMonitorConfiguration() {
	b, err := screenshot.NewDesktop().Bounds()
	if err != nil {
		log.Printf("MONITOR: desktop bounds unavailable: %v", err)
		return
	}
	log.Printf("MONITOR: Virtual screen - %v", b)
}

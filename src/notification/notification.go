package notification

import (
	"log"
	"unicode/utf8"
)

const maxMessageLen = 400

// Info shows a modal informational box. It blocks until dismissed, so call
// it off the event loop goroutine.
func Info(title, message string) {
	message = truncate(message)
	log.Printf("%s: %s", title, message)
	if err := showMessageBox(title, message, false); err != nil {
		log.Printf("Failed to show notification: %v", err)
	}
}

// ShowBlockingError shows a modal error box and waits for it to be dismissed.
func ShowBlockingError(title, message string) {
	message = truncate(message)
	log.Printf("%s: %s", title, message)
	if err := showMessageBox(title, message, true); err != nil {
		log.Printf("Failed to show error dialog: %v", err)
	}
}

func truncate(s string) string {
	if len(s) <= maxMessageLen {
		return s
	}
	cut := maxMessageLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

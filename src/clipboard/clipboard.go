package clipboard

import (
	"errors"
	"fmt"
	"sync"

	"golang.design/x/clipboard"
)

var (
	writeMu sync.Mutex
	ready   bool
)

// ErrUnavailable is returned by writes when Init failed or was not called.
var ErrUnavailable = errors.New("clipboard not initialized")

func Init() error {
	writeMu.Lock()
	defer writeMu.Unlock()
	if err := clipboard.Init(); err != nil {
		return fmt.Errorf("clipboard init: %w", err)
	}
	ready = true
	return nil
}

// WriteText performs a mutex-guarded text write.
func WriteText(text string) error {
	return write(clipboard.FmtText, []byte(text))
}

// WriteImage puts PNG-encoded image data on the clipboard.
func WriteImage(png []byte) error {
	return write(clipboard.FmtImage, png)
}

func write(f clipboard.Format, data []byte) error {
	writeMu.Lock()
	defer writeMu.Unlock()
	if !ready {
		return ErrUnavailable
	}
	clipboard.Write(f, data)
	return nil
}

// System adapts the package functions to the indicator's clipboard
// interface.
type System struct{}

func (System) WriteText(text string) error { return WriteText(text) }
func (System) WriteImage(png []byte) error { return WriteImage(png) }

package input

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	gohook "github.com/robotn/gohook"
)

// keyRawcodes maps normalized key names to Windows virtual key codes.
// Modifiers carry both their left and right variants.
var keyRawcodes = map[string][]uint16{
	"ctrl":      {162, 163}, // VK_LCONTROL, VK_RCONTROL
	"alt":       {164, 165}, // VK_LMENU, VK_RMENU
	"shift":     {160, 161}, // VK_LSHIFT, VK_RSHIFT
	"cmd":       {91, 92},   // VK_LWIN, VK_RWIN
	"space":     {32},
	"enter":     {13},
	"esc":       {27},
	"tab":       {9},
	"backspace": {8},
	"delete":    {46},
	"insert":    {45},
	"home":      {36},
	"end":       {35},
	"pageup":    {33},
	"pagedown":  {34},
	"left":      {37},
	"up":        {38},
	"right":     {39},
	"down":      {40},
}

var keyAliases = map[string]string{
	"control": "ctrl",
	"win":     "cmd",
	"super":   "cmd",
	"return":  "enter",
	"escape":  "esc",
	"del":     "delete",
	"ins":     "insert",
	"pgup":    "pageup",
	"pgdn":    "pagedown",
}

func init() {
	for c := 'a'; c <= 'z'; c++ {
		keyRawcodes[string(c)] = []uint16{uint16('A' + (c - 'a'))}
	}
	for c := '0'; c <= '9'; c++ {
		keyRawcodes[string(c)] = []uint16{uint16(c)}
	}
	for i := 1; i <= 24; i++ {
		keyRawcodes["f"+strconv.Itoa(i)] = []uint16{uint16(111 + i)} // VK_F1 = 112
	}
}

// parseHotkey converts a hotkey string like "Ctrl+Alt+w" to normalized key names
func parseHotkey(combo string) []string {
	var keys []string
	for _, part := range strings.Split(strings.ToLower(combo), "+") {
		part = strings.TrimSpace(part)
		if alias, ok := keyAliases[part]; ok {
			part = alias
		}
		keys = append(keys, part)
	}
	return keys
}

// keyNameToRawcodes returns nil for unknown names.
func keyNameToRawcodes(name string) []uint16 {
	name = strings.ToLower(strings.TrimSpace(name))
	if alias, ok := keyAliases[name]; ok {
		name = alias
	}
	return keyRawcodes[name]
}

type keyState struct {
	name     string
	rawcodes []uint16
	pressed  bool
}

// Hotkey tracks the pressed state of one key combination.
type Hotkey struct {
	combo string
	keys  []keyState
}

// ParseHotkey builds a matcher for combo. Every key must be known.
func ParseHotkey(combo string) (*Hotkey, error) {
	if strings.TrimSpace(combo) == "" {
		return nil, fmt.Errorf("empty hotkey")
	}
	h := &Hotkey{combo: combo}
	for _, name := range parseHotkey(combo) {
		codes := keyNameToRawcodes(name)
		if len(codes) == 0 {
			return nil, fmt.Errorf("hotkey %q: unknown key %q", combo, name)
		}
		h.keys = append(h.keys, keyState{name: name, rawcodes: codes})
	}
	return h, nil
}

func (h *Hotkey) String() string { return h.combo }

// Feed updates key state from one hook event and reports whether the whole
// combination has just been completed. States reset after a match so a held
// combination fires once.
func (h *Hotkey) Feed(ev gohook.Event) bool {
	switch ev.Kind {
	case gohook.KeyDown, gohook.KeyHold:
		h.set(ev.Rawcode, true)
		for i := range h.keys {
			if !h.keys[i].pressed {
				return false
			}
		}
		for i := range h.keys {
			h.keys[i].pressed = false
		}
		log.Printf("hotkey: %s detected", h.combo)
		return true
	case gohook.KeyUp:
		h.set(ev.Rawcode, false)
	}
	return false
}

func (h *Hotkey) set(rawcode uint16, pressed bool) {
	for i := range h.keys {
		for _, rc := range h.keys[i].rawcodes {
			if rc == rawcode {
				h.keys[i].pressed = pressed
				break
			}
		}
	}
}

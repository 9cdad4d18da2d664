// Package tray is the system tray menu. Menu clicks are turned into
// commands posted to the event loop; check marks follow the applied
// configuration.
package tray

import (
	"fmt"
	"log"
	"sync"

	"github.com/getlantern/systray"

	"any-indicator/src/messages"
	"any-indicator/src/model"
	"any-indicator/src/notification"
)

const appTitle = "AnyIndicator"

type Config struct {
	Tooltip string
	Hotkey  string
	Initial model.AppConfig
	// Post delivers a command to the event loop without blocking.
	Post func(messages.Message) bool
	// OnExit runs after the tray has shut down.
	OnExit func()
}

// option is one entry of a radio-style submenu.
type option struct {
	label string
	msg   messages.Message
	item  *systray.MenuItem
}

type group struct {
	title   string
	options []option
	current func(model.AppConfig) int
}

type Tray struct {
	cfg    Config
	groups []*group

	mu      sync.Mutex
	applied model.AppConfig
	ready   bool
}

func New(cfg Config) (*Tray, error) {
	if cfg.Post == nil {
		return nil, fmt.Errorf("tray: Post callback is required")
	}
	if cfg.Tooltip == "" {
		cfg.Tooltip = appTitle
	}
	return &Tray{cfg: cfg, groups: buildGroups(), applied: cfg.Initial}, nil
}

func buildGroups() []*group {
	var palettes, speeds, areas, sizes []option
	for _, p := range model.AllPalettes() {
		palettes = append(palettes, option{label: p.String(), msg: messages.SetPalette{Palette: p}})
	}
	for _, s := range model.AllBlinkSpeeds() {
		speeds = append(speeds, option{label: s.String(), msg: messages.SetBlinkSpeed{Speed: s}})
	}
	for _, a := range model.AllCaptureAreas() {
		side := a.Side()
		areas = append(areas, option{label: fmt.Sprintf("%d×%d", side, side), msg: messages.SetCaptureArea{Area: a}})
	}
	for _, s := range model.AllLedSizes() {
		sizes = append(sizes, option{label: s.String(), msg: messages.SetLedSize{Size: s}})
	}
	return []*group{
		{title: "Color", options: palettes, current: func(c model.AppConfig) int { return int(c.Palette) }},
		{title: "Blink speed", options: speeds, current: func(c model.AppConfig) int { return int(c.BlinkSpeed) }},
		{title: "Capture area", options: areas, current: func(c model.AppConfig) int { return int(c.CaptureArea) }},
		{title: "LED size", options: sizes, current: func(c model.AppConfig) int { return int(c.LedSize) }},
	}
}

// Run blocks until the tray exits.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Destroy removes the tray icon.
func (t *Tray) Destroy() {
	systray.Quit()
}

func (t *Tray) UpdateTooltip(text string) {
	t.mu.Lock()
	ready := t.ready
	t.mu.Unlock()
	if ready {
		systray.SetTooltip(text)
	}
}

// SetConfig moves the check marks to cfg's values and recolors the icon.
func (t *Tray) SetConfig(cfg model.AppConfig) {
	t.mu.Lock()
	prev := t.applied
	t.applied = cfg
	ready := t.ready
	t.mu.Unlock()
	if !ready {
		return
	}
	t.syncChecks(cfg)
	if prev.Palette != cfg.Palette {
		t.setIcon(cfg.Palette)
	}
}

func (t *Tray) onReady() {
	t.mu.Lock()
	cfg := t.applied
	t.mu.Unlock()

	t.setIcon(cfg.Palette)
	systray.SetTitle(appTitle)
	systray.SetTooltip(t.cfg.Tooltip)

	armLabel := "Arm capture"
	if t.cfg.Hotkey != "" {
		armLabel = fmt.Sprintf("Arm capture (%s)", t.cfg.Hotkey)
	}
	mArm := systray.AddMenuItem(armLabel, "Click the point to watch after arming")
	systray.AddSeparator()
	for _, g := range t.groups {
		parent := systray.AddMenuItem(g.title, "")
		for i := range g.options {
			g.options[i].item = parent.AddSubMenuItem(g.options[i].label, "")
		}
	}
	systray.AddSeparator()
	mCopyBaseline := systray.AddMenuItem("Copy baseline image", "Copy the captured region as PNG")
	mCopyPoint := systray.AddMenuItem("Copy watched point", "Copy the watched point as x,y")
	mAbout := systray.AddMenuItem("About", "")
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Exit", "Save settings and exit")

	t.mu.Lock()
	t.ready = true
	cfg = t.applied
	t.mu.Unlock()
	t.syncChecks(cfg)

	for _, g := range t.groups {
		for _, o := range g.options {
			go t.forward(o.item, o.msg)
		}
	}
	go t.forward(mArm, messages.ArmCapture{Source: "tray"})
	go t.forward(mCopyBaseline, messages.CopyBaseline{})
	go t.forward(mCopyPoint, messages.CopyWatchedPoint{})
	go func() {
		for range mAbout.ClickedCh {
			notification.Info(appTitle, aboutText(t.cfg.Hotkey))
		}
	}()
	go func() {
		<-mQuit.ClickedCh
		log.Printf("tray: exit clicked")
		t.cfg.Post(messages.RequestExit{Reason: "tray"})
	}()
}

func (t *Tray) onExit() {
	log.Printf("tray: exited")
	if t.cfg.OnExit != nil {
		t.cfg.OnExit()
	}
}

func (t *Tray) forward(item *systray.MenuItem, msg messages.Message) {
	for range item.ClickedCh {
		if !t.cfg.Post(msg) {
			log.Printf("tray: %s dropped", msg.Type())
		}
	}
}

func (t *Tray) syncChecks(cfg model.AppConfig) {
	for _, g := range t.groups {
		sel := g.current(cfg)
		for i, o := range g.options {
			if o.item == nil {
				continue
			}
			if i == sel {
				o.item.Check()
			} else {
				o.item.Uncheck()
			}
		}
	}
}

func (t *Tray) setIcon(p model.Palette) {
	icon, err := Icon(p)
	if err != nil {
		log.Printf("tray: icon: %v", err)
		return
	}
	systray.SetIcon(icon)
}

func aboutText(hotkey string) string {
	arm := "Use \"Arm capture\" in this menu"
	if hotkey != "" {
		arm = fmt.Sprintf("Press %s or use \"Arm capture\"", hotkey)
	}
	return fmt.Sprintf("%s watches a small screen region and lights an LED next to the cursor when it changes.\n\n"+
		"%s, then click the point to watch. The region is captured two seconds later.", appTitle, arm)
}

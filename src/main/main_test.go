package main

import (
	"image"
	"strings"
	"testing"

	"any-indicator/src/config"
)

func TestNewRootCmdParsesFlags(t *testing.T) {
	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	if err := cmd.ParseFlags([]string{"--env", "/tmp/x.env", "--state-dir", "/tmp/state", "--log-file"}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	if opts.envPath != "/tmp/x.env" || opts.stateDir != "/tmp/state" || !opts.fileLogging {
		t.Fatalf("opts = %+v", opts)
	}
	if !cmd.Flags().Changed("log-file") {
		t.Fatal("log-file not marked as changed")
	}
}

func TestRootCmdRejectsArgs(t *testing.T) {
	cmd := newRootCmd(&mainOptions{})
	cmd.SetArgs([]string{"extra"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for positional args")
	}
}

func TestResolveStateDir(t *testing.T) {
	dir, err := resolveStateDir(&config.Config{StateDir: "/srv/state"})
	if err != nil || dir != "/srv/state" {
		t.Fatalf("dir = %q, err = %v", dir, err)
	}
	dir, err = resolveStateDir(&config.Config{})
	if err != nil {
		t.Logf("no user config dir here: %v", err)
		return
	}
	if !strings.HasSuffix(dir, "AnyIndicator") {
		t.Errorf("default dir = %q", dir)
	}
}

func TestTooltips(t *testing.T) {
	if got := defaultTooltip("Ctrl+Alt+W"); !strings.Contains(got, "Ctrl+Alt+W") {
		t.Errorf("tooltip = %q", got)
	}
	if got := defaultTooltip(""); strings.Contains(got, "press") {
		t.Errorf("tooltip = %q", got)
	}
	if got := watchingTooltip(image.Pt(-5, 12)); !strings.HasSuffix(got, "watching -5,12") {
		t.Errorf("tooltip = %q", got)
	}
}

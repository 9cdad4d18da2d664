package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"any-indicator/src/clipboard"
	"any-indicator/src/compositor"
	"any-indicator/src/config"
	"any-indicator/src/eventloop"
	"any-indicator/src/indicator"
	"any-indicator/src/input"
	"any-indicator/src/logutil"
	"any-indicator/src/messages"
	"any-indicator/src/model"
	"any-indicator/src/notification"
	"any-indicator/src/popup"
	"any-indicator/src/screenshot"
	"any-indicator/src/store"
	"any-indicator/src/tray"
)

type mainOptions struct {
	envPath     string
	stateDir    string
	fileLogging bool
}

func main() {
	// Ensure DPI awareness before creating any windows or querying metrics
	enableDPIAwareness()

	// The overlay windows belong to this thread, and the event loop pumps
	// their messages from it.
	runtime.LockOSThread()

	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "any-indicator",
		Short:         "Light an LED next to the cursor when a watched screen region changes",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(*opts, cmd.Flags().Changed("log-file"))
		},
	}
	cmd.Flags().StringVar(&opts.envPath, "env", "", "Path to a .env file (overrides the lookup next to the executable)")
	cmd.Flags().StringVar(&opts.stateDir, "state-dir", "", "Directory for settings.json and baseline.png")
	cmd.Flags().BoolVar(&opts.fileLogging, "log-file", false, "Write any_indicator.log (overrides ENABLE_FILE_LOGGING)")
	return cmd
}

// resolveStateDir picks the flag, then STATE_DIR, then the per-user default.
func resolveStateDir(cfg *config.Config) (string, error) {
	if cfg.StateDir != "" {
		return cfg.StateDir, nil
	}
	return store.DefaultDir()
}

func run(opts mainOptions, logFlagSet bool) error {
	cfg, err := config.LoadWithOptions(config.LoadOptions{
		EnvPathOverride:  opts.envPath,
		StateDirOverride: opts.stateDir,
	})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if logFlagSet {
		cfg.EnableFileLogging = opts.fileLogging
	}
	stateDir, err := resolveStateDir(cfg)
	if err != nil {
		return err
	}

	logutil.Setup(cfg.EnableFileLogging, stateDir)
	for _, w := range cfg.Warnings {
		log.Printf("config: %s", w)
	}
	logMonitorConfiguration()

	st := store.New(stateDir)
	appCfg, baseline, report := st.Load()
	logLoadReport(st, report)

	var clip indicator.Clipboard
	if err := clipboard.Init(); err != nil {
		log.Printf("Clipboard unavailable, copy commands disabled: %v", err)
	} else {
		clip = clipboard.System{}
	}

	hook := input.NewHook()
	pointer := input.NewPointer(hook)
	sampler := screenshot.NewSampler(screenshot.NewDesktop())

	ledSurface, err := compositor.New("AnyIndicator LED")
	if err != nil {
		notification.ShowBlockingError("AnyIndicator", fmt.Sprintf("Cannot create the indicator overlay: %v", err))
		return fmt.Errorf("failed to create overlay surface: %w", err)
	}
	previewSurface, err := compositor.New("AnyIndicator preview")
	if err != nil {
		log.Printf("Preview surface unavailable: %v", err)
		previewSurface = compositor.NewHeadless("preview")
	}
	defer previewSurface.Close()

	ind := indicator.New(appCfg, baseline, pointer, sampler, compositor.Dedup(ledSurface), st, indicator.Options{
		CaptureDelay:    cfg.CaptureDelay,
		CompareInterval: cfg.CompareInterval,
		Clipboard:       clip,
	})
	preview := popup.New(previewSurface, cfg.PreviewScale, cfg.PreviewDuration)

	loop := eventloop.New(ind, eventloop.Options{PollInterval: cfg.PollInterval})
	loop.AddPoller(preview.Tick)
	loop.AddPoller(func(time.Duration) { compositor.PumpMessages() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	idleTooltip := defaultTooltip(cfg.ArmHotkey)
	initialTooltip := idleTooltip
	if b := ind.Baseline(); b != nil {
		initialTooltip = watchingTooltip(b.Anchor)
	}
	trayIcon, err := tray.New(tray.Config{
		Tooltip: initialTooltip,
		Hotkey:  cfg.ArmHotkey,
		Initial: appCfg,
		Post:    loop.Post,
		OnExit:  cancel,
	})
	if err != nil {
		return err
	}
	go trayIcon.Run()
	defer trayIcon.Destroy()

	ind.OnBaselineCaptured = func(raster *image.RGBA, anchor image.Point) {
		preview.Show(raster, anchor)
		trayIcon.UpdateTooltip(watchingTooltip(anchor))
	}
	ind.OnConfigChanged = func(c model.AppConfig) {
		trayIcon.SetConfig(c)
		if ind.Baseline() == nil {
			trayIcon.UpdateTooltip(idleTooltip)
		}
	}
	loop.SetNotifier(func(msg string) {
		log.Printf("notify: %s", msg)
		trayIcon.UpdateTooltip("AnyIndicator - " + msg)
	})

	if cfg.ArmHotkey != "" {
		if err := hook.OnHotkey(cfg.ArmHotkey, func() {
			loop.Post(messages.ArmCapture{Source: "hotkey"})
		}); err != nil {
			log.Printf("Hotkey disabled: %v", err)
		}
	}
	hook.Start()
	defer hook.Stop()

	// Handle SIGINT/SIGTERM
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		cancel()
	}()

	log.Printf("AnyIndicator started: state in %s, hotkey %q", stateDir, cfg.ArmHotkey)
	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("event loop stopped: %v", err)
	}
	return nil
}

func logLoadReport(st *store.Store, r store.LoadReport) {
	settings, _ := st.Paths()
	switch {
	case r.Err != nil:
		log.Printf("store: %v, using defaults", r.Err)
	case !r.Found:
		log.Printf("store: no settings at %s, using defaults", settings)
	}
	if len(r.Fallbacks) > 0 {
		log.Printf("store: defaults used for %v", r.Fallbacks)
	}
	if r.BaselineErr != nil {
		log.Printf("store: baseline not restored: %v", r.BaselineErr)
	}
}

func defaultTooltip(hotkey string) string {
	if hotkey == "" {
		return "AnyIndicator - arm capture from this menu"
	}
	return fmt.Sprintf("AnyIndicator - press %s to arm capture", hotkey)
}

func watchingTooltip(p image.Point) string {
	return fmt.Sprintf("AnyIndicator - watching %d,%d", p.X, p.Y)
}

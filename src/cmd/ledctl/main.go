package main

import (
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/image/draw"

	"any-indicator/src/config"
	"any-indicator/src/model"
	"any-indicator/src/overlay"
	"any-indicator/src/screenshot"
	"any-indicator/src/store"
)

type rootOptions struct {
	stateDir string
	envPath  string
	verbose  bool
}

type renderOptions struct {
	palette string
	size    string
	off     bool
	hidden  bool
	scale   int
	output  string
}

type sampleOptions struct {
	x, y   int
	area   string
	output string
}

type showOptions struct {
	jsonOutput bool
}

func main() {
	if err := runWithArgs(os.Args, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runWithArgs(args []string, out io.Writer) error {
	if len(args) == 0 {
		args = []string{"ledctl"}
	}
	cmd := newRootCmd(&rootOptions{}, out)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *rootOptions, out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ledctl",
		Short:         "Inspect and exercise AnyIndicator state from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.verbose {
				log.SetOutput(os.Stderr)
			} else {
				log.SetOutput(io.Discard)
			}
		},
	}
	cmd.SetOut(out)
	cmd.PersistentFlags().StringVar(&opts.stateDir, "state-dir", "", "State directory (default: STATE_DIR or the per-user config dir)")
	cmd.PersistentFlags().StringVar(&opts.envPath, "env", "", "Path to a .env file")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")

	cmd.AddCommand(newRenderCmd(), newShowCmd(opts), newResetCmd(opts), newSampleCmd())
	return cmd
}

func newRenderCmd() *cobra.Command {
	o := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Write one LED frame as PNG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(*o, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&o.palette, "palette", model.Blue.String(), "Palette: "+names(model.AllPalettes()))
	cmd.Flags().StringVar(&o.size, "size", model.Medium.String(), "LED size: "+names(model.AllLedSizes()))
	cmd.Flags().BoolVar(&o.off, "off", false, "Render the off phase")
	cmd.Flags().BoolVar(&o.hidden, "hidden", false, "Render the hidden 1x1 frame")
	cmd.Flags().IntVar(&o.scale, "scale", 1, "Nearest-neighbor enlargement factor")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "Output PNG path ('-' for stdout)")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func newShowCmd(root *rootOptions) *cobra.Command {
	o := &showOptions{}
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the persisted settings and what had to fall back to defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(*root)
			if err != nil {
				return err
			}
			return runShow(st, o.jsonOutput, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&o.jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newResetCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete persisted settings and baseline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(*root)
			if err != nil {
				return err
			}
			if err := st.Reset(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleared %s\n", st.Dir())
			return nil
		},
	}
}

func newSampleCmd() *cobra.Command {
	o := &sampleOptions{}
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Capture one watched-region sample from the live desktop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			area, ok := model.ParseCaptureArea(o.area)
			if !ok {
				return fmt.Errorf("unknown capture area %q (want %s)", o.area, names(model.AllCaptureAreas()))
			}
			img, err := screenshot.NewSampler(screenshot.NewDesktop()).Sample(image.Pt(o.x, o.y), area.Side())
			if err != nil {
				return fmt.Errorf("sample failed: %w", err)
			}
			return writePNG(img, o.output, cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVar(&o.x, "x", 0, "Watched point X")
	cmd.Flags().IntVar(&o.y, "y", 0, "Watched point Y")
	cmd.Flags().StringVar(&o.area, "area", model.Size12.String(), "Capture area: "+names(model.AllCaptureAreas()))
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "Output PNG path ('-' for stdout)")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func runRender(o renderOptions, out io.Writer) error {
	palette, ok := model.ParsePalette(o.palette)
	if !ok {
		return fmt.Errorf("unknown palette %q (want %s)", o.palette, names(model.AllPalettes()))
	}
	size, ok := model.ParseLedSize(o.size)
	if !ok {
		return fmt.Errorf("unknown LED size %q (want %s)", o.size, names(model.AllLedSizes()))
	}
	if o.scale < 1 || o.scale > 64 {
		return fmt.Errorf("scale must be between 1 and 64, got %d", o.scale)
	}
	frame := overlay.Render(size, palette, !o.off, !o.hidden)
	if o.scale > 1 {
		b := frame.Bounds()
		big := image.NewRGBA(image.Rect(0, 0, b.Dx()*o.scale, b.Dy()*o.scale))
		draw.NearestNeighbor.Scale(big, big.Bounds(), frame, b, draw.Src, nil)
		frame = big
	}
	return writePNG(frame, o.output, out)
}

// Settings is the show --json document.
type Settings struct {
	Dir         string   `json:"dir"`
	Found       bool     `json:"found"`
	Palette     string   `json:"palette"`
	BlinkSpeed  string   `json:"blinkSpeed"`
	CaptureArea string   `json:"captureArea"`
	LedSize     string   `json:"ledSize"`
	HasBaseline bool     `json:"hasBaselineCapture"`
	WatchedX    *int     `json:"watchedX,omitempty"`
	WatchedY    *int     `json:"watchedY,omitempty"`
	Fallbacks   []string `json:"fallbacks,omitempty"`
	Problems    []string `json:"problems,omitempty"`
}

func runShow(st *store.Store, jsonOutput bool, out io.Writer) error {
	cfg, baseline, report := st.Load()
	s := Settings{
		Dir:         st.Dir(),
		Found:       report.Found,
		Palette:     cfg.Palette.String(),
		BlinkSpeed:  cfg.BlinkSpeed.String(),
		CaptureArea: cfg.CaptureArea.String(),
		LedSize:     cfg.LedSize.String(),
		HasBaseline: baseline != nil,
		Fallbacks:   report.Fallbacks,
	}
	if baseline != nil {
		x, y := baseline.Anchor.X, baseline.Anchor.Y
		s.WatchedX, s.WatchedY = &x, &y
	}
	if report.Err != nil {
		s.Problems = append(s.Problems, report.Err.Error())
	}
	if report.BaselineErr != nil {
		s.Problems = append(s.Problems, "baseline: "+report.BaselineErr.Error())
	}

	if jsonOutput {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(s); err != nil {
			return fmt.Errorf("failed to encode JSON output: %w", err)
		}
		return nil
	}

	fmt.Fprintf(out, "state dir:    %s\n", s.Dir)
	if !s.Found {
		fmt.Fprintln(out, "(no settings saved, showing defaults)")
	}
	fmt.Fprintf(out, "palette:      %s\n", s.Palette)
	fmt.Fprintf(out, "blink speed:  %s (%v)\n", s.BlinkSpeed, cfg.BlinkSpeed.Period())
	fmt.Fprintf(out, "capture area: %s\n", s.CaptureArea)
	fmt.Fprintf(out, "LED size:     %s\n", s.LedSize)
	if baseline != nil {
		fmt.Fprintf(out, "baseline:     %dx%d at %d,%d\n", baseline.Side(), baseline.Side(), baseline.Anchor.X, baseline.Anchor.Y)
	} else {
		fmt.Fprintln(out, "baseline:     none")
	}
	if len(s.Fallbacks) > 0 {
		fmt.Fprintf(out, "defaulted:    %s\n", strings.Join(s.Fallbacks, ", "))
	}
	for _, p := range s.Problems {
		fmt.Fprintf(out, "problem:      %s\n", p)
	}
	return nil
}

func openStore(opts rootOptions) (*store.Store, error) {
	cfg, err := config.LoadWithOptions(config.LoadOptions{
		EnvPathOverride:  opts.envPath,
		StateDirOverride: opts.stateDir,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	dir := cfg.StateDir
	if dir == "" {
		if dir, err = store.DefaultDir(); err != nil {
			return nil, err
		}
	}
	return store.New(dir), nil
}

func writePNG(img image.Image, path string, stdout io.Writer) error {
	if path == "-" {
		return png.Encode(stdout, img)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}

func names[T fmt.Stringer](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = v.String()
	}
	return strings.Join(parts, "|")
}

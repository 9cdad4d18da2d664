// Package store persists the settings record and the baseline raster.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"any-indicator/src/model"
)

const (
	SettingsFile = "settings.json"
	BaselineFile = "baseline.png"
	appDirName   = "AnyIndicator"
)

// ErrNoBaseline is reported when the record says a baseline exists but the
// raster is missing.
var ErrNoBaseline = errors.New("baseline raster missing")

// record is the on-disk form. Fields are decoded one by one so a bad value
// only resets itself.
type record struct {
	Palette            string `json:"palette"`
	BlinkSpeed         string `json:"blinkSpeed"`
	CaptureArea        string `json:"captureArea"`
	LedSize            string `json:"ledSize"`
	WatchedX           int    `json:"watchedX"`
	WatchedY           int    `json:"watchedY"`
	HasBaselineCapture bool   `json:"hasBaselineCapture"`
}

// LoadReport describes what Load had to fall back on.
type LoadReport struct {
	// Found is false when no settings file existed.
	Found bool
	// Fallbacks lists record fields that were missing or invalid.
	Fallbacks []string
	// BaselineErr says why a baseline was not restored, if one was expected.
	BaselineErr error
	// Err is a read or parse failure of the whole record.
	Err error
}

// Store reads and writes state under one directory.
type Store struct {
	dir string
}

func New(dir string) *Store {
	return &Store{dir: dir}
}

// DefaultDir returns the per-user state directory.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user config dir: %w", err)
	}
	return filepath.Join(base, appDirName), nil
}

func (s *Store) Dir() string { return s.dir }

// Paths returns the settings and baseline file paths.
func (s *Store) Paths() (settings, baseline string) {
	return filepath.Join(s.dir, SettingsFile), filepath.Join(s.dir, BaselineFile)
}

// Load never fails: anything unreadable falls back to defaults and is
// described in the report.
func (s *Store) Load() (model.AppConfig, *model.Baseline, LoadReport) {
	cfg := model.DefaultAppConfig()
	var report LoadReport
	settingsPath, baselinePath := s.Paths()

	data, err := os.ReadFile(settingsPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			report.Err = fmt.Errorf("read settings: %w", err)
		}
		return cfg, nil, report
	}
	report.Found = true

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		report.Err = fmt.Errorf("parse settings: %w", err)
		report.Fallbacks = []string{"palette", "blinkSpeed", "captureArea", "ledSize", "watchedX", "watchedY", "hasBaselineCapture"}
		return cfg, nil, report
	}

	fallback := func(name string) { report.Fallbacks = append(report.Fallbacks, name) }

	if v, ok := enumField(fields, "palette", model.ParsePalette); ok {
		cfg.Palette = v
	} else {
		fallback("palette")
	}
	if v, ok := enumField(fields, "blinkSpeed", model.ParseBlinkSpeed); ok {
		cfg.BlinkSpeed = v
	} else {
		fallback("blinkSpeed")
	}
	if v, ok := enumField(fields, "captureArea", model.ParseCaptureArea); ok {
		cfg.CaptureArea = v
	} else {
		fallback("captureArea")
	}
	if v, ok := enumField(fields, "ledSize", model.ParseLedSize); ok {
		cfg.LedSize = v
	} else {
		fallback("ledSize")
	}

	var anchor image.Point
	anchorOK := true
	if !decodeField(fields, "watchedX", &anchor.X) {
		fallback("watchedX")
		anchorOK = false
	}
	if !decodeField(fields, "watchedY", &anchor.Y) {
		fallback("watchedY")
		anchorOK = false
	}
	var hasBaseline bool
	if !decodeField(fields, "hasBaselineCapture", &hasBaseline) {
		fallback("hasBaselineCapture")
	}
	if !hasBaseline {
		return cfg, nil, report
	}
	if !anchorOK {
		report.BaselineErr = errors.New("watched point missing")
		return cfg, nil, report
	}

	img, err := readPNG(baselinePath)
	if err != nil {
		report.BaselineErr = err
		return cfg, nil, report
	}
	side := cfg.CaptureArea.Side()
	if b := img.Bounds(); b.Dx() != side || b.Dy() != side {
		report.BaselineErr = fmt.Errorf("baseline is %dx%d, capture area is %d", b.Dx(), b.Dy(), side)
		return cfg, nil, report
	}
	return cfg, &model.Baseline{Image: img, Anchor: anchor}, report
}

// Save writes the record atomically and the baseline raster when there is
// one. A stale raster is removed when there is none. The first error is
// returned; later steps still run.
func (s *Store) Save(cfg model.AppConfig, baseline *model.Baseline) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	settingsPath, baselinePath := s.Paths()
	hasBaseline := baseline != nil && baseline.Image != nil

	rec := record{
		Palette:            cfg.Palette.String(),
		BlinkSpeed:         cfg.BlinkSpeed.String(),
		CaptureArea:        cfg.CaptureArea.String(),
		LedSize:            cfg.LedSize.String(),
		HasBaselineCapture: hasBaseline,
	}
	if hasBaseline {
		rec.WatchedX, rec.WatchedY = baseline.Anchor.X, baseline.Anchor.Y
	}

	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if hasBaseline {
		var buf bytes.Buffer
		if err := png.Encode(&buf, baseline.Image); err != nil {
			keep(fmt.Errorf("encode baseline: %w", err))
		} else {
			keep(writeAtomic(baselinePath, buf.Bytes()))
		}
	} else if err := os.Remove(baselinePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		keep(fmt.Errorf("remove stale baseline: %w", err))
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		keep(fmt.Errorf("encode settings: %w", err))
	} else {
		keep(writeAtomic(settingsPath, append(data, '\n')))
	}
	return firstErr
}

// Reset deletes both files.
func (s *Store) Reset() error {
	settingsPath, baselinePath := s.Paths()
	var firstErr error
	for _, p := range []string{settingsPath, baselinePath} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) && firstErr == nil {
			firstErr = fmt.Errorf("remove %s: %w", filepath.Base(p), err)
		}
	}
	if firstErr == nil {
		log.Printf("store: cleared state in %s", s.dir)
	}
	return firstErr
}

// EncodePNG is the encoding used for persisted and exported baselines.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func enumField[T any](fields map[string]json.RawMessage, name string, parse func(string) (T, bool)) (T, bool) {
	var zero T
	var s string
	if !decodeField(fields, name, &s) {
		return zero, false
	}
	return parse(s)
}

func decodeField(fields map[string]json.RawMessage, name string, dst any) bool {
	raw, ok := fields[name]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func readPNG(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoBaseline
		}
		return nil, fmt.Errorf("open baseline: %w", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode baseline: %w", err)
	}
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba, nil
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out, nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", filepath.Base(path), err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

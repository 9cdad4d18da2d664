package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvPathEnvVar    = "ANY_INDICATOR_ENV"
	DefaultArmHotkey = "Ctrl+Alt+W"

	defaultPollMS    = 10
	defaultCompareMS = 120
	defaultDelayMS   = 2000
	defaultPreviewMS = 1500
	defaultScale     = 6
	maxPreviewScale  = 16
)

type LoadOptions struct {
	EnvPathOverride  string
	StateDirOverride string
}

type Config struct {
	EnableFileLogging bool
	ArmHotkey         string
	StateDir          string
	PollInterval      time.Duration
	CompareInterval   time.Duration
	CaptureDelay      time.Duration
	PreviewDuration   time.Duration
	PreviewScale      int
	// EnvPath is the .env file that was applied, if any.
	EnvPath string
	// Warnings lists values that were rejected in favor of defaults.
	Warnings []string
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Load configuration from sources in priority order:
	// 1) .env in the application (executable) directory
	// 2) If not found, ANY_INDICATOR_ENV as a path to a config file
	envPath := strings.TrimSpace(opts.EnvPathOverride)
	if envPath == "" {
		envPath = resolveEnvPath()
	}
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", envPath, err)
		}
	}

	cfg := &Config{
		EnableFileLogging: strings.ToLower(os.Getenv("ENABLE_FILE_LOGGING")) == "true",
		ArmHotkey:         resolveHotkey(),
		StateDir:          strings.TrimSpace(os.Getenv("STATE_DIR")),
		EnvPath:           envPath,
	}
	if override := strings.TrimSpace(opts.StateDirOverride); override != "" {
		cfg.StateDir = override
	}

	cfg.PollInterval = cfg.millis("POLL_INTERVAL_MS", defaultPollMS, 1, 1000)
	cfg.CompareInterval = cfg.millis("COMPARE_INTERVAL_MS", defaultCompareMS, 1, 60000)
	cfg.CaptureDelay = cfg.millis("CAPTURE_DELAY_MS", defaultDelayMS, 0, 60000)
	cfg.PreviewDuration = cfg.millis("PREVIEW_MS", defaultPreviewMS, 0, 60000)
	cfg.PreviewScale = cfg.integer("PREVIEW_SCALE", defaultScale, 1, maxPreviewScale)

	// The compare throttle is only meaningful when polling is finer.
	if cfg.PollInterval >= cfg.CompareInterval {
		cfg.warn("POLL_INTERVAL_MS %d must be below COMPARE_INTERVAL_MS %d", cfg.PollInterval.Milliseconds(), cfg.CompareInterval.Milliseconds())
		cfg.PollInterval = defaultPollMS * time.Millisecond
		cfg.CompareInterval = defaultCompareMS * time.Millisecond
	}
	// A zero delay means the next poll commits.
	if cfg.CaptureDelay == 0 {
		cfg.CaptureDelay = time.Nanosecond
	}
	return cfg, nil
}

func resolveEnvPath() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}

	execDir := filepath.Dir(execPath)
	exeEnv := filepath.Join(execDir, ".env")
	if _, err := os.Stat(exeEnv); err == nil {
		return exeEnv
	}

	if alt := os.Getenv(EnvPathEnvVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

// resolveHotkey returns "" when ARM_HOTKEY is set empty or to "none".
func resolveHotkey() string {
	v, ok := os.LookupEnv("ARM_HOTKEY")
	if !ok {
		return DefaultArmHotkey
	}
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, "none") {
		return ""
	}
	return v
}

func (c *Config) integer(key string, def, lo, hi int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < lo || n > hi {
		c.warn("%s=%q is not an integer in [%d, %d], using %d", key, v, lo, hi, def)
		return def
	}
	return n
}

func (c *Config) millis(key string, def, lo, hi int) time.Duration {
	return time.Duration(c.integer(key, def, lo, hi)) * time.Millisecond
}

func (c *Config) warn(format string, args ...any) {
	c.Warnings = append(c.Warnings, fmt.Sprintf(format, args...))
}

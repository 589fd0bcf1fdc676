// Package config holds the engine configuration read by cmd/engine.
package config

import (
	"fmt"

	"github.com/kolkov/enginecore/internal/core/errs"
	"github.com/kolkov/enginecore/internal/logging"
	"github.com/kolkov/enginecore/internal/platform/window"
)

// Config is the full engine configuration.
type Config struct {
	Log     Log           `usage:"logging"`
	Runtime Runtime       `usage:"object runtime"`
	Window  window.Config `usage:"window"`

	HttpAddr   string `usage:"diagnostics HTTP address, empty disables it"`
	Frames     int    `usage:"frames to run before exiting, 0 runs until the window closes"`
	Version    bool   `usage:"show version and exit"`
	ShowConfig bool   `usage:"print config"`
}

// Log configures the process logger.
type Log struct {
	Enabled bool   `usage:"enable logging"`
	Level   string `usage:"debug, info, warn or error"`
	Format  string `usage:"text or json"`
	File    string `usage:"log file, empty for stderr"`
}

// Runtime configures the object runtime.
type Runtime struct {
	MemoryBudget uint64 `usage:"bytes available to tracked objects, 0 for unlimited"`
	Concurrent   bool   `usage:"guard the allocation table for multi-goroutine use"`
	TrackSites   bool   `usage:"record allocation stacks for leak reports"`
}

// Default returns the configuration used when no flags or environment
// variables override it.
func Default() Config {
	return Config{
		Log: Log{
			Enabled: true,
			Level:   "info",
			Format:  "text",
		},
		Window: window.DefaultConfig(),
		Frames: 60,
	}
}

// Validate checks every section and returns the first problem found.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return errs.OutOfRange("log level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errs.OutOfRange("log format %q", c.Log.Format)
	}
	if c.Frames < 0 {
		return errs.OutOfRange("frames %d", c.Frames)
	}
	if err := c.Window.Validate(); err != nil {
		return fmt.Errorf("config: window: %w", err)
	}
	return nil
}

// LogOptions converts the Log section for logging.New.
func (c *Config) LogOptions() (logging.Options, error) {
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return logging.Options{}, err
	}
	return logging.Options{
		Enabled: c.Log.Enabled,
		Level:   level,
		Format:  c.Log.Format,
		File:    c.Log.File,
	}, nil
}

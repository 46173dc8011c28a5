// Package config holds the explicit configuration surface of the history
// engine. There is no ambient global state: every Store is constructed
// from an Options value, one per open document.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultMaxEntries       = 50
	DefaultSnapshotInterval = 10
	DefaultMaxMemoryMB      = 500.0
	DefaultCacheBudgetMB    = 256
	DefaultBackupCount      = 3
	DefaultDeltaQuality     = 85
)

// ErrInvalidOptions wraps every validation failure.
var ErrInvalidOptions = errors.New("config: invalid options")

// Options configures one history store.
type Options struct {
	// MaxEntries caps the number of history entries (>= 1).
	MaxEntries int `yaml:"maxEntries"`

	// SnapshotInterval is the maximum number of consecutive delta entries
	// before a full snapshot is forced (>= 1). It bounds worst-case
	// replay length during reconstruction.
	SnapshotInterval int `yaml:"snapshotInterval"`

	// MaxMemoryMB is the memory budget for retained history.
	MaxMemoryMB float64 `yaml:"maxMemoryMB"`

	// DeltaFormat names the codec format for pixel deltas:
	// "zstd" (lossless, default), "png", "jpeg", or "bmp".
	DeltaFormat string `yaml:"deltaFormat"`

	// DeltaQuality applies to lossy delta formats only (1..100).
	DeltaQuality int `yaml:"deltaQuality"`

	// CacheBudgetMB bounds the shared encoded-blob cache.
	CacheBudgetMB int `yaml:"cacheBudgetMB"`

	// BackupCount is how many rotating persistence backups to keep.
	BackupCount int `yaml:"backupCount"`
}

// DefaultOptions returns the options applied when the surrounding
// application provides none.
func DefaultOptions() Options {
	return Options{
		MaxEntries:       DefaultMaxEntries,
		SnapshotInterval: DefaultSnapshotInterval,
		MaxMemoryMB:      DefaultMaxMemoryMB,
		DeltaFormat:      "zstd",
		DeltaQuality:     DefaultDeltaQuality,
		CacheBudgetMB:    DefaultCacheBudgetMB,
		BackupCount:      DefaultBackupCount,
	}
}

// Validate checks option ranges.
func (o Options) Validate() error {
	if o.MaxEntries < 1 {
		return fmt.Errorf("%w: maxEntries must be >= 1, got %d", ErrInvalidOptions, o.MaxEntries)
	}
	if o.SnapshotInterval < 1 {
		return fmt.Errorf("%w: snapshotInterval must be >= 1, got %d", ErrInvalidOptions, o.SnapshotInterval)
	}
	if o.MaxMemoryMB <= 0 {
		return fmt.Errorf("%w: maxMemoryMB must be positive, got %g", ErrInvalidOptions, o.MaxMemoryMB)
	}
	switch o.DeltaFormat {
	case "zstd", "png", "jpeg", "bmp":
	default:
		return fmt.Errorf("%w: unknown deltaFormat %q", ErrInvalidOptions, o.DeltaFormat)
	}
	if o.DeltaQuality < 1 || o.DeltaQuality > 100 {
		return fmt.Errorf("%w: deltaQuality must be in 1..100, got %d", ErrInvalidOptions, o.DeltaQuality)
	}
	if o.CacheBudgetMB < 0 {
		return fmt.Errorf("%w: cacheBudgetMB must be >= 0, got %d", ErrInvalidOptions, o.CacheBudgetMB)
	}
	if o.BackupCount < 0 {
		return fmt.Errorf("%w: backupCount must be >= 0, got %d", ErrInvalidOptions, o.BackupCount)
	}
	return nil
}

// MaxMemoryBytes returns the budget in bytes.
func (o Options) MaxMemoryBytes() int {
	return int(o.MaxMemoryMB * 1024 * 1024)
}

// Load reads options from a YAML file, filling unset fields with defaults
// and validating the result.
func Load(path string) (Options, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return Options{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	opts := DefaultOptions()
	if err := yaml.Unmarshal(raw, &opts); err != nil {
		return Options{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

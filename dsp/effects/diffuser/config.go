package diffuser

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-diffuser/dsp/core"
	"github.com/cwbudde/algo-diffuser/dsp/effects/dynamics"
)

// DefaultMaxLength is the base diffusion length baked into the delay lines
// at Init (in "milliseconds" of base line length).
const DefaultMaxLength = 5.0

// ErrInvalidConfig is returned for configurations that cannot be prepared.
var ErrInvalidConfig = errors.New("diffuser: invalid config")

// Config holds the settings fixed at Init time.
type Config struct {
	core.ProcessorConfig

	MaxLength      float64
	AttackMs       float64
	ReleaseMs      float64
	LegacySeedBias bool
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the stereo 48 kHz defaults.
func DefaultConfig() Config {
	return Config{
		ProcessorConfig: core.DefaultProcessorConfig(),
		MaxLength:       DefaultMaxLength,
		AttackMs:        dynamics.DefaultAttackMs,
		ReleaseMs:       dynamics.DefaultReleaseMs,
	}
}

// WithProcessorOptions applies sample rate, block size and channel options.
func WithProcessorOptions(opts ...core.ProcessorOption) Option {
	return func(cfg *Config) {
		for _, opt := range opts {
			if opt != nil {
				opt(&cfg.ProcessorConfig)
			}
		}
	}
}

// WithMaxLength sets the base diffusion length. Values that are not
// positive and finite are rejected by [Config.Validate].
func WithMaxLength(length float64) Option {
	return func(cfg *Config) {
		cfg.MaxLength = length
	}
}

// WithAttack sets the envelope attack time in milliseconds.
func WithAttack(ms float64) Option {
	return func(cfg *Config) {
		cfg.AttackMs = ms
	}
}

// WithRelease sets the envelope release time in milliseconds.
func WithRelease(ms float64) Option {
	return func(cfg *Config) {
		cfg.ReleaseMs = ms
	}
}

// WithLegacySeedBias selects the constant seed offsets of the original
// plugin (see [diffusion.WithLegacySeedBias]).
func WithLegacySeedBias() Option {
	return func(cfg *Config) {
		cfg.LegacySeedBias = true
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Validate reports whether cfg can be prepared.
func (c Config) Validate() error {
	switch {
	case c.SampleRate < 1 || math.IsNaN(c.SampleRate) || math.IsInf(c.SampleRate, 0):
		return fmt.Errorf("%w: sample rate %f", ErrInvalidConfig, c.SampleRate)
	case c.Channels <= 0:
		return fmt.Errorf("%w: channels %d", ErrInvalidConfig, c.Channels)
	case c.BlockSize <= 0:
		return fmt.Errorf("%w: block size %d", ErrInvalidConfig, c.BlockSize)
	case c.MaxLength <= 0 || !core.IsFinite(c.MaxLength):
		return fmt.Errorf("%w: max length %f", ErrInvalidConfig, c.MaxLength)
	case c.AttackMs <= 0 || !core.IsFinite(c.AttackMs) || c.ReleaseMs <= 0 || !core.IsFinite(c.ReleaseMs):
		return fmt.Errorf("%w: attack %f release %f", ErrInvalidConfig, c.AttackMs, c.ReleaseMs)
	}
	return nil
}

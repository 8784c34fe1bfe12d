package engine

import (
	"fmt"
	"time"

	"github.com/audionodes/native/pkg/window"
	"github.com/go-playground/validator/v10"
)

// Config is the stream format an engine runs at.
type Config struct {
	SampleRate int `json:"sample_rate" validate:"required,min=8000,max=384000"`
	BlockSize  int `json:"block_size"  validate:"required,min=1,max=8192"`
}

// DefaultConfig returns 48 kHz with 256-frame blocks.
func DefaultConfig() Config {
	return Config{SampleRate: 48000, BlockSize: 256}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration bounds.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return nil
}

// Format returns the window format shared by every node of the engine.
func (c Config) Format() window.Format {
	return window.Format{SampleRate: c.SampleRate, BlockSize: c.BlockSize}
}

// BlockDuration returns the real time one block of audio lasts.
func (c Config) BlockDuration() time.Duration {
	return time.Duration(c.BlockSize) * time.Second / time.Duration(c.SampleRate)
}

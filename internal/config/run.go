package config

import (
	"errors"
	"fmt"
	"time"
)

var errNegativeDuration = errors.New("deadline and retry delay must not be negative")

// RunConfig holds execution parameters: how scenarios run, not which ones.
type RunConfig struct {
	// Lanes is the number of pages scenarios run on concurrently.
	Lanes int

	// Deadline bounds the whole run; zero means none. Scenarios not started
	// when it passes are skipped.
	Deadline time.Duration

	// ActionTimeout bounds every page capability call.
	ActionTimeout time.Duration

	// ArtifactTimeout bounds screenshot capture and storage.
	ArtifactTimeout time.Duration

	// RetryDelay is the pause before retrying a failed navigation.
	RetryDelay time.Duration
}

// DefaultRunConfig returns a RunConfig with default values.
func DefaultRunConfig() *RunConfig {
	return &RunConfig{
		Lanes:           DefaultLanes,
		Deadline:        0,
		ActionTimeout:   60 * time.Second, // DemoQA is slow on flaky networks
		ArtifactTimeout: 5 * time.Second,
		RetryDelay:      time.Second,
	}
}

// Validate rejects non-positive lanes and timeouts.
func (c *RunConfig) Validate() error {
	if c.Lanes < 1 {
		return fmt.Errorf("lanes must be at least 1, got %d", c.Lanes) //nolint:err113 // Include value for debugging
	}

	if c.ActionTimeout <= 0 || c.ArtifactTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive: action=%s artifact=%s", c.ActionTimeout, c.ArtifactTimeout) //nolint:err113 // Include values for debugging
	}

	if c.Deadline < 0 || c.RetryDelay < 0 {
		return errNegativeDuration
	}

	return nil
}

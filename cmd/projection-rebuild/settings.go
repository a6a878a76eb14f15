package main

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// settings tune one rebuild run.
type settings struct {
	BatchSize int           `env:"PROJECTION_BATCH_SIZE" envDefault:"500"`
	Timeout   time.Duration `env:"PROJECTION_REBUILD_TIMEOUT" envDefault:"30m"`
}

func loadSettings() (settings, error) {
	var s settings
	if err := env.Parse(&s); err != nil {
		return settings{}, fmt.Errorf("parse env: %w", err)
	}
	if s.BatchSize <= 0 {
		return settings{}, fmt.Errorf("PROJECTION_BATCH_SIZE must be a positive integer")
	}
	if s.Timeout <= 0 {
		return settings{}, fmt.Errorf("PROJECTION_REBUILD_TIMEOUT must be positive")
	}
	return s, nil
}

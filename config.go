package ecs

import (
	"runtime"

	"go.uber.org/zap"
)

// worldConfig holds the options a World is built with, generalizing the
// teacher's package-level Config/Factory singleton (config.go,
// factory.go) into per-world functional options — the conventional Go
// idiom for optional constructor parameters.
type worldConfig struct {
	logger          *zap.Logger
	initialCapacity int
	workerCount     int
}

func defaultWorldConfig() worldConfig {
	return worldConfig{
		initialCapacity: 256,
		workerCount:     runtime.GOMAXPROCS(0),
	}
}

// WorldOption configures a World at construction time.
type WorldOption func(*worldConfig)

// WithLogger overrides the world's structured logger (zap.NewProduction
// by default).
func WithLogger(logger *zap.Logger) WorldOption {
	return func(c *worldConfig) { c.logger = logger }
}

// WithInitialCapacity pre-sizes the entity slot table to reduce
// reallocation during the first wave of spawns.
func WithInitialCapacity(n int) WorldOption {
	return func(c *worldConfig) {
		if n > 0 {
			c.initialCapacity = n
		}
	}
}

// WithWorkerCount caps the number of goroutines the parallel executor may
// run send-systems on concurrently. Defaults to runtime.GOMAXPROCS(0).
func WithWorkerCount(n int) WorldOption {
	return func(c *worldConfig) {
		if n > 0 {
			c.workerCount = n
		}
	}
}

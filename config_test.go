package ecs

import (
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
)

func TestWithLoggerOverridesDefault(t *testing.T) {
	logger := zap.NewNop()
	w := NewWorld(WithLogger(logger))
	if w.Logger() != logger {
		t.Fatalf("WithLogger should set World.Logger() to the supplied logger")
	}
}

func TestWithInitialCapacityIgnoresNonPositive(t *testing.T) {
	w := NewWorld(WithInitialCapacity(0))
	// should fall back to the default rather than zero-sizing the allocator.
	e := w.Spawn(qPosition{X: 1})
	if !w.Alive(e) {
		t.Fatalf("a non-positive WithInitialCapacity should not break spawning")
	}
}

func TestWithWorkerCountCapsParallelExecutor(t *testing.T) {
	w := NewWorld(WithWorkerCount(2))
	if w.cfg.workerCount != 2 {
		t.Fatalf("WithWorkerCount(2) should set cfg.workerCount = 2, got %d", w.cfg.workerCount)
	}

	var ran atomic.Int64
	systems := make([]*SystemConfig, 0, 4)
	for i := 0; i < 4; i++ {
		systems = append(systems, NewSystem("worker", nil, func(w *World, _ RunToken, lastRun Frame) Frame {
			ran.Add(1)
			return w.Frame()
		}))
	}
	exec := ParallelExecutor{}
	if err := exec.RunPhase(w, systems); err != nil {
		t.Fatalf("RunPhase returned error: %v", err)
	}
	if got := ran.Load(); got != 4 {
		t.Fatalf("expected all 4 systems to run, got %d", got)
	}
}

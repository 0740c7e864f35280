package ecs

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Executor runs one phase's systems to completion, in an order
// consistent with the phase's dependency DAG.
type Executor interface {
	RunPhase(w *World, systems []*SystemConfig) error
}

// panicError wraps a recovered panic so phase execution reports it as an
// error instead of unwinding past the caller; the phase that raised it
// aborts, and Schedule.Run/RunAll return the error without running the
// phases after it.
type panicError struct {
	recovered any
}

func (e *panicError) Error() string { return fmt.Sprintf("ecs: system panicked: %v", e.recovered) }

func runGuarded(cfg *SystemConfig, w *World, token RunToken) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{recovered: r}
		}
	}()
	cfg.lastRun = cfg.Fn(w, token, cfg.lastRun)
	return nil
}

// SequentialExecutor runs every system of a phase one at a time, in
// topological order. No locking is needed since only one system ever
// touches the world at a time.
type SequentialExecutor struct{}

func (SequentialExecutor) RunPhase(w *World, systems []*SystemConfig) error {
	d := buildDAG(systems)
	order, err := d.topoSort()
	if err != nil {
		return err
	}
	token := w.beginRun()
	defer w.endRun()
	for _, cfg := range order {
		if err := runGuarded(cfg, w, token); err != nil {
			return err
		}
	}
	return nil
}

// ParallelExecutor runs a phase's systems in dependency-respecting waves,
// dispatching send systems onto a bounded worker pool and running
// non-send systems and exclusive systems inline on the goroutine that
// called RunPhase, grounded on
// original_source/src/system/executor/parallel.rs's ExecutionContext
// (send systems on scoped threads, non-send systems drained by the
// invoking thread via a channel). golang.org/x/sync/errgroup stands in
// for the original's std::thread::scope.
type ParallelExecutor struct {
	WorkerCount int
}

func (p ParallelExecutor) RunPhase(w *World, systems []*SystemConfig) error {
	d := buildDAG(systems)
	layers, err := d.layers()
	if err != nil {
		return err
	}

	token := w.beginRun()
	defer w.endRun()

	limit := p.WorkerCount
	if limit <= 0 {
		limit = w.cfg.workerCount
	}
	if limit <= 0 {
		limit = 1
	}

	for _, layer := range layers {
		var sendSystems, inlineSystems []*SystemConfig
		for _, cfg := range layer {
			if cfg.Send && !cfg.Exclusive {
				sendSystems = append(sendSystems, cfg)
			} else {
				inlineSystems = append(inlineSystems, cfg)
			}
		}

		g, _ := errgroup.WithContext(context.Background())
		g.SetLimit(limit)
		for _, cfg := range sendSystems {
			cfg := cfg
			g.Go(func() error { return runGuarded(cfg, w, token) })
		}

		// Non-send and exclusive systems run inline: the invoking
		// goroutine is, by construction, the one that minted token.
		var inlineErr error
		for _, cfg := range inlineSystems {
			if inlineErr = runGuarded(cfg, w, token); inlineErr != nil {
				break
			}
		}

		groupErr := g.Wait()
		if inlineErr != nil {
			return inlineErr
		}
		if groupErr != nil {
			return groupErr
		}
	}
	return nil
}

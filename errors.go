package ecs

import (
	"fmt"

	"github.com/TheBitDrifter/bark"
	"go.uber.org/zap"
)

// EntityNotAliveError reports an operation against a despawned or
// never-spawned entity; callers that want absence-as-value semantics
// (spec.md §7) should check Entity liveness first rather than relying on
// this error.
type EntityNotAliveError struct {
	Entity Entity
}

func (e *EntityNotAliveError) Error() string {
	return fmt.Sprintf("ecs: entity %v is not alive", e.Entity)
}

// IndexOutOfRangeError is a fatal contract violation: a column or table
// was addressed past its length.
type IndexOutOfRangeError struct {
	Index, Length int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("ecs: index %d out of range (length %d)", e.Index, e.Length)
}

// fatal wraps err with a stack trace (the teacher's bark.AddTrace
// convention) and panics. Recovered once at the
// phase-executor boundary per spec.md §4.7/§7.
func (w *World) fatal(err error) {
	w.logger.Error("ecs: fatal contract violation", zap.Error(err))
	panic(bark.AddTrace(err))
}

package ecs

import (
	"fmt"
	"reflect"
)

// ResourceId is a dense id assigned at first registration of a resource
// type. Send and non-send resources share the same id space, but never
// the same storage map (spec.md §3).
type ResourceId uint32

// RunToken identifies "the thread that invoked run" for non-send routing
// purposes. Go has no portable goroutine-id API (see SPEC_FULL.md §5), so
// each Executor.RunPhase call mints a fresh token (World.beginRun) and
// passes it to every system of that phase, send or non-send alike.
// Non-send params check that the token they are given is the world's
// active one; the token itself does not tell the calling goroutine apart
// from a worker. Non-send systems run inline on the goroutine that called
// RunPhase because the executor routes them there.
type RunToken uint64

const NoToken RunToken = 0

// Resources is the world's singleton store: one map for thread-portable
// ("send") resources and one for "non-send" resources, which systems
// reach only through NonSendRes/NonSendResMut and their run-token check.
// No owning goroutine is recorded for a non-send resource.
type Resources struct {
	byType  map[reflect.Type]ResourceId
	names   []string
	nonSend []bool
	send    map[ResourceId]any
	pinned  map[ResourceId]any
}

func newResources() *Resources {
	return &Resources{
		byType: make(map[reflect.Type]ResourceId),
		send:   make(map[ResourceId]any),
		pinned: make(map[ResourceId]any),
	}
}

func (r *Resources) idFor(t reflect.Type, nonSend bool) ResourceId {
	if id, ok := r.byType[t]; ok {
		return id
	}
	id := ResourceId(len(r.names))
	r.byType[t] = id
	r.names = append(r.names, t.String())
	r.nonSend = append(r.nonSend, nonSend)
	return id
}

func (r *Resources) isNonSend(id ResourceId) bool { return r.nonSend[id] }

// ErrNonSendFromWrongThread is the fatal contract violation raised when a
// non-send resource is accessed (or dropped) with a run token other than
// the one minted for the current Executor.RunPhase call.
type ErrNonSendFromWrongThread struct {
	Resource string
}

func (e *ErrNonSendFromWrongThread) Error() string {
	return fmt.Sprintf("ecs: non-send resource %s accessed from a worker goroutine", e.Resource)
}

// AddResource inserts or replaces a thread-portable singleton resource.
func AddResource[R any](w *World, value R) ResourceId {
	t := reflect.TypeFor[R]()
	id := w.resources.idFor(t, false)
	w.resources.send[id] = &value
	return id
}

// AddNonSendResource inserts or replaces a non-send resource. The
// registering goroutine is not recorded; access is gated by run token.
func AddNonSendResource[R any](w *World, value R) ResourceId {
	t := reflect.TypeFor[R]()
	id := w.resources.idFor(t, true)
	w.resources.pinned[id] = &value
	return id
}

// RemoveResource deletes a send resource, returning it if present.
func RemoveResource[R any](w *World) (R, bool) {
	var zero R
	t := reflect.TypeFor[R]()
	id, ok := w.resources.byType[t]
	if !ok {
		return zero, false
	}
	v, ok := w.resources.send[id]
	if !ok {
		return zero, false
	}
	delete(w.resources.send, id)
	return *(v.(*R)), true
}

// RemoveNonSendResource deletes a non-send resource, enforcing the
// same-thread drop discipline (spec.md §5).
func (w *World) RemoveNonSendResource(id ResourceId, token RunToken) {
	if token != NoToken && token != w.currentRunToken() {
		w.fatal(&ErrNonSendFromWrongThread{Resource: w.resources.names[id]})
	}
	delete(w.resources.pinned, id)
}

// resourceIdFor fetches the id for R, reporting false if it was never
// registered.
func resourceIdFor[R any](w *World) (ResourceId, bool) {
	t := reflect.TypeFor[R]()
	id, ok := w.resources.byType[t]
	return id, ok
}

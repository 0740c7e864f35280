package ecs

// command is one deferred mutation, adapted from the teacher's
// EntityOperation (operation_queue.go): captured at record time, applied
// once the owning phase's systems have all finished.
type command func(w *World)

// Commands is a non-exclusive system param (spec.md §4.9) that queues
// entity mutations instead of applying them immediately, so a system
// that only ever issues commands never conflicts with any other system
// over world-wide access. Queued commands run in the order they were
// recorded. Buffers are flushed in the order their systems were first
// added to a schedule (World.flushCommands), not in the phase's
// topological order.
type Commands struct {
	nonExclusive
	w      *World
	queued []command
}

func (c *Commands) init(w *World) {
	c.w = w
	w.commandBuffers = append(w.commandBuffers, c)
}
func (c *Commands) access() []Access { return nil }
func (c *Commands) send() bool       { return true }

// Spawn queues the creation of one entity carrying the given components.
func (c *Commands) Spawn(components ...any) {
	c.queued = append(c.queued, func(w *World) { w.Spawn(components...) })
}

// Despawn queues the removal of e.
func (c *Commands) Despawn(e Entity) {
	c.queued = append(c.queued, func(w *World) { w.Despawn(e) })
}

// AddComponents queues attaching the given component values to e.
func (c *Commands) AddComponents(e Entity, components ...any) {
	c.queued = append(c.queued, func(w *World) { _ = w.AddComponents(e, components...) })
}

// RemoveComponent queues detaching component T from e.
func RemoveComponentCommand[T any](c *Commands, e Entity) {
	c.queued = append(c.queued, func(w *World) { _ = RemoveComponent[T](w, e) })
}

// Flush applies every queued command, in recorded order, then clears the
// queue. Called by the scheduler between phase boundaries, never by
// system code directly.
func (c *Commands) Flush() {
	for _, cmd := range c.queued {
		cmd(c.w)
	}
	c.queued = c.queued[:0]
}

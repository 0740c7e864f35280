package ecs

// pendingSpawn is one entity reserved through Spawner but not yet
// attached to its components.
type pendingSpawn struct {
	entity     Entity
	components []any
}

// Spawner is an exclusive system param: a fluent entity builder. Spawn
// and SpawnN reserve entity ids immediately, so the caller gets live
// handles right away, but defer attaching components until the owning
// phase's systems have all finished, applied from World.flushCommands
// alongside every Commands buffer (spec.md §4.9's "Spawner ... applied
// between phases", grounded on
// original_source/src/world/command.rs's Spawner::spawn, which reserves
// an Entity eagerly and pushes its Row into a pending
// Vec<(Entity, Row)> applied by the same apply() CommandBuffer uses).
// Until Flush runs, a reserved entity is alive but carries none of its
// queued components.
type Spawner struct {
	w          *World
	components []any
	pending    []pendingSpawn
}

func (s *Spawner) init(w *World) {
	s.w = w
	s.components = nil
	s.pending = nil
	w.commandBuffers = append(w.commandBuffers, s)
}
func (s *Spawner) access() []Access { return nil }
func (s *Spawner) send() bool       { return true }
func (s *Spawner) exclusive() bool  { return true }

// With queues one component value onto the entity under construction.
func (s *Spawner) With(component any) *Spawner {
	s.components = append(s.components, component)
	return s
}

// Spawn reserves an entity id for the components built so far, resets
// the builder, and returns the handle. The entity's components are not
// visible to any query until the phase boundary's Flush.
func (s *Spawner) Spawn() Entity {
	e := s.w.entities.alloc()
	s.pending = append(s.pending, pendingSpawn{entity: e, components: s.components})
	s.components = nil
	return e
}

// SpawnN reserves n entity ids, all carrying the components built so
// far, and resets the builder.
func (s *Spawner) SpawnN(n int) []Entity {
	out := make([]Entity, n)
	components := s.components
	for i := range out {
		e := s.w.entities.alloc()
		s.pending = append(s.pending, pendingSpawn{entity: e, components: components})
		out[i] = e
	}
	s.components = nil
	return out
}

// Flush attaches every reserved entity's components into its archetype
// and clears the pending list. Called by World.flushCommands once a
// phase's systems have all finished, never by system code directly.
func (s *Spawner) Flush() {
	for _, p := range s.pending {
		s.w.attachRow(p.entity, p.components)
	}
	s.pending = s.pending[:0]
}

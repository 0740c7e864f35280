/*
Package ecs provides an archetype-based Entity-Component-System runtime.

Foundry stores entities in columnar archetype tables, tracks per-component
add/modify change frames, and schedules user systems over the store with
declared read/write access so independent systems run concurrently while
conflicting ones are ordered.

Core Concepts:

  - Entity: a reusable (id, generation) handle for a game or simulation object.
  - Component: a typed value attached to an entity, stored column-wise.
  - Archetype: the set of entities sharing exactly one component-type set.
  - Query: a typed projection/filter pair used to iterate matching entities.
  - System: a scheduled function whose argument types declare its access.
  - Phase: a named, orderable, nestable group of systems.

Basic Usage:

	world := ecs.NewWorld()

	world.Spawn(Position{X: 10}, Velocity{X: 1})

	movement := ecs.NewQuery2[*Position, *Velocity](world, ecs.Write[Position](), ecs.Read[Velocity]())
	sys := ecs.NewSystem("movement", []ecs.SystemParam{ecs.QueryParam(movement)}, func(w *ecs.World, _ ecs.RunToken, lastRun ecs.Frame) ecs.Frame {
		for row := range movement.Iter(lastRun) {
			row.A.X += row.B.X
		}
		return w.Frame()
	})

	schedule := ecs.NewSchedule(world, ecs.SequentialExecutor{})
	update := schedule.AddPhase("update")
	schedule.AddSystems(update, sys)

	schedule.Run(update)
	world.Update()

Foundry is the standalone core of a larger simulation framework; the
command-line host, persistence, and networking layers are deliberately out
of scope (see SPEC_FULL.md).
*/
package ecs

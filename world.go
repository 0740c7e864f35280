package ecs

import (
	"reflect"

	"go.uber.org/zap"
)

// World exclusively owns the archetype registry, resources, entity
// allocator, and frame counter (spec.md §3). During a phase run every
// system function receives the *World directly; correctness of concurrent
// access relies on the dependency DAG, not on any lock inside World
// itself (spec.md §9).
type World struct {
	frame      Frame
	entities   *entityAllocator
	components *Components
	resources  *Resources
	registry   *Registry
	logger     *zap.Logger
	cfg        worldConfig

	runTokenCounter uint64
	activeRunToken  RunToken

	events        []swappable
	eventChannels map[reflect.Type]any

	commandBuffers []flushable
}

// flushable is implemented by Commands and Spawner: both queue world
// mutations during a phase and apply them at phase boundaries, differing
// only in whether the owning system needed exclusive World access.
type flushable interface {
	Flush()
}

// swappable is implemented by EventChannel[E]; World.Update swaps every
// registered channel's read/write buffers once per update.
type swappable interface {
	swap()
}

// NewWorld constructs an empty world ready for component registration and
// entity spawning.
func NewWorld(opts ...WorldOption) *World {
	cfg := defaultWorldConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		logger, err := zap.NewProduction()
		if err != nil {
			logger = zap.NewNop()
		}
		cfg.logger = logger
	}

	components := newComponents()
	w := &World{
		frame:         firstFrame,
		entities:      newEntityAllocator(cfg.initialCapacity),
		components:    components,
		resources:     newResources(),
		logger:        cfg.logger,
		cfg:           cfg,
		eventChannels: make(map[reflect.Type]any),
	}
	w.registry = newRegistry(components)
	return w
}

// Frame returns the world's current logical tick. Systems reading Frame
// during a phase observe the pre-increment value (spec.md §4.8).
func (w *World) Frame() Frame { return w.frame }

// Logger returns the world's structured logger.
func (w *World) Logger() *zap.Logger { return w.logger }

// Alive reports whether e refers to a currently live entity.
func (w *World) Alive(e Entity) bool { return w.entities.isAlive(e) }

// flushCommands applies and clears every registered Commands and Spawner
// buffer, in the order their owning systems were registered. Called by
// Schedule once a phase's systems have all finished (spec.md §4.9).
func (w *World) flushCommands() {
	for _, c := range w.commandBuffers {
		c.Flush()
	}
}

// Update advances the frame counter by exactly one and swaps every
// registered event channel's buffers. It is not part of any phase
// (spec.md §4.8, §9).
func (w *World) Update() {
	w.frame++
	for _, ch := range w.events {
		ch.swap()
	}
}

// Spawn creates one entity carrying the given component values, all of
// which are registered (if not already) as a side effect, mirroring the
// teacher's implicit schema.Register call in NewEntities.
func (w *World) Spawn(components ...any) Entity {
	e := w.entities.alloc()
	w.attachRow(e, components)
	return e
}

// attachRow builds an archetype row from components and inserts it for an
// already-allocated entity, migrating its location. Spawn uses this for
// an entity it just allocated; Spawner.Flush uses it for an entity
// reserved earlier in the phase, once its pending components are known
// (spawner.go).
func (w *World) attachRow(e Entity, components []any) {
	ids := make([]ComponentId, 0, len(components))
	row := newRow()
	for _, c := range components {
		id := w.components.register(reflect.TypeOf(c), nil)
		ids = append(ids, id)
		row.set(id, c, newStamp(w.frame))
	}
	archID := w.registry.getOrCreate(ids, w.components)
	arch := w.registry.Get(archID)
	r := arch.table.insertRow(e, row)
	w.entities.setLocation(e, archID, r)
}

// SpawnN creates n entities with identical initial component values,
// returning their handles.
func (w *World) SpawnN(n int, components ...any) []Entity {
	out := make([]Entity, n)
	for i := range out {
		out[i] = w.Spawn(components...)
	}
	return out
}

// Despawn removes e's row from its archetype and frees its slot. It is
// not an error to despawn an unknown entity; despawn reports false in
// that case (absence, not an error, per spec.md §7).
func (w *World) Despawn(e Entity) bool {
	archID, origRow, ok := w.entities.locate(e)
	if !ok {
		return false
	}
	arch := w.registry.Get(archID)
	bag, moved, movedIn, _ := arch.table.removeRow(e)
	if movedIn {
		w.entities.setLocation(moved, archID, origRow)
	}
	for id, cell := range bag.cells {
		if drop := w.components.dropFor(id); drop != nil {
			drop(cell.value)
		}
	}
	w.entities.free(e)
	return true
}

// AddComponents migrates e into the archetype that also carries the given
// component values, in one migration regardless of how many are passed
// (spec.md §4.3 batch variant). Re-adding a component already present
// refreshes only its modified stamp, preserving added.
func (w *World) AddComponents(e Entity, components ...any) error {
	archID, origRow, ok := w.entities.locate(e)
	if !ok {
		return &EntityNotAliveError{Entity: e}
	}
	current := w.registry.Get(archID)

	bag, moved, movedIn, _ := current.table.removeRow(e)
	if movedIn {
		w.entities.setLocation(moved, archID, origRow)
	}

	newIDs := append([]ComponentId{}, current.ids...)
	for _, c := range components {
		id := w.components.register(reflect.TypeOf(c), nil)
		if current.Has(id) {
			cell, _ := bag.get(id)
			cell.stamp.touch(w.frame)
			bag.set(id, c, cell.stamp)
			continue
		}
		bag.set(id, c, newStamp(w.frame))
		newIDs = append(newIDs, id)
	}

	newArchID := w.registry.getOrCreate(newIDs, w.components)
	newArch := w.registry.Get(newArchID)
	row := newArch.table.insertRow(e, bag)
	w.entities.setLocation(e, newArchID, row)
	return nil
}

// removeComponentIDs migrates e out of the given component ids in one
// move, invoking each removed cell's drop function (it is discarded, not
// moved).
func (w *World) removeComponentIDs(e Entity, ids []ComponentId) error {
	archID, origRow, ok := w.entities.locate(e)
	if !ok {
		return &EntityNotAliveError{Entity: e}
	}
	current := w.registry.Get(archID)

	bag, moved, movedIn, _ := current.table.removeRow(e)
	if movedIn {
		w.entities.setLocation(moved, archID, origRow)
	}

	remove := make(map[ComponentId]bool, len(ids))
	for _, id := range ids {
		remove[id] = true
	}

	newIDs := make([]ComponentId, 0, len(current.ids))
	for _, id := range current.ids {
		if remove[id] {
			if cell, ok := bag.get(id); ok {
				if drop := w.components.dropFor(id); drop != nil {
					drop(cell.value)
				}
				delete(bag.cells, id)
			}
			continue
		}
		newIDs = append(newIDs, id)
	}

	newArchID := w.registry.getOrCreate(newIDs, w.components)
	newArch := w.registry.Get(newArchID)
	row := newArch.table.insertRow(e, bag)
	w.entities.setLocation(e, newArchID, row)
	return nil
}

// AddComponent registers (if needed) and attaches one component value.
func AddComponent[T any](w *World, e Entity, value T) error {
	return w.AddComponents(e, value)
}

// RemoveComponent migrates e out of component T. A no-op (absence, not an
// error) if T was not present.
func RemoveComponent[T any](w *World, e Entity) error {
	id := componentIdFor[T](w)
	return w.removeComponentIDs(e, []ComponentId{id})
}

// ModifyComponent returns a mutable pointer to e's T, stamping modified at
// the current frame. Reports false if e lacks T or is not alive.
func ModifyComponent[T any](w *World, e Entity) (*T, bool) {
	id := componentIdFor[T](w)
	archID, row, ok := w.entities.locate(e)
	if !ok || archID == 0 { // 0: reserved by Spawner, not yet placed
		return nil, false
	}
	col, ok := w.registry.Get(archID).Table().Column(id)
	if !ok {
		return nil, false
	}
	col.Touch(row, w.frame)
	v, ok := col.Get(row)
	if !ok {
		return nil, false
	}
	return v.(*T), true
}

// GetComponent returns a read-only pointer to e's T without touching its
// change stamp.
func GetComponent[T any](w *World, e Entity) (*T, bool) {
	id := componentIdFor[T](w)
	archID, row, ok := w.entities.locate(e)
	if !ok || archID == 0 { // 0: reserved by Spawner, not yet placed
		return nil, false
	}
	col, ok := w.registry.Get(archID).Table().Column(id)
	if !ok {
		return nil, false
	}
	v, ok := col.Get(row)
	if !ok {
		return nil, false
	}
	return v.(*T), true
}

// beginRun mints a fresh run token identifying "the goroutine that called
// run" for non-send routing (spec.md §5; see resource.go).
func (w *World) beginRun() RunToken {
	w.runTokenCounter++
	w.activeRunToken = RunToken(w.runTokenCounter)
	return w.activeRunToken
}

func (w *World) currentRunToken() RunToken { return w.activeRunToken }

func (w *World) endRun() { w.activeRunToken = NoToken }

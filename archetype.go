package ecs

import "github.com/TheBitDrifter/mask"

// ArchetypeID is the dense id of an archetype within one world's
// registry, assigned in creation order starting at 1. Archetype 1 is
// always the empty archetype (no components); 0 names no archetype.
type ArchetypeID uint32

// Archetype is the equivalence class of entities sharing exactly one
// component-type set, grounded on the teacher's archetype.go but holding
// an in-repo Table instead of an opaque external one so rows carry
// change stamps (see DESIGN.md).
type Archetype struct {
	id    ArchetypeID
	ids   []ComponentId // sorted, stable identity
	bits  mask.Mask256
	table *Table
}

func (a *Archetype) ID() ArchetypeID     { return a.id }
func (a *Archetype) Table() *Table       { return a.table }
func (a *Archetype) ComponentIDs() []ComponentId { return a.ids }

// Has reports whether the archetype's bitset includes id.
func (a *Archetype) Has(id ComponentId) bool {
	var bit mask.Mask256
	bit.Mark(uint32(id))
	return a.bits.ContainsAll(bit)
}

func maskFor(ids []ComponentId) mask.Mask256 {
	var m mask.Mask256
	for _, id := range ids {
		m.Mark(uint32(id))
	}
	return m
}

// Registry maps a sorted component-id set to an archetype, creating new
// archetypes on demand. Archetypes are additive: once created they
// persist for the life of the world (spec.md §3).
type Registry struct {
	byMask map[mask.Mask256]ArchetypeID
	list   []*Archetype
	empty  ArchetypeID
}

func newRegistry(components *Components) *Registry {
	r := &Registry{byMask: make(map[mask.Mask256]ArchetypeID)}
	r.empty = r.getOrCreate(nil, components)
	return r
}

// Empty returns the archetype with no components.
func (r *Registry) Empty() *Archetype { return r.list[r.empty-1] }

// Get returns the archetype for id (1-based).
func (r *Registry) Get(id ArchetypeID) *Archetype { return r.list[id-1] }

// All returns every archetype in creation order.
func (r *Registry) All() []*Archetype { return r.list }

// getOrCreate locates the archetype for the given id set (order
// independent) or builds a new one, one column per id.
func (r *Registry) getOrCreate(ids []ComponentId, components *Components) ArchetypeID {
	sorted := sortedIDs(ids)
	m := maskFor(sorted)
	if id, ok := r.byMask[m]; ok {
		return id
	}
	id := ArchetypeID(len(r.list) + 1)
	arch := &Archetype{
		id:    id,
		ids:   sorted,
		bits:  m,
		table: newTable(sorted, components),
	}
	r.list = append(r.list, arch)
	r.byMask[m] = id
	return id
}

// Query returns every archetype whose bitset is a superset of include and
// disjoint from exclude, in archetype-creation order (spec.md §4.3).
func (r *Registry) Query(include, exclude mask.Mask256) []*Archetype {
	var out []*Archetype
	for _, a := range r.list {
		if !a.bits.ContainsAll(include) {
			continue
		}
		if !a.bits.ContainsNone(exclude) {
			continue
		}
		out = append(out, a)
	}
	return out
}

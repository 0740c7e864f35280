package ecs

import "github.com/TheBitDrifter/mask"

// AccessKind distinguishes a read from a write access report.
type AccessKind uint8

const (
	AccessRead AccessKind = iota
	AccessWrite
)

// Access is one query/argument term's reported access to a component or
// resource id.
type Access struct {
	Resource bool // false => ComponentId, true => ResourceId
	ID       uint32
	Kind     AccessKind
}

// AccessSet is a system's compacted access bitset: two bits per id (read,
// write) for components, and the same for resources (spec.md §4.6 step
// 2). Two separate mask.Mask256 values stand in for the "two bits per id"
// encoding the spec describes; the conflict rule below is unaffected by
// that representational choice (see DESIGN.md).
type AccessSet struct {
	componentReads  mask.Mask256
	componentWrites mask.Mask256
	resourceReads   mask.Mask256
	resourceWrites  mask.Mask256
}

// Add folds one reported access into the set.
func (a *AccessSet) Add(acc Access) {
	switch {
	case acc.Resource && acc.Kind == AccessRead:
		a.resourceReads.Mark(acc.ID)
	case acc.Resource && acc.Kind == AccessWrite:
		a.resourceWrites.Mark(acc.ID)
	case !acc.Resource && acc.Kind == AccessRead:
		a.componentReads.Mark(acc.ID)
	case !acc.Resource && acc.Kind == AccessWrite:
		a.componentWrites.Mark(acc.ID)
	}
}

// AddAll folds every reported access in accs into the set.
func (a *AccessSet) AddAll(accs []Access) {
	for _, acc := range accs {
		a.Add(acc)
	}
}

// ConflictsWith reports whether a and b have any (read, write) or (write,
// write) pair on the same component or resource id (spec.md §4.6 step 3).
func (a *AccessSet) ConflictsWith(b *AccessSet) bool {
	if !a.componentWrites.ContainsNone(b.componentWrites) {
		return true
	}
	if !a.componentWrites.ContainsNone(b.componentReads) {
		return true
	}
	if !a.componentReads.ContainsNone(b.componentWrites) {
		return true
	}
	if !a.resourceWrites.ContainsNone(b.resourceWrites) {
		return true
	}
	if !a.resourceWrites.ContainsNone(b.resourceReads) {
		return true
	}
	if !a.resourceReads.ContainsNone(b.resourceWrites) {
		return true
	}
	return false
}

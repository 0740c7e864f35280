package ecs

import (
	"iter"
	"reflect"

	"github.com/TheBitDrifter/mask"
)

// termKind distinguishes the atomic query term kinds of spec.md §4.4.
type termKind uint8

const (
	termRead termKind = iota
	termWrite
	termOptionalRead
	termOptionalWrite
	termWith
	termNot
	termAdded
	termModified
	termEntity
)

// queryTerm is one atomic projection/filter term. Terms compose by tuple:
// access is the union of every term's access, and the archetype include/
// exclude sets are the union of every term's contribution (spec.md §4.4
// "Tuples").
type queryTerm struct {
	kind termKind
	typ  reflect.Type // nil for termEntity
}

// Read projects a shared view of component C and adds C to the
// archetype's include set.
func Read[C any]() queryTerm { return queryTerm{kind: termRead, typ: reflect.TypeFor[C]()} }

// Write projects an exclusive view of C; yielding a row stamps C's
// modified frame to the current frame.
func Write[C any]() queryTerm { return queryTerm{kind: termWrite, typ: reflect.TypeFor[C]()} }

// OptionalRead projects an optional shared view of C (nil if absent);
// does not restrict archetype selection.
func OptionalRead[C any]() queryTerm {
	return queryTerm{kind: termOptionalRead, typ: reflect.TypeFor[C]()}
}

// OptionalWrite projects an optional exclusive view of C; touches the
// modified stamp only when the value is present and the row is yielded.
func OptionalWrite[C any]() queryTerm {
	return queryTerm{kind: termOptionalWrite, typ: reflect.TypeFor[C]()}
}

// With requires C's presence without projecting its value.
func With[C any]() queryTerm { return queryTerm{kind: termWith, typ: reflect.TypeFor[C]()} }

// Not requires C's absence.
func Not[C any]() queryTerm { return queryTerm{kind: termNot, typ: reflect.TypeFor[C]()} }

// Added filters rows to those whose C cell was added strictly after the
// calling system's last-run frame and no later than the current frame.
// Per spec.md §9's Open Question, this does NOT constrain archetype
// selection — it only filters rows that already carry C.
func Added[C any]() queryTerm { return queryTerm{kind: termAdded, typ: reflect.TypeFor[C]()} }

// Modified is Added's counterpart over the modified stamp.
func Modified[C any]() queryTerm { return queryTerm{kind: termModified, typ: reflect.TypeFor[C]()} }

// EntityTerm projects the matched row's own Entity handle.
func EntityTerm() queryTerm { return queryTerm{kind: termEntity} }

// match is one yielded row: the entity plus one projected value per term,
// in term order.
type match struct {
	entity Entity
	values []any
}

// query is the untyped core every typed QueryN wraps.
type query struct {
	w       *World
	terms   []queryTerm
	ids     []ComponentId // parallel to terms; unset (0) for termEntity
	include mask.Mask256
	exclude mask.Mask256
}

func newQuery(w *World, terms []queryTerm) *query {
	q := &query{w: w, terms: terms, ids: make([]ComponentId, len(terms))}
	for i, t := range terms {
		if t.kind == termEntity {
			continue
		}
		id := w.components.register(t.typ, nil)
		q.ids[i] = id
		switch t.kind {
		case termRead, termWrite, termWith:
			q.include.Mark(uint32(id))
		case termNot:
			q.exclude.Mark(uint32(id))
		}
	}
	return q
}

// access reports the union of every term's read/write access (spec.md
// §4.4 "Access reporting").
func (q *query) access() []Access {
	var out []Access
	for i, t := range q.terms {
		switch t.kind {
		case termRead, termOptionalRead:
			out = append(out, Access{ID: uint32(q.ids[i]), Kind: AccessRead})
		case termWrite, termOptionalWrite:
			out = append(out, Access{ID: uint32(q.ids[i]), Kind: AccessWrite})
		}
	}
	return out
}

// each iterates every matching archetype in creation order and every row
// in table order, evaluating filter terms before projecting.
// systemLastFrame is the calling system's meta.frame at the time it was
// last executed (0 if never run), used by Added/Modified.
func (q *query) each(systemLastFrame Frame, yield func(match) bool) {
	current := q.w.frame
	for _, arch := range q.w.registry.Query(q.include, q.exclude) {
		table := arch.table
		for row := 0; row < table.Length(); row++ {
			if !q.passesFilter(table, row, systemLastFrame, current) {
				continue
			}
			values := make([]any, len(q.terms))
			for i, t := range q.terms {
				values[i] = q.project(table, row, i, t, current)
			}
			if !yield(match{entity: table.EntityAt(row), values: values}) {
				return
			}
		}
	}
}

func (q *query) passesFilter(table *Table, row int, systemLastFrame, current Frame) bool {
	for i, t := range q.terms {
		switch t.kind {
		case termAdded, termModified:
			col, ok := table.Column(q.ids[i])
			if !ok {
				return false
			}
			stamp, ok := col.Stamp(row)
			if !ok {
				return false
			}
			var at Frame
			if t.kind == termAdded {
				at = stamp.Added
			} else {
				at = stamp.Modified
			}
			if !isNewer(at, systemLastFrame, current) {
				return false
			}
		}
	}
	return true
}

func (q *query) project(table *Table, row, i int, t queryTerm, current Frame) any {
	switch t.kind {
	case termEntity:
		return table.EntityAt(row)
	case termWith, termNot, termAdded, termModified:
		return true
	case termRead:
		col, _ := table.Column(q.ids[i])
		v, _ := col.Get(row)
		return v
	case termWrite:
		col, _ := table.Column(q.ids[i])
		col.Touch(row, current)
		v, _ := col.Get(row)
		return v
	case termOptionalRead:
		col, ok := table.Column(q.ids[i])
		if !ok {
			return reflect.Zero(reflect.PointerTo(t.typ)).Interface()
		}
		v, _ := col.Get(row)
		return v
	case termOptionalWrite:
		col, ok := table.Column(q.ids[i])
		if !ok {
			return reflect.Zero(reflect.PointerTo(t.typ)).Interface()
		}
		col.Touch(row, current)
		v, _ := col.Get(row)
		return v
	}
	return nil
}

// --- typed arities -----------------------------------------------------
//
// Go has no variadic generics, so the query DSL is generalized over a
// small fixed set of tuple arities instead of the arbitrary-arity
// composition a language with const-generic tuples would offer. Each
// QueryN validates its term count at construction; the per-field cast in
// Iter panics (a programmer-contract violation) if a caller pairs a term
// with the wrong Go type parameter.

// Row1 is one projected row for a single-term query.
type Row1[A any] struct {
	Entity Entity
	A      A
}

// Query1 projects a single term.
type Query1[A any] struct{ q *query }

// NewQuery1 builds a single-term query.
func NewQuery1[A any](w *World, t1 queryTerm) *Query1[A] {
	return &Query1[A]{q: newQuery(w, []queryTerm{t1})}
}

func (q *Query1[A]) Access() []Access { return q.q.access() }

// Iter iterates matching rows; systemLastFrame gates Added/Modified terms.
func (q *Query1[A]) Iter(systemLastFrame Frame) iter.Seq[Row1[A]] {
	return func(yield func(Row1[A]) bool) {
		q.q.each(systemLastFrame, func(m match) bool {
			return yield(Row1[A]{Entity: m.entity, A: m.values[0].(A)})
		})
	}
}

// Row2 is one projected row for a two-term query.
type Row2[A, B any] struct {
	Entity Entity
	A      A
	B      B
}

type Query2[A, B any] struct{ q *query }

func NewQuery2[A, B any](w *World, t1 queryTerm, t2 queryTerm) *Query2[A, B] {
	return &Query2[A, B]{q: newQuery(w, []queryTerm{t1, t2})}
}

func (q *Query2[A, B]) Access() []Access { return q.q.access() }

func (q *Query2[A, B]) Iter(systemLastFrame Frame) iter.Seq[Row2[A, B]] {
	return func(yield func(Row2[A, B]) bool) {
		q.q.each(systemLastFrame, func(m match) bool {
			return yield(Row2[A, B]{Entity: m.entity, A: m.values[0].(A), B: m.values[1].(B)})
		})
	}
}

// Row3 is one projected row for a three-term query.
type Row3[A, B, C any] struct {
	Entity Entity
	A      A
	B      B
	C      C
}

type Query3[A, B, C any] struct{ q *query }

func NewQuery3[A, B, C any](w *World, t1, t2, t3 queryTerm) *Query3[A, B, C] {
	return &Query3[A, B, C]{q: newQuery(w, []queryTerm{t1, t2, t3})}
}

func (q *Query3[A, B, C]) Access() []Access { return q.q.access() }

func (q *Query3[A, B, C]) Iter(systemLastFrame Frame) iter.Seq[Row3[A, B, C]] {
	return func(yield func(Row3[A, B, C]) bool) {
		q.q.each(systemLastFrame, func(m match) bool {
			return yield(Row3[A, B, C]{
				Entity: m.entity,
				A:      m.values[0].(A),
				B:      m.values[1].(B),
				C:      m.values[2].(C),
			})
		})
	}
}

// Row4 is one projected row for a four-term query.
type Row4[A, B, C, D any] struct {
	Entity Entity
	A      A
	B      B
	C      C
	D      D
}

type Query4[A, B, C, D any] struct{ q *query }

func NewQuery4[A, B, C, D any](w *World, t1, t2, t3, t4 queryTerm) *Query4[A, B, C, D] {
	return &Query4[A, B, C, D]{q: newQuery(w, []queryTerm{t1, t2, t3, t4})}
}

func (q *Query4[A, B, C, D]) Access() []Access { return q.q.access() }

func (q *Query4[A, B, C, D]) Iter(systemLastFrame Frame) iter.Seq[Row4[A, B, C, D]] {
	return func(yield func(Row4[A, B, C, D]) bool) {
		q.q.each(systemLastFrame, func(m match) bool {
			return yield(Row4[A, B, C, D]{
				Entity: m.entity,
				A:      m.values[0].(A),
				B:      m.values[1].(B),
				C:      m.values[2].(C),
				D:      m.values[3].(D),
			})
		})
	}
}

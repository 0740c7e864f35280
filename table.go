package ecs

import "sort"

// Table holds one column per component plus an ordered entity index; rows
// are aligned across columns by position. For every e in entities and
// every c in columns, columns[c] has a row at e's position in entities.
type Table struct {
	entities []Entity
	rowOf    *SparseSet[int] // entity id -> row index
	columns  *SparseSet[*Column]
}

func newTable(ids []ComponentId, components *Components) *Table {
	cols := NewSparseSet[*Column]()
	for _, id := range ids {
		cols.Insert(uint32(id), newColumn(components.layoutFor(id), components.dropFor(id)))
	}
	return &Table{
		rowOf:   NewSparseSet[int](),
		columns: cols,
	}
}

// Length returns the number of rows (entities) currently in the table.
func (t *Table) Length() int { return len(t.entities) }

// Contains reports whether the table has a column for id.
func (t *Table) Contains(id ComponentId) bool { return t.columns.Contains(uint32(id)) }

// Column returns the column for id, or nil, false if the table doesn't
// carry that component.
func (t *Table) Column(id ComponentId) (*Column, bool) {
	col, ok := t.columns.Get(uint32(id))
	if !ok {
		return nil, false
	}
	return *col, true
}

// EntityAt returns the entity occupying row i. i past the table's current
// length is a programmer contract violation, not absence (every caller
// derives i from the table's own Length or a just-located row), so it is
// fatal rather than a (zero, false) return.
func (t *Table) EntityAt(i int) Entity {
	if i < 0 || i >= len(t.entities) {
		panic(&IndexOutOfRangeError{Index: i, Length: len(t.entities)})
	}
	return t.entities[i]
}

// RowOf returns the row index for entity e within this table.
func (t *Table) RowOf(e Entity) (int, bool) {
	idx, ok := t.rowOf.Get(e.id)
	if !ok {
		return 0, false
	}
	return *idx, true
}

// insertRow appends a new row built from a component-id -> value/stamp
// row bag; row must carry exactly the table's column set.
func (t *Table) insertRow(e Entity, row Row) int {
	idx := len(t.entities)
	t.entities = append(t.entities, e)
	t.rowOf.Insert(e.id, idx)

	t.columns.Iter(func(id uint32, col **Column) bool {
		cell, ok := row.get(ComponentId(id))
		if !ok {
			panic(&missingRowCellError{Component: ComponentId(id)})
		}
		if err := (*col).Push(cell.value, cell.stamp); err != nil {
			panic(err)
		}
		return true
	})
	return idx
}

// removeRow removes e's row via swap-remove across every column and the
// entity index, returning the vacated row as a bag and reporting which
// entity (if any) now occupies the vacated slot.
func (t *Table) removeRow(e Entity) (Row, Entity, bool, bool) {
	idx, ok := t.rowOf.Get(e.id)
	if !ok {
		return Row{}, Entity{}, false, false
	}
	row := newRow()
	t.columns.Iter(func(id uint32, col **Column) bool {
		v, st, _ := (*col).SwapRemove(*idx)
		row.set(ComponentId(id), v, st)
		return true
	})

	last := len(t.entities) - 1
	moved := t.entities[last]
	movedIn := *idx != last
	t.entities[*idx] = moved
	t.entities = t.entities[:last]
	t.rowOf.Remove(e.id)
	if movedIn {
		t.rowOf.Insert(moved.id, *idx)
	}
	return row, moved, movedIn, true
}

type missingRowCellError struct {
	Component ComponentId
}

func (e *missingRowCellError) Error() string {
	return "ecs: row is missing a cell for a column the destination table declares"
}

// sortedIDs returns a new, ascending-sorted copy of ids.
func sortedIDs(ids []ComponentId) []ComponentId {
	out := make([]ComponentId, len(ids))
	copy(out, ids)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

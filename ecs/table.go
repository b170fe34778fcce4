package ecs

// Table is a sparse-set component store keyed by entity id: dense slices
// for iteration, a sparse index for O(1) lookup.
type Table[T any] struct {
	denseEntities []int
	denseValues   []T
	sparse        []int
}

// NewTable creates an empty table.
func NewTable[T any]() *Table[T] {
	return &Table[T]{}
}

// Has reports whether the entity id exists in the table.
func (t *Table[T]) Has(id int) bool {
	if t == nil || id <= 0 || id-1 >= len(t.sparse) {
		return false
	}
	idx := t.sparse[id-1]
	return idx >= 0 && idx < len(t.denseEntities) && t.denseEntities[idx] == id
}

// Get returns the component for id and whether it exists.
func (t *Table[T]) Get(id int) (T, bool) {
	var zero T
	if !t.Has(id) {
		return zero, false
	}
	return t.denseValues[t.sparse[id-1]], true
}

// Set inserts or updates the component for id.
func (t *Table[T]) Set(id int, v T) {
	if t == nil || id <= 0 {
		return
	}
	for id-1 >= len(t.sparse) {
		t.sparse = append(t.sparse, -1)
	}
	if t.Has(id) {
		t.denseValues[t.sparse[id-1]] = v
		return
	}
	t.denseEntities = append(t.denseEntities, id)
	t.denseValues = append(t.denseValues, v)
	t.sparse[id-1] = len(t.denseEntities) - 1
}

// Remove deletes the component for id if present, swapping the last dense
// entry into its place.
func (t *Table[T]) Remove(id int) {
	if t == nil || !t.Has(id) {
		return
	}
	idx := t.sparse[id-1]
	last := len(t.denseEntities) - 1
	lastID := t.denseEntities[last]

	t.denseEntities[idx] = lastID
	t.denseValues[idx] = t.denseValues[last]
	t.sparse[lastID-1] = idx

	var zero T
	t.denseValues[last] = zero
	t.denseEntities = t.denseEntities[:last]
	t.denseValues = t.denseValues[:last]
	t.sparse[id-1] = -1
}

// Len returns the number of stored components.
func (t *Table[T]) Len() int {
	if t == nil {
		return 0
	}
	return len(t.denseEntities)
}

// ForEach visits every (id, value) pair. The visitor must not add or
// remove entries.
func (t *Table[T]) ForEach(fn func(id int, v T) bool) {
	if t == nil || fn == nil {
		return
	}
	for i, id := range t.denseEntities {
		if !fn(id, t.denseValues[i]) {
			return
		}
	}
}

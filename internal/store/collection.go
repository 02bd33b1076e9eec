// Package store provides the in-memory working set for the reconciliation
// engine: keyed collections with change tracking and derived views.
//
// Collections are single-writer: the poll tick is the only mutator, so there
// is no internal locking. Readers that live outside the tick must consume
// snapshots published by the statistics aggregator instead of reading the
// collection directly.
package store

import "errors"

// Contract violations surfaced to callers
var (
	ErrDuplicateKey = errors.New("duplicate key")
	ErrNotFound     = errors.New("not found")
)

// Entity is anything stored in a Collection, keyed by a stable identifier
type Entity interface {
	Key() string
}

// Op identifies a change log operation
type Op byte

const (
	OpInsert Op = 'I'
	OpUpdate Op = 'U'
	OpRemove Op = 'R'
)

// Change is one entry of the pending change log
type Change[T Entity] struct {
	Op     Op
	Before *T
	After  *T
}

// Collection is a keyed, insertion-ordered set of entities
type Collection[T Entity] struct {
	name    string
	items   map[string]T
	order   []string
	changes []Change[T]
	views   []*View[T]
}

// NewCollection creates an empty collection
func NewCollection[T Entity](name string) *Collection[T] {
	return &Collection[T]{
		name:  name,
		items: make(map[string]T),
	}
}

// Name returns the collection name
func (c *Collection[T]) Name() string { return c.name }

// Len returns the number of stored entities
func (c *Collection[T]) Len() int { return len(c.items) }

// Insert adds a new entity. Returns ErrDuplicateKey if the key is taken.
func (c *Collection[T]) Insert(v T) error {
	key := v.Key()
	if _, exists := c.items[key]; exists {
		return ErrDuplicateKey
	}
	c.items[key] = v
	c.order = append(c.order, key)
	c.record(Change[T]{Op: OpInsert, After: &v})
	return nil
}

// Update replaces the entity under id with the result of merge applied to
// the current value. Returns ErrNotFound if the id is absent.
func (c *Collection[T]) Update(id string, merge func(T) T) (T, error) {
	cur, exists := c.items[id]
	if !exists {
		var zero T
		return zero, ErrNotFound
	}
	next := merge(cur)
	c.items[id] = next
	c.record(Change[T]{Op: OpUpdate, Before: &cur, After: &next})
	return next, nil
}

// Upsert updates the entity if present, else inserts it
func (c *Collection[T]) Upsert(v T) {
	key := v.Key()
	if cur, exists := c.items[key]; exists {
		c.items[key] = v
		c.record(Change[T]{Op: OpUpdate, Before: &cur, After: &v})
		return
	}
	c.items[key] = v
	c.order = append(c.order, key)
	c.record(Change[T]{Op: OpInsert, After: &v})
}

// Get returns the entity under id
func (c *Collection[T]) Get(id string) (T, bool) {
	v, ok := c.items[id]
	return v, ok
}

// FindOne returns the first entity (in insertion order) matching pred
func (c *Collection[T]) FindOne(pred func(T) bool) (T, bool) {
	for _, key := range c.order {
		if v, ok := c.items[key]; ok && pred(v) {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Where returns all entities matching pred, in insertion order
func (c *Collection[T]) Where(pred func(T) bool) []T {
	var out []T
	for _, key := range c.order {
		if v, ok := c.items[key]; ok && pred(v) {
			out = append(out, v)
		}
	}
	return out
}

// All returns every stored entity in insertion order
func (c *Collection[T]) All() []T {
	out := make([]T, 0, len(c.order))
	for _, key := range c.order {
		if v, ok := c.items[key]; ok {
			out = append(out, v)
		}
	}
	return out
}

// RemoveWhere hard-deletes all entities matching pred and returns the count.
// Used only by retention cleanup; the hot path soft-deletes via IsCurrent.
func (c *Collection[T]) RemoveWhere(pred func(T) bool) int {
	removed := 0
	kept := c.order[:0]
	for _, key := range c.order {
		v, ok := c.items[key]
		if !ok {
			continue
		}
		if pred(v) {
			delete(c.items, key)
			c.record(Change[T]{Op: OpRemove, Before: &v})
			removed++
			continue
		}
		kept = append(kept, key)
	}
	c.order = kept
	return removed
}

// FlushChanges drains and returns the pending change log
func (c *Collection[T]) FlushChanges() []Change[T] {
	changes := c.changes
	c.changes = nil
	return changes
}

func (c *Collection[T]) record(ch Change[T]) {
	c.changes = append(c.changes, ch)
	for _, v := range c.views {
		v.invalidate()
	}
}

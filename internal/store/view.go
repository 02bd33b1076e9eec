package store

import "sort"

// RefreshMode controls when a view recomputes its contents
type RefreshMode int

const (
	// RefreshLazy recomputes on the next read after a mutation
	RefreshLazy RefreshMode = iota
	// RefreshEager recomputes on every mutation
	RefreshEager
)

// View is a live-filtered, optionally live-sorted subset of a collection.
// Ties under the comparator keep insertion order.
type View[T Entity] struct {
	name   string
	source *Collection[T]
	pred   func(T) bool
	less   func(a, b T) bool
	mode   RefreshMode
	items  []T
	stale  bool
}

// NewView registers a filter-only view on the collection
func (c *Collection[T]) NewView(name string, pred func(T) bool, mode RefreshMode) *View[T] {
	return c.newView(name, pred, nil, mode)
}

// NewSortedView registers a filter+sort view on the collection
func (c *Collection[T]) NewSortedView(name string, pred func(T) bool, less func(a, b T) bool, mode RefreshMode) *View[T] {
	return c.newView(name, pred, less, mode)
}

func (c *Collection[T]) newView(name string, pred func(T) bool, less func(a, b T) bool, mode RefreshMode) *View[T] {
	v := &View[T]{
		name:   name,
		source: c,
		pred:   pred,
		less:   less,
		mode:   mode,
		stale:  true,
	}
	c.views = append(c.views, v)
	return v
}

// Name returns the view name
func (v *View[T]) Name() string { return v.name }

// Items returns the current contents of the view, recomputing first if stale
func (v *View[T]) Items() []T {
	if v.stale {
		v.refresh()
	}
	return v.items
}

// Len returns the current size of the view
func (v *View[T]) Len() int { return len(v.Items()) }

func (v *View[T]) invalidate() {
	if v.mode == RefreshEager {
		v.refresh()
		return
	}
	v.stale = true
}

func (v *View[T]) refresh() {
	v.items = v.source.Where(v.pred)
	if v.less != nil {
		// Stable sort keeps insertion order for ties
		sort.SliceStable(v.items, func(i, j int) bool {
			return v.less(v.items[i], v.items[j])
		})
	}
	v.stale = false
}

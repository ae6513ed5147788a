package ecs

import (
	"iter"
)

// Query wraps a View with caching for repeated iteration.
// The matching entities and their component pointers are rebuilt only when
// the storage version has moved since the last Execute.
type Query[T any] struct {
	view    *View[T]
	storage *Storage

	cachedEntities   []EntityId
	cachedComponents []T
	cachedVersion    uint64
	cacheValid       bool
}

// NewQuery creates a new Query over storage.
func NewQuery[T any](storage *Storage) *Query[T] {
	q := &Query[T]{}
	q.Init(storage)
	return q
}

// Init initializes or re-initializes the Query with a storage.
// Called by the Scheduler during system registration.
func (q *Query[T]) Init(storage *Storage) {
	q.view = NewView[T](storage)
	q.storage = storage
	q.cacheValid = false
}

// Execute builds the entity and component caches for this frame.
// Called automatically by the Scheduler before systems run.
func (q *Query[T]) Execute() {
	if q.cacheValid && q.cachedVersion == q.storage.Version() {
		return
	}

	q.cachedEntities = q.cachedEntities[:0]
	q.cachedComponents = q.cachedComponents[:0]
	for id, item := range q.view.Iter() {
		q.cachedEntities = append(q.cachedEntities, id)
		q.cachedComponents = append(q.cachedComponents, item)
	}

	q.cachedVersion = q.storage.Version()
	q.cacheValid = true
}

// View returns the view the query caches.
func (q *Query[T]) View() *View[T] {
	return q.view
}

// Len returns the number of matching entities as of the last Execute.
func (q *Query[T]) Len() int {
	return len(q.cachedEntities)
}

// Iter returns an iterator over entity IDs and component data.
// Panics if Execute() has never been called.
func (q *Query[T]) Iter() iter.Seq2[EntityId, T] {
	q.checkFresh("Iter")

	return func(yield func(EntityId, T) bool) {
		for i := range q.cachedEntities {
			if !yield(q.cachedEntities[i], q.cachedComponents[i]) {
				return
			}
		}
	}
}

// Values returns an iterator over component data only.
// Panics if Execute() has never been called.
func (q *Query[T]) Values() iter.Seq[T] {
	q.checkFresh("Values")

	return func(yield func(T) bool) {
		for i := range q.cachedComponents {
			if !yield(q.cachedComponents[i]) {
				return
			}
		}
	}
}

// checkFresh rebuilds a cache made stale by a structural change, since the
// cached pointers may no longer point into the arenas.
func (q *Query[T]) checkFresh(method string) {
	if !q.cacheValid {
		panic("Query." + method + "() called before Query.Execute()")
	}
	if q.cachedVersion != q.storage.Version() {
		q.Execute()
	}
}

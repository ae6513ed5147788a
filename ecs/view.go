package ecs

import (
	"iter"
	"reflect"
	"runtime"
	"unsafe"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"
)

// View represents a query for entities with a specific combination of components
// The type T should be a struct with embedded pointer fields for each component type
// Named fields can be marked as optional using the `ecs:"optional"` struct tag
//
// A populated T either has every required field set or is not handed out at
// all; there is no partially valid result.
type View[T any] struct {
	storage     *Storage
	types       []reflect.Type
	ids         []TypeId
	optional    []bool
	fieldOffset []uintptr
	required    []TypeId
}

// NewView creates a new view for the given struct type
// The struct T should have embedded or named fields that are pointers to component types
// Embedded fields are always required
// Named fields can be marked as optional using the `ecs:"optional"` struct tag
//
// Component types named by the view are registered if needed. NewView panics
// if T is malformed or a component type cannot be registered.
func NewView[T any](storage *Storage) *View[T] {
	structType := reflect.TypeFor[T]()

	if structType.Kind() != reflect.Struct {
		panic("View type parameter must be a struct")
	}

	v := &View[T]{
		storage:     storage,
		types:       make([]reflect.Type, 0, structType.NumField()),
		ids:         make([]TypeId, 0, structType.NumField()),
		optional:    make([]bool, 0, structType.NumField()),
		fieldOffset: make([]uintptr, 0, structType.NumField()),
	}

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		fieldType := field.Type

		if fieldType.Kind() != reflect.Ptr {
			panic("View struct fields must be pointer types")
		}

		componentType := fieldType.Elem()
		id, err := storage.registry.RegisterType(componentType)
		if err != nil {
			panic(err)
		}

		// Embedded fields are always required
		isOptional := false
		if !field.Anonymous {
			tag := field.Tag.Get("ecs")
			if tag != "" {
				if tag == "optional" {
					isOptional = true
				} else {
					panic("invalid ecs tag value: \"" + tag + "\" (only \"optional\" is supported)")
				}
			}
		}

		v.types = append(v.types, componentType)
		v.ids = append(v.ids, id)
		v.optional = append(v.optional, isOptional)
		v.fieldOffset = append(v.fieldOffset, field.Offset)
		if !isOptional {
			v.required = append(v.required, id)
		}
	}

	return v
}

// TypeIds returns the ids of the view's required component types.
func (v *View[T]) TypeIds() []TypeId {
	return v.required
}

// Matches reports whether entity id has every required component.
func (v *View[T]) Matches(id EntityId) bool {
	if len(v.required) == 0 {
		return v.storage.index.isAlive(id)
	}
	return v.storage.index.hasAll(id, v.required)
}

// Fill populates the provided struct pointer with component data for the given entity
// Returns false, leaving ptr untouched, if the entity is missing any required components
// Optional components are set to nil if not present
func (v *View[T]) Fill(id EntityId, ptr *T) bool {
	if !v.Matches(id) {
		return false
	}
	v.populate(unsafe.Pointer(ptr), id)
	return true
}

func (v *View[T]) populate(structPtr unsafe.Pointer, id EntityId) {
	for i, t := range v.ids {
		fieldPtr := unsafe.Add(structPtr, v.fieldOffset[i])
		componentPtr, _ := v.storage.lookup(id, t)
		*(*unsafe.Pointer)(fieldPtr) = componentPtr
	}
}

// Get returns a populated view struct for the given entity. The boolean is
// false, and the struct zero, if the entity lacks a required component.
func (v *View[T]) Get(id EntityId) (T, bool) {
	var result T
	if !v.Fill(id, &result) {
		return result, false
	}
	return result, true
}

// Entities returns every matching entity id in increasing order.
func (v *View[T]) Entities() []EntityId {
	return v.storage.QueryIDs(v.required...)
}

// Iter returns an iterator over all entities that have all the required components for this view
// The iterator yields (EntityId, T) pairs in increasing id order
// Optional components are set to nil if not present
func (v *View[T]) Iter() iter.Seq2[EntityId, T] {
	return func(yield func(EntityId, T) bool) {
		var result T
		resultPtr := unsafe.Pointer(&result)

		for id := EntityId(0); uint32(id) < v.storage.index.count; id++ {
			if !v.Matches(id) {
				continue
			}
			v.populate(resultPtr, id)
			if !yield(id, result) {
				return
			}
		}
	}
}

// Values returns an iterator over just the view structs (without entity IDs)
// This is useful when you only care about the component data, not which entity it belongs to
func (v *View[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, value := range v.Iter() {
			if !yield(value) {
				return
			}
		}
	}
}

// ForEach calls fn for every matching entity. fn may mutate components through
// the view's pointers but must not add or remove entities or components.
func (v *View[T]) ForEach(fn func(EntityId, T)) {
	for id, value := range v.Iter() {
		fn(id, value)
	}
}

// ParallelForEach calls fn for every matching entity from up to workers
// goroutines (GOMAXPROCS when workers < 1). Entities are split into disjoint
// contiguous chunks so no two calls share a component. fn must not perform
// structural operations or touch state shared with other entities. The first
// error returned by fn is returned once every chunk has finished.
func (v *View[T]) ParallelForEach(workers int, fn func(EntityId, T) error) error {
	ids := v.Entities()
	if len(ids) == 0 {
		return nil
	}
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	chunk := (len(ids) + workers - 1) / workers

	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < len(ids); start += chunk {
		part := ids[start:min(start+chunk, len(ids))]
		g.Go(func() error {
			var result T
			resultPtr := unsafe.Pointer(&result)
			for _, id := range part {
				v.populate(resultPtr, id)
				if err := fn(id, result); err != nil {
					return eris.Wrapf(err, "entity %d", id)
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// Spawn creates a new entity with components copied from the view struct.
// Nil optional fields are skipped; a nil required field is an error.
func (v *View[T]) Spawn(data T) (EntityId, error) {
	structPtr := unsafe.Pointer(&data)

	for i := range v.types {
		fieldPtr := unsafe.Add(structPtr, v.fieldOffset[i])
		if *(*unsafe.Pointer)(fieldPtr) == nil && !v.optional[i] {
			return 0, eris.Wrapf(ErrMissingComponent, "spawn: %s is nil", v.types[i])
		}
	}

	id := v.storage.NewEntity()
	for i, componentType := range v.types {
		componentPtr := *(*unsafe.Pointer)(unsafe.Add(structPtr, v.fieldOffset[i]))
		if componentPtr == nil {
			continue
		}

		p, err := v.storage.reserve(id, v.ids[i])
		if err != nil {
			_ = v.storage.RemoveEntity(id)
			return 0, err
		}
		reflect.NewAt(componentType, p).Elem().Set(reflect.NewAt(componentType, componentPtr).Elem())
	}

	return id, nil
}

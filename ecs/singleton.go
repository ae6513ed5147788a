package ecs

import (
	"reflect"

	"go.uber.org/zap"
)

// Singleton provides access to a single component instance that stands for
// global state such as configuration or frame timing. The value lives on a
// dedicated entity, so it is also visible to views over T.
type Singleton[T any] struct {
	storage *Storage
	typeId  TypeId
	valid   bool
}

// NewSingleton creates a new Singleton accessor for the given storage.
// If initializer is provided and the singleton doesn't exist in storage,
// it will be created with the initializer value. Otherwise, a zero value is used.
// This guarantees the singleton exists in storage after the call.
// NewSingleton panics if T cannot be registered as a component.
func NewSingleton[T any](storage *Storage, initializer ...T) *Singleton[T] {
	s := &Singleton[T]{}
	s.Init(storage)

	if !s.Exists() {
		var value T
		if len(initializer) > 0 {
			value = initializer[0]
		}
		if err := s.Set(value); err != nil {
			panic(err)
		}
	}
	return s
}

// Init initializes the Singleton with a storage reference.
// This is called automatically by the Scheduler during system registration.
func (s *Singleton[T]) Init(storage *Storage) {
	id, err := storage.registry.RegisterType(reflect.TypeFor[T]())
	if err != nil {
		panic(err)
	}
	s.storage = storage
	s.typeId = id
	s.valid = true
}

// Set stores value, creating the holding entity on first use.
func (s *Singleton[T]) Set(value T) error {
	e, ok := s.storage.singletons[s.typeId]
	if !ok || !s.storage.IsAlive(e) {
		e = s.storage.NewEntity()
		s.storage.singletons[s.typeId] = e
		s.storage.log.Debug("created singleton", zap.Uint32("type", uint32(s.typeId)), zap.Uint32("entity", uint32(e)))
	}
	return AddComponent(s.storage, e, value)
}

// Get returns a pointer to the singleton component.
// Returns nil if the singleton has not been added to storage.
// The pointer follows the same lifetime rules as GetComponent.
func (s *Singleton[T]) Get() *T {
	if !s.valid {
		return nil
	}
	e, ok := s.storage.singletons[s.typeId]
	if !ok {
		return nil
	}
	p, ok := s.storage.lookup(e, s.typeId)
	if !ok {
		return nil
	}
	return (*T)(p)
}

// Entity returns the entity holding the singleton.
func (s *Singleton[T]) Entity() (EntityId, bool) {
	if !s.valid {
		return 0, false
	}
	e, ok := s.storage.singletons[s.typeId]
	return e, ok
}

// Exists returns true if the singleton component has been added to storage
func (s *Singleton[T]) Exists() bool {
	return s.Get() != nil
}

// ReadSingleton points *out at the singleton of the type out refers to.
// out must be a **T; it reports false, leaving *out alone, if no singleton of
// type T exists.
func (s *Storage) ReadSingleton(out any) bool {
	v := reflect.ValueOf(out)
	if v.Kind() != reflect.Ptr || v.IsNil() || v.Elem().Kind() != reflect.Ptr {
		panic("ReadSingleton requires a pointer to a pointer")
	}

	t, ok := s.registry.TypeIdFor(v.Elem().Type().Elem())
	if !ok {
		return false
	}
	e, ok := s.singletons[t]
	if !ok {
		return false
	}
	p, ok := s.lookup(e, t)
	if !ok {
		return false
	}
	v.Elem().Set(reflect.NewAt(v.Elem().Type().Elem(), p))
	return true
}

package ecs

import (
	"reflect"
	"unsafe"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Storage is the main ECS storage interface. It owns one arena per registered
// component type and the entity index that maps entities to arena slots.
//
// Storage is not safe for concurrent use. Structural operations (creating or
// removing entities, adding or removing components) may move arena memory, so
// pointers returned by GetComponent and views are only valid until the next
// structural operation.
type Storage struct {
	registry   *ComponentRegistry
	arenas     []*arena
	index      *entityIndex
	singletons map[TypeId]EntityId
	version    uint64
	log        *zap.Logger
}

// NewStorage creates a new ECS storage system with the given component registry.
// Entity rows are as wide as the registry capacity. Without WithLogger the
// storage logs through the registry's logger.
func NewStorage(registry *ComponentRegistry, opts ...Option) *Storage {
	o := newOptions(opts)
	return &Storage{
		registry:   registry,
		arenas:     make([]*arena, registry.Capacity()),
		index:      newEntityIndex(registry.Capacity(), o.entityBatchSize),
		singletons: make(map[TypeId]EntityId),
		log:        o.loggerOr(registry.log),
	}
}

// Registry returns the registry the storage was created with.
func (s *Storage) Registry() *ComponentRegistry {
	return s.registry
}

// Version is incremented by every structural operation. Caches built from
// query results stay valid while it is unchanged.
func (s *Storage) Version() uint64 {
	return s.version
}

// EntityCount returns the size of the id range, recycled ids included.
func (s *Storage) EntityCount() int {
	return int(s.index.count)
}

// LiveEntityCount returns the number of ids not waiting to be recycled.
func (s *Storage) LiveEntityCount() int {
	return s.index.liveCount()
}

// IsAlive reports whether id is in range and not recycled.
func (s *Storage) IsAlive(id EntityId) bool {
	return s.index.isAlive(id)
}

// NewEntity allocates an entity with no components.
func (s *Storage) NewEntity() EntityId {
	s.version++
	return s.index.allocate()
}

// Spawn creates a new entity with the provided components. Components are
// copied by value; pointers to components are dereferenced. If any component
// is rejected the entity is removed again.
func (s *Storage) Spawn(components ...any) (EntityId, error) {
	id := s.NewEntity()
	if err := s.Add(id, components...); err != nil {
		_ = s.RemoveEntity(id)
		return 0, err
	}
	return id, nil
}

// RemoveEntity releases every component of id and recycles it. Removing an
// entity that is out of range or already removed is reported and otherwise
// ignored.
func (s *Storage) RemoveEntity(id EntityId) error {
	err := s.index.free(id, s.registry.Len(), func(t TypeId, slot Slot) {
		if err := s.arenas[t].release(slot); err != nil {
			s.log.Warn("release failed", zap.Uint32("entity", uint32(id)), zap.Uint32("type", uint32(t)), zap.Error(err))
		}
	})
	if err != nil {
		s.log.Warn("entity removal ignored", zap.Uint32("entity", uint32(id)), zap.Error(err))
		return err
	}

	for t, e := range s.singletons {
		if e == id {
			delete(s.singletons, t)
		}
	}
	s.version++
	return nil
}

// Clear drops every entity and component. Registered types are kept.
func (s *Storage) Clear() {
	s.index.reset()
	for _, a := range s.arenas {
		if a != nil {
			a.reset()
		}
	}
	clear(s.singletons)
	s.version++
	s.log.Debug("storage cleared")
}

func (s *Storage) arenaFor(t TypeId) *arena {
	if int(t) >= len(s.arenas) {
		return nil
	}
	if a := s.arenas[t]; a != nil {
		return a
	}
	info, ok := s.registry.Info(t)
	if !ok {
		return nil
	}
	s.arenas[t] = newArena(info.SlotSize)
	return s.arenas[t]
}

func (s *Storage) checkAlive(id EntityId) error {
	if !s.index.inRange(id) {
		return eris.Wrapf(ErrEntityOutOfRange, "entity %d", id)
	}
	if !s.index.isAlive(id) {
		return eris.Wrapf(ErrEntityNotAlive, "entity %d", id)
	}
	return nil
}

// reserve returns the slot memory of component t on entity id, allocating a
// slot on first use. A component that is already present is reused in place.
func (s *Storage) reserve(id EntityId, t TypeId) (unsafe.Pointer, error) {
	if err := s.checkAlive(id); err != nil {
		return nil, err
	}
	a := s.arenaFor(t)
	if a == nil {
		return nil, eris.Wrapf(ErrUnknownType, "type id %d", t)
	}

	if slot, ok := s.index.get(id, t); ok {
		if p, ok := a.ptr(slot); ok {
			return p, nil
		}
	}

	slot := a.allocate()
	s.index.set(id, t, slot)
	s.version++
	p, _ := a.ptr(slot)
	return p, nil
}

func (s *Storage) lookup(id EntityId, t TypeId) (unsafe.Pointer, bool) {
	slot, ok := s.index.get(id, t)
	if !ok {
		return nil, false
	}
	return s.arenas[t].ptr(slot)
}

// AddComponent copies component onto entity id, registering T on first use.
// Adding a component the entity already has overwrites it in place.
func AddComponent[T any](s *Storage, id EntityId, component T) error {
	t, err := s.registry.RegisterType(reflect.TypeFor[T]())
	if err != nil {
		return err
	}
	p, err := s.reserve(id, t)
	if err != nil {
		return err
	}
	*(*T)(p) = component
	return nil
}

// RemoveComponent removes T from entity id. It reports whether anything was removed.
func RemoveComponent[T any](s *Storage, id EntityId) bool {
	t, ok := TypeIdOf[T](s.registry)
	if !ok {
		return false
	}
	return s.RemoveComponentByID(id, t)
}

// GetComponent returns a pointer to the T stored for entity id. The pointer
// is valid until the next structural operation on the storage.
func GetComponent[T any](s *Storage, id EntityId) (*T, bool) {
	t, ok := TypeIdOf[T](s.registry)
	if !ok {
		return nil, false
	}
	p, ok := s.lookup(id, t)
	if !ok {
		return nil, false
	}
	return (*T)(p), true
}

// HasComponent reports whether entity id has a T.
func HasComponent[T any](s *Storage, id EntityId) bool {
	t, ok := TypeIdOf[T](s.registry)
	return ok && s.HasComponentByID(id, t)
}

// ReadComponent returns the T stored for entity id, or nil.
func ReadComponent[T any](s *Storage, id EntityId) *T {
	c, _ := GetComponent[T](s, id)
	return c
}

// Add copies every component onto entity id. Pointer components are
// dereferenced. It stops at the first failure; components added before it stay.
func (s *Storage) Add(id EntityId, components ...any) error {
	for _, component := range components {
		if err := s.AddComponentValue(id, component); err != nil {
			return err
		}
	}
	return nil
}

// AddComponentValue is AddComponent for a component whose type is only known
// at runtime.
func (s *Storage) AddComponentValue(id EntityId, component any) error {
	v := reflect.ValueOf(component)
	if !v.IsValid() {
		return eris.Wrap(ErrUnknownType, "nil component")
	}
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return eris.Wrapf(ErrUnknownType, "nil %s", v.Type())
		}
		v = v.Elem()
	}

	t, err := s.registry.RegisterType(v.Type())
	if err != nil {
		return err
	}
	p, err := s.reserve(id, t)
	if err != nil {
		return err
	}
	reflect.NewAt(v.Type(), p).Elem().Set(v)
	return nil
}

// AddComponentByID gives entity id a zeroed component of type t and returns
// its memory. The type must already be registered.
func (s *Storage) AddComponentByID(id EntityId, t TypeId) ([]byte, error) {
	if _, ok := s.registry.Info(t); !ok {
		return nil, eris.Wrapf(ErrUnknownType, "type id %d", t)
	}
	p, err := s.reserve(id, t)
	if err != nil {
		return nil, err
	}
	b := unsafe.Slice((*byte)(p), s.arenas[t].slotSize)
	clear(b)
	return b, nil
}

// GetComponentByID returns the memory of component t on entity id.
func (s *Storage) GetComponentByID(id EntityId, t TypeId) ([]byte, bool) {
	slot, ok := s.index.get(id, t)
	if !ok {
		return nil, false
	}
	return s.arenas[t].bytes(slot)
}

// HasComponentByID reports whether entity id has component t.
func (s *Storage) HasComponentByID(id EntityId, t TypeId) bool {
	_, ok := s.index.get(id, t)
	return ok
}

// RemoveComponentByID releases component t of entity id. It reports whether
// anything was removed.
func (s *Storage) RemoveComponentByID(id EntityId, t TypeId) bool {
	slot, ok := s.index.clear(id, t)
	if !ok {
		return false
	}
	if err := s.arenas[t].release(slot); err != nil {
		s.log.Warn("release failed", zap.Uint32("entity", uint32(id)), zap.Uint32("type", uint32(t)), zap.Error(err))
	}
	s.version++
	return true
}

// ComponentIDs returns the ids of every component entity id has, in id order.
func (s *Storage) ComponentIDs(id EntityId) []TypeId {
	if !s.index.inRange(id) {
		return nil
	}
	var ids []TypeId
	for t, slot := range s.index.row(id)[:s.registry.Len()] {
		if slot.Valid() {
			ids = append(ids, TypeId(t))
		}
	}
	return ids
}

// QueryIDs returns, in increasing order, every entity that has all of the
// given component types. With no types it returns every live entity.
func (s *Storage) QueryIDs(types ...TypeId) []EntityId {
	var out []EntityId
	for id := EntityId(0); uint32(id) < s.index.count; id++ {
		if len(types) == 0 {
			if s.index.isAlive(id) {
				out = append(out, id)
			}
			continue
		}
		if s.index.hasAll(id, types) {
			out = append(out, id)
		}
	}
	return out
}

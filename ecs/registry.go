package ecs

import (
	"reflect"
	"unsafe"

	"github.com/kamstrup/intmap"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// TypeId identifies a registered component type. Ids are dense, start at zero
// and are never reused for the lifetime of the registry that issued them.
type TypeId uint32

// TypeInfo describes the layout of a registered component type.
type TypeInfo struct {
	Id   TypeId
	Name string
	// Type is nil for layouts registered through RegisterRaw.
	Type     reflect.Type
	Size     uintptr
	Align    uintptr
	SlotSize uintptr
}

// ComponentRegistry assigns TypeIds to component types.
// Each Storage owns exactly one registry; several storages may share one as
// long as they are used from the same goroutine.
type ComponentRegistry struct {
	capacity int
	ids      *intmap.Map[uintptr, TypeId]
	types    []TypeInfo
	log      *zap.Logger
}

// NewComponentRegistry creates an empty registry. Only WithMaxTypes and
// WithLogger affect a registry.
func NewComponentRegistry(opts ...Option) *ComponentRegistry {
	o := newOptions(opts)
	return &ComponentRegistry{
		capacity: o.maxTypes,
		ids:      intmap.New[uintptr, TypeId](o.maxTypes),
		types:    make([]TypeInfo, 0, o.maxTypes),
		log:      o.loggerOr(nil),
	}
}

// RegisterComponent registers T and returns its id. Registering the same type
// again returns the same id and has no other effect.
func RegisterComponent[T any](r *ComponentRegistry) (TypeId, error) {
	return r.RegisterType(reflect.TypeFor[T]())
}

// MustRegisterComponent is RegisterComponent for setup code; it panics on error.
func MustRegisterComponent[T any](r *ComponentRegistry) TypeId {
	id, err := RegisterComponent[T](r)
	if err != nil {
		panic(err)
	}
	return id
}

// RegisterComponents registers the type of every sample value. Pointer samples
// register their element type. It stops at the first failure.
func RegisterComponents(r *ComponentRegistry, samples ...any) error {
	for _, sample := range samples {
		t := reflect.TypeOf(sample)
		if t == nil {
			return eris.Wrap(ErrUnknownType, "cannot register a nil sample")
		}
		if t.Kind() == reflect.Ptr {
			t = t.Elem()
		}
		if _, err := r.RegisterType(t); err != nil {
			return err
		}
	}
	return nil
}

// RegisterType registers t and returns its id.
func (r *ComponentRegistry) RegisterType(t reflect.Type) (TypeId, error) {
	key := typeKey(t)
	if id, ok := r.ids.Get(key); ok {
		return id, nil
	}

	if containsPointers(t) {
		r.log.Warn("rejected component type", zap.Stringer("type", t), zap.Error(ErrPointerComponent))
		return 0, eris.Wrapf(ErrPointerComponent, "register %s", t)
	}

	id, err := r.add(TypeInfo{
		Name:  t.String(),
		Type:  t,
		Size:  t.Size(),
		Align: uintptr(t.Align()),
	})
	if err != nil {
		return 0, err
	}

	r.ids.Put(key, id)
	return id, nil
}

// RegisterRaw registers a layout that has no Go type behind it. Every call
// creates a new id, even for a name that was used before.
func (r *ComponentRegistry) RegisterRaw(name string, size, align uintptr) (TypeId, error) {
	if align == 0 || align > wordSize || align&(align-1) != 0 {
		return 0, eris.Wrapf(ErrInvalidLayout, "register %s: alignment %d", name, align)
	}
	return r.add(TypeInfo{
		Name:  name,
		Size:  size,
		Align: align,
	})
}

func (r *ComponentRegistry) add(info TypeInfo) (TypeId, error) {
	if len(r.types) >= r.capacity {
		r.log.Warn("component type capacity exceeded",
			zap.String("type", info.Name),
			zap.Int("capacity", r.capacity),
		)
		return 0, eris.Wrapf(ErrTypeCapacityExceeded, "register %s: capacity %d", info.Name, r.capacity)
	}

	info.Id = TypeId(len(r.types))
	info.SlotSize = slotSize(info.Size, info.Align)
	r.types = append(r.types, info)

	r.log.Debug("registered component type",
		zap.String("type", info.Name),
		zap.Uint32("id", uint32(info.Id)),
		zap.Uintptr("slot_size", info.SlotSize),
	)
	return info.Id, nil
}

// TypeIdOf returns the id of T if it has been registered.
func TypeIdOf[T any](r *ComponentRegistry) (TypeId, bool) {
	return r.TypeIdFor(reflect.TypeFor[T]())
}

// SlotSizeOf returns the padded slot size of T if it has been registered.
func SlotSizeOf[T any](r *ComponentRegistry) (uintptr, bool) {
	id, ok := TypeIdOf[T](r)
	if !ok {
		return 0, false
	}
	return r.types[id].SlotSize, true
}

// TypeIdFor returns the id of t if it has been registered.
func (r *ComponentRegistry) TypeIdFor(t reflect.Type) (TypeId, bool) {
	if t == nil {
		return 0, false
	}
	return r.ids.Get(typeKey(t))
}

// Info returns the layout of a registered id.
func (r *ComponentRegistry) Info(id TypeId) (TypeInfo, bool) {
	if int(id) >= len(r.types) {
		return TypeInfo{}, false
	}
	return r.types[id], true
}

// Types returns a copy of every registered layout, ordered by id.
func (r *ComponentRegistry) Types() []TypeInfo {
	out := make([]TypeInfo, len(r.types))
	copy(out, r.types)
	return out
}

// Len returns the number of registered types.
func (r *ComponentRegistry) Len() int {
	return len(r.types)
}

// Capacity returns the maximum number of types the registry accepts.
func (r *ComponentRegistry) Capacity() int {
	return r.capacity
}

// MaxTypeId returns the highest id in use, or false if nothing is registered.
func (r *ComponentRegistry) MaxTypeId() (TypeId, bool) {
	if len(r.types) == 0 {
		return 0, false
	}
	return TypeId(len(r.types) - 1), true
}

// slotSize rounds size up to a multiple of align. Zero sized types still get a
// slot so that every live component owns a distinct offset.
func slotSize(size, align uintptr) uintptr {
	if align == 0 {
		align = 1
	}
	if size == 0 {
		return align
	}
	mod := size % align
	if mod == 0 {
		return size
	}
	return size - mod + align
}

// typeKey returns the address of the runtime type descriptor behind t.
func typeKey(t reflect.Type) uintptr {
	return uintptr((*iface)(unsafe.Pointer(&t)).data)
}

func containsPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Ptr, reflect.UnsafePointer, reflect.String, reflect.Slice,
		reflect.Map, reflect.Chan, reflect.Func, reflect.Interface:
		return true
	case reflect.Array:
		return t.Len() > 0 && containsPointers(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if containsPointers(t.Field(i).Type) {
				return true
			}
		}
	}
	return false
}

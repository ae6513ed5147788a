package debugui

import (
	"reflect"
	"sync"
)

// ReflectionCache derives field tables from struct types. Fields that have no
// matching FieldKind are skipped.
type ReflectionCache struct {
	mu         sync.RWMutex
	fieldCache map[reflect.Type][]Field
}

func NewReflectionCache() *ReflectionCache {
	return &ReflectionCache{
		fieldCache: make(map[reflect.Type][]Field),
	}
}

func (rc *ReflectionCache) GetFields(t reflect.Type) []Field {
	rc.mu.RLock()
	cached, ok := rc.fieldCache[t]
	rc.mu.RUnlock()
	if ok {
		return cached
	}

	rc.mu.Lock()
	defer rc.mu.Unlock()

	if cached, ok := rc.fieldCache[t]; ok {
		return cached
	}

	var fields []Field
	if t.Kind() == reflect.Struct {
		fields = collectFields(t, "", 0, fields)
	}

	rc.fieldCache[t] = fields
	return fields
}

// collectFields walks exported fields, flattening nested structs into
// dotted names.
func collectFields(t reflect.Type, prefix string, base uintptr, fields []Field) []Field {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name := prefix + field.Name
		offset := base + field.Offset

		if field.Type.Kind() == reflect.Struct {
			fields = collectFields(field.Type, name+".", offset, fields)
			continue
		}

		kind, ok := kindOf(field)
		if !ok {
			continue
		}
		fields = append(fields, Field{Name: name, Offset: offset, Kind: kind})
	}
	return fields
}

func kindOf(field reflect.StructField) (FieldKind, bool) {
	t := field.Type
	switch t.Kind() {
	case reflect.Float32:
		return KindFloat, true
	case reflect.Int32:
		return KindInt, true
	case reflect.Bool:
		return KindBool, true
	case reflect.Array:
		if t.Elem().Kind() != reflect.Float32 {
			return 0, false
		}
		if field.Tag.Get("debugui") == "color" && t.Len() == 3 {
			return KindColor, true
		}
		switch t.Len() {
		case 2:
			return KindVec2, true
		case 3:
			return KindVec3, true
		case 4:
			return KindVec4, true
		}
	}
	return 0, false
}

var globalReflectionCache = NewReflectionCache()

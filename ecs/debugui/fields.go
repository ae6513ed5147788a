package debugui

import (
	"encoding/binary"
	"math"

	"github.com/rotisserie/eris"
)

// FieldKind selects the widget used to edit a component field.
type FieldKind uint8

const (
	KindFloat FieldKind = iota
	KindInt
	KindVec2
	KindVec3
	KindVec4
	KindColor
	KindBool
)

var ErrFieldOutOfBounds = eris.New("field does not fit in component")

var kindNames = [...]string{"float", "int", "vec2", "vec3", "vec4", "color", "bool"}

func (k FieldKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Size returns the number of bytes a field of kind k occupies.
// Ints are 32 bit and colors are three float32 channels.
func (k FieldKind) Size() uintptr {
	switch k {
	case KindFloat, KindInt:
		return 4
	case KindVec2:
		return 8
	case KindVec3, KindColor:
		return 12
	case KindVec4:
		return 16
	case KindBool:
		return 1
	}
	return 0
}

// Field describes one editable value inside a component's memory.
type Field struct {
	Name   string
	Offset uintptr
	Kind   FieldKind
}

func (f Field) fits(size uintptr) bool {
	n := f.Kind.Size()
	return n != 0 && f.Offset+n <= size
}

// Component memory is host order, which is little endian on every platform
// the backends run on.
func (f Field) span(mem []byte) ([]byte, bool) {
	if !f.fits(uintptr(len(mem))) {
		return nil, false
	}
	return mem[f.Offset : f.Offset+f.Kind.Size()], true
}

// ReadFloats decodes a float, vector or color field.
func (f Field) ReadFloats(mem []byte) ([]float32, bool) {
	switch f.Kind {
	case KindInt, KindBool:
		return nil, false
	}
	b, ok := f.span(mem)
	if !ok {
		return nil, false
	}
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out, true
}

// WriteFloats encodes values into a float, vector or color field. Extra
// values are ignored and missing ones leave the memory untouched.
func (f Field) WriteFloats(mem []byte, values ...float32) bool {
	switch f.Kind {
	case KindInt, KindBool:
		return false
	}
	b, ok := f.span(mem)
	if !ok {
		return false
	}
	for i := 0; i < len(values) && i*4 < len(b); i++ {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(values[i]))
	}
	return true
}

func (f Field) ReadInt(mem []byte) (int32, bool) {
	if f.Kind != KindInt {
		return 0, false
	}
	b, ok := f.span(mem)
	if !ok {
		return 0, false
	}
	return int32(binary.LittleEndian.Uint32(b)), true
}

func (f Field) WriteInt(mem []byte, v int32) bool {
	if f.Kind != KindInt {
		return false
	}
	b, ok := f.span(mem)
	if !ok {
		return false
	}
	binary.LittleEndian.PutUint32(b, uint32(v))
	return true
}

func (f Field) ReadBool(mem []byte) (bool, bool) {
	if f.Kind != KindBool {
		return false, false
	}
	b, ok := f.span(mem)
	if !ok {
		return false, false
	}
	return b[0] != 0, true
}

func (f Field) WriteBool(mem []byte, v bool) bool {
	if f.Kind != KindBool {
		return false
	}
	b, ok := f.span(mem)
	if !ok {
		return false
	}
	b[0] = 0
	if v {
		b[0] = 1
	}
	return true
}

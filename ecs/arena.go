package ecs

import (
	"unsafe"

	"github.com/rotisserie/eris"
)

// Slot is a checked handle to one component instance inside an arena.
// The zero Slot is never valid and stands for "absent".
type Slot struct {
	offset uint32
	gen    uint32
}

// Valid reports whether the handle was issued by an arena. A valid handle can
// still be stale if its slot was released afterwards.
func (s Slot) Valid() bool {
	return s.gen != 0
}

// Offset returns the zero based byte offset of the slot inside its arena.
func (s Slot) Offset() uint32 {
	return s.offset
}

// arena stores every instance of one component type in a single growable
// buffer of fixed-size slots. Released slots are zeroed and pushed onto a free
// list; the free list always holds raw, zero based, slot aligned offsets.
type arena struct {
	slotSize uintptr
	// words backs the byte buffer so that every offset is 8-byte aligned.
	words []uint64
	size  uintptr
	gens  []uint32
	live  []bool
	free  []uint32
}

func newArena(slotSize uintptr) *arena {
	return &arena{slotSize: slotSize}
}

// allocate reserves a zeroed slot, reusing the most recently released one
// before growing the buffer.
func (a *arena) allocate() Slot {
	if n := len(a.free); n > 0 {
		offset := a.free[n-1]
		a.free = a.free[:n-1]

		index := uintptr(offset) / a.slotSize
		a.live[index] = true
		return Slot{offset: offset, gen: a.gens[index]}
	}

	offset := a.size
	a.size += a.slotSize
	if need := int((a.size + wordSize - 1) / wordSize); need > len(a.words) {
		a.words = append(a.words, make([]uint64, need-len(a.words))...)
	}

	a.gens = append(a.gens, 1)
	a.live = append(a.live, true)
	return Slot{offset: uint32(offset), gen: 1}
}

func (a *arena) index(s Slot) (uintptr, bool) {
	if !s.Valid() {
		return 0, false
	}
	index := uintptr(s.offset) / a.slotSize
	if index >= uintptr(len(a.gens)) || !a.live[index] || a.gens[index] != s.gen {
		return 0, false
	}
	return index, true
}

// ptr returns the address of a live slot. The address stays valid until the
// next allocate, which may move the buffer.
func (a *arena) ptr(s Slot) (unsafe.Pointer, bool) {
	if _, ok := a.index(s); !ok {
		return nil, false
	}
	return unsafe.Add(unsafe.Pointer(unsafe.SliceData(a.words)), s.offset), true
}

// bytes returns the memory of a live slot.
func (a *arena) bytes(s Slot) ([]byte, bool) {
	p, ok := a.ptr(s)
	if !ok {
		return nil, false
	}
	return unsafe.Slice((*byte)(p), a.slotSize), true
}

// write copies size bytes from src into a live slot.
func (a *arena) write(s Slot, src unsafe.Pointer, size uintptr) bool {
	dst, ok := a.bytes(s)
	if !ok {
		return false
	}
	copy(dst, unsafe.Slice((*byte)(src), min(size, a.slotSize)))
	return true
}

// release returns a slot to the free list. Releasing a slot twice, or through
// a stale handle, leaves the arena untouched.
func (a *arena) release(s Slot) error {
	index, ok := a.index(s)
	if !ok {
		return eris.Wrapf(ErrDoubleFree, "release offset %d", s.offset)
	}

	b, _ := a.bytes(s)
	clear(b)

	a.live[index] = false
	a.gens[index]++
	if a.gens[index] == 0 {
		a.gens[index] = 1
	}
	a.free = append(a.free, s.offset)
	return nil
}

func (a *arena) slotCount() int {
	return len(a.gens)
}

func (a *arena) freeCount() int {
	return len(a.free)
}

func (a *arena) liveCount() int {
	return len(a.gens) - len(a.free)
}

func (a *arena) bytesUsed() uintptr {
	return a.size
}

// freeOffsets returns a copy of the free list, most recently released last.
func (a *arena) freeOffsets() []uint32 {
	out := make([]uint32, len(a.free))
	copy(out, a.free)
	return out
}

func (a *arena) reset() {
	a.words = nil
	a.size = 0
	a.gens = nil
	a.live = nil
	a.free = nil
}

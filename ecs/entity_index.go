package ecs

import (
	"github.com/kamstrup/intmap"
	"github.com/rotisserie/eris"
)

// EntityId is a dense handle in [0, EntityCount). Ids are never renumbered;
// a removed id is recycled by a later NewEntity.
type EntityId uint32

// entityIndex holds one row per entity id. A row has one cell per TypeId; a
// cell is either the zero Slot (absent) or a handle into that type's arena.
type entityIndex struct {
	width    int
	batch    int
	cells    []Slot
	count    uint32
	recycled []EntityId
	isFree   *intmap.Set[EntityId]
}

func newEntityIndex(width, batch int) *entityIndex {
	return &entityIndex{
		width:  width,
		batch:  batch,
		isFree: intmap.NewSet[EntityId](batch),
	}
}

// allocate hands out the most recently recycled id, or the next sequential id.
// Rows are cleared when their entity is freed, so both paths return an
// all-absent row.
func (x *entityIndex) allocate() EntityId {
	if n := len(x.recycled); n > 0 {
		id := x.recycled[n-1]
		x.recycled = x.recycled[:n-1]
		x.isFree.Del(id)
		return id
	}

	if int(x.count)%x.batch == 0 {
		rows := (int(x.count)/x.batch + 1) * x.batch
		x.cells = append(x.cells, make([]Slot, rows*x.width-len(x.cells))...)
	}

	id := EntityId(x.count)
	x.count++
	return id
}

func (x *entityIndex) inRange(e EntityId) bool {
	return uint32(e) < x.count
}

func (x *entityIndex) isAlive(e EntityId) bool {
	return x.inRange(e) && !x.isFree.Has(e)
}

func (x *entityIndex) row(e EntityId) []Slot {
	start := int(e) * x.width
	return x.cells[start : start+x.width]
}

func (x *entityIndex) get(e EntityId, t TypeId) (Slot, bool) {
	if !x.inRange(e) || int(t) >= x.width {
		return Slot{}, false
	}
	s := x.cells[int(e)*x.width+int(t)]
	return s, s.Valid()
}

func (x *entityIndex) set(e EntityId, t TypeId, s Slot) bool {
	if !x.inRange(e) || int(t) >= x.width {
		return false
	}
	x.cells[int(e)*x.width+int(t)] = s
	return true
}

// clear marks a cell absent and returns what it held.
func (x *entityIndex) clear(e EntityId, t TypeId) (Slot, bool) {
	s, ok := x.get(e, t)
	if !ok {
		return Slot{}, false
	}
	x.cells[int(e)*x.width+int(t)] = Slot{}
	return s, true
}

func (x *entityIndex) hasAll(e EntityId, ids []TypeId) bool {
	if !x.inRange(e) {
		return false
	}
	row := x.row(e)
	for _, t := range ids {
		if int(t) >= x.width || !row[t].Valid() {
			return false
		}
	}
	return true
}

// free releases every present cell below limit through release, clears the
// row and recycles the id. Freeing an id that is out of range or already
// recycled changes nothing.
func (x *entityIndex) free(e EntityId, limit int, release func(TypeId, Slot)) error {
	if !x.inRange(e) {
		return eris.Wrapf(ErrEntityOutOfRange, "free entity %d", e)
	}
	if x.isFree.Has(e) {
		return eris.Wrapf(ErrEntityNotAlive, "free entity %d", e)
	}

	row := x.row(e)
	for t := 0; t < min(limit, x.width); t++ {
		if row[t].Valid() {
			release(TypeId(t), row[t])
			row[t] = Slot{}
		}
	}

	x.recycled = append(x.recycled, e)
	x.isFree.Add(e)
	return nil
}

func (x *entityIndex) liveCount() int {
	return int(x.count) - len(x.recycled)
}

func (x *entityIndex) recycledCount() int {
	return len(x.recycled)
}

func (x *entityIndex) reset() {
	x.cells = nil
	x.count = 0
	x.recycled = nil
	x.isFree.Clear()
}

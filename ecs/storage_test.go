package ecs_test

import (
	"reflect"
	"testing"

	"github.com/plus3/slotecs/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterComponentIdempotent(t *testing.T) {
	registry := ecs.NewComponentRegistry()

	first, err := ecs.RegisterComponent[Position](registry)
	require.NoError(t, err)
	second, err := ecs.RegisterComponent[Position](registry)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, registry.Len())

	id, ok := ecs.TypeIdOf[Position](registry)
	assert.True(t, ok)
	assert.Equal(t, first, id)
}

func TestRegisterComponentUniqueIds(t *testing.T) {
	registry := newTestRegistry()

	seen := make(map[ecs.TypeId]string)
	for _, info := range registry.Types() {
		_, dup := seen[info.Id]
		assert.False(t, dup, "duplicate id %d for %s", info.Id, info.Name)
		seen[info.Id] = info.Name
		assert.Less(t, int(info.Id), registry.Len())
	}
	assert.Len(t, seen, registry.Len())

	maxId, ok := registry.MaxTypeId()
	assert.True(t, ok)
	assert.Equal(t, ecs.TypeId(registry.Len()-1), maxId)
}

func TestSlotSize(t *testing.T) {
	registry := ecs.NewComponentRegistry()
	ecs.MustRegisterComponent[Position](registry)
	ecs.MustRegisterComponent[PlayerController](registry)
	ecs.MustRegisterComponent[[3]byte](registry)
	ecs.MustRegisterComponent[struct {
		A int64
		B byte
	}](registry)

	size, ok := ecs.SlotSizeOf[Position](registry)
	assert.True(t, ok)
	assert.Equal(t, uintptr(8), size)

	size, _ = ecs.SlotSizeOf[PlayerController](registry)
	assert.Equal(t, uintptr(1), size)

	size, _ = ecs.SlotSizeOf[[3]byte](registry)
	assert.Equal(t, uintptr(3), size)

	size, _ = ecs.SlotSizeOf[struct {
		A int64
		B byte
	}](registry)
	assert.Equal(t, uintptr(16), size)

	_, ok = ecs.SlotSizeOf[Velocity](registry)
	assert.False(t, ok)
}

func TestRegisterCapacityExceeded(t *testing.T) {
	registry := ecs.NewComponentRegistry(ecs.WithMaxTypes(2))

	_, err := ecs.RegisterComponent[Position](registry)
	require.NoError(t, err)
	_, err = ecs.RegisterComponent[Velocity](registry)
	require.NoError(t, err)

	_, err = ecs.RegisterComponent[Health](registry)
	assert.ErrorIs(t, err, ecs.ErrTypeCapacityExceeded)
	assert.Equal(t, 2, registry.Len())

	// Already registered types still resolve.
	id, err := ecs.RegisterComponent[Velocity](registry)
	assert.NoError(t, err)
	assert.Equal(t, ecs.TypeId(1), id)

	assert.Panics(t, func() {
		ecs.MustRegisterComponent[AI](registry)
	})
}

func TestRegisterPointerComponent(t *testing.T) {
	registry := ecs.NewComponentRegistry()

	for _, sample := range []any{Inventory{}, Target{}, Label(""), map[string]int{}, []int{}} {
		err := ecs.RegisterComponents(registry, sample)
		assert.ErrorIs(t, err, ecs.ErrPointerComponent, "%T", sample)
	}
	assert.Equal(t, 0, registry.Len())

	storage := ecs.NewStorage(registry)
	_, err := storage.Spawn(Label("nope"))
	assert.ErrorIs(t, err, ecs.ErrPointerComponent)
	assert.Equal(t, 0, storage.LiveEntityCount())
}

func TestRegisterRaw(t *testing.T) {
	registry := ecs.NewComponentRegistry()

	id, err := registry.RegisterRaw("Blob", 12, 4)
	require.NoError(t, err)

	info, ok := registry.Info(id)
	require.True(t, ok)
	assert.Equal(t, "Blob", info.Name)
	assert.Nil(t, info.Type)
	assert.Equal(t, uintptr(12), info.SlotSize)

	_, err = registry.RegisterRaw("Bad", 4, 3)
	assert.ErrorIs(t, err, ecs.ErrInvalidLayout)
	_, err = registry.RegisterRaw("Wide", 32, 16)
	assert.ErrorIs(t, err, ecs.ErrInvalidLayout)
}

func TestRegisterComponents(t *testing.T) {
	registry := ecs.NewComponentRegistry()

	err := ecs.RegisterComponents(registry, Position{}, &Velocity{}, Score(0))
	require.NoError(t, err)
	assert.Equal(t, 3, registry.Len())

	id, ok := registry.TypeIdFor(reflect.TypeOf(Velocity{}))
	assert.True(t, ok)
	assert.Equal(t, ecs.TypeId(1), id)
}

func TestNewEntityUniqueness(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	const n = 250
	seen := make(map[ecs.EntityId]bool)
	for range n {
		id := storage.NewEntity()
		assert.False(t, seen[id])
		assert.Less(t, int(id), n)
		seen[id] = true
	}
	assert.Len(t, seen, n)
	assert.Equal(t, n, storage.EntityCount())
}

func TestSpawnEntity(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	id, err := storage.Spawn(&Position{X: 1.0, Y: 2.0}, &Velocity{DX: 0.5, DY: 0.5}, Score(32))
	require.NoError(t, err)
	assert.Equal(t, ecs.EntityId(0), id)

	assert.True(t, ecs.HasComponent[Position](storage, id))
	assert.True(t, ecs.HasComponent[Velocity](storage, id))
	assert.True(t, ecs.HasComponent[Score](storage, id))
	assert.False(t, ecs.HasComponent[Health](storage, id))
}

func TestComponentRoundTrip(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	id := storage.NewEntity()
	require.NoError(t, ecs.AddComponent(storage, id, Position{X: 3.0, Y: 4.0}))
	require.NoError(t, ecs.AddComponent(storage, id, NewName("Test Entity")))

	pos, ok := ecs.GetComponent[Position](storage, id)
	require.True(t, ok)
	assert.Equal(t, Position{X: 3.0, Y: 4.0}, *pos)

	name, ok := ecs.GetComponent[Name](storage, id)
	require.True(t, ok)
	assert.Equal(t, "Test Entity", name.String())

	_, ok = ecs.GetComponent[Velocity](storage, id)
	assert.False(t, ok)
}

func TestAddComponentOverwritesInPlace(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	id := storage.NewEntity()

	require.NoError(t, ecs.AddComponent(storage, id, Health{Current: 10, Max: 100}))
	first, _ := ecs.GetComponent[Health](storage, id)
	version := storage.Version()

	require.NoError(t, ecs.AddComponent(storage, id, Health{Current: 90, Max: 100}))
	second, _ := ecs.GetComponent[Health](storage, id)

	assert.Same(t, first, second)
	assert.Equal(t, 90, second.Current)
	assert.Equal(t, version, storage.Version())
}

func TestAddComponentImplicitRegistration(t *testing.T) {
	registry := ecs.NewComponentRegistry()
	storage := ecs.NewStorage(registry)
	id := storage.NewEntity()

	require.NoError(t, ecs.AddComponent(storage, id, Temperature(21.5)))

	_, ok := ecs.TypeIdOf[Temperature](registry)
	assert.True(t, ok)
	assert.Equal(t, Temperature(21.5), *ecs.ReadComponent[Temperature](storage, id))
}

func TestOutOfRangeEntity(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	storage.NewEntity()
	version := storage.Version()

	err := ecs.AddComponent(storage, 500, Position{X: 1})
	assert.ErrorIs(t, err, ecs.ErrEntityOutOfRange)
	assert.Equal(t, version, storage.Version())
	assert.Equal(t, 1, storage.EntityCount())

	_, ok := ecs.GetComponent[Position](storage, 500)
	assert.False(t, ok)
	assert.Nil(t, ecs.ReadComponent[Position](storage, 500))
	assert.False(t, ecs.RemoveComponent[Position](storage, 500))
	assert.False(t, storage.IsAlive(500))
	assert.Empty(t, storage.ComponentIDs(500))

	assert.ErrorIs(t, storage.RemoveEntity(500), ecs.ErrEntityOutOfRange)
}

func TestRemoveComponent(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	id, err := storage.Spawn(&Position{X: 1.0, Y: 1.0}, &Velocity{DX: 0.5, DY: 0.5})
	require.NoError(t, err)

	assert.True(t, ecs.RemoveComponent[Velocity](storage, id))
	assert.False(t, ecs.HasComponent[Velocity](storage, id))
	assert.True(t, ecs.HasComponent[Position](storage, id))

	// Removing again reports nothing removed
	assert.False(t, ecs.RemoveComponent[Velocity](storage, id))
}

func TestRemoveEntity(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	id, err := storage.Spawn(&Position{X: 1.0, Y: 1.0}, &Health{Current: 100, Max: 100})
	require.NoError(t, err)

	require.NoError(t, storage.RemoveEntity(id))

	assert.False(t, storage.IsAlive(id))
	_, ok := ecs.GetComponent[Position](storage, id)
	assert.False(t, ok)

	// Double free is reported and changes nothing.
	version := storage.Version()
	assert.ErrorIs(t, storage.RemoveEntity(id), ecs.ErrEntityNotAlive)
	assert.Equal(t, version, storage.Version())
	assert.Equal(t, 0, storage.LiveEntityCount())
}

func TestEntityRecycling(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	a, _ := storage.Spawn(&Position{X: 1}, &Velocity{DX: 1}, Score(5))
	b, _ := storage.Spawn(&Position{X: 2})

	require.NoError(t, storage.RemoveEntity(a))

	c := storage.NewEntity()
	assert.Equal(t, a, c)
	assert.Empty(t, storage.ComponentIDs(c))
	assert.False(t, ecs.HasComponent[Position](storage, c))
	assert.False(t, ecs.HasComponent[Score](storage, c))

	// The other entity is untouched.
	pos, ok := ecs.GetComponent[Position](storage, b)
	require.True(t, ok)
	assert.Equal(t, float32(2), pos.X)
	assert.Equal(t, 2, storage.EntityCount())
}

func TestEntityRecyclingLIFO(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	for range 5 {
		storage.NewEntity()
	}

	require.NoError(t, storage.RemoveEntity(1))
	require.NoError(t, storage.RemoveEntity(3))

	assert.Equal(t, ecs.EntityId(3), storage.NewEntity())
	assert.Equal(t, ecs.EntityId(1), storage.NewEntity())
	assert.Equal(t, ecs.EntityId(5), storage.NewEntity())
}

func TestEntityBatchGrowth(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry(), ecs.WithEntityBatchSize(3))

	var ids []ecs.EntityId
	for i := range 10 {
		id, err := storage.Spawn(Score(i))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	for i, id := range ids {
		score, ok := ecs.GetComponent[Score](storage, id)
		require.True(t, ok)
		assert.Equal(t, Score(i), *score)
	}
}

func TestQueryIDs(t *testing.T) {
	registry := newTestRegistry()
	storage := ecs.NewStorage(registry)

	e0, _ := storage.Spawn(&Position{X: 1})
	e1, _ := storage.Spawn(&Position{X: 2}, &Velocity{DX: 1})
	e2, _ := storage.Spawn(&Velocity{DX: 2})

	posId, _ := ecs.TypeIdOf[Position](registry)
	velId, _ := ecs.TypeIdOf[Velocity](registry)

	assert.Equal(t, []ecs.EntityId{e1}, storage.QueryIDs(posId, velId))
	assert.Equal(t, []ecs.EntityId{e0, e1}, storage.QueryIDs(posId))
	assert.Equal(t, []ecs.EntityId{e1, e2}, storage.QueryIDs(velId))
	assert.Equal(t, []ecs.EntityId{e0, e1, e2}, storage.QueryIDs())

	require.NoError(t, storage.RemoveEntity(e1))
	assert.Empty(t, storage.QueryIDs(posId, velId))
	assert.Equal(t, []ecs.EntityId{e0, e2}, storage.QueryIDs())
}

func TestComponentByID(t *testing.T) {
	registry := newTestRegistry()
	storage := ecs.NewStorage(registry)
	posId, _ := ecs.TypeIdOf[Position](registry)

	id := storage.NewEntity()
	raw, err := storage.AddComponentByID(id, posId)
	require.NoError(t, err)
	assert.Len(t, raw, 8)
	assert.Equal(t, make([]byte, 8), raw)

	pos, ok := ecs.GetComponent[Position](storage, id)
	require.True(t, ok)
	pos.X = 2

	raw, ok = storage.GetComponentByID(id, posId)
	require.True(t, ok)
	assert.Equal(t, byte(0x40), raw[3])

	assert.True(t, storage.HasComponentByID(id, posId))
	assert.Equal(t, []ecs.TypeId{posId}, storage.ComponentIDs(id))

	assert.True(t, storage.RemoveComponentByID(id, posId))
	assert.False(t, storage.HasComponentByID(id, posId))

	_, err = storage.AddComponentByID(id, ecs.TypeId(registry.Capacity()+1))
	assert.ErrorIs(t, err, ecs.ErrUnknownType)
}

func TestReleasedSlotsAreReused(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	a, _ := storage.Spawn(Health{Current: 1, Max: 1})
	before := storage.CollectStats()

	require.NoError(t, storage.RemoveEntity(a))
	b, _ := storage.Spawn(Health{Current: 2, Max: 2})

	after := storage.CollectStats()
	assert.Equal(t, before.TotalBytes, after.TotalBytes)

	h, ok := ecs.GetComponent[Health](storage, b)
	require.True(t, ok)
	assert.Equal(t, Health{Current: 2, Max: 2}, *h)
}

func TestPositionVelocityScenario(t *testing.T) {
	registry := ecs.NewComponentRegistry()
	ecs.MustRegisterComponent[Position](registry)
	ecs.MustRegisterComponent[Velocity](registry)
	storage := ecs.NewStorage(registry)

	e1 := storage.NewEntity()
	e2 := storage.NewEntity()
	require.NoError(t, ecs.AddComponent(storage, e1, Position{X: 1.0, Y: 2.0}))
	require.NoError(t, ecs.AddComponent(storage, e1, Velocity{DX: 0.1, DY: 0.05}))
	require.NoError(t, ecs.AddComponent(storage, e2, Position{X: 5.0, Y: 5.0}))

	view := ecs.NewView[struct {
		*Position
		*Velocity
	}](storage)

	assert.Equal(t, []ecs.EntityId{e1}, view.Entities())

	view.ForEach(func(_ ecs.EntityId, item struct {
		*Position
		*Velocity
	}) {
		item.Position.X += item.Velocity.DX
		item.Position.Y += item.Velocity.DY
	})

	p1, _ := ecs.GetComponent[Position](storage, e1)
	assert.Equal(t, Position{X: 1.1, Y: 2.05}, *p1)
	p2, _ := ecs.GetComponent[Position](storage, e2)
	assert.Equal(t, Position{X: 5.0, Y: 5.0}, *p2)
}

func TestClear(t *testing.T) {
	registry := newTestRegistry()
	storage := ecs.NewStorage(registry)

	for i := range 4 {
		_, err := storage.Spawn(&Position{X: float32(i)})
		require.NoError(t, err)
	}
	storage.Clear()

	assert.Equal(t, 0, storage.EntityCount())
	assert.Equal(t, 0, storage.LiveEntityCount())
	assert.Equal(t, 10, registry.Len())

	id := storage.NewEntity()
	assert.Equal(t, ecs.EntityId(0), id)
	assert.False(t, ecs.HasComponent[Position](storage, id))
}

func TestVersion(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	v0 := storage.Version()

	id := storage.NewEntity()
	v1 := storage.Version()
	assert.Greater(t, v1, v0)

	require.NoError(t, ecs.AddComponent(storage, id, Position{}))
	v2 := storage.Version()
	assert.Greater(t, v2, v1)

	// Reads and in-place writes are not structural
	pos, _ := ecs.GetComponent[Position](storage, id)
	pos.X = 4
	assert.Equal(t, v2, storage.Version())

	ecs.RemoveComponent[Position](storage, id)
	assert.Greater(t, storage.Version(), v2)
}

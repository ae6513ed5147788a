package main

import (
	"math/rand"
	"reflect"

	"github.com/plus3/slotecs/ecs"
)

// Body marks every entity the churn system may touch.
type Body struct{}

type Position struct{ X, Y, Z float32 }
type Velocity struct{ X, Y, Z float32 }
type Health struct{ Current, Max int32 }
type Lifetime struct{ Remaining float64 }
type Transform struct{ Matrix [16]float32 }
type Flags struct{ Bits uint64 }
type Team struct{ ID uint8 }
type Inventory struct{ Slots [32]uint16 }

func randomComponent(rng *rand.Rand) any {
	switch rng.Intn(8) {
	case 0:
		return Position{rng.Float32(), rng.Float32(), rng.Float32()}
	case 1:
		return Velocity{rng.Float32() - 0.5, rng.Float32() - 0.5, 0}
	case 2:
		return Health{Current: 100, Max: 100}
	case 3:
		return Lifetime{Remaining: rng.Float64() * 10}
	case 4:
		return Transform{}
	case 5:
		return Flags{Bits: rng.Uint64()}
	case 6:
		return Team{ID: uint8(rng.Intn(4))}
	default:
		return Inventory{}
	}
}

var churnTypes = []reflect.Type{
	reflect.TypeFor[Position](),
	reflect.TypeFor[Velocity](),
	reflect.TypeFor[Health](),
	reflect.TypeFor[Lifetime](),
	reflect.TypeFor[Transform](),
	reflect.TypeFor[Flags](),
	reflect.TypeFor[Team](),
	reflect.TypeFor[Inventory](),
}

// RegisterStressComponents registers every component the stress test uses.
func RegisterStressComponents(registry *ecs.ComponentRegistry) error {
	return ecs.RegisterComponents(registry,
		Body{}, Position{}, Velocity{}, Health{}, Lifetime{},
		Transform{}, Flags{}, Team{}, Inventory{},
	)
}

// randomComponents returns a Body plus n random components.
func randomComponents(rng *rand.Rand, n int) []any {
	components := make([]any, 0, n+1)
	components = append(components, Body{})
	for range n {
		components = append(components, randomComponent(rng))
	}
	return components
}

// SpawnRandomEntity creates an entity with a Body and n random components.
func SpawnRandomEntity(storage *ecs.Storage, rng *rand.Rand, n int) (ecs.EntityId, error) {
	return storage.Spawn(randomComponents(rng, n)...)
}

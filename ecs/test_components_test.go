package ecs_test

import "github.com/plus3/slotecs/ecs"

// Common test component types. Arena memory is not scanned by the garbage
// collector, so every component is plain data.
type Position struct {
	X, Y float32
}

type Velocity struct {
	DX, DY float32
}

type Name struct {
	Value [16]byte
}

func NewName(s string) Name {
	var n Name
	copy(n.Value[:], s)
	return n
}

func (n Name) String() string {
	end := 0
	for end < len(n.Value) && n.Value[end] != 0 {
		end++
	}
	return string(n.Value[:end])
}

type Health struct {
	Current int
	Max     int
}

type PlayerController struct{}

type AI struct {
	State int
}

// Custom primitive types for testing non-struct components
type Score int32
type Temperature float64

type TestA int64
type TestB int64

// Pointerful types are rejected by the registry.
type Inventory struct {
	Items []string
}
type Target struct {
	Enemy *Name
}
type Label string

func newTestRegistry() *ecs.ComponentRegistry {
	registry := ecs.NewComponentRegistry()
	ecs.MustRegisterComponent[Position](registry)
	ecs.MustRegisterComponent[Velocity](registry)
	ecs.MustRegisterComponent[Name](registry)
	ecs.MustRegisterComponent[Health](registry)
	ecs.MustRegisterComponent[PlayerController](registry)
	ecs.MustRegisterComponent[AI](registry)
	ecs.MustRegisterComponent[Score](registry)
	ecs.MustRegisterComponent[Temperature](registry)
	ecs.MustRegisterComponent[TestA](registry)
	ecs.MustRegisterComponent[TestB](registry)
	return registry
}

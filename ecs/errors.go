package ecs

import "github.com/rotisserie/eris"

var (
	// ErrTypeCapacityExceeded is returned when a registry already holds as many
	// component types as its configured capacity.
	ErrTypeCapacityExceeded = eris.New("component type capacity exceeded")

	// ErrPointerComponent is returned when a component type holds Go pointers.
	// Arena bytes are invisible to the garbage collector, so only plain value
	// types (numbers, bools, arrays and structs of those) can be stored.
	ErrPointerComponent = eris.New("component type contains pointers")

	// ErrInvalidLayout is returned for raw registrations with a size or
	// alignment the arena cannot honour.
	ErrInvalidLayout = eris.New("invalid component layout")

	ErrUnknownType      = eris.New("component type not registered")
	ErrEntityOutOfRange = eris.New("entity out of range")
	ErrEntityNotAlive   = eris.New("entity is not alive")
	ErrMissingComponent = eris.New("required component missing")

	// ErrDoubleFree is returned when a slot is released twice, or released
	// through a handle whose slot has since been reused.
	ErrDoubleFree = eris.New("slot already released")
)

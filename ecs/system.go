package ecs

// System represents a behavior that operates on entities with specific components.
// User-defined systems should implement this interface and can include Query fields
// for accessing entities, as well as Singleton fields and custom state that persists
// between frames. Systems must not add or remove entities or components directly
// while iterating; they queue those changes on frame.Commands.
type System interface {
	Execute(frame *UpdateFrame)
}

// executor is implemented by Query; the scheduler refreshes every query a
// system holds before the system runs.
type executor interface {
	Execute()
}

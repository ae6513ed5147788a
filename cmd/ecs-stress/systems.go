package main

import (
	"math/rand"

	"github.com/plus3/slotecs/ecs"
)

type MovementSystem struct {
	Movers ecs.Query[struct {
		*Position
		*Velocity
	}]
	Workers int
}

func (s *MovementSystem) Execute(frame *ecs.UpdateFrame) {
	dt := float32(frame.DeltaTime)
	_ = s.Movers.View().ParallelForEach(s.Workers, func(_ ecs.EntityId, m struct {
		*Position
		*Velocity
	}) error {
		m.Position.X += m.Velocity.X * dt
		m.Position.Y += m.Velocity.Y * dt
		m.Position.Z += m.Velocity.Z * dt
		return nil
	})
}

type DecaySystem struct {
	Living ecs.Query[struct {
		*Lifetime
		Health *Health `ecs:"optional"`
	}]
}

func (s *DecaySystem) Execute(frame *ecs.UpdateFrame) {
	for id, item := range s.Living.Iter() {
		item.Remaining -= frame.DeltaTime
		if item.Health != nil && item.Health.Current > 0 {
			item.Health.Current--
		}
		if item.Remaining <= 0 {
			frame.Commands.Delete(id)
		}
	}
}

// ChurnSystem queues a fixed number of random structural changes per frame.
type ChurnSystem struct {
	Bodies   ecs.Query[struct{ *Body }]
	Rng      *rand.Rand
	PerFrame int

	ids []ecs.EntityId
}

func (s *ChurnSystem) Execute(frame *ecs.UpdateFrame) {
	s.ids = s.ids[:0]
	for id := range s.Bodies.Iter() {
		s.ids = append(s.ids, id)
	}

	for range s.PerFrame {
		if len(s.ids) == 0 {
			frame.Commands.Spawn(randomComponents(s.Rng, s.Rng.Intn(5)+1)...)
			continue
		}

		target := s.ids[s.Rng.Intn(len(s.ids))]
		switch s.Rng.Intn(4) {
		case 0:
			frame.Commands.Delete(target)
		case 1:
			frame.Commands.Spawn(randomComponents(s.Rng, s.Rng.Intn(5)+1)...)
		case 2:
			frame.Commands.AddComponent(target, randomComponent(s.Rng))
		default:
			frame.Commands.RemoveComponent(target, churnTypes[s.Rng.Intn(len(churnTypes))])
		}
	}
}

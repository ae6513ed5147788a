package main

import "github.com/plus3/slotecs/ecs"

type Position struct {
	X, Y float32
}

type Velocity struct {
	X, Y float32
}

type Sprite struct {
	Size    float32
	Color   [3]float32 `debugui:"color"`
	Visible bool
}

// Bounds is the playfield size, kept as a singleton.
type Bounds struct {
	Width, Height float32
}

type Drawable struct {
	*Position
	*Sprite
}

// MovementSystem integrates velocities and bounces entities off the edges
// of the playfield.
type MovementSystem struct {
	Movers ecs.Query[struct {
		*Position
		*Velocity
	}]
	Bounds  ecs.Singleton[Bounds]
	Workers int
}

func (s *MovementSystem) Execute(frame *ecs.UpdateFrame) {
	bounds := s.Bounds.Get()
	if bounds == nil {
		return
	}
	dt := float32(frame.DeltaTime)
	limits := *bounds

	_ = s.Movers.View().ParallelForEach(s.Workers, func(_ ecs.EntityId, m struct {
		*Position
		*Velocity
	}) error {
		bounce(m.Position, m.Velocity, limits, dt)
		return nil
	})
}

func bounce(p *Position, v *Velocity, b Bounds, dt float32) {
	p.X += v.X * dt
	p.Y += v.Y * dt

	if p.X < 0 {
		p.X, v.X = -p.X, -v.X
	} else if p.X > b.Width {
		p.X, v.X = 2*b.Width-p.X, -v.X
	}
	if p.Y < 0 {
		p.Y, v.Y = -p.Y, -v.Y
	} else if p.Y > b.Height {
		p.Y, v.Y = 2*b.Height-p.Y, -v.Y
	}
}

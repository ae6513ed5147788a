// Command ecs-demo registers Position and Velocity, creates two entities and
// steps them once sequentially and once in parallel.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/plus3/slotecs/ecs"
	"github.com/plus3/slotecs/internal/config"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

type Position struct {
	X, Y float32
}

type Velocity struct {
	X, Y float32
}

type Mover struct {
	*Position
	*Velocity
}

func main() {
	configPath := flag.String("config", "", "Path to a TOML or YAML config file.")
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(os.Stdout, cfg, logger); err != nil {
		logger.Fatal("demo failed", zap.Error(err))
	}
}

func run(out io.Writer, cfg *config.Config, logger *zap.Logger) error {
	opts := cfg.Engine.Options(logger)
	registry := ecs.NewComponentRegistry(opts...)
	if err := ecs.RegisterComponents(registry, Position{}, Velocity{}); err != nil {
		return err
	}
	storage := ecs.NewStorage(registry, opts...)

	first := storage.NewEntity()
	if err := storage.Add(first, Position{1, 2}, Velocity{0.1, 0.05}); err != nil {
		return err
	}

	second := storage.NewEntity()
	if err := ecs.AddComponent(storage, second, Position{2, 2}); err != nil {
		return err
	}
	if err := ecs.AddComponent(storage, second, Velocity{2, 2}); err != nil {
		return err
	}

	movers := ecs.NewView[Mover](storage)

	movers.ForEach(func(id ecs.EntityId, m Mover) {
		step(m)
		fmt.Fprintf(out, "Entity %d: %f %f\n", id, m.Position.X, m.Position.Y)
	})

	// Parallel callbacks only touch their own components; output is
	// serialised so lines stay whole.
	var mu sync.Mutex
	err := movers.ParallelForEach(cfg.Engine.Workers, func(id ecs.EntityId, m Mover) error {
		step(m)
		mu.Lock()
		defer mu.Unlock()
		_, err := fmt.Fprintf(out, "Entity %d: %f %f\n", id, m.Position.X, m.Position.Y)
		return err
	})
	if err != nil {
		return eris.Wrap(err, "parallel step")
	}
	return nil
}

func step(m Mover) {
	m.Position.X += m.Velocity.X
	m.Position.Y += m.Velocity.Y
}

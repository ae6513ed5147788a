// Command ecs-viewer opens an Ebiten window running a bouncing movement
// simulation with the ECS inspector on top.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"math/rand"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/plus3/slotecs/ecs"
	"github.com/plus3/slotecs/ecs/debugui"
	debugui_ebiten "github.com/plus3/slotecs/ecs/debugui/ebiten"
	"github.com/plus3/slotecs/internal/config"
	"go.uber.org/zap"
)

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

	world, err := NewWorld(cfg, logger)
	if err != nil {
		logger.Fatal("world setup failed", zap.Error(err))
	}

	backend := debugui_ebiten.New(cfg.Viewer.Title, cfg.Viewer.Width, cfg.Viewer.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	game := &debugui_ebiten.Game{
		Backend:   backend,
		Scheduler: world.Scheduler,
		DrawWorld: world.Draw,
		Log:       logger,
	}
	if err := ebiten.RunGame(game); err != nil {
		logger.Fatal("game loop failed", zap.Error(err))
	}
}

// World holds the simulated storage and the systems that drive it.
type World struct {
	Storage   *ecs.Storage
	Scheduler *ecs.Scheduler
	Inspector *debugui.Inspector
	Bounds    Bounds

	sprites *ecs.View[Drawable]
}

func NewWorld(cfg *config.Config, logger *zap.Logger) (*World, error) {
	opts := cfg.Engine.Options(logger)
	storage := ecs.NewStorage(ecs.NewComponentRegistry(opts...), opts...)

	inspector := debugui.NewInspector(storage, debugui.WithLogger(logger.Named("inspector")))
	if _, err := debugui.RegisterStruct[Position](inspector); err != nil {
		return nil, err
	}
	if _, err := debugui.RegisterStruct[Velocity](inspector); err != nil {
		return nil, err
	}
	if _, err := debugui.RegisterStruct[Sprite](inspector); err != nil {
		return nil, err
	}
	if _, err := debugui.RegisterStruct[Bounds](inspector); err != nil {
		return nil, err
	}

	bounds := Bounds{Width: float32(cfg.Viewer.Width), Height: float32(cfg.Viewer.Height)}
	ecs.NewSingleton(storage, bounds)

	rng := rand.New(rand.NewSource(cfg.Stress.Seed))
	for range cfg.Viewer.Entities {
		_, err := storage.Spawn(
			Position{X: rng.Float32() * bounds.Width, Y: rng.Float32() * bounds.Height},
			Velocity{X: (rng.Float32() - 0.5) * 200, Y: (rng.Float32() - 0.5) * 200},
			Sprite{Size: 4 + rng.Float32()*8, Color: [3]float32{rng.Float32(), rng.Float32(), rng.Float32()}, Visible: true},
		)
		if err != nil {
			return nil, err
		}
	}

	scheduler := ecs.NewScheduler(storage)
	scheduler.Register(&MovementSystem{Workers: cfg.Engine.Workers})
	scheduler.Register(&debugui.ImguiSystem{Inspector: inspector})

	return &World{
		Storage:   storage,
		Scheduler: scheduler,
		Inspector: inspector,
		Bounds:    bounds,
		sprites:   ecs.NewView[Drawable](storage),
	}, nil
}

// Draw paints every visible sprite as a filled square.
func (w *World) Draw(screen *ebiten.Image) {
	for _, d := range w.sprites.Iter() {
		if !d.Visible {
			continue
		}
		c := color.RGBA{R: channel(d.Color[0]), G: channel(d.Color[1]), B: channel(d.Color[2]), A: 0xff}
		half := d.Size / 2
		vector.DrawFilledRect(screen, d.Position.X-half, d.Position.Y-half, d.Size, d.Size, c, false)
	}
}

func channel(v float32) uint8 {
	return uint8(min(max(v, 0), 1) * 255)
}

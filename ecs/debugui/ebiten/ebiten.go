// Package ebiten provides Dear ImGui backend integration for the Ebiten game engine.
package ebiten

import (
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/slotecs/ecs"
	"github.com/plus3/slotecs/ecs/debugui"
	"go.uber.org/zap"
)

// ImguiBackend wraps the Ebiten-specific Dear ImGui backend implementation.
// Use this to integrate Dear ImGui rendering into Ebiten game loops.
type ImguiBackend struct {
	*ebitenbackend.EbitenBackend
}

// New creates the backend and its window. ImGui's ini persistence is disabled.
func New(title string, width, height int) *ImguiBackend {
	backend := ebitenbackend.NewEbitenBackend()
	backend.CreateWindow(title, width, height)
	imgui.CurrentIO().SetIniFilename("")
	return &ImguiBackend{EbitenBackend: backend}
}

// Game implements ebiten.Game by running a scheduler inside an ImGui frame.
// Register a debugui.ImguiSystem on the scheduler to draw the inspector.
type Game struct {
	Backend   *ImguiBackend
	Scheduler *ecs.Scheduler
	// DrawWorld, if set, draws the scene below the ImGui overlay.
	DrawWorld func(screen *ebiten.Image)
	Log       *zap.Logger

	timer *debugui.FrameTimer
}

func (g *Game) Update() error {
	if g.timer == nil {
		g.timer = debugui.NewFrameTimer()
	}

	g.Backend.BeginFrame()
	if err := g.Scheduler.Once(g.timer.GetDeltaTime()); err != nil && g.Log != nil {
		g.Log.Warn("frame had command errors", zap.Error(err))
	}
	g.Backend.EndFrame()

	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.DrawWorld != nil {
		g.DrawWorld(screen)
	}
	g.Backend.Draw(screen)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.Backend.Layout(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

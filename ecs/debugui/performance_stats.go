package debugui

import (
	"fmt"
	"strconv"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
)

func newPerformanceStats(historyFrames int) *performanceStats {
	return &performanceStats{
		history: make([]float32, historyFrames),
	}
}

// record stores one frame time given in seconds.
func (ps *performanceStats) record(deltaTime float32) {
	ps.history[ps.index] = deltaTime * 1000.0
	ps.index = (ps.index + 1) % len(ps.history)
	ps.filled = min(ps.filled+1, len(ps.history))
}

// average returns the mean recorded frame time in milliseconds.
func (ps *performanceStats) average() float32 {
	if ps.filled == 0 {
		return 0
	}
	var sum float32
	for _, ft := range ps.history[:ps.filled] {
		sum += ft
	}
	return sum / float32(ps.filled)
}

func (ps *performanceStats) render(insp *Inspector) {
	if !imgui.BeginV("Performance Stats", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	stats := insp.storage.CollectStats()

	imgui.Text(fmt.Sprintf("Entities: %d (%d recycled)", stats.TotalEntityCount, stats.RecycledCount))
	imgui.Text(fmt.Sprintf("Component Types: %d", stats.TypeCount))
	imgui.Text(fmt.Sprintf("Singletons: %d", stats.SingletonCount))
	imgui.Text(fmt.Sprintf("Arena Memory: %d bytes", stats.TotalBytes))

	avg := ps.average()
	if avg > 0 {
		imgui.Text(fmt.Sprintf("Avg Frame Time: %.2f ms (%.0f FPS)", avg, 1000.0/avg))
	}

	imgui.Separator()
	imgui.Text("Frame Time Graph (ms)")
	imgui.PlotLinesFloatPtr("##frametime", &ps.history[0], int32(len(ps.history)))

	if imgui.TreeNodeStr("Type Details") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("TypeStatsTable", 3, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("Type")
			imgui.TableSetupColumn("Live")
			imgui.TableSetupColumn("Bytes")
			imgui.TableHeadersRow()

			for _, ts := range stats.TypeBreakdown {
				imgui.TableNextRow()
				imgui.TableNextColumn()
				imgui.Text(insp.TypeName(ts.Id))
				imgui.TableNextColumn()
				imgui.Text(strconv.Itoa(ts.Live))
				imgui.TableNextColumn()
				imgui.Text(strconv.Itoa(int(ts.Bytes)))
			}

			imgui.EndTable()
		}
		imgui.TreePop()
	}

	if imgui.TreeNodeStr("Singleton Details") {
		for _, singletonType := range stats.SingletonTypes {
			imgui.BulletText(singletonType)
		}
		imgui.TreePop()
	}

	imgui.End()
}

// FrameTimer measures the time between successive calls.
type FrameTimer struct {
	lastFrameTime time.Time
}

func NewFrameTimer() *FrameTimer {
	return &FrameTimer{
		lastFrameTime: time.Now(),
	}
}

func (ft *FrameTimer) GetDeltaTime() float64 {
	now := time.Now()
	delta := now.Sub(ft.lastFrameTime).Seconds()
	ft.lastFrameTime = now
	return delta
}

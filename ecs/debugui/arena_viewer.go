package debugui

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/slotecs/ecs"
)

const (
	arenaColumnType = iota
	arenaColumnSlotSize
	arenaColumnSlots
	arenaColumnLive
	arenaColumnFree
	arenaColumnBytes
)

func newArenaViewer() *arenaViewer {
	return &arenaViewer{
		sortColumn: arenaColumnLive,
		ascending:  false,
	}
}

func (av *arenaViewer) render(insp *Inspector) {
	if !imgui.BeginV("Arena Viewer", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	av.rebuildIfNeeded(insp)

	maxLive := 0
	for _, ts := range av.types {
		maxLive = max(maxLive, ts.Live)
	}

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("ArenaTable", 6, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Type")
		imgui.TableSetupColumn("Slot Size")
		imgui.TableSetupColumn("Slots")
		imgui.TableSetupColumn("Live")
		imgui.TableSetupColumn("Free")
		imgui.TableSetupColumn("Bytes")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			av.sortColumn = int(spec.ColumnIndex())
			av.ascending = spec.SortDirection() == imgui.SortDirectionAscending
			sortTypeStats(av.types, av.sortColumn, av.ascending)
			sortSpecs.SetSpecsDirty(false)
		}

		for _, ts := range av.types {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			imgui.Text(insp.TypeName(ts.Id))

			imgui.TableNextColumn()
			imgui.Text(strconv.Itoa(int(ts.SlotSize)))

			imgui.TableNextColumn()
			imgui.Text(strconv.Itoa(ts.Slots))

			imgui.TableNextColumn()
			imgui.Text(strconv.Itoa(ts.Live))
			if maxLive > 0 {
				barWidth := float32(ts.Live) / float32(maxLive) * 80.0
				imgui.SameLine()
				drawList := imgui.WindowDrawList()
				pos := imgui.CursorScreenPos()
				color := imgui.ColorU32Vec4(imgui.NewVec4(0.2, 0.6, 0.8, 0.6))
				drawList.AddRectFilled(pos, imgui.NewVec2(pos.X+barWidth, pos.Y+10), color)
			}

			imgui.TableNextColumn()
			imgui.Text(strconv.Itoa(ts.Free))

			imgui.TableNextColumn()
			if ts.Allocated {
				imgui.Text(fmt.Sprintf("%d", ts.Bytes))
			} else {
				imgui.Text("-")
			}
		}

		imgui.EndTable()
	}

	imgui.End()
}

func (av *arenaViewer) rebuildIfNeeded(insp *Inspector) {
	version := insp.storage.Version()
	if av.built && av.version == version {
		return
	}
	av.types = insp.storage.CollectStats().TypeBreakdown
	sortTypeStats(av.types, av.sortColumn, av.ascending)
	av.version = version
	av.built = true
}

func sortTypeStats(types []ecs.TypeStats, column int, ascending bool) {
	sort.SliceStable(types, func(i, j int) bool {
		a, b := types[i], types[j]
		if !ascending {
			a, b = b, a
		}
		var less bool

		switch column {
		case arenaColumnType:
			less = a.Name < b.Name
		case arenaColumnSlotSize:
			less = a.SlotSize < b.SlotSize
		case arenaColumnSlots:
			less = a.Slots < b.Slots
		case arenaColumnFree:
			less = a.Free < b.Free
		case arenaColumnBytes:
			less = a.Bytes < b.Bytes
		default:
			less = a.Live < b.Live
		}

		return less
	})
}

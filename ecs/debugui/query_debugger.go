package debugui

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/slotecs/ecs"
)

const maxListedMatches = 256

func newQueryDebugger() *queryDebugger {
	return &queryDebugger{
		selected: make(map[ecs.TypeId]bool),
	}
}

func (qd *queryDebugger) render(insp *Inspector) {
	if !imgui.BeginV("Query Debugger", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	imgui.Text("Select Component Types:")
	imgui.Separator()

	if imgui.Button("Clear All") {
		clear(qd.selected)
	}

	for _, info := range insp.storage.Registry().Types() {
		selected := qd.selected[info.Id]
		if imgui.Checkbox(fmt.Sprintf("%s##query%d", insp.TypeName(info.Id), info.Id), &selected) {
			qd.toggle(info.Id, selected)
		}
	}

	imgui.Separator()

	types := qd.selectedTypes()
	if len(types) == 0 {
		imgui.Text("No component types selected")
		imgui.End()
		return
	}

	matches := qd.run(insp.storage, types)
	imgui.Text(fmt.Sprintf("Matching Entities: %d", len(matches)))

	if imgui.TreeNodeStr("Matches") {
		selected, hasSelection := insp.Selected()
		for _, id := range matches[:min(len(matches), maxListedMatches)] {
			isSelected := hasSelection && selected == id
			if imgui.SelectableBoolV(fmt.Sprintf("Entity %d##match", id), isSelected, imgui.SelectableFlagsNone, imgui.NewVec2(0, 0)) {
				insp.Select(id)
			}
		}
		if len(matches) > maxListedMatches {
			imgui.Text(fmt.Sprintf("... %d more", len(matches)-maxListedMatches))
		}
		imgui.TreePop()
	}

	imgui.End()
}

func (qd *queryDebugger) toggle(t ecs.TypeId, on bool) {
	if on {
		qd.selected[t] = true
	} else {
		delete(qd.selected, t)
	}
}

// selectedTypes returns the ticked type ids in increasing order.
func (qd *queryDebugger) selectedTypes() []ecs.TypeId {
	types := make([]ecs.TypeId, 0, len(qd.selected))
	for t := range qd.selected {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

// run returns the entities holding every type, reusing the last result while
// neither the selection nor the storage has changed.
func (qd *queryDebugger) run(storage *ecs.Storage, types []ecs.TypeId) []ecs.EntityId {
	var key strings.Builder
	for _, t := range types {
		key.WriteString(strconv.Itoa(int(t)))
		key.WriteByte(',')
	}

	if qd.key == key.String() && qd.version == storage.Version() && qd.matches != nil {
		return qd.matches
	}
	qd.matches = storage.QueryIDs(types...)
	if qd.matches == nil {
		qd.matches = []ecs.EntityId{}
	}
	qd.key = key.String()
	qd.version = storage.Version()
	return qd.matches
}

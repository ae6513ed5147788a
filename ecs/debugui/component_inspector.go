package debugui

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/slotecs/ecs"
)

// RenderEntityList draws a "Scene" window with one selectable row per id.
func (i *Inspector) RenderEntityList(ids []ecs.EntityId) {
	if !imgui.BeginV("Scene", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	selected, hasSelection := i.Selected()
	for _, id := range ids {
		isSelected := hasSelection && selected == id
		if imgui.SelectableBoolV(fmt.Sprintf("Entity %d", id), isSelected, imgui.SelectableFlagsNone, imgui.NewVec2(0, 0)) {
			i.Select(id)
		}
	}

	imgui.End()
}

// RenderEntityInspector draws the components of the selected entity with an
// editor per table field. Add and remove requests are applied after drawing.
func (i *Inspector) RenderEntityInspector(mode RenderMode) {
	switch mode {
	case ModeWindow:
		if imgui.BeginV("Inspector", nil, imgui.WindowFlagsNone) {
			i.drawInspector()
		}
		imgui.End()
	default:
		if imgui.BeginChildStr("Inspector") {
			i.drawInspector()
		}
		imgui.EndChild()
	}
	i.applyPending()
}

func (i *Inspector) drawInspector() {
	id, ok := i.Selected()
	if !ok {
		imgui.Text("No entity selected")
		return
	}

	imgui.Text(fmt.Sprintf("Entity %d", id))
	imgui.SameLine()
	if imgui.Button("Delete##entity") {
		i.queue(func() { _ = i.RemoveEntity(id) })
	}
	imgui.Separator()

	for _, t := range i.storage.ComponentIDs(id) {
		mem, ok := i.storage.GetComponentByID(id, t)
		if !ok {
			continue
		}

		open := imgui.TreeNodeStr(fmt.Sprintf("%s##%d", i.TypeName(t), t))
		imgui.SameLine()
		if imgui.Button(fmt.Sprintf("X##remove%d", t)) {
			i.queue(func() { i.RemoveComponent(id, t) })
		}
		if open {
			i.drawFields(t, mem)
			imgui.TreePop()
		}
	}

	imgui.Separator()
	if imgui.Button("New Component") {
		imgui.OpenPopupStr("New Component")
	}
	if imgui.BeginPopup("New Component") {
		for _, t := range i.AddableTypes(id) {
			if imgui.Button(fmt.Sprintf("%s##add%d", i.TypeName(t), t)) {
				i.queue(func() { _ = i.AddComponent(id, t) })
				imgui.CloseCurrentPopup()
			}
		}
		imgui.EndPopup()
	}
}

func (i *Inspector) drawFields(t ecs.TypeId, mem []byte) {
	fields := i.Fields(t)
	if len(fields) == 0 {
		imgui.Text(fmt.Sprintf("% x", mem))
		return
	}
	for _, f := range fields {
		drawField(fmt.Sprintf("%s##%d.%d", f.Name, t, f.Offset), f, mem)
	}
}

func drawField(label string, f Field, mem []byte) {
	switch f.Kind {
	case KindInt:
		v, ok := f.ReadInt(mem)
		if ok && imgui.DragInt(label, &v) {
			f.WriteInt(mem, v)
		}
	case KindBool:
		v, ok := f.ReadBool(mem)
		if ok && imgui.Checkbox(label, &v) {
			f.WriteBool(mem, v)
		}
	default:
		values, ok := f.ReadFloats(mem)
		if !ok {
			imgui.Text(fmt.Sprintf("%s: <out of bounds>", f.Name))
			return
		}
		if drawFloats(label, f.Kind, values) {
			f.WriteFloats(mem, values...)
		}
	}
}

// drawFloats edits values in place and reports whether they changed.
func drawFloats(label string, kind FieldKind, values []float32) bool {
	switch kind {
	case KindFloat:
		return imgui.DragFloat(label, &values[0])
	case KindVec2:
		v := [2]float32(values)
		if imgui.DragFloat2(label, &v) {
			copy(values, v[:])
			return true
		}
	case KindVec3:
		v := [3]float32(values)
		if imgui.DragFloat3(label, &v) {
			copy(values, v[:])
			return true
		}
	case KindVec4:
		v := [4]float32(values)
		if imgui.DragFloat4(label, &v) {
			copy(values, v[:])
			return true
		}
	case KindColor:
		v := [3]float32(values)
		if imgui.ColorEdit3(label, &v) {
			copy(values, v[:])
			return true
		}
	}
	return false
}

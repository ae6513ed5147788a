package debugui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/slotecs/ecs"
)

type EntityInfo struct {
	ID             ecs.EntityId
	ComponentTypes []string
	ComponentCount int
}

const (
	columnEntityID = iota
	columnComponents
	columnCount
)

func newEntityBrowser(pageSize int) *entityBrowser {
	return &entityBrowser{
		pageSize:  pageSize,
		ascending: true,
	}
}

func (eb *entityBrowser) render(insp *Inspector) {
	if !imgui.BeginV("Entity Browser", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	eb.rebuildIfNeeded(insp)

	imgui.InputTextWithHint("##search", "Search...", &eb.filterText, imgui.InputTextFlagsNone, nil)
	imgui.SameLine()
	if imgui.Button("Clear Filter") {
		eb.filterText = ""
		eb.currentPage = 0
	}
	imgui.SameLine()
	if imgui.Button("Spawn Entity") {
		insp.queue(func() { insp.SpawnEntity() })
	}

	filtered := filterEntities(eb.entities, eb.filterText)
	start, end := pageBounds(len(filtered), eb.currentPage, eb.pageSize)

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("EntityTable", 3, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Entity ID")
		imgui.TableSetupColumn("Components")
		imgui.TableSetupColumn("Count")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			eb.sortColumn = int(spec.ColumnIndex())
			eb.ascending = spec.SortDirection() == imgui.SortDirectionAscending
			sortEntities(eb.entities, eb.sortColumn, eb.ascending)
			sortSpecs.SetSpecsDirty(false)
		}

		selected, hasSelection := insp.Selected()
		for _, entity := range filtered[start:end] {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			isSelected := hasSelection && selected == entity.ID
			if imgui.SelectableBoolV(strconv.Itoa(int(entity.ID)), isSelected, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				insp.Select(entity.ID)
			}

			imgui.TableNextColumn()
			imgui.Text(strings.Join(entity.ComponentTypes, ", "))

			imgui.TableNextColumn()
			imgui.Text(strconv.Itoa(entity.ComponentCount))
		}

		imgui.EndTable()
	}

	if len(filtered) > eb.pageSize {
		totalPages := (len(filtered) + eb.pageSize - 1) / eb.pageSize
		imgui.Text(fmt.Sprintf("Page %d / %d (%d entities)", eb.currentPage+1, totalPages, len(filtered)))
		imgui.SameLine()
		if imgui.Button("Prev") && eb.currentPage > 0 {
			eb.currentPage--
		}
		imgui.SameLine()
		if imgui.Button("Next") && eb.currentPage < totalPages-1 {
			eb.currentPage++
		}
	} else {
		imgui.Text(fmt.Sprintf("Total: %d entities", len(filtered)))
	}

	imgui.End()
}

func (eb *entityBrowser) rebuildIfNeeded(insp *Inspector) {
	version := insp.storage.Version()
	if eb.built && eb.version == version {
		return
	}
	eb.entities = collectEntities(insp)
	sortEntities(eb.entities, eb.sortColumn, eb.ascending)
	eb.version = version
	eb.built = true
}

func collectEntities(insp *Inspector) []EntityInfo {
	ids := insp.storage.QueryIDs()
	entities := make([]EntityInfo, 0, len(ids))
	for _, id := range ids {
		types := insp.storage.ComponentIDs(id)
		names := make([]string, len(types))
		for i, t := range types {
			names[i] = insp.TypeName(t)
		}
		entities = append(entities, EntityInfo{
			ID:             id,
			ComponentTypes: names,
			ComponentCount: len(names),
		})
	}
	return entities
}

func sortEntities(entities []EntityInfo, column int, ascending bool) {
	sort.SliceStable(entities, func(i, j int) bool {
		a, b := entities[i], entities[j]
		if !ascending {
			a, b = b, a
		}
		var less bool

		switch column {
		case columnComponents:
			less = strings.Join(a.ComponentTypes, ",") < strings.Join(b.ComponentTypes, ",")
		case columnCount:
			less = a.ComponentCount < b.ComponentCount
		default:
			less = a.ID < b.ID
		}

		return less
	})
}

// filterEntities keeps entities whose id or component names contain text,
// ignoring case.
func filterEntities(entities []EntityInfo, text string) []EntityInfo {
	if text == "" {
		return entities
	}

	filtered := make([]EntityInfo, 0, len(entities))
	filterLower := strings.ToLower(text)

	for _, entity := range entities {
		idStr := strconv.Itoa(int(entity.ID))
		componentsStr := strings.ToLower(strings.Join(entity.ComponentTypes, " "))
		if strings.Contains(idStr, filterLower) || strings.Contains(componentsStr, filterLower) {
			filtered = append(filtered, entity)
		}
	}

	return filtered
}

func pageBounds(total, page, pageSize int) (int, int) {
	start := page * pageSize
	if start > total {
		start = total
	}
	return start, min(start+pageSize, total)
}

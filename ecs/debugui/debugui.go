// Package debugui provides a Dear ImGui inspector for ECS storages.
//
// Components are plain memory, so the inspector edits them through per-type
// field tables: each table lists a field's name, byte offset and widget kind.
// Tables are declared with AddField or derived from a struct with
// RegisterStruct. Rendering reads and writes the live component slots through
// the storage's by-id primitives.
package debugui

import (
	"reflect"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/kamstrup/intmap"
	"github.com/plus3/slotecs/ecs"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// RenderMode chooses whether the entity inspector draws into the current
// window or opens its own.
type RenderMode uint8

const (
	ModeChild RenderMode = iota
	ModeWindow
)

// InputState tracks Dear ImGui's input capture state as a singleton component.
// Use this to determine if ImGui is consuming mouse or keyboard input.
type InputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// Windows toggles the windows drawn by Inspector.Render.
type Windows struct {
	Scene       bool
	Browser     bool
	Inspector   bool
	Arenas      bool
	Queries     bool
	Performance bool
}

type typeTable struct {
	name   string
	fields []Field
}

// Inspector draws and edits the entities of one storage. It must be used from
// the goroutine that owns the storage.
type Inspector struct {
	storage *ecs.Storage
	tables  *intmap.Map[ecs.TypeId, *typeTable]
	log     *zap.Logger

	selected     ecs.EntityId
	hasSelection bool
	pending      []func()

	Windows Windows

	browser *entityBrowser
	arenas  *arenaViewer
	queries *queryDebugger
	perf    *performanceStats
}

// Option configures an Inspector.
type Option func(*Inspector)

func WithLogger(logger *zap.Logger) Option {
	return func(i *Inspector) {
		if logger != nil {
			i.log = logger
		}
	}
}

// WithHistory sets how many frame times the performance window keeps.
func WithHistory(frames int) Option {
	return func(i *Inspector) {
		if frames > 0 {
			i.perf = newPerformanceStats(frames)
		}
	}
}

// WithPageSize sets how many rows the entity browser shows per page.
func WithPageSize(rows int) Option {
	return func(i *Inspector) {
		if rows > 0 {
			i.browser.pageSize = rows
		}
	}
}

func NewInspector(storage *ecs.Storage, opts ...Option) *Inspector {
	i := &Inspector{
		storage: storage,
		tables:  intmap.New[ecs.TypeId, *typeTable](storage.Registry().Capacity()),
		log:     zap.NewNop(),
		Windows: Windows{Browser: true, Inspector: true, Arenas: true, Queries: true, Performance: true},
		browser: newEntityBrowser(100),
		arenas:  newArenaViewer(),
		queries: newQueryDebugger(),
		perf:    newPerformanceStats(120),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Storage returns the inspected storage.
func (i *Inspector) Storage() *ecs.Storage {
	return i.storage
}

// RegisterType registers T with the storage and gives it an empty field
// table shown under name.
func RegisterType[T any](i *Inspector, name string) (ecs.TypeId, error) {
	t, err := ecs.RegisterComponent[T](i.storage.Registry())
	if err != nil {
		return 0, err
	}
	if table, ok := i.tables.Get(t); ok {
		table.name = name
		return t, nil
	}
	i.tables.Put(t, &typeTable{name: name})
	return t, nil
}

// AddField appends a field to the table of T. The field must lie inside T.
func AddField[T any](i *Inspector, name string, offset uintptr, kind FieldKind) error {
	t, ok := ecs.TypeIdOf[T](i.storage.Registry())
	if !ok {
		return eris.Wrapf(ecs.ErrUnknownType, "add field %s", name)
	}
	table, ok := i.tables.Get(t)
	if !ok {
		return eris.Wrapf(ecs.ErrUnknownType, "add field %s: %s has no table", name, reflect.TypeFor[T]())
	}

	f := Field{Name: name, Offset: offset, Kind: kind}
	if !f.fits(reflect.TypeFor[T]().Size()) {
		return eris.Wrapf(ErrFieldOutOfBounds, "add field %s: %s at offset %d", name, kind, offset)
	}
	table.fields = append(table.fields, f)
	return nil
}

// RegisterStruct registers T and derives its table from the struct layout.
// float32, int32 and bool fields map to scalar kinds, [2]float32 to [4]float32
// to vectors, and a [3]float32 tagged `debugui:"color"` to a color.
func RegisterStruct[T any](i *Inspector) (ecs.TypeId, error) {
	rt := reflect.TypeFor[T]()
	t, err := RegisterType[T](i, rt.Name())
	if err != nil {
		return 0, err
	}
	table, _ := i.tables.Get(t)
	table.fields = append([]Field(nil), globalReflectionCache.GetFields(rt)...)
	i.log.Debug("derived field table", zap.String("type", rt.Name()), zap.Int("fields", len(table.fields)))
	return t, nil
}

// Fields returns the field table of t.
func (i *Inspector) Fields(t ecs.TypeId) []Field {
	if table, ok := i.tables.Get(t); ok {
		return table.fields
	}
	return nil
}

// TypeName returns the display name of t.
func (i *Inspector) TypeName(t ecs.TypeId) string {
	if table, ok := i.tables.Get(t); ok && table.name != "" {
		return table.name
	}
	if info, ok := i.storage.Registry().Info(t); ok {
		return info.Name
	}
	return "unknown"
}

// Select makes id the entity shown by the inspector.
func (i *Inspector) Select(id ecs.EntityId) {
	i.selected = id
	i.hasSelection = true
}

func (i *Inspector) ClearSelection() {
	i.hasSelection = false
}

// Selected returns the selected entity. A selection whose entity has been
// removed is dropped.
func (i *Inspector) Selected() (ecs.EntityId, bool) {
	if !i.hasSelection {
		return 0, false
	}
	if !i.storage.IsAlive(i.selected) {
		i.hasSelection = false
		return 0, false
	}
	return i.selected, true
}

// Render draws every enabled window. It must be called between the backend's
// BeginFrame and EndFrame.
func (i *Inspector) Render(dt float64) {
	i.perf.record(float32(dt))

	if i.Windows.Scene {
		i.RenderEntityList(i.storage.QueryIDs())
	}
	if i.Windows.Browser {
		i.browser.render(i)
	}
	if i.Windows.Inspector {
		i.RenderEntityInspector(ModeWindow)
	}
	if i.Windows.Arenas {
		i.arenas.render(i)
	}
	if i.Windows.Queries {
		i.queries.render(i)
	}
	if i.Windows.Performance {
		i.perf.render(i)
	}
	i.applyPending()
}

// ImguiSystem publishes the ImGui input capture state and queues the
// inspector to render once the frame's commands have been applied.
type ImguiSystem struct {
	InputState ecs.Singleton[InputState]
	Inspector  *Inspector
}

func (s *ImguiSystem) Execute(frame *ecs.UpdateFrame) {
	io := imgui.CurrentIO()
	state := InputState{
		WantCaptureMouse:    io.WantCaptureMouse(),
		WantCaptureKeyboard: io.WantCaptureKeyboard(),
	}
	if err := s.InputState.Set(state); err != nil && s.Inspector != nil {
		s.Inspector.log.Warn("input state not stored", zap.Error(err))
	}

	if s.Inspector != nil {
		frame.Commands.Defer(func() {
			s.Inspector.Render(frame.DeltaTime)
		})
	}
}

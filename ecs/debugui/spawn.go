package debugui

import (
	"github.com/plus3/slotecs/ecs"
	"go.uber.org/zap"
)

// SpawnEntity creates an empty entity and selects it.
func (i *Inspector) SpawnEntity() ecs.EntityId {
	id := i.storage.NewEntity()
	i.Select(id)
	i.log.Debug("spawned entity", zap.Uint32("entity", uint32(id)))
	return id
}

// RemoveEntity removes id, dropping the selection if it pointed there.
func (i *Inspector) RemoveEntity(id ecs.EntityId) error {
	if err := i.storage.RemoveEntity(id); err != nil {
		return err
	}
	if i.hasSelection && i.selected == id {
		i.ClearSelection()
	}
	i.log.Debug("removed entity", zap.Uint32("entity", uint32(id)))
	return nil
}

// AddComponent gives id a zeroed component of type t.
func (i *Inspector) AddComponent(id ecs.EntityId, t ecs.TypeId) error {
	if _, err := i.storage.AddComponentByID(id, t); err != nil {
		i.log.Warn("add component failed", zap.Uint32("entity", uint32(id)), zap.String("type", i.TypeName(t)), zap.Error(err))
		return err
	}
	i.log.Debug("added component", zap.Uint32("entity", uint32(id)), zap.String("type", i.TypeName(t)))
	return nil
}

// RemoveComponent removes component t from id.
func (i *Inspector) RemoveComponent(id ecs.EntityId, t ecs.TypeId) bool {
	if !i.storage.RemoveComponentByID(id, t) {
		return false
	}
	i.log.Debug("removed component", zap.Uint32("entity", uint32(id)), zap.String("type", i.TypeName(t)))
	return true
}

// AddableTypes returns every registered type id does not have yet.
func (i *Inspector) AddableTypes(id ecs.EntityId) []ecs.TypeId {
	var out []ecs.TypeId
	for _, info := range i.storage.Registry().Types() {
		if !i.storage.HasComponentByID(id, info.Id) {
			out = append(out, info.Id)
		}
	}
	return out
}

// queue defers a structural change until drawing is done, so slot memory
// handed to widgets stays valid for the whole frame.
func (i *Inspector) queue(fn func()) {
	i.pending = append(i.pending, fn)
}

func (i *Inspector) applyPending() {
	for _, fn := range i.pending {
		fn()
	}
	i.pending = i.pending[:0]
}

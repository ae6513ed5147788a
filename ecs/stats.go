package ecs

import "sort"

// StorageStats is a point-in-time summary of a Storage.
type StorageStats struct {
	// TotalEntityCount excludes the entities that hold singletons.
	TotalEntityCount int
	LiveEntityCount  int
	RecycledCount    int
	SingletonCount   int
	SingletonTypes   []string
	TypeCount        int
	TotalBytes       uintptr
	TypeBreakdown    []TypeStats
}

// TypeStats describes the arena of one component type.
type TypeStats struct {
	Id        TypeId
	Name      string
	SlotSize  uintptr
	Slots     int
	Live      int
	Free      int
	Bytes     uintptr
	Allocated bool
}

// CollectStats walks the registry and every arena. It allocates and is meant
// for tooling, not per-frame hot paths.
func (s *Storage) CollectStats() *StorageStats {
	stats := &StorageStats{
		TotalEntityCount: s.LiveEntityCount() - len(s.singletons),
		LiveEntityCount:  s.LiveEntityCount(),
		RecycledCount:    s.index.recycledCount(),
		SingletonCount:   len(s.singletons),
		TypeCount:        s.registry.Len(),
	}

	for t := range s.singletons {
		if info, ok := s.registry.Info(t); ok {
			stats.SingletonTypes = append(stats.SingletonTypes, info.Name)
		}
	}
	sort.Strings(stats.SingletonTypes)

	for _, info := range s.registry.Types() {
		ts := TypeStats{
			Id:       info.Id,
			Name:     info.Name,
			SlotSize: info.SlotSize,
		}
		if a := s.arenas[info.Id]; a != nil {
			ts.Allocated = true
			ts.Slots = a.slotCount()
			ts.Live = a.liveCount()
			ts.Free = a.freeCount()
			ts.Bytes = a.bytesUsed()
		}
		stats.TotalBytes += ts.Bytes
		stats.TypeBreakdown = append(stats.TypeBreakdown, ts)
	}

	return stats
}

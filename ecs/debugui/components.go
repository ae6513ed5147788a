package debugui

import "github.com/plus3/slotecs/ecs"

type entityBrowser struct {
	entities    []EntityInfo
	version     uint64
	built       bool
	filterText  string
	sortColumn  int
	ascending   bool
	pageSize    int
	currentPage int
}

type arenaViewer struct {
	types      []ecs.TypeStats
	version    uint64
	built      bool
	sortColumn int
	ascending  bool
}

type queryDebugger struct {
	selected map[ecs.TypeId]bool
	matches  []ecs.EntityId
	version  uint64
	key      string
}

type performanceStats struct {
	history []float32
	index   int
	filled  int
}

package assign

import (
	"sort"
	"strings"
)

// TaskGroup is a contiguous, mutable slice of one connector's task indices
// belonging to one class. Multiple entries in a dealt group list may share
// the same *TaskGroup; Remove/PopFront on one is visible through the others.
type TaskGroup struct {
	Connector ConnectorId
	indices   []int
}

// Contains reports whether t's index is still held by the group.
func (g *TaskGroup) Contains(t TaskId) bool {
	if g == nil || t.Connector != g.Connector {
		return false
	}
	for _, i := range g.indices {
		if i == t.Index {
			return true
		}
	}
	return false
}

// Remove drops t's index from the group, if present.
func (g *TaskGroup) Remove(t TaskId) bool {
	if g == nil {
		return false
	}
	for i, idx := range g.indices {
		if idx == t.Index {
			g.indices = append(g.indices[:i], g.indices[i+1:]...)
			return true
		}
	}
	return false
}

// PopFront removes and returns the group's first remaining task id.
func (g *TaskGroup) PopFront() (TaskId, bool) {
	if g == nil || len(g.indices) == 0 {
		return TaskId{}, false
	}
	idx := g.indices[0]
	g.indices = g.indices[1:]
	return TaskId{Connector: g.Connector, Index: idx}, true
}

// Size returns the number of task indices still held by the group.
func (g *TaskGroup) Size() int {
	if g == nil {
		return 0
	}
	return len(g.indices)
}

// connectorLayout is the closed set of connector-type behaviors. Dispatch on
// prefix is a product decision, not an extensibility point.
type connectorLayout struct {
	tasksPerGroup int
	validClasses  [5]bool // index by class number, 1..4
}

func classifyConnector(id ConnectorId) connectorLayout {
	s := string(id)
	switch {
	case strings.HasPrefix(s, "s3"):
		return connectorLayout{tasksPerGroup: 2, validClasses: [5]bool{1: true, 2: true}}
	case strings.HasPrefix(s, "es"):
		return connectorLayout{tasksPerGroup: 4, validClasses: [5]bool{1: true, 2: true, 3: true, 4: true}}
	default:
		// A single class holding every configured task: groupLen = L div
		// tasksPerGroup must equal L, so tasksPerGroup is 1, not L.
		return connectorLayout{tasksPerGroup: 1, validClasses: [5]bool{1: true}}
	}
}

// taskGroup partitions connector's configured tasks into equal-sized
// contiguous blocks, one per class, with integer division silently dropping
// any remainder. Returns nil if classNumber does not apply to this
// connector's layout, or if the layout has no tasks per group to assign.
func taskGroup(connector ConnectorId, configuredTasks []TaskId, classNumber int) *TaskGroup {
	var indices []int
	for _, t := range configuredTasks {
		if t.Connector == connector {
			indices = append(indices, t.Index)
		}
	}
	sort.Ints(indices)

	layout := classifyConnector(connector)
	if classNumber < 1 || classNumber > 4 || !layout.validClasses[classNumber] {
		return nil
	}
	if layout.tasksPerGroup == 0 {
		return nil
	}

	groupLen := len(indices) / layout.tasksPerGroup
	if groupLen == 0 {
		return nil
	}
	skip := groupLen * (classNumber - 1)

	slice := append([]int(nil), indices[skip:skip+groupLen]...)
	return &TaskGroup{Connector: connector, indices: slice}
}

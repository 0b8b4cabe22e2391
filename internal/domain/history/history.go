// Package history keeps a bounded undo/redo log of full project snapshots.
//
// The log never observes the live project: every call that needs the current
// state receives it as arguments, and every returned snapshot is a copy the
// caller owns.
package history

import "github.com/rpggio/gantt/internal/domain/task"

// DefaultCapacity is the number of undo steps retained.
const DefaultCapacity = 50

// Snapshot is a deep copy of the editable project data.
type Snapshot struct {
	Tasks        []task.Task
	Dependencies []task.Dependency
}

func capture(tasks []task.Task, deps []task.Dependency) Snapshot {
	return Snapshot{
		Tasks:        task.CloneTasks(tasks),
		Dependencies: task.CloneDependencies(deps),
	}
}

// UndoHistory is a two-stack snapshot log.
type UndoHistory struct {
	capacity int
	past     []Snapshot
	future   []Snapshot
}

// New creates an empty history holding DefaultCapacity undo steps.
func New() *UndoHistory {
	return NewWithCapacity(DefaultCapacity)
}

// NewWithCapacity creates an empty history holding at most capacity undo steps.
// A non-positive capacity falls back to DefaultCapacity.
func NewWithCapacity(capacity int) *UndoHistory {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &UndoHistory{capacity: capacity}
}

// Push records the state as it is before a mutation. The oldest entry is
// evicted once the log is full, and the redo stack is discarded.
func (h *UndoHistory) Push(tasks []task.Task, deps []task.Dependency) {
	if len(h.past) >= h.capacity {
		copy(h.past, h.past[1:])
		h.past[len(h.past)-1] = Snapshot{}
		h.past = h.past[:len(h.past)-1]
	}
	h.past = append(h.past, capture(tasks, deps))
	h.future = nil
}

// Undo pops the most recent snapshot and saves the supplied current state for
// redo. ok is false, and nothing changes, when there is nothing to undo.
func (h *UndoHistory) Undo(currentTasks []task.Task, currentDeps []task.Dependency) (Snapshot, bool) {
	if len(h.past) == 0 {
		return Snapshot{}, false
	}
	snap := h.past[len(h.past)-1]
	h.past[len(h.past)-1] = Snapshot{}
	h.past = h.past[:len(h.past)-1]
	h.future = append(h.future, capture(currentTasks, currentDeps))
	return snap, true
}

// Redo pops the most recent undone snapshot and saves the supplied current
// state back onto the undo stack.
func (h *UndoHistory) Redo(currentTasks []task.Task, currentDeps []task.Dependency) (Snapshot, bool) {
	if len(h.future) == 0 {
		return Snapshot{}, false
	}
	snap := h.future[len(h.future)-1]
	h.future[len(h.future)-1] = Snapshot{}
	h.future = h.future[:len(h.future)-1]
	h.past = append(h.past, capture(currentTasks, currentDeps))
	return snap, true
}

func (h *UndoHistory) CanUndo() bool { return len(h.past) > 0 }

func (h *UndoHistory) CanRedo() bool { return len(h.future) > 0 }

// UndoDepth is the number of undo steps available.
func (h *UndoHistory) UndoDepth() int { return len(h.past) }

// RedoDepth is the number of redo steps available.
func (h *UndoHistory) RedoDepth() int { return len(h.future) }

// Capacity is the maximum undo depth.
func (h *UndoHistory) Capacity() int { return h.capacity }

// Clear drops both stacks, e.g. when a different project is opened.
func (h *UndoHistory) Clear() {
	h.past = nil
	h.future = nil
}

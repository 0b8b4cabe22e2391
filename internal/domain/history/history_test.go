package history_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/rpggio/gantt/internal/domain/history"
	"github.com/rpggio/gantt/internal/domain/task"
	"github.com/stretchr/testify/require"
)

func stateNamed(names ...string) []task.Task {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tasks := make([]task.Task, 0, len(names))
	for _, n := range names {
		tasks = append(tasks, task.New(n, start, start.Add(24*time.Hour)))
	}
	return tasks
}

func names(tasks []task.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Name)
	}
	return out
}

func TestUndoHistory_EmptyStacks(t *testing.T) {
	h := history.New()

	require.False(t, h.CanUndo())
	require.False(t, h.CanRedo())

	_, ok := h.Undo(stateNamed("x"), nil)
	require.False(t, ok)
	_, ok = h.Redo(stateNamed("x"), nil)
	require.False(t, ok)

	// no side effects from the failed calls
	require.Equal(t, 0, h.UndoDepth())
	require.Equal(t, 0, h.RedoDepth())
}

func TestUndoHistory_UndoThenRedo(t *testing.T) {
	h := history.New()
	a := stateNamed("a")
	b := stateNamed("a", "b")
	c := stateNamed("a", "b", "c")

	h.Push(a, nil)
	h.Push(b, nil)

	snap, ok := h.Undo(c, nil)
	require.True(t, ok)
	require.Equal(t, []string{"a", "b"}, names(snap.Tasks))
	require.True(t, h.CanRedo())

	redo, ok := h.Redo(snap.Tasks, snap.Dependencies)
	require.True(t, ok)
	require.Equal(t, []string{"a", "b", "c"}, names(redo.Tasks))
	require.False(t, h.CanRedo())
	require.Equal(t, 2, h.UndoDepth())
}

func TestUndoHistory_CapacityEvictsOldest(t *testing.T) {
	h := history.New()
	for i := 0; i < history.DefaultCapacity+1; i++ {
		h.Push(stateNamed(fmt.Sprintf("s%d", i)), nil)
	}
	require.Equal(t, history.DefaultCapacity, h.UndoDepth())

	var last history.Snapshot
	current := stateNamed("current")
	for h.CanUndo() {
		snap, ok := h.Undo(current, nil)
		require.True(t, ok)
		last = snap
		current = snap.Tasks
	}
	// s0 was evicted, so the oldest reachable state is s1
	require.Equal(t, []string{"s1"}, names(last.Tasks))
}

func TestUndoHistory_CustomCapacity(t *testing.T) {
	h := history.NewWithCapacity(2)
	require.Equal(t, 2, h.Capacity())
	for i := 0; i < 5; i++ {
		h.Push(stateNamed(fmt.Sprintf("s%d", i)), nil)
	}
	require.Equal(t, 2, h.UndoDepth())

	require.Equal(t, history.DefaultCapacity, history.NewWithCapacity(0).Capacity())
}

func TestUndoHistory_PushAfterUndoClearsRedo(t *testing.T) {
	h := history.New()
	h.Push(stateNamed("a"), nil)
	h.Push(stateNamed("b"), nil)

	_, ok := h.Undo(stateNamed("c"), nil)
	require.True(t, ok)
	require.True(t, h.CanRedo())

	h.Push(stateNamed("d"), nil)
	require.False(t, h.CanRedo())
	require.Equal(t, 0, h.RedoDepth())
}

func TestUndoHistory_SnapshotsAreIsolated(t *testing.T) {
	h := history.New()
	tasks := stateNamed("original")
	group := "g"
	tasks[0].Group = &group
	deps := []task.Dependency{{FromTask: tasks[0].ID, ToTask: tasks[0].ID, Kind: task.FinishToStart}}

	h.Push(tasks, deps)

	tasks[0].Name = "mutated"
	*tasks[0].Group = "changed"
	deps[0].Kind = task.StartToFinish

	snap, ok := h.Undo(tasks, deps)
	require.True(t, ok)
	require.Equal(t, "original", snap.Tasks[0].Name)
	require.Equal(t, "g", *snap.Tasks[0].Group)
	require.Equal(t, task.FinishToStart, snap.Dependencies[0].Kind)
}

func TestUndoHistory_Clear(t *testing.T) {
	h := history.New()
	h.Push(stateNamed("a"), nil)
	h.Push(stateNamed("b"), nil)
	_, _ = h.Undo(stateNamed("c"), nil)

	h.Clear()
	require.False(t, h.CanUndo())
	require.False(t, h.CanRedo())
}

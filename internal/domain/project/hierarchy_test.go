package project_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/gantt/internal/domain/project"
	"github.com/rpggio/gantt/internal/domain/task"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func childOf(parent task.Task, name string, start, end time.Time, progress float64) task.Task {
	c := task.New(name, start, end)
	c.Progress = progress
	c.SetParent(parent.ID)
	return c
}

func names(tasks []task.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Name
	}
	return out
}

func TestRecalculateParentDates_SoleChild(t *testing.T) {
	parent := task.New("Phase", day(2023, 6, 1), day(2023, 6, 2))
	child := childOf(parent, "Work", day(2024, 1, 1), day(2024, 1, 5), 0.5)

	p := project.New("p")
	p.Tasks = []task.Task{parent, child}
	p.RecalculateParentDates()

	got, ok := p.Task(parent.ID)
	require.True(t, ok)
	require.Equal(t, day(2024, 1, 1), got.Start)
	require.Equal(t, day(2024, 1, 5), got.End)
	require.InDelta(t, 0.5, got.Progress, 1e-9)
}

func TestRecalculateParentDates_Aggregates(t *testing.T) {
	parent := task.New("Phase", day(2024, 1, 1), day(2024, 1, 2))
	a := childOf(parent, "A", day(2024, 2, 3), day(2024, 2, 10), 1)
	b := childOf(parent, "B", day(2024, 2, 1), day(2024, 2, 5), 0)
	c := childOf(parent, "C", day(2024, 2, 4), day(2024, 2, 20), 0.5)
	other := task.New("Other", day(2020, 1, 1), day(2030, 1, 1))

	p := project.New("p")
	p.Tasks = []task.Task{parent, a, b, c, other}
	p.RecalculateParentDates()

	got, _ := p.Task(parent.ID)
	require.Equal(t, day(2024, 2, 1), got.Start)
	require.Equal(t, day(2024, 2, 20), got.End)
	require.InDelta(t, 0.5, got.Progress, 1e-9)

	untouched, _ := p.Task(other.ID)
	require.Equal(t, other, untouched)
}

func TestRecalculateParentDates_Idempotent(t *testing.T) {
	parent := task.New("Phase", day(2024, 1, 1), day(2024, 1, 2))
	p := project.New("p")
	p.Tasks = []task.Task{
		parent,
		childOf(parent, "A", day(2024, 3, 1), day(2024, 3, 9), 0.2),
		childOf(parent, "B", day(2024, 3, 4), day(2024, 3, 7), 0.9),
	}

	p.RecalculateParentDates()
	once := task.CloneTasks(p.Tasks)
	p.RecalculateParentDates()
	require.Equal(t, once, p.Tasks)
}

func TestRecalculateParentDates_DanglingParentIgnored(t *testing.T) {
	orphan := task.New("Orphan", day(2024, 1, 1), day(2024, 1, 3))
	orphan.SetParent(uuid.New())
	lone := task.New("Lone", day(2024, 5, 1), day(2024, 5, 2))

	p := project.New("p")
	p.Tasks = []task.Task{orphan, lone}
	before := task.CloneTasks(p.Tasks)
	p.RecalculateParentDates()
	require.Equal(t, before, p.Tasks)
}

func TestSortGrouped_ChildrenFollowParent(t *testing.T) {
	a := task.New("A", day(2024, 1, 1), day(2024, 1, 2))
	b := task.New("B", day(2024, 1, 1), day(2024, 1, 2))
	a1 := childOf(a, "A1", day(2024, 1, 1), day(2024, 1, 2), 0)
	a2 := childOf(a, "A2", day(2024, 1, 1), day(2024, 1, 2), 0)
	dangling := task.New("D", day(2024, 1, 1), day(2024, 1, 2))
	dangling.SetParent(uuid.New())

	p := project.New("p")
	p.Tasks = []task.Task{a1, b, dangling, a, a2}

	sorted := p.SortGrouped()
	require.Equal(t, []string{"B", "A", "A1", "A2", "D"}, names(sorted))
	// SortGrouped does not reorder in place.
	require.Equal(t, []string{"A1", "B", "D", "A", "A2"}, names(p.Tasks))

	p.Regroup()
	require.Equal(t, names(sorted), names(p.Tasks))
}

func TestSortGrouped_Permutation(t *testing.T) {
	a := task.New("A", day(2024, 1, 1), day(2024, 1, 2))
	p := project.New("p")
	p.Tasks = []task.Task{
		childOf(a, "A1", day(2024, 1, 1), day(2024, 1, 2), 0),
		a,
		task.New("B", day(2024, 1, 1), day(2024, 1, 2)),
	}
	sorted := p.SortGrouped()
	require.ElementsMatch(t, p.Tasks, sorted)
}

func TestCanParent(t *testing.T) {
	a := task.New("A", day(2024, 1, 1), day(2024, 1, 2))
	b := task.New("B", day(2024, 1, 1), day(2024, 1, 2))
	a1 := childOf(a, "A1", day(2024, 1, 1), day(2024, 1, 2), 0)

	p := project.New("p")
	p.Tasks = []task.Task{a, a1, b}

	require.NoError(t, p.CanParent(b.ID, a.ID))
	require.ErrorIs(t, p.CanParent(b.ID, b.ID), project.ErrSelfParent)
	require.ErrorIs(t, p.CanParent(b.ID, uuid.New()), project.ErrTaskNotFound)
	require.ErrorIs(t, p.CanParent(b.ID, a1.ID), project.ErrNestingTooDeep)
	require.ErrorIs(t, p.CanParent(a.ID, b.ID), project.ErrNestingTooDeep)

	require.Equal(t, []string{"B"}, names(p.ParentCandidates(a1.ID)))
	require.Empty(t, p.ParentCandidates(a.ID))
	require.True(t, p.HasChildren(a.ID))
	require.Equal(t, []string{"A1"}, names(p.Children(a.ID)))
}

func TestMilestoneCannotBeParent(t *testing.T) {
	m := task.NewMilestone("Launch", day(2024, 1, 10))
	b := task.New("B", day(2024, 1, 1), day(2024, 1, 4))

	p := project.New("p")
	require.NoError(t, p.AddTask(m))
	require.NoError(t, p.AddTask(b))

	require.ErrorIs(t, p.CanParent(b.ID, m.ID), project.ErrMilestoneParent)
	require.ErrorIs(t, p.AddTask(childOf(m, "C", day(2024, 1, 1), day(2024, 1, 4), 0)), project.ErrMilestoneParent)
	require.ErrorIs(t, p.SetParent(b.ID, uuid.NullUUID{UUID: m.ID, Valid: true}), project.ErrMilestoneParent)
	require.NotContains(t, names(p.ParentCandidates(b.ID)), "Launch")

	renamed, err := p.UpdateTask(m.ID, func(tk *task.Task) { tk.Name = "Ship" })
	require.NoError(t, err)
	require.True(t, renamed.IsMilestone)
	require.Equal(t, renamed.Start, renamed.End)
}

func TestRecalculateParentDates_LeavesLegacyMilestoneParent(t *testing.T) {
	m := task.NewMilestone("Launch", day(2024, 1, 10))
	c := childOf(m, "C", day(2024, 1, 1), day(2024, 1, 4), 0.5)

	p := project.New("p")
	p.Tasks = []task.Task{m, c}
	p.RecalculateParentDates()

	got, _ := p.Task(m.ID)
	require.True(t, got.IsMilestone)
	require.Equal(t, day(2024, 1, 10), got.Start)
	require.Equal(t, got.Start, got.End)

	_, err := p.UpdateTask(m.ID, func(tk *task.Task) { tk.Name = "Ship" })
	require.NoError(t, err)
}

package project_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/rpggio/gantt/internal/domain/project"
	"github.com/rpggio/gantt/internal/domain/task"
	"github.com/stretchr/testify/require"
)

func TestAddTask(t *testing.T) {
	p := project.New("p")
	a := task.New("A", day(2024, 1, 1), day(2024, 1, 3))
	require.NoError(t, p.AddTask(a))
	require.ErrorIs(t, p.AddTask(a), project.ErrDuplicateTask)

	bad := task.New("", day(2024, 1, 1), day(2024, 1, 3))
	require.ErrorIs(t, p.AddTask(bad), task.ErrInvalidInput)

	child := childOf(a, "A1", day(2024, 1, 1), day(2024, 1, 2), 0)
	require.NoError(t, p.AddTask(child))

	grandchild := childOf(child, "A1a", day(2024, 1, 1), day(2024, 1, 2), 0)
	require.ErrorIs(t, p.AddTask(grandchild), project.ErrNestingTooDeep)

	orphan := task.New("O", day(2024, 1, 1), day(2024, 1, 2))
	orphan.SetParent(uuid.New())
	require.ErrorIs(t, p.AddTask(orphan), project.ErrTaskNotFound)

	require.Len(t, p.Tasks, 2)
}

func TestUpdateTask(t *testing.T) {
	p := project.New("p")
	a := task.New("A", day(2024, 1, 1), day(2024, 1, 3))
	require.NoError(t, p.AddTask(a))

	updated, err := p.UpdateTask(a.ID, func(tk *task.Task) {
		tk.Name = "Renamed"
		tk.Priority = task.PriorityHigh
	})
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.Name)
	got, _ := p.Task(a.ID)
	require.Equal(t, task.PriorityHigh, got.Priority)

	_, err = p.UpdateTask(a.ID, func(tk *task.Task) { tk.End = day(2023, 12, 1) })
	require.ErrorIs(t, err, task.ErrInvalidRange)
	got, _ = p.Task(a.ID)
	require.Equal(t, day(2024, 1, 3), got.End)

	_, err = p.UpdateTask(a.ID, func(tk *task.Task) { tk.ID = uuid.New() })
	require.ErrorIs(t, err, task.ErrInvalidInput)

	_, err = p.UpdateTask(uuid.New(), func(*task.Task) {})
	require.ErrorIs(t, err, project.ErrTaskNotFound)
}

func TestUpdateTask_DerivedFieldsOfParent(t *testing.T) {
	p := project.New("p")
	a := task.New("A", day(2024, 1, 1), day(2024, 1, 3))
	require.NoError(t, p.AddTask(a))
	require.NoError(t, p.AddTask(childOf(a, "A1", day(2024, 1, 1), day(2024, 1, 2), 0)))

	_, err := p.UpdateTask(a.ID, func(tk *task.Task) { tk.Progress = 0.9 })
	require.ErrorIs(t, err, project.ErrDerivedField)

	_, err = p.UpdateTask(a.ID, func(tk *task.Task) { tk.Description = "ok" })
	require.NoError(t, err)

	_, err = p.UpdateTask(a.ID, func(tk *task.Task) { tk.SetMilestone(true) })
	require.ErrorIs(t, err, project.ErrMilestoneParent)
	got, _ := p.Task(a.ID)
	require.False(t, got.IsMilestone)
	require.Equal(t, day(2024, 1, 3), got.End)
}

func TestUpdateTask_LoadedOutOfRangeStaysEditable(t *testing.T) {
	legacy := task.New("Legacy", day(2024, 1, 5), day(2024, 1, 3))
	legacy.Progress = 1.5
	p := project.New("p")
	p.Tasks = []task.Task{legacy}
	require.NoError(t, p.CheckIntegrity())

	renamed, err := p.UpdateTask(legacy.ID, func(tk *task.Task) { tk.Name = "Kept" })
	require.NoError(t, err)
	require.Equal(t, 1.5, renamed.Progress)

	_, err = p.UpdateTask(legacy.ID, func(tk *task.Task) { tk.End = day(2024, 1, 4) })
	require.ErrorIs(t, err, task.ErrInvalidRange)
}

func TestSetParentAndDetach(t *testing.T) {
	p := project.New("p")
	a := task.New("A", day(2024, 1, 1), day(2024, 1, 3))
	b := task.New("B", day(2024, 1, 1), day(2024, 1, 3))
	require.NoError(t, p.AddTask(a))
	require.NoError(t, p.AddTask(b))

	require.NoError(t, p.SetParent(b.ID, uuid.NullUUID{UUID: a.ID, Valid: true}))
	require.True(t, p.HasChildren(a.ID))

	require.Equal(t, 1, p.DetachChildren(a.ID))
	require.False(t, p.HasChildren(a.ID))

	require.NoError(t, p.SetParent(b.ID, uuid.NullUUID{UUID: a.ID, Valid: true}))
	require.NoError(t, p.SetParent(b.ID, uuid.NullUUID{}))
	got, _ := p.Task(b.ID)
	require.False(t, got.HasParent())
}

func TestDependencies(t *testing.T) {
	p := project.New("p")
	a := task.New("Design", day(2024, 1, 1), day(2024, 1, 3))
	b := task.New("Build", day(2024, 1, 4), day(2024, 1, 9))
	require.NoError(t, p.AddTask(a))
	require.NoError(t, p.AddTask(b))

	fs := task.Dependency{FromTask: a.ID, ToTask: b.ID, Kind: task.FinishToStart}
	require.NoError(t, p.AddDependency(fs))
	require.ErrorIs(t, p.AddDependency(fs), project.ErrDuplicateDependency)
	require.ErrorIs(t, p.AddDependency(task.Dependency{FromTask: a.ID, ToTask: a.ID, Kind: task.FinishToStart}), project.ErrSelfDependency)
	require.ErrorIs(t, p.AddDependency(task.Dependency{FromTask: a.ID, ToTask: uuid.New(), Kind: task.FinishToStart}), project.ErrTaskNotFound)
	require.ErrorIs(t, p.AddDependency(task.Dependency{FromTask: b.ID, ToTask: a.ID, Kind: "Sideways"}), task.ErrInvalidDependencyKind)
	require.NoError(t, p.AddDependency(task.Dependency{FromTask: b.ID, ToTask: a.ID, Kind: task.StartToStart}))

	links := p.DependenciesOf(a.ID)
	require.Len(t, links, 2)
	require.Equal(t, "→ FS Build", links[0].Label())
	require.Equal(t, "← SS Build", links[1].Label())

	_, err := p.RemoveTask(b.ID)
	require.NoError(t, err)
	links = p.DependenciesOf(a.ID)
	require.Len(t, links, 2)
	require.Nil(t, links[0].Other)
	require.Equal(t, "→ FS ?", links[0].Label())

	require.Equal(t, 2, p.RemoveDependenciesOf(a.ID))
	require.Empty(t, p.Dependencies)

	_, err = p.RemoveDependency(a.ID, b.ID)
	require.ErrorIs(t, err, project.ErrDependencyNotFound)
}

func TestFilterAndIntegrity(t *testing.T) {
	p := project.New("p")
	a := task.New("Pour concrete", day(2024, 1, 1), day(2024, 1, 3))
	a.Priority = task.PriorityHigh
	b := task.New("Paint", day(2024, 1, 1), day(2024, 1, 3))
	b.Description = "Needs CONCRETE dry"
	require.NoError(t, p.AddTask(a))
	require.NoError(t, p.AddTask(b))

	require.Equal(t, []string{"Pour concrete", "Paint"}, names(p.Filter(task.Filter{Query: "concrete"})))
	high := task.PriorityHigh
	require.Equal(t, []string{"Pour concrete"}, names(p.Filter(task.Filter{Query: "concrete", Priority: &high})))

	require.NoError(t, p.CheckIntegrity())
	p.Tasks = append(p.Tasks, a)
	require.ErrorIs(t, p.CheckIntegrity(), project.ErrDuplicateTask)
}

func TestProjectClone_IsDeep(t *testing.T) {
	p := project.New("p")
	a := task.New("A", day(2024, 1, 1), day(2024, 1, 3))
	require.NoError(t, p.AddTask(a))

	c := p.Clone()
	c.Tasks[0].Name = "changed"
	require.Equal(t, "A", p.Tasks[0].Name)

	start, end, ok := p.Span()
	require.True(t, ok)
	require.Equal(t, day(2024, 1, 1), start)
	require.Equal(t, day(2024, 1, 3), end)
	_, _, ok = project.New("empty").Span()
	require.False(t, ok)
}

package task_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/gantt/internal/domain/task"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNew_Defaults(t *testing.T) {
	tk := task.New("Design", date(2024, 1, 1), date(2024, 1, 5))

	require.NotEqual(t, uuid.Nil, tk.ID)
	require.Equal(t, 0.0, tk.Progress)
	require.Equal(t, task.DefaultTaskColor, tk.Color)
	require.Equal(t, task.PriorityNone, tk.Priority)
	require.False(t, tk.IsMilestone)
	require.False(t, tk.HasParent())
}

func TestNewMilestone_ZeroDuration(t *testing.T) {
	m := task.NewMilestone("Launch", date(2024, 2, 1))

	require.True(t, m.IsMilestone)
	require.True(t, m.Start.Equal(m.End))
	require.Equal(t, task.DefaultMilestoneColor, m.Color)
	require.NotEqual(t, m.Color, task.DefaultTaskColor)
}

func TestNew_UniqueIDs(t *testing.T) {
	a := task.New("a", date(2024, 1, 1), date(2024, 1, 2))
	b := task.New("b", date(2024, 1, 1), date(2024, 1, 2))
	require.NotEqual(t, a.ID, b.ID)
}

func TestNormalize_TruncatesToSecondsUTC(t *testing.T) {
	loc := time.FixedZone("plus2", 2*60*60)
	in := time.Date(2024, 1, 1, 12, 30, 15, 999, loc)

	got := task.Normalize(in)
	require.Equal(t, time.UTC, got.Location())
	require.Equal(t, time.Date(2024, 1, 1, 10, 30, 15, 0, time.UTC), got)
}

func TestSetMilestone_CollapsesEnd(t *testing.T) {
	tk := task.New("Review", date(2024, 1, 1), date(2024, 1, 5))
	tk.SetMilestone(true)

	require.True(t, tk.IsMilestone)
	require.Equal(t, tk.Start, tk.End)
	require.Zero(t, tk.Duration())
}

func TestClone_DeepCopiesGroup(t *testing.T) {
	group := "backend"
	tk := task.New("API", date(2024, 1, 1), date(2024, 1, 2))
	tk.Group = &group

	clone := tk.Clone()
	*clone.Group = "frontend"

	require.Equal(t, "backend", *tk.Group)
}

func TestParentHelpers(t *testing.T) {
	parent := task.New("Phase", date(2024, 1, 1), date(2024, 1, 2))
	child := task.New("Step", date(2024, 1, 1), date(2024, 1, 2))

	child.SetParent(parent.ID)
	require.True(t, child.HasParent())
	require.True(t, child.IsChildOf(parent.ID))

	child.ClearParent()
	require.False(t, child.HasParent())
	require.False(t, child.IsChildOf(parent.ID))
}

func TestColor_JSONIsFourBytes(t *testing.T) {
	data, err := json.Marshal(task.Color{R: 1, G: 2, B: 3, A: 4})
	require.NoError(t, err)
	require.JSONEq(t, `[1,2,3,4]`, string(data))

	var c task.Color
	require.NoError(t, json.Unmarshal([]byte(`[70,130,180,255]`), &c))
	require.Equal(t, task.DefaultTaskColor, c)

	require.Error(t, json.Unmarshal([]byte(`[1,2,300,4]`), &c))
}

func TestDependencyKind_Labels(t *testing.T) {
	labels := map[task.DependencyKind]string{
		task.FinishToStart:  "FS",
		task.StartToStart:   "SS",
		task.FinishToFinish: "FF",
		task.StartToFinish:  "SF",
	}
	for _, kind := range task.DependencyKinds() {
		require.True(t, kind.IsValid())
		require.Equal(t, labels[kind], kind.ShortLabel())
		require.Contains(t, kind.Description(), "("+labels[kind]+")")
	}
	require.False(t, task.DependencyKind("Sideways").IsValid())
}

func TestPriority_Labels(t *testing.T) {
	require.Len(t, task.Priorities(), 5)
	require.Equal(t, "—", task.PriorityNone.Label())
	require.Equal(t, "Critical", task.PriorityCritical.Label())
	require.False(t, task.Priority("Urgent").IsValid())
}

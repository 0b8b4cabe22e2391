package task

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Priority is the urgency level attached to a task.
type Priority string

const (
	PriorityNone     Priority = "None"
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

// Priorities lists every priority in ascending order.
func Priorities() []Priority {
	return []Priority{PriorityNone, PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}
}

// IsValid reports whether p is a known priority.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityNone, PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	default:
		return false
	}
}

// Label returns the short display label for p.
func (p Priority) Label() string {
	if p == PriorityNone || p == "" {
		return "—"
	}
	return string(p)
}

// DependencyKind is the scheduling relation a dependency expresses.
type DependencyKind string

const (
	FinishToStart  DependencyKind = "FinishToStart"
	StartToStart   DependencyKind = "StartToStart"
	FinishToFinish DependencyKind = "FinishToFinish"
	StartToFinish  DependencyKind = "StartToFinish"
)

// DependencyKinds lists every dependency kind.
func DependencyKinds() []DependencyKind {
	return []DependencyKind{FinishToStart, StartToStart, FinishToFinish, StartToFinish}
}

// IsValid reports whether k is a known dependency kind.
func (k DependencyKind) IsValid() bool {
	switch k {
	case FinishToStart, StartToStart, FinishToFinish, StartToFinish:
		return true
	default:
		return false
	}
}

// ShortLabel returns the two letter abbreviation (FS, SS, FF, SF).
func (k DependencyKind) ShortLabel() string {
	switch k {
	case StartToStart:
		return "SS"
	case FinishToFinish:
		return "FF"
	case StartToFinish:
		return "SF"
	default:
		return "FS"
	}
}

// Description explains the constraint k places on the successor.
func (k DependencyKind) Description() string {
	switch k {
	case StartToStart:
		return "Start-to-Start (SS): successor can't start until this task starts"
	case FinishToFinish:
		return "Finish-to-Finish (FF): successor can't finish until this task finishes"
	case StartToFinish:
		return "Start-to-Finish (SF): successor can't finish until this task starts"
	default:
		return "Finish-to-Start (FS): successor can't start until this task finishes"
	}
}

// Dependency links two tasks. Either endpoint may name a task that no longer exists.
type Dependency struct {
	FromTask uuid.UUID      `json:"from_task"`
	ToTask   uuid.UUID      `json:"to_task"`
	Kind     DependencyKind `json:"kind"`
}

// Touches reports whether id is either endpoint of d.
func (d Dependency) Touches(id uuid.UUID) bool {
	return d.FromTask == id || d.ToTask == id
}

// Color is a premultiplied RGBA display color.
type Color struct {
	R, G, B, A uint8
}

var (
	// DefaultTaskColor is steel blue.
	DefaultTaskColor = Color{R: 70, G: 130, B: 180, A: 255}
	// DefaultMilestoneColor is orange.
	DefaultMilestoneColor = Color{R: 255, G: 165, B: 0, A: 255}
)

// Bytes returns the color as [r, g, b, a].
func (c Color) Bytes() [4]uint8 {
	return [4]uint8{c.R, c.G, c.B, c.A}
}

// ColorFromBytes builds a Color from [r, g, b, a].
func ColorFromBytes(b [4]uint8) Color {
	return Color{R: b[0], G: b[1], B: b[2], A: b[3]}
}

func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Bytes())
}

func (c *Color) UnmarshalJSON(data []byte) error {
	var b [4]uint8
	if err := json.Unmarshal(data, &b); err != nil {
		return fmt.Errorf("color must be four bytes: %w", err)
	}
	*c = ColorFromBytes(b)
	return nil
}

// Task is a single bar or milestone on the chart.
type Task struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Progress float64   `json:"progress"`
	// Group is a legacy free-form category kept only so old documents round-trip.
	Group       *string       `json:"group,omitempty"`
	ParentID    uuid.NullUUID `json:"parent_id"`
	Collapsed   bool          `json:"collapsed"`
	Priority    Priority      `json:"priority"`
	Description string        `json:"description,omitempty"`
	Color       Color         `json:"color"`
	IsMilestone bool          `json:"is_milestone"`
}

// New creates a regular task with a fresh id and default color.
func New(name string, start, end time.Time) Task {
	return Task{
		ID:       uuid.New(),
		Name:     name,
		Start:    Normalize(start),
		End:      Normalize(end),
		Priority: PriorityNone,
		Color:    DefaultTaskColor,
	}
}

// NewMilestone creates a zero-duration milestone at date.
func NewMilestone(name string, date time.Time) Task {
	date = Normalize(date)
	return Task{
		ID:          uuid.New(),
		Name:        name,
		Start:       date,
		End:         date,
		Priority:    PriorityNone,
		Color:       DefaultMilestoneColor,
		IsMilestone: true,
	}
}

// Normalize converts t to UTC at whole-second resolution, the precision tasks are stored at.
func Normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

// HasParent reports whether the task is nested under another task.
func (t *Task) HasParent() bool {
	return t.ParentID.Valid
}

// IsChildOf reports whether the task's parent is id.
func (t *Task) IsChildOf(id uuid.UUID) bool {
	return t.ParentID.Valid && t.ParentID.UUID == id
}

// SetParent nests the task under id.
func (t *Task) SetParent(id uuid.UUID) {
	t.ParentID = uuid.NullUUID{UUID: id, Valid: true}
}

// ClearParent moves the task to the top level.
func (t *Task) ClearParent() {
	t.ParentID = uuid.NullUUID{}
}

// SetMilestone toggles the milestone flag; a milestone collapses to its start date.
func (t *Task) SetMilestone(milestone bool) {
	t.IsMilestone = milestone
	if milestone {
		t.End = t.Start
	}
}

// Duration is End minus Start.
func (t *Task) Duration() time.Duration {
	return t.End.Sub(t.Start)
}

// Clone returns a deep copy of t.
func (t Task) Clone() Task {
	if t.Group != nil {
		g := *t.Group
		t.Group = &g
	}
	return t
}

// CloneTasks deep-copies a task slice. A nil input yields an empty slice.
func CloneTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i := range tasks {
		out[i] = tasks[i].Clone()
	}
	return out
}

// CloneDependencies copies a dependency slice.
func CloneDependencies(deps []Dependency) []Dependency {
	out := make([]Dependency, len(deps))
	copy(out, deps)
	return out
}

package mcp

import (
	"github.com/rpggio/gantt/internal/codec"
	"github.com/rpggio/gantt/internal/domain/project"
	"github.com/rpggio/gantt/internal/domain/session"
	"github.com/rpggio/gantt/internal/domain/task"
	"github.com/rpggio/gantt/internal/domain/timeline"
)

// Tool inputs. Fields without omitempty are required by the generated schema.

type CreateProjectParams struct {
	ID   string `json:"id,omitempty" jsonschema:"project identifier, generated when omitted"`
	Name string `json:"name" jsonschema:"project display name"`
}

type ProjectIDParams struct {
	ProjectID string `json:"project_id" jsonschema:"project identifier"`
}

type ImportProjectParams struct {
	Document string `json:"document" jsonschema:"serialized project document"`
	Format   string `json:"format,omitempty" jsonschema:"json or yaml, defaults to json"`
	Name     string `json:"name,omitempty" jsonschema:"overrides the document's project name"`
}

type ExportProjectParams struct {
	ProjectID string `json:"project_id" jsonschema:"project identifier"`
	Format    string `json:"format,omitempty" jsonschema:"json or yaml, defaults to json"`
}

type SessionParams struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"editing session id, falls back to the Gantt-Session-Id header or _meta.session_id"`
}

type CloseSessionParams struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"editing session id"`
	Save      bool   `json:"save,omitempty" jsonschema:"save pending edits before closing"`
}

type ListTasksParams struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"editing session id"`
	Query     string `json:"query,omitempty" jsonschema:"case-insensitive text matched against name and description"`
	Priority  string `json:"priority,omitempty" jsonschema:"None, Low, Medium, High or Critical"`
}

type TaskIDParams struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"editing session id"`
	TaskID    string `json:"task_id" jsonschema:"task id"`
}

type AddTaskParams struct {
	SessionID   string  `json:"session_id,omitempty" jsonschema:"editing session id"`
	Name        string  `json:"name" jsonschema:"task name"`
	Start       string  `json:"start" jsonschema:"start datetime, YYYY-MM-DDTHH:MM:SS"`
	End         string  `json:"end,omitempty" jsonschema:"end datetime, ignored for milestones"`
	Milestone   bool    `json:"milestone,omitempty" jsonschema:"create a zero-duration milestone"`
	Progress    float64 `json:"progress,omitempty" jsonschema:"completion fraction in [0, 1]"`
	Priority    string  `json:"priority,omitempty" jsonschema:"None, Low, Medium, High or Critical"`
	Description string  `json:"description,omitempty" jsonschema:"free-form notes"`
	ParentID    string  `json:"parent_id,omitempty" jsonschema:"nest the task under this top-level task"`
	Color       []int   `json:"color,omitempty" jsonschema:"RGBA bytes, four values in [0, 255]"`
}

// UpdateTaskParams is a patch: nil fields are left unchanged. An empty
// parent_id moves the task to the top level.
type UpdateTaskParams struct {
	SessionID   string   `json:"session_id,omitempty" jsonschema:"editing session id"`
	TaskID      string   `json:"task_id" jsonschema:"task id"`
	Name        *string  `json:"name,omitempty" jsonschema:"new name"`
	Start       *string  `json:"start,omitempty" jsonschema:"new start datetime"`
	End         *string  `json:"end,omitempty" jsonschema:"new end datetime"`
	Progress    *float64 `json:"progress,omitempty" jsonschema:"new completion fraction"`
	Priority    *string  `json:"priority,omitempty" jsonschema:"new priority"`
	Description *string  `json:"description,omitempty" jsonschema:"new description"`
	ParentID    *string  `json:"parent_id,omitempty" jsonschema:"new parent id, empty to detach"`
	Collapsed   *bool    `json:"collapsed,omitempty" jsonschema:"hide or show the task's children"`
	Milestone   *bool    `json:"milestone,omitempty" jsonschema:"convert to or from a milestone"`
	Color       []int    `json:"color,omitempty" jsonschema:"RGBA bytes"`
}

type DependencyParams struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"editing session id"`
	FromTask  string `json:"from_task" jsonschema:"predecessor task id"`
	ToTask    string `json:"to_task" jsonschema:"successor task id"`
	Kind      string `json:"kind,omitempty" jsonschema:"FinishToStart (default), StartToStart, FinishToFinish or StartToFinish"`
}

type ZoomParams struct {
	SessionID    string  `json:"session_id,omitempty" jsonschema:"editing session id"`
	Direction    string  `json:"direction,omitempty" jsonschema:"in or out"`
	PixelsPerDay float64 `json:"pixels_per_day,omitempty" jsonschema:"absolute zoom level, clamped to the configured bounds"`
}

type TimelinePositionParams struct {
	SessionID string   `json:"session_id,omitempty" jsonschema:"editing session id"`
	Datetime  string   `json:"datetime,omitempty" jsonschema:"datetime to convert to an x offset"`
	X         *float64 `json:"x,omitempty" jsonschema:"x offset to convert to a datetime"`
}

type RecentActivityParams struct {
	ProjectID string `json:"project_id" jsonschema:"project identifier"`
	TaskID    string `json:"task_id,omitempty" jsonschema:"only entries about this task"`
	SessionID string `json:"session_id,omitempty" jsonschema:"only entries from this session"`
	Limit     int    `json:"limit,omitempty" jsonschema:"maximum entries, default 50"`
	Offset    int    `json:"offset,omitempty" jsonschema:"entries to skip"`
}

// Responses.

type TaskView struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Start         string        `json:"start"`
	End           string        `json:"end"`
	Progress      float64       `json:"progress"`
	ParentID      string        `json:"parent_id,omitempty"`
	IsParent      bool          `json:"is_parent"`
	Collapsed     bool          `json:"collapsed"`
	Priority      task.Priority `json:"priority"`
	PriorityLabel string        `json:"priority_label"`
	Description   string        `json:"description,omitempty"`
	Color         [4]uint8      `json:"color"`
	IsMilestone   bool          `json:"is_milestone"`
}

type DependencyView struct {
	FromTask string              `json:"from_task"`
	ToTask   string              `json:"to_task"`
	Kind     task.DependencyKind `json:"kind"`
	Label    string              `json:"label,omitempty"`
}

type TaskRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type TaskDetailResponse struct {
	Task             TaskView         `json:"task"`
	Dependencies     []DependencyView `json:"dependencies"`
	Children         []TaskRef        `json:"children"`
	ParentCandidates []TaskRef        `json:"parent_candidates"`
}

type ProjectResponse struct {
	Project      project.ProjectSummary `json:"project"`
	Tasks        []TaskView             `json:"tasks"`
	Dependencies []DependencyView       `json:"dependencies"`
}

type ExportProjectResponse struct {
	ProjectID string `json:"project_id"`
	Format    string `json:"format"`
	Document  string `json:"document"`
}

type SessionResponse struct {
	Session *session.Session `json:"session"`
	State   *session.State   `json:"state"`
}

type HistoryResponse struct {
	Applied bool           `json:"applied"`
	State   *session.State `json:"state"`
}

type TaskListResponse struct {
	Tasks    []TaskView `json:"tasks"`
	Total    int        `json:"total"`
	Filtered bool       `json:"filtered"`
}

type BarView struct {
	Task     TaskView `json:"task"`
	Row      int      `json:"row"`
	Indent   int      `json:"indent"`
	X        float64  `json:"x"`
	Width    float64  `json:"width"`
	IsParent bool     `json:"is_parent"`
}

type TimelineResponse struct {
	Start         string         `json:"start"`
	End           string         `json:"end"`
	Scale         timeline.Scale `json:"scale"`
	PixelsPerDay  float64        `json:"pixels_per_day"`
	PixelsPerHour float64        `json:"pixels_per_hour"`
	TotalWidth    float64        `json:"total_width"`
	Bars          []BarView      `json:"bars"`
}

type TimelinePositionResponse struct {
	Datetime string  `json:"datetime"`
	X        float64 `json:"x"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}

func taskView(p *project.Project, t task.Task) TaskView {
	v := TaskView{
		ID:            t.ID.String(),
		Name:          t.Name,
		Start:         codec.FormatDatetime(t.Start),
		End:           codec.FormatDatetime(t.End),
		Progress:      t.Progress,
		Collapsed:     t.Collapsed,
		Priority:      t.Priority,
		PriorityLabel: t.Priority.Label(),
		Description:   t.Description,
		Color:         t.Color.Bytes(),
		IsMilestone:   t.IsMilestone,
	}
	if t.ParentID.Valid {
		v.ParentID = t.ParentID.UUID.String()
	}
	if p != nil {
		v.IsParent = p.HasChildren(t.ID)
	}
	return v
}

func taskViews(p *project.Project, tasks []task.Task) []TaskView {
	out := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskView(p, t))
	}
	return out
}

func taskRefs(tasks []task.Task) []TaskRef {
	out := make([]TaskRef, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, TaskRef{ID: t.ID.String(), Name: t.Name})
	}
	return out
}

func dependencyView(d task.Dependency) DependencyView {
	return DependencyView{
		FromTask: d.FromTask.String(),
		ToTask:   d.ToTask.String(),
		Kind:     d.Kind,
	}
}

func projectResponse(p *project.Project) ProjectResponse {
	deps := make([]DependencyView, 0, len(p.Dependencies))
	for _, d := range p.Dependencies {
		deps = append(deps, dependencyView(d))
	}
	return ProjectResponse{
		Project:      p.Summary(),
		Tasks:        taskViews(p, p.Tasks),
		Dependencies: deps,
	}
}

func timelineResponse(p *project.Project, l *session.Layout) TimelineResponse {
	bars := make([]BarView, 0, len(l.Bars))
	for _, b := range l.Bars {
		bars = append(bars, BarView{
			Task:     taskView(p, b.Task),
			Row:      b.Row,
			Indent:   b.Indent,
			X:        b.X,
			Width:    b.Width,
			IsParent: b.IsParent,
		})
	}
	return TimelineResponse{
		Start:         codec.FormatDatetime(l.Start),
		End:           codec.FormatDatetime(l.End),
		Scale:         l.Scale,
		PixelsPerDay:  l.PixelsPerDay,
		PixelsPerHour: l.PixelsPerHour,
		TotalWidth:    l.TotalWidth,
		Bars:          bars,
	}
}

package session

import (
	"time"

	"github.com/rpggio/gantt/internal/domain/task"
	"github.com/rpggio/gantt/internal/domain/timeline"
)

// SessionStatus represents the lifecycle status of a session
type SessionStatus string

const (
	StatusActive SessionStatus = "active"
	StatusClosed SessionStatus = "closed"
)

// Session is one editor's open handle on a stored project. Edits accumulate
// in memory, with undo history, until Save writes them back.
type Session struct {
	ID           string        `json:"id"`
	TenantID     string        `json:"tenant_id"`
	ProjectID    string        `json:"project_id"`
	Status       SessionStatus `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	LastActivity time.Time     `json:"last_activity"`
	ClosedAt     *time.Time    `json:"closed_at,omitempty"`
}

// SessionInfo provides information about an active session
type SessionInfo struct {
	SessionID    string    `json:"session_id"`
	ProjectID    string    `json:"project_id"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
}

// State summarizes an open session's editor.
type State struct {
	SessionID    string         `json:"session_id"`
	ProjectID    string         `json:"project_id"`
	ProjectName  string         `json:"project_name"`
	TaskCount    int            `json:"task_count"`
	Dirty        bool           `json:"dirty"`
	CanUndo      bool           `json:"can_undo"`
	CanRedo      bool           `json:"can_redo"`
	UndoDepth    int            `json:"undo_depth"`
	RedoDepth    int            `json:"redo_depth"`
	Scale        timeline.Scale `json:"scale"`
	PixelsPerDay float64        `json:"pixels_per_day"`
}

// Bar is one visible row of the chart.
type Bar struct {
	Task     task.Task `json:"task"`
	Row      int       `json:"row"`
	Indent   int       `json:"indent"`
	IsParent bool      `json:"is_parent"`
	X        float64   `json:"x"`
	Width    float64   `json:"width"`
}

// Layout positions every visible task against the session's viewport.
// Children of collapsed parents are omitted.
type Layout struct {
	Start         time.Time      `json:"start"`
	End           time.Time      `json:"end"`
	Scale         timeline.Scale `json:"scale"`
	PixelsPerDay  float64        `json:"pixels_per_day"`
	PixelsPerHour float64        `json:"pixels_per_hour"`
	TotalWidth    float64        `json:"total_width"`
	Bars          []Bar          `json:"bars"`
}

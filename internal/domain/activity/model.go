package activity

import "time"

// ActivityType represents the type of activity event
type ActivityType string

const (
	TypeProjectCreated    ActivityType = "project_created"
	TypeProjectImported   ActivityType = "project_imported"
	TypeTaskAdded         ActivityType = "task_added"
	TypeTaskUpdated       ActivityType = "task_updated"
	TypeTaskDeleted       ActivityType = "task_deleted"
	TypeDependencyAdded   ActivityType = "dependency_added"
	TypeDependencyRemoved ActivityType = "dependency_removed"
	TypeUndo              ActivityType = "undo"
	TypeRedo              ActivityType = "redo"
	TypeSessionStarted    ActivityType = "session_started"
	TypeSessionSaved      ActivityType = "session_saved"
	TypeSessionClosed     ActivityType = "session_closed"
)

// ActivityEntry represents an event in a project's edit log
type ActivityEntry struct {
	ID           int64        `json:"id"`
	TenantID     string       `json:"tenant_id"`
	ProjectID    string       `json:"project_id"`
	SessionID    *string      `json:"session_id,omitempty"`
	TaskID       *string      `json:"task_id,omitempty"`
	ActivityType ActivityType `json:"type"`
	Summary      string       `json:"summary"`
	Details      string       `json:"details,omitempty"` // JSON string
	CreatedAt    time.Time    `json:"created_at"`
}

package session

import (
	"context"

	"github.com/rpggio/gantt/internal/domain/activity"
	"github.com/rpggio/gantt/internal/domain/project"
)

// SessionRepository provides persistence for sessions.
type SessionRepository interface {
	Create(ctx context.Context, tenantID string, sess *Session) error
	Get(ctx context.Context, tenantID, id string) (*Session, error)
	Update(ctx context.Context, tenantID string, sess *Session) error
	Close(ctx context.Context, tenantID, id string) error
	ListActive(ctx context.Context, tenantID, projectID string) ([]SessionInfo, error)
}

// ProjectRepository loads and stores the project a session edits.
type ProjectRepository interface {
	Get(ctx context.Context, tenantID, id string) (*project.Project, error)
	Save(ctx context.Context, tenantID string, proj *project.Project) error
}

// ActivityRepository records edit events.
type ActivityRepository interface {
	Log(ctx context.Context, tenantID string, entry *activity.ActivityEntry) error
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rpggio/gantt/internal/domain/session"
	"github.com/rpggio/gantt/internal/repository"
)

// SessionRepository implements session.SessionRepository for SQLite
type SessionRepository struct {
	db *DB
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create creates a new session
func (r *SessionRepository) Create(ctx context.Context, tenantID string, sess *session.Session) error {
	query := `
		INSERT INTO sessions (
			id, tenant_id, project_id, status, created_at, last_activity, closed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		sess.ID,
		tenantID,
		sess.ProjectID,
		sess.Status,
		sess.CreatedAt,
		sess.LastActivity,
		sess.ClosedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("failed to create session: %w", err)
	}
	sess.TenantID = tenantID

	return nil
}

// Get retrieves a session by ID
func (r *SessionRepository) Get(ctx context.Context, tenantID, id string) (*session.Session, error) {
	query := `
		SELECT id, tenant_id, project_id, status, created_at, last_activity, closed_at
		FROM sessions
		WHERE id = ? AND tenant_id = ?
	`

	var sess session.Session
	var closedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, id, tenantID).Scan(
		&sess.ID,
		&sess.TenantID,
		&sess.ProjectID,
		&sess.Status,
		&sess.CreatedAt,
		&sess.LastActivity,
		&closedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	sess.CreatedAt = sess.CreatedAt.UTC()
	sess.LastActivity = sess.LastActivity.UTC()
	if closedAt.Valid {
		t := closedAt.Time.UTC()
		sess.ClosedAt = &t
	}

	return &sess, nil
}

// Update updates a session
func (r *SessionRepository) Update(ctx context.Context, tenantID string, sess *session.Session) error {
	query := `
		UPDATE sessions
		SET status = ?, last_activity = ?, closed_at = ?
		WHERE id = ? AND tenant_id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		sess.Status,
		sess.LastActivity,
		sess.ClosedAt,
		sess.ID,
		tenantID,
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Close marks a session as closed
func (r *SessionRepository) Close(ctx context.Context, tenantID, id string) error {
	now := time.Now().UTC()
	query := `
		UPDATE sessions
		SET status = ?, closed_at = ?, last_activity = ?
		WHERE id = ? AND tenant_id = ?
	`

	result, err := r.db.ExecContext(ctx, query, session.StatusClosed, now, now, id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to close session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// ListActive returns active sessions for a project
func (r *SessionRepository) ListActive(ctx context.Context, tenantID, projectID string) ([]session.SessionInfo, error) {
	query := `
		SELECT id, project_id, created_at, last_activity
		FROM sessions
		WHERE tenant_id = ? AND project_id = ? AND status = 'active'
		ORDER BY last_activity DESC
	`

	rows, err := r.db.QueryContext(ctx, query, tenantID, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []session.SessionInfo{}
	for rows.Next() {
		var info session.SessionInfo
		if err := rows.Scan(&info.SessionID, &info.ProjectID, &info.CreatedAt, &info.LastActivity); err != nil {
			return nil, fmt.Errorf("failed to scan session info: %w", err)
		}
		sessions = append(sessions, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}

	return sessions, nil
}

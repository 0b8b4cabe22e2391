package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/gantt/internal/domain/activity"
	"github.com/rpggio/gantt/internal/domain/history"
	"github.com/rpggio/gantt/internal/domain/project"
	"github.com/rpggio/gantt/internal/domain/timeline"
	"github.com/rpggio/gantt/internal/repository"
)

const (
	// Padding added around the project span when fitting the viewport.
	leadingPadding  = 7 * 24 * time.Hour
	trailingPadding = 14 * 24 * time.Hour
	// Range shown for a project with no tasks.
	emptyProjectSpan = 30 * 24 * time.Hour
)

// Options configures editors created by the service.
type Options struct {
	HistoryCapacity int
	Timeline        timeline.Options
}

// DefaultOptions returns the stock history capacity and zoom settings.
func DefaultOptions() Options {
	return Options{
		HistoryCapacity: history.DefaultCapacity,
		Timeline:        timeline.DefaultOptions(),
	}
}

// Service handles session operations. It keeps one in-memory editor per open
// session; editors are rebuilt from the stored project when missing.
type Service struct {
	sessions SessionRepository
	projects ProjectRepository
	activity ActivityRepository
	opts     Options
	logger   *slog.Logger

	mu      sync.Mutex
	editors map[string]*editor
}

type editor struct {
	proj     *project.Project
	history  *history.UndoHistory
	viewport *timeline.Viewport
	dirty    bool
}

// NewService creates a new session service.
func NewService(
	sessions SessionRepository,
	projects ProjectRepository,
	activityLog ActivityRepository,
	opts Options,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		sessions: sessions,
		projects: projects,
		activity: activityLog,
		opts:     opts,
		logger:   logger,
		editors:  make(map[string]*editor),
	}
}

// Open starts an editing session on a stored project.
func (s *Service) Open(ctx context.Context, tenantID, projectID string) (*Session, error) {
	if projectID == "" {
		return nil, ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ed, err := s.newEditor(ctx, tenantID, projectID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sess := &Session{
		ID:           uuid.NewString(),
		TenantID:     tenantID,
		ProjectID:    projectID,
		Status:       StatusActive,
		CreatedAt:    now,
		LastActivity: now,
	}
	if err := s.sessions.Create(ctx, tenantID, sess); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	s.editors[editorKey(tenantID, sess.ID)] = ed

	s.record(ctx, tenantID, sess, change{
		kind:    activity.TypeSessionStarted,
		summary: fmt.Sprintf("opened project %q", ed.proj.Name),
	})
	return sess, nil
}

// Get returns the stored session.
func (s *Service) Get(ctx context.Context, tenantID, sessionID string) (*Session, error) {
	if sessionID == "" {
		return nil, ErrInvalidInput
	}
	sess, err := s.sessions.Get(ctx, tenantID, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("loading session: %w", err)
	}
	return sess, nil
}

// ListActive lists the open sessions on a project.
func (s *Service) ListActive(ctx context.Context, tenantID, projectID string) ([]SessionInfo, error) {
	return s.sessions.ListActive(ctx, tenantID, projectID)
}

// Project returns a copy of the session's working project.
func (s *Service) Project(ctx context.Context, tenantID, sessionID string) (*project.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ed, err := s.load(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	return ed.proj.Clone(), nil
}

// State reports the editor's undo depth, dirtiness and zoom level.
func (s *Service) State(ctx context.Context, tenantID, sessionID string) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ed, err := s.load(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	return ed.state(sess), nil
}

// Save writes the working project back to the store.
func (s *Service) Save(ctx context.Context, tenantID, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ed, err := s.load(ctx, tenantID, sessionID)
	if err != nil {
		return err
	}
	if err := s.projects.Save(ctx, tenantID, ed.proj.Clone()); err != nil {
		if isNotFound(err) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("saving project: %w", err)
	}
	ed.dirty = false

	s.touch(ctx, tenantID, sess)
	s.record(ctx, tenantID, sess, change{
		kind:    activity.TypeSessionSaved,
		summary: fmt.Sprintf("saved %d tasks and %d dependencies", len(ed.proj.Tasks), len(ed.proj.Dependencies)),
	})
	return nil
}

// Close ends a session. Unsaved edits are discarded.
func (s *Service) Close(ctx context.Context, tenantID, sessionID string) error {
	if sessionID == "" {
		return ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.Get(ctx, tenantID, sessionID)
	if err != nil {
		return err
	}
	if err := s.sessions.Close(ctx, tenantID, sessionID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("closing session: %w", err)
	}

	key := editorKey(tenantID, sessionID)
	if ed, ok := s.editors[key]; ok && ed.dirty {
		s.logger.Warn("closing session with unsaved changes", "session_id", sessionID, "project_id", sess.ProjectID)
	}
	delete(s.editors, key)

	s.record(ctx, tenantID, sess, change{kind: activity.TypeSessionClosed, summary: "closed session"})
	return nil
}

// load resolves an active session and its editor. Callers hold s.mu.
func (s *Service) load(ctx context.Context, tenantID, sessionID string) (*Session, *editor, error) {
	sess, err := s.Get(ctx, tenantID, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if sess.Status == StatusClosed {
		return nil, nil, ErrSessionClosed
	}

	key := editorKey(tenantID, sessionID)
	if ed, ok := s.editors[key]; ok {
		return sess, ed, nil
	}

	s.logger.Debug("rebuilding session editor", "session_id", sessionID, "project_id", sess.ProjectID)
	ed, err := s.newEditor(ctx, tenantID, sess.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	s.editors[key] = ed
	return sess, ed, nil
}

func (s *Service) newEditor(ctx context.Context, tenantID, projectID string) (*editor, error) {
	proj, err := s.projects.Get(ctx, tenantID, projectID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("loading project: %w", err)
	}
	proj.RecalculateParentDates()
	proj.Regroup()

	start, end := fitRange(proj)
	vp, err := timeline.New(start, end, s.opts.Timeline)
	if err != nil {
		return nil, fmt.Errorf("creating viewport: %w", err)
	}

	return &editor{
		proj:     proj,
		history:  history.NewWithCapacity(s.opts.HistoryCapacity),
		viewport: vp,
	}, nil
}

// touch bumps the session's last activity. Failures are logged, not returned,
// because the in-memory edit has already been applied.
func (s *Service) touch(ctx context.Context, tenantID string, sess *Session) {
	sess.LastActivity = time.Now().UTC()
	if err := s.sessions.Update(ctx, tenantID, sess); err != nil {
		s.logger.Warn("updating session activity", "session_id", sess.ID, "error", err)
	}
}

type change struct {
	kind    activity.ActivityType
	taskID  *uuid.UUID
	summary string
	details string
}

func (s *Service) record(ctx context.Context, tenantID string, sess *Session, c change) {
	if s.activity == nil {
		return
	}
	sessionID := sess.ID
	entry := &activity.ActivityEntry{
		TenantID:     tenantID,
		ProjectID:    sess.ProjectID,
		SessionID:    &sessionID,
		ActivityType: c.kind,
		Summary:      c.summary,
		Details:      c.details,
		CreatedAt:    time.Now().UTC(),
	}
	if c.taskID != nil {
		id := c.taskID.String()
		entry.TaskID = &id
	}
	if err := s.activity.Log(ctx, tenantID, entry); err != nil {
		s.logger.Warn("logging activity", "session_id", sess.ID, "type", c.kind, "error", err)
	}
}

func (ed *editor) state(sess *Session) *State {
	return &State{
		SessionID:    sess.ID,
		ProjectID:    sess.ProjectID,
		ProjectName:  ed.proj.Name,
		TaskCount:    len(ed.proj.Tasks),
		Dirty:        ed.dirty,
		CanUndo:      ed.history.CanUndo(),
		CanRedo:      ed.history.CanRedo(),
		UndoDepth:    ed.history.UndoDepth(),
		RedoDepth:    ed.history.RedoDepth(),
		Scale:        ed.viewport.Scale(),
		PixelsPerDay: ed.viewport.PixelsPerDay(),
	}
}

// refit moves the viewport to cover the project span at the current zoom.
func (ed *editor) refit() {
	start, end := fitRange(ed.proj)
	ed.viewport.Fit(start, end)
}

func fitRange(p *project.Project) (time.Time, time.Time) {
	start, end, ok := p.Span()
	if !ok {
		today := midnight(time.Now().UTC())
		return today, today.Add(emptyProjectSpan)
	}
	if end.Before(start) {
		end = start
	}
	return midnight(start).Add(-leadingPadding), midnight(end).Add(trailingPadding)
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func editorKey(tenantID, sessionID string) string {
	return tenantID + "/" + sessionID
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound) || errors.Is(err, project.ErrProjectNotFound)
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rpggio/gantt/internal/codec"
	"github.com/rpggio/gantt/internal/domain/project"
	"github.com/rpggio/gantt/internal/domain/task"
	"github.com/rpggio/gantt/internal/repository"
)

// ProjectRepository implements project.Repository for SQLite
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create inserts a project together with its tasks and dependencies
func (r *ProjectRepository) Create(ctx context.Context, tenantID string, proj *project.Project) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO projects (id, tenant_id, name, version, created_at, modified_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, query,
		proj.ID,
		tenantID,
		proj.Name,
		proj.Version,
		proj.CreatedAt,
		proj.ModifiedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create project: %w", err)
	}

	if err := insertContents(ctx, tx, proj); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	proj.TenantID = tenantID
	return nil
}

// Get retrieves a project with its full task sequence and dependency set
func (r *ProjectRepository) Get(ctx context.Context, tenantID, id string) (*project.Project, error) {
	query := `
		SELECT id, tenant_id, name, version, created_at, modified_at
		FROM projects
		WHERE id = ? AND tenant_id = ?
	`

	var proj project.Project
	err := r.db.QueryRowContext(ctx, query, id, tenantID).Scan(
		&proj.ID,
		&proj.TenantID,
		&proj.Name,
		&proj.Version,
		&proj.CreatedAt,
		&proj.ModifiedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	proj.CreatedAt = proj.CreatedAt.UTC()
	proj.ModifiedAt = proj.ModifiedAt.UTC()

	if proj.Tasks, err = r.loadTasks(ctx, id); err != nil {
		return nil, err
	}
	if proj.Dependencies, err = r.loadDependencies(ctx, id); err != nil {
		return nil, err
	}
	return &proj, nil
}

// List returns all projects for a tenant with summary information
func (r *ProjectRepository) List(ctx context.Context, tenantID string) ([]project.ProjectSummary, error) {
	query := `
		SELECT
			p.id,
			p.name,
			p.version,
			p.created_at,
			p.modified_at,
			(SELECT COUNT(*) FROM tasks t WHERE t.project_id = p.id) AS task_count,
			(SELECT COUNT(*) FROM tasks t WHERE t.project_id = p.id AND t.is_milestone = 1) AS milestone_count,
			(SELECT COUNT(*) FROM dependencies d WHERE d.project_id = p.id) AS dependency_count
		FROM projects p
		WHERE p.tenant_id = ?
		ORDER BY p.modified_at DESC, p.id
	`

	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	summaries := []project.ProjectSummary{}
	for rows.Next() {
		var summary project.ProjectSummary
		err := rows.Scan(
			&summary.ID,
			&summary.Name,
			&summary.Version,
			&summary.CreatedAt,
			&summary.ModifiedAt,
			&summary.TaskCount,
			&summary.MilestoneCount,
			&summary.DependencyCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project summary: %w", err)
		}
		summary.CreatedAt = summary.CreatedAt.UTC()
		summary.ModifiedAt = summary.ModifiedAt.UTC()
		summaries = append(summaries, summary)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project rows: %w", err)
	}

	return summaries, nil
}

// Save replaces a project's stored name, version, tasks and dependencies
func (r *ProjectRepository) Save(ctx context.Context, tenantID string, proj *project.Project) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE projects
		SET name = ?, version = ?, modified_at = ?
		WHERE id = ? AND tenant_id = ?
	`
	result, err := tx.ExecContext(ctx, query, proj.Name, proj.Version, proj.ModifiedAt, proj.ID, tenantID)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE project_id = ?`, proj.ID); err != nil {
		return fmt.Errorf("failed to clear tasks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM dependencies WHERE project_id = ?`, proj.ID); err != nil {
		return fmt.Errorf("failed to clear dependencies: %w", err)
	}
	if err := insertContents(ctx, tx, proj); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Delete removes a project, its contents, sessions and activity
func (r *ProjectRepository) Delete(ctx context.Context, tenantID, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = ? AND tenant_id = ?`, id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM activity_log WHERE project_id = ? AND tenant_id = ?`, id, tenantID); err != nil {
		return fmt.Errorf("failed to delete activity: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertContents(ctx context.Context, tx *sql.Tx, proj *project.Project) error {
	taskQuery := `
		INSERT INTO tasks (
			project_id, id, position, name, start_at, end_at, progress,
			group_name, parent_id, collapsed, priority, description, color, is_milestone
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for i, t := range proj.Tasks {
		var parentID sql.NullString
		if t.HasParent() {
			parentID = sql.NullString{String: t.ParentID.UUID.String(), Valid: true}
		}
		color := t.Color.Bytes()
		_, err := tx.ExecContext(ctx, taskQuery,
			proj.ID,
			t.ID.String(),
			i,
			t.Name,
			codec.FormatDatetime(t.Start),
			codec.FormatDatetime(t.End),
			t.Progress,
			t.Group,
			parentID,
			t.Collapsed,
			string(t.Priority),
			t.Description,
			color[:],
			t.IsMilestone,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: task %s", repository.ErrConflict, t.ID)
			}
			return fmt.Errorf("failed to insert task: %w", err)
		}
	}

	depQuery := `
		INSERT INTO dependencies (project_id, position, from_task, to_task, kind)
		VALUES (?, ?, ?, ?, ?)
	`
	for i, d := range proj.Dependencies {
		_, err := tx.ExecContext(ctx, depQuery, proj.ID, i, d.FromTask.String(), d.ToTask.String(), string(d.Kind))
		if err != nil {
			return fmt.Errorf("failed to insert dependency: %w", err)
		}
	}
	return nil
}

func (r *ProjectRepository) loadTasks(ctx context.Context, projectID string) ([]task.Task, error) {
	query := `
		SELECT id, name, start_at, end_at, progress, group_name, parent_id,
			collapsed, priority, description, color, is_milestone
		FROM tasks
		WHERE project_id = ?
		ORDER BY position
	`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	defer rows.Close()

	tasks := []task.Task{}
	for rows.Next() {
		var (
			t                 task.Task
			id, start, end    string
			group, parentID   sql.NullString
			priority          string
			color             []byte
			collapsed, isMile bool
		)
		err := rows.Scan(&id, &t.Name, &start, &end, &t.Progress, &group, &parentID,
			&collapsed, &priority, &t.Description, &color, &isMile)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}

		if t.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("task id %q: %w", id, err)
		}
		if t.Start, err = codec.ParseDatetime("start", start); err != nil {
			return nil, err
		}
		if t.End, err = codec.ParseDatetime("end", end); err != nil {
			return nil, err
		}
		if group.Valid {
			g := group.String
			t.Group = &g
		}
		if parentID.Valid {
			pid, err := uuid.Parse(parentID.String)
			if err != nil {
				return nil, fmt.Errorf("task parent id %q: %w", parentID.String, err)
			}
			t.SetParent(pid)
		}
		if len(color) != 4 {
			return nil, fmt.Errorf("task %s: color has %d bytes", id, len(color))
		}
		t.Color = task.ColorFromBytes([4]uint8(color))
		t.Priority = task.Priority(priority)
		t.Collapsed = collapsed
		t.IsMilestone = isMile
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}
	return tasks, nil
}

func (r *ProjectRepository) loadDependencies(ctx context.Context, projectID string) ([]task.Dependency, error) {
	query := `
		SELECT from_task, to_task, kind
		FROM dependencies
		WHERE project_id = ?
		ORDER BY position
	`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load dependencies: %w", err)
	}
	defer rows.Close()

	deps := []task.Dependency{}
	for rows.Next() {
		var from, to, kind string
		if err := rows.Scan(&from, &to, &kind); err != nil {
			return nil, fmt.Errorf("failed to scan dependency: %w", err)
		}
		d := task.Dependency{Kind: task.DependencyKind(kind)}
		var err error
		if d.FromTask, err = uuid.Parse(from); err != nil {
			return nil, fmt.Errorf("dependency from %q: %w", from, err)
		}
		if d.ToTask, err = uuid.Parse(to); err != nil {
			return nil, fmt.Errorf("dependency to %q: %w", to, err)
		}
		deps = append(deps, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dependency rows: %w", err)
	}
	return deps, nil
}

package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rpggio/gantt/internal/domain/activity"
	"github.com/rpggio/gantt/internal/domain/project"
	"github.com/rpggio/gantt/internal/domain/task"
)

// mutate applies one undoable edit: snapshot, change a working copy,
// recalculate parents, regroup, then commit and log. A failed apply leaves the
// editor untouched and pushes nothing.
func (s *Service) mutate(ctx context.Context, tenantID, sessionID string, apply func(p *project.Project) (change, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ed, err := s.load(ctx, tenantID, sessionID)
	if err != nil {
		return err
	}

	work := ed.proj.Clone()
	c, err := apply(work)
	if err != nil {
		return err
	}

	ed.history.Push(ed.proj.Tasks, ed.proj.Dependencies)
	work.RecalculateParentDates()
	work.Regroup()
	ed.proj = work
	ed.dirty = true
	ed.refit()

	s.touch(ctx, tenantID, sess)
	s.record(ctx, tenantID, sess, c)
	return nil
}

// AddTask appends t to the session's project.
func (s *Service) AddTask(ctx context.Context, tenantID, sessionID string, t task.Task) (task.Task, error) {
	var added task.Task
	err := s.mutate(ctx, tenantID, sessionID, func(p *project.Project) (change, error) {
		if err := p.AddTask(t); err != nil {
			return change{}, err
		}
		added = t.Clone()
		return change{
			kind:    activity.TypeTaskAdded,
			taskID:  &t.ID,
			summary: fmt.Sprintf("added task %q", t.Name),
		}, nil
	})
	if err != nil {
		return task.Task{}, err
	}
	return s.currentTask(ctx, tenantID, sessionID, added)
}

// UpdateTask edits a task in place. Parent dates are recalculated afterwards,
// so the returned task reflects any derived values.
func (s *Service) UpdateTask(ctx context.Context, tenantID, sessionID string, id uuid.UUID, edit func(t *task.Task)) (task.Task, error) {
	var updated task.Task
	err := s.mutate(ctx, tenantID, sessionID, func(p *project.Project) (change, error) {
		t, err := p.UpdateTask(id, edit)
		if err != nil {
			return change{}, err
		}
		updated = t
		return change{
			kind:    activity.TypeTaskUpdated,
			taskID:  &id,
			summary: fmt.Sprintf("updated task %q", t.Name),
		}, nil
	})
	if err != nil {
		return task.Task{}, err
	}
	return s.currentTask(ctx, tenantID, sessionID, updated)
}

// DeleteTask removes a task together with every dependency touching it.
// Its children move to the top level.
func (s *Service) DeleteTask(ctx context.Context, tenantID, sessionID string, id uuid.UUID) error {
	return s.mutate(ctx, tenantID, sessionID, func(p *project.Project) (change, error) {
		removed, err := p.RemoveTask(id)
		if err != nil {
			return change{}, err
		}
		deps := p.RemoveDependenciesOf(id)
		children := p.DetachChildren(id)
		return change{
			kind:    activity.TypeTaskDeleted,
			taskID:  &id,
			summary: fmt.Sprintf("deleted task %q", removed.Name),
			details: fmt.Sprintf(`{"dependencies_removed":%d,"children_detached":%d}`, deps, children),
		}, nil
	})
}

// AddDependency links two tasks of the session's project.
func (s *Service) AddDependency(ctx context.Context, tenantID, sessionID string, d task.Dependency) error {
	return s.mutate(ctx, tenantID, sessionID, func(p *project.Project) (change, error) {
		if err := p.AddDependency(d); err != nil {
			return change{}, err
		}
		return change{
			kind:    activity.TypeDependencyAdded,
			taskID:  &d.FromTask,
			summary: fmt.Sprintf("linked %s %s %s", d.FromTask, d.Kind.ShortLabel(), d.ToTask),
		}, nil
	})
}

// RemoveDependency unlinks from -> to.
func (s *Service) RemoveDependency(ctx context.Context, tenantID, sessionID string, from, to uuid.UUID) error {
	return s.mutate(ctx, tenantID, sessionID, func(p *project.Project) (change, error) {
		d, err := p.RemoveDependency(from, to)
		if err != nil {
			return change{}, err
		}
		return change{
			kind:    activity.TypeDependencyRemoved,
			taskID:  &from,
			summary: fmt.Sprintf("unlinked %s %s %s", from, d.Kind.ShortLabel(), to),
		}, nil
	})
}

// Undo restores the state before the most recent edit. ok is false when
// there is nothing to undo.
func (s *Service) Undo(ctx context.Context, tenantID, sessionID string) (ok bool, err error) {
	return s.travel(ctx, tenantID, sessionID, activity.TypeUndo)
}

// Redo reapplies the most recently undone edit.
func (s *Service) Redo(ctx context.Context, tenantID, sessionID string) (ok bool, err error) {
	return s.travel(ctx, tenantID, sessionID, activity.TypeRedo)
}

func (s *Service) travel(ctx context.Context, tenantID, sessionID string, kind activity.ActivityType) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ed, err := s.load(ctx, tenantID, sessionID)
	if err != nil {
		return false, err
	}

	step := ed.history.Undo
	if kind == activity.TypeRedo {
		step = ed.history.Redo
	}
	snap, ok := step(ed.proj.Tasks, ed.proj.Dependencies)
	if !ok {
		return false, nil
	}

	ed.proj.Replace(snap.Tasks, snap.Dependencies)
	ed.dirty = true
	ed.refit()

	s.touch(ctx, tenantID, sess)
	s.record(ctx, tenantID, sess, change{kind: kind, summary: string(kind)})
	return true, nil
}

// currentTask re-reads a task after an edit so derived parent values are
// visible. fallback is returned if the task can no longer be found.
func (s *Service) currentTask(ctx context.Context, tenantID, sessionID string, fallback task.Task) (task.Task, error) {
	proj, err := s.Project(ctx, tenantID, sessionID)
	if err != nil {
		return task.Task{}, err
	}
	if t, ok := proj.Task(fallback.ID); ok {
		return t, nil
	}
	return fallback, nil
}

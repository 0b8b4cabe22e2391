package project

import (
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/gantt/internal/domain/task"
)

// RecalculateParentDates derives every parent's start, end and progress from
// its children: earliest start, latest end, mean progress. Parents without
// children, parent ids that resolve to no task, and milestone parents left
// over from older documents are left alone.
//
// The model never calls this itself; editors must call it after any change to
// a child's dates, progress or parent link.
func (p *Project) RecalculateParentDates() {
	type aggregate struct {
		start, end time.Time
		progress   float64
		count      int
	}
	byParent := make(map[uuid.UUID]*aggregate)
	for _, t := range p.Tasks {
		if !t.HasParent() {
			continue
		}
		agg, ok := byParent[t.ParentID.UUID]
		if !ok {
			byParent[t.ParentID.UUID] = &aggregate{start: t.Start, end: t.End, progress: t.Progress, count: 1}
			continue
		}
		if t.Start.Before(agg.start) {
			agg.start = t.Start
		}
		if t.End.After(agg.end) {
			agg.end = t.End
		}
		agg.progress += t.Progress
		agg.count++
	}

	for i := range p.Tasks {
		agg, ok := byParent[p.Tasks[i].ID]
		if !ok || p.Tasks[i].IsMilestone {
			continue
		}
		p.Tasks[i].Start = agg.start
		p.Tasks[i].End = agg.end
		p.Tasks[i].Progress = agg.progress / float64(agg.count)
	}
}

// SortGrouped returns the tasks reordered so each top-level task is followed
// by its children. Top-level order and the order of children within a group
// are preserved. Tasks whose parent id resolves to no task go last, in their
// original order.
func (p *Project) SortGrouped() []task.Task {
	children := make(map[uuid.UUID][]int)
	var topLevel []int
	for i, t := range p.Tasks {
		if t.HasParent() {
			children[t.ParentID.UUID] = append(children[t.ParentID.UUID], i)
		} else {
			topLevel = append(topLevel, i)
		}
	}

	placed := make([]bool, len(p.Tasks))
	out := make([]task.Task, 0, len(p.Tasks))
	for _, i := range topLevel {
		out = append(out, p.Tasks[i].Clone())
		placed[i] = true
		for _, c := range children[p.Tasks[i].ID] {
			out = append(out, p.Tasks[c].Clone())
			placed[c] = true
		}
	}
	// Dangling parents, plus anything nested under a non-top-level task in
	// data that predates the nesting rule.
	for i := range p.Tasks {
		if !placed[i] {
			out = append(out, p.Tasks[i].Clone())
		}
	}
	return out
}

// Regroup replaces the task sequence with SortGrouped.
func (p *Project) Regroup() {
	p.Tasks = p.SortGrouped()
}

// Children returns copies of the direct children of id, in sequence order.
func (p *Project) Children(id uuid.UUID) []task.Task {
	var out []task.Task
	for _, t := range p.Tasks {
		if t.IsChildOf(id) {
			out = append(out, t.Clone())
		}
	}
	return out
}

// HasChildren reports whether any task is nested under id.
func (p *Project) HasChildren(id uuid.UUID) bool {
	for i := range p.Tasks {
		if p.Tasks[i].IsChildOf(id) {
			return true
		}
	}
	return false
}

// CanParent reports whether childID may be nested under parentID. Only
// top-level tasks that are not milestones can be parents, and a task that
// already has children cannot itself be nested.
func (p *Project) CanParent(childID, parentID uuid.UUID) error {
	if childID == parentID {
		return ErrSelfParent
	}
	if _, ok := p.Task(childID); !ok {
		return ErrTaskNotFound
	}
	parent, ok := p.Task(parentID)
	if !ok {
		return ErrTaskNotFound
	}
	if parent.HasParent() {
		return ErrNestingTooDeep
	}
	if parent.IsMilestone {
		return ErrMilestoneParent
	}
	if p.HasChildren(childID) {
		return ErrNestingTooDeep
	}
	return nil
}

// ParentCandidates lists the tasks id could be nested under.
func (p *Project) ParentCandidates(id uuid.UUID) []task.Task {
	if p.HasChildren(id) {
		return nil
	}
	var out []task.Task
	for _, t := range p.Tasks {
		if t.ID == id || t.HasParent() || t.IsMilestone {
			continue
		}
		out = append(out, t.Clone())
	}
	return out
}

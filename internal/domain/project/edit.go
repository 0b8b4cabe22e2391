package project

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rpggio/gantt/internal/domain/task"
)

// DependencyLink is a dependency seen from one of its endpoints. Other is nil
// when the far endpoint no longer exists.
type DependencyLink struct {
	Dependency task.Dependency `json:"dependency"`
	Outgoing   bool            `json:"outgoing"`
	Other      *task.Task      `json:"other,omitempty"`
}

// Label renders the link the way the task editor lists it, e.g. "→ FS Build".
func (l DependencyLink) Label() string {
	arrow := "←"
	if l.Outgoing {
		arrow = "→"
	}
	name := "?"
	if l.Other != nil {
		name = l.Other.Name
	}
	return fmt.Sprintf("%s %s %s", arrow, l.Dependency.Kind.ShortLabel(), name)
}

// Task returns a copy of the task with the given id.
func (p *Project) Task(id uuid.UUID) (task.Task, bool) {
	i := p.indexOf(id)
	if i < 0 {
		return task.Task{}, false
	}
	return p.Tasks[i].Clone(), true
}

func (p *Project) indexOf(id uuid.UUID) int {
	for i := range p.Tasks {
		if p.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// AddTask appends a validated task. A parent, if set, must be an existing
// top-level task that is not a milestone.
func (p *Project) AddTask(t task.Task) error {
	if err := task.Validate(t); err != nil {
		return err
	}
	if p.indexOf(t.ID) >= 0 {
		return ErrDuplicateTask
	}
	if t.HasParent() {
		if t.ParentID.UUID == t.ID {
			return ErrSelfParent
		}
		parent, ok := p.Task(t.ParentID.UUID)
		if !ok {
			return ErrTaskNotFound
		}
		if parent.HasParent() {
			return ErrNestingTooDeep
		}
		if parent.IsMilestone {
			return ErrMilestoneParent
		}
	}
	p.Tasks = append(p.Tasks, t.Clone())
	p.Touch()
	return nil
}

// UpdateTask applies edit to a copy of the task and stores it if the result
// is valid. A parent's start, end and progress cannot be edited while it has
// children, and parent links must respect the nesting rule.
func (p *Project) UpdateTask(id uuid.UUID, edit func(t *task.Task)) (task.Task, error) {
	i := p.indexOf(id)
	if i < 0 {
		return task.Task{}, ErrTaskNotFound
	}
	current := p.Tasks[i]
	updated := current.Clone()
	edit(&updated)

	if updated.ID != current.ID {
		return task.Task{}, fmt.Errorf("%w: task id is immutable", task.ErrInvalidInput)
	}
	if p.HasChildren(id) {
		if updated.IsMilestone && !current.IsMilestone {
			return task.Task{}, ErrMilestoneParent
		}
		if !updated.Start.Equal(current.Start) || !updated.End.Equal(current.End) || updated.Progress != current.Progress {
			return task.Task{}, ErrDerivedField
		}
	}
	if updated.ParentID != current.ParentID && updated.HasParent() {
		if err := p.CanParent(id, updated.ParentID.UUID); err != nil {
			return task.Task{}, err
		}
	}
	if err := task.ValidateEdit(current, updated); err != nil {
		return task.Task{}, err
	}

	p.Tasks[i] = updated
	p.Touch()
	return updated.Clone(), nil
}

// SetParent nests id under parentID, or moves it to the top level when
// parentID is invalid.
func (p *Project) SetParent(id uuid.UUID, parentID uuid.NullUUID) error {
	_, err := p.UpdateTask(id, func(t *task.Task) {
		t.ParentID = parentID
	})
	return err
}

// RemoveTask deletes a task from the sequence. Dependencies that reference it
// and children nested under it are left as they are; see
// RemoveDependenciesOf and DetachChildren.
func (p *Project) RemoveTask(id uuid.UUID) (task.Task, error) {
	i := p.indexOf(id)
	if i < 0 {
		return task.Task{}, ErrTaskNotFound
	}
	removed := p.Tasks[i]
	p.Tasks = append(p.Tasks[:i], p.Tasks[i+1:]...)
	p.Touch()
	return removed, nil
}

// DetachChildren moves every child of id to the top level and returns how
// many were moved.
func (p *Project) DetachChildren(id uuid.UUID) int {
	n := 0
	for i := range p.Tasks {
		if p.Tasks[i].IsChildOf(id) {
			p.Tasks[i].ClearParent()
			n++
		}
	}
	if n > 0 {
		p.Touch()
	}
	return n
}

// AddDependency links two existing, distinct tasks. A pair of tasks can be
// linked at most once per direction.
func (p *Project) AddDependency(d task.Dependency) error {
	if err := task.ValidateDependency(d); err != nil {
		return err
	}
	if d.FromTask == d.ToTask {
		return ErrSelfDependency
	}
	if p.indexOf(d.FromTask) < 0 || p.indexOf(d.ToTask) < 0 {
		return ErrTaskNotFound
	}
	for _, existing := range p.Dependencies {
		if existing.FromTask == d.FromTask && existing.ToTask == d.ToTask {
			return ErrDuplicateDependency
		}
	}
	p.Dependencies = append(p.Dependencies, d)
	p.Touch()
	return nil
}

// RemoveDependency deletes the link from -> to.
func (p *Project) RemoveDependency(from, to uuid.UUID) (task.Dependency, error) {
	for i, d := range p.Dependencies {
		if d.FromTask == from && d.ToTask == to {
			p.Dependencies = append(p.Dependencies[:i], p.Dependencies[i+1:]...)
			p.Touch()
			return d, nil
		}
	}
	return task.Dependency{}, ErrDependencyNotFound
}

// RemoveDependenciesOf deletes every dependency touching id and returns how
// many were removed.
func (p *Project) RemoveDependenciesOf(id uuid.UUID) int {
	kept := p.Dependencies[:0]
	for _, d := range p.Dependencies {
		if !d.Touches(id) {
			kept = append(kept, d)
		}
	}
	n := len(p.Dependencies) - len(kept)
	p.Dependencies = kept
	if n > 0 {
		p.Touch()
	}
	return n
}

// DependenciesOf lists the links touching id, in dependency-set order.
func (p *Project) DependenciesOf(id uuid.UUID) []DependencyLink {
	var out []DependencyLink
	for _, d := range p.Dependencies {
		if !d.Touches(id) {
			continue
		}
		link := DependencyLink{Dependency: d, Outgoing: d.FromTask == id}
		otherID := d.FromTask
		if link.Outgoing {
			otherID = d.ToTask
		}
		if other, ok := p.Task(otherID); ok {
			link.Other = &other
		}
		out = append(out, link)
	}
	return out
}

// Filter returns copies of the tasks that match f, in sequence order.
func (p *Project) Filter(f task.Filter) []task.Task {
	var out []task.Task
	for _, t := range p.Tasks {
		if f.Matches(t) {
			out = append(out, t.Clone())
		}
	}
	return out
}

// Replace swaps in a whole task and dependency state, e.g. an undo snapshot.
func (p *Project) Replace(tasks []task.Task, deps []task.Dependency) {
	p.Tasks = task.CloneTasks(tasks)
	p.Dependencies = task.CloneDependencies(deps)
	p.Touch()
}

// CheckIntegrity verifies the invariants a stored or imported project must
// hold. Dangling parent ids and dependency endpoints are allowed.
func (p *Project) CheckIntegrity() error {
	seen := make(map[uuid.UUID]bool, len(p.Tasks))
	for _, t := range p.Tasks {
		if seen[t.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateTask, t.ID)
		}
		seen[t.ID] = true
	}
	return nil
}

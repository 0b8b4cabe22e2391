package project

import "errors"

var (
	// ErrProjectNotFound indicates the project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrInvalidInput indicates invalid project input.
	ErrInvalidInput = errors.New("invalid project input")
	// ErrTaskNotFound indicates no task has the given id.
	ErrTaskNotFound = errors.New("task not found")
	// ErrDuplicateTask indicates a task id is already in use.
	ErrDuplicateTask = errors.New("duplicate task id")
	// ErrSelfParent indicates an attempt to nest a task under itself.
	ErrSelfParent = errors.New("task cannot be its own parent")
	// ErrNestingTooDeep indicates a parent link that would create a second level.
	ErrNestingTooDeep = errors.New("tasks may only be nested one level deep")
	// ErrMilestoneParent indicates a milestone used as a parent, or a parent
	// turned into a milestone.
	ErrMilestoneParent = errors.New("milestones cannot have children")
	// ErrDerivedField indicates a direct edit of a parent's computed dates or progress.
	ErrDerivedField = errors.New("parent dates and progress are derived from children")
	// ErrDependencyNotFound indicates no dependency links the given tasks.
	ErrDependencyNotFound = errors.New("dependency not found")
	// ErrDuplicateDependency indicates the two tasks are already linked.
	ErrDuplicateDependency = errors.New("dependency already exists")
	// ErrSelfDependency indicates a dependency from a task to itself.
	ErrSelfDependency = errors.New("task cannot depend on itself")
)

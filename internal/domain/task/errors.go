package task

import "errors"

var (
	// ErrInvalidInput indicates a task failed field validation.
	ErrInvalidInput = errors.New("invalid task input")
	// ErrProgressOutOfRange indicates progress outside [0, 1].
	ErrProgressOutOfRange = errors.New("progress must be between 0 and 1")
	// ErrInvalidRange indicates a task that ends before it starts.
	ErrInvalidRange = errors.New("task ends before it starts")
	// ErrMilestoneDuration indicates a milestone whose start and end differ.
	ErrMilestoneDuration = errors.New("milestone must start and end at the same time")
	// ErrInvalidPriority indicates an unknown priority value.
	ErrInvalidPriority = errors.New("unknown priority")
	// ErrInvalidDependencyKind indicates an unknown dependency kind.
	ErrInvalidDependencyKind = errors.New("unknown dependency kind")
)

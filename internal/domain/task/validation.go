package task

import (
	"fmt"
	"strings"
)

// Validate checks the field-level invariants an edited task must satisfy.
func Validate(t Task) error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if t.Progress < 0 || t.Progress > 1 {
		return ErrProgressOutOfRange
	}
	if !t.Priority.IsValid() {
		return ErrInvalidPriority
	}
	if t.IsMilestone && !t.Start.Equal(t.End) {
		return ErrMilestoneDuration
	}
	if t.End.Before(t.Start) {
		return ErrInvalidRange
	}
	return nil
}

// ValidateEdit checks after the way Validate does, except that a progress or
// date violation carried over unchanged from before is let through. Documents
// written by older versions can hold such tasks, and they must stay editable.
func ValidateEdit(before, after Task) error {
	if strings.TrimSpace(after.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if after.Progress != before.Progress && (after.Progress < 0 || after.Progress > 1) {
		return ErrProgressOutOfRange
	}
	if !after.Priority.IsValid() {
		return ErrInvalidPriority
	}
	if after.Start.Equal(before.Start) && after.End.Equal(before.End) && after.IsMilestone == before.IsMilestone {
		return nil
	}
	if after.IsMilestone && !after.Start.Equal(after.End) {
		return ErrMilestoneDuration
	}
	if after.End.Before(after.Start) {
		return ErrInvalidRange
	}
	return nil
}

// ValidateDependency checks a dependency's kind.
func ValidateDependency(d Dependency) error {
	if !d.Kind.IsValid() {
		return ErrInvalidDependencyKind
	}
	return nil
}

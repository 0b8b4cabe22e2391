package mcp

import (
	"encoding/json"
	"errors"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/gantt/internal/codec"
	"github.com/rpggio/gantt/internal/domain/activity"
	"github.com/rpggio/gantt/internal/domain/project"
	"github.com/rpggio/gantt/internal/domain/session"
	"github.com/rpggio/gantt/internal/domain/task"
	"github.com/rpggio/gantt/internal/domain/timeline"
	"github.com/rpggio/gantt/internal/repository"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes. Unknown errors map to
// INTERNAL without leaking their text.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	switch {
	case errors.Is(err, project.ErrProjectNotFound), errors.Is(err, session.ErrProjectNotFound):
		return &APIError{Code: "PROJECT_NOT_FOUND", Message: "project not found", RecoveryHint: "Call list_projects for valid ids"}
	case errors.Is(err, session.ErrSessionNotFound):
		return &APIError{Code: "SESSION_NOT_FOUND", Message: "session not found", RecoveryHint: "Call open_session first"}
	case errors.Is(err, session.ErrSessionClosed):
		return &APIError{Code: "SESSION_CLOSED", Message: "session closed", RecoveryHint: "Open a new session"}
	case errors.Is(err, project.ErrTaskNotFound):
		return &APIError{Code: "TASK_NOT_FOUND", Message: "task not found", RecoveryHint: "Call list_tasks for valid ids"}
	case errors.Is(err, project.ErrDuplicateTask):
		return &APIError{Code: "DUPLICATE_TASK", Message: err.Error()}
	case errors.Is(err, project.ErrSelfParent), errors.Is(err, project.ErrNestingTooDeep), errors.Is(err, project.ErrMilestoneParent):
		return &APIError{Code: "INVALID_PARENT", Message: err.Error(), RecoveryHint: "Pick one of get_task's parent_candidates"}
	case errors.Is(err, project.ErrDerivedField):
		return &APIError{Code: "DERIVED_FIELD", Message: err.Error(), RecoveryHint: "Edit the children instead"}
	case errors.Is(err, project.ErrDependencyNotFound):
		return &APIError{Code: "DEPENDENCY_NOT_FOUND", Message: err.Error()}
	case errors.Is(err, project.ErrDuplicateDependency), errors.Is(err, project.ErrSelfDependency):
		return &APIError{Code: "INVALID_DEPENDENCY", Message: err.Error()}
	case errors.Is(err, codec.ErrInvalidDatetime):
		return &APIError{Code: "INVALID_DATETIME", Message: err.Error(), RecoveryHint: "Use YYYY-MM-DDTHH:MM:SS"}
	case errors.Is(err, codec.ErrUnsupportedVersion):
		return &APIError{Code: "UNSUPPORTED_VERSION", Message: err.Error()}
	case errors.Is(err, task.ErrInvalidInput),
		errors.Is(err, task.ErrProgressOutOfRange),
		errors.Is(err, task.ErrInvalidRange),
		errors.Is(err, task.ErrMilestoneDuration),
		errors.Is(err, task.ErrInvalidPriority),
		errors.Is(err, task.ErrInvalidDependencyKind):
		return &APIError{Code: "INVALID_TASK", Message: err.Error()}
	case errors.Is(err, timeline.ErrInvalidOptions), errors.Is(err, timeline.ErrInvalidRange):
		return &APIError{Code: "INVALID_TIMELINE", Message: err.Error()}
	case errors.Is(err, project.ErrInvalidInput),
		errors.Is(err, session.ErrInvalidInput),
		errors.Is(err, activity.ErrInvalidInput),
		errors.Is(err, repository.ErrInvalidInput),
		errors.Is(err, codec.ErrUnsupportedFormat),
		errors.Is(err, codec.ErrInvalidID),
		errors.Is(err, codec.ErrInvalidEnum):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error()}
	case errors.Is(err, repository.ErrConflict):
		return &APIError{Code: "CONFLICT", Message: err.Error(), RecoveryHint: "Choose a different id"}
	default:
		return &APIError{Code: "INTERNAL", Message: "internal error"}
	}
}

func invalidInput(format string, args ...any) *APIError {
	return &APIError{Code: "INVALID_INPUT", Message: fmt.Sprintf(format, args...)}
}

// errorResult renders err as a tool-level error so the client can read the
// code and recovery hint.
func errorResult(err error) *sdkmcp.CallToolResult {
	apiErr := MapError(err)
	data, marshalErr := json.Marshal(apiErr)
	if marshalErr != nil {
		data = []byte(apiErr.Error())
	}
	return &sdkmcp.CallToolResult{
		IsError: true,
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}
}

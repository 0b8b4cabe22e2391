package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/gantt/internal/codec"
	"github.com/rpggio/gantt/internal/domain/activity"
	"github.com/rpggio/gantt/internal/domain/project"
	"github.com/rpggio/gantt/internal/domain/session"
	"github.com/rpggio/gantt/internal/domain/task"
)

type toolset struct {
	svc    Services
	logger *slog.Logger
}

// addTool registers a typed tool whose result is rendered as JSON text.
// Domain errors become tool errors carrying an APIError payload.
func addTool[In any](server *sdkmcp.Server, name, description string, fn func(ctx context.Context, in In) (any, error)) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: name, Description: description},
		func(ctx context.Context, _ *sdkmcp.CallToolRequest, in In) (*sdkmcp.CallToolResult, any, error) {
			out, err := fn(ctx, in)
			if err != nil {
				return errorResult(err), nil, nil
			}
			return jsonResult(out)
		})
}

func jsonResult(v any) (*sdkmcp.CallToolResult, any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding result: %w", err)
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}, nil, nil
}

func registerTools(server *sdkmcp.Server, t *toolset) {
	addTool(server, "ping", "Check that the server is reachable", func(context.Context, struct{}) (any, error) {
		return "pong", nil
	})

	// Projects
	addTool(server, "create_project", "Create an empty project", t.createProject)
	addTool(server, "list_projects", "List the tenant's projects with task counts", t.listProjects)
	addTool(server, "get_project", "Get a stored project with its tasks, dependencies and open sessions", t.getProject)
	addTool(server, "delete_project", "Delete a project and everything recorded about it", t.deleteProject)
	addTool(server, "import_project", "Create a project from a JSON or YAML document of any supported version", t.importProject)
	addTool(server, "export_project", "Serialize a stored project as a current-version document", t.exportProject)
	addTool(server, "get_recent_activity", "List a project's edit log, newest first", t.recentActivity)

	// Sessions
	addTool(server, "open_session", "Open an editing session on a project", t.openSession)
	addTool(server, "get_session_state", "Report dirty flag, undo depth and zoom for a session", t.sessionState)
	addTool(server, "save_session", "Write the session's edits back to the project", t.saveSession)
	addTool(server, "close_session", "Close a session, optionally saving first", t.closeSession)

	// Tasks
	addTool(server, "list_tasks", "List tasks in display order, optionally filtered by text or priority", t.listTasks)
	addTool(server, "get_task", "Get a task with its dependency links, children and valid parents", t.getTask)
	addTool(server, "add_task", "Add a task or milestone", t.addTask)
	addTool(server, "update_task", "Patch a task's fields", t.updateTask)
	addTool(server, "delete_task", "Delete a task, its dependencies, and detach its children", t.deleteTask)
	addTool(server, "add_dependency", "Link two tasks", t.addDependency)
	addTool(server, "remove_dependency", "Remove the link between two tasks", t.removeDependency)
	addTool(server, "undo", "Revert the last edit", t.undo)
	addTool(server, "redo", "Reapply the last undone edit", t.redo)

	// Timeline
	addTool(server, "zoom", "Step the zoom in or out, or set pixels per day", t.zoom)
	addTool(server, "get_timeline", "Position every visible task on the timeline", t.timeline)
	addTool(server, "timeline_position", "Convert between a datetime and an x offset", t.timelinePosition)
}

func (t *toolset) logActivity(ctx context.Context, entry *activity.ActivityEntry) {
	if err := t.svc.Activity.LogActivity(ctx, getTenantID(ctx), entry); err != nil {
		t.logger.Warn("failed to log activity", "type", entry.ActivityType, "project_id", entry.ProjectID, "error", err)
	}
}

func (t *toolset) createProject(ctx context.Context, in CreateProjectParams) (any, error) {
	proj, err := t.svc.Projects.Create(ctx, getTenantID(ctx), project.CreateRequest{ID: in.ID, Name: in.Name})
	if err != nil {
		return nil, err
	}
	t.logActivity(ctx, &activity.ActivityEntry{
		ProjectID:    proj.ID,
		ActivityType: activity.TypeProjectCreated,
		Summary:      fmt.Sprintf("created project %q", proj.Name),
	})
	return projectResponse(proj), nil
}

func (t *toolset) listProjects(ctx context.Context, _ struct{}) (any, error) {
	return t.svc.Projects.List(ctx, getTenantID(ctx))
}

func (t *toolset) getProject(ctx context.Context, in ProjectIDParams) (any, error) {
	tenantID := getTenantID(ctx)
	proj, err := t.svc.Projects.Get(ctx, tenantID, in.ProjectID)
	if err != nil {
		return nil, err
	}
	sessions, err := t.svc.Sessions.ListActive(ctx, tenantID, proj.ID)
	if err != nil {
		return nil, err
	}
	return struct {
		ProjectResponse
		OpenSessions []session.SessionInfo `json:"open_sessions"`
	}{projectResponse(proj), sessions}, nil
}

func (t *toolset) deleteProject(ctx context.Context, in ProjectIDParams) (any, error) {
	if err := t.svc.Projects.Delete(ctx, getTenantID(ctx), in.ProjectID); err != nil {
		return nil, err
	}
	return OKResponse{OK: true}, nil
}

func (t *toolset) importProject(ctx context.Context, in ImportProjectParams) (any, error) {
	format, err := codec.ParseFormat(in.Format)
	if err != nil {
		return nil, err
	}
	proj, err := t.svc.Projects.Import(ctx, getTenantID(ctx), project.ImportRequest{
		Data:   []byte(in.Document),
		Format: format,
		Name:   in.Name,
	})
	if err != nil {
		return nil, err
	}
	t.logActivity(ctx, &activity.ActivityEntry{
		ProjectID:    proj.ID,
		ActivityType: activity.TypeProjectImported,
		Summary:      fmt.Sprintf("imported project %q with %d tasks", proj.Name, len(proj.Tasks)),
	})
	return projectResponse(proj), nil
}

func (t *toolset) exportProject(ctx context.Context, in ExportProjectParams) (any, error) {
	format, err := codec.ParseFormat(in.Format)
	if err != nil {
		return nil, err
	}
	data, err := t.svc.Projects.Export(ctx, getTenantID(ctx), in.ProjectID, format)
	if err != nil {
		return nil, err
	}
	return ExportProjectResponse{ProjectID: in.ProjectID, Format: string(format), Document: string(data)}, nil
}

func (t *toolset) recentActivity(ctx context.Context, in RecentActivityParams) (any, error) {
	opts := activity.ListActivityOptions{
		ProjectID: in.ProjectID,
		Limit:     in.Limit,
		Offset:    in.Offset,
	}
	if in.TaskID != "" {
		opts.TaskID = &in.TaskID
	}
	if in.SessionID != "" {
		opts.SessionID = &in.SessionID
	}
	return t.svc.Activity.GetRecentActivity(ctx, getTenantID(ctx), opts)
}

func (t *toolset) openSession(ctx context.Context, in ProjectIDParams) (any, error) {
	tenantID := getTenantID(ctx)
	sess, err := t.svc.Sessions.Open(ctx, tenantID, in.ProjectID)
	if err != nil {
		return nil, err
	}
	state, err := t.svc.Sessions.State(ctx, tenantID, sess.ID)
	if err != nil {
		return nil, err
	}
	return SessionResponse{Session: sess, State: state}, nil
}

func (t *toolset) sessionState(ctx context.Context, in SessionParams) (any, error) {
	sessionID, err := resolveSessionID(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	tenantID := getTenantID(ctx)
	sess, err := t.svc.Sessions.Get(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	state, err := t.svc.Sessions.State(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	return SessionResponse{Session: sess, State: state}, nil
}

func (t *toolset) saveSession(ctx context.Context, in SessionParams) (any, error) {
	sessionID, err := resolveSessionID(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	tenantID := getTenantID(ctx)
	if err := t.svc.Sessions.Save(ctx, tenantID, sessionID); err != nil {
		return nil, err
	}
	return t.svc.Sessions.State(ctx, tenantID, sessionID)
}

func (t *toolset) closeSession(ctx context.Context, in CloseSessionParams) (any, error) {
	sessionID, err := resolveSessionID(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	tenantID := getTenantID(ctx)
	if in.Save {
		if err := t.svc.Sessions.Save(ctx, tenantID, sessionID); err != nil {
			return nil, err
		}
	}
	if err := t.svc.Sessions.Close(ctx, tenantID, sessionID); err != nil {
		return nil, err
	}
	return OKResponse{OK: true}, nil
}

func (t *toolset) listTasks(ctx context.Context, in ListTasksParams) (any, error) {
	proj, err := t.sessionProject(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	filter := task.Filter{Query: in.Query}
	if in.Priority != "" {
		p, err := parsePriority(in.Priority)
		if err != nil {
			return nil, err
		}
		filter.Priority = &p
	}
	return TaskListResponse{
		Tasks:    taskViews(proj, proj.Filter(filter)),
		Total:    len(proj.Tasks),
		Filtered: filter.IsActive(),
	}, nil
}

func (t *toolset) getTask(ctx context.Context, in TaskIDParams) (any, error) {
	proj, err := t.sessionProject(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	id, err := parseTaskID("task_id", in.TaskID)
	if err != nil {
		return nil, err
	}
	tk, ok := proj.Task(id)
	if !ok {
		return nil, project.ErrTaskNotFound
	}
	links := proj.DependenciesOf(id)
	deps := make([]DependencyView, 0, len(links))
	for _, l := range links {
		v := dependencyView(l.Dependency)
		v.Label = l.Label()
		deps = append(deps, v)
	}
	return TaskDetailResponse{
		Task:             taskView(proj, tk),
		Dependencies:     deps,
		Children:         taskRefs(proj.Children(id)),
		ParentCandidates: taskRefs(proj.ParentCandidates(id)),
	}, nil
}

func (t *toolset) addTask(ctx context.Context, in AddTaskParams) (any, error) {
	sessionID, err := resolveSessionID(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	start, err := codec.ParseDatetime("start", in.Start)
	if err != nil {
		return nil, err
	}

	var tk task.Task
	if in.Milestone {
		tk = task.NewMilestone(in.Name, start)
	} else {
		if in.End == "" {
			return nil, invalidInput("end is required for a regular task")
		}
		end, err := codec.ParseDatetime("end", in.End)
		if err != nil {
			return nil, err
		}
		tk = task.New(in.Name, start, end)
	}
	tk.Progress = in.Progress
	tk.Description = in.Description
	if in.Priority != "" {
		if tk.Priority, err = parsePriority(in.Priority); err != nil {
			return nil, err
		}
	}
	if in.ParentID != "" {
		parentID, err := parseTaskID("parent_id", in.ParentID)
		if err != nil {
			return nil, err
		}
		tk.SetParent(parentID)
	}
	if in.Color != nil {
		if tk.Color, err = parseColor(in.Color); err != nil {
			return nil, err
		}
	}

	tenantID := getTenantID(ctx)
	added, err := t.svc.Sessions.AddTask(ctx, tenantID, sessionID, tk)
	if err != nil {
		return nil, err
	}
	return t.taskWithProject(ctx, tenantID, sessionID, added)
}

func (t *toolset) updateTask(ctx context.Context, in UpdateTaskParams) (any, error) {
	sessionID, err := resolveSessionID(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	id, err := parseTaskID("task_id", in.TaskID)
	if err != nil {
		return nil, err
	}

	var edits []func(*task.Task)
	if in.Name != nil {
		name := *in.Name
		edits = append(edits, func(tk *task.Task) { tk.Name = name })
	}
	if in.Start != nil {
		start, err := codec.ParseDatetime("start", *in.Start)
		if err != nil {
			return nil, err
		}
		edits = append(edits, func(tk *task.Task) { tk.Start = task.Normalize(start) })
	}
	if in.End != nil {
		end, err := codec.ParseDatetime("end", *in.End)
		if err != nil {
			return nil, err
		}
		edits = append(edits, func(tk *task.Task) { tk.End = task.Normalize(end) })
	}
	if in.Progress != nil {
		progress := *in.Progress
		edits = append(edits, func(tk *task.Task) { tk.Progress = progress })
	}
	if in.Priority != nil {
		p, err := parsePriority(*in.Priority)
		if err != nil {
			return nil, err
		}
		edits = append(edits, func(tk *task.Task) { tk.Priority = p })
	}
	if in.Description != nil {
		desc := *in.Description
		edits = append(edits, func(tk *task.Task) { tk.Description = desc })
	}
	if in.ParentID != nil {
		if *in.ParentID == "" {
			edits = append(edits, func(tk *task.Task) { tk.ClearParent() })
		} else {
			parentID, err := parseTaskID("parent_id", *in.ParentID)
			if err != nil {
				return nil, err
			}
			edits = append(edits, func(tk *task.Task) { tk.SetParent(parentID) })
		}
	}
	if in.Collapsed != nil {
		collapsed := *in.Collapsed
		edits = append(edits, func(tk *task.Task) { tk.Collapsed = collapsed })
	}
	if in.Color != nil {
		c, err := parseColor(in.Color)
		if err != nil {
			return nil, err
		}
		edits = append(edits, func(tk *task.Task) { tk.Color = c })
	}
	// Milestone last so it collapses the end onto the final start.
	if in.Milestone != nil {
		milestone := *in.Milestone
		edits = append(edits, func(tk *task.Task) { tk.SetMilestone(milestone) })
	}
	if len(edits) == 0 {
		return nil, invalidInput("no fields to update")
	}

	tenantID := getTenantID(ctx)
	updated, err := t.svc.Sessions.UpdateTask(ctx, tenantID, sessionID, id, func(tk *task.Task) {
		for _, edit := range edits {
			edit(tk)
		}
	})
	if err != nil {
		return nil, err
	}
	return t.taskWithProject(ctx, tenantID, sessionID, updated)
}

func (t *toolset) deleteTask(ctx context.Context, in TaskIDParams) (any, error) {
	sessionID, err := resolveSessionID(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	id, err := parseTaskID("task_id", in.TaskID)
	if err != nil {
		return nil, err
	}
	tenantID := getTenantID(ctx)
	if err := t.svc.Sessions.DeleteTask(ctx, tenantID, sessionID, id); err != nil {
		return nil, err
	}
	return t.svc.Sessions.State(ctx, tenantID, sessionID)
}

func (t *toolset) addDependency(ctx context.Context, in DependencyParams) (any, error) {
	sessionID, err := resolveSessionID(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	dep, err := parseDependency(in)
	if err != nil {
		return nil, err
	}
	tenantID := getTenantID(ctx)
	if err := t.svc.Sessions.AddDependency(ctx, tenantID, sessionID, dep); err != nil {
		return nil, err
	}
	return dependencyView(dep), nil
}

func (t *toolset) removeDependency(ctx context.Context, in DependencyParams) (any, error) {
	sessionID, err := resolveSessionID(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	dep, err := parseDependency(in)
	if err != nil {
		return nil, err
	}
	if err := t.svc.Sessions.RemoveDependency(ctx, getTenantID(ctx), sessionID, dep.FromTask, dep.ToTask); err != nil {
		return nil, err
	}
	return OKResponse{OK: true}, nil
}

func (t *toolset) undo(ctx context.Context, in SessionParams) (any, error) {
	return t.travel(ctx, in.SessionID, t.svc.Sessions.Undo)
}

func (t *toolset) redo(ctx context.Context, in SessionParams) (any, error) {
	return t.travel(ctx, in.SessionID, t.svc.Sessions.Redo)
}

func (t *toolset) travel(ctx context.Context, explicit string, step func(ctx context.Context, tenantID, sessionID string) (bool, error)) (any, error) {
	sessionID, err := resolveSessionID(ctx, explicit)
	if err != nil {
		return nil, err
	}
	tenantID := getTenantID(ctx)
	applied, err := step(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	state, err := t.svc.Sessions.State(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	return HistoryResponse{Applied: applied, State: state}, nil
}

func (t *toolset) zoom(ctx context.Context, in ZoomParams) (any, error) {
	sessionID, err := resolveSessionID(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	tenantID := getTenantID(ctx)
	switch {
	case in.PixelsPerDay > 0 && in.Direction != "":
		return nil, invalidInput("pass either direction or pixels_per_day, not both")
	case in.PixelsPerDay > 0:
		return t.svc.Sessions.SetPixelsPerDay(ctx, tenantID, sessionID, in.PixelsPerDay)
	default:
		return t.svc.Sessions.Zoom(ctx, tenantID, sessionID, session.ZoomDirection(strings.ToLower(in.Direction)))
	}
}

func (t *toolset) timeline(ctx context.Context, in SessionParams) (any, error) {
	sessionID, err := resolveSessionID(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	tenantID := getTenantID(ctx)
	layout, err := t.svc.Sessions.Layout(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	proj, err := t.svc.Sessions.Project(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	return timelineResponse(proj, layout), nil
}

func (t *toolset) timelinePosition(ctx context.Context, in TimelinePositionParams) (any, error) {
	sessionID, err := resolveSessionID(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	tenantID := getTenantID(ctx)
	switch {
	case in.Datetime != "" && in.X != nil:
		return nil, invalidInput("pass either datetime or x, not both")
	case in.Datetime != "":
		at, err := codec.ParseDatetime("datetime", in.Datetime)
		if err != nil {
			return nil, err
		}
		x, err := t.svc.Sessions.Position(ctx, tenantID, sessionID, at)
		if err != nil {
			return nil, err
		}
		return TimelinePositionResponse{Datetime: codec.FormatDatetime(at), X: x}, nil
	case in.X != nil:
		at, err := t.svc.Sessions.DatetimeAt(ctx, tenantID, sessionID, *in.X)
		if err != nil {
			return nil, err
		}
		return TimelinePositionResponse{Datetime: codec.FormatDatetime(at), X: *in.X}, nil
	default:
		return nil, invalidInput("datetime or x is required")
	}
}

func (t *toolset) sessionProject(ctx context.Context, explicit string) (*project.Project, error) {
	sessionID, err := resolveSessionID(ctx, explicit)
	if err != nil {
		return nil, err
	}
	return t.svc.Sessions.Project(ctx, getTenantID(ctx), sessionID)
}

func (t *toolset) taskWithProject(ctx context.Context, tenantID, sessionID string, tk task.Task) (TaskView, error) {
	proj, err := t.svc.Sessions.Project(ctx, tenantID, sessionID)
	if err != nil {
		return TaskView{}, err
	}
	return taskView(proj, tk), nil
}

func parseTaskID(field, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil, invalidInput("%s: %q is not a task id", field, value)
	}
	return id, nil
}

func parsePriority(value string) (task.Priority, error) {
	for _, p := range task.Priorities() {
		if strings.EqualFold(string(p), strings.TrimSpace(value)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", task.ErrInvalidPriority, value)
}

func parseKind(value string) (task.DependencyKind, error) {
	if value == "" {
		return task.FinishToStart, nil
	}
	for _, k := range task.DependencyKinds() {
		if strings.EqualFold(string(k), value) || strings.EqualFold(k.ShortLabel(), value) {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", task.ErrInvalidDependencyKind, value)
}

func parseDependency(in DependencyParams) (task.Dependency, error) {
	from, err := parseTaskID("from_task", in.FromTask)
	if err != nil {
		return task.Dependency{}, err
	}
	to, err := parseTaskID("to_task", in.ToTask)
	if err != nil {
		return task.Dependency{}, err
	}
	kind, err := parseKind(in.Kind)
	if err != nil {
		return task.Dependency{}, err
	}
	return task.Dependency{FromTask: from, ToTask: to, Kind: kind}, nil
}

func parseColor(values []int) (task.Color, error) {
	if len(values) != 4 {
		return task.Color{}, invalidInput("color must have four components, got %d", len(values))
	}
	var b [4]uint8
	for i, v := range values {
		if v < 0 || v > 255 {
			return task.Color{}, invalidInput("color component %d out of range: %d", i, v)
		}
		b[i] = uint8(v)
	}
	return task.ColorFromBytes(b), nil
}

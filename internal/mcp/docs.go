package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `gantt edits Gantt charts: Projects hold Tasks and Dependencies, edited through Sessions.

Core concepts:
- Project: a named, stored chart. Tasks keep their insertion order; display order groups children under parents.
- Task: a bar (start..end, progress 0..1) or a milestone (start == end). Priority is None, Low, Medium, High or Critical.
- Parent: a top-level task with children. Its start, end and progress are derived from its children and cannot be edited directly. Nesting is one level deep.
- Dependency: a typed link (FS, SS, FF, SF) between two tasks. Deleting a task removes its links.
- Session: an editing handle with undo/redo and a zoomable timeline. Edits stay in the session until save_session.

Workflow:
1) list_projects, or create_project / import_project.
2) open_session(project_id) and keep the returned session.id.
3) list_tasks / get_task to browse; add_task / update_task / delete_task / add_dependency to edit.
4) undo / redo freely; get_session_state reports dirty and history depth.
5) save_session, then close_session. Closing without saving discards edits.

Datetimes are written YYYY-MM-DDTHH:MM:SS in UTC. Date-only and RFC 3339 input are also accepted.

Transport notes:
- Every session tool accepts a session_id argument.
- HTTP: the Gantt-Session-Id header is used when the argument is omitted.
- Stdio: _meta.session_id is used when the argument is omitted.

Docs:
- gantt://docs/index
- gantt://docs/concepts
- gantt://docs/timeline
- gantt://docs/documents
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "gantt://docs/index",
		Name:        "docs_index",
		Title:       "gantt docs index",
		Description: "Entry point: what each doc covers.",
		Content: `# gantt: Docs Index

- gantt://docs/concepts: tasks, hierarchy, dependencies, sessions and undo.
- gantt://docs/timeline: zoom levels and pixel conversion.
- gantt://docs/documents: import/export format and legacy versions.

## Quick start

1. create_project(name) or import_project(document, format)
2. open_session(project_id)
3. add_task(session_id, name, start, end)
4. save_session(session_id)
`,
	},
	{
		URI:         "gantt://docs/concepts",
		Name:        "docs_concepts",
		Title:       "Concepts and invariants",
		Description: "Task fields, hierarchy rules, dependency kinds and history.",
		Content: `# Concepts

## Tasks

- id: UUID, assigned on creation and never changed.
- start, end: UTC datetimes at second resolution; end is never before start.
- progress: fraction in [0, 1].
- milestone: start == end. Converting a task to a milestone moves end onto start.
- color: RGBA bytes.

## Hierarchy

- parent_id nests a task under a top-level task that is not a milestone. A child can't have children, and a parent can't become a milestone.
- A parent spans its children: start = earliest child start, end = latest child end.
- A parent's progress is the mean of its children's progress.
- Editing those fields on a parent fails with DERIVED_FIELD.
- Deleting a parent moves its children to the top level.
- collapsed hides a parent's children on the timeline only.

## Dependencies

| Kind | Short | Meaning |
|------|-------|---------|
| FinishToStart | FS | successor can't start until this task finishes |
| StartToStart | SS | successor can't start until this task starts |
| FinishToFinish | FF | successor can't finish until this task finishes |
| StartToFinish | SF | successor can't finish until this task starts |

A task can't depend on itself, and a pair of tasks is linked at most once in each direction.

## History

Every successful edit records the prior state. undo and redo step through it;
a new edit clears the redo stack. History is bounded; the oldest entries drop
first. Failed edits record nothing. Zoom is not part of history.
`,
	},
	{
		URI:         "gantt://docs/timeline",
		Name:        "docs_timeline",
		Title:       "Timeline and zoom",
		Description: "How tasks map to x offsets.",
		Content: `# Timeline

The session's timeline spans the project with a week of margin before and two
weeks after. get_timeline returns every visible bar with x and width in pixels.

## Scale

| pixels per day | scale |
|----------------|-------|
| > 50 | Hours |
| > 10 | Days |
| > 3 | Weeks |
| otherwise | Months |

zoom(direction="in") multiplies pixels per day by 1.2; "out" divides by it.
The level is clamped to the configured bounds.

## Conversions

timeline_position(datetime) returns the x offset of a datetime.
timeline_position(x) returns the datetime at an offset, rounded to the second.
`,
	},
	{
		URI:         "gantt://docs/documents",
		Name:        "docs_documents",
		Title:       "Project documents",
		Description: "Import/export format and version upgrades.",
		Content: `# Documents

export_project writes the current version as JSON or YAML:

` + "```json" + `
{
  "version": 3,
  "name": "Launch",
  "tasks": [
    {"id": "…", "name": "Design", "start": "2024-01-01T00:00:00",
     "end": "2024-01-05T00:00:00", "progress": 0.5, "parent_id": null,
     "collapsed": false, "priority": "None", "color": [70, 130, 180, 255],
     "is_milestone": false}
  ],
  "dependencies": [{"from_task": "…", "to_task": "…", "kind": "FinishToStart"}],
  "created": "2024-01-01T09:00:00",
  "modified": "2024-01-02T17:30:00"
}
` + "```" + `

import_project accepts every earlier version. Fields missing from older
versions take defaults (priority None, no parent, expanded). Date-only values
are read as midnight. Any malformed field rejects the whole document and
nothing is stored.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}

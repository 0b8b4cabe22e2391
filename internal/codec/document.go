// Package codec encodes projects to and from their persisted document form.
//
// Documents carry a schema version: 1 has date-only fields and no priority,
// description or parent; 2 adds those three; 3 stores full timestamps. Any
// version is readable, and writers always emit CurrentVersion.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/gantt/internal/domain/task"
	"gopkg.in/yaml.v3"
)

// CurrentVersion is the schema version written by Marshal.
const CurrentVersion = 3

// legacyVersion is assumed when a document has no version field.
const legacyVersion = 1

var (
	// ErrUnsupportedVersion indicates a document newer than this build understands.
	ErrUnsupportedVersion = errors.New("unsupported document version")
	// ErrUnsupportedFormat indicates an unknown document format.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrInvalidID indicates a malformed task id.
	ErrInvalidID = errors.New("invalid task id")
	// ErrInvalidEnum indicates an unknown priority or dependency kind.
	ErrInvalidEnum = errors.New("unknown enumeration value")
)

// Format selects the document syntax.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml" or "yml".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, s)
	}
}

// FormatForPath picks the format from a file extension, defaulting to JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Document is the decoded, format-independent content of a project file.
type Document struct {
	Version      int
	Name         string
	Tasks        []task.Task
	Dependencies []task.Dependency
	Created      time.Time
	Modified     time.Time
}

type wireDocument struct {
	Version      *int             `json:"version,omitempty" yaml:"version,omitempty"`
	Name         string           `json:"name" yaml:"name"`
	Tasks        []wireTask       `json:"tasks" yaml:"tasks"`
	Dependencies []wireDependency `json:"dependencies" yaml:"dependencies"`
	Created      string           `json:"created" yaml:"created"`
	Modified     string           `json:"modified" yaml:"modified"`
}

type wireTask struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Start       string   `json:"start" yaml:"start"`
	End         string   `json:"end" yaml:"end"`
	Progress    float64  `json:"progress" yaml:"progress"`
	Group       *string  `json:"group,omitempty" yaml:"group,omitempty"`
	ParentID    *string  `json:"parent_id" yaml:"parent_id"`
	Collapsed   bool     `json:"collapsed" yaml:"collapsed"`
	Priority    string   `json:"priority,omitempty" yaml:"priority,omitempty"`
	Description string   `json:"description" yaml:"description"`
	Color       [4]uint8 `json:"color" yaml:"color,flow"`
	IsMilestone bool     `json:"is_milestone" yaml:"is_milestone"`
}

type wireDependency struct {
	FromTask string `json:"from_task" yaml:"from_task"`
	ToTask   string `json:"to_task" yaml:"to_task"`
	Kind     string `json:"kind,omitempty" yaml:"kind,omitempty"`
}

// Marshal encodes doc at CurrentVersion.
func Marshal(doc *Document, format Format) ([]byte, error) {
	w := toWire(doc)
	switch format {
	case FormatJSON, "":
		data, err := json.MarshalIndent(w, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		return data, nil
	case FormatYAML:
		data, err := yaml.Marshal(w)
		if err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// Unmarshal decodes a document of any supported version. Any malformed field
// fails the whole document.
func Unmarshal(data []byte, format Format) (*Document, error) {
	var w wireDocument
	switch format {
	case FormatJSON, "":
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	return fromWire(&w)
}

func toWire(doc *Document) *wireDocument {
	version := CurrentVersion
	w := &wireDocument{
		Version:      &version,
		Name:         doc.Name,
		Tasks:        make([]wireTask, 0, len(doc.Tasks)),
		Dependencies: make([]wireDependency, 0, len(doc.Dependencies)),
		Created:      doc.Created.UTC().Format(time.RFC3339Nano),
		Modified:     doc.Modified.UTC().Format(time.RFC3339Nano),
	}
	for _, t := range doc.Tasks {
		wt := wireTask{
			ID:          t.ID.String(),
			Name:        t.Name,
			Start:       FormatDatetime(t.Start),
			End:         FormatDatetime(t.End),
			Progress:    t.Progress,
			Collapsed:   t.Collapsed,
			Priority:    string(t.Priority),
			Description: t.Description,
			Color:       t.Color.Bytes(),
			IsMilestone: t.IsMilestone,
		}
		if t.Group != nil {
			g := *t.Group
			wt.Group = &g
		}
		if t.ParentID.Valid {
			pid := t.ParentID.UUID.String()
			wt.ParentID = &pid
		}
		if wt.Priority == "" {
			wt.Priority = string(task.PriorityNone)
		}
		w.Tasks = append(w.Tasks, wt)
	}
	for _, d := range doc.Dependencies {
		w.Dependencies = append(w.Dependencies, wireDependency{
			FromTask: d.FromTask.String(),
			ToTask:   d.ToTask.String(),
			Kind:     string(d.Kind),
		})
	}
	return w
}

func fromWire(w *wireDocument) (*Document, error) {
	doc := &Document{
		Version:      legacyVersion,
		Name:         w.Name,
		Tasks:        make([]task.Task, 0, len(w.Tasks)),
		Dependencies: make([]task.Dependency, 0, len(w.Dependencies)),
	}
	if w.Version != nil {
		doc.Version = *w.Version
	}
	if doc.Version < legacyVersion || doc.Version > CurrentVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, doc.Version)
	}

	var err error
	if doc.Created, err = parseStamp("created", w.Created); err != nil {
		return nil, err
	}
	if doc.Modified, err = parseStamp("modified", w.Modified); err != nil {
		return nil, err
	}

	for i, wt := range w.Tasks {
		t, err := decodeTask(fmt.Sprintf("tasks[%d]", i), wt)
		if err != nil {
			return nil, err
		}
		doc.Tasks = append(doc.Tasks, t)
	}
	for i, wd := range w.Dependencies {
		d, err := decodeDependency(fmt.Sprintf("dependencies[%d]", i), wd)
		if err != nil {
			return nil, err
		}
		doc.Dependencies = append(doc.Dependencies, d)
	}
	return doc, nil
}

func decodeTask(field string, wt wireTask) (task.Task, error) {
	id, err := parseID(field+".id", wt.ID)
	if err != nil {
		return task.Task{}, err
	}
	start, err := ParseDatetime(field+".start", wt.Start)
	if err != nil {
		return task.Task{}, err
	}
	end, err := ParseDatetime(field+".end", wt.End)
	if err != nil {
		return task.Task{}, err
	}

	t := task.Task{
		ID:          id,
		Name:        wt.Name,
		Start:       start,
		End:         end,
		Progress:    wt.Progress,
		Collapsed:   wt.Collapsed,
		Priority:    task.Priority(wt.Priority),
		Description: wt.Description,
		Color:       task.ColorFromBytes(wt.Color),
		IsMilestone: wt.IsMilestone,
	}
	if wt.Group != nil {
		g := *wt.Group
		t.Group = &g
	}
	if wt.ParentID != nil && *wt.ParentID != "" {
		pid, err := parseID(field+".parent_id", *wt.ParentID)
		if err != nil {
			return task.Task{}, err
		}
		t.SetParent(pid)
	}
	if t.Priority == "" {
		t.Priority = task.PriorityNone
	}
	if !t.Priority.IsValid() {
		return task.Task{}, &FieldError{Field: field + ".priority", Value: wt.Priority, Err: ErrInvalidEnum}
	}
	return t, nil
}

func decodeDependency(field string, wd wireDependency) (task.Dependency, error) {
	from, err := parseID(field+".from_task", wd.FromTask)
	if err != nil {
		return task.Dependency{}, err
	}
	to, err := parseID(field+".to_task", wd.ToTask)
	if err != nil {
		return task.Dependency{}, err
	}
	kind := task.DependencyKind(wd.Kind)
	if kind == "" {
		kind = task.FinishToStart
	}
	if !kind.IsValid() {
		return task.Dependency{}, &FieldError{Field: field + ".kind", Value: wd.Kind, Err: ErrInvalidEnum}
	}
	return task.Dependency{FromTask: from, ToTask: to, Kind: kind}, nil
}

func parseID(field, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, &FieldError{Field: field, Value: value, Err: ErrInvalidID}
	}
	return id, nil
}

// parseStamp reads the project-level timestamps, which are RFC 3339 in
// current documents. Missing values are left zero.
func parseStamp(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.UTC(), nil
	}
	return ParseDatetime(field, value)
}

package project

import (
	"time"

	"github.com/rpggio/gantt/internal/codec"
	"github.com/rpggio/gantt/internal/domain/task"
)

const (
	// SchemaVersion is the document version written by this build.
	SchemaVersion = codec.CurrentVersion
	// DefaultName is used when a project is created without a name.
	DefaultName = "Untitled Project"
)

// Project owns an ordered task sequence and a dependency set.
type Project struct {
	ID           string            `json:"id"`
	TenantID     string            `json:"tenant_id"`
	Version      int               `json:"version"`
	Name         string            `json:"name"`
	Tasks        []task.Task       `json:"tasks"`
	Dependencies []task.Dependency `json:"dependencies"`
	CreatedAt    time.Time         `json:"created_at"`
	ModifiedAt   time.Time         `json:"modified_at"`
}

// ProjectSummary is a lightweight representation for listing
type ProjectSummary struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Version         int       `json:"version"`
	TaskCount       int       `json:"task_count"`
	MilestoneCount  int       `json:"milestone_count"`
	DependencyCount int       `json:"dependency_count"`
	CreatedAt       time.Time `json:"created_at"`
	ModifiedAt      time.Time `json:"modified_at"`
}

// New creates an empty project at the current schema version.
func New(name string) *Project {
	if name == "" {
		name = DefaultName
	}
	now := time.Now().UTC()
	return &Project{
		Version:      SchemaVersion,
		Name:         name,
		Tasks:        []task.Task{},
		Dependencies: []task.Dependency{},
		CreatedAt:    now,
		ModifiedAt:   now,
	}
}

// Touch records that the project was modified.
func (p *Project) Touch() {
	p.ModifiedAt = time.Now().UTC()
}

// Summary condenses the project for listings.
func (p *Project) Summary() ProjectSummary {
	s := ProjectSummary{
		ID:              p.ID,
		Name:            p.Name,
		Version:         p.Version,
		TaskCount:       len(p.Tasks),
		DependencyCount: len(p.Dependencies),
		CreatedAt:       p.CreatedAt,
		ModifiedAt:      p.ModifiedAt,
	}
	for i := range p.Tasks {
		if p.Tasks[i].IsMilestone {
			s.MilestoneCount++
		}
	}
	return s
}

// Clone returns a deep copy of the project.
func (p *Project) Clone() *Project {
	c := *p
	c.Tasks = task.CloneTasks(p.Tasks)
	c.Dependencies = task.CloneDependencies(p.Dependencies)
	return &c
}

// Span returns the earliest start and latest end over all tasks.
// ok is false for an empty project.
func (p *Project) Span() (start, end time.Time, ok bool) {
	for i, t := range p.Tasks {
		if i == 0 || t.Start.Before(start) {
			start = t.Start
		}
		if i == 0 || t.End.After(end) {
			end = t.End
		}
	}
	return start, end, len(p.Tasks) > 0
}

package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/rpggio/gantt/internal/codec"
	"github.com/rpggio/gantt/internal/repository"
)

// Service handles project operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new project service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CreateRequest defines project creation inputs.
type CreateRequest struct {
	ID   string
	Name string
}

// ImportRequest defines a document import.
type ImportRequest struct {
	Data   []byte
	Format codec.Format
	// Name overrides the document's project name when set.
	Name string
}

// Create creates a new, empty project.
func (s *Service) Create(ctx context.Context, tenantID string, req CreateRequest) (*Project, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrInvalidInput
	}

	proj := New(req.Name)
	proj.ID = req.ID
	if strings.TrimSpace(proj.ID) == "" {
		proj.ID = uuid.NewString()
	}
	proj.TenantID = tenantID

	if err := s.repo.Create(ctx, tenantID, proj); err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}

	return proj, nil
}

// Get fetches a project by ID.
func (s *Service) Get(ctx context.Context, tenantID, id string) (*Project, error) {
	proj, err := s.repo.Get(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("getting project: %w", err)
	}
	return proj, nil
}

// List returns project summaries.
func (s *Service) List(ctx context.Context, tenantID string) ([]ProjectSummary, error) {
	return s.repo.List(ctx, tenantID)
}

// Save persists the full task and dependency state of proj.
func (s *Service) Save(ctx context.Context, tenantID string, proj *Project) error {
	if err := proj.CheckIntegrity(); err != nil {
		return err
	}
	proj.Version = SchemaVersion
	if err := s.repo.Save(ctx, tenantID, proj); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("saving project: %w", err)
	}
	return nil
}

// Delete removes a project and everything it owns.
func (s *Service) Delete(ctx context.Context, tenantID, id string) error {
	if err := s.repo.Delete(ctx, tenantID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("deleting project: %w", err)
	}
	return nil
}

// Import decodes a project document of any schema version and stores it as a
// new project. Older documents are upgraded to SchemaVersion.
func (s *Service) Import(ctx context.Context, tenantID string, req ImportRequest) (*Project, error) {
	doc, err := codec.Unmarshal(req.Data, req.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	proj := FromDocument(doc)
	proj.ID = uuid.NewString()
	proj.TenantID = tenantID
	if strings.TrimSpace(req.Name) != "" {
		proj.Name = req.Name
	}
	if err := proj.CheckIntegrity(); err != nil {
		return nil, err
	}
	if doc.Version < SchemaVersion {
		s.log().Info("upgrading legacy project document",
			"project_id", proj.ID, "from_version", doc.Version, "to_version", SchemaVersion)
	}
	proj.Version = SchemaVersion

	if err := s.repo.Create(ctx, tenantID, proj); err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}
	return proj, nil
}

// Export encodes a stored project as a document.
func (s *Service) Export(ctx context.Context, tenantID, id string, format codec.Format) ([]byte, error) {
	proj, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return codec.Marshal(ToDocument(proj), format)
}

// ToDocument converts a project to its persisted document form.
func ToDocument(p *Project) *codec.Document {
	return &codec.Document{
		Version:      SchemaVersion,
		Name:         p.Name,
		Tasks:        p.Tasks,
		Dependencies: p.Dependencies,
		Created:      p.CreatedAt,
		Modified:     p.ModifiedAt,
	}
}

// FromDocument builds a project from a decoded document. Missing timestamps
// default to now.
func FromDocument(doc *codec.Document) *Project {
	proj := New(doc.Name)
	proj.Version = doc.Version
	proj.Tasks = doc.Tasks
	proj.Dependencies = doc.Dependencies
	if !doc.Created.IsZero() {
		proj.CreatedAt = doc.Created
	}
	if !doc.Modified.IsZero() {
		proj.ModifiedAt = doc.Modified
	}
	return proj
}

func (s *Service) log() *slog.Logger {
	if s.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.logger
}

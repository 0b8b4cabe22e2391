package mcp

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/gantt/internal/codec"
	"github.com/rpggio/gantt/internal/domain/activity"
	"github.com/rpggio/gantt/internal/domain/project"
	"github.com/rpggio/gantt/internal/domain/session"
	"github.com/rpggio/gantt/internal/domain/task"
)

// ProjectService defines project operations needed by MCP.
type ProjectService interface {
	Create(ctx context.Context, tenantID string, req project.CreateRequest) (*project.Project, error)
	List(ctx context.Context, tenantID string) ([]project.ProjectSummary, error)
	Get(ctx context.Context, tenantID, id string) (*project.Project, error)
	Delete(ctx context.Context, tenantID, id string) error
	Import(ctx context.Context, tenantID string, req project.ImportRequest) (*project.Project, error)
	Export(ctx context.Context, tenantID, id string, format codec.Format) ([]byte, error)
}

// SessionService defines editing-session operations needed by MCP.
type SessionService interface {
	Open(ctx context.Context, tenantID, projectID string) (*session.Session, error)
	Get(ctx context.Context, tenantID, sessionID string) (*session.Session, error)
	ListActive(ctx context.Context, tenantID, projectID string) ([]session.SessionInfo, error)
	Project(ctx context.Context, tenantID, sessionID string) (*project.Project, error)
	State(ctx context.Context, tenantID, sessionID string) (*session.State, error)
	Save(ctx context.Context, tenantID, sessionID string) error
	Close(ctx context.Context, tenantID, sessionID string) error

	AddTask(ctx context.Context, tenantID, sessionID string, t task.Task) (task.Task, error)
	UpdateTask(ctx context.Context, tenantID, sessionID string, id uuid.UUID, edit func(t *task.Task)) (task.Task, error)
	DeleteTask(ctx context.Context, tenantID, sessionID string, id uuid.UUID) error
	AddDependency(ctx context.Context, tenantID, sessionID string, d task.Dependency) error
	RemoveDependency(ctx context.Context, tenantID, sessionID string, from, to uuid.UUID) error
	Undo(ctx context.Context, tenantID, sessionID string) (bool, error)
	Redo(ctx context.Context, tenantID, sessionID string) (bool, error)

	Zoom(ctx context.Context, tenantID, sessionID string, dir session.ZoomDirection) (*session.State, error)
	SetPixelsPerDay(ctx context.Context, tenantID, sessionID string, ppd float64) (*session.State, error)
	Layout(ctx context.Context, tenantID, sessionID string) (*session.Layout, error)
	Position(ctx context.Context, tenantID, sessionID string, t time.Time) (float64, error)
	DatetimeAt(ctx context.Context, tenantID, sessionID string, x float64) (time.Time, error)
}

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	LogActivity(ctx context.Context, tenantID string, entry *activity.ActivityEntry) error
	GetRecentActivity(ctx context.Context, tenantID string, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Projects ProjectService
	Sessions SessionService
	Activity ActivityService
}

// Config contains server configuration.
type Config struct {
	Services      Services
	Resolver      TenantResolver
	AuthEnabled   bool
	TransportMode string // "stdio" or "http"
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "gantt",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       logger,
	})

	registerDocResources(server)

	// Stdio is local only and never authenticates.
	if cfg.TransportMode == "stdio" || !cfg.AuthEnabled {
		server.AddReceivingMiddleware(noAuthMiddleware(DefaultTenant))
	} else {
		server.AddReceivingMiddleware(authMiddleware(cfg.Resolver))
	}
	server.AddReceivingMiddleware(sessionMiddleware())
	server.AddReceivingMiddleware(trafficLoggingMiddleware(logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(logger, "outbound"))

	registerTools(server, &toolset{svc: cfg.Services, logger: logger})

	return server
}

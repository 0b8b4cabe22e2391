// Package app wires the SQLite store, domain services and MCP server
// together for the server and CLI binaries.
package app

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/gantt/internal/config"
	"github.com/rpggio/gantt/internal/domain/activity"
	"github.com/rpggio/gantt/internal/domain/project"
	"github.com/rpggio/gantt/internal/domain/session"
	"github.com/rpggio/gantt/internal/mcp"
	"github.com/rpggio/gantt/internal/sqlite"
)

// App holds an open database and the services built on it.
type App struct {
	DB       *sqlite.DB
	Projects *project.Service
	Sessions *session.Service
	Activity *activity.Service
	APIKeys  *sqlite.APIKeyRepository

	cfg    config.Config
	logger *slog.Logger
}

// Open opens the configured database, applies migrations and builds the
// services.
func Open(cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := ensureDBDir(cfg.DB.Path); err != nil {
		return nil, fmt.Errorf("preparing database path: %w", err)
	}

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	projectRepo := sqlite.NewProjectRepository(db)
	sessionRepo := sqlite.NewSessionRepository(db)
	activityRepo := sqlite.NewActivityRepository(db)

	projectSvc := project.NewService(projectRepo, logger)
	sessionSvc := session.NewService(sessionRepo, projectSvc, activityRepo, session.Options{
		HistoryCapacity: cfg.History.Capacity,
		Timeline:        cfg.Timeline,
	}, logger)

	return &App{
		DB:       db,
		Projects: projectSvc,
		Sessions: sessionSvc,
		Activity: activity.NewService(activityRepo, logger),
		APIKeys:  sqlite.NewAPIKeyRepository(db),
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// MCPServer builds an MCP server over the app's services using the
// configured transport mode and auth setting.
func (a *App) MCPServer() *sdkmcp.Server {
	return mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Projects: a.Projects,
			Sessions: a.Sessions,
			Activity: a.Activity,
		},
		Resolver:      a.APIKeys,
		AuthEnabled:   a.cfg.Auth.Enabled,
		TransportMode: a.cfg.Transport.Mode,
		Logger:        a.logger,
	})
}

// Close closes the database.
func (a *App) Close() error {
	return a.DB.Close()
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

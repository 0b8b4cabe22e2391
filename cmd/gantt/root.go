package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/rpggio/gantt/internal/app"
	"github.com/rpggio/gantt/internal/config"
	"github.com/rpggio/gantt/internal/mcp"
	"github.com/spf13/cobra"
)

// cli carries the flags shared by every command and the app opened for the
// running command.
type cli struct {
	dbPath   string
	tenantID string
	logLevel string

	app *app.App
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "gantt",
		Short:         "Manage Gantt chart projects",
		Long:          `Import, inspect, edit and export Gantt chart projects stored in the gantt SQLite database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.open()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.dbPath, "db", "", "SQLite database path (default from config)")
	flags.StringVarP(&c.tenantID, "tenant", "T", mcp.DefaultTenant, "Tenant that owns the projects")
	flags.StringVar(&c.logLevel, "log-level", "warn", "Log level: debug, info, warn or error")

	root.AddCommand(
		c.listCmd(),
		c.importCmd(),
		c.exportCmd(),
		c.showCmd(),
		c.addTaskCmd(),
		c.activityCmd(),
		c.apikeyCmd(),
	)
	return root
}

func (c *cli) open() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if c.dbPath != "" {
		cfg.DB.Path = c.dbPath
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: app.ParseLogLevel(c.logLevel),
	}))

	a, err := app.Open(cfg, logger)
	if err != nil {
		return err
	}
	c.app = a
	return nil
}

func (c *cli) close() error {
	if c.app == nil {
		return nil
	}
	err := c.app.Close()
	c.app = nil
	return err
}

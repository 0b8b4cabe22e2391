package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/rpggio/gantt/internal/codec"
	"github.com/rpggio/gantt/internal/domain/activity"
	"github.com/rpggio/gantt/internal/domain/project"
	"github.com/rpggio/gantt/internal/domain/task"
	"github.com/spf13/cobra"
)

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := c.app.Projects.List(cmd.Context(), c.tenantID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(projects) == 0 {
				fmt.Fprintln(out, "No projects found.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tTASKS\tMILESTONES\tDEPENDENCIES\tMODIFIED")
			for _, p := range projects {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\n",
					p.ID, p.Name, p.TaskCount, p.MilestoneCount, p.DependencyCount, codec.FormatDatetime(p.ModifiedAt))
			}
			return w.Flush()
		},
	}
}

func (c *cli) importCmd() *cobra.Command {
	var name, format string
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import a project document",
		Long:  `Import a JSON or YAML project document of any supported version. The format follows the file extension unless --format is given.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			f := codec.FormatForPath(args[0])
			if format != "" {
				if f, err = codec.ParseFormat(format); err != nil {
					return err
				}
			}
			proj, err := c.app.Projects.Import(cmd.Context(), c.tenantID, project.ImportRequest{
				Data:   data,
				Format: f,
				Name:   name,
			})
			if err != nil {
				return err
			}
			c.record(cmd.Context(), &activity.ActivityEntry{
				ProjectID:    proj.ID,
				ActivityType: activity.TypeProjectImported,
				Summary:      fmt.Sprintf("imported project %q from %s", proj.Name, args[0]),
			})
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %q as %s (%d tasks)\n", proj.Name, proj.ID, len(proj.Tasks))
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Override the project name")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Document format: json or yaml")
	return cmd
}

func (c *cli) exportCmd() *cobra.Command {
	var output, format string
	cmd := &cobra.Command{
		Use:   "export PROJECT_ID",
		Short: "Export a project as a current-version document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := codec.FormatJSON
			if output != "" {
				f = codec.FormatForPath(output)
			}
			if format != "" {
				var err error
				if f, err = codec.ParseFormat(format); err != nil {
					return err
				}
			}
			data, err := c.app.Projects.Export(cmd.Context(), c.tenantID, args[0], f)
			if err != nil {
				return err
			}
			if output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return os.WriteFile(output, data, 0o644)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Document format: json or yaml")
	return cmd
}

func (c *cli) showCmd() *cobra.Command {
	var query, priority string
	var ppd float64
	cmd := &cobra.Command{
		Use:   "show PROJECT_ID",
		Short: "Show a project's tasks laid out on the timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sessions := c.app.Sessions
			sess, err := sessions.Open(ctx, c.tenantID, args[0])
			if err != nil {
				return err
			}
			defer sessions.Close(ctx, c.tenantID, sess.ID)

			if ppd > 0 {
				if _, err := sessions.SetPixelsPerDay(ctx, c.tenantID, sess.ID, ppd); err != nil {
					return err
				}
			}
			proj, err := sessions.Project(ctx, c.tenantID, sess.ID)
			if err != nil {
				return err
			}
			layout, err := sessions.Layout(ctx, c.tenantID, sess.ID)
			if err != nil {
				return err
			}

			filter := task.Filter{Query: query}
			if priority != "" {
				p := task.Priority(priority)
				if !p.IsValid() {
					return fmt.Errorf("%w: %q", task.ErrInvalidPriority, priority)
				}
				filter.Priority = &p
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %s to %s, %s scale, %.1f px/day, %.0f px wide\n",
				proj.Name, codec.FormatDatetime(layout.Start), codec.FormatDatetime(layout.End),
				layout.Scale, layout.PixelsPerDay, layout.TotalWidth)

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ROW\tNAME\tSTART\tEND\tPROGRESS\tPRIORITY\tX\tWIDTH")
			for _, bar := range layout.Bars {
				if !filter.Matches(bar.Task) {
					continue
				}
				name := strings.Repeat("  ", bar.Indent) + bar.Task.Name
				switch {
				case bar.Task.IsMilestone:
					name += " ◆"
				case bar.IsParent && bar.Task.Collapsed:
					name += " [+]"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.0f%%\t%s\t%.1f\t%.1f\n",
					bar.Row, name, codec.FormatDatetime(bar.Task.Start), codec.FormatDatetime(bar.Task.End),
					bar.Task.Progress*100, bar.Task.Priority.Label(), bar.X, bar.Width)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if len(proj.Dependencies) > 0 {
				fmt.Fprintln(out, "\nDependencies:")
				for _, d := range proj.Dependencies {
					fmt.Fprintf(out, "  %s %s %s\n", taskName(proj, d.FromTask), d.Kind.ShortLabel(), taskName(proj, d.ToTask))
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "Only show tasks whose name or description contains this text")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "Only show tasks with this priority")
	cmd.Flags().Float64Var(&ppd, "pixels-per-day", 0, "Zoom level for the layout")
	return cmd
}

func (c *cli) addTaskCmd() *cobra.Command {
	var name, start, end, parent, priority string
	var milestone bool
	cmd := &cobra.Command{
		Use:   "add-task PROJECT_ID",
		Short: "Add a task to a project and save it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			startAt, err := codec.ParseDatetime("start", start)
			if err != nil {
				return err
			}
			var t task.Task
			if milestone {
				t = task.NewMilestone(name, startAt)
			} else {
				endAt, err := codec.ParseDatetime("end", end)
				if err != nil {
					return err
				}
				t = task.New(name, startAt, endAt)
			}
			if priority != "" {
				t.Priority = task.Priority(priority)
			}
			if parent != "" {
				parentID, err := uuid.Parse(parent)
				if err != nil {
					return fmt.Errorf("parent: %w", err)
				}
				t.SetParent(parentID)
			}

			sessions := c.app.Sessions
			sess, err := sessions.Open(ctx, c.tenantID, args[0])
			if err != nil {
				return err
			}
			defer sessions.Close(ctx, c.tenantID, sess.ID)

			added, err := sessions.AddTask(ctx, c.tenantID, sess.ID, t)
			if err != nil {
				return err
			}
			if err := sessions.Save(ctx, c.tenantID, sess.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %q as %s\n", added.Name, added.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Task name (required)")
	cmd.Flags().StringVarP(&start, "start", "s", "", "Start datetime (required)")
	cmd.Flags().StringVarP(&end, "end", "e", "", "End datetime, ignored for milestones")
	cmd.Flags().StringVar(&parent, "parent", "", "Parent task id")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "Priority: None, Low, Medium, High or Critical")
	cmd.Flags().BoolVarP(&milestone, "milestone", "m", false, "Create a milestone")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("start")
	return cmd
}

func (c *cli) activityCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "activity PROJECT_ID",
		Short: "Show a project's edit log, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := c.app.Activity.GetRecentActivity(cmd.Context(), c.tenantID, activity.ListActivityOptions{
				ProjectID: args[0],
				Limit:     limit,
			})
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\n", codec.FormatDatetime(e.CreatedAt), e.ActivityType, e.Summary)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", activity.DefaultListLimit, "Maximum entries")
	return cmd
}

func (c *cli) apikeyCmd() *cobra.Command {
	apikey := &cobra.Command{
		Use:   "apikey",
		Short: "Manage HTTP API keys",
	}
	var token, description string
	create := &cobra.Command{
		Use:   "create",
		Short: "Authorize a bearer token for the --tenant tenant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				token = uuid.NewString()
			}
			if err := c.app.APIKeys.Create(cmd.Context(), c.tenantID, token, description); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created API key for tenant %s: %s\n", c.tenantID, token)
			return nil
		},
	}
	create.Flags().StringVar(&token, "token", "", "Token to authorize (generated when omitted)")
	create.Flags().StringVarP(&description, "description", "d", "", "What the key is for")
	apikey.AddCommand(create)
	return apikey
}

func (c *cli) record(ctx context.Context, entry *activity.ActivityEntry) {
	if err := c.app.Activity.LogActivity(ctx, c.tenantID, entry); err != nil {
		fmt.Fprintf(os.Stderr, "warning: recording activity: %v\n", err)
	}
}

func taskName(p *project.Project, id uuid.UUID) string {
	if t, ok := p.Task(id); ok {
		return t.Name
	}
	return "?"
}

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tgienger/projecthub/internal/logging"
	"github.com/tgienger/projecthub/internal/repository"
)

func newProjectsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List your projects with dashboard totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			b, err := openBackend(ctx, app.cfg)
			if err != nil {
				return err
			}
			defer b.Close()

			session, u, err := restore(ctx, b, logging.Discard())
			if err != nil {
				return err
			}
			ctx = session.Context(ctx)

			projects, err := repository.NewProjects(b.client).List(ctx, u.ID)
			if err != nil {
				return err
			}
			stats, err := repository.LoadStats(ctx, b.client, u.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			bold := color.New(color.Bold)
			muted := color.New(color.Faint)

			bold.Fprintf(out, "Projects: %d", stats.Projects)
			fmt.Fprintf(out, "   Active tasks: %d   Notes: %d\n\n", stats.ActiveTasks, stats.Notes)
			if len(projects) == 0 {
				muted.Fprintln(out, "No projects yet")
				return nil
			}
			for _, p := range projects {
				color.New(color.FgCyan, color.Bold).Fprint(out, p.Title)
				muted.Fprintf(out, "  %s  created %s\n", p.ID, p.CreatedAt.Local().Format("Jan 2, 2006"))
				desc := p.Description
				if desc == "" {
					desc = "No description"
				}
				fmt.Fprintf(out, "  %s\n", desc)
			}
			return nil
		},
	}
}

func newExportCmd(app *App) *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "export <project-id>",
		Short: "Write a project with its tasks and notes as YAML or JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "yaml" && format != "json" {
				return fmt.Errorf("unknown format %q (want yaml or json)", format)
			}

			ctx := context.Background()
			b, err := openBackend(ctx, app.cfg)
			if err != nil {
				return err
			}
			defer b.Close()

			session, _, err := restore(ctx, b, logging.Discard())
			if err != nil {
				return err
			}

			export, err := repository.Export(session.Context(ctx), b.client, args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("creating %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}
			return writeExport(w, format, export)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "output format: yaml or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	return cmd
}

func writeExport(w io.Writer, format string, export repository.ProjectExport) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(export)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(export); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}

// Package cli is the projecthub command line: the TUI entry point, the
// reference data service, and a few scriptable commands over the same data.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tgienger/projecthub/internal/config"
)

// App carries what commands need from main.
type App struct {
	Version string
	Commit  string

	// IsInteractive reports whether stdin is a terminal. Nil means yes.
	IsInteractive func() bool

	// set by the root command before any subcommand runs
	cfg *config.Config
}

func (a *App) interactive() bool {
	return a.IsInteractive == nil || a.IsInteractive()
}

type rootFlags struct {
	configPath string
	serverURL  string
	dbPath     string
	logLevel   string
}

// NewRootCmd creates the top-level "projecthub" command. Without a
// subcommand it opens the TUI.
func NewRootCmd(app *App) *cobra.Command {
	var flags rootFlags

	root := &cobra.Command{
		Use:           "projecthub",
		Short:         "Projects, a kanban board and notes in your terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.loadConfig(cmd, flags)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return cmd.Help()
			}
			return runTUI(cmd.Context(), app)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/projecthub/config.json)")
	pf.StringVar(&flags.serverURL, "server", "", "data service URL; empty uses the embedded database")
	pf.StringVar(&flags.dbPath, "db", "", "embedded database file")
	pf.StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error")

	root.AddCommand(
		newTUICmd(app),
		newServeCmd(app),
		newLoginCmd(app),
		newLogoutCmd(app),
		newWhoamiCmd(app),
		newProjectsCmd(app),
		newExportCmd(app),
		newVersionCmd(app),
	)

	return root
}

// loadConfig applies flags on top of the file and environment.
func (a *App) loadConfig(cmd *cobra.Command, flags rootFlags) error {
	path := flags.configPath
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return fmt.Errorf("locating config: %w", err)
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	pf := cmd.Flags()
	if pf.Changed("server") {
		cfg.ServerURL = flags.serverURL
	}
	if pf.Changed("db") {
		cfg.DBPath = flags.dbPath
	}
	if pf.Changed("log-level") {
		cfg.LogLevel = flags.logLevel
	}
	a.cfg = cfg
	return nil
}

func newVersionCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			commit := app.Commit
			if commit == "" {
				commit = "none"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "projecthub %s (commit: %s)\n", app.Version, commit)
			return nil
		},
	}
}

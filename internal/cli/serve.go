package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tgienger/projecthub/internal/auth"
	"github.com/tgienger/projecthub/internal/config"
	"github.com/tgienger/projecthub/internal/db"
	"github.com/tgienger/projecthub/internal/fsstore"
	"github.com/tgienger/projecthub/internal/logging"
	"github.com/tgienger/projecthub/internal/rowstore"
	"github.com/tgienger/projecthub/internal/server"
)

// store is what the data service needs from a backend.
type store interface {
	rowstore.Client
	auth.AccountStore
	io.Closer
}

func newServeCmd(app *App) *cobra.Command {
	var addr, backendName string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reference data service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.cfg
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("backend") {
				cfg.Backend = backendName
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return errors.New("serve needs a token secret; set PROJECTHUB_JWT_SECRET")
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger := logging.New(cmd.ErrOrStderr(), logging.ParseLevel(cfg.LogLevel))

			st, err := openStore(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer st.Close()

			logger.Info("starting data service", "backend", cfg.Backend, "addr", cfg.Addr)
			srv := server.New(st, auth.NewAccounts(st, 0), auth.NewTokens(cfg.JWTSecret, 0), logger)
			return srv.Run(ctx, cfg.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&backendName, "backend", config.BackendSQLite, "row storage: sqlite or firestore")
	return cmd
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store, error) {
	switch cfg.Backend {
	case config.BackendFirestore:
		return fsstore.Connect(ctx, cfg.FirestoreProject, cfg.CredentialsFile, logger)
	case config.BackendSQLite:
		database, err := db.Open(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return database, nil
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

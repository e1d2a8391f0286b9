package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/tgienger/projecthub/internal/auth"
	"github.com/tgienger/projecthub/internal/logging"
)

func credentialsForm(email, password *string, signUp bool) *huh.Form {
	title := "Sign in to ProjectHub"
	if signUp {
		title = "Create your ProjectHub account"
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Value(email).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("email is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(password).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("password is required")
					}
					return nil
				}),
		).Title(title),
	).WithShowHelp(false)
}

func newLoginCmd(app *App) *cobra.Command {
	var email, password string
	var signUp bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in, or create an account with --signup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || password == "" {
				if !app.interactive() {
					return errors.New("--email and --password are required when not running in a terminal")
				}
				if err := credentialsForm(&email, &password, signUp).Run(); err != nil {
					return err
				}
			}

			ctx := context.Background()
			b, err := openBackend(ctx, app.cfg)
			if err != nil {
				return err
			}
			defer b.Close()

			session := auth.NewSession(b.provider, logging.Discard())
			if signUp {
				err = session.SignUp(ctx, email, password)
			} else {
				err = session.SignIn(ctx, email, password)
			}
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			u, _ := session.User()
			if signUp {
				fmt.Fprintf(cmd.OutOrStdout(), "Created account and signed in as %s\n", u.Email)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", u.Email)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().BoolVar(&signUp, "signup", false, "create a new account")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			b, err := openBackend(ctx, app.cfg)
			if err != nil {
				return err
			}
			defer b.Close()

			if err := auth.NewSession(b.provider, logging.Discard()).SignOut(ctx); err != nil {
				return fmt.Errorf("error during logout: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			b, err := openBackend(ctx, app.cfg)
			if err != nil {
				return err
			}
			defer b.Close()

			out := cmd.OutOrStdout()
			_, u, err := restore(ctx, b, logging.Discard())
			if errors.Is(err, errNotSignedIn) {
				fmt.Fprintln(out, "You are not signed in")
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Signed in as: %s\n", u.Email)
			fmt.Fprintf(out, "User ID: %s\n", u.ID)
			if app.cfg.Remote() {
				fmt.Fprintf(out, "Server: %s\n", app.cfg.ServerURL)
			} else {
				fmt.Fprintf(out, "Database: %s\n", app.cfg.DBPath)
			}
			return nil
		},
	}
}

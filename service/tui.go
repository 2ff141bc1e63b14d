package service

import (
	"errors"
	"io"
	"log"

	"bizdash/app/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newTUICommand(cfg configFunc) *cobra.Command {
	var email, password, logFile string
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive terminal dashboard",
		Long: `Open the interactive terminal dashboard. Log in with --email and --password,
or reuse the session left by a previous login.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(cmd.Context(), cfg())
			if err != nil {
				return err
			}
			defer app.Close()

			if err := signIn(app, email, password); err != nil {
				return err
			}

			// Log lines would tear the alt screen.
			prev := log.Writer()
			defer log.SetOutput(prev)
			if logFile != "" {
				f, err := tea.LogToFile(logFile, "bizdash")
				if err != nil {
					return err
				}
				defer f.Close()
			} else {
				log.SetOutput(io.Discard)
			}

			m := tui.NewModel(app.Dashboard, app.Store, app.Auth)
			defer m.Close()
			_, err = tea.NewProgram(m, tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	cmd.Flags().StringVar(&logFile, "log-file", "", "Write logs to this file while the dashboard runs")
	return cmd
}

// signIn logs in with the given credentials, or falls back to the persisted
// session when email is empty.
func signIn(app *App, email, password string) error {
	if email != "" {
		_, _, err := app.Auth.Login(email, password)
		return err
	}
	ok, err := app.Auth.Restore()
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("no active session: pass --email and --password")
	}
	return nil
}

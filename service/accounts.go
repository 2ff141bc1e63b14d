package service

import (
	"bizdash/app/session"
	"bizdash/output"

	"github.com/spf13/cobra"
)

func newAccountsCommand(cfg configFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List local accounts and the available roles",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(cmd.Context(), cfg())
			if err != nil {
				return err
			}
			defer app.Close()

			output.Section("Accounts")
			current, loggedIn := app.Sessions.Current()
			for _, acc := range app.Auth.Accounts() {
				marker := " "
				if loggedIn && acc.ID == current.ID {
					marker = "*"
				}
				output.Info("%s %-4d %-28s %-10s %s", marker, acc.ID, acc.Email, acc.Role, acc.Name)
			}

			output.Section("Roles")
			for _, r := range session.Roles() {
				output.Primary("%s (%s)", r.Name, r.Role)
				output.Muted("  %v", r.Permissions)
			}
			return nil
		},
	}
}

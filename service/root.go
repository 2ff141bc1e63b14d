// Package service is the bizdash command line: the API server, the terminal
// dashboard and badger maintenance commands.
package service

import (
	"fmt"
	"os"
	"strings"

	"bizdash/config"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

// flags overriding the environment
type globalFlags struct {
	storage string
	dataDir string
	apiURL  string
}

// configFunc returns the configuration resolved before a command runs.
type configFunc func() config.Config

// NewRootCommand builds the bizdash command tree. Configuration comes from
// DASH_* env vars, with the persistent flags taking precedence.
func NewRootCommand() *cobra.Command {
	var (
		flags globalFlags
		cfg   config.Config
	)

	root := &cobra.Command{
		Use:   "bizdash",
		Short: "Business operations dashboard",
		Long: `bizdash serves the business dashboard API and an interactive terminal
dashboard over posts, users and comments fetched from a JSONPlaceholder style API.

Accounts and the active session are persisted in badger (default), PostgreSQL
or memory, selected with DASH_STORAGE or --storage.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			cfg = flags.apply(cmd, loaded)
			return cfg.Validate()
		},
	}

	root.PersistentFlags().StringVar(&flags.storage, "storage", "", "Storage backend: badger, postgres or memory")
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "Directory holding the badger database")
	root.PersistentFlags().StringVar(&flags.apiURL, "api-url", "", "Base URL of the remote data API")

	current := configFunc(func() config.Config { return cfg })
	root.AddCommand(
		newServeCommand(current),
		newTUICommand(current),
		newReportCommand(current),
		newAccountsCommand(current),
		newInitCommand(current),
		newCleanCommand(current),
		newBackupCommand(current),
		newRestoreCommand(current),
		newVersionCommand(),
	)
	return root
}

func (f globalFlags) apply(cmd *cobra.Command, cfg config.Config) config.Config {
	pf := cmd.Flags()
	if pf.Changed("storage") {
		cfg.Storage = strings.ToLower(f.storage)
	}
	if pf.Changed("data-dir") {
		cfg.BadgerDir = f.dataDir
	}
	if pf.Changed("api-url") {
		cfg.APIBaseURL = f.apiURL
	}
	return cfg
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "version",
		Short:             "Show version information",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "bizdash version %s\n", version)
		},
	}
}

// Execute runs the root command
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

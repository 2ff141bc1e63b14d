package service

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bizdash/app/repositories"
	"bizdash/config"
	"bizdash/output"

	"github.com/spf13/cobra"
)

// errCancelled is returned when the user declines a destructive operation.
var errCancelled = errors.New("operation cancelled")

func requireBadger(cfg config.Config) error {
	if cfg.Storage != config.StorageBadger {
		return fmt.Errorf("this command needs badger storage, not %s", cfg.Storage)
	}
	return nil
}

func newInitCommand(cfg configFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a new empty database",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cfg()
			if err := requireBadger(c); err != nil {
				return err
			}
			return initDB(badgerPath(c))
		},
	}
}

func newCleanCommand(cfg configFunc) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Delete the database, including accounts and the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cfg()
			if err := requireBadger(c); err != nil {
				return err
			}
			return cleanDB(badgerPath(c), cmd.InOrStdin(), yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newBackupCommand(cfg configFunc) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Create a backup of the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cfg()
			if err := requireBadger(c); err != nil {
				return err
			}
			if dir == "" {
				dir = filepath.Join(c.BadgerDir, "backups")
			}
			_, err := backupDB(badgerPath(c), dir, time.Now())
			return err
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Directory for backup files (default <data-dir>/backups)")
	return cmd
}

func newRestoreCommand(cfg configFunc) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "restore <file>",
		Short: "Restore the database from a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cfg()
			if err := requireBadger(c); err != nil {
				return err
			}
			return restoreDB(badgerPath(c), args[0], cmd.InOrStdin(), yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Replace an existing database without asking")
	return cmd
}

func confirm(in io.Reader, prompt string) bool {
	fmt.Fprintf(output.Writer, "%s [y/N] ", prompt)
	line, _ := bufio.NewReader(in).ReadString('\n')
	answer := strings.TrimSpace(line)
	return answer == "y" || answer == "Y"
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// initDB creates an empty database at path.
func initDB(path string) error {
	if exists(path) {
		output.Warning("Database already exists. Use 'clean' first if you want to reinitialize.")
		return nil
	}
	kv, err := repositories.OpenBadgerKV(path)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	if err := kv.Close(); err != nil {
		return err
	}
	output.Success("Database initialized at %s", path)
	return nil
}

// cleanDB removes the database at path after confirmation.
func cleanDB(path string, in io.Reader, yes bool) error {
	if !exists(path) {
		output.Info("Database is already clean (does not exist)")
		return nil
	}
	if !yes && !confirm(in, "Are you sure you want to clean the database? This cannot be undone.") {
		return errCancelled
	}
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("clean database: %w", err)
	}
	output.Success("Database cleaned successfully")
	return nil
}

// backupDB writes a full badger backup into dir and returns the file name.
func backupDB(path, dir string, now time.Time) (string, error) {
	if !exists(path) {
		return "", errors.New("no database exists to backup")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}

	kv, err := repositories.OpenBadgerKV(path)
	if err != nil {
		return "", err
	}
	defer kv.Close()

	file := filepath.Join(dir, fmt.Sprintf("backup_%d.db", now.Unix()))
	f, err := os.Create(file)
	if err != nil {
		return "", fmt.Errorf("create backup file: %w", err)
	}
	defer f.Close()

	if _, err := kv.DB().Backup(f, 0); err != nil {
		return "", fmt.Errorf("backup database: %w", err)
	}
	output.Success("Database backed up to %s", file)
	return file, nil
}

// restoreDB replaces the database at path with the contents of file.
func restoreDB(path, file string, in io.Reader, yes bool) (err error) {
	fi, err := os.Stat(file)
	if err != nil {
		return fmt.Errorf("backup file does not exist: %s", file)
	}
	if fi.Size() == 0 {
		return fmt.Errorf("backup file is empty: %s", file)
	}

	if exists(path) {
		if !yes && !confirm(in, "Existing database found. Do you want to replace it?") {
			return errCancelled
		}
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("remove existing database: %w", err)
		}
	}

	kv, err := repositories.OpenBadgerKV(path)
	if err != nil {
		return err
	}
	defer kv.Close()

	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("open backup file: %w", err)
	}
	defer f.Close()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("restore database: %v", r)
		}
	}()
	if err := kv.DB().Load(f, 4); err != nil {
		return fmt.Errorf("restore database: %w", err)
	}
	output.Success("Database restored successfully")
	return nil
}

/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"

	"github.com/dailyyield/apiserver/config"
	"github.com/dailyyield/apiserver/internal/db"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"
)

var (
	migrationsURL   string
	migrateDownStep int
)

// migrateCmd represents the migrate command.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all up migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		migrator, err := newMigrator(config.LoadConfig())
		if err != nil {
			return err
		}
		defer func() {
			_, _ = migrator.Close()
		}()

		if err := migrator.Up(); err != nil {
			if errors.Is(err, migrate.ErrNoChange) {
				return nil
			}
			return fmt.Errorf("migrate up failed: %w", err)
		}
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations (one step by default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if migrateDownStep < 1 {
			return errors.New("--steps must be at least 1")
		}
		migrator, err := newMigrator(config.LoadConfig())
		if err != nil {
			return err
		}
		defer func() {
			_, _ = migrator.Close()
		}()

		if err := migrator.Steps(-migrateDownStep); err != nil {
			if errors.Is(err, migrate.ErrNoChange) {
				return nil
			}
			return fmt.Errorf("migrate down failed: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)

	migrateCmd.PersistentFlags().StringVar(&migrationsURL, "path", "file://internal/db/migrations", "migrations source URL")
	migrateDownCmd.Flags().IntVar(&migrateDownStep, "steps", 1, "number of migrations to roll back")
}

func newMigrator(cfg config.Config) (*migrate.Migrate, error) {
	migrator, err := migrate.New(migrationsURL, db.DSN(cfg.Database))
	if err != nil {
		return nil, fmt.Errorf("init migrator failed: %w", err)
	}
	return migrator, nil
}

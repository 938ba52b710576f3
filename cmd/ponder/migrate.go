package main

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/ponder/internal/cli"
	"github.com/Veraticus/ponder/internal/config"
	"github.com/Veraticus/ponder/internal/storage"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

This command ensures your database has the tables and indexes ponder
needs. The hosted backend manages its own schema.`,
		RunE: runMigrate,
	}

	cmd.Flags().Bool("status", false, "Show current migration status without applying changes")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	status, _ := cmd.Flags().GetBool("status")
	out := cmd.OutOrStdout()

	storeCfg, err := config.LoadStore()
	if err != nil {
		return err
	}

	slog.Info("Starting database migration", "backend", storeCfg.Backend, "status_only", status)

	if storeCfg.Backend == config.BackendSQLite {
		store, err := storage.NewSQLiteStorage(storeCfg.SQLitePath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer func() { _ = store.Close() }()

		current, err := store.SchemaVersion(ctx)
		if err != nil {
			return err
		}
		if status {
			fmt.Fprintln(out, cli.RenderBox("Database Migration Status", fmt.Sprintf(
				"Database: %s\nCurrent version: %d\nLatest version:  %d",
				store.Path(), current, storage.ExpectedSchemaVersion)))
			return nil
		}

		if err := store.Migrate(ctx); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Database at schema version %d (was %d)",
			storage.ExpectedSchemaVersion, current)))
		return nil
	}

	if status {
		fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("The %s backend does not track schema versions", storeCfg.Backend)))
		return nil
	}

	sessions, err := initSessions(storeCfg.Backend)
	if err != nil {
		return err
	}
	store, err := initStorage(ctx, storeCfg, sessions)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	defer func() { _ = store.Close() }()

	fmt.Fprintln(out, cli.FormatSuccess("Database migrations completed successfully"))
	return nil
}

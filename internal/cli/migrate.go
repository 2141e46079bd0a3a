package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/bayesab/internal/adapters/turso"
	"github.com/emiliopalmerini/bayesab/internal/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the readout database schema",
	Long: `Manage the readout database schema.

Migrations also run automatically whenever the database is opened.

Examples:
  bayesab migrate up        # Apply all pending migrations
  bayesab migrate down      # Roll back the latest migration
  bayesab migrate to 0      # Roll back everything
  bayesab migrate status    # Show the current version`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: withRawDB(func(ctx context.Context, out io.Writer, db *turso.DB, args []string) error {
		if err := migrate.RunAll(ctx, db.DB); err != nil {
			return err
		}
		return writeMigrationStatus(ctx, out, db)
	}),
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the latest migration",
	Args:  cobra.NoArgs,
	RunE: withRawDB(func(ctx context.Context, out io.Writer, db *turso.DB, args []string) error {
		if err := migrate.EnsureMigrationsTable(ctx, db.DB); err != nil {
			return err
		}
		current, _, err := migrate.CurrentVersion(ctx, db.DB)
		if err != nil {
			return err
		}
		if current == 0 {
			fmt.Fprintln(out, "Nothing to roll back")
			return nil
		}
		if err := migrate.To(ctx, db.DB, current-1); err != nil {
			return err
		}
		return writeMigrationStatus(ctx, out, db)
	}),
}

var migrateToCmd = &cobra.Command{
	Use:   "to <version>",
	Short: "Migrate up or down to a specific version",
	Args:  cobra.ExactArgs(1),
	RunE: withRawDB(func(ctx context.Context, out io.Writer, db *turso.DB, args []string) error {
		target, err := strconv.Atoi(args[0])
		if err != nil || target < 0 {
			return fmt.Errorf("invalid version number: %s", args[0])
		}
		if err := migrate.To(ctx, db.DB, target); err != nil {
			return err
		}
		return writeMigrationStatus(ctx, out, db)
	}),
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show applied and pending migrations",
	Args:  cobra.NoArgs,
	RunE: withRawDB(func(ctx context.Context, out io.Writer, db *turso.DB, args []string) error {
		return writeMigrationStatus(ctx, out, db)
	}),
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateToCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
}

// withRawDB opens the database without applying migrations.
func withRawDB(fn func(ctx context.Context, out io.Writer, db *turso.DB, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if cfg.Database.Disabled {
			return fmt.Errorf("database is disabled in the configuration")
		}
		db, err := turso.Open(ctx, cfg.Database.URL, cfg.Database.AuthToken)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		return fn(ctx, cmd.OutOrStdout(), db, args)
	}
}

func writeMigrationStatus(ctx context.Context, out io.Writer, db *turso.DB) error {
	if err := migrate.EnsureMigrationsTable(ctx, db.DB); err != nil {
		return err
	}
	current, dirty, err := migrate.CurrentVersion(ctx, db.DB)
	if err != nil {
		return err
	}
	all, err := migrate.Load()
	if err != nil {
		return err
	}

	state := ""
	if dirty {
		state = " (dirty)"
	}
	fmt.Fprintf(out, "Current version: %d%s\n", current, state)
	for _, m := range all {
		mark := "pending"
		if m.Version <= current {
			mark = "applied"
		}
		fmt.Fprintf(out, "  %03d_%s\t%s\n", m.Version, m.Name, mark)
	}
	return nil
}

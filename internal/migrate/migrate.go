package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/emiliopalmerini/bayesab/migrations"
)

// Migration is a single schema change with its up and down SQL.
type Migration struct {
	Version int
	Name    string
	UpSQL   string
	DownSQL string
}

var upPattern = regexp.MustCompile(`^(\d+)_(.+)\.up\.sql$`)

// EnsureMigrationsTable creates the schema_migrations table if it doesn't exist.
func EnsureMigrationsTable(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			dirty INTEGER NOT NULL DEFAULT 0
		)
	`)
	return err
}

// CurrentVersion returns the applied version and whether the last run failed midway.
func CurrentVersion(ctx context.Context, db *sql.DB) (int, bool, error) {
	var version, dirty int
	err := db.QueryRowContext(ctx, `SELECT version, dirty FROM schema_migrations ORDER BY version DESC LIMIT 1`).Scan(&version, &dirty)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return version, dirty == 1, nil
}

func setVersion(ctx context.Context, db *sql.DB, version int, dirty bool) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM schema_migrations`); err != nil {
		return err
	}
	if version == 0 {
		return nil
	}
	d := 0
	if dirty {
		d = 1
	}
	_, err := db.ExecContext(ctx, `INSERT INTO schema_migrations (version, dirty) VALUES (?, ?)`, version, d)
	return err
}

// Load reads the embedded migration files sorted by version.
func Load() ([]Migration, error) {
	return loadFrom(migrations.FS)
}

func loadFrom(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}

	var result []Migration
	for _, e := range entries {
		m := upPattern.FindStringSubmatch(e.Name())
		if e.IsDir() || m == nil {
			continue
		}
		version, _ := strconv.Atoi(m[1])

		up, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", e.Name(), err)
		}
		// A missing down file just means the migration can't be rolled back.
		down, _ := fs.ReadFile(fsys, fmt.Sprintf("%s_%s.down.sql", m[1], m[2]))

		result = append(result, Migration{
			Version: version,
			Name:    m[2],
			UpSQL:   string(up),
			DownSQL: string(down),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Version < result[j].Version
	})
	return result, nil
}

func run(ctx context.Context, db *sql.DB, m Migration, up bool) error {
	direction, body, target := "up", m.UpSQL, m.Version
	if !up {
		direction, body, target = "down", m.DownSQL, m.Version-1
	}
	zap.L().Info("applying migration",
		zap.Int("version", m.Version),
		zap.String("name", m.Name),
		zap.String("direction", direction),
	)

	if err := setVersion(ctx, db, m.Version, true); err != nil {
		return fmt.Errorf("failed to set dirty flag: %w", err)
	}
	for _, stmt := range strings.Split(body, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d %s: %w", m.Version, direction, err)
		}
	}
	if err := setVersion(ctx, db, target, false); err != nil {
		return fmt.Errorf("failed to clear dirty flag: %w", err)
	}
	return nil
}

func prepare(ctx context.Context, db *sql.DB) (int, []Migration, error) {
	if err := EnsureMigrationsTable(ctx, db); err != nil {
		return 0, nil, fmt.Errorf("failed to create migrations table: %w", err)
	}
	current, dirty, err := CurrentVersion(ctx, db)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to get current version: %w", err)
	}
	if dirty {
		return 0, nil, fmt.Errorf("database is in dirty state at version %d", current)
	}
	all, err := Load()
	if err != nil {
		return 0, nil, fmt.Errorf("failed to load migrations: %w", err)
	}
	return current, all, nil
}

// RunAll applies every pending migration.
func RunAll(ctx context.Context, db *sql.DB) error {
	current, all, err := prepare(ctx, db)
	if err != nil {
		return err
	}
	for _, m := range all {
		if m.Version <= current {
			continue
		}
		if err := run(ctx, db, m, true); err != nil {
			return err
		}
	}
	return nil
}

// To migrates up or down until the schema is at target.
func To(ctx context.Context, db *sql.DB, target int) error {
	current, all, err := prepare(ctx, db)
	if err != nil {
		return err
	}

	if target >= current {
		for _, m := range all {
			if m.Version <= current || m.Version > target {
				continue
			}
			if err := run(ctx, db, m, true); err != nil {
				return err
			}
		}
		return nil
	}

	for i := len(all) - 1; i >= 0; i-- {
		m := all[i]
		if m.Version > current || m.Version <= target {
			continue
		}
		if m.DownSQL == "" {
			return fmt.Errorf("no down migration for version %d", m.Version)
		}
		if err := run(ctx, db, m, false); err != nil {
			return err
		}
	}
	return nil
}

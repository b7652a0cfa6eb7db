package shared

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
)

//go:embed sql/*.sql
var migrationFiles embed.FS

// Migration represents a database migration with up and down SQL.
//
// Version N moves the schema from user_version N-1 to N.
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// Migrations returns the embedded migrations sorted by version.
func Migrations() ([]Migration, error) {
	return loadMigrations()
}

// loadMigrations reads all migration files from the embedded filesystem and returns them sorted by version.
//
// Versions must run contiguously from 1 so that user_version always names the
// last applied migration.
func loadMigrations() ([]Migration, error) {
	entries, err := migrationFiles.ReadDir("sql")
	if err != nil {
		return nil, fmt.Errorf("failed to read migration directory: %w", err)
	}

	migrationMap := make(map[int]*Migration)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !strings.HasSuffix(name, ".sql") {
			continue
		}

		// "0003_add_sets_creator_up.sql" -> version 3
		parts := strings.Split(name, "_")
		if len(parts) < 2 {
			continue
		}

		version, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}

		content, err := migrationFiles.ReadFile(path.Join("sql", name))
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", name, err)
		}

		if migrationMap[version] == nil {
			migrationMap[version] = &Migration{Version: version}
		}

		switch {
		case strings.HasSuffix(name, "_up.sql"):
			migrationMap[version].Up = string(content)
			migrationMap[version].Name = strings.TrimSuffix(strings.Join(parts[1:], "_"), "_up.sql")
		case strings.HasSuffix(name, "_down.sql"):
			migrationMap[version].Down = string(content)
		}
	}

	var migrations []Migration
	for _, migration := range migrationMap {
		if migration.Up == "" || migration.Down == "" {
			return nil, fmt.Errorf("incomplete migration for version %d", migration.Version)
		}
		migrations = append(migrations, *migration)
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	for i, migration := range migrations {
		if migration.Version != i+1 {
			return nil, fmt.Errorf("migration versions must be contiguous from 1: found %d at position %d", migration.Version, i+1)
		}
	}

	return migrations, nil
}

// SchemaVersion reads the schema version stored in the database header.
// A freshly created database reports 0.
func SchemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("%w: failed to read schema version: %v", ErrStore, err)
	}
	return version, nil
}

// RunMigrations executes all pending migrations on the database and returns the resulting version.
func RunMigrations(ctx context.Context, db *sql.DB) (int, error) {
	migrations, err := loadMigrations()
	if err != nil {
		return 0, fmt.Errorf("%w: failed to load migrations: %v", ErrStore, err)
	}
	return runMigrations(ctx, db, migrations)
}

// runMigrations applies every migration beyond the stored version, in order,
// each in its own transaction. A failure leaves the store at the last
// successfully applied version.
func runMigrations(ctx context.Context, db *sql.DB, migrations []Migration) (int, error) {
	current, err := SchemaVersion(ctx, db)
	if err != nil {
		return 0, err
	}

	if current > len(migrations) {
		return current, fmt.Errorf("%w: database is at version %d but only %d migrations are known", ErrStore, current, len(migrations))
	}

	for _, migration := range migrations[current:] {
		if err := applyMigration(ctx, db, migration); err != nil {
			return current, fmt.Errorf("%w: failed to apply migration %d (%s): %v", ErrStore, migration.Version, migration.Name, err)
		}
		current = migration.Version
	}

	return current, nil
}

// RollbackMigration rolls back the most recent migration and returns the resulting version.
func RollbackMigration(ctx context.Context, db *sql.DB) (int, error) {
	migrations, err := loadMigrations()
	if err != nil {
		return 0, fmt.Errorf("%w: failed to load migrations: %v", ErrStore, err)
	}

	current, err := SchemaVersion(ctx, db)
	if err != nil {
		return 0, err
	}

	if current == 0 {
		return 0, fmt.Errorf("%w: no migrations to rollback", ErrStore)
	}

	if current > len(migrations) {
		return current, fmt.Errorf("%w: migration version %d not found", ErrStore, current)
	}

	migration := migrations[current-1]
	if err := rollbackMigration(ctx, db, migration); err != nil {
		return current, fmt.Errorf("%w: failed to rollback migration %d (%s): %v", ErrStore, migration.Version, migration.Name, err)
	}

	return current - 1, nil
}

// applyMigration executes a migration's up SQL and advances user_version in the same transaction.
func applyMigration(ctx context.Context, db *sql.DB, migration Migration) error {
	return execVersioned(ctx, db, migration.Up, migration.Version)
}

// rollbackMigration executes a migration's down SQL and steps user_version back by one.
func rollbackMigration(ctx context.Context, db *sql.DB, migration Migration) error {
	return execVersioned(ctx, db, migration.Down, migration.Version-1)
}

func execVersioned(ctx context.Context, db *sql.DB, script string, version int) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range splitStatements(script) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute statement: %w\nStatement: %s", err, stmt)
		}
	}

	// PRAGMA arguments cannot be bound.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
		return fmt.Errorf("failed to set schema version: %w", err)
	}

	return tx.Commit()
}

func splitStatements(script string) []string {
	var statements []string
	for _, stmt := range strings.Split(script, ";") {
		stmt = strings.TrimSpace(removeComments(stmt))
		if stmt != "" {
			statements = append(statements, stmt)
		}
	}
	return statements
}

// removeComments removes SQL comments from a statement.
func removeComments(sql string) string {
	lines := strings.Split(sql, "\n")
	var result []string
	for _, line := range lines {
		if idx := strings.Index(line, "--"); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line != "" {
			result = append(result, line)
		}
	}
	return strings.Join(result, "\n")
}

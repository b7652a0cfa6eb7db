package shared

import (
	"context"
	"errors"
	"testing"
)

func TestMigrationRunner(t *testing.T) {
	ctx := context.Background()

	t.Run("loadMigrations", func(t *testing.T) {
		migrations, err := loadMigrations()
		if err != nil {
			t.Fatalf("failed to load migrations: %v", err)
		}

		if len(migrations) == 0 {
			t.Fatal("expected at least one migration")
		}

		for i, m := range migrations {
			if m.Version != i+1 {
				t.Errorf("expected version %d at position %d, got %d", i+1, i, m.Version)
			}
			if m.Up == "" {
				t.Errorf("migration version %d missing up SQL", m.Version)
			}
			if m.Down == "" {
				t.Errorf("migration version %d missing down SQL", m.Version)
			}
			if m.Name == "" {
				t.Errorf("migration version %d missing name", m.Version)
			}
		}
	})

	t.Run("Fresh Database Is Version Zero", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		version, err := SchemaVersion(ctx, db)
		if err != nil {
			t.Fatalf("failed to read version: %v", err)
		}
		if version != 0 {
			t.Errorf("expected version 0, got %d", version)
		}
	})

	t.Run("Applying 1..N Yields N", func(t *testing.T) {
		migrations, err := loadMigrations()
		if err != nil {
			t.Fatalf("failed to load migrations: %v", err)
		}

		for n := 1; n <= len(migrations); n++ {
			db, err := NewDatabase(":memory:")
			if err != nil {
				t.Fatalf("failed to create database: %v", err)
			}

			version, err := runMigrations(ctx, db, migrations[:n])
			if err != nil {
				db.Close()
				t.Fatalf("failed to run %d migrations: %v", n, err)
			}
			if version != n {
				t.Errorf("expected returned version %d, got %d", n, version)
			}

			stored, err := SchemaVersion(ctx, db)
			if err != nil {
				db.Close()
				t.Fatalf("failed to read version: %v", err)
			}
			if stored != n {
				t.Errorf("expected stored version %d, got %d", n, stored)
			}
			db.Close()
		}
	})

	t.Run("Stepwise Upgrade Matches Single Run", func(t *testing.T) {
		migrations, err := loadMigrations()
		if err != nil {
			t.Fatalf("failed to load migrations: %v", err)
		}

		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if _, err := runMigrations(ctx, db, migrations[:2]); err != nil {
			t.Fatalf("failed to run first migrations: %v", err)
		}
		if _, err := db.Exec("INSERT INTO sets (url, cover_url, publish_date, updated_date) VALUES ('https://m/a/', 'c', '2020-01-01 00:00:00', '2020-01-01 00:00:00')"); err != nil {
			t.Fatalf("failed to insert into earlier shape: %v", err)
		}

		version, err := runMigrations(ctx, db, migrations)
		if err != nil {
			t.Fatalf("failed to finish migrations: %v", err)
		}
		if version != len(migrations) {
			t.Errorf("expected version %d, got %d", len(migrations), version)
		}

		var url string
		var creatorID *int64
		if err := db.QueryRow("SELECT url, creator_id FROM sets").Scan(&url, &creatorID); err != nil {
			t.Fatalf("failed to read migrated row: %v", err)
		}
		if url != "https://m/a/" {
			t.Errorf("expected row to survive upgrade, got %q", url)
		}
		if creatorID != nil {
			t.Errorf("expected creator_id to be NULL for pre-existing rows, got %d", *creatorID)
		}
	})

	t.Run("RunMigrations And Rollback", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		version, err := RunMigrations(ctx, db)
		if err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
		if version == 0 {
			t.Error("expected at least one migration to be applied")
		}

		if _, err := db.Exec("SELECT 1 FROM sets LIMIT 1"); err != nil {
			t.Errorf("sets table should exist after migrations: %v", err)
		}

		for want := version - 1; want >= 0; want-- {
			got, err := RollbackMigration(ctx, db)
			if err != nil {
				t.Fatalf("failed to rollback to %d: %v", want, err)
			}
			if got != want {
				t.Errorf("expected version %d after rollback, got %d", want, got)
			}
		}

		if _, err := db.Exec("SELECT 1 FROM creators LIMIT 1"); err == nil {
			t.Error("creators table should not exist after rolling everything back")
		}

		if _, err := RollbackMigration(ctx, db); err == nil {
			t.Error("expected error rolling back an empty database")
		}
	})

	t.Run("Idempotent Migrations", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		first, err := RunMigrations(ctx, db)
		if err != nil {
			t.Fatalf("failed to run migrations first time: %v", err)
		}

		second, err := RunMigrations(ctx, db)
		if err != nil {
			t.Fatalf("failed to run migrations second time: %v", err)
		}

		if first != second {
			t.Errorf("expected rerun to be a no-op, version moved from %d to %d", first, second)
		}

		migrations, _ := loadMigrations()
		if second != len(migrations) {
			t.Errorf("expected %d migrations to be applied, got %d", len(migrations), second)
		}
	})

	t.Run("Failed Migration Leaves Previous Version", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		migrations := []Migration{
			{Version: 1, Name: "good", Up: "CREATE TABLE a (id INTEGER)", Down: "DROP TABLE a"},
			{Version: 2, Name: "bad", Up: "CREATE TABLE b (id INTEGER); INSERT INTO missing VALUES (1)", Down: "DROP TABLE b"},
		}

		version, err := runMigrations(ctx, db, migrations)
		if err == nil {
			t.Fatal("expected failing migration to return an error")
		}
		if !errors.Is(err, ErrStore) {
			t.Errorf("expected ErrStore, got %v", err)
		}
		if version != 1 {
			t.Errorf("expected version 1 to be reported, got %d", version)
		}

		stored, err := SchemaVersion(ctx, db)
		if err != nil {
			t.Fatalf("failed to read version: %v", err)
		}
		if stored != 1 {
			t.Errorf("expected stored version 1, got %d", stored)
		}

		if _, err := db.Exec("SELECT 1 FROM b"); err == nil {
			t.Error("table from the failed migration should have been rolled back")
		}

		migrations[1].Up = "CREATE TABLE b (id INTEGER)"
		version, err = runMigrations(ctx, db, migrations)
		if err != nil {
			t.Fatalf("expected retry to succeed: %v", err)
		}
		if version != 2 {
			t.Errorf("expected version 2 after retry, got %d", version)
		}
	})

	t.Run("Unknown Future Version", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if _, err := db.Exec("PRAGMA user_version = 99"); err != nil {
			t.Fatalf("failed to set version: %v", err)
		}

		if _, err := RunMigrations(ctx, db); err == nil {
			t.Error("expected error for a database ahead of the known migrations")
		}
	})
}

func TestSplitStatements(t *testing.T) {
	script := `
-- leading comment
CREATE TABLE a (id INTEGER);

-- another
CREATE INDEX idx_a ON a(id);
`
	got := splitStatements(script)
	if len(got) != 2 {
		t.Fatalf("expected 2 statements, got %d: %v", len(got), got)
	}
	if got[0] != "CREATE TABLE a (id INTEGER)" {
		t.Errorf("unexpected first statement %q", got[0])
	}
	if got[1] != "CREATE INDEX idx_a ON a(id)" {
		t.Errorf("unexpected second statement %q", got[1])
	}
}

package database

import (
	"context"
	"path/filepath"
	"testing"
)

func TestOpenAndMigrate(t *testing.T) {
	ctx := context.Background()
	db, err := Open(filepath.Join(t.TempDir(), "nested", "sidesales.db"))
	if err != nil {
		t.Fatalf("Open() returned unexpected error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	t.Run("foreign keys are enforced", func(t *testing.T) {
		var enabled int
		if err := db.QueryRow("PRAGMA foreign_keys").Scan(&enabled); err != nil {
			t.Fatalf("Failed to read pragma: %v", err)
		}
		if enabled != 1 {
			t.Errorf("Expected foreign_keys=1, got %d", enabled)
		}
	})

	t.Run("fresh database needs migration", func(t *testing.T) {
		current, latest, err := Versions(ctx, db)
		if err != nil {
			t.Fatalf("Versions() returned unexpected error: %v", err)
		}
		if current != 0 || latest < 1 {
			t.Errorf("Expected current 0 and latest >= 1, got %d and %d", current, latest)
		}
	})

	t.Run("migrate applies pending migrations once", func(t *testing.T) {
		applied, err := Migrate(ctx, db)
		if err != nil {
			t.Fatalf("Migrate() returned unexpected error: %v", err)
		}
		if applied == 0 {
			t.Error("Expected at least one migration to run")
		}

		again, err := Migrate(ctx, db)
		if err != nil {
			t.Fatalf("second Migrate() returned unexpected error: %v", err)
		}
		if again != 0 {
			t.Errorf("Expected no migrations on second run, got %d", again)
		}

		current, latest, _ := Versions(ctx, db)
		if current != latest {
			t.Errorf("Expected schema at latest version %d, got %d", latest, current)
		}
	})

	t.Run("health check succeeds", func(t *testing.T) {
		if err := HealthCheck(db); err != nil {
			t.Errorf("HealthCheck() returned unexpected error: %v", err)
		}
	})
}

package storage

import (
	"database/sql"
	"path/filepath"
	"testing"
)

func TestMigrateRoundTripCompatibility(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate-roundtrip.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("first migrate up failed: %v", err)
	}

	if err := MigrateDown(db); err != nil {
		t.Fatalf("migrate down failed: %v", err)
	}

	if err := MigrateUp(db); err != nil {
		t.Fatalf("second migrate up failed: %v", err)
	}

	docs, err := NewSQLiteDocuments(db)
	if err != nil {
		t.Fatalf("new documents: %v", err)
	}

	if err := docs.Put(t.Context(), KeyTasks, []byte(`[]`)); err != nil {
		t.Fatalf("insert after roundtrip failed: %v", err)
	}

	got, err := docs.Get(t.Context(), KeyTasks)
	if err != nil {
		t.Fatalf("get after roundtrip failed: %v", err)
	}
	if string(got.Body) != "[]" {
		t.Fatalf("unexpected body after roundtrip: %q", got.Body)
	}
}

func TestMigrateUpIsIdempotent(t *testing.T) {
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "twice.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	for i := 0; i < 2; i++ {
		if err := MigrateUp(db); err != nil {
			t.Fatalf("migrate up #%d failed: %v", i+1, err)
		}
	}
}

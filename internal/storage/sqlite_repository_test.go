package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
)

func setupDocs(t *testing.T) *SQLiteDocuments {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "taskline-test.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := MigrateUp(db); err != nil {
		t.Fatalf("migrate up: %v", err)
	}

	docs, err := NewSQLiteDocuments(db)
	if err != nil {
		t.Fatalf("new documents: %v", err)
	}
	return docs
}

func runDocumentContract(t *testing.T, docs Documents) {
	t.Helper()
	ctx := context.Background()

	if _, err := docs.Get(ctx, KeyTasks); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing key, got: %v", err)
	}

	if err := docs.Put(ctx, KeyTasks, []byte(`[{"id":"a"}]`)); err != nil {
		t.Fatalf("put tasks: %v", err)
	}
	got, err := docs.Get(ctx, KeyTasks)
	if err != nil {
		t.Fatalf("get tasks: %v", err)
	}
	if string(got.Body) != `[{"id":"a"}]` || got.UpdatedAt.IsZero() {
		t.Fatalf("unexpected document: %#v", got)
	}

	if err := docs.Put(ctx, KeyTasks, []byte(`[]`)); err != nil {
		t.Fatalf("overwrite tasks: %v", err)
	}
	got, err = docs.Get(ctx, KeyTasks)
	if err != nil || string(got.Body) != `[]` {
		t.Fatalf("expected overwritten body, got %q err=%v", got.Body, err)
	}

	for _, key := range []string{CanvasKey("t2"), CanvasKey("t1"), CollapsedKey("gaps")} {
		if err := docs.Put(ctx, key, []byte(`{}`)); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	keys, err := docs.Keys(ctx, "canvas:")
	if err != nil {
		t.Fatalf("list keys: %v", err)
	}
	if len(keys) != 2 || keys[0] != "canvas:t1" || keys[1] != "canvas:t2" {
		t.Fatalf("unexpected canvas keys: %v", keys)
	}
	all, err := docs.Keys(ctx, "")
	if err != nil || len(all) != 4 {
		t.Fatalf("expected 4 keys, got %v err=%v", all, err)
	}

	if err := docs.Delete(ctx, CanvasKey("t1")); err != nil {
		t.Fatalf("delete canvas: %v", err)
	}
	if err := docs.Delete(ctx, CanvasKey("t1")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got: %v", err)
	}
	if err := docs.Put(ctx, " ", []byte(`{}`)); err == nil {
		t.Fatal("expected error for blank key")
	}
}

func TestSQLiteDocumentsContract(t *testing.T) {
	runDocumentContract(t, setupDocs(t))
}

func TestMemoryDocumentsContract(t *testing.T) {
	runDocumentContract(t, NewMemoryDocuments())
}

func TestOpenSQLiteMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested.db")
	docs, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer docs.Close()

	if err := docs.Put(context.Background(), KeyFocusedTaskID, []byte(`"task-1"`)); err != nil {
		t.Fatalf("put after open: %v", err)
	}
}

func runNonASCIIPrefix(t *testing.T, docs Documents) {
	t.Helper()
	ctx := context.Background()
	for _, key := range []string{"collapsed:é1", "collapsed:éa", "collapsed:e1", "collapsed:ê", "canvas:x"} {
		if err := docs.Put(ctx, key, []byte(`true`)); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	keys, err := docs.Keys(ctx, "collapsed:é")
	if err != nil {
		t.Fatalf("list keys: %v", err)
	}
	if len(keys) != 2 || keys[0] != "collapsed:é1" || keys[1] != "collapsed:éa" {
		t.Fatalf("unexpected keys for non-ASCII prefix: %v", keys)
	}
}

func TestKeysWithNonASCIIPrefix(t *testing.T) {
	runNonASCIIPrefix(t, setupDocs(t))
	runNonASCIIPrefix(t, NewMemoryDocuments())
}

func TestPrefixEnd(t *testing.T) {
	cases := []struct {
		prefix string
		want   string
		ok     bool
	}{
		{prefix: "canvas:", want: "canvas;", ok: true},
		{prefix: "a\xff", want: "b", ok: true},
		{prefix: "\xff\xff", ok: false},
	}
	for _, tc := range cases {
		got, ok := prefixEnd(tc.prefix)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("prefixEnd(%q) = %q, %v; want %q, %v", tc.prefix, got, ok, tc.want, tc.ok)
		}
	}
}

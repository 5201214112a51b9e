package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteTimeLayout = time.RFC3339Nano

type SQLiteDocuments struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteDocuments(db *sql.DB) (*SQLiteDocuments, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("enable wal: %w", err)
	}
	return &SQLiteDocuments{db: db, now: time.Now}, nil
}

// OpenSQLite opens (creating if needed) the database at path and applies
// migrations.
func OpenSQLite(path string) (*SQLiteDocuments, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	docs, err := NewSQLiteDocuments(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return docs, nil
}

func (r *SQLiteDocuments) Close() error {
	return r.db.Close()
}

func (r *SQLiteDocuments) Get(ctx context.Context, key string) (Document, error) {
	row := r.db.QueryRowContext(ctx, `SELECT key, body, updated_at FROM documents WHERE key = ?`, key)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

func (r *SQLiteDocuments) Put(ctx context.Context, key string, body []byte) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("storage: document key is required")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO documents (key, body, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		key, string(body), mustTime(r.now()),
	)
	return err
}

func (r *SQLiteDocuments) Delete(ctx context.Context, key string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE key = ?`, key)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteDocuments) Keys(ctx context.Context, prefix string) ([]string, error) {
	query := `SELECT key FROM documents`
	args := make([]any, 0, 1)
	if prefix != "" {
		query += ` WHERE key >= ?`
		args = append(args, prefix)
		if upper, ok := prefixEnd(prefix); ok {
			query += ` AND key < ?`
			args = append(args, upper)
		}
	}
	query += ` ORDER BY key ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		out = append(out, key)
	}
	return out, rows.Err()
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(s scanner) (Document, error) {
	var out Document
	var body string
	var updated string
	if err := s.Scan(&out.Key, &body, &updated); err != nil {
		return Document{}, err
	}
	updatedAt, err := time.Parse(sqliteTimeLayout, updated)
	if err != nil {
		return Document{}, err
	}
	out.Body = []byte(body)
	out.UpdatedAt = updatedAt
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// prefixEnd returns the smallest key greater than every key starting with
// prefix, comparing bytes. ok is false when no such key exists.
func prefixEnd(prefix string) (string, bool) {
	b := []byte(prefix)
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] < 0xff {
			b[i]++
			return string(b[:i+1]), true
		}
	}
	return "", false
}

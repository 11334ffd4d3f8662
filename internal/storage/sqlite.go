package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

const (
	dirPermissions = 0o750
	busyTimeoutMS  = 5000
	pingTimeout    = 5 * time.Second
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	namespace  TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (namespace, key)
)`

// SQLite is a Store backed by a SQLite database file. Keys live in
// namespaces so scripts sharing one file do not collide.
type SQLite struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path. ":memory:" opens a
// private in-memory database.
func Open(ctx context.Context, path string) (*SQLite, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
			return nil, fmt.Errorf("creating storage directory: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)", path, busyTimeoutMS)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}
	// One writer; also keeps ":memory:" on a single shared connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close() //nolint:errcheck
		return nil, fmt.Errorf("verifying storage connection: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close() //nolint:errcheck
		return nil, fmt.Errorf("creating storage schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing storage: %w", err)
	}
	return nil
}

// Namespace returns a Store scoped to ns.
func (s *SQLite) Namespace(ns string) *Namespaced {
	return &Namespaced{db: s.db, ns: ns}
}

// Namespaced is one namespace of a SQLite store.
type Namespaced struct {
	db *sql.DB
	ns string
}

// Get implements Store.
func (n *Namespaced) Get(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrEmptyKey
	}
	var v string
	err := n.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE namespace = ? AND key = ?`, n.ns, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return v, true, nil
}

// Put implements Store.
func (n *Namespaced) Put(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	_, err := n.db.ExecContext(ctx, `
		INSERT INTO kv (namespace, key, value, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (namespace, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		n.ns, key, value, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("put %q: %w", key, err)
	}
	return nil
}

// Entry is one stored key-value pair.
type Entry struct {
	Key       string    `yaml:"key"        json:"key"`
	Value     string    `yaml:"value"      json:"value"`
	UpdatedAt time.Time `yaml:"updated_at" json:"updated_at"`
}

// List returns every entry in the namespace ordered by key.
func (n *Namespaced) List(ctx context.Context) ([]Entry, error) {
	rows, err := n.db.QueryContext(ctx, `SELECT key, value, updated_at FROM kv WHERE namespace = ? ORDER BY key`, n.ns)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e  Entry
			ms int64
		)
		if err := rows.Scan(&e.Key, &e.Value, &ms); err != nil {
			return nil, fmt.Errorf("list: %w", err)
		}
		e.UpdatedAt = time.UnixMilli(ms)
		out = append(out, e)
	}
	return out, rows.Err()
}

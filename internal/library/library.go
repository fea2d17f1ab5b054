// Package library stores named drawing snapshots in a SQLite database.
package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"vecdraw/internal/logging"
)

// ErrNotFound is returned when no snapshot has the requested name.
var ErrNotFound = errors.New("snapshot not found")

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	name       TEXT PRIMARY KEY,
	data       BLOB NOT NULL,
	shapes     INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
)`

// Snapshot is a stored drawing.
type Snapshot struct {
	Name      string
	Data      []byte
	Shapes    int
	UpdatedAt time.Time
}

// Library is a snapshot store backed by SQLite.
type Library struct {
	db *sql.DB

	// Now stamps saved snapshots. Defaults to time.Now.
	Now func() time.Time
}

// Open opens or creates the database at path.
func Open(path string) (*Library, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir library dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?mode=rwc&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open library: %w", err)
	}
	db.SetMaxOpenConns(1)
	return &Library{db: db, Now: time.Now}, nil
}

// Init creates the schema if needed.
func (l *Library) Init(ctx context.Context) error {
	if _, err := l.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("init library: %w", err)
	}
	return nil
}

// Close closes the database.
func (l *Library) Close() error {
	return l.db.Close()
}

// Put stores data under name, replacing any snapshot with that name.
func (l *Library) Put(ctx context.Context, name string, data []byte, shapes int) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("snapshot name is empty")
	}
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO snapshots (name, data, shapes, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			data = excluded.data,
			shapes = excluded.shapes,
			updated_at = excluded.updated_at
	`, name, data, shapes, l.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("save snapshot %q: %w", name, err)
	}
	logging.Logger().Info("snapshot saved", "name", name, "shapes", shapes, "bytes", len(data))
	return nil
}

// Get returns the snapshot called name.
func (l *Library) Get(ctx context.Context, name string) (Snapshot, error) {
	row := l.db.QueryRowContext(ctx, `
		SELECT name, data, shapes, updated_at FROM snapshots WHERE name = ?
	`, strings.TrimSpace(name))

	var s Snapshot
	var ms int64
	if err := row.Scan(&s.Name, &s.Data, &s.Shapes, &ms); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Snapshot{}, fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		return Snapshot{}, fmt.Errorf("load snapshot %q: %w", name, err)
	}
	s.UpdatedAt = time.UnixMilli(ms)
	return s, nil
}

// List returns every snapshot without its data, newest first.
func (l *Library) List(ctx context.Context) ([]Snapshot, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT name, shapes, updated_at FROM snapshots ORDER BY updated_at DESC, name
	`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var s Snapshot
		var ms int64
		if err := rows.Scan(&s.Name, &s.Shapes, &ms); err != nil {
			return nil, fmt.Errorf("list snapshots: %w", err)
		}
		s.UpdatedAt = time.UnixMilli(ms)
		out = append(out, s)
	}
	return out, rows.Err()
}

// Delete removes the snapshot called name.
func (l *Library) Delete(ctx context.Context, name string) error {
	res, err := l.db.ExecContext(ctx, `DELETE FROM snapshots WHERE name = ?`, strings.TrimSpace(name))
	if err != nil {
		return fmt.Errorf("delete snapshot %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete snapshot %q: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return nil
}

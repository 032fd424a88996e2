// Package store persists projects, requirement rows and completion records
// in SQLite and serves them to the guidance engine as project snapshots.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"github.com/papapumpkin/compass/internal/project"
)

// ErrDuplicateName is returned when a project name is already taken.
var ErrDuplicateName = errors.New("project name already exists")

// schema contains the DDL executed on every open.
const schema = `
CREATE TABLE IF NOT EXISTS projects (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL UNIQUE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS requirement_defaults (
    item_id  INTEGER PRIMARY KEY,
    required INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS requirement_overrides (
    project_id TEXT    NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
    item_id    INTEGER NOT NULL,
    required   INTEGER NOT NULL,
    PRIMARY KEY (project_id, item_id)
);

CREATE TABLE IF NOT EXISTS completions (
    project_id   TEXT    NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
    item_id      INTEGER NOT NULL,
    complete     INTEGER NOT NULL DEFAULT 1,
    completed_at TEXT,
    PRIMARY KEY (project_id, item_id)
);
`

// SQLiteStore is the SQLite-backed project store. It implements
// guidance.Source.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the database at dbPath, enables WAL mode and a
// busy timeout, and creates the schema if needed.
func Open(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	// SQLite has a single writer; one connection keeps the PRAGMAs below in
	// effect for every statement.
	db.SetMaxOpenConns(1)

	pragmas := []struct{ stmt, what string }{
		{"PRAGMA journal_mode=WAL", "enable WAL mode"},
		{"PRAGMA busy_timeout=5000", "set busy timeout"},
		{"PRAGMA foreign_keys=ON", "enable foreign keys"},
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p.stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: %s: %w", p.what, err)
		}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateProject registers a new project under a fresh UUID.
func (s *SQLiteStore) CreateProject(ctx context.Context, name string) (project.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return project.Project{}, errors.New("store: project name is required")
	}
	p := project.Project{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: s.now().UTC().Truncate(time.Second),
	}
	const q = `INSERT INTO projects (id, name, created_at) VALUES (?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, q, p.ID, p.Name, formatTimestamp(p.CreatedAt)); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return project.Project{}, fmt.Errorf("store: %w: %q", ErrDuplicateName, name)
		}
		return project.Project{}, fmt.Errorf("store: create project %q: %w", name, err)
	}
	return p, nil
}

// Project looks a project up by ID, falling back to its name.
func (s *SQLiteStore) Project(ctx context.Context, ref string) (project.Project, error) {
	const q = `SELECT id, name, created_at FROM projects WHERE id = ? OR name = ?
		ORDER BY (id = ?) DESC LIMIT 1`
	var p project.Project
	var ts string
	err := s.db.QueryRowContext(ctx, q, ref, ref, ref).Scan(&p.ID, &p.Name, &ts)
	if errors.Is(err, sql.ErrNoRows) {
		return project.Project{}, fmt.Errorf("store: %q: %w", ref, project.ErrNotFound)
	}
	if err != nil {
		return project.Project{}, fmt.Errorf("store: get project %q: %w", ref, err)
	}
	if p.CreatedAt, err = parseTimestamp(ts); err != nil {
		return project.Project{}, fmt.Errorf("store: parse project timestamp: %w", err)
	}
	return p, nil
}

// ListProjects returns every project, oldest first.
func (s *SQLiteStore) ListProjects(ctx context.Context) ([]project.Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created_at FROM projects ORDER BY created_at, name`)
	if err != nil {
		return nil, fmt.Errorf("store: list projects: %w", err)
	}
	defer rows.Close()

	var out []project.Project
	for rows.Next() {
		var p project.Project
		var ts string
		if err := rows.Scan(&p.ID, &p.Name, &ts); err != nil {
			return nil, fmt.Errorf("store: scan project: %w", err)
		}
		if p.CreatedAt, err = parseTimestamp(ts); err != nil {
			return nil, fmt.Errorf("store: parse project timestamp: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate projects: %w", err)
	}
	return out, nil
}

// SetDefault records the global requirement flag for itemID.
func (s *SQLiteStore) SetDefault(ctx context.Context, itemID int, required bool) error {
	const q = `
		INSERT INTO requirement_defaults (item_id, required) VALUES (?, ?)
		ON CONFLICT(item_id) DO UPDATE SET required = excluded.required`
	if _, err := s.db.ExecContext(ctx, q, itemID, required); err != nil {
		return fmt.Errorf("store: set default for item %d: %w", itemID, err)
	}
	return nil
}

// ClearDefault removes the global requirement flag for itemID.
func (s *SQLiteStore) ClearDefault(ctx context.Context, itemID int) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM requirement_defaults WHERE item_id = ?`, itemID); err != nil {
		return fmt.Errorf("store: clear default for item %d: %w", itemID, err)
	}
	return nil
}

// Defaults returns every global requirement flag.
func (s *SQLiteStore) Defaults(ctx context.Context) (map[int]bool, error) {
	return s.queryFlags(ctx, `SELECT item_id, required FROM requirement_defaults`)
}

// SetOverride records a project-level requirement flag for itemID.
func (s *SQLiteStore) SetOverride(ctx context.Context, projectID string, itemID int, required bool) error {
	if err := s.requireProject(ctx, projectID); err != nil {
		return err
	}
	const q = `
		INSERT INTO requirement_overrides (project_id, item_id, required) VALUES (?, ?, ?)
		ON CONFLICT(project_id, item_id) DO UPDATE SET required = excluded.required`
	if _, err := s.db.ExecContext(ctx, q, projectID, itemID, required); err != nil {
		return fmt.Errorf("store: set override %s/%d: %w", projectID, itemID, err)
	}
	return nil
}

// ClearOverride removes a project-level requirement flag, letting the
// global default apply again.
func (s *SQLiteStore) ClearOverride(ctx context.Context, projectID string, itemID int) error {
	if err := s.requireProject(ctx, projectID); err != nil {
		return err
	}
	const q = `DELETE FROM requirement_overrides WHERE project_id = ? AND item_id = ?`
	if _, err := s.db.ExecContext(ctx, q, projectID, itemID); err != nil {
		return fmt.Errorf("store: clear override %s/%d: %w", projectID, itemID, err)
	}
	return nil
}

// Complete marks itemID complete for the project. The first completion
// timestamp is kept: completing an item again, even after a reopen, does not
// move it. A zero at uses the current time.
func (s *SQLiteStore) Complete(ctx context.Context, projectID string, itemID int, at time.Time) error {
	if err := s.requireProject(ctx, projectID); err != nil {
		return err
	}
	if at.IsZero() {
		at = s.now()
	}
	const q = `
		INSERT INTO completions (project_id, item_id, complete, completed_at) VALUES (?, ?, 1, ?)
		ON CONFLICT(project_id, item_id) DO UPDATE SET
			complete     = 1,
			completed_at = COALESCE(completions.completed_at, excluded.completed_at)`
	if _, err := s.db.ExecContext(ctx, q, projectID, itemID, formatTimestamp(at)); err != nil {
		return fmt.Errorf("store: complete %s/%d: %w", projectID, itemID, err)
	}
	return nil
}

// Reopen clears the completion flag for itemID. The original completion
// timestamp is retained.
func (s *SQLiteStore) Reopen(ctx context.Context, projectID string, itemID int) error {
	if err := s.requireProject(ctx, projectID); err != nil {
		return err
	}
	const q = `UPDATE completions SET complete = 0 WHERE project_id = ? AND item_id = ?`
	if _, err := s.db.ExecContext(ctx, q, projectID, itemID); err != nil {
		return fmt.Errorf("store: reopen %s/%d: %w", projectID, itemID, err)
	}
	return nil
}

// LoadProject assembles the diagnosis inputs for a project. ref may be the
// project's ID or name.
func (s *SQLiteStore) LoadProject(ctx context.Context, ref string) (project.Snapshot, error) {
	p, err := s.Project(ctx, ref)
	if err != nil {
		return project.Snapshot{}, err
	}
	snap := project.Snapshot{Project: p}

	if snap.Defaults, err = s.Defaults(ctx); err != nil {
		return project.Snapshot{}, err
	}
	snap.Overrides, err = s.queryFlags(ctx,
		`SELECT item_id, required FROM requirement_overrides WHERE project_id = ?`, p.ID)
	if err != nil {
		return project.Snapshot{}, err
	}
	if snap.Completions, err = s.completions(ctx, p.ID); err != nil {
		return project.Snapshot{}, err
	}
	return snap, nil
}

func (s *SQLiteStore) completions(ctx context.Context, projectID string) ([]project.Completion, error) {
	const q = `SELECT item_id, complete, completed_at FROM completions
		WHERE project_id = ? ORDER BY item_id`
	rows, err := s.db.QueryContext(ctx, q, projectID)
	if err != nil {
		return nil, fmt.Errorf("store: query completions: %w", err)
	}
	defer rows.Close()

	var out []project.Completion
	for rows.Next() {
		var c project.Completion
		var ts sql.NullString
		if err := rows.Scan(&c.ItemID, &c.Complete, &ts); err != nil {
			return nil, fmt.Errorf("store: scan completion: %w", err)
		}
		if ts.Valid && ts.String != "" {
			t, err := parseTimestamp(ts.String)
			if err != nil {
				return nil, fmt.Errorf("store: parse completion timestamp: %w", err)
			}
			c.CompletedAt = &t
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate completions: %w", err)
	}
	return out, nil
}

// queryFlags scans (item_id, required) rows into a map.
func (s *SQLiteStore) queryFlags(ctx context.Context, query string, args ...any) (map[int]bool, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query requirements: %w", err)
	}
	defer rows.Close()

	flags := make(map[int]bool)
	for rows.Next() {
		var id int
		var required bool
		if err := rows.Scan(&id, &required); err != nil {
			return nil, fmt.Errorf("store: scan requirement: %w", err)
		}
		flags[id] = required
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate requirements: %w", err)
	}
	return flags, nil
}

// requireProject returns an error wrapping project.ErrNotFound when no
// project has the given ID.
func (s *SQLiteStore) requireProject(ctx context.Context, projectID string) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM projects WHERE id = ?`, projectID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("store: %q: %w", projectID, project.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("store: look up project %q: %w", projectID, err)
	}
	return nil
}

// timestampFormats lists the formats found in the database: RFC 3339 as
// written by this package, and the space-separated form SQLite produces for
// CURRENT_TIMESTAMP.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.DateTime,
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTimestamp attempts to parse a SQLite timestamp string using known formats.
func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %q", s)
}

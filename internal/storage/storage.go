// Package storage persists task records in a local SQLite database. The
// adapter keeps no in-memory state: every read goes to the store, and the
// view model re-reads everything after each write.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"dela/internal/task"
)

// ErrNotFound is returned by Update and SetStatus when no row has the
// given id. DeleteByID deliberately does not report it.
var ErrNotFound = errors.New("task not found")

type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, err
	}
	dsn := sqliteDSN(dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS tasks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'active',
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tasks_title ON tasks(title);
CREATE INDEX IF NOT EXISTS idx_tasks_description ON tasks(description);
CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	return nil
}

// ListAll returns every task ordered by id, i.e. insertion order.
func (s *Store) ListAll() ([]task.Task, error) {
	rows, err := s.db.Query(`SELECT id, title, description, status, created_at FROM tasks ORDER BY id;`)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var tasks []task.Task
	for rows.Next() {
		var t task.Task
		var status, createdStr string
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &status, &createdStr); err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		t.Status = task.Status(status)
		if created, err := time.Parse(time.RFC3339, createdStr); err == nil {
			t.CreatedAt = created
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return tasks, nil
}

// Insert stores a new task and returns its assigned id.
func (s *Store) Insert(d task.Draft, status task.Status) (int, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(`INSERT INTO tasks (title, description, status, created_at) VALUES (?, ?, ?, ?);`,
		d.Title, d.Description, string(status), now)
	if err != nil {
		return 0, fmt.Errorf("inserting task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading inserted id: %w", err)
	}
	return int(id), nil
}

// Update replaces title and description of an existing task. Status is out
// of reach of this operation on purpose.
func (s *Store) Update(id int, d task.Draft) error {
	res, err := s.db.Exec(`UPDATE tasks SET title = ?, description = ? WHERE id = ?;`,
		d.Title, d.Description, id)
	if err != nil {
		return fmt.Errorf("updating task %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating task %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetStatus flips the status flag of an existing task.
func (s *Store) SetStatus(id int, status task.Status) error {
	res, err := s.db.Exec(`UPDATE tasks SET status = ? WHERE id = ?;`, string(status), id)
	if err != nil {
		return fmt.Errorf("setting status of task %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("setting status of task %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByID removes the task. Deleting an absent id is a no-op.
func (s *Store) DeleteByID(id int) error {
	if _, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?;`, id); err != nil {
		return fmt.Errorf("deleting task %d: %w", id, err)
	}
	return nil
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}

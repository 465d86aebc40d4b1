package storage

import (
	"fmt"
	"time"

	"dela/internal/task"
)

// seedTasks is inserted on first run so the list is never empty.
var seedTasks = []struct {
	title       string
	description string
	status      task.Status
}{
	{"Купить продукты", "Молоко, хлеб, яйца", task.StatusActive},
	{"Завершить отчет", "Квартальный отчет для руководителя", task.StatusActive},
	{"Позвонить другу", "", task.StatusCompleted},
}

// SeedIfEmpty populates the example tasks when the table holds no rows.
// Seeding runs at most once per database: any existing row, including a
// previously seeded one, disables it.
func (s *Store) SeedIfEmpty() error {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM tasks;`).Scan(&count); err != nil {
		return fmt.Errorf("counting tasks: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning seed transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, st := range seedTasks {
		_, err := tx.Exec(`INSERT INTO tasks (title, description, status, created_at) VALUES (?, ?, ?, ?);`,
			st.title, st.description, string(st.status), now)
		if err != nil {
			return fmt.Errorf("seeding task %q: %w", st.title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing seed transaction: %w", err)
	}
	return nil
}

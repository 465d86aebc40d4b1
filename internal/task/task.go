// Package task defines the task record, its status values, and the pure
// search filter applied to an in-memory snapshot.
package task

import (
	"errors"
	"strings"
	"time"
)

// Status is the lifecycle flag of a task. New tasks always start active.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// ErrEmptyTitle is returned when a draft's title is empty after trimming.
var ErrEmptyTitle = errors.New("title must not be empty")

// Task is the sole persisted record type. ID is assigned by the store on
// insert and immutable afterward.
type Task struct {
	ID          int
	Title       string
	Description string
	Status      Status
	CreatedAt   time.Time
}

// Draft is the user-supplied portion of a task before it has an identity.
type Draft struct {
	Title       string
	Description string
}

// Normalize trims both fields and returns the result.
func (d Draft) Normalize() Draft {
	return Draft{
		Title:       strings.TrimSpace(d.Title),
		Description: strings.TrimSpace(d.Description),
	}
}

// Validate checks the draft after normalization.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ErrEmptyTitle
	}
	return nil
}

// Toggled returns the opposite status.
func (s Status) Toggled() Status {
	if s == StatusCompleted {
		return StatusActive
	}
	return StatusCompleted
}

// Valid reports whether s is one of the known status values.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusCompleted
}

// Package store is the client side of the remote events table: the Table contract
// implemented by each backend and the Client the dashboard talks to.
package store

import (
	"context"
	"errors"

	"github.com/username/team-calendar/internal/calendar"
)

var (
	// ErrEmptyTitle is returned when a title is empty after trimming
	ErrEmptyTitle = errors.New("event title is required")

	// ErrInvalidDate is returned when a date is not YYYY-MM-DD
	ErrInvalidDate = errors.New("event date must be YYYY-MM-DD")

	// ErrNotFound is returned by backends that can tell a delete matched no row
	ErrNotFound = errors.New("event not found")
)

// NewEvent is the insert payload. A nil Description or CreatedBy is stored as NULL.
type NewEvent struct {
	Date        string             `json:"date"`
	Title       string             `json:"title"`
	Description *string            `json:"description"`
	Type        calendar.EventType `json:"type"`
	CreatedBy   *string            `json:"created_by"`
}

// Table is the remote "events" table
type Table interface {
	// Select returns events with from <= date <= to, ascending by date
	Select(ctx context.Context, from, to string) ([]calendar.Event, error)

	// Insert stores the row and returns it with its server-assigned ID
	Insert(ctx context.Context, row NewEvent) (calendar.Event, error)

	// Delete removes the row with the given ID
	Delete(ctx context.Context, id string) error
}

package store

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/username/team-calendar/internal/calendar"
	"github.com/username/team-calendar/pkg/dateutil"
)

// EventInput is what a user submits from the add-event form
type EventInput struct {
	Date        string
	Title       string
	Description string
	Type        calendar.EventType
	CreatedBy   string
}

// Client issues list/insert/delete calls against a Table.
// Failures are reported to the logger; nothing is retried.
type Client struct {
	table  Table
	logger *zap.Logger
}

// NewClient creates a Client over table
func NewClient(table Table, logger *zap.Logger) *Client {
	return &Client{
		table:  table,
		logger: logger,
	}
}

// List returns events dated from..to inclusive. A failed read is logged and
// yields an empty result so the calendar still renders holidays.
func (c *Client) List(ctx context.Context, from, to string) []calendar.Event {
	events, err := c.table.Select(ctx, from, to)
	if err != nil {
		c.logger.Warn("Failed to load events",
			zap.String("from", from),
			zap.String("to", to),
			zap.Error(err))
		return []calendar.Event{}
	}

	c.logger.Info("Events loaded",
		zap.String("from", from),
		zap.String("to", to),
		zap.Int("count", len(events)))

	return events
}

// Insert validates and stores a new event. The table is not called when
// validation fails.
func (c *Client) Insert(ctx context.Context, in EventInput) (calendar.Event, error) {
	row, err := in.toRow()
	if err != nil {
		return calendar.Event{}, err
	}

	ev, err := c.table.Insert(ctx, row)
	if err != nil {
		c.logger.Error("Failed to add event",
			zap.String("date", row.Date),
			zap.String("type", string(row.Type)),
			zap.Error(err))
		return calendar.Event{}, fmt.Errorf("failed to add event: %w", err)
	}

	c.logger.Info("Event added",
		zap.String("id", ev.ID),
		zap.String("date", ev.Date),
		zap.String("type", string(ev.Type)))

	return ev, nil
}

// Delete removes exactly one event by ID
func (c *Client) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("failed to remove event: %w", ErrNotFound)
	}

	if err := c.table.Delete(ctx, id); err != nil {
		c.logger.Error("Failed to remove event",
			zap.String("id", id),
			zap.Error(err))
		return fmt.Errorf("failed to remove event %s: %w", id, err)
	}

	c.logger.Info("Event removed", zap.String("id", id))
	return nil
}

func (in EventInput) toRow() (NewEvent, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return NewEvent{}, ErrEmptyTitle
	}
	if !dateutil.IsDate(in.Date) {
		return NewEvent{}, fmt.Errorf("%w: %q", ErrInvalidDate, in.Date)
	}
	if !in.Type.Valid() {
		return NewEvent{}, fmt.Errorf("%w: %q", calendar.ErrInvalidType, in.Type)
	}

	row := NewEvent{
		Date:  in.Date,
		Title: title,
		Type:  in.Type,
	}
	if desc := strings.TrimSpace(in.Description); desc != "" {
		row.Description = &desc
	}
	if in.CreatedBy != "" {
		createdBy := in.CreatedBy
		row.CreatedBy = &createdBy
	}
	return row, nil
}

package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/username/team-calendar/internal/calendar"
	"github.com/username/team-calendar/internal/store"
)

const eventsPath = "/rest/v1/events"

// EventsTable is the PostgREST "events" table. It implements store.Table.
type EventsTable struct {
	client *Client
}

// NewEventsTable returns the events table of the client's project
func NewEventsTable(client *Client) *EventsTable {
	return &EventsTable{client: client}
}

// Select returns events with from <= date <= to, ascending by date
func (t *EventsTable) Select(ctx context.Context, from, to string) ([]calendar.Event, error) {
	query := url.Values{}
	query.Set("select", eventColumns)
	query.Add("date", "gte."+from)
	query.Add("date", "lte."+to)
	query.Set("order", "date.asc")

	var rows []eventRow
	if err := t.client.do(ctx, request{
		method: http.MethodGet,
		path:   eventsPath,
		query:  query,
	}, &rows); err != nil {
		return nil, fmt.Errorf("failed to select events: %w", err)
	}

	events := make([]calendar.Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, row.toEvent())
	}
	return events, nil
}

// Insert stores the row and returns it as the server wrote it
func (t *EventsTable) Insert(ctx context.Context, row store.NewEvent) (calendar.Event, error) {
	query := url.Values{}
	query.Set("select", eventColumns)

	header := http.Header{}
	header.Set("Prefer", "return=representation")
	// single-object response instead of a one-element array
	header.Set("Accept", "application/vnd.pgrst.object+json")

	var created eventRow
	if err := t.client.do(ctx, request{
		method: http.MethodPost,
		path:   eventsPath,
		query:  query,
		header: header,
		body:   row,
	}, &created); err != nil {
		return calendar.Event{}, fmt.Errorf("failed to insert event: %w", err)
	}

	return created.toEvent(), nil
}

// Delete removes the row with the given ID. store.ErrNotFound is returned when the
// filter matched nothing, either because the row is gone or row-level security hides it.
func (t *EventsTable) Delete(ctx context.Context, id string) error {
	query := url.Values{}
	query.Set("id", "eq."+id)
	query.Set("select", "id")

	header := http.Header{}
	header.Set("Prefer", "return=representation")

	var deleted []struct {
		ID FlexibleID `json:"id"`
	}
	if err := t.client.do(ctx, request{
		method: http.MethodDelete,
		path:   eventsPath,
		query:  query,
		header: header,
	}, &deleted); err != nil {
		return fmt.Errorf("failed to delete event %s: %w", id, err)
	}

	if len(deleted) == 0 {
		return store.ErrNotFound
	}
	return nil
}

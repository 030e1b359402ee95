package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/username/team-calendar/internal/calendar"
)

// MemoryTable is a process-local Table used by the memory backend and in tests
type MemoryTable struct {
	mu   sync.RWMutex
	rows []memoryRow
}

type memoryRow struct {
	id          string
	date        string
	title       string
	description *string
	eventType   calendar.EventType
	createdBy   *string
}

// NewMemoryTable creates an empty MemoryTable
func NewMemoryTable() *MemoryTable {
	return &MemoryTable{}
}

// Select returns rows dated from..to, ascending by date, insertion order within a date
func (m *MemoryTable) Select(ctx context.Context, from, to string) ([]calendar.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	events := []calendar.Event{}
	for _, r := range m.rows {
		if r.date >= from && r.date <= to {
			events = append(events, r.event())
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date < events[j].Date
	})
	return events, nil
}

// Insert assigns a UUID and stores the row
func (m *MemoryTable) Insert(ctx context.Context, row NewEvent) (calendar.Event, error) {
	if err := ctx.Err(); err != nil {
		return calendar.Event{}, err
	}

	r := memoryRow{
		id:          uuid.NewString(),
		date:        row.Date,
		title:       row.Title,
		description: copyString(row.Description),
		eventType:   row.Type,
		createdBy:   copyString(row.CreatedBy),
	}

	m.mu.Lock()
	m.rows = append(m.rows, r)
	m.mu.Unlock()

	return r.event(), nil
}

// Delete removes the row with id, or returns ErrNotFound
func (m *MemoryTable) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i, r := range m.rows {
		if r.id == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// Description returns the stored description of id and whether it is non-NULL
func (m *MemoryTable) Description(id string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.rows {
		if r.id == id && r.description != nil {
			return *r.description, true
		}
	}
	return "", false
}

// CreatedBy returns the stored creator of id and whether it is non-NULL
func (m *MemoryTable) CreatedBy(id string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.rows {
		if r.id == id && r.createdBy != nil {
			return *r.createdBy, true
		}
	}
	return "", false
}

func (r memoryRow) event() calendar.Event {
	ev := calendar.Event{
		ID:    r.id,
		Date:  r.date,
		Title: r.title,
		Type:  r.eventType,
	}
	if r.description != nil {
		ev.Description = *r.description
	}
	return ev
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

package dashboard

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/username/team-calendar/internal/calendar"
	"github.com/username/team-calendar/internal/store"
)

// ErrNoSelection is returned by Submit when no day is selected
var ErrNoSelection = errors.New("select a day before adding an event")

// EventClient is the subset of store.Client the board needs
type EventClient interface {
	List(ctx context.Context, from, to string) []calendar.Event
	Insert(ctx context.Context, in store.EventInput) (calendar.Event, error)
	Delete(ctx context.Context, id string) error
}

// Options configures a Board
type Options struct {
	// Year is the calendar year shown; events are fetched for all of it
	Year int

	// UpcomingDays is the width of the upcoming feed. Zero means calendar.DefaultUpcomingDays.
	UpcomingDays int

	// Holidays overlays the grid. Nil means calendar.DefaultHolidays.
	Holidays *calendar.HolidayTable
}

// Board is one session's calendar: view state plus the shared-event cache.
// It is safe for concurrent use; remote calls run without the lock held.
type Board struct {
	client   EventClient
	holidays *calendar.HolidayTable
	opts     Options
	logger   *zap.Logger

	mu      sync.Mutex
	state   State
	events  []calendar.Event
	loading bool
	loaded  bool
	done    chan struct{}
}

// NewBoard creates a board opened on now's month
func NewBoard(client EventClient, opts Options, now time.Time, logger *zap.Logger) *Board {
	if opts.Holidays == nil {
		opts.Holidays = calendar.DefaultHolidays
	}
	if opts.UpcomingDays <= 0 {
		opts.UpcomingDays = calendar.DefaultUpcomingDays
	}

	done := make(chan struct{})
	close(done)

	return &Board{
		client:   client,
		holidays: opts.Holidays,
		opts:     opts,
		logger:   logger,
		state:    NewState(now, opts.Year),
		events:   []calendar.Event{},
		done:     done,
	}
}

// Load fetches the year's events in the background and replaces the cache when the
// call returns. The returned channel is closed once the fetch has been applied.
// If a fetch is already running its channel is returned and no new call is made.
// ctx values (the access token) are kept but its cancellation is not, so the fetch
// outlives the request that started it.
func (b *Board) Load(ctx context.Context) <-chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.loading {
		return b.done
	}
	b.loading = true
	b.done = make(chan struct{})
	done := b.done

	from := calendar.DateString(b.opts.Year, 0, 1)
	to := calendar.DateString(b.opts.Year, 11, 31)
	ctx = context.WithoutCancel(ctx)

	go func() {
		defer close(done)

		events := b.client.List(ctx, from, to)

		b.mu.Lock()
		b.events = events
		b.loading = false
		b.loaded = true
		b.mu.Unlock()
	}()

	return done
}

// EnsureLoaded starts the initial fetch unless the cache was already loaded or a
// fetch is running
func (b *Board) EnsureLoaded(ctx context.Context) {
	b.mu.Lock()
	needed := !b.loaded && !b.loading
	b.mu.Unlock()

	if needed {
		b.Load(ctx)
	}
}

// Loading reports whether a fetch is outstanding
func (b *Board) Loading() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loading
}

// State returns a copy of the view state
func (b *Board) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Events returns a copy of the cache
func (b *Board) Events() []calendar.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]calendar.Event, len(b.events))
	copy(out, b.events)
	return out
}

func (b *Board) Prev() {
	b.mu.Lock()
	b.state.Prev()
	b.mu.Unlock()
}

func (b *Board) Next() {
	b.mu.Lock()
	b.state.Next()
	b.mu.Unlock()
}

// Toggle selects or deselects date. Dates outside the displayed month are ignored.
func (b *Board) Toggle(date string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	prefix := calendar.DateString(b.opts.Year, b.state.Month, 1)[:8]
	if !strings.HasPrefix(date, prefix) {
		return
	}
	b.state.Toggle(date)
}

func (b *Board) MarkPendingDelete(id string) {
	b.mu.Lock()
	b.state.MarkPendingDelete(id)
	b.mu.Unlock()
}

func (b *Board) CancelDelete() {
	b.mu.Lock()
	b.state.CancelDelete()
	b.mu.Unlock()
}

// Submit adds the draft as an event on the selected day. The draft is kept as
// entered until the insert succeeds, then cleared; the selection is kept.
func (b *Board) Submit(ctx context.Context, draft Draft, createdBy string) error {
	b.mu.Lock()
	b.state.Draft = draft
	date := b.state.Selected
	b.mu.Unlock()

	if date == "" {
		return ErrNoSelection
	}
	if strings.TrimSpace(draft.Title) == "" {
		return store.ErrEmptyTitle
	}

	ev, err := b.client.Insert(ctx, store.EventInput{
		Date:        date,
		Title:       draft.Title,
		Description: draft.Description,
		Type:        draft.Type,
		CreatedBy:   createdBy,
	})
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = insertSorted(b.events, ev)
	b.state.Draft = emptyDraft()
	return nil
}

// Confirm deletes the pending event. On failure the cache and the pending mark are
// left as they were. A row that is already gone remotely is dropped from the cache.
func (b *Board) Confirm(ctx context.Context) error {
	b.mu.Lock()
	id := b.state.PendingDelete
	b.mu.Unlock()

	if id == "" {
		return nil
	}

	err := b.client.Delete(ctx, id)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	if err != nil {
		b.logger.Info("Event already removed", zap.String("id", id))
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = removeByID(b.events, id)
	if b.state.PendingDelete == id {
		b.state.PendingDelete = ""
	}
	return nil
}

// insertSorted places ev after every cached event dated on or before it
func insertSorted(events []calendar.Event, ev calendar.Event) []calendar.Event {
	i := len(events)
	for i > 0 && events[i-1].Date > ev.Date {
		i--
	}
	out := make([]calendar.Event, 0, len(events)+1)
	out = append(out, events[:i]...)
	out = append(out, ev)
	return append(out, events[i:]...)
}

func removeByID(events []calendar.Event, id string) []calendar.Event {
	out := make([]calendar.Event, 0, len(events))
	for _, ev := range events {
		if ev.ID != id {
			out = append(out, ev)
		}
	}
	return out
}

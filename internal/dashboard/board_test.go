package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/username/team-calendar/internal/calendar"
	"github.com/username/team-calendar/internal/store"
)

var testNow = time.Date(2026, 7, 1, 10, 0, 0, 0, time.Local)

// fakeClient answers from fixed data and can be told to fail
type fakeClient struct {
	mu sync.Mutex

	events    []calendar.Event
	insertErr error
	deleteErr error

	// release, when set, holds List until closed
	release chan struct{}

	listCalls   int
	insertCalls int
	deleteCalls []string
	lastInput   store.EventInput
}

func (f *fakeClient) List(ctx context.Context, from, to string) []calendar.Event {
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	out := make([]calendar.Event, len(f.events))
	copy(out, f.events)
	return out
}

func (f *fakeClient) Insert(ctx context.Context, in store.EventInput) (calendar.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insertCalls++
	f.lastInput = in
	if f.insertErr != nil {
		return calendar.Event{}, f.insertErr
	}
	return calendar.Event{ID: "new", Date: in.Date, Title: in.Title, Description: in.Description, Type: in.Type}, nil
}

func (f *fakeClient) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls = append(f.deleteCalls, id)
	return f.deleteErr
}

func newTestBoard(t *testing.T, client EventClient) *Board {
	t.Helper()
	b := NewBoard(client, Options{Year: 2026}, testNow, zap.NewNop())
	<-b.Load(context.Background())
	return b
}

func TestBoard_LoadIsAsync(t *testing.T) {
	client := &fakeClient{
		events:  []calendar.Event{{ID: "1", Date: "2026-07-02", Title: "Truck", Type: calendar.EventTypeBOH}},
		release: make(chan struct{}),
	}
	b := NewBoard(client, Options{Year: 2026}, testNow, zap.NewNop())

	done := b.Load(context.Background())
	assert.True(t, b.Loading())

	// navigation stays available while the fetch is outstanding
	b.Next()
	assert.Equal(t, 7, b.State().Month)

	// a second Load joins the running fetch
	assert.Equal(t, done, b.Load(context.Background()))

	close(client.release)
	<-done

	assert.False(t, b.Loading())
	assert.Len(t, b.Events(), 1)
	assert.Equal(t, 1, client.listCalls)
}

func TestBoard_EnsureLoadedFetchesOnce(t *testing.T) {
	client := &fakeClient{}
	b := newTestBoard(t, client)

	b.EnsureLoaded(context.Background())
	<-b.Load(context.Background())

	assert.Equal(t, 2, client.listCalls, "EnsureLoaded must not refetch a loaded board")
}

func TestBoard_SubmitRequiresSelection(t *testing.T) {
	client := &fakeClient{}
	b := newTestBoard(t, client)

	err := b.Submit(context.Background(), Draft{Title: "Inventory", Type: calendar.EventTypeBOH}, "u1")
	assert.ErrorIs(t, err, ErrNoSelection)
	assert.Zero(t, client.insertCalls)
}

func TestBoard_SubmitBlankTitleNoCall(t *testing.T) {
	client := &fakeClient{}
	b := newTestBoard(t, client)
	b.Toggle("2026-07-10")

	err := b.Submit(context.Background(), Draft{Title: "   ", Type: calendar.EventTypeBOH}, "u1")
	assert.ErrorIs(t, err, store.ErrEmptyTitle)
	assert.Zero(t, client.insertCalls)
	assert.Empty(t, b.Events())
}

func TestBoard_SubmitSuccess(t *testing.T) {
	client := &fakeClient{events: []calendar.Event{
		{ID: "a", Date: "2026-07-03", Title: "Early"},
		{ID: "b", Date: "2026-07-20", Title: "Late"},
	}}
	b := newTestBoard(t, client)
	b.Toggle("2026-07-10")

	err := b.Submit(context.Background(), Draft{Title: "Staff meeting", Description: "back room", Type: calendar.EventTypeFOH}, "u1")
	require.NoError(t, err)

	assert.Equal(t, "u1", client.lastInput.CreatedBy)
	assert.Equal(t, "2026-07-10", client.lastInput.Date)

	ids := []string{}
	for _, ev := range b.Events() {
		ids = append(ids, ev.ID)
	}
	assert.Equal(t, []string{"a", "new", "b"}, ids, "cache stays ordered by date")

	state := b.State()
	assert.Equal(t, "2026-07-10", state.Selected, "selection is kept")
	assert.Equal(t, Draft{Type: calendar.EventTypeLSM}, state.Draft, "draft is cleared")
}

func TestBoard_SubmitFailureKeepsDraft(t *testing.T) {
	client := &fakeClient{insertErr: errors.New("boom")}
	b := newTestBoard(t, client)
	b.Toggle("2026-07-10")

	draft := Draft{Title: "Staff meeting", Type: calendar.EventTypeFOH}
	err := b.Submit(context.Background(), draft, "u1")
	require.Error(t, err)

	assert.Empty(t, b.Events())
	assert.Equal(t, draft, b.State().Draft)
	assert.Equal(t, 1, client.insertCalls, "no retry")
}

func TestBoard_ConfirmSuccess(t *testing.T) {
	client := &fakeClient{events: []calendar.Event{{ID: "a", Date: "2026-07-03"}, {ID: "b", Date: "2026-07-04"}}}
	b := newTestBoard(t, client)

	b.MarkPendingDelete("a")
	require.NoError(t, b.Confirm(context.Background()))

	require.Len(t, b.Events(), 1)
	assert.Equal(t, "b", b.Events()[0].ID)
	assert.Empty(t, b.State().PendingDelete)
	assert.Equal(t, []string{"a"}, client.deleteCalls)
}

func TestBoard_ConfirmFailureKeepsCache(t *testing.T) {
	client := &fakeClient{
		events:    []calendar.Event{{ID: "a", Date: "2026-07-03"}},
		deleteErr: errors.New("network down"),
	}
	b := newTestBoard(t, client)

	b.MarkPendingDelete("a")
	require.Error(t, b.Confirm(context.Background()))

	assert.Len(t, b.Events(), 1)
	assert.Equal(t, "a", b.State().PendingDelete)
}

func TestBoard_ConfirmAlreadyGone(t *testing.T) {
	client := &fakeClient{
		events:    []calendar.Event{{ID: "a", Date: "2026-07-03"}},
		deleteErr: store.ErrNotFound,
	}
	b := newTestBoard(t, client)

	b.MarkPendingDelete("a")
	require.NoError(t, b.Confirm(context.Background()))
	assert.Empty(t, b.Events())

	// a second delete of the same id is harmless
	b.MarkPendingDelete("a")
	require.NoError(t, b.Confirm(context.Background()))
	assert.Empty(t, b.Events())
}

func TestBoard_ConfirmWithoutPendingIsNoop(t *testing.T) {
	client := &fakeClient{}
	b := newTestBoard(t, client)

	require.NoError(t, b.Confirm(context.Background()))
	assert.Empty(t, client.deleteCalls)
}

func TestBoard_ToggleIgnoresOtherMonths(t *testing.T) {
	b := newTestBoard(t, &fakeClient{})

	b.Toggle("2026-08-01")
	assert.Empty(t, b.State().Selected)

	b.Toggle("2026-07-31")
	assert.Equal(t, "2026-07-31", b.State().Selected)
}

func TestBoard_WithMemoryStore(t *testing.T) {
	client := store.NewClient(store.NewMemoryTable(), zap.NewNop())
	b := newTestBoard(t, client)

	b.Toggle("2026-07-04")
	require.NoError(t, b.Submit(context.Background(), Draft{Title: "Fireworks", Type: calendar.EventTypeFOH}, ""))

	// a fresh board sees the shared row
	other := newTestBoard(t, client)
	require.Len(t, other.Events(), 1)
	assert.Equal(t, "Fireworks", other.Events()[0].Title)
}

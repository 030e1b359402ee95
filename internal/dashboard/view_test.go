package dashboard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/username/team-calendar/internal/calendar"
)

func TestBoard_View(t *testing.T) {
	client := &fakeClient{events: []calendar.Event{
		{ID: "1", Date: "2026-07-01", Title: "Open", Type: calendar.EventTypeFOH},
		{ID: "2", Date: "2026-07-04", Title: "Parade", Type: calendar.EventTypeVisitor},
		{ID: "3", Date: "2026-07-04", Title: "Cookout", Type: calendar.EventTypeLSM},
		{ID: "4", Date: "2026-08-01", Title: "Later", Type: calendar.EventTypeBOH},
	}}
	b := newTestBoard(t, client)
	b.Toggle("2026-07-04")
	b.MarkPendingDelete("3")

	v, err := b.View(testNow)
	require.NoError(t, err)

	assert.Equal(t, "July", v.MonthName)
	assert.Equal(t, 6, v.Month)

	// July 2026 starts on a Wednesday
	first := v.Weeks[0]
	for d := 0; d < 3; d++ {
		assert.True(t, first[d].Blank, "cell %d", d)
	}
	assert.Equal(t, 1, first[3].Day)
	assert.True(t, first[3].Today)
	assert.Len(t, first[3].Events, 1)

	july4 := first[6]
	assert.Equal(t, "2026-07-04", july4.Date)
	assert.True(t, july4.Selected)
	require.Len(t, july4.Holidays, 1)
	assert.Equal(t, "Independence Day", july4.Holidays[0].Name)
	require.Len(t, july4.Events, 2)
	assert.Equal(t, "Parade", july4.Events[0].Title, "events keep source order")

	require.NotNil(t, v.Selected)
	assert.Equal(t, "2026-07-04", v.Selected.Date)
	assert.Len(t, v.Selected.Events, 2)

	require.NotNil(t, v.PendingDelete)
	assert.Equal(t, "Cookout", v.PendingDelete.Title)

	// Jul 1-7: Open (1st), Observed holiday (3rd), Parade, Cookout, Independence Day (4th)
	titles := []string{}
	for _, item := range v.Upcoming {
		titles = append(titles, item.Title())
	}
	assert.Equal(t, []string{"Open", "Independence Day (Observed)", "Parade", "Cookout", "Independence Day"}, titles)
}

func TestBoard_ViewPendingDeleteGone(t *testing.T) {
	b := newTestBoard(t, &fakeClient{})
	b.MarkPendingDelete("missing")

	v, err := b.View(testNow)
	require.NoError(t, err)
	assert.Nil(t, v.PendingDelete)
	assert.Nil(t, v.Selected)
}

func TestBoard_ViewWhileLoading(t *testing.T) {
	client := &fakeClient{release: make(chan struct{})}
	b := NewBoard(client, Options{Year: 2026}, testNow, zap.NewNop())
	done := b.Load(context.Background())

	v, err := b.View(testNow)
	require.NoError(t, err)
	assert.True(t, v.Loading)
	assert.NotEmpty(t, v.Weeks, "grid renders while events load")

	close(client.release)
	<-done
}

package calendar

import (
	"bytes"
	"testing"
	"time"

	ics "github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteICS(t *testing.T) {
	events := []Event{
		{ID: "42", Date: "2026-05-01", Title: "Shift meeting", Description: "Back office", Type: EventTypeBOH},
		{ID: "43", Date: "bad", Title: "Skipped", Type: EventTypeLSM},
	}
	holidays := []Holiday{{Date: "2026-07-04", Name: "Independence Day"}}

	var buf bytes.Buffer
	err := WriteICS(&buf, events, holidays, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	cal, err := ics.NewDecoder(&buf).Decode()
	require.NoError(t, err)

	summaries := map[string]*ics.Component{}
	for _, comp := range cal.Children {
		if comp.Name != ics.CompEvent {
			continue
		}
		summaries[comp.Props.Get(ics.PropSummary).Value] = comp
	}
	require.Len(t, summaries, 2)

	meeting := summaries["Shift meeting"]
	require.NotNil(t, meeting)
	assert.Equal(t, "event-42@team-calendar", meeting.Props.Get(ics.PropUID).Value)
	assert.Equal(t, "20260501", meeting.Props.Get(ics.PropDateTimeStart).Value)
	assert.Equal(t, "20260502", meeting.Props.Get(ics.PropDateTimeEnd).Value)
	assert.Equal(t, "Back office", meeting.Props.Get(ics.PropDescription).Value)
	assert.Equal(t, "BOH", meeting.Props.Get(ics.PropCategories).Value)

	holiday := summaries["Independence Day"]
	require.NotNil(t, holiday)
	assert.Nil(t, holiday.Props.Get(ics.PropDescription))
}

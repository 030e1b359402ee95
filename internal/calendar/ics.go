package calendar

import (
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/emersion/go-ical"

	"github.com/username/team-calendar/pkg/dateutil"
)

// ICSProductID identifies exported calendars
const ICSProductID = "-//Team Calendar//Team Calendar//EN"

// WriteICS encodes holidays and events as all-day VEVENTs.
// Entries with a malformed date are skipped.
func WriteICS(w io.Writer, events []Event, holidays []Holiday, now time.Time) error {
	cal := ics.NewCalendar()
	cal.Props.SetText(ics.PropVersion, "2.0")
	cal.Props.SetText(ics.PropProductID, ICSProductID)

	stamp := now.UTC()

	for i, h := range holidays {
		start, err := dateutil.ParseDate(h.Date, time.UTC)
		if err != nil {
			continue
		}
		comp := allDayEvent(fmt.Sprintf("holiday-%s-%d@team-calendar", h.Date, i), h.Name, start, stamp)
		comp.Props.SetText(ics.PropCategories, strings.ToUpper(string(EventTypeHoliday)))
		cal.Children = append(cal.Children, comp)
	}

	for _, ev := range events {
		start, err := dateutil.ParseDate(ev.Date, time.UTC)
		if err != nil {
			continue
		}
		comp := allDayEvent(fmt.Sprintf("event-%s@team-calendar", ev.ID), ev.Title, start, stamp)
		if ev.Description != "" {
			comp.Props.SetText(ics.PropDescription, ev.Description)
		}
		comp.Props.SetText(ics.PropCategories, strings.ToUpper(string(ev.Type)))
		cal.Children = append(cal.Children, comp)
	}

	if err := ics.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("encode ICS: %w", err)
	}
	return nil
}

func allDayEvent(uid, summary string, start, stamp time.Time) *ics.Component {
	comp := ics.NewComponent(ics.CompEvent)
	comp.Props.SetText(ics.PropUID, uid)
	comp.Props.SetText(ics.PropSummary, summary)
	comp.Props.SetDateTime(ics.PropDateTimeStamp, stamp)
	comp.Props.SetDate(ics.PropDateTimeStart, start)
	comp.Props.SetDate(ics.PropDateTimeEnd, start.AddDate(0, 0, 1))
	return comp
}

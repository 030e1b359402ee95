package calendar

import (
	"sort"
	"time"

	"github.com/username/team-calendar/pkg/dateutil"
)

// DefaultUpcomingDays is the width of the "this week" feed, today included
const DefaultUpcomingDays = 7

// ItemKind tells which source an upcoming item came from
type ItemKind int

const (
	KindEvent ItemKind = iota + 1
	KindHoliday
)

// UpcomingItem is either a stored event or a holiday falling in the feed window
type UpcomingItem struct {
	Kind    ItemKind
	Date    string
	Event   *Event
	Holiday *Holiday
}

// Title returns the display text of the item
func (i UpcomingItem) Title() string {
	if i.Kind == KindEvent && i.Event != nil {
		return i.Event.Title
	}
	if i.Holiday != nil {
		return i.Holiday.Name
	}
	return ""
}

// EventsByDate groups events on exact date string equality, keeping input order per date
func EventsByDate(events []Event) map[string][]Event {
	byDate := make(map[string][]Event)
	for _, ev := range events {
		byDate[ev.Date] = append(byDate[ev.Date], ev)
	}
	return byDate
}

// UpcomingWithinDays merges events and holidays dated today through today+windowDays-1.
// The window is evaluated in today's location. Results ascend by date; on the same date
// events come before holidays, each in source order. windowDays <= 0 means DefaultUpcomingDays.
func UpcomingWithinDays(events []Event, holidays []Holiday, today time.Time, windowDays int) []UpcomingItem {
	if windowDays <= 0 {
		windowDays = DefaultUpcomingDays
	}

	start := dateutil.StartOfDay(today)
	from := dateutil.FormatDate(start)
	to := dateutil.FormatDate(dateutil.AddDays(start, windowDays-1))

	within := func(date string) bool {
		if !dateutil.IsDate(date) {
			return false
		}
		return date >= from && date <= to
	}

	var items []UpcomingItem
	for i := range events {
		if within(events[i].Date) {
			ev := events[i]
			items = append(items, UpcomingItem{Kind: KindEvent, Date: ev.Date, Event: &ev})
		}
	}
	for i := range holidays {
		if within(holidays[i].Date) {
			h := holidays[i]
			items = append(items, UpcomingItem{Kind: KindHoliday, Date: h.Date, Holiday: &h})
		}
	}

	// Stable on (date, kind); events were appended before holidays and each
	// source in its own order, so ties keep source order.
	sort.SliceStable(items, func(a, b int) bool {
		if items[a].Date != items[b].Date {
			return items[a].Date < items[b].Date
		}
		return items[a].Kind < items[b].Kind
	})

	return items
}

package dashboard

import (
	"time"

	"github.com/username/team-calendar/internal/calendar"
	"github.com/username/team-calendar/pkg/dateutil"
)

// Cell is one square of the month grid. Blank cells pad the first and last week.
type Cell struct {
	Day      int
	Date     string
	Blank    bool
	Today    bool
	Selected bool
	Holidays []calendar.Holiday
	Events   []calendar.Event
}

// DayDetail is everything shown for the selected day
type DayDetail struct {
	Date     string
	Holidays []calendar.Holiday
	Events   []calendar.Event
}

// View is an immutable snapshot of a board, ready for rendering
type View struct {
	Year      int
	Month     int
	MonthName string
	Weeks     [][7]Cell

	// Selected is nil when no day is selected
	Selected *DayDetail
	Draft    Draft

	// PendingDelete is the event awaiting confirmation, nil when none is pending or
	// the marked id is no longer cached
	PendingDelete *calendar.Event

	Upcoming []calendar.UpcomingItem
	Loading  bool
}

// View renders the board as of now
func (b *Board) View(now time.Time) (View, error) {
	b.mu.Lock()
	state := b.state
	events := make([]calendar.Event, len(b.events))
	copy(events, b.events)
	loading := b.loading
	b.mu.Unlock()

	year := b.opts.Year
	weeks, err := calendar.MonthMatrix(year, state.Month)
	if err != nil {
		return View{}, err
	}

	byDate := calendar.EventsByDate(events)
	today := dateutil.FormatDate(now)

	v := View{
		Year:      year,
		Month:     state.Month,
		MonthName: calendar.MonthName(state.Month),
		Weeks:     make([][7]Cell, len(weeks)),
		Draft:     state.Draft,
		Upcoming:  calendar.UpcomingWithinDays(events, b.holidays.All(), now, b.opts.UpcomingDays),
		Loading:   loading,
	}

	for w, week := range weeks {
		for d, day := range week {
			if day == 0 {
				v.Weeks[w][d] = Cell{Blank: true}
				continue
			}
			date := calendar.DateString(year, state.Month, day)
			v.Weeks[w][d] = Cell{
				Day:      day,
				Date:     date,
				Today:    date == today,
				Selected: date == state.Selected,
				Holidays: b.holidays.On(date),
				Events:   byDate[date],
			}
		}
	}

	if state.Selected != "" {
		v.Selected = &DayDetail{
			Date:     state.Selected,
			Holidays: b.holidays.On(state.Selected),
			Events:   byDate[state.Selected],
		}
	}

	if state.PendingDelete != "" {
		for i := range events {
			if events[i].ID == state.PendingDelete {
				ev := events[i]
				v.PendingDelete = &ev
				break
			}
		}
	}

	return v, nil
}

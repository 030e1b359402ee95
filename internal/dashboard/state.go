// Package dashboard holds the per-session calendar view: navigation, selection, the
// add-event draft, the two-step delete, and the local cache of shared events.
package dashboard

import (
	"time"

	"github.com/username/team-calendar/internal/calendar"
)

// Draft is the add-event form of the selected day
type Draft struct {
	Title       string
	Description string
	Type        calendar.EventType
}

func emptyDraft() Draft {
	return Draft{Type: calendar.EventTypeLSM}
}

// State is the view state of one calendar session
type State struct {
	// Month is the displayed month index of the board year, 0-11
	Month int

	// Selected is the selected date, or "" for none
	Selected string

	// PendingDelete is the id awaiting confirmation, or "" for none
	PendingDelete string

	Draft Draft
}

// NewState opens on the current month when now falls in year, January otherwise
func NewState(now time.Time, year int) State {
	month := 0
	if now.Year() == year {
		month = int(now.Month()) - 1
	}
	return State{
		Month: month,
		Draft: emptyDraft(),
	}
}

// Prev shows the previous month, wrapping January to December. Clears the selection.
func (s *State) Prev() {
	s.Month = calendar.PrevMonth(s.Month)
	s.Selected = ""
}

// Next shows the next month, wrapping December to January. Clears the selection.
func (s *State) Next() {
	s.Month = calendar.NextMonth(s.Month)
	s.Selected = ""
}

// Toggle selects date, or clears the selection if date is already selected
func (s *State) Toggle(date string) {
	if s.Selected == date {
		s.Selected = ""
		return
	}
	s.Selected = date
}

// MarkPendingDelete records id as awaiting confirmation, replacing any earlier mark
func (s *State) MarkPendingDelete(id string) {
	s.PendingDelete = id
}

// CancelDelete drops the pending mark
func (s *State) CancelDelete() {
	s.PendingDelete = ""
}

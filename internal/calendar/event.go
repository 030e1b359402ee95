// Package calendar holds the date-grid engine, the static holiday table and the
// per-day aggregation of holidays and stored events.
package calendar

import (
	"errors"
	"fmt"
)

// EventType is the closed set of event categories
type EventType string

const (
	EventTypeLSM      EventType = "lsm"
	EventTypeBOH      EventType = "boh"
	EventTypeFOH      EventType = "foh"
	EventTypeVisitor  EventType = "visitor"
	EventTypeHoliday  EventType = "holiday"
	EventTypeBirthday EventType = "birthday"
)

// ErrInvalidType is returned when a string is not one of the known categories
var ErrInvalidType = errors.New("unknown event type")

// EventTypes lists every category in display order
var EventTypes = []EventType{
	EventTypeLSM,
	EventTypeBOH,
	EventTypeFOH,
	EventTypeVisitor,
	EventTypeHoliday,
	EventTypeBirthday,
}

// Valid reports whether t is one of the known categories
func (t EventType) Valid() bool {
	for _, known := range EventTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ParseEventType converts a raw string into an EventType
func ParseEventType(s string) (EventType, error) {
	t := EventType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
	}
	return t, nil
}

// Event is a user-created, dated, categorized record owned by the remote store.
// An empty Description means the store holds no description.
type Event struct {
	ID          string    `json:"id"`
	Date        string    `json:"date"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Type        EventType `json:"type"`
}

// Holiday is a named calendar date from the static table
type Holiday struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

package calendar

import (
	"errors"
	"testing"
)

func TestParseEventType(t *testing.T) {
	for _, known := range EventTypes {
		got, err := ParseEventType(string(known))
		if err != nil || got != known {
			t.Errorf("ParseEventType(%q) = %q, %v", known, got, err)
		}
	}

	for _, bad := range []string{"", "LSM", "meeting"} {
		if _, err := ParseEventType(bad); !errors.Is(err, ErrInvalidType) {
			t.Errorf("ParseEventType(%q) error = %v, want ErrInvalidType", bad, err)
		}
	}
}

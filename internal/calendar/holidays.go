package calendar

// Holidays2026 is the fixed holiday overlay for the 2026 calendar, ascending by date
var Holidays2026 = []Holiday{
	{Date: "2026-01-01", Name: "New Year’s Day"},

	{Date: "2026-01-19", Name: "Martin Luther King Jr. Day"},
	{Date: "2026-02-14", Name: "Valentine's Day"},
	{Date: "2026-02-16", Name: "Presidents’ Day"},
	{Date: "2026-03-17", Name: "St. Patrick's Day"},
	{Date: "2026-04-05", Name: "Easter Sunday"},

	{Date: "2026-05-10", Name: "Mother's Day"},
	{Date: "2026-05-25", Name: "Memorial Day"},
	{Date: "2026-06-21", Name: "Father's Day"},
	{Date: "2026-07-03", Name: "Independence Day (Observed)"},
	{Date: "2026-07-04", Name: "Independence Day"},

	{Date: "2026-09-07", Name: "Labor Day"},
	{Date: "2026-10-12", Name: "Columbus Day"},
	{Date: "2026-10-31", Name: "Halloween"},
	{Date: "2026-11-11", Name: "Veterans Day"},
	{Date: "2026-11-26", Name: "Thanksgiving Day"},
	{Date: "2026-12-25", Name: "Christmas Day"},
	{Date: "2026-12-31", Name: "New Year’s Eve"},
}

// HolidayTable is a read-only index over an ascending holiday list
type HolidayTable struct {
	all    []Holiday
	byDate map[string][]Holiday
}

// NewHolidayTable groups holidays by exact date string. holidays must already be ascending.
func NewHolidayTable(holidays []Holiday) *HolidayTable {
	byDate := make(map[string][]Holiday, len(holidays))
	for _, h := range holidays {
		byDate[h.Date] = append(byDate[h.Date], h)
	}

	all := make([]Holiday, len(holidays))
	copy(all, holidays)

	return &HolidayTable{
		all:    all,
		byDate: byDate,
	}
}

// DefaultHolidays is the table built from Holidays2026
var DefaultHolidays = NewHolidayTable(Holidays2026)

// On returns the holidays on date, or an empty slice if there are none
func (t *HolidayTable) On(date string) []Holiday {
	found := t.byDate[date]
	out := make([]Holiday, len(found))
	copy(out, found)
	return out
}

// All returns the full ascending list
func (t *HolidayTable) All() []Holiday {
	out := make([]Holiday, len(t.all))
	copy(out, t.all)
	return out
}

// Between returns holidays with from <= date <= to
func (t *HolidayTable) Between(from, to string) []Holiday {
	var out []Holiday
	for _, h := range t.all {
		if h.Date < from {
			continue
		}
		if h.Date > to {
			break
		}
		out = append(out, h)
	}
	return out
}

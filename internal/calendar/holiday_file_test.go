package calendar

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseHolidays(t *testing.T) {
	input := `# store closures
2026-12-25 Christmas Day
2026-11-26   Thanksgiving Day

not-a-date Something
2026-11-26 Staff dinner
2026-02-30 Bad day
2026-01-01
`
	holidays, err := ParseHolidays(strings.NewReader(input), zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, []Holiday{
		{Date: "2026-11-26", Name: "Thanksgiving Day"},
		{Date: "2026-11-26", Name: "Staff dinner"},
		{Date: "2026-12-25", Name: "Christmas Day"},
	}, holidays)
}

func TestLoadHolidayFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "holidays.txt")
	body := "2026-08-14 Store Anniversary\n2026-07-04 Cookout\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	table, err := LoadHolidayFile(path, DefaultHolidays, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, []Holiday{{Date: "2026-08-14", Name: "Store Anniversary"}}, table.On("2026-08-14"))
	assert.Equal(t, []Holiday{
		{Date: "2026-07-04", Name: "Independence Day"},
		{Date: "2026-07-04", Name: "Cookout"},
	}, table.On("2026-07-04"))
	assert.Empty(t, table.On("2026-07-05"))

	all := table.All()
	require.Len(t, all, len(Holidays2026)+2)
	for i := 1; i < len(all); i++ {
		assert.LessOrEqual(t, all[i-1].Date, all[i].Date, "holiday %d out of order", i)
	}

	// the base table is left untouched
	assert.Len(t, DefaultHolidays.All(), len(Holidays2026))
}

func TestLoadHolidayFile_Missing(t *testing.T) {
	_, err := LoadHolidayFile(filepath.Join(t.TempDir(), "nope.txt"), DefaultHolidays, zap.NewNop())
	assert.Error(t, err)
}

package calendar

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/username/team-calendar/pkg/dateutil"
)

// LoadHolidayFile reads extra holidays from a local text file and merges them
// over base. Entries sharing a date keep base entries first.
//
// Format, one holiday per line:
//
//	# comment
//	2026-07-04 Independence Day
//
// Malformed lines are logged and skipped.
func LoadHolidayFile(path string, base *HolidayTable, logger *zap.Logger) (*HolidayTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open holiday file: %w", err)
	}
	defer file.Close()

	holidays, err := ParseHolidays(file, logger)
	if err != nil {
		return nil, fmt.Errorf("error reading holiday file %s: %w", path, err)
	}

	merged := append(base.All(), holidays...)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Date < merged[j].Date
	})

	logger.Info("Holiday file loaded",
		zap.String("file", path),
		zap.Int("holidays", len(holidays)),
		zap.Int("total", len(merged)))

	return NewHolidayTable(merged), nil
}

// ParseHolidays parses the holiday file format and returns the entries ascending by date.
// Entries sharing a date keep their file order.
func ParseHolidays(r io.Reader, logger *zap.Logger) ([]Holiday, error) {
	var holidays []Holiday

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, " ", 2)
		if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
			logger.Warn("Invalid holiday line", zap.Int("line", lineNo), zap.String("text", line))
			continue
		}

		if !dateutil.IsDate(parts[0]) {
			logger.Warn("Failed to parse holiday date", zap.Int("line", lineNo), zap.String("date", parts[0]))
			continue
		}

		holidays = append(holidays, Holiday{
			Date: parts[0],
			Name: strings.TrimSpace(parts[1]),
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(holidays, func(i, j int) bool {
		return holidays[i].Date < holidays[j].Date
	})

	return holidays, nil
}

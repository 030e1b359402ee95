package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/username/team-calendar/internal/calendar"
	"github.com/username/team-calendar/pkg/dateutil"
)

func monthCmd() *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "month [1-12]",
		Short: "Print a month grid with holidays",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if year == 0 {
				year = cfg.Calendar.Year
			}

			monthIndex := 0
			if now := time.Now(); now.Year() == year {
				monthIndex = int(now.Month()) - 1
			}
			if len(args) == 1 {
				m, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid month %q: %w", args[0], err)
				}
				monthIndex = m - 1
			}

			holidays, err := loadHolidays(cfg)
			if err != nil {
				return err
			}

			return printMonth(year, monthIndex, holidays)
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "Calendar year (default: calendar.year)")

	return cmd
}

// printMonth renders a Sunday-first grid; days with a holiday are starred
func printMonth(year, monthIndex int, holidays *calendar.HolidayTable) error {
	weeks, err := calendar.MonthMatrix(year, monthIndex)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("%s %d", calendar.MonthName(monthIndex), year)
	fmt.Fprintf(out, "%*s\n", (28+len(title))/2, title)
	fmt.Fprintln(out, " Su  Mo  Tu  We  Th  Fr  Sa")

	var marked []calendar.Holiday
	for _, week := range weeks {
		var line strings.Builder
		for _, day := range week {
			if day == 0 {
				line.WriteString("    ")
				continue
			}
			date := calendar.DateString(year, monthIndex, day)
			mark := " "
			if found := holidays.On(date); len(found) > 0 {
				mark = "*"
				marked = append(marked, found...)
			}
			fmt.Fprintf(&line, " %2d%s", day, mark)
		}
		fmt.Fprintln(out, strings.TrimRight(line.String(), " "))
	}

	if len(marked) > 0 {
		fmt.Fprintln(out)
		for _, h := range marked {
			fmt.Fprintf(out, "* %s  %s\n", h.Date, h.Name)
		}
	}
	return nil
}

func holidaysCmd() *cobra.Command {
	var month int

	cmd := &cobra.Command{
		Use:   "holidays",
		Short: "List the holiday table",
		RunE: func(cmd *cobra.Command, args []string) error {
			holidays, err := loadHolidays(cfg)
			if err != nil {
				return err
			}

			list := holidays.All()
			if month != 0 {
				if month < 1 || month > 12 {
					return fmt.Errorf("%w: %d", calendar.ErrMonthOutOfRange, month)
				}
				year := cfg.Calendar.Year
				last, _ := calendar.DaysInMonth(year, month-1)
				list = holidays.Between(calendar.DateString(year, month-1, 1), calendar.DateString(year, month-1, last))
			}

			for _, h := range list {
				fmt.Fprintf(out, "%s  %s\n", h.Date, h.Name)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&month, "month", 0, "Only this month (1-12)")

	return cmd
}

func upcomingCmd() *cobra.Command {
	var days int
	var from string
	var email, password string

	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "List events and holidays of the coming days",
		RunE: func(cmd *cobra.Command, args []string) error {
			if days == 0 {
				days = cfg.Calendar.UpcomingDays
			}

			today := dateutil.Today()
			if from != "" {
				var err error
				if today, err = dateutil.ParseDate(from, time.Local); err != nil {
					return err
				}
			}

			holidays, err := loadHolidays(cfg)
			if err != nil {
				return err
			}

			b := newBackend(cfg)
			ctx, _, err := signIn(context.Background(), b, email, password)
			if err != nil {
				return err
			}

			window := days
			if window <= 0 {
				window = calendar.DefaultUpcomingDays
			}
			events := b.events.List(ctx,
				dateutil.FormatDate(today),
				dateutil.FormatDate(dateutil.AddDays(today, window-1)))

			items := calendar.UpcomingWithinDays(events, holidays.All(), today, days)
			if len(items) == 0 {
				fmt.Fprintln(out, "Nothing scheduled.")
				return nil
			}
			for _, item := range items {
				kind := "holiday"
				if item.Kind == calendar.KindEvent {
					kind = string(item.Event.Type)
				}
				fmt.Fprintf(out, "%s  %-8s  %s\n", item.Date, kind, item.Title())
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "Window width in days, today included (default: calendar.upcoming_days)")
	cmd.Flags().StringVar(&from, "from", "", "First day of the window, YYYY-MM-DD (default: today)")
	addCredentialFlags(cmd, &email, &password)

	return cmd
}

func exportCmd() *cobra.Command {
	var output string
	var email, password string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the year's events and holidays as an iCalendar file",
		RunE: func(cmd *cobra.Command, args []string) error {
			holidays, err := loadHolidays(cfg)
			if err != nil {
				return err
			}

			b := newBackend(cfg)
			ctx, _, err := signIn(context.Background(), b, email, password)
			if err != nil {
				return err
			}

			year := cfg.Calendar.Year
			events := b.events.List(ctx, calendar.DateString(year, 0, 1), calendar.DateString(year, 11, 31))

			w := out
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}

			if err := calendar.WriteICS(w, events, holidays.All(), time.Now()); err != nil {
				return err
			}

			if output != "" && output != "-" {
				fmt.Fprintf(os.Stderr, "Wrote %d events and %d holidays to %s\n", len(events), len(holidays.All()), output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	addCredentialFlags(cmd, &email, &password)

	return cmd
}

func addCredentialFlags(cmd *cobra.Command, email, password *string) {
	cmd.Flags().StringVar(email, "email", "", "Sign in as this user before reading or writing events")
	cmd.Flags().StringVar(password, "password", "", "Password for --email (default: $TEAM_CALENDAR_PASSWORD)")
}

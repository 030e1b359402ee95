package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/username/team-calendar/internal/calendar"
	"github.com/username/team-calendar/internal/store"
)

func eventsCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List, add, or remove shared events",
	}

	cmd.PersistentFlags().StringVar(&email, "email", "", "Sign in as this user before reading or writing events")
	cmd.PersistentFlags().StringVar(&password, "password", "", "Password for --email (default: $TEAM_CALENDAR_PASSWORD)")

	cmd.AddCommand(eventsListCmd(&email, &password))
	cmd.AddCommand(eventsAddCmd(&email, &password))
	cmd.AddCommand(eventsRemoveCmd(&email, &password))

	return cmd
}

func eventsListCmd(email, password *string) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List events in a date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			year := cfg.Calendar.Year
			if from == "" {
				from = calendar.DateString(year, 0, 1)
			}
			if to == "" {
				to = calendar.DateString(year, 11, 31)
			}

			b := newBackend(cfg)
			ctx, _, err := signIn(context.Background(), b, *email, *password)
			if err != nil {
				return err
			}

			events := b.events.List(ctx, from, to)
			for _, ev := range events {
				fmt.Fprintf(out, "%s  %-8s  %s  [%s]\n", ev.Date, ev.Type, ev.Title, ev.ID)
				if ev.Description != "" {
					fmt.Fprintf(out, "            %s\n", ev.Description)
				}
			}
			fmt.Fprintf(out, "%d event(s)\n", len(events))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "First date, YYYY-MM-DD (default: Jan 1 of calendar.year)")
	cmd.Flags().StringVar(&to, "to", "", "Last date, YYYY-MM-DD (default: Dec 31 of calendar.year)")

	return cmd
}

func eventsAddCmd(email, password *string) *cobra.Command {
	var description, typ string

	cmd := &cobra.Command{
		Use:   "add <date> <title>",
		Short: "Add an event",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			eventType, err := calendar.ParseEventType(typ)
			if err != nil {
				return err
			}

			b := newBackend(cfg)
			ctx, session, err := signIn(context.Background(), b, *email, *password)
			if err != nil {
				return err
			}

			in := store.EventInput{
				Date:        args[0],
				Title:       args[1],
				Description: description,
				Type:        eventType,
			}
			if session != nil {
				in.CreatedBy = session.User.ID
			}

			ev, err := b.events.Insert(ctx, in)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Added %s  %s  %s  [%s]\n", ev.Date, ev.Type, ev.Title, ev.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Optional description")
	cmd.Flags().StringVarP(&typ, "type", "t", string(calendar.EventTypeLSM), "Event type: lsm, boh, foh, visitor, holiday, birthday")

	return cmd
}

func eventsRemoveCmd(email, password *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove an event by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b := newBackend(cfg)
			ctx, _, err := signIn(context.Background(), b, *email, *password)
			if err != nil {
				return err
			}

			if err := b.events.Delete(ctx, args[0]); err != nil {
				return err
			}

			fmt.Fprintf(out, "Removed %s\n", args[0])
			return nil
		},
	}

	return cmd
}

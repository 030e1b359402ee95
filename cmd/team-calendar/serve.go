package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/username/team-calendar/internal/daemon"
	"github.com/username/team-calendar/internal/web"
)

func serveCmd() *cobra.Command {
	var addr string
	var sweepInterval time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = cfg.Server.Addr
			}

			holidays, err := loadHolidays(cfg)
			if err != nil {
				return err
			}

			b := newBackend(cfg)
			server, err := web.NewServer(web.Options{
				Year:          cfg.Calendar.Year,
				UpcomingDays:  cfg.Calendar.UpcomingDays,
				Holidays:      holidays,
				SessionTTL:    cfg.Server.GetSessionTTL(),
				SecureCookies: cfg.Server.SecureCookies,
				CSRFKey:       []byte(cfg.Server.CSRFKey),
				Title:         cfg.Layout.Title,
				Subtitle:      cfg.Layout.Subtitle,
				BuildDate:     buildDate,
			}, b.provider, b.events, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Info("Starting dashboard",
				zap.String("addr", addr),
				zap.String("backend", cfg.Backend),
				zap.Int("year", cfg.Calendar.Year),
				zap.Bool("csrf", cfg.Server.CSRFKey != ""))

			d := daemon.NewDaemon(addr, server.Handler(), server, sweepInterval, logger)
			return d.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: server.addr)")
	cmd.Flags().DurationVar(&sweepInterval, "sweep-interval", 5*time.Minute, "How often idle sessions are evicted")

	return cmd
}

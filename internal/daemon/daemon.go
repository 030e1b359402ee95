// Package daemon runs the dashboard process: the HTTP server and the session
// janitor, until the context is cancelled.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultSweepInterval   = 5 * time.Minute
	defaultShutdownTimeout = 10 * time.Second
)

// Sweeper evicts expired state and reports how many entries it removed
type Sweeper interface {
	Sweep(now time.Time) int
}

// Daemon represents the server process
type Daemon struct {
	server          *http.Server
	sweeper         Sweeper
	sweepInterval   time.Duration
	shutdownTimeout time.Duration
	logger          *zap.Logger
}

// NewDaemon creates a daemon serving handler on addr. A zero sweepInterval means 5m.
func NewDaemon(addr string, handler http.Handler, sweeper Sweeper, sweepInterval time.Duration, logger *zap.Logger) *Daemon {
	if sweepInterval <= 0 {
		sweepInterval = defaultSweepInterval
	}

	return &Daemon{
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		sweeper:         sweeper,
		sweepInterval:   sweepInterval,
		shutdownTimeout: defaultShutdownTimeout,
		logger:          logger,
	}
}

// Run listens on the configured address and serves until ctx is cancelled
func (d *Daemon) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", d.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", d.server.Addr, err)
	}
	return d.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts the server down gracefully
func (d *Daemon) Serve(ctx context.Context, ln net.Listener) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		d.logger.Info("Daemon started",
			zap.String("addr", ln.Addr().String()),
			zap.Duration("sweep_interval", d.sweepInterval))

		if err := d.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		d.runJanitor(ctx)
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		d.logger.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), d.shutdownTimeout)
		defer cancel()
		if err := d.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		return nil
	})

	err := g.Wait()
	d.logger.Info("Daemon stopped")
	return err
}

// runJanitor sweeps on a ticker until ctx is done
func (d *Daemon) runJanitor(ctx context.Context) {
	ticker := time.NewTicker(d.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case now := <-ticker.C:
			if removed := d.sweeper.Sweep(now); removed > 0 {
				d.logger.Info("Expired sessions removed", zap.Int("count", removed))
			}
		}
	}
}

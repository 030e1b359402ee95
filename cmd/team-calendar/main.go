package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/username/team-calendar/internal/auth"
	"github.com/username/team-calendar/internal/calendar"
	"github.com/username/team-calendar/internal/config"
	"github.com/username/team-calendar/internal/store"
	"github.com/username/team-calendar/internal/supabase"
)

// buildDate is set at link time: -ldflags "-X main.buildDate=2026-01-15"
var buildDate string

var (
	configPath string
	cfg        *config.Config
	logger     *zap.Logger
	out        io.Writer = os.Stdout
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "team-calendar",
		Short:         "Team shift calendar",
		Long:          "Shared shift and store-event calendar with holiday overlays, backed by Supabase",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				initLogger()
				return err
			}

			if cfg.Log.File != "" {
				logger, err = initFileLogger(cfg.Log.File, cfg.Log.Level)
				if err != nil {
					initLogger() // Fallback to console
				}
			} else {
				initLogger() // Default console logger
			}

			for _, w := range cfg.Warnings() {
				logger.Warn(w)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (default: search ., $HOME/.team-calendar, /etc/team-calendar)")

	root.AddCommand(serveCmd())
	root.AddCommand(monthCmd())
	root.AddCommand(holidaysCmd())
	root.AddCommand(upcomingCmd())
	root.AddCommand(eventsCmd())
	root.AddCommand(exportCmd())

	return root
}

// backend is the storage handle shared by every consumer, built once per process
type backend struct {
	provider auth.Provider
	events   *store.Client
}

func newBackend(cfg *config.Config) *backend {
	var (
		provider auth.Provider
		table    store.Table
	)

	switch cfg.Backend {
	case config.BackendMemory:
		logger.Warn("Using the in-memory backend; accounts and events are lost on exit")
		provider = auth.NewMemoryProvider(logger)
		table = store.NewMemoryTable()
	default:
		client := supabase.NewClient(cfg.Supabase.URL, cfg.Supabase.AnonKey, cfg.Supabase.GetTimeout(), logger)
		provider = supabase.NewAuth(client)
		table = supabase.NewEventsTable(client)
	}

	return &backend{
		provider: provider,
		events:   store.NewClient(table, logger),
	}
}

func loadHolidays(cfg *config.Config) (*calendar.HolidayTable, error) {
	if cfg.Calendar.HolidaysFile == "" {
		return calendar.DefaultHolidays, nil
	}
	return calendar.LoadHolidayFile(cfg.Calendar.HolidaysFile, calendar.DefaultHolidays, logger)
}

// signIn attaches a user session to ctx when credentials are given, so row-level
// security sees the user instead of the anonymous role
func signIn(ctx context.Context, b *backend, email, password string) (context.Context, *auth.Session, error) {
	if email == "" {
		return ctx, nil, nil
	}
	if password == "" {
		password = os.Getenv("TEAM_CALENDAR_PASSWORD")
	}

	session, err := b.provider.SignIn(ctx, email, password)
	if err != nil {
		return ctx, nil, fmt.Errorf("failed to sign in as %s: %w", email, err)
	}
	return auth.WithAccessToken(ctx, session.AccessToken), session, nil
}

func initLogger() {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var err error
	logger, err = config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
}

func initFileLogger(logFile string, level string) (*zap.Logger, error) {
	// Setup lumberjack for log rotation
	logWriter := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    100,  // MB
		MaxBackups: 3,    // Keep max 3 old log files
		MaxAge:     28,   // days
		Compress:   true, // Compress old logs with gzip
	}

	// Setup encoder
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	// Parse log level
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(logWriter),
		zapLevel,
	)

	return zap.New(core), nil
}

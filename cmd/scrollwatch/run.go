package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/goodtune/scrollwatch/internal/config"
	"github.com/goodtune/scrollwatch/internal/journal"
	"github.com/goodtune/scrollwatch/internal/metrics"
	"github.com/goodtune/scrollwatch/internal/notify"
	"github.com/goodtune/scrollwatch/internal/systemd"
	"github.com/goodtune/scrollwatch/internal/tracker"
	"github.com/goodtune/scrollwatch/internal/window"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start tracking screen time",
	Long: `Start the tracker loop: poll the active window title, accumulate per-site
usage, and nudge as budgets run down. Stops on SIGINT or SIGTERM and prints
the day's summary on the way out.`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfgPath := resolveConfigPath()

	// Load configuration
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Setup logger
	logger := setupLogger(cfg.Logging)
	log.Logger = logger

	logger.Info().
		Str("version", version).
		Str("config", cfgPath).
		Msg("Starting scrollwatch")

	for _, warning := range cfg.Warnings() {
		logger.Warn().Msg(warning)
	}

	// Check for systemd socket activation
	sdListeners, err := systemd.GetListeners()
	if err != nil {
		return fmt.Errorf("failed to get systemd listeners: %w", err)
	}
	if sdListeners.Activated {
		logger.Info().Msg("Running with systemd socket activation")
	}

	// Initialize Metrics Server (if enabled)
	var metricsServer *metrics.Server
	if cfg.Metrics.Enabled {
		metricsServer = metrics.NewServer(cfg.Metrics.Listen, logger)

		// Use systemd socket-activated listener if available
		if sdListeners.Activated && sdListeners.Metrics != nil {
			metricsServer.SetListener(sdListeners.Metrics)
		}

		if err := metricsServer.Start(); err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}

		logger.Info().
			Str("addr", cfg.Metrics.Listen).
			Msg("Metrics server started")
	}

	// Initialize event sinks
	var sinks tracker.MultiSink

	var recorder *journal.Recorder
	if cfg.Journal.Enabled {
		recorder, err = journal.NewRecorder(cfg.Journal.Dir, logger)
		if err != nil {
			return fmt.Errorf("failed to open journal: %w", err)
		}
		defer recorder.Close()
		sinks = append(sinks, recorder)

		logger.Info().
			Str("dir", cfg.Journal.Dir).
			Msg("Journal opened")
	}

	var dispatcher *notify.Dispatcher
	if cfg.Notifications.Enabled {
		notifier, err := notify.NewNotifier(cfg.Notifications.Backend, cfg.Notifications.AppName, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize notifications: %w", err)
		}
		limiter := notify.NewTokenBucket(
			cfg.Notifications.RateLimit,
			parseDuration(cfg.Notifications.RateWindow, time.Minute),
		)
		dispatcher = notify.NewDispatcher(notifier, limiter, logger)
		sinks = append(sinks, dispatcher)

		logger.Info().
			Str("backend", cfg.Notifications.Backend).
			Msg("Notifications initialized")
	}

	// Initialize window sampler
	sampler := window.New(logger)
	if err := sampler.Available(); err != nil {
		logger.Warn().Err(err).Msg("Window title queries may fail on this host")
	}

	// Initialize Usage Tracker
	usageTracker, err := tracker.New(
		tracker.Config{
			Limits:    siteLimits(cfg),
			CacheSize: cfg.Tracker.CacheSize,
		},
		sampler,
		sinks,
		logger,
	)
	if err != nil {
		return fmt.Errorf("failed to initialize tracker: %w", err)
	}

	logger.Info().
		Int("sites", len(cfg.TrackedSites)).
		Str("poll_interval", cfg.Tracker.PollInterval).
		Msg("Usage tracker initialized")

	// Notify systemd that we're ready
	if systemd.IsSystemdService() {
		logger.Info().Msg("Running under systemd supervision")
	}
	if err := systemd.NotifyReady(); err != nil {
		logger.Warn().Err(err).Msg("Failed to send systemd ready notification")
	}

	// Run until interrupted
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Pet the watchdog when the unit configures one
	if interval := systemd.WatchdogInterval(); interval > 0 {
		logger.Info().Dur("interval", interval).Msg("Systemd watchdog enabled")
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if err := systemd.NotifyWatchdog(); err != nil {
						logger.Warn().Err(err).Msg("Failed to pet systemd watchdog")
					}
				}
			}
		}()
	}

	pollInterval := parseDuration(cfg.Tracker.PollInterval, 2*time.Second)
	if err := usageTracker.Run(ctx, pollInterval); err != nil {
		return fmt.Errorf("tracker stopped: %w", err)
	}

	logger.Info().Msg("Shutdown signal received, gracefully stopping...")

	// Notify systemd that we're stopping
	if err := systemd.NotifyStopping(); err != nil {
		logger.Warn().Err(err).Msg("Failed to send systemd stopping notification")
	}

	// Final summary goes to the terminal, the notifier and the journal.
	day := usageTracker.CurrentDay()
	summary := usageTracker.Summary()

	printSummary(day, summary)
	if dispatcher != nil {
		dispatcher.Summary(day, summary)
	}
	if recorder != nil {
		recorder.WriteSummary(day, time.Now(), summary)
	}

	if metricsServer != nil {
		if err := metricsServer.Stop(); err != nil {
			logger.Error().Err(err).Msg("Error stopping metrics server")
		}
	}

	logger.Info().Msg("Scrollwatch stopped")

	return nil
}

// siteLimits converts configured per-site minutes into tracker durations.
func siteLimits(cfg *config.Config) map[string]tracker.SiteLimit {
	limits := make(map[string]tracker.SiteLimit, len(cfg.TrackedSites))
	for domain, site := range cfg.TrackedSites {
		limits[domain] = tracker.SiteLimit{
			DailyLimit:    time.Duration(site.DailyLimit) * time.Minute,
			NudgeInterval: time.Duration(site.NudgeInterval) * time.Minute,
		}
	}
	return limits
}

// printSummary renders the end-of-run usage table, heaviest first.
func printSummary(day string, rows []tracker.SiteSummary) {
	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed, color.Bold)

	fmt.Println()
	cyan.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	cyan.Printf("SCREEN TIME FOR %s\n", day)
	cyan.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()

	if len(rows) == 0 {
		green.Println("No tracked screen time today.")
		fmt.Println()
		return
	}

	for _, row := range rows {
		line := fmt.Sprintf("%-24s %4d/%4d min (%3.0f%%)",
			row.Site, int(row.Used.Minutes()), int(row.Limit.Minutes()), row.Percent)
		if row.OverLimit {
			red.Printf("%s  OVER LIMIT\n", line)
		} else {
			green.Println(line)
		}
	}
	fmt.Println()
}

// setupLogger configures the logger based on configuration
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch cfg.Level {
	case "trace":
		level = zerolog.TraceLevel
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Set output format
	if cfg.Format == "json" {
		return zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	// Default to human-readable console output
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
}

// parseDuration parses a duration string with a fallback
func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

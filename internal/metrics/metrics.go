package metrics

import (
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	// Poll loop metrics
	TicksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scrollwatch_ticks_total",
			Help: "Total poll loop iterations",
		},
	)

	SampleFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scrollwatch_sample_failures_total",
			Help: "Window title samples that failed",
		},
	)

	SampleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scrollwatch_sample_duration_seconds",
			Help:    "Window title query duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	// Usage metrics
	UsageSecondsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scrollwatch_usage_seconds_total",
			Help: "Total seconds attributed to tracked sites",
		},
		[]string{"site"},
	)

	EventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scrollwatch_events_total",
			Help: "Tracker events emitted",
		},
		[]string{"site", "kind"},
	)

	DayRolloversTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scrollwatch_day_rollovers_total",
			Help: "Daily counter resets performed",
		},
	)

	// Notification metrics
	NotificationsSentTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scrollwatch_notifications_sent_total",
			Help: "Desktop notifications delivered",
		},
	)

	NotificationFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scrollwatch_notification_failures_total",
			Help: "Desktop notifications that failed to deliver",
		},
	)

	NotificationsSuppressedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scrollwatch_notifications_suppressed_total",
			Help: "Notifications dropped by the rate limiter",
		},
	)

	// Journal metrics
	JournalWriteFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scrollwatch_journal_write_failures_total",
			Help: "Journal appends that failed",
		},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(
		TicksTotal,
		SampleFailuresTotal,
		SampleDuration,
		UsageSecondsTotal,
		EventsTotal,
		DayRolloversTotal,
		NotificationsSentTotal,
		NotificationFailuresTotal,
		NotificationsSuppressedTotal,
		JournalWriteFailuresTotal,
	)
}

// Server is the metrics HTTP server
type Server struct {
	server   *http.Server
	logger   zerolog.Logger
	listener net.Listener // Optional pre-created listener (for systemd socket activation)
}

// NewServer creates a new metrics server
func NewServer(addr string, logger zerolog.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return &Server{
		server: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
		logger: logger.With().Str("component", "metrics").Logger(),
	}
}

// SetListener sets a pre-created listener for systemd socket activation
func (s *Server) SetListener(ln net.Listener) {
	s.listener = ln
}

// Start starts the metrics server
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("Starting metrics server")
	go func() {
		var err error
		if s.listener != nil {
			// Use systemd socket-activated listener
			s.logger.Debug().Msg("Using systemd socket-activated metrics listener")
			err = s.server.Serve(s.listener)
		} else {
			// Create and bind listener ourselves
			err = s.server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("Metrics server error")
		}
	}()
	return nil
}

// Stop stops the metrics server
func (s *Server) Stop() error {
	s.logger.Info().Msg("Stopping metrics server")
	return s.server.Close()
}

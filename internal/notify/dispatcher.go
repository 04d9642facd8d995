package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/goodtune/scrollwatch/internal/metrics"
	"github.com/goodtune/scrollwatch/internal/tracker"
)

// lowTimeThreshold is where a nudge stops being friendly and starts
// warning about the budget running out.
const lowTimeThreshold = 10 * time.Minute

// Dispatcher turns tracker events into notifications. It implements
// tracker.Sink and never reports failure upstream, the tracker has already
// recorded the crossing by the time the event reaches us.
type Dispatcher struct {
	notifier Notifier
	limiter  *TokenBucket
	logger   zerolog.Logger
}

// NewDispatcher wires a notifier behind an optional rate limiter.
func NewDispatcher(notifier Notifier, limiter *TokenBucket, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		notifier: notifier,
		limiter:  limiter,
		logger:   logger.With().Str("component", "notify").Logger(),
	}
}

func (d *Dispatcher) HandleEvent(e tracker.Event) {
	n, ok := d.compose(e)
	if !ok {
		return
	}
	d.deliver(n)
}

// Summary sends the usage table for day as one notification, the shutdown
// counterpart of the rollover summary.
func (d *Dispatcher) Summary(day string, rows []tracker.SiteSummary) {
	body := renderSummary(rows)
	if body == "" {
		body = "No tracked screen time today."
	}
	d.deliver(Notification{
		Title:   "Screen time for " + day,
		Message: body,
	})
}

func (d *Dispatcher) deliver(n Notification) {
	if d.limiter != nil && !d.limiter.Allow() {
		metrics.NotificationsSuppressedTotal.Inc()
		d.logger.Debug().
			Str("title", n.Title).
			Msg("Notification suppressed by rate limit")
		return
	}

	if err := d.notifier.Send(n); err != nil {
		metrics.NotificationFailuresTotal.Inc()
		d.logger.Warn().
			Err(err).
			Str("title", n.Title).
			Msg("Failed to deliver notification")
		return
	}
	metrics.NotificationsSentTotal.Inc()
}

func (d *Dispatcher) compose(e tracker.Event) (Notification, bool) {
	switch e.Kind {
	case tracker.EventNudge:
		return composeNudge(e), true

	case tracker.EventLimitExceeded:
		return Notification{
			Title: "Time's up on " + e.Site,
			Message: fmt.Sprintf(
				"Daily limit reached for %s. You've spent %d of %d minutes today. Time to get back to work.",
				e.Site, wholeMinutes(e.Used), wholeMinutes(e.Limit)),
			Urgent: true,
		}, true

	case tracker.EventDayRollover:
		if len(e.Summary) == 0 {
			return Notification{}, false
		}
		return Notification{
			Title:   "Screen time for " + e.Day,
			Message: renderSummary(e.Summary),
		}, true

	default:
		// Session bookkeeping goes to the journal, not the desktop.
		return Notification{}, false
	}
}

// composeNudge picks the wording by how much budget is left, urgent once
// the budget is spent or nearly so.
func composeNudge(e tracker.Event) Notification {
	used := wholeMinutes(e.Used)
	left := wholeMinutes(e.Remaining)

	switch {
	case e.Remaining <= 0:
		return Notification{
			Title: "Over the limit on " + e.Site,
			Message: fmt.Sprintf(
				"You've exceeded your daily limit on %s. Time today: %d minutes, limit %d. Maybe it's time for a break?",
				e.Site, used, wholeMinutes(e.Limit)),
			Urgent: true,
		}
	case e.Remaining <= lowTimeThreshold:
		return Notification{
			Title: "Running low on " + e.Site,
			Message: fmt.Sprintf(
				"Only %d minutes left of your %d minute budget for %s today.",
				left, wholeMinutes(e.Limit), e.Site),
			Urgent: true,
		}
	default:
		return Notification{
			Title: "Friendly reminder",
			Message: fmt.Sprintf(
				"You've spent %d minutes on %s today. %d minutes left.",
				used, e.Site, left),
		}
	}
}

func renderSummary(rows []tracker.SiteSummary) string {
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		line := fmt.Sprintf("%s: %d/%d min", row.Site, wholeMinutes(row.Used), wholeMinutes(row.Limit))
		if row.OverLimit {
			line += " (over limit)"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func wholeMinutes(d time.Duration) int {
	return int(d.Minutes())
}

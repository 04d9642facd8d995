package tracker

import (
	"context"
	"time"
)

// Sample is one poll of the active desktop window.
type Sample struct {
	Title string
	Time  time.Time
}

// SiteLimit is the per-site daily budget the Tracker enforces.
type SiteLimit struct {
	DailyLimit    time.Duration // total allowed per day
	NudgeInterval time.Duration // spacing between reminder nudges
}

// Sampler supplies the title of the currently focused window. A failure is
// transient by definition; the poll loop treats it as an empty title and
// keeps going.
type Sampler interface {
	Title(ctx context.Context) (string, error)
}

// EventKind identifies the threshold or transition an Event reports.
type EventKind string

const (
	EventNudge         EventKind = "nudge"
	EventLimitExceeded EventKind = "limit_exceeded"
	EventSessionStart  EventKind = "session_start"
	EventSessionEnd    EventKind = "session_end"
	EventDayRollover   EventKind = "day_rollover"
)

// Event is emitted when usage crosses a configured threshold or the focused
// site changes. The Tracker never renders user-facing text; consumers format
// events however they need.
type Event struct {
	Kind      EventKind
	Site      string
	Used      time.Duration // accumulated usage today for Site
	Limit     time.Duration // configured daily limit for Site
	Remaining time.Duration // Limit minus Used, floored at zero
	At        time.Time

	// Session events only.
	SessionID    string
	SessionStart time.Time

	// Day rollover events only: the day being closed and its final summary.
	Day     string
	Summary []SiteSummary
}

// Sink consumes tracker events. Delivery happens inline on the poll loop, so
// implementations must not block for long and must swallow their own errors.
type Sink interface {
	HandleEvent(e Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Event)

// HandleEvent calls f(e).
func (f SinkFunc) HandleEvent(e Event) { f(e) }

// MultiSink fans one event out to several sinks in order.
type MultiSink []Sink

// HandleEvent delivers e to every sink.
func (m MultiSink) HandleEvent(e Event) {
	for _, s := range m {
		s.HandleEvent(e)
	}
}

// SiteSummary is one row of the daily usage report.
type SiteSummary struct {
	Site      string
	Used      time.Duration
	Limit     time.Duration
	Percent   float64
	OverLimit bool
}

// UsageStats is a point-in-time usage snapshot for one site.
type UsageStats struct {
	TodayUsage     time.Duration
	RemainingToday time.Duration
	LimitExceeded  bool
}

package tracker

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/goodtune/scrollwatch/internal/classify"
	"github.com/goodtune/scrollwatch/internal/metrics"
)

// DefaultMaxTickGap is the largest gap between ticks that is attributed as
// real usage. Longer gaps mean the machine was suspended or the loop was
// starved, not that the user stared at one window the whole time.
const DefaultMaxTickGap = 2 * time.Minute

// Config holds tracker construction parameters.
type Config struct {
	Limits     map[string]SiteLimit
	CacheSize  int           // classifier memoization entries, 0 disables
	MaxTickGap time.Duration // 0 means DefaultMaxTickGap
	Clock      Clock         // nil means system time
}

// Tracker converts a stream of window-title samples into per-site daily
// usage and decides when threshold events fire.
//
// The Tracker is single-threaded by design: Tick and the read accessors must
// be called from the goroutine running the poll loop, which is the only
// writer. There is no ambient state; everything lives on this struct.
type Tracker struct {
	classifier *classify.Classifier
	limits     map[string]SiteLimit
	states     map[string]*siteState
	sampler    Sampler
	sink       Sink
	clock      Clock
	maxTickGap time.Duration
	logger     zerolog.Logger

	currentDay string

	// open session, empty currentSite means none
	currentSite  string
	sessionID    string
	sessionStart time.Time
}

// siteState is the per-site daily counter set.
type siteState struct {
	used          time.Duration
	lastNudgeMark int  // last whole-minute nudge multiple signaled
	limitSignaled bool // limit event already fired today
}

// New creates a Tracker for the configured sites.
func New(cfg Config, sampler Sampler, sink Sink, logger zerolog.Logger) (*Tracker, error) {
	if len(cfg.Limits) == 0 {
		return nil, fmt.Errorf("no tracked sites configured")
	}
	if cfg.Clock == nil {
		cfg.Clock = RealClock{}
	}
	if cfg.MaxTickGap == 0 {
		cfg.MaxTickGap = DefaultMaxTickGap
	}

	domains := make([]string, 0, len(cfg.Limits))
	for domain := range cfg.Limits {
		domains = append(domains, domain)
	}
	classifier, err := classify.New(domains, cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create classifier: %w", err)
	}

	t := &Tracker{
		classifier: classifier,
		limits:     make(map[string]SiteLimit, len(cfg.Limits)),
		states:     make(map[string]*siteState, len(cfg.Limits)),
		sampler:    sampler,
		sink:       sink,
		clock:      cfg.Clock,
		maxTickGap: cfg.MaxTickGap,
		logger:     logger.With().Str("component", "tracker").Logger(),
	}
	for domain, limit := range cfg.Limits {
		t.limits[domain] = limit
		t.states[domain] = &siteState{}
	}
	t.currentDay = dayOf(t.clock.Now())

	return t, nil
}

// Tick feeds one sample into the counters. elapsed is the wall time since
// the previous tick and is attributed in full to the matched site.
func (t *Tracker) Tick(sample Sample, elapsed time.Duration) {
	// Counters never move backwards, whatever the clock does.
	if elapsed < 0 {
		elapsed = 0
	}

	t.rolloverIfNeeded(sample.Time)

	site, ok := t.classifier.Match(sample.Title)
	if !ok {
		t.closeSession(sample.Time)
		return
	}
	if site != t.currentSite {
		t.closeSession(sample.Time)
		t.openSession(site, sample.Time)
	}

	state := t.states[site]
	state.used += elapsed
	metrics.UsageSecondsTotal.WithLabelValues(site).Add(elapsed.Seconds())

	t.logger.Debug().
		Str("site", site).
		Dur("elapsed", elapsed).
		Dur("used_today", state.used).
		Msg("Accumulated usage")

	t.evaluateThresholds(site, state, t.limits[site], sample.Time)
}

// evaluateThresholds emits nudge and limit events for crossings reached by
// the current usage. Counter state is updated before the sink sees the
// event, so a failing consumer cannot make the same crossing fire twice.
func (t *Tracker) evaluateThresholds(site string, state *siteState, limit SiteLimit, at time.Time) {
	minutes := int(state.used.Minutes())

	if interval := int(limit.NudgeInterval.Minutes()); interval > 0 {
		mark := (minutes / interval) * interval
		if mark > 0 && mark > state.lastNudgeMark {
			state.lastNudgeMark = mark
			t.logger.Info().
				Str("site", site).
				Int("minutes_today", minutes).
				Int("nudge_mark", mark).
				Msg("Nudge crossing reached")
			t.emit(Event{
				Kind:      EventNudge,
				Site:      site,
				Used:      state.used,
				Limit:     limit.DailyLimit,
				Remaining: remaining(limit.DailyLimit, state.used),
				At:        at,
			})
		}
	}

	if limit.DailyLimit > 0 && state.used >= limit.DailyLimit && !state.limitSignaled {
		state.limitSignaled = true
		t.logger.Info().
			Str("site", site).
			Int("minutes_today", minutes).
			Dur("daily_limit", limit.DailyLimit).
			Msg("Daily limit reached")
		t.emit(Event{
			Kind:  EventLimitExceeded,
			Site:  site,
			Used:  state.used,
			Limit: limit.DailyLimit,
			At:    at,
		})
	}
}

// rolloverIfNeeded resets every counter when the calendar date of ts differs
// from the tracked day and re-arms the nudge and limit flags. The closing
// day's summary rides on the event so consumers can report it without
// another read.
func (t *Tracker) rolloverIfNeeded(ts time.Time) {
	day := dayOf(ts)
	if day == t.currentDay {
		return
	}

	t.closeSession(ts)
	closing := t.currentDay
	summary := t.Summary()

	for _, state := range t.states {
		state.used = 0
		state.lastNudgeMark = 0
		state.limitSignaled = false
	}
	t.currentDay = day

	metrics.DayRolloversTotal.Inc()
	t.logger.Info().
		Str("closed_day", closing).
		Str("new_day", day).
		Msg("Day rollover, counters reset")
	t.emit(Event{Kind: EventDayRollover, Day: closing, Summary: summary, At: ts})
}

// openSession starts a session for site.
func (t *Tracker) openSession(site string, at time.Time) {
	t.currentSite = site
	t.sessionID = uuid.NewString()
	t.sessionStart = at

	t.logger.Debug().
		Str("session_id", t.sessionID).
		Str("site", site).
		Msg("Session started")
	t.emit(Event{
		Kind:         EventSessionStart,
		Site:         site,
		SessionID:    t.sessionID,
		SessionStart: at,
		At:           at,
	})
}

// closeSession ends the open session, if any.
func (t *Tracker) closeSession(at time.Time) {
	if t.currentSite == "" {
		return
	}
	site, id, start := t.currentSite, t.sessionID, t.sessionStart
	t.currentSite, t.sessionID = "", ""

	state := t.states[site]
	t.logger.Debug().
		Str("session_id", id).
		Str("site", site).
		Dur("duration", at.Sub(start)).
		Msg("Session ended")
	t.emit(Event{
		Kind:         EventSessionEnd,
		Site:         site,
		Used:         state.used,
		Limit:        t.limits[site].DailyLimit,
		SessionID:    id,
		SessionStart: start,
		At:           at,
	})
}

func (t *Tracker) emit(e Event) {
	metrics.EventsTotal.WithLabelValues(e.Site, string(e.Kind)).Inc()
	if t.sink != nil {
		t.sink.HandleEvent(e)
	}
}

// Summary reports all sites with usage today, heaviest first. Ties break by
// site name to keep output stable.
func (t *Tracker) Summary() []SiteSummary {
	out := make([]SiteSummary, 0, len(t.states))
	for site, state := range t.states {
		if state.used <= 0 {
			continue
		}
		limit := t.limits[site]
		s := SiteSummary{
			Site:      site,
			Used:      state.used,
			Limit:     limit.DailyLimit,
			OverLimit: state.used >= limit.DailyLimit,
		}
		if limit.DailyLimit > 0 {
			s.Percent = float64(state.used) / float64(limit.DailyLimit) * 100
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Used != out[j].Used {
			return out[i].Used > out[j].Used
		}
		return out[i].Site < out[j].Site
	})
	return out
}

// GetUsageStats returns current usage statistics for a tracked site.
func (t *Tracker) GetUsageStats(site string) (UsageStats, bool) {
	state, ok := t.states[site]
	if !ok {
		return UsageStats{}, false
	}
	limit := t.limits[site]

	stats := UsageStats{
		TodayUsage:     state.used,
		RemainingToday: limit.DailyLimit - state.used,
		LimitExceeded:  state.used >= limit.DailyLimit,
	}
	if stats.RemainingToday < 0 {
		stats.RemainingToday = 0
	}
	return stats, true
}

// CurrentDay returns the calendar date the counters belong to, as YYYY-MM-DD.
func (t *Tracker) CurrentDay() string {
	return t.currentDay
}

func dayOf(ts time.Time) string {
	return ts.Format("2006-01-02")
}

func remaining(limit, used time.Duration) time.Duration {
	if r := limit - used; r > 0 {
		return r
	}
	return 0
}

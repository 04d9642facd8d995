package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/goodtune/scrollwatch/internal/metrics"
)

// Run polls the sampler every pollInterval and feeds each sample into Tick
// until ctx is canceled, then closes any open session and returns nil.
// Sampling failures are counted and treated as an empty title; they never
// stop the loop.
func (t *Tracker) Run(ctx context.Context, pollInterval time.Duration) error {
	if pollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %v", pollInterval)
	}
	if t.sampler == nil {
		return fmt.Errorf("no window sampler configured")
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	t.logger.Info().
		Dur("poll_interval", pollInterval).
		Int("tracked_sites", len(t.limits)).
		Msg("Usage tracking started")

	prev := t.clock.Now()
	for {
		select {
		case <-ctx.Done():
			t.closeSession(t.clock.Now())
			t.logger.Info().Msg("Usage tracking stopped")
			return nil
		case <-ticker.C:
			// The ticker may win the race against an already-canceled
			// context; no sample must be taken after cancellation.
			if ctx.Err() != nil {
				continue
			}
			now := t.clock.Now()
			elapsed := now.Sub(prev)
			prev = now

			// A gap much larger than the poll interval means suspend or
			// loop starvation; attribute a single interval instead.
			if elapsed > t.maxTickGap {
				t.logger.Debug().
					Dur("gap", elapsed).
					Msg("Tick gap exceeds threshold, attributing one interval")
				elapsed = pollInterval
			}

			t.tickOnce(ctx, now, elapsed)
		}
	}
}

// tickOnce performs one sample and tick iteration.
func (t *Tracker) tickOnce(ctx context.Context, now time.Time, elapsed time.Duration) {
	metrics.TicksTotal.Inc()

	start := time.Now()
	title, err := t.sampler.Title(ctx)
	metrics.SampleDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.SampleFailuresTotal.Inc()
		t.logger.Debug().Err(err).Msg("Window sample failed, counting no site this tick")
		title = ""
	}

	t.Tick(Sample{Title: title, Time: now}, elapsed)
}

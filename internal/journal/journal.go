// Package journal appends usage history to disk as JSON lines. Sessions,
// nudges and daily summaries each get their own file so consumers can tail
// one concern without parsing the others. At day rollover the closed day's
// session and nudge files are compressed into dated zstd archives and the
// live files start over.
//
// Journal writes are best effort. The in-memory counters stay authoritative
// for the running day, so a full disk degrades history, never tracking.
package journal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"

	"github.com/goodtune/scrollwatch/internal/metrics"
	"github.com/goodtune/scrollwatch/internal/tracker"
)

const (
	sessionsFile  = "sessions.jsonl"
	nudgesFile    = "nudges.jsonl"
	summariesFile = "daily_summary.jsonl"
)

// SessionRecord is one completed stretch of focus on a tracked site.
// UsedSeconds carries the site's running daily total at the moment the
// session closed, so the latest record per site is also the day's total.
type SessionRecord struct {
	Day         string    `json:"day"`
	Site        string    `json:"site"`
	SessionID   string    `json:"session_id"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Seconds     int64     `json:"seconds"`
	UsedSeconds int64     `json:"used_seconds"`
}

// NudgeRecord is one threshold crossing, nudge or limit.
type NudgeRecord struct {
	Day              string    `json:"day"`
	Site             string    `json:"site"`
	Kind             string    `json:"kind"`
	At               time.Time `json:"at"`
	UsedSeconds      int64     `json:"used_seconds"`
	LimitSeconds     int64     `json:"limit_seconds"`
	RemainingSeconds int64     `json:"remaining_seconds"`
}

// DailySummaryRecord is the per-day usage table, written at rollover and at
// shutdown.
type DailySummaryRecord struct {
	Day   string      `json:"day"`
	At    time.Time   `json:"at"`
	Sites []SiteTotal `json:"sites"`
}

// SiteTotal is one row of a daily summary.
type SiteTotal struct {
	Site         string `json:"site"`
	Seconds      int64  `json:"seconds"`
	LimitSeconds int64  `json:"limit_seconds"`
	OverLimit    bool   `json:"over_limit"`
}

// Recorder persists tracker events. It implements tracker.Sink.
type Recorder struct {
	dir    string
	enc    *zstd.Encoder
	logger zerolog.Logger
	warned map[string]bool
}

// NewRecorder opens a journal rooted at dir, creating it if needed.
func NewRecorder(dir string, logger zerolog.Logger) (*Recorder, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	return &Recorder{
		dir:    dir,
		enc:    enc,
		logger: logger.With().Str("component", "journal").Logger(),
		warned: make(map[string]bool),
	}, nil
}

// Close releases the compressor.
func (r *Recorder) Close() {
	r.enc.Close()
}

func (r *Recorder) HandleEvent(e tracker.Event) {
	switch e.Kind {
	case tracker.EventSessionEnd:
		r.append(sessionsFile, SessionRecord{
			Day:         dayString(e.At),
			Site:        e.Site,
			SessionID:   e.SessionID,
			Start:       e.SessionStart,
			End:         e.At,
			Seconds:     int64(e.At.Sub(e.SessionStart).Seconds()),
			UsedSeconds: int64(e.Used.Seconds()),
		})

	case tracker.EventNudge, tracker.EventLimitExceeded:
		r.append(nudgesFile, NudgeRecord{
			Day:              dayString(e.At),
			Site:             e.Site,
			Kind:             string(e.Kind),
			At:               e.At,
			UsedSeconds:      int64(e.Used.Seconds()),
			LimitSeconds:     int64(e.Limit.Seconds()),
			RemainingSeconds: int64(e.Remaining.Seconds()),
		})

	case tracker.EventDayRollover:
		r.WriteSummary(e.Day, e.At, e.Summary)
		r.rotate(e.Day)
	}
}

// WriteSummary appends a daily summary row. The run command calls it at
// shutdown so partial days land in the journal too.
func (r *Recorder) WriteSummary(day string, at time.Time, rows []tracker.SiteSummary) {
	if len(rows) == 0 {
		return
	}
	rec := DailySummaryRecord{Day: day, At: at, Sites: make([]SiteTotal, 0, len(rows))}
	for _, row := range rows {
		rec.Sites = append(rec.Sites, SiteTotal{
			Site:         row.Site,
			Seconds:      int64(row.Used.Seconds()),
			LimitSeconds: int64(row.Limit.Seconds()),
			OverLimit:    row.OverLimit,
		})
	}
	r.append(summariesFile, rec)
}

// append marshals v and appends it as one line. Failures are counted and
// logged, loudly the first time per file and quietly after that.
func (r *Recorder) append(name string, v any) {
	line, err := json.Marshal(v)
	if err != nil {
		r.fail(name, err)
		return
	}
	line = append(line, '\n')

	f, err := os.OpenFile(filepath.Join(r.dir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		r.fail(name, err)
		return
	}
	if _, err := f.Write(line); err != nil {
		f.Close()
		r.fail(name, err)
		return
	}
	if err := f.Close(); err != nil {
		r.fail(name, err)
	}
}

// rotate archives the closed day's session and nudge files. The summary
// file is one line per day and stays in place.
func (r *Recorder) rotate(day string) {
	for _, name := range []string{sessionsFile, nudgesFile} {
		r.rotateFile(name, day)
	}
}

func (r *Recorder) rotateFile(name, day string) {
	path := filepath.Join(r.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			r.fail(name, err)
		}
		return
	}
	if len(data) == 0 {
		return
	}

	archive := filepath.Join(r.dir, fmt.Sprintf("%s-%s.jsonl.zst", strings.TrimSuffix(name, ".jsonl"), day))
	compressed := r.enc.EncodeAll(data, make([]byte, 0, len(data)/2))

	tmp := archive + ".tmp"
	if err := os.WriteFile(tmp, compressed, 0o644); err != nil {
		r.fail(name, err)
		return
	}
	if err := os.Rename(tmp, archive); err != nil {
		r.fail(name, err)
		return
	}
	if err := os.Truncate(path, 0); err != nil {
		r.fail(name, err)
		return
	}
	r.logger.Debug().
		Str("file", name).
		Str("archive", filepath.Base(archive)).
		Msg("Rotated journal file")
}

func (r *Recorder) fail(name string, err error) {
	metrics.JournalWriteFailuresTotal.Inc()
	if !r.warned[name] {
		r.warned[name] = true
		r.logger.Warn().Err(err).Str("file", name).Msg("Journal write failed")
		return
	}
	r.logger.Debug().Err(err).Str("file", name).Msg("Journal write failed")
}

func dayString(ts time.Time) string {
	return ts.Format("2006-01-02")
}

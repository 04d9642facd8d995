package journal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"

	"github.com/goodtune/scrollwatch/internal/tracker"
)

func testLogger() zerolog.Logger {
	return zerolog.New(nil).Level(zerolog.Disabled)
}

func newTestRecorder(t *testing.T) (*Recorder, string) {
	t.Helper()

	dir := t.TempDir()
	rec, err := NewRecorder(dir, testLogger())
	if err != nil {
		t.Fatalf("failed to create recorder: %v", err)
	}
	t.Cleanup(rec.Close)
	return rec, dir
}

// TestRecorder_SessionEnd tests that a closed session lands in the session
// journal with its day, duration and running total.
func TestRecorder_SessionEnd(t *testing.T) {
	rec, dir := newTestRecorder(t)

	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	rec.HandleEvent(tracker.Event{
		Kind:         tracker.EventSessionEnd,
		Site:         "youtube.com",
		Used:         10 * time.Minute,
		SessionID:    "abc-123",
		SessionStart: start,
		At:           start.Add(4 * time.Minute),
	})

	sessions, err := ReadSessions(dir)
	if err != nil {
		t.Fatalf("ReadSessions() error = %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("sessions = %d, want 1", len(sessions))
	}
	got := sessions[0]
	if got.Day != "2025-06-02" {
		t.Errorf("Day = %q, want 2025-06-02", got.Day)
	}
	if got.Site != "youtube.com" || got.SessionID != "abc-123" {
		t.Errorf("record = %+v, want site and session id preserved", got)
	}
	if got.Seconds != 240 {
		t.Errorf("Seconds = %d, want 240", got.Seconds)
	}
	if got.UsedSeconds != 600 {
		t.Errorf("UsedSeconds = %d, want 600", got.UsedSeconds)
	}
}

// TestRecorder_NudgeKinds tests that nudges and limit crossings share the
// nudge journal, distinguished by kind.
func TestRecorder_NudgeKinds(t *testing.T) {
	rec, dir := newTestRecorder(t)

	at := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	rec.HandleEvent(tracker.Event{
		Kind:      tracker.EventNudge,
		Site:      "youtube.com",
		Used:      15 * time.Minute,
		Limit:     60 * time.Minute,
		Remaining: 45 * time.Minute,
		At:        at,
	})
	rec.HandleEvent(tracker.Event{
		Kind:  tracker.EventLimitExceeded,
		Site:  "youtube.com",
		Used:  60 * time.Minute,
		Limit: 60 * time.Minute,
		At:    at.Add(45 * time.Minute),
	})

	nudges, err := ReadNudges(dir)
	if err != nil {
		t.Fatalf("ReadNudges() error = %v", err)
	}
	if len(nudges) != 2 {
		t.Fatalf("nudges = %d, want 2", len(nudges))
	}
	if nudges[0].Kind != "nudge" || nudges[1].Kind != "limit_exceeded" {
		t.Errorf("kinds = %q, %q, want nudge then limit_exceeded", nudges[0].Kind, nudges[1].Kind)
	}
	if nudges[0].RemainingSeconds != 2700 {
		t.Errorf("RemainingSeconds = %d, want 2700", nudges[0].RemainingSeconds)
	}
}

// TestRecorder_SessionStartIgnored tests that open sessions write nothing,
// a session is journaled once when it closes.
func TestRecorder_SessionStartIgnored(t *testing.T) {
	rec, dir := newTestRecorder(t)

	rec.HandleEvent(tracker.Event{
		Kind: tracker.EventSessionStart,
		Site: "youtube.com",
		At:   time.Now(),
	})

	sessions, err := ReadSessions(dir)
	if err != nil {
		t.Fatalf("ReadSessions() error = %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("sessions = %d, want 0", len(sessions))
	}
}

// TestRecorder_Rollover tests the rollover path: the summary row is
// appended, live files are archived to dated zstd files and truncated.
func TestRecorder_Rollover(t *testing.T) {
	rec, dir := newTestRecorder(t)

	start := time.Date(2025, 6, 2, 23, 0, 0, 0, time.UTC)
	rec.HandleEvent(tracker.Event{
		Kind:         tracker.EventSessionEnd,
		Site:         "youtube.com",
		Used:         20 * time.Minute,
		SessionID:    "day-one",
		SessionStart: start,
		At:           start.Add(20 * time.Minute),
	})

	rec.HandleEvent(tracker.Event{
		Kind: tracker.EventDayRollover,
		Day:  "2025-06-02",
		At:   time.Date(2025, 6, 3, 0, 0, 2, 0, time.UTC),
		Summary: []tracker.SiteSummary{
			{Site: "youtube.com", Used: 20 * time.Minute, Limit: 60 * time.Minute},
		},
	})

	summaries, err := ReadDailySummaries(dir)
	if err != nil {
		t.Fatalf("ReadDailySummaries() error = %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("summaries = %d, want 1", len(summaries))
	}
	if summaries[0].Day != "2025-06-02" {
		t.Errorf("summary day = %q, want 2025-06-02", summaries[0].Day)
	}
	if len(summaries[0].Sites) != 1 || summaries[0].Sites[0].Seconds != 1200 {
		t.Errorf("summary sites = %+v, want youtube.com at 1200 seconds", summaries[0].Sites)
	}

	// The live session file is empty again.
	live, err := os.ReadFile(filepath.Join(dir, "sessions.jsonl"))
	if err != nil {
		t.Fatalf("failed to read live session file: %v", err)
	}
	if len(live) != 0 {
		t.Errorf("live session file has %d bytes after rotation, want 0", len(live))
	}

	// The archive decompresses back to the original line.
	compressed, err := os.ReadFile(filepath.Join(dir, "sessions-2025-06-02.jsonl.zst"))
	if err != nil {
		t.Fatalf("failed to read archive: %v", err)
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		t.Fatalf("failed to create zstd decoder: %v", err)
	}
	defer dec.Close()
	plain, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		t.Fatalf("failed to decompress archive: %v", err)
	}
	if !strings.Contains(string(plain), "\"session_id\":\"day-one\"") {
		t.Errorf("archive content = %q, want the journaled session", plain)
	}
}

// TestRecorder_WriteFailureTolerated tests that a vanished journal
// directory does not panic or error the caller.
func TestRecorder_WriteFailureTolerated(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "journal")
	rec, err := NewRecorder(sub, testLogger())
	if err != nil {
		t.Fatalf("failed to create recorder: %v", err)
	}
	defer rec.Close()

	if err := os.RemoveAll(sub); err != nil {
		t.Fatalf("failed to remove journal dir: %v", err)
	}

	// Two events exercise the warn-once path as well.
	for i := 0; i < 2; i++ {
		rec.HandleEvent(tracker.Event{
			Kind:         tracker.EventSessionEnd,
			Site:         "youtube.com",
			SessionID:    "gone",
			SessionStart: time.Now(),
			At:           time.Now(),
		})
	}
}

// TestWriteSummary tests the shutdown summary, including that empty days
// write nothing.
func TestWriteSummary(t *testing.T) {
	rec, dir := newTestRecorder(t)

	at := time.Date(2025, 6, 2, 17, 30, 0, 0, time.UTC)
	rec.WriteSummary("2025-06-02", at, []tracker.SiteSummary{
		{Site: "reddit.com", Used: 45 * time.Minute, Limit: 30 * time.Minute, OverLimit: true},
	})
	rec.WriteSummary("2025-06-03", at, nil)

	summaries, err := ReadDailySummaries(dir)
	if err != nil {
		t.Fatalf("ReadDailySummaries() error = %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("summaries = %d, want 1 (empty day skipped)", len(summaries))
	}
	if !summaries[0].Sites[0].OverLimit {
		t.Error("over-limit flag must survive the round trip")
	}
}

// TestTodayTotals tests folding cumulative session records into per-site
// daily totals.
func TestTodayTotals(t *testing.T) {
	records := []SessionRecord{
		{Day: "2025-06-02", Site: "youtube.com", UsedSeconds: 600},
		{Day: "2025-06-02", Site: "youtube.com", UsedSeconds: 1500},
		{Day: "2025-06-02", Site: "reddit.com", UsedSeconds: 300},
		{Day: "2025-06-01", Site: "youtube.com", UsedSeconds: 9999},
	}

	totals := TodayTotals(records, "2025-06-02")
	if len(totals) != 2 {
		t.Fatalf("totals = %d sites, want 2", len(totals))
	}
	if totals["youtube.com"] != 1500 {
		t.Errorf("youtube.com total = %d, want 1500 (latest cumulative)", totals["youtube.com"])
	}
	if totals["reddit.com"] != 300 {
		t.Errorf("reddit.com total = %d, want 300", totals["reddit.com"])
	}
}

// TestReadSessions_SkipsCorruptLines tests that a truncated tail line does
// not poison the whole journal.
func TestReadSessions_SkipsCorruptLines(t *testing.T) {
	rec, dir := newTestRecorder(t)

	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	rec.HandleEvent(tracker.Event{
		Kind:         tracker.EventSessionEnd,
		Site:         "youtube.com",
		SessionID:    "ok",
		SessionStart: start,
		At:           start.Add(time.Minute),
	})

	f, err := os.OpenFile(filepath.Join(dir, "sessions.jsonl"), os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("failed to open journal: %v", err)
	}
	if _, err := f.WriteString("{\"day\":\"2025-06-0"); err != nil {
		t.Fatalf("failed to append garbage: %v", err)
	}
	f.Close()

	sessions, err := ReadSessions(dir)
	if err != nil {
		t.Fatalf("ReadSessions() error = %v", err)
	}
	if len(sessions) != 1 || sessions[0].SessionID != "ok" {
		t.Errorf("sessions = %+v, want only the valid record", sessions)
	}
}

package journal

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"
)

// ReadSessions returns the live session journal, oldest first. A missing
// journal reads as empty.
func ReadSessions(dir string) ([]SessionRecord, error) {
	var out []SessionRecord
	err := readLines(filepath.Join(dir, sessionsFile), func(line []byte) {
		var rec SessionRecord
		if json.Unmarshal(line, &rec) == nil {
			out = append(out, rec)
		}
	})
	return out, err
}

// ReadNudges returns the live nudge journal, oldest first.
func ReadNudges(dir string) ([]NudgeRecord, error) {
	var out []NudgeRecord
	err := readLines(filepath.Join(dir, nudgesFile), func(line []byte) {
		var rec NudgeRecord
		if json.Unmarshal(line, &rec) == nil {
			out = append(out, rec)
		}
	})
	return out, err
}

// ReadDailySummaries returns every recorded daily summary, oldest first.
func ReadDailySummaries(dir string) ([]DailySummaryRecord, error) {
	var out []DailySummaryRecord
	err := readLines(filepath.Join(dir, summariesFile), func(line []byte) {
		var rec DailySummaryRecord
		if json.Unmarshal(line, &rec) == nil {
			out = append(out, rec)
		}
	})
	return out, err
}

// TodayTotals folds session records into per-site seconds for one day.
// UsedSeconds is cumulative at session close, so the largest value per site
// is that site's daily total.
func TodayTotals(records []SessionRecord, day string) map[string]int64 {
	totals := make(map[string]int64)
	for _, rec := range records {
		if rec.Day != day {
			continue
		}
		if rec.UsedSeconds > totals[rec.Site] {
			totals[rec.Site] = rec.UsedSeconds
		}
	}
	return totals
}

// readLines feeds each non-empty line to fn. Lines that fail to parse are
// fn's problem to skip, a crash mid-write may leave a truncated tail.
func readLines(path string, fn func(line []byte)) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open journal file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		fn(line)
	}
	return scanner.Err()
}

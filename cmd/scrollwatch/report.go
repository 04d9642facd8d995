package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/goodtune/scrollwatch/internal/config"
	"github.com/goodtune/scrollwatch/internal/journal"
)

var (
	reportSessions int
	reportDays     int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show recorded screen time from the journal",
	Long: `Show today's totals, recent sessions and past daily summaries from the
on-disk journal. Only the live journal files are read, rotated archives are
left alone.`,
	Example: `  scrollwatch report
  scrollwatch -c config.yaml report --sessions 25 --days 14`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().IntVar(&reportSessions, "sessions", 10, "Number of recent sessions to show")
	reportCmd.Flags().IntVar(&reportDays, "days", 7, "Number of past daily summaries to show")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if !cfg.Journal.Enabled {
		return fmt.Errorf("journal is disabled in configuration, nothing to report")
	}

	sessions, err := journal.ReadSessions(cfg.Journal.Dir)
	if err != nil {
		return fmt.Errorf("failed to read session journal: %w", err)
	}
	nudges, err := journal.ReadNudges(cfg.Journal.Dir)
	if err != nil {
		return fmt.Errorf("failed to read nudge journal: %w", err)
	}
	summaries, err := journal.ReadDailySummaries(cfg.Journal.Dir)
	if err != nil {
		return fmt.Errorf("failed to read daily summaries: %w", err)
	}

	printReport(cfg, sessions, nudges, summaries)

	return nil
}

// printReport renders today's totals, nudge counts, recent sessions and past
// daily summaries with colors.
func printReport(cfg *config.Config, sessions []journal.SessionRecord, nudges []journal.NudgeRecord, summaries []journal.DailySummaryRecord) {
	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed, color.Bold)

	today := time.Now().Format("2006-01-02")

	fmt.Println()
	cyan.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	cyan.Printf("SCROLLWATCH REPORT - %s\n", today)
	cyan.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	// Today, as the tracker saw it
	cyan.Println("\nToday so far:")
	totals := journal.TodayTotals(sessions, today)
	if len(totals) == 0 {
		fmt.Println("  no recorded sessions")
	} else {
		type row struct {
			site    string
			seconds int64
		}
		rows := make([]row, 0, len(totals))
		for site, secs := range totals {
			rows = append(rows, row{site, secs})
		}
		sort.Slice(rows, func(i, j int) bool {
			if rows[i].seconds != rows[j].seconds {
				return rows[i].seconds > rows[j].seconds
			}
			return rows[i].site < rows[j].site
		})
		for _, r := range rows {
			limitSecs := int64(cfg.TrackedSites[r.site].DailyLimit) * 60
			line := fmt.Sprintf("  %-24s %4d/%4d min", r.site, r.seconds/60, limitSecs/60)
			if limitSecs > 0 && r.seconds >= limitSecs {
				red.Printf("%s  OVER LIMIT\n", line)
			} else {
				green.Println(line)
			}
		}
	}

	// Nudges today
	nudgeCount := 0
	limitCount := 0
	for _, n := range nudges {
		if n.Day != today {
			continue
		}
		if n.Kind == "limit_exceeded" {
			limitCount++
		} else {
			nudgeCount++
		}
	}
	fmt.Printf("\nNudges today: %d (%d limit breaches)\n", nudgeCount, limitCount)

	// Recent sessions
	cyan.Printf("\nLast %d sessions:\n", reportSessions)
	start := len(sessions) - reportSessions
	if start < 0 {
		start = 0
	}
	recent := sessions[start:]
	if len(recent) == 0 {
		fmt.Println("  none recorded")
	}
	for _, s := range recent {
		fmt.Printf("  %s  %s - %s  %-24s %s\n",
			s.Day,
			s.Start.Format("15:04:05"),
			s.End.Format("15:04:05"),
			s.Site,
			time.Duration(s.Seconds)*time.Second,
		)
	}

	// Past daily summaries. Rollover and shutdown may both record the same
	// day, the latest record wins.
	cyan.Printf("\nPast %d days:\n", reportDays)
	byDay := make(map[string]journal.DailySummaryRecord)
	var order []string
	for _, d := range summaries {
		if _, seen := byDay[d.Day]; !seen {
			order = append(order, d.Day)
		}
		byDay[d.Day] = d
	}
	if len(order) > reportDays {
		order = order[len(order)-reportDays:]
	}
	if len(order) == 0 {
		fmt.Println("  none recorded")
	}
	for _, day := range order {
		fmt.Printf("  %s\n", day)
		for _, site := range byDay[day].Sites {
			line := fmt.Sprintf("    %-24s %4d/%4d min", site.Site, site.Seconds/60, site.LimitSeconds/60)
			if site.OverLimit {
				red.Printf("%s  OVER LIMIT\n", line)
			} else {
				green.Println(line)
			}
		}
	}

	fmt.Println()
	cyan.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()
}

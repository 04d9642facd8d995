package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/goodtune/scrollwatch/internal/classify"
	"github.com/goodtune/scrollwatch/internal/config"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] TITLE",
	Short: "Check how a window title would be classified",
	Long:  `Check which tracked site, if any, a given window title would be attributed to.`,
	Example: `  scrollwatch check "YouTube - Never Gonna Give You Up - Mozilla Firefox"
  scrollwatch -c config.yaml check "reddit: the front page of the internet"`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	title := args[0]

	// Load configuration
	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Build the same classifier the tracker uses
	classifier, err := classify.New(cfg.Domains(), cfg.Tracker.CacheSize)
	if err != nil {
		return fmt.Errorf("failed to initialize classifier: %w", err)
	}

	site, matched := classifier.Match(title)

	// Display result with colors
	printCheckResult(title, site, matched, cfg)

	return nil
}

// printCheckResult prints the classification result with colors
func printCheckResult(title, site string, matched bool, cfg *config.Config) {
	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)

	fmt.Println()
	cyan.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	cyan.Println("WINDOW TITLE CHECK")
	cyan.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()

	fmt.Printf("Title:      %s\n", title)
	fmt.Printf("Sites:      %d configured\n", len(cfg.TrackedSites))
	fmt.Println()

	cyan.Print("Decision:   ")
	if matched {
		yellow.Println("TRACKED")
		fmt.Printf("            → Time on this window counts toward %s\n", site)

		siteCfg := cfg.TrackedSites[site]
		fmt.Printf("            → Daily limit: %d minutes\n", siteCfg.DailyLimit)
		fmt.Printf("            → Nudge every: %d minutes\n", siteCfg.NudgeInterval)
		if siteCfg.HardBlock {
			fmt.Println("            → Hard block requested but not enforced, nudges only")
		}
	} else {
		green.Println("NOT TRACKED")
		fmt.Println("            → Time on this window is not counted")
		fmt.Println("            → No nudges will fire for it")
	}

	fmt.Println()
	cyan.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()
}

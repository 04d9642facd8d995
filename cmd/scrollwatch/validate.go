package main

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/goodtune/scrollwatch/internal/config"
)

var (
	validateDump bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long:  `Validate the scrollwatch configuration file for syntax and semantic errors.`,
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateDump, "dump", false, "Dump full configuration with defaults highlighted")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfgPath := resolveConfigPath()

	// Load configuration
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Configuration validation failed: %v\n", err)
		return err
	}

	// Check for unknown keys (always, not just with -dump)
	unknownKeys, err := findUnknownKeys(cfgPath)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "⚠️  Warning: Could not check for unknown keys: %v\n", err)
	}

	_, _ = fmt.Fprintf(os.Stdout, "✅ Configuration is valid: %s\n", cfgPath)

	// Warn about unknown keys
	if len(unknownKeys) > 0 {
		red := color.New(color.FgRed, color.Bold)
		fmt.Fprintln(os.Stdout)
		red.Fprintf(os.Stdout, "⚠️  WARNING: Found %d unknown configuration key(s):\n", len(unknownKeys))
		for _, key := range unknownKeys {
			red.Fprintf(os.Stdout, "   - %s\n", key)
		}
		fmt.Fprintln(os.Stdout, "\nThese keys will be ignored and may indicate typos or deprecated settings.")
	}

	// Surface accepted-but-inert options
	if warnings := cfg.Warnings(); len(warnings) > 0 {
		fmt.Fprintln(os.Stdout)
		for _, warning := range warnings {
			_, _ = fmt.Fprintf(os.Stdout, "⚠️  %s\n", warning)
		}
	}

	// If dump requested, show full configuration with defaults highlighted
	if validateDump {
		_, _ = fmt.Fprintln(os.Stdout, "\n"+strings.Repeat("=", 80))
		_, _ = fmt.Fprintln(os.Stdout, "FULL CONFIGURATION (values different from defaults are highlighted)")
		_, _ = fmt.Fprintln(os.Stdout, strings.Repeat("=", 80))

		dumpConfig(cfg, config.Defaults(), unknownKeys)
	}

	return nil
}

// findUnknownKeys loads the config file and checks for unknown keys
func findUnknownKeys(configPath string) ([]string, error) {
	v := viper.NewWithOptions(viper.KeyDelimiter(config.KeyDelim))
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	// Get all keys from the config file
	allKeys := v.AllKeys()

	// Build set of valid keys
	validKeys := getValidKeys()

	// Find unknown keys
	unknown := []string{}
	for _, key := range allKeys {
		if validKeys[key] || validSiteKey(key) {
			continue
		}
		unknown = append(unknown, key)
	}

	return unknown, nil
}

// getValidKeys returns a set of all valid fixed configuration keys.
// tracked_sites entries are dynamic and checked by validSiteKey instead.
func getValidKeys() map[string]bool {
	keys := map[string]bool{
		// Tracker
		"tracker::poll_interval": true,
		"tracker::cache_size":    true,

		// Notifications
		"notifications::enabled":     true,
		"notifications::backend":     true,
		"notifications::app_name":    true,
		"notifications::rate_limit":  true,
		"notifications::rate_window": true,

		// Journal
		"journal::enabled": true,
		"journal::dir":     true,

		// Logging
		"logging::level":  true,
		"logging::format": true,

		// Metrics
		"metrics::enabled": true,
		"metrics::listen":  true,

		// Work hours
		"work_hours::enabled":         true,
		"work_hours::start":           true,
		"work_hours::end":             true,
		"work_hours::stricter_limits": true,
	}

	return keys
}

// validSiteKey reports whether key is a well-formed tracked_sites entry of
// the shape tracked_sites::<domain>::<field>. Domains are free-form, so
// only the shape and the field name are checked.
func validSiteKey(key string) bool {
	parts := strings.Split(key, config.KeyDelim)
	if len(parts) != 3 || parts[0] != "tracked_sites" {
		return false
	}
	switch parts[2] {
	case "daily_limit", "nudge_interval", "hard_block":
		return true
	}
	return false
}

// dumpConfig dumps configuration with color highlighting for non-default values
func dumpConfig(cfg, defaultCfg *config.Config, unknownKeys []string) {
	// Setup colors (only if terminal supports it)
	yellow := color.New(color.FgYellow, color.Bold)
	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan, color.Bold)

	// Tracked sites are user data with no defaults to compare against
	_, _ = cyan.Println("\n[tracked_sites]")
	for _, domain := range cfg.Domains() {
		site := cfg.TrackedSites[domain]
		_, _ = cyan.Printf("  [%s]\n", domain)
		fmt.Printf("    daily_limit = %d\n", site.DailyLimit)
		fmt.Printf("    nudge_interval = %d\n", site.NudgeInterval)
		fmt.Printf("    hard_block = %v\n", site.HardBlock)
	}

	// Tracker
	_, _ = cyan.Println("\n[tracker]")
	dumpField("  poll_interval", cfg.Tracker.PollInterval, defaultCfg.Tracker.PollInterval, yellow, green)
	dumpField("  cache_size", cfg.Tracker.CacheSize, defaultCfg.Tracker.CacheSize, yellow, green)

	// Notifications
	_, _ = cyan.Println("\n[notifications]")
	dumpField("  enabled", cfg.Notifications.Enabled, defaultCfg.Notifications.Enabled, yellow, green)
	dumpField("  backend", cfg.Notifications.Backend, defaultCfg.Notifications.Backend, yellow, green)
	dumpField("  app_name", cfg.Notifications.AppName, defaultCfg.Notifications.AppName, yellow, green)
	dumpField("  rate_limit", cfg.Notifications.RateLimit, defaultCfg.Notifications.RateLimit, yellow, green)
	dumpField("  rate_window", cfg.Notifications.RateWindow, defaultCfg.Notifications.RateWindow, yellow, green)

	// Journal
	_, _ = cyan.Println("\n[journal]")
	dumpField("  enabled", cfg.Journal.Enabled, defaultCfg.Journal.Enabled, yellow, green)
	dumpField("  dir", cfg.Journal.Dir, defaultCfg.Journal.Dir, yellow, green)

	// Logging
	_, _ = cyan.Println("\n[logging]")
	dumpField("  level", cfg.Logging.Level, defaultCfg.Logging.Level, yellow, green)
	dumpField("  format", cfg.Logging.Format, defaultCfg.Logging.Format, yellow, green)

	// Metrics
	_, _ = cyan.Println("\n[metrics]")
	dumpField("  enabled", cfg.Metrics.Enabled, defaultCfg.Metrics.Enabled, yellow, green)
	dumpField("  listen", cfg.Metrics.Listen, defaultCfg.Metrics.Listen, yellow, green)

	// Work hours
	_, _ = cyan.Println("\n[work_hours]")
	dumpField("  enabled", cfg.WorkHours.Enabled, defaultCfg.WorkHours.Enabled, yellow, green)
	dumpField("  start", cfg.WorkHours.Start, defaultCfg.WorkHours.Start, yellow, green)
	dumpField("  end", cfg.WorkHours.End, defaultCfg.WorkHours.End, yellow, green)
	dumpField("  stricter_limits", cfg.WorkHours.StricterLimits, defaultCfg.WorkHours.StricterLimits, yellow, green)

	// Display unknown keys if any
	if len(unknownKeys) > 0 {
		red := color.New(color.FgRed, color.Bold)

		_, _ = cyan.Println("\n[UNKNOWN KEYS - These will be ignored!]")
		for _, key := range unknownKeys {
			red.Printf("  %s = (unknown key - check for typos)\n", key)
		}
	}

	_, _ = fmt.Fprintln(os.Stdout, "\n"+strings.Repeat("=", 80))
}

// dumpField prints a field with color if it differs from default
func dumpField(name string, value, defaultValue interface{}, modifiedColor, defaultColor *color.Color) {
	// Deep equal comparison
	isDefault := reflect.DeepEqual(value, defaultValue)

	valueStr := fmt.Sprintf("%v", value)

	if isDefault {
		_, _ = defaultColor.Printf("%s = %s\n", name, valueStr)
	} else {
		_, _ = modifiedColor.Printf("%s = %s  (modified from default: %v)\n", name, valueStr, defaultValue)
	}
}

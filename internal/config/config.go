package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	gookit "github.com/gookit/validate"
	"github.com/spf13/viper"
)

// KeyDelim separates nested configuration keys. Tracked-site domains are map
// keys and contain literal dots, so the default "." delimiter cannot be used.
const KeyDelim = "::"

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "SCROLLWATCH"

// Config holds the complete application configuration
type Config struct {
	TrackedSites  map[string]SiteConfig `mapstructure:"tracked_sites"`
	Tracker       TrackerConfig         `mapstructure:"tracker"`
	Notifications NotificationsConfig   `mapstructure:"notifications"`
	Journal       JournalConfig         `mapstructure:"journal"`
	Logging       LoggingConfig         `mapstructure:"logging"`
	Metrics       MetricsConfig         `mapstructure:"metrics"`
	WorkHours     WorkHoursConfig       `mapstructure:"work_hours"`
}

// SiteConfig defines the daily budget for a single tracked site
type SiteConfig struct {
	DailyLimit    int  `mapstructure:"daily_limit"`    // minutes per day
	NudgeInterval int  `mapstructure:"nudge_interval"` // minutes between nudges
	HardBlock     bool `mapstructure:"hard_block"`     // recognized, not enforced
}

// TrackerConfig defines poll loop settings
type TrackerConfig struct {
	PollInterval string `mapstructure:"poll_interval"`
	CacheSize    int    `mapstructure:"cache_size" validate:"min:0"`
}

// NotificationsConfig defines notification delivery settings
type NotificationsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Backend    string `mapstructure:"backend" validate:"in:desktop,stdout,off"`
	AppName    string `mapstructure:"app_name"`
	RateLimit  int    `mapstructure:"rate_limit" validate:"min:0"` // per rate_window, 0 = unlimited
	RateWindow string `mapstructure:"rate_window"`
}

// JournalConfig defines the on-disk activity journal settings
type JournalConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"`
}

// LoggingConfig defines logging behavior
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"in:trace,debug,info,warn,error"`
	Format string `mapstructure:"format" validate:"in:text,json"`
}

// MetricsConfig defines the optional Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
}

// WorkHoursConfig is accepted for forward compatibility with stricter
// in-hours limits but is not enforced yet.
type WorkHoursConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Start          string `mapstructure:"start"`
	End            string `mapstructure:"end"`
	StricterLimits bool   `mapstructure:"stricter_limits"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.NewWithOptions(viper.KeyDelimiter(KeyDelim))

	// Set defaults
	setDefaults(v)

	// Configure viper
	if configPath == "" {
		configPath = DefaultPath()
	}
	v.SetConfigFile(configPath)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(KeyDelim, "_"))
	v.AutomaticEnv()

	// Read config file. A missing or unreadable file is fatal: falling back
	// to defaults here would mean silently tracking nothing.
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	// Unmarshal config
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate config
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Defaults returns the configuration an empty file would produce. Used by
// the validate command to highlight overridden values.
func Defaults() *Config {
	v := viper.NewWithOptions(viper.KeyDelimiter(KeyDelim))
	setDefaults(v)

	var config Config
	_ = v.Unmarshal(&config)
	if config.Journal.Enabled && config.Journal.Dir == "" {
		config.Journal.Dir = DefaultJournalDir()
	}
	return &config
}

// DefaultPath returns the config file path, honoring SCROLLWATCH_CONFIG and
// XDG_CONFIG_HOME before falling back to ~/.config/scrollwatch/config.yaml.
func DefaultPath() string {
	if p := os.Getenv("SCROLLWATCH_CONFIG"); p != "" {
		return p
	}
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "scrollwatch.yaml"
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "scrollwatch", "config.yaml")
}

// DefaultJournalDir returns the data directory for journal files, honoring
// XDG_DATA_HOME.
func DefaultJournalDir() string {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "scrollwatch-journal"
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "scrollwatch")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Tracker defaults
	v.SetDefault("tracker::poll_interval", "2s")
	v.SetDefault("tracker::cache_size", 256)

	// Notification defaults
	v.SetDefault("notifications::enabled", true)
	v.SetDefault("notifications::backend", "desktop")
	v.SetDefault("notifications::app_name", "scrollwatch")
	v.SetDefault("notifications::rate_limit", 10)
	v.SetDefault("notifications::rate_window", "1m")

	// Journal defaults
	v.SetDefault("journal::enabled", true)
	v.SetDefault("journal::dir", "")

	// Logging defaults
	v.SetDefault("logging::level", "info")
	v.SetDefault("logging::format", "text")

	// Metrics defaults
	v.SetDefault("metrics::enabled", false)
	v.SetDefault("metrics::listen", "127.0.0.1:9732")

	// Work hours defaults (accepted, not enforced)
	v.SetDefault("work_hours::enabled", false)
	v.SetDefault("work_hours::start", "09:00")
	v.SetDefault("work_hours::end", "17:00")
	v.SetDefault("work_hours::stricter_limits", false)
}

// validate validates the configuration
func validate(cfg *Config) error {
	if v := gookit.Struct(cfg); !v.Validate() {
		return v.Errors
	}

	// Validate tracked sites
	if len(cfg.TrackedSites) == 0 {
		return fmt.Errorf("at least one tracked site is required")
	}
	for domain, site := range cfg.TrackedSites {
		if strings.TrimSpace(domain) == "" {
			return fmt.Errorf("tracked site with empty domain")
		}
		if site.DailyLimit <= 0 {
			return fmt.Errorf("site %s: daily_limit must be a positive number of minutes, got %d", domain, site.DailyLimit)
		}
		if site.NudgeInterval <= 0 {
			return fmt.Errorf("site %s: nudge_interval must be a positive number of minutes, got %d", domain, site.NudgeInterval)
		}
	}

	// Validate durations
	if d, err := time.ParseDuration(cfg.Tracker.PollInterval); err != nil || d <= 0 {
		return fmt.Errorf("invalid tracker poll_interval: %q", cfg.Tracker.PollInterval)
	}
	if cfg.Notifications.RateWindow != "" {
		if d, err := time.ParseDuration(cfg.Notifications.RateWindow); err != nil || d <= 0 {
			return fmt.Errorf("invalid notifications rate_window: %q", cfg.Notifications.RateWindow)
		}
	}

	// Ensure journal directory exists
	if cfg.Journal.Enabled {
		if cfg.Journal.Dir == "" {
			cfg.Journal.Dir = DefaultJournalDir()
		}
		if err := os.MkdirAll(cfg.Journal.Dir, 0755); err != nil {
			return fmt.Errorf("failed to create journal directory: %w", err)
		}
	}

	return nil
}

// Domains returns the tracked site domains in deterministic order.
func (c *Config) Domains() []string {
	domains := make([]string, 0, len(c.TrackedSites))
	for domain := range c.TrackedSites {
		domains = append(domains, domain)
	}
	sort.Strings(domains)
	return domains
}

// Warnings returns startup conditions worth surfacing that are not errors,
// such as options that are accepted but not enforced.
func (c *Config) Warnings() []string {
	var warnings []string
	for _, domain := range c.Domains() {
		site := c.TrackedSites[domain]
		if site.HardBlock {
			warnings = append(warnings, fmt.Sprintf("site %s: hard_block is recognized but not enforced", domain))
		}
		if site.NudgeInterval > site.DailyLimit {
			warnings = append(warnings, fmt.Sprintf("site %s: nudge_interval %dm exceeds daily_limit %dm", domain, site.NudgeInterval, site.DailyLimit))
		}
	}
	if c.WorkHours.Enabled {
		warnings = append(warnings, "work_hours is recognized but not enforced")
	}
	return warnings
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goodtune/scrollwatch/internal/config"
)

var (
	version    = "dev"
	configPath string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "scrollwatch",
	Short: "Scrollwatch - personal screen time tracker with gentle nudges",
	Long: `Scrollwatch polls the focused desktop window title and tallies the time
spent on configured distracting sites. It sends a desktop nudge at regular
intervals and once more when a site's daily budget runs out. Counters live
in memory and reset at midnight. Nothing is ever blocked.`,
	Version: version,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default to run command when no subcommand is provided
		return runRun(cmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default ~/.config/scrollwatch/config.yaml)")
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// resolveConfigPath applies the default lookup when --config is not given.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultPath()
}

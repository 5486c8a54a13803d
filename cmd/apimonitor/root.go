package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"apimonitor/internal/config"
	"apimonitor/internal/logging"
	"apimonitor/internal/report"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	configPath string
	token      string
	apiBaseURL string
	logLevel   string
	output     string
	json       bool
}

// app holds what PersistentPreRunE resolved for the running command.
var app struct {
	cfg  config.Config
	mode report.Mode
}

var rootCmd = &cobra.Command{
	Use:   "apimonitor",
	Short: "Report on Runscope buckets, tests and results",
	Long: `apimonitor reads Runscope buckets, tests and result histories and renders
them as terminal or Markdown tables.

The token is taken from --token, then RUNSCOPE_TOKEN, then the config file,
then the first line of the token file (default .runscope-token).`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.configPath, "config", "apimonitor.yaml", "Config file (YAML); missing file means defaults")
	pf.StringVar(&rootFlags.token, "token", "", "Runscope API token")
	pf.StringVar(&rootFlags.apiBaseURL, "api-base-url", "", "Runscope API base URL")
	pf.StringVar(&rootFlags.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVarP(&rootFlags.output, "output", "o", "", "Table format: ascii or markdown")
	pf.BoolVar(&rootFlags.json, "json", false, "Print JSON instead of tables")

	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(bucketsCmd)
	rootCmd.AddCommand(environmentsCmd)
	rootCmd.AddCommand(testsCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(resultsCmd)
	rootCmd.AddCommand(resultCmd)
	rootCmd.AddCommand(latestCmd)
	rootCmd.AddCommand(recentCmd)
	rootCmd.AddCommand(timeframeCmd)
	rootCmd.AddCommand(triggerCmd)
	rootCmd.AddCommand(triggerTestCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.Version = version
}

// loadConfig layers flags over the config file and environment, then sets up logging.
func loadConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(rootFlags.configPath)
	if err != nil {
		return err
	}
	if rootFlags.token != "" {
		cfg.Token = rootFlags.token
	}
	if rootFlags.apiBaseURL != "" {
		cfg.APIBaseURL = rootFlags.apiBaseURL
	}
	if rootFlags.logLevel != "" {
		cfg.LogLevel = rootFlags.logLevel
	}
	if rootFlags.output != "" {
		cfg.Output = rootFlags.output
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	level, _ := logging.ParseLevel(cfg.LogLevel)
	logging.Init(level, cfg.LogFormat, cmd.ErrOrStderr())

	app.cfg = cfg
	app.mode, _ = report.ParseMode(cfg.Output)
	return nil
}

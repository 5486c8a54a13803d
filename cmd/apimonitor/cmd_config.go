package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"apimonitor/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the config file",
}

var configInitFlags struct {
	force bool
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config to --config",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective config (the token is never printed)",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitFlags.force, "force", false, "Overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	path := rootFlags.configPath
	if _, err := os.Stat(path); err == nil && !configInitFlags.force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := config.Default().Write(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg := app.cfg
	hasToken := cfg.Token != ""
	cfg.Token = ""

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "api_base_url:  %s\n", cfg.APIBaseURL)
	fmt.Fprintf(out, "page_base_url: %s\n", cfg.PageBaseURL)
	fmt.Fprintf(out, "token:         %s\n", tokenSource(hasToken, cfg.TokenFile))
	fmt.Fprintf(out, "timeout:       %s\n", cfg.Timeout.String())
	fmt.Fprintf(out, "rate_limit:    %g\n", cfg.RateLimit)
	fmt.Fprintf(out, "log_level:     %s\n", cfg.LogLevel)
	fmt.Fprintf(out, "log_format:    %s\n", cfg.LogFormat)
	fmt.Fprintf(out, "output:        %s\n", app.mode)
	return nil
}

func tokenSource(inline bool, tokenFile string) string {
	if inline {
		return "(set)"
	}
	return "from " + tokenFile
}

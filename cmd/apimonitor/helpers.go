package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"apimonitor/internal/logging"
	"apimonitor/internal/monitor"
	"apimonitor/internal/report"
	"apimonitor/internal/runscope"
)

// newService builds the client and service from the loaded config and
// resolves the token.
func newService() (*monitor.Service, string, error) {
	token, err := app.cfg.ResolveToken()
	if err != nil {
		return nil, "", err
	}

	client, err := runscope.New(app.cfg.APIBaseURL,
		runscope.WithTimeout(time.Duration(app.cfg.Timeout)),
		runscope.WithRateLimit(app.cfg.RateLimit),
		runscope.WithPageBaseURL(app.cfg.PageBaseURL),
		runscope.WithLogger(logging.New("runscope")),
	)
	if err != nil {
		return nil, "", err
	}

	svc, err := monitor.New(client,
		monitor.WithPages(client.Pages()),
		monitor.WithLogger(logging.New("monitor")),
	)
	if err != nil {
		return nil, "", err
	}
	return svc, token, nil
}

// render prints v as JSON when --json is set, otherwise the table.
func render(cmd *cobra.Command, v any, table func(report.Mode) string) error {
	out := cmd.OutOrStdout()
	if rootFlags.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	s := table(app.mode)
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	_, err := fmt.Fprint(out, s)
	return err
}

// Package config loads apimonitor settings from a YAML file, then applies
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"apimonitor/internal/logging"
	"apimonitor/internal/report"
	"apimonitor/internal/runscope"
)

// Environment variables that override file settings.
const (
	EnvToken      = "RUNSCOPE_TOKEN"
	EnvAPIBaseURL = "RUNSCOPE_API_BASE_URL"
	EnvLogLevel   = "APIMONITOR_LOG_LEVEL"
)

// DefaultTokenFile is read when no token is configured inline.
const DefaultTokenFile = ".runscope-token"

// Config is the on-disk configuration.
type Config struct {
	APIBaseURL  string   `yaml:"api_base_url"`
	PageBaseURL string   `yaml:"page_base_url"`
	Token       string   `yaml:"token,omitempty"`
	TokenFile   string   `yaml:"token_file"`
	Timeout     Duration `yaml:"timeout"`
	RateLimit   float64  `yaml:"rate_limit"`
	LogLevel    string   `yaml:"log_level"`
	LogFormat   string   `yaml:"log_format"`
	Output      string   `yaml:"output"`
}

// Duration is a time.Duration written as a Go duration string ("30s", "1m").
type Duration time.Duration

func (d Duration) String() string { return time.Duration(d).String() }

func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("timeout: %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("timeout: %w", err)
	}
	*d = Duration(v)
	return nil
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		APIBaseURL:  runscope.DefaultBaseURL,
		PageBaseURL: runscope.DefaultPageBaseURL,
		TokenFile:   DefaultTokenFile,
		Timeout:     Duration(30 * time.Second),
		LogLevel:    "info",
		LogFormat:   logging.FormatText,
		Output:      "ascii",
	}
}

// Load reads path over the defaults and applies environment overrides.
// An empty path or a missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// defaults
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	cfg.applyEnv(os.LookupEnv)
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvToken); ok && v != "" {
		c.Token = v
	}
	if v, ok := lookup(EnvAPIBaseURL); ok && v != "" {
		c.APIBaseURL = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
}

// Validate checks every field that can be checked without network access.
func (c Config) Validate() error {
	var errs []error
	urls := []struct{ name, raw string }{
		{"api_base_url", c.APIBaseURL},
		{"page_base_url", c.PageBaseURL},
	}
	for _, f := range urls {
		u, err := url.Parse(f.raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("%s %q is not an absolute URL", f.name, f.raw))
		}
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must not be negative"))
	}
	if c.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("rate_limit must not be negative"))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if !logging.ValidFormat(c.LogFormat) {
		errs = append(errs, fmt.Errorf("unknown log_format %q", c.LogFormat))
	}
	if _, err := report.ParseMode(c.Output); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ResolveToken returns the inline token, or the first line of TokenFile.
func (c Config) ResolveToken() (string, error) {
	if tok := strings.TrimSpace(c.Token); tok != "" {
		return tok, nil
	}
	if c.TokenFile == "" {
		return "", fmt.Errorf("no token configured: set %s or token_file", EnvToken)
	}
	tok, err := runscope.ReadToken(c.TokenFile)
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}
	if tok == "" {
		return "", fmt.Errorf("token file %s is empty", c.TokenFile)
	}
	return tok, nil
}

// Write saves c to path as YAML, omitting an inline token.
func (c Config) Write(path string) error {
	c.Token = ""
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

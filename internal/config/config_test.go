package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvToken, EnvAPIBaseURL, EnvLogLevel} {
		t.Setenv(k, "")
	}
}

func TestLoad_MissingFileIsDefault(t *testing.T) {
	clearEnv(t)
	got, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Default(), got); diff != "" {
		t.Errorf("Load mismatch (-want +got):\n%s", diff)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "apimonitor.yaml", `
api_base_url: https://api.example.test
timeout: 5s
rate_limit: 2.5
log_format: json
output: markdown
`)

	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	want := Default()
	want.APIBaseURL = "https://api.example.test"
	want.Timeout = Duration(5 * time.Second)
	want.RateLimit = 2.5
	want.LogFormat = "json"
	want.Output = "markdown"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Load mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_BadDuration(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "apimonitor.yaml", "timeout: soon\n")
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "timeout") {
		t.Fatalf("err = %v, want timeout parse error", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvToken, "env-token")
	t.Setenv(EnvAPIBaseURL, "https://env.example.test")
	t.Setenv(EnvLogLevel, "debug")
	path := writeFile(t, "apimonitor.yaml", "token: file-token\nlog_level: warn\n")

	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Token != "env-token" || got.APIBaseURL != "https://env.example.test" || got.LogLevel != "debug" {
		t.Errorf("env overrides not applied: %+v", got)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.APIBaseURL = "not a url"
	cfg.Timeout = Duration(-time.Second)
	cfg.RateLimit = -1
	cfg.LogLevel = "loud"
	cfg.LogFormat = "xml"
	cfg.Output = "html"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"api_base_url", "timeout", "rate_limit", "loud", "xml", "html"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestResolveToken(t *testing.T) {
	t.Run("inline", func(t *testing.T) {
		cfg := Config{Token: " abc \n"}
		got, err := cfg.ResolveToken()
		if err != nil || got != "abc" {
			t.Errorf("ResolveToken = %q, %v", got, err)
		}
	})

	t.Run("file first line", func(t *testing.T) {
		cfg := Config{TokenFile: writeFile(t, "token", "  secret  \nsecond\n")}
		got, err := cfg.ResolveToken()
		if err != nil || got != "secret" {
			t.Errorf("ResolveToken = %q, %v", got, err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		cfg := Config{TokenFile: filepath.Join(t.TempDir(), "nope")}
		_, err := cfg.ResolveToken()
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("err = %v, want fs.ErrNotExist", err)
		}
	})

	t.Run("empty file", func(t *testing.T) {
		cfg := Config{TokenFile: writeFile(t, "token", "\n")}
		if _, err := cfg.ResolveToken(); err == nil {
			t.Error("expected error for empty token file")
		}
	})

	t.Run("nothing configured", func(t *testing.T) {
		if _, err := (Config{}).ResolveToken(); err == nil {
			t.Error("expected error")
		}
	})
}

func TestWrite_RoundTripsWithoutToken(t *testing.T) {
	clearEnv(t)
	cfg := Default()
	cfg.Token = "do-not-persist"
	cfg.Timeout = Duration(90 * time.Second)
	path := filepath.Join(t.TempDir(), "out.yaml")

	if err := cfg.Write(path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "do-not-persist") {
		t.Errorf("token written to disk:\n%s", data)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Timeout != Duration(90*time.Second) {
		t.Errorf("Timeout = %v", time.Duration(got.Timeout))
	}
}

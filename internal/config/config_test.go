package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, envPrefix) {
			key, _, _ := strings.Cut(kv, "=")
			t.Setenv(key, "")
		}
	}
}

func TestLoad_defaultsWithoutFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, used, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if used != "" {
		t.Errorf("used config = %q, want none", used)
	}
	if cfg.LinkExt != "strm" || cfg.PlaylistName != "live.m3u" {
		t.Errorf("link/playlist = %q/%q", cfg.LinkExt, cfg.PlaylistName)
	}
	if !cfg.InsecureTLS {
		t.Error("insecure_tls should default to true")
	}
	if cfg.RequestsPerSecond != 5 {
		t.Errorf("requests_per_second = %v", cfg.RequestsPerSecond)
	}
	if !filepath.IsAbs(cfg.StatePath) || !filepath.IsAbs(cfg.OutputDir) {
		t.Errorf("paths not absolute: %q %q", cfg.StatePath, cfg.OutputDir)
	}
}

func TestLoad_fileThenEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
output_dir = "` + filepath.ToSlash(filepath.Join(dir, "out")) + `"
link_ext = ".STRM"
request_timeout = 12
log_level = "DEBUG"
insecure_tls = false
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("STRMSYNC_REQUEST_TIMEOUT", "1m")
	t.Setenv("STRMSYNC_PLAYLIST_NAME", "tv.m3u")

	cfg, used, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if used != path {
		t.Errorf("used = %q, want %q", used, path)
	}
	if cfg.OutputDir != filepath.Join(dir, "out") {
		t.Errorf("output_dir = %q", cfg.OutputDir)
	}
	if cfg.LinkExt != "STRM" {
		t.Errorf("link_ext = %q", cfg.LinkExt)
	}
	if cfg.RequestTimeout != 60 {
		t.Errorf("request_timeout = %d, env should win", cfg.RequestTimeout)
	}
	if cfg.PlaylistName != "tv.m3u" {
		t.Errorf("playlist_name = %q", cfg.PlaylistName)
	}
	if cfg.LogLevel != "debug" || cfg.InsecureTLS {
		t.Errorf("log_level=%q insecure_tls=%v", cfg.LogLevel, cfg.InsecureTLS)
	}
	if got := cfg.PlaylistPath(); got != filepath.Join(dir, "out", "tv.m3u") {
		t.Errorf("PlaylistPath = %q", got)
	}
}

func TestLoad_explicitMissingFile(t *testing.T) {
	clearEnv(t)
	if _, _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestLoad_unknownKey(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("bogus = 1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"empty ext", func(c *Config) { c.LinkExt = "" }, false},
		{"ext with slash", func(c *Config) { c.LinkExt = "a/b" }, false},
		{"playlist path", func(c *Config) { c.PlaylistName = "x/live.m3u" }, false},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }, false},
		{"negative rate", func(c *Config) { c.RequestsPerSecond = -1 }, false},
		{"unthrottled", func(c *Config) { c.RequestsPerSecond = 0 }, true},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }, false},
		{"bad level", func(c *Config) { c.LogLevel = "trace" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			err := c.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestTOMLRoundTrip(t *testing.T) {
	clearEnv(t)
	c := Default()
	c.OutputDir = filepath.Join(t.TempDir(), "lib")
	data, err := c.TOML()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "link_ext =") || !strings.Contains(string(data), "strm") {
		t.Errorf("rendered config missing link_ext:\n%s", data)
	}
	path := filepath.Join(t.TempDir(), "c.toml")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	got, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load rendered: %v", err)
	}
	if got.OutputDir != c.OutputDir {
		t.Errorf("output_dir = %q, want %q", got.OutputDir, c.OutputDir)
	}
}

func TestGetEnvSeconds(t *testing.T) {
	t.Setenv("STRMSYNC_TEST_SECS", "45")
	if got := getEnvSeconds("STRMSYNC_TEST_SECS", 1); got != 45 {
		t.Errorf("plain = %d", got)
	}
	t.Setenv("STRMSYNC_TEST_SECS", "2m")
	if got := getEnvSeconds("STRMSYNC_TEST_SECS", 1); got != 120 {
		t.Errorf("duration = %d", got)
	}
	t.Setenv("STRMSYNC_TEST_SECS", "soon")
	if got := getEnvSeconds("STRMSYNC_TEST_SECS", 7); got != 7 {
		t.Errorf("invalid = %d", got)
	}
}

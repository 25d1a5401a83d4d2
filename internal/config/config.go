// Package config resolves strm-sync settings from built-in defaults, an optional
// TOML file and STRMSYNC_* environment variables, in that order of precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const envPrefix = "STRMSYNC_"

// Config holds every tunable of the CLI.
type Config struct {
	StatePath        string `toml:"state_path"`
	CatalogCachePath string `toml:"catalog_cache_path"`
	HistoryDB        string `toml:"history_db"`
	VaultDir         string `toml:"vault_dir"`
	OutputDir        string `toml:"output_dir"`
	PlaylistName     string `toml:"playlist_name"`
	LinkExt          string `toml:"link_ext"`

	RequestTimeout    int     `toml:"request_timeout"`  // seconds, catalog calls
	MetadataTimeout   int     `toml:"metadata_timeout"` // seconds, TMDB calls
	UserAgent         string  `toml:"user_agent"`
	InsecureTLS       bool    `toml:"insecure_tls"`
	ProxyURL          string  `toml:"proxy_url"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	TMDBBaseURL       string  `toml:"tmdb_base_url"`

	LogLevel        string `toml:"log_level"`
	LogFormat       string `toml:"log_format"` // auto, console or json
	MetricsTextfile string `toml:"metrics_textfile"`
}

// Default returns the built-in configuration. Paths live under the user's
// config and cache directories.
func Default() Config {
	configDir := userDir(os.UserConfigDir)
	cacheDir := userDir(os.UserCacheDir)
	return Config{
		StatePath:         filepath.Join(configDir, "state.json"),
		CatalogCachePath:  filepath.Join(cacheDir, "catalog.json"),
		HistoryDB:         filepath.Join(configDir, "history.db"),
		VaultDir:          configDir,
		OutputDir:         "library",
		PlaylistName:      "live.m3u",
		LinkExt:           "strm",
		RequestTimeout:    30,
		MetadataTimeout:   5,
		InsecureTLS:       true,
		RequestsPerSecond: 5,
		TMDBBaseURL:       "https://api.themoviedb.org/3",
		LogLevel:          "info",
		LogFormat:         "auto",
	}
}

func userDir(base func() (string, error)) string {
	dir, err := base()
	if err != nil || dir == "" {
		return ".strmsync"
	}
	return filepath.Join(dir, "strmsync")
}

// DefaultConfigPath is where Load looks when no path is given.
func DefaultConfigPath() string {
	return filepath.Join(userDir(os.UserConfigDir), "config.toml")
}

// Load builds the configuration. An explicit path must exist; with an empty path
// the default location is used when present. Environment variables override the file.
func Load(path string) (*Config, string, error) {
	cfg := Default()

	resolved, explicit := path, path != ""
	if !explicit {
		resolved = DefaultConfigPath()
	}
	resolved, err := expandPath(resolved)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(resolved)
	switch {
	case err == nil:
		if err := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(&cfg); err != nil {
			return nil, "", fmt.Errorf("parse config %s: %w", resolved, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		resolved = ""
	default:
		return nil, "", fmt.Errorf("open config: %w", err)
	}

	cfg.applyEnv()
	if err := cfg.normalize(); err != nil {
		return nil, "", err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return &cfg, resolved, nil
}

func (c *Config) applyEnv() {
	c.StatePath = getEnv(envPrefix+"STATE_PATH", c.StatePath)
	c.CatalogCachePath = getEnv(envPrefix+"CATALOG_CACHE_PATH", c.CatalogCachePath)
	c.HistoryDB = getEnv(envPrefix+"HISTORY_DB", c.HistoryDB)
	c.VaultDir = getEnv(envPrefix+"VAULT_DIR", c.VaultDir)
	c.OutputDir = getEnv(envPrefix+"OUTPUT_DIR", c.OutputDir)
	c.PlaylistName = getEnv(envPrefix+"PLAYLIST_NAME", c.PlaylistName)
	c.LinkExt = getEnv(envPrefix+"LINK_EXT", c.LinkExt)
	c.RequestTimeout = getEnvSeconds(envPrefix+"REQUEST_TIMEOUT", c.RequestTimeout)
	c.MetadataTimeout = getEnvSeconds(envPrefix+"METADATA_TIMEOUT", c.MetadataTimeout)
	c.UserAgent = getEnv(envPrefix+"USER_AGENT", c.UserAgent)
	c.InsecureTLS = getEnvBool(envPrefix+"INSECURE_TLS", c.InsecureTLS)
	c.ProxyURL = getEnv(envPrefix+"PROXY_URL", c.ProxyURL)
	c.RequestsPerSecond = getEnvFloat(envPrefix+"REQUESTS_PER_SECOND", c.RequestsPerSecond)
	c.TMDBBaseURL = getEnv(envPrefix+"TMDB_BASE_URL", c.TMDBBaseURL)
	c.LogLevel = getEnv(envPrefix+"LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv(envPrefix+"LOG_FORMAT", c.LogFormat)
	c.MetricsTextfile = getEnv(envPrefix+"METRICS_TEXTFILE", c.MetricsTextfile)
}

func (c *Config) normalize() error {
	for _, p := range []*string{&c.StatePath, &c.CatalogCachePath, &c.HistoryDB, &c.VaultDir, &c.OutputDir, &c.MetricsTextfile} {
		expanded, err := expandPath(strings.TrimSpace(*p))
		if err != nil {
			return err
		}
		*p = expanded
	}
	c.LinkExt = strings.TrimPrefix(strings.TrimSpace(c.LinkExt), ".")
	c.PlaylistName = strings.TrimSpace(c.PlaylistName)
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	c.TMDBBaseURL = strings.TrimRight(strings.TrimSpace(c.TMDBBaseURL), "/")
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.StatePath == "":
		return errors.New("state_path must be set")
	case c.LinkExt == "" || strings.ContainsAny(c.LinkExt, `/\`):
		return fmt.Errorf("link_ext %q is not a file extension", c.LinkExt)
	case c.PlaylistName == "" || strings.ContainsAny(c.PlaylistName, `/\`):
		return fmt.Errorf("playlist_name %q must be a bare file name", c.PlaylistName)
	case c.RequestTimeout <= 0:
		return errors.New("request_timeout must be positive")
	case c.MetadataTimeout <= 0:
		return errors.New("metadata_timeout must be positive")
	case c.RequestsPerSecond < 0:
		return errors.New("requests_per_second must not be negative")
	}
	switch c.LogFormat {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("log_format %q must be auto, console or json", c.LogFormat)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level %q must be debug, info, warn or error", c.LogLevel)
	}
	return nil
}

// RequestTimeoutDuration is RequestTimeout as a time.Duration.
func (c *Config) RequestTimeoutDuration() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// MetadataTimeoutDuration is MetadataTimeout as a time.Duration.
func (c *Config) MetadataTimeoutDuration() time.Duration {
	return time.Duration(c.MetadataTimeout) * time.Second
}

// PlaylistPath is the live playlist location under OutputDir.
func (c *Config) PlaylistPath() string {
	return filepath.Join(c.OutputDir, c.PlaylistName)
}

// TOML renders c in the config file format.
func (c *Config) TOML() ([]byte, error) {
	return toml.Marshal(c)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	switch v := strings.ToLower(strings.TrimSpace(os.Getenv(key))); v {
	case "":
		return defaultVal
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return defaultVal
	}
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

// getEnvSeconds accepts a bare number of seconds or a Go duration ("45s", "2m").
func getEnvSeconds(key string, defaultVal int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	if d, err := time.ParseDuration(v); err == nil {
		return int(d.Round(time.Second) / time.Second)
	}
	return defaultVal
}

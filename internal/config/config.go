// Package config holds captiond configuration: defaults, an optional
// TOML file, then CAPTIOND_* environment overrides, in that order.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds captiond configuration.
type Config struct {
	// CaptionsPath is the JSONL/text file the daemon tails for captions.
	CaptionsPath string

	// LogDir receives the diagnostics event log.
	LogDir string

	// WindowDuration is the fixed caption window width.
	WindowDuration time.Duration

	// PollInterval is how often window expiry is checked.
	PollInterval time.Duration

	// LiveInterval is how often the live view is printed (0 disables).
	LiveInterval time.Duration

	// OracleTimeout bounds each summarization call.
	OracleTimeout time.Duration

	// Model pins a Claude model; empty means probe ModelCandidates.
	Model string

	// ModelCandidates is the probe order when Model is empty.
	ModelCandidates []string

	// APIKey overrides ANTHROPIC_API_KEY. Empty plus no env key means
	// the heuristic oracle is used.
	APIKey string

	// MaxTokens caps summary length.
	MaxTokens int

	// ReportJSON switches the final report to JSONL on stdout.
	ReportJSON bool
}

// fileConfig is the TOML shape. Durations are strings in the file
// ("30s", "1m") and parsed explicitly.
type fileConfig struct {
	CaptionsPath    *string  `toml:"captions_path"`
	LogDir          *string  `toml:"log_dir"`
	WindowDuration  *string  `toml:"window_duration"`
	PollInterval    *string  `toml:"poll_interval"`
	LiveInterval    *string  `toml:"live_interval"`
	OracleTimeout   *string  `toml:"oracle_timeout"`
	Model           *string  `toml:"model"`
	ModelCandidates []string `toml:"model_candidates"`
	APIKey          *string  `toml:"api_key"`
	MaxTokens       *int     `toml:"max_tokens"`
	ReportJSON      *bool    `toml:"report_json"`
}

// Default returns the default configuration.
func Default() *Config {
	home, _ := os.UserHomeDir()
	share := filepath.Join(home, ".local", "share", "captiond")
	return &Config{
		CaptionsPath:   filepath.Join(share, "captions.jsonl"),
		LogDir:         filepath.Join(share, "log"),
		WindowDuration: 30 * time.Second,
		PollInterval:   time.Second,
		LiveInterval:   5 * time.Second,
		OracleTimeout:  30 * time.Second,
		MaxTokens:      500,
	}
}

// Load returns configuration from defaults, the TOML file at path (if
// non-empty), and environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		var fc fileConfig
		if err := toml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
		if err := cfg.applyFile(&fc); err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
	}

	overrideString(&cfg.CaptionsPath, "CAPTIOND_CAPTIONS_PATH")
	overrideString(&cfg.LogDir, "CAPTIOND_LOG_DIR")
	overrideDuration(&cfg.WindowDuration, "CAPTIOND_WINDOW_DURATION")
	overrideDuration(&cfg.PollInterval, "CAPTIOND_POLL_INTERVAL")
	overrideDuration(&cfg.LiveInterval, "CAPTIOND_LIVE_INTERVAL")
	overrideDuration(&cfg.OracleTimeout, "CAPTIOND_ORACLE_TIMEOUT")
	overrideString(&cfg.Model, "CAPTIOND_MODEL")
	overrideString(&cfg.APIKey, "ANTHROPIC_API_KEY")
	overrideInt(&cfg.MaxTokens, "CAPTIOND_MAX_TOKENS")
	overrideBool(&cfg.ReportJSON, "CAPTIOND_REPORT_JSON")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the core must never start with.
func (c *Config) Validate() error {
	if c.WindowDuration <= 0 {
		return fmt.Errorf("config: window_duration must be positive, got %v", c.WindowDuration)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("config: poll_interval must be positive, got %v", c.PollInterval)
	}
	if c.OracleTimeout <= 0 {
		return fmt.Errorf("config: oracle_timeout must be positive, got %v", c.OracleTimeout)
	}
	return nil
}

func (c *Config) applyFile(fc *fileConfig) error {
	if fc.CaptionsPath != nil {
		c.CaptionsPath = *fc.CaptionsPath
	}
	if fc.LogDir != nil {
		c.LogDir = *fc.LogDir
	}
	if err := applyDuration(&c.WindowDuration, fc.WindowDuration, "window_duration"); err != nil {
		return err
	}
	if err := applyDuration(&c.PollInterval, fc.PollInterval, "poll_interval"); err != nil {
		return err
	}
	if err := applyDuration(&c.LiveInterval, fc.LiveInterval, "live_interval"); err != nil {
		return err
	}
	if err := applyDuration(&c.OracleTimeout, fc.OracleTimeout, "oracle_timeout"); err != nil {
		return err
	}
	if fc.Model != nil {
		c.Model = *fc.Model
	}
	if fc.ModelCandidates != nil {
		c.ModelCandidates = fc.ModelCandidates
	}
	if fc.APIKey != nil {
		c.APIKey = *fc.APIKey
	}
	if fc.MaxTokens != nil {
		c.MaxTokens = *fc.MaxTokens
	}
	if fc.ReportJSON != nil {
		c.ReportJSON = *fc.ReportJSON
	}
	return nil
}

func applyDuration(dest *time.Duration, raw *string, name string) error {
	if raw == nil {
		return nil
	}
	parsed, err := time.ParseDuration(*raw)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dest = parsed
	return nil
}

func overrideString(dest *string, key string) {
	if val := os.Getenv(key); val != "" {
		*dest = val
	}
}

func overrideDuration(dest *time.Duration, key string) {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			*dest = parsed
		}
	}
}

func overrideInt(dest *int, key string) {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			*dest = parsed
		}
	}
}

func overrideBool(dest *bool, key string) {
	if val := os.Getenv(key); val != "" {
		switch strings.ToLower(val) {
		case "1", "true", "yes", "y", "on":
			*dest = true
		case "0", "false", "no", "n", "off":
			*dest = false
		}
	}
}

// Package config provides configuration types and defaults for mdispatch.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zjrosen/multidispatch/internal/log"
)

// Config holds all configuration options for mdispatch.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Dispatch DispatchConfig `mapstructure:"dispatch"`
	Check    CheckConfig    `mapstructure:"check"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
}

// LogConfig controls the debug log.
type LogConfig struct {
	// Level is the minimum level written: debug, info, warn or error.
	Level string `mapstructure:"level"`

	// File is the log destination used when --debug is set.
	// Default: debug.log in the current directory
	File string `mapstructure:"file"`
}

// DispatchConfig holds dispatcher settings.
type DispatchConfig struct {
	MaxDepth          int           `mapstructure:"max_depth"`           // 0 = unlimited
	SlowCallThreshold time.Duration `mapstructure:"slow_call_threshold"` // Warn about calls slower than this
	LogArgs           bool          `mapstructure:"log_args"`            // Include arguments in call log entries

	// Memo caches results of operations the catalog marks memo: true.
	Memo    bool          `mapstructure:"memo"`
	MemoTTL time.Duration `mapstructure:"memo_ttl"`
}

// CheckConfig holds defaults for `mdispatch check`.
type CheckConfig struct {
	Count    int     `mapstructure:"count"`
	IntMin   int     `mapstructure:"int_min"`
	IntMax   int     `mapstructure:"int_max"`
	FloatMin float64 `mapstructure:"float_min"`
	FloatMax float64 `mapstructure:"float_max"`
	CharMin  int     `mapstructure:"char_min"`
	CharMax  int     `mapstructure:"char_max"`
}

// TracingConfig holds tracing configuration.
type TracingConfig struct {
	// Enabled controls whether every dispatch is traced.
	// Default: false
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the trace export backend.
	// Options: "none", "file", "stdout", "otlp"
	// Default: "file"
	Exporter string `mapstructure:"exporter"`

	// FilePath is the output file for "file" exporter.
	// Default: ~/.config/mdispatch/traces/traces.jsonl
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the collector endpoint for "otlp" exporter.
	// Default: "localhost:4317"
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate controls trace sampling (0.0 to 1.0).
	// Default: 1.0
	SampleRate float64 `mapstructure:"sample_rate"`
}

// CatalogConfig selects the operations loaded at startup.
type CatalogConfig struct {
	// Path is a YAML catalog file. Empty means the built-in demo catalog.
	Path string `mapstructure:"path"`

	// Watch re-applies the catalog in the REPL when the file changes.
	Watch bool `mapstructure:"watch"`
}

// DefaultTracesFilePath returns ~/.config/mdispatch/traces/traces.jsonl, or
// an empty string if the home directory is unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "mdispatch", "traces", "traces.jsonl")
}

// Validate checks every section.
func (c Config) Validate() error {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if err := ValidateDispatch(c.Dispatch); err != nil {
		return err
	}
	if err := ValidateCheck(c.Check); err != nil {
		return err
	}
	return ValidateTracing(c.Tracing)
}

// ValidateDispatch checks dispatcher settings.
func ValidateDispatch(d DispatchConfig) error {
	if d.MaxDepth < 0 {
		return fmt.Errorf("dispatch.max_depth must not be negative, got %d", d.MaxDepth)
	}
	if d.SlowCallThreshold < 0 {
		return fmt.Errorf("dispatch.slow_call_threshold must not be negative, got %s", d.SlowCallThreshold)
	}
	if d.MemoTTL < 0 {
		return fmt.Errorf("dispatch.memo_ttl must not be negative, got %s", d.MemoTTL)
	}
	return nil
}

// ValidateCheck checks property harness defaults.
func ValidateCheck(c CheckConfig) error {
	if c.Count < 0 {
		return fmt.Errorf("check.count must not be negative, got %d", c.Count)
	}
	if c.IntMin > c.IntMax {
		return fmt.Errorf("check.int_min (%d) is greater than check.int_max (%d)", c.IntMin, c.IntMax)
	}
	if c.FloatMin > c.FloatMax {
		return fmt.Errorf("check.float_min (%g) is greater than check.float_max (%g)", c.FloatMin, c.FloatMax)
	}
	if c.CharMin < 0 || c.CharMin > c.CharMax {
		return fmt.Errorf("check.char_min (%d) and check.char_max (%d) must form a non-negative range", c.CharMin, c.CharMax)
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tracing TracingConfig) error {
	if tracing.SampleRate < 0.0 || tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tracing.SampleRate)
	}

	if tracing.Exporter != "" {
		switch tracing.Exporter {
		case "none", "file", "stdout", "otlp":
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tracing.Exporter)
		}
	}

	// Only validate path requirements when tracing is enabled
	if tracing.Enabled {
		if tracing.Exporter == "file" && tracing.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}

	return nil
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Log: LogConfig{
			Level: "debug",
			File:  "debug.log",
		},
		Dispatch: DispatchConfig{
			MaxDepth:          10000,
			SlowCallThreshold: 100 * time.Millisecond,
			LogArgs:           false,
			Memo:              false,
			MemoTTL:           10 * time.Minute,
		},
		Check: CheckConfig{
			Count:    100,
			IntMin:   0,
			IntMax:   100,
			FloatMin: 0,
			FloatMax: 1,
			CharMin:  0,
			CharMax:  255,
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     DefaultTracesFilePath(),
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
	}
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# mdispatch configuration

# Debug log (written only when --debug is set)
log:
  level: debug        # debug, info, warn or error
  # file: debug.log

# Dispatcher settings
dispatch:
  max_depth: 10000            # Nested dispatch limit, 0 = unlimited
  slow_call_threshold: 100ms  # Warn about calls slower than this
  log_args: false             # Include arguments in call log entries
  memo: false                 # Cache results of operations marked memo: true
  memo_ttl: 10m

# Defaults for 'mdispatch check'
check:
  count: 100
  int_min: 0
  int_max: 100
  float_min: 0
  float_max: 1
  char_min: 0
  char_max: 255

# Operation catalog
catalog:
  # path: operations.yaml     # YAML catalog; the built-in demo catalog when unset
  watch: false                # Re-apply the catalog in the REPL when it changes

# Tracing: one span per dispatched call
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/mdispatch/traces/traces.jsonl
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}

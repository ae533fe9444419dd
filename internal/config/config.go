// Package config loads the iofimport configuration file.
//
// The file is YAML. Values missing from the file keep their defaults, then
// IOFIMPORT_* environment variables are applied, and the result is checked
// against the embedded CUE schema.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// AppName names the XDG subdirectories.
const AppName = "iofimport"

//go:embed schema.cue
var schemaSource string

// Config holds all iofimport settings.
type Config struct {
	// Database is the SQLite file results are stored in.
	Database string `yaml:"database" json:"database"`

	Log    LogConfig    `yaml:"log" json:"log"`
	Import ImportConfig `yaml:"import" json:"import"`
	Fetch  FetchConfig  `yaml:"fetch" json:"fetch"`
	Watch  WatchConfig  `yaml:"watch" json:"watch"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`   // debug, info, warn, error
	Format string `yaml:"format" json:"format"` // console, json
}

// ImportConfig configures the importer.
type ImportConfig struct {
	Concurrency        int  `yaml:"concurrency" json:"concurrency"`
	Strict             bool `yaml:"strict" json:"strict"`
	RecomputePositions bool `yaml:"recompute_positions" json:"recompute_positions"`
}

// FetchConfig configures document fetching.
type FetchConfig struct {
	Timeout   string `yaml:"timeout" json:"timeout"`
	MaxBytes  int64  `yaml:"max_bytes" json:"max_bytes"`
	AWSRegion string `yaml:"aws_region,omitempty" json:"aws_region,omitempty"`
}

// WatchConfig configures the drop-folder watcher.
type WatchConfig struct {
	Debounce string `yaml:"debounce" json:"debounce"`
	Pattern  string `yaml:"pattern" json:"pattern"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Database: filepath.Join(xdg.DataHome, AppName, "results.db"),
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Import: ImportConfig{
			Concurrency:        4,
			Strict:             false,
			RecomputePositions: true,
		},
		Fetch: FetchConfig{
			Timeout:  "30s",
			MaxBytes: 64 << 20,
		},
		Watch: WatchConfig{
			Debounce: "500ms",
			Pattern:  "*.xml",
		},
	}
}

// DefaultPath returns the config file location under $XDG_CONFIG_HOME.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

// Load reads the configuration at path. An empty path searches the XDG
// config directories and falls back to defaults when no file exists; an
// explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		found, err := xdg.SearchConfigFile(filepath.Join(AppName, "config.yaml"))
		if err == nil {
			path = found
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		if path != "" {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("IOFIMPORT_DB"); v != "" {
		c.Database = v
	}
	if v := os.Getenv("IOFIMPORT_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" && c.Fetch.AWSRegion == "" {
		c.Fetch.AWSRegion = v
	}
}

// Validate checks the configuration against the schema.
func (c *Config) Validate() error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("config schema: %w", err)
	}
	value := ctx.CompileBytes(data, cue.Filename("config.json"))
	if err := value.Err(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return &ValidationError{Problems: problems(err)}
	}
	return nil
}

// ValidationError lists every schema violation.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid config: " + e.Problems[0]
	}
	return fmt.Sprintf("invalid config: %d problems: %v", len(e.Problems), e.Problems)
}

func problems(err error) []string {
	var out []string
	for _, e := range cueerrors.Errors(err) {
		out = append(out, e.Error())
	}
	if len(out) == 0 {
		out = append(out, err.Error())
	}
	return out
}

// IsValidationError reports whether err came from Validate.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// FetchTimeout returns the fetch timeout as a duration.
func (c *Config) FetchTimeout() time.Duration {
	d, err := time.ParseDuration(c.Fetch.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// WatchDebounce returns the watch debounce interval as a duration.
func (c *Config) WatchDebounce() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil {
		return 500 * time.Millisecond
	}
	return d
}

// Package config loads bridgerun settings. Precedence, highest first: flags, BRIDGERUN_*
// environment variables, the yaml config file, defaults.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"
)

const (
	DefaultRuntime     = "starlark"
	DefaultOutput      = "json"
	DefaultTimeout     = 30 * time.Second
	DefaultMaxDepth    = 64
	DefaultLogLevel    = "warn"
	DefaultConcurrency = 4

	// EnvPrefix prefixes every environment variable read by Load.
	EnvPrefix = "BRIDGERUN_"
)

// OutputFormats are the accepted values of Config.Output.
var OutputFormats = []string{"json", "yaml", "text"}

// Config is the merged bridgerun configuration.
type Config struct {
	Runtime     string         `koanf:"runtime"`
	Output      string         `koanf:"output"`
	Timeout     time.Duration  `koanf:"timeout"`
	MaxDepth    int            `koanf:"max_depth"`
	LogLevel    string         `koanf:"log_level"`
	Concurrency int            `koanf:"concurrency"`
	Input       map[string]any `koanf:"input"`

	Extism    ExtismConfig    `koanf:"extism"`
	Osascript OsascriptConfig `koanf:"osascript"`
	HTTP      HTTPConfig      `koanf:"http"`
}

// ExtismConfig selects the bridge plugin.
type ExtismConfig struct {
	WasmFile   string `koanf:"wasm_file"`
	EntryPoint string `koanf:"entry_point"`
}

// OsascriptConfig replaces the osascript binary.
type OsascriptConfig struct {
	Command string `koanf:"command"`
}

// HTTPConfig applies to scripts given as http or https URLs.
type HTTPConfig struct {
	Timeout  time.Duration `koanf:"timeout"`
	Token    string        `koanf:"token"`
	Username string        `koanf:"username"`
	Password string        `koanf:"password"`
}

func defaults() map[string]any {
	return map[string]any{
		"runtime":      DefaultRuntime,
		"output":       DefaultOutput,
		"timeout":      DefaultTimeout,
		"max_depth":    DefaultMaxDepth,
		"log_level":    DefaultLogLevel,
		"concurrency":  DefaultConcurrency,
		"http.timeout": DefaultTimeout,
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Runtime == "" {
		errs = append(errs, errors.New("runtime is required"))
	}
	if !slices.Contains(OutputFormats, c.Output) {
		errs = append(errs, fmt.Errorf("output must be one of %v, got %q", OutputFormats, c.Output))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout cannot be negative: %s", c.Timeout))
	}
	if c.MaxDepth <= 0 {
		errs = append(errs, fmt.Errorf("max_depth must be positive, got %d", c.MaxDepth))
	}
	if c.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("concurrency must be positive, got %d", c.Concurrency))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	if c.HTTP.Token != "" && c.HTTP.Username != "" {
		errs = append(errs, errors.New("http.token and http.username are mutually exclusive"))
	}
	return errors.Join(errs...)
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// Package config holds the runtime configuration of a haxby VM.
//
// Configuration is read from haxby.yaml:
//
//	symbols:
//	  capacity: 65536
//	stack:
//	  max_depth: 1024
//	extensions: [path, regex]
//	log:
//	  level: info
//	  format: console
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultMaxDepth is the call depth at which the VM reports a stack overflow.
const DefaultMaxDepth = 1024

// Config represents the top-level haxby.yaml configuration.
type Config struct {
	// Symbols configures the VM-wide symbol interner.
	Symbols SymbolsConfig `yaml:"symbols"`

	// Stack configures call nesting limits.
	Stack StackConfig `yaml:"stack"`

	// Extensions lists the native extensions loaded at startup
	// (e.g. "path", "regex"). Order is load order.
	Extensions []string `yaml:"extensions,omitempty"`

	// Log configures structured logging.
	Log LogConfig `yaml:"log"`
}

// SymbolsConfig limits the interner.
type SymbolsConfig struct {
	// Capacity is the maximum number of distinct names. Zero means the
	// full 32-bit handle space.
	Capacity uint64 `yaml:"capacity,omitempty"`
}

// StackConfig limits nested calls.
type StackConfig struct {
	// MaxDepth is the maximum number of nested calls. Zero means DefaultMaxDepth.
	MaxDepth int `yaml:"max_depth,omitempty"`
}

// LogConfig selects the log level and output format.
type LogConfig struct {
	// Level is one of trace, debug, info, warn, error, disabled.
	Level string `yaml:"level,omitempty"`

	// Format is console or json.
	Format string `yaml:"format,omitempty"`
}

var validLevels = []string{"trace", "debug", "info", "warn", "error", "disabled"}

// Default returns the configuration used when no haxby.yaml is present.
func Default() *Config {
	cfg := &Config{Extensions: []string{PathModuleName, RegexModuleName}}
	cfg.setDefaults()
	return cfg
}

// LoadConfig reads and parses a haxby.yaml file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses haxby.yaml content from bytes.
// The path argument is used only for error messages.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

// FindConfig searches for haxby.yaml starting from dir and walking up to
// parent directories. It returns an empty string and nil error if none is found.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func (c *Config) validate(path string) error {
	if c.Stack.MaxDepth < 0 {
		return fmt.Errorf("%s: stack.max_depth must not be negative", path)
	}
	if c.Symbols.Capacity > math.MaxUint32 {
		return fmt.Errorf("%s: symbols.capacity %d exceeds the 32-bit handle space", path, c.Symbols.Capacity)
	}

	seen := make(map[string]bool, len(c.Extensions))
	for i, ext := range c.Extensions {
		if ext == "" {
			return fmt.Errorf("%s: extensions[%d]: name is required", path, i)
		}
		if seen[ext] {
			return fmt.Errorf("%s: extensions[%d]: %q listed twice", path, i, ext)
		}
		seen[ext] = true
	}

	if c.Log.Level != "" && !contains(validLevels, strings.ToLower(c.Log.Level)) {
		return fmt.Errorf("%s: log.level %q must be one of %s", path, c.Log.Level, strings.Join(validLevels, ", "))
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "console", "json":
	default:
		return fmt.Errorf("%s: log.format %q must be console or json", path, c.Log.Format)
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Symbols.Capacity == 0 {
		c.Symbols.Capacity = math.MaxUint32
	}
	if c.Stack.MaxDepth == 0 {
		c.Stack.MaxDepth = DefaultMaxDepth
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	c.Log.Level = strings.ToLower(c.Log.Level)
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	c.Log.Format = strings.ToLower(c.Log.Format)
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

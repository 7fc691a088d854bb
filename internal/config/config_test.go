package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseConfig_Full(t *testing.T) {
	yaml := `
symbols:
  capacity: 4096
stack:
  max_depth: 64
extensions: [path, regex]
log:
  level: DEBUG
  format: json
`
	cfg, err := ParseConfig([]byte(yaml), "test.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Symbols.Capacity != 4096 {
		t.Errorf("capacity = %d, want 4096", cfg.Symbols.Capacity)
	}
	if cfg.Stack.MaxDepth != 64 {
		t.Errorf("max_depth = %d, want 64", cfg.Stack.MaxDepth)
	}
	if len(cfg.Extensions) != 2 || cfg.Extensions[0] != "path" || cfg.Extensions[1] != "regex" {
		t.Errorf("extensions = %v, want [path regex]", cfg.Extensions)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("format = %q, want json", cfg.Log.Format)
	}
}

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := ParseConfig([]byte("extensions: []\n"), "test.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Symbols.Capacity != math.MaxUint32 {
		t.Errorf("capacity = %d, want MaxUint32", cfg.Symbols.Capacity)
	}
	if cfg.Stack.MaxDepth != DefaultMaxDepth {
		t.Errorf("max_depth = %d, want %d", cfg.Stack.MaxDepth, DefaultMaxDepth)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "console" {
		t.Errorf("log = %+v, want info/console", cfg.Log)
	}
}

func TestParseConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"negative depth", "stack:\n  max_depth: -1\n", "max_depth must not be negative"},
		{"duplicate extension", "extensions: [path, path]\n", "listed twice"},
		{"empty extension", "extensions: [\"\"]\n", "name is required"},
		{"bad level", "log:\n  level: loud\n", "log.level"},
		{"bad format", "log:\n  format: xml\n", "log.format"},
		{"capacity overflow", "symbols:\n  capacity: 8589934592\n", "32-bit"},
		{"malformed", "stack: [\n", "parsing test.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.yaml), "test.yaml")
			if err == nil {
				t.Fatalf("expected error containing %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should contain %q", err, tt.want)
			}
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if len(cfg.Extensions) != 2 {
		t.Errorf("extensions = %v, want path and regex", cfg.Extensions)
	}
	if cfg.Stack.MaxDepth != DefaultMaxDepth {
		t.Errorf("max_depth = %d", cfg.Stack.MaxDepth)
	}
}

func TestFindConfig(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	path, err := FindConfig(nested)
	if err != nil {
		t.Fatalf("FindConfig: %v", err)
	}
	if path != "" && strings.HasPrefix(path, root) {
		t.Fatalf("found unexpected config %s", path)
	}

	want := filepath.Join(root, ConfigFileName)
	if err := os.WriteFile(want, []byte("extensions: [path]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	path, err = FindConfig(nested)
	if err != nil {
		t.Fatalf("FindConfig: %v", err)
	}
	if path != want {
		t.Errorf("FindConfig = %q, want %q", path, want)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if len(cfg.Extensions) != 1 || cfg.Extensions[0] != "path" {
		t.Errorf("extensions = %v", cfg.Extensions)
	}
}

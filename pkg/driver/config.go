// Package driver wires the pipeline together: tool configuration, logging,
// and the parse → optimize → execute/emit flow behind the CLI.
package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"bf/compiler-go/pkg/optimizer"
)

// ConfigFileName is the per-project tool configuration file, discovered by
// walking up from the working directory.
const ConfigFileName = "bf.yml"

// ErrConfigNotFound reports that no bf.yml exists from the start directory
// upwards.
var ErrConfigNotFound = errors.New("bf.yml not found")

// Config carries the tool settings. Flags override file values, file values
// override defaults.
type Config struct {
	Path     string // file the config was loaded from, empty for defaults
	OptLevel optimizer.Level
	MaxSteps int64  // -1 disables the budget
	Mode     string // "i" interpret, "c" compile
	OutDir   string
	LogLevel string
	LogFile  string
}

// DefaultConfig returns the documented defaults: full optimization,
// interpret mode, 8192 steps, current directory output.
func DefaultConfig() *Config {
	return &Config{
		OptLevel: optimizer.LevelFull,
		MaxSteps: 8192,
		Mode:     "i",
		OutDir:   ".",
		LogLevel: "warn",
	}
}

// ValidationError aggregates configuration problems.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "config: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("config validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

type configFile struct {
	OptLevel *int    `yaml:"opt_level"`
	MaxSteps *int64  `yaml:"max_steps"`
	Mode     *string `yaml:"mode"`
	OutDir   *string `yaml:"outdir"`
	Log      struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`
}

// LoadConfig parses a bf.yml, overlaying its values onto the defaults and
// validating the result.
func LoadConfig(path string) (*Config, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw configFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			raw = configFile{}
		} else {
			return nil, fmt.Errorf("config: parse %s: %w", absPath, err)
		}
	}

	cfg := DefaultConfig()
	cfg.Path = absPath
	if raw.OptLevel != nil {
		cfg.OptLevel = optimizer.Level(*raw.OptLevel)
	}
	if raw.MaxSteps != nil {
		cfg.MaxSteps = *raw.MaxSteps
	}
	if raw.Mode != nil {
		cfg.Mode = *raw.Mode
	}
	if raw.OutDir != nil {
		cfg.OutDir = *raw.OutDir
	}
	if raw.Log.Level != "" {
		cfg.LogLevel = raw.Log.Level
	}
	cfg.LogFile = raw.Log.File

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings, aggregating every problem found.
func (c *Config) Validate() error {
	var issues []string
	if c.OptLevel < optimizer.LevelNone || c.OptLevel > optimizer.LevelFull {
		issues = append(issues, fmt.Sprintf("opt_level must be 0, 1 or 2 (got %d)", c.OptLevel))
	}
	if c.MaxSteps == 0 || c.MaxSteps < -1 {
		issues = append(issues, fmt.Sprintf("max_steps must be positive, or -1 to disable the budget (got %d)", c.MaxSteps))
	}
	if c.Mode != "i" && c.Mode != "c" {
		issues = append(issues, fmt.Sprintf("mode must be %q (interpret) or %q (compile), got %q", "i", "c", c.Mode))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		issues = append(issues, fmt.Sprintf("log level must be debug, info, warn or error (got %q)", c.LogLevel))
	}
	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}

// FindConfig walks from start upwards looking for bf.yml, returning its path
// or ErrConfigNotFound.
func FindConfig(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("config: resolve start directory %q: %w", start, err)
	}
	if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	origin := dir
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s found from %s upwards: %w", ConfigFileName, origin, ErrConfigNotFound)
		}
		dir = parent
	}
}

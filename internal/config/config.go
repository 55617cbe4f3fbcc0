// internal/config/config.go
//
// This package handles tfgen configuration. Settings are layered: built-in
// defaults, then an optional tfgen.yaml in the working directory, then
// TFGEN_* environment variables (a .env file in the working directory is
// loaded first). Command-line flags are applied on top by the caller.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kingrea/tfgen/internal/topology"
)

const (
	// FileName is the optional configuration file read from the working directory
	FileName = "tfgen.yaml"

	// StateDir holds run history and logs inside the output directory
	StateDir = ".tfgen"

	defaultOutputDir = "output"
	defaultPrefix    = "tf-gen"
	defaultLogLevel  = "INFO"
)

// Environment variables that override file values.
const (
	EnvInput    = "TFGEN_INPUT"
	EnvOutput   = "TFGEN_OUTPUT"
	EnvPrefix   = "TFGEN_PREFIX"
	EnvLogLevel = "TFGEN_LOG_LEVEL"
)

// LogLevels lists the accepted log level names, least to most severe.
var LogLevels = []string{"DEBUG", "INFO", "WARNING", "ERROR", "CRITICAL"}

const defaultConfigYAML = `# tfgen configuration
version: 1

# Declaration read when no --input is given.
input: definition.yml

# Directory main.tf is written to.
output: output

log_level: INFO

naming:
  prefix: tf-gen
  # Placeholders: ${prefix}, ${service}, ${suffix}
  pattern: ${prefix}-${service}-${suffix}

# Override the plan used for services the resolver adds, or the versions the
# renderer pins.
defaults:
  plans: {}
  # plans:
  #   grafana: startup-4
  versions: {}
  # versions:
  #   kafka: "3.7"
`

// NamingConfig controls generated resource names.
type NamingConfig struct {
	Prefix  string `yaml:"prefix"`
	Pattern string `yaml:"pattern,omitempty"`
}

// DefaultsConfig overrides entries of the built-in default tables.
type DefaultsConfig struct {
	Plans    map[string]string `yaml:"plans,omitempty"`
	Versions map[string]string `yaml:"versions,omitempty"`
}

// FileConfig models tfgen.yaml.
type FileConfig struct {
	Version  int            `yaml:"version"`
	Input    string         `yaml:"input,omitempty"`
	Output   string         `yaml:"output,omitempty"`
	LogLevel string         `yaml:"log_level,omitempty"`
	Naming   NamingConfig   `yaml:"naming"`
	Defaults DefaultsConfig `yaml:"defaults,omitempty"`
}

// Config holds the runtime configuration for tfgen.
type Config struct {
	// WorkDir is the directory tfgen was run from; relative paths resolve against it
	WorkDir string

	File FileConfig
}

// Load builds the configuration for workDir. A missing tfgen.yaml or .env is
// not an error.
func Load(workDir string) (*Config, error) {
	if err := godotenv.Load(filepath.Join(workDir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}
	cfg := &Config{WorkDir: workDir, File: defaultFileConfig()}
	if err := cfg.loadFile(); err != nil {
		return nil, err
	}
	cfg.File.applyEnv()
	cfg.File.normalize()
	if err := cfg.File.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// InitFile writes a commented tfgen.yaml into dir unless one exists. It
// returns the path and whether a file was created.
func InitFile(dir string) (string, bool, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err == nil {
		return path, false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", false, err
	}
	if err := os.WriteFile(path, []byte(defaultConfigYAML), 0644); err != nil {
		return "", false, fmt.Errorf("config: write %s: %w", path, err)
	}
	return path, true, nil
}

// Path returns the on-disk location of tfgen.yaml.
func (c *Config) Path() string {
	return filepath.Join(c.WorkDir, FileName)
}

// InputPath returns the declaration path, resolved against WorkDir.
func (c *Config) InputPath() string {
	return resolvePath(c.WorkDir, c.File.Input)
}

// OutputDir returns the output directory, resolved against WorkDir.
func (c *Config) OutputDir() string {
	return resolvePath(c.WorkDir, c.File.Output)
}

// HistoryPath returns the run history file inside the output directory.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.OutputDir(), StateDir, "history.log")
}

// LogPath returns the log file inside the output directory.
func (c *Config) LogPath() string {
	return filepath.Join(c.OutputDir(), StateDir, "tfgen.log")
}

// Prefix returns the resource name prefix.
func (c *Config) Prefix() string {
	return c.File.Naming.Prefix
}

// NamePattern returns the resource naming pattern.
func (c *Config) NamePattern() string {
	return c.File.Naming.Pattern
}

// LogLevel returns the normalized log level name.
func (c *Config) LogLevel() string {
	return c.File.LogLevel
}

// Defaults returns the built-in default tables with configured overrides applied.
func (c *Config) Defaults() topology.Defaults {
	return topology.StandardDefaults().WithOverrides(c.File.Defaults.Plans, c.File.Defaults.Versions)
}

// Override applies non-empty command-line values on top of the loaded
// configuration.
func (c *Config) Override(input, output, prefix, logLevel string) error {
	if v := strings.TrimSpace(input); v != "" {
		c.File.Input = v
	}
	if v := strings.TrimSpace(output); v != "" {
		c.File.Output = v
	}
	if v := strings.TrimSpace(prefix); v != "" {
		c.File.Naming.Prefix = v
	}
	if v := strings.TrimSpace(logLevel); v != "" {
		c.File.LogLevel = v
	}
	c.File.normalize()
	if err := c.File.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func (c *Config) loadFile() error {
	path := c.Path()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed FileConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	parsed.applyDefaults()
	c.File = parsed
	return nil
}

func defaultFileConfig() FileConfig {
	return FileConfig{
		Version:  1,
		Input:    topology.DefaultDeclarationFile,
		Output:   defaultOutputDir,
		LogLevel: defaultLogLevel,
		Naming:   NamingConfig{Prefix: defaultPrefix},
	}
}

func (fc *FileConfig) applyDefaults() {
	if fc.Version == 0 {
		fc.Version = 1
	}
	if strings.TrimSpace(fc.Input) == "" {
		fc.Input = topology.DefaultDeclarationFile
	}
	if strings.TrimSpace(fc.Output) == "" {
		fc.Output = defaultOutputDir
	}
	if strings.TrimSpace(fc.LogLevel) == "" {
		fc.LogLevel = defaultLogLevel
	}
	if strings.TrimSpace(fc.Naming.Prefix) == "" {
		fc.Naming.Prefix = defaultPrefix
	}
}

func (fc *FileConfig) applyEnv() {
	if v, ok := os.LookupEnv(EnvInput); ok && strings.TrimSpace(v) != "" {
		fc.Input = v
	}
	if v, ok := os.LookupEnv(EnvOutput); ok && strings.TrimSpace(v) != "" {
		fc.Output = v
	}
	if v, ok := os.LookupEnv(EnvPrefix); ok && strings.TrimSpace(v) != "" {
		fc.Naming.Prefix = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && strings.TrimSpace(v) != "" {
		fc.LogLevel = v
	}
}

func (fc *FileConfig) normalize() {
	fc.Input = strings.TrimSpace(fc.Input)
	fc.Output = strings.TrimSpace(fc.Output)
	fc.Naming.Prefix = strings.TrimSpace(fc.Naming.Prefix)
	fc.Naming.Pattern = strings.TrimSpace(fc.Naming.Pattern)
	fc.LogLevel = strings.ToUpper(strings.TrimSpace(fc.LogLevel))
	if fc.LogLevel == "WARN" {
		fc.LogLevel = "WARNING"
	}
}

func (fc *FileConfig) validate() error {
	if fc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if !contains(LogLevels, fc.LogLevel) {
		return fmt.Errorf("log_level must be one of %s", strings.Join(LogLevels, ", "))
	}
	if fc.Naming.Prefix == "" {
		return fmt.Errorf("naming.prefix is required")
	}
	if fc.Naming.Pattern != "" && !strings.Contains(fc.Naming.Pattern, "${service}") {
		return fmt.Errorf("naming.pattern must contain ${service}")
	}
	for kind, plan := range fc.Defaults.Plans {
		if strings.TrimSpace(plan) == "" {
			return fmt.Errorf("defaults.plans[%s]: plan is required", kind)
		}
	}
	return nil
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), target) {
			return true
		}
	}
	return false
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/iancoleman/strcase"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/mcncl/jsonfixer/internal/errors"
)

// EnvPrefix prefixes every environment variable that overrides a config key.
const EnvPrefix = "JSONFIXER_"

// Config represents the complete configuration for jsonfixer
type Config struct {
	Output OutputConfig `yaml:"output"`
	Batch  BatchConfig  `yaml:"batch"`
	Log    LogConfig    `yaml:"log"`
}

// OutputConfig controls how corrected JSON is rendered
type OutputConfig struct {
	Pretty     bool   `yaml:"pretty"`
	Indent     string `yaml:"indent"`
	EscapeHTML bool   `yaml:"escape_html"`
}

// BatchConfig controls correction of multiple files
type BatchConfig struct {
	Workers int    `yaml:"workers"`
	Suffix  string `yaml:"suffix"`
	InPlace bool   `yaml:"in_place"`
}

// LogConfig controls logging
type LogConfig struct {
	Level string `yaml:"level"`
}

// Overrides carries values given on the command line. A nil field was not
// given and leaves the loaded configuration untouched.
type Overrides struct {
	Pretty     *bool
	Indent     *string
	EscapeHTML *bool
	Workers    *int
	Suffix     *string
	InPlace    *bool
	LogLevel   *string
}

// envKeys lists the dotted config keys that can be set from the environment.
var envKeys = []string{
	"output.pretty",
	"output.indent",
	"output.escape_html",
	"batch.workers",
	"batch.suffix",
	"batch.in_place",
	"log.level",
}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Pretty:     false,
			Indent:     "  ",
			EscapeHTML: false,
		},
		Batch: BatchConfig{
			Workers: 4,
			Suffix:  ".fixed.json",
			InPlace: false,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".jsonfixer.yml", ".jsonfixer.yaml", "jsonfixer.yml", "jsonfixer.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return ""
}

// EnvName returns the environment variable that overrides a dotted config key,
// e.g. "output.escape_html" -> "JSONFIXER_OUTPUT_ESCAPE_HTML".
func EnvName(key string) string {
	return EnvPrefix + strcase.ToScreamingSnake(strings.ReplaceAll(key, ".", "_"))
}

// EnvLookup returns a lookup that consults the process environment first and
// then the variables read from envFile. An empty envFile uses the process
// environment only.
func EnvLookup(envFile string) (func(string) (string, bool), error) {
	fileVars := map[string]string{}
	if envFile != "" {
		vars, err := godotenv.Read(envFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read env file '%s': %w", envFile, err)
		}
		fileVars = vars
	}

	return func(name string) (string, bool) {
		if v, ok := os.LookupEnv(name); ok {
			return v, true
		}
		v, ok := fileVars[name]
		return v, ok
	}, nil
}

// ApplyEnv overrides cfg with every JSONFIXER_* variable lookup knows about.
// Values are converted to the field types, so "true" and "8" are accepted for
// booleans and integers.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	values := map[string]any{}
	for _, key := range envKeys {
		v, ok := lookup(EnvName(key))
		if !ok {
			continue
		}
		section, field, _ := strings.Cut(key, ".")
		sub, ok := values[section].(map[string]any)
		if !ok {
			sub = map[string]any{}
			values[section] = sub
		}
		sub[field] = v
	}
	if len(values) == 0 {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "yaml",
		WeaklyTypedInput: true,
		Result:           c,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(values); err != nil {
		return fmt.Errorf("failed to apply environment overrides: %w", err)
	}
	return nil
}

// ApplyOverrides copies every CLI value that was given into c.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.Pretty != nil {
		c.Output.Pretty = *o.Pretty
	}
	if o.Indent != nil {
		c.Output.Indent = *o.Indent
	}
	if o.EscapeHTML != nil {
		c.Output.EscapeHTML = *o.EscapeHTML
	}
	if o.Workers != nil {
		c.Batch.Workers = *o.Workers
	}
	if o.Suffix != nil {
		c.Batch.Suffix = *o.Suffix
	}
	if o.InPlace != nil {
		c.Batch.InPlace = *o.InPlace
	}
	if o.LogLevel != nil {
		c.Log.Level = *o.LogLevel
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Batch.Workers < 1 {
		return fmt.Errorf("%w: batch.workers must be at least 1, got %d", errors.ErrInvalidConfig, c.Batch.Workers)
	}
	if c.Batch.Suffix == "" {
		return fmt.Errorf("%w: batch.suffix must not be empty", errors.ErrInvalidConfig)
	}
	if c.Output.Indent == "" {
		return fmt.Errorf("%w: output.indent must not be empty", errors.ErrInvalidConfig)
	}
	if strings.TrimSpace(c.Output.Indent) != "" {
		return fmt.Errorf("%w: output.indent may only contain whitespace, got %q", errors.ErrInvalidConfig, c.Output.Indent)
	}
	if _, ok := logLevels[strings.ToLower(c.Log.Level)]; !ok {
		return fmt.Errorf("%w: log.level must be one of debug, info, warn, error, got %q", errors.ErrInvalidConfig, c.Log.Level)
	}
	return nil
}

// SlogLevel returns the configured level, falling back to info.
func (l LogConfig) SlogLevel() slog.Level {
	if level, ok := logLevels[strings.ToLower(l.Level)]; ok {
		return level
	}
	return slog.LevelInfo
}

// LoadConfigWithCLI builds the effective configuration. Precedence, lowest
// first: defaults, config file, env file and environment, CLI overrides.
// An empty configPath loads no file.
func LoadConfigWithCLI(configPath, envFile string, overrides Overrides) (*Config, error) {
	cfg := NewConfig()

	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, errors.NewConfigError(fmt.Sprintf("failed to load '%s'", configPath), err)
		}
		cfg = fileConfig
	}

	lookup, err := EnvLookup(envFile)
	if err != nil {
		return nil, errors.NewConfigError("failed to load environment", err)
	}
	if err := cfg.ApplyEnv(lookup); err != nil {
		return nil, errors.NewConfigError("invalid environment override", err)
	}

	cfg.ApplyOverrides(overrides)

	if err := cfg.Validate(); err != nil {
		return nil, errors.NewConfigError(err.Error(), err)
	}

	return cfg, nil
}

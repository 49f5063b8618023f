package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dshills/decor/internal/diagnostics"
	"github.com/dshills/decor/internal/engine/decoration"
)

// Config is the complete decor configuration.
type Config struct {
	Log         LogConfig         `yaml:"log"`
	Decorations DecorationsConfig `yaml:"decorations"`
	History     HistoryConfig     `yaml:"history"`
	Diagnostics DiagnosticsConfig `yaml:"diagnostics"`
	Plugins     PluginsConfig     `yaml:"plugins"`
}

// LogConfig selects the log level and handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// DecorationsConfig configures decoration stores.
type DecorationsConfig struct {
	ValidationClasses ValidationClasses `yaml:"validation_classes"`
	Metrics           bool              `yaml:"metrics"`
}

// ValidationClasses names the class names hidden by validation filtering.
type ValidationClasses struct {
	Error   string `yaml:"error"`
	Warning string `yaml:"warning"`
}

// HistoryConfig configures document undo history.
type HistoryConfig struct {
	// Limit bounds the undo entries kept; 0 keeps the default and a
	// negative limit disables undo.
	Limit int `yaml:"limit"`
}

// DiagnosticsConfig configures diagnostic decorations.
type DiagnosticsConfig struct {
	// MinSeverity is the least severe LSP severity decorated (1-4).
	MinSeverity int `yaml:"min_severity"`
	// MaxPerFile caps decorated diagnostics per document; 0 disables the cap.
	MaxPerFile int `yaml:"max_per_file"`
	// Owner is the decoration owner of diagnostic decorations.
	Owner uint32 `yaml:"owner"`
	// Sources limits diagnostics to these sources; empty keeps all.
	Sources []string `yaml:"sources"`
	// URI, when set, rejects diagnostics published for other documents.
	URI string `yaml:"uri"`
}

// PluginsConfig configures the Lua host.
type PluginsConfig struct {
	// Timeout bounds each script run; 0 disables it.
	Timeout time.Duration `yaml:"timeout"`
	// Owner is the decoration owner given to scripts.
	Owner uint32 `yaml:"owner"`
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info", Format: "text"},
		Decorations: DecorationsConfig{
			ValidationClasses: ValidationClasses{
				Error:   decoration.DefaultErrorClass,
				Warning: decoration.DefaultWarningClass,
			},
		},
		History:     HistoryConfig{Limit: 1000},
		Diagnostics: DiagnosticsConfig{MinSeverity: 4, MaxPerFile: 1000, Owner: diagnostics.DefaultOwner},
		Plugins:     PluginsConfig{Timeout: 5 * time.Second, Owner: 100},
	}
}

// Load reads the YAML file at path over the defaults, applies DECOR_*
// environment overrides and validates the result. An empty path skips the
// file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := decode(data, cfg); err != nil {
			return nil, &ParseError{Path: path, Err: err}
		}
	}

	if err := ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result. It does
// not read the environment.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := decode(data, cfg); err != nil {
		return nil, &ParseError{Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode rejects unknown keys so typos are not silently ignored.
func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks every setting and returns the first failure.
func (c *Config) Validate() error {
	switch {
	case !slices.Contains(logLevels, c.Log.Level):
		return &ValidationError{Path: "log.level", Message: "must be one of debug, info, warn, error", Value: c.Log.Level}
	case !slices.Contains(logFormats, c.Log.Format):
		return &ValidationError{Path: "log.format", Message: "must be text or json", Value: c.Log.Format}
	case c.Decorations.ValidationClasses.Error == "":
		return &ValidationError{Path: "decorations.validation_classes.error", Message: "must not be empty", Value: ""}
	case c.Decorations.ValidationClasses.Warning == "":
		return &ValidationError{Path: "decorations.validation_classes.warning", Message: "must not be empty", Value: ""}
	case c.Decorations.ValidationClasses.Error == c.Decorations.ValidationClasses.Warning:
		return &ValidationError{Path: "decorations.validation_classes", Message: "error and warning classes must differ", Value: c.Decorations.ValidationClasses.Error}
	case c.Diagnostics.MinSeverity < 1 || c.Diagnostics.MinSeverity > 4:
		return &ValidationError{Path: "diagnostics.min_severity", Message: "must be between 1 and 4", Value: c.Diagnostics.MinSeverity}
	case c.Diagnostics.MaxPerFile < 0:
		return &ValidationError{Path: "diagnostics.max_per_file", Message: "must not be negative", Value: c.Diagnostics.MaxPerFile}
	case c.Diagnostics.Owner == 0:
		return &ValidationError{Path: "diagnostics.owner", Message: "must not be 0, which matches every owner", Value: 0}
	case slices.Contains(c.Diagnostics.Sources, ""):
		return &ValidationError{Path: "diagnostics.sources", Message: "must not contain empty names", Value: c.Diagnostics.Sources}
	case c.Plugins.Timeout < 0:
		return &ValidationError{Path: "plugins.timeout", Message: "must not be negative", Value: c.Plugins.Timeout}
	case c.Plugins.Owner == 0:
		return &ValidationError{Path: "plugins.owner", Message: "must not be 0, which matches every owner", Value: 0}
	case c.Plugins.Owner == c.Diagnostics.Owner:
		return &ValidationError{Path: "plugins.owner", Message: "must differ from diagnostics.owner", Value: c.Plugins.Owner}
	}
	return nil
}

// DecorationOptions returns the store options implied by c.
func (c *Config) DecorationOptions() []decoration.Option {
	return []decoration.Option{
		decoration.WithValidationClasses(c.Decorations.ValidationClasses.Error, c.Decorations.ValidationClasses.Warning),
	}
}

// DiagnosticsOptions returns the diagnostics syncer options implied by c.
func (c *Config) DiagnosticsOptions() []diagnostics.Option {
	d := c.Diagnostics
	opts := []diagnostics.Option{
		diagnostics.WithOwner(d.Owner),
		diagnostics.WithClasses(c.Decorations.ValidationClasses.Error, c.Decorations.ValidationClasses.Warning),
		diagnostics.WithMinSeverity(diagnostics.Severity(d.MinSeverity)),
		diagnostics.WithMaxDiagnostics(d.MaxPerFile),
	}
	if d.URI != "" {
		opts = append(opts, diagnostics.WithURI(d.URI))
	}
	if len(d.Sources) > 0 {
		opts = append(opts, diagnostics.WithEnabledSources(d.Sources...))
	}
	return opts
}

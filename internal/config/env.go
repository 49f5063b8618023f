package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "DECOR_"

// LookupFunc reports the value of an environment variable. os.LookupEnv
// satisfies it.
type LookupFunc func(key string) (string, bool)

// envSetting applies one environment variable to a Config.
type envSetting struct {
	name  string
	path  string
	apply func(c *Config, val string) error
}

var envSettings = []envSetting{
	{"DECOR_LOG_LEVEL", "log.level", func(c *Config, v string) error {
		c.Log.Level = strings.ToLower(v)
		return nil
	}},
	{"DECOR_LOG_FORMAT", "log.format", func(c *Config, v string) error {
		c.Log.Format = strings.ToLower(v)
		return nil
	}},
	{"DECOR_METRICS", "decorations.metrics", func(c *Config, v string) error {
		b, err := parseBool(v)
		c.Decorations.Metrics = b
		return err
	}},
	{"DECOR_PLUGIN_TIMEOUT", "plugins.timeout", func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		c.Plugins.Timeout = d
		return err
	}},
	{"DECOR_HISTORY_LIMIT", "history.limit", func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		c.History.Limit = n
		return err
	}},
	{"DECOR_DIAGNOSTICS_MIN_SEVERITY", "diagnostics.min_severity", func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		c.Diagnostics.MinSeverity = n
		return err
	}},
}

// EnvVar names an environment variable and the setting it overrides.
type EnvVar struct {
	Name string
	Path string
}

// EnvVars returns the supported environment variables in the order they
// are applied.
func EnvVars() []EnvVar {
	vars := make([]EnvVar, len(envSettings))
	for i, s := range envSettings {
		vars[i] = EnvVar{Name: s.name, Path: s.path}
	}
	return vars
}

// ApplyEnv overrides cfg from the environment. Unset variables leave the
// setting alone; a set but empty variable is ignored.
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	for _, s := range envSettings {
		val, ok := lookup(s.name)
		if !ok || val == "" {
			continue
		}
		if err := s.apply(cfg, val); err != nil {
			return &ValidationError{Path: s.path, Message: fmt.Sprintf("bad %s: %v", s.name, err), Value: val}
		}
	}
	return nil
}

// parseBool accepts true/false, yes/no, on/off and 1/0.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean: %q", s)
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := ApplyEnv(cfg, lookupFrom(map[string]string{
		"DECOR_LOG_LEVEL":                "DEBUG",
		"DECOR_METRICS":                  "yes",
		"DECOR_PLUGIN_TIMEOUT":           "1m",
		"DECOR_DIAGNOSTICS_MIN_SEVERITY": "1",
		"DECOR_UNRELATED":                "x",
	}))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.True(t, cfg.Decorations.Metrics)
	assert.Equal(t, time.Minute, cfg.Plugins.Timeout)
	assert.Equal(t, 1, cfg.Diagnostics.MinSeverity)
}

func TestApplyEnvIgnoresEmpty(t *testing.T) {
	cfg := Default()
	require.NoError(t, ApplyEnv(cfg, lookupFrom(map[string]string{"DECOR_LOG_LEVEL": ""})))
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestApplyEnvErrors(t *testing.T) {
	for name, env := range map[string]map[string]string{
		"bool":     {"DECOR_METRICS": "maybe"},
		"duration": {"DECOR_PLUGIN_TIMEOUT": "soon"},
		"int":      {"DECOR_DIAGNOSTICS_MIN_SEVERITY": "high"},
	} {
		t.Run(name, func(t *testing.T) {
			err := ApplyEnv(Default(), lookupFrom(env))
			assert.ErrorIs(t, err, ErrValidationFailed)
		})
	}
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"true", "YES", "on", "1"} {
		b, err := parseBool(s)
		require.NoError(t, err)
		assert.True(t, b, s)
	}
	for _, s := range []string{"false", "No", "OFF", "0"} {
		b, err := parseBool(s)
		require.NoError(t, err)
		assert.False(t, b, s)
	}
}

func TestEnvVars(t *testing.T) {
	vars := EnvVars()
	require.Len(t, vars, 6)
	assert.Equal(t, EnvVar{Name: "DECOR_LOG_LEVEL", Path: "log.level"}, vars[0])
	assert.Contains(t, vars, EnvVar{Name: "DECOR_HISTORY_LIMIT", Path: "history.limit"})

	cfg := Default()
	require.NoError(t, ApplyEnv(cfg, func(key string) (string, bool) {
		return map[string]string{"DECOR_HISTORY_LIMIT": "-1"}[key], key == "DECOR_HISTORY_LIMIT"
	}))
	assert.Equal(t, -1, cfg.History.Limit)
}

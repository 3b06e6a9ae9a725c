package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseFilter(t *testing.T) {
	tests := []struct {
		name      string
		directive string
		target    string
		level     zapcore.Level
		want      bool
	}{
		{"bare level passes at threshold", "info", "newsletter", zapcore.InfoLevel, true},
		{"bare level drops below threshold", "info", "newsletter", zapcore.DebugLevel, false},
		{"trace maps to debug", "trace", "newsletter", zapcore.DebugLevel, true},
		{"empty directive keeps errors only", "", "newsletter", zapcore.WarnLevel, false},
		{"empty directive passes errors", "", "newsletter", zapcore.ErrorLevel, true},
		{"target rule overrides default", "warn,newsletter.postgres=debug", "newsletter.postgres", zapcore.DebugLevel, true},
		{"target rule matches children", "warn,newsletter=debug", "newsletter.handlers", zapcore.DebugLevel, true},
		{"target rule does not match siblings by prefix", "warn,news=debug", "newsletter", zapcore.InfoLevel, false},
		{"longest target wins", "newsletter=debug,newsletter.postgres=error", "newsletter.postgres", zapcore.WarnLevel, false},
		{"off silences a target", "info,log=off", "log", zapcore.ErrorLevel, false},
		{"off default", "off", "newsletter", zapcore.FatalLevel, false},
		{"whitespace is ignored", " info , log = warn ", "log", zapcore.WarnLevel, true},
		{"later rule for same target wins", "log=error,log=debug", "log", zapcore.DebugLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := ParseFilter(tt.directive)
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Enabled(tt.target, tt.level))
		})
	}
}

func TestParseFilter_Invalid(t *testing.T) {
	for _, directive := range []string{"loud", "newsletter=chatty", "=info", "info,log=verbose"} {
		t.Run(directive, func(t *testing.T) {
			f, err := ParseFilter(directive)
			assert.Error(t, err)
			assert.Nil(t, f)
		})
	}
}

func TestFilter_LevelEnabled(t *testing.T) {
	f, err := ParseFilter("warn,newsletter.postgres=debug,log=off")
	require.NoError(t, err)

	assert.True(t, f.LevelEnabled(zapcore.DebugLevel), "a debug target rule makes debug reachable")
	assert.True(t, f.LevelEnabled(zapcore.ErrorLevel))

	f, err = ParseFilter("off")
	require.NoError(t, err)
	assert.False(t, f.LevelEnabled(zapcore.FatalLevel))
}

func TestResolveFilter(t *testing.T) {
	t.Run("environment directive overrides default", func(t *testing.T) {
		t.Setenv(FilterEnvVar, "debug,log=off")

		f, err := ResolveFilter("info")
		require.NoError(t, err)
		assert.Equal(t, "debug,log=off", f.String())
	})

	t.Run("default used when environment unset", func(t *testing.T) {
		t.Setenv(FilterEnvVar, "")

		f, err := ResolveFilter("info,newsletter=debug")
		require.NoError(t, err)
		assert.Equal(t, "info,newsletter=debug", f.String())
	})

	t.Run("invalid environment directive falls back to default", func(t *testing.T) {
		t.Setenv(FilterEnvVar, "shouting")

		f, err := ResolveFilter("info")
		require.NoError(t, err)
		assert.Equal(t, "info", f.String())
	})

	t.Run("invalid default is an error", func(t *testing.T) {
		t.Setenv(FilterEnvVar, "")

		_, err := ResolveFilter("shouting")
		assert.Error(t, err)
	})
}

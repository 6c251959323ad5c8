package config

import (
	"testing"

	"github.com/mohamedkhairy/signal-sweep/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"ENVIRONMENT", "LOG_LEVEL", "SWEEP_PARALLELISM", "SWEEP_MIN_PERIODS", "SWEEP_EWM",
		"SWEEP_EWM_ADJUST", "SWEEP_STD_DDOF", "SCANNER_PARALLELISM", "STOP_IS_RELATIVE", "STOP_ONLY_FIRST",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)

	opts := cfg.IndicatorOptions()
	assert.True(t, opts.MinPeriods)
	assert.False(t, opts.EWM)
	assert.Equal(t, 0, opts.Parallelism)

	scan := cfg.ScannerOptions()
	assert.True(t, scan.IsRelative)
	assert.True(t, scan.OnlyFirst)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SWEEP_PARALLELISM", "4")
	t.Setenv("SWEEP_EWM", "true")
	t.Setenv("SWEEP_EWM_ADJUST", "1")
	t.Setenv("SWEEP_MIN_PERIODS", "false")
	t.Setenv("SWEEP_STD_DDOF", "1")
	t.Setenv("STOP_ONLY_FIRST", "false")
	t.Setenv("STOP_IS_RELATIVE", "not-a-bool")

	cfg, err := Load()
	require.NoError(t, err)

	opts := cfg.IndicatorOptions()
	assert.Equal(t, 4, opts.Parallelism)
	assert.True(t, opts.EWM)
	assert.True(t, opts.Adjust)
	assert.False(t, opts.MinPeriods)
	assert.Equal(t, 1, opts.StdDDOF)

	scan := cfg.ScannerOptions()
	assert.False(t, scan.OnlyFirst)
	assert.True(t, scan.IsRelative, "unparsable values fall back to the default")
}

func TestLoad_ValidationErrors(t *testing.T) {
	t.Setenv("LOG_LEVEL", "verbose")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("LOG_LEVEL", "info")
	t.Setenv("SWEEP_PARALLELISM", "-2")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("SWEEP_PARALLELISM", "0")
	t.Setenv("SWEEP_STD_DDOF", "-1")
	_, err = Load()
	assert.Error(t, err)
}

func TestInitLogger(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("ENVIRONMENT", "production")
	cfg, err := Load()
	require.NoError(t, err)

	require.NoError(t, cfg.InitLogger())
	defer logger.SetLogger(nil)
	assert.False(t, logger.Get().Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Get().Core().Enabled(zapcore.WarnLevel))
}

package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/navbuilder/internal/nav"
)

func TestNormalizeConfig(t *testing.T) {
	cfg := Default()
	cfg.Resolve.PrefixMode = " Absolute "
	cfg.Monitoring.Logging.Level = "WARNING"
	cfg.Monitoring.Logging.Format = "yaml"
	cfg.Content.Extensions = []string{"MD", ".md", " ", "markdown"}
	cfg.Metadata.Concurrency = -3

	res, err := NormalizeConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, nav.PrefixAbsolute, cfg.Resolve.PrefixMode)
	assert.Equal(t, LogLevelWarn, cfg.Monitoring.Logging.Level)
	assert.Equal(t, LogFormatText, cfg.Monitoring.Logging.Format)
	assert.Equal(t, []string{".markdown", ".md"}, cfg.Content.Extensions)
	assert.Equal(t, 0, cfg.Metadata.Concurrency)
	assert.NotEmpty(t, res.Warnings)
}

func TestNormalizeConfigNil(t *testing.T) {
	_, err := NormalizeConfig(nil)
	assert.Error(t, err)
}

func TestLogLevelSlog(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, NormalizeLogLevel("debug").SlogLevel())
	assert.Equal(t, slog.LevelError, NormalizeLogLevel("ERROR").SlogLevel())
	assert.Equal(t, slog.LevelInfo, NormalizeLogLevel("bogus").SlogLevel())
	assert.Equal(t, LogFormatJSON, NormalizeLogFormat(" JSON"))
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
telegram:
  api_id: 123456
  api_hash: "abc"
  phone: "+10000000000"
  channels:
    - CheMed123
    - lobelia4cosmetics
  message_limit: 500
database:
  url: "postgres://telegram:pw@localhost:5432/telegram_dw?sslmode=disable"
detector:
  url: "http://localhost:8500"
  enabled: true
  confidence_threshold: 0.25
pipeline:
  interval: "24h"
server:
  port: ":9000"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 123456, cfg.Telegram.APIID)
	assert.Equal(t, []string{"CheMed123", "lobelia4cosmetics"}, cfg.Telegram.Channels)
	assert.Equal(t, 500, cfg.Telegram.MessageLimit)
	assert.Equal(t, "postgres://telegram:pw@localhost:5432/telegram_dw?sslmode=disable", cfg.Database.URL)
	assert.True(t, cfg.Detector.Enabled)
	assert.InDelta(t, 0.25, cfg.Detector.ConfidenceThreshold, 1e-9)
	assert.Equal(t, "24h", cfg.Pipeline.Interval)
	assert.Equal(t, ":9000", cfg.Server.Port)
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, `
database:
  url: "postgres://localhost/telegram_dw"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "session.json", cfg.Telegram.SessionFile)
	assert.Equal(t, 1500, cfg.Telegram.MessageLimit)
	assert.Equal(t, "data/raw", cfg.Scraper.DataDir)
	assert.Equal(t, ":8000", cfg.Server.Port)
	assert.Empty(t, cfg.Pipeline.Interval)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yml"))
	require.Error(t, err)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "telegram: [not a map")
	_, err := LoadConfig(path)
	require.Error(t, err)
}

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tnstc-api/internal/config"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, config.StrategyScraping, cfg.Parser.Strategy)
	assert.Equal(t, "https://www.tnstc.in/OTRSOnline/jqreq.do?", cfg.Upstream.BaseURL)
	assert.Equal(t, 128, cfg.Upstream.PlaceCacheSize)
	assert.Equal(t, 5, cfg.Ollama.Concurrency)
	assert.Equal(t, 5, cfg.Gemini.MaxAttempts)
	assert.Equal(t, 3, cfg.Ollama.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.Gemini.BaseDelay)
	assert.Equal(t, 60*time.Second, cfg.Gemini.MaxDelay)
	assert.Equal(t, 30*time.Second, cfg.Ollama.MaxDelay)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("PARSER_STRATEGY", "ollama")
	t.Setenv("OLLAMA_CONCURRENCY_LIMIT", "2")
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "ollama", cfg.Parser.Strategy)
	assert.Equal(t, 2, cfg.Ollama.Concurrency)
	assert.Equal(t, "test-key", cfg.Gemini.APIKey)
}

func TestLoadConfigYAMLWithExpansion(t *testing.T) {
	t.Setenv("TEST_GEMINI_KEY", "expanded-key")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
parser:
  strategy: gemini
gemini:
  api_key: ${TEST_GEMINI_KEY}
upstream:
  rate_limit: 30
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.Parser.Strategy)
	assert.Equal(t, "expanded-key", cfg.Gemini.APIKey)
	assert.Equal(t, 30, cfg.Upstream.RateLimit)
}

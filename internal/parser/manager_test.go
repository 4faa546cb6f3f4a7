package parser_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tnstc-api/internal/config"
	"tnstc-api/internal/parser"
)

func testConfig(strategy string) *config.Config {
	cfg := &config.Config{}
	cfg.Parser.Strategy = strategy
	cfg.Gemini.Model = "gemini-2.5-flash"
	cfg.Gemini.Timeout = time.Minute
	cfg.Ollama.BaseURL = "http://localhost:11434"
	cfg.Ollama.Model = "llama3:8b"
	cfg.Ollama.Timeout = time.Minute
	cfg.Ollama.Concurrency = 2
	return cfg
}

func TestFactoryCreateStrategy(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("builds the scraping strategy", func(t *testing.T) {
		t.Parallel()

		s, err := parser.NewFactory(testConfig("scraping")).CreateStrategy(ctx, "scraping")
		require.NoError(t, err)
		assert.Equal(t, "scraping", s.Name())
	})

	t.Run("builds the ollama strategy", func(t *testing.T) {
		t.Parallel()

		s, err := parser.NewFactory(testConfig("ollama")).CreateStrategy(ctx, "ollama")
		require.NoError(t, err)
		assert.Equal(t, "ollama", s.Name())
	})

	t.Run("fails to build gemini without an API key", func(t *testing.T) {
		t.Parallel()

		_, err := parser.NewFactory(testConfig("gemini")).CreateStrategy(ctx, "gemini")
		require.Error(t, err)
	})

	t.Run("rejects unknown names", func(t *testing.T) {
		t.Parallel()

		_, err := parser.NewFactory(testConfig("scraping")).CreateStrategy(ctx, "regex")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported parser strategy")
	})
}

func TestManagerActive(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("reuses the active strategy", func(t *testing.T) {
		t.Parallel()

		m := parser.NewManager(testConfig("scraping"))
		first := m.Active(ctx)
		assert.Same(t, first, m.Active(ctx))
	})

	t.Run("falls back to scraping when gemini cannot initialize", func(t *testing.T) {
		t.Parallel()

		m := parser.NewManager(testConfig("gemini"))
		s := m.Active(ctx)
		require.NotNil(t, s)
		assert.Equal(t, "scraping", s.Name())

		// The fallback is cached; the failing strategy is not retried
		// until the configured name changes.
		assert.Same(t, s, m.Active(ctx))
	})

	t.Run("rebuilds when the configured name changes", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig("scraping")
		m := parser.NewManager(cfg)
		first := m.Active(ctx)
		assert.Equal(t, "scraping", first.Name())

		cfg.Parser.Strategy = "ollama"
		second := m.Active(ctx)
		assert.Equal(t, "ollama", second.Name())
	})
}

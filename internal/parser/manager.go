package parser

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"tnstc-api/internal/config"
	"tnstc-api/internal/parser/scrape"
	"tnstc-api/pkg/utils"
)

// Manager selects the active extraction strategy. The strategy is built
// lazily, reused across calls, and rebuilt only when the configured name
// changes. A strategy that fails to construct (e.g. missing credential)
// downgrades to the scraping strategy.
type Manager struct {
	config  *config.Config
	factory *Factory
	logger  *logrus.Logger

	mu         sync.Mutex
	active     Strategy
	activeName string // configured name the active strategy was built for
}

// NewManager creates a new strategy manager instance
func NewManager(cfg *config.Config) *Manager {
	return &Manager{
		config:  cfg,
		factory: NewFactory(cfg),
		logger:  utils.GetLogger(),
	}
}

// Active returns the strategy for the currently configured name. It never
// fails: construction errors fall back to the scraping strategy.
func (m *Manager) Active(ctx context.Context) Strategy {
	configured := m.config.Parser.Strategy

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil && m.activeName == configured {
		return m.active
	}

	if m.active != nil {
		m.logger.WithFields(logrus.Fields{
			"previous": m.activeName,
			"next":     configured,
		}).Info("Parser strategy changed, re-initializing")
	}

	strategy, err := m.factory.CreateStrategy(ctx, configured)
	if err != nil {
		m.logger.WithError(err).WithField("strategy", configured).Error("Failed to initialize parser strategy, falling back to scraping")
		strategy = scrape.New()
	}

	m.active = strategy
	m.activeName = configured
	return m.active
}

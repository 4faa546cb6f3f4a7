// Package pipeline turns a raw search results page into normalized service
// records: split into per-service fragments, fetch each trip detail popup,
// run the configured extraction strategy, and reassemble in page order.
package pipeline

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"tnstc-api/internal/parser"
	"tnstc-api/pkg/models"
	"tnstc-api/pkg/utils"
)

// DetailFetcher retrieves the trip detail popup named by an onclick
// descriptor. Failures surface as an empty string, never an error, so a
// broken popup degrades one record instead of the batch.
type DetailFetcher interface {
	FetchTripDetails(ctx context.Context, onclick string) string
}

// Pipeline extracts service records from search results pages
type Pipeline struct {
	strategy parser.Strategy
	details  DetailFetcher
	logger   *logrus.Logger
}

// New creates a pipeline around an extraction strategy and a detail fetcher
func New(strategy parser.Strategy, details DetailFetcher) *Pipeline {
	return &Pipeline{
		strategy: strategy,
		details:  details,
		logger:   utils.GetLogger(),
	}
}

// Run extracts every service on the page, in page order. A positive limit
// truncates the fragment list before any detail fetch or extraction work is
// spent on the excess. Records whose extraction fails are logged and
// dropped; the rest of the batch is unaffected.
func (p *Pipeline) Run(ctx context.Context, resultsHTML string, limit int) ([]models.BusService, error) {
	fragments := Split(resultsHTML)
	if limit > 0 && len(fragments) > limit {
		fragments = fragments[:limit]
	}
	if len(fragments) == 0 {
		return nil, nil
	}

	details, err := p.fetchDetails(ctx, fragments)
	if err != nil {
		return nil, err
	}

	// Extraction slots stay index-aligned with the fragments so page order
	// survives the fan-out. Failed or absent records leave a nil slot.
	extracted := make([]*models.BusService, len(fragments))
	g, gctx := errgroup.WithContext(ctx)
	for _, frag := range fragments {
		g.Go(func() error {
			svc, err := p.strategy.Extract(gctx, frag.HTML, details[frag.Index])
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				p.logger.WithFields(logrus.Fields{
					"index":    frag.Index,
					"strategy": p.strategy.Name(),
					"error":    err,
				}).Error("Failed to extract service record")
				return nil
			}
			extracted[frag.Index] = svc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	services := make([]models.BusService, 0, len(extracted))
	for _, svc := range extracted {
		if svc != nil {
			services = append(services, *svc)
		}
	}
	return services, nil
}

// fetchDetails retrieves every popup concurrently, index-aligned with the
// fragments. Cards without a popup trigger get an empty detail.
func (p *Pipeline) fetchDetails(ctx context.Context, fragments []Fragment) ([]string, error) {
	details := make([]string, len(fragments))
	g, gctx := errgroup.WithContext(ctx)
	for _, frag := range fragments {
		if frag.OnClick == "" {
			continue
		}
		g.Go(func() error {
			details[frag.Index] = p.details.FetchTripDetails(gctx, frag.OnClick)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return details, nil
}

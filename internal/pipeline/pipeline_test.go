package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tnstc-api/internal/pipeline"
	"tnstc-api/pkg/models"
)

type fakeStrategy struct {
	extract func(ctx context.Context, listing, detail string) (*models.BusService, error)
}

func (f *fakeStrategy) Extract(ctx context.Context, listing, detail string) (*models.BusService, error) {
	return f.extract(ctx, listing, detail)
}

func (f *fakeStrategy) Name() string { return "fake" }

type fakeFetcher struct {
	calls atomic.Int32
}

func (f *fakeFetcher) FetchTripDetails(ctx context.Context, onclick string) string {
	f.calls.Add(1)
	return "detail-for-" + onclick
}

func card(code string) string {
	return fmt.Sprintf(`<div class="bus-list" id="%s">
		<a data-target="#TripcodePopUp" onclick="%s">Details</a></div>`, code, code)
}

// codeOf recovers the card id the fake strategy should report
func codeOf(listing string) string {
	for _, code := range []string{"A", "B", "C"} {
		if strings.Contains(listing, fmt.Sprintf(`id="%s"`, code)) {
			return code
		}
	}
	return "?"
}

func tripCodeStrategy() *fakeStrategy {
	return &fakeStrategy{extract: func(ctx context.Context, listing, detail string) (*models.BusService, error) {
		return &models.BusService{TripCode: codeOf(listing)}, nil
	}}
}

func page(codes ...string) string {
	var sb strings.Builder
	sb.WriteString("<html><body>")
	for _, c := range codes {
		sb.WriteString(card(c))
	}
	sb.WriteString("</body></html>")
	return sb.String()
}

func tripCodes(services []models.BusService) []string {
	codes := make([]string, len(services))
	for i, svc := range services {
		codes[i] = svc.TripCode
	}
	return codes
}

func TestSplit(t *testing.T) {
	t.Parallel()

	t.Run("cuts cards in page order with their onclick descriptors", func(t *testing.T) {
		t.Parallel()

		frags := pipeline.Split(page("A", "B", "C"))
		require.Len(t, frags, 3)
		for i, frag := range frags {
			// Indexes address slots in the pipeline's result slice, so they
			// must stay dense whatever happens during splitting.
			assert.Equal(t, i, frag.Index)
		}
		assert.Equal(t, "A", frags[0].OnClick)
		assert.Equal(t, "C", frags[2].OnClick)
		assert.Contains(t, frags[1].HTML, `id="B"`)
	})

	t.Run("card without a popup trigger has no descriptor", func(t *testing.T) {
		t.Parallel()

		frags := pipeline.Split(`<div class="bus-list" id="A"><a onclick="x">no target</a></div>`)
		require.Len(t, frags, 1)
		assert.Empty(t, frags[0].OnClick)
	})

	t.Run("page without cards yields nothing", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, pipeline.Split("<html><body>No services</body></html>"))
	})
}

func TestRun(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("preserves page order", func(t *testing.T) {
		t.Parallel()

		services, err := pipeline.New(tripCodeStrategy(), &fakeFetcher{}).Run(ctx, page("A", "B", "C"), 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B", "C"}, tripCodes(services))
	})

	t.Run("limit truncates before any detail fetch", func(t *testing.T) {
		t.Parallel()

		fetcher := &fakeFetcher{}
		services, err := pipeline.New(tripCodeStrategy(), fetcher).Run(ctx, page("A", "B", "C"), 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B"}, tripCodes(services))
		assert.Equal(t, int32(2), fetcher.calls.Load())
	})

	t.Run("passes each card its own detail", func(t *testing.T) {
		t.Parallel()

		strategy := &fakeStrategy{extract: func(ctx context.Context, listing, detail string) (*models.BusService, error) {
			assert.Equal(t, "detail-for-"+codeOf(listing), detail)
			return &models.BusService{TripCode: codeOf(listing)}, nil
		}}
		services, err := pipeline.New(strategy, &fakeFetcher{}).Run(ctx, page("A", "B"), 0)
		require.NoError(t, err)
		assert.Len(t, services, 2)
	})

	t.Run("one failing record does not abort the batch", func(t *testing.T) {
		t.Parallel()

		strategy := &fakeStrategy{extract: func(ctx context.Context, listing, detail string) (*models.BusService, error) {
			if codeOf(listing) == "B" {
				return nil, errors.New("model unavailable")
			}
			return &models.BusService{TripCode: codeOf(listing)}, nil
		}}
		services, err := pipeline.New(strategy, &fakeFetcher{}).Run(ctx, page("A", "B", "C"), 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "C"}, tripCodes(services))
	})

	t.Run("absent records are skipped silently", func(t *testing.T) {
		t.Parallel()

		strategy := &fakeStrategy{extract: func(ctx context.Context, listing, detail string) (*models.BusService, error) {
			if codeOf(listing) == "B" {
				return nil, nil
			}
			return &models.BusService{TripCode: codeOf(listing)}, nil
		}}
		services, err := pipeline.New(strategy, &fakeFetcher{}).Run(ctx, page("A", "B", "C"), 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "C"}, tripCodes(services))
	})

	t.Run("empty page yields an empty batch", func(t *testing.T) {
		t.Parallel()

		services, err := pipeline.New(tripCodeStrategy(), &fakeFetcher{}).Run(ctx, "<html></html>", 0)
		require.NoError(t, err)
		assert.Empty(t, services)
	})
}

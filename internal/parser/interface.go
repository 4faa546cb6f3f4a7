package parser

import (
	"context"

	"tnstc-api/pkg/models"
)

// Strategy defines the interface for a bus results extraction strategy.
//
// Extract turns one listing fragment and its detail fragment into a
// normalized record. A (nil, nil) return means the fragment yielded no
// record ("absent"), a legitimate outcome distinct from a hard error.
// Either way the caller drops the record without aborting the batch.
type Strategy interface {
	// Extract produces zero or one normalized record from the two fragments.
	Extract(ctx context.Context, listing, detail string) (*models.BusService, error)

	// Name returns the strategy's configuration name.
	Name() string
}

package types

import (
	"context"

	"jobfinder/internal/domain"
)

type ScrapeResult struct {
	Source   string
	Postings []domain.Posting
	// Finalize runs after the batch is persisted (e.g. marking alert
	// emails as seen). May be nil.
	Finalize func(context.Context) error
}

type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) (ScrapeResult, error)
}

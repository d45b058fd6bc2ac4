package retrieval

import (
	"context"
	"time"

	"github.com/jdevra/websage/internal/domain"
	"github.com/jdevra/websage/internal/observability"
)

// URLResolver turns a query into an ordered, never-empty URL list and
// reports which strategy produced it.
type URLResolver interface {
	Resolve(ctx context.Context, query string, limit int) ([]string, string)
}

// ContentFetcher extracts text from one URL, degrading failures to
// explanatory records.
type ContentFetcher interface {
	FetchContent(ctx context.Context, url string) domain.ScrapedPage
}

// Service implements domain.Scraper: resolve URLs through the strategy
// chain, then fetch each serially with a politeness delay between requests.
type Service struct {
	resolver URLResolver
	fetcher  ContentFetcher
	maxPages int
	delay    time.Duration
}

// NewService creates the search-and-scrape service (DI constructor).
func NewService(resolver URLResolver, fetcher ContentFetcher, maxPages int, delay time.Duration) *Service {
	return &Service{
		resolver: resolver,
		fetcher:  fetcher,
		maxPages: maxPages,
		delay:    delay,
	}
}

// SearchAndScrape resolves up to maxPages URLs and fetches them one by one.
// Fetches are deliberately serial with an inter-request delay to avoid
// tripping upstream rate limits.
func (s *Service) SearchAndScrape(ctx context.Context, query string) (*domain.ScrapeBatch, error) {
	logger := observability.FromContext(ctx)
	logger.Info("starting search and scrape")

	urls, strategy := s.resolver.Resolve(ctx, query, s.maxPages)
	ctx = observability.WithStrategy(ctx, strategy)

	pages := make([]domain.ScrapedPage, 0, len(urls))
	for i, pageURL := range urls {
		if i > 0 && s.delay > 0 {
			select {
			case <-time.After(s.delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		pages = append(pages, s.fetcher.FetchContent(ctx, pageURL))
	}

	observability.FromContext(ctx).Info("search and scrape completed",
		observability.Int("pages", len(pages)))

	return &domain.ScrapeBatch{
		Query:        query,
		Strategy:     strategy,
		Pages:        pages,
		TotalResults: len(pages),
	}, nil
}

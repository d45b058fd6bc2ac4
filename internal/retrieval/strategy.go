// Package retrieval resolves a query to candidate source URLs through an
// ordered chain of search strategies and extracts text from the resulting
// pages. Each strategy is attempted at most once per query; resilience
// comes from falling through the chain, not from retrying.
package retrieval

import (
	"context"
	"net/url"
	"strings"

	"github.com/jdevra/websage/internal/observability"
)

// FallbackStrategyName labels URL lists synthesized from the query text
// after every real strategy came up empty.
const FallbackStrategyName = "fallback"

// SearchStrategy is one interchangeable way of turning a query into result
// URLs. Implementations reduce all upstream faults (navigation timeout,
// missing result markup, bot detection) to an error or an empty list.
type SearchStrategy interface {
	// Name returns the strategy identifier.
	Name() string

	// ResolveURLs returns up to limit result URLs for the query.
	ResolveURLs(ctx context.Context, query string, limit int) ([]string, error)
}

// Resolver tries strategies in order and stops at the first that yields at
// least one URL. It never returns an empty list: when the whole chain comes
// up dry, it synthesizes deterministic placeholder URLs from the query.
type Resolver struct {
	strategies []SearchStrategy
}

// NewResolver creates a resolver over an ordered strategy chain.
func NewResolver(strategies ...SearchStrategy) *Resolver {
	return &Resolver{strategies: strategies}
}

// Resolve returns the URL list and the name of the strategy that produced
// it. Strategy faults are logged and reduce to trying the next strategy.
func (r *Resolver) Resolve(ctx context.Context, query string, limit int) ([]string, string) {
	logger := observability.FromContext(ctx)

	for _, strategy := range r.strategies {
		urls, err := strategy.ResolveURLs(ctx, query, limit)
		if err != nil {
			logger.Warn("search strategy failed, trying next",
				observability.String("strategy", strategy.Name()),
				observability.Error(err))
			continue
		}
		if len(urls) == 0 {
			logger.Info("search strategy returned no results, trying next",
				observability.String("strategy", strategy.Name()))
			continue
		}

		logger.Info("search strategy succeeded",
			observability.String("strategy", strategy.Name()),
			observability.Int("urls", len(urls)))
		return urls, strategy.Name()
	}

	logger.Warn("all search strategies failed, using demo URLs")
	return demoURLs(query), FallbackStrategyName
}

// demoURLs builds placeholder source URLs derived from the query text so
// the pipeline never dead-ends with zero candidates.
func demoURLs(query string) []string {
	return []string{
		"https://en.wikipedia.org/wiki/" + strings.ReplaceAll(query, " ", "_"),
		"https://www.britannica.com/search?query=" + url.QueryEscape(query),
	}
}

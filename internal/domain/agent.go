package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jdevra/websage/internal/observability"
)

// AgentParams carries the tuning knobs of the pipeline.
type AgentParams struct {
	TopK           int
	Threshold      float64
	CacheTTL       time.Duration
	MaxScrapePages int
}

// AgentService sequences the end-to-end query pipeline: classify, search
// for near-duplicate prior queries, serve a memoized answer when one
// exists, otherwise retrieve, synthesize and persist.
type AgentService struct {
	classifier *ClassifierService
	index      SimilarityIndex
	cache      ResultCache
	scraper    Scraper
	summarizer Summarizer
	params     AgentParams
}

// NewAgentService creates the pipeline coordinator (DI constructor). The
// stores are the only dependencies shared across concurrent pipelines; all
// other collaborators hold no per-query state.
func NewAgentService(
	classifier *ClassifierService,
	index SimilarityIndex,
	cache ResultCache,
	scraper Scraper,
	summarizer Summarizer,
	params AgentParams,
) *AgentService {
	return &AgentService{
		classifier: classifier,
		index:      index,
		cache:      cache,
		scraper:    scraper,
		summarizer: summarizer,
		params:     params,
	}
}

// ProcessQuery runs one query through the pipeline. It always returns a
// payload with exactly one result type set; no collaborator fault escapes
// as an error.
func (a *AgentService) ProcessQuery(ctx context.Context, query string) *QueryResult {
	start := time.Now()
	ctx = observability.WithQuery(ctx, query)
	logger := observability.FromContext(ctx)

	if NormalizeQuery(query) == "" {
		return &QueryResult{
			Type:           ResultInvalidQuery,
			Query:          query,
			Response:       a.classifier.InvalidResponse(),
			Reason:         "query is empty",
			ProcessingTime: time.Since(start).Seconds(),
			Timestamp:      time.Now(),
		}
	}

	// Step 1: classify.
	classification := a.classifier.Classify(ctx, query)
	if !classification.IsValid {
		logger.Info("query classified as invalid",
			observability.String("reason", classification.Reason))
		return &QueryResult{
			Type:           ResultInvalidQuery,
			Query:          query,
			Response:       a.classifier.InvalidResponse(),
			Reason:         classification.Reason,
			ProcessingTime: time.Since(start).Seconds(),
			Timestamp:      time.Now(),
		}
	}

	// Step 2: look for semantically similar prior queries.
	if cached := a.lookupSimilar(ctx, query); cached != nil {
		cached.Cached = true
		cached.SimilarQueryUsed = true
		cached.ProcessingTime = time.Since(start).Seconds()
		logger.Info("returning cached result for similar query")
		return cached
	}

	// Step 3: retrieve.
	batch, err := a.scraper.SearchAndScrape(ctx, query)
	if err != nil {
		logger.Error("search and scrape failed", observability.Error(err))
		return a.errorResult(query, err, start)
	}

	if batch.TotalResults == 0 {
		return &QueryResult{
			Type:           ResultNoResults,
			Query:          query,
			Response:       "Sorry, I couldn't find any relevant information for your query.",
			ProcessingTime: time.Since(start).Seconds(),
			Timestamp:      time.Now(),
		}
	}

	// Step 4: summarize and synthesize.
	result, err := a.summarize(ctx, query, batch)
	if err != nil {
		logger.Error("answer synthesis failed", observability.Error(err))
		return a.errorResult(query, err, start)
	}
	result.ProcessingTime = time.Since(start).Seconds()

	// Step 5: persist. This is the only path that writes to either store,
	// and only after a successful synthesis.
	a.persist(ctx, query, result)

	logger.Info("query processed",
		observability.Int("total_sources", result.TotalSources),
		observability.Float64("processing_time", result.ProcessingTime))
	return result
}

// lookupSimilar resolves similarity matches to the first live cache entry,
// in descending similarity order. Index or cache outages degrade to a miss.
func (a *AgentService) lookupSimilar(ctx context.Context, query string) *QueryResult {
	logger := observability.FromContext(ctx)

	matches, err := a.index.Search(ctx, query, a.params.TopK, a.params.Threshold)
	if err != nil {
		logger.Warn("similarity search failed, continuing without cache",
			observability.Error(err))
		return nil
	}
	if len(matches) == 0 {
		return nil
	}

	logger.Info("found similar prior queries",
		observability.Int("matches", len(matches)),
		observability.Float64("best_similarity", matches[0].Similarity))

	candidates := make([]string, 0, len(matches))
	for _, m := range matches {
		candidates = append(candidates, m.Query)
	}

	cached, err := a.cache.LookupAny(ctx, candidates)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			logger.Warn("cache lookup failed, continuing without cache",
				observability.Error(err))
		}
		return nil
	}

	return cached
}

// summarize turns a scrape batch into a search_result payload.
func (a *AgentService) summarize(ctx context.Context, query string, batch *ScrapeBatch) (*QueryResult, error) {
	summaries := make([]PageSummary, 0, len(batch.Pages))
	sources := make([]Source, 0, len(batch.Pages))

	for i, page := range batch.Pages {
		summaries = append(summaries, PageSummary{
			SourceNumber: i + 1,
			Title:        page.Title,
			URL:          page.URL,
			Summary:      a.summarizer.SummarizePage(ctx, page, query),
		})
		sources = append(sources, Source{Title: page.Title, URL: page.URL})
	}

	answer, err := a.summarizer.Synthesize(ctx, summaries, query)
	if err != nil {
		return nil, fmt.Errorf("synthesis failed: %w", err)
	}

	// A search result must carry at least one source.
	if len(sources) == 0 {
		return &QueryResult{
			Type:      ResultNoResults,
			Query:     query,
			Response:  "Sorry, I couldn't find any relevant information for your query.",
			Timestamp: time.Now(),
		}, nil
	}

	return &QueryResult{
		Type:         ResultSearch,
		Query:        query,
		Answer:       answer,
		Sources:      sources,
		TotalSources: len(sources),
		SearchEngine: batch.Strategy,
		Timestamp:    time.Now(),
	}, nil
}

// persist writes the result to the cache and the query fingerprint to the
// similarity index. Both writes are best-effort: a store outage degrades to
// always-recompute, never to a failed query.
func (a *AgentService) persist(ctx context.Context, query string, result *QueryResult) {
	logger := observability.FromContext(ctx)

	if result.Type != ResultSearch {
		return
	}

	if err := a.cache.Store(ctx, query, result); err != nil {
		logger.Warn("failed to cache result", observability.Error(err))
	}

	meta := QueryMetadata{
		Timestamp:  time.Now().Format(time.RFC3339),
		ResultType: string(result.Type),
	}
	if err := a.index.Add(ctx, query, meta); err != nil {
		logger.Warn("failed to index query fingerprint", observability.Error(err))
	}
}

func (a *AgentService) errorResult(query string, err error, start time.Time) *QueryResult {
	return &QueryResult{
		Type:           ResultError,
		Query:          query,
		Response:       fmt.Sprintf("An error occurred while processing your query: %v", err),
		ProcessingTime: time.Since(start).Seconds(),
		Timestamp:      time.Now(),
	}
}

// Status reports component health and cache statistics.
func (a *AgentService) Status(ctx context.Context) *StatusReport {
	components := map[string]string{
		"classifier":         "online",
		"similarity_search":  "online",
		"cache_manager":      "online",
		"web_scraper":        "online",
		"content_summarizer": "online",
	}

	if err := a.index.Ping(ctx); err != nil {
		components["similarity_search"] = "offline"
	}
	if err := a.cache.Ping(ctx); err != nil {
		components["cache_manager"] = "offline"
	}

	var stats CacheStats
	if count, err := a.cache.Count(ctx); err == nil {
		stats.TotalCachedQueries = count
	}

	return &StatusReport{
		Status:     "online",
		Components: components,
		CacheStats: stats,
		Config: StatusConfig{
			SimilarityThreshold: a.params.Threshold,
			MaxScrapePages:      a.params.MaxScrapePages,
		},
	}
}

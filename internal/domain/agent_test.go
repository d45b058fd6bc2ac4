package domain_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jdevra/websage/internal/domain"
)

type stubIndex struct {
	matches   []domain.SimilarQuery
	searchErr error
	added     []string
	pingErr   error
}

func (s *stubIndex) Search(_ context.Context, _ string, _ int, _ float64) ([]domain.SimilarQuery, error) {
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.matches, nil
}

func (s *stubIndex) Add(_ context.Context, query string, _ domain.QueryMetadata) error {
	s.added = append(s.added, query)
	return nil
}

func (s *stubIndex) Ping(_ context.Context) error { return s.pingErr }

type stubCache struct {
	entries map[string]*domain.QueryResult
	stored  []string
	pingErr error
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[string]*domain.QueryResult)}
}

func (s *stubCache) Lookup(_ context.Context, query string) (*domain.QueryResult, error) {
	if r, ok := s.entries[domain.NormalizeQuery(query)]; ok {
		return r, nil
	}
	return nil, domain.ErrCacheMiss
}

func (s *stubCache) LookupAny(ctx context.Context, queries []string) (*domain.QueryResult, error) {
	for _, q := range queries {
		if r, err := s.Lookup(ctx, q); err == nil {
			return r, nil
		}
	}
	return nil, domain.ErrCacheMiss
}

func (s *stubCache) Store(_ context.Context, query string, result *domain.QueryResult) error {
	s.stored = append(s.stored, query)
	s.entries[domain.NormalizeQuery(query)] = result
	return nil
}

func (s *stubCache) Count(_ context.Context) (int64, error) {
	return int64(len(s.entries)), nil
}

func (s *stubCache) Ping(_ context.Context) error { return s.pingErr }

type stubScraper struct {
	batch *domain.ScrapeBatch
	err   error
}

func (s *stubScraper) SearchAndScrape(_ context.Context, query string) (*domain.ScrapeBatch, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.batch != nil {
		return s.batch, nil
	}
	return &domain.ScrapeBatch{Query: query}, nil
}

type stubSummarizer struct {
	answer   string
	synthErr error
}

func (s *stubSummarizer) SummarizePage(_ context.Context, page domain.ScrapedPage, _ string) string {
	return "summary of " + page.URL
}

func (s *stubSummarizer) Synthesize(_ context.Context, _ []domain.PageSummary, _ string) (string, error) {
	if s.synthErr != nil {
		return "", s.synthErr
	}
	return s.answer, nil
}

func defaultParams() domain.AgentParams {
	return domain.AgentParams{
		TopK:           5,
		Threshold:      0.8,
		CacheTTL:       24 * time.Hour,
		MaxScrapePages: 5,
	}
}

func pages(urls ...string) []domain.ScrapedPage {
	out := make([]domain.ScrapedPage, 0, len(urls))
	for _, u := range urls {
		out = append(out, domain.ScrapedPage{
			URL:       u,
			Title:     "Title of " + u,
			Content:   "content",
			ScrapedAt: time.Now(),
		})
	}
	return out
}

func TestAgentService_InvalidQueryWritesNothing(t *testing.T) {
	gen := &stubTextGen{reply: "CLASSIFICATION: INVALID\nREASON: personal task"}
	index := &stubIndex{}
	cache := newStubCache()
	agent := domain.NewAgentService(
		domain.NewClassifierService(gen),
		index, cache, &stubScraper{}, &stubSummarizer{}, defaultParams())

	result := agent.ProcessQuery(context.Background(), "walk my pet")

	require.Equal(t, domain.ResultInvalidQuery, result.Type)
	require.Equal(t, "This is not a valid query.", result.Response)
	require.Equal(t, "personal task", result.Reason)
	require.Empty(t, index.added)
	require.Empty(t, cache.stored)
}

func TestAgentService_EmptyQueryIsInvalid(t *testing.T) {
	gen := &stubTextGen{reply: "CLASSIFICATION: VALID\nREASON: ok"}
	agent := domain.NewAgentService(
		domain.NewClassifierService(gen),
		&stubIndex{}, newStubCache(), &stubScraper{}, &stubSummarizer{}, defaultParams())

	result := agent.ProcessQuery(context.Background(), "   ")

	require.Equal(t, domain.ResultInvalidQuery, result.Type)
	require.Empty(t, gen.prompts, "classifier must not be consulted for empty input")
}

func TestAgentService_FullPipelinePersistsResult(t *testing.T) {
	gen := &stubTextGen{reply: "CLASSIFICATION: VALID\nREASON: searchable"}
	index := &stubIndex{}
	cache := newStubCache()
	scraper := &stubScraper{batch: &domain.ScrapeBatch{
		Query:        "Best places to visit in Delhi",
		Strategy:     "google",
		Pages:        pages("https://a.example", "https://b.example"),
		TotalResults: 2,
	}}
	agent := domain.NewAgentService(
		domain.NewClassifierService(gen),
		index, cache, scraper, &stubSummarizer{answer: "Delhi has many attractions."}, defaultParams())

	result := agent.ProcessQuery(context.Background(), "Best places to visit in Delhi")

	require.Equal(t, domain.ResultSearch, result.Type)
	require.Equal(t, "Delhi has many attractions.", result.Answer)
	require.Equal(t, 2, result.TotalSources)
	require.Equal(t, "google", result.SearchEngine)
	require.False(t, result.Cached)
	require.Equal(t, []string{"Best places to visit in Delhi"}, index.added)
	require.Equal(t, []string{"Best places to visit in Delhi"}, cache.stored)
}

func TestAgentService_SimilarQueryServedFromCache(t *testing.T) {
	gen := &stubTextGen{reply: "CLASSIFICATION: VALID\nREASON: searchable"}
	index := &stubIndex{matches: []domain.SimilarQuery{
		{Query: "Top tourist attractions in Delhi", Similarity: 0.93},
		{Query: "Best places to visit in Delhi", Similarity: 0.88},
	}}
	cache := newStubCache()
	// Only the lower-ranked candidate has a live entry; the ranked miss
	// above it must be skipped, not fatal.
	cache.entries[domain.NormalizeQuery("Best places to visit in Delhi")] = &domain.QueryResult{
		Type:         domain.ResultSearch,
		Query:        "Best places to visit in Delhi",
		Answer:       "cached answer",
		TotalSources: 3,
	}
	scraper := &stubScraper{err: errors.New("must not be called on cache hit")}
	agent := domain.NewAgentService(
		domain.NewClassifierService(gen),
		index, cache, scraper, &stubSummarizer{}, defaultParams())

	result := agent.ProcessQuery(context.Background(), "Places to see in Delhi")

	require.Equal(t, domain.ResultSearch, result.Type)
	require.Equal(t, "cached answer", result.Answer)
	require.True(t, result.Cached)
	require.True(t, result.SimilarQueryUsed)
	require.Empty(t, index.added, "cache hits must not re-index")
	require.Empty(t, cache.stored, "cache hits must not re-store")
}

func TestAgentService_SimilarityOutageDegradesToRecompute(t *testing.T) {
	gen := &stubTextGen{reply: "CLASSIFICATION: VALID\nREASON: searchable"}
	index := &stubIndex{searchErr: errors.New("index unreachable")}
	cache := newStubCache()
	scraper := &stubScraper{batch: &domain.ScrapeBatch{
		Strategy:     "duckduckgo",
		Pages:        pages("https://a.example"),
		TotalResults: 1,
	}}
	agent := domain.NewAgentService(
		domain.NewClassifierService(gen),
		index, cache, scraper, &stubSummarizer{answer: "fresh answer"}, defaultParams())

	result := agent.ProcessQuery(context.Background(), "How to learn Go")

	require.Equal(t, domain.ResultSearch, result.Type)
	require.Equal(t, "fresh answer", result.Answer)
}

func TestAgentService_NoResults(t *testing.T) {
	gen := &stubTextGen{reply: "CLASSIFICATION: VALID\nREASON: searchable"}
	index := &stubIndex{}
	cache := newStubCache()
	scraper := &stubScraper{batch: &domain.ScrapeBatch{TotalResults: 0}}
	agent := domain.NewAgentService(
		domain.NewClassifierService(gen),
		index, cache, scraper, &stubSummarizer{}, defaultParams())

	result := agent.ProcessQuery(context.Background(), "obscure query")

	require.Equal(t, domain.ResultNoResults, result.Type)
	require.Empty(t, index.added)
	require.Empty(t, cache.stored)
}

func TestAgentService_SynthesisFailureWritesNothing(t *testing.T) {
	gen := &stubTextGen{reply: "CLASSIFICATION: VALID\nREASON: searchable"}
	index := &stubIndex{}
	cache := newStubCache()
	scraper := &stubScraper{batch: &domain.ScrapeBatch{
		Pages:        pages("https://a.example"),
		TotalResults: 1,
	}}
	agent := domain.NewAgentService(
		domain.NewClassifierService(gen),
		index, cache, scraper, &stubSummarizer{synthErr: errors.New("generation failed")}, defaultParams())

	result := agent.ProcessQuery(context.Background(), "How to learn Go")

	require.Equal(t, domain.ResultError, result.Type)
	require.Contains(t, result.Response, "generation failed")
	require.Empty(t, index.added)
	require.Empty(t, cache.stored)
}

func TestAgentService_ScrapeFailureYieldsErrorPayload(t *testing.T) {
	gen := &stubTextGen{reply: "CLASSIFICATION: VALID\nREASON: searchable"}
	agent := domain.NewAgentService(
		domain.NewClassifierService(gen),
		&stubIndex{}, newStubCache(),
		&stubScraper{err: errors.New("browser crashed")},
		&stubSummarizer{}, defaultParams())

	result := agent.ProcessQuery(context.Background(), "How to learn Go")

	require.Equal(t, domain.ResultError, result.Type)
	require.Contains(t, result.Response, "browser crashed")
}

func TestAgentService_Status(t *testing.T) {
	gen := &stubTextGen{}
	index := &stubIndex{pingErr: errors.New("down")}
	cache := newStubCache()
	cache.entries["x"] = &domain.QueryResult{}
	agent := domain.NewAgentService(
		domain.NewClassifierService(gen),
		index, cache, &stubScraper{}, &stubSummarizer{}, defaultParams())

	status := agent.Status(context.Background())

	require.Equal(t, "online", status.Status)
	require.Equal(t, "offline", status.Components["similarity_search"])
	require.Equal(t, "online", status.Components["cache_manager"])
	require.EqualValues(t, 1, status.CacheStats.TotalCachedQueries)
	require.InEpsilon(t, 0.8, status.Config.SimilarityThreshold, 0.0001)
	require.Equal(t, 5, status.Config.MaxScrapePages)
}

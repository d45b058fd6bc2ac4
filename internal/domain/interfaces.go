package domain

import "context"

// TextGenerator produces text from a prompt. Classification, summarization
// and answer synthesis all go through this single capability.
type TextGenerator interface {
	// Generate returns generated text for the prompt.
	Generate(ctx context.Context, prompt string) (string, error)

	// Name returns the generator identifier.
	Name() string
}

// EmbeddingGenerator creates vector embeddings from text.
type EmbeddingGenerator interface {
	// Generate creates a vector embedding from text.
	Generate(ctx context.Context, text string) ([]float64, error)

	// Name returns the generator identifier.
	Name() string

	// Dimension returns the vector dimension.
	Dimension() int
}

// SimilarityIndex is an append-only store of query fingerprints supporting
// nearest-neighbor search.
type SimilarityIndex interface {
	// Search returns up to k prior queries whose similarity to the given
	// query is at or above threshold, ordered by descending similarity.
	// An embedding failure yields an empty result, not an error.
	Search(ctx context.Context, query string, k int, threshold float64) ([]SimilarQuery, error)

	// Add fingerprints the query and writes an immutable record keyed by a
	// content hash of the query text. Re-adding identical text overwrites
	// the same record.
	Add(ctx context.Context, query string, meta QueryMetadata) error

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}

// ResultCache stores computed results keyed by normalized query text.
type ResultCache interface {
	// Lookup returns the cached result for the query. A miss, an expired
	// entry and an unreachable store all return ErrCacheMiss.
	Lookup(ctx context.Context, query string) (*QueryResult, error)

	// LookupAny returns the first live cached result among the candidate
	// queries, preserving their order. ErrCacheMiss when none has one.
	LookupAny(ctx context.Context, queries []string) (*QueryResult, error)

	// Store caches the result with the given TTL. Best-effort: callers log
	// failures and continue.
	Store(ctx context.Context, query string, result *QueryResult) error

	// Count returns the number of live cache entries.
	Count(ctx context.Context) (int64, error)

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}

// Scraper resolves a query to source URLs and extracts their text.
type Scraper interface {
	SearchAndScrape(ctx context.Context, query string) (*ScrapeBatch, error)
}

// Summarizer condenses scraped pages into a final answer.
type Summarizer interface {
	// SummarizePage returns a summary of one page in the context of the
	// query. Failures degrade to an explanatory placeholder.
	SummarizePage(ctx context.Context, page ScrapedPage, query string) string

	// Synthesize combines per-page summaries into a single answer.
	Synthesize(ctx context.Context, summaries []PageSummary, query string) (string, error)
}

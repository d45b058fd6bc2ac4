package domain

import "time"

// ResultType discriminates the outcome of a processed query. Exactly one
// type is set on every QueryResult.
type ResultType string

const (
	// ResultInvalidQuery marks queries rejected by the classifier.
	ResultInvalidQuery ResultType = "invalid_query"

	// ResultSearch marks answers synthesized from scraped sources.
	ResultSearch ResultType = "search_result"

	// ResultNoResults marks queries for which retrieval produced no sources.
	ResultNoResults ResultType = "no_results"

	// ResultError marks queries that failed during answer synthesis.
	ResultError ResultType = "error"
)

// Source identifies a scraped page that contributed to an answer.
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// QueryResult is the single payload returned for every processed query.
// It is also the unit stored in the result cache.
type QueryResult struct {
	Type             ResultType `json:"type"`
	Query            string     `json:"query"`
	Answer           string     `json:"answer,omitempty"`
	Response         string     `json:"response,omitempty"`
	Reason           string     `json:"reason,omitempty"`
	Sources          []Source   `json:"sources,omitempty"`
	TotalSources     int        `json:"total_sources,omitempty"`
	SearchEngine     string     `json:"search_engine,omitempty"`
	Cached           bool       `json:"cached"`
	SimilarQueryUsed bool       `json:"similar_query_used,omitempty"`
	ProcessingTime   float64    `json:"processing_time"`
	Timestamp        time.Time  `json:"timestamp"`
}

// Classification is the validity verdict for a query.
type Classification struct {
	IsValid bool
	Reason  string
	Label   string // VALID, INVALID, UNKNOWN or ERROR
}

// QueryMetadata is stored alongside a query fingerprint in the similarity
// index.
type QueryMetadata struct {
	Timestamp  string `json:"timestamp"`
	ResultType string `json:"result_type"`
}

// SimilarQuery is a single similarity search match.
type SimilarQuery struct {
	Query      string
	Similarity float64
	Metadata   QueryMetadata
}

// ScrapedPage holds the extracted text of one fetched URL. Pages are
// ephemeral: they feed summarization and are never persisted.
type ScrapedPage struct {
	URL       string
	Title     string
	Content   string
	Length    int
	ScrapedAt time.Time
}

// ScrapeBatch is the aggregate outcome of one search-and-scrape run.
type ScrapeBatch struct {
	Query        string
	Strategy     string // name of the strategy that produced the URL list
	Pages        []ScrapedPage
	TotalResults int
}

// PageSummary is the per-source summary fed into final answer synthesis.
type PageSummary struct {
	SourceNumber int    `json:"source_number"`
	Title        string `json:"title"`
	URL          string `json:"url"`
	Summary      string `json:"summary"`
}

// StatusReport describes component health and cache statistics.
type StatusReport struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
	CacheStats CacheStats        `json:"cache_stats"`
	Config     StatusConfig      `json:"config"`
}

// CacheStats holds result cache counters.
type CacheStats struct {
	TotalCachedQueries int64 `json:"total_cached_queries"`
}

// StatusConfig echoes the operative tuning knobs.
type StatusConfig struct {
	SimilarityThreshold float64 `json:"similarity_threshold"`
	MaxScrapePages      int     `json:"max_scrape_pages"`
}

// Package redis implements the query fingerprint index on a Redis search
// index (FLAT vector field, cosine distance). Records are append-only:
// re-adding identical query text overwrites the same content-hash key, and
// nothing ever deletes them in normal operation.
package redis

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/jdevra/websage/internal/domain"
	"github.com/jdevra/websage/internal/observability"
)

const (
	redisDialectVersion = 2

	// fingerprintKeyPrefix namespaces index records and doubles as the
	// FT.CREATE prefix filter.
	fingerprintKeyPrefix = "queryfp:"
)

// Index implements domain.SimilarityIndex using Redis vector search.
type Index struct {
	client    *redis.Client
	embedder  domain.EmbeddingGenerator
	indexName string
}

// NewIndex creates a new Redis similarity index adapter and ensures the
// search index exists.
func NewIndex(client *redis.Client, embedder domain.EmbeddingGenerator, indexName string) (*Index, error) {
	idx := &Index{
		client:    client,
		embedder:  embedder,
		indexName: indexName,
	}

	if err := idx.createIndex(); err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return idx, nil
}

// FingerprintKey derives the record key from a content hash of the raw
// query text, making Add idempotent.
func FingerprintKey(query string) string {
	hash := sha256.Sum256([]byte(query))
	return fingerprintKeyPrefix + hex.EncodeToString(hash[:])
}

// floatsToBytes converts float64 slice to binary byte representation.
func floatsToBytes(fs []float64) []byte {
	const bytesPerFloat32 = 4
	buf := make([]byte, len(fs)*bytesPerFloat32)

	for i, f := range fs {
		// Convert float64 to float32 for Redis compatibility
		f32 := float32(f)
		u := math.Float32bits(f32)
		binary.LittleEndian.PutUint32(buf[i*bytesPerFloat32:], u)
	}

	return buf
}

// Search finds prior queries whose fingerprints lie within threshold of the
// given query. An embedding failure degrades to an empty result so the
// pipeline falls through to recomputation.
func (idx *Index) Search(
	ctx context.Context,
	query string,
	k int,
	threshold float64,
) ([]domain.SimilarQuery, error) {
	logger := observability.FromContext(ctx)

	embedding, err := idx.embedder.Generate(ctx, query)
	if err != nil {
		logger.Warn("fingerprint embedding failed, skipping similarity search",
			observability.Error(err))
		return nil, nil
	}

	logger.Debug("starting fingerprint search",
		observability.String("index", idx.indexName),
		observability.Int("embedding_dim", len(embedding)),
		observability.Float64("threshold", threshold),
		observability.Int("k", k))

	knnQuery := fmt.Sprintf("*=>[KNN %d @embedding $vec AS score]", k)

	results, err := idx.client.FTSearchWithArgs(ctx, idx.indexName, knnQuery,
		&redis.FTSearchOptions{
			Return: []redis.FTSearchReturn{
				{FieldName: "query"},
				{FieldName: "metadata"},
				{FieldName: "score"},
			},
			DialectVersion: redisDialectVersion,
			Params: map[string]any{
				"vec": floatsToBytes(embedding),
			},
		},
	).Result()
	if err != nil {
		return nil, fmt.Errorf("fingerprint search failed: %w", err)
	}

	matches := parseSearchResults(results, threshold)

	logger.Info("fingerprint search completed",
		observability.Int("total_docs", results.Total),
		observability.Int("matches", len(matches)))

	return matches, nil
}

// Add fingerprints the query and writes an immutable record. The content
// hash key makes repeated adds of identical text overwrite in place.
func (idx *Index) Add(ctx context.Context, query string, meta domain.QueryMetadata) error {
	logger := observability.FromContext(ctx)

	embedding, err := idx.embedder.Generate(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to generate fingerprint: %w", err)
	}

	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	key := FingerprintKey(query)
	logger.Debug("indexing query fingerprint",
		observability.String("key", key),
		observability.Int("embedding_dim", len(embedding)))

	err = idx.client.HSet(ctx, key,
		"embedding", floatsToBytes(embedding),
		"query", query,
		"metadata", string(metaJSON),
	).Err()
	if err != nil {
		return fmt.Errorf("failed to index fingerprint: %w", err)
	}

	return nil
}

// Ping reports whether the backing store is reachable.
func (idx *Index) Ping(ctx context.Context) error {
	if err := idx.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("index store unreachable: %w", err)
	}
	return nil
}

// createIndex creates the Redis search index if it doesn't exist.
func (idx *Index) createIndex() error {
	ctx := context.Background()
	logger := observability.FromContext(ctx)

	// Check if index already exists
	if _, err := idx.client.FTInfo(ctx, idx.indexName).Result(); err == nil {
		logger.Info("redis search index already exists, skipping creation",
			observability.String("index_name", idx.indexName))
		return nil
	}

	dimension := idx.embedder.Dimension()
	logger.Info("creating redis search index",
		observability.String("index_name", idx.indexName),
		observability.Int("embedding_dimension", dimension))

	_, err := idx.client.FTCreate(ctx, idx.indexName,
		&redis.FTCreateOptions{
			OnHash: true,
			Prefix: []any{fingerprintKeyPrefix},
		},
		&redis.FieldSchema{
			FieldName: "embedding",
			FieldType: redis.SearchFieldTypeVector,
			VectorArgs: &redis.FTVectorArgs{
				FlatOptions: &redis.FTFlatOptions{
					Type:           "FLOAT32",
					Dim:            dimension,
					DistanceMetric: "COSINE",
				},
			},
		},
		&redis.FieldSchema{
			FieldName: "query",
			FieldType: redis.SearchFieldTypeText,
		},
		&redis.FieldSchema{
			FieldName: "metadata",
			FieldType: redis.SearchFieldTypeText,
		},
	).Result()
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	return nil
}

// parseSearchResults converts the raw search reply into threshold-filtered
// matches. KNN results arrive ordered by ascending distance, which is
// already descending similarity.
func parseSearchResults(result redis.FTSearchResult, threshold float64) []domain.SimilarQuery {
	var matches []domain.SimilarQuery

	for _, doc := range result.Docs {
		if match, ok := parseSearchResult(doc, threshold); ok {
			matches = append(matches, match)
		}
	}

	return matches
}

// parseSearchResult parses a single document. Docs missing fields or below
// threshold are dropped.
func parseSearchResult(doc redis.Document, threshold float64) (domain.SimilarQuery, bool) {
	scoreStr, ok := doc.Fields["score"]
	if !ok {
		return domain.SimilarQuery{}, false
	}

	distance, err := strconv.ParseFloat(scoreStr, 64)
	if err != nil {
		return domain.SimilarQuery{}, false
	}

	// Convert distance to similarity (1.0 - distance for cosine)
	similarity := 1.0 - distance
	if similarity < threshold {
		return domain.SimilarQuery{}, false
	}

	query, ok := doc.Fields["query"]
	if !ok {
		return domain.SimilarQuery{}, false
	}

	var meta domain.QueryMetadata
	if metaStr, metaOK := doc.Fields["metadata"]; metaOK {
		_ = json.Unmarshal([]byte(metaStr), &meta)
	}

	return domain.SimilarQuery{
		Query:      query,
		Similarity: similarity,
		Metadata:   meta,
	}, true
}

package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const cacheKeyPrefix = "query_result:"

// NormalizeQuery case-folds the query and collapses all whitespace, so that
// textual near-identical forms map to one cache key.
func NormalizeQuery(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}

// CacheKey derives the result cache key from query text. Two queries with
// identical normalized text always collide to the same key.
func CacheKey(query string) string {
	hash := sha256.Sum256([]byte(NormalizeQuery(query)))
	return cacheKeyPrefix + hex.EncodeToString(hash[:])
}

// CacheKeyPrefix returns the key namespace of cache entries, used by the
// store to count and clear them.
func CacheKeyPrefix() string {
	return cacheKeyPrefix
}

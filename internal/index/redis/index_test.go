package redis

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func searchResult(docs ...redis.Document) redis.FTSearchResult {
	return redis.FTSearchResult{Total: len(docs), Docs: docs}
}

func doc(query, score string) redis.Document {
	return redis.Document{
		ID: FingerprintKey(query),
		Fields: map[string]string{
			"query":    query,
			"score":    score,
			"metadata": `{"timestamp":"2026-01-01T00:00:00Z","result_type":"search_result"}`,
		},
	}
}

func TestFingerprintKey_Idempotent(t *testing.T) {
	require.Equal(t, FingerprintKey("Best places to visit in Delhi"), FingerprintKey("Best places to visit in Delhi"))
	require.NotEqual(t, FingerprintKey("a"), FingerprintKey("b"))
	require.Contains(t, FingerprintKey("a"), fingerprintKeyPrefix)
}

func TestFloatsToBytes(t *testing.T) {
	buf := floatsToBytes([]float64{1.0, -0.5})

	require.Len(t, buf, 8)
	require.InEpsilon(t, 1.0, math.Float32frombits(binary.LittleEndian.Uint32(buf[0:4])), 0.0001)
	require.InEpsilon(t, -0.5, math.Float32frombits(binary.LittleEndian.Uint32(buf[4:8])), 0.0001)
}

func TestParseSearchResults_ThresholdFilter(t *testing.T) {
	// Distances 0.05, 0.15, 0.35 map to similarities 0.95, 0.85, 0.65.
	result := searchResult(
		doc("delhi attractions", "0.05"),
		doc("delhi sights", "0.15"),
		doc("mumbai food", "0.35"),
	)

	matches := parseSearchResults(result, 0.8)

	require.Len(t, matches, 2)
	require.Equal(t, "delhi attractions", matches[0].Query)
	require.InEpsilon(t, 0.95, matches[0].Similarity, 0.0001)
	require.Equal(t, "delhi sights", matches[1].Query)
	require.Equal(t, "search_result", matches[0].Metadata.ResultType)
}

func TestParseSearchResults_ThresholdMonotonicity(t *testing.T) {
	result := searchResult(
		doc("a", "0.02"),
		doc("b", "0.12"),
		doc("c", "0.22"),
		doc("d", "0.42"),
	)

	prev := len(parseSearchResults(result, 0.0))
	for _, threshold := range []float64{0.5, 0.7, 0.85, 0.95, 1.0} {
		n := len(parseSearchResults(result, threshold))
		require.LessOrEqual(t, n, prev, "raising the threshold must never grow the result set")
		prev = n
	}
}

func TestParseSearchResults_DropsMalformedDocs(t *testing.T) {
	noScore := redis.Document{ID: "queryfp:x", Fields: map[string]string{"query": "x"}}
	badScore := redis.Document{ID: "queryfp:y", Fields: map[string]string{"query": "y", "score": "not-a-number"}}
	noQuery := redis.Document{ID: "queryfp:z", Fields: map[string]string{"score": "0.1"}}

	matches := parseSearchResults(searchResult(noScore, badScore, noQuery), 0.0)

	require.Empty(t, matches)
}

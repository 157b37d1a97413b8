package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStableIDFromKey_Deterministic(t *testing.T) {
	key := "blog:post_123:chunk_0"

	first := StableIDFromKey(key)
	second := StableIDFromKey(key)

	assert.Equal(t, first, second, "same key must always map to the same id")
}

func TestStableIDFromKey_DistinctKeys(t *testing.T) {
	keys := []string{
		"blog:post_123:chunk_0",
		"blog:post_123:chunk_1",
		"blog:post_124:chunk_0",
		"linkedin:post_1:chunk_0",
		"a",
		"a:chunk_0",
		"",
	}

	seen := make(map[StableID]string, len(keys))
	for _, key := range keys {
		id := StableIDFromKey(key)
		prev, dup := seen[id]
		require.False(t, dup, "keys %q and %q mapped to the same id", key, prev)
		seen[id] = key
	}
}

func TestStableIDFromKey_UUIDString(t *testing.T) {
	id := StableIDFromKey("blog:test:chunk_0")

	// Version 5, RFC 4122 variant.
	assert.Equal(t, uint8(5), id[6]>>4)
	assert.Len(t, id.String(), 36)
}

func TestFingerprint_Deterministic(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog."

	assert.Equal(t, Fingerprint(text), Fingerprint(text))
	assert.NotEqual(t, Fingerprint(text), Fingerprint(text+" "))
	assert.Len(t, Fingerprint(text), 32)
}

func TestChunkKey(t *testing.T) {
	assert.Equal(t, "doc1:chunk_0", ChunkKey("doc1", 0))
	assert.Equal(t, "blog:post_123:chunk_7", ChunkKey("blog:post_123", 7))
}

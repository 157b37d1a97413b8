package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agamjn/rumi/ai"
	"github.com/agamjn/rumi/core"
)

// embeddingServer returns an httptest server that speaks just enough of the
// OpenAI embeddings API for the langchaingo client, emitting vectors of the
// given dimension. calls is incremented once per request.
func embeddingServer(t *testing.T, dimension int, calls *atomic.Int32) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)

		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		type datum struct {
			Object    string    `json:"object"`
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}
		data := make([]datum, len(req.Input))
		for i := range req.Input {
			vec := make([]float32, dimension)
			for j := range vec {
				vec[j] = float32(i + 1)
			}
			data[i] = datum{Object: "embedding", Embedding: vec, Index: i}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   data,
			"model":  req.Model,
			"usage":  map[string]int{"prompt_tokens": 1, "total_tokens": 1},
		})
	}))
}

func testConfig(host string, dimensions int) *ai.Config {
	return ai.NewConfig(
		ai.WithEmbeddingHost(host),
		ai.WithAPIToken("test-token"),
		ai.WithDimensions(dimensions),
	)
}

func TestEmbedTexts(t *testing.T) {
	var calls atomic.Int32
	server := embeddingServer(t, 4, &calls)
	defer server.Close()

	embedder, err := newEmbedder(testConfig(server.URL, 4))
	require.NoError(t, err)

	vectors, err := embedder.EmbedTexts(context.Background(), []string{"alpha", "beta"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Len(t, vectors[0], 4)
	assert.Len(t, vectors[1], 4)
	assert.Equal(t, int32(1), calls.Load())
}

func TestEmbedTexts_EmptyInput(t *testing.T) {
	var calls atomic.Int32
	server := embeddingServer(t, 4, &calls)
	defer server.Close()

	embedder, err := newEmbedder(testConfig(server.URL, 4))
	require.NoError(t, err)

	vectors, err := embedder.EmbedTexts(context.Background(), []string{})
	require.NoError(t, err)
	assert.Empty(t, vectors)

	// No remote call for an empty batch
	assert.Equal(t, int32(0), calls.Load())
}

func TestEmbedTexts_DimensionMismatch(t *testing.T) {
	var calls atomic.Int32
	server := embeddingServer(t, 4, &calls)
	defer server.Close()

	// Configured for 8 dimensions, server returns 4
	embedder, err := newEmbedder(testConfig(server.URL, 8))
	require.NoError(t, err)

	_, err = embedder.EmbedTexts(context.Background(), []string{"alpha"})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrDimensionMismatch)

	// Mismatch is a configuration fault, never transient
	assert.False(t, core.IsTransient(err))
}

func TestEmbedTexts_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "overloaded"}}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	embedder, err := newEmbedder(testConfig(server.URL, 4))
	require.NoError(t, err)

	_, err = embedder.EmbedTexts(context.Background(), []string{"alpha"})
	require.Error(t, err)
	assert.True(t, core.IsTransient(err))
}

func TestEmbedText(t *testing.T) {
	var calls atomic.Int32
	server := embeddingServer(t, 4, &calls)
	defer server.Close()

	embedder, err := newEmbedder(testConfig(server.URL, 4))
	require.NoError(t, err)

	vector, err := embedder.EmbedText(context.Background(), "single text")
	require.NoError(t, err)
	assert.Len(t, vector, 4)
}

func TestNewEmbedder_InvalidConfig(t *testing.T) {
	_, err := NewEmbedder(&ai.Config{})
	assert.Error(t, err)
}

package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agamjn/rumi/ai/mock"
	"github.com/agamjn/rumi/core"
)

// newWordChunker builds a chunker whose token counts are word counts,
// which keeps boundary expectations readable.
func newWordChunker(t *testing.T, maxTokens int) *Chunker {
	t.Helper()

	c, err := New(mock.NewMockTokenCounter(), WithMaxTokens(maxTokens))
	require.NoError(t, err)
	return c
}

// words builds a paragraph of n repeated words.
func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func TestChunk_SingleChunk(t *testing.T) {
	c := newWordChunker(t, 6000)

	text := "A short document that fits comfortably in one chunk."
	chunks, err := c.Chunk(text, "doc1", nil)
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	assert.Equal(t, "doc1:chunk_0", chunks[0].ChunkID)
	assert.Equal(t, "doc1", chunks[0].ParentID)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, 1, chunks[0].Total)
	assert.Equal(t, text, chunks[0].Text, "single-chunk text must be verbatim")
	assert.Equal(t, 9, chunks[0].Tokens)
}

func TestChunk_GreedyParagraphs(t *testing.T) {
	// Three paragraphs of 30 words each with a 60-word budget: the first
	// two fill chunk 0 exactly, the third lands alone in chunk 1.
	p1, p2, p3 := words(30), words(30), words(30)
	text := p1 + "\n\n" + p2 + "\n\n" + p3

	c := newWordChunker(t, 60)

	chunks, err := c.Chunk(text, "doc1", nil)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.Equal(t, p1+"\n\n"+p2, chunks[0].Text)
	assert.Equal(t, 60, chunks[0].Tokens)
	assert.Equal(t, p3, chunks[1].Text)
	assert.Equal(t, 30, chunks[1].Tokens)

	for i, chunk := range chunks {
		assert.Equal(t, fmt.Sprintf("doc1:chunk_%d", i), chunk.ChunkID)
		assert.Equal(t, i, chunk.Index)
		assert.Equal(t, 2, chunk.Total)
		assert.Equal(t, "doc1", chunk.ParentID)
	}
}

func TestChunk_Deterministic(t *testing.T) {
	text := words(30) + "\n\n" + words(25) + "\n\n" + words(40)
	c := newWordChunker(t, 50)

	first, err := c.Chunk(text, "doc1", nil)
	require.NoError(t, err)
	second, err := c.Chunk(text, "doc1", nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestChunk_SentenceFallback(t *testing.T) {
	// One paragraph of ten 8-word sentences with a 20-word budget: no
	// paragraph boundary to use, so chunks form at sentence granularity.
	sentence := "One two three four five six seven eight."
	para := strings.TrimSpace(strings.Repeat(sentence+" ", 10))

	c := newWordChunker(t, 20)

	chunks, err := c.Chunk(para, "doc1", nil)
	require.NoError(t, err)
	require.Len(t, chunks, 5)

	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Index)
		assert.Equal(t, 5, chunk.Total)
		assert.Equal(t, 16, chunk.Tokens)
		assert.NotContains(t, chunk.Text, "eight. One",
			"chunks must break between sentences, not inside them")
	}
}

func TestChunk_OversizedSentenceKeptIntact(t *testing.T) {
	// A single sentence over the budget cannot be split further; it is
	// kept whole and reported with its real token count.
	oversized := words(50) + "."
	text := words(10) + ".\n\n" + oversized

	c := newWordChunker(t, 20)

	chunks, err := c.Chunk(text, "doc1", nil)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.Equal(t, oversized, chunks[1].Text)
	assert.Equal(t, 50, chunks[1].Tokens)
}

func TestChunk_MetadataInherited(t *testing.T) {
	metadata := map[string]any{
		"category": "work",
		"tags":     []string{"go", "testing"},
	}

	c := newWordChunker(t, 25)
	text := words(20) + "\n\n" + words(20)

	chunks, err := c.Chunk(text, "doc1", metadata)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	for _, chunk := range chunks {
		assert.Equal(t, metadata, chunk.Metadata)
	}
}

func TestChunk_InvalidInput(t *testing.T) {
	c := newWordChunker(t, 100)

	t.Run("empty text", func(t *testing.T) {
		_, err := c.Chunk("", "doc1", nil)
		assert.ErrorIs(t, err, core.ErrEmptyInput)
	})

	t.Run("whitespace-only text", func(t *testing.T) {
		_, err := c.Chunk("  \n\t\n  ", "doc1", nil)
		assert.ErrorIs(t, err, core.ErrEmptyInput)
	})

	t.Run("empty document id", func(t *testing.T) {
		_, err := c.Chunk("some text", "", nil)
		assert.ErrorIs(t, err, core.ErrEmptyDocumentID)
	})
}

func TestNew_Validation(t *testing.T) {
	t.Run("nil counter", func(t *testing.T) {
		_, err := New(nil)
		assert.Error(t, err)
	})

	t.Run("non-positive max tokens", func(t *testing.T) {
		_, err := New(mock.NewMockTokenCounter(), WithMaxTokens(0))
		assert.Error(t, err)
	})
}

func TestSplitParagraphs(t *testing.T) {
	text := "First paragraph.\n\nSecond paragraph.\n  \n\nThird."

	paragraphs := splitParagraphs(text)

	assert.Equal(t, []string{"First paragraph.", "Second paragraph.", "Third."}, paragraphs)
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			name:     "mixed terminators",
			text:     "Hello world. How are you? Just fine!",
			expected: []string{"Hello world.", "How are you?", "Just fine!"},
		},
		{
			name:     "ellipsis stays together",
			text:     "Wait for it... there it is.",
			expected: []string{"Wait for it...", "there it is."},
		},
		{
			name:     "no terminator",
			text:     "a fragment without punctuation",
			expected: []string{"a fragment without punctuation"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, splitSentences(tt.text))
		})
	}
}

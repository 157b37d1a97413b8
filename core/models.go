package core

import "fmt"

// Document is a unit of long-form text handed to the index by a caller.
// Metadata is opaque to the index and is carried into every chunk payload
// unchanged (title, category, tags, source, publish date, ...).
type Document struct {
	ID       string
	Text     string
	Metadata map[string]any
}

// Chunk is a token-bounded slice of a document's text, the unit of
// embedding and storage.
type Chunk struct {
	ChunkID  string
	ParentID string
	Index    int
	Total    int
	Text     string
	Tokens   int
	Metadata map[string]any
}

// ChunkKey derives the logical key for the chunk at the given position
// within a document. Keys are stable across runs: the same document id and
// index always produce the same key.
func ChunkKey(docID string, index int) string {
	return fmt.Sprintf("%s:chunk_%d", docID, index)
}

// Key returns the chunk's logical storage key.
func (c *Chunk) Key() string {
	return c.ChunkID
}

// Payload field names written by the ingestion pipeline alongside caller
// metadata. PayloadChunkID is the human-readable recovery key; the stored
// point id is derived from it and is opaque.
const (
	PayloadChunkID     = "chunk_id"
	PayloadParentID    = "parent_id"
	PayloadChunkIndex  = "chunk_index"
	PayloadTotalChunks = "total_chunks"
	PayloadText        = "text"
	PayloadTokens      = "tokens"
	PayloadContentHash = "content_hash"
)

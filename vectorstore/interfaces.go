// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package vectorstore

import (
	"context"
	"fmt"
)

// Distance is the similarity metric fixed at collection creation.
type Distance string

const (
	// DistanceCosine is the default for normalized text embeddings.
	DistanceCosine Distance = "Cosine"

	// DistanceDot is dot-product similarity.
	DistanceDot Distance = "Dot"
)

// CollectionConfig describes the collection a Store owns.
// Dimension must match the embedding model in use; it is enforced on
// every write.
type CollectionConfig struct {
	Name      string
	Dimension int
	Distance  Distance
}

// DefaultCollectionConfig returns the standard content collection for
// text-embedding-3-small vectors.
func DefaultCollectionConfig() CollectionConfig {
	return CollectionConfig{
		Name:      "rumi_content",
		Dimension: 1536,
		Distance:  DistanceCosine,
	}
}

// Validate checks that the collection configuration is usable.
func (c *CollectionConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("collection config: Name is required")
	}
	if c.Dimension <= 0 {
		return fmt.Errorf("collection config: Dimension must be positive, got %d", c.Dimension)
	}
	switch c.Distance {
	case DistanceCosine, DistanceDot:
	default:
		return fmt.Errorf("collection config: unsupported distance %q", c.Distance)
	}
	return nil
}

// SearchResult is one ranked hit from a similarity search.
// ChunkID is the human-readable recovery key preserved in the payload.
type SearchResult struct {
	ChunkID string
	Score   float32
	Payload map[string]any
}

// Stats reports collection health for post-write verification.
type Stats struct {
	PointCount uint64
	Status     string
}

// Store provides idempotent vector storage scoped to one collection.
// Implementations must be safe for concurrent use by multiple workers.
type Store interface {
	// CreateCollection creates the collection if missing. With recreate
	// set, an existing collection is dropped first; this destroys data
	// and must reflect explicit caller intent.
	CreateCollection(ctx context.Context, recreate bool) error

	// Exists reports whether a point for chunkKey is stored, without
	// fetching its vector. Returns false, not an error, when the
	// collection does not yet exist.
	Exists(ctx context.Context, chunkKey string) (bool, error)

	// Upsert writes the point addressed by chunkKey, fully replacing any
	// prior vector and payload. The vector dimension is validated before
	// writing; on mismatch nothing is mutated. The chunkKey is preserved
	// in the stored payload under the chunk_id field.
	Upsert(ctx context.Context, chunkKey string, vector []float32, payload map[string]any) error

	// Search returns up to limit results ordered by descending
	// similarity, after applying filters as a conjunction. An empty
	// collection yields an empty slice, not an error.
	Search(ctx context.Context, vector []float32, limit int, filters *Filters) ([]SearchResult, error)

	// Delete removes the point addressed by chunkKey. Deleting a
	// nonexistent key is a no-op success.
	Delete(ctx context.Context, chunkKey string) error

	// Stats returns the collection's point count and status.
	Stats(ctx context.Context) (*Stats, error)

	// Close releases resources held by the store.
	Close() error
}

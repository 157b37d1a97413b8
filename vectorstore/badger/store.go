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


// Package badger provides an embedded vectorstore.Store backed by
// BadgerDB. Search is a full scan over the collection's points, which is
// fine for local corpora but does not replace a real ANN index at scale.
package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/agamjn/rumi/core"
	"github.com/agamjn/rumi/vectorstore"
)

// Store implements vectorstore.Store on an embedded BadgerDB instance.
type Store struct {
	db     *badger.DB
	config vectorstore.CollectionConfig
	logger *slog.Logger
}

var _ vectorstore.Store = (*Store)(nil)

// badgerLoggerAdapter adapts slog.Logger to badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Info(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// Open opens a store at the specified path, creating the directory if
// needed. With inMemory set, path is ignored and nothing is persisted.
func Open(filePath string, inMemory bool, config vectorstore.CollectionConfig) (*Store, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var opts badger.Options

	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		info, err := os.Stat(filePath)
		if err != nil {
			if os.IsNotExist(err) {
				if err := os.MkdirAll(filePath, 0755); err != nil {
					return nil, err
				}
				info, err = os.Stat(filePath)
				if err != nil {
					return nil, err
				}
			} else {
				return nil, err
			}
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", filePath)
		}
		opts = badger.DefaultOptions(filePath)
	}

	opts.Logger = &badgerLoggerAdapter{logger: slog.Default()}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Store{
		db:     db,
		config: config,
		logger: slog.Default().With("component", "badger-store", "collection", config.Name),
	}, nil
}

// withTx executes a function within a BadgerDB transaction.
// The transaction is discarded automatically if fn returns an error.
func (s *Store) withTx(fn func(tx *badger.Txn) error, isWrite bool) error {
	if s.db.IsClosed() {
		return vectorstore.ErrStoreClosed
	}

	tx := s.db.NewTransaction(isWrite)
	defer tx.Discard()

	if err := fn(tx); err != nil {
		return err
	}
	if isWrite {
		return tx.Commit()
	}
	return nil
}

// CreateCollection writes the collection marker. An existing collection
// is left untouched unless recreate is set, in which case all of its
// points are dropped first.
func (s *Store) CreateCollection(ctx context.Context, recreate bool) error {
	dimension, err := s.collectionDimension()
	if err != nil {
		return err
	}

	if dimension > 0 {
		if !recreate {
			if dimension != s.config.Dimension {
				return fmt.Errorf("%w: collection %q has dimension %d, configured %d",
					core.ErrDimensionMismatch, s.config.Name, dimension, s.config.Dimension)
			}
			s.logger.Debug("collection already exists")
			return nil
		}

		s.logger.Warn("recreating collection, stored points will be lost")
		if err := s.db.DropPrefix(makePointScanPrefix(s.config.Name)); err != nil {
			return err
		}
	}

	err = s.withTx(func(tx *badger.Txn) error {
		return tx.Set(makeCollectionKey(s.config.Name), marshalDimension(s.config.Dimension))
	}, true)
	if err != nil {
		return err
	}

	s.logger.Info("created collection",
		"dimension", s.config.Dimension, "distance", s.config.Distance)
	return nil
}

// Exists reports whether a point for chunkKey is stored. A missing
// collection reads as absent, not as an error.
func (s *Store) Exists(ctx context.Context, chunkKey string) (bool, error) {
	var found bool

	err := s.withTx(func(tx *badger.Txn) error {
		if _, err := tx.Get(makeCollectionKey(s.config.Name)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}

		key := makePointKey(s.config.Name, core.StableIDFromKey(chunkKey))
		switch _, err := tx.Get(key); {
		case err == nil:
			found = true
		case errors.Is(err, badger.ErrKeyNotFound):
		default:
			return err
		}
		return nil
	}, false)

	return found, err
}

// Upsert writes the point for chunkKey, fully replacing any prior vector
// and payload. The chunk key is preserved in the payload under chunk_id.
func (s *Store) Upsert(ctx context.Context, chunkKey string, vector []float32, payload map[string]any) error {
	if err := core.ValidateVector(vector, s.config.Dimension); err != nil {
		return err
	}

	merged := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		merged[k] = v
	}
	merged[core.PayloadChunkID] = chunkKey

	encoded, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("%w: payload: %v", vectorstore.ErrSerializationFailed, err)
	}

	record := &pointRecord{
		ChunkID: chunkKey,
		Vector:  vector,
		Payload: encoded,
	}

	return s.withTx(func(tx *badger.Txn) error {
		if _, err := tx.Get(makeCollectionKey(s.config.Name)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s", vectorstore.ErrCollectionNotFound, s.config.Name)
			}
			return err
		}
		key := makePointKey(s.config.Name, core.StableIDFromKey(chunkKey))
		return tx.Set(key, marshalPoint(record))
	}, true)
}

// Search scans every point in the collection, scores it against the
// query vector, and returns up to limit filtered results ordered by
// descending score. An absent or empty collection yields no results.
func (s *Store) Search(ctx context.Context, vector []float32, limit int, filters *vectorstore.Filters) ([]vectorstore.SearchResult, error) {
	if err := core.ValidateVector(vector, s.config.Dimension); err != nil {
		return nil, err
	}
	if err := filters.Validate(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	results := []vectorstore.SearchResult{}

	err := s.withTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePointScanPrefix(s.config.Name)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var record *pointRecord
			err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = unmarshalPoint(val)
				return err
			})
			if err != nil {
				return err
			}

			score := s.score(vector, record.Vector)
			if filters != nil && filters.MinScore > 0 && score < filters.MinScore {
				continue
			}

			var payload map[string]any
			if err := json.Unmarshal(record.Payload, &payload); err != nil {
				return fmt.Errorf("%w: payload: %v", vectorstore.ErrSerializationFailed, err)
			}
			if !filters.Matches(payload) {
				continue
			}

			results = append(results, vectorstore.SearchResult{
				ChunkID: record.ChunkID,
				Score:   score,
				Payload: payload,
			})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b vectorstore.SearchResult) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Delete removes the point for chunkKey. Absent keys are a no-op.
func (s *Store) Delete(ctx context.Context, chunkKey string) error {
	return s.withTx(func(tx *badger.Txn) error {
		key := makePointKey(s.config.Name, core.StableIDFromKey(chunkKey))
		return tx.Delete(key)
	}, true)
}

// Stats counts the collection's points.
func (s *Store) Stats(ctx context.Context) (*vectorstore.Stats, error) {
	stats := &vectorstore.Stats{Status: "green"}

	err := s.withTx(func(tx *badger.Txn) error {
		if _, err := tx.Get(makeCollectionKey(s.config.Name)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s", vectorstore.ErrCollectionNotFound, s.config.Name)
			}
			return err
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePointScanPrefix(s.config.Name)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			stats.PointCount++
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// collectionDimension returns the marker dimension, or 0 when the
// collection has not been created.
func (s *Store) collectionDimension() (int, error) {
	var dimension int

	err := s.withTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeCollectionKey(s.config.Name))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		return item.Value(func(val []byte) error {
			dimension, err = unmarshalDimension(val)
			return err
		})
	}, false)

	return dimension, err
}

// score computes similarity under the collection's distance metric.
func (s *Store) score(query, stored []float32) float32 {
	switch s.config.Distance {
	case vectorstore.DistanceDot:
		return dotProduct(query, stored)
	default:
		return cosineSimilarity(query, stored)
	}
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// cosineSimilarity normalizes the dot product by vector magnitudes.
func cosineSimilarity(a, b []float32) float32 {
	var dot, normA, normB float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / float32(math.Sqrt(float64(normA))*math.Sqrt(float64(normB)))
}

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


// Package rumi assembles the content index: token-aware chunking,
// embedding via an OpenAI-compatible service, and deduplicated vector
// storage with filtered similarity search.
package rumi

import (
	"context"
	"log/slog"

	"github.com/agamjn/rumi/ai"
	"github.com/agamjn/rumi/ai/openai"
	"github.com/agamjn/rumi/chunker"
	"github.com/agamjn/rumi/ingestion"
	"github.com/agamjn/rumi/search"
	"github.com/agamjn/rumi/vectorstore"
	"github.com/agamjn/rumi/vectorstore/badger"
	"github.com/agamjn/rumi/vectorstore/qdrant"
)

// Index bundles the store, the AI provider, and the chunker behind one
// handle. Create one with Open (embedded storage) or Connect (remote
// Qdrant).
type Index struct {
	store    vectorstore.Store
	provider ai.Provider
	chunker  *chunker.Chunker
	logger   *slog.Logger
}

// IndexOption configures an Index.
type IndexOption func(*indexOptions)

type indexOptions struct {
	aiConfig    *ai.Config
	collection  vectorstore.CollectionConfig
	provider    ai.Provider
	chunkerOpts []chunker.Option
	qdrantOpts  []qdrant.Option
}

// WithAIConfig sets the embedding service configuration.
func WithAIConfig(cfg *ai.Config) IndexOption {
	return func(o *indexOptions) {
		o.aiConfig = cfg
	}
}

// WithCollection sets the collection the index operates on.
func WithCollection(cfg vectorstore.CollectionConfig) IndexOption {
	return func(o *indexOptions) {
		o.collection = cfg
	}
}

// WithProvider injects a pre-built AI provider, bypassing the
// configuration-based OpenAI provider. Used for tests and custom
// backends.
func WithProvider(provider ai.Provider) IndexOption {
	return func(o *indexOptions) {
		o.provider = provider
	}
}

// WithChunkerOptions forwards options to the index's chunker.
func WithChunkerOptions(opts ...chunker.Option) IndexOption {
	return func(o *indexOptions) {
		o.chunkerOpts = append(o.chunkerOpts, opts...)
	}
}

// WithQdrantOptions forwards options to the Qdrant store built by
// Connect. Ignored by Open.
func WithQdrantOptions(opts ...qdrant.Option) IndexOption {
	return func(o *indexOptions) {
		o.qdrantOpts = append(o.qdrantOpts, opts...)
	}
}

// Open creates an Index over embedded storage at filePath. An empty
// filePath opens an in-memory store that is lost on Close.
func Open(filePath string, opts ...IndexOption) (*Index, error) {
	options := applyOptions(opts)

	store, err := badger.Open(filePath, filePath == "", options.collection)
	if err != nil {
		return nil, err
	}

	return assemble(store, options)
}

// Connect creates an Index over a remote Qdrant instance at baseURL.
func Connect(baseURL string, opts ...IndexOption) (*Index, error) {
	options := applyOptions(opts)

	store, err := qdrant.New(baseURL, options.collection, options.qdrantOpts...)
	if err != nil {
		return nil, err
	}

	return assemble(store, options)
}

func applyOptions(opts []IndexOption) *indexOptions {
	options := &indexOptions{
		aiConfig:   ai.DefaultConfig(),
		collection: vectorstore.DefaultCollectionConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

func assemble(store vectorstore.Store, options *indexOptions) (*Index, error) {
	provider := options.provider
	if provider == nil {
		var err error
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			store.Close()
			return nil, err
		}
	}

	ch, err := chunker.New(provider.TokenCounter(), options.chunkerOpts...)
	if err != nil {
		provider.Close()
		store.Close()
		return nil, err
	}

	return &Index{
		store:    store,
		provider: provider,
		chunker:  ch,
		logger:   slog.Default(),
	}, nil
}

// CreateCollection prepares the index's collection. With recreate set,
// existing points are destroyed first.
func (idx *Index) CreateCollection(ctx context.Context, recreate bool) error {
	return idx.store.CreateCollection(ctx, recreate)
}

// Stats reports the collection's point count and status.
func (idx *Index) Stats(ctx context.Context) (*vectorstore.Stats, error) {
	return idx.store.Stats(ctx)
}

// Store returns the underlying vector store.
func (idx *Index) Store() vectorstore.Store {
	return idx.store
}

// Provider returns the AI provider.
func (idx *Index) Provider() ai.Provider {
	return idx.provider
}

// NewIngestionPipeline builds an ingestion pipeline over the index's
// components.
func (idx *Index) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(idx.chunker, idx.provider, idx.store, opts...)
}

// NewSearcher builds a searcher over the index's components.
func (idx *Index) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(idx.store, idx.provider, opts...)
}

// Close releases the provider and the store.
func (idx *Index) Close() error {
	if err := idx.provider.Close(); err != nil {
		idx.logger.Error("error closing AI provider", "err", err)
	}

	if err := idx.store.Close(); err != nil {
		idx.logger.Error("error closing vector store", "err", err)
		return err
	}
	return nil
}

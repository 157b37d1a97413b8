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


package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/agamjn/rumi/ai"
	"github.com/agamjn/rumi/chunker"
	"github.com/agamjn/rumi/core"
	"github.com/agamjn/rumi/vectorstore"
)

// Pipeline orchestrates chunking, embedding, and storage for documents.
// Documents are independent of one another and are processed concurrently
// by a bounded worker pool; the steps within one document stay sequential.
type Pipeline struct {
	chunker  *chunker.Chunker
	provider ai.Provider
	store    vectorstore.Store
	pool     *ants.Pool

	maxAttempts int
	baseDelay   time.Duration

	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent document
// processing. Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithRetry enables retry with exponential backoff around transient
// embedding and storage failures. Without it every remote failure
// surfaces after a single attempt.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(p *Pipeline) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		p.maxAttempts = maxAttempts
		p.baseDelay = baseDelay
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates an ingestion pipeline over the given components.
func NewPipeline(
	ch *chunker.Chunker,
	provider ai.Provider,
	store vectorstore.Store,
	opts ...Option,
) (*Pipeline, error) {
	if ch == nil {
		return nil, ErrChunkerRequired
	}
	if provider == nil {
		return nil, ErrProviderRequired
	}
	if store == nil {
		return nil, ErrStoreRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		chunker:     ch,
		provider:    provider,
		store:       store,
		pool:        pool,
		maxAttempts: 1,
		logger:      slog.Default().With("component", "ingestion"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Report summarizes the outcome of ingesting one document.
type Report struct {
	DocumentID    string
	Skipped       bool
	ChunksWritten int
	Tokens        int
	CostUSD       float64

	// Err is set when the document failed during batch ingestion.
	Err error
}

// EmbedDocument chunks the document and embeds all chunks in one batch
// call. Vectors are returned in chunk order, one per chunk.
func (p *Pipeline) EmbedDocument(ctx context.Context, doc *core.Document) ([]core.Chunk, [][]float32, error) {
	if err := core.ValidateDocument(doc); err != nil {
		return nil, nil, err
	}

	chunks, err := p.chunker.Chunk(doc.Text, doc.ID, doc.Metadata)
	if err != nil {
		return nil, nil, err
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	var vectors [][]float32
	err = p.withRetry(ctx, func() error {
		var embedErr error
		vectors, embedErr = p.provider.Embedder().EmbedTexts(ctx, texts)
		return embedErr
	})
	if err != nil {
		return nil, nil, err
	}

	if len(vectors) != len(chunks) {
		return nil, nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	return chunks, vectors, nil
}

// IngestDocument indexes one document. If the document's first chunk is
// already stored, the whole document is treated as indexed and skipped
// before any embedding cost is paid.
//
// The existence check and the subsequent writes are not atomic: two
// workers racing on the same new document may both embed it. The final
// state is still correct (last upsert wins per key), only the embedding
// cost is duplicated.
func (p *Pipeline) IngestDocument(ctx context.Context, doc *core.Document) (*Report, error) {
	if err := core.ValidateDocument(doc); err != nil {
		return nil, err
	}

	report := &Report{DocumentID: doc.ID}

	exists, err := p.store.Exists(ctx, core.ChunkKey(doc.ID, 0))
	if err != nil {
		return nil, err
	}
	if exists {
		p.logger.Info("document already indexed, skipping", "doc_id", doc.ID)
		report.Skipped = true
		return report, nil
	}

	chunks, vectors, err := p.EmbedDocument(ctx, doc)
	if err != nil {
		return nil, err
	}

	for i, chunk := range chunks {
		vector := vectors[i]
		upsertErr := p.withRetry(ctx, func() error {
			return p.store.Upsert(ctx, chunk.Key(), vector, buildPayload(&chunk))
		})
		if upsertErr != nil {
			return nil, fmt.Errorf("upsert %s: %w", chunk.Key(), upsertErr)
		}

		report.ChunksWritten++
		report.Tokens += chunk.Tokens
	}

	report.CostUSD = p.provider.TokenCounter().EstimateCost(report.Tokens)

	p.logger.Info("ingested document",
		"doc_id", doc.ID,
		"chunks", report.ChunksWritten,
		"tokens", report.Tokens,
		"cost_usd", report.CostUSD)

	return report, nil
}

// IngestAll ingests documents concurrently on the worker pool and returns
// one report per document, in input order. Per-document failures are
// recorded in the report rather than aborting the batch.
func (p *Pipeline) IngestAll(ctx context.Context, docs []*core.Document) ([]*Report, error) {
	reports := make([]*Report, len(docs))

	var wg sync.WaitGroup
	for i, doc := range docs {
		wg.Add(1)

		err := p.pool.Submit(func() {
			defer wg.Done()

			report, err := p.IngestDocument(ctx, doc)
			if err != nil {
				id := ""
				if doc != nil {
					id = doc.ID
				}
				p.logger.Error("document ingestion failed", "doc_id", id, "err", err)
				report = &Report{DocumentID: id, Err: err}
			}
			reports[i] = report
		})
		if err != nil {
			wg.Done()
			reports[i] = &Report{DocumentID: doc.ID, Err: err}
		}
	}
	wg.Wait()

	return reports, nil
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

func (p *Pipeline) withRetry(ctx context.Context, operation func() error) error {
	if p.maxAttempts <= 1 {
		return operation()
	}
	return RetryWithBackoff(ctx, operation, p.maxAttempts, p.baseDelay)
}

// buildPayload assembles the stored payload for a chunk: caller metadata
// plus the chunk's position, text, and a content fingerprint for change
// detection. The chunk_id field is added by the store on upsert.
func buildPayload(chunk *core.Chunk) map[string]any {
	payload := make(map[string]any, len(chunk.Metadata)+6)
	for k, v := range chunk.Metadata {
		payload[k] = v
	}

	payload[core.PayloadParentID] = chunk.ParentID
	payload[core.PayloadChunkIndex] = chunk.Index
	payload[core.PayloadTotalChunks] = chunk.Total
	payload[core.PayloadText] = chunk.Text
	payload[core.PayloadTokens] = chunk.Tokens
	payload[core.PayloadContentHash] = core.Fingerprint(chunk.Text)

	return payload
}

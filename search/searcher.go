package search

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/agamjn/rumi/ai"
	"github.com/agamjn/rumi/core"
	"github.com/agamjn/rumi/vectorstore"
)

// verbatimBonus is added to the score of results whose stored text
// contains every non-stop-word from the query.
const verbatimBonus = 0.3

// Searcher provides semantic search over indexed chunks.
type Searcher struct {
	store         vectorstore.Store
	embedder      ai.Embedder
	boostVerbatim bool
	logger        *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithVerbatimBoost boosts results whose stored text contains all query
// words, which favors exact phrasing over purely semantic neighbors.
func WithVerbatimBoost() Option {
	return func(s *Searcher) error {
		s.boostVerbatim = true
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(store vectorstore.Store, provider ai.Provider, opts ...Option) (*Searcher, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Searcher{
		store:    store,
		embedder: provider.Embedder(),
		logger:   slog.Default().With("component", "search"),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Query searches for chunks similar to the query text.
// Returns up to limit results, ranked by relevance score.
func (s *Searcher) Query(ctx context.Context, query string, limit int, filters *vectorstore.Filters) ([]vectorstore.SearchResult, error) {
	return s.QueryWithMonitor(ctx, query, limit, filters, nil)
}

// QueryWithMonitor searches with monitoring. The monitor receives
// callbacks at each stage of the search process.
func (s *Searcher) QueryWithMonitor(ctx context.Context, query string, limit int, filters *vectorstore.Filters, monitor SearchMonitor) ([]vectorstore.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(query)

	vector, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}
	monitor.AfterQueryEmbedding(vector)

	results, err := s.store.Search(ctx, vector, limit, filters)
	if err != nil {
		s.logger.Error("error querying vector store", "err", err)
		return nil, err
	}
	monitor.AfterVectorSearch(results)

	if s.boostVerbatim {
		terms := queryTerms(query)
		boosted := false
		for i := range results {
			text, _ := results[i].Payload[core.PayloadText].(string)
			if text == "" || !coversTerms(text, terms) {
				continue
			}
			results[i].Score += verbatimBonus
			boosted = true
			monitor.VerbatimBoost(results[i].ChunkID)
		}
		if boosted {
			sort.SliceStable(results, func(i, j int) bool {
				return results[i].Score > results[j].Score
			})
		}
	}

	monitor.Finish(results)

	return results, nil
}

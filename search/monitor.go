package search

import "github.com/agamjn/rumi/vectorstore"

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterQueryEmbedding(vector []float32)
	AfterVectorSearch(results []vectorstore.SearchResult)
	VerbatimBoost(chunkID string)
	Finish(results []vectorstore.SearchResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                                    {}
func (n *noopMonitor) AfterQueryEmbedding(_ []float32)                   {}
func (n *noopMonitor) AfterVectorSearch(_ []vectorstore.SearchResult)    {}
func (n *noopMonitor) VerbatimBoost(_ string)                            {}
func (n *noopMonitor) Finish(_ []vectorstore.SearchResult)               {}

package mock

import "github.com/agamjn/rumi/ai"

// MockProvider is a test double for ai.Provider aggregating the mock
// embedder and token counter.
type MockProvider struct {
	embedder *MockEmbedder
	counter  *MockTokenCounter
}

// NewMockProvider creates a provider backed by deterministic mocks.
// Returns the concrete type so tests can reach the underlying mocks.
func NewMockProvider(dimensions int) *MockProvider {
	return &MockProvider{
		embedder: NewMockEmbedder(dimensions),
		counter:  NewMockTokenCounter(),
	}
}

// Embedder returns the mock embedding service.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// TokenCounter returns the mock token accounting service.
func (p *MockProvider) TokenCounter() ai.TokenCounter {
	return p.counter
}

// Close is a no-op.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockEmbedder returns the concrete mock embedder for test assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockTokenCounter returns the concrete mock counter for test assertions.
func (p *MockProvider) GetMockTokenCounter() *MockTokenCounter {
	return p.counter
}

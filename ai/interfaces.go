package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector has exactly the configured dimension.
	// Remote failures are returned as transient errors; the embedder never
	// retries internally.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a
	// batch. Batch processing makes one remote call instead of N at the same
	// per-token price. The returned slice contains one embedding per input
	// text, in input order. An empty input returns an empty slice without
	// contacting the service.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// TokenCounter counts tokens the way the embedding provider bills them and
// converts counts to estimated spend. Implementations must be thread-safe.
type TokenCounter interface {
	// Count returns the number of tokens in text.
	Count(text string) int

	// EstimateCost returns the estimated cost in USD for embedding the
	// given number of tokens.
	EstimateCost(tokens int) float64
}

// Provider aggregates embedding services for convenient initialization and
// lifecycle management. A provider creates and manages Embedder and
// TokenCounter instances, ensuring they share configuration.
type Provider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// TokenCounter returns the token accounting service.
	// The returned TokenCounter is safe for concurrent use.
	TokenCounter() TokenCounter

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}

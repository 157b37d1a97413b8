package ingestion

import "errors"

var (
	// ErrChunkerRequired indicates the pipeline was built without a chunker.
	ErrChunkerRequired = errors.New("chunker is required")

	// ErrProviderRequired indicates the pipeline was built without an AI provider.
	ErrProviderRequired = errors.New("ai provider is required")

	// ErrStoreRequired indicates the pipeline was built without a vector store.
	ErrStoreRequired = errors.New("vector store is required")

	// ErrInvalidMaxAttempts indicates a non-positive retry attempt count.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")
)

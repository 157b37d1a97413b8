package vectorstore

import "errors"

var (
	// ErrStoreClosed indicates that the store has been closed.
	ErrStoreClosed = errors.New("vector store is closed")

	// ErrCollectionNotFound indicates an operation against a collection
	// that has not been created yet.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrSerializationFailed indicates a point could not be encoded or
	// decoded.
	ErrSerializationFailed = errors.New("point serialization failed")
)

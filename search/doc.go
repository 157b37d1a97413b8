// Package search turns a text query into a vector and runs filtered
// similarity search against the vector store, with optional hooks for
// observing each stage.
package search

// Package chunker splits long documents into bounded-size chunks for
// embedding, respecting paragraph and sentence boundaries so no chunk
// cuts a semantic unit in half.
package chunker

// Package ingestion composes chunking, embedding, and vector storage
// into the document indexing pipeline, with two layers of deduplication:
// upserts keyed by stable ids (Layer 1) and a pre-embedding existence
// check that skips already-indexed documents before paying for an
// embedding call (Layer 2).
package ingestion

// Package vectorstore defines the contract for deduplicated vector
// storage with filtered similarity search. Implementations live in
// subpackages: qdrant (remote REST) and badger (embedded).
//
// All operations are scoped to one named collection. Point identity is
// content-derived: a chunk key maps through core.StableIDFromKey to the
// same point id on every machine, which makes Upsert idempotent across
// re-ingestion runs.
package vectorstore

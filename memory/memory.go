// Package memory implements Alfred's two memory tiers on top of a
// vector-similarity index.
//
// Core memories are a small, durable, user-curated list of facts stored as
// one record per user. Recall memories are write-once snippets retrieved
// per turn by semantic similarity. Both tiers share the Index abstraction;
// the concrete backend lives in memory/store.
package memory

import "context"

// Namespaces partition the similarity store so memory and document
// categories never mix.
const (
	// NamespaceCore holds the single per-user core-memory record.
	NamespaceCore = "core_memories"

	// NamespaceMemories holds recall-memory vectors.
	NamespaceMemories = "memories"

	// NamespaceDocuments holds ingested document chunks for retrieval.
	NamespaceDocuments = "documents"
)

// Metadata keys shared across namespaces.
const (
	PayloadKey   = "content"
	PathKey      = "path"
	TimestampKey = "timestamp"
	TypeKey      = "type"
	UserKey      = "user_id"
	VersionKey   = "version"
	SourceKey    = "source"
)

// Metadata is the per-record metadata payload.
type Metadata map[string]interface{}

// Record is one vector plus metadata, keyed by ID within a namespace.
type Record struct {
	ID       string
	Vector   []float32
	Metadata Metadata
}

// Match is one similarity-query result.
type Match struct {
	ID       string
	Score    float32
	Metadata Metadata
}

// Filter is a set of exact-match metadata predicates applied to a query.
type Filter map[string]string

// Index is the key/vector upsert-and-query abstraction over a similarity
// backend. Store I/O errors propagate to the caller untouched; retry, if
// any, is caller policy.
type Index interface {
	// Upsert persists or overwrites vectors keyed by Record.ID within the
	// namespace. Idempotent on repeated identical IDs.
	Upsert(ctx context.Context, records []Record, namespace string) error

	// Query returns up to topK matches ordered by descending similarity.
	// Ties break by insertion recency (most recent ID wins) since the
	// backend guarantees no secondary key.
	Query(ctx context.Context, vector []float32, filter Filter, namespace string, topK int) ([]Match, error)

	// Fetch returns metadata by ID. Missing IDs are simply absent from
	// the result, not an error.
	Fetch(ctx context.Context, ids []string, namespace string) (map[string]Metadata, error)
}

// Embedder converts text to vector embeddings. Embed serves queries;
// EmbedBatch serves writes.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}

// PlaceholderVector returns the non-zero vector used for records whose
// only purpose is metadata storage. Some backends reject all-zero vectors.
func PlaceholderVector(dims int) []float32 {
	v := make([]float32, dims)
	for i := range v {
		v[i] = 0.00001
	}
	return v
}

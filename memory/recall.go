package memory

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// DefaultRecallTopK bounds how many recall snippets a single search
// returns.
const DefaultRecallTopK = 5

// Recall saves and searches recall memories: write-once snippets keyed by
// a fresh UUID per save. There is no update-in-place, only new inserts.
type Recall struct {
	index    Index
	embedder Embedder
}

// NewRecall creates a Recall tier over the given index and embedder.
func NewRecall(index Index, embedder Embedder) *Recall {
	return &Recall{index: index, embedder: embedder}
}

// RecallPath returns the record ID for one saved recall memory.
func RecallPath(userID, eventID string) string {
	return fmt.Sprintf("user/%s/recall/%s", userID, eventID)
}

// Save embeds and persists one memory for later semantic retrieval,
// returning the memory text on success.
func (r *Recall) Save(ctx context.Context, userID string, memory string) (string, error) {
	vector, err := r.embedder.Embed(ctx, memory)
	if err != nil {
		return "", fmt.Errorf("embed recall memory: %w", err)
	}

	path := RecallPath(userID, uuid.New().String())
	record := Record{
		ID:     path,
		Vector: vector,
		Metadata: Metadata{
			PayloadKey:   memory,
			PathKey:      path,
			TimestampKey: time.Now().UTC().Format(time.RFC3339),
			TypeKey:      "recall",
			UserKey:      userID,
		},
	}
	if err := r.index.Upsert(ctx, []Record{record}, NamespaceMemories); err != nil {
		return "", fmt.Errorf("upsert recall memory: %w", err)
	}
	log.Printf("[MEMORY] Saved recall memory for %s: %q", userID, truncateLog(memory, 60))
	return memory, nil
}

// Search returns up to topK memory payloads relevant to query, scoped to
// the user and the recall type.
func (r *Recall) Search(ctx context.Context, userID string, query string, topK int) ([]string, error) {
	if topK <= 0 {
		topK = DefaultRecallTopK
	}
	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed recall query: %w", err)
	}

	filter := Filter{
		UserKey: userID,
		TypeKey: "recall",
	}
	matches, err := r.index.Query(ctx, vector, filter, NamespaceMemories, topK)
	if err != nil {
		return nil, fmt.Errorf("query recall memories: %w", err)
	}

	memories := make([]string, 0, len(matches))
	for _, m := range matches {
		if payload, ok := m.Metadata[PayloadKey].(string); ok {
			memories = append(memories, payload)
		}
	}
	return memories, nil
}

// truncateLog truncates text for logging.
func truncateLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

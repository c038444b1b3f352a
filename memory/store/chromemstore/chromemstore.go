// Package chromemstore implements memory.Index on chromem-go, a pure Go
// embedded vector database. Each namespace maps to one chromem
// collection.
package chromemstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/alfredlabs/alfred/memory"
)

// Store is a chromem-backed memory.Index.
type Store struct {
	db          *chromem.DB
	collections map[string]*chromem.Collection

	// seq records insertion order per record so equal-similarity query
	// results break ties toward the most recent insert. chromem itself
	// guarantees no secondary ordering.
	seq     map[string]map[string]uint64
	nextSeq uint64

	mu sync.RWMutex
}

// New creates an in-memory store.
func New() (*Store, error) {
	return newStore(chromem.NewDB()), nil
}

// NewPersistent creates a store backed by an on-disk chromem database.
func NewPersistent(path string) (*Store, error) {
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("open chromem db: %w", err)
	}
	return newStore(db), nil
}

func newStore(db *chromem.DB) *Store {
	return &Store{
		db:          db,
		collections: make(map[string]*chromem.Collection),
		seq:         make(map[string]map[string]uint64),
	}
}

// getOrCreateCollection returns the collection backing a namespace.
func (s *Store) getOrCreateCollection(namespace string) (*chromem.Collection, error) {
	s.mu.RLock()
	col, exists := s.collections[namespace]
	s.mu.RUnlock()
	if exists {
		return col, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if col, exists := s.collections[namespace]; exists {
		return col, nil
	}

	// No embedding function: callers always provide vectors.
	col, err := s.db.GetOrCreateCollection(namespace, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create collection %s: %w", namespace, err)
	}
	s.collections[namespace] = col
	if s.seq[namespace] == nil {
		s.seq[namespace] = make(map[string]uint64)
	}
	return col, nil
}

// Upsert persists or overwrites records within a namespace. Re-adding an
// existing ID replaces the stored document, so repeated identical upserts
// are idempotent.
func (s *Store) Upsert(ctx context.Context, records []memory.Record, namespace string) error {
	col, err := s.getOrCreateCollection(namespace)
	if err != nil {
		return err
	}

	for _, rec := range records {
		meta, payload := flattenMetadata(rec.Metadata)
		doc := chromem.Document{
			ID:        rec.ID,
			Content:   payload,
			Embedding: rec.Vector,
			Metadata:  meta,
		}
		if err := col.AddDocument(ctx, doc); err != nil {
			return fmt.Errorf("add document %s: %w", rec.ID, err)
		}

		s.mu.Lock()
		s.nextSeq++
		if s.seq[namespace] == nil {
			s.seq[namespace] = make(map[string]uint64)
		}
		s.seq[namespace][rec.ID] = s.nextSeq
		s.mu.Unlock()
	}

	log.Printf("[CHROMEM] Upserted %d records into %s", len(records), namespace)
	return nil
}

// Query returns up to topK matches ordered by descending similarity, ties
// broken by insertion recency.
func (s *Store) Query(ctx context.Context, vector []float32, filter memory.Filter, namespace string, topK int) ([]memory.Match, error) {
	col, err := s.getOrCreateCollection(namespace)
	if err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = 10
	}

	where := map[string]string(filter)

	// chromem rejects nResults larger than the candidate set; walk the
	// limit down until the query fits or the collection turns out empty.
	var results []chromem.Result
	for limit := topK; limit >= 1; limit-- {
		results, err = col.QueryEmbedding(ctx, vector, limit, where, nil)
		if err == nil {
			break
		}
		if isInsufficientDocsError(err) {
			if limit == 1 {
				return nil, nil
			}
			continue
		}
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	matches := make([]memory.Match, 0, len(results))
	for _, res := range results {
		matches = append(matches, memory.Match{
			ID:       res.ID,
			Score:    res.Similarity,
			Metadata: expandMetadata(res.Metadata, res.Content),
		})
	}

	s.mu.RLock()
	seq := s.seq[namespace]
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return seq[matches[i].ID] > seq[matches[j].ID]
	})
	s.mu.RUnlock()

	log.Printf("[CHROMEM] Query on %s returned %d matches", namespace, len(matches))
	return matches, nil
}

// Fetch returns metadata for the given IDs. Missing IDs are absent from
// the result.
func (s *Store) Fetch(ctx context.Context, ids []string, namespace string) (map[string]memory.Metadata, error) {
	col, err := s.getOrCreateCollection(namespace)
	if err != nil {
		return nil, err
	}

	out := make(map[string]memory.Metadata, len(ids))
	for _, id := range ids {
		doc, err := col.GetByID(ctx, id)
		if err != nil {
			// chromem reports unknown IDs as errors; the Index contract
			// wants them silently absent.
			continue
		}
		out[id] = expandMetadata(doc.Metadata, doc.Content)
	}
	return out, nil
}

// flattenMetadata converts Index metadata to chromem's string map. The
// payload travels as document content; everything else is stringified.
func flattenMetadata(meta memory.Metadata) (map[string]string, string) {
	out := make(map[string]string, len(meta))
	payload := ""
	for k, v := range meta {
		if k == memory.PayloadKey {
			if s, ok := v.(string); ok {
				payload = s
				continue
			}
		}
		switch val := v.(type) {
		case string:
			out[k] = val
		default:
			if bytes, err := json.Marshal(val); err == nil {
				out[k] = string(bytes)
			}
		}
	}
	return out, payload
}

func expandMetadata(meta map[string]string, content string) memory.Metadata {
	out := make(memory.Metadata, len(meta)+1)
	for k, v := range meta {
		out[k] = v
	}
	out[memory.PayloadKey] = content
	return out
}

// isInsufficientDocsError checks if an error is chromem complaining that
// nResults exceeds the stored document count.
func isInsufficientDocsError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "nResults must be") || strings.Contains(msg, "number of documents")
}

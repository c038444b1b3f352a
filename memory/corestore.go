package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"
)

// ErrVersionConflict reports that the core-memory record changed between
// read and write. Callers retry by re-fetching; the stale write never
// lands.
var ErrVersionConflict = errors.New("core memory record modified concurrently")

// OutOfBoundsResult is the tool-visible result for an index outside the
// current fact list. It is a reported condition, not an error: the record
// is left untouched.
const OutOfBoundsResult = "Error: Index out of bounds."

// StoredResult is the tool-visible result of a successful store.
const StoredResult = "Memory stored."

// CoreMemoryRecord is the single per-user record of durable facts. It is
// owned exclusively by the memory subsystem, mutated only by explicit
// store operations, and overwritten rather than deleted.
type CoreMemoryRecord struct {
	ID        string
	Memories  []string
	Version   int64
	UpdatedAt time.Time
}

// CorePath returns the record ID for a user's core memories.
func CorePath(userID string) string {
	return fmt.Sprintf("user/%s/core", userID)
}

// CoreStore reads and writes core-memory records.
type CoreStore struct {
	index Index
	dims  int
}

// NewCoreStore creates a CoreStore over the given index. dims is the
// backend's vector dimension, used for the metadata-only placeholder
// vector.
func NewCoreStore(index Index, dims int) *CoreStore {
	return &CoreStore{index: index, dims: dims}
}

// Fetch loads the core-memory record for a user. A user with no record
// yet gets an empty record at version 0.
func (s *CoreStore) Fetch(ctx context.Context, userID string) (*CoreMemoryRecord, error) {
	path := CorePath(userID)
	got, err := s.index.Fetch(ctx, []string{path}, NamespaceCore)
	if err != nil {
		return nil, fmt.Errorf("fetch core memories: %w", err)
	}

	rec := &CoreMemoryRecord{ID: path}
	meta, ok := got[path]
	if !ok {
		return rec, nil
	}

	if payload, ok := meta[PayloadKey].(string); ok && payload != "" {
		var doc struct {
			Memories []string `json:"memories"`
		}
		if err := json.Unmarshal([]byte(payload), &doc); err != nil {
			return nil, fmt.Errorf("decode core memories: %w", err)
		}
		rec.Memories = doc.Memories
	}
	rec.Version = metadataVersion(meta)
	if ts, ok := meta[TimestampKey].(string); ok {
		rec.UpdatedAt, _ = time.Parse(time.RFC3339, ts)
	}
	return rec, nil
}

// Store inserts or replaces one fact and persists the record.
//
// A nil index inserts the fact at position 0. An index outside
// [0, len(memories)) returns OutOfBoundsResult without mutating the
// record. The write carries a version stamp checked against the stored
// record, so a concurrent turn for the same user surfaces as
// ErrVersionConflict instead of a lost update.
func (s *CoreStore) Store(ctx context.Context, userID string, memory string, index *int) (string, error) {
	rec, err := s.Fetch(ctx, userID)
	if err != nil {
		return "", err
	}

	if index != nil {
		if *index < 0 || *index >= len(rec.Memories) {
			log.Printf("[MEMORY] Rejected core update for %s: index %d out of range (len=%d)",
				userID, *index, len(rec.Memories))
			return OutOfBoundsResult, nil
		}
		rec.Memories[*index] = memory
	} else {
		rec.Memories = append([]string{memory}, rec.Memories...)
	}

	if err := s.write(ctx, userID, rec); err != nil {
		return "", err
	}
	return StoredResult, nil
}

// write persists rec, failing with ErrVersionConflict when the stored
// version no longer matches the version rec was read at.
func (s *CoreStore) write(ctx context.Context, userID string, rec *CoreMemoryRecord) error {
	current, err := s.index.Fetch(ctx, []string{rec.ID}, NamespaceCore)
	if err != nil {
		return fmt.Errorf("fetch core memories: %w", err)
	}
	if meta, ok := current[rec.ID]; ok {
		if metadataVersion(meta) != rec.Version {
			return ErrVersionConflict
		}
	} else if rec.Version != 0 {
		return ErrVersionConflict
	}

	payload, err := json.Marshal(map[string][]string{"memories": rec.Memories})
	if err != nil {
		return fmt.Errorf("encode core memories: %w", err)
	}

	record := Record{
		ID: rec.ID,
		// Core records exist for their metadata; the vector is a non-zero
		// placeholder because some backends reject all-zero vectors.
		Vector: PlaceholderVector(s.dims),
		Metadata: Metadata{
			PayloadKey:   string(payload),
			PathKey:      rec.ID,
			TimestampKey: time.Now().UTC().Format(time.RFC3339),
			TypeKey:      "core",
			UserKey:      userID,
			VersionKey:   strconv.FormatInt(rec.Version+1, 10),
		},
	}
	if err := s.index.Upsert(ctx, []Record{record}, NamespaceCore); err != nil {
		return fmt.Errorf("upsert core memories: %w", err)
	}
	rec.Version++
	return nil
}

func metadataVersion(meta Metadata) int64 {
	switch v := meta[VersionKey].(type) {
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	case float64:
		return int64(v)
	case int64:
		return v
	default:
		return 0
	}
}

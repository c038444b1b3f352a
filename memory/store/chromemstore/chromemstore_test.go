package chromemstore

import (
	"context"
	"testing"

	"github.com/alfredlabs/alfred/memory"
)

func vec(values ...float32) []float32 { return values }

func record(id string, vector []float32, meta memory.Metadata) memory.Record {
	return memory.Record{ID: id, Vector: vector, Metadata: meta}
}

func TestUpsertIsIdempotent(t *testing.T) {
	s, err := New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()

	rec := record("a", vec(1, 0, 0), memory.Metadata{
		memory.PayloadKey: "first version",
		memory.TypeKey:    "recall",
	})
	for i := 0; i < 3; i++ {
		if err := s.Upsert(ctx, []memory.Record{rec}, "memories"); err != nil {
			t.Fatalf("upsert %d: %v", i, err)
		}
	}

	matches, err := s.Query(ctx, vec(1, 0, 0), nil, "memories", 10)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	if matches[0].Metadata[memory.PayloadKey] != "first version" {
		t.Errorf("payload = %v", matches[0].Metadata[memory.PayloadKey])
	}
}

func TestUpsertOverwritesContent(t *testing.T) {
	s, _ := New()
	ctx := context.Background()

	if err := s.Upsert(ctx, []memory.Record{
		record("a", vec(1, 0, 0), memory.Metadata{memory.PayloadKey: "old"}),
	}, "memories"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.Upsert(ctx, []memory.Record{
		record("a", vec(1, 0, 0), memory.Metadata{memory.PayloadKey: "new"}),
	}, "memories"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	got, err := s.Fetch(ctx, []string{"a"}, "memories")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got["a"][memory.PayloadKey] != "new" {
		t.Errorf("payload = %v, want new", got["a"][memory.PayloadKey])
	}
}

func TestQueryFiltersByMetadata(t *testing.T) {
	s, _ := New()
	ctx := context.Background()

	if err := s.Upsert(ctx, []memory.Record{
		record("mine", vec(1, 0, 0), memory.Metadata{
			memory.PayloadKey: "my memory",
			memory.UserKey:    "u1",
		}),
		record("theirs", vec(1, 0, 0), memory.Metadata{
			memory.PayloadKey: "their memory",
			memory.UserKey:    "u2",
		}),
	}, "memories"); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	matches, err := s.Query(ctx, vec(1, 0, 0), memory.Filter{memory.UserKey: "u1"}, "memories", 10)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(matches) != 1 || matches[0].ID != "mine" {
		t.Fatalf("matches = %+v, want only mine", matches)
	}
}

func TestQueryTopKExceedsDocumentCount(t *testing.T) {
	s, _ := New()
	ctx := context.Background()

	if err := s.Upsert(ctx, []memory.Record{
		record("a", vec(1, 0, 0), memory.Metadata{memory.PayloadKey: "only"}),
	}, "memories"); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	matches, err := s.Query(ctx, vec(1, 0, 0), nil, "memories", 5)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(matches) != 1 {
		t.Errorf("got %d matches, want 1", len(matches))
	}
}

func TestQueryEmptyNamespace(t *testing.T) {
	s, _ := New()
	matches, err := s.Query(context.Background(), vec(1, 0, 0), nil, "memories", 5)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("got %d matches, want 0", len(matches))
	}
}

func TestQueryBreaksTiesByRecency(t *testing.T) {
	s, _ := New()
	ctx := context.Background()

	// Identical vectors give identical similarity; the later insert must
	// sort first.
	if err := s.Upsert(ctx, []memory.Record{
		record("older", vec(1, 0, 0), memory.Metadata{memory.PayloadKey: "older"}),
	}, "memories"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.Upsert(ctx, []memory.Record{
		record("newer", vec(1, 0, 0), memory.Metadata{memory.PayloadKey: "newer"}),
	}, "memories"); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	matches, err := s.Query(ctx, vec(1, 0, 0), nil, "memories", 2)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	if matches[0].ID != "newer" {
		t.Errorf("first match = %q, want newer", matches[0].ID)
	}
}

func TestFetchMissingIDsAreAbsent(t *testing.T) {
	s, _ := New()
	ctx := context.Background()

	if err := s.Upsert(ctx, []memory.Record{
		record("a", vec(1, 0, 0), memory.Metadata{memory.PayloadKey: "here"}),
	}, "memories"); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := s.Fetch(ctx, []string{"a", "ghost"}, "memories")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if _, ok := got["a"]; !ok {
		t.Error("existing ID missing from result")
	}
	if _, ok := got["ghost"]; ok {
		t.Error("missing ID present in result")
	}
}

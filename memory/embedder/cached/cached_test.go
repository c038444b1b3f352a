package cached

import (
	"context"
	"testing"

	"github.com/alfredlabs/alfred/memory/embedder/mockembed"
)

// countingEmbedder counts calls through to the real embedder.
type countingEmbedder struct {
	*mockembed.Embedder
	embedCalls int
	batchTexts [][]string
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.embedCalls++
	return c.Embedder.Embed(ctx, text)
}

func (c *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	c.batchTexts = append(c.batchTexts, texts)
	return c.Embedder.EmbedBatch(ctx, texts)
}

func TestEmbedServesRepeatsFromCache(t *testing.T) {
	inner := &countingEmbedder{Embedder: mockembed.New(8)}
	e, err := New(inner, 1<<20)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()

	first, err := e.Embed(ctx, "same text")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	e.cache.Wait()

	second, err := e.Embed(ctx, "same text")
	if err != nil {
		t.Fatalf("embed again: %v", err)
	}
	if inner.embedCalls != 1 {
		t.Errorf("inner called %d times, want 1", inner.embedCalls)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatal("cached vector differs from original")
		}
	}
}

func TestEmbedBatchOnlyFetchesMisses(t *testing.T) {
	inner := &countingEmbedder{Embedder: mockembed.New(8)}
	e, err := New(inner, 1<<20)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()

	if _, err := e.Embed(ctx, "cached"); err != nil {
		t.Fatalf("warm cache: %v", err)
	}
	e.cache.Wait()

	vectors, err := e.EmbedBatch(ctx, []string{"cached", "fresh"})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(vectors) != 2 || vectors[0] == nil || vectors[1] == nil {
		t.Fatalf("vectors = %v", vectors)
	}
	if len(inner.batchTexts) != 1 {
		t.Fatalf("inner batch called %d times, want 1", len(inner.batchTexts))
	}
	if len(inner.batchTexts[0]) != 1 || inner.batchTexts[0][0] != "fresh" {
		t.Errorf("inner batch texts = %v, want only the miss", inner.batchTexts[0])
	}
}

func TestDimensionsPassThrough(t *testing.T) {
	e, err := New(mockembed.New(16), 0)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if e.Dimensions() != 16 {
		t.Errorf("dimensions = %d, want 16", e.Dimensions())
	}
}

// Package cached wraps any memory.Embedder with a ristretto read-through
// cache. Memory loading embeds the same transcript prefix and the same
// user questions repeatedly within a conversation; caching keeps those
// from becoming one API round-trip each.
package cached

import (
	"context"
	"fmt"

	"github.com/dgraph-io/ristretto"

	"github.com/alfredlabs/alfred/memory"
)

// Embedder is a caching decorator around another embedder.
type Embedder struct {
	inner memory.Embedder
	cache *ristretto.Cache
}

// New wraps inner with a cache holding up to maxBytes of vectors.
func New(inner memory.Embedder, maxBytes int64) (*Embedder, error) {
	if maxBytes <= 0 {
		maxBytes = 64 << 20
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 100_000,
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}
	return &Embedder{inner: inner, cache: cache}, nil
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := e.cache.Get(text); ok {
		if vec, ok := v.([]float32); ok {
			return vec, nil
		}
	}
	vec, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	e.cache.Set(text, vec, int64(len(vec)*4))
	return vec, nil
}

func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var misses []string
	var missIdx []int
	for i, t := range texts {
		if v, ok := e.cache.Get(t); ok {
			if vec, ok := v.([]float32); ok {
				out[i] = vec
				continue
			}
		}
		misses = append(misses, t)
		missIdx = append(missIdx, i)
	}
	if len(misses) == 0 {
		return out, nil
	}

	vectors, err := e.inner.EmbedBatch(ctx, misses)
	if err != nil {
		return nil, err
	}
	for i, vec := range vectors {
		out[missIdx[i]] = vec
		e.cache.Set(misses[i], vec, int64(len(vec)*4))
	}
	return out, nil
}

func (e *Embedder) Dimensions() int {
	return e.inner.Dimensions()
}

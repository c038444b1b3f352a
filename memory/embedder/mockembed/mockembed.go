// Package mockembed provides a deterministic embedder for tests. Vectors
// are derived from a hash of the text, so identical texts always map to
// identical vectors and distinct texts rarely collide. There is no real
// semantic similarity.
package mockembed

import (
	"context"
	"hash/fnv"
	"math"
)

// Embedder is a test double for memory.Embedder.
type Embedder struct {
	dims int
}

// New creates a mock embedder producing vectors of the given dimension.
func New(dims int) *Embedder {
	return &Embedder{dims: dims}
}

func (e *Embedder) Embed(_ context.Context, text string) ([]float32, error) {
	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()

	v := make([]float32, e.dims)
	var norm float64
	for i := range v {
		// xorshift keeps the sequence cheap and reproducible.
		seed ^= seed << 13
		seed ^= seed >> 7
		seed ^= seed << 17
		v[i] = float32(int64(seed%2000)-1000) / 1000
		norm += float64(v[i]) * float64(v[i])
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range v {
			v[i] *= scale
		}
	}
	return v, nil
}

func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (e *Embedder) Dimensions() int {
	return e.dims
}

package mockembed

import (
	"context"
	"math"
	"testing"
)

func TestEmbedIsDeterministic(t *testing.T) {
	e := New(32)
	ctx := context.Background()

	a, err := e.Embed(ctx, "the same input")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	b, err := e.Embed(ctx, "the same input")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("same input produced different vectors")
		}
	}

	c, err := e.Embed(ctx, "a different input")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different inputs produced identical vectors")
	}
}

func TestEmbedIsNormalized(t *testing.T) {
	e := New(64)
	vec, err := e.Embed(context.Background(), "normalize me")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(vec) != 64 {
		t.Fatalf("len = %d, want 64", len(vec))
	}
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if norm := math.Sqrt(sum); math.Abs(norm-1) > 1e-4 {
		t.Errorf("norm = %f, want 1", norm)
	}
}

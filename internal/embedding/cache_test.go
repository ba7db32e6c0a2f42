package embedding

import (
	"context"
	"errors"
	"testing"
	"time"
)

// countingEmbedder records every call for cache behavior assertions.
type countingEmbedder struct {
	calls     int
	lastTexts []string
	err       error
}

func (c *countingEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	c.calls++
	c.lastTexts = texts
	if c.err != nil {
		return nil, c.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(len(texts[i])), 0.5}
	}
	return out, nil
}

func TestCachedEmbedder_HitAvoidsInnerCall(t *testing.T) {
	inner := &countingEmbedder{}
	cached := NewCachedEmbedder(inner, 16, time.Minute)
	ctx := context.Background()

	first, err := cached.EmbedTexts(ctx, []string{"hello"})
	if err != nil {
		t.Fatalf("EmbedTexts() error = %v", err)
	}
	second, err := cached.EmbedTexts(ctx, []string{"hello"})
	if err != nil {
		t.Fatalf("EmbedTexts() error = %v", err)
	}

	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1", inner.calls)
	}
	if len(second) != 1 || second[0][0] != first[0][0] {
		t.Errorf("cached vector differs from original")
	}
}

func TestCachedEmbedder_PartialMissPreservesOrder(t *testing.T) {
	inner := &countingEmbedder{}
	cached := NewCachedEmbedder(inner, 16, time.Minute)
	ctx := context.Background()

	if _, err := cached.EmbedTexts(ctx, []string{"aa", "cccc"}); err != nil {
		t.Fatalf("EmbedTexts() error = %v", err)
	}

	vectors, err := cached.EmbedTexts(ctx, []string{"aa", "bbb", "cccc"})
	if err != nil {
		t.Fatalf("EmbedTexts() error = %v", err)
	}

	if inner.calls != 2 {
		t.Errorf("inner calls = %d, want 2", inner.calls)
	}
	if len(inner.lastTexts) != 1 || inner.lastTexts[0] != "bbb" {
		t.Errorf("second inner call embedded %v, want only the miss", inner.lastTexts)
	}

	// The vector encodes input length in its first component, so order is
	// checkable directly.
	want := []float32{2, 3, 4}
	for i, vec := range vectors {
		if vec[0] != want[i] {
			t.Errorf("vector %d = %v, want first component %v", i, vec, want[i])
		}
	}
}

func TestCachedEmbedder_InnerErrorPropagates(t *testing.T) {
	innerErr := errors.New("backend down")
	inner := &countingEmbedder{err: innerErr}
	cached := NewCachedEmbedder(inner, 16, time.Minute)

	_, err := cached.EmbedTexts(context.Background(), []string{"x y z text"})
	if !errors.Is(err, innerErr) {
		t.Errorf("EmbedTexts() error = %v, want inner error", err)
	}
}

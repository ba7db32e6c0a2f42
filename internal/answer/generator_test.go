package answer

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// stubStrategy returns a fixed outcome and records invocations.
type stubStrategy struct {
	name   string
	answer string
	err    error
	called bool
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Attempt(context.Context, Input) (string, error) {
	s.called = true
	return s.answer, s.err
}

func TestGenerate_FirstUsableWins(t *testing.T) {
	first := &stubStrategy{name: "first", answer: "the answer"}
	second := &stubStrategy{name: "second", answer: "never reached"}

	g := NewGenerator(first, second)

	got := g.Generate(context.Background(), Input{Question: "q", Context: "ctx"})
	if got != "the answer" {
		t.Errorf("Generate() = %q, want first tier's answer", got)
	}
	if second.called {
		t.Error("second tier attempted after first succeeded")
	}
}

func TestGenerate_SkipsFailedTiers(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "tier-local rejection", err: fmt.Errorf("%w: too short", ErrUnusable)},
		{name: "backend error", err: errors.New("connection refused")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			failing := &stubStrategy{name: "failing", err: tt.err}
			working := &stubStrategy{name: "working", answer: "recovered answer"}

			g := NewGenerator(failing, working)

			got := g.Generate(context.Background(), Input{Question: "q", Context: "ctx"})
			if got != "recovered answer" {
				t.Errorf("Generate() = %q, want the next tier's answer", got)
			}
		})
	}
}

func TestGenerate_ExhaustionYieldsFallback(t *testing.T) {
	g := NewGenerator(
		&stubStrategy{name: "a", err: ErrUnusable},
		&stubStrategy{name: "b", err: errors.New("timeout")},
		&stubStrategy{name: "c", err: ErrUnusable},
	)

	got := g.Generate(context.Background(), Input{Question: "q", Context: "ctx"})
	if got != FallbackAnswer {
		t.Errorf("Generate() = %q, want FallbackAnswer", got)
	}
}

func TestGenerate_NoStrategies(t *testing.T) {
	g := NewGenerator()
	if got := g.Generate(context.Background(), Input{}); got != FallbackAnswer {
		t.Errorf("Generate() = %q, want FallbackAnswer", got)
	}
}

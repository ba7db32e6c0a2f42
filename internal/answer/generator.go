package answer

import (
	"context"
	"errors"
	"log/slog"

	"docqa/internal/contextutil"
)

// FallbackAnswer is the terminal answer returned when every generation tier
// is exhausted. The request still succeeds with this low-confidence answer.
const FallbackAnswer = "I couldn't find an answer to your question in the available documents."

// ErrUnusable marks a tier's output as unusable (empty, too short, or an
// explicit "not found" phrase). It is tier-local and never propagates out of
// the generator.
var ErrUnusable = errors.New("unusable answer")

// Input is what each generation tier works from.
type Input struct {
	Question string
	Context  string
	// KeyInfo holds high-confidence snippets surfaced by the context
	// assembler, used as hints.
	KeyInfo []string
}

// Strategy is one answer-production tier. Attempt returns a usable answer or
// an error; any error (including ErrUnusable) means the orchestrator moves
// on to the next tier.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, in Input) (string, error)
}

// Generator runs an ordered list of strategies and stops at the first usable
// result. It never returns an error: total exhaustion degrades to
// FallbackAnswer.
type Generator struct {
	strategies []Strategy
}

// NewGenerator creates a Generator over the given tiers, tried in order.
func NewGenerator(strategies ...Strategy) *Generator {
	return &Generator{strategies: strategies}
}

// Generate produces an answer for the question from the assembled context.
// Each tier's failure is caught locally and treated as unusable.
func (g *Generator) Generate(ctx context.Context, in Input) string {
	logger := contextutil.LoggerFromContext(ctx)

	for _, strategy := range g.strategies {
		answer, err := strategy.Attempt(ctx, in)
		if err != nil {
			level := slog.LevelWarn
			if errors.Is(err, ErrUnusable) {
				level = slog.LevelDebug
			}
			logger.Log(ctx, level, "generation tier failed",
				"tier", strategy.Name(), "error", err)
			continue
		}

		logger.InfoContext(ctx, "generation tier produced answer",
			"tier", strategy.Name(), "answer_length", len(answer))
		return answer
	}

	logger.InfoContext(ctx, "all generation tiers exhausted, using fallback")
	return FallbackAnswer
}

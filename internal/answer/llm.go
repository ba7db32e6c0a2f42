package answer

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"docqa/internal/llm"
	"docqa/internal/service"
)

// Chatter is the slice of the LLM client the answer tiers need.
type Chatter interface {
	ChatWithMessages(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error)
}

const (
	strictMinAnswerLen = 10
	looseMinAnswerLen  = 5
	llmMaxTokens       = 400
)

// refusalPhrases are model outputs that count as "no answer" rather than an
// answer. Matching is case-insensitive on the whole response.
var refusalPhrases = []string{
	"not available",
	"insufficient information",
	"cannot answer",
	"don't have enough",
	"no information",
	"not mentioned",
	"not provided",
	"not specified",
}

// PrimaryLLM is the first tier: a strict prompt that instructs the model to
// answer only from the supplied context, with aggressive output validation.
type PrimaryLLM struct {
	client Chatter
}

func NewPrimaryLLM(client Chatter) *PrimaryLLM {
	return &PrimaryLLM{client: client}
}

func (p *PrimaryLLM) Name() string { return "primary_llm" }

func (p *PrimaryLLM) Attempt(ctx context.Context, in Input) (string, error) {
	if strings.TrimSpace(in.Context) == "" {
		return "", fmt.Errorf("%w: empty context", ErrUnusable)
	}

	messages := []llm.Message{
		{
			Role: "system",
			Content: "You are a precise document assistant. Answer the question using ONLY the provided context. " +
				"Quote exact values (numbers, dates, names, identifiers) when present. " +
				"If the context does not contain the answer, reply exactly: insufficient information.",
		},
		{
			Role:    "user",
			Content: fmt.Sprintf("Context:\n%s\n\nQuestion: %s\n\nAnswer:", in.Context, in.Question),
		},
	}

	response, err := p.client.ChatWithMessages(ctx, messages, llm.ChatParams{
		MaxTokens:   llmMaxTokens,
		Temperature: 0.1,
	})
	if err != nil {
		return "", service.WrapError(err, "primary generation")
	}

	answer := cleanAnswer(response)
	if len(answer) < strictMinAnswerLen || isRefusal(answer) {
		return "", fmt.Errorf("%w: %q", ErrUnusable, truncateForLog(answer))
	}
	return answer, nil
}

// SecondaryLLM is a later tier with a looser prompt and gentler validation,
// typically backed by a different model endpoint.
type SecondaryLLM struct {
	client Chatter
	name   string
}

func NewSecondaryLLM(client Chatter, name string) *SecondaryLLM {
	if name == "" {
		name = "secondary_llm"
	}
	return &SecondaryLLM{client: client, name: name}
}

func (s *SecondaryLLM) Name() string { return s.name }

func (s *SecondaryLLM) Attempt(ctx context.Context, in Input) (string, error) {
	if strings.TrimSpace(in.Context) == "" {
		return "", fmt.Errorf("%w: empty context", ErrUnusable)
	}

	prompt := fmt.Sprintf(
		"Based on the following document excerpts, give a short direct answer to the question.\n\n%s\n\nQuestion: %s",
		in.Context, in.Question)
	if len(in.KeyInfo) > 0 {
		prompt += "\n\nMost relevant passages:\n- " + strings.Join(in.KeyInfo, "\n- ")
	}

	response, err := s.client.ChatWithMessages(ctx, []llm.Message{
		{Role: "user", Content: prompt},
	}, llm.ChatParams{
		MaxTokens:   llmMaxTokens,
		Temperature: 0.3,
	})
	if err != nil {
		return "", service.WrapError(err, "secondary generation")
	}

	answer := cleanAnswer(response)
	if len(answer) < looseMinAnswerLen || isRefusal(answer) {
		return "", fmt.Errorf("%w: %q", ErrUnusable, truncateForLog(answer))
	}
	return answer, nil
}

var answerPrefixRe = regexp.MustCompile(`(?i)^(the\s+)?(answer|response)\s*(is)?\s*[:\-]\s*`)

// cleanAnswer strips boilerplate prefixes and normalizes whitespace and
// trailing punctuation stacks the models sometimes emit.
func cleanAnswer(s string) string {
	s = strings.TrimSpace(s)
	s = answerPrefixRe.ReplaceAllString(s, "")
	s = strings.Trim(s, "\"'")
	s = strings.TrimSpace(s)
	for strings.HasSuffix(s, "..") {
		s = strings.TrimSuffix(s, ".")
	}
	return s
}

func isRefusal(s string) bool {
	lower := strings.ToLower(s)
	for _, phrase := range refusalPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

func truncateForLog(s string) string {
	const max = 80
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

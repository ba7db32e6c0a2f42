package answer

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

const terminalMaxSentences = 2

// SentenceScoring is the last real tier: rank raw context sentences by
// question-keyword overlap and return the top one or two. Only sentences
// scoring above zero qualify.
type SentenceScoring struct{}

func NewSentenceScoring() *SentenceScoring { return &SentenceScoring{} }

func (s *SentenceScoring) Name() string { return "sentence_scoring" }

func (s *SentenceScoring) Attempt(_ context.Context, in Input) (string, error) {
	keywords := questionKeywords(in.Question)
	if len(keywords) == 0 {
		return "", fmt.Errorf("%w: no usable question keywords", ErrUnusable)
	}

	type scored struct {
		text  string
		score int
	}
	var candidates []scored
	for _, sentence := range splitContextSentences(in.Context) {
		lower := strings.ToLower(sentence)
		score := 0
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		if score > 0 {
			candidates = append(candidates, scored{text: sentence, score: score})
		}
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("%w: no sentence matched question keywords", ErrUnusable)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return len(candidates[i].text) < len(candidates[j].text)
	})

	n := terminalMaxSentences
	if len(candidates) < n {
		n = len(candidates)
	}
	parts := make([]string, 0, n)
	for _, c := range candidates[:n] {
		parts = append(parts, c.text)
	}
	return strings.Join(parts, " "), nil
}

var terminalStopwords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "can": true, "had": true,
	"was": true, "what": true, "when": true, "where": true, "which": true,
	"who": true, "how": true, "does": true, "did": true, "has": true,
	"have": true, "this": true, "that": true, "with": true, "from": true,
	"they": true, "will": true, "would": true, "there": true, "their": true,
	"about": true, "into": true, "than": true, "them": true, "were": true,
}

var wordRe = regexp.MustCompile(`[a-zA-Z0-9]+`)

func questionKeywords(question string) []string {
	seen := make(map[string]bool)
	var keywords []string
	for _, word := range wordRe.FindAllString(strings.ToLower(question), -1) {
		if len(word) <= 2 || terminalStopwords[word] || seen[word] {
			continue
		}
		seen[word] = true
		keywords = append(keywords, word)
	}
	return keywords
}

var sentenceBoundaryRe = regexp.MustCompile(`[.!?]+\s+|\n+`)

func splitContextSentences(text string) []string {
	var sentences []string
	for _, part := range sentenceBoundaryRe.Split(text, -1) {
		part = strings.TrimSpace(part)
		if len(part) >= 10 {
			sentences = append(sentences, part)
		}
	}
	return sentences
}

package assemble

import (
	"fmt"
	"sort"
	"strings"

	"docqa/internal/retrieval"
)

const (
	// maxContextChars bounds the assembled context string.
	maxContextChars = 4000
	// maxContextChunks bounds how many chunks are concatenated.
	maxContextChunks = 6
	// maxKeywords caps the extracted question keywords.
	maxKeywords = 8
	// maxKeyInfo caps the returned key information snippets.
	maxKeyInfo = 3

	keywordBoost     = 0.05
	typePatternBoost = 0.1
)

// Assembly is the output of context assembly: a bounded context string for
// the answer generator, high-confidence key snippets, a quality estimate,
// and a per-provenance result count.
type Assembly struct {
	Context         string
	KeyInfo         []string
	QualityScore    float64
	QuestionType    QuestionType
	SourceBreakdown map[string]int
}

// Assembler ranks and merges retrieved chunks into a bounded context string
// with question-type-aware re-scoring. Deterministic given identical inputs;
// no external calls.
type Assembler struct {
	classify Classifier
}

// New creates an Assembler using the default question classifier.
func New() *Assembler {
	return &Assembler{classify: DefaultClassifier}
}

// NewWithClassifier creates an Assembler with a custom question classifier.
func NewWithClassifier(c Classifier) *Assembler {
	return &Assembler{classify: c}
}

type scoredResult struct {
	retrieval.Result
	boosted float64
}

// Assemble builds the generation context from retrieved results.
func (a *Assembler) Assemble(results []retrieval.Result, question string) Assembly {
	qt := a.classify(question)
	keywords := extractKeywords(question)

	breakdown := map[string]int{
		string(retrieval.SourcePersonal):     0,
		string(retrieval.SourceOrganization): 0,
	}
	for _, r := range results {
		breakdown[string(r.SourceType)]++
	}

	if len(results) == 0 {
		return Assembly{QuestionType: qt, SourceBreakdown: breakdown, KeyInfo: []string{}}
	}

	scored := make([]scoredResult, len(results))
	for i, r := range results {
		boosted := float64(r.Score)
		lower := strings.ToLower(r.Text)
		for _, kw := range keywords {
			boosted += keywordBoost * float64(strings.Count(lower, kw))
		}
		if matchesTypePattern(qt, r.Text) {
			boosted += typePatternBoost
		}
		scored[i] = scoredResult{Result: r, boosted: boosted}
	}

	// Stable sort keeps the retriever's ordering for ties.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].boosted > scored[j].boosted
	})

	selected := scored
	if len(selected) > maxContextChunks {
		selected = selected[:maxContextChunks]
	}

	var b strings.Builder
	var used []scoredResult
	for i, sr := range selected {
		label := fmt.Sprintf("[Personal %d]", i+1)
		if sr.SourceType == retrieval.SourceOrganization {
			label = fmt.Sprintf("[Org Source %d]", i+1)
		}
		entry := fmt.Sprintf("%s %s\n\n", label, strings.TrimSpace(sr.Text))
		if b.Len()+len(entry) > maxContextChars && b.Len() > 0 {
			break
		}
		b.WriteString(entry)
		used = append(used, sr)
	}

	quality := scored[0].boosted
	if quality > 1 {
		quality = 1
	}
	if quality < 0 {
		quality = 0
	}

	return Assembly{
		Context:         strings.TrimSpace(b.String()),
		KeyInfo:         extractKeyInfo(used, keywords, qt),
		QualityScore:    quality,
		QuestionType:    qt,
		SourceBreakdown: breakdown,
	}
}

// stopwords excluded from question keyword extraction.
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "are": {}, "was": {}, "were": {}, "what": {},
	"when": {}, "where": {}, "which": {}, "who": {}, "how": {}, "why": {},
	"does": {}, "did": {}, "for": {}, "from": {}, "with": {}, "this": {},
	"that": {}, "these": {}, "those": {}, "have": {}, "has": {}, "had": {},
	"can": {}, "could": {}, "would": {}, "should": {}, "about": {},
	"into": {}, "there": {}, "their": {}, "they": {}, "you": {}, "your": {},
	"will": {}, "many": {}, "much": {}, "any": {}, "all": {}, "not": {},
}

// extractKeywords pulls non-stopword terms longer than two characters from
// the question, lowercased, capped at maxKeywords, preserving order of first
// appearance.
func extractKeywords(question string) []string {
	fields := strings.FieldsFunc(strings.ToLower(question), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})

	seen := make(map[string]struct{})
	var keywords []string
	for _, f := range fields {
		if len(f) <= 2 {
			continue
		}
		if _, ok := stopwords[f]; ok {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		keywords = append(keywords, f)
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}

type scoredSentence struct {
	text  string
	score int
}

// extractKeyInfo collects sentences from the selected chunks that contain at
// least two keyword matches or match the question type's pattern, returning
// the top few by match score. These are hints for the answer generator, not
// guaranteed to be used.
func extractKeyInfo(selected []scoredResult, keywords []string, qt QuestionType) []string {
	var candidates []scoredSentence
	seen := make(map[string]struct{})

	for _, sr := range selected {
		for _, sentence := range splitSentences(sr.Text) {
			if _, ok := seen[sentence]; ok {
				continue
			}

			lower := strings.ToLower(sentence)
			score := 0
			for _, kw := range keywords {
				if strings.Contains(lower, kw) {
					score++
				}
			}
			patternHit := matchesTypePattern(qt, sentence)
			if score < 2 && !patternHit {
				continue
			}
			if patternHit {
				score += 2
			}

			seen[sentence] = struct{}{}
			candidates = append(candidates, scoredSentence{text: sentence, score: score})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	keyInfo := make([]string, 0, maxKeyInfo)
	for _, c := range candidates {
		keyInfo = append(keyInfo, c.text)
		if len(keyInfo) == maxKeyInfo {
			break
		}
	}
	return keyInfo
}

// splitSentences breaks text into trimmed sentences on terminal punctuation
// and newlines.
func splitSentences(text string) []string {
	var sentences []string
	var b strings.Builder

	for _, r := range text {
		b.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			s := strings.TrimSpace(b.String())
			if len(s) > 3 {
				sentences = append(sentences, s)
			}
			b.Reset()
		}
	}
	if s := strings.TrimSpace(b.String()); len(s) > 3 {
		sentences = append(sentences, s)
	}
	return sentences
}

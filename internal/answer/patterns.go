package answer

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// extractionRule pairs a question-shape detector with context regexes that
// pull a literal answer straight out of the retrieved text.
type extractionRule struct {
	name       string
	questionRe *regexp.Regexp
	contextRes []*regexp.Regexp
}

var extractionRules = []extractionRule{
	{
		name:       "license_number",
		questionRe: regexp.MustCompile(`(?i)\blicen[cs]e\b.*\b(number|no\.?|id)\b|\b(number|no\.?|id)\b.*\blicen[cs]e\b`),
		contextRes: []*regexp.Regexp{
			regexp.MustCompile(`(?i)licen[cs]e\s+(?:number|no\.?)?\s*:?\s*([A-Z0-9][A-Z0-9\-/]{3,})`),
		},
	},
	{
		name:       "trial_identifier",
		questionRe: regexp.MustCompile(`(?i)\b(trial|study)\b.*\b(id|identifier|number)\b|\bnct\b`),
		contextRes: []*regexp.Regexp{
			regexp.MustCompile(`\b(NCT\d{8})\b`),
			regexp.MustCompile(`(?i)(?:trial|study)\s+(?:id|identifier|number)\s*:?\s*([A-Z0-9\-]{4,})`),
		},
	},
	{
		name:       "age_threshold",
		questionRe: regexp.MustCompile(`(?i)\b(age|old|older|younger|minimum age|maximum age)\b`),
		contextRes: []*regexp.Regexp{
			regexp.MustCompile(`(?i)((?:at least|under|over|between)?\s*\d{1,3}\s*(?:and\s*\d{1,3}\s*)?years?(?:\s+of\s+age|\s+old)?)`),
			regexp.MustCompile(`(?i)(aged?\s+\d{1,3}(?:\s*(?:to|-|–)\s*\d{1,3})?)`),
		},
	},
	{
		name:       "date_range",
		questionRe: regexp.MustCompile(`(?i)\b(when|date|deadline|expire|expiry|valid until|period)\b`),
		contextRes: []*regexp.Regexp{
			regexp.MustCompile(`(?i)((?:january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{1,2},?\s+\d{4})`),
			regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`),
			regexp.MustCompile(`(\d{1,2}/\d{1,2}/\d{2,4})`),
		},
	},
	{
		name:       "manufacturing_location",
		questionRe: regexp.MustCompile(`(?i)\b(where|location|site|facility)\b.*\b(manufactur|produc|made)\w*|\bmanufactur\w*.*\b(where|location|site)\b`),
		contextRes: []*regexp.Regexp{
			regexp.MustCompile(`(?i)manufactured\s+(?:in|at|by)\s+([A-Z][\w\s,.'-]{2,60}?)(?:[.;\n]|$)`),
			regexp.MustCompile(`(?i)manufacturing\s+(?:site|facility|location)\s*:?\s*([A-Z][\w\s,.'-]{2,60}?)(?:[.;\n]|$)`),
		},
	},
	{
		name:       "must_submit",
		questionRe: regexp.MustCompile(`(?i)\b(must|required?|need(?:s|ed)?|shall)\b.*\bsubmit\w*|\bsubmit\w*.*\b(what|which|requirement)\b`),
		contextRes: []*regexp.Regexp{
			regexp.MustCompile(`(?i)((?:must|shall|(?:is|are)\s+required\s+to)\s+submit[^.;\n]{3,160})`),
		},
	},
}

// PatternExtraction is the second tier: direct literal extraction from the
// context via question-shape-specific regexes. When no rule matches it falls
// through to the best key-info snippet, if any.
type PatternExtraction struct{}

func NewPatternExtraction() *PatternExtraction { return &PatternExtraction{} }

func (p *PatternExtraction) Name() string { return "pattern_extraction" }

func (p *PatternExtraction) Attempt(_ context.Context, in Input) (string, error) {
	for _, rule := range extractionRules {
		if !rule.questionRe.MatchString(in.Question) {
			continue
		}
		for _, re := range rule.contextRes {
			match := re.FindStringSubmatch(in.Context)
			if len(match) < 2 {
				continue
			}
			answer := strings.TrimSpace(match[1])
			if answer != "" {
				return answer, nil
			}
		}
	}

	for _, snippet := range in.KeyInfo {
		snippet = strings.TrimSpace(snippet)
		if snippet != "" {
			return snippet, nil
		}
	}
	return "", fmt.Errorf("%w: no pattern matched and no key info", ErrUnusable)
}

package assemble

import (
	"regexp"
	"strings"
)

// QuestionType is a coarse classification of a question, used to re-score
// chunks with type-specific patterns. It is a best-effort signal, not a
// guarantee.
type QuestionType string

const (
	TypeNumber      QuestionType = "number"
	TypeAge         QuestionType = "age"
	TypeDate        QuestionType = "date"
	TypeLocation    QuestionType = "location"
	TypeRequirement QuestionType = "requirement"
	TypeFactual     QuestionType = "factual"
	TypeGeneral     QuestionType = "general"
)

// Classifier maps a question to a QuestionType. The assembler accepts a
// custom classifier so the ranking strategy can be swapped without touching
// call sites.
type Classifier func(question string) QuestionType

// typeKeywords drive the default classifier. The lists are heuristic and
// not claimed exhaustive.
var typeKeywords = map[QuestionType][]string{
	TypeAge:         {"age", "old", "years old", "minimum age", "aged"},
	TypeDate:        {"when", "date", "year", "deadline", "expire", "start", "end"},
	TypeNumber:      {"how many", "how much", "number", "count", "amount", "total", "quantity"},
	TypeLocation:    {"where", "location", "located", "address", "country", "city", "site", "manufactured"},
	TypeRequirement: {"must", "require", "requirement", "mandatory", "need to", "shall", "submit", "comply"},
	TypeFactual:     {"what is", "what are", "who", "which", "name"},
}

// classifyOrder fixes the precedence when multiple type keyword sets match.
var classifyOrder = []QuestionType{
	TypeAge, TypeDate, TypeNumber, TypeLocation, TypeRequirement, TypeFactual,
}

// DefaultClassifier classifies a question by keyword heuristics, falling
// back to "general" when nothing matches.
func DefaultClassifier(question string) QuestionType {
	q := strings.ToLower(question)
	for _, qt := range classifyOrder {
		for _, kw := range typeKeywords[qt] {
			if strings.Contains(q, kw) {
				return qt
			}
		}
	}
	return TypeGeneral
}

// typePatterns match chunk text that likely contains an answer for each
// question type.
var typePatterns = map[QuestionType]*regexp.Regexp{
	TypeNumber:      regexp.MustCompile(`\b\d+(?:[.,]\d+)?\b`),
	TypeAge:         regexp.MustCompile(`(?i)\b\d{1,3}\s*(?:years?|yrs?)(?:\s+(?:old|of age))?\b`),
	TypeDate:        regexp.MustCompile(`\b(?:19|20)\d{2}\b`),
	TypeLocation:    regexp.MustCompile(`(?i)\b(?:located|headquarter\w*|based|manufactur\w*)\s+(?:in|at)\b`),
	TypeRequirement: regexp.MustCompile(`(?i)\b(?:must|shall|required?|mandatory)\b`),
}

// matchesTypePattern reports whether text matches the pattern for the given
// question type. Factual and general questions carry no pattern.
func matchesTypePattern(qt QuestionType, text string) bool {
	pattern, ok := typePatterns[qt]
	if !ok {
		return false
	}
	return pattern.MatchString(text)
}

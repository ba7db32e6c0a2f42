package qa

import (
	"context"
	"strings"
	"unicode/utf8"

	"docqa/internal/answer"
	"docqa/internal/assemble"
	"docqa/internal/contextutil"
	"docqa/internal/retrieval"
	"docqa/internal/service"
)

// NoDocumentsAnswer is returned when retrieval finds nothing in scope.
const NoDocumentsAnswer = "I couldn't find any relevant documents to answer your question. " +
	"Try uploading documents first, or rephrase your question."

// Source text in responses is truncated to keep payloads small.
const maxSourceTextRunes = 200

// AskRequest is a question against the caller's accessible documents.
type AskRequest struct {
	Question       string          `json:"question"`
	OrganizationID string          `json:"organization_id,omitempty"`
	SearchScope    retrieval.Scope `json:"search_scope,omitempty"`
}

// Source is one supporting chunk cited in an answer.
type Source struct {
	Text           string  `json:"text"`
	Similarity     float32 `json:"similarity"`
	SourceType     string  `json:"source_type"`
	OrganizationID string  `json:"organization_id,omitempty"`
}

// AskResponse is the full answer payload.
type AskResponse struct {
	Answer              string         `json:"answer"`
	Sources             []Source       `json:"sources"`
	FoundChunks         int            `json:"found_chunks"`
	ContextQualityScore float64        `json:"context_quality_score"`
	SourceBreakdown     map[string]int `json:"source_breakdown"`
}

// Retriever fetches access-scoped chunks for a question.
type Retriever interface {
	Retrieve(ctx context.Context, question, callerID, orgID string, scope retrieval.Scope, k int) ([]retrieval.Result, error)
}

// AccessVerifier re-checks that every retrieved chunk is visible to the caller.
type AccessVerifier interface {
	Verify(ctx context.Context, results []retrieval.Result, callerID string) error
}

// Assembler builds bounded LLM context from retrieval results.
type Assembler interface {
	Assemble(results []retrieval.Result, question string) assemble.Assembly
}

// Generator produces the final answer text. It never fails outward.
type Generator interface {
	Generate(ctx context.Context, in answer.Input) string
}

// Service runs the full question pipeline: retrieve, verify, assemble,
// generate.
type Service struct {
	retriever Retriever
	verifier  AccessVerifier
	assembler Assembler
	generator Generator
}

// NewService wires the question pipeline stages.
func NewService(retriever Retriever, verifier AccessVerifier, assembler Assembler, generator Generator) *Service {
	return &Service{
		retriever: retriever,
		verifier:  verifier,
		assembler: assembler,
		generator: generator,
	}
}

// Ask answers a question from the caller's accessible documents.
func (s *Service) Ask(ctx context.Context, callerID string, req AskRequest) (*AskResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, &service.ValidationError{Field: "question", Message: "must not be empty"}
	}
	scope := req.SearchScope
	if scope == "" {
		scope = retrieval.ScopeAll
	}

	results, err := s.retriever.Retrieve(ctx, question, callerID, req.OrganizationID, scope, 0)
	if err != nil {
		return nil, err
	}

	if len(results) == 0 {
		logger.InfoContext(ctx, "no chunks retrieved for question")
		return &AskResponse{
			Answer:          NoDocumentsAnswer,
			Sources:         []Source{},
			FoundChunks:     0,
			SourceBreakdown: map[string]int{},
		}, nil
	}

	// Independent ownership re-check. A failure here is fatal for the
	// request and is never downgraded to a "no results" response.
	if err := s.verifier.Verify(ctx, results, callerID); err != nil {
		return nil, err
	}

	assembly := s.assembler.Assemble(results, question)
	answerText := s.generator.Generate(ctx, answer.Input{
		Question: question,
		Context:  assembly.Context,
		KeyInfo:  assembly.KeyInfo,
	})

	sources := make([]Source, 0, len(results))
	for _, r := range results {
		sources = append(sources, Source{
			Text:           truncateRunes(r.Text, maxSourceTextRunes),
			Similarity:     r.Score,
			SourceType:     string(r.SourceType),
			OrganizationID: r.OrganizationID,
		})
	}

	logger.InfoContext(ctx, "question answered",
		"found_chunks", len(results),
		"quality_score", assembly.QualityScore,
		"question_type", assembly.QuestionType)

	return &AskResponse{
		Answer:              answerText,
		Sources:             sources,
		FoundChunks:         len(results),
		ContextQualityScore: assembly.QualityScore,
		SourceBreakdown:     assembly.SourceBreakdown,
	}, nil
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "..."
}

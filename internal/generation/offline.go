package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/pathwise/internal/llm"
)

// NewOfflineProvider returns a mock provider that answers every task with
// fixed, schema-valid content. It backs the "mock" provider setting so the
// whole flow can be exercised without network access.
func NewOfflineProvider() *llm.MockProvider {
	return llm.NewRoutedMockProvider(OfflineRoute)
}

// OfflineRoute answers a request according to its schema.
func OfflineRoute(req llm.Request) llm.MockResponse {
	if req.Schema == nil {
		return llm.MockResponse{Err: &llm.ErrProviderUnavailable{}}
	}

	var payload any
	switch req.Schema.Name {
	case GraphSchema.Name:
		payload = GraphProposal{
			Nodes: []ProposedNode{
				{ID: "c1", Label: "Foundations"},
				{ID: "c2", Label: "Core Definitions"},
				{ID: "c3", Label: "Key Results"},
				{ID: "c4", Label: "Methods"},
				{ID: "c5", Label: "Applications"},
			},
			Edges: []ProposedEdge{
				{Source: "c1", Target: "c2"},
				{Source: "c2", Target: "c3"},
				{Source: "c2", Target: "c4"},
				{Source: "c3", Target: "c5"},
				{Source: "c4", Target: "c5"},
			},
		}
	case ExplanationSchema.Name:
		payload = Explanation{ContentText: "Offline explanation. " + promptField(req, "Concept: ")}
	case QuizSchema.Name:
		quiz := Quiz{Items: make([]QuizItem, QuizSize)}
		for i := range quiz.Items {
			quiz.Items[i] = QuizItem{
				Question:           fmt.Sprintf("Offline question %d", i+1),
				Options:            []string{"A) first", "B) second", "C) third", "D) fourth"},
				CorrectOptionIndex: 0,
				Explanation:        "The first option is always correct offline.",
			}
		}
		payload = quiz
	case NotationSchema.Name:
		payload = Notation{LatexEquation: "", Reason: "No formula offline."}
	case AuditSchema.Name:
		payload = AuditReport{RiskScore: 0.1, FlaggedReason: "Content is highly factual"}
	case RemediationSchema.Name:
		label := promptField(req, "Concept: ")
		payload = RemediationCandidate{
			ID:     RemedialID(label),
			Label:  "Review of " + label,
			Reason: "Offline remediation.",
		}
	default:
		return llm.MockResponse{Err: &llm.ErrProviderUnavailable{}}
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return llm.MockResponse{Err: err}
	}
	return llm.MockResponse{Content: raw}
}

// promptField returns the remainder of the first prompt line starting with
// prefix, or "".
func promptField(req llm.Request, prefix string) string {
	for _, m := range req.Messages {
		for _, line := range strings.Split(m.Content, "\n") {
			if rest, ok := strings.CutPrefix(line, prefix); ok {
				return rest
			}
		}
	}
	return ""
}

package pipeline

import (
	"fmt"
	"strings"

	"github.com/abhisek/pathwise/internal/curriculum"
	"github.com/abhisek/pathwise/internal/generation"
)

// ConciseAfter is the number of recent passes that switch explanations to
// the concise style.
const ConciseAfter = 3

const noHistorySummary = "No significant prior history found."

// SummarizeHistory derives the explanation bias from the recent attempt
// window. Every record in the window belongs to the same topic, so any
// failure counts as a struggle on a related concept. It has no side effects.
func SummarizeHistory(history []curriculum.AttemptRecord) generation.Bias {
	var failed []string
	seen := make(map[string]bool)
	passes := 0
	for _, rec := range history {
		if rec.Passed() {
			passes++
			continue
		}
		if !seen[rec.NodeID] {
			seen[rec.NodeID] = true
			failed = append(failed, rec.NodeID)
		}
	}

	switch {
	case len(failed) > 0:
		return generation.Bias{
			Mode:        generation.BiasRemedial,
			FailedNodes: failed,
			Summary: fmt.Sprintf("Student has recently struggled with related concepts: %s. Focus the explanation on foundational gaps.",
				strings.Join(failed, ", ")),
		}
	case passes >= ConciseAfter:
		return generation.Bias{
			Mode:    generation.BiasConcise,
			Summary: "Student has a strong track record. Keep the explanation concise and move quickly to application.",
		}
	default:
		return generation.Bias{Mode: generation.BiasNeutral, Summary: noHistorySummary}
	}
}

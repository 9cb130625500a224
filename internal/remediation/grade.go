package remediation

import "github.com/abhisek/pathwise/internal/generation"

// Grade is the tally of one submitted assessment.
type Grade struct {
	Correct int
	Total   int
}

// Ratio is Correct/Total, or 0 for an empty assessment.
func (g Grade) Ratio() float64 {
	if g.Total == 0 {
		return 0
	}
	return float64(g.Correct) / float64(g.Total)
}

// GradeAnswers compares answers against items by position. Missing answers
// count as wrong; extra answers are ignored.
func GradeAnswers(items []generation.QuizItem, answers []int) Grade {
	g := Grade{Total: len(items)}
	for i, item := range items {
		if i < len(answers) && answers[i] == item.CorrectOptionIndex {
			g.Correct++
		}
	}
	return g
}

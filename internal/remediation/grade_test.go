package remediation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abhisek/pathwise/internal/generation"
)

func items(correct ...int) []generation.QuizItem {
	out := make([]generation.QuizItem, len(correct))
	for i, c := range correct {
		out[i] = generation.QuizItem{Question: "q", Options: []string{"a", "b", "c", "d"}, CorrectOptionIndex: c}
	}
	return out
}

func TestGradeAnswers(t *testing.T) {
	quiz := items(0, 1, 2, 3, 0, 1, 2, 3, 0, 1)

	tests := []struct {
		name    string
		answers []int
		want    Grade
		ratio   float64
	}{
		{"all correct", []int{0, 1, 2, 3, 0, 1, 2, 3, 0, 1}, Grade{10, 10}, 1.0},
		{"seven of ten", []int{0, 1, 2, 3, 0, 1, 2, 0, 1, 2}, Grade{7, 10}, 0.7},
		{"six of ten", []int{0, 1, 2, 3, 0, 1, 0, 0, 1, 2}, Grade{6, 10}, 0.6},
		{"unanswered count wrong", []int{0, 1}, Grade{2, 10}, 0.2},
		{"extra answers ignored", []int{0, 1, 2, 3, 0, 1, 2, 3, 0, 1, 3, 3}, Grade{10, 10}, 1.0},
		{"none", nil, Grade{0, 10}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GradeAnswers(quiz, tt.answers)
			assert.Equal(t, tt.want, got)
			assert.InDelta(t, tt.ratio, got.Ratio(), 1e-9)
		})
	}
}

func TestGrade_EmptyAssessment(t *testing.T) {
	g := GradeAnswers(nil, []int{1, 2})
	assert.Equal(t, Grade{}, g)
	assert.Zero(t, g.Ratio())
}

func TestGrade_RatioIgnoresExtraAnswers(t *testing.T) {
	g := GradeAnswers(items(1, 1, 1, 1), []int{1, 1, 0, 0, 1, 1})
	assert.Equal(t, Grade{Correct: 2, Total: 4}, g)
	assert.InDelta(t, 0.5, g.Ratio(), 1e-9)
}

func TestVerdict_Passed(t *testing.T) {
	assert.True(t, VerdictPass.Passed())
	assert.False(t, VerdictFailNoRemediation.Passed())
	assert.False(t, VerdictFailWithRemediation.Passed())
}

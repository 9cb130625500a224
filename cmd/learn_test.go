package cmd

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/pathwise/internal/generation"
	"github.com/abhisek/pathwise/internal/pipeline"
	"github.com/abhisek/pathwise/internal/tutor"
)

func quizModule(n int) *tutor.Module {
	items := make([]generation.QuizItem, n)
	for i := range items {
		items[i] = generation.QuizItem{Question: "q", Options: []string{"a", "b", "c", "d"}}
	}
	return &tutor.Module{Content: &pipeline.Result{Items: items}}
}

func TestAskQuiz_RepromptsOnInvalidInput(t *testing.T) {
	var out bytes.Buffer
	answers, err := askQuiz(strings.NewReader("x\n9\n2\n4\n"), &out, quizModule(2))
	if err != nil {
		t.Fatalf("askQuiz: %v", err)
	}
	if answers[0] != 1 || answers[1] != 3 {
		t.Errorf("answers = %v", answers)
	}
	if strings.Count(out.String(), "Enter a number from 1 to 4.") != 2 {
		t.Errorf("expected two reprompts, got:\n%s", out.String())
	}
}

func TestAskQuiz_EOFLeavesRestUnanswered(t *testing.T) {
	var out bytes.Buffer
	answers, err := askQuiz(strings.NewReader("1\n"), &out, quizModule(3))
	if err != nil {
		t.Fatalf("askQuiz: %v", err)
	}
	if answers[0] != 0 || answers[1] != -1 || answers[2] != -1 {
		t.Errorf("answers = %v", answers)
	}
}

func TestAskQuiz_EmptyAssessment(t *testing.T) {
	_, err := askQuiz(strings.NewReader(""), &bytes.Buffer{}, quizModule(0))
	if !errors.Is(err, tutor.ErrNoAssessment) {
		t.Errorf("err = %v", err)
	}
}

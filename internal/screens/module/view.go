package module

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/pathwise/internal/pipeline"
	"github.com/abhisek/pathwise/internal/remediation"
	"github.com/abhisek/pathwise/internal/tutor"
	"github.com/abhisek/pathwise/internal/ui/components"
	"github.com/abhisek/pathwise/internal/ui/theme"
)

// renderLecture builds the scrollable lecture: explanation, notation,
// audit verdict and the latency of this run.
func renderLecture(m *tutor.Module, latencies *pipeline.Latencies) string {
	c := m.Content
	var b strings.Builder

	b.WriteString(theme.Title.Render(m.Concept.Label))
	b.WriteString("\n\n")
	b.WriteString(theme.Body.Render(c.Explanation))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render("Notation"))
	b.WriteString("\n")
	if c.Notation.Empty() {
		b.WriteString(theme.Hint.Render("No formula generated for this concept."))
	} else {
		b.WriteString(theme.Body.Render(c.Notation.LatexEquation))
		if c.Notation.Reason != "" {
			b.WriteString("\n" + theme.Hint.Render(c.Notation.Reason))
		}
	}
	b.WriteString("\n\n")

	audit := tutor.DescribeAudit(c.Audit)
	if audit.Warning {
		b.WriteString(theme.Warning.Render("⚠ " + audit.Text))
	} else {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Success).Render("✓ " + audit.Text))
	}
	b.WriteString("\n")

	if d, ok := latencies.Get(m.Concept.ID); ok {
		b.WriteString(theme.Hint.Render(fmt.Sprintf("Generated in %.1fs", d.Seconds())))
		b.WriteString("\n")
	}
	if c.Degraded() {
		stages := make([]string, 0, len(c.Failures))
		for _, st := range []pipeline.Stage{pipeline.StageExplain, pipeline.StageAssess, pipeline.StageNotate, pipeline.StageAudit} {
			if c.Failed(st) {
				stages = append(stages, string(st))
			}
		}
		b.WriteString(theme.Warning.Render("Some content could not be generated: " + strings.Join(stages, ", ")))
		b.WriteString("\n")
	}
	return b.String()
}

func (s *Screen) renderQuiz(width, height int) string {
	if len(s.items) == 0 {
		return renderError(width, height, tutor.ErrNoAssessment.Error())
	}

	var b strings.Builder
	answered := len(s.items) - s.unanswered()
	bar := components.Progress{Label: "Answered", Done: answered, Total: len(s.items), Width: min(width-4, 60)}
	b.WriteString("  " + bar.View() + "\n")
	b.WriteString(theme.Hint.Render(fmt.Sprintf("  Question %d of %d. Pass mark %.0f%%.",
		s.current+1, len(s.items), remediation.PassThreshold*100)))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	b.WriteString(indent(s.items[s.current].View(), "  "))

	if s.quizNote != "" {
		b.WriteString("\n  " + theme.Warning.Render(s.quizNote) + "\n")
	}
	return b.String()
}

func (s *Screen) renderResult(width, height int) string {
	r := s.report
	var b strings.Builder

	style := theme.Correct
	if !r.Decision.Verdict.Passed() {
		style = theme.Incorrect
	}
	b.WriteString("\n  " + style.Render(r.Message()) + "\n\n")

	switch r.Decision.Verdict {
	case remediation.VerdictFailWithRemediation:
		b.WriteString("  " + theme.Warning.Render(fmt.Sprintf("Curriculum updated: added remedial concept %q", r.Decision.RemedialLabel)))
		b.WriteString("\n")
		if r.Decision.Reason != "" {
			b.WriteString("  " + theme.Hint.Render(r.Decision.Reason) + "\n")
		}
	case remediation.VerdictFailNoRemediation:
		b.WriteString("  " + theme.Hint.Render("No remedial concept could be added. Try the module again."))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	for i, it := range s.items {
		mark := theme.Correct.Render("✓")
		if !it.IsCorrect() {
			mark = theme.Incorrect.Render("✗")
		}
		b.WriteString(fmt.Sprintf("  %s %2d. %s\n", mark, i+1, truncate(it.Question, width-10)))
	}
	return b.String()
}

func renderWaiting(width, height int, spin, text string) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.TextDim).
		Render(spin + " " + text)
}

func renderError(width, height int, msg string) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.Error).
		Render(msg + "\n\n" + theme.Hint.Render("Press any key to go back."))
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n") + "\n"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n < 2 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

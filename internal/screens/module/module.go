// Package module is the screen for one module attempt: it waits for the
// content pipeline, shows the lecture, runs the quiz and reports the
// verdict.
package module

import (
	"context"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/pathwise/internal/router"
	"github.com/abhisek/pathwise/internal/screen"
	"github.com/abhisek/pathwise/internal/tutor"
	"github.com/abhisek/pathwise/internal/ui/components"
	"github.com/abhisek/pathwise/internal/ui/layout"
	"github.com/abhisek/pathwise/internal/ui/theme"
)

type phase int

const (
	phaseLoading phase = iota
	phaseLecture
	phaseQuiz
	phaseSubmitting
	phaseResult
)

// moduleReadyMsg carries the pipeline result.
type moduleReadyMsg struct {
	Module *tutor.Module
	Err    error
}

// submittedMsg carries the graded report.
type submittedMsg struct {
	Report *tutor.Report
	Err    error
}

// Screen runs one module.
type Screen struct {
	ctx     context.Context
	svc     *tutor.Service
	session *tutor.Session
	nodeID  string

	phase    phase
	spinner  spinner.Model
	lecture  viewport.Model
	module   *tutor.Module
	items    []components.MultiChoice
	current  int
	report   *tutor.Report
	errMsg   string
	quizNote string
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)

// New creates the screen for nodeID. The pipeline starts on Init.
func New(ctx context.Context, svc *tutor.Service, session *tutor.Session, nodeID string) *Screen {
	return &Screen{
		ctx:     ctx,
		svc:     svc,
		session: session,
		nodeID:  nodeID,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(theme.Selected)),
		lecture: viewport.New(),
	}
}

func (s *Screen) Init() tea.Cmd {
	return tea.Batch(s.spinner.Tick, s.begin())
}

func (s *Screen) begin() tea.Cmd {
	ctx, svc, session, nodeID := s.ctx, s.svc, s.session, s.nodeID
	return func() tea.Msg {
		m, err := svc.BeginModule(ctx, session, nodeID)
		return moduleReadyMsg{Module: m, Err: err}
	}
}

func (s *Screen) submit() tea.Cmd {
	answers := make([]int, len(s.items))
	for i, it := range s.items {
		answers[i] = it.Chosen
	}
	ctx, svc, session := s.ctx, s.svc, s.session
	return func() tea.Msg {
		r, err := svc.Submit(ctx, session, answers)
		return submittedMsg{Report: r, Err: err}
	}
}

func (s *Screen) Title() string {
	if s.module != nil {
		return s.module.Concept.Label
	}
	return "Module"
}

func (s *Screen) KeyHints() []layout.KeyHint {
	switch {
	case s.errMsg != "":
		return []layout.KeyHint{{Key: "any key", Description: "Back"}}
	case s.phase == phaseLecture:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Scroll"},
			{Key: "Enter", Description: "Start quiz"},
			{Key: "Esc", Description: "Back"},
		}
	case s.phase == phaseQuiz:
		return []layout.KeyHint{
			{Key: "1-4", Description: "Answer"},
			{Key: "←→", Description: "Question"},
			{Key: "S", Description: "Submit"},
			{Key: "Esc", Description: "Abandon"},
		}
	case s.phase == phaseResult:
		return []layout.KeyHint{{Key: "any key", Description: "Concept map"}}
	}
	return nil
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case moduleReadyMsg:
		return s.handleReady(msg)
	case submittedMsg:
		return s.handleSubmitted(msg)
	case spinner.TickMsg:
		if s.phase != phaseLoading && s.phase != phaseSubmitting {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd
	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *Screen) handleReady(msg moduleReadyMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.errMsg = msg.Err.Error()
		return s, nil
	}
	s.module = msg.Module
	s.items = make([]components.MultiChoice, len(msg.Module.Content.Items))
	for i, it := range msg.Module.Content.Items {
		s.items[i] = components.NewMultiChoice(it.Question, it.Options, it.CorrectOptionIndex, it.Explanation)
	}
	s.lecture.SoftWrap = true
	s.lecture.SetContent(renderLecture(s.module, s.svc.Pipeline().Latencies()))
	s.phase = phaseLecture
	return s, nil
}

func (s *Screen) handleSubmitted(msg submittedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.phase = phaseQuiz
		s.quizNote = msg.Err.Error()
		return s, nil
	}
	s.report = msg.Report
	for i := range s.items {
		s.items[i].Revealed = true
	}
	s.phase = phaseResult
	return s, nil
}

func (s *Screen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if s.errMsg != "" || s.phase == phaseResult {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}

	key := msg.String()
	switch s.phase {
	case phaseLecture:
		if key == "enter" {
			s.phase = phaseQuiz
			return s, nil
		}
		var cmd tea.Cmd
		s.lecture, cmd = s.lecture.Update(msg)
		return s, cmd

	case phaseQuiz:
		if len(s.items) == 0 {
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		switch key {
		case "left", "h", "p":
			if s.current > 0 {
				s.current--
			}
			return s, nil
		case "right", "l", "n", "tab":
			if s.current < len(s.items)-1 {
				s.current++
			}
			return s, nil
		case "s":
			if unanswered := s.unanswered(); unanswered > 0 {
				s.quizNote = pluralQuestions(unanswered) + " still unanswered."
				return s, nil
			}
			s.quizNote = ""
			s.phase = phaseSubmitting
			return s, tea.Batch(s.spinner.Tick, s.submit())
		}
		var cmd tea.Cmd
		before := s.items[s.current].Chosen
		s.items[s.current], cmd = s.items[s.current].Update(msg)
		// Advance after a fresh answer.
		if before < 0 && s.items[s.current].Answered() && s.current < len(s.items)-1 {
			s.current++
		}
		return s, cmd
	}
	return s, nil
}

func (s *Screen) unanswered() int {
	n := 0
	for _, it := range s.items {
		if !it.Answered() {
			n++
		}
	}
	return n
}

func (s *Screen) View(width, height int) string {
	if s.errMsg != "" {
		return renderError(width, height, s.errMsg)
	}
	switch s.phase {
	case phaseLoading:
		return renderWaiting(width, height, s.spinner.View(), "Preparing lecture, quiz and notation…")
	case phaseSubmitting:
		return renderWaiting(width, height, s.spinner.View(), "Grading and updating your curriculum…")
	case phaseLecture:
		s.lecture.SetWidth(max(width-4, 20))
		s.lecture.SetHeight(max(height-2, 3))
		return s.lecture.View()
	case phaseQuiz:
		return s.renderQuiz(width, height)
	case phaseResult:
		return s.renderResult(width, height)
	}
	return ""
}

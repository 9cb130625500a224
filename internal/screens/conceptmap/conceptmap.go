// Package conceptmap is the concept map screen: every node of the
// learner's graph with its status, and a cursor to start an available one.
package conceptmap

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/pathwise/internal/curriculum"
	"github.com/abhisek/pathwise/internal/router"
	"github.com/abhisek/pathwise/internal/screen"
	"github.com/abhisek/pathwise/internal/screens/journal"
	"github.com/abhisek/pathwise/internal/screens/module"
	"github.com/abhisek/pathwise/internal/tutor"
	"github.com/abhisek/pathwise/internal/ui/components"
	"github.com/abhisek/pathwise/internal/ui/layout"
	"github.com/abhisek/pathwise/internal/ui/theme"
)

// Screen lists the concepts of the session's graph.
type Screen struct {
	ctx     context.Context
	svc     *tutor.Service
	session *tutor.Session

	rows         []curriculum.NodeView
	cursor       int
	scrollOffset int
	notice       string
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)
var _ screen.Refresher = (*Screen)(nil)

// New creates the concept map for session.
func New(ctx context.Context, svc *tutor.Service, session *tutor.Session) *Screen {
	s := &Screen{ctx: ctx, svc: svc, session: session}
	s.reload()
	return s
}

func (s *Screen) Init() tea.Cmd {
	return nil
}

// Refresh reloads the rows after a module finished.
func (s *Screen) Refresh() tea.Cmd {
	s.reload()
	return nil
}

func (s *Screen) reload() {
	s.rows = s.session.Graph.Nodes()
	s.notice = ""
	if s.session.Graph.AllCompleted() {
		s.notice = "Curriculum complete. Every concept has been passed."
	}
	if s.cursor >= len(s.rows) {
		s.cursor = 0
	}
	// Land on the first available concept.
	for i, r := range s.rows {
		if r.Status == curriculum.StatusAvailable {
			s.cursor = i
			break
		}
	}
}

func (s *Screen) Title() string {
	return "Concept Map"
}

func (s *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Start module"},
		{Key: "L", Description: "Session log"},
		{Key: "Q", Description: "Quit"},
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}

	switch kmsg.String() {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(s.rows)-1 {
			s.cursor++
		}
	case "enter":
		return s, s.startModule()
	case "l":
		log := journal.New(s.session, s.svc.Pipeline().Latencies())
		return s, func() tea.Msg { return router.PushScreenMsg{Screen: log} }
	case "q":
		return s, tea.Quit
	}
	return s, nil
}

func (s *Screen) startModule() tea.Cmd {
	if len(s.rows) == 0 {
		return nil
	}
	r := s.rows[s.cursor]
	if r.Status != curriculum.StatusAvailable {
		s.notice = fmt.Sprintf("%q is %s.", r.Label, strings.ToLower(r.Status.Label()))
		return nil
	}
	s.notice = ""
	m := module.New(s.ctx, s.svc, s.session, r.ID)
	return func() tea.Msg { return router.PushScreenMsg{Screen: m} }
}

func (s *Screen) View(width, height int) string {
	var b strings.Builder

	title := theme.Title.Render(s.session.Topic)
	if s.session.Level != "" {
		title += theme.Subtitle.Render("  (" + s.session.Level + ")")
	}
	b.WriteString("  " + title + "\n\n")

	done := len(s.session.Graph.CompletedIDs())
	bar := components.Progress{Label: "Progress", Done: done, Total: len(s.rows), Width: min(width-4, 60)}
	b.WriteString("  " + bar.View() + "\n\n")

	listHeight := height - 6
	if s.notice != "" {
		listHeight -= 2
	}
	s.adjustScroll(listHeight)

	for i := s.scrollOffset; i < len(s.rows) && i < s.scrollOffset+listHeight; i++ {
		b.WriteString(s.renderRow(s.rows[i], i == s.cursor, width))
		b.WriteString("\n")
	}

	if s.notice != "" {
		b.WriteString("\n  " + theme.Warning.Render(s.notice) + "\n")
	}
	return b.String()
}

func (s *Screen) adjustScroll(height int) {
	if height <= 0 {
		return
	}
	if s.cursor < s.scrollOffset {
		s.scrollOffset = s.cursor
	}
	if s.cursor >= s.scrollOffset+height {
		s.scrollOffset = s.cursor - height + 1
	}
}

func (s *Screen) renderRow(r curriculum.NodeView, selected bool, width int) string {
	labelWidth := 10
	nameWidth := max(width-4-3-labelWidth-4, 10)

	name := r.Label
	if lipgloss.Width(name) > nameWidth {
		name = string([]rune(name)[:nameWidth-1]) + "…"
	}

	style := theme.StatusStyle(r.Status)
	cursor := "  "
	if selected {
		style = theme.Selected
		cursor = "▸ "
	}

	return fmt.Sprintf("  %s%s %s  %s",
		cursor,
		r.Status.Icon(),
		style.Render(fmt.Sprintf("%-*s", nameWidth, name)),
		theme.StatusStyle(r.Status).Render(fmt.Sprintf("%*s", labelWidth, r.Status.Label())),
	)
}

// Package journal shows the session log and how long each concept's
// content took to generate.
package journal

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/pathwise/internal/pipeline"
	"github.com/abhisek/pathwise/internal/router"
	"github.com/abhisek/pathwise/internal/screen"
	"github.com/abhisek/pathwise/internal/tutor"
	"github.com/abhisek/pathwise/internal/ui/layout"
	"github.com/abhisek/pathwise/internal/ui/theme"
)

// Screen displays the session log.
type Screen struct {
	session   *tutor.Session
	latencies *pipeline.Latencies
	offset    int
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)

// New creates a journal screen.
func New(session *tutor.Session, latencies *pipeline.Latencies) *Screen {
	return &Screen{session: session, latencies: latencies}
}

func (s *Screen) Init() tea.Cmd {
	return nil
}

func (s *Screen) Title() string {
	return "Session Log"
}

func (s *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch kmsg.String() {
	case "esc", "q":
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	case "up", "k":
		if s.offset > 0 {
			s.offset--
		}
	case "down", "j":
		if s.offset < len(s.lines())-1 {
			s.offset++
		}
	}
	return s, nil
}

func (s *Screen) lines() []string {
	var lines []string

	entries := s.session.Log()
	if len(entries) == 0 {
		lines = append(lines, theme.Hint.Render("Nothing logged yet."))
	}
	for _, e := range entries {
		lines = append(lines, theme.Subtitle.Render(e.Time.Format("15:04:05"))+"  "+theme.Body.Render(e.Message))
	}

	all := s.latencies.All()
	if len(all) > 0 {
		lines = append(lines, "", lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render("Generation latency"))
	}
	for _, l := range all {
		label := l.ConceptID
		if n, ok := s.session.Graph.Node(l.ConceptID); ok {
			label = n.Label
		}
		lines = append(lines, fmt.Sprintf("%-40s %6.1fs", label, l.Duration.Seconds()))
	}
	return lines
}

func (s *Screen) View(width, height int) string {
	lines := s.lines()
	if s.offset >= len(lines) {
		s.offset = max(len(lines)-1, 0)
	}
	visible := lines[s.offset:]
	if h := height - 2; h > 0 && len(visible) > h {
		visible = visible[:h]
	}

	var b strings.Builder
	b.WriteString("\n")
	for _, l := range visible {
		b.WriteString("  " + l + "\n")
	}
	return b.String()
}

// Package setup is the first screen of a new session: the learner picks an
// academic level and the curriculum graph is generated for the topic.
package setup

import (
	"context"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/pathwise/internal/screen"
	"github.com/abhisek/pathwise/internal/tutor"
	"github.com/abhisek/pathwise/internal/ui/components"
	"github.com/abhisek/pathwise/internal/ui/layout"
	"github.com/abhisek/pathwise/internal/ui/theme"
)

// Levels offered by the picker.
var Levels = []string{"Undergraduate", "Graduate", "PhD"}

// StartedMsg is emitted once the session's graph is ready.
type StartedMsg struct {
	Session *tutor.Session
}

type chooseMsg struct{ level string }

type generatedMsg struct {
	session *tutor.Session
	err     error
}

// Screen asks for the level and generates the graph.
type Screen struct {
	ctx     context.Context
	svc     *tutor.Service
	topic   string
	menu    components.Menu
	spinner spinner.Model
	busy    bool
	errMsg  string
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)

// New creates the setup screen for topic. A non-empty level is
// preselected.
func New(ctx context.Context, svc *tutor.Service, topic, level string) *Screen {
	items := make([]components.MenuItem, len(Levels))
	for i, l := range Levels {
		items[i] = components.MenuItem{Label: l, Action: func() tea.Cmd {
			return func() tea.Msg { return chooseMsg{level: l} }
		}}
	}
	menu := components.NewMenu(items)
	for i, l := range Levels {
		if strings.EqualFold(l, level) {
			menu.Selected = i
		}
	}
	return &Screen{
		ctx:     ctx,
		svc:     svc,
		topic:   topic,
		menu:    menu,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(theme.Selected)),
	}
}

func (s *Screen) Init() tea.Cmd {
	return nil
}

func (s *Screen) Title() string {
	return "New Curriculum"
}

func (s *Screen) KeyHints() []layout.KeyHint {
	if s.busy {
		return nil
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Level"},
		{Key: "Enter", Description: "Generate"},
	}
}

func (s *Screen) generate(level string) tea.Cmd {
	ctx, svc, topic := s.ctx, s.svc, s.topic
	return func() tea.Msg {
		session, err := svc.Start(ctx, topic, level, false)
		return generatedMsg{session: session, err: err}
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case chooseMsg:
		s.busy = true
		s.errMsg = ""
		return s, tea.Batch(s.spinner.Tick, s.generate(msg.level))

	case generatedMsg:
		s.busy = false
		if msg.err != nil {
			s.errMsg = msg.err.Error()
			return s, nil
		}
		session := msg.session
		return s, func() tea.Msg { return StartedMsg{Session: session} }

	case spinner.TickMsg:
		if !s.busy {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd
	}

	if s.busy {
		return s, nil
	}
	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *Screen) View(width, height int) string {
	var sections []string

	sections = append(sections,
		lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("P A T H W I S E"),
		"",
		theme.Body.Render("Topic: ")+theme.Title.Render(s.topic),
		"",
	)

	if s.busy {
		sections = append(sections, theme.Subtitle.Render(s.spinner.View()+" Designing your curriculum…"))
	} else {
		sections = append(sections, theme.Subtitle.Render("Choose your level"), "", s.menu.View())
	}
	if s.errMsg != "" {
		sections = append(sections, lipgloss.NewStyle().Foreground(theme.Error).Width(min(width-8, 70)).Render(s.errMsg))
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.Join(sections, "\n"))
}

package app

import (
	"context"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/pathwise/internal/router"
	"github.com/abhisek/pathwise/internal/screen"
	"github.com/abhisek/pathwise/internal/screens/conceptmap"
	"github.com/abhisek/pathwise/internal/screens/setup"
	"github.com/abhisek/pathwise/internal/tutor"
	"github.com/abhisek/pathwise/internal/ui/layout"
)

// Options configures the interactive program. Without a Session the
// program opens on the level picker for Topic.
type Options struct {
	Service *tutor.Service
	Session *tutor.Session
	Topic   string
	Level   string
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	ctx     context.Context
	svc     *tutor.Service
	router  *router.Router
	session *tutor.Session
	width   int
	height  int
}

// newAppModel creates a new AppModel showing the session's concept map,
// or the level picker when there is no session yet.
func newAppModel(ctx context.Context, opts Options) AppModel {
	m := AppModel{ctx: ctx, svc: opts.Service, session: opts.Session}
	if opts.Session != nil {
		m.router = router.New(conceptmap.New(ctx, opts.Service, opts.Session))
	} else {
		m.router = router.New(setup.New(ctx, opts.Service, opts.Topic, opts.Level))
	}
	return m
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case setup.StartedMsg:
		m.session = msg.Session
		return m, m.router.Replace(conceptmap.New(m.ctx, m.svc, msg.Session))

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) status() layout.Status {
	if m.session == nil {
		return layout.Status{}
	}
	g := m.session.Graph
	return layout.Status{
		Topic:     m.session.Topic,
		Completed: len(g.CompletedIDs()),
		Total:     g.Len(),
	}
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.status(), m.width)

	var footerHints []layout.KeyHint
	if hp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = hp.KeyHints()
	}
	footerHints = append(footerHints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program and blocks until it exits or ctx is
// cancelled. It returns the session the program ended with, which is nil
// if none was started.
func Run(ctx context.Context, opts Options) (*tutor.Session, error) {
	p := tea.NewProgram(newAppModel(ctx, opts), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return nil, err
	}
	if m, ok := final.(AppModel); ok {
		return m.session, nil
	}
	return opts.Session, nil
}

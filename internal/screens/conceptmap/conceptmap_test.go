package conceptmap

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/pathwise/internal/curriculum"
	"github.com/abhisek/pathwise/internal/generation"
	"github.com/abhisek/pathwise/internal/pipeline"
	"github.com/abhisek/pathwise/internal/remediation"
	"github.com/abhisek/pathwise/internal/router"
	"github.com/abhisek/pathwise/internal/screens/journal"
	"github.com/abhisek/pathwise/internal/screens/module"
	"github.com/abhisek/pathwise/internal/tutor"
)

type discardStore struct{}

func (discardStore) Load(context.Context, string) (*curriculum.Snapshot, error) { return nil, nil }
func (discardStore) Save(context.Context, string, curriculum.Snapshot) error  { return nil }
func (discardStore) RecentAttempts(context.Context, string, int) ([]curriculum.AttemptRecord, error) {
	return nil, nil
}
func (discardStore) AppendAttempt(context.Context, curriculum.AttemptRecord) error { return nil }

func newScreen(t *testing.T) *Screen {
	t.Helper()
	gw := generation.NewLLMGateway(generation.NewOfflineProvider(), generation.DefaultConfig(), nil)
	svc := tutor.NewService(gw,
		pipeline.New(gw, pipeline.DefaultConfig(), nil, nil),
		remediation.New(gw, remediation.DefaultConfig(), nil, nil),
		discardStore{}, tutor.Options{UserID: "ada"}, nil)
	session, err := svc.Start(t.Context(), "Graph Theory", "Graduate", false)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	return New(t.Context(), svc, session)
}

func key(s string) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: []rune(s)[0], Text: s}
}

func TestCursorStartsOnAvailableConcept(t *testing.T) {
	s := newScreen(t)
	if got := s.rows[s.cursor]; got.Status != curriculum.StatusAvailable {
		t.Errorf("cursor on %s (%v)", got.ID, got.Status)
	}
}

func TestEnterOnLockedConceptSetsNotice(t *testing.T) {
	s := newScreen(t)
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})

	if cmd != nil {
		t.Error("locked concept should not start a module")
	}
	if !strings.Contains(s.notice, "locked") {
		t.Errorf("notice = %q", s.notice)
	}
}

func TestEnterOnAvailableConceptPushesModule(t *testing.T) {
	s := newScreen(t)
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected push command")
	}
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected PushScreenMsg")
	}
	if _, ok := push.Screen.(*module.Screen); !ok {
		t.Errorf("pushed %T", push.Screen)
	}
}

func TestLogKeyPushesJournal(t *testing.T) {
	s := newScreen(t)
	_, cmd := s.Update(key("l"))
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected PushScreenMsg")
	}
	if _, ok := push.Screen.(*journal.Screen); !ok {
		t.Errorf("pushed %T", push.Screen)
	}
}

func TestRefreshPicksUpCompletion(t *testing.T) {
	s := newScreen(t)
	for _, id := range []string{"c1", "c2", "c3", "c4", "c5"} {
		s.session.Graph.MarkCompleted(id)
	}
	s.Refresh()

	if !strings.Contains(s.notice, "Curriculum complete") {
		t.Errorf("notice = %q", s.notice)
	}
	if !strings.Contains(s.View(100, 30), "Graph Theory") {
		t.Error("view should show the topic")
	}
}

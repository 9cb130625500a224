package setup

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/pathwise/internal/curriculum"
	"github.com/abhisek/pathwise/internal/generation"
	"github.com/abhisek/pathwise/internal/llm"
	"github.com/abhisek/pathwise/internal/pipeline"
	"github.com/abhisek/pathwise/internal/remediation"
	"github.com/abhisek/pathwise/internal/tutor"
)

type discardStore struct{}

func (discardStore) Load(context.Context, string) (*curriculum.Snapshot, error) { return nil, nil }
func (discardStore) Save(context.Context, string, curriculum.Snapshot) error  { return nil }
func (discardStore) RecentAttempts(context.Context, string, int) ([]curriculum.AttemptRecord, error) {
	return nil, nil
}
func (discardStore) AppendAttempt(context.Context, curriculum.AttemptRecord) error { return nil }

func newService(provider llm.Provider) *tutor.Service {
	gw := generation.NewLLMGateway(provider, generation.DefaultConfig(), nil)
	return tutor.NewService(gw,
		pipeline.New(gw, pipeline.DefaultConfig(), nil, nil),
		remediation.New(gw, remediation.DefaultConfig(), nil, nil),
		discardStore{}, tutor.Options{UserID: "ada"}, nil)
}

func TestPreselectsLevel(t *testing.T) {
	s := New(t.Context(), newService(generation.NewOfflineProvider()), "Topology", "graduate")
	if s.menu.Selected != 1 {
		t.Errorf("expected Graduate preselected, got %d", s.menu.Selected)
	}
}

func TestEnterGeneratesAndEmitsStarted(t *testing.T) {
	s := New(t.Context(), newService(generation.NewOfflineProvider()), "Topology", "PhD")

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected choose command")
	}
	choose, ok := cmd().(chooseMsg)
	if !ok || choose.level != "PhD" {
		t.Fatalf("unexpected msg %#v", choose)
	}

	s.Update(choose)
	if !s.busy {
		t.Error("expected busy while generating")
	}

	_, cmd = s.Update(s.generate(choose.level)())
	started, ok := cmd().(StartedMsg)
	if !ok {
		t.Fatal("expected StartedMsg")
	}
	if started.Session.Level != "PhD" || started.Session.Graph.Len() != 5 {
		t.Errorf("session = %+v", started.Session)
	}
}

func TestGenerationErrorIsShown(t *testing.T) {
	failing := llm.NewRoutedMockProvider(func(llm.Request) llm.MockResponse {
		return llm.MockResponse{Err: &llm.ErrProviderUnavailable{}}
	})
	s := New(t.Context(), newService(failing), "Topology", "")

	_, cmd := s.Update(s.generate("Graduate")())
	if cmd != nil {
		t.Error("a failed generation should not emit StartedMsg")
	}
	if s.errMsg == "" || s.busy {
		t.Errorf("errMsg = %q busy = %v", s.errMsg, s.busy)
	}
	if !strings.Contains(s.View(100, 30), "Choose your level") {
		t.Error("menu should be shown again after an error")
	}
}

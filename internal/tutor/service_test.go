package tutor

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/pathwise/internal/curriculum"
	"github.com/abhisek/pathwise/internal/generation"
	"github.com/abhisek/pathwise/internal/llm"
	"github.com/abhisek/pathwise/internal/pipeline"
	"github.com/abhisek/pathwise/internal/remediation"
)

// memoryGateway is an in-memory SessionGateway. When broken is set every
// call fails.
type memoryGateway struct {
	mu       sync.Mutex
	snaps    map[string][]curriculum.Snapshot
	attempts []curriculum.AttemptRecord
	broken   bool
	limits   []int
	loads    int
}

func newMemoryGateway() *memoryGateway {
	return &memoryGateway{snaps: make(map[string][]curriculum.Snapshot)}
}

var errBroken = errors.New("store offline")

func (m *memoryGateway) Load(ctx context.Context, key string) (*curriculum.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	if m.broken {
		return nil, errBroken
	}
	saved := m.snaps[key]
	if len(saved) == 0 {
		return nil, nil
	}
	snap := saved[len(saved)-1]
	return &snap, nil
}

func (m *memoryGateway) Save(ctx context.Context, key string, snap curriculum.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.broken {
		return errBroken
	}
	m.snaps[key] = append(m.snaps[key], snap)
	return nil
}

func (m *memoryGateway) RecentAttempts(ctx context.Context, topic string, limit int) ([]curriculum.AttemptRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.limits = append(m.limits, limit)
	if m.broken {
		return nil, errBroken
	}
	var out []curriculum.AttemptRecord
	for i := len(m.attempts) - 1; i >= 0 && len(out) < limit; i-- {
		if m.attempts[i].Topic == topic {
			out = append(out, m.attempts[i])
		}
	}
	return out, nil
}

func (m *memoryGateway) AppendAttempt(ctx context.Context, rec curriculum.AttemptRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.broken {
		return errBroken
	}
	m.attempts = append(m.attempts, rec)
	return nil
}

func (m *memoryGateway) saves(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.snaps[key])
}

func newOfflineService(store SessionGateway) *Service {
	gw := generation.NewLLMGateway(generation.NewOfflineProvider(), generation.DefaultConfig(), nil)
	return NewService(gw,
		pipeline.New(gw, pipeline.DefaultConfig(), nil, nil),
		remediation.New(gw, remediation.DefaultConfig(), nil, nil),
		store, Options{UserID: "ada"}, nil)
}

// offline quizzes always have option 0 correct.
func answers(correct int) []int {
	out := make([]int, generation.QuizSize)
	for i := range out {
		if i >= correct {
			out[i] = 1
		}
	}
	return out
}

func TestSessionKey(t *testing.T) {
	assert.Equal(t, "ada/lambda_calculus", SessionKey("ada", "Lambda Calculus"))
	assert.Equal(t, "ada/tcp_ip_basics", SessionKey("ada", "  TCP/IP Basics "))
}

func TestStart_BuildsAndSavesGraph(t *testing.T) {
	store := newMemoryGateway()
	svc := newOfflineService(store)

	s, err := svc.Start(t.Context(), "Lambda Calculus", "undergraduate", false)
	require.NoError(t, err)

	assert.Equal(t, "ada/lambda_calculus", s.Key)
	assert.False(t, s.Resumed)
	assert.Equal(t, 5, s.Graph.Len())
	assert.Equal(t, "undergraduate", s.Graph.Context())
	assert.Equal(t, []curriculum.NodeView{{ID: "c1", Label: "Foundations", Status: curriculum.StatusAvailable}},
		s.Graph.AvailableNodes())
	assert.Equal(t, 1, store.saves(s.Key))
	require.Len(t, s.Log(), 1)
	assert.Contains(t, s.Log()[0].Message, "Graph initialized")
}

func TestStart_ResumeRestoresSavedGraph(t *testing.T) {
	store := newMemoryGateway()
	svc := newOfflineService(store)

	first, err := svc.Start(t.Context(), "Lambda Calculus", "undergraduate", false)
	require.NoError(t, err)
	_, err = svc.BeginModule(t.Context(), first, "c1")
	require.NoError(t, err)
	_, err = svc.Submit(t.Context(), first, answers(10))
	require.NoError(t, err)

	resumed, err := svc.Start(t.Context(), "lambda calculus", "", true)
	require.NoError(t, err)
	assert.True(t, resumed.Resumed)
	assert.Equal(t, "undergraduate", resumed.Level)
	assert.Equal(t, []string{"c1"}, resumed.Graph.CompletedIDs())
	st, _ := resumed.Graph.StatusOf("c2")
	assert.Equal(t, curriculum.StatusAvailable, st)
}

func TestStart_ResumeWithoutSnapshotGeneratesNewGraph(t *testing.T) {
	store := newMemoryGateway()
	svc := newOfflineService(store)

	s, err := svc.Start(t.Context(), "Topology", "graduate", true)
	require.NoError(t, err)
	assert.False(t, s.Resumed)
	assert.Equal(t, 5, s.Graph.Len())
}

func TestResume_NothingSaved(t *testing.T) {
	store := newMemoryGateway()
	svc := newOfflineService(store)

	s, err := svc.Resume(t.Context(), "Topology")
	require.NoError(t, err)
	assert.Nil(t, s)
	assert.Equal(t, 1, store.loads)
	assert.Zero(t, store.saves("ada/topology"), "resume never generates")
}

func TestResume_LoadsSnapshotOnce(t *testing.T) {
	store := newMemoryGateway()
	svc := newOfflineService(store)
	_, err := svc.Start(t.Context(), "Topology", "graduate", false)
	require.NoError(t, err)
	store.loads = 0

	s, err := svc.Resume(t.Context(), "Topology")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.True(t, s.Resumed)
	assert.Equal(t, "graduate", s.Level)
	assert.Equal(t, 1, store.loads)
	require.Len(t, s.Log(), 1)
	assert.Contains(t, s.Log()[0].Message, "Session resumed")
}

func TestResume_StoreError(t *testing.T) {
	store := newMemoryGateway()
	store.broken = true
	svc := newOfflineService(store)

	s, err := svc.Resume(t.Context(), "Topology")
	assert.ErrorIs(t, err, errBroken)
	assert.Nil(t, s)
}

func TestStart_GenerationFailure(t *testing.T) {
	provider := llm.NewMockProvider(llm.MockResponse{Err: errors.New("quota exceeded")})
	gw := generation.NewLLMGateway(provider, generation.DefaultConfig(), nil)
	svc := NewService(gw, pipeline.New(gw, pipeline.DefaultConfig(), nil, nil),
		remediation.New(gw, remediation.DefaultConfig(), nil, nil), newMemoryGateway(), Options{UserID: "ada"}, nil)

	_, err := svc.Start(t.Context(), "Topology", "graduate", false)

	var gerr *GraphError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, "Topology", gerr.Topic)
}

func TestStart_RejectsCyclicProposal(t *testing.T) {
	cyclic := `{"nodes":[{"id":"a","label":"A"},{"id":"b","label":"B"},{"id":"c","label":"C"},{"id":"d","label":"D"},{"id":"e","label":"E"}],
		"edges":[{"source":"a","target":"b"},{"source":"b","target":"c"},{"source":"c","target":"a"}]}`
	provider := llm.NewMockProvider(llm.MockResponse{Content: []byte(cyclic)})
	gw := generation.NewLLMGateway(provider, generation.DefaultConfig(), nil)
	store := newMemoryGateway()
	svc := NewService(gw, pipeline.New(gw, pipeline.DefaultConfig(), nil, nil),
		remediation.New(gw, remediation.DefaultConfig(), nil, nil), store, Options{UserID: "ada"}, nil)

	_, err := svc.Start(t.Context(), "Loops", "intro", false)

	var gerr *GraphError
	require.ErrorAs(t, err, &gerr)
	assert.Contains(t, err.Error(), "cycle")
	assert.Zero(t, store.saves("ada/loops"))
}

func TestBeginModule_RequiresAvailableNode(t *testing.T) {
	svc := newOfflineService(newMemoryGateway())
	s, err := svc.Start(t.Context(), "Lambda Calculus", "intro", false)
	require.NoError(t, err)

	_, err = svc.BeginModule(t.Context(), s, "c2")
	assert.ErrorIs(t, err, ErrNodeUnavailable)

	_, err = svc.BeginModule(t.Context(), s, "missing")
	assert.ErrorIs(t, err, ErrNodeUnavailable)
	assert.Nil(t, s.Current)
}

func TestBeginModule_RunsPipelineWithHistoryWindow(t *testing.T) {
	store := newMemoryGateway()
	svc := newOfflineService(store)
	s, err := svc.Start(t.Context(), "Lambda Calculus", "intro", false)
	require.NoError(t, err)

	m, err := svc.BeginModule(t.Context(), s, "c1")
	require.NoError(t, err)

	assert.Same(t, m, s.Current)
	assert.Equal(t, pipeline.Concept{ID: "c1", Label: "Foundations"}, m.Concept)
	assert.Len(t, m.Content.Items, generation.QuizSize)
	assert.Contains(t, m.Content.Explanation, "Foundations")
	assert.Equal(t, []int{DefaultHistoryLimit}, store.limits)
	_, ok := svc.Pipeline().Latencies().Get("c1")
	assert.True(t, ok)
	assert.Equal(t, "Started module: Foundations", s.Log()[len(s.Log())-1].Message)
}

func TestSubmit_PassCompletesNode(t *testing.T) {
	store := newMemoryGateway()
	svc := newOfflineService(store)
	s, err := svc.Start(t.Context(), "Lambda Calculus", "intro", false)
	require.NoError(t, err)
	_, err = svc.BeginModule(t.Context(), s, "c1")
	require.NoError(t, err)

	report, err := svc.Submit(t.Context(), s, answers(7))
	require.NoError(t, err)

	assert.Equal(t, remediation.VerdictPass, report.Decision.Verdict)
	assert.Equal(t, "Module Passed! Score: 70% (7/10)", report.Message())
	assert.Nil(t, s.Current)
	st, _ := s.Graph.StatusOf("c1")
	assert.Equal(t, curriculum.StatusCompleted, st)

	require.Len(t, store.attempts, 1)
	rec := store.attempts[0]
	assert.Equal(t, curriculum.OutcomePass, rec.Outcome)
	assert.Equal(t, "c1", rec.NodeID)
	assert.Equal(t, s.Key, rec.SessionKey)
	assert.Equal(t, 2, store.saves(s.Key))
}

func TestSubmit_FailInjectsRemediation(t *testing.T) {
	store := newMemoryGateway()
	svc := newOfflineService(store)
	s, err := svc.Start(t.Context(), "Lambda Calculus", "intro", false)
	require.NoError(t, err)
	_, err = svc.BeginModule(t.Context(), s, "c1")
	require.NoError(t, err)

	report, err := svc.Submit(t.Context(), s, answers(6))
	require.NoError(t, err)

	assert.Equal(t, remediation.VerdictFailWithRemediation, report.Decision.Verdict)
	assert.Equal(t, "Module Failed. Score: 60% (6/10). Needs Remediation.", report.Message())
	assert.Equal(t, "remedial_Foundations", report.Decision.RemedialID)

	st, _ := s.Graph.StatusOf("c1")
	assert.Equal(t, curriculum.StatusLocked, st)
	st, _ = s.Graph.StatusOf("remedial_Foundations")
	assert.Equal(t, curriculum.StatusAvailable, st)

	assert.Equal(t, "Remediation injected: Review of Foundations", s.Log()[len(s.Log())-1].Message)
	require.Len(t, store.attempts, 1)
	assert.Equal(t, curriculum.OutcomeFail, store.attempts[0].Outcome)
	assert.InDelta(t, 0.6, store.attempts[0].Score, 1e-9)
}

func TestSubmit_FailureBiasesNextModule(t *testing.T) {
	store := newMemoryGateway()
	svc := newOfflineService(store)
	s, err := svc.Start(t.Context(), "Lambda Calculus", "intro", false)
	require.NoError(t, err)
	_, err = svc.BeginModule(t.Context(), s, "c1")
	require.NoError(t, err)
	_, err = svc.Submit(t.Context(), s, answers(0))
	require.NoError(t, err)

	m, err := svc.BeginModule(t.Context(), s, "remedial_Foundations")
	require.NoError(t, err)
	assert.Equal(t, generation.BiasRemedial, m.Content.Bias.Mode)
	assert.Equal(t, []string{"c1"}, m.Content.Bias.FailedNodes)
}

func TestSubmit_WithoutModule(t *testing.T) {
	svc := newOfflineService(newMemoryGateway())
	s, err := svc.Start(t.Context(), "Lambda Calculus", "intro", false)
	require.NoError(t, err)

	_, err = svc.Submit(t.Context(), s, answers(10))
	assert.ErrorIs(t, err, ErrNoModule)
}

func TestSubmit_NoAssessmentKeepsModule(t *testing.T) {
	svc := newOfflineService(newMemoryGateway())
	s, err := svc.Start(t.Context(), "Lambda Calculus", "intro", false)
	require.NoError(t, err)
	s.Current = &Module{
		Concept: pipeline.Concept{ID: "c1", Label: "Foundations"},
		Content: &pipeline.Result{Items: []generation.QuizItem{}},
	}

	_, err = svc.Submit(t.Context(), s, nil)
	assert.ErrorIs(t, err, ErrNoAssessment)
	assert.NotNil(t, s.Current)
}

func TestPersistenceFailuresAreSwallowed(t *testing.T) {
	store := newMemoryGateway()
	store.broken = true
	svc := newOfflineService(store)

	s, err := svc.Start(t.Context(), "Lambda Calculus", "intro", true)
	require.NoError(t, err)
	_, err = svc.BeginModule(t.Context(), s, "c1")
	require.NoError(t, err)
	report, err := svc.Submit(t.Context(), s, answers(10))
	require.NoError(t, err)

	assert.True(t, report.Decision.Verdict.Passed())
	st, _ := s.Graph.StatusOf("c1")
	assert.Equal(t, curriculum.StatusCompleted, st)
}

func TestDescribeAudit(t *testing.T) {
	low := DescribeAudit(generation.AuditReport{RiskScore: 0.1, FlaggedReason: "ok"})
	assert.False(t, low.Warning)
	assert.Equal(t, "Content confidence: 90%", low.Text)

	high := DescribeAudit(generation.AuditReport{RiskScore: 0.45, FlaggedReason: "dates are wrong"})
	assert.True(t, high.Warning)
	assert.Contains(t, high.Text, "dates are wrong")

	edge := DescribeAudit(generation.AuditReport{RiskScore: 0.3})
	assert.False(t, edge.Warning)
}

// Package tutor drives a learner through a topic: it hydrates or builds
// the concept graph, runs the content pipeline for a chosen concept, and
// applies the remediation policy to submitted answers, persisting after
// every change.
package tutor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/pathwise/internal/curriculum"
	"github.com/abhisek/pathwise/internal/generation"
	"github.com/abhisek/pathwise/internal/logger"
	"github.com/abhisek/pathwise/internal/pipeline"
	"github.com/abhisek/pathwise/internal/remediation"
)

// DefaultHistoryLimit is the size of the attempt window that biases
// content generation.
const DefaultHistoryLimit = 10

var (
	// ErrNodeUnavailable is returned when a module is started on a node that
	// is locked, completed or unknown.
	ErrNodeUnavailable = errors.New("concept is not available")

	// ErrNoModule is returned when answers are submitted outside a module.
	ErrNoModule = errors.New("no module in progress")

	// ErrNoAssessment is returned when the current module has no questions
	// to grade.
	ErrNoAssessment = errors.New("no quiz questions generated for this module")
)

// GraphError reports a curriculum graph that could not be generated or
// failed validation.
type GraphError struct {
	Topic string
	Err   error
}

func (e *GraphError) Error() string {
	return fmt.Sprintf("could not build curriculum for %q: %v", e.Topic, e.Err)
}

func (e *GraphError) Unwrap() error {
	return e.Err
}

// Options configures a Service.
type Options struct {
	UserID       string
	HistoryLimit int
}

// Service runs sessions. It holds no per-session state.
type Service struct {
	gw       generation.Gateway
	pipeline *pipeline.Pipeline
	policy   *remediation.Policy
	store    SessionGateway
	opts     Options
	log      *logger.Logger
}

// NewService wires a service. log may be nil.
func NewService(gw generation.Gateway, p *pipeline.Pipeline, policy *remediation.Policy,
	store SessionGateway, opts Options, log *logger.Logger) *Service {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	return &Service{
		gw:       gw,
		pipeline: p,
		policy:   policy,
		store:    store,
		opts:     opts,
		log:      logger.OrNop(log).Named("tutor"),
	}
}

// Pipeline exposes the content pipeline, e.g. for its latency map.
func (svc *Service) Pipeline() *pipeline.Pipeline {
	return svc.pipeline
}

// Start opens a session for topic. With resume set, the latest saved
// snapshot is restored when one exists; otherwise a new graph is proposed,
// validated and saved.
func (svc *Service) Start(ctx context.Context, topic, level string, resume bool) (*Session, error) {
	if resume {
		s, err := svc.Resume(ctx, topic)
		if err != nil {
			svc.log.Warn("could not load saved session", "topic", topic, "error", err)
		}
		if s != nil {
			return s, nil
		}
	}

	s := &Session{
		Key:    SessionKey(svc.opts.UserID, topic),
		UserID: svc.opts.UserID,
		Topic:  topic,
		Level:  level,
	}
	log := svc.log.With("session", s.Key)

	proposal, failure := svc.gw.ProposeGraph(ctx, topic, level).Get()
	if failure != nil {
		return nil, &GraphError{Topic: topic, Err: failure}
	}
	nodes, edges := proposal.Curriculum()
	if err := curriculum.ValidateProposal(nodes, edges); err != nil {
		return nil, &GraphError{Topic: topic, Err: err}
	}

	s.Graph = curriculum.New()
	s.Graph.Load(nodes, edges, topic, level)
	s.record("Graph initialized: %d concepts", s.Graph.Len())
	log.Info("graph initialized", "nodes", s.Graph.Len(), "edges", len(edges))

	svc.persist(ctx, s)
	return s, nil
}

// Resume restores the learner's saved curriculum for topic. It returns a
// nil session when nothing is saved.
func (svc *Service) Resume(ctx context.Context, topic string) (*Session, error) {
	key := SessionKey(svc.opts.UserID, topic)
	snap, err := svc.store.Load(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load session %q: %w", key, err)
	}
	if snap == nil {
		return nil, nil
	}

	s := &Session{
		Key:     key,
		UserID:  svc.opts.UserID,
		Topic:   topic,
		Graph:   curriculum.FromSnapshot(*snap),
		Resumed: true,
	}
	s.Level = s.Graph.Context()
	s.record("Session resumed: %d concepts, %d completed", s.Graph.Len(), len(s.Graph.CompletedIDs()))
	svc.log.Info("session resumed", "session", key, "nodes", s.Graph.Len())
	return s, nil
}

// BeginModule runs the content pipeline for nodeID and makes it the
// session's current module. The node must be available.
func (svc *Service) BeginModule(ctx context.Context, s *Session, nodeID string) (*Module, error) {
	node, ok := s.Graph.Node(nodeID)
	if !ok || node.Status != curriculum.StatusAvailable {
		return nil, fmt.Errorf("%w: %s", ErrNodeUnavailable, nodeID)
	}

	history, err := svc.store.RecentAttempts(ctx, s.Topic, svc.opts.HistoryLimit)
	if err != nil {
		svc.log.Warn("could not read attempt history", "session", s.Key, "error", err)
		history = nil
	}

	concept := pipeline.Concept{ID: node.ID, Label: node.Label}
	s.record("Started module: %s", node.Label)

	m := &Module{
		Concept: concept,
		Content: svc.pipeline.Run(ctx, concept, history),
		History: history,
	}
	s.Current = m
	return m, nil
}

// Report is the result of a submitted module.
type Report struct {
	Concept  pipeline.Concept
	Grade    remediation.Grade
	Decision remediation.Decision
}

// Message is the user-facing summary of the report.
func (r *Report) Message() string {
	pct := r.Decision.Score * 100
	if r.Decision.Verdict.Passed() {
		return fmt.Sprintf("Module Passed! Score: %.0f%% (%d/%d)", pct, r.Grade.Correct, r.Grade.Total)
	}
	return fmt.Sprintf("Module Failed. Score: %.0f%% (%d/%d). Needs Remediation.", pct, r.Grade.Correct, r.Grade.Total)
}

// Submit grades answers for the current module, applies the remediation
// policy, records the attempt and saves the graph. The current module is
// cleared afterwards. With ErrNoAssessment the module stays current.
func (svc *Service) Submit(ctx context.Context, s *Session, answers []int) (*Report, error) {
	m := s.Current
	if m == nil {
		return nil, ErrNoModule
	}
	if len(m.Content.Items) == 0 {
		return nil, ErrNoAssessment
	}

	grade := remediation.GradeAnswers(m.Content.Items, answers)
	decision := svc.policy.Evaluate(ctx, s.Graph, remediation.Attempt{
		NodeID: m.Concept.ID,
		Label:  m.Concept.Label,
		Grade:  grade,
		Audit:  m.Content.Audit,
	})

	outcome := curriculum.OutcomeFail
	if decision.Verdict.Passed() {
		outcome = curriculum.OutcomePass
	}
	if err := svc.store.AppendAttempt(ctx, curriculum.AttemptRecord{
		SessionKey: s.Key,
		NodeID:     m.Concept.ID,
		Topic:      s.Topic,
		Outcome:    outcome,
		Score:      decision.Score,
		Timestamp:  time.Now().UTC(),
	}); err != nil {
		svc.log.Warn("could not record attempt", "session", s.Key, "node", m.Concept.ID, "error", err)
	}

	switch decision.Verdict {
	case remediation.VerdictPass:
		s.record("Completed module: %s", m.Concept.Label)
	case remediation.VerdictFailWithRemediation:
		s.record("Remediation injected: %s", decision.RemedialLabel)
	default:
		s.record("Failed module: %s", m.Concept.Label)
	}

	svc.persist(ctx, s)
	s.Current = nil

	return &Report{Concept: m.Concept, Grade: grade, Decision: decision}, nil
}

func (svc *Service) persist(ctx context.Context, s *Session) {
	if err := svc.store.Save(ctx, s.Key, s.Graph.Snapshot()); err != nil {
		svc.log.Warn("could not save session, progress kept in memory only", "session", s.Key, "error", err)
	}
}

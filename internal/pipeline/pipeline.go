// Package pipeline produces the content bundle for one module attempt.
//
// A run issues three independent generation requests concurrently
// (explanation, assessment, notation), waits for all of them, then audits the
// explanation it got. Every slot of the Result is always populated: a failed
// request leaves its placeholder in place and the failure is recorded, the
// run itself never fails.
package pipeline

import (
	"context"
	"time"

	"github.com/abhisek/pathwise/internal/curriculum"
	"github.com/abhisek/pathwise/internal/generation"
	"github.com/abhisek/pathwise/internal/logger"
	"github.com/abhisek/pathwise/internal/taskgroup"
)

// Stage names one generation request inside a run.
type Stage string

const (
	StageExplain Stage = "explain"
	StageAssess  Stage = "assess"
	StageNotate  Stage = "notate"
	StageAudit   Stage = "audit"

	// StageTotal labels the whole-run duration metric.
	StageTotal Stage = "total"
)

// Placeholders used when a stage fails.
const (
	PlaceholderExplanation = "Error generating content."
	PlaceholderAuditReason = "Evaluation pending."
)

// DefaultTaskTimeout bounds each generation request of the parallel stage
// and the audit request.
const DefaultTaskTimeout = 90 * time.Second

// Config holds pipeline settings.
type Config struct {
	TaskTimeout time.Duration
}

// DefaultConfig returns the default pipeline settings.
func DefaultConfig() Config {
	return Config{TaskTimeout: DefaultTaskTimeout}
}

// Concept identifies the node a run generates content for.
type Concept struct {
	ID    string
	Label string
}

// Result is the complete content bundle of one run.
type Result struct {
	ConceptID   string
	Explanation string
	Bias        generation.Bias
	Items       []generation.QuizItem
	Notation    generation.Notation
	Audit       generation.AuditReport

	// Failures holds the failure message of each stage that did not
	// produce a usable payload.
	Failures map[Stage]string
	Duration time.Duration
}

// Degraded reports whether any stage fell back to its placeholder.
func (r *Result) Degraded() bool {
	return len(r.Failures) > 0
}

// Failed reports whether stage fell back to its placeholder.
func (r *Result) Failed(stage Stage) bool {
	_, ok := r.Failures[stage]
	return ok
}

// Pipeline runs module attempts against a generation gateway.
type Pipeline struct {
	gw        generation.Gateway
	cfg       Config
	metrics   *Metrics
	latencies *Latencies
	log       *logger.Logger
}

// New creates a pipeline. metrics and log may be nil.
func New(gw generation.Gateway, cfg Config, metrics *Metrics, log *logger.Logger) *Pipeline {
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = DefaultTaskTimeout
	}
	return &Pipeline{
		gw:        gw,
		cfg:       cfg,
		metrics:   metrics,
		latencies: NewLatencies(),
		log:       logger.OrNop(log).Named("pipeline"),
	}
}

// Latencies exposes the per-concept duration of the latest run.
func (p *Pipeline) Latencies() *Latencies {
	return p.latencies
}

// Run generates the bundle for concept, biased by the recent attempt
// history. Cancelling ctx stops outstanding generation requests; their
// slots keep the placeholder values.
func (p *Pipeline) Run(ctx context.Context, concept Concept, history []curriculum.AttemptRecord) *Result {
	start := time.Now()
	bias := SummarizeHistory(history)

	res := &Result{
		ConceptID:   concept.ID,
		Explanation: PlaceholderExplanation,
		Bias:        bias,
		Items:       []generation.QuizItem{},
		Audit:       generation.AuditReport{RiskScore: 0, FlaggedReason: PlaceholderAuditReason},
		Failures:    make(map[Stage]string),
	}

	p.log.Info("pipeline started", "concept", concept.ID, "bias", bias.Mode)

	g := taskgroup.New(ctx, p.cfg.TaskTimeout)
	explain := taskgroup.Go(g, string(StageExplain), func(ctx context.Context) (generation.Explanation, error) {
		return unwrap(p.gw.Explain(ctx, concept.Label, bias))
	})
	assess := taskgroup.Go(g, string(StageAssess), func(ctx context.Context) (generation.Quiz, error) {
		return unwrap(p.gw.Assess(ctx, concept.Label))
	})
	notate := taskgroup.Go(g, string(StageNotate), func(ctx context.Context) (generation.Notation, error) {
		return unwrap(p.gw.Notate(ctx, concept.Label))
	})
	if err := g.Wait(); err != nil {
		p.log.Warn("parallel stage degraded", "concept", concept.ID, "error", err)
	}

	auditInput := ""
	if v, err := explain.Result(); p.settle(res, StageExplain, explain.Elapsed(), err) {
		res.Explanation = v.ContentText
		auditInput = v.ContentText
	}
	if v, err := assess.Result(); p.settle(res, StageAssess, assess.Elapsed(), err) {
		res.Items = v.Items
	}
	if v, err := notate.Result(); p.settle(res, StageNotate, notate.Elapsed(), err) {
		res.Notation = v
	}

	// The audit depends on the joined explanation.
	auditCtx, cancel := context.WithTimeout(ctx, p.cfg.TaskTimeout)
	auditStart := time.Now()
	report, err := unwrap(p.gw.Audit(auditCtx, auditInput))
	cancel()
	if p.settle(res, StageAudit, time.Since(auditStart), err) {
		res.Audit = report
	}

	res.Duration = time.Since(start)
	p.latencies.Record(concept.ID, res.Duration)
	p.metrics.run(res.Duration)

	p.log.Info("pipeline finished", "concept", concept.ID,
		"duration_ms", res.Duration.Milliseconds(), "failed_stages", len(res.Failures))
	return res
}

// settle records the stage timing and, on failure, the failure message. It
// reports whether the stage produced a usable value.
func (p *Pipeline) settle(res *Result, stage Stage, elapsed time.Duration, err error) bool {
	p.metrics.observeStage(stage, elapsed)
	if err == nil {
		return true
	}
	res.Failures[stage] = err.Error()
	p.metrics.failure(stage)
	p.log.Warn("stage fell back to placeholder", "concept", res.ConceptID, "stage", stage, "error", err)
	return false
}

func unwrap[T any](o generation.Outcome[T]) (T, error) {
	v, f := o.Get()
	if f != nil {
		return v, f
	}
	return v, nil
}

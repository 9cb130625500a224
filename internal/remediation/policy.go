// Package remediation decides the outcome of a graded module attempt and,
// on failure, splices a remedial prerequisite into the learner's graph.
package remediation

import (
	"context"
	"errors"

	"github.com/abhisek/pathwise/internal/generation"
	"github.com/abhisek/pathwise/internal/logger"
)

// Default thresholds. A score passes at or above PassThreshold; an audit
// risk strictly above RiskThreshold marks the remedial label.
const (
	PassThreshold = 0.70
	RiskThreshold = 0.5
)

// Config holds the policy thresholds.
type Config struct {
	PassThreshold float64
	RiskThreshold float64
}

// DefaultConfig returns the default thresholds.
func DefaultConfig() Config {
	return Config{PassThreshold: PassThreshold, RiskThreshold: RiskThreshold}
}

// ContentWarningPrefix marks remedial nodes whose source lecture the
// auditor flagged.
const ContentWarningPrefix = "[CONTENT WARNING] Review source material for: "

// Verdict is the terminal outcome of one attempt.
type Verdict string

const (
	VerdictPass                Verdict = "PASS"
	VerdictFailNoRemediation   Verdict = "FAIL_NO_REMEDIATION"
	VerdictFailWithRemediation Verdict = "FAIL_WITH_REMEDIATION"
)

// Passed reports whether the verdict is a pass.
func (v Verdict) Passed() bool {
	return v == VerdictPass
}

// Graph is the part of the curriculum graph the policy mutates.
type Graph interface {
	MarkCompleted(id string) bool
	InjectRemedialNode(targetID, newID, newLabel string) bool
}

// Attempt is one graded module attempt.
type Attempt struct {
	NodeID string
	Label  string
	Grade  Grade
	Audit  generation.AuditReport
}

// Decision is what the policy did with an attempt.
type Decision struct {
	Verdict Verdict
	Score   float64

	// Set when a remedial candidate was obtained, even if it could not be
	// spliced in.
	RemedialID    string
	RemedialLabel string
	Reason        string

	// Warned is true when the audit gated the remedial label.
	Warned bool

	// Err explains a FAIL_NO_REMEDIATION verdict.
	Err error
}

var (
	// ErrEmptyCandidateID is returned for a candidate without an id.
	ErrEmptyCandidateID = errors.New("remedial candidate has no id")

	// ErrCandidateCollides is returned when the candidate id already names
	// a node in the graph.
	ErrCandidateCollides = errors.New("remedial candidate collides with an existing node")
)

// Policy evaluates attempts.
type Policy struct {
	gw      generation.Gateway
	cfg     Config
	metrics *Metrics
	log     *logger.Logger
}

// New creates a policy. metrics and log may be nil.
func New(gw generation.Gateway, cfg Config, metrics *Metrics, log *logger.Logger) *Policy {
	return &Policy{gw: gw, cfg: cfg, metrics: metrics, log: logger.OrNop(log).Named("remediation")}
}

// Evaluate applies the pass/fail state machine to attempt and mutates graph
// accordingly. A pass marks the node completed and issues no generation
// request. A failure requests one remedial candidate and injects it when it
// is well-formed. Evaluate never fails as a whole; problems end in
// FAIL_NO_REMEDIATION with Decision.Err set.
func (p *Policy) Evaluate(ctx context.Context, graph Graph, attempt Attempt) Decision {
	score := attempt.Grade.Ratio()
	d := Decision{Score: score}

	if score >= p.cfg.PassThreshold {
		d.Verdict = VerdictPass
		graph.MarkCompleted(attempt.NodeID)
		p.log.Info("module passed", "node", attempt.NodeID, "score", score)
		p.metrics.decided(d.Verdict)
		return d
	}

	p.log.Info("module failed, requesting remediation", "node", attempt.NodeID, "score", score)

	candidate, failure := p.gw.Remediate(ctx, attempt.Label, score).Get()
	if failure != nil {
		d.Verdict = VerdictFailNoRemediation
		d.Err = failure
		p.log.Warn("no remedial candidate", "node", attempt.NodeID, "error", failure)
		p.metrics.decided(d.Verdict)
		return d
	}

	label := candidate.Label
	if attempt.Audit.RiskScore > p.cfg.RiskThreshold {
		label = ContentWarningPrefix + label
		d.Warned = true
		p.log.Warn("audit flagged lecture, marking remedial label",
			"node", attempt.NodeID, "risk", attempt.Audit.RiskScore)
	}
	d.RemedialID = candidate.ID
	d.RemedialLabel = label
	d.Reason = candidate.Reason

	switch {
	case candidate.ID == "":
		d.Verdict = VerdictFailNoRemediation
		d.Err = ErrEmptyCandidateID
	case !graph.InjectRemedialNode(attempt.NodeID, candidate.ID, label):
		d.Verdict = VerdictFailNoRemediation
		d.Err = ErrCandidateCollides
	default:
		d.Verdict = VerdictFailWithRemediation
	}

	if d.Err != nil {
		p.log.Warn("remedial candidate rejected", "node", attempt.NodeID,
			"candidate", candidate.ID, "error", d.Err)
	} else {
		p.log.Info("remedial node injected", "node", attempt.NodeID, "remedial", candidate.ID)
	}
	p.metrics.decided(d.Verdict)
	return d
}

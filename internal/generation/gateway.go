// Package generation turns task-typed prompts into validated, typed results.
// Every task returns an Outcome: either a payload that passed the JSON
// schema and the struct rules, or a Failure value. Nothing here returns a Go
// error to the caller.
package generation

import (
	"context"
	"encoding/json"

	"github.com/abhisek/pathwise/internal/llm"
	"github.com/abhisek/pathwise/internal/logger"
)

// Gateway is the generation capability the curriculum core consumes.
type Gateway interface {
	ProposeGraph(ctx context.Context, topic, level string) Outcome[GraphProposal]
	Explain(ctx context.Context, label string, bias Bias) Outcome[Explanation]
	Assess(ctx context.Context, label string) Outcome[Quiz]
	Notate(ctx context.Context, label string) Outcome[Notation]
	Audit(ctx context.Context, text string) Outcome[AuditReport]
	Remediate(ctx context.Context, label string, score float64) Outcome[RemediationCandidate]
}

// Request purposes, stored with every LLM request event.
const (
	PurposeGraph       = "graph"
	PurposeExplain     = "explain"
	PurposeQuiz        = "quiz"
	PurposeNotation    = "notation"
	PurposeAudit       = "audit"
	PurposeRemediation = "remediation"
)

// TaskConfig is the token budget and temperature of one task type.
type TaskConfig struct {
	MaxTokens   int
	Temperature float64
}

// Config holds per-task generation settings.
type Config struct {
	Graph       TaskConfig
	Explain     TaskConfig
	Quiz        TaskConfig
	Notation    TaskConfig
	Audit       TaskConfig
	Remediation TaskConfig
}

// DefaultConfig returns sensible defaults for every task.
func DefaultConfig() Config {
	return Config{
		Graph:       TaskConfig{MaxTokens: 1024, Temperature: 0.4},
		Explain:     TaskConfig{MaxTokens: 1536, Temperature: 0.6},
		Quiz:        TaskConfig{MaxTokens: 4096, Temperature: 0.5},
		Notation:    TaskConfig{MaxTokens: 256, Temperature: 0.2},
		Audit:       TaskConfig{MaxTokens: 256, Temperature: 0.1},
		Remediation: TaskConfig{MaxTokens: 256, Temperature: 0.4},
	}
}

// LLMGateway implements Gateway on top of an llm.Provider.
type LLMGateway struct {
	provider llm.Provider
	cfg      Config
	log      *logger.Logger
}

var _ Gateway = (*LLMGateway)(nil)

// NewLLMGateway creates a gateway. log may be nil.
func NewLLMGateway(provider llm.Provider, cfg Config, log *logger.Logger) *LLMGateway {
	return &LLMGateway{provider: provider, cfg: cfg, log: logger.OrNop(log).Named("generation")}
}

func (g *LLMGateway) ProposeGraph(ctx context.Context, topic, level string) Outcome[GraphProposal] {
	return run[GraphProposal](ctx, g, PurposeGraph, GraphSchema, g.cfg.Graph,
		architectSystemPrompt, buildGraphUserMessage(topic, level))
}

func (g *LLMGateway) Explain(ctx context.Context, label string, bias Bias) Outcome[Explanation] {
	return run[Explanation](ctx, g, PurposeExplain, ExplanationSchema, g.cfg.Explain,
		professorSystemPrompt, buildExplanationUserMessage(label, bias))
}

func (g *LLMGateway) Assess(ctx context.Context, label string) Outcome[Quiz] {
	return run[Quiz](ctx, g, PurposeQuiz, QuizSchema, g.cfg.Quiz,
		proctorSystemPrompt, buildQuizUserMessage(label))
}

func (g *LLMGateway) Notate(ctx context.Context, label string) Outcome[Notation] {
	return run[Notation](ctx, g, PurposeNotation, NotationSchema, g.cfg.Notation,
		notationSystemPrompt, buildNotationUserMessage(label))
}

func (g *LLMGateway) Audit(ctx context.Context, text string) Outcome[AuditReport] {
	return run[AuditReport](ctx, g, PurposeAudit, AuditSchema, g.cfg.Audit,
		auditorSystemPrompt, buildAuditUserMessage(text))
}

func (g *LLMGateway) Remediate(ctx context.Context, label string, score float64) Outcome[RemediationCandidate] {
	return run[RemediationCandidate](ctx, g, PurposeRemediation, RemediationSchema, g.cfg.Remediation,
		evaluatorSystemPrompt, buildRemediationUserMessage(label, score))
}

// run performs one task: generate, decode, validate. Transport errors
// become generation failures; schema, decode and rule violations become
// malformed failures.
func run[T any](ctx context.Context, g *LLMGateway, purpose string, schema *llm.Schema, tc TaskConfig, system, user string) Outcome[T] {
	ctx = llm.WithPurpose(ctx, purpose)

	resp, err := g.provider.Generate(ctx, llm.Request{
		System:      system,
		Messages:    llm.UserPrompt(user),
		Schema:      schema,
		MaxTokens:   tc.MaxTokens,
		Temperature: tc.Temperature,
	})
	if err != nil {
		kind := KindGeneration
		if llm.IsMalformed(err) {
			kind = KindMalformed
		}
		g.log.Warn("generation task failed", "purpose", purpose, "kind", kind, "error", err)
		return Failed[T](kind, err.Error())
	}

	var v T
	if err := json.Unmarshal(resp.Content, &v); err != nil {
		g.log.Warn("undecodable payload", "purpose", purpose, "error", err)
		return Failed[T](KindMalformed, "decode "+purpose+" payload: "+err.Error())
	}
	if err := payloadValidate.Struct(v); err != nil {
		g.log.Warn("payload failed validation", "purpose", purpose, "error", err)
		return Failed[T](KindMalformed, "invalid "+purpose+" payload: "+err.Error())
	}

	g.log.Debug("generation task done", "purpose", purpose, "model", resp.Model,
		"input_tokens", resp.Usage.InputTokens, "output_tokens", resp.Usage.OutputTokens)
	return Succeeded(v)
}

package llm

import (
	"context"
	"encoding/json"
)

// Provider is the transport beneath the generation gateway. Each call is a
// single-turn prompt whose answer is JSON matching the request schema.
type Provider interface {
	// Generate sends req and returns the model output. When req.Schema is
	// set, Content has already been normalised and validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// ProviderName returns the backend behind p ("gemini", "openrouter", ...)
// for backends that report one, otherwise its model ID.
func ProviderName(p Provider) string {
	if n, ok := p.(interface{ ProviderName() string }); ok {
		return n.ProviderName()
	}
	return p.ModelID()
}

// Request describes one generation call.
type Request struct {
	// System sets the model's role and constraints.
	System string

	// Messages is the conversation. Curriculum tasks send one user message.
	Messages []Message

	// Schema, when set, asks the provider for structured output and is
	// used to validate what comes back.
	Schema *Schema

	MaxTokens int

	// Temperature in [0, 1]. Zero leaves the provider default.
	Temperature float64
}

// Message is a single conversation turn.
type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// UserPrompt is shorthand for a one-message conversation.
func UserPrompt(text string) []Message {
	return []Message{{Role: RoleUser, Content: text}}
}

// Schema names a JSON Schema the response must conform to.
type Schema struct {
	// Name is kebab-case, e.g. "concept-quiz". It keys the compiled-schema
	// cache and doubles as the tool/schema name for providers that need one.
	Name        string
	Description string
	Definition  map[string]any
}

// Response holds the model output.
type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason string // "end", "max_tokens" or "error"
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

package llm

import (
	"regexp"
	"strings"
)

// Price is a model's list price in USD per million tokens.
type Price struct {
	Input  float64
	Output float64
}

// Cost returns the USD cost of one call's token counts.
func (p Price) Cost(inputTokens, outputTokens int) float64 {
	return (float64(inputTokens)*p.Input + float64(outputTokens)*p.Output) / 1e6
}

// catalogEntry is a model pathwise can be configured with.
type catalogEntry struct {
	provider string
	alias    string
	id       string
	price    Price
}

// catalog holds the models offered per provider with their list prices
// (February 2026).
var catalog = []catalogEntry{
	{"gemini", "gemini-flash", "gemini-2.5-flash", Price{0.30, 2.50}},
	{"gemini", "gemini-lite", "gemini-2.5-flash-lite", Price{0.10, 0.40}},
	{"gemini", "gemini-pro", "gemini-2.5-pro", Price{1.25, 10}},
	{"anthropic", "claude-haiku", "claude-haiku-4-5-20251001", Price{1, 5}},
	{"anthropic", "claude-sonnet", "claude-sonnet-4-20250514", Price{3, 15}},
	{"openai", "", "gpt-4o-mini", Price{0.15, 0.60}},
	{"openai", "", "gpt-4o", Price{2.50, 10}},
}

// ResolveModel maps a catalog alias of provider to its model ID. Any other
// name is taken to be a model ID already and returned unchanged.
func ResolveModel(provider, name string) string {
	for _, e := range catalog {
		if e.provider == provider && e.alias != "" && e.alias == name {
			return e.id
		}
	}
	return name
}

// datedSuffix matches the snapshot suffix APIs append to the model they
// report, e.g. "gpt-4o-mini-2024-07-18".
var datedSuffix = regexp.MustCompile(`-\d{4}-\d{2}-\d{2}$`)

// PriceOf looks up the price of a model as recorded in the event log.
// OpenRouter IDs are matched without their vendor prefix.
func PriceOf(model string) (Price, bool) {
	if i := strings.LastIndexByte(model, '/'); i >= 0 {
		model = model[i+1:]
	}
	for _, name := range []string{model, datedSuffix.ReplaceAllString(model, "")} {
		for _, e := range catalog {
			if e.id == name || (e.alias != "" && e.alias == name) {
				return e.price, true
			}
		}
	}
	return Price{}, false
}

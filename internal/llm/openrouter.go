package llm

import (
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

	// Sent so requests are attributed to pathwise on openrouter.ai.
	openRouterReferer = "https://github.com/abhisek/pathwise"
	openRouterTitle   = "pathwise"
)

// NewOpenRouterProvider routes Chat Completions through OpenRouter. The
// model must be an OpenRouter ID of the form "vendor/model".
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}
	if vendor, model, ok := strings.Cut(cfg.Model, "/"); !ok || vendor == "" || model == "" {
		return nil, fmt.Errorf("openrouter model %q must be of the form vendor/model", cfg.Model)
	}

	conf := openai.DefaultConfig(cfg.APIKey)
	conf.BaseURL = defaultOpenRouterBaseURL
	if cfg.BaseURL != "" {
		conf.BaseURL = cfg.BaseURL
	}
	conf.HTTPClient = &http.Client{Transport: attribution{base: http.DefaultTransport}}
	return newChatProvider("openrouter", conf, cfg.Model), nil
}

// attribution adds OpenRouter's app attribution headers to every request.
type attribution struct {
	base http.RoundTripper
}

func (a attribution) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.Header.Set("HTTP-Referer", openRouterReferer)
	r.Header.Set("X-Title", openRouterTitle)
	return a.base.RoundTrip(r)
}

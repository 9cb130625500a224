package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenRouter_RejectsBareModelName(t *testing.T) {
	for _, model := range []string{"", "gemini-2.5-flash", "/gemini", "google/"} {
		if _, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "sk-or", Model: model}); err == nil {
			t.Errorf("model %q accepted", model)
		}
	}
	if _, err := NewOpenRouterProvider(OpenRouterConfig{Model: "google/gemini-2.5-flash"}); err == nil {
		t.Error("missing API key accepted")
	}
}

func TestOpenRouter_SendsAttributionAndVendorModel(t *testing.T) {
	var gotPath, gotModel, gotTitle, gotReferer, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotTitle = r.Header.Get("X-Title")
		gotReferer = r.Header.Get("HTTP-Referer")
		gotAuth = r.Header.Get("Authorization")
		var body struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotModel = body.Model

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"model": "google/gemini-2.5-flash",
			"choices": []map[string]any{{
				"message":       map[string]any{"role": "assistant", "content": `{"equation":"F = ma","reason":"Newton"}`},
				"finish_reason": "stop",
			}},
			"usage": map[string]any{"prompt_tokens": 12, "completion_tokens": 8, "total_tokens": 20},
		})
	}))
	t.Cleanup(srv.Close)

	p, err := NewOpenRouterProvider(OpenRouterConfig{
		APIKey:  "sk-or-test",
		Model:   "google/gemini-2.5-flash",
		BaseURL: srv.URL + "/api/v1",
	})
	if err != nil {
		t.Fatalf("NewOpenRouterProvider: %v", err)
	}
	if p.ProviderName() != "openrouter" || p.ModelID() != "google/gemini-2.5-flash" {
		t.Errorf("provider = %s/%s", p.ProviderName(), p.ModelID())
	}

	resp, err := p.Generate(context.Background(), Request{
		Messages:  UserPrompt("Formula for: Force"),
		Schema:    notationTestSchema(),
		MaxTokens: 256,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if gotPath != "/api/v1/chat/completions" {
		t.Errorf("path = %q", gotPath)
	}
	if gotModel != "google/gemini-2.5-flash" {
		t.Errorf("model sent = %q", gotModel)
	}
	if gotTitle != openRouterTitle || gotReferer != openRouterReferer {
		t.Errorf("attribution headers = %q, %q", gotTitle, gotReferer)
	}
	if gotAuth != "Bearer sk-or-test" {
		t.Errorf("authorization = %q", gotAuth)
	}
	if resp.Usage.TotalTokens != 20 {
		t.Errorf("usage = %+v", resp.Usage)
	}
	if price, ok := PriceOf(resp.Model); !ok || price.Input != 0.30 {
		t.Errorf("vendor-prefixed model not priced: %+v %v", price, ok)
	}
}

package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is a canned response for the MockProvider.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockProvider is a deterministic Provider for tests and offline runs.
// Without a Route it returns canned responses in FIFO order. With a Route
// set, each request is answered by the route, which keeps concurrent
// callers deterministic. All requests are recorded.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	route     func(Request) MockResponse
	Calls     []Request
}

// NewMockProvider creates a FIFO MockProvider with the given responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// NewRoutedMockProvider answers every request with route(req).
func NewRoutedMockProvider(route func(Request) MockResponse) *MockProvider {
	return &MockProvider{route: route}
}

// Generate returns the next canned response, or ErrProviderUnavailable when
// the queue is empty and no route is set.
func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)

	var resp MockResponse
	switch {
	case m.route != nil:
		route := m.route
		m.mu.Unlock()
		resp = route(req)
	case len(m.responses) == 0:
		m.mu.Unlock()
		return nil, &ErrProviderUnavailable{}
	default:
		resp = m.responses[0]
		m.responses = m.responses[1:]
		m.mu.Unlock()
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if resp.Err != nil {
		return nil, resp.Err
	}

	content, err := checkResponse(req.Schema, resp.Content, "end")
	if err != nil {
		return nil, err
	}
	return &Response{
		Content:    content,
		Usage:      resp.Usage,
		Model:      "mock",
		StopReason: "end",
	}, nil
}

// ProviderName returns "mock".
func (m *MockProvider) ProviderName() string { return "mock" }

// ModelID returns "mock".
func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddResponse appends a canned response to the queue.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// CallsFor returns the recorded requests whose schema has the given name.
func (m *MockProvider) CallsFor(schemaName string) []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Request
	for _, c := range m.Calls {
		if c.Schema != nil && c.Schema.Name == schemaName {
			out = append(out, c)
		}
	}
	return out
}

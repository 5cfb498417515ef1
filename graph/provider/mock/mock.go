// Package mock provides a test double for provider.Provider.
package mock

import (
	"context"
	"sync"

	"github.com/kamilmandziuk/needlepoint/graph/provider"
)

// Call records the arguments of one Generate invocation, for assertions
// in tests that exercise the executor against this provider.
type Call struct {
	Request provider.Request
}

// Provider is a queue of canned responses (or a fixed error) returned in
// order as Generate is called, recording every call it receives. It is
// safe for concurrent use, matching the pattern the retrieval pack's own
// MockChatModel uses for parallel node execution in tests.
type Provider struct {
	mu         sync.Mutex
	Responses  []provider.Response
	Err        error
	Calls      []Call
	callIndex  int
	Configured bool
}

// New returns a mock provider that always reports itself configured.
func New(responses ...provider.Response) *Provider {
	return &Provider{Responses: responses, Configured: true}
}

func (m *Provider) Name() string { return "mock" }

func (m *Provider) IsConfigured() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Configured
}

func (m *Provider) Generate(_ context.Context, req provider.Request) (provider.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, Call{Request: req})

	if m.Err != nil {
		return provider.Response{}, m.Err
	}
	if m.callIndex >= len(m.Responses) {
		return provider.Response{}, &provider.Error{Code: provider.CodeRequestFailed, Message: "mock: no more canned responses"}
	}
	resp := m.Responses[m.callIndex]
	m.callIndex++
	return resp, nil
}

// CallCount returns the number of times Generate has been invoked.
func (m *Provider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// Reset clears call history and rewinds the response queue.
func (m *Provider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = nil
	m.callIndex = 0
}

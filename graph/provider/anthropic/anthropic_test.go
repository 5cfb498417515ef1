package anthropic

import (
	"context"
	"errors"
	"testing"

	"github.com/kamilmandziuk/needlepoint/graph/provider"
)

func TestIsConfigured(t *testing.T) {
	if New("", "claude-3").IsConfigured() {
		t.Error("expected IsConfigured to be false with an empty API key")
	}
	if !New("sk-test", "claude-3").IsConfigured() {
		t.Error("expected IsConfigured to be true with a non-empty API key")
	}
}

func TestGenerate_MissingAPIKeyFailsWithoutNetworkCall(t *testing.T) {
	p := New("", "claude-3")
	_, err := p.Generate(context.Background(), provider.Request{Prompt: "hi"})
	if err == nil {
		t.Fatal("expected an error with no API key configured")
	}
	var provErr *provider.Error
	if !errors.As(err, &provErr) {
		t.Fatalf("expected a *provider.Error, got %T", err)
	}
	if provErr.Code != provider.CodeInvalidAPIKey {
		t.Errorf("expected CodeInvalidAPIKey, got %v", provErr.Code)
	}
}

func TestClassifyError(t *testing.T) {
	cases := []struct {
		name string
		msg  string
		want provider.ErrorCode
	}{
		{"unauthorized", "401 unauthorized", provider.CodeInvalidAPIKey},
		{"forbidden", "403 forbidden: invalid api_key", provider.CodeInvalidAPIKey},
		{"rate limited", "429 too many requests", provider.CodeRateLimited},
		{"rate limit message", "rate_limit_error: slow down", provider.CodeRateLimited},
		{"model not found", "404 model not found: claude-bogus", provider.CodeModelNotFound},
		{"timeout", "context deadline exceeded", provider.CodeNetworkError},
		{"connection refused", "dial tcp: connection refused", provider.CodeNetworkError},
		{"unrecognized", "internal server error", provider.CodeRequestFailed},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := classifyError(errors.New(c.msg))
			if got.Code != c.want {
				t.Errorf("classifyError(%q) = %v, want %v", c.msg, got.Code, c.want)
			}
		})
	}
}

func TestName(t *testing.T) {
	if got := New("k", "m").Name(); got != "anthropic" {
		t.Errorf("expected Name() = anthropic, got %q", got)
	}
}

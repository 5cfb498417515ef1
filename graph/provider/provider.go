// Package provider defines the uniform interface needlepoint's executor
// uses to call into a hosted or local LLM, and the adapters that
// implement it for Anthropic, OpenAI, and Ollama.
package provider

import "context"

// Request is a single generation call: the assembled user prompt, an
// optional system prompt, and sampling parameters.
type Request struct {
	Prompt       string
	SystemPrompt string
	MaxTokens    int
	Temperature  float64
}

// Response is the provider's reply: the raw generated text (not yet
// stripped of markdown fences), the model that produced it, and a
// best-effort token count used for cost tracking.
type Response struct {
	Content    string
	Model      string
	TokensUsed int
}

// Provider is the capability every adapter exposes: generate text from a
// request, report a display name, and report whether it has the
// credentials it needs to be called.
type Provider interface {
	Generate(ctx context.Context, req Request) (Response, error)
	Name() string
	IsConfigured() bool
}

// ErrorCode enumerates the ways a provider call can fail, independent of
// the underlying SDK's own error types.
type ErrorCode string

const (
	CodeRequestFailed ErrorCode = "request_failed"
	CodeInvalidAPIKey ErrorCode = "invalid_api_key"
	CodeRateLimited   ErrorCode = "rate_limited"
	CodeModelNotFound ErrorCode = "model_not_found"
	CodeNetworkError  ErrorCode = "network_error"
	CodeParseError    ErrorCode = "parse_error"
)

// Error reports a provider failure with a machine-readable Code alongside
// the human-readable message, so callers (the executor, the HTTP layer)
// can decide whether a failure is worth retrying without string-matching
// Error() themselves.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Retryable reports whether the failure is transient and a retry with
// backoff might succeed. Only rate limiting and network errors are
// considered retryable; everything else (bad credentials, unknown model,
// malformed response) requires operator intervention.
func (e *Error) Retryable() bool {
	return e.Code == CodeRateLimited || e.Code == CodeNetworkError
}

func newError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

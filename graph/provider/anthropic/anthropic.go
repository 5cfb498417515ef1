// Package anthropic adapts Anthropic's Claude API to provider.Provider.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/kamilmandziuk/needlepoint/graph/provider"
)

// Provider implements provider.Provider by calling Claude through the
// official anthropic-sdk-go client.
type Provider struct {
	client *anthropicsdk.Client
	model  string
	apiKey string
}

// New returns an Anthropic provider for model, authenticating with
// apiKey. An empty apiKey is allowed; IsConfigured will report false and
// Generate will fail with CodeInvalidAPIKey before making a call.
func New(apiKey, model string) *Provider {
	client := anthropicsdk.NewClient(option.WithAPIKey(apiKey))
	return &Provider{client: &client, model: model, apiKey: apiKey}
}

func (p *Provider) Name() string { return "anthropic" }

func (p *Provider) IsConfigured() bool { return p.apiKey != "" }

// Generate sends req as a single-turn user message with an optional
// system prompt and temperature, capped at req.MaxTokens (4096 when that
// is not positive), and returns the assistant's concatenated text
// blocks.
func (p *Provider) Generate(ctx context.Context, req provider.Request) (provider.Response, error) {
	if !p.IsConfigured() {
		return provider.Response{}, &provider.Error{
			Code:    provider.CodeInvalidAPIKey,
			Message: "anthropic is not configured: missing API key",
		}
	}

	maxTokens := int64(req.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	params := anthropicsdk.MessageNewParams{
		Model:     anthropicsdk.Model(p.model),
		MaxTokens: maxTokens,
		Messages: []anthropicsdk.MessageParam{
			anthropicsdk.NewUserMessage(anthropicsdk.NewTextBlock(req.Prompt)),
		},
	}
	if req.SystemPrompt != "" {
		params.System = []anthropicsdk.TextBlockParam{{Text: req.SystemPrompt}}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropicsdk.Float(req.Temperature)
	}

	message, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return provider.Response{}, classifyError(err)
	}

	var text strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	return provider.Response{
		Content:    text.String(),
		Model:      string(message.Model),
		TokensUsed: int(message.Usage.InputTokens + message.Usage.OutputTokens),
	}, nil
}

// classifyError maps the anthropic-sdk-go error into a provider.Error.
// The SDK does not expose a typed status code in a way that survives
// wrapping reliably across transports, so — as with the retrieval pack's
// own Anthropic adapter — classification is done on the error string.
func classifyError(err error) *provider.Error {
	msg := err.Error()

	switch {
	case strings.Contains(msg, "401"), strings.Contains(msg, "403"),
		strings.Contains(msg, "authentication"), strings.Contains(msg, "api_key"):
		return &provider.Error{Code: provider.CodeInvalidAPIKey, Message: "API key is invalid or expired"}
	case strings.Contains(msg, "429"), strings.Contains(msg, "rate_limit"), strings.Contains(msg, "too many requests"):
		return &provider.Error{Code: provider.CodeRateLimited, Message: "API rate limit exceeded"}
	case strings.Contains(msg, "404"), strings.Contains(msg, "model"):
		return &provider.Error{Code: provider.CodeModelNotFound, Message: msg}
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline"), strings.Contains(msg, "connection"):
		return &provider.Error{Code: provider.CodeNetworkError, Message: msg}
	default:
		return &provider.Error{Code: provider.CodeRequestFailed, Message: fmt.Sprintf("anthropic API error: %v", err)}
	}
}

// Package openai adapts OpenAI's chat completions API to provider.Provider.
package openai

import (
	"context"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/kamilmandziuk/needlepoint/graph/provider"
)

// Provider implements provider.Provider by calling the Chat Completions
// API through the official openai-go client.
type Provider struct {
	model  string
	apiKey string
}

// New returns an OpenAI provider for model, authenticating with apiKey.
// An empty model falls back to "gpt-4o".
func New(apiKey, model string) *Provider {
	if model == "" {
		model = "gpt-4o"
	}
	return &Provider{model: model, apiKey: apiKey}
}

func (p *Provider) Name() string { return "openai" }

func (p *Provider) IsConfigured() bool { return p.apiKey != "" }

func (p *Provider) Generate(ctx context.Context, req provider.Request) (provider.Response, error) {
	if !p.IsConfigured() {
		return provider.Response{}, &provider.Error{
			Code:    provider.CodeInvalidAPIKey,
			Message: "openai is not configured: missing API key",
		}
	}

	client := openaisdk.NewClient(option.WithAPIKey(p.apiKey))

	messages := make([]openaisdk.ChatCompletionMessageParamUnion, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, openaisdk.SystemMessage(req.SystemPrompt))
	}
	messages = append(messages, openaisdk.UserMessage(req.Prompt))

	params := openaisdk.ChatCompletionNewParams{
		Model:    openaisdk.ChatModel(p.model),
		Messages: messages,
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openaisdk.Int(int64(req.MaxTokens))
	}
	if req.Temperature > 0 {
		params.Temperature = openaisdk.Float(req.Temperature)
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return provider.Response{}, classifyError(err)
	}
	if len(resp.Choices) == 0 {
		return provider.Response{}, &provider.Error{Code: provider.CodeParseError, Message: "openai response contained no choices"}
	}

	return provider.Response{
		Content:    resp.Choices[0].Message.Content,
		Model:      resp.Model,
		TokensUsed: int(resp.Usage.TotalTokens),
	}, nil
}

// classifyError maps the openai-go error into a provider.Error, following
// the same error-message pattern matching the retrieval pack's own OpenAI
// adapter uses to distinguish transient from permanent failures.
func classifyError(err error) *provider.Error {
	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "401"), strings.Contains(msg, "invalid_api_key"), strings.Contains(msg, "incorrect api key"):
		return &provider.Error{Code: provider.CodeInvalidAPIKey, Message: "API key is invalid or expired"}
	case strings.Contains(msg, "429"), strings.Contains(msg, "rate_limit"), strings.Contains(msg, "too many requests"):
		return &provider.Error{Code: provider.CodeRateLimited, Message: "API rate limit exceeded"}
	case strings.Contains(msg, "model_not_found"), strings.Contains(msg, "does not exist"):
		return &provider.Error{Code: provider.CodeModelNotFound, Message: err.Error()}
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline"), strings.Contains(msg, "connection"):
		return &provider.Error{Code: provider.CodeNetworkError, Message: err.Error()}
	default:
		return &provider.Error{Code: provider.CodeRequestFailed, Message: fmt.Sprintf("OpenAI API error: %v", err)}
	}
}

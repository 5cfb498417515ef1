// Package ollama adapts a local Ollama server to provider.Provider.
//
// No official Go SDK for Ollama exists anywhere in the retrieval corpus —
// nor, for that matter, did the original Rust client use anything but a
// raw HTTP client for it — so this adapter talks to Ollama's HTTP API
// directly via net/http.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/kamilmandziuk/needlepoint/graph/provider"
)

const defaultBaseURL = "http://localhost:11434"

// Provider implements provider.Provider against a local or remote Ollama
// server's /api/generate endpoint.
type Provider struct {
	model   string
	baseURL string
	client  *http.Client
}

// New returns an Ollama provider for model. An empty baseURL defaults to
// http://localhost:11434.
func New(model, baseURL string) *Provider {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Provider{model: model, baseURL: baseURL, client: http.DefaultClient}
}

func (p *Provider) Name() string { return "ollama" }

// IsConfigured always returns true: Ollama requires no API key, matching
// the original client's behavior.
func (p *Provider) IsConfigured() bool { return true }

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	System  string          `json:"system,omitempty"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type generateResponse struct {
	Response        string `json:"response"`
	Model           string `json:"model"`
	EvalCount       int    `json:"eval_count"`
	PromptEvalCount int    `json:"prompt_eval_count"`
}

func (p *Provider) Generate(ctx context.Context, req provider.Request) (provider.Response, error) {
	body, err := json.Marshal(generateRequest{
		Model:  p.model,
		Prompt: req.Prompt,
		System: req.SystemPrompt,
		Stream: false,
		Options: generateOptions{
			Temperature: req.Temperature,
			NumPredict:  req.MaxTokens,
		},
	})
	if err != nil {
		return provider.Response{}, &provider.Error{Code: provider.CodeParseError, Message: err.Error()}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return provider.Response{}, &provider.Error{Code: provider.CodeRequestFailed, Message: err.Error()}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) || isConnRefused(err) {
			return provider.Response{}, &provider.Error{
				Code:    provider.CodeNetworkError,
				Message: "Cannot connect to Ollama. Make sure Ollama is running.",
			}
		}
		return provider.Response{}, &provider.Error{Code: provider.CodeNetworkError, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return provider.Response{}, &provider.Error{Code: provider.CodeModelNotFound, Message: p.model}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return provider.Response{}, &provider.Error{
			Code:    provider.CodeRequestFailed,
			Message: fmt.Sprintf("HTTP %d from Ollama", resp.StatusCode),
		}
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return provider.Response{}, &provider.Error{Code: provider.CodeParseError, Message: err.Error()}
	}

	return provider.Response{
		Content:    out.Response,
		Model:      out.Model,
		TokensUsed: out.EvalCount + out.PromptEvalCount,
	}, nil
}

func isConnRefused(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

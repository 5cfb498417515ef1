package graph

import (
	"github.com/kamilmandziuk/needlepoint/graph/provider"
	"github.com/kamilmandziuk/needlepoint/graph/provider/anthropic"
	"github.com/kamilmandziuk/needlepoint/graph/provider/ollama"
	"github.com/kamilmandziuk/needlepoint/graph/provider/openai"
)

// ApiKeys holds the per-call credentials the Executor uses to construct
// providers. Nothing in the provider package or its adapters ever reads
// credentials from the environment directly; they are always threaded
// through from here.
type ApiKeys struct {
	Anthropic     string
	OpenAI        string
	OllamaBaseURL string
}

// ForProvider returns the credential ApiKeys holds for tag, or the empty
// string if none is configured. Ollama never needs a key.
func (k ApiKeys) ForProvider(tag ProviderTag) string {
	switch tag {
	case ProviderAnthropic:
		return k.Anthropic
	case ProviderOpenAI:
		return k.OpenAI
	default:
		return ""
	}
}

// NewProvider constructs the provider.Provider adapter named by cfg.Provider,
// authenticated with the matching credential from keys.
func NewProvider(cfg LLMConfig, keys ApiKeys) provider.Provider {
	switch cfg.Provider {
	case ProviderOpenAI:
		return openai.New(keys.OpenAI, cfg.Model)
	case ProviderOllama:
		return ollama.New(cfg.Model, keys.OllamaBaseURL)
	default:
		return anthropic.New(keys.Anthropic, cfg.Model)
	}
}

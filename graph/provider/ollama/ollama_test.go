package ollama

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kamilmandziuk/needlepoint/graph/provider"
)

func TestIsConfigured_AlwaysTrue(t *testing.T) {
	if !New("llama3", "").IsConfigured() {
		t.Error("expected Ollama's IsConfigured to always report true")
	}
}

func TestNew_DefaultsBaseURLWhenEmpty(t *testing.T) {
	p := New("llama3", "")
	if p.baseURL != defaultBaseURL {
		t.Errorf("expected default base URL %q, got %q", defaultBaseURL, p.baseURL)
	}
}

func TestGenerate_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":"hello there","model":"llama3","eval_count":5,"prompt_eval_count":3}`))
	}))
	defer srv.Close()

	p := New("llama3", srv.URL)
	resp, err := p.Generate(context.Background(), provider.Request{Prompt: "hi"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Content != "hello there" || resp.Model != "llama3" || resp.TokensUsed != 8 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestGenerate_ModelNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := New("bogus-model", srv.URL)
	_, err := p.Generate(context.Background(), provider.Request{Prompt: "hi"})
	var provErr *provider.Error
	if !errors.As(err, &provErr) {
		t.Fatalf("expected a *provider.Error, got %T (%v)", err, err)
	}
	if provErr.Code != provider.CodeModelNotFound {
		t.Errorf("expected CodeModelNotFound, got %v", provErr.Code)
	}
}

func TestGenerate_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := New("llama3", srv.URL)
	_, err := p.Generate(context.Background(), provider.Request{Prompt: "hi"})
	var provErr *provider.Error
	if !errors.As(err, &provErr) {
		t.Fatalf("expected a *provider.Error, got %T (%v)", err, err)
	}
	if provErr.Code != provider.CodeRequestFailed {
		t.Errorf("expected CodeRequestFailed, got %v", provErr.Code)
	}
}

func TestGenerate_ConnectionRefusedIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close() // closed immediately: nothing listens at url anymore

	p := New("llama3", url)
	_, err := p.Generate(context.Background(), provider.Request{Prompt: "hi"})
	var provErr *provider.Error
	if !errors.As(err, &provErr) {
		t.Fatalf("expected a *provider.Error, got %T (%v)", err, err)
	}
	if provErr.Code != provider.CodeNetworkError {
		t.Errorf("expected CodeNetworkError, got %v", provErr.Code)
	}
}

func TestGenerate_MalformedJSONIsParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	p := New("llama3", srv.URL)
	_, err := p.Generate(context.Background(), provider.Request{Prompt: "hi"})
	var provErr *provider.Error
	if !errors.As(err, &provErr) {
		t.Fatalf("expected a *provider.Error, got %T (%v)", err, err)
	}
	if provErr.Code != provider.CodeParseError {
		t.Errorf("expected CodeParseError, got %v", provErr.Code)
	}
}

func TestName(t *testing.T) {
	if got := New("llama3", "").Name(); got != "ollama" {
		t.Errorf("expected Name() = ollama, got %q", got)
	}
}

// Command needlepointd runs needlepoint's HTTP façade: it loads
// credentials from the environment once at startup and serves the
// routes the cmd/needlepoint CLI (or any other client) talks to.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/kamilmandziuk/needlepoint/graph"
	"github.com/kamilmandziuk/needlepoint/server"
)

func main() {
	keys := graph.ApiKeys{
		Anthropic:     os.Getenv("ANTHROPIC_API_KEY"),
		OpenAI:        os.Getenv("OPENAI_API_KEY"),
		OllamaBaseURL: os.Getenv("OLLAMA_BASE_URL"),
	}

	logger := log.New(os.Stderr, "needlepointd: ", log.LstdFlags)
	srv := server.New(keys, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Serve(ctx, server.DefaultAddr); err != nil && ctx.Err() == nil {
		logger.Fatalf("server exited: %v", err)
	}
}

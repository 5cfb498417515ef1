package graph

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kamilmandziuk/needlepoint/graph/emit"
	"github.com/kamilmandziuk/needlepoint/graph/provider"
)

const (
	defaultMaxTokens   = 8192
	defaultTemperature = 0.7
)

// Executor drives code generation across a Project's dependency graph,
// wave by wave: it plans the graph, fans each wave's nodes out to the
// provider their LLMConfig names, and emits progress events as nodes and
// waves complete.
//
// Executor guards its Project with an RWMutex because the HTTP server
// that owns it may read node state (for a GET /nodes/{id}) while a run is
// in progress. Only the lock is held while touching node fields; the
// provider call itself always runs lock-free.
type Executor struct {
	mu      sync.RWMutex
	project *Project
	keys    ApiKeys
	emitter emit.Emitter
	cfg     executorConfig

	cancelMu  sync.RWMutex
	cancelled bool

	inflightMu sync.Mutex
	inflight   int
}

// NewExecutor returns an Executor over project, authenticated with keys,
// reporting progress to emitter.
func NewExecutor(project *Project, keys ApiKeys, emitter emit.Emitter, opts ...ExecutorOption) *Executor {
	cfg := defaultExecutorConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Executor{project: project, keys: keys, emitter: emitter, cfg: cfg}
}

// Cancel requests that the in-progress run stop before starting its next
// wave. Every run clears the flag when it starts, so a Cancel made while
// no run is in progress does not stop the next one. Nodes already
// generating when Cancel is called still run to completion; their results
// are still recorded and emitted.
func (e *Executor) Cancel() {
	e.cancelMu.Lock()
	defer e.cancelMu.Unlock()
	e.cancelled = true
}

func (e *Executor) isCancelled() bool {
	e.cancelMu.RLock()
	defer e.cancelMu.RUnlock()
	return e.cancelled
}

func (e *Executor) resetCancel() {
	e.cancelMu.Lock()
	defer e.cancelMu.Unlock()
	e.cancelled = false
}

// nodeResult is the outcome of one node's generation attempt within a
// wave.
type nodeResult struct {
	nodeID string
	code   string
	err    error
}

// ExecuteAll plans the full Project and generates every node Plan can
// reach, wave by wave. Nodes Plan could not place (because they sit on a
// cycle, or depend on one) are reported as skipped in the terminal
// Completed event without being touched.
func (e *Executor) ExecuteAll(ctx context.Context) error {
	e.mu.RLock()
	plan := Plan(e.project)
	e.mu.RUnlock()
	return e.run(ctx, plan, len(plan.SkippedNodes))
}

// ExecuteNodes generates only the named nodes, in the wave order Plan
// would otherwise assign them. Nodes not in nodeIDs still contribute
// their Exports and GeneratedCode to the prompts built for nodes that do
// depend on them, but are never themselves regenerated.
//
// Unlike ExecuteAll, the terminal Completed event always reports zero
// skipped nodes: a caller who asked for a specific subset isn't told
// about nodes it didn't ask for.
func (e *Executor) ExecuteNodes(ctx context.Context, nodeIDs []string) error {
	e.mu.RLock()
	full := Plan(e.project)
	e.mu.RUnlock()

	wanted := make(map[string]bool, len(nodeIDs))
	for _, id := range nodeIDs {
		wanted[id] = true
	}

	var waves []Wave
	total := 0
	for _, w := range full.Waves {
		var filtered []string
		for _, id := range w.NodeIDs {
			if wanted[id] {
				filtered = append(filtered, id)
			}
		}
		if len(filtered) > 0 {
			waves = append(waves, Wave{WaveNumber: len(waves), NodeIDs: filtered})
			total += len(filtered)
		}
	}

	plan := ExecutionPlan{Waves: waves, TotalNodes: total}
	return e.run(ctx, plan, 0)
}

func (e *Executor) run(ctx context.Context, plan ExecutionPlan, totalSkipped int) error {
	e.resetCancel()
	runID := uuid.NewString()

	e.emitter.Emit(emit.Event{
		Type:       emit.TypeStarted,
		RunID:      runID,
		TotalNodes: plan.TotalNodes,
		TotalWaves: len(plan.Waves),
	})

	var totalSuccessful, totalFailed int

	for _, wave := range plan.Waves {
		if e.isCancelled() {
			e.emitter.Emit(emit.Event{Type: emit.TypeCancelled, RunID: runID})
			return nil
		}

		e.emitter.Emit(emit.Event{
			Type:       emit.TypeWaveStarted,
			RunID:      runID,
			WaveNumber: wave.WaveNumber,
			NodeIDs:    wave.NodeIDs,
		})

		for _, nodeID := range wave.NodeIDs {
			e.setGenerating(nodeID)
			e.emitter.Emit(emit.Event{
				Type:    emit.TypeNodeUpdate,
				RunID:   runID,
				NodeID:  nodeID,
				Status:  string(StatusGenerating),
				Message: "Starting generation...",
			})
		}

		successful, failed := e.runWave(ctx, runID, wave.NodeIDs)
		totalSuccessful += successful
		totalFailed += failed

		e.emitter.Emit(emit.Event{
			Type:       emit.TypeWaveCompleted,
			RunID:      runID,
			WaveNumber: wave.WaveNumber,
			Successful: successful,
			Failed:     failed,
		})
	}

	e.emitter.Emit(emit.Event{
		Type:            emit.TypeCompleted,
		RunID:           runID,
		TotalSuccessful: totalSuccessful,
		TotalFailed:     totalFailed,
		TotalSkipped:    totalSkipped,
	})

	return nil
}

// runWave generates every node in a wave concurrently, bounded by
// cfg.maxConcurrent, and reports the resulting status of each node via
// NodeUpdate events.
func (e *Executor) runWave(ctx context.Context, runID string, nodeIDs []string) (successful, failed int) {
	results := make([]nodeResult, len(nodeIDs))
	sem := make(chan struct{}, e.cfg.maxConcurrent)
	var wg sync.WaitGroup

	for i, nodeID := range nodeIDs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, nodeID string) {
			defer wg.Done()
			defer func() { <-sem }()

			e.bumpInflight(1)
			code, err := e.generateNode(ctx, runID, nodeID)
			e.bumpInflight(-1)

			results[i] = nodeResult{nodeID: nodeID, code: code, err: err}
		}(i, nodeID)
	}
	wg.Wait()

	for _, res := range results {
		if res.err != nil {
			failed++
			msg := res.err.Error()
			e.setError(res.nodeID, msg)
			e.emitter.Emit(emit.Event{
				Type:    emit.TypeNodeUpdate,
				RunID:   runID,
				NodeID:  res.nodeID,
				Status:  string(StatusError),
				Message: msg,
			})
			continue
		}

		successful++
		code := res.code
		e.setComplete(res.nodeID, code)
		e.emitter.Emit(emit.Event{
			Type:          emit.TypeNodeUpdate,
			RunID:         runID,
			NodeID:        res.nodeID,
			Status:        string(StatusComplete),
			GeneratedCode: &code,
		})
	}

	return successful, failed
}

// generateNode builds nodeID's prompt, calls its configured provider
// (retrying per cfg.retryPolicy if one is set), strips any markdown fence
// from the response, and records latency/cost metrics.
func (e *Executor) generateNode(ctx context.Context, runID, nodeID string) (string, error) {
	e.mu.RLock()
	node := e.project.FindNode(nodeID)
	if node == nil {
		e.mu.RUnlock()
		return "", newStructuralError(ErrNodeNotFound, "node '%s' not found", nodeID)
	}
	cfg := node.LLMConfig
	systemPrompt := BuildSystemPrompt(node)
	prompt, err := BuildPrompt(e.project, nodeID)
	e.mu.RUnlock()
	if err != nil {
		return "", err
	}

	p := e.cfg.providerFactory(cfg, e.keys)
	req := provider.Request{
		Prompt:       prompt,
		SystemPrompt: systemPrompt,
		MaxTokens:    defaultMaxTokens,
		Temperature:  defaultTemperature,
	}

	start := time.Now()
	resp, err := e.callWithRetry(ctx, p, req, runID, nodeID)
	latency := time.Since(start)

	status := "success"
	if err != nil {
		status = "error"
		if e.cfg.metrics != nil {
			var provErr *provider.Error
			code := "unknown"
			if errors.As(err, &provErr) {
				code = string(provErr.Code)
			}
			e.cfg.metrics.IncrementProviderErrors(p.Name(), code)
		}
	}
	if e.cfg.metrics != nil {
		e.cfg.metrics.RecordNodeLatency(runID, nodeID, latency, status)
	}
	if err != nil {
		return "", err
	}

	if e.cfg.costTracker != nil {
		e.cfg.costTracker.RecordLLMCall(resp.Model, 0, resp.TokensUsed, nodeID)
	}

	return StripCodeBlocks(resp.Content), nil
}

// callWithRetry makes one provider call, retrying with exponential
// backoff while cfg.retryPolicy is set and the failure is retryable. With
// no policy configured (or one whose MaxAttempts is below 1) it makes
// exactly one attempt, matching the no-retry-by-default behavior.
func (e *Executor) callWithRetry(ctx context.Context, p provider.Provider, req provider.Request, runID, nodeID string) (provider.Response, error) {
	policy := e.cfg.retryPolicy
	if policy == nil || policy.MaxAttempts < 1 {
		return p.Generate(ctx, req)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano())) // #nosec G404 -- jitter timing, not security

	var lastErr error
	for attempt := 0; attempt < policy.MaxAttempts; attempt++ {
		resp, err := p.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		var provErr *provider.Error
		retryable := errors.As(err, &provErr) && provErr.Retryable()
		if !retryable || attempt == policy.MaxAttempts-1 {
			return provider.Response{}, err
		}

		if e.cfg.metrics != nil {
			e.cfg.metrics.IncrementRetries(runID, nodeID)
		}

		delay := computeBackoff(attempt, policy.BaseDelay, policy.MaxDelay, rng)
		select {
		case <-ctx.Done():
			return provider.Response{}, ctx.Err()
		case <-time.After(delay):
		}
	}
	return provider.Response{}, lastErr
}

func (e *Executor) bumpInflight(delta int) {
	e.inflightMu.Lock()
	e.inflight += delta
	count := e.inflight
	e.inflightMu.Unlock()

	if e.cfg.metrics != nil {
		e.cfg.metrics.SetInflightGenerations(count)
	}
}

func (e *Executor) setGenerating(nodeID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if node := e.project.FindNode(nodeID); node != nil {
		node.Status = StatusGenerating
		node.ErrorMessage = nil
	}
}

func (e *Executor) setComplete(nodeID, code string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if node := e.project.FindNode(nodeID); node != nil {
		node.Status = StatusComplete
		node.GeneratedCode = &code
		node.ErrorMessage = nil
	}
}

func (e *Executor) setError(nodeID, message string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if node := e.project.FindNode(nodeID); node != nil {
		node.Status = StatusError
		node.ErrorMessage = &message
	}
}

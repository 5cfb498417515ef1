// Package emit provides the execution-progress event channel: the
// Executor emits one Event per step of ExecuteAll/ExecuteNodes, and an
// Emitter delivers those events to a log, a metrics backend, or a
// WebSocket-fronted UI.
package emit

import "context"

// Emitter receives events produced by a run of ExecuteAll or
// ExecuteNodes.
//
// Emitters enable pluggable observability backends:
//   - Logging: stdout, files.
//   - Distributed tracing: OpenTelemetry.
//   - In-memory history for a UI to poll or stream over a websocket.
//
// Implementations should be non-blocking and safe for concurrent use:
// several runs may share one emitter (the server hands the same emitter
// to every Executor it builds).
type Emitter interface {
	// Emit sends one event to the configured backend. Emit should not
	// panic; implementations that can fail should log and continue.
	Emit(event Event)

	// EmitBatch sends multiple events, preserving order. Useful when a
	// caller buffers a wave's NodeUpdate events and flushes them
	// together.
	EmitBatch(ctx context.Context, events []Event) error

	// Flush blocks until all buffered events have been sent. Call it at
	// run completion and before process shutdown.
	Flush(ctx context.Context) error
}

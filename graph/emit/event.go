// Package emit provides the execution-progress event channel: the
// Executor emits one Event per step of ExecuteAll/ExecuteNodes, and an
// Emitter delivers those events to a log, a metrics backend, or a
// WebSocket-fronted UI.
package emit

// EventType names one of the seven events an execution run can produce.
// Events are delivered in causal order: Started precedes every
// WaveStarted, a wave's NodeUpdate(Generating) events precede its
// terminal NodeUpdate events, WaveCompleted follows every node in that
// wave reaching a terminal state, and Completed (or Cancelled) is always
// last.
type EventType string

const (
	TypeStarted       EventType = "started"
	TypeWaveStarted   EventType = "wave_started"
	TypeNodeUpdate    EventType = "node_update"
	TypeWaveCompleted EventType = "wave_completed"
	TypeCompleted     EventType = "completed"
	TypeCancelled     EventType = "cancelled"
	TypeError         EventType = "error"
)

// Event is one message on the execution-progress channel. Not every
// field is populated for every Type; see the per-type doc comments below.
type Event struct {
	Type EventType

	// RunID identifies the ExecuteAll/ExecuteNodes invocation that
	// produced this event.
	RunID string

	// Started
	TotalNodes int
	TotalWaves int

	// WaveStarted, WaveCompleted (NodeIDs: WaveStarted only)
	WaveNumber int
	NodeIDs    []string

	// NodeUpdate
	NodeID        string
	Status        string
	Message       string
	GeneratedCode *string

	// WaveCompleted
	Successful int
	Failed     int

	// Completed
	TotalSuccessful int
	TotalFailed     int
	TotalSkipped    int

	// Meta carries any additional structured data a specific backend
	// (OTel span attributes, a custom log sink) wants attached.
	Meta map[string]interface{}
}

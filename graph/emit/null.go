package emit

import "context"

// NullEmitter implements Emitter by discarding every event.
//
// Use it when a caller of ExecuteAll/ExecuteNodes has no progress UI and
// doesn't want log output, such as in tests that only care about the
// returned error.
type NullEmitter struct{}

// NewNullEmitter returns an Emitter that discards all events.
func NewNullEmitter() *NullEmitter {
	return &NullEmitter{}
}

func (n *NullEmitter) Emit(event Event) {}

func (n *NullEmitter) EmitBatch(ctx context.Context, events []Event) error { return nil }

func (n *NullEmitter) Flush(ctx context.Context) error { return nil }

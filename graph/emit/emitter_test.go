package emit

import (
	"context"
	"reflect"
	"testing"
)

// recordingEmitter is the same kind of test double the teacher's own
// emit package tests lean on: it records every event it receives rather
// than forwarding to a real backend.
type recordingEmitter struct {
	events []Event
}

func (r *recordingEmitter) Emit(event Event) { r.events = append(r.events, event) }

func (r *recordingEmitter) EmitBatch(_ context.Context, events []Event) error {
	r.events = append(r.events, events...)
	return nil
}

func (r *recordingEmitter) Flush(_ context.Context) error { return nil }

func TestEmitter_EmitBatchPreservesOrder(t *testing.T) {
	var e Emitter = &recordingEmitter{}
	rec := e.(*recordingEmitter)

	batch := []Event{
		{Type: TypeWaveStarted, RunID: "r1", WaveNumber: 0},
		{Type: TypeNodeUpdate, RunID: "r1", NodeID: "a", Status: "generating"},
		{Type: TypeNodeUpdate, RunID: "r1", NodeID: "a", Status: "complete"},
	}
	if err := e.EmitBatch(context.Background(), batch); err != nil {
		t.Fatalf("EmitBatch: %v", err)
	}
	if len(rec.events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(rec.events))
	}
	for i, want := range batch {
		if !reflect.DeepEqual(rec.events[i], want) {
			t.Errorf("event %d: got %+v, want %+v", i, rec.events[i], want)
		}
	}
}

func TestEmitter_ImplementationsSatisfyInterface(t *testing.T) {
	var _ Emitter = NewLogEmitter(nil, false)
	var _ Emitter = NewNullEmitter()
	var _ Emitter = NewBufferedEmitter()
}

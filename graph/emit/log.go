package emit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// LogEmitter implements Emitter by writing structured log output to a
// writer.
//
// Supports two output modes:
//   - Text mode (default): human-readable, one line per event.
//   - JSON mode: one JSON object per line (JSONL).
//
// Example text output:
//
//	[node_update] runID=run-001 nodeID=nodeA status=generating
//
// Example JSON output (Event has no json tags, so the keys are its Go
// field names and every field is written, set or not):
//
//	{"Type":"node_update","RunID":"run-001","TotalNodes":0,"TotalWaves":0,"WaveNumber":0,"NodeIDs":null,"NodeID":"nodeA","Status":"generating","Message":"","GeneratedCode":null,"Successful":0,"Failed":0,"TotalSuccessful":0,"TotalFailed":0,"TotalSkipped":0,"Meta":null}
type LogEmitter struct {
	writer   io.Writer
	jsonMode bool
}

// NewLogEmitter creates a LogEmitter. A nil writer defaults to os.Stdout.
func NewLogEmitter(writer io.Writer, jsonMode bool) *LogEmitter {
	if writer == nil {
		writer = os.Stdout
	}
	return &LogEmitter{writer: writer, jsonMode: jsonMode}
}

func (l *LogEmitter) Emit(event Event) {
	if l.jsonMode {
		l.emitJSON(event)
	} else {
		l.emitText(event)
	}
}

func (l *LogEmitter) emitJSON(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		_, _ = fmt.Fprintf(l.writer, "{\"error\":\"failed to marshal event: %v\"}\n", err)
		return
	}
	_, _ = fmt.Fprintf(l.writer, "%s\n", data)
}

func (l *LogEmitter) emitText(event Event) {
	_, _ = fmt.Fprintf(l.writer, "[%s] runID=%s", event.Type, event.RunID)

	switch event.Type {
	case TypeStarted:
		_, _ = fmt.Fprintf(l.writer, " totalNodes=%d totalWaves=%d", event.TotalNodes, event.TotalWaves)
	case TypeWaveStarted:
		_, _ = fmt.Fprintf(l.writer, " wave=%d nodes=%v", event.WaveNumber, event.NodeIDs)
	case TypeNodeUpdate:
		_, _ = fmt.Fprintf(l.writer, " nodeID=%s status=%s", event.NodeID, event.Status)
		if event.Message != "" {
			_, _ = fmt.Fprintf(l.writer, " message=%q", event.Message)
		}
	case TypeWaveCompleted:
		_, _ = fmt.Fprintf(l.writer, " wave=%d successful=%d failed=%d", event.WaveNumber, event.Successful, event.Failed)
	case TypeCompleted:
		_, _ = fmt.Fprintf(l.writer, " successful=%d failed=%d skipped=%d", event.TotalSuccessful, event.TotalFailed, event.TotalSkipped)
	case TypeError:
		_, _ = fmt.Fprintf(l.writer, " message=%q", event.Message)
	}

	if len(event.Meta) > 0 {
		metaJSON, err := json.Marshal(event.Meta)
		if err == nil {
			_, _ = fmt.Fprintf(l.writer, " meta=%s", metaJSON)
		}
	}

	_, _ = fmt.Fprint(l.writer, "\n")
}

// EmitBatch writes events in order; useful when the executor buffers a
// wave's NodeUpdate events and flushes them together.
func (l *LogEmitter) EmitBatch(_ context.Context, events []Event) error {
	for _, event := range events {
		l.Emit(event)
	}
	return nil
}

// Flush is a no-op: LogEmitter writes synchronously with no internal
// buffering.
func (l *LogEmitter) Flush(_ context.Context) error {
	return nil
}

package emit

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OTelEmitter implements Emitter by creating one OpenTelemetry span per
// event.
//
// Each event becomes an immediately-ended span: the events on this
// channel mark points in time (a node entering the generating state, a
// wave completing), not durations, so there's no natural start/end pair
// to attach a single span to.
type OTelEmitter struct {
	tracer trace.Tracer
}

// NewOTelEmitter creates an OTelEmitter using tracer, typically obtained
// via otel.Tracer("needlepoint").
func NewOTelEmitter(tracer trace.Tracer) *OTelEmitter {
	return &OTelEmitter{tracer: tracer}
}

func (o *OTelEmitter) Emit(event Event) {
	_, span := o.tracer.Start(context.Background(), string(event.Type))
	defer span.End()
	o.annotate(span, event)
}

func (o *OTelEmitter) EmitBatch(ctx context.Context, events []Event) error {
	for _, event := range events {
		_, span := o.tracer.Start(ctx, string(event.Type))
		o.annotate(span, event)
		span.End()
	}
	return nil
}

// Flush force-flushes the global tracer provider if it supports it.
func (o *OTelEmitter) Flush(ctx context.Context) error {
	tp := otel.GetTracerProvider()
	type flusher interface {
		ForceFlush(context.Context) error
	}
	if f, ok := tp.(flusher); ok {
		return f.ForceFlush(ctx)
	}
	return nil
}

func (o *OTelEmitter) annotate(span trace.Span, event Event) {
	attrs := []attribute.KeyValue{
		attribute.String("needlepoint.run_id", event.RunID),
	}
	switch event.Type {
	case TypeStarted:
		attrs = append(attrs,
			attribute.Int("needlepoint.total_nodes", event.TotalNodes),
			attribute.Int("needlepoint.total_waves", event.TotalWaves),
		)
	case TypeWaveStarted, TypeWaveCompleted:
		attrs = append(attrs, attribute.Int("needlepoint.wave", event.WaveNumber))
		if event.Type == TypeWaveCompleted {
			attrs = append(attrs,
				attribute.Int("needlepoint.successful", event.Successful),
				attribute.Int("needlepoint.failed", event.Failed),
			)
		}
	case TypeNodeUpdate:
		attrs = append(attrs,
			attribute.String("needlepoint.node_id", event.NodeID),
			attribute.String("needlepoint.status", event.Status),
		)
		if event.Message != "" {
			attrs = append(attrs, attribute.String("needlepoint.message", event.Message))
		}
	case TypeCompleted:
		attrs = append(attrs,
			attribute.Int("needlepoint.total_successful", event.TotalSuccessful),
			attribute.Int("needlepoint.total_failed", event.TotalFailed),
			attribute.Int("needlepoint.total_skipped", event.TotalSkipped),
		)
	case TypeError:
		attrs = append(attrs, attribute.String("needlepoint.message", event.Message))
	}
	span.SetAttributes(attrs...)

	for key, value := range event.Meta {
		switch v := value.(type) {
		case string:
			span.SetAttributes(attribute.String(key, v))
		case int:
			span.SetAttributes(attribute.Int(key, v))
		case int64:
			span.SetAttributes(attribute.Int64(key, v))
		case float64:
			span.SetAttributes(attribute.Float64(key, v))
		case bool:
			span.SetAttributes(attribute.Bool(key, v))
		default:
			span.SetAttributes(attribute.String(key, fmt.Sprintf("%v", v)))
		}
	}

	if event.Type == TypeError || (event.Type == TypeNodeUpdate && event.Status == "error") {
		msg := event.Message
		span.SetStatus(codes.Error, msg)
		if msg != "" {
			span.RecordError(fmt.Errorf("%s", msg))
		}
	}
}

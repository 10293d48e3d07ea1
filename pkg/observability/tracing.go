package observability

import (
	"context"

	"github.com/aretw0/waypoint/pkg/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope used for dispatch spans.
const TracerName = "github.com/aretw0/waypoint"

// DispatchSpanName is the name of the span wrapping one dispatch.
const DispatchSpanName = "waypoint.dispatch"

// StartDispatchSpan starts the span for one dispatch.
// The caller is responsible for calling EndDispatchSpan.
func StartDispatchSpan(ctx context.Context, tracer trace.Tracer, machine, instance string, from domain.StateID, msg domain.MessageID) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, DispatchSpanName, trace.WithSpanKind(trace.SpanKindInternal))
	span.SetAttributes(
		attribute.String("waypoint.machine", machine),
		attribute.String("waypoint.instance", instance),
		attribute.String("waypoint.from", string(from)),
		attribute.String("waypoint.message", string(msg)),
	)
	return ctx, span
}

// EndDispatchSpan records the result of a dispatch on span and ends it.
func EndDispatchSpan(span trace.Span, res domain.Result, err error) {
	span.SetAttributes(attribute.String("waypoint.outcome", string(res.Outcome)))
	if res.Found() {
		span.SetAttributes(
			attribute.String("waypoint.action", res.Action),
			attribute.String("waypoint.next", string(res.Next)),
		)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// TraceIDs extracts the trace and span ids from ctx for log correlation.
func TraceIDs(ctx context.Context) (traceID, spanID string) {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		spanCtx := span.SpanContext()
		return spanCtx.TraceID().String(), spanCtx.SpanID().String()
	}
	return "", ""
}

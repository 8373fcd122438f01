// AngelaMos | 2026
// tracing.go

package testutil

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// RecordSpans installs an in-memory tracer provider as the otel global for
// the rest of the test.
func RecordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background()) //nolint:errcheck // in-memory provider
	})
	return recorder
}

// SpanEvents lists the event names of every ended span, in end order.
func SpanEvents(recorder *tracetest.SpanRecorder) []string {
	var names []string
	for _, s := range recorder.Ended() {
		for _, e := range s.Events() {
			names = append(names, e.Name)
		}
	}
	return names
}

// TraceContextPropagation installs the W3C propagator and returns a func
// restoring the previous one.
func TraceContextPropagation() func() {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	return func() { otel.SetTextMapPropagator(prev) }
}

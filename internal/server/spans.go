package server

import (
	"context"

	"go.opentelemetry.io/otel/trace"

	"github.com/privascope-ai/privascope/internal/telemetry"
)

// startSpan opens a request span. Attribute maps are filtered so policy
// text and credentials never reach the trace backend.
func (s *Server) startSpan(ctx context.Context, name string, kind trace.SpanKind, attrs map[string]interface{}) (context.Context, trace.Span) {
	ctx, span := s.telemetry.Tracer().Start(ctx, name, trace.WithSpanKind(kind))
	setSpanAttrs(span, attrs)
	return ctx, span
}

func setSpanAttrs(span trace.Span, attrs map[string]interface{}) {
	if span == nil || len(attrs) == 0 {
		return
	}
	span.SetAttributes(telemetry.SafeAttributes(attrs)...)
}

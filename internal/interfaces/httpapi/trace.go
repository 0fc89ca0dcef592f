package httpapi

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var apiTracer = otel.Tracer("cornerscout/internal/interfaces/httpapi")
var noopSpan = trace.SpanFromContext(context.Background())

const handlerSpanPrefix = "httpapi.Handler."

// startSpan opens a child span for handler-level work only. Middleware
// and response helpers pass through: they would add a span per request
// with no extra information. Requests on filtered routes (healthz and
// friends) carry no valid parent span, and no root span is created for
// them here.
func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if !trace.SpanFromContext(ctx).SpanContext().IsValid() {
		return ctx, noopSpan
	}
	if !shouldCreateHTTPAPISpan(name) {
		return ctx, noopSpan
	}
	return apiTracer.Start(ctx, name)
}

func shouldCreateHTTPAPISpan(name string) bool {
	return strings.HasPrefix(name, handlerSpanPrefix)
}

package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const tracingOperation = "property-service/http"

// Tracing starts a server span per request through otelhttp, continuing any
// trace context sent by the caller. Uses the global provider and propagator.
// Once routing is done the span is renamed after the chi route pattern so
// ids do not end up in span names.
func Tracing(next http.Handler) http.Handler {
	routed := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)

		rctx := chi.RouteContext(r.Context())
		if rctx == nil || rctx.RoutePattern() == "" {
			return
		}
		span := oteltrace.SpanFromContext(r.Context())
		span.SetName(r.Method + " " + rctx.RoutePattern())
		span.SetAttributes(attribute.String("http.route", rctx.RoutePattern()))
	})
	return otelhttp.NewHandler(routed, tracingOperation,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}

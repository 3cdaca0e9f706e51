package logger

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Init configures the global zerolog logger with the service name attached
// to every line. Call once from the composition root before serving.
func Init(serviceName string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zlog.Logger = zlog.With().Str("service", serviceName).Logger()
}

// Ctx returns the request-scoped logger, falling back to the global one when
// the context carries none.
func Ctx(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		return &zlog.Logger
	}
	return l
}

// Middleware extracts the incoming trace context and stores a logger carrying
// the trace_id in the request context, so handlers can correlate log lines
// with spans.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

		l := zlog.Logger
		if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
			l = l.With().Str("trace_id", sc.TraceID().String()).Logger()
		}
		ctx = l.WithContext(ctx)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

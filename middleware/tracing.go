package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/upb/newsletter/internal/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
)

// unmatchedRoute labels requests that no route pattern matched, keeping
// metric cardinality bounded.
const unmatchedRoute = "unmatched"

// RequestTracing wraps every request in an "HTTP request" span. Each request
// gets a fresh request_id that tags all log entries emitted while serving it
// and is exposed through GetRequestIDFromContext. Incoming W3C trace context
// is honoured so the span joins the caller's trace.
func RequestTracing(logger *zap.Logger, metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			done := metrics.RequestStarted()
			defer done()

			ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			ctx = observability.WithLogger(ctx, observability.LoggerFromContextOr(ctx, logger))

			requestID := uuid.New().String()
			ctx = WithRequestID(ctx, requestID)

			ctx, span := observability.StartSpan(ctx, "HTTP request",
				zap.String("request_id", requestID),
				zap.String("http_method", r.Method),
				zap.String("http_target", r.URL.Path),
				zap.String("http_user_agent", r.UserAgent()),
				zap.String("client_ip", r.RemoteAddr),
			)
			defer span.End()

			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			if status >= http.StatusInternalServerError {
				span.RecordError(fmt.Errorf("request failed with status %d", status))
			}

			route := routePattern(r)
			metrics.RecordRequest(r.Method, route, status, time.Since(start))

			span.Logger().Info("request completed",
				zap.String("http_route", route),
				zap.Int("http_status_code", status),
				zap.Int("bytes_written", ww.BytesWritten()),
			)
		})
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return unmatchedRoute
}

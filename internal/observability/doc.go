// Package observability provides structured logging, metrics, and tracing
// for the newsletter service.
//
// This package implements:
//   - A composed zap pipeline (directive filter, span field storage,
//     Bunyan-style JSON formatting) installed once as the process-wide logger
//   - Span scopes that tag every log line emitted inside them, including lines
//     emitted by code they call, and mirror themselves as OpenTelemetry spans
//   - OpenTelemetry tracer provider setup (stdout or OTLP exporters)
//   - Prometheus-compatible metrics collection
//
// Request handling code logs through LoggerFromContext so that the fields of
// every enclosing span travel with each entry.
package observability

package observability

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TracerName is the instrumentation scope for spans opened by StartSpan.
const TracerName = "github.com/upb/newsletter"

// Span is a named scope whose fields tag every entry logged through its
// context. It is also an OpenTelemetry span, so trace_id and span_id are
// added to the fields whenever a tracer provider is recording.
//
// The START and END records report the caller of StartSpan and End.
type Span struct {
	name    string
	logger  *zap.Logger
	markers *zap.Logger
	span    trace.Span
	start   time.Time
	ended   atomic.Bool
}

// StartSpan opens a child scope of the span carried by ctx. The returned
// context carries the child's logger; callers must defer End.
//
//	ctx, span := observability.StartSpan(ctx, "Saving subscriber", zap.String("email", email))
//	defer span.End()
//	observability.LoggerFromContext(ctx).Info("saving")
func StartSpan(ctx context.Context, name string, fields ...zap.Field) (context.Context, *Span) {
	ctx, otelSpan := otel.Tracer(TracerName).Start(ctx, name,
		trace.WithAttributes(attributesFromFields(fields)...),
	)

	spanFields := fields[:len(fields):len(fields)]
	if sc := otelSpan.SpanContext(); sc.IsValid() {
		spanFields = append(spanFields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}

	logger := LoggerFromContext(ctx).With(spanFields...)
	s := &Span{
		name:    name,
		logger:  logger,
		markers: logger.WithOptions(zap.AddCallerSkip(1)),
		span:    otelSpan,
		start:   time.Now(),
	}
	s.markers.Info(fmt.Sprintf("[%s - START]", strings.ToUpper(name)))

	return WithLogger(ctx, s.logger), s
}

// Logger returns the logger tagged with this span's fields.
func (s *Span) Logger() *zap.Logger {
	return s.logger
}

// RecordError marks the span as failed.
func (s *Span) RecordError(err error) {
	if err == nil {
		return
	}
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

// End closes the span. Calls after the first are no-ops.
func (s *Span) End() {
	if !s.ended.CompareAndSwap(false, true) {
		return
	}
	s.markers.Info(fmt.Sprintf("[%s - END]", strings.ToUpper(s.name)),
		zap.Int64("elapsed_milliseconds", time.Since(s.start).Milliseconds()),
	)
	s.span.End()
}

func attributesFromFields(fields []zap.Field) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(fields))
	for _, f := range fields {
		switch f.Type {
		case zapcore.StringType:
			attrs = append(attrs, attribute.String(f.Key, f.String))
		case zapcore.Int64Type, zapcore.Int32Type, zapcore.Int16Type, zapcore.Int8Type:
			attrs = append(attrs, attribute.Int64(f.Key, f.Integer))
		case zapcore.BoolType:
			attrs = append(attrs, attribute.Bool(f.Key, f.Integer == 1))
		case zapcore.StringerType:
			if s, ok := f.Interface.(fmt.Stringer); ok {
				attrs = append(attrs, attribute.String(f.Key, s.String()))
			}
		}
	}
	return attrs
}

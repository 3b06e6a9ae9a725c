package observability

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Pipeline is the composed log processor: filter, then span field storage,
// then Bunyan-style JSON formatting into a sink.
//
// A Pipeline is immutable after Build and safe for concurrent use; the sink
// is wrapped in zapcore.Lock so callers never synchronize writes themselves.
type Pipeline struct {
	name   string
	filter *Filter
	core   zapcore.Core
}

// Build composes a pipeline tagged with serviceName that writes to sink.
//
// The filter is taken from FilterEnvVar when it is set and valid, otherwise
// from defaultDirective. Building never installs anything; see Install.
func Build(serviceName, defaultDirective string, sink zapcore.WriteSyncer) (*Pipeline, error) {
	if serviceName == "" {
		return nil, errors.New("service name is required")
	}
	if sink == nil {
		return nil, errors.New("sink is required")
	}

	filter, err := ResolveFilter(defaultDirective)
	if err != nil {
		return nil, fmt.Errorf("failed to parse filter directive: %w", err)
	}

	format := zapcore.NewCore(
		zapcore.NewJSONEncoder(bunyanEncoderConfig()),
		zapcore.Lock(sink),
		zapcore.DebugLevel,
	).With(bunyanFields(serviceName))

	return &Pipeline{
		name:   serviceName,
		filter: filter,
		core: &filterCore{
			filter: filter,
			next:   &storageCore{next: format},
		},
	}, nil
}

// Name returns the service name every record is tagged with.
func (p *Pipeline) Name() string {
	return p.name
}

// Filter returns the effective filter.
func (p *Pipeline) Filter() *Filter {
	return p.filter
}

// Core returns the composed zap core.
func (p *Pipeline) Core() zapcore.Core {
	return p.core
}

// Logger returns a logger that writes through the pipeline.
func (p *Pipeline) Logger(opts ...zap.Option) *zap.Logger {
	return zap.New(p.core, append([]zap.Option{zap.AddCaller()}, opts...)...)
}

// filterCore drops entries the directive rejects before any encoding work.
type filterCore struct {
	filter *Filter
	next   zapcore.Core
}

func (c *filterCore) Enabled(lvl zapcore.Level) bool {
	return c.filter.LevelEnabled(lvl)
}

func (c *filterCore) With(fields []zapcore.Field) zapcore.Core {
	return &filterCore{filter: c.filter, next: c.next.With(fields)}
}

func (c *filterCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.filter.Enabled(ent.LoggerName, ent.Level) {
		return ce
	}
	return c.next.Check(ent, ce)
}

func (c *filterCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	return c.next.Write(ent, fields)
}

func (c *filterCore) Sync() error {
	return c.next.Sync()
}

// storageCore keeps the fields attached by enclosing spans. Nested spans
// override keys set by their parents instead of repeating them.
type storageCore struct {
	next   zapcore.Core
	fields []zapcore.Field
}

func (c *storageCore) Enabled(lvl zapcore.Level) bool {
	return c.next.Enabled(lvl)
}

func (c *storageCore) With(fields []zapcore.Field) zapcore.Core {
	return &storageCore{next: c.next, fields: mergeFields(c.fields, fields)}
}

func (c *storageCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *storageCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	return c.next.Write(ent, mergeFields(c.fields, fields))
}

func (c *storageCore) Sync() error {
	return c.next.Sync()
}

// mergeFields returns base followed by extra, dropping base fields whose key
// extra redefines. Neither input is modified.
func mergeFields(base, extra []zapcore.Field) []zapcore.Field {
	if len(base) == 0 {
		return extra
	}
	if len(extra) == 0 {
		return base
	}

	merged := make([]zapcore.Field, 0, len(base)+len(extra))
	for _, field := range base {
		if !hasKey(extra, field.Key) {
			merged = append(merged, field)
		}
	}
	return append(merged, extra...)
}

func hasKey(fields []zapcore.Field, key string) bool {
	for _, field := range fields {
		if field.Key == key {
			return true
		}
	}
	return false
}

func bunyanEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		TimeKey:        "time",
		NameKey:        "target",
		CallerKey:      "caller",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    bunyanLevelEncoder,
		EncodeTime:     utcTimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}
}

func bunyanFields(serviceName string) []zapcore.Field {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	return []zapcore.Field{
		zap.Int("v", 0),
		zap.String("name", serviceName),
		zap.String("hostname", hostname),
		zap.Int("pid", os.Getpid()),
	}
}

// bunyanLevelEncoder writes levels as Bunyan's numeric severities.
func bunyanLevelEncoder(lvl zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	switch {
	case lvl <= zapcore.DebugLevel:
		enc.AppendInt(20)
	case lvl == zapcore.InfoLevel:
		enc.AppendInt(30)
	case lvl == zapcore.WarnLevel:
		enc.AppendInt(40)
	case lvl == zapcore.ErrorLevel:
		enc.AppendInt(50)
	default:
		enc.AppendInt(60)
	}
}

func utcTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.UTC().Format(time.RFC3339Nano))
}

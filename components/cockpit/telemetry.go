package cockpit

import (
	"context"
	"sort"

	"go.uber.org/zap"
)

// Telemetry records cockpit events for observability.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}

func normalizeLogger(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// LoggerTelemetry writes telemetry events as structured log lines.
type LoggerTelemetry struct {
	logger *zap.Logger
}

// NewLoggerTelemetry wraps a zap logger; nil discards events.
func NewLoggerTelemetry(logger *zap.Logger) *LoggerTelemetry {
	return &LoggerTelemetry{logger: normalizeLogger(logger).Named("telemetry")}
}

// Record implements Telemetry.
func (t *LoggerTelemetry) Record(_ context.Context, event string, payload map[string]any) {
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	fields := make([]zap.Field, 0, len(keys))
	for _, key := range keys {
		fields = append(fields, zap.Any(key, payload[key]))
	}
	t.logger.Info(event, fields...)
}

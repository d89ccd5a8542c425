package cloudintegration

import (
	"go.uber.org/zap"
)

// Telemetry receives usage events.
type Telemetry interface {
	Enabled() bool
	SendEvent(name string, attrs map[string]any)
}

// LogTelemetry writes events to a logger at info level.
type LogTelemetry struct {
	Logger *zap.Logger
}

var _ Telemetry = &LogTelemetry{}

func (t *LogTelemetry) Enabled() bool {
	return t != nil && t.Logger != nil
}

func (t *LogTelemetry) SendEvent(name string, attrs map[string]any) {
	if !t.Enabled() {
		return
	}
	fields := make([]zap.Field, 0, len(attrs)+1)
	fields = append(fields, zap.String("event", name))
	for k, v := range attrs {
		fields = append(fields, zap.Any(k, v))
	}
	t.Logger.Info("telemetry", fields...)
}

type noopTelemetry struct{}

func (noopTelemetry) Enabled() bool                    { return false }
func (noopTelemetry) SendEvent(string, map[string]any) {}

// Package observability wires the ambient logging, tracing, and metrics
// stack every reader and service runs under: zap for structured logs,
// OpenTelemetry for traces, Prometheus for counters/histograms (grounded
// on the teacher's otel/zap/prometheus dependency set).
package observability

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process-wide zap.Logger, JSON-encoded in
// production and console-encoded in development, matching the teacher's
// environment-gated logging setup.
func NewLogger(development bool) (*zap.Logger, error) {
	if development {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return cfg.Build()
	}
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

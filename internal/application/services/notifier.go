package services

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/bimakw/staking-gateway/internal/domain/entities"
)

// Notifier receives the phase events of mutating actions
type Notifier interface {
	Notify(ctx context.Context, event entities.PhaseEvent)
}

// MultiNotifier fans an event out to every subscriber in order
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, event entities.PhaseEvent) {
	for _, n := range m {
		if n != nil {
			n.Notify(ctx, event)
		}
	}
}

// LogNotifier writes phase events to the log
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a new log notifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, event entities.PhaseEvent) {
	fields := []zap.Field{
		zap.String("action", event.Action),
		zap.String("action_id", event.ActionID),
		zap.String("phase", string(event.Phase)),
	}
	if event.TxHash != "" {
		fields = append(fields, zap.String("tx_hash", event.TxHash))
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		fields = append(fields, zap.String("trace_id", sc.TraceID().String()))
	}

	if event.Phase == entities.PhaseFailed {
		n.logger.Warn(event.Message, append(fields, zap.String("error", event.Error))...)
		return
	}
	n.logger.Info(event.Message, fields...)
}

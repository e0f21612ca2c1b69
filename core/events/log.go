package events

import (
	"log/slog"
	"sort"
)

// LogEmitter writes committed events to a structured logger.
type LogEmitter struct {
	Logger *slog.Logger
}

// Emit implements the Emitter interface.
func (l LogEmitter) Emit(evt Event) {
	if evt == nil {
		return
	}
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	args := []any{slog.String("type", evt.EventType())}
	if provider, ok := evt.(Record); ok && provider.Payload != nil {
		args = append(args, slog.Uint64("sequence", provider.Payload.Sequence))
		keys := make([]string, 0, len(provider.Payload.Attributes))
		for k := range provider.Payload.Attributes {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		attrs := make([]any, 0, len(keys))
		for _, k := range keys {
			attrs = append(attrs, slog.String(k, provider.Payload.Attributes[k]))
		}
		args = append(args, slog.Group("attributes", attrs...))
	}
	logger.Info("ledger event", args...)
}

package notifications

import (
	"context"
	"log/slog"
)

type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier { return &LogNotifier{log: log} }

func (n *LogNotifier) NotifyError(ctx context.Context, e ErrorEvent) error {
	level := slog.LevelWarn
	if e.Server() {
		level = slog.LevelError
	}

	attrs := []any{
		"kind", e.Kind,
		"status", e.Status,
		"method", e.Method,
		"route", e.Route,
		"request_id", e.RequestID,
	}
	if e.Cause != "" {
		attrs = append(attrs, "cause", e.Cause)
	}
	if e.UserID != "" {
		attrs = append(attrs, "user_id", e.UserID)
	}

	n.log.Log(ctx, level, "request_error: "+e.Message, attrs...)
	return nil
}

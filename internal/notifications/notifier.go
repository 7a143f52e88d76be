// Package notifications delivers request error events to whoever wants them:
// the process log, and optionally a Redis channel.
package notifications

import (
	"context"
	"errors"
	"time"
)

type ErrorEvent struct {
	RequestID  string    `json:"requestId,omitempty"`
	Method     string    `json:"method"`
	Route      string    `json:"route"`
	Status     int       `json:"status"`
	Kind       string    `json:"kind"`
	Message    string    `json:"message"`
	Cause      string    `json:"cause,omitempty"`
	UserID     string    `json:"userId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Server reports whether the event describes a server-side failure.
func (e ErrorEvent) Server() bool {
	return e.Status >= 500
}

type Notifier interface {
	NotifyError(ctx context.Context, event ErrorEvent) error
}

// Multi delivers to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) NotifyError(ctx context.Context, event ErrorEvent) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.NotifyError(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

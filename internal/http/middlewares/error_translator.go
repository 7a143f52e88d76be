package middlewares

import (
	"time"

	"github.com/geocoder89/userhub/internal/actorctx"
	"github.com/geocoder89/userhub/internal/apperr"
	"github.com/geocoder89/userhub/internal/notifications"
	"github.com/gin-gonic/gin"
)

type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

type ErrorCounter interface {
	IncErrorEvent(kind string)
}

// ErrorTranslator is the one place handler errors become responses.
// It writes {"error": APIError} with the status chosen by policy, then emits
// the error to notifier. Responses a handler already wrote are left alone.
func ErrorTranslator(policy apperr.StatusPolicy, notifier notifications.Notifier, counter ErrorCounter) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Next()

		if len(ctx.Errors) == 0 {
			return
		}

		e := apperr.From(ctx.Errors.Last().Err)
		status := policy.Status(e.Kind)
		requestID := RequestIDFrom(ctx)

		if !ctx.Writer.Written() {
			ctx.JSON(status, gin.H{
				"error": APIError{
					Code:      e.Kind.Code(),
					Message:   e.Message,
					RequestID: requestID,
					Details:   e.Details,
				},
			})
		}

		if counter != nil {
			counter.IncErrorEvent(e.Kind.Code())
		}

		if notifier == nil {
			return
		}

		route := ctx.FullPath()
		if route == "" {
			route = ctx.Request.URL.Path
		}

		event := notifications.ErrorEvent{
			RequestID:  requestID,
			Method:     ctx.Request.Method,
			Route:      route,
			Status:     status,
			Kind:       e.Kind.Code(),
			Message:    e.Message,
			OccurredAt: time.Now().UTC(),
		}
		if e.Err != nil {
			event.Cause = e.Err.Error()
		}
		if userID, ok := actorctx.UserIDFrom(ctx.Request.Context()); ok {
			event.UserID = userID
		}

		// delivery problems never change the response
		_ = notifier.NotifyError(ctx.Request.Context(), event)
	}
}

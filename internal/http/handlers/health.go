package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	ping          func(ctx context.Context) error
	draining      func() bool
	notifierState func() string
}

// NewHealthHandler takes the store's ping. A nil ping means always ready.
func NewHealthHandler(ping func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{ping: ping}
}

// WithDraining makes Readyz fail while draining reports true, so a load
// balancer stops routing before the server closes.
func (h *HealthHandler) WithDraining(draining func() bool) *HealthHandler {
	h.draining = draining
	return h
}

// WithNotifierState adds the error sink breaker state to Readyz. An open
// breaker is reported but does not make the service unready.
func (h *HealthHandler) WithNotifierState(state func() string) *HealthHandler {
	h.notifierState = state
	return h
}

func (h *HealthHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HealthHandler) Readyz(ctx *gin.Context) {
	body := gin.H{"status": "ready"}
	if h.notifierState != nil {
		body["errorSink"] = h.notifierState()
	}

	if h.draining != nil && h.draining() {
		body["status"] = "not_ready"
		body["reason"] = "shutting down"
		ctx.JSON(http.StatusServiceUnavailable, body)
		return
	}

	if h.ping != nil {
		cctx, cancel := context.WithTimeout(ctx.Request.Context(), 1*time.Second)
		defer cancel()

		if err := h.ping(cctx); err != nil {
			body["status"] = "not_ready"
			body["reason"] = "store unreachable"
			ctx.JSON(http.StatusServiceUnavailable, body)
			return
		}
	}

	ctx.JSON(http.StatusOK, body)
}

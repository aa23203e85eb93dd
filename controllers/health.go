package controllers

import (
	"context"
	"net/http"
	"shop-api/logger"
	"shop-api/response"
	"time"

	"go.uber.org/zap"
)

const healthTimeout = 2 * time.Second

// HealthController reports whether the backing store is reachable.
type HealthController struct {
	Ping func(ctx context.Context) error
}

// NewHealthController creates a new HealthController. ping may be nil.
func NewHealthController(ping func(ctx context.Context) error) *HealthController {
	return &HealthController{Ping: ping}
}

// Health answers the liveness probe
func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if hc.Ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if err := hc.Ping(ctx); err != nil {
			logger.FromContext(r.Context()).Warn("health check failed", zap.Error(err))
			response.Fail(w, http.StatusServiceUnavailable, "Store unavailable")
			return
		}
	}
	response.OK(w, response.Fields{"status": "ok"})
}

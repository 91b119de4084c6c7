package handler

import (
	"context"
	"net/http"
	"time"

	"medical-scheduling/pkg/response"

	"github.com/sirupsen/logrus"
)

// Pinger is anything the health check can ping.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a plain function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type HealthHandler struct {
	checks map[string]Pinger
	log    *logrus.Logger
}

func NewHealthHandler(log *logrus.Logger, checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks, log: log}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{"status": "ok"}
	healthy := true
	for name, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			h.log.Warnf("Health check %s failed: %+v", name, err)
			status[name] = "down"
			healthy = false
			continue
		}
		status[name] = "up"
	}

	if !healthy {
		status["status"] = "degraded"
		response.JSON(w, http.StatusServiceUnavailable, status)
		return
	}
	response.JSON(w, http.StatusOK, status)
}

package app

import (
	"context"
	"net/http"
	"time"

	"github.com/libradesk/libradesk/internal/rest"
	log "github.com/sirupsen/logrus"
)

const healthPingTimeout = time.Second

type HealthCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

type HealthHandler struct {
	checks []HealthCheck
}

func NewHealthHandler(checks ...HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Healthz godoc
// @Summary Report whether the database and the cache backend answer
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} rest.ErrorResponse
// @Router /healthz [get]
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
	defer cancel()

	for _, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			log.Warnf("health check %s failed: %v", check.Name, err)
			rest.WriteError(w, http.StatusServiceUnavailable, check.Name+" not ready", err.Error())
			return
		}
	}
	rest.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

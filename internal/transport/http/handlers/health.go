package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/votelane/reco-service/internal/recplatform"
	"github.com/votelane/reco-service/internal/transport/http/response"
)

type HealthHandler struct {
	db       *sql.DB
	platform *recplatform.Client
}

func NewHealthHandler(db *sql.DB, platform *recplatform.Client) *HealthHandler {
	return &HealthHandler{db: db, platform: platform}
}

// Live handles GET /api/health.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready handles GET /api/health/ready and checks the database connection.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		response.JSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"error":  err.Error(),
		})
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Platform handles GET /api/health/platform and probes the recommendation
// backend. A down backend is reported, not treated as a service failure.
func (h *HealthHandler) Platform(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.platform.Health(ctx); err != nil {
		response.JSON(w, http.StatusOK, map[string]any{
			"status":    "ok",
			"platform":  "unreachable",
			"error":     err.Error(),
			"checkedAt": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"platform":  "reachable",
		"checkedAt": time.Now().UTC().Format(time.RFC3339),
	})
}

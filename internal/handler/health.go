package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler is the health check used by load balancers and monitoring.
type HealthHandler struct {
	db     Pinger
	redis  bool
	broker bool
}

// NewHealthHandler reports db reachability and whether the optional Redis
// and broker integrations are configured.
func NewHealthHandler(db Pinger, redisConfigured, brokerConfigured bool) *HealthHandler {
	return &HealthHandler{db: db, redis: redisConfigured, broker: brokerConfigured}
}

// Health handles GET /healthz.  It answers 503 when the database does not
// respond within two seconds.
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status, db := http.StatusOK, "up"
	if h.db == nil {
		status, db = http.StatusServiceUnavailable, "unconfigured"
	} else if err := h.db.PingContext(ctx); err != nil {
		status, db = http.StatusServiceUnavailable, "down"
	}
	body := echo.Map{
		"status":   "ok",
		"database": db,
		"redis":    h.redis,
		"broker":   h.broker,
	}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	return c.JSON(status, body)
}

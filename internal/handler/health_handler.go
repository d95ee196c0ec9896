package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/course-registry/internal/response"
)

// Pinger reports whether a dependency is reachable. *pgxpool.Pool
// satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the liveness check.
type HealthHandler struct {
	db      Pinger
	started time.Time
	log     zerolog.Logger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db Pinger, log zerolog.Logger) *HealthHandler {
	return &HealthHandler{db: db, started: time.Now(), log: log}
}

type healthStatus struct {
	Status   string  `json:"status"`
	Database string  `json:"database"`
	Uptime   float64 `json:"uptime"`
}

// Health godoc
// GET /health
// Always 200 while the process serves requests; database reports "down"
// when a ping fails within two seconds.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	database := "up"
	if err := h.db.Ping(ctx); err != nil {
		h.log.Warn().Err(err).Msg("Health check: database ping failed")
		database = "down"
	}

	response.Success(c, http.StatusOK, healthStatus{
		Status:   "ok",
		Database: database,
		Uptime:   time.Since(h.started).Seconds(),
	})
}

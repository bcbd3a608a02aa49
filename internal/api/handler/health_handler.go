package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"huntboard/internal/api/dto"
	"huntboard/internal/core/ports"
)

// HealthHandler serves /healthz for the process and its database.
type HealthHandler struct {
	db  ports.HealthChecker
	log *zap.Logger
}

func NewHealthHandler(db ports.HealthChecker, log *zap.Logger) *HealthHandler {
	return &HealthHandler{db: db, log: log}
}

func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	now := time.Now().UTC()
	if err := h.db.Ping(ctx); err != nil {
		h.log.Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, dto.HealthStatus{Status: "unhealthy", Timestamp: &now, Error: "Database connection failed"})
		return
	}
	c.JSON(http.StatusOK, dto.HealthStatus{Status: "healthy", Timestamp: &now})
}

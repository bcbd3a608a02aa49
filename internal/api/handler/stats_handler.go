package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"huntboard/internal/service"
)

type StatsHandler struct {
	base
	stats service.StatsService
}

func NewStatsHandler(stats service.StatsService, log *zap.Logger, production bool) *StatsHandler {
	return &StatsHandler{base: newBase(log, production), stats: stats}
}

func (h *StatsHandler) Get(c *gin.Context) {
	snapshot, err := h.stats.Snapshot(c.Request.Context())
	if err != nil {
		h.internal(c, err)
		return
	}
	h.ok(c, http.StatusOK, snapshot)
}

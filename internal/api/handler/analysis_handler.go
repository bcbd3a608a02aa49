package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"huntboard/internal/api/dto"
	"huntboard/internal/domain"
	"huntboard/internal/service"
)

type AnalysisHandler struct {
	base
	reports service.AnalysisService
}

func NewAnalysisHandler(reports service.AnalysisService, log *zap.Logger, production bool) *AnalysisHandler {
	return &AnalysisHandler{base: newBase(log, production), reports: reports}
}

func (h *AnalysisHandler) List(c *gin.Context) {
	q, err := dto.ParseListQuery(c.Request.URL.Query(), dto.AnalysisSortFields)
	if err != nil {
		h.handleError(c, err)
		return
	}
	analysisType, err := dto.ParseEnum(c.Request.URL.Query(), "analysisType", dto.AnalysisTypes...)
	if err != nil {
		h.handleError(c, err)
		return
	}

	filter := q.Filter()
	filter.AnalysisType = analysisType

	items, total, err := h.reports.ListReports(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	views := make([]domain.AnalysisReportView, len(items))
	for i := range items {
		views[i] = items[i].View()
	}
	h.okPage(c, views, q.Pagination(total))
}

func (h *AnalysisHandler) Get(c *gin.Context) {
	id, ok := h.requireID(c)
	if !ok {
		return
	}
	r, err := h.reports.GetReport(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.ok(c, http.StatusOK, r.View())
}

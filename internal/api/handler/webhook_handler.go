package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"huntboard/internal/api/dto"
	"huntboard/internal/api/middleware"
	"huntboard/internal/domain"
	"huntboard/internal/metrics"
	"huntboard/internal/service"
	"huntboard/internal/validation"
)

const kindExecutions = "executions"

// WebhookHandler receives workflow engine deliveries. Its responses keep the
// flat shape the engine's HTTP nodes already parse rather than the envelope.
type WebhookHandler struct {
	base
	webhooks   service.WebhookService
	executions service.ExecutionService
}

func NewWebhookHandler(webhooks service.WebhookService, executions service.ExecutionService, log *zap.Logger, production bool) *WebhookHandler {
	return &WebhookHandler{base: newBase(log, production), webhooks: webhooks, executions: executions}
}

func (h *WebhookHandler) Products(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		h.reject(c, service.KindProducts, "Invalid product data", err)
		return
	}
	payload, err := validation.ParseProductWebhook(body)
	if err != nil {
		h.reject(c, service.KindProducts, "Invalid product data", err)
		return
	}

	receipt, err := h.webhooks.IngestProduct(c.Request.Context(), payload)
	if err != nil {
		h.failure(c, service.KindProducts, "Failed to process product webhook", err)
		return
	}

	message := "Product data received and stored successfully"
	if receipt.Duplicate {
		message = "Duplicate product delivery ignored"
	}
	h.accept(c, service.KindProducts, receipt.Duplicate, message, receipt)
}

func (h *WebhookHandler) Analysis(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		h.reject(c, service.KindAnalysis, "Invalid analysis data", err)
		return
	}
	payload, err := validation.ParseAnalysisWebhook(body)
	if err != nil {
		h.reject(c, service.KindAnalysis, "Invalid analysis data", err)
		return
	}

	receipt, err := h.webhooks.IngestAnalysis(c.Request.Context(), payload)
	if errors.Is(err, domain.ErrProductNotFound) {
		metrics.WebhooksTotal.WithLabelValues(service.KindAnalysis, metrics.OutcomeRejected).Inc()
		c.JSON(http.StatusNotFound, dto.WebhookRejection{
			Error:   "Product not found",
			Code:    dto.CodeProductNotFound,
			Details: gin.H{"productId": payload.ProductID},
		})
		return
	}
	if err != nil {
		h.failure(c, service.KindAnalysis, "Failed to process analysis webhook", err)
		return
	}

	message := "Analysis data received and stored successfully"
	if receipt.Duplicate {
		message = "Duplicate analysis delivery ignored"
	}
	h.accept(c, service.KindAnalysis, receipt.Duplicate, message, receipt)
}

// Executions is the completion callback for dispatched workflow runs.
func (h *WebhookHandler) Executions(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		h.reject(c, kindExecutions, "Invalid execution callback", err)
		return
	}
	callback, err := validation.ParseExecutionCallback(body)
	if err != nil {
		h.reject(c, kindExecutions, "Invalid execution callback", err)
		return
	}

	exec, err := h.executions.Complete(c.Request.Context(), callback.Event())
	if errors.Is(err, domain.ErrNotFound) {
		metrics.WebhooksTotal.WithLabelValues(kindExecutions, metrics.OutcomeRejected).Inc()
		c.JSON(http.StatusNotFound, dto.WebhookRejection{
			Error:   "Execution not found",
			Code:    dto.CodeNotFound,
			Details: gin.H{"executionId": callback.ExecutionID},
		})
		return
	}
	if err != nil {
		h.failure(c, kindExecutions, "Failed to process execution callback", err)
		return
	}

	h.accept(c, kindExecutions, false, "Execution result recorded", gin.H{
		"executionId": exec.ID,
		"status":      exec.Status,
		"completedAt": exec.CompletedAt,
	})
}

// Probe answers GET on a webhook path with the database status.
func (h *WebhookHandler) Probe(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.webhooks.Ping(ctx); err != nil {
		h.log.Warn("webhook probe failed", zap.String("endpoint", c.FullPath()), zap.Error(err))
		status := dto.HealthStatus{Status: "unhealthy", Error: "Database connection failed"}
		if !h.production {
			status.Message = err.Error()
		}
		c.JSON(http.StatusServiceUnavailable, status)
		return
	}

	now := time.Now().UTC()
	c.JSON(http.StatusOK, dto.HealthStatus{Status: "healthy", Endpoint: c.FullPath(), Timestamp: &now})
}

func (h *WebhookHandler) accept(c *gin.Context, kind string, duplicate bool, message string, data any) {
	outcome := metrics.OutcomeAccepted
	if duplicate {
		outcome = metrics.OutcomeDuplicate
	}
	metrics.WebhooksTotal.WithLabelValues(kind, outcome).Inc()
	c.JSON(http.StatusOK, dto.WebhookAck{Success: true, Message: message, Data: data})
}

func (h *WebhookHandler) reject(c *gin.Context, kind, message string, err error) {
	metrics.WebhooksTotal.WithLabelValues(kind, metrics.OutcomeRejected).Inc()

	status := http.StatusBadRequest
	rejection := dto.WebhookRejection{Error: message, Code: dto.CodeValidation}
	var verr *validation.Error
	switch {
	case errors.Is(err, errBodyTooLarge):
		status = http.StatusRequestEntityTooLarge
		rejection.Code = dto.CodePayloadTooLarge
		rejection.Details = gin.H{"reason": "Request body exceeds 1 MiB"}
	case errors.Is(err, validation.ErrMalformedPayload):
		rejection.Code = dto.CodeInvalidJSON
		rejection.Details = gin.H{"reason": "Request body is not valid JSON"}
	case errors.As(err, &verr):
		rejection.Details = verr.Fields
	default:
		rejection.Details = gin.H{"reason": err.Error()}
	}

	h.log.Warn("webhook rejected",
		zap.String("kind", kind),
		zap.String("request_id", middleware.GetRequestID(c)),
		zap.Error(err),
	)
	c.JSON(status, rejection)
}

func (h *WebhookHandler) failure(c *gin.Context, kind, message string, err error) {
	metrics.WebhooksTotal.WithLabelValues(kind, metrics.OutcomeFailed).Inc()
	h.log.Error("webhook processing failed",
		zap.String("kind", kind),
		zap.String("request_id", middleware.GetRequestID(c)),
		zap.Error(err),
		zap.Stack("stack"),
	)
	_ = c.Error(err)

	detail := "Unknown error occurred"
	if !h.production {
		detail = err.Error()
	}
	c.JSON(http.StatusInternalServerError, dto.WebhookFailure{Error: message, Message: detail})
}

package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"huntboard/internal/api/dto"
	"huntboard/internal/api/middleware"
	"huntboard/internal/domain"
	"huntboard/internal/validation"
)

// maxBodyBytes caps inbound JSON bodies.
const maxBodyBytes = 1 << 20

// base carries what every handler needs to write envelopes and log failures.
type base struct {
	log        *zap.Logger
	production bool
}

func newBase(log *zap.Logger, production bool) base {
	return base{log: log, production: production}
}

func meta(c *gin.Context) dto.Metadata {
	return dto.Metadata{Timestamp: time.Now().UTC(), RequestID: middleware.GetRequestID(c)}
}

func (b base) ok(c *gin.Context, status int, data any) {
	c.JSON(status, dto.Envelope{Success: true, Data: data, Metadata: meta(c)})
}

func (b base) okPage(c *gin.Context, data any, page *dto.Pagination) {
	m := meta(c)
	m.Pagination = page
	c.JSON(http.StatusOK, dto.Envelope{Success: true, Data: data, Metadata: m})
}

func (b base) fail(c *gin.Context, status int, code, message string, details any) {
	c.JSON(status, dto.Envelope{
		Error:    &dto.ErrorBody{Code: code, Message: message, Details: details},
		Metadata: meta(c),
	})
}

// handleError maps service errors onto the envelope taxonomy. Anything
// unrecognised is logged and answered with 500.
func (b base) handleError(c *gin.Context, err error) {
	var (
		verr *validation.Error
		qerr *dto.QueryError
		derr *domain.DependencyError
	)
	switch {
	case errors.Is(err, errBodyTooLarge):
		b.fail(c, http.StatusRequestEntityTooLarge, dto.CodePayloadTooLarge, "Request body exceeds 1 MiB", nil)
	case errors.Is(err, validation.ErrMalformedPayload):
		b.fail(c, http.StatusBadRequest, dto.CodeInvalidJSON, "Request body is not valid JSON", nil)
	case errors.As(err, &verr):
		b.fail(c, http.StatusBadRequest, dto.CodeValidation, "Validation failed", verr.Fields)
	case errors.As(err, &qerr):
		b.fail(c, http.StatusBadRequest, qerr.Code, qerr.Message, qerr.Details)
	case errors.As(err, &derr):
		b.fail(c, http.StatusBadRequest, dto.CodeWorkflowHasDependencies,
			"Workflow is still referenced by products or analysis reports",
			dto.DependencyDetails{
				HasProducts:   derr.HasProducts,
				HasReports:    derr.HasReports,
				ProductsCount: derr.ProductCount,
				ReportsCount:  derr.ReportCount,
			})
	case errors.Is(err, domain.ErrWorkflowNotFound):
		b.fail(c, http.StatusNotFound, dto.CodeWorkflowNotFound, "Referenced workflow does not exist", nil)
	case errors.Is(err, domain.ErrProductNotFound):
		b.fail(c, http.StatusNotFound, dto.CodeProductNotFound, "Referenced product does not exist", nil)
	case errors.Is(err, domain.ErrWorkflowInactive):
		b.fail(c, http.StatusBadRequest, dto.CodeWorkflowInactive, "Workflow is not active", nil)
	case errors.Is(err, domain.ErrNotFound):
		b.fail(c, http.StatusNotFound, dto.CodeNotFound, "Resource not found", nil)
	default:
		b.internal(c, err)
	}
}

func (b base) internal(c *gin.Context, err error) {
	b.log.Error("request failed",
		zap.Error(err),
		zap.String("path", c.FullPath()),
		zap.String("request_id", middleware.GetRequestID(c)),
		zap.Stack("stack"),
	)
	_ = c.Error(err)

	var details any
	if !b.production {
		details = gin.H{"cause": err.Error()}
	}
	b.fail(c, http.StatusInternalServerError, dto.CodeInternal, "Internal server error", details)
}

// pathID parses the :id segment. Non-numeric ids are reported as not found.
func pathID(c *gin.Context) (uint, bool) {
	n, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

func (b base) requireID(c *gin.Context) (uint, bool) {
	id, ok := pathID(c)
	if !ok {
		b.fail(c, http.StatusNotFound, dto.CodeNotFound, "Resource not found", nil)
	}
	return id, ok
}

var errBodyTooLarge = errors.New("request body too large")

// readBody reads at most maxBodyBytes. Oversized bodies yield errBodyTooLarge
// and read failures count as malformed payloads.
func readBody(c *gin.Context) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return nil, fmt.Errorf("%w: limit is %d bytes", errBodyTooLarge, tooLarge.Limit)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", validation.ErrMalformedPayload, err)
	}
	return body, nil
}

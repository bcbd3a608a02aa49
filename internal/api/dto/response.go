package dto

import "time"

// Error codes returned in error.code.
const (
	CodeInvalidJSON             = "INVALID_JSON"
	CodePayloadTooLarge         = "PAYLOAD_TOO_LARGE"
	CodeValidation              = "VALIDATION_ERROR"
	CodeInvalidPagination       = "INVALID_PAGINATION"
	CodeInvalidSort             = "INVALID_SORT"
	CodeInvalidDate             = "INVALID_DATE"
	CodeWorkflowHasDependencies = "WORKFLOW_HAS_DEPENDENCIES"
	CodeWorkflowNotFound        = "WORKFLOW_NOT_FOUND"
	CodeProductNotFound         = "PRODUCT_NOT_FOUND"
	CodeWorkflowInactive        = "WORKFLOW_INACTIVE"
	CodeNotFound                = "NOT_FOUND"
	CodeUnauthorized            = "UNAUTHORIZED"
	CodeForbidden               = "FORBIDDEN"
	CodeInternal                = "INTERNAL_ERROR"
)

// Envelope is the single response shape of the dashboard API.
type Envelope struct {
	Success  bool       `json:"success"`
	Data     any        `json:"data,omitempty"`
	Error    *ErrorBody `json:"error,omitempty"`
	Metadata Metadata   `json:"metadata"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type Metadata struct {
	Timestamp  time.Time   `json:"timestamp"`
	RequestID  string      `json:"requestId,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// NewPagination computes totalPages = ceil(total/pageSize).
func NewPagination(page, pageSize int, total int64) *Pagination {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// DependencyDetails names what blocks a workflow delete.
type DependencyDetails struct {
	HasProducts   bool  `json:"hasProducts"`
	HasReports    bool  `json:"hasReports"`
	ProductsCount int64 `json:"productsCount"`
	ReportsCount  int64 `json:"reportsCount"`
}

// RunResponse acknowledges a dispatched workflow run.
type RunResponse struct {
	ExecutionID uint      `json:"executionId"`
	DispatchID  string    `json:"dispatchId"`
	Status      string    `json:"status"`
	StartedAt   time.Time `json:"startedAt"`
}

// Webhook responses keep the shape the workflow engine already parses.

type WebhookAck struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

type WebhookRejection struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

type WebhookFailure struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type HealthStatus struct {
	Status    string     `json:"status"`
	Endpoint  string     `json:"endpoint,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Error     string     `json:"error,omitempty"`
	Message   string     `json:"message,omitempty"`
}

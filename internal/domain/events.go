package domain

import (
	"time"

	"github.com/google/uuid"
)

// DispatchRequest is handed to the executor when a workflow run is triggered.
type DispatchRequest struct {
	ExecutionID  uint           `json:"executionId"`
	DispatchID   uuid.UUID      `json:"dispatchId"`
	WorkflowID   uint           `json:"workflowId"`
	WorkflowType WorkflowType   `json:"workflowType"`
	N8nWorkflow  string         `json:"n8nWorkflowId,omitempty"`
	WebhookURL   string         `json:"webhookUrl"`
	CallbackURL  string         `json:"callbackUrl,omitempty"`
	Parameters   map[string]any `json:"parameters,omitempty"`
	RequestedAt  time.Time      `json:"requestedAt"`
}

// ExecutionCompletedEvent reports the end of a run, either through the
// callback webhook or the completion channel.
type ExecutionCompletedEvent struct {
	ExecutionID       uint            `json:"executionId"`
	DispatchID        uuid.UUID       `json:"dispatchId,omitempty"`
	Status            ExecutionStatus `json:"status"` // completed or failed
	ProductsProcessed *int            `json:"productsProcessed,omitempty"`
	DurationMs        *int64          `json:"durationMs,omitempty"`
	Error             string          `json:"error,omitempty"`
	Metadata          map[string]any  `json:"metadata,omitempty"`
	CompletedAt       time.Time       `json:"completedAt"`
}

// NewDispatchRequest builds the executor payload for a pending execution.
func NewDispatchRequest(wf *Workflow, exec *WorkflowExecution, callbackURL string) DispatchRequest {
	return DispatchRequest{
		ExecutionID:  exec.ID,
		DispatchID:   exec.DispatchID,
		WorkflowID:   wf.ID,
		WorkflowType: wf.Type,
		N8nWorkflow:  wf.N8nWorkflowID,
		WebhookURL:   wf.WebhookURL,
		CallbackURL:  callbackURL,
		Parameters:   wf.Configuration.Data().Parameters,
		RequestedAt:  time.Now().UTC(),
	}
}

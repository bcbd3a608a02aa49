package validation

import (
	"time"

	"github.com/google/uuid"

	"huntboard/internal/domain"
)

// WorkflowCreate is the admin body for a new workflow. Every configuration
// sub-object is defaulted independently.
type WorkflowCreate struct {
	Name          string                       `json:"name" validate:"required,max=255"`
	Description   *string                      `json:"description,omitempty" validate:"omitnil,max=1000"`
	WorkflowType  domain.WorkflowType          `json:"workflowType" validate:"required,oneof=products analysis product_scraper analysis_runner data_pipeline custom"`
	N8nWorkflowID string                       `json:"n8nWorkflowId" validate:"required"`
	WebhookURL    string                       `json:"webhookUrl" validate:"required,url"`
	IsActive      bool                         `json:"isActive"`
	Configuration domain.WorkflowConfiguration `json:"configuration"`
	Metadata      map[string]any               `json:"metadata"`
	CreatedBy     string                       `json:"createdBy,omitempty"`
}

func ParseWorkflowCreate(body []byte) (*WorkflowCreate, error) {
	w := &WorkflowCreate{
		IsActive:      true,
		Configuration: domain.DefaultWorkflowConfiguration(),
		Metadata:      map[string]any{},
	}
	if err := bind(body, w); err != nil {
		return nil, err
	}
	if w.Metadata == nil {
		w.Metadata = map[string]any{}
	}
	return w, nil
}

// WorkflowUpdate is a partial workflow update; the id comes from the route.
type WorkflowUpdate struct {
	Name          *string                       `json:"name" validate:"omitnil,min=1,max=255"`
	Description   *string                       `json:"description" validate:"omitnil,max=1000"`
	WorkflowType  *domain.WorkflowType          `json:"workflowType" validate:"omitnil,oneof=products analysis product_scraper analysis_runner data_pipeline custom"`
	N8nWorkflowID *string                       `json:"n8nWorkflowId" validate:"omitnil,min=1"`
	WebhookURL    *string                       `json:"webhookUrl" validate:"omitnil,url"`
	IsActive      *bool                         `json:"isActive"`
	Configuration *domain.WorkflowConfiguration `json:"configuration"`
	Metadata      map[string]any                `json:"metadata"`
	UpdatedBy     *string                       `json:"updatedBy"`

	Present map[string]bool `json:"-"`
}

func ParseWorkflowUpdate(body []byte) (*WorkflowUpdate, error) {
	// Decoding into a pre-set pointer merges the body over the defaults.
	cfg := domain.DefaultWorkflowConfiguration()
	w := &WorkflowUpdate{Configuration: &cfg}
	if err := bind(body, w); err != nil {
		return nil, err
	}
	present, err := presentKeys(body)
	if err != nil {
		return nil, err
	}
	if !present["configuration"] {
		w.Configuration = nil
	}
	w.Present = present
	return w, nil
}

func (w *WorkflowUpdate) Has(key string) bool {
	return w.Present[key]
}

// ExecutionCallback is posted by the executor when a dispatched run ends.
type ExecutionCallback struct {
	ExecutionID       uint                   `json:"executionId" validate:"required,min=1"`
	DispatchID        string                 `json:"dispatchId,omitempty" validate:"omitempty,uuid"`
	Status            domain.ExecutionStatus `json:"status" validate:"required,oneof=completed failed"`
	ProductsProcessed *int                   `json:"productsProcessed,omitempty" validate:"omitnil,min=0"`
	DurationMs        *int64                 `json:"durationMs,omitempty" validate:"omitnil,min=0"`
	Error             string                 `json:"error,omitempty"`
	Metadata          map[string]any         `json:"metadata,omitempty"`
	CompletedAt       *string                `json:"completedAt,omitempty" validate:"omitnil,datetime_iso"`
}

func ParseExecutionCallback(body []byte) (*ExecutionCallback, error) {
	c := &ExecutionCallback{}
	if err := bind(body, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Event converts the callback into the completion event handled by the
// execution service.
func (c *ExecutionCallback) Event() domain.ExecutionCompletedEvent {
	ev := domain.ExecutionCompletedEvent{
		ExecutionID:       c.ExecutionID,
		Status:            c.Status,
		ProductsProcessed: c.ProductsProcessed,
		DurationMs:        c.DurationMs,
		Error:             c.Error,
		Metadata:          c.Metadata,
		CompletedAt:       time.Now().UTC(),
	}
	if c.DispatchID != "" {
		ev.DispatchID = uuid.MustParse(c.DispatchID)
	}
	if c.CompletedAt != nil {
		if t, err := ParseTimestamp(*c.CompletedAt); err == nil {
			ev.CompletedAt = t.UTC()
		}
	}
	return ev
}

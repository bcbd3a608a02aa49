package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ExecutionStatus string

const (
	ExecutionPending   ExecutionStatus = "pending"
	ExecutionRunning   ExecutionStatus = "running"
	ExecutionCompleted ExecutionStatus = "completed"
	ExecutionFailed    ExecutionStatus = "failed"
)

type WorkflowExecution struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	WorkflowID uint      `gorm:"not null;index" json:"workflowId"`
	Workflow   *Workflow `gorm:"foreignKey:WorkflowID;constraint:OnDelete:CASCADE" json:"-"`
	DispatchID uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"dispatchId"`

	// State
	Status            ExecutionStatus   `gorm:"type:varchar(20);index;not null;default:'pending'" json:"status"`
	StartedAt         time.Time         `gorm:"not null;index" json:"startedAt"`
	CompletedAt       *time.Time        `json:"completedAt"`
	Error             *string           `gorm:"type:text" json:"error"`
	ProductsProcessed *int              `json:"productsProcessed"`
	Metadata          datatypes.JSONMap `json:"metadata"`

	// Audit
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// --- FACTORY ---

func NewExecution(workflowID uint) *WorkflowExecution {
	return &WorkflowExecution{
		WorkflowID: workflowID,
		DispatchID: uuid.New(),
		Status:     ExecutionPending,
		StartedAt:  time.Now().UTC(),
	}
}

// --- METHODS ---

func (e *WorkflowExecution) IsFinished() bool {
	return e.Status == ExecutionCompleted || e.Status == ExecutionFailed
}

func (e *WorkflowExecution) Outcome() ExecutionOutcome {
	return e.Status.Outcome()
}

// Outcome maps a terminal execution status onto the workflow-level outcome.
func (s ExecutionStatus) Outcome() ExecutionOutcome {
	if s == ExecutionCompleted {
		return OutcomeSuccess
	}
	return OutcomeFailure
}

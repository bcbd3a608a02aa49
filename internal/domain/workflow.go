package domain

import (
	"time"

	"gorm.io/datatypes"
)

type WorkflowType string

const (
	WorkflowTypeProducts       WorkflowType = "products"
	WorkflowTypeAnalysis       WorkflowType = "analysis"
	WorkflowTypeProductScraper WorkflowType = "product_scraper"
	WorkflowTypeAnalysisRunner WorkflowType = "analysis_runner"
	WorkflowTypeDataPipeline   WorkflowType = "data_pipeline"
	WorkflowTypeCustom         WorkflowType = "custom"
)

// ProductWorkflowTypes are the categories that may own ingested products,
// in lookup priority order.
var ProductWorkflowTypes = []WorkflowType{WorkflowTypeProducts, WorkflowTypeProductScraper}

// AnalysisWorkflowTypes are the categories that may own ingested analysis reports.
var AnalysisWorkflowTypes = []WorkflowType{WorkflowTypeAnalysis, WorkflowTypeAnalysisRunner}

type ExecutionOutcome string

const (
	OutcomeSuccess   ExecutionOutcome = "success"
	OutcomeFailure   ExecutionOutcome = "failure"
	OutcomeTimeout   ExecutionOutcome = "timeout"
	OutcomeCancelled ExecutionOutcome = "cancelled"
)

type Workflow struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	Name          string       `gorm:"type:varchar(255);not null" json:"name"`
	Description   *string      `gorm:"type:varchar(1000)" json:"description"`
	Type          WorkflowType `gorm:"type:varchar(50);index;not null" json:"type"`
	N8nWorkflowID string       `gorm:"column:n8n_workflow_id;type:varchar(255)" json:"n8nWorkflowId"`
	WebhookURL    string       `gorm:"type:text;not null" json:"webhookUrl"`
	IsActive      bool         `gorm:"not null;index" json:"isActive"`

	Configuration datatypes.JSONType[WorkflowConfiguration] `json:"configuration"`
	Metadata      datatypes.JSONMap                         `json:"metadata"`

	// Execution counters
	ExecutionCount       int               `gorm:"not null;default:0" json:"executionCount"`
	SuccessCount         int               `gorm:"not null;default:0" json:"successCount"`
	FailureCount         int               `gorm:"not null;default:0" json:"failureCount"`
	AverageExecutionTime *float64          `json:"averageExecutionTime"`
	LastExecuted         *time.Time        `json:"lastExecuted"`
	LastExecutionStatus  *ExecutionOutcome `gorm:"type:varchar(20)" json:"lastExecutionStatus"`

	// Audit
	CreatedBy string    `gorm:"type:varchar(255)" json:"createdBy,omitempty"`
	UpdatedBy string    `gorm:"type:varchar(255)" json:"updatedBy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type WorkflowConfiguration struct {
	Schedule      ScheduleConfig     `json:"schedule"`
	Triggers      []TriggerConfig    `json:"triggers" validate:"dive"`
	Parameters    map[string]any     `json:"parameters"`
	RetryPolicy   RetryPolicy        `json:"retryPolicy"`
	Timeout       int                `json:"timeout" validate:"min=0"` // milliseconds
	Notifications NotificationConfig `json:"notifications"`
}

type ScheduleConfig struct {
	Enabled        bool   `json:"enabled"`
	CronExpression string `json:"cronExpression,omitempty"`
	Timezone       string `json:"timezone"`
}

type TriggerConfig struct {
	Type       string         `json:"type" validate:"required,oneof=webhook schedule manual event"`
	Conditions map[string]any `json:"conditions,omitempty"`
}

type RetryPolicy struct {
	MaxRetries        int     `json:"maxRetries" validate:"min=0,max=10"`
	RetryDelay        int     `json:"retryDelay" validate:"min=0"` // milliseconds
	BackoffMultiplier float64 `json:"backoffMultiplier" validate:"min=1,max=5"`
}

type NotificationConfig struct {
	OnSuccess bool     `json:"onSuccess"`
	OnFailure bool     `json:"onFailure"`
	Channels  []string `json:"channels" validate:"dive,oneof=email slack webhook"`
}

// WorkflowSummary is the slice of a workflow embedded in product and report views.
type WorkflowSummary struct {
	ID   uint         `json:"id"`
	Name string       `json:"name"`
	Type WorkflowType `json:"type"`
}

// --- FACTORY ---

// DefaultWorkflowConfiguration returns a configuration with every sub-object defaulted.
func DefaultWorkflowConfiguration() WorkflowConfiguration {
	return WorkflowConfiguration{
		Schedule:   ScheduleConfig{Timezone: "UTC"},
		Triggers:   []TriggerConfig{},
		Parameters: map[string]any{},
		RetryPolicy: RetryPolicy{
			MaxRetries:        3,
			RetryDelay:        1000,
			BackoffMultiplier: 2,
		},
		Timeout: 300000,
		Notifications: NotificationConfig{
			OnFailure: true,
			Channels:  []string{},
		},
	}
}

func NewWorkflow(name string, workflowType WorkflowType, webhookURL string) *Workflow {
	return &Workflow{
		Name:          name,
		Type:          workflowType,
		WebhookURL:    webhookURL,
		IsActive:      true,
		Configuration: datatypes.NewJSONType(DefaultWorkflowConfiguration()),
		Metadata:      datatypes.JSONMap{},
	}
}

// --- METHODS ---

func (w *Workflow) Summary() *WorkflowSummary {
	if w == nil {
		return nil
	}
	return &WorkflowSummary{ID: w.ID, Name: w.Name, Type: w.Type}
}

// RecordExecution folds one finished run into the counters. The average is a
// running mean over ExecutionCount.
func (w *Workflow) RecordExecution(outcome ExecutionOutcome, duration *time.Duration, at time.Time) {
	w.ExecutionCount++
	if outcome == OutcomeSuccess {
		w.SuccessCount++
	} else {
		w.FailureCount++
	}

	if duration != nil {
		ms := float64(duration.Milliseconds())
		if w.AverageExecutionTime == nil {
			w.AverageExecutionTime = &ms
		} else {
			avg := *w.AverageExecutionTime + (ms-*w.AverageExecutionTime)/float64(w.ExecutionCount)
			w.AverageExecutionTime = &avg
		}
	}

	w.LastExecutionStatus = &outcome
	w.LastExecuted = &at
}

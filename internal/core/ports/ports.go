package ports

import (
	"context"
	"time"

	"huntboard/internal/domain"
)

// SortOrder is asc or desc.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ListFilter narrows a list query. Zero-valued fields apply no condition and
// set fields are ANDed together.
type ListFilter struct {
	WorkflowID   *uint
	StartDate    *time.Time
	EndDate      *time.Time
	Status       string
	Type         string
	Active       *bool
	AnalysisType string

	Offset int
	Limit  int

	// SortColumn is a database column already checked against a whitelist.
	SortColumn string
	SortOrder  SortOrder
}

// TaskQueue carries dispatch requests to executors.
type TaskQueue interface {
	// Push appends a dispatch request to the pending list
	Push(ctx context.Context, req domain.DispatchRequest) error

	// Pop blocks until a dispatch request is available
	Pop(ctx context.Context) (domain.DispatchRequest, error)
}

// EventBus carries execution completion events back to the coordinator.
type EventBus interface {
	PublishExecutionCompleted(ctx context.Context, event domain.ExecutionCompletedEvent) error

	// SubscribeToEvents streams completion events until ctx is cancelled
	SubscribeToEvents(ctx context.Context) (<-chan domain.ExecutionCompletedEvent, error)
}

// Dispatcher hands a pending execution to whatever runs it.
type Dispatcher interface {
	Dispatch(ctx context.Context, req domain.DispatchRequest) error
}

// Deduper remembers webhook deliveries for a bounded window. Claim returns
// false when the key was already seen; Release forgets a claimed key.
type Deduper interface {
	Claim(ctx context.Context, kind, key string) (bool, error)
	Release(ctx context.Context, kind, key string) error
}

// HealthChecker is a trivial read against the store.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type WorkflowRepository interface {
	Create(ctx context.Context, wf *domain.Workflow) error
	GetByID(ctx context.Context, id uint) (*domain.Workflow, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Workflow, int64, error)
	Update(ctx context.Context, id uint, fields map[string]any) (*domain.Workflow, error)

	// Delete fails with *domain.DependencyError while products or reports
	// reference the workflow; its executions are removed with it.
	Delete(ctx context.Context, id uint) error

	// FindDefaultByTypes returns the lowest-id workflow of the first
	// category that has one, or domain.ErrNotFound.
	FindDefaultByTypes(ctx context.Context, types []domain.WorkflowType) (*domain.Workflow, error)
	TouchLastExecuted(ctx context.Context, id uint, at time.Time) error

	// RecordExecution folds a finished execution into the workflow counters.
	RecordExecution(ctx context.Context, id uint, outcome domain.ExecutionOutcome, duration *time.Duration, at time.Time) error
}

type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id uint) (*domain.Product, error)
	GetByExternalID(ctx context.Context, externalID string) (*domain.Product, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Product, int64, error)
	Update(ctx context.Context, id uint, fields map[string]any) (*domain.Product, error)
	Delete(ctx context.Context, id uint) error
}

type AnalysisRepository interface {
	Create(ctx context.Context, r *domain.AnalysisReport) error
	GetByID(ctx context.Context, id uint) (*domain.AnalysisReport, error)
	List(ctx context.Context, filter ListFilter) ([]domain.AnalysisReport, int64, error)
}

type ExecutionRepository interface {
	Create(ctx context.Context, e *domain.WorkflowExecution) error
	GetByID(ctx context.Context, id uint) (*domain.WorkflowExecution, error)
	ListByWorkflow(ctx context.Context, workflowID uint, filter ListFilter) ([]domain.WorkflowExecution, int64, error)

	// UpdateStatus moves an execution to status only if it is not finished.
	UpdateStatus(ctx context.Context, id uint, status domain.ExecutionStatus) error

	// Finish stores the terminal state. It reports false when the execution
	// was already finished.
	Finish(ctx context.Context, id uint, event domain.ExecutionCompletedEvent) (bool, error)
}

// TypeCount is one row of a grouped count.
type TypeCount struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
}

// ConfidenceBuckets counts analysis reports per confidence tier.
type ConfidenceBuckets struct {
	High   int64 `json:"high"`
	Medium int64 `json:"medium"`
	Low    int64 `json:"low"`
}

// RecentExecution is an execution with its workflow name.
type RecentExecution struct {
	domain.WorkflowExecution
	WorkflowName string `json:"workflowName"`
}

// StatsRepository runs the read-only dashboard queries.
type StatsRepository interface {
	CountProducts(ctx context.Context) (int64, error)
	CountAnalysis(ctx context.Context) (int64, error)
	CountActiveWorkflows(ctx context.Context) (int64, error)
	RecentExecutions(ctx context.Context, limit int) ([]RecentExecution, error)
	TopProducts(ctx context.Context, limit int) ([]domain.Product, error)
	AnalysisByType(ctx context.Context) ([]TypeCount, error)
	AnalysisByConfidence(ctx context.Context) (ConfidenceBuckets, error)

	// ProductsCreatedSince and AnalysisCreatedSince return the raw rows the
	// daily trend series are bucketed from.
	ProductsCreatedSince(ctx context.Context, since time.Time) ([]ProductPoint, error)
	AnalysisCreatedSince(ctx context.Context, since time.Time) ([]time.Time, error)
}

// ProductPoint is the creation time and vote count of one product.
type ProductPoint struct {
	CreatedAt  time.Time
	VotesCount int
}

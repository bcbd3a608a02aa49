package repository

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"huntboard/internal/core/ports"
	"huntboard/internal/domain"
)

var finishedStatuses = []domain.ExecutionStatus{domain.ExecutionCompleted, domain.ExecutionFailed}

type executionRepository struct {
	db *gorm.DB
}

func NewExecutionRepository(db *gorm.DB) ports.ExecutionRepository {
	return &executionRepository{db: db}
}

func (r *executionRepository) Create(ctx context.Context, e *domain.WorkflowExecution) error {
	return r.db.WithContext(ctx).Omit("Workflow").Create(e).Error
}

func (r *executionRepository) GetByID(ctx context.Context, id uint) (*domain.WorkflowExecution, error) {
	var e domain.WorkflowExecution
	if err := r.db.WithContext(ctx).First(&e, id).Error; err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

func (r *executionRepository) ListByWorkflow(ctx context.Context, workflowID uint, f ports.ListFilter) ([]domain.WorkflowExecution, int64, error) {
	filtered := func(db *gorm.DB) *gorm.DB {
		db = db.Where("workflow_id = ?", workflowID)
		if f.Status != "" {
			db = db.Where("status = ?", f.Status)
		}
		return db.Scopes(dateRange("started_at", f))
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.WorkflowExecution{}).Scopes(filtered).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	executions := []domain.WorkflowExecution{}
	err := r.db.WithContext(ctx).
		Scopes(filtered, ordered(f, "started_at"), paginate(f)).
		Find(&executions).Error
	return executions, total, err
}

// UpdateStatus is a no-op once the execution has finished.
func (r *executionRepository) UpdateStatus(ctx context.Context, id uint, status domain.ExecutionStatus) error {
	return r.db.WithContext(ctx).
		Model(&domain.WorkflowExecution{}).
		Where("id = ? AND status NOT IN ?", id, finishedStatuses).
		Updates(map[string]any{"status": status, "updated_at": time.Now().UTC()}).Error
}

// Finish only matches unfinished rows, so of two racing completions exactly
// one reports true.
func (r *executionRepository) Finish(ctx context.Context, id uint, ev domain.ExecutionCompletedEvent) (bool, error) {
	fields := map[string]any{
		"status":       ev.Status,
		"completed_at": ev.CompletedAt,
		"updated_at":   time.Now().UTC(),
	}
	if ev.Error != "" {
		fields["error"] = ev.Error
	}
	if ev.ProductsProcessed != nil {
		fields["products_processed"] = *ev.ProductsProcessed
	}
	if ev.Metadata != nil {
		fields["metadata"] = datatypes.JSONMap(ev.Metadata)
	}

	res := r.db.WithContext(ctx).
		Model(&domain.WorkflowExecution{}).
		Where("id = ? AND status NOT IN ?", id, finishedStatuses).
		Updates(fields)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

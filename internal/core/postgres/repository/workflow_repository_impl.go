package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"huntboard/internal/core/ports"
	"huntboard/internal/domain"
)

type workflowRepository struct {
	db *gorm.DB
}

// NewWorkflowRepository creates a new instance of WorkflowRepository
func NewWorkflowRepository(db *gorm.DB) ports.WorkflowRepository {
	return &workflowRepository{db: db}
}

func (r *workflowRepository) Create(ctx context.Context, wf *domain.Workflow) error {
	return r.db.WithContext(ctx).Create(wf).Error
}

func (r *workflowRepository) GetByID(ctx context.Context, id uint) (*domain.Workflow, error) {
	var wf domain.Workflow
	if err := r.db.WithContext(ctx).First(&wf, id).Error; err != nil {
		return nil, translate(err)
	}
	return &wf, nil
}

func (r *workflowRepository) List(ctx context.Context, f ports.ListFilter) ([]domain.Workflow, int64, error) {
	filtered := func(db *gorm.DB) *gorm.DB {
		if f.Type != "" {
			db = db.Where("type = ?", f.Type)
		}
		if f.Active != nil {
			db = db.Where("is_active = ?", *f.Active)
		}
		return db.Scopes(dateRange("created_at", f))
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Workflow{}).Scopes(filtered).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	workflows := []domain.Workflow{}
	err := r.db.WithContext(ctx).
		Scopes(filtered, ordered(f, "created_at"), paginate(f)).
		Find(&workflows).Error
	return workflows, total, err
}

func (r *workflowRepository) Update(ctx context.Context, id uint, fields map[string]any) (*domain.Workflow, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Workflow{}).
		Where("id = ?", id).
		Updates(withUpdatedAt(fields))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete checks dependents and removes the workflow in one transaction.
func (r *workflowRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var wf domain.Workflow
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&wf, id).Error; err != nil {
			return translate(err)
		}

		var depErr domain.DependencyError
		if err := tx.Model(&domain.Product{}).Where("workflow_id = ?", id).Count(&depErr.ProductCount).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.AnalysisReport{}).Where("workflow_id = ?", id).Count(&depErr.ReportCount).Error; err != nil {
			return err
		}
		depErr.HasProducts = depErr.ProductCount > 0
		depErr.HasReports = depErr.ReportCount > 0
		if depErr.HasProducts || depErr.HasReports {
			return &depErr
		}

		if err := tx.Where("workflow_id = ?", id).Delete(&domain.WorkflowExecution{}).Error; err != nil {
			return err
		}
		return tx.Delete(&wf).Error
	})
}

func (r *workflowRepository) FindDefaultByTypes(ctx context.Context, types []domain.WorkflowType) (*domain.Workflow, error) {
	for _, t := range types {
		var wf domain.Workflow
		err := r.db.WithContext(ctx).Where("type = ?", t).Order("id ASC").First(&wf).Error
		if err == nil {
			return &wf, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return nil, domain.ErrNotFound
}

func (r *workflowRepository) TouchLastExecuted(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&domain.Workflow{}).
		Where("id = ?", id).
		Updates(map[string]any{"last_executed": at, "updated_at": time.Now().UTC()}).Error
}

// RecordExecution locks the workflow row while folding in the outcome.
func (r *workflowRepository) RecordExecution(ctx context.Context, id uint, outcome domain.ExecutionOutcome, duration *time.Duration, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var wf domain.Workflow
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&wf, id).Error; err != nil {
			return translate(err)
		}

		wf.RecordExecution(outcome, duration, at)

		return tx.Model(&wf).
			Select("execution_count", "success_count", "failure_count", "average_execution_time", "last_executed", "last_execution_status", "updated_at").
			Updates(&wf).Error
	})
}

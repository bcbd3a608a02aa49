package repository

import (
	"context"

	"gorm.io/gorm"

	"huntboard/internal/core/ports"
	"huntboard/internal/domain"
)

type analysisRepository struct {
	db *gorm.DB
}

func NewAnalysisRepository(db *gorm.DB) ports.AnalysisRepository {
	return &analysisRepository{db: db}
}

func (r *analysisRepository) Create(ctx context.Context, report *domain.AnalysisReport) error {
	return r.db.WithContext(ctx).Omit("Product", "Workflow").Create(report).Error
}

func (r *analysisRepository) GetByID(ctx context.Context, id uint) (*domain.AnalysisReport, error) {
	var report domain.AnalysisReport
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Workflow").
		First(&report, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &report, nil
}

func (r *analysisRepository) List(ctx context.Context, f ports.ListFilter) ([]domain.AnalysisReport, int64, error) {
	filtered := func(db *gorm.DB) *gorm.DB {
		if f.AnalysisType != "" {
			db = db.Where("analysis_type = ?", f.AnalysisType)
		}
		return db.Scopes(byWorkflow(f), dateRange("analyzed_at", f))
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.AnalysisReport{}).Scopes(filtered).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	reports := []domain.AnalysisReport{}
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Workflow").
		Scopes(filtered, ordered(f, "analyzed_at"), paginate(f)).
		Find(&reports).Error
	return reports, total, err
}

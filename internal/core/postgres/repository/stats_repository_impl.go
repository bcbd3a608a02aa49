package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"huntboard/internal/core/ports"
	"huntboard/internal/domain"
)

type statsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) ports.StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) CountProducts(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Product{}).Count(&n).Error
	return n, err
}

func (r *statsRepository) CountAnalysis(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.AnalysisReport{}).Count(&n).Error
	return n, err
}

func (r *statsRepository) CountActiveWorkflows(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Workflow{}).Where("is_active = ?", true).Count(&n).Error
	return n, err
}

func (r *statsRepository) RecentExecutions(ctx context.Context, limit int) ([]ports.RecentExecution, error) {
	rows := []ports.RecentExecution{}
	err := r.db.WithContext(ctx).
		Table("workflow_executions AS e").
		Select("e.*, w.name AS workflow_name").
		Joins("LEFT JOIN workflows w ON w.id = e.workflow_id").
		Order("e.started_at DESC, e.id DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *statsRepository) TopProducts(ctx context.Context, limit int) ([]domain.Product, error) {
	products := []domain.Product{}
	err := r.db.WithContext(ctx).
		Order("votes_count DESC, id ASC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

func (r *statsRepository) AnalysisByType(ctx context.Context) ([]ports.TypeCount, error) {
	rows := []ports.TypeCount{}
	err := r.db.WithContext(ctx).
		Model(&domain.AnalysisReport{}).
		Select("analysis_type AS type, COUNT(*) AS count").
		Group("analysis_type").
		Order("COUNT(*) DESC, analysis_type ASC").
		Scan(&rows).Error
	return rows, err
}

// AnalysisByConfidence buckets every report in a single scan.
func (r *statsRepository) AnalysisByConfidence(ctx context.Context) (ports.ConfidenceBuckets, error) {
	var buckets ports.ConfidenceBuckets
	query := fmt.Sprintf(`
		COALESCE(SUM(CASE WHEN confidence >= %[1]v THEN 1 ELSE 0 END), 0) AS high,
		COALESCE(SUM(CASE WHEN confidence >= %[2]v AND confidence < %[1]v THEN 1 ELSE 0 END), 0) AS medium,
		COALESCE(SUM(CASE WHEN confidence < %[2]v THEN 1 ELSE 0 END), 0) AS low`,
		domain.HighConfidence, domain.MediumConfidence)

	err := r.db.WithContext(ctx).
		Model(&domain.AnalysisReport{}).
		Select(query).
		Scan(&buckets).Error
	return buckets, err
}

func (r *statsRepository) ProductsCreatedSince(ctx context.Context, since time.Time) ([]ports.ProductPoint, error) {
	points := []ports.ProductPoint{}
	err := r.db.WithContext(ctx).
		Model(&domain.Product{}).
		Select("created_at, votes_count").
		Where("created_at >= ?", since).
		Scan(&points).Error
	return points, err
}

func (r *statsRepository) AnalysisCreatedSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	var times []time.Time
	err := r.db.WithContext(ctx).
		Model(&domain.AnalysisReport{}).
		Where("created_at >= ?", since).
		Pluck("created_at", &times).Error
	return times, err
}

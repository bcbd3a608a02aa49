package service

import (
	"context"

	"huntboard/internal/core/ports"
	"huntboard/internal/domain"
)

// AnalysisService is read-only; reports are written by the analysis webhook.
type AnalysisService interface {
	GetReport(ctx context.Context, id uint) (*domain.AnalysisReport, error)
	ListReports(ctx context.Context, filter ports.ListFilter) ([]domain.AnalysisReport, int64, error)
}

type analysisService struct {
	repo ports.AnalysisRepository
}

func NewAnalysisService(repo ports.AnalysisRepository) AnalysisService {
	return &analysisService{repo: repo}
}

func (s *analysisService) GetReport(ctx context.Context, id uint) (*domain.AnalysisReport, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *analysisService) ListReports(ctx context.Context, filter ports.ListFilter) ([]domain.AnalysisReport, int64, error) {
	return s.repo.List(ctx, filter)
}

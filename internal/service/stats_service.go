package service

import (
	"context"
	"fmt"
	"time"

	"huntboard/internal/core/ports"
	"huntboard/internal/domain"
)

const (
	recentExecutionsLimit = 10
	topProductsLimit      = 5
	trendDays             = 7
)

type DashboardStats struct {
	TotalProducts     int64                   `json:"totalProducts"`
	TotalAnalysis     int64                   `json:"totalAnalysis"`
	ActiveWorkflows   int64                   `json:"activeWorkflows"`
	RecentExecutions  []ports.RecentExecution `json:"recentExecutions"`
	TopProducts       []domain.Product        `json:"topProducts"`
	AnalysisBreakdown AnalysisBreakdown       `json:"analysisBreakdown"`
	Trends            Trends                  `json:"trends"`
}

type AnalysisBreakdown struct {
	ByType       map[string]int64        `json:"byType"`
	ByConfidence ports.ConfidenceBuckets `json:"byConfidence"`
}

type Trends struct {
	ProductsOverTime []TimeSeriesPoint `json:"productsOverTime"`
	AnalysisOverTime []TimeSeriesPoint `json:"analysisOverTime"`
	VotesOverTime    []TimeSeriesPoint `json:"votesOverTime"`
}

type TimeSeriesPoint struct {
	Date  string `json:"date"` // YYYY-MM-DD, UTC
	Value int64  `json:"value"`
}

type StatsService interface {
	Snapshot(ctx context.Context) (*DashboardStats, error)
}

type statsService struct {
	repo ports.StatsRepository
	now  func() time.Time
}

func NewStatsService(repo ports.StatsRepository) StatsService {
	return &statsService{repo: repo, now: time.Now}
}

// Snapshot runs the dashboard queries one after another. Any failure fails
// the whole snapshot.
func (s *statsService) Snapshot(ctx context.Context) (*DashboardStats, error) {
	var (
		stats DashboardStats
		err   error
	)

	if stats.TotalProducts, err = s.repo.CountProducts(ctx); err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	if stats.TotalAnalysis, err = s.repo.CountAnalysis(ctx); err != nil {
		return nil, fmt.Errorf("count analysis: %w", err)
	}
	if stats.ActiveWorkflows, err = s.repo.CountActiveWorkflows(ctx); err != nil {
		return nil, fmt.Errorf("count active workflows: %w", err)
	}
	if stats.RecentExecutions, err = s.repo.RecentExecutions(ctx, recentExecutionsLimit); err != nil {
		return nil, fmt.Errorf("recent executions: %w", err)
	}
	if stats.TopProducts, err = s.repo.TopProducts(ctx, topProductsLimit); err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}

	byType, err := s.repo.AnalysisByType(ctx)
	if err != nil {
		return nil, fmt.Errorf("analysis by type: %w", err)
	}
	stats.AnalysisBreakdown.ByType = make(map[string]int64, len(byType))
	for _, row := range byType {
		stats.AnalysisBreakdown.ByType[row.Type] = row.Count
	}
	if stats.AnalysisBreakdown.ByConfidence, err = s.repo.AnalysisByConfidence(ctx); err != nil {
		return nil, fmt.Errorf("analysis by confidence: %w", err)
	}

	days := trendWindow(s.now())
	since, _ := time.Parse("2006-01-02", days[0])

	points, err := s.repo.ProductsCreatedSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("products trend: %w", err)
	}
	products := make(map[string]int64, trendDays)
	votes := make(map[string]int64, trendDays)
	for _, p := range points {
		day := p.CreatedAt.UTC().Format("2006-01-02")
		products[day]++
		votes[day] += int64(p.VotesCount)
	}

	created, err := s.repo.AnalysisCreatedSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("analysis trend: %w", err)
	}
	analysis := make(map[string]int64, trendDays)
	for _, t := range created {
		analysis[t.UTC().Format("2006-01-02")]++
	}

	stats.Trends = Trends{
		ProductsOverTime: series(days, products),
		AnalysisOverTime: series(days, analysis),
		VotesOverTime:    series(days, votes),
	}
	return &stats, nil
}

// trendWindow returns the UTC calendar days ending today, oldest first.
func trendWindow(now time.Time) []string {
	today := now.UTC().Truncate(24 * time.Hour)
	days := make([]string, trendDays)
	for i := range days {
		days[i] = today.AddDate(0, 0, i-trendDays+1).Format("2006-01-02")
	}
	return days
}

func series(days []string, counts map[string]int64) []TimeSeriesPoint {
	out := make([]TimeSeriesPoint, len(days))
	for i, d := range days {
		out[i] = TimeSeriesPoint{Date: d, Value: counts[d]}
	}
	return out
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"huntboard/internal/core/ports"
	"huntboard/internal/domain"
	"huntboard/internal/validation"
)

const (
	KindProducts = "products"
	KindAnalysis = "analysis"
)

type ProductReceipt struct {
	ProductID   uint      `json:"productId,omitempty"`
	ProductName string    `json:"productName"`
	ReceivedAt  time.Time `json:"receivedAt"`
	Duplicate   bool      `json:"duplicate,omitempty"`
}

type AnalysisReceipt struct {
	ReportID     uint                `json:"reportId,omitempty"`
	ReportTitle  string              `json:"reportTitle,omitempty"`
	AnalysisType domain.AnalysisType `json:"analysisType"`
	ReceivedAt   time.Time           `json:"receivedAt"`
	Duplicate    bool                `json:"duplicate,omitempty"`
}

// WebhookService persists the payloads the workflow engine posts.
type WebhookService interface {
	IngestProduct(ctx context.Context, payload *validation.ProductWebhook) (*ProductReceipt, error)
	IngestAnalysis(ctx context.Context, payload *validation.AnalysisWebhook) (*AnalysisReceipt, error)
	Ping(ctx context.Context) error
}

type webhookService struct {
	workflows ports.WorkflowRepository
	products  ports.ProductRepository
	reports   ports.AnalysisRepository
	health    ports.HealthChecker
	dedup     ports.Deduper // nil when dedup is disabled
	log       *zap.Logger
}

func NewWebhookService(
	workflows ports.WorkflowRepository,
	products ports.ProductRepository,
	reports ports.AnalysisRepository,
	health ports.HealthChecker,
	dedup ports.Deduper,
	log *zap.Logger,
) WebhookService {
	return &webhookService{
		workflows: workflows,
		products:  products,
		reports:   reports,
		health:    health,
		dedup:     dedup,
		log:       log,
	}
}

func (s *webhookService) IngestProduct(ctx context.Context, p *validation.ProductWebhook) (_ *ProductReceipt, err error) {
	receipt := &ProductReceipt{ProductName: p.Name, ReceivedAt: time.Now().UTC()}

	key := p.ID + "|" + p.CreatedAt
	duplicate, claimed := s.claim(ctx, KindProducts, key)
	if duplicate {
		receipt.Duplicate = true
		return receipt, nil
	}
	if claimed {
		defer s.releaseOnError(ctx, KindProducts, key, &err)
	}

	wf, err := s.defaultWorkflow(ctx, domain.ProductWorkflowTypes)
	if err != nil {
		return nil, err
	}

	created := p.Created()
	product := domain.NewProduct(p.Name, p.Tagline, p.URL, created)
	product.ExternalID = p.ID
	product.Description = p.Description
	product.ProductHuntURL = &p.URL
	product.WebsiteURL = p.WebsiteURL
	product.ThumbnailURL = p.ThumbnailURL
	if product.ThumbnailURL == nil {
		product.ThumbnailURL = p.ImageURL
	}
	product.VotesCount = p.VotesCount
	product.CommentsCount = p.CommentsCount
	product.Categories = datatypes.JSONSlice[string](p.Topics)
	product.Tags = datatypes.JSONSlice[string](p.Topics)
	product.LaunchedAt = &created
	if p.Featured {
		product.FeaturedAt = &created
	}
	if wf != nil {
		product.WorkflowID = &wf.ID
	}

	makers, err := json.Marshal(map[string]any{"makers": p.Makers, "hunter": p.Hunter})
	if err != nil {
		return nil, fmt.Errorf("encode makers: %w", err)
	}
	product.Makers = datatypes.JSON(makers)

	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("store product %s: %w", p.ID, err)
	}

	s.log.Info("product webhook stored",
		zap.Uint("product_id", product.ID),
		zap.String("external_id", p.ID),
		zap.Bool("has_workflow", wf != nil),
	)

	receipt.ProductID = product.ID
	receipt.ProductName = product.Name
	return receipt, nil
}

func (s *webhookService) IngestAnalysis(ctx context.Context, a *validation.AnalysisWebhook) (_ *AnalysisReceipt, err error) {
	receipt := &AnalysisReceipt{AnalysisType: a.AnalysisType, ReceivedAt: time.Now().UTC()}

	product, err := s.resolveProduct(ctx, a.ProductID)
	if err != nil {
		return nil, err
	}

	key := a.ProductID + "/" + string(a.AnalysisType) + "|" + a.CreatedAt
	duplicate, claimed := s.claim(ctx, KindAnalysis, key)
	if duplicate {
		receipt.Duplicate = true
		return receipt, nil
	}
	if claimed {
		defer s.releaseOnError(ctx, KindAnalysis, key, &err)
	}

	wf, err := s.defaultWorkflow(ctx, domain.AnalysisWorkflowTypes)
	if err != nil {
		return nil, err
	}

	content, err := json.Marshal(map[string]any{
		"productId":    a.ProductID,
		"analysisType": a.AnalysisType,
		"result":       a.AnalysisResult,
		"metadata":     a.Metadata,
		"status":       a.Status,
		"error":        a.Error,
	})
	if err != nil {
		return nil, fmt.Errorf("encode analysis content: %w", err)
	}

	created := a.Created()
	report := &domain.AnalysisReport{
		ProductID:           product.ID,
		Title:               ReportTitle(a.AnalysisType, product.Name, created),
		Content:             datatypes.JSON(content),
		AnalysisType:        a.AnalysisType,
		Confidence:          a.Confidence(),
		Version:             domain.DefaultReportVersion,
		ProductsAnalyzed:    a.ProductsAnalyzed(),
		ExternalExecutionID: a.WorkflowExecutionID,
		AnalyzedAt:          created,
	}
	if wf != nil {
		report.WorkflowID = &wf.ID
	}

	if err := s.reports.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("store analysis for product %d: %w", product.ID, err)
	}

	s.log.Info("analysis webhook stored",
		zap.Uint("report_id", report.ID),
		zap.Uint("product_id", product.ID),
		zap.String("analysis_type", string(a.AnalysisType)),
		zap.Float64("confidence", report.Confidence),
	)

	receipt.ReportID = report.ID
	receipt.ReportTitle = report.Title
	return receipt, nil
}

func (s *webhookService) Ping(ctx context.Context) error {
	return s.health.Ping(ctx)
}

// ReportTitle is "<type label> - <product> (<YYYY-MM-DD>)" using the
// payload's own creation date.
func ReportTitle(t domain.AnalysisType, productName string, created time.Time) string {
	return fmt.Sprintf("%s - %s (%s)", t.Label(), productName, created.UTC().Format("2006-01-02"))
}

// resolveProduct accepts either the ProductHunt id stored at ingestion or
// the numeric row id.
func (s *webhookService) resolveProduct(ctx context.Context, ref string) (*domain.Product, error) {
	product, err := s.products.GetByExternalID(ctx, ref)
	if err == nil {
		return product, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	id, convErr := strconv.ParseUint(ref, 10, 64)
	if convErr != nil || id == 0 {
		return nil, domain.ErrProductNotFound
	}
	product, err = s.products.GetByID(ctx, uint(id))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrProductNotFound
	}
	return product, err
}

// defaultWorkflow returns the automation target for a payload kind and stamps
// its last run. A missing workflow is not an error.
func (s *webhookService) defaultWorkflow(ctx context.Context, types []domain.WorkflowType) (*domain.Workflow, error) {
	wf, err := s.workflows.FindDefaultByTypes(ctx, types)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find default workflow: %w", err)
	}
	if err := s.workflows.TouchLastExecuted(ctx, wf.ID, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("touch workflow %d: %w", wf.ID, err)
	}
	return wf, nil
}

// claim takes the delivery key. Redis failures let the delivery through
// without holding a claim.
func (s *webhookService) claim(ctx context.Context, kind, key string) (duplicate, claimed bool) {
	if s.dedup == nil {
		return false, false
	}
	first, err := s.dedup.Claim(ctx, kind, key)
	if err != nil {
		s.log.Warn("dedup check failed, accepting delivery", zap.String("kind", kind), zap.Error(err))
		return false, false
	}
	if !first {
		s.log.Info("duplicate webhook delivery", zap.String("kind", kind))
		return true, false
	}
	return false, true
}

// releaseOnError drops a claim whose delivery was not stored so the sender's
// retry is accepted.
func (s *webhookService) releaseOnError(ctx context.Context, kind, key string, err *error) {
	if *err == nil {
		return
	}
	if relErr := s.dedup.Release(context.WithoutCancel(ctx), kind, key); relErr != nil {
		s.log.Warn("dedup release failed", zap.String("kind", kind), zap.Error(relErr))
	}
}

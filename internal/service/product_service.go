package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"huntboard/internal/core/ports"
	"huntboard/internal/domain"
	"huntboard/internal/validation"
)

type ProductService interface {
	CreateProduct(ctx context.Context, req *validation.ProductCreate) (*domain.Product, error)
	GetProduct(ctx context.Context, id uint) (*domain.Product, error)
	ListProducts(ctx context.Context, filter ports.ListFilter) ([]domain.Product, int64, error)
	UpdateProduct(ctx context.Context, id uint, req *validation.ProductUpdate) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
}

type productService struct {
	products  ports.ProductRepository
	workflows ports.WorkflowRepository
	log       *zap.Logger
}

func NewProductService(products ports.ProductRepository, workflows ports.WorkflowRepository, log *zap.Logger) ProductService {
	return &productService{
		products:  products,
		workflows: workflows,
		log:       log,
	}
}

func (s *productService) CreateProduct(ctx context.Context, req *validation.ProductCreate) (*domain.Product, error) {
	if err := s.checkWorkflow(ctx, req.WorkflowID); err != nil {
		return nil, err
	}

	scrapedAt := time.Now().UTC()
	if req.ScrapedAt != nil {
		t, _ := validation.ParseTimestamp(*req.ScrapedAt)
		scrapedAt = t.UTC()
	}

	p := domain.NewProduct(req.Name, req.Tagline, req.URL, scrapedAt)
	p.Description = req.Description
	p.ProductHuntURL = req.ProductHuntURL
	p.WebsiteURL = req.WebsiteURL
	p.ThumbnailURL = req.ThumbnailURL
	p.VotesCount = req.VotesCount
	p.CommentsCount = req.CommentsCount
	p.Categories = datatypes.JSONSlice[string](orEmpty(req.Categories))
	p.Tags = datatypes.JSONSlice[string](orEmpty(req.Tags))
	p.WorkflowID = req.WorkflowID

	if err := s.products.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	s.log.Info("product created", zap.Uint("product_id", p.ID))

	return s.products.GetByID(ctx, p.ID)
}

func (s *productService) GetProduct(ctx context.Context, id uint) (*domain.Product, error) {
	return s.products.GetByID(ctx, id)
}

func (s *productService) ListProducts(ctx context.Context, filter ports.ListFilter) ([]domain.Product, int64, error) {
	return s.products.List(ctx, filter)
}

// UpdateProduct changes only the keys present in the body. An explicit null
// clears a nullable column and is ignored for required ones.
func (s *productService) UpdateProduct(ctx context.Context, id uint, req *validation.ProductUpdate) (*domain.Product, error) {
	if req.Has("workflowId") {
		if err := s.checkWorkflow(ctx, req.WorkflowID); err != nil {
			return nil, err
		}
	}

	fields := map[string]any{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Tagline != nil {
		fields["tagline"] = *req.Tagline
	}
	if req.URL != nil {
		fields["url"] = *req.URL
	}
	if req.VotesCount != nil {
		fields["votes_count"] = *req.VotesCount
	}
	if req.CommentsCount != nil {
		fields["comments_count"] = *req.CommentsCount
	}
	if req.ScrapedAt != nil {
		t, _ := validation.ParseTimestamp(*req.ScrapedAt)
		fields["scraped_at"] = t.UTC()
	}

	nullable := map[string]struct {
		column string
		value  any
	}{
		"description":    {"description", req.Description},
		"productHuntUrl": {"product_hunt_url", req.ProductHuntURL},
		"websiteUrl":     {"website_url", req.WebsiteURL},
		"thumbnailUrl":   {"thumbnail_url", req.ThumbnailURL},
		"workflowId":     {"workflow_id", req.WorkflowID},
	}
	for key, f := range nullable {
		if req.Has(key) {
			fields[f.column] = f.value
		}
	}
	if req.Has("categories") {
		fields["categories"] = datatypes.JSONSlice[string](orEmpty(req.Categories))
	}
	if req.Has("tags") {
		fields["tags"] = datatypes.JSONSlice[string](orEmpty(req.Tags))
	}

	p, err := s.products.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	s.log.Info("product updated", zap.Uint("product_id", id), zap.Int("fields", len(fields)))
	return p, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("product deleted", zap.Uint("product_id", id))
	return nil
}

// checkWorkflow verifies a referenced workflow exists. nil means no reference.
func (s *productService) checkWorkflow(ctx context.Context, id *uint) error {
	if id == nil {
		return nil
	}
	_, err := s.workflows.GetByID(ctx, *id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrWorkflowNotFound
	}
	return err
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

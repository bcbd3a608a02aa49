package repository

import (
	"context"

	"gorm.io/gorm"

	"huntboard/internal/core/ports"
	"huntboard/internal/domain"
)

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ports.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, p *domain.Product) error {
	return r.db.WithContext(ctx).Omit("Workflow").Create(p).Error
}

func (r *productRepository) GetByID(ctx context.Context, id uint) (*domain.Product, error) {
	var p domain.Product
	if err := r.db.WithContext(ctx).Preload("Workflow").First(&p, id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// GetByExternalID returns the most recently stored product with the given
// ProductHunt id.
func (r *productRepository) GetByExternalID(ctx context.Context, externalID string) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).
		Where("external_id = ?", externalID).
		Order("id DESC").
		First(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *productRepository) List(ctx context.Context, f ports.ListFilter) ([]domain.Product, int64, error) {
	filtered := func(db *gorm.DB) *gorm.DB {
		return db.Scopes(byWorkflow(f), dateRange("scraped_at", f))
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Product{}).Scopes(filtered).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	products := []domain.Product{}
	err := r.db.WithContext(ctx).
		Preload("Workflow").
		Scopes(filtered, ordered(f, "scraped_at"), paginate(f)).
		Find(&products).Error
	return products, total, err
}

func (r *productRepository) Update(ctx context.Context, id uint, fields map[string]any) (*domain.Product, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Product{}).
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

// Delete removes the product together with its analysis reports.
func (r *productRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&domain.AnalysisReport{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Product{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

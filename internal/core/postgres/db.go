// Package postgres opens the relational store and owns its schema.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"huntboard/internal/config"
	"huntboard/internal/domain"
)

// Open connects to PostgreSQL and sizes the pool. The returned handle is
// shared by every repository.
func Open(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	if cfg.URL == "" {
		return nil, errors.New("database url is not configured")
	}

	db, err := gorm.Open(pgdriver.Open(cfg.URL), &gorm.Config{
		Logger:  NewGormLogger(log, cfg.SlowQuery()),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxIdleTime(cfg.IdleTimeout())

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout())
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	return db, nil
}

// Models lists every table in dependency order.
func Models() []any {
	return []any{
		&domain.Workflow{},
		&domain.Product{},
		&domain.AnalysisReport{},
		&domain.WorkflowExecution{},
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Seed inserts the two default automation targets when no workflow of their
// category exists yet. It returns how many rows were created.
func Seed(ctx context.Context, db *gorm.DB) (int, error) {
	defaults := []*domain.Workflow{
		domain.NewWorkflow("ProductHunt Daily Scraper", domain.WorkflowTypeProducts, "http://localhost:5678/webhook/producthunt-scraper"),
		domain.NewWorkflow("AI Analysis Generator", domain.WorkflowTypeAnalysis, "http://localhost:5678/webhook/ai-analysis"),
	}
	defaults[0].Description = ptr("Scrapes the ProductHunt front page every day")
	defaults[1].Description = ptr("Runs AI analysis on newly scraped products")

	created := 0
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, wf := range defaults {
			var count int64
			if err := tx.Model(&domain.Workflow{}).Where("type = ?", wf.Type).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			wf.CreatedBy = "seed"
			if err := tx.Create(wf).Error; err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("seed workflows: %w", err)
	}
	return created, nil
}

// HealthCheck issues the trivial read the webhook probes rely on.
type HealthCheck struct {
	db *gorm.DB
}

func NewHealthCheck(db *gorm.DB) *HealthCheck {
	return &HealthCheck{db: db}
}

func (h *HealthCheck) Ping(ctx context.Context) error {
	var ids []uint
	return h.db.WithContext(ctx).Model(&domain.Workflow{}).Limit(1).Pluck("id", &ids).Error
}

func ptr[T any](v T) *T { return &v }

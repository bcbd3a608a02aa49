package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"huntboard/internal/core/ports"
	"huntboard/internal/domain"
	"huntboard/internal/validation"
)

type WorkflowService interface {
	CreateWorkflow(ctx context.Context, req *validation.WorkflowCreate) (*domain.Workflow, error)
	GetWorkflow(ctx context.Context, id uint) (*domain.Workflow, error)
	ListWorkflows(ctx context.Context, filter ports.ListFilter) ([]domain.Workflow, int64, error)
	UpdateWorkflow(ctx context.Context, id uint, req *validation.WorkflowUpdate) (*domain.Workflow, error)
	DeleteWorkflow(ctx context.Context, id uint) error
}

type workflowService struct {
	repo ports.WorkflowRepository
	log  *zap.Logger
}

func NewWorkflowService(repo ports.WorkflowRepository, log *zap.Logger) WorkflowService {
	return &workflowService{
		repo: repo,
		log:  log,
	}
}

func (s *workflowService) CreateWorkflow(ctx context.Context, req *validation.WorkflowCreate) (*domain.Workflow, error) {
	wf := domain.NewWorkflow(req.Name, req.WorkflowType, req.WebhookURL)
	wf.Description = req.Description
	wf.N8nWorkflowID = req.N8nWorkflowID
	wf.IsActive = req.IsActive
	wf.Configuration = datatypes.NewJSONType(req.Configuration)
	wf.Metadata = datatypes.JSONMap(req.Metadata)
	wf.CreatedBy = req.CreatedBy

	if err := s.repo.Create(ctx, wf); err != nil {
		return nil, fmt.Errorf("create workflow: %w", err)
	}

	s.log.Info("workflow created", zap.Uint("workflow_id", wf.ID), zap.String("type", string(wf.Type)))
	return wf, nil
}

func (s *workflowService) GetWorkflow(ctx context.Context, id uint) (*domain.Workflow, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *workflowService) ListWorkflows(ctx context.Context, filter ports.ListFilter) ([]domain.Workflow, int64, error) {
	return s.repo.List(ctx, filter)
}

func (s *workflowService) UpdateWorkflow(ctx context.Context, id uint, req *validation.WorkflowUpdate) (*domain.Workflow, error) {
	fields := map[string]any{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Has("description") {
		fields["description"] = req.Description
	}
	if req.WorkflowType != nil {
		fields["type"] = *req.WorkflowType
	}
	if req.N8nWorkflowID != nil {
		fields["n8n_workflow_id"] = *req.N8nWorkflowID
	}
	if req.WebhookURL != nil {
		fields["webhook_url"] = *req.WebhookURL
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}
	if req.Configuration != nil {
		fields["configuration"] = datatypes.NewJSONType(*req.Configuration)
	}
	if req.Has("metadata") {
		metadata := req.Metadata
		if metadata == nil {
			metadata = map[string]any{}
		}
		fields["metadata"] = datatypes.JSONMap(metadata)
	}
	if req.UpdatedBy != nil {
		fields["updated_by"] = *req.UpdatedBy
	}

	wf, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	s.log.Info("workflow updated", zap.Uint("workflow_id", id), zap.Int("fields", len(fields)))
	return wf, nil
}

func (s *workflowService) DeleteWorkflow(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		var depErr *domain.DependencyError
		if errors.As(err, &depErr) {
			s.log.Info("workflow delete blocked",
				zap.Uint("workflow_id", id),
				zap.Int64("products", depErr.ProductCount),
				zap.Int64("reports", depErr.ReportCount),
			)
		}
		return err
	}
	s.log.Info("workflow deleted", zap.Uint("workflow_id", id))
	return nil
}

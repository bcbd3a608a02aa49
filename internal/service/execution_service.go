package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"huntboard/internal/core/ports"
	"huntboard/internal/domain"
	"huntboard/internal/metrics"
)

// ExecutionService triggers workflow runs on the external executor and
// records their completion.
type ExecutionService interface {
	RunWorkflow(ctx context.Context, workflowID uint) (*domain.WorkflowExecution, error)
	ListExecutions(ctx context.Context, workflowID uint, filter ports.ListFilter) ([]domain.WorkflowExecution, int64, error)

	// Complete is idempotent: a second completion of the same execution
	// returns the stored row and changes nothing.
	Complete(ctx context.Context, event domain.ExecutionCompletedEvent) (*domain.WorkflowExecution, error)
}

type executionService struct {
	workflows   ports.WorkflowRepository
	executions  ports.ExecutionRepository
	dispatcher  ports.Dispatcher
	mode        string
	callbackURL string
	log         *zap.Logger
}

func NewExecutionService(
	workflows ports.WorkflowRepository,
	executions ports.ExecutionRepository,
	dispatcher ports.Dispatcher,
	mode string,
	callbackURL string,
	log *zap.Logger,
) ExecutionService {
	return &executionService{
		workflows:   workflows,
		executions:  executions,
		dispatcher:  dispatcher,
		mode:        mode,
		callbackURL: callbackURL,
		log:         log,
	}
}

func (s *executionService) RunWorkflow(ctx context.Context, workflowID uint) (*domain.WorkflowExecution, error) {
	wf, err := s.workflows.GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	if !wf.IsActive {
		return nil, domain.ErrWorkflowInactive
	}

	exec := domain.NewExecution(wf.ID)
	if err := s.executions.Create(ctx, exec); err != nil {
		return nil, fmt.Errorf("create execution: %w", err)
	}

	req := domain.NewDispatchRequest(wf, exec, s.callbackURL)
	if err := s.dispatcher.Dispatch(ctx, req); err != nil {
		metrics.DispatchesTotal.WithLabelValues(s.mode, "error").Inc()
		s.log.Error("dispatch failed",
			zap.Uint("workflow_id", wf.ID),
			zap.Uint("execution_id", exec.ID),
			zap.Error(err),
		)
		if _, cerr := s.Complete(ctx, domain.ExecutionCompletedEvent{
			ExecutionID: exec.ID,
			DispatchID:  exec.DispatchID,
			Status:      domain.ExecutionFailed,
			Error:       err.Error(),
			CompletedAt: time.Now().UTC(),
		}); cerr != nil {
			s.log.Error("mark execution failed", zap.Uint("execution_id", exec.ID), zap.Error(cerr))
		}
		return nil, fmt.Errorf("dispatch execution %d: %w", exec.ID, err)
	}
	metrics.DispatchesTotal.WithLabelValues(s.mode, "ok").Inc()

	if err := s.executions.UpdateStatus(ctx, exec.ID, domain.ExecutionRunning); err != nil {
		return nil, fmt.Errorf("mark execution %d running: %w", exec.ID, err)
	}
	if err := s.workflows.TouchLastExecuted(ctx, wf.ID, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("touch workflow %d: %w", wf.ID, err)
	}

	s.log.Info("workflow dispatched",
		zap.Uint("workflow_id", wf.ID),
		zap.Uint("execution_id", exec.ID),
		zap.String("dispatch_id", exec.DispatchID.String()),
		zap.String("mode", s.mode),
	)

	// A fast executor may already have called back.
	return s.executions.GetByID(ctx, exec.ID)
}

func (s *executionService) ListExecutions(ctx context.Context, workflowID uint, filter ports.ListFilter) ([]domain.WorkflowExecution, int64, error) {
	if _, err := s.workflows.GetByID(ctx, workflowID); err != nil {
		return nil, 0, err
	}
	return s.executions.ListByWorkflow(ctx, workflowID, filter)
}

func (s *executionService) Complete(ctx context.Context, ev domain.ExecutionCompletedEvent) (*domain.WorkflowExecution, error) {
	exec, err := s.executions.GetByID(ctx, ev.ExecutionID)
	if err != nil {
		return nil, err
	}
	if ev.DispatchID != uuid.Nil && ev.DispatchID != exec.DispatchID {
		return nil, fmt.Errorf("execution %d dispatch %s: %w", ev.ExecutionID, ev.DispatchID, domain.ErrNotFound)
	}
	if ev.CompletedAt.IsZero() {
		ev.CompletedAt = time.Now().UTC()
	}

	finished, err := s.executions.Finish(ctx, exec.ID, ev)
	if err != nil {
		return nil, fmt.Errorf("finish execution %d: %w", exec.ID, err)
	}
	if !finished {
		s.log.Info("execution already finished", zap.Uint("execution_id", exec.ID))
		return s.executions.GetByID(ctx, exec.ID)
	}

	duration := ev.CompletedAt.Sub(exec.StartedAt)
	if ev.DurationMs != nil {
		duration = time.Duration(*ev.DurationMs) * time.Millisecond
	}
	if duration < 0 {
		duration = 0
	}

	if err := s.workflows.RecordExecution(ctx, exec.WorkflowID, ev.Status.Outcome(), &duration, ev.CompletedAt); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("record execution on workflow %d: %w", exec.WorkflowID, err)
		}
	}

	metrics.ExecutionsCompletedTotal.WithLabelValues(string(ev.Status)).Inc()
	s.log.Info("execution finished",
		zap.Uint("execution_id", exec.ID),
		zap.Uint("workflow_id", exec.WorkflowID),
		zap.String("status", string(ev.Status)),
		zap.Duration("duration", duration),
	)

	return s.executions.GetByID(ctx, exec.ID)
}

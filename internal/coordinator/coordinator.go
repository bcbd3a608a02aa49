package coordinator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"huntboard/internal/core/ports"
	"huntboard/internal/domain"
	"huntboard/internal/service"
)

// Coordinator folds completion events published by executors into the
// execution and workflow tables.
type Coordinator struct {
	eventBus   ports.EventBus
	executions service.ExecutionService
	log        *zap.Logger
}

func NewCoordinator(bus ports.EventBus, executions service.ExecutionService, log *zap.Logger) *Coordinator {
	return &Coordinator{
		eventBus:   bus,
		executions: executions,
		log:        log,
	}
}

// Start blocks, consuming events until ctx is cancelled. Call it from main
// as a goroutine.
func (c *Coordinator) Start(ctx context.Context) error {
	eventChannel, err := c.eventBus.SubscribeToEvents(ctx)
	if err != nil {
		return fmt.Errorf("subscribe to completion events: %w", err)
	}
	c.log.Info("coordinator started, listening for completion events")

	for {
		select {
		case <-ctx.Done():
			c.log.Info("coordinator shutting down")
			return nil

		case event, ok := <-eventChannel:
			if !ok {
				c.log.Info("completion stream closed")
				return nil
			}
			c.handleExecutionCompleted(ctx, event)
		}
	}
}

func (c *Coordinator) handleExecutionCompleted(ctx context.Context, event domain.ExecutionCompletedEvent) {
	exec, err := c.executions.Complete(ctx, event)
	if err != nil {
		c.log.Error("failed to record execution completion",
			zap.Uint("execution_id", event.ExecutionID),
			zap.String("status", string(event.Status)),
			zap.Error(err),
		)
		return
	}
	c.log.Debug("execution completion recorded",
		zap.Uint("execution_id", exec.ID),
		zap.String("status", string(exec.Status)),
	)
}

package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"huntboard/internal/core/ports"
	"huntboard/internal/domain"
)

type Worker struct {
	workerID string
	queue    ports.TaskQueue
	eventBus ports.EventBus
	registry TaskRegistry
	log      *zap.Logger
}

func NewWorker(q ports.TaskQueue, bus ports.EventBus, reg TaskRegistry, log *zap.Logger) *Worker {
	id := uuid.New().String()
	return &Worker{
		workerID: id,
		queue:    q,
		eventBus: bus,
		registry: reg,
		log:      log.With(zap.String("worker_id", id)),
	}
}

// ProcessNext handles exactly one dispatch request: pop, execute, publish.
func (w *Worker) ProcessNext(ctx context.Context) error {
	req, err := w.queue.Pop(ctx)
	if err != nil {
		return fmt.Errorf("pop dispatch request: %w", err)
	}

	log := w.log.With(
		zap.Uint("execution_id", req.ExecutionID),
		zap.Uint("workflow_id", req.WorkflowID),
		zap.String("workflow_type", string(req.WorkflowType)),
	)
	log.Info("executing workflow")

	started := time.Now()
	event := domain.ExecutionCompletedEvent{
		ExecutionID: req.ExecutionID,
		DispatchID:  req.DispatchID,
	}

	handler, exists := w.registry[req.WorkflowType]
	if !exists {
		event.Status = domain.ExecutionFailed
		event.Error = fmt.Sprintf("no handler for workflow type %q", req.WorkflowType)
	} else if result, err := handler(ctx, req); err != nil {
		event.Status = domain.ExecutionFailed
		event.Error = err.Error()
	} else {
		event.Status = domain.ExecutionCompleted
		event.ProductsProcessed = &result.ProductsProcessed
		event.Metadata = result.Metadata
	}

	elapsed := time.Since(started).Milliseconds()
	event.DurationMs = &elapsed
	event.CompletedAt = time.Now().UTC()

	if err := w.eventBus.PublishExecutionCompleted(ctx, event); err != nil {
		return fmt.Errorf("publish completion of execution %d: %w", req.ExecutionID, err)
	}
	log.Info("workflow finished", zap.String("status", string(event.Status)), zap.Int64("duration_ms", elapsed))
	return nil
}

// StartPool launches concurrency worker loops and returns once all of them
// have exited after ctx is cancelled.
func (w *Worker) StartPool(ctx context.Context, concurrency int) {
	w.log.Info("starting worker pool", zap.Int("concurrency", concurrency))

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(threadID int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					w.log.Info("worker thread shutting down", zap.Int("thread", threadID))
					return
				default:
				}
				if err := w.ProcessNext(ctx); err != nil {
					if errors.Is(err, context.Canceled) || ctx.Err() != nil {
						continue
					}
					w.log.Error("worker iteration failed", zap.Int("thread", threadID), zap.Error(err))
					// back off before the next pop
					select {
					case <-ctx.Done():
					case <-time.After(time.Second):
					}
				}
			}
		}(i)
	}
	wg.Wait()
}

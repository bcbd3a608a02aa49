package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"huntboard/internal/domain"
)

func (e *testEnv) executionService(d *fakeDispatcher) ExecutionService {
	return NewExecutionService(e.workflows, e.executions, d, "queue", "http://api/api/webhooks/executions", zap.NewNop())
}

func createActiveWorkflow(t *testing.T, env *testEnv) *domain.Workflow {
	t.Helper()
	wf := domain.NewWorkflow("daily", domain.WorkflowTypeProducts, "https://n8n.local/webhook/daily")
	require.NoError(t, env.workflows.Create(context.Background(), wf))
	return wf
}

func TestExecutionService_RunDispatches(t *testing.T) {
	env := setupTestEnv(t)
	d := &fakeDispatcher{}
	svc := env.executionService(d)
	ctx := context.Background()
	wf := createActiveWorkflow(t, env)

	exec, err := svc.RunWorkflow(ctx, wf.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ExecutionRunning, exec.Status)
	assert.NotEqual(t, uuid.Nil, exec.DispatchID)

	require.Len(t, d.requests, 1)
	req := d.requests[0]
	assert.Equal(t, exec.ID, req.ExecutionID)
	assert.Equal(t, exec.DispatchID, req.DispatchID)
	assert.Equal(t, wf.WebhookURL, req.WebhookURL)
	assert.Equal(t, "http://api/api/webhooks/executions", req.CallbackURL)

	stored, err := env.workflows.GetByID(ctx, wf.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastExecuted)
	assert.Zero(t, stored.ExecutionCount, "counters move on completion, not dispatch")
}

func TestExecutionService_RunRejectsInactiveAndMissing(t *testing.T) {
	env := setupTestEnv(t)
	svc := env.executionService(&fakeDispatcher{})
	ctx := context.Background()

	_, err := svc.RunWorkflow(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	wf := createActiveWorkflow(t, env)
	_, err = env.workflows.Update(ctx, wf.ID, map[string]any{"is_active": false})
	require.NoError(t, err)

	_, err = svc.RunWorkflow(ctx, wf.ID)
	assert.ErrorIs(t, err, domain.ErrWorkflowInactive)
}

func TestExecutionService_DispatchFailureMarksFailed(t *testing.T) {
	env := setupTestEnv(t)
	svc := env.executionService(&fakeDispatcher{err: errors.New("redis down")})
	ctx := context.Background()
	wf := createActiveWorkflow(t, env)

	_, err := svc.RunWorkflow(ctx, wf.ID)
	require.Error(t, err)

	execs, total, err := svc.ListExecutions(ctx, wf.ID, defaultFilter())
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	assert.Equal(t, domain.ExecutionFailed, execs[0].Status)
	require.NotNil(t, execs[0].Error)
	assert.Contains(t, *execs[0].Error, "redis down")

	stored, err := env.workflows.GetByID(ctx, wf.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.FailureCount)
}

func TestExecutionService_CompleteCountsOnce(t *testing.T) {
	env := setupTestEnv(t)
	svc := env.executionService(&fakeDispatcher{})
	ctx := context.Background()
	wf := createActiveWorkflow(t, env)

	exec, err := svc.RunWorkflow(ctx, wf.ID)
	require.NoError(t, err)

	processed := 25
	duration := int64(1200)
	ev := domain.ExecutionCompletedEvent{
		ExecutionID:       exec.ID,
		DispatchID:        exec.DispatchID,
		Status:            domain.ExecutionCompleted,
		ProductsProcessed: &processed,
		DurationMs:        &duration,
		CompletedAt:       time.Now().UTC(),
	}

	done, err := svc.Complete(ctx, ev)
	require.NoError(t, err)
	assert.Equal(t, domain.ExecutionCompleted, done.Status)
	require.NotNil(t, done.ProductsProcessed)
	assert.Equal(t, 25, *done.ProductsProcessed)

	ev.Status = domain.ExecutionFailed
	again, err := svc.Complete(ctx, ev)
	require.NoError(t, err)
	assert.Equal(t, domain.ExecutionCompleted, again.Status)

	stored, err := env.workflows.GetByID(ctx, wf.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.ExecutionCount)
	assert.Equal(t, 1, stored.SuccessCount)
	assert.Zero(t, stored.FailureCount)
	require.NotNil(t, stored.AverageExecutionTime)
	assert.InDelta(t, 1200, *stored.AverageExecutionTime, 0.001)
	require.NotNil(t, stored.LastExecutionStatus)
	assert.Equal(t, domain.OutcomeSuccess, *stored.LastExecutionStatus)
}

func TestExecutionService_CompleteRejectsForeignDispatch(t *testing.T) {
	env := setupTestEnv(t)
	svc := env.executionService(&fakeDispatcher{})
	ctx := context.Background()
	wf := createActiveWorkflow(t, env)

	exec, err := svc.RunWorkflow(ctx, wf.ID)
	require.NoError(t, err)

	_, err = svc.Complete(ctx, domain.ExecutionCompletedEvent{
		ExecutionID: exec.ID,
		DispatchID:  uuid.New(),
		Status:      domain.ExecutionCompleted,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Complete(ctx, domain.ExecutionCompletedEvent{ExecutionID: 999, Status: domain.ExecutionCompleted})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExecutionService_ListExecutionsUnknownWorkflow(t *testing.T) {
	env := setupTestEnv(t)
	svc := env.executionService(&fakeDispatcher{})

	_, _, err := svc.ListExecutions(context.Background(), 42, defaultFilter())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

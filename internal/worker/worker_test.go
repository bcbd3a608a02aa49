package worker

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

type fakeQueue struct {
	items chan domain.DispatchRequest
}

func newFakeQueue(reqs ...domain.DispatchRequest) *fakeQueue {
	q := &fakeQueue{items: make(chan domain.DispatchRequest, len(reqs)+1)}
	for _, r := range reqs {
		q.items <- r
	}
	return q
}

func (q *fakeQueue) Push(_ context.Context, req domain.DispatchRequest) error {
	q.items <- req
	return nil
}

func (q *fakeQueue) Pop(ctx context.Context) (domain.DispatchRequest, error) {
	select {
	case r := <-q.items:
		return r, nil
	case <-ctx.Done():
		return domain.DispatchRequest{}, ctx.Err()
	}
}

type fakeBus struct {
	published chan domain.ExecutionCompletedEvent
}

func (b *fakeBus) PublishExecutionCompleted(_ context.Context, ev domain.ExecutionCompletedEvent) error {
	b.published <- ev
	return nil
}

func (b *fakeBus) SubscribeToEvents(context.Context) (<-chan domain.ExecutionCompletedEvent, error) {
	return b.published, nil
}

func TestWorker_ProcessNextPublishesCompletion(t *testing.T) {
	req := domain.DispatchRequest{ExecutionID: 1, DispatchID: uuid.New(), WorkflowType: domain.WorkflowTypeProducts}
	bus := &fakeBus{published: make(chan domain.ExecutionCompletedEvent, 1)}
	w := NewWorker(newFakeQueue(req), bus, InitRegistry(), zap.NewNop())

	require.NoError(t, w.ProcessNext(context.Background()))

	ev := <-bus.published
	assert.Equal(t, uint(1), ev.ExecutionID)
	assert.Equal(t, req.DispatchID, ev.DispatchID)
	assert.Equal(t, domain.ExecutionCompleted, ev.Status)
	require.NotNil(t, ev.DurationMs)
	assert.Equal(t, "local", ev.Metadata["executor"])
}

func TestWorker_HandlerErrorAndUnknownType(t *testing.T) {
	reg := TaskRegistry{
		domain.WorkflowTypeCustom: func(context.Context, domain.DispatchRequest) (Result, error) {
			return Result{}, errors.New("boom")
		},
	}
	bus := &fakeBus{published: make(chan domain.ExecutionCompletedEvent, 2)}
	w := NewWorker(newFakeQueue(
		domain.DispatchRequest{ExecutionID: 1, WorkflowType: domain.WorkflowTypeCustom},
		domain.DispatchRequest{ExecutionID: 2, WorkflowType: domain.WorkflowTypeAnalysis},
	), bus, reg, zap.NewNop())

	require.NoError(t, w.ProcessNext(context.Background()))
	require.NoError(t, w.ProcessNext(context.Background()))

	first := <-bus.published
	assert.Equal(t, domain.ExecutionFailed, first.Status)
	assert.Equal(t, "boom", first.Error)

	second := <-bus.published
	assert.Equal(t, domain.ExecutionFailed, second.Status)
	assert.Contains(t, second.Error, "no handler")
}

func TestWorker_StartPoolStopsOnCancel(t *testing.T) {
	bus := &fakeBus{published: make(chan domain.ExecutionCompletedEvent, 4)}
	q := newFakeQueue(domain.DispatchRequest{ExecutionID: 7, WorkflowType: domain.WorkflowTypeProducts})
	w := NewWorker(q, bus, InitRegistry(), zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.StartPool(ctx, 2)
		close(done)
	}()

	select {
	case ev := <-bus.published:
		assert.Equal(t, uint(7), ev.ExecutionID)
	case <-time.After(2 * time.Second):
		t.Fatal("request was not processed")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pool did not stop")
	}
}

package coordinator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"huntboard/internal/core/ports"
	"huntboard/internal/domain"
)

type chanBus struct {
	events chan domain.ExecutionCompletedEvent
}

func (b *chanBus) PublishExecutionCompleted(_ context.Context, ev domain.ExecutionCompletedEvent) error {
	b.events <- ev
	return nil
}

func (b *chanBus) SubscribeToEvents(context.Context) (<-chan domain.ExecutionCompletedEvent, error) {
	return b.events, nil
}

type failingBus struct{}

func (failingBus) PublishExecutionCompleted(context.Context, domain.ExecutionCompletedEvent) error {
	return nil
}

func (failingBus) SubscribeToEvents(context.Context) (<-chan domain.ExecutionCompletedEvent, error) {
	return nil, errors.New("redis unavailable")
}

type recordingExecutions struct {
	mu        sync.Mutex
	completed []domain.ExecutionCompletedEvent
	err       error
}

func (r *recordingExecutions) RunWorkflow(context.Context, uint) (*domain.WorkflowExecution, error) {
	return nil, errors.New("not used")
}

func (r *recordingExecutions) ListExecutions(context.Context, uint, ports.ListFilter) ([]domain.WorkflowExecution, int64, error) {
	return nil, 0, errors.New("not used")
}

func (r *recordingExecutions) Complete(_ context.Context, ev domain.ExecutionCompletedEvent) (*domain.WorkflowExecution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = append(r.completed, ev)
	if r.err != nil {
		return nil, r.err
	}
	return &domain.WorkflowExecution{ID: ev.ExecutionID, Status: ev.Status}, nil
}

func (r *recordingExecutions) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.completed)
}

func TestCoordinator_ForwardsEvents(t *testing.T) {
	bus := &chanBus{events: make(chan domain.ExecutionCompletedEvent, 2)}
	execs := &recordingExecutions{}
	c := NewCoordinator(bus, execs, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	bus.events <- domain.ExecutionCompletedEvent{ExecutionID: 1, Status: domain.ExecutionCompleted}
	bus.events <- domain.ExecutionCompletedEvent{ExecutionID: 2, Status: domain.ExecutionFailed}

	assert.Eventually(t, func() bool { return execs.count() == 2 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestCoordinator_ContinuesAfterCompleteError(t *testing.T) {
	bus := &chanBus{events: make(chan domain.ExecutionCompletedEvent, 2)}
	execs := &recordingExecutions{err: domain.ErrNotFound}
	c := NewCoordinator(bus, execs, zap.NewNop())

	go func() {
		bus.events <- domain.ExecutionCompletedEvent{ExecutionID: 1}
		bus.events <- domain.ExecutionCompletedEvent{ExecutionID: 2}
		close(bus.events)
	}()

	require.NoError(t, c.Start(context.Background()))
	assert.Equal(t, 2, execs.count())
}

func TestCoordinator_SubscribeFailure(t *testing.T) {
	c := NewCoordinator(failingBus{}, &recordingExecutions{}, zap.NewNop())
	assert.Error(t, c.Start(context.Background()))
}

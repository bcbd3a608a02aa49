package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"huntboard/internal/domain"
)

const PendingQueue = "huntboard:executions:pending"

// RedisQueue is a FIFO of dispatch requests on a Redis list. It doubles as
// the queue-mode Dispatcher.
type RedisQueue struct {
	client    *redis.Client
	queueName string
}

func NewRedisQueue(client *redis.Client) *RedisQueue {
	return &RedisQueue{
		client:    client,
		queueName: PendingQueue,
	}
}

// Push adds a dispatch request to the end of the list
func (q *RedisQueue) Push(ctx context.Context, req domain.DispatchRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode dispatch request: %w", err)
	}
	return q.client.RPush(ctx, q.queueName, payload).Err()
}

// Pop waits for a dispatch request and removes it from the front of the list
func (q *RedisQueue) Pop(ctx context.Context) (domain.DispatchRequest, error) {
	var req domain.DispatchRequest

	// 0 blocks until an item appears or ctx is done
	result, err := q.client.BLPop(ctx, 0, q.queueName).Result()
	if err != nil {
		return req, err
	}
	// BLPop returns [queueName, element]
	if err := json.Unmarshal([]byte(result[1]), &req); err != nil {
		return req, fmt.Errorf("decode dispatch request: %w", err)
	}
	return req, nil
}

func (q *RedisQueue) Dispatch(ctx context.Context, req domain.DispatchRequest) error {
	return q.Push(ctx, req)
}

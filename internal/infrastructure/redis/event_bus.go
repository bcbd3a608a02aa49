package redis

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"huntboard/internal/domain"
)

const CompletedChannel = "huntboard:executions:completed"

type RedisEventBus struct {
	client  *redis.Client
	channel string
	log     *zap.Logger
}

func NewRedisEventBus(client *redis.Client, log *zap.Logger) *RedisEventBus {
	return &RedisEventBus{
		client:  client,
		channel: CompletedChannel,
		log:     log,
	}
}

// PublishExecutionCompleted broadcasts the event to every subscriber
func (b *RedisEventBus) PublishExecutionCompleted(ctx context.Context, event domain.ExecutionCompletedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return b.client.Publish(ctx, b.channel, payload).Err()
}

// SubscribeToEvents opens a continuous stream for the coordinator. The
// returned channel is closed once ctx is done.
func (b *RedisEventBus) SubscribeToEvents(ctx context.Context) (<-chan domain.ExecutionCompletedEvent, error) {
	pubsub := b.client.Subscribe(ctx, b.channel)

	// Wait for the subscription to be confirmed so no early publish is lost
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	msgChan := make(chan domain.ExecutionCompletedEvent)

	go func() {
		defer close(msgChan)
		defer pubsub.Close()

		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var event domain.ExecutionCompletedEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					b.log.Warn("dropping malformed completion event", zap.Error(err))
					continue
				}
				select {
				case msgChan <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return msgChan, nil
}

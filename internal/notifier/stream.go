package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// StreamNotifier 发布到 Redis Streams，由下游消费者负责投递
type StreamNotifier struct {
	redisClient *redis.Client
	stream      string
}

// NewStreamNotifier 创建 Redis Streams 通知
func NewStreamNotifier(redisClient *redis.Client, stream string) *StreamNotifier {
	return &StreamNotifier{
		redisClient: redisClient,
		stream:      stream,
	}
}

func (n *StreamNotifier) Send(ctx context.Context, recipient, subject, body string) error {
	jsonBytes, err := json.Marshal(newAlert(recipient, subject, body))
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}

	err = n.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: n.stream,
		Values: map[string]interface{}{
			"data":      string(jsonBytes),
			"timestamp": time.Now().Unix(),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish to stream %s: %w", n.stream, err)
	}
	return nil
}

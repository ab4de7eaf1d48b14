package notifier

import (
	"fmt"

	"wisefido-vitals/internal/config"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// New 根据配置创建通知通道
// 返回的 closer 用于释放底层连接（可能为 no-op）
func New(cfg *config.Config, redisClient *redis.Client, logger *zap.Logger) (Notifier, func(), error) {
	noop := func() {}

	switch cfg.Notifier.Transport {
	case config.TransportSMTP:
		return NewSMTPNotifier(&cfg.Notifier.SMTP), noop, nil
	case config.TransportWebhook:
		return NewWebhookNotifier(cfg.Notifier.WebhookURL), noop, nil
	case config.TransportMQTT:
		client, err := NewMQTTClient(&cfg.Notifier.MQTT)
		if err != nil {
			return nil, noop, err
		}
		return NewMQTTNotifier(client, cfg.Notifier.MQTT.Topic, cfg.Notifier.MQTT.QoS), func() {
			client.Disconnect(250)
		}, nil
	case config.TransportRedis:
		if redisClient == nil {
			return nil, noop, fmt.Errorf("redis client is required for redis transport")
		}
		return NewStreamNotifier(redisClient, cfg.Notifier.Stream), noop, nil
	case config.TransportLog:
		return NewLogNotifier(logger), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown notifier transport: %s", cfg.Notifier.Transport)
	}
}

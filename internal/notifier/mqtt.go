package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"wisefido-vitals/internal/config"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// mqttPublisher mqtt.Client 的发布子集
type mqttPublisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTNotifier 通过 MQTT 主题发布报警
type MQTTNotifier struct {
	client mqttPublisher
	topic  string
	qos    byte
}

// NewMQTTClient 连接 MQTT Broker
func NewMQTTClient(cfg *config.MQTTConfig) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return client, nil
}

// NewMQTTNotifier 创建 MQTT 通知
func NewMQTTNotifier(client mqttPublisher, topic string, qos byte) *MQTTNotifier {
	return &MQTTNotifier{
		client: client,
		topic:  topic,
		qos:    qos,
	}
}

func (n *MQTTNotifier) Send(ctx context.Context, recipient, subject, body string) error {
	payload, err := json.Marshal(newAlert(recipient, subject, body))
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}

	token := n.client.Publish(n.topic, n.qos, false, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", n.topic, err)
	}
	return nil
}

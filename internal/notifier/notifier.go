package notifier

import (
	"context"
	"time"
)

// Notifier 外部通知通道（邮件/Webhook/MQTT/Redis Streams）
// 每次调用只发送一次，不重试；失败通过 error 返回
type Notifier interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// Alert 非邮件通道使用的 JSON 消息体
type Alert struct {
	Recipient string    `json:"recipient"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	SentAt    time.Time `json:"sent_at"`
}

func newAlert(recipient, subject, body string) Alert {
	return Alert{
		Recipient: recipient,
		Subject:   subject,
		Body:      body,
		SentAt:    time.Now().UTC(),
	}
}

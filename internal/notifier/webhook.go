package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// WebhookNotifier HTTP Webhook 通知
type WebhookNotifier struct {
	httpClient *resty.Client
	url        string
}

// NewWebhookNotifier 创建 Webhook 通知（不重试）
func NewWebhookNotifier(url string) *WebhookNotifier {
	client := resty.New().
		SetTimeout(10*time.Second).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &WebhookNotifier{
		httpClient: client,
		url:        url,
	}
}

func (n *WebhookNotifier) Send(ctx context.Context, recipient, subject, body string) error {
	resp, err := n.httpClient.R().
		SetContext(ctx).
		SetBody(newAlert(recipient, subject, body)).
		Post(n.url)
	if err != nil {
		return fmt.Errorf("failed to call webhook: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode())
	}
	return nil
}

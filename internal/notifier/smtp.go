package notifier

import (
	"context"
	"fmt"

	"wisefido-vitals/internal/config"

	"gopkg.in/gomail.v2"
)

// mailSender gomail.Dialer 的发送接口（便于测试替换）
type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPNotifier 邮件通知
type SMTPNotifier struct {
	sender mailSender
	from   string
}

// NewSMTPNotifier 创建邮件通知（587 端口走 STARTTLS）
func NewSMTPNotifier(cfg *config.SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{
		sender: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (n *SMTPNotifier) Send(ctx context.Context, recipient, subject, body string) error {
	if recipient == "" {
		return fmt.Errorf("recipient is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", recipient)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	// gomail 连接建立后没有超时，发送放在独立 goroutine 中，由 ctx 控制等待时间
	// ctx 结束后 SMTP 会话仍在后台跑完，结果被丢弃
	errCh := make(chan error, 1)
	go func() {
		errCh <- n.sender.DialAndSend(m)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to send email: %w", ctx.Err())
	}
}

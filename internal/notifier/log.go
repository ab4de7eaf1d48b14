package notifier

import (
	"context"

	"go.uber.org/zap"
)

// LogNotifier 仅写日志（本地联调用）
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(_ context.Context, recipient, subject, body string) error {
	n.logger.Warn("Emergency alert",
		zap.String("recipient", recipient),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return nil
}

package service

import (
	"context"
	"time"

	"wisefido-vitals/internal/notifier"

	"go.uber.org/zap"
)

// ManualReason 手动触发报警的固定原因
const ManualReason = "Manual Emergency Triggered!"

// SubjectPrefix 报警通知标题前缀
const SubjectPrefix = "Emergency Alert for "

// DefaultDispatchTimeout 单次发送的时间上限
const DefaultDispatchTimeout = 30 * time.Second

// DispatchResult 一次通知发送的结果
// 发送失败不影响已经给出的紧急确认
type DispatchResult struct {
	Sent  bool   `json:"sent"`
	Error string `json:"error,omitempty"`
}

// AlertDispatcher 报警分发：每次调用恰好一次 notifier.Send，不重试、不排队
type AlertDispatcher struct {
	notifier  notifier.Notifier
	recipient string
	timeout   time.Duration
	metrics   *Metrics
	logger    *zap.Logger
}

// NewAlertDispatcher 创建报警分发器
func NewAlertDispatcher(n notifier.Notifier, recipient string, metrics *Metrics, logger *zap.Logger) *AlertDispatcher {
	return &AlertDispatcher{
		notifier:  n,
		recipient: recipient,
		timeout:   DefaultDispatchTimeout,
		metrics:   metrics,
		logger:    logger,
	}
}

// WithTimeout 修改单次发送的时间上限
func (d *AlertDispatcher) WithTimeout(timeout time.Duration) *AlertDispatcher {
	if timeout > 0 {
		d.timeout = timeout
	}
	return d
}

// Dispatch 发送报警通知
// 请求方断开不取消发送；发送时间受 timeout 限制
func (d *AlertDispatcher) Dispatch(ctx context.Context, patientName, reason string) DispatchResult {
	subject := SubjectPrefix + patientName

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	defer cancel()

	err := d.notifier.Send(sendCtx, d.recipient, subject, reason)
	d.metrics.dispatched(err == nil)
	if err != nil {
		d.logger.Error("Failed to dispatch emergency alert",
			zap.String("patient_name", patientName),
			zap.String("reason", reason),
			zap.Error(err),
		)
		return DispatchResult{Sent: false, Error: err.Error()}
	}

	d.logger.Info("Emergency alert dispatched",
		zap.String("patient_name", patientName),
		zap.String("subject", subject),
	)
	return DispatchResult{Sent: true}
}

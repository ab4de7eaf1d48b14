package service

import (
	"context"
	"iter"
	"sync"
	"time"

	"wisefido-vitals/internal/evaluator"
	"wisefido-vitals/internal/models"
	"wisefido-vitals/internal/repository"

	"go.uber.org/zap"
)

// ReadingArchiver 记录/报警事件归档（可选）
type ReadingArchiver interface {
	CreateReading(ctx context.Context, patientID string, seq int, reading models.VitalReading) error
	CreateAlarmEvent(ctx context.Context, event *models.AlarmEvent) error
}

// RealtimePublisher 实时缓存（可选）
type RealtimePublisher interface {
	SetRealtime(ctx context.Context, snapshot *repository.RealtimeSnapshot) error
	PushAlarm(ctx context.Context, event *models.AlarmEvent) error
	RecentAlarms(ctx context.Context, patientID string, limit int64) ([]models.AlarmEvent, error)
}

// SubmitResult 提交一条体征的结果
type SubmitResult struct {
	Stored    models.VitalReading `json:"stored"`
	Index     int                 `json:"index"`
	Emergency bool                `json:"emergency"`
	Reason    string              `json:"reason,omitempty"`
	Breaches  []models.Breach     `json:"breaches,omitempty"`
	Dispatch  *DispatchResult     `json:"dispatch,omitempty"`
}

// ManualResult 手动报警按键的结果
type ManualResult struct {
	Fired    bool            `json:"fired"`
	State    string          `json:"state"`
	Dispatch *DispatchResult `json:"dispatch,omitempty"`
}

// SessionInfo 会话信息
type SessionInfo struct {
	PatientName  string               `json:"patient_name"`
	PatientID    string               `json:"patient_id"`
	ManualState  string               `json:"manual_state"`
	ReadingCount int                  `json:"reading_count"`
	Latest       *models.VitalReading `json:"latest,omitempty"`
}

// VitalsService 生命体征服务（整合各层）
// 追加、分级、是否分发 在同一把锁内决定；通知发送在锁外进行
type VitalsService struct {
	mu sync.Mutex

	session    *SessionContext
	store      *repository.VitalsStore
	clock      models.Clock
	classifier *evaluator.Classifier
	dispatcher *AlertDispatcher
	metrics    *Metrics
	logger     *zap.Logger

	archive  ReadingArchiver
	realtime RealtimePublisher
}

// NewVitalsService 创建服务
func NewVitalsService(dispatcher *AlertDispatcher, metrics *Metrics, logger *zap.Logger) *VitalsService {
	return &VitalsService{
		clock:      models.NewMonotonicClock(nil),
		classifier: evaluator.NewClassifier(nil),
		dispatcher: dispatcher,
		metrics:    metrics,
		logger:     logger,
	}
}

// WithArchive 启用 PostgreSQL 归档
func (s *VitalsService) WithArchive(a ReadingArchiver) *VitalsService {
	s.archive = a
	return s
}

// WithRealtimeCache 启用 Redis 实时缓存
func (s *VitalsService) WithRealtimeCache(p RealtimePublisher) *VitalsService {
	s.realtime = p
	return s
}

// WithClock 替换时间源（测试用）
func (s *VitalsService) WithClock(c models.Clock) *VitalsService {
	s.clock = c
	return s
}

// Register 注册患者，创建会话与存储
func (s *VitalsService) Register(patientName, patientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != nil {
		return ErrSessionExists
	}
	session, err := NewSessionContext(patientName, patientID)
	if err != nil {
		return err
	}

	s.session = session
	s.store = repository.NewVitalsStore()

	s.logger.Info("Patient registered",
		zap.String("patient_id", session.PatientID()),
		zap.String("patient_name", session.PatientName()),
	)
	return nil
}

// Session 当前会话信息
func (s *VitalsService) Session() (SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return SessionInfo{}, ErrNoSession
	}
	info := SessionInfo{
		PatientName:  s.session.PatientName(),
		PatientID:    s.session.PatientID(),
		ManualState:  s.session.ManualState().String(),
		ReadingCount: s.store.Len(),
	}
	if latest, ok := s.store.Latest(); ok {
		info.Latest = &latest
	}
	return info, nil
}

// SubmitReading 校验 -> 追加 -> 分级 -> （紧急时）分发一次
// 校验失败返回 *models.ValidationError，存储不变
func (s *VitalsService) SubmitReading(ctx context.Context, raw models.RawVitals) (SubmitResult, error) {
	s.mu.Lock()

	if s.session == nil {
		s.mu.Unlock()
		return SubmitResult{}, ErrNoSession
	}

	reading, err := models.NewVitalReading(raw, s.clock)
	if err != nil {
		patientID := s.session.PatientID()
		s.mu.Unlock()
		s.metrics.validationFailed()
		s.logger.Warn("Rejected vital reading",
			zap.String("patient_id", patientID),
			zap.Error(err),
		)
		return SubmitResult{}, err
	}

	idx := s.store.Append(reading)
	s.metrics.readingAccepted(s.store.Len())

	c := s.classifier.Classify(reading)
	result := SubmitResult{
		Stored:    reading,
		Index:     idx,
		Emergency: c.IsEmergency,
		Reason:    c.Reason,
		Breaches:  c.Breaches,
	}

	patientID, patientName := s.session.PatientID(), s.session.PatientName()
	if c.IsEmergency {
		s.metrics.emergency(TriggerAutomatic)
	}
	s.mu.Unlock()

	// 是否分发已在锁内确定，发送本身不占用锁
	if c.IsEmergency {
		s.logger.Warn("Automatic emergency detected",
			zap.String("patient_id", patientID),
			zap.Int("index", idx),
			zap.String("reason", c.Reason),
		)
		d := s.dispatcher.Dispatch(ctx, patientName, c.Reason)
		result.Dispatch = &d
	}

	s.afterReading(ctx, patientID, patientName, result)
	return result, nil
}

// PressEmergency 手动报警按键；第二次连续按下时分发一次
func (s *VitalsService) PressEmergency(ctx context.Context) (ManualResult, error) {
	s.mu.Lock()

	if s.session == nil {
		s.mu.Unlock()
		return ManualResult{}, ErrNoSession
	}

	fire := s.session.Press()
	result := ManualResult{
		Fired: fire,
		State: s.session.ManualState().String(),
	}

	patientID, patientName := s.session.PatientID(), s.session.PatientName()
	if fire {
		s.metrics.emergency(TriggerManual)
	}
	s.mu.Unlock()

	if !fire {
		return result, nil
	}

	s.logger.Warn("Manual emergency triggered",
		zap.String("patient_id", patientID),
	)
	d := s.dispatcher.Dispatch(ctx, patientName, ManualReason)
	result.Dispatch = &d

	builder := evaluator.NewAlarmEventBuilder(patientID, patientName)
	s.recordAlarm(ctx, builder, models.EventTypeManualEmergency, ManualReason, evaluator.BuildTriggerData(nil, nil), d.Sent)
	return result, nil
}

// History 按插入顺序的全部记录
func (s *VitalsService) History() ([]models.VitalReading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil, ErrNoSession
	}
	return s.store.All(), nil
}

// Series 某个体征的 (index, value) 序列；每次 range 重新读取当前历史
func (s *VitalsService) Series(signal models.Signal) (iter.Seq2[int, float64], error) {
	s.mu.Lock()
	store := s.store
	s.mu.Unlock()

	if store == nil {
		return nil, ErrNoSession
	}
	return func(yield func(int, float64) bool) {
		s.mu.Lock()
		snapshot := store.All()
		s.mu.Unlock()

		for i, r := range snapshot {
			if !yield(i, signal.Value(r)) {
				return
			}
		}
	}, nil
}

// ExportRows 导出行
func (s *VitalsService) ExportRows() ([]models.ExportRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil, ErrNoSession
	}
	return s.store.ExportRows(), nil
}

// RecentAlarms 最近的报警事件（最新在前），需要启用实时缓存
func (s *VitalsService) RecentAlarms(ctx context.Context, limit int64) ([]models.AlarmEvent, error) {
	s.mu.Lock()
	session := s.session
	s.mu.Unlock()

	if session == nil {
		return nil, ErrNoSession
	}
	if s.realtime == nil {
		return nil, ErrAlarmsUnavailable
	}
	return s.realtime.RecentAlarms(ctx, session.PatientID(), limit)
}

// afterReading 归档与缓存（尽力而为，失败只记日志）
func (s *VitalsService) afterReading(ctx context.Context, patientID, patientName string, result SubmitResult) {
	if s.archive != nil {
		if err := s.archive.CreateReading(ctx, patientID, result.Index, result.Stored); err != nil {
			s.logger.Error("Failed to archive reading",
				zap.String("patient_id", patientID),
				zap.Int("index", result.Index),
				zap.Error(err),
			)
		}
	}

	if s.realtime != nil {
		snapshot := &repository.RealtimeSnapshot{
			PatientID:   patientID,
			PatientName: patientName,
			Reading:     result.Stored,
			Index:       result.Index,
			Emergency:   result.Emergency,
			Breaches:    result.Breaches,
			UpdatedAt:   time.Now().Unix(),
		}
		if err := s.realtime.SetRealtime(ctx, snapshot); err != nil {
			s.logger.Error("Failed to update realtime cache",
				zap.String("patient_id", patientID),
				zap.Error(err),
			)
		}
	}

	if result.Emergency {
		builder := evaluator.NewAlarmEventBuilder(patientID, patientName)
		stored := result.Stored
		sent := result.Dispatch != nil && result.Dispatch.Sent
		s.recordAlarm(ctx, builder, models.EventTypeVitalsEmergency, result.Reason, evaluator.BuildTriggerData(&stored, result.Breaches), sent)
	}
}

func (s *VitalsService) recordAlarm(
	ctx context.Context,
	builder *evaluator.AlarmEventBuilder,
	eventType string,
	reason string,
	triggerData *models.TriggerData,
	notified bool,
) {
	if s.archive == nil && s.realtime == nil {
		return
	}

	event, err := builder.BuildAlarmEvent(eventType, reason, triggerData, notified)
	if err != nil {
		s.logger.Error("Failed to build alarm event", zap.Error(err))
		return
	}

	if s.archive != nil {
		if err := s.archive.CreateAlarmEvent(ctx, event); err != nil {
			s.logger.Error("Failed to archive alarm event",
				zap.String("event_id", event.EventID),
				zap.Error(err),
			)
		}
	}
	if s.realtime != nil {
		if err := s.realtime.PushAlarm(ctx, event); err != nil {
			s.logger.Error("Failed to cache alarm event",
				zap.String("event_id", event.EventID),
				zap.Error(err),
			)
		}
	}
}

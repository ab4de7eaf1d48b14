package evaluator

import (
	"encoding/json"
	"fmt"
	"time"

	"wisefido-vitals/internal/models"

	"github.com/google/uuid"
)

// AlarmEventBuilder 报警事件构建器
type AlarmEventBuilder struct {
	patientID   string
	patientName string
}

// NewAlarmEventBuilder 创建报警事件构建器
func NewAlarmEventBuilder(patientID, patientName string) *AlarmEventBuilder {
	return &AlarmEventBuilder{
		patientID:   patientID,
		patientName: patientName,
	}
}

// BuildAlarmEvent 构建报警事件
func (b *AlarmEventBuilder) BuildAlarmEvent(
	eventType string,
	reason string,
	triggerData *models.TriggerData,
	notified bool,
) (*models.AlarmEvent, error) {
	now := time.Now()

	// 序列化 trigger_data
	triggerDataJSON, err := json.Marshal(triggerData)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal trigger data: %w", err)
	}

	event := &models.AlarmEvent{
		EventID:     uuid.New().String(),
		PatientID:   b.patientID,
		PatientName: b.patientName,
		EventType:   eventType,
		AlarmLevel:  models.AlarmLevelEmergency,
		AlarmStatus: models.AlarmStatusActive,
		Reason:      reason,
		TriggeredAt: now,
		TriggerData: string(triggerDataJSON),
		Notified:    notified,
		CreatedAt:   now,
	}

	return event, nil
}

// BuildTriggerData 构建触发数据
// reading 为 nil 表示手动触发
func BuildTriggerData(reading *models.VitalReading, breaches []models.Breach) *models.TriggerData {
	source := "automatic"
	if reading == nil {
		source = "manual"
	}
	return &models.TriggerData{
		Reading:  reading,
		Breaches: breaches,
		Source:   source,
	}
}

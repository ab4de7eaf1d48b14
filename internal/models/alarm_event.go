package models

import (
	"time"
)

// 报警事件类型
const (
	EventTypeVitalsEmergency = "VitalsEmergency"
	EventTypeManualEmergency = "ManualEmergency"
)

// 报警级别 / 状态
const (
	AlarmLevelEmergency = "EMERGENCY"
	AlarmStatusActive   = "active"
)

// AlarmEvent 报警事件（对应 vital_alarm_events 表）
type AlarmEvent struct {
	EventID     string    `json:"event_id" db:"event_id"`
	PatientID   string    `json:"patient_id" db:"patient_id"`
	PatientName string    `json:"patient_name" db:"patient_name"`
	EventType   string    `json:"event_type" db:"event_type"`
	AlarmLevel  string    `json:"alarm_level" db:"alarm_level"`
	AlarmStatus string    `json:"alarm_status" db:"alarm_status"`
	Reason      string    `json:"reason" db:"reason"`
	TriggeredAt time.Time `json:"triggered_at" db:"triggered_at"`
	TriggerData string    `json:"trigger_data" db:"trigger_data"` // JSONB
	Notified    bool      `json:"notified" db:"notified"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// TriggerData 触发数据快照（JSONB 结构）
type TriggerData struct {
	Reading  *VitalReading `json:"reading,omitempty"`
	Breaches []Breach      `json:"breaches,omitempty"`
	Source   string        `json:"source"` // "automatic" 或 "manual"
}

package service

import (
	"errors"
	"strings"
)

var (
	ErrNoSession      = errors.New("no patient session registered")
	ErrSessionExists  = errors.New("patient session already registered")
	ErrInvalidPatient = errors.New("patient name and id are required")

	ErrAlarmsUnavailable = errors.New("alarm history requires the realtime cache")
)

// ManualTriggerState 手动报警的二次确认状态
type ManualTriggerState int

const (
	ManualIdle ManualTriggerState = iota
	ManualArmedOnce
)

func (s ManualTriggerState) String() string {
	switch s {
	case ManualIdle:
		return "idle"
	case ManualArmedOnce:
		return "armed_once"
	default:
		return "unknown"
	}
}

// SessionContext 当前患者会话
// 患者身份注册后不可变；manual 只通过 Press 修改（单写者，由 VitalsService 加锁）
type SessionContext struct {
	patientName string
	patientID   string
	manual      ManualTriggerState
}

// NewSessionContext 创建会话
func NewSessionContext(patientName, patientID string) (*SessionContext, error) {
	name := strings.TrimSpace(patientName)
	id := strings.TrimSpace(patientID)
	if name == "" || id == "" {
		return nil, ErrInvalidPatient
	}
	return &SessionContext{patientName: name, patientID: id}, nil
}

func (s *SessionContext) PatientName() string { return s.patientName }

func (s *SessionContext) PatientID() string { return s.patientID }

func (s *SessionContext) ManualState() ManualTriggerState { return s.manual }

// Press 手动报警按键
// Idle -> ArmedOnce 不触发；ArmedOnce -> Idle 触发
// 没有超时，其它操作也不会重置计数
func (s *SessionContext) Press() (fire bool) {
	switch s.manual {
	case ManualIdle:
		s.manual = ManualArmedOnce
		return false
	default:
		s.manual = ManualIdle
		return true
	}
}

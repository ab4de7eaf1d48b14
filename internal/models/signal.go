package models

import (
	"errors"
	"fmt"
)

// ErrUnknownSignal 未知的生命体征类型
var ErrUnknownSignal = errors.New("unknown signal")

// Signal 生命体征类型（用于图表序列）
type Signal string

const (
	SignalTemperature      Signal = "temperature"
	SignalSystolicBP       Signal = "systolic_bp"
	SignalDiastolicBP      Signal = "diastolic_bp"
	SignalHeartRate        Signal = "heart_rate"
	SignalOxygenSaturation Signal = "oxygen_saturation"
)

// AllSignals 固定顺序（与导出列顺序一致）
func AllSignals() []Signal {
	return []Signal{
		SignalTemperature,
		SignalSystolicBP,
		SignalDiastolicBP,
		SignalHeartRate,
		SignalOxygenSaturation,
	}
}

// ParseSignal 解析 signal 参数
func ParseSignal(s string) (Signal, error) {
	for _, sig := range AllSignals() {
		if string(sig) == s {
			return sig, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSignal, s)
}

// Value 取出 reading 中对应字段的值
func (s Signal) Value(r VitalReading) float64 {
	switch s {
	case SignalTemperature:
		return r.Temperature
	case SignalSystolicBP:
		return r.SystolicBP
	case SignalDiastolicBP:
		return r.DiastolicBP
	case SignalHeartRate:
		return r.HeartRate
	case SignalOxygenSaturation:
		return r.OxygenSaturation
	default:
		return 0
	}
}

// DisplayName 图表图例名称
func (s Signal) DisplayName() string {
	switch s {
	case SignalTemperature:
		return "Temperature"
	case SignalSystolicBP:
		return "Systolic"
	case SignalDiastolicBP:
		return "Diastolic"
	case SignalHeartRate:
		return "Heart Rate"
	case SignalOxygenSaturation:
		return "Oxygen"
	default:
		return string(s)
	}
}

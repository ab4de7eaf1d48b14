package models

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidNumericInput 生命体征输入无法解析为有限十进制数
const ErrInvalidNumericInput = "invalid numeric input"

// VitalReading 一次生命体征测量快照（创建后不可变）
type VitalReading struct {
	Timestamp        time.Time `json:"timestamp"`
	Temperature      float64   `json:"temperature"`       // °C
	SystolicBP       float64   `json:"systolic_bp"`       // mmHg
	DiastolicBP      float64   `json:"diastolic_bp"`      // mmHg
	HeartRate        float64   `json:"heart_rate"`        // bpm
	OxygenSaturation float64   `json:"oxygen_saturation"` // %
}

// RawVitals 表现层提交的原始输入（5 个数字字符串）
type RawVitals struct {
	Temperature      string `json:"temperature"`
	SystolicBP       string `json:"systolic_bp"`
	DiastolicBP      string `json:"diastolic_bp"`
	HeartRate        string `json:"heart_rate"`
	OxygenSaturation string `json:"oxygen_saturation"`
}

// ValidationError 输入校验失败
// Message 与字段无关；Field 仅用于日志
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidationError 判断是否为输入校验错误
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Clock 时间源
type Clock interface {
	Now() time.Time
}

// NewVitalReading 校验原始输入并创建 VitalReading
// 任一字段失败则整体失败，不产生部分记录；时间戳在校验成功后由 clock 生成
func NewVitalReading(raw RawVitals, clock Clock) (VitalReading, error) {
	fields := []struct {
		name  string
		input string
	}{
		{"temperature", raw.Temperature},
		{"systolic_bp", raw.SystolicBP},
		{"diastolic_bp", raw.DiastolicBP},
		{"heart_rate", raw.HeartRate},
		{"oxygen_saturation", raw.OxygenSaturation},
	}

	values := make([]float64, len(fields))
	for i, f := range fields {
		v, err := parseFinite(f.input)
		if err != nil {
			return VitalReading{}, &ValidationError{Field: f.name, Message: ErrInvalidNumericInput}
		}
		values[i] = v
	}

	return VitalReading{
		Timestamp:        clock.Now(),
		Temperature:      values[0],
		SystolicBP:       values[1],
		DiastolicBP:      values[2],
		HeartRate:        values[3],
		OxygenSaturation: values[4],
	}, nil
}

// maxDecimalMagnitude 十进制数量级上限；float64 的范围约为 1e-324 到 1e308
const maxDecimalMagnitude = 400

// parseFinite 解析有限十进制数（decimal 本身拒绝 NaN/Inf/空串）
// 先用指数判断数量级，超出 float64 范围的输入不会进入浮点转换
func parseFinite(input string) (float64, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return 0, fmt.Errorf("empty input")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	if !d.IsZero() {
		magnitude := int64(d.Exponent()) + int64(d.NumDigits())
		if magnitude > maxDecimalMagnitude || magnitude < -maxDecimalMagnitude {
			return 0, fmt.Errorf("value out of float64 range: %s", s)
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("value out of float64 range: %s", s)
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("value out of float64 range: %s", s)
	}
	return v, nil
}

package evaluator

import (
	"fmt"
	"strings"

	"wisefido-vitals/internal/models"
)

// AutomaticReason 自动触发报警的原因前缀
const AutomaticReason = "Automatic Emergency Detected based on Vitals!"

// Threshold 单个体征的报警阈值
// 严格不等式：等于阈值不触发；nil 表示该方向不检查
type Threshold struct {
	Signal models.Signal
	Max    *float64 // value > Max 触发
	Min    *float64 // value < Min 触发
}

// Classifier 紧急情况分级器（纯函数，无状态、不依赖历史）
type Classifier struct {
	thresholds []Threshold
}

// DefaultThresholds 临床默认阈值
// 血氧没有上限检查
func DefaultThresholds() []Threshold {
	return []Threshold{
		{Signal: models.SignalTemperature, Max: floatPtr(38.0), Min: floatPtr(35.0)},
		{Signal: models.SignalSystolicBP, Max: floatPtr(140), Min: floatPtr(90)},
		{Signal: models.SignalDiastolicBP, Max: floatPtr(90), Min: floatPtr(60)},
		{Signal: models.SignalHeartRate, Max: floatPtr(120), Min: floatPtr(50)},
		{Signal: models.SignalOxygenSaturation, Min: floatPtr(90)},
	}
}

// NewClassifier 创建分级器；thresholds 为空时使用默认阈值
func NewClassifier(thresholds []Threshold) *Classifier {
	if len(thresholds) == 0 {
		thresholds = DefaultThresholds()
	}
	return &Classifier{thresholds: thresholds}
}

var defaultClassifier = NewClassifier(nil)

// Classify 使用默认阈值分级
func Classify(reading models.VitalReading) models.Classification {
	return defaultClassifier.Classify(reading)
}

// Classify 对所有阈值做逻辑 OR，并列出全部越界项
func (c *Classifier) Classify(reading models.VitalReading) models.Classification {
	var breaches []models.Breach
	for _, th := range c.thresholds {
		v := th.Signal.Value(reading)
		if th.Max != nil && v > *th.Max {
			breaches = append(breaches, models.Breach{Signal: th.Signal, Value: v, Operator: ">", Threshold: *th.Max})
		}
		if th.Min != nil && v < *th.Min {
			breaches = append(breaches, models.Breach{Signal: th.Signal, Value: v, Operator: "<", Threshold: *th.Min})
		}
	}

	if len(breaches) == 0 {
		return models.Classification{IsEmergency: false}
	}

	return models.Classification{
		IsEmergency: true,
		Reason:      buildReason(breaches),
		Breaches:    breaches,
	}
}

// buildReason 例如 "Automatic Emergency Detected based on Vitals!: temperature 39 > 38; heart_rate 130 > 120"
func buildReason(breaches []models.Breach) string {
	parts := make([]string, 0, len(breaches))
	for _, b := range breaches {
		parts = append(parts, fmt.Sprintf("%s %s %s %s",
			b.Signal,
			models.FormatValue(b.Value),
			b.Operator,
			models.FormatValue(b.Threshold),
		))
	}
	return AutomaticReason + ": " + strings.Join(parts, "; ")
}

func floatPtr(f float64) *float64 {
	return &f
}

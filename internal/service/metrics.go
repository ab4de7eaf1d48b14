package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

// 触发来源 / 发送结果标签
const (
	TriggerAutomatic = "automatic"
	TriggerManual    = "manual"

	resultSent   = "sent"
	resultFailed = "failed"
)

// Metrics 服务指标
type Metrics struct {
	readings           prometheus.Counter
	validationFailures prometheus.Counter
	emergencies        *prometheus.CounterVec
	dispatches         *prometheus.CounterVec
	storeSize          prometheus.Gauge
}

// NewMetrics 创建并注册指标；reg 为 nil 时不注册（测试用）
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		readings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vitals_readings_total",
			Help: "Total vital readings accepted into the store.",
		}),
		validationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vitals_validation_failures_total",
			Help: "Submissions rejected because of invalid numeric input.",
		}),
		emergencies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vitals_emergencies_total",
			Help: "Emergencies detected, by trigger source.",
		}, []string{"trigger"}),
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vitals_dispatch_total",
			Help: "Alert dispatch attempts, by result.",
		}, []string{"result"}),
		storeSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vitals_store_size",
			Help: "Number of readings held for the current session.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.readings, m.validationFailures, m.emergencies, m.dispatches, m.storeSize)
	}
	return m
}

func (m *Metrics) readingAccepted(storeSize int) {
	m.readings.Inc()
	m.storeSize.Set(float64(storeSize))
}

func (m *Metrics) validationFailed() {
	m.validationFailures.Inc()
}

func (m *Metrics) emergency(trigger string) {
	m.emergencies.WithLabelValues(trigger).Inc()
}

func (m *Metrics) dispatched(sent bool) {
	if sent {
		m.dispatches.WithLabelValues(resultSent).Inc()
		return
	}
	m.dispatches.WithLabelValues(resultFailed).Inc()
}

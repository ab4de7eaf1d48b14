package evaluator

import (
	"encoding/json"
	"testing"

	"wisefido-vitals/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlarmEventBuilder_BuildAlarmEvent(t *testing.T) {
	builder := NewAlarmEventBuilder("patient-123", "Alice")

	reading := models.VitalReading{Temperature: 39, SystolicBP: 120, DiastolicBP: 80, HeartRate: 70, OxygenSaturation: 98}
	c := Classify(reading)
	triggerData := BuildTriggerData(&reading, c.Breaches)

	event, err := builder.BuildAlarmEvent(models.EventTypeVitalsEmergency, c.Reason, triggerData, true)
	require.NoError(t, err)
	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, "patient-123", event.PatientID)
	assert.Equal(t, "Alice", event.PatientName)
	assert.Equal(t, models.EventTypeVitalsEmergency, event.EventType)
	assert.Equal(t, models.AlarmLevelEmergency, event.AlarmLevel)
	assert.Equal(t, models.AlarmStatusActive, event.AlarmStatus)
	assert.Equal(t, c.Reason, event.Reason)
	assert.True(t, event.Notified)

	// 验证 trigger_data 序列化
	var parsed models.TriggerData
	require.NoError(t, json.Unmarshal([]byte(event.TriggerData), &parsed))
	assert.Equal(t, "automatic", parsed.Source)
	require.NotNil(t, parsed.Reading)
	assert.Equal(t, 39.0, parsed.Reading.Temperature)
	require.Len(t, parsed.Breaches, 1)
	assert.Equal(t, models.SignalTemperature, parsed.Breaches[0].Signal)
}

func TestBuildTriggerData_Manual(t *testing.T) {
	td := BuildTriggerData(nil, nil)

	assert.Equal(t, "manual", td.Source)
	assert.Nil(t, td.Reading)
	assert.Empty(t, td.Breaches)
}

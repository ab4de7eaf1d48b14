package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"wisefido-vitals/internal/models"
	"wisefido-vitals/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRows(t *testing.T) []models.ExportRow {
	t.Helper()
	store := repository.NewVitalsStore()
	base := time.Date(2025, 3, 1, 9, 30, 0, 0, time.Local)
	store.Append(models.VitalReading{Timestamp: base, Temperature: 36.6, SystolicBP: 120, DiastolicBP: 80, HeartRate: 72, OxygenSaturation: 98})
	store.Append(models.VitalReading{Timestamp: base.Add(time.Minute), Temperature: 39.25, SystolicBP: 145, DiastolicBP: 95, HeartRate: 130, OxygenSaturation: 85.5})
	store.Append(models.VitalReading{Timestamp: base.Add(2 * time.Minute), Temperature: 37, SystolicBP: 118, DiastolicBP: 76, HeartRate: 64, OxygenSaturation: 97})
	return store.ExportRows()
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleRows(t)))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "DateTime,Temperature,Systolic,Diastolic,HeartRate,Oxygen", lines[0])
	assert.Equal(t, "2025-03-01 09:30,36.6,120,80,72,98", lines[1])
	assert.Equal(t, "2025-03-01 09:31,39.25,145,95,130,85.5", lines[2])
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "DateTime,Temperature,Systolic,Diastolic,HeartRate,Oxygen\n", buf.String())
}

func TestCSVRoundTrip(t *testing.T) {
	rows := sampleRows(t)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))

	got, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"wrong header", "Time,Temperature,Systolic,Diastolic,HeartRate,Oxygen\n"},
		{"bad number", "DateTime,Temperature,Systolic,Diastolic,HeartRate,Oxygen\n2025-03-01 09:30,abc,120,80,72,98\n"},
		{"bad time", "DateTime,Temperature,Systolic,Diastolic,HeartRate,Oxygen\n01/03/2025,36.6,120,80,72,98\n"},
		{"short row", "DateTime,Temperature,Systolic,Diastolic,HeartRate,Oxygen\n2025-03-01 09:30,36.6\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestBuildXLSX_RoundTrip(t *testing.T) {
	rows := sampleRows(t)

	data, err := BuildXLSX(rows)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	got, err := ReadXLSX(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

func TestBuildXLSX_HeaderOnly(t *testing.T) {
	data, err := BuildXLSX(nil)
	require.NoError(t, err)

	got, err := ReadXLSX(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Empty(t, got)
}

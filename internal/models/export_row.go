package models

import (
	"strconv"
	"time"
)

// ExportTimeLayout 导出时间格式（yyyy-MM-dd HH:mm）
const ExportTimeLayout = "2006-01-02 15:04"

// ExportHeader 导出表头（列顺序固定）
var ExportHeader = []string{
	"DateTime",
	"Temperature",
	"Systolic",
	"Diastolic",
	"HeartRate",
	"Oxygen",
}

// ExportRow 导出行：时间 + 5 个数值，顺序与 ExportHeader 一致
type ExportRow struct {
	DateTime         string
	Temperature      float64
	SystolicBP       float64
	DiastolicBP      float64
	HeartRate        float64
	OxygenSaturation float64
}

// NewExportRow 将 reading 展平为导出行
func NewExportRow(r VitalReading) ExportRow {
	return ExportRow{
		DateTime:         r.Timestamp.Format(ExportTimeLayout),
		Temperature:      r.Temperature,
		SystolicBP:       r.SystolicBP,
		DiastolicBP:      r.DiastolicBP,
		HeartRate:        r.HeartRate,
		OxygenSaturation: r.OxygenSaturation,
	}
}

// Values 数值列
func (r ExportRow) Values() []float64 {
	return []float64{r.Temperature, r.SystolicBP, r.DiastolicBP, r.HeartRate, r.OxygenSaturation}
}

// Record 字符串形式的整行（数值使用最短十进制表示）
func (r ExportRow) Record() []string {
	rec := make([]string, 0, len(ExportHeader))
	rec = append(rec, r.DateTime)
	for _, v := range r.Values() {
		rec = append(rec, FormatValue(v))
	}
	return rec
}

// FormatValue 数值的原生十进制表示
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ParseExportTime 解析导出时间
func ParseExportTime(s string) (time.Time, error) {
	return time.ParseInLocation(ExportTimeLayout, s, time.Local)
}

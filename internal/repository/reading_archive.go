package repository

import (
	"context"
	"database/sql"
	"fmt"

	"wisefido-vitals/internal/models"

	"go.uber.org/zap"
)

// ReadingArchive PostgreSQL 归档（只写，尽力而为）
// 内存中的 VitalsStore 是唯一权威数据源，归档不会被读回
type ReadingArchive struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewReadingArchive 创建归档仓库
func NewReadingArchive(db *sql.DB, logger *zap.Logger) *ReadingArchive {
	return &ReadingArchive{
		db:     db,
		logger: logger,
	}
}

// schemaStatements 归档表结构
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS vital_readings (
		patient_id        TEXT             NOT NULL,
		seq               INTEGER          NOT NULL,
		recorded_at       TIMESTAMPTZ      NOT NULL,
		temperature       DOUBLE PRECISION NOT NULL,
		systolic_bp       DOUBLE PRECISION NOT NULL,
		diastolic_bp      DOUBLE PRECISION NOT NULL,
		heart_rate        DOUBLE PRECISION NOT NULL,
		oxygen_saturation DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (patient_id, seq)
	)`,
	`CREATE TABLE IF NOT EXISTS vital_alarm_events (
		event_id     UUID        PRIMARY KEY,
		patient_id   TEXT        NOT NULL,
		patient_name TEXT        NOT NULL,
		event_type   TEXT        NOT NULL,
		alarm_level  TEXT        NOT NULL,
		alarm_status TEXT        NOT NULL,
		reason       TEXT        NOT NULL,
		triggered_at TIMESTAMPTZ NOT NULL,
		trigger_data JSONB       NOT NULL DEFAULT '{}',
		notified     BOOLEAN     NOT NULL DEFAULT FALSE,
		created_at   TIMESTAMPTZ NOT NULL
	)`,
}

// EnsureSchema 创建归档表（幂等）
func (r *ReadingArchive) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure archive schema: %w", err)
		}
	}
	return nil
}

// CreateReading 归档一条生命体征记录
// seq 为该记录在 VitalsStore 中的插入下标
func (r *ReadingArchive) CreateReading(ctx context.Context, patientID string, seq int, reading models.VitalReading) error {
	if patientID == "" {
		return fmt.Errorf("patient_id is required")
	}

	query := `
		INSERT INTO vital_readings (
			patient_id,
			seq,
			recorded_at,
			temperature,
			systolic_bp,
			diastolic_bp,
			heart_rate,
			oxygen_saturation
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
		ON CONFLICT (patient_id, seq) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx,
		query,
		patientID,
		seq,
		reading.Timestamp,
		reading.Temperature,
		reading.SystolicBP,
		reading.DiastolicBP,
		reading.HeartRate,
		reading.OxygenSaturation,
	)
	if err != nil {
		return fmt.Errorf("failed to archive reading: %w", err)
	}

	return nil
}

// CreateAlarmEvent 归档报警事件
func (r *ReadingArchive) CreateAlarmEvent(ctx context.Context, event *models.AlarmEvent) error {
	if event == nil {
		return fmt.Errorf("event is required")
	}
	if event.PatientID == "" {
		return fmt.Errorf("patient_id is required")
	}

	query := `
		INSERT INTO vital_alarm_events (
			event_id,
			patient_id,
			patient_name,
			event_type,
			alarm_level,
			alarm_status,
			reason,
			triggered_at,
			trigger_data,
			notified,
			created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)
	`

	_, err := r.db.ExecContext(ctx,
		query,
		event.EventID,
		event.PatientID,
		event.PatientName,
		event.EventType,
		event.AlarmLevel,
		event.AlarmStatus,
		event.Reason,
		event.TriggeredAt,
		event.TriggerData,
		event.Notified,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to archive alarm event: %w", err)
	}

	r.logger.Debug("Alarm event archived",
		zap.String("event_id", event.EventID),
		zap.String("event_type", event.EventType),
	)

	return nil
}

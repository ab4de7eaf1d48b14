package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"wisefido-vitals/internal/config"
	"wisefido-vitals/internal/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RealtimeSnapshot 患者最新体征快照（供大屏/卡片读取）
type RealtimeSnapshot struct {
	PatientID   string              `json:"patient_id"`
	PatientName string              `json:"patient_name"`
	Reading     models.VitalReading `json:"reading"`
	Index       int                 `json:"index"`
	Emergency   bool                `json:"emergency"`
	Breaches    []models.Breach     `json:"breaches,omitempty"`
	UpdatedAt   int64               `json:"updated_at"`
}

// RealtimeCache Redis 实时数据缓存
type RealtimeCache struct {
	config      *config.Config
	redisClient *redis.Client
	logger      *zap.Logger
}

// NewRealtimeCache 创建缓存管理器
func NewRealtimeCache(
	cfg *config.Config,
	redisClient *redis.Client,
	logger *zap.Logger,
) *RealtimeCache {
	return &RealtimeCache{
		config:      cfg,
		redisClient: redisClient,
		logger:      logger,
	}
}

// realtimeKey 如 "vitals:patient:p-001:realtime"
func (c *RealtimeCache) realtimeKey(patientID string) string {
	return fmt.Sprintf("%s%s:realtime", c.config.Cache.KeyPrefix, patientID)
}

// alarmsKey 如 "vitals:patient:p-001:alarms"
func (c *RealtimeCache) alarmsKey(patientID string) string {
	return fmt.Sprintf("%s%s:alarms", c.config.Cache.KeyPrefix, patientID)
}

func (c *RealtimeCache) ttl() time.Duration {
	return time.Duration(c.config.Cache.TTL) * time.Second
}

// SetRealtime 写入最新快照
func (c *RealtimeCache) SetRealtime(ctx context.Context, snapshot *RealtimeSnapshot) error {
	jsonData, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal realtime snapshot: %w", err)
	}

	key := c.realtimeKey(snapshot.PatientID)
	if err := c.redisClient.Set(ctx, key, jsonData, c.ttl()).Err(); err != nil {
		return fmt.Errorf("failed to set realtime cache: %w", err)
	}

	c.logger.Debug("Updated realtime cache",
		zap.String("patient_id", snapshot.PatientID),
		zap.String("key", key),
	)
	return nil
}

// PushAlarm 记录报警事件（列表头部为最新，保留最近 50 条）
func (c *RealtimeCache) PushAlarm(ctx context.Context, event *models.AlarmEvent) error {
	jsonData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal alarm event: %w", err)
	}

	key := c.alarmsKey(event.PatientID)
	pipe := c.redisClient.TxPipeline()
	pipe.LPush(ctx, key, jsonData)
	pipe.LTrim(ctx, key, 0, 49)
	pipe.Expire(ctx, key, c.ttl())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to push alarm cache: %w", err)
	}
	return nil
}

// RecentAlarms 最近的报警事件（最新在前）
func (c *RealtimeCache) RecentAlarms(ctx context.Context, patientID string, limit int64) ([]models.AlarmEvent, error) {
	if limit <= 0 {
		limit = 10
	}
	vals, err := c.redisClient.LRange(ctx, c.alarmsKey(patientID), 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read alarm cache: %w", err)
	}

	events := make([]models.AlarmEvent, 0, len(vals))
	for _, v := range vals {
		var e models.AlarmEvent
		if err := json.Unmarshal([]byte(v), &e); err != nil {
			c.logger.Warn("Skipping malformed cached alarm", zap.Error(err))
			continue
		}
		events = append(events, e)
	}
	return events, nil
}

package repository

import (
	"iter"
	"sync"

	"wisefido-vitals/internal/models"
)

// VitalsStore 单个患者会话的生命体征历史（内存，只追加）
// - 顺序 = 插入顺序 = 时间戳不减顺序
// - 不修改、不删除历史记录
type VitalsStore struct {
	mu       sync.RWMutex
	readings []models.VitalReading
}

func NewVitalsStore() *VitalsStore {
	return &VitalsStore{}
}

// Append 追加一条已校验的记录，返回其下标
func (s *VitalsStore) Append(reading models.VitalReading) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.readings = append(s.readings, reading)
	return len(s.readings) - 1
}

// All 按插入顺序返回快照（copy-on-read）
func (s *VitalsStore) All() []models.VitalReading {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.VitalReading, len(s.readings))
	copy(out, s.readings)
	return out
}

func (s *VitalsStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.readings)
}

// Latest 最近一条记录
func (s *VitalsStore) Latest() (models.VitalReading, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.readings) == 0 {
		return models.VitalReading{}, false
	}
	return s.readings[len(s.readings)-1], true
}

// SeriesFor 某个体征的 (index, value) 序列
// 每次 range 都从当前状态重新取快照，可重复迭代
func (s *VitalsStore) SeriesFor(signal models.Signal) iter.Seq2[int, float64] {
	return func(yield func(int, float64) bool) {
		for i, r := range s.All() {
			if !yield(i, signal.Value(r)) {
				return
			}
		}
	}
}

// ExportRows 展平为导出行（不再做校验，存储中的记录都是合法的）
func (s *VitalsStore) ExportRows() []models.ExportRow {
	snapshot := s.All()
	rows := make([]models.ExportRow, 0, len(snapshot))
	for _, r := range snapshot {
		rows = append(rows, models.NewExportRow(r))
	}
	return rows
}

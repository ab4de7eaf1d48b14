package models

import (
	"sync"
	"time"
)

// MonotonicClock 单调不减的时间源
// 墙钟回拨时沿用上一次的时间戳，保证存储中时间戳顺序与插入顺序一致
type MonotonicClock struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

// NewMonotonicClock 创建时间源；now 为 nil 时使用 time.Now
func NewMonotonicClock(now func() time.Time) *MonotonicClock {
	if now == nil {
		now = time.Now
	}
	return &MonotonicClock{now: now}
}

func (c *MonotonicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now()
	if t.Before(c.last) {
		t = c.last
	}
	c.last = t
	return t
}

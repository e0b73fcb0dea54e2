// Package clock 提供以秒为单位的浮点时间戳, 供定时器计算剩余时间
package clock

import (
	"sync/atomic"
	"time"
)

type Clock interface {
	// Now 当前时间戳, 单位秒
	Now() float64
}

// Seconds time.Time转秒级浮点时间戳
func Seconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

// Time 秒级浮点时间戳转time.Time
func Time(ts float64) time.Time {
	return time.Unix(0, int64(ts*1e9))
}

// Duration 秒转time.Duration, 负数返回0
func Duration(seconds float64) time.Duration {
	if seconds <= 0 {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}

// System 系统时钟, 支持整体偏移(GM调时间)
type System struct {
	offset atomic.Int64
}

var Default = &System{}

func (c *System) Now() float64 {
	return Seconds(time.Now().Add(c.Offset()))
}

// SetOffset 设置时间偏移量
func (c *System) SetOffset(d time.Duration) {
	c.offset.Store(int64(d))
}

func (c *System) Offset() time.Duration {
	return time.Duration(c.offset.Load())
}

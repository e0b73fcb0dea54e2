package clock

import (
	"math"
	"sync/atomic"
)

// Manual 手动推进的时钟
type Manual struct {
	bits atomic.Uint64
}

func NewManual(start float64) *Manual {
	c := &Manual{}
	c.Set(start)
	return c
}

func (c *Manual) Now() float64 {
	return math.Float64frombits(c.bits.Load())
}

func (c *Manual) Set(ts float64) {
	c.bits.Store(math.Float64bits(ts))
}

// Advance 前进seconds秒, 返回新时间
func (c *Manual) Advance(seconds float64) float64 {
	for {
		old := c.bits.Load()
		next := math.Float64frombits(old) + seconds
		if c.bits.CompareAndSwap(old, math.Float64bits(next)) {
			return next
		}
	}
}

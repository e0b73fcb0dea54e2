// Package zleep 在单协程tick宿主上实现可取消的协作式睡眠.
//
// 按tick睡眠直接交给宿主的延迟回调; 按秒或按时间戳睡眠登记到一个共享的小顶堆,
// 由按需启动、清空即退出的时钟循环统一唤醒.
package zleep

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/fixkme/zleep/clock"
	"github.com/fixkme/zleep/host"
)

// Host 宿主调度器. ScheduleDelayed 只会在宿主协程上被调用.
type Host interface {
	ScheduleDelayed(fn func(), ticks int) host.Task
	TickDuration() time.Duration
	Call(ctx context.Context, fn func()) error
	Post(fn func()) error
	PostForce(fn func()) error
	Done() <-chan struct{}
}

// inLooper 宿主能识别当前是否运行在宿主协程
type inLooper interface {
	InLoop() bool
}

type Sleeper struct {
	host  Host
	clock clock.Clock
	loop  *clockLoop // 非nil表示时钟循环正在运行, 只在宿主协程访问
	stats counters
}

// New c为nil时使用系统时钟
func New(h Host, c clock.Clock) *Sleeper {
	if c == nil {
		c = clock.Default
	}
	return &Sleeper{
		host:  h,
		clock: c,
	}
}

func (s *Sleeper) Clock() clock.Clock {
	return s.clock
}

type counters struct {
	loopStarts atomic.Int64
	pending    atomic.Int64
	fired      atomic.Int64
	cancelled  atomic.Int64
	running    atomic.Bool
}

type Stats struct {
	LoopStarts int64 // 时钟循环启动次数
	Pending    int64 // 堆中条目数, 含已取消未弹出的
	Fired      int64
	Cancelled  int64
	Running    bool // 时钟循环是否在运行
}

// Stats 任意协程可调用
func (s *Sleeper) Stats() Stats {
	return Stats{
		LoopStarts: s.stats.loopStarts.Load(),
		Pending:    s.stats.pending.Load(),
		Fired:      s.stats.fired.Load(),
		Cancelled:  s.stats.cancelled.Load(),
		Running:    s.stats.running.Load(),
	}
}

package zleep

import (
	"math"
	"runtime/debug"

	"github.com/fixkme/zleep/mlog"
)

// clockLoop 时钟循环, 独占自己的堆直到堆清空
type clockLoop struct {
	s        *Sleeper
	heap     *deadlineHeap
	tickSecs float64
	passes   int64
}

// register 登记一个到期回调, 没有运行中的循环就新建一个. 宿主协程调用.
func (s *Sleeper) register(deadline float64, fn func()) *WaiterHandle {
	w := newWaiterHandle(s, deadline, fn)
	if l := s.loop; l != nil {
		l.heap.insert(deadline, w)
		s.stats.pending.Store(int64(l.heap.len()))
		return w
	}

	l := &clockLoop{
		s:        s,
		heap:     newDeadlineHeap(s.clock),
		tickSecs: s.host.TickDuration().Seconds(),
	}
	l.heap.insert(deadline, w)
	s.loop = l
	s.stats.loopStarts.Add(1)
	s.stats.running.Store(true)
	s.stats.pending.Store(1)
	mlog.Debugf("zleep clock loop start, first waiter %s deadline %.3f", w.ID(), deadline)
	l.run()
	return w
}

// run 一轮检查: 最早的deadline还差一个tick以上就等下一个tick再来,
// 否则弹出并触发, 直到堆空退出. 每次都重新读堆, 回调里可能又登记了新的deadline.
func (l *clockLoop) run() {
	l.passes++
	for {
		rem := l.heap.remaining()
		if math.IsInf(rem, 1) {
			break
		}
		if rem >= l.tickSecs {
			l.s.host.ScheduleDelayed(l.run, 1)
			return
		}
		w := l.heap.shift()
		l.s.stats.pending.Store(int64(l.heap.len()))
		if w != nil {
			l.fire(w)
		}
	}

	if l.s.loop == l {
		l.s.loop = nil
	}
	l.s.stats.running.Store(false)
	mlog.Debugf("zleep clock loop stop after %d passes", l.passes)
}

// fire 单个回调panic不能打断循环, 否则循环引用永远不会清空
func (l *clockLoop) fire(w *WaiterHandle) {
	defer func() {
		if r := recover(); r != nil {
			mlog.Errorf("zleep waiter %s panic: %v\n%s", w.ID(), r, debug.Stack())
		}
	}()
	w.Fire()
}

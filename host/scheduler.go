// Package host 单协程、按tick驱动的宿主调度器. 所有回调都在同一个协程执行,
// 其他协程通过 Post/Call 把函数投递进来.
package host

import (
	"context"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eapache/queue"

	"github.com/fixkme/zleep/errs"
	"github.com/fixkme/zleep/mlog"
)

const (
	DefaultTickDuration = 50 * time.Millisecond // 20 ticks/s
	DefaultQueueSize    = 1024
	maxQueueSize        = 102400
)

type Options struct {
	TickDuration time.Duration
	QueueSize    int         // 投递队列上限
	PanicHandler func(r any) // 回调panic处理
	Manual       bool        // 不启动ticker, 由Advance推进tick
}

var defaultOpt = &Options{
	TickDuration: DefaultTickDuration,
	QueueSize:    DefaultQueueSize,
}

func initOpt(opt *Options) *Options {
	o := *opt
	if o.TickDuration <= 0 {
		o.TickDuration = defaultOpt.TickDuration
	}
	if o.QueueSize < 1 {
		o.QueueSize = defaultOpt.QueueSize
	} else if o.QueueSize > maxQueueSize {
		o.QueueSize = maxQueueSize
	}
	return &o
}

type Scheduler struct {
	opt *Options

	curTick atomic.Int64
	pending atomic.Int64        // 未执行的延迟回调数
	buckets map[int64]*taskList // 到期tick => 回调链表, 只在host协程访问

	mu     sync.Mutex
	posted *queue.Queue // func()
	closed bool
	wake   chan struct{}

	gid       atomic.Int64
	closeSig  chan struct{}
	closeOnce sync.Once
	done      chan struct{}
}

func New(opt *Options) *Scheduler {
	if opt == nil {
		opt = defaultOpt
	}
	return &Scheduler{
		opt:      initOpt(opt),
		buckets:  make(map[int64]*taskList),
		posted:   queue.New(),
		wake:     make(chan struct{}, 1),
		closeSig: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (s *Scheduler) TickDuration() time.Duration {
	return s.opt.TickDuration
}

// CurrentTick 已经走过的tick数
func (s *Scheduler) CurrentTick() int64 {
	return s.curTick.Load()
}

// PendingTasks 已调度未执行且未取消的延迟回调数
func (s *Scheduler) PendingTasks() int {
	return int(s.pending.Load())
}

// Done host协程退出后关闭
func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}

// InLoop 当前是否运行在host协程
func (s *Scheduler) InLoop() bool {
	gid := s.gid.Load()
	return gid != 0 && gid == goroutineID()
}

func (s *Scheduler) Start() {
	go s.Run()
}

// Run 阻塞运行直到Close
func (s *Scheduler) Run() {
	s.gid.Store(goroutineID())
	defer s.onClose()

	var tickCh <-chan time.Time
	if !s.opt.Manual {
		ticker := time.NewTicker(s.opt.TickDuration)
		defer ticker.Stop()
		tickCh = ticker.C
	}
	for {
		select {
		case <-s.closeSig:
			return
		case <-tickCh:
			s.tick()
		case <-s.wake:
			s.drain()
		}
	}
}

func (s *Scheduler) Close() {
	s.closeOnce.Do(func() {
		close(s.closeSig)
	})
}

func (s *Scheduler) onClose() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	// 已投递的函数仍然执行完
	s.drain()
	mlog.Debugf("host scheduler closed at tick %d, %d delayed tasks dropped", s.CurrentTick(), s.PendingTasks())
	s.buckets = nil
	s.pending.Store(0)
	close(s.done)
}

// ScheduleDelayed 在ticks个tick之后回调fn, ticks<=0视为1, 即下一个tick边界, 不会立即执行.
// 只能在host协程调用.
func (s *Scheduler) ScheduleDelayed(fn func(), ticks int) Task {
	if ticks < 1 {
		ticks = 1
	}
	t := &DelayedTask{
		owner: s,
		due:   s.curTick.Load() + int64(ticks),
		fn:    fn,
	}
	if s.buckets == nil {
		// 已关闭, 永远不会执行
		t.fn = nil
		return t
	}
	s.pending.Add(1)
	l := s.buckets[t.due]
	if l == nil {
		l = newTaskList()
		s.buckets[t.due] = l
	}
	l.PushBack(t)
	return t
}

func (s *Scheduler) tick() {
	now := s.curTick.Add(1)
	l, ok := s.buckets[now]
	if !ok {
		return
	}
	delete(s.buckets, now)
	l.PopRange(func(t *DelayedTask) {
		fn := t.fn
		t.fn = nil
		if fn != nil {
			s.pending.Add(-1)
			s.exec(fn)
		}
	})
}

// Advance 手动推进n个tick, 用于Manual模式
func (s *Scheduler) Advance(ctx context.Context, n int) error {
	return s.Call(ctx, func() {
		for i := 0; i < n; i++ {
			s.tick()
		}
	})
}

// Post 投递fn到host协程执行, 不等待
func (s *Scheduler) Post(fn func()) error {
	return s.post(fn, false)
}

// PostForce 同Post, 但不受QueueSize限制, 只在关闭后失败. 用于不能丢的清理
func (s *Scheduler) PostForce(fn func()) error {
	return s.post(fn, true)
}

func (s *Scheduler) post(fn func(), force bool) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errs.HostClosed
	}
	if !force && s.posted.Length() >= s.opt.QueueSize {
		s.mu.Unlock()
		return errs.HostQueueFull
	}
	s.posted.Add(fn)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return nil
}

// Call 在host协程执行fn并等待完成. 在host协程内调用时直接执行.
// ctx结束时返回ctx.Err(), 此时fn可能之后仍会执行.
func (s *Scheduler) Call(ctx context.Context, fn func()) error {
	if s.InLoop() {
		s.exec(fn)
		return nil
	}
	finished := make(chan struct{})
	err := s.Post(func() {
		defer close(finished)
		fn()
	})
	if err != nil {
		return err
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		select {
		case <-finished:
			return nil
		default:
			return errs.HostClosed
		}
	}
}

func (s *Scheduler) drain() {
	for {
		s.mu.Lock()
		if s.posted.Length() == 0 {
			s.mu.Unlock()
			return
		}
		fn := s.posted.Remove().(func())
		s.mu.Unlock()
		s.exec(fn)
	}
}

func (s *Scheduler) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			if s.opt.PanicHandler != nil {
				s.opt.PanicHandler(r)
				return
			}
			mlog.Errorf("host callback panic: %v\n%s", r, debug.Stack())
		}
	}()
	fn()
}

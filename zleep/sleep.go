package zleep

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/fixkme/zleep/errs"
	"github.com/fixkme/zleep/host"
	"github.com/fixkme/zleep/mlog"
)

// suspension 一次性挂起点, resolve可以在任意协程调用多次, 只有第一次有效
type suspension chan struct{}

func newSuspension() suspension {
	return make(suspension, 1)
}

func (p suspension) resolve() {
	select {
	case p <- struct{}{}:
	default:
	}
}

func (p suspension) wait(ctx context.Context, hostDone <-chan struct{}) error {
	select {
	case <-p:
		return nil
	case <-ctx.Done():
	case <-hostDone:
	}
	// 同时就绪时以唤醒为准
	select {
	case <-p:
		return nil
	default:
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return errs.HostClosed
}

func (s *Sleeper) checkBlocking() error {
	if il, ok := s.host.(inLooper); ok && il.InLoop() {
		return errs.WouldBlock
	}
	return nil
}

// release 把清理投递回宿主协程, 队列满也不能丢, 否则句柄会一直留在堆里
func (s *Sleeper) release(fn func()) {
	if err := s.host.PostForce(fn); err != nil && !errors.Is(err, errs.HostClosed) {
		mlog.Warnf("zleep release failed: %v", err)
	}
}

// SleepTicks 挂起ticks个宿主tick. ticks<=0 在下一个tick边界恢复.
// 未正常恢复的退出路径都会取消宿主上的延迟回调.
func (s *Sleeper) SleepTicks(ctx context.Context, ticks int) error {
	if err := s.checkBlocking(); err != nil {
		return err
	}
	p := newSuspension()
	var task host.Task // 只在宿主协程读写
	resumed := false
	defer func() {
		if !resumed {
			s.release(func() {
				if task != nil {
					task.Cancel()
				}
			})
		}
	}()

	if err := s.host.Call(ctx, func() {
		task = s.host.ScheduleDelayed(p.resolve, ticks)
	}); err != nil {
		return err
	}
	err := p.wait(ctx, s.host.Done())
	resumed = err == nil
	return err
}

// SleepSeconds 挂起seconds秒, 非正数尽快恢复
func (s *Sleeper) SleepSeconds(ctx context.Context, seconds float64) error {
	return s.SleepUntil(ctx, s.clock.Now()+seconds)
}

func (s *Sleeper) SleepDuration(ctx context.Context, d time.Duration) error {
	return s.SleepSeconds(ctx, d.Seconds())
}

// SleepUntil 挂起到时间戳target(秒), 过去的时间在时钟循环下一轮恢复.
// 未正常恢复的退出路径都会取消堆里的句柄.
func (s *Sleeper) SleepUntil(ctx context.Context, target float64) error {
	if err := s.checkBlocking(); err != nil {
		return err
	}
	if math.IsNaN(target) {
		target = s.clock.Now()
	}
	p := newSuspension()
	if math.IsInf(target, 1) {
		// 永不到期, 不进堆
		return p.wait(ctx, s.host.Done())
	}

	var w *WaiterHandle // 只在宿主协程读写
	resumed := false
	defer func() {
		if !resumed {
			s.release(func() {
				if w != nil {
					w.Cancel()
				}
			})
		}
	}()

	if err := s.host.Call(ctx, func() {
		w = s.register(target, p.resolve)
	}); err != nil {
		return err
	}
	err := p.wait(ctx, s.host.Done())
	resumed = err == nil
	return err
}

// At 在target时刻于宿主协程回调fn, 返回的句柄只能在宿主协程取消.
// 在宿主协程内调用时立即登记.
//
// 没有运行中的时钟循环时, 登记会当场跑第一轮: target已到期的话fn在At返回前就执行,
// 返回的句柄已失效. 循环已在运行时只入堆, fn在之后的某一轮执行, 最早是当前回调结束后
// 的同一轮(由循环触发的回调里登记)或下一个tick.
func (s *Sleeper) At(target float64, fn func()) (*WaiterHandle, error) {
	if math.IsNaN(target) {
		target = s.clock.Now()
	}
	if math.IsInf(target, 1) {
		return newWaiterHandle(s, target, nil), nil
	}
	var w *WaiterHandle
	if il, ok := s.host.(inLooper); ok && il.InLoop() {
		return s.register(target, fn), nil
	}
	if err := s.host.Call(context.Background(), func() {
		w = s.register(target, fn)
	}); err != nil {
		return nil, err
	}
	return w, nil
}

// After 在seconds秒后于宿主协程回调fn
func (s *Sleeper) After(seconds float64, fn func()) (*WaiterHandle, error) {
	return s.At(s.clock.Now()+seconds, fn)
}

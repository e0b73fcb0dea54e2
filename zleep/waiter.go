package zleep

import "github.com/rs/xid"

// WaiterHandle 一次性的唤醒句柄. Fire或Cancel之后失效, 回调至多执行一次.
// 只能在host协程使用.
type WaiterHandle struct {
	id       xid.ID
	deadline float64
	fn       func()
	owner    *Sleeper
}

func newWaiterHandle(owner *Sleeper, deadline float64, fn func()) *WaiterHandle {
	return &WaiterHandle{
		id:       xid.New(),
		deadline: deadline,
		fn:       fn,
		owner:    owner,
	}
}

func (w *WaiterHandle) ID() xid.ID {
	return w.id
}

func (w *WaiterHandle) Deadline() float64 {
	return w.deadline
}

// Closure 未失效时返回回调, 否则nil
func (w *WaiterHandle) Closure() func() {
	return w.fn
}

// Consumed 已触发或已取消
func (w *WaiterHandle) Consumed() bool {
	return w.fn == nil
}

// Fire 执行回调, 已失效返回false
func (w *WaiterHandle) Fire() bool {
	fn := w.fn
	if fn == nil {
		return false
	}
	w.fn = nil
	if w.owner != nil {
		w.owner.stats.fired.Add(1)
	}
	fn()
	return true
}

// Cancel 使句柄失效而不执行回调, 已失效返回false
func (w *WaiterHandle) Cancel() bool {
	if w.fn == nil {
		return false
	}
	w.fn = nil
	if w.owner != nil {
		w.owner.stats.cancelled.Add(1)
	}
	return true
}

package host

// Task 已调度的延迟回调
type Task interface {
	Cancel()
}

// DelayedTask 按tick到期的回调, 挂在对应tick的双向链表上
type DelayedTask struct {
	owner      *Scheduler
	due        int64  // 到期tick
	fn         func() // nil表示已执行或已取消
	prev, next *DelayedTask
}

// Cancel 从链表摘除, 只能在host协程调用, 可重复调用
func (t *DelayedTask) Cancel() {
	if t.fn == nil {
		return
	}
	t.fn = nil
	t.removeFromList()
	if t.owner != nil && t.owner.buckets != nil {
		t.owner.pending.Add(-1)
	}
}

// Due 到期tick
func (t *DelayedTask) Due() int64 {
	return t.due
}

// Pending 未执行且未取消
func (t *DelayedTask) Pending() bool {
	return t.fn != nil
}

func (t *DelayedTask) removeFromList() bool {
	if t.prev == nil || t.next == nil {
		return false
	}
	t.prev.next = t.next
	t.next.prev = t.prev
	t.prev = nil
	t.next = nil
	return true
}

type taskList struct {
	root *DelayedTask //哨兵
}

func newTaskList() *taskList {
	l := new(taskList)
	l.root = new(DelayedTask)
	l.root.prev = l.root
	l.root.next = l.root
	return l
}

func (l *taskList) PushBack(t *DelayedTask) {
	tail := l.root.prev
	tail.next = t
	t.prev = tail
	t.next = l.root
	l.root.prev = t
}

func (l *taskList) IsEmpty() bool {
	return l.root.next == l.root
}

// PopRange 按加入顺序依次摘除并回调, fn可以往其他链表加节点
func (l *taskList) PopRange(fn func(t *DelayedTask)) {
	for !l.IsEmpty() {
		t := l.root.next
		t.removeFromList()
		fn(t)
	}
}

package zleep

import (
	"container/heap"
	"math"

	"github.com/fixkme/zleep/clock"
)

type deadlineEntry struct {
	deadline float64
	waiter   *WaiterHandle
}

// entryHeap 按deadline的小顶堆, 相同deadline的出堆顺序不保证
type entryHeap []deadlineEntry

func (h entryHeap) Len() int           { return len(h) }
func (h entryHeap) Less(i, j int) bool { return h[i].deadline < h[j].deadline }
func (h entryHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x any) {
	*h = append(*h, x.(deadlineEntry))
}

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = deadlineEntry{}
	*h = old[:n-1]
	return e
}

type deadlineHeap struct {
	clock   clock.Clock
	entries entryHeap
}

func newDeadlineHeap(c clock.Clock) *deadlineHeap {
	return &deadlineHeap{clock: c}
}

func (h *deadlineHeap) insert(deadline float64, w *WaiterHandle) {
	heap.Push(&h.entries, deadlineEntry{deadline: deadline, waiter: w})
}

// remaining 距最早deadline的秒数, 空堆返回+Inf, 不会小于0
func (h *deadlineHeap) remaining() float64 {
	if len(h.entries) == 0 {
		return math.Inf(1)
	}
	return math.Max(0, h.entries[0].deadline-h.clock.Now())
}

// shift 弹出最早的句柄, 空堆返回nil
func (h *deadlineHeap) shift() *WaiterHandle {
	if len(h.entries) == 0 {
		return nil
	}
	return heap.Pop(&h.entries).(deadlineEntry).waiter
}

func (h *deadlineHeap) len() int {
	return len(h.entries)
}

package zleep

import (
	"math"
	"math/rand"
	"testing"

	"github.com/fixkme/zleep/clock"
)

func TestHeapShiftOrder(t *testing.T) {
	c := clock.NewManual(0)
	h := newDeadlineHeap(c)
	const n = 200
	perm := rand.Perm(n)
	for _, i := range perm {
		h.insert(float64(i)*0.5, newWaiterHandle(nil, float64(i)*0.5, func() {}))
	}
	if h.len() != n {
		t.Fatalf("len = %d", h.len())
	}
	last := math.Inf(-1)
	for i := 0; i < n; i++ {
		w := h.shift()
		if w == nil {
			t.Fatalf("shift %d returned nil", i)
		}
		if w.Deadline() < last {
			t.Fatalf("out of order: %f after %f", w.Deadline(), last)
		}
		last = w.Deadline()
	}
	if h.shift() != nil {
		t.Fatal("shift on empty heap should return nil")
	}
}

func TestHeapDuplicateDeadlines(t *testing.T) {
	h := newDeadlineHeap(clock.NewManual(0))
	for i := 0; i < 5; i++ {
		h.insert(3, newWaiterHandle(nil, 3, func() {}))
	}
	h.insert(1, newWaiterHandle(nil, 1, func() {}))
	if w := h.shift(); w.Deadline() != 1 {
		t.Fatalf("first = %f", w.Deadline())
	}
	for i := 0; i < 5; i++ {
		if w := h.shift(); w == nil || w.Deadline() != 3 {
			t.Fatalf("entry %d = %v", i, w)
		}
	}
}

func TestHeapRemaining(t *testing.T) {
	c := clock.NewManual(100)
	h := newDeadlineHeap(c)
	if !math.IsInf(h.remaining(), 1) {
		t.Fatalf("empty remaining = %f", h.remaining())
	}
	h.insert(102.5, newWaiterHandle(nil, 102.5, func() {}))
	if rem := h.remaining(); rem != 2.5 {
		t.Fatalf("remaining = %f", rem)
	}
	h.insert(101, newWaiterHandle(nil, 101, func() {}))
	if rem := h.remaining(); rem != 1 {
		t.Fatalf("remaining = %f", rem)
	}
	c.Set(200)
	if rem := h.remaining(); rem != 0 {
		t.Fatalf("past deadline remaining = %f", rem)
	}
}

func TestWaiterFireOnce(t *testing.T) {
	n := 0
	w := newWaiterHandle(nil, 0, func() { n++ })
	if w.Closure() == nil || w.Consumed() {
		t.Fatal("fresh handle should be live")
	}
	if !w.Fire() {
		t.Fatal("first fire should run")
	}
	if w.Fire() || w.Cancel() {
		t.Fatal("consumed handle should be inert")
	}
	if n != 1 || w.Closure() != nil {
		t.Fatalf("callback ran %d times", n)
	}
}

func TestCancelledWaiterPoppedIsNoop(t *testing.T) {
	h := newDeadlineHeap(clock.NewManual(0))
	n := 0
	w := newWaiterHandle(nil, 0, func() { n++ })
	h.insert(0, w)
	if !w.Cancel() || w.Cancel() {
		t.Fatal("cancel should succeed exactly once")
	}
	popped := h.shift()
	if popped != w {
		t.Fatal("cancelled handle should still be popped")
	}
	if popped.Fire() || n != 0 {
		t.Fatalf("cancelled handle fired, n=%d", n)
	}
}

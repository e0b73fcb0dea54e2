package clock

import (
	"math"
	"testing"
	"time"
)

func TestSecondsRoundTrip(t *testing.T) {
	tm := time.Date(2024, 5, 1, 12, 0, 0, 250_000_000, time.UTC)
	ts := Seconds(tm)
	if math.Abs(ts-float64(tm.Unix())-0.25) > 1e-6 {
		t.Fatalf("Seconds = %f", ts)
	}
	if d := Time(ts).Sub(tm); d > time.Microsecond || d < -time.Microsecond {
		t.Fatalf("Time round trip drift %v", d)
	}
}

func TestDuration(t *testing.T) {
	if Duration(-1) != 0 || Duration(0) != 0 {
		t.Fatal("non-positive seconds should map to 0")
	}
	if Duration(1.5) != 1500*time.Millisecond {
		t.Fatalf("Duration(1.5) = %v", Duration(1.5))
	}
}

func TestSystemOffset(t *testing.T) {
	c := &System{}
	base := c.Now()
	c.SetOffset(time.Hour)
	shifted := c.Now()
	if shifted-base < 3599 || shifted-base > 3601 {
		t.Fatalf("offset not applied: %f -> %f", base, shifted)
	}
	if c.Offset() != time.Hour {
		t.Fatalf("Offset = %v", c.Offset())
	}
}

func TestManual(t *testing.T) {
	c := NewManual(100)
	if c.Now() != 100 {
		t.Fatalf("Now = %f", c.Now())
	}
	if got := c.Advance(0.25); got != 100.25 {
		t.Fatalf("Advance = %f", got)
	}
	c.Set(7)
	if c.Now() != 7 {
		t.Fatalf("Set not applied: %f", c.Now())
	}
}

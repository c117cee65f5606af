package clock

import (
	"testing"
	"time"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeClockAdvance(t *testing.T) {
	c := Fake(epoch)
	c.Advance(5 * time.Second)
	if got := c.Now(); !got.Equal(epoch.Add(5 * time.Second)) {
		t.Fatalf("Now() = %v", got)
	}
}

func TestFakeClockAfterFunc(t *testing.T) {
	c := Fake(epoch)
	called := false
	c.AfterFunc(80*time.Millisecond, func() { called = true })

	c.Advance(79 * time.Millisecond)
	if called {
		t.Fatal("AfterFunc fired before deadline")
	}
	if c.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", c.Pending())
	}

	c.Advance(time.Millisecond)
	if !called {
		t.Fatal("AfterFunc did not fire at deadline")
	}
	if c.Pending() != 0 {
		t.Fatalf("Pending() = %d, want 0", c.Pending())
	}
}

func TestFakeClockAfterFuncZero(t *testing.T) {
	c := Fake(epoch)
	called := false
	timer := c.AfterFunc(0, func() { called = true })
	if !called {
		t.Fatal("AfterFunc(0) should run synchronously")
	}
	if timer.Stop() {
		t.Fatal("Stop() after firing should return false")
	}
}

func TestFakeClockStop(t *testing.T) {
	c := Fake(epoch)
	called := false
	timer := c.AfterFunc(time.Second, func() { called = true })

	if !timer.Stop() {
		t.Fatal("first Stop() should return true")
	}
	if timer.Stop() {
		t.Fatal("second Stop() should return false")
	}

	c.Advance(time.Minute)
	if called {
		t.Fatal("stopped timer fired")
	}
}

func TestFakeClockOrder(t *testing.T) {
	c := Fake(epoch)
	var order []int
	c.AfterFunc(3*time.Second, func() { order = append(order, 3) })
	c.AfterFunc(time.Second, func() { order = append(order, 1) })
	c.AfterFunc(time.Second, func() { order = append(order, 2) })

	c.Advance(5 * time.Second)

	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Fatalf("fired in order %v, want [1 2 3]", order)
	}
}

func TestClocksImplementClock(t *testing.T) {
	var _ Clock = (*FakeClock)(nil)
	var _ Clock = Real()
}

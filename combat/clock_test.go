package combat

import "testing"

func TestStepClockAdvance(t *testing.T) {
	c := NewStepClock(100)
	if c.Now() != 100 {
		t.Fatalf("Now = %d", c.Now())
	}
	c.Advance(16)
	c.Advance(16)
	if c.Now() != 132 {
		t.Errorf("Now = %d, want 132", c.Now())
	}
}

func TestStepClockDelayedCallOrder(t *testing.T) {
	c := NewStepClock(0)
	var order []string
	c.DelayedCall(50, func() { order = append(order, "b") })
	c.DelayedCall(20, func() { order = append(order, "a") })
	c.DelayedCall(50, func() { order = append(order, "c") })

	c.Advance(100)
	if len(order) != 3 || order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Errorf("order = %v", order)
	}
}

func TestStepClockDelayedCallNotEarly(t *testing.T) {
	c := NewStepClock(0)
	fired := false
	c.DelayedCall(100, func() { fired = true })

	c.Advance(99)
	if fired {
		t.Fatal("fired before its timestamp")
	}
	c.Advance(1)
	if !fired {
		t.Fatal("did not fire at its timestamp")
	}
}

func TestStepClockCancel(t *testing.T) {
	c := NewStepClock(0)
	fired := false
	h := c.DelayedCall(50, func() { fired = true })
	h.Cancel()
	h.Cancel()

	c.Advance(100)
	if fired {
		t.Error("cancelled timer fired")
	}
	if c.PendingTimers() != 0 {
		t.Errorf("pending = %d", c.PendingTimers())
	}
}

func TestStepClockPauseBlocksEverything(t *testing.T) {
	c := NewStepClock(0)
	fired := false
	c.DelayedCall(10, func() { fired = true })

	c.SetPaused(true)
	c.Advance(100)
	if c.Now() != 0 {
		t.Errorf("paused clock advanced to %d", c.Now())
	}
	if fired {
		t.Error("timer fired while paused")
	}

	c.SetPaused(false)
	c.Advance(10)
	if !fired {
		t.Error("timer should fire after resume")
	}
}

func TestStepClockMinimumDelay(t *testing.T) {
	c := NewStepClock(0)
	fired := false
	c.DelayedCall(0, func() { fired = true })
	if fired {
		t.Fatal("zero-delay call must not run synchronously")
	}
	c.Advance(1)
	if !fired {
		t.Fatal("zero-delay call should fire on the next advance")
	}
}

func TestStepClockNestedScheduling(t *testing.T) {
	c := NewStepClock(0)
	var order []string
	c.DelayedCall(10, func() {
		order = append(order, "outer")
		c.DelayedCall(10, func() { order = append(order, "inner") })
	})

	c.Advance(30)
	// The inner call's timestamp (20) is already due within the same advance.
	if len(order) != 2 || order[0] != "outer" || order[1] != "inner" {
		t.Errorf("order = %v", order)
	}
}

func TestStepClockCancelDuringAdvance(t *testing.T) {
	c := NewStepClock(0)
	var h TimerHandle
	fired := false
	c.DelayedCall(10, func() { h.Cancel() })
	h = c.DelayedCall(20, func() { fired = true })

	c.Advance(50)
	if fired {
		t.Error("timer cancelled by an earlier callback still fired")
	}
}

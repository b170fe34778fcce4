package combat

// StepClock is a frame-stepped millisecond clock. The host advances it once
// per tick; delayed calls fire in timestamp order during Advance. Pausing
// stops advancement globally, so pending delays keep their relative order
// across pause/resume.
type StepClock struct {
	now    int64
	paused bool
	seq    uint64
	timers []*stepTimer
}

type stepTimer struct {
	at        int64
	seq       uint64
	fn        func()
	cancelled bool
	fired     bool
}

// Cancel prevents the timer from firing. Safe to call more than once, and
// safe after the timer already fired.
func (t *stepTimer) Cancel() {
	if t == nil {
		return
	}
	t.cancelled = true
}

// NewStepClock creates a clock starting at the given timestamp.
func NewStepClock(start int64) *StepClock {
	return &StepClock{now: start}
}

// Now returns the current timestamp in milliseconds.
func (c *StepClock) Now() int64 {
	if c == nil {
		return 0
	}
	return c.now
}

// SetPaused stops or resumes clock advancement.
func (c *StepClock) SetPaused(p bool) {
	if c == nil {
		return
	}
	c.paused = p
}

// Paused reports whether the clock is paused.
func (c *StepClock) Paused() bool {
	return c != nil && c.paused
}

// DelayedCall schedules fn to run once the clock has advanced past delayMs
// from now. Delays below one millisecond are rounded up so a callback can
// never run inside the call that scheduled it.
func (c *StepClock) DelayedCall(delayMs int64, fn func()) TimerHandle {
	if c == nil || fn == nil {
		return (*stepTimer)(nil)
	}
	if delayMs < 1 {
		delayMs = 1
	}
	c.seq++
	t := &stepTimer{at: c.now + delayMs, seq: c.seq, fn: fn}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward and fires due timers in (timestamp,
// schedule-order) order. A paused clock ignores Advance entirely.
func (c *StepClock) Advance(dtMs int64) {
	if c == nil || c.paused || dtMs <= 0 {
		return
	}
	c.now += dtMs
	for {
		var next *stepTimer
		for _, t := range c.timers {
			if t.fired || t.cancelled || t.at > c.now {
				continue
			}
			if next == nil || t.at < next.at || (t.at == next.at && t.seq < next.seq) {
				next = t
			}
		}
		if next == nil {
			break
		}
		next.fired = true
		next.fn()
	}
	c.compact()
}

// PendingTimers returns how many timers are still waiting to fire.
func (c *StepClock) PendingTimers() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, t := range c.timers {
		if !t.fired && !t.cancelled {
			n++
		}
	}
	return n
}

func (c *StepClock) compact() {
	kept := c.timers[:0]
	for _, t := range c.timers {
		if !t.fired && !t.cancelled {
			kept = append(kept, t)
		}
	}
	c.timers = kept
}

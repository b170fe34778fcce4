package combat

import (
	"math"
	"math/rand"

	"github.com/milk9111/hordecore/common"
)

// CooldownScheduler computes fire timestamps for weapon instances. The
// initial schedule is jittered so weapons sharing a cadence do not fire in
// lockstep; subsequent schedules are exact.
type CooldownScheduler struct {
	rng *rand.Rand
}

// NewCooldownScheduler creates a scheduler with its own seeded rng.
func NewCooldownScheduler(seed int64) *CooldownScheduler {
	return &CooldownScheduler{rng: rand.New(rand.NewSource(seed))}
}

// ScheduleInitial returns now + U(0, delayMs-1). Degenerate delays (<= 1ms)
// return now unchanged.
func (s *CooldownScheduler) ScheduleInitial(now, delayMs int64) int64 {
	if s == nil || s.rng == nil || delayMs <= 1 {
		return now
	}
	return now + s.rng.Int63n(delayMs)
}

// ShouldFire reports whether a weapon scheduled for nextFireAt is ready.
func (s *CooldownScheduler) ShouldFire(now, nextFireAt int64) bool {
	return now >= nextFireAt
}

// ScheduleNext returns the timestamp of the following shot.
func (s *CooldownScheduler) ScheduleNext(now, delayMs int64) int64 {
	if delayMs < 0 {
		delayMs = 0
	}
	return now + delayMs
}

// EffectiveDelayMs divides the configured cadence by the external
// attack-speed multiplier, clamped to the cooldown floor. A non-finite or
// non-positive multiplier is treated as 1.
func EffectiveDelayMs(cadenceMs, attackSpeedMult float64) int64 {
	if !common.IsFinite(attackSpeedMult) || attackSpeedMult <= 0 {
		attackSpeedMult = 1
	}
	if !common.IsFinite(cadenceMs) || cadenceMs < 0 {
		cadenceMs = 0
	}
	d := cadenceMs / attackSpeedMult
	if d < MinCooldownMs {
		d = MinCooldownMs
	}
	return int64(math.Round(d))
}

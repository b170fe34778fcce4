package combat

import (
	"math"

	"github.com/jakecoffman/cp/v2"

	"github.com/milk9111/hordecore/common"
)

const (
	defaultTriggerFrame   = 4
	defaultAreaFallbackMs = 1500
)

// AreaTrigger converts an optional, possibly-absent effect visual into
// exactly one damage trigger. Whatever the visual does (plays, completes
// early, never exists), the fire callback runs once and only once.
type AreaTrigger struct {
	clock     Clock
	spec      AreaSpec
	fire      func()
	triggered bool
	fallback  TimerHandle
}

// NewAreaTrigger creates a trigger. fire is invoked exactly once per
// trigger, on whichever path wins.
func NewAreaTrigger(clock Clock, spec AreaSpec, fire func()) *AreaTrigger {
	return &AreaTrigger{clock: clock, spec: spec, fire: fire}
}

// Attach binds the trigger to a visual (nil when the asset is missing) and
// arms the timing mode:
//
//   - impact: fire synchronously now.
//   - animation: fire when playback reaches the trigger frame, with
//     completion as a safety net.
//   - expire: fire on completion, with a bounded fallback timer.
//
// A missing or unplayable visual still fires exactly once: immediately,
// except for expire timing which waits for the fallback timer.
func (a *AreaTrigger) Attach(v Visual) {
	if a == nil || a.triggered {
		return
	}
	playing := v != nil && v.Played()

	switch a.spec.Timing {
	case TimingAnimation:
		if !playing {
			a.Trigger()
			return
		}
		frame := a.spec.TriggerFrame
		if frame <= 0 {
			frame = defaultTriggerFrame
		}
		v.OnProgress(func(f int) {
			if f >= frame {
				a.Trigger()
			}
		})
		v.OnComplete(a.Trigger)
	case TimingExpire:
		fb := int64(a.spec.FallbackMs)
		if fb <= 0 {
			fb = defaultAreaFallbackMs
		}
		if playing {
			v.OnComplete(a.Trigger)
		}
		if a.clock != nil {
			a.fallback = a.clock.DelayedCall(fb, a.Trigger)
		} else if !playing {
			a.Trigger()
		}
	default: // TimingImpact
		a.Trigger()
	}
}

// Trigger fires the damage callback if it has not fired yet. Idempotent:
// progress, completion and fallback paths may race onto it freely.
func (a *AreaTrigger) Trigger() {
	if a == nil || a.triggered {
		return
	}
	a.triggered = true
	if a.fallback != nil {
		a.fallback.Cancel()
		a.fallback = nil
	}
	if a.fire != nil {
		a.fire()
	}
}

// Cancel disarms the trigger without firing. Used when the owning weapon is
// destroyed before the effect resolves.
func (a *AreaTrigger) Cancel() {
	if a == nil {
		return
	}
	a.triggered = true
	if a.fallback != nil {
		a.fallback.Cancel()
		a.fallback = nil
	}
}

// Triggered reports whether the damage callback has run (or been
// cancelled).
func (a *AreaTrigger) Triggered() bool {
	return a != nil && a.triggered
}

// AreaDamage describes one area-damage application.
type AreaDamage struct {
	Origin  cp.Vector
	Facing  float64
	Spec    AreaSpec
	Payload Payload
	// Exclude lists target ids that must not be hit again (e.g. the direct
	// hit of an exploding projectile).
	Exclude map[uint64]struct{}
}

// ApplyAreaDamage sweeps the target pool once: skips inactive, excluded and
// out-of-radius entities, honors the directional arc with its inner
// forgiveness distance, applies linear falloff, and stops after MaxTargets
// hits. Returns the number of hits that landed.
func ApplyAreaDamage(pool TargetPool, pipeline DamagePipeline, d AreaDamage) int {
	if pool == nil || pipeline == nil || d.Spec.Radius <= 0 {
		return 0
	}
	dmgMult := d.Spec.DamageMult
	if dmgMult <= 0 {
		dmgMult = 1
	}
	arcActive := d.Spec.ArcDeg > 0 && d.Spec.ArcDeg < 360
	halfArc := d.Spec.ArcDeg / 2 * math.Pi / 180

	hits := 0
	pool.ForEachActive(func(t Target) bool {
		if t == nil || !t.Active() {
			return true
		}
		if _, skip := d.Exclude[t.ID()]; skip {
			return true
		}
		dist := t.Pos().Distance(d.Origin)
		if !common.IsFinite(dist) || dist > d.Spec.Radius {
			return true
		}
		if arcActive && dist > d.Spec.InnerForgiveness {
			ang := math.Atan2(t.Pos().Y-d.Origin.Y, t.Pos().X-d.Origin.X)
			if math.Abs(common.AngleDiff(ang, d.Facing)) > halfArc {
				return true
			}
		}
		fall := 1 - d.Spec.Falloff*dist/100
		if fall <= 0 {
			return true
		}
		if pipeline.ApplyHit(t, d.Payload.Scaled(dmgMult*fall)) {
			hits++
			if d.Spec.MaxTargets > 0 && hits >= d.Spec.MaxTargets {
				return false
			}
		}
		return true
	})
	return hits
}

// FalloffMult returns the linear distance attenuation for an area effect.
func FalloffMult(falloff, dist float64) float64 {
	return math.Max(0, 1-falloff*dist/100)
}

package combat

import (
	"math"
	"math/rand"

	"github.com/google/uuid"
	"github.com/jakecoffman/cp/v2"
	"github.com/sirupsen/logrus"

	"github.com/milk9111/hordecore/common"
)

// Deps bundles the collaborators shared by the combat core. Pools and
// controllers take the same struct; each uses the fields it needs.
type Deps struct {
	Clock       Clock
	Owner       Owner
	Targets     TargetPool
	Pipeline    DamagePipeline
	Coordinator *TargetingCoordinator
	Projectiles *ProjectilePool
	Scheduler   *CooldownScheduler
	Visuals     VisualHost
	Sink        Sink
	// Tuning supplies the external tuning context per shot. Nil means a
	// neutral context.
	Tuning func() TuningContext
	// Rand drives pattern jitter (scatter offsets). Nil gets a fixed seed.
	Rand *rand.Rand
}

// placement is the capability an archetype contributes: given the shared
// controller state, place the weapon's effect. Everything else (cadence,
// targeting, payload, destruction) lives in the controller shell.
type placement interface {
	fire(c *Controller, now int64) bool
}

// Controller drives one equipped weapon instance: it owns cadence state,
// resolves targets, builds payloads, and delegates effect placement to its
// archetype.
type Controller struct {
	deps Deps

	instanceKey string
	template    WeaponTemplate
	mods        []Modifier
	cfg         EffectiveConfig

	nextFireAt int64
	sweepAxis  int

	place        placement
	timers       []TimerHandle
	areaTriggers []*AreaTrigger
	destroyed    bool
}

// NewController creates a controller for a template with the current
// modifier list and schedules its jittered first shot.
func NewController(deps Deps, tpl WeaponTemplate, mods []Modifier) *Controller {
	c := &Controller{
		deps:        deps,
		instanceKey: tpl.Key + "/" + uuid.NewString(),
		template:    tpl.Clone(),
		mods:        append([]Modifier(nil), mods...),
	}
	if c.deps.Scheduler == nil {
		c.deps.Scheduler = NewCooldownScheduler(1)
	}
	if c.deps.Rand == nil {
		c.deps.Rand = rand.New(rand.NewSource(1))
	}
	c.cfg = ComputeEffective(c.template, c.mods)
	c.place = placementFor(c.cfg.Archetype)

	now := c.now()
	c.nextFireAt = c.deps.Scheduler.ScheduleInitial(now, c.effectiveDelay())

	logrus.WithFields(logrus.Fields{
		"weapon":    tpl.Key,
		"archetype": tpl.Archetype,
		"instance":  c.instanceKey,
	}).Debug("combat: controller created")
	return c
}

// Key returns the controller's unique instance key.
func (c *Controller) Key() string {
	if c == nil {
		return ""
	}
	return c.instanceKey
}

// Config returns the current effective configuration.
func (c *Controller) Config() EffectiveConfig {
	return c.cfg
}

// NextFireAt returns the scheduled timestamp of the next shot.
func (c *Controller) NextFireAt() int64 {
	return c.nextFireAt
}

// Update runs one tick: if the cooldown elapsed and the owner may act, the
// archetype places its effect and the next shot is scheduled. A tick where
// no effect could be placed (no target in range) leaves the cooldown ready
// so the weapon retries next tick.
func (c *Controller) Update(dtMs int64) {
	if c == nil || c.destroyed {
		return
	}
	now := c.now()
	if !c.deps.Scheduler.ShouldFire(now, c.nextFireAt) {
		return
	}
	if c.deps.Owner == nil || !c.deps.Owner.CanFire() {
		return
	}
	if !c.place.fire(c, now) {
		return
	}

	delay := c.effectiveDelay()
	c.nextFireAt = c.deps.Scheduler.ScheduleNext(now, delay)
	c.deps.Sink.emit(EventControllerFired, ControllerFired{
		WeaponKey:  c.template.Key,
		DelayMs:    delay,
		NextFireAt: c.nextFireAt,
	})
	c.deps.Sink.emit(EventWeaponFired, WeaponFired{WeaponKey: c.template.Key})
	c.pruneTimers()
}

// SetModifiers replaces the modifier list and recomputes the effective
// configuration wholesale. Unrelated runtime state (cadence schedule, the
// sweep axis) survives the refresh.
func (c *Controller) SetModifiers(mods []Modifier) {
	if c == nil || c.destroyed {
		return
	}
	c.mods = append([]Modifier(nil), mods...)
	c.cfg = ComputeEffective(c.template, c.mods)
	c.place = placementFor(c.cfg.Archetype)
}

// SetTemplate swaps the underlying template (hot reload) and recomputes the
// effective configuration, again preserving runtime state.
func (c *Controller) SetTemplate(tpl WeaponTemplate) {
	if c == nil || c.destroyed {
		return
	}
	c.template = tpl.Clone()
	c.cfg = ComputeEffective(c.template, c.mods)
	c.place = placementFor(c.cfg.Archetype)
}

// Destroy cancels all owned timers, reservations and in-flight state. No
// damage from this weapon may be applied after Destroy returns.
func (c *Controller) Destroy() {
	if c == nil || c.destroyed {
		return
	}
	c.destroyed = true
	for _, t := range c.timers {
		t.Cancel()
	}
	c.timers = nil
	for _, a := range c.areaTriggers {
		a.Cancel()
	}
	c.areaTriggers = nil
	if c.deps.Coordinator != nil {
		c.deps.Coordinator.CancelWeapon(c.instanceKey)
	}
	if c.deps.Projectiles != nil {
		c.deps.Projectiles.ReleaseOwned(c.instanceKey)
	}
	logrus.WithField("instance", c.instanceKey).Debug("combat: controller destroyed")
}

// Destroyed reports whether Destroy has run.
func (c *Controller) Destroyed() bool {
	return c != nil && c.destroyed
}

func (c *Controller) now() int64 {
	if c.deps.Clock == nil {
		return 0
	}
	return c.deps.Clock.Now()
}

func (c *Controller) tuning() TuningContext {
	if c.deps.Tuning == nil {
		return TuningContext{}
	}
	return c.deps.Tuning()
}

func (c *Controller) effectiveDelay() int64 {
	return EffectiveDelayMs(c.cfg.Cadence.DelayMs, c.tuning().AttackSpeedMult)
}

func (c *Controller) buildPayload() Payload {
	return BuildPayload(c.cfg, c.tuning(), c.template.Key)
}

func (c *Controller) origin() cp.Vector {
	if c.deps.Owner == nil {
		return cp.Vector{}
	}
	return c.deps.Owner.Pos()
}

func (c *Controller) facing() float64 {
	if c.deps.Owner == nil {
		return 0
	}
	f := c.deps.Owner.Facing()
	if !common.IsFinite(f) {
		return 0
	}
	return f
}

// acquireAim resolves the shot's target and direction per the configured
// aim mode. For the auto modes a nil ok means no target was available and
// the shot should not happen.
func (c *Controller) acquireAim(speedPxPerSec, shotDamage float64) (t Target, impactAt int64, angle float64, ok bool) {
	now := c.now()
	switch c.cfg.Aim {
	case AimSelf, AimFacing:
		return nil, now, c.facing(), true
	case AimNearest:
		t = NearestTarget(c.deps.Targets, c.origin(), c.cfg.RangePx)
		if t == nil {
			return nil, 0, 0, false
		}
		d := t.Pos().Distance(c.origin())
		var eta int64
		if speedPxPerSec > common.Epsilon && common.IsFinite(d) {
			eta = int64(math.Round(d / speedPxPerSec * 1000))
		}
		return t, now + eta, c.angleTo(t), true
	default: // AimScored
		if c.deps.Coordinator == nil {
			return nil, 0, 0, false
		}
		t, impactAt, ok = c.deps.Coordinator.SelectTarget(c.deps.Targets, c.origin(), c.cfg.RangePx, speedPxPerSec, shotDamage)
		if !ok {
			return nil, 0, 0, false
		}
		return t, impactAt, c.angleTo(t), true
	}
}

func (c *Controller) angleTo(t Target) float64 {
	o := c.origin()
	dx := t.Pos().X - o.X
	dy := t.Pos().Y - o.Y
	if dx*dx+dy*dy < common.Epsilon {
		return c.facing()
	}
	return math.Atan2(dy, dx)
}

// commitShot records a reservation when the shot has a specific target.
func (c *Controller) commitShot(t Target, impactAt int64, predicted float64) *Reservation {
	if t == nil || c.deps.Coordinator == nil {
		return nil
	}
	return c.deps.Coordinator.Commit(c.instanceKey, t, impactAt, predicted)
}

// after schedules a cancellable delayed call owned by this controller.
// Destroyed controllers reject further scheduling, and callbacks of a
// destroyed controller never run.
func (c *Controller) after(delayMs int64, fn func()) {
	if c.destroyed || c.deps.Clock == nil {
		return
	}
	h := c.deps.Clock.DelayedCall(delayMs, func() {
		if c.destroyed {
			return
		}
		fn()
	})
	c.timers = append(c.timers, h)
}

func (c *Controller) trackTrigger(a *AreaTrigger) {
	if a == nil || a.Triggered() {
		return
	}
	c.areaTriggers = append(c.areaTriggers, a)
}

func (c *Controller) pruneTimers() {
	if len(c.areaTriggers) > 0 {
		kept := c.areaTriggers[:0]
		for _, a := range c.areaTriggers {
			if !a.Triggered() {
				kept = append(kept, a)
			}
		}
		c.areaTriggers = kept
	}
	// Timer handles are cheap; drop the slice once it grows past a frame's
	// worth of bookkeeping.
	if len(c.timers) > 256 {
		c.timers = append([]TimerHandle(nil), c.timers[len(c.timers)-64:]...)
	}
}

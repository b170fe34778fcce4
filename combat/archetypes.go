package combat

import (
	"math"

	"github.com/jakecoffman/cp/v2"

	"github.com/milk9111/hordecore/common"
)

func placementFor(a Archetype) placement {
	switch a {
	case ArchetypeBallistic:
		return ballisticPlacement{}
	case ArchetypeBurst:
		return burstPlacement{}
	case ArchetypeMelee:
		return meleePlacement{}
	case ArchetypeChain:
		return chainPlacement{}
	case ArchetypeScatter:
		return scatterPlacement{}
	case ArchetypeSweep:
		return sweepPlacement{}
	default:
		return straightPlacement{}
	}
}

func (c *Controller) areaSpec() *AreaSpec {
	if !c.cfg.Area.Enabled {
		return nil
	}
	spec := c.cfg.Area
	return &spec
}

// straightPlacement fires one or more projectiles in a spread around the
// aim direction. Only the lead projectile carries the reservation; the
// fan-out shots are bonus damage the ledger does not promise.
type straightPlacement struct{}

func (straightPlacement) fire(c *Controller, now int64) bool {
	payload := c.buildPayload()
	speed := c.cfg.Projectile.Speed
	t, impactAt, angle, ok := c.acquireAim(speed, payload.Damage)
	if !ok {
		return false
	}
	res := c.commitShot(t, impactAt, payload.Damage)

	count := c.cfg.Projectile.Count
	if count < 1 {
		count = 1
	}
	spread := c.cfg.Projectile.SpreadDeg * math.Pi / 180
	fired := false
	for i := 0; i < count; i++ {
		pcfg := ProjectileConfig{
			WeaponKey:        c.instanceKey,
			Origin:           c.origin(),
			Angle:            angle + spreadOffset(i, count, spread),
			Speed:            speed,
			LifetimeMs:       int64(c.cfg.Projectile.LifetimeMs),
			Pierce:           c.cfg.Projectile.Pierce,
			RotateToVelocity: c.cfg.Projectile.RotateToVelocity,
			SpinRadPerSec:    c.cfg.Projectile.SpinRadPerSec,
			Payload:          payload,
			Area:             c.areaSpec(),
			ImpactEffectID:   c.cfg.Area.EffectID,
		}
		if i == 0 {
			pcfg.Reservation = res
		}
		if _, launched := c.deps.Projectiles.Fire(pcfg); launched {
			fired = true
		}
	}
	if !fired && res != nil {
		// Pool exhausted; the promise will never land.
		c.deps.Coordinator.Cancel(res)
	}
	return fired
}

// spreadOffset spaces shot i of n evenly across a total spread angle.
func spreadOffset(i, n int, spread float64) float64 {
	if n <= 1 || spread <= 0 {
		return 0
	}
	step := spread / float64(n-1)
	return -spread/2 + float64(i)*step
}

// ballisticPlacement lobs a projectile on a gravity arc toward the target
// point, detonating after the post-apex settle delay.
type ballisticPlacement struct{}

func (ballisticPlacement) fire(c *Controller, now int64) bool {
	payload := c.buildPayload()
	speed := c.cfg.Projectile.Speed
	if speed <= 0 {
		speed = 300
	}
	t, impactAt, angle, ok := c.acquireAim(speed, payload.Damage)
	if !ok {
		return false
	}

	origin := c.origin()
	var dest cp.Vector
	if t != nil {
		dest = t.Pos()
	} else {
		reach := c.cfg.RangePx
		if reach <= 0 {
			reach = 200
		}
		dest = origin.Add(cp.Vector{X: math.Cos(angle), Y: math.Sin(angle)}.Mult(reach))
	}

	gravity := c.cfg.Projectile.Gravity
	if gravity <= 0 {
		gravity = 900
	}
	dist := dest.Distance(origin)
	if !common.IsFinite(dist) {
		return false
	}
	flight := common.Clamp(dist/speed, 0.3, 1.5)
	launch := cp.Vector{
		X: (dest.X - origin.X) / flight,
		Y: (dest.Y-origin.Y)/flight - gravity*flight/2,
	}

	res := c.commitShot(t, impactAt, payload.Damage)
	_, launched := c.deps.Projectiles.Fire(ProjectileConfig{
		WeaponKey:        c.instanceKey,
		Origin:           origin,
		LaunchVel:        launch,
		Gravity:          gravity,
		LifetimeMs:       int64(c.cfg.Projectile.LifetimeMs),
		SettleMs:         int64(c.cfg.Projectile.SettleMs),
		Pierce:           c.cfg.Projectile.Pierce,
		RotateToVelocity: true,
		Payload:          payload,
		Area:             c.areaSpec(),
		ImpactEffectID:   c.cfg.Area.EffectID,
		Reservation:      res,
	})
	if !launched && res != nil {
		c.deps.Coordinator.Cancel(res)
	}
	return launched
}

// burstPlacement releases a radial pattern of projectiles around the owner.
// With no spread configured the pattern covers the full circle.
type burstPlacement struct{}

func (burstPlacement) fire(c *Controller, now int64) bool {
	payload := c.buildPayload()
	speed := c.cfg.Projectile.Speed
	_, _, angle, ok := c.acquireAim(speed, payload.Damage)
	if !ok {
		return false
	}
	count := c.cfg.Projectile.Count
	if count < 1 {
		count = 1
	}
	spread := c.cfg.Projectile.SpreadDeg * math.Pi / 180
	fired := false
	for i := 0; i < count; i++ {
		var a float64
		if spread <= 0 {
			a = angle + 2*math.Pi*float64(i)/float64(count)
		} else {
			a = angle + spreadOffset(i, count, spread)
		}
		_, launched := c.deps.Projectiles.Fire(ProjectileConfig{
			WeaponKey:        c.instanceKey,
			Origin:           c.origin(),
			Angle:            a,
			Speed:            speed,
			LifetimeMs:       int64(c.cfg.Projectile.LifetimeMs),
			Pierce:           c.cfg.Projectile.Pierce,
			RotateToVelocity: c.cfg.Projectile.RotateToVelocity,
			SpinRadPerSec:    c.cfg.Projectile.SpinRadPerSec,
			Payload:          payload,
			Area:             c.areaSpec(),
			ImpactEffectID:   c.cfg.Area.EffectID,
		})
		fired = fired || launched
	}
	return fired
}

// meleePlacement sweeps a cone in front of the owner and applies damage in
// the same tick.
type meleePlacement struct{}

func (meleePlacement) fire(c *Controller, now int64) bool {
	payload := c.buildPayload()
	_, _, angle, ok := c.acquireAim(0, payload.Damage)
	if !ok {
		return false
	}
	reach := c.cfg.Melee.ReachPx
	if reach <= 0 {
		reach = c.cfg.RangePx
	}
	arc := c.cfg.Melee.ArcDeg
	if arc <= 0 {
		arc = 90
	}
	origin := c.origin()
	hits := ApplyAreaDamage(c.deps.Targets, c.deps.Pipeline, AreaDamage{
		Origin: origin,
		Facing: angle,
		Spec: AreaSpec{
			Enabled:          true,
			Radius:           reach,
			ArcDeg:           arc,
			InnerForgiveness: c.cfg.Area.InnerForgiveness,
			Falloff:          c.cfg.Area.Falloff,
			MaxTargets:       c.cfg.Area.MaxTargets,
		},
		Payload: payload,
	})
	c.deps.Sink.emit(EventWeaponAOE, WeaponAOE{
		WeaponKey: c.template.Key,
		X:         origin.X,
		Y:         origin.Y,
		Radius:    reach,
		Hits:      hits,
	})
	return true
}

// chainPlacement strikes its target instantly, then hops to nearby targets
// on a delay, decaying damage per hop. Hops reserve their damage before
// landing so other weapons see it coming.
type chainPlacement struct{}

func (chainPlacement) fire(c *Controller, now int64) bool {
	payload := c.buildPayload()
	t, _, _, ok := c.acquireAim(0, payload.Damage)
	if !ok {
		return false
	}
	if t == nil {
		t = NearestTarget(c.deps.Targets, c.origin(), c.cfg.RangePx)
		if t == nil {
			return false
		}
	}
	hops := c.cfg.Chain.Hops
	if hops < 1 {
		hops = 1
	}
	visited := map[uint64]struct{}{}
	c.strikeChain(t, payload, visited, hops)
	return true
}

func (c *Controller) strikeChain(t Target, payload Payload, visited map[uint64]struct{}, remaining int) {
	if c.destroyed || t == nil {
		return
	}
	visited[t.ID()] = struct{}{}
	if c.deps.Pipeline != nil {
		c.deps.Pipeline.ApplyHit(t, payload)
	}
	if remaining <= 1 {
		return
	}

	next := c.nextHopTarget(t.Pos(), visited)
	if next == nil {
		return
	}
	decay := c.cfg.Chain.DamageDecay
	if decay <= 0 || decay > 1 {
		decay = 1
	}
	hopPayload := payload.Scaled(decay)
	delay := int64(c.cfg.Chain.HopDelayMs)
	if delay < 1 {
		delay = 1
	}

	res := c.commitShot(next, c.now()+delay, hopPayload.Damage)
	c.after(delay, func() {
		if next.Active() && next.HP() > 0 {
			applied := false
			if c.deps.Pipeline != nil {
				applied = c.deps.Pipeline.ApplyHit(next, hopPayload)
			}
			if applied {
				c.deps.Coordinator.Consume(res)
			} else {
				c.deps.Coordinator.Cancel(res)
			}
			visited[next.ID()] = struct{}{}
			if remaining-1 > 1 {
				c.continueChain(next, hopPayload, visited, remaining-1)
			}
			return
		}
		c.deps.Coordinator.Cancel(res)
		// Target died mid-hop; jump past it so the chain is not wasted.
		if fallback := c.nextHopTarget(next.Pos(), visited); fallback != nil {
			c.strikeChain(fallback, hopPayload, visited, remaining-1)
		}
	})
}

func (c *Controller) continueChain(from Target, payload Payload, visited map[uint64]struct{}, remaining int) {
	next := c.nextHopTarget(from.Pos(), visited)
	if next == nil {
		return
	}
	decay := c.cfg.Chain.DamageDecay
	if decay <= 0 || decay > 1 {
		decay = 1
	}
	hopPayload := payload.Scaled(decay)
	delay := int64(c.cfg.Chain.HopDelayMs)
	if delay < 1 {
		delay = 1
	}
	res := c.commitShot(next, c.now()+delay, hopPayload.Damage)
	c.after(delay, func() {
		applied := false
		if next.Active() && next.HP() > 0 && c.deps.Pipeline != nil {
			applied = c.deps.Pipeline.ApplyHit(next, hopPayload)
		}
		if applied {
			c.deps.Coordinator.Consume(res)
		} else {
			c.deps.Coordinator.Cancel(res)
		}
		visited[next.ID()] = struct{}{}
		if remaining-1 > 1 {
			c.continueChain(next, hopPayload, visited, remaining-1)
		}
	})
}

func (c *Controller) nextHopTarget(from cp.Vector, visited map[uint64]struct{}) Target {
	hopRange := c.cfg.Chain.HopRangePx
	if hopRange <= 0 {
		hopRange = c.cfg.RangePx
	}
	var best Target
	bestDist := math.MaxFloat64
	c.deps.Targets.ForEachActive(func(t Target) bool {
		if t == nil || !t.Active() || t.HP() <= 0 {
			return true
		}
		if _, seen := visited[t.ID()]; seen {
			return true
		}
		d := t.Pos().Distance(from)
		if !common.IsFinite(d) || d > hopRange {
			return true
		}
		if d < bestDist {
			bestDist = d
			best = t
		}
		return true
	})
	return best
}

// scatterPlacement drops a sequence of area patches around the aim point,
// each on its own delay, each synchronized to its own effect visual.
type scatterPlacement struct{}

func (scatterPlacement) fire(c *Controller, now int64) bool {
	payload := c.buildPayload()
	t, _, angle, ok := c.acquireAim(0, payload.Damage)
	if !ok {
		return false
	}
	spec := c.areaSpec()
	if spec == nil || spec.Radius <= 0 {
		return false
	}

	origin := c.origin()
	var center cp.Vector
	switch {
	case t != nil:
		center = t.Pos()
	case c.cfg.Aim == AimSelf:
		center = origin
	default:
		reach := c.cfg.RangePx
		if reach <= 0 {
			reach = 200
		}
		center = origin.Add(cp.Vector{X: math.Cos(angle), Y: math.Sin(angle)}.Mult(reach / 2))
	}

	clusters := c.cfg.Scatter.Clusters
	if clusters < 1 {
		clusters = 1
	}
	spreadPx := c.cfg.Scatter.SpreadPx
	interDelay := int64(c.cfg.Scatter.InterDelayMs)

	for i := 0; i < clusters; i++ {
		at := center
		if i > 0 && spreadPx > 0 {
			a := c.deps.Rand.Float64() * 2 * math.Pi
			r := c.deps.Rand.Float64() * spreadPx
			at = center.Add(cp.Vector{X: math.Cos(a) * r, Y: math.Sin(a) * r})
		}
		if i == 0 || interDelay <= 0 {
			c.spawnPatch(at, *spec, payload)
			continue
		}
		patchAt := at
		c.after(interDelay*int64(i), func() {
			c.spawnPatch(patchAt, *spec, payload)
		})
	}
	return true
}

// spawnPatch places one area patch, routing its damage through an
// AreaTrigger so the configured timing and visual synchronization apply.
func (c *Controller) spawnPatch(at cp.Vector, spec AreaSpec, payload Payload) {
	if c.destroyed {
		return
	}
	trig := NewAreaTrigger(c.deps.Clock, spec, func() {
		hits := ApplyAreaDamage(c.deps.Targets, c.deps.Pipeline, AreaDamage{
			Origin:  at,
			Facing:  c.facing(),
			Spec:    spec,
			Payload: payload,
		})
		c.deps.Sink.emit(EventWeaponAOE, WeaponAOE{
			WeaponKey: c.template.Key,
			X:         at.X,
			Y:         at.Y,
			Radius:    spec.Radius,
			Hits:      hits,
		})
	})
	var v Visual
	if c.deps.Visuals != nil && spec.EffectID != "" {
		v = c.deps.Visuals.PlayIfExists(spec.EffectID, at.X, at.Y)
	}
	trig.Attach(v)
	c.trackTrigger(trig)
}

// sweepPlacement damages everything inside a strip through the owner,
// alternating between the horizontal and vertical axis each shot. The
// current axis survives modifier refreshes.
type sweepPlacement struct{}

func (sweepPlacement) fire(c *Controller, now int64) bool {
	payload := c.buildPayload()
	length := c.cfg.Sweep.LengthPx
	if length <= 0 {
		length = 2 * c.cfg.RangePx
	}
	width := c.cfg.Sweep.WidthPx
	if width <= 0 {
		width = 48
	}
	origin := c.origin()
	vertical := c.sweepAxis%2 == 1
	c.sweepAxis++

	maxTargets := c.cfg.Area.MaxTargets
	hits := 0
	c.deps.Targets.ForEachActive(func(t Target) bool {
		if t == nil || !t.Active() || t.HP() <= 0 {
			return true
		}
		dx := t.Pos().X - origin.X
		dy := t.Pos().Y - origin.Y
		along, cross := dx, dy
		if vertical {
			along, cross = dy, dx
		}
		if math.Abs(along) > length/2 || math.Abs(cross) > width/2 {
			return true
		}
		if c.deps.Pipeline != nil && c.deps.Pipeline.ApplyHit(t, payload) {
			hits++
			if maxTargets > 0 && hits >= maxTargets {
				return false
			}
		}
		return true
	})

	c.deps.Sink.emit(EventWeaponAOE, WeaponAOE{
		WeaponKey: c.template.Key,
		X:         origin.X,
		Y:         origin.Y,
		Radius:    length / 2,
		Hits:      hits,
	})
	return true
}

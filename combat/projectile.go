package combat

import (
	"math"

	"github.com/jakecoffman/cp/v2"

	"github.com/milk9111/hordecore/common"
)

const (
	defaultLifetimeMs = 3000
	defaultSettleMs   = 250
	contactRadiusPx   = 4
)

// ProjectileHandle addresses a pooled projectile. Handles are generation
// tagged: once the slot is released and reused, stale handles stop
// resolving instead of touching the new occupant.
type ProjectileHandle struct {
	idx int32
	gen uint32
}

// Valid reports whether the handle ever pointed at a projectile.
func (h ProjectileHandle) Valid() bool {
	return h.gen > 0
}

// ProjectileConfig describes one projectile flight.
type ProjectileConfig struct {
	WeaponKey string
	Origin    cp.Vector
	Angle     float64
	Speed     float64
	// Gravity enables ballistic flight (px/s², y-down). LaunchVel overrides
	// Angle/Speed when set.
	Gravity   float64
	LaunchVel cp.Vector

	LifetimeMs int64
	// SettleMs is the post-apex delay before a ballistic projectile
	// detonates where it is.
	SettleMs int64
	Pierce   int

	RotateToVelocity bool
	SpinRadPerSec    float64

	Payload Payload
	// Area, when enabled, detonates on finalize.
	Area *AreaSpec
	// ImpactEffectID is played fire-and-forget when the projectile lands.
	ImpactEffectID string
	// Reservation, when set, is consumed on the first confirmed hit against
	// its target and cancelled if the flight ends without one.
	Reservation *Reservation
}

type projectile struct {
	gen       uint32
	active    bool
	finalized bool

	cfg   ProjectileConfig
	pos   cp.Vector
	vel   cp.Vector
	angle float64

	remainingHits int
	hitSet        map[uint64]struct{}

	diesAt   int64
	settleAt int64
}

type pendingDetonation struct {
	weaponKey string
	trigger   *AreaTrigger
}

// ProjectilePool owns a fixed-capacity arena of projectile slots shared by
// all projectile-based archetypes.
type ProjectilePool struct {
	deps   Deps
	bounds cp.BB

	slots   []projectile
	free    []int32
	pending []pendingDetonation
}

// NewProjectilePool creates a pool of the given capacity. Projectiles
// leaving bounds finalize immediately.
func NewProjectilePool(deps Deps, capacity int, bounds cp.BB) *ProjectilePool {
	if capacity < 1 {
		capacity = 1
	}
	p := &ProjectilePool{deps: deps, bounds: bounds}
	p.slots = make([]projectile, capacity)
	p.free = make([]int32, 0, capacity)
	for i := capacity - 1; i >= 0; i-- {
		p.slots[i].gen = 1
		p.free = append(p.free, int32(i))
	}
	return p
}

// Fire acquires a slot and launches a projectile. Returns false when the
// pool is exhausted; the attack is simply dropped, never an error.
func (p *ProjectilePool) Fire(cfg ProjectileConfig) (ProjectileHandle, bool) {
	if p == nil || len(p.free) == 0 {
		return ProjectileHandle{}, false
	}
	idx := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]

	s := &p.slots[idx]
	s.active = true
	s.finalized = false
	s.cfg = cfg
	s.pos = cfg.Origin
	s.hitSet = make(map[uint64]struct{})
	s.settleAt = 0

	if cfg.LaunchVel.X != 0 || cfg.LaunchVel.Y != 0 {
		s.vel = cfg.LaunchVel
	} else {
		speed := cfg.Speed
		if !common.IsFinite(speed) || speed < 0 {
			speed = 0
		}
		angle := cfg.Angle
		if !common.IsFinite(angle) {
			angle = 0
		}
		s.vel = cp.Vector{X: math.Cos(angle) * speed, Y: math.Sin(angle) * speed}
	}
	s.angle = math.Atan2(s.vel.Y, s.vel.X)

	s.remainingHits = 1 + cfg.Pierce
	if s.remainingHits < 1 {
		s.remainingHits = 1
	}

	life := cfg.LifetimeMs
	if life <= 0 {
		life = defaultLifetimeMs
	}
	s.diesAt = p.deps.Clock.Now() + life

	return ProjectileHandle{idx: idx, gen: s.gen}, true
}

// Update advances every active projectile by dtMs: integrates kinematics,
// runs contact tests against the target pool, and finalizes flights that
// expired, left bounds, or settled after a ballistic apex.
func (p *ProjectilePool) Update(dtMs int64) {
	if p == nil || dtMs <= 0 {
		return
	}
	now := p.deps.Clock.Now()
	dt := float64(dtMs) / 1000

	for i := range p.slots {
		s := &p.slots[i]
		if !s.active {
			continue
		}

		if s.cfg.Gravity > 0 {
			s.vel.Y += s.cfg.Gravity * dt
			if s.settleAt == 0 && s.vel.Y >= 0 {
				// Apex passed; start the settle timer.
				settle := s.cfg.SettleMs
				if settle <= 0 {
					settle = defaultSettleMs
				}
				s.settleAt = now + settle
			}
		}
		s.pos = s.pos.Add(s.vel.Mult(dt))

		switch {
		case s.cfg.RotateToVelocity:
			if s.vel.LengthSq() > common.Epsilon {
				s.angle = math.Atan2(s.vel.Y, s.vel.X)
			}
		case s.cfg.SpinRadPerSec != 0:
			s.angle = common.NormalizeAngle(s.angle + s.cfg.SpinRadPerSec*dt)
		}

		if now >= s.diesAt || (s.settleAt > 0 && now >= s.settleAt) || !p.inBounds(s.pos) {
			p.finalize(s, s.settleAt > 0 && now >= s.settleAt)
			continue
		}

		p.contactScan(s)
	}
	p.prunePending()
}

// Touch reports an external "projectile touched target" collision for a
// handle. Stale handles are rejected by the generation check. Duplicate
// touches against the same target in one flight are absorbed.
func (p *ProjectilePool) Touch(h ProjectileHandle, t Target) {
	s := p.resolve(h)
	if s == nil {
		return
	}
	p.touch(s, t)
}

// Alive reports whether the handle still addresses an active flight.
func (p *ProjectilePool) Alive(h ProjectileHandle) bool {
	return p.resolve(h) != nil
}

// ActiveCount returns the number of in-flight projectiles.
func (p *ProjectilePool) ActiveCount() int {
	if p == nil {
		return 0
	}
	n := 0
	for i := range p.slots {
		if p.slots[i].active {
			n++
		}
	}
	return n
}

// ForEachActive visits active projectiles, for rendering.
func (p *ProjectilePool) ForEachActive(fn func(pos cp.Vector, angle float64)) {
	if p == nil || fn == nil {
		return
	}
	for i := range p.slots {
		if p.slots[i].active {
			fn(p.slots[i].pos, p.slots[i].angle)
		}
	}
}

// ReleaseOwned quietly finalizes every flight and pending detonation a
// weapon owns. No damage is applied; used on weapon destruction.
func (p *ProjectilePool) ReleaseOwned(weaponKey string) {
	if p == nil {
		return
	}
	for i := range p.slots {
		s := &p.slots[i]
		if s.active && s.cfg.WeaponKey == weaponKey {
			p.releaseQuiet(s)
		}
	}
	kept := p.pending[:0]
	for _, pd := range p.pending {
		if pd.weaponKey == weaponKey {
			pd.trigger.Cancel()
			continue
		}
		kept = append(kept, pd)
	}
	p.pending = kept
}

func (p *ProjectilePool) resolve(h ProjectileHandle) *projectile {
	if p == nil || h.idx < 0 || int(h.idx) >= len(p.slots) {
		return nil
	}
	s := &p.slots[h.idx]
	if !s.active || s.gen != h.gen {
		return nil
	}
	return s
}

func (p *ProjectilePool) inBounds(pos cp.Vector) bool {
	if p.bounds.L == 0 && p.bounds.R == 0 && p.bounds.B == 0 && p.bounds.T == 0 {
		return true
	}
	return pos.X >= p.bounds.L && pos.X <= p.bounds.R && pos.Y >= p.bounds.B && pos.Y <= p.bounds.T
}

func (p *ProjectilePool) contactScan(s *projectile) {
	if p.deps.Targets == nil {
		return
	}
	p.deps.Targets.ForEachActive(func(t Target) bool {
		if !s.active || s.finalized {
			return false
		}
		if t == nil || !t.Active() {
			return true
		}
		if _, seen := s.hitSet[t.ID()]; seen {
			return true
		}
		if s.pos.Distance(t.Pos()) <= t.Radius()+contactRadiusPx {
			p.touch(s, t)
		}
		return true
	})
}

func (p *ProjectilePool) touch(s *projectile, t Target) {
	if s == nil || !s.active || s.finalized || t == nil || !t.Active() {
		return
	}
	id := t.ID()
	if _, seen := s.hitSet[id]; seen {
		return
	}
	s.hitSet[id] = struct{}{}

	applied := false
	if p.deps.Pipeline != nil {
		applied = p.deps.Pipeline.ApplyHit(t, s.cfg.Payload)
	}
	if !applied {
		return
	}
	if s.cfg.Reservation != nil && s.cfg.Reservation.TargetID == id {
		p.deps.Coordinator.Consume(s.cfg.Reservation)
		s.cfg.Reservation = nil
	}
	s.remainingHits--
	if s.remainingHits <= 0 {
		p.finalize(s, true)
	}
}

// finalize is the idempotent terminal transition: the impact-exhaustion,
// lifetime, bounds and settle paths may all race onto the same slot within
// one tick.
func (p *ProjectilePool) finalize(s *projectile, detonate bool) {
	if s == nil || s.finalized || !s.active {
		return
	}
	s.finalized = true

	if s.cfg.Reservation != nil {
		p.deps.Coordinator.Cancel(s.cfg.Reservation)
		s.cfg.Reservation = nil
	}

	if detonate {
		if p.deps.Visuals != nil && s.cfg.ImpactEffectID != "" {
			p.deps.Visuals.PlayIfExists(s.cfg.ImpactEffectID, s.pos.X, s.pos.Y)
		}
		if s.cfg.Area != nil && s.cfg.Area.Enabled {
			p.detonate(s)
		}
	}
	p.release(s)
}

func (p *ProjectilePool) detonate(s *projectile) {
	spec := *s.cfg.Area
	at := s.pos
	payload := s.cfg.Payload
	weaponKey := s.cfg.WeaponKey
	exclude := make(map[uint64]struct{}, len(s.hitSet))
	for id := range s.hitSet {
		exclude[id] = struct{}{}
	}

	trig := NewAreaTrigger(p.deps.Clock, spec, func() {
		hits := ApplyAreaDamage(p.deps.Targets, p.deps.Pipeline, AreaDamage{
			Origin:  at,
			Spec:    spec,
			Payload: payload,
			Exclude: exclude,
		})
		p.deps.Sink.emit(EventWeaponExploded, WeaponExploded{
			WeaponKey: weaponKey,
			X:         at.X,
			Y:         at.Y,
			Radius:    spec.Radius,
			Hits:      hits,
		})
	})
	var v Visual
	if p.deps.Visuals != nil && spec.EffectID != "" {
		v = p.deps.Visuals.PlayIfExists(spec.EffectID, at.X, at.Y)
	}
	trig.Attach(v)
	if !trig.Triggered() {
		p.pending = append(p.pending, pendingDetonation{weaponKey: weaponKey, trigger: trig})
	}
}

func (p *ProjectilePool) releaseQuiet(s *projectile) {
	if s == nil || !s.active {
		return
	}
	s.finalized = true
	if s.cfg.Reservation != nil {
		p.deps.Coordinator.Cancel(s.cfg.Reservation)
		s.cfg.Reservation = nil
	}
	p.release(s)
}

func (p *ProjectilePool) release(s *projectile) {
	if !s.active {
		return
	}
	s.active = false
	s.hitSet = nil
	s.gen++
	for i := range p.slots {
		if &p.slots[i] == s {
			p.free = append(p.free, int32(i))
			break
		}
	}
}

func (p *ProjectilePool) prunePending() {
	kept := p.pending[:0]
	for _, pd := range p.pending {
		if pd.trigger.Triggered() {
			continue
		}
		kept = append(kept, pd)
	}
	p.pending = kept
}

package ecs

import (
	"math/rand"

	"github.com/milk9111/hordecore/combat"
	"github.com/milk9111/hordecore/component"
)

const defaultStatusDurationMs = 2000

// DamageApplier implements combat.DamagePipeline against the world: it
// rolls crits, applies damage to health, stamps status tags and pushes
// world events. Deaths are marked on the health component and swept by
// the world at end of tick.
type DamageApplier struct {
	world *World
	clock combat.Clock
	rng   *rand.Rand

	// StatusDurationMs overrides the default status tag duration.
	StatusDurationMs int64
}

// NewDamageApplier creates a pipeline over the world. A nil rng falls
// back to a fixed-seed source.
func NewDamageApplier(world *World, clock combat.Clock, rng *rand.Rand) *DamageApplier {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &DamageApplier{world: world, clock: clock, rng: rng}
}

// ApplyHit implements combat.DamagePipeline. Returns true when the hit
// landed on a live target.
func (d *DamageApplier) ApplyHit(t combat.Target, p combat.Payload) bool {
	if d == nil || d.world == nil || t == nil {
		return false
	}
	e := EntityFromKey(t.ID())
	if !d.world.IsAlive(e) {
		return false
	}
	h, ok := d.world.Healths.Get(e.ID)
	if !ok || !h.IsAlive() {
		return false
	}
	// Weapons only damage hostiles.
	if f, ok := d.world.Factions.Get(e.ID); ok && f != component.FactionEnemy {
		return false
	}

	amount := p.Damage
	crit := false
	if p.CritChance > 0 && d.rng.Float64() < p.CritChance {
		crit = true
		mult := p.CritMult
		if mult < 1 {
			mult = 1
		}
		amount *= mult
	}
	if !h.ApplyDamage(amount) {
		return false
	}

	if len(p.Status) > 0 {
		d.applyStatuses(e, p.Status)
	}
	d.world.events.Push(Event{Type: EventTargetDamaged, Data: TargetDamaged{
		Entity:    e,
		Amount:    amount,
		Crit:      crit,
		SourceKey: p.SourceKey,
	}})
	return true
}

func (d *DamageApplier) applyStatuses(e Entity, tags []string) {
	st, ok := d.world.Statuses.Get(e.ID)
	if !ok {
		return
	}
	var now int64
	if d.clock != nil {
		now = d.clock.Now()
	}
	dur := d.StatusDurationMs
	if dur <= 0 {
		dur = defaultStatusDurationMs
	}
	for _, tag := range tags {
		st.Apply(tag, now+dur)
	}
}

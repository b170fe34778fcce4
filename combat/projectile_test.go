package combat

import (
	"testing"

	"github.com/jakecoffman/cp/v2"
)

type poolFixture struct {
	clock    *StepClock
	targets  *fakePool
	pipeline *fakePipeline
	coord    *TargetingCoordinator
	events   *eventRecorder
	pool     *ProjectilePool
}

func newPoolFixture(capacity int) *poolFixture {
	f := &poolFixture{
		clock:    NewStepClock(0),
		targets:  &fakePool{},
		pipeline: &fakePipeline{},
		events:   &eventRecorder{},
	}
	f.coord = newCoordinator(f.clock)
	deps := Deps{
		Clock:       f.clock,
		Targets:     f.targets,
		Pipeline:    f.pipeline,
		Coordinator: f.coord,
		Sink:        f.events.sink(),
	}
	bounds := cp.BB{L: -1000, B: -1000, R: 1000, T: 1000}
	f.pool = NewProjectilePool(deps, capacity, bounds)
	return f
}

func (f *poolFixture) step(n int) {
	for i := 0; i < n; i++ {
		f.clock.Advance(16)
		f.pool.Update(16)
	}
}

func TestProjectileHitsTargetOnce(t *testing.T) {
	f := newPoolFixture(8)
	tgt := newFakeTarget(1, 100, 0, 50)
	f.targets.targets = append(f.targets.targets, tgt)

	h, ok := f.pool.Fire(ProjectileConfig{
		WeaponKey: "w",
		Origin:    cp.Vector{},
		Angle:     0,
		Speed:     1000,
		Payload:   Payload{Damage: 10},
	})
	if !ok || !h.Valid() {
		t.Fatal("fire failed")
	}

	f.step(20)
	if got := f.pipeline.hitCount(1); got != 1 {
		t.Fatalf("hits = %d, want exactly 1", got)
	}
	if tgt.hp != 40 {
		t.Errorf("hp = %v, want 40", tgt.hp)
	}
	if f.pool.ActiveCount() != 0 {
		t.Error("exhausted projectile should be released")
	}
}

func TestProjectileDuplicateTouchAbsorbed(t *testing.T) {
	f := newPoolFixture(8)
	tgt := newFakeTarget(1, 500, 0, 50)
	f.targets.targets = append(f.targets.targets, tgt)

	h, _ := f.pool.Fire(ProjectileConfig{
		WeaponKey: "w",
		Speed:     10,
		Pierce:    3,
		Payload:   Payload{Damage: 5},
	})
	f.pool.Touch(h, tgt)
	f.pool.Touch(h, tgt)
	f.pool.Touch(h, tgt)

	if got := f.pipeline.hitCount(1); got != 1 {
		t.Errorf("hits = %d, want 1", got)
	}
}

func TestProjectilePierceBudget(t *testing.T) {
	f := newPoolFixture(8)
	a := newFakeTarget(1, 9999, 0, 50)
	b := newFakeTarget(2, 9999, 0, 50)
	c := newFakeTarget(3, 9999, 0, 50)
	f.targets.targets = append(f.targets.targets, a, b, c)

	h, _ := f.pool.Fire(ProjectileConfig{WeaponKey: "w", Speed: 10, Pierce: 1, Payload: Payload{Damage: 5}})
	f.pool.Touch(h, a)
	if !f.pool.Alive(h) {
		t.Fatal("one hit with pierce 1 should keep flying")
	}
	f.pool.Touch(h, b)
	if f.pool.Alive(h) {
		t.Fatal("pierce budget exhausted, projectile should finalize")
	}
	f.pool.Touch(h, c)
	if f.pipeline.hitCount(3) != 0 {
		t.Error("stale handle touched a target")
	}
}

func TestProjectileLifetimeExpiry(t *testing.T) {
	f := newPoolFixture(8)
	h, _ := f.pool.Fire(ProjectileConfig{WeaponKey: "w", Speed: 1, LifetimeMs: 100, Payload: Payload{Damage: 5}})

	f.step(5)
	if !f.pool.Alive(h) {
		t.Fatal("projectile expired before its lifetime")
	}
	f.step(2)
	if f.pool.Alive(h) {
		t.Error("projectile should expire after its lifetime")
	}
}

func TestProjectileBoundsExit(t *testing.T) {
	f := newPoolFixture(8)
	h, _ := f.pool.Fire(ProjectileConfig{WeaponKey: "w", Angle: 0, Speed: 100000, Payload: Payload{Damage: 5}})

	f.step(2)
	if f.pool.Alive(h) {
		t.Error("projectile past bounds should finalize")
	}
}

func TestProjectileReservationConsumedOnHit(t *testing.T) {
	f := newPoolFixture(8)
	tgt := newFakeTarget(1, 100, 0, 50)
	f.targets.targets = append(f.targets.targets, tgt)

	res := f.coord.Commit("w", tgt, 100, 10)
	f.pool.Fire(ProjectileConfig{
		WeaponKey:   "w",
		Speed:       1000,
		Payload:     Payload{Damage: 10},
		Reservation: res,
	})

	f.step(20)
	if f.coord.Pending() != 0 {
		t.Error("reservation should be consumed on the confirmed hit")
	}
}

func TestProjectileReservationCancelledOnMiss(t *testing.T) {
	f := newPoolFixture(8)
	tgt := newFakeTarget(1, 0, 500, 50)
	f.targets.targets = append(f.targets.targets, tgt)

	res := f.coord.Commit("w", tgt, 100, 10)
	f.pool.Fire(ProjectileConfig{
		WeaponKey:   "w",
		Angle:       0, // flies away from the target
		Speed:       200,
		LifetimeMs:  100,
		Payload:     Payload{Damage: 10},
		Reservation: res,
	})

	f.step(10)
	if f.coord.Pending() != 0 {
		t.Error("reservation of a missed flight should be cancelled")
	}
	if f.pipeline.hitCount(1) != 0 {
		t.Error("no hit should have landed")
	}
}

func TestProjectileStaleHandleRejected(t *testing.T) {
	f := newPoolFixture(1)
	tgt := newFakeTarget(1, 9999, 0, 50)
	f.targets.targets = append(f.targets.targets, tgt)

	h1, _ := f.pool.Fire(ProjectileConfig{WeaponKey: "w", Speed: 10, LifetimeMs: 50, Payload: Payload{Damage: 5}})
	f.step(5) // expires, slot released

	h2, ok := f.pool.Fire(ProjectileConfig{WeaponKey: "w", Speed: 10, Payload: Payload{Damage: 5}})
	if !ok {
		t.Fatal("slot should be reusable")
	}
	if h1 == h2 {
		t.Fatal("reused slot must carry a new generation")
	}

	f.pool.Touch(h1, tgt)
	if f.pipeline.hitCount(1) != 0 {
		t.Error("stale handle must not touch the slot's new occupant")
	}
	if !f.pool.Alive(h2) {
		t.Error("new flight should be unaffected")
	}
}

func TestProjectilePoolExhaustion(t *testing.T) {
	f := newPoolFixture(2)
	for i := 0; i < 2; i++ {
		if _, ok := f.pool.Fire(ProjectileConfig{WeaponKey: "w", Speed: 10}); !ok {
			t.Fatal("pool should have capacity")
		}
	}
	if _, ok := f.pool.Fire(ProjectileConfig{WeaponKey: "w", Speed: 10}); ok {
		t.Error("exhausted pool must drop the attack")
	}
}

func TestBallisticSettleDetonation(t *testing.T) {
	f := newPoolFixture(8)
	bystander := newFakeTarget(1, 40, -40, 50)
	f.targets.targets = append(f.targets.targets, bystander)

	area := &AreaSpec{Enabled: true, Timing: TimingImpact, Radius: 100, DamageMult: 1}
	f.pool.Fire(ProjectileConfig{
		WeaponKey: "w",
		Origin:    cp.Vector{},
		LaunchVel: cp.Vector{X: 50, Y: -400},
		Gravity:   900,
		SettleMs:  100,
		Payload:   Payload{Damage: 10},
		Area:      area,
	})

	// Apex at ~444ms, settle 100ms later.
	f.step(40)
	if f.pool.ActiveCount() != 0 {
		t.Fatal("ballistic flight should settle and finalize")
	}
	if f.events.count(EventWeaponExploded) != 1 {
		t.Fatalf("explosions = %d, want exactly 1", f.events.count(EventWeaponExploded))
	}
}

func TestProjectileImpactAndExpiryRaceOneFinalize(t *testing.T) {
	f := newPoolFixture(1)
	tgt := newFakeTarget(1, 9999, 0, 50)
	f.targets.targets = append(f.targets.targets, tgt)

	area := &AreaSpec{Enabled: true, Timing: TimingImpact, Radius: 100, DamageMult: 1}
	h, ok := f.pool.Fire(ProjectileConfig{
		WeaponKey:  "w",
		Speed:      10,
		LifetimeMs: 16,
		Payload:    Payload{Damage: 10},
		Area:       area,
	})
	if !ok {
		t.Fatal("fire failed")
	}

	// The exhausting hit and the lifetime expiry land on the same tick.
	f.clock.Advance(16)
	f.pool.Touch(h, tgt)
	f.pool.Update(16)

	if got := f.events.count(EventWeaponExploded); got != 1 {
		t.Fatalf("explosions = %d, want exactly 1", got)
	}
	if got := f.pipeline.hitCount(1); got != 1 {
		t.Errorf("hits = %d, want 1", got)
	}
	if f.pool.ActiveCount() != 0 {
		t.Error("finalized flight should be released")
	}
	// A double release would hand the single slot out twice.
	if _, ok := f.pool.Fire(ProjectileConfig{WeaponKey: "w", Speed: 10}); !ok {
		t.Fatal("slot should be free again")
	}
	if _, ok := f.pool.Fire(ProjectileConfig{WeaponKey: "w", Speed: 10}); ok {
		t.Error("capacity-1 pool must hold exactly one flight")
	}
}

func TestDetonationExcludesDirectHit(t *testing.T) {
	f := newPoolFixture(8)
	direct := newFakeTarget(1, 100, 0, 1000)
	bystander := newFakeTarget(2, 130, 0, 1000)
	f.targets.targets = append(f.targets.targets, direct, bystander)

	area := &AreaSpec{Enabled: true, Timing: TimingImpact, Radius: 100, DamageMult: 1}
	f.pool.Fire(ProjectileConfig{
		WeaponKey: "w",
		Speed:     1000,
		Payload:   Payload{Damage: 10},
		Area:      area,
	})

	f.step(20)
	if got := f.pipeline.hitCount(1); got != 1 {
		t.Errorf("direct target hit %d times, want 1 (direct only)", got)
	}
	if got := f.pipeline.hitCount(2); got != 1 {
		t.Errorf("bystander hit %d times, want 1 (area only)", got)
	}
}

func TestReleaseOwnedIsQuiet(t *testing.T) {
	f := newPoolFixture(8)
	tgt := newFakeTarget(1, 100, 0, 50)
	f.targets.targets = append(f.targets.targets, tgt)

	res := f.coord.Commit("mine", tgt, 100, 10)
	area := &AreaSpec{Enabled: true, Timing: TimingImpact, Radius: 100}
	f.pool.Fire(ProjectileConfig{WeaponKey: "mine", Speed: 1000, Payload: Payload{Damage: 10}, Area: area, Reservation: res})
	f.pool.Fire(ProjectileConfig{WeaponKey: "other", Speed: 10, Payload: Payload{Damage: 10}})

	f.pool.ReleaseOwned("mine")

	if f.pool.ActiveCount() != 1 {
		t.Errorf("active = %d, want the other weapon's flight only", f.pool.ActiveCount())
	}
	if f.coord.Pending() != 0 {
		t.Error("owned reservation should be cancelled")
	}
	f.step(20)
	if f.pipeline.hitCount(1) != 0 {
		t.Error("released flight must not deal damage")
	}
	if f.events.count(EventWeaponExploded) != 0 {
		t.Error("released flight must not detonate")
	}
}

func TestProjectileForEachActive(t *testing.T) {
	f := newPoolFixture(8)
	f.pool.Fire(ProjectileConfig{WeaponKey: "w", Speed: 10})
	f.pool.Fire(ProjectileConfig{WeaponKey: "w", Speed: 10})

	n := 0
	f.pool.ForEachActive(func(pos cp.Vector, angle float64) { n++ })
	if n != 2 {
		t.Errorf("visited %d, want 2", n)
	}
}

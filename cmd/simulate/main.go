// Command simulate runs the combat core headless for a fixed number of
// ticks and prints aggregate stats. Useful for balancing weapon files
// without opening a window.
package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/jakecoffman/cp/v2"
	"github.com/sirupsen/logrus"

	"github.com/milk9111/hordecore/combat"
	"github.com/milk9111/hordecore/ecs"
	"github.com/milk9111/hordecore/prefabs"
)

const (
	arenaWidth  = 1280.0
	arenaHeight = 720.0
	tickMs      = 16

	spawnIntervalMs = 900
	targetSpeed     = 40.0
)

type turret struct {
	pos cp.Vector
}

func (t *turret) Pos() cp.Vector  { return t.pos }
func (t *turret) Facing() float64 { return 0 }
func (t *turret) CanFire() bool   { return true }

type stats struct {
	shots      int
	explosions int
	kills      int
	damage     float64
}

func main() {
	ticks := flag.Int("ticks", 3600, "number of 16ms ticks to simulate")
	seed := flag.Int64("seed", 1, "simulation seed")
	weapons := flag.String("weapons", "", "comma-separated weapon keys (default: all)")
	difficulty := flag.Float64("difficulty", 1, "damage difficulty multiplier")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	if *debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	lib := prefabs.LoadLibrary()
	keys := lib.Keys()
	if *weapons != "" {
		keys = keys[:0]
		for _, k := range strings.Split(*weapons, ",") {
			if k = strings.TrimSpace(k); k != "" {
				keys = append(keys, k)
			}
		}
	}

	var st stats
	clock := combat.NewStepClock(0)
	world := ecs.NewWorld()
	rng := rand.New(rand.NewSource(*seed))
	owner := &turret{pos: cp.Vector{X: arenaWidth / 2, Y: arenaHeight / 2}}
	coordinator := combat.NewTargetingCoordinator(clock, combat.TargetingConfig{})
	pipeline := ecs.NewDamageApplier(world, clock, rng)

	deps := combat.Deps{
		Clock:       clock,
		Owner:       owner,
		Targets:     world,
		Pipeline:    pipeline,
		Coordinator: coordinator,
		Sink: func(evt combat.Event) {
			switch evt.Type {
			case combat.EventWeaponFired:
				st.shots++
			case combat.EventWeaponExploded:
				st.explosions++
			}
		},
		Tuning: func() combat.TuningContext {
			return combat.TuningContext{DifficultyMult: *difficulty}
		},
		Rand: rng,
	}
	bounds := cp.BB{L: -64, B: -64, R: arenaWidth + 64, T: arenaHeight + 64}
	pool := combat.NewProjectilePool(deps, 256, bounds)
	deps.Projectiles = pool
	deps.Scheduler = combat.NewCooldownScheduler(*seed)

	var controllers []*combat.Controller
	for _, key := range keys {
		spec, ok := lib.Get(key)
		if !ok {
			logrus.Warnf("unknown weapon %q, skipping", key)
			continue
		}
		controllers = append(controllers, combat.NewController(deps, spec.Weapon, spec.Modifiers))
	}
	if len(controllers) == 0 {
		logrus.Fatal("no weapons loaded")
	}

	var nextSpawnAt int64
	for i := 0; i < *ticks; i++ {
		now := clock.Now()
		if now >= nextSpawnAt {
			nextSpawnAt = now + spawnIntervalMs
			spawnEdgeTarget(world, rng, now)
		}
		moveTargets(world, owner.pos, float64(tickMs)/1000)

		clock.Advance(tickMs)
		for _, c := range controllers {
			c.Update(tickMs)
		}
		pool.Update(tickMs)

		world.SweepDead()
		for _, evt := range world.Events().Drain() {
			switch evt.Type {
			case ecs.EventTargetDamaged:
				st.damage += evt.Data.(ecs.TargetDamaged).Amount
			case ecs.EventTargetDestroyed:
				st.kills++
			}
		}
	}

	elapsed := float64(*ticks) * tickMs / 1000
	fmt.Printf("simulated %d ticks (%.1fs) with %d weapons\n", *ticks, elapsed, len(controllers))
	fmt.Printf("  shots:       %d\n", st.shots)
	fmt.Printf("  explosions:  %d\n", st.explosions)
	fmt.Printf("  kills:       %d (%.2f/s)\n", st.kills, float64(st.kills)/elapsed)
	fmt.Printf("  damage:      %.0f (%.1f dps)\n", st.damage, st.damage/elapsed)
	fmt.Printf("  leftover:    %d targets, %d projectiles, %d reservations\n",
		world.TargetCount(), pool.ActiveCount(), coordinator.Pending())
}

func spawnEdgeTarget(world *ecs.World, rng *rand.Rand, now int64) {
	hp := 20 + float64(now/15000)*10
	var x, y float64
	switch rng.Intn(4) {
	case 0:
		x, y = rng.Float64()*arenaWidth, -20
	case 1:
		x, y = rng.Float64()*arenaWidth, arenaHeight+20
	case 2:
		x, y = -20, rng.Float64()*arenaHeight
	default:
		x, y = arenaWidth+20, rng.Float64()*arenaHeight
	}
	world.SpawnTarget(x, y, 10, hp)
}

func moveTargets(world *ecs.World, to cp.Vector, dt float64) {
	type move struct {
		e    ecs.Entity
		x, y float64
	}
	var moves []move
	world.ForEachActive(func(t combat.Target) bool {
		pos := t.Pos()
		dx := to.X - pos.X
		dy := to.Y - pos.Y
		dist := math.Hypot(dx, dy)
		if dist < 1 {
			return true
		}
		moves = append(moves, move{
			e: ecs.EntityFromKey(t.ID()),
			x: pos.X + dx/dist*targetSpeed*dt,
			y: pos.Y + dy/dist*targetSpeed*dt,
		})
		return true
	})
	for _, m := range moves {
		world.MoveTarget(m.e, m.x, m.y)
	}
}

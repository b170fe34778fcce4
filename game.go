package main

import (
	"fmt"
	"image/color"
	"math"
	"math/rand"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp/v2"
	"github.com/sirupsen/logrus"

	"github.com/milk9111/hordecore/combat"
	"github.com/milk9111/hordecore/ecs"
	"github.com/milk9111/hordecore/prefabs"
)

const (
	baseWidth  = 1280
	baseHeight = 720
	tickMs     = 16

	spawnIntervalMs = 900
	targetSpeed     = 40.0
	poolCapacity    = 256
)

type Game struct {
	clock       *combat.StepClock
	world       *ecs.World
	effects     *Effects
	player      *Player
	pool        *combat.ProjectilePool
	coordinator *combat.TargetingCoordinator
	library     *prefabs.Library
	controllers map[string]*combat.Controller
	watcher     *prefabs.Watcher
	rng         *rand.Rand
	tuning      combat.TuningContext

	nextSpawnAt int64
	shots       int
	kills       int
	debug       bool
}

func NewGame(seed int64, weaponKeys []string, difficulty float64, debug, watch bool) *Game {
	g := &Game{
		clock:       combat.NewStepClock(0),
		world:       ecs.NewWorld(),
		effects:     &Effects{},
		player:      NewPlayer(baseWidth/2, baseHeight/2),
		library:     prefabs.LoadLibrary(),
		controllers: make(map[string]*combat.Controller),
		rng:         rand.New(rand.NewSource(seed)),
		tuning:      combat.TuningContext{DifficultyMult: difficulty},
		debug:       debug,
	}

	g.coordinator = combat.NewTargetingCoordinator(g.clock, combat.TargetingConfig{
		Scorer: g.libraryScorer(),
	})
	pipeline := ecs.NewDamageApplier(g.world, g.clock, g.rng)

	deps := combat.Deps{
		Clock:       g.clock,
		Owner:       g.player,
		Targets:     g.world,
		Pipeline:    pipeline,
		Coordinator: g.coordinator,
		Visuals:     g.effects,
		Sink:        g.onCombatEvent,
		Tuning:      func() combat.TuningContext { return g.tuning },
		Rand:        g.rng,
	}
	bounds := cp.BB{L: -64, B: -64, R: baseWidth + 64, T: baseHeight + 64}
	g.pool = combat.NewProjectilePool(deps, poolCapacity, bounds)
	deps.Projectiles = g.pool
	deps.Scheduler = combat.NewCooldownScheduler(seed)

	if len(weaponKeys) == 0 {
		weaponKeys = g.library.Keys()
	}
	for _, key := range weaponKeys {
		spec, ok := g.library.Get(key)
		if !ok {
			logrus.Warnf("unknown weapon %q, skipping", key)
			continue
		}
		g.controllers[key] = combat.NewController(deps, spec.Weapon, spec.Modifiers)
	}

	if watch {
		w, err := prefabs.NewWatcher(filepath.Join("prefabs", "data"))
		if err != nil {
			logrus.WithError(err).Warn("weapon hot reload disabled")
		} else {
			g.watcher = w
		}
	}

	return g
}

// libraryScorer compiles the first scoring script the library references.
// The coordinator is shared, so one script governs all scored weapons.
func (g *Game) libraryScorer() *combat.ScriptScorer {
	for _, key := range g.library.Keys() {
		spec, _ := g.library.Get(key)
		if spec == nil || spec.ScoreScript == "" {
			continue
		}
		src, err := prefabs.LoadScript(spec.ScoreScript)
		if err != nil {
			logrus.WithError(err).Warnf("score script %s not loadable", spec.ScoreScript)
			continue
		}
		scorer, err := combat.NewScriptScorer(string(src))
		if err != nil {
			logrus.WithError(err).Warnf("score script %s not compilable", spec.ScoreScript)
			continue
		}
		return scorer
	}
	return nil
}

func (g *Game) onCombatEvent(evt combat.Event) {
	if evt.Type == combat.EventWeaponFired {
		g.shots++
	}
	if g.debug {
		logrus.WithField("data", evt.Data).Debug(evt.Type)
	}
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.clock.SetPaused(!g.clock.Paused())
	}
	g.pollReload()

	if g.clock.Paused() {
		return nil
	}

	dt := float64(tickMs) / 1000
	g.player.Update(dt)
	g.spawnTargets()
	g.moveTargets(dt)

	g.clock.Advance(tickMs)
	for _, c := range g.controllers {
		c.Update(tickMs)
	}
	g.pool.Update(tickMs)
	g.effects.Update()

	g.world.SweepDead()
	for _, evt := range g.world.Events().Drain() {
		if evt.Type == ecs.EventTargetDestroyed {
			g.kills++
		}
	}
	return nil
}

// pollReload drains watcher events and pushes edited templates into live
// controllers without touching their cadence state.
func (g *Game) pollReload() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case path, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			name := filepath.Base(path)
			if err := g.library.Reload(name); err != nil {
				logrus.WithError(err).Warnf("reload of %s failed, keeping previous", name)
				continue
			}
			for key, c := range g.controllers {
				spec, ok := g.library.Get(key)
				if !ok {
					continue
				}
				c.SetTemplate(spec.Weapon)
				c.SetModifiers(spec.Modifiers)
			}
			logrus.Infof("reloaded %s", name)
		case err := <-g.watcher.Errors:
			if err != nil {
				logrus.WithError(err).Warn("weapon watcher error")
			}
		default:
			return
		}
	}
}

func (g *Game) spawnTargets() {
	now := g.clock.Now()
	if now < g.nextSpawnAt {
		return
	}
	g.nextSpawnAt = now + spawnIntervalMs

	// Spawn on a random screen edge, health creeping up over time.
	hp := 20 + float64(now/15000)*10
	var x, y float64
	switch g.rng.Intn(4) {
	case 0:
		x, y = g.rng.Float64()*baseWidth, -20
	case 1:
		x, y = g.rng.Float64()*baseWidth, baseHeight+20
	case 2:
		x, y = -20, g.rng.Float64()*baseHeight
	default:
		x, y = baseWidth+20, g.rng.Float64()*baseHeight
	}
	g.world.SpawnTarget(x, y, 10, hp)
}

func (g *Game) moveTargets(dt float64) {
	now := g.clock.Now()
	type move struct {
		e    ecs.Entity
		x, y float64
	}
	var moves []move
	g.world.ForEachActive(func(t combat.Target) bool {
		e := ecs.EntityFromKey(t.ID())
		speed := targetSpeed
		if st, ok := g.world.Statuses.Get(e.ID); ok && st.Has("slow", now) {
			speed *= 0.5
		}
		pos := t.Pos()
		dx := g.player.Pos().X - pos.X
		dy := g.player.Pos().Y - pos.Y
		dist := math.Hypot(dx, dy)
		if dist < 1 {
			return true
		}
		moves = append(moves, move{
			e: e,
			x: pos.X + dx/dist*speed*dt,
			y: pos.Y + dy/dist*speed*dt,
		})
		return true
	})
	for _, m := range moves {
		g.world.MoveTarget(m.e, m.x, m.y)
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 18, G: 18, B: 24, A: 255})

	g.world.ForEachActive(func(t combat.Target) bool {
		pos := t.Pos()
		vector.DrawFilledCircle(screen, float32(pos.X), float32(pos.Y), float32(t.Radius()), color.RGBA{R: 200, G: 60, B: 60, A: 255}, true)
		return true
	})

	g.pool.ForEachActive(func(pos cp.Vector, angle float64) {
		vector.DrawFilledCircle(screen, float32(pos.X), float32(pos.Y), 3, color.RGBA{R: 240, G: 240, B: 160, A: 255}, true)
	})

	g.effects.Draw(screen)

	p := g.player.Pos()
	vector.DrawFilledCircle(screen, float32(p.X), float32(p.Y), 8, color.White, true)
	fx := p.X + math.Cos(g.player.Facing())*16
	fy := p.Y + math.Sin(g.player.Facing())*16
	vector.StrokeLine(screen, float32(p.X), float32(p.Y), float32(fx), float32(fy), 2, color.White, true)

	status := fmt.Sprintf("FPS: %.1f  targets: %d  shots: %d  kills: %d  projectiles: %d",
		ebiten.ActualFPS(), g.world.TargetCount(), g.shots, g.kills, g.pool.ActiveCount())
	if g.clock.Paused() {
		status += "  [PAUSED]"
	}
	ebitenutil.DebugPrint(screen, status)
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return baseWidth, baseHeight
}

package ecs

import (
	"github.com/jakecoffman/cp/v2"

	"github.com/milk9111/hordecore/combat"
	"github.com/milk9111/hordecore/component"
)

// World owns the live target pool: entities, their components, the spatial
// index and the world event queue. It implements combat.TargetPool (plus
// the nearest-query fast path) for the combat core.
type World struct {
	entities entityStore
	events   EventQueue

	Transforms *Table[*component.Transform]
	Healths    *Table[*component.Health]
	Bodies     *Table[*component.Body]
	Statuses   *Table[*component.Statuses]
	Factions   *Table[component.Faction]

	spatial *SpatialIndex
}

// NewWorld creates an empty world.
func NewWorld() *World {
	return &World{
		Transforms: NewTable[*component.Transform](),
		Healths:    NewTable[*component.Health](),
		Bodies:     NewTable[*component.Body](),
		Statuses:   NewTable[*component.Statuses](),
		Factions:   NewTable[component.Faction](),
		spatial:    NewSpatialIndex(),
	}
}

// Events returns the world event queue.
func (w *World) Events() *EventQueue {
	if w == nil {
		return nil
	}
	return &w.events
}

// IsAlive reports whether an entity handle is still valid.
func (w *World) IsAlive(e Entity) bool {
	return w != nil && w.entities.isAlive(e)
}

// SpawnTarget creates a hostile target with position, footprint and health.
func (w *World) SpawnTarget(x, y, radius, hp float64) Entity {
	if w == nil {
		return Entity{}
	}
	e := w.entities.create()
	w.Transforms.Set(e.ID, &component.Transform{X: x, Y: y})
	w.Healths.Set(e.ID, component.NewHealth(hp))
	w.Bodies.Set(e.ID, &component.Body{Radius: radius})
	w.Statuses.Set(e.ID, component.NewStatuses())
	w.Factions.Set(e.ID, component.FactionEnemy)
	w.spatial.Add(e, x, y, radius)
	return e
}

// DestroyEntity removes an entity and all its components.
func (w *World) DestroyEntity(e Entity) bool {
	if w == nil || !w.entities.destroy(e) {
		return false
	}
	w.Transforms.Remove(e.ID)
	w.Healths.Remove(e.ID)
	w.Bodies.Remove(e.ID)
	w.Statuses.Remove(e.ID)
	w.Factions.Remove(e.ID)
	w.spatial.Remove(e)
	return true
}

// MoveTarget sets a target's position and keeps the spatial index current.
func (w *World) MoveTarget(e Entity, x, y float64) {
	if w == nil || !w.IsAlive(e) {
		return
	}
	if tr, ok := w.Transforms.Get(e.ID); ok {
		tr.X = x
		tr.Y = y
	}
	w.spatial.Move(e, x, y)
}

// SweepDead destroys every entity whose health ran out, emitting destroyed
// events. Deferred to a sweep so damage application never mutates tables
// mid-iteration.
func (w *World) SweepDead() int {
	if w == nil {
		return 0
	}
	var dead []Entity
	w.Healths.ForEach(func(id int, h *component.Health) bool {
		if h != nil && h.Dead {
			dead = append(dead, Entity{ID: id, Gen: w.entities.gen[id-1]})
		}
		return true
	})
	for _, e := range dead {
		w.events.Push(Event{Type: EventTargetDestroyed, Data: TargetDestroyed{Entity: e}})
		w.DestroyEntity(e)
	}
	return len(dead)
}

// TargetCount returns the number of live targets.
func (w *World) TargetCount() int {
	if w == nil {
		return 0
	}
	n := 0
	w.Healths.ForEach(func(_ int, h *component.Health) bool {
		if h.IsAlive() {
			n++
		}
		return true
	})
	return n
}

// Target returns the combat view of an entity.
func (w *World) Target(e Entity) combat.Target {
	return targetView{w: w, e: e}
}

// ForEachActive implements combat.TargetPool.
func (w *World) ForEachActive(fn func(combat.Target) bool) {
	if w == nil || fn == nil {
		return
	}
	// Snapshot ids first; visitors may apply damage, which must not mutate
	// the table mid-iteration (deaths are swept later).
	live := make([]Entity, 0, w.Healths.Len())
	w.Healths.ForEach(func(id int, h *component.Health) bool {
		if h.IsAlive() {
			live = append(live, Entity{ID: id, Gen: w.entities.gen[id-1]})
		}
		return true
	})
	for _, e := range live {
		if !fn(targetView{w: w, e: e}) {
			return
		}
	}
}

// Nearest implements combat.NearestQuerier via the spatial index.
func (w *World) Nearest(from cp.Vector, maxDist float64) combat.Target {
	if w == nil {
		return nil
	}
	e := w.spatial.Nearest(from, maxDist)
	if !e.Valid() {
		return nil
	}
	tv := targetView{w: w, e: e}
	if !tv.Active() || tv.HP() <= 0 {
		// The index may still hold a dying target this tick; fall back to
		// a scan so callers never see a dead nearest.
		var best combat.Target
		bestDist := maxDist
		w.ForEachActive(func(t combat.Target) bool {
			d := t.Pos().Distance(from)
			if d <= bestDist {
				bestDist = d
				best = t
			}
			return true
		})
		return best
	}
	return tv
}

// ForEachInRange implements combat.RangeQuerier via the spatial index, so
// candidate gathering does not scan the whole pool.
func (w *World) ForEachInRange(center cp.Vector, radius float64, fn func(combat.Target) bool) {
	if w == nil || fn == nil {
		return
	}
	w.spatial.InRange(center, radius, func(e Entity) bool {
		tv := targetView{w: w, e: e}
		if !tv.Active() {
			return true
		}
		return fn(tv)
	})
}

// targetView adapts one entity to combat.Target.
type targetView struct {
	w *World
	e Entity
}

func (t targetView) ID() uint64 {
	return t.e.Key()
}

func (t targetView) Pos() cp.Vector {
	if tr, ok := t.w.Transforms.Get(t.e.ID); ok {
		return cp.Vector{X: tr.X, Y: tr.Y}
	}
	return cp.Vector{}
}

func (t targetView) Radius() float64 {
	if b, ok := t.w.Bodies.Get(t.e.ID); ok {
		return b.Radius
	}
	return 0
}

func (t targetView) HP() float64 {
	if h, ok := t.w.Healths.Get(t.e.ID); ok {
		return h.Current
	}
	return 0
}

func (t targetView) Active() bool {
	if !t.w.IsAlive(t.e) {
		return false
	}
	h, ok := t.w.Healths.Get(t.e.ID)
	return ok && h.IsAlive()
}

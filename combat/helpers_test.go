package combat

import (
	"github.com/jakecoffman/cp/v2"
)

// fakeTarget is a mutable in-memory target.
type fakeTarget struct {
	id     uint64
	pos    cp.Vector
	radius float64
	hp     float64
	active bool
}

func newFakeTarget(id uint64, x, y, hp float64) *fakeTarget {
	return &fakeTarget{id: id, pos: cp.Vector{X: x, Y: y}, radius: 8, hp: hp, active: true}
}

func (t *fakeTarget) ID() uint64      { return t.id }
func (t *fakeTarget) Pos() cp.Vector  { return t.pos }
func (t *fakeTarget) Radius() float64 { return t.radius }
func (t *fakeTarget) HP() float64     { return t.hp }
func (t *fakeTarget) Active() bool    { return t.active && t.hp > 0 }

// fakePool is a slice-backed target pool.
type fakePool struct {
	targets []*fakeTarget
}

func (p *fakePool) ForEachActive(fn func(Target) bool) {
	for _, t := range p.targets {
		if !t.Active() {
			continue
		}
		if !fn(t) {
			return
		}
	}
}

type hitRecord struct {
	targetID uint64
	payload  Payload
}

// fakePipeline records hits and reduces target health like the real one.
type fakePipeline struct {
	hits []hitRecord
	// reject makes every ApplyHit a no-op when true.
	reject bool
}

func (p *fakePipeline) ApplyHit(t Target, payload Payload) bool {
	if p.reject || t == nil || !t.Active() {
		return false
	}
	p.hits = append(p.hits, hitRecord{targetID: t.ID(), payload: payload})
	if ft, ok := t.(*fakeTarget); ok {
		ft.hp -= payload.Damage
		if ft.hp < 0 {
			ft.hp = 0
		}
	}
	return true
}

func (p *fakePipeline) hitCount(id uint64) int {
	n := 0
	for _, h := range p.hits {
		if h.targetID == id {
			n++
		}
	}
	return n
}

func (p *fakePipeline) totalDamage(id uint64) float64 {
	var sum float64
	for _, h := range p.hits {
		if h.targetID == id {
			sum += h.payload.Damage
		}
	}
	return sum
}

// fakeOwner is a stationary weapon carrier.
type fakeOwner struct {
	pos     cp.Vector
	facing  float64
	blocked bool
}

func (o *fakeOwner) Pos() cp.Vector  { return o.pos }
func (o *fakeOwner) Facing() float64 { return o.facing }
func (o *fakeOwner) CanFire() bool   { return !o.blocked }

// fakeVisual is a hand-driven effect instance. Tests push frames and
// completion explicitly.
type fakeVisual struct {
	playing    bool
	onProgress []func(int)
	onComplete []func()
}

func (v *fakeVisual) Played() bool { return v.playing }

func (v *fakeVisual) OnProgress(fn func(int)) {
	v.onProgress = append(v.onProgress, fn)
}

func (v *fakeVisual) OnComplete(fn func()) {
	v.onComplete = append(v.onComplete, fn)
}

func (v *fakeVisual) progress(frame int) {
	for _, fn := range v.onProgress {
		fn(frame)
	}
}

func (v *fakeVisual) complete() {
	for _, fn := range v.onComplete {
		fn()
	}
}

// fakeVisualHost spawns fakeVisuals for known effect ids.
type fakeVisualHost struct {
	known   map[string]bool
	spawned []*fakeVisual
}

func (h *fakeVisualHost) PlayIfExists(effectID string, x, y float64) Visual {
	if h.known != nil && !h.known[effectID] {
		return nil
	}
	v := &fakeVisual{playing: true}
	h.spawned = append(h.spawned, v)
	return v
}

// eventRecorder collects emitted events.
type eventRecorder struct {
	events []Event
}

func (r *eventRecorder) sink() Sink {
	return func(e Event) { r.events = append(r.events, e) }
}

func (r *eventRecorder) count(evtType string) int {
	n := 0
	for _, e := range r.events {
		if e.Type == evtType {
			n++
		}
	}
	return n
}

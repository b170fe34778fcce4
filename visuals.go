package main

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/milk9111/hordecore/combat"
	"github.com/milk9111/hordecore/common"
)

// effectDef is a procedural effect: an expanding ring played over a fixed
// frame count. There are no sprite sheets; everything is drawn with vector
// primitives.
type effectDef struct {
	frames int
	radius float32
	color  color.RGBA
}

var effectDefs = map[string]effectDef{
	"explosion_big":   {frames: 10, radius: 90, color: color.RGBA{R: 255, G: 140, B: 40, A: 255}},
	"explosion_small": {frames: 8, radius: 60, color: color.RGBA{R: 255, G: 200, B: 80, A: 255}},
	"slash":           {frames: 6, radius: 70, color: color.RGBA{R: 200, G: 220, B: 255, A: 255}},
	"spark":           {frames: 5, radius: 30, color: color.RGBA{R: 120, G: 200, B: 255, A: 255}},
}

type effectInstance struct {
	def   effectDef
	x, y  float64
	frame int
	done  bool

	onProgress []func(frame int)
	onComplete []func()
}

func (e *effectInstance) Played() bool {
	return e != nil
}

func (e *effectInstance) OnProgress(fn func(frame int)) {
	if e == nil || fn == nil {
		return
	}
	if e.done {
		fn(e.frame)
		return
	}
	e.onProgress = append(e.onProgress, fn)
}

func (e *effectInstance) OnComplete(fn func()) {
	if e == nil || fn == nil {
		return
	}
	if e.done {
		fn()
		return
	}
	e.onComplete = append(e.onComplete, fn)
}

func (e *effectInstance) advance() {
	if e.done {
		return
	}
	e.frame++
	for _, fn := range e.onProgress {
		fn(e.frame)
	}
	if e.frame >= e.def.frames {
		e.done = true
		e.onProgress = nil
		for _, fn := range e.onComplete {
			fn()
		}
		e.onComplete = nil
	}
}

// Effects is the game's visual host: it spawns procedural effect instances
// and steps their playback once per tick.
type Effects struct {
	active []*effectInstance
}

// PlayIfExists implements combat.VisualHost. Unknown effect ids return nil.
func (fx *Effects) PlayIfExists(effectID string, x, y float64) combat.Visual {
	def, ok := effectDefs[effectID]
	if !ok {
		return nil
	}
	inst := &effectInstance{def: def, x: x, y: y}
	fx.active = append(fx.active, inst)
	return inst
}

// Update advances playback one frame for every active effect.
func (fx *Effects) Update() {
	kept := fx.active[:0]
	for _, e := range fx.active {
		e.advance()
		if !e.done {
			kept = append(kept, e)
		}
	}
	fx.active = kept
}

// Draw renders every active effect as an expanding ring.
func (fx *Effects) Draw(screen *ebiten.Image) {
	for _, e := range fx.active {
		t := float64(e.frame) / float64(e.def.frames)
		r := float32(common.Lerp(0, float64(e.def.radius), t))
		c := e.def.color
		c.A = uint8(common.Lerp(255, 0, t))
		vector.StrokeCircle(screen, float32(e.x), float32(e.y), r, 3, c, true)
	}
}

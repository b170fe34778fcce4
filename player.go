package main

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/jakecoffman/cp/v2"

	"github.com/milk9111/hordecore/common"
)

const playerSpeed = 180.0

// Player is the weapon carrier the demo drives around. It satisfies the
// combat owner contract: position, facing and the may-I-act gate.
type Player struct {
	pos    cp.Vector
	facing float64
	alive  bool
}

func NewPlayer(x, y float64) *Player {
	return &Player{pos: cp.Vector{X: x, Y: y}, alive: true}
}

// Pos returns the player's position.
func (p *Player) Pos() cp.Vector {
	return p.pos
}

// Facing returns the player's facing in radians.
func (p *Player) Facing() float64 {
	return p.facing
}

// CanFire reports whether weapons may act this tick.
func (p *Player) CanFire() bool {
	return p.alive
}

// Update applies one tick of keyboard movement. Facing follows the last
// movement direction so facing-aimed weapons stay useful while standing
// still.
func (p *Player) Update(dt float64) {
	var dx, dy float64
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		dx -= 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		dx += 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		dy -= 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		dy += 1
	}
	if dx == 0 && dy == 0 {
		return
	}

	mag := math.Hypot(dx, dy)
	p.pos.X += dx / mag * playerSpeed * dt
	p.pos.Y += dy / mag * playerSpeed * dt
	p.facing = math.Atan2(dy, dx)

	p.pos.X = common.Clamp(p.pos.X, 0, baseWidth)
	p.pos.Y = common.Clamp(p.pos.Y, 0, baseHeight)
}

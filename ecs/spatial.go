package ecs

import (
	"github.com/jakecoffman/cp/v2"
)

// SpatialIndex owns a Chipmunk space holding one circle shape per target,
// so nearest/range queries do not scan the whole pool. The space is query
// only; nothing in it simulates.
type SpatialIndex struct {
	space         *cp.Space
	shapeToEntity map[*cp.Shape]Entity
	entityToShape map[Entity]*cp.Shape
}

// NewSpatialIndex creates an empty index.
func NewSpatialIndex() *SpatialIndex {
	return &SpatialIndex{
		space:         cp.NewSpace(),
		shapeToEntity: make(map[*cp.Shape]Entity),
		entityToShape: make(map[Entity]*cp.Shape),
	}
}

// Add registers an entity's footprint.
func (si *SpatialIndex) Add(e Entity, x, y, radius float64) {
	if si == nil || !e.Valid() {
		return
	}
	si.Remove(e)
	body := cp.NewStaticBody()
	body.SetPosition(cp.Vector{X: x, Y: y})
	shape := cp.NewCircle(body, radius, cp.Vector{})
	shape.SetSensor(true)
	si.space.AddBody(body)
	si.space.AddShape(shape)
	si.shapeToEntity[shape] = e
	si.entityToShape[e] = shape
}

// Move updates an entity's position and reindexes its shape.
func (si *SpatialIndex) Move(e Entity, x, y float64) {
	if si == nil {
		return
	}
	shape, ok := si.entityToShape[e]
	if !ok {
		return
	}
	shape.Body().SetPosition(cp.Vector{X: x, Y: y})
	si.space.ReindexShape(shape)
}

// Remove drops an entity from the index.
func (si *SpatialIndex) Remove(e Entity) {
	if si == nil {
		return
	}
	shape, ok := si.entityToShape[e]
	if !ok {
		return
	}
	si.space.RemoveShape(shape)
	si.space.RemoveBody(shape.Body())
	delete(si.shapeToEntity, shape)
	delete(si.entityToShape, e)
}

// Nearest returns the entity closest to a point within maxDist, or an
// invalid entity when none is in range.
func (si *SpatialIndex) Nearest(from cp.Vector, maxDist float64) Entity {
	if si == nil || maxDist <= 0 {
		return Entity{}
	}
	info := si.space.PointQueryNearest(from, maxDist, cp.SHAPE_FILTER_ALL)
	if info == nil || info.Shape == nil {
		return Entity{}
	}
	return si.shapeToEntity[info.Shape]
}

// InRange visits every entity whose footprint intersects the circle.
func (si *SpatialIndex) InRange(center cp.Vector, radius float64, fn func(Entity) bool) {
	if si == nil || fn == nil || radius <= 0 {
		return
	}
	bb := cp.BB{L: center.X - radius, B: center.Y - radius, R: center.X + radius, T: center.Y + radius}
	stop := false
	si.space.BBQuery(bb, cp.SHAPE_FILTER_ALL, func(shape *cp.Shape, _ interface{}) {
		if stop {
			return
		}
		e, ok := si.shapeToEntity[shape]
		if !ok {
			return
		}
		if shape.Body().Position().Distance(center) > radius {
			return
		}
		if !fn(e) {
			stop = true
		}
	}, nil)
}

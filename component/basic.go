package component

// Transform is a world-space position.
type Transform struct {
	X, Y float64
}

// Body is the circular collision footprint used for overlap tests.
type Body struct {
	Radius float64
}

// Faction identifies teams for friendly-fire checks.
type Faction int

const (
	FactionNeutral Faction = iota
	FactionPlayer
	FactionEnemy
)

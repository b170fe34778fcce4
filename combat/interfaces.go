package combat

import "github.com/jakecoffman/cp/v2"

// Owner is the entity a weapon is mounted on. Facing is in radians.
type Owner interface {
	Pos() cp.Vector
	Facing() float64
	CanFire() bool
}

// Target is a live hostile entity a weapon may damage.
type Target interface {
	ID() uint64
	Pos() cp.Vector
	Radius() float64
	HP() float64
	Active() bool
}

// TargetPool enumerates active targets. The visitor returns false to stop.
type TargetPool interface {
	ForEachActive(fn func(Target) bool)
}

// NearestQuerier is an optional fast path a TargetPool may implement to
// answer nearest-target queries without a full scan.
type NearestQuerier interface {
	Nearest(from cp.Vector, maxDist float64) Target
}

// RangeQuerier is an optional fast path a TargetPool may implement to
// visit active targets within a radius without a full scan.
type RangeQuerier interface {
	ForEachInRange(center cp.Vector, radius float64, fn func(Target) bool)
}

// DamagePipeline applies a payload to one target and reports whether the
// hit landed. A false return is a no-op, not an error.
type DamagePipeline interface {
	ApplyHit(t Target, p Payload) bool
}

// TimerHandle cancels a pending delayed call. Cancel is idempotent.
type TimerHandle interface {
	Cancel()
}

// Clock provides monotonic millisecond time and cancellable delayed calls.
// Time only advances while the simulation is unpaused.
type Clock interface {
	Now() int64
	DelayedCall(delayMs int64, fn func()) TimerHandle
}

// Visual is a transient effect instance whose playback the core may
// observe. Implementations call the registered callbacks at most once per
// registration; a visual that never plays simply never calls them.
type Visual interface {
	Played() bool
	OnProgress(fn func(frame int))
	OnComplete(fn func())
}

// VisualHost spawns effect visuals by id. It may return nil when the asset
// is missing; damage must never depend on the visual existing.
type VisualHost interface {
	PlayIfExists(effectID string, x, y float64) Visual
}

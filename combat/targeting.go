package combat

import (
	"math"
	"sort"

	"github.com/jakecoffman/cp/v2"

	"github.com/milk9111/hordecore/common"
)

// Reservation is a ledger entry predicting a future attack's damage against
// a specific target at a specific time. Reservations let independently
// scheduled weapons reason about each other's in-flight damage without any
// shared locking: committed damage is counted in scoring until the hit is
// confirmed (consumed) or the entry times out (pruned), never twice.
type Reservation struct {
	WeaponKey        string
	TargetID         uint64
	ExpectedImpactAt int64
	PredictedDamage  float64

	consumed bool
}

// ScoreWeights are the tuning constants of the target scorer. They are
// deliberately configurable rather than baked in; the defaults satisfy the
// documented behavior but carry no claim of balance.
type ScoreWeights struct {
	// OverkillPenalty scales the penalty per point of damage already
	// committed beyond the target's predicted death.
	OverkillPenalty float64
	// MildOverkillPenalty is the flat penalty for targets predicted to die
	// within tolerance of the committed damage.
	MildOverkillPenalty float64
	// KillshotBonus scales the reward for finishing a target whose
	// predicted health fits inside the killshot window.
	KillshotBonus float64
	// IncomingPenalty scales the penalty by the ratio of committed damage
	// to current health on otherwise healthy targets.
	IncomingPenalty float64
	// OverkillTolerance is the damage beyond death tolerated before the
	// severe overkill penalty kicks in.
	OverkillTolerance float64
	// KillshotWindow bounds the "kill is imminent" band. Zero means the
	// prospective shot's own damage.
	KillshotWindow float64
}

// DefaultScoreWeights returns the stock scorer tuning.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		OverkillPenalty:     12,
		MildOverkillPenalty: 80,
		KillshotBonus:       120,
		IncomingPenalty:     60,
		OverkillTolerance:   4,
	}
}

// TargetingConfig configures a coordinator.
type TargetingConfig struct {
	// CandidateCount caps how many nearest targets are scored per fire
	// attempt. Zero or negative disables scoring entirely (plain nearest).
	CandidateCount int
	// ToleranceMs is the impact-time window within which reservations
	// count toward predicted damage.
	ToleranceMs int64
	// PruneGraceMs is how long past its expected impact a reservation
	// survives before pruning.
	PruneGraceMs int64
	Weights      ScoreWeights
	// Scorer optionally replaces the built-in scoring with a script.
	Scorer *ScriptScorer
}

func (c TargetingConfig) withDefaults() TargetingConfig {
	if c.CandidateCount == 0 {
		c.CandidateCount = 6
	}
	if c.ToleranceMs <= 0 {
		c.ToleranceMs = 400
	}
	if c.PruneGraceMs <= 0 {
		c.PruneGraceMs = 600
	}
	if c.Weights == (ScoreWeights{}) {
		c.Weights = DefaultScoreWeights()
	}
	return c
}

// TargetingCoordinator is shared by all weapon controllers. It scores and
// selects targets so independent weapons do not concentrate lethal damage
// on one near-dead target, while still rewarding legitimate finishing
// blows.
type TargetingCoordinator struct {
	clock  Clock
	cfg    TargetingConfig
	ledger []*Reservation
}

// NewTargetingCoordinator creates a coordinator on the given clock.
func NewTargetingCoordinator(clock Clock, cfg TargetingConfig) *TargetingCoordinator {
	return &TargetingCoordinator{clock: clock, cfg: cfg.withDefaults()}
}

// Prune drops consumed reservations and reservations whose expected impact
// passed more than the grace window ago. Safe to call repeatedly.
func (c *TargetingCoordinator) Prune(now int64) {
	if c == nil {
		return
	}
	kept := c.ledger[:0]
	for _, r := range c.ledger {
		if r.consumed || r.ExpectedImpactAt+c.cfg.PruneGraceMs < now {
			continue
		}
		kept = append(kept, r)
	}
	c.ledger = kept
}

// PredictedDamageBefore sums unconsumed reserved damage against a target
// whose expected impact falls within toleranceMs of impactAt. A
// non-positive tolerance uses the coordinator default.
func (c *TargetingCoordinator) PredictedDamageBefore(targetID uint64, impactAt, toleranceMs int64) float64 {
	if c == nil {
		return 0
	}
	if toleranceMs <= 0 {
		toleranceMs = c.cfg.ToleranceMs
	}
	var sum float64
	for _, r := range c.ledger {
		if r.consumed || r.TargetID != targetID {
			continue
		}
		d := r.ExpectedImpactAt - impactAt
		if d < 0 {
			d = -d
		}
		if d <= toleranceMs {
			sum += r.PredictedDamage
		}
	}
	return sum
}

// Commit records a reservation for an attack that has been launched toward
// a target but has not landed yet.
func (c *TargetingCoordinator) Commit(weaponKey string, t Target, impactAt int64, predicted float64) *Reservation {
	if c == nil || t == nil || predicted <= 0 {
		return nil
	}
	r := &Reservation{
		WeaponKey:        weaponKey,
		TargetID:         t.ID(),
		ExpectedImpactAt: impactAt,
		PredictedDamage:  predicted,
	}
	c.ledger = append(c.ledger, r)
	return r
}

// Consume removes a reservation after its hit was confirmed. Idempotent.
func (c *TargetingCoordinator) Consume(r *Reservation) {
	c.release(r)
}

// Cancel removes a reservation whose attack will never land. Idempotent.
func (c *TargetingCoordinator) Cancel(r *Reservation) {
	c.release(r)
}

func (c *TargetingCoordinator) release(r *Reservation) {
	if c == nil || r == nil || r.consumed {
		return
	}
	r.consumed = true
	for i, lr := range c.ledger {
		if lr == r {
			c.ledger = append(c.ledger[:i], c.ledger[i+1:]...)
			break
		}
	}
}

// CancelWeapon drops every unconsumed reservation a weapon holds. Used on
// weapon destruction so stale predictions do not skew scoring.
func (c *TargetingCoordinator) CancelWeapon(weaponKey string) {
	if c == nil {
		return
	}
	kept := c.ledger[:0]
	for _, r := range c.ledger {
		if r.WeaponKey == weaponKey {
			r.consumed = true
			continue
		}
		kept = append(kept, r)
	}
	c.ledger = kept
}

// Pending returns the number of unconsumed reservations (all targets).
func (c *TargetingCoordinator) Pending() int {
	if c == nil {
		return 0
	}
	return len(c.ledger)
}

type candidate struct {
	target   Target
	dist     float64
	etaMs    int64
	impactAt int64
	score    float64
}

// SelectTarget picks the best target for a prospective shot of shotDamage
// launched from `from` at speedPxPerSec (0 or negative means the hit is
// instantaneous). It returns the target and the predicted impact time.
func (c *TargetingCoordinator) SelectTarget(pool TargetPool, from cp.Vector, rangePx, speedPxPerSec, shotDamage float64) (Target, int64, bool) {
	if c == nil || pool == nil {
		return nil, 0, false
	}
	now := c.clock.Now()
	c.Prune(now)

	cands := gatherCandidates(pool, from, rangePx, c.cfg.CandidateCount)
	if len(cands) == 0 {
		return nil, 0, false
	}

	for i := range cands {
		cand := &cands[i]
		if speedPxPerSec > common.Epsilon && common.IsFinite(cand.dist) {
			cand.etaMs = int64(math.Round(cand.dist / speedPxPerSec * 1000))
		}
		cand.impactAt = now + cand.etaMs
		cand.score = c.scoreCandidate(cand, shotDamage)
	}

	// With no scoring pressure at all, plain nearest wins by construction;
	// candidates are already distance-sorted, so ties break toward index 0.
	best := 0
	for i := 1; i < len(cands); i++ {
		if cands[i].score > cands[best].score {
			best = i
		}
	}
	return cands[best].target, cands[best].impactAt, true
}

func (c *TargetingCoordinator) scoreCandidate(cand *candidate, shotDamage float64) float64 {
	already := c.PredictedDamageBefore(cand.target.ID(), cand.impactAt, c.cfg.ToleranceMs)
	hp := cand.target.HP()
	predictedHP := hp - already

	if c.cfg.Scorer != nil {
		if s, ok := c.cfg.Scorer.Score(CandidateFacts{
			Dist:        cand.dist,
			ETAMs:       float64(cand.etaMs),
			HP:          hp,
			PredictedHP: predictedHP,
			Incoming:    already,
			ShotDamage:  shotDamage,
		}); ok {
			return s
		}
	}

	w := c.cfg.Weights
	window := w.KillshotWindow
	if window <= 0 {
		window = shotDamage
	}

	score := -cand.dist
	switch {
	case predictedHP <= -w.OverkillTolerance:
		// Severely overkilled already; pushing more damage here is waste.
		score -= w.OverkillPenalty * (math.Abs(predictedHP) + w.OverkillTolerance)
	case predictedHP <= 0:
		score -= w.MildOverkillPenalty
	case predictedHP <= window && window > 0:
		// A kill is imminent; reward finishing over spreading.
		score += w.KillshotBonus * (1 - predictedHP/window)
	default:
		if hp > common.Epsilon {
			score -= w.IncomingPenalty * (already / hp)
		}
	}
	return score
}

// gatherCandidates collects up to max nearest live targets within range,
// sorted by distance. A non-positive max keeps only the nearest. Pools
// with a range fast path are queried through it instead of a full scan.
func gatherCandidates(pool TargetPool, from cp.Vector, rangePx float64, max int) []candidate {
	var cands []candidate
	visit := func(t Target) bool {
		if t == nil || !t.Active() || t.HP() <= 0 {
			return true
		}
		d := t.Pos().Distance(from)
		if !common.IsFinite(d) || (rangePx > 0 && d > rangePx) {
			return true
		}
		cands = append(cands, candidate{target: t, dist: d})
		return true
	}
	if rq, ok := pool.(RangeQuerier); ok && rangePx > 0 {
		rq.ForEachInRange(from, rangePx, visit)
	} else {
		pool.ForEachActive(visit)
	}
	sort.Slice(cands, func(i, j int) bool { return cands[i].dist < cands[j].dist })
	if max <= 0 {
		max = 1
	}
	if len(cands) > max {
		cands = cands[:max]
	}
	return cands
}

// NearestTarget returns the closest active target within range, using the
// pool's fast path when it has one.
func NearestTarget(pool TargetPool, from cp.Vector, rangePx float64) Target {
	if pool == nil {
		return nil
	}
	if nq, ok := pool.(NearestQuerier); ok {
		return nq.Nearest(from, rangePx)
	}
	var best Target
	bestDist := math.MaxFloat64
	pool.ForEachActive(func(t Target) bool {
		if t == nil || !t.Active() || t.HP() <= 0 {
			return true
		}
		d := t.Pos().Distance(from)
		if !common.IsFinite(d) || (rangePx > 0 && d > rangePx) {
			return true
		}
		if d < bestDist {
			bestDist = d
			best = t
		}
		return true
	})
	return best
}

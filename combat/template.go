package combat

// Archetype selects a weapon's effect-placement geometry. Everything else
// (cadence, targeting, payload, area timing) is shared by all archetypes.
type Archetype string

const (
	ArchetypeStraight  Archetype = "straight"
	ArchetypeBallistic Archetype = "ballistic"
	ArchetypeBurst     Archetype = "burst"
	ArchetypeMelee     Archetype = "melee"
	ArchetypeChain     Archetype = "chain"
	ArchetypeScatter   Archetype = "scatter"
	ArchetypeSweep     Archetype = "sweep"
)

// AimMode selects how a controller resolves its firing direction/target.
type AimMode string

const (
	AimSelf    AimMode = "self"
	AimFacing  AimMode = "facing"
	AimNearest AimMode = "auto-nearest"
	AimScored  AimMode = "auto-scored"
)

// AreaTiming selects when an attached area effect deals its damage relative
// to the effect visual.
type AreaTiming string

const (
	TimingImpact    AreaTiming = "impact"
	TimingAnimation AreaTiming = "animation"
	TimingExpire    AreaTiming = "expire"
)

// CadenceSpec is the base firing cadence before attack-speed scaling.
type CadenceSpec struct {
	DelayMs float64 `yaml:"delay_ms"`
}

// DamageSpec is the base damage block of a template.
type DamageSpec struct {
	Base       float64  `yaml:"base"`
	CritChance float64  `yaml:"crit_chance"`
	CritMult   float64  `yaml:"crit_mult"`
	Status     []string `yaml:"status"`
}

// ProjectileSpec configures projectile kinematics for projectile archetypes.
type ProjectileSpec struct {
	Speed            float64 `yaml:"speed"`
	Count            int     `yaml:"count"`
	SpreadDeg        float64 `yaml:"spread_deg"`
	Pierce           int     `yaml:"pierce"`
	LifetimeMs       float64 `yaml:"lifetime_ms"`
	Gravity          float64 `yaml:"gravity"`
	SettleMs         float64 `yaml:"settle_ms"`
	RotateToVelocity bool    `yaml:"rotate_to_velocity"`
	SpinRadPerSec    float64 `yaml:"spin_rad_per_sec"`
}

// AreaSpec defines an optional area effect: a projectile explosion or a
// directly placed patch of damage.
type AreaSpec struct {
	Enabled          bool       `yaml:"enabled"`
	Timing           AreaTiming `yaml:"timing"`
	Radius           float64    `yaml:"radius"`
	DamageMult       float64    `yaml:"damage_mult"`
	MaxTargets       int        `yaml:"max_targets"`
	Falloff          float64    `yaml:"falloff"`
	ArcDeg           float64    `yaml:"arc_deg"`
	InnerForgiveness float64    `yaml:"inner_forgiveness"`
	TriggerFrame     int        `yaml:"trigger_frame"`
	FallbackMs       float64    `yaml:"fallback_ms"`
	EffectID         string     `yaml:"effect_id"`
}

// ChainSpec configures the chain archetype's hop sequence.
type ChainSpec struct {
	Hops        int     `yaml:"hops"`
	HopRangePx  float64 `yaml:"hop_range_px"`
	HopDelayMs  float64 `yaml:"hop_delay_ms"`
	DamageDecay float64 `yaml:"damage_decay"`
}

// ScatterSpec configures the scatter archetype's bombardment pattern.
type ScatterSpec struct {
	Clusters     int     `yaml:"clusters"`
	SpreadPx     float64 `yaml:"spread_px"`
	InterDelayMs float64 `yaml:"inter_delay_ms"`
}

// MeleeSpec configures the melee cone sweep.
type MeleeSpec struct {
	ArcDeg  float64 `yaml:"arc_deg"`
	ReachPx float64 `yaml:"reach_px"`
}

// SweepSpec configures the dual-axis sweep strip.
type SweepSpec struct {
	LengthPx float64 `yaml:"length_px"`
	WidthPx  float64 `yaml:"width_px"`
}

// WeaponTemplate is the immutable static definition of a weapon. Templates
// are never mutated; ComputeEffective deep-clones them.
type WeaponTemplate struct {
	Key       string    `yaml:"key"`
	Archetype Archetype `yaml:"archetype"`
	Aim       AimMode   `yaml:"aim"`
	RangePx   float64   `yaml:"range_px"`

	Cadence    CadenceSpec    `yaml:"cadence"`
	Damage     DamageSpec     `yaml:"damage"`
	Projectile ProjectileSpec `yaml:"projectile"`
	Area       AreaSpec       `yaml:"area"`
	Chain      ChainSpec      `yaml:"chain"`
	Scatter    ScatterSpec    `yaml:"scatter"`
	Melee      MeleeSpec      `yaml:"melee"`
	Sweep      SweepSpec      `yaml:"sweep"`
}

// Clone returns a deep copy of the template.
func (t WeaponTemplate) Clone() WeaponTemplate {
	out := t
	if t.Damage.Status != nil {
		out.Damage.Status = append([]string(nil), t.Damage.Status...)
	}
	return out
}

// EffectiveConfig is a WeaponTemplate transformed by the current modifier
// list. It is recomputed wholesale on any loadout change and never mutated
// while a weapon is firing.
type EffectiveConfig struct {
	WeaponTemplate
}

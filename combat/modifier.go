package combat

// ModOp is a path-modifier operation.
type ModOp string

const (
	OpMultiply ModOp = "multiply"
	OpAdd      ModOp = "add"
)

// Modifier transforms one field of an effective configuration. Two forms
// exist: a path modifier (Op+Path set) walking the config by dotted
// segments, and a legacy tagged modifier (Type set) covering a fixed
// vocabulary. Modifiers apply in list order.
type Modifier struct {
	Op    ModOp   `yaml:"op"`
	Path  string  `yaml:"path"`
	Type  string  `yaml:"type"`
	Value float64 `yaml:"value"`
}

// Legacy tagged modifier vocabulary. Unknown types are ignored.
const (
	ModCooldownPct        = "cooldown%"
	ModProjectilesAdd     = "projectiles+"
	ModRangePct           = "range%"
	ModDamagePct          = "damage%"
	ModAreaRadiusPct      = "aoe_radius%"
	ModAreaDamagePct      = "aoe_damage%"
	ModAreaMaxTargetsAdd  = "aoe_max_targets+"
	ModAreaFalloffPct     = "aoe_falloff%"
	ModChainHopsAdd       = "chain_hops+"
	ModScatterClustersAdd = "scatter_clusters+"
)

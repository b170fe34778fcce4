package combat

import "github.com/milk9111/hordecore/common"

// Payload is the damage description handed to the DamagePipeline.
type Payload struct {
	Damage     float64
	CritChance float64
	CritMult   float64
	Status     []string
	SourceKey  string
}

// Scaled returns a copy of the payload with damage multiplied by f.
func (p Payload) Scaled(f float64) Payload {
	out := p
	if !common.IsFinite(f) || f < 0 {
		f = 0
	}
	out.Damage = p.Damage * f
	return out
}

// TuningContext carries the external tuning state (difficulty, passive
// buffs) damage computation depends on. Payload construction is a pure
// function of (EffectiveConfig, TuningContext); nothing in the core reads
// global tuning state. Zero-value multipliers are treated as 1 so an empty
// context is neutral.
type TuningContext struct {
	DifficultyMult  float64
	DamageMult      float64
	AttackSpeedMult float64
	CritChanceBonus float64
}

func safeMult(v float64) float64 {
	if !common.IsFinite(v) || v <= 0 {
		return 1
	}
	return v
}

// BuildPayload constructs the damage payload for one shot.
func BuildPayload(cfg EffectiveConfig, tuning TuningContext, sourceKey string) Payload {
	dmg := cfg.Damage.Base * safeMult(tuning.DifficultyMult) * safeMult(tuning.DamageMult)
	crit := common.Clamp(cfg.Damage.CritChance+tuning.CritChanceBonus, 0, 1)
	critMult := cfg.Damage.CritMult
	if critMult < 1 {
		critMult = 1
	}
	var status []string
	if len(cfg.Damage.Status) > 0 {
		status = append(status, cfg.Damage.Status...)
	}
	return Payload{
		Damage:     dmg,
		CritChance: crit,
		CritMult:   critMult,
		Status:     status,
		SourceKey:  sourceKey,
	}
}

package combat

import (
	"math"
	"testing"
)

func baseTemplate() WeaponTemplate {
	return WeaponTemplate{
		Key:       "test",
		Archetype: ArchetypeStraight,
		Aim:       AimScored,
		RangePx:   400,
		Cadence:   CadenceSpec{DelayMs: 600},
		Damage:    DamageSpec{Base: 10, CritChance: 0.1, CritMult: 2},
		Projectile: ProjectileSpec{
			Speed: 500,
			Count: 1,
		},
		Area: AreaSpec{
			Enabled:    true,
			Radius:     80,
			DamageMult: 1,
			Falloff:    0.2,
		},
		Chain:   ChainSpec{Hops: 2, HopRangePx: 150},
		Scatter: ScatterSpec{Clusters: 3},
	}
}

func TestComputeEffectiveNoModifiers(t *testing.T) {
	tpl := baseTemplate()
	cfg := ComputeEffective(tpl, nil)
	if cfg.Cadence.DelayMs != 600 || cfg.Damage.Base != 10 {
		t.Errorf("cfg = %+v", cfg.WeaponTemplate)
	}
}

func TestComputeEffectiveDoesNotMutateTemplate(t *testing.T) {
	tpl := baseTemplate()
	tpl.Damage.Status = []string{"burn"}
	cfg := ComputeEffective(tpl, []Modifier{
		{Type: ModDamagePct, Value: 1},
	})
	cfg.Damage.Status[0] = "frozen"
	if tpl.Damage.Base != 10 {
		t.Error("template damage mutated")
	}
	if tpl.Damage.Status[0] != "burn" {
		t.Error("template status slice shared with effective config")
	}
}

func TestComputeEffectiveDeterministic(t *testing.T) {
	tpl := baseTemplate()
	mods := []Modifier{
		{Type: ModCooldownPct, Value: -0.5},
		{Op: OpMultiply, Path: "damage.base", Value: 2},
	}
	a := ComputeEffective(tpl, mods)
	b := ComputeEffective(tpl, mods)
	if a.Cadence.DelayMs != b.Cadence.DelayMs || a.Damage.Base != b.Damage.Base {
		t.Errorf("same inputs, different outputs: %+v vs %+v", a.WeaponTemplate, b.WeaponTemplate)
	}
}

func TestPathModifierYamlTagAndFieldName(t *testing.T) {
	tpl := baseTemplate()
	// Same leaf addressed through the yaml tag and the Go field name.
	byTag := ComputeEffective(tpl, []Modifier{{Op: OpMultiply, Path: "cadence.delay_ms", Value: 0.5}})
	byName := ComputeEffective(tpl, []Modifier{{Op: OpMultiply, Path: "cadence.delayMs", Value: 0.5}})
	if byTag.Cadence.DelayMs != 300 {
		t.Errorf("by tag: delay = %v", byTag.Cadence.DelayMs)
	}
	if byName.Cadence.DelayMs != 300 {
		t.Errorf("by field name: delay = %v", byName.Cadence.DelayMs)
	}
}

func TestPathModifierAddToInt(t *testing.T) {
	cfg := ComputeEffective(baseTemplate(), []Modifier{
		{Op: OpAdd, Path: "projectile.count", Value: 2},
	})
	if cfg.Projectile.Count != 3 {
		t.Errorf("count = %d, want 3", cfg.Projectile.Count)
	}
}

func TestPathModifierUnknownPathIsNoop(t *testing.T) {
	tpl := baseTemplate()
	for _, path := range []string{"nope", "cadence.nope", "cadence.delay_ms.deeper", ""} {
		cfg := ComputeEffective(tpl, []Modifier{{Op: OpMultiply, Path: path, Value: 99}})
		if cfg.Cadence.DelayMs != tpl.Cadence.DelayMs || cfg.Damage.Base != tpl.Damage.Base {
			t.Errorf("path %q mutated config: %+v", path, cfg.WeaponTemplate)
		}
	}
}

func TestPathModifierNonNumericLeafIsNoop(t *testing.T) {
	cfg := ComputeEffective(baseTemplate(), []Modifier{
		{Op: OpMultiply, Path: "key", Value: 2},
	})
	if cfg.Key != "test" {
		t.Errorf("key = %q", cfg.Key)
	}
}

func TestModifierOrderMatters(t *testing.T) {
	tpl := baseTemplate()
	// multiply then add vs add then multiply.
	mulAdd := ComputeEffective(tpl, []Modifier{
		{Op: OpMultiply, Path: "damage.base", Value: 2},
		{Op: OpAdd, Path: "damage.base", Value: 5},
	})
	addMul := ComputeEffective(tpl, []Modifier{
		{Op: OpAdd, Path: "damage.base", Value: 5},
		{Op: OpMultiply, Path: "damage.base", Value: 2},
	})
	if mulAdd.Damage.Base != 25 {
		t.Errorf("mul-then-add = %v, want 25", mulAdd.Damage.Base)
	}
	if addMul.Damage.Base != 30 {
		t.Errorf("add-then-mul = %v, want 30", addMul.Damage.Base)
	}
}

func TestTaggedModifiers(t *testing.T) {
	tests := []struct {
		name  string
		mods  []Modifier
		check func(t *testing.T, cfg EffectiveConfig)
	}{
		{
			name: "cooldown percent",
			mods: []Modifier{{Type: ModCooldownPct, Value: -0.25}},
			check: func(t *testing.T, cfg EffectiveConfig) {
				if cfg.Cadence.DelayMs != 450 {
					t.Errorf("delay = %v, want 450", cfg.Cadence.DelayMs)
				}
			},
		},
		{
			name: "cooldown floor",
			mods: []Modifier{{Type: ModCooldownPct, Value: -0.999}},
			check: func(t *testing.T, cfg EffectiveConfig) {
				if cfg.Cadence.DelayMs != MinCooldownMs {
					t.Errorf("delay = %v, want floor %d", cfg.Cadence.DelayMs, MinCooldownMs)
				}
			},
		},
		{
			name: "projectiles add",
			mods: []Modifier{{Type: ModProjectilesAdd, Value: 2}},
			check: func(t *testing.T, cfg EffectiveConfig) {
				if cfg.Projectile.Count != 3 {
					t.Errorf("count = %d, want 3", cfg.Projectile.Count)
				}
			},
		},
		{
			name: "projectiles floor at one",
			mods: []Modifier{{Type: ModProjectilesAdd, Value: -10}},
			check: func(t *testing.T, cfg EffectiveConfig) {
				if cfg.Projectile.Count != 1 {
					t.Errorf("count = %d, want 1", cfg.Projectile.Count)
				}
			},
		},
		{
			name: "damage percent stacks multiplicatively",
			mods: []Modifier{
				{Type: ModDamagePct, Value: 0.5},
				{Type: ModDamagePct, Value: 0.5},
			},
			check: func(t *testing.T, cfg EffectiveConfig) {
				if math.Abs(cfg.Damage.Base-22.5) > 1e-9 {
					t.Errorf("damage = %v, want 22.5", cfg.Damage.Base)
				}
			},
		},
		{
			name: "area radius percent",
			mods: []Modifier{{Type: ModAreaRadiusPct, Value: 0.25}},
			check: func(t *testing.T, cfg EffectiveConfig) {
				if cfg.Area.Radius != 100 {
					t.Errorf("radius = %v, want 100", cfg.Area.Radius)
				}
			},
		},
		{
			name: "chain hops floor at one",
			mods: []Modifier{{Type: ModChainHopsAdd, Value: -10}},
			check: func(t *testing.T, cfg EffectiveConfig) {
				if cfg.Chain.Hops != 1 {
					t.Errorf("hops = %d, want 1", cfg.Chain.Hops)
				}
			},
		},
		{
			name: "scatter clusters floor at one",
			mods: []Modifier{{Type: ModScatterClustersAdd, Value: -99}},
			check: func(t *testing.T, cfg EffectiveConfig) {
				if cfg.Scatter.Clusters != 1 {
					t.Errorf("clusters = %d, want 1", cfg.Scatter.Clusters)
				}
			},
		},
		{
			name: "unknown type ignored",
			mods: []Modifier{{Type: "mystery%", Value: 99}},
			check: func(t *testing.T, cfg EffectiveConfig) {
				if cfg.Damage.Base != 10 || cfg.Cadence.DelayMs != 600 {
					t.Errorf("cfg = %+v", cfg.WeaponTemplate)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, ComputeEffective(baseTemplate(), tt.mods))
		})
	}
}

func TestBuildPayloadNeutralTuning(t *testing.T) {
	cfg := ComputeEffective(baseTemplate(), nil)
	p := BuildPayload(cfg, TuningContext{}, "test")
	if p.Damage != 10 {
		t.Errorf("damage = %v", p.Damage)
	}
	if p.CritChance != 0.1 || p.CritMult != 2 {
		t.Errorf("crit = %v/%v", p.CritChance, p.CritMult)
	}
	if p.SourceKey != "test" {
		t.Errorf("source = %q", p.SourceKey)
	}
}

func TestBuildPayloadTuning(t *testing.T) {
	cfg := ComputeEffective(baseTemplate(), nil)
	p := BuildPayload(cfg, TuningContext{DifficultyMult: 2, DamageMult: 1.5, CritChanceBonus: 0.5}, "test")
	if p.Damage != 30 {
		t.Errorf("damage = %v, want 30", p.Damage)
	}
	if p.CritChance != 0.6 {
		t.Errorf("crit chance = %v, want 0.6", p.CritChance)
	}
}

func TestBuildPayloadClampsCrit(t *testing.T) {
	tpl := baseTemplate()
	tpl.Damage.CritChance = 0.9
	tpl.Damage.CritMult = 0.5
	p := BuildPayload(ComputeEffective(tpl, nil), TuningContext{CritChanceBonus: 0.5}, "test")
	if p.CritChance != 1 {
		t.Errorf("crit chance = %v, want 1", p.CritChance)
	}
	if p.CritMult != 1 {
		t.Errorf("crit mult = %v, want 1", p.CritMult)
	}
}

func TestPayloadScaled(t *testing.T) {
	p := Payload{Damage: 10}
	if got := p.Scaled(0.5).Damage; got != 5 {
		t.Errorf("Scaled(0.5) = %v", got)
	}
	if got := p.Scaled(-1).Damage; got != 0 {
		t.Errorf("Scaled(-1) = %v, want 0", got)
	}
	if got := p.Scaled(math.NaN()).Damage; got != 0 {
		t.Errorf("Scaled(NaN) = %v, want 0", got)
	}
	if p.Damage != 10 {
		t.Error("Scaled mutated the receiver")
	}
}

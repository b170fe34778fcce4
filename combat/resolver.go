package combat

import (
	"math"
	"reflect"
	"strings"
)

// MinCooldownMs is the floor for any resolved firing cadence.
const MinCooldownMs = 40

// ComputeEffective deep-clones a template and applies the modifier list in
// order. It is pure: the template is never mutated, and the same inputs
// always produce the same output. Bad modifiers (missing path segments,
// non-numeric leaves, unknown legacy types) are silent no-ops.
func ComputeEffective(tpl WeaponTemplate, mods []Modifier) EffectiveConfig {
	cfg := EffectiveConfig{WeaponTemplate: tpl.Clone()}
	for _, m := range mods {
		switch {
		case m.Path != "" && m.Op != "":
			applyPathModifier(&cfg.WeaponTemplate, m)
		case m.Type != "":
			applyTaggedModifier(&cfg.WeaponTemplate, m)
		}
	}
	return cfg
}

// applyPathModifier walks the config by dotted path segments and applies a
// numeric op to the leaf. Segments match struct fields by name or yaml tag,
// case-insensitively with separators stripped, so "cadence.delayMs" and
// "cadence.delay_ms" both resolve.
func applyPathModifier(cfg *WeaponTemplate, m Modifier) {
	segs := strings.Split(m.Path, ".")
	v := reflect.ValueOf(cfg).Elem()
	for i, seg := range segs {
		if v.Kind() != reflect.Struct {
			return
		}
		field, ok := fieldBySegment(v, seg)
		if !ok {
			return
		}
		if i == len(segs)-1 {
			applyNumericOp(field, m.Op, m.Value)
			return
		}
		v = field
	}
}

func fieldBySegment(v reflect.Value, seg string) (reflect.Value, bool) {
	want := normalizeSegment(seg)
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if normalizeSegment(f.Name) == want {
			return v.Field(i), true
		}
		if tag, ok := f.Tag.Lookup("yaml"); ok {
			tag = strings.Split(tag, ",")[0]
			if tag != "" && normalizeSegment(tag) == want {
				return v.Field(i), true
			}
		}
	}
	return reflect.Value{}, false
}

func normalizeSegment(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func applyNumericOp(field reflect.Value, op ModOp, value float64) {
	if !field.CanSet() {
		return
	}
	switch field.Kind() {
	case reflect.Float64, reflect.Float32:
		cur := field.Float()
		switch op {
		case OpMultiply:
			field.SetFloat(cur * value)
		case OpAdd:
			field.SetFloat(cur + value)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		cur := float64(field.Int())
		switch op {
		case OpMultiply:
			field.SetInt(int64(math.Round(cur * value)))
		case OpAdd:
			field.SetInt(int64(math.Round(cur + value)))
		}
	}
}

// applyTaggedModifier applies one legacy tagged modifier. Each knob clamps
// to its sane minimum so stacked modifiers cannot push a weapon into a
// degenerate state.
func applyTaggedModifier(cfg *WeaponTemplate, m Modifier) {
	switch m.Type {
	case ModCooldownPct:
		cfg.Cadence.DelayMs *= 1 + m.Value
		if cfg.Cadence.DelayMs < MinCooldownMs {
			cfg.Cadence.DelayMs = MinCooldownMs
		}
	case ModProjectilesAdd:
		cfg.Projectile.Count += int(math.Round(m.Value))
		if cfg.Projectile.Count < 1 {
			cfg.Projectile.Count = 1
		}
	case ModRangePct:
		cfg.RangePx *= 1 + m.Value
		if cfg.RangePx < 0 {
			cfg.RangePx = 0
		}
	case ModDamagePct:
		cfg.Damage.Base *= 1 + m.Value
		if cfg.Damage.Base < 0 {
			cfg.Damage.Base = 0
		}
	case ModAreaRadiusPct:
		cfg.Area.Radius *= 1 + m.Value
		if cfg.Area.Radius < 0 {
			cfg.Area.Radius = 0
		}
	case ModAreaDamagePct:
		cfg.Area.DamageMult *= 1 + m.Value
		if cfg.Area.DamageMult < 0 {
			cfg.Area.DamageMult = 0
		}
	case ModAreaMaxTargetsAdd:
		cfg.Area.MaxTargets += int(math.Round(m.Value))
		if cfg.Area.MaxTargets < 0 {
			cfg.Area.MaxTargets = 0
		}
	case ModAreaFalloffPct:
		cfg.Area.Falloff *= 1 + m.Value
		if cfg.Area.Falloff < 0 {
			cfg.Area.Falloff = 0
		}
	case ModChainHopsAdd:
		cfg.Chain.Hops += int(math.Round(m.Value))
		if cfg.Chain.Hops < 1 {
			cfg.Chain.Hops = 1
		}
	case ModScatterClustersAdd:
		cfg.Scatter.Clusters += int(math.Round(m.Value))
		if cfg.Scatter.Clusters < 1 {
			cfg.Scatter.Clusters = 1
		}
	}
}

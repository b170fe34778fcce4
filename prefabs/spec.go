package prefabs

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/milk9111/hordecore/combat"
)

// WeaponSpec is one weapon definition file: the static template plus an
// optional list of baked-in modifiers and an optional scoring script.
type WeaponSpec struct {
	Weapon      combat.WeaponTemplate `yaml:"weapon"`
	Modifiers   []combat.Modifier     `yaml:"modifiers"`
	ScoreScript string                `yaml:"score_script"`
}

// LoadSpec loads and unmarshals one definition file into T.
func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// LoadWeaponSpec loads one weapon definition file and validates it.
func LoadWeaponSpec(filename string) (*WeaponSpec, error) {
	spec, err := LoadSpec[WeaponSpec](filename)
	if err != nil {
		return nil, err
	}
	if spec.Weapon.Key == "" {
		spec.Weapon.Key = strings.TrimSuffix(filename, ".yaml")
	}
	if err := validateWeapon(&spec.Weapon); err != nil {
		return nil, fmt.Errorf("prefabs: %s: %w", filename, err)
	}
	return &spec, nil
}

func validateWeapon(w *combat.WeaponTemplate) error {
	if w.Archetype == "" {
		return fmt.Errorf("weapon %q: missing archetype", w.Key)
	}
	switch w.Archetype {
	case combat.ArchetypeStraight, combat.ArchetypeBallistic, combat.ArchetypeBurst,
		combat.ArchetypeMelee, combat.ArchetypeChain, combat.ArchetypeScatter,
		combat.ArchetypeSweep:
	default:
		return fmt.Errorf("weapon %q: unknown archetype %q", w.Key, w.Archetype)
	}
	if w.Cadence.DelayMs <= 0 {
		return fmt.Errorf("weapon %q: cadence.delay_ms must be positive", w.Key)
	}
	if w.Damage.Base < 0 {
		return fmt.Errorf("weapon %q: damage.base must not be negative", w.Key)
	}
	return nil
}

// Library holds all loaded weapon definitions keyed by weapon key.
type Library struct {
	specs map[string]*WeaponSpec
}

// LoadLibrary loads every embedded weapon definition. Files that fail to
// parse are logged and skipped; the library loads what it can.
func LoadLibrary() *Library {
	lib := &Library{specs: make(map[string]*WeaponSpec)}
	for _, name := range EmbeddedWeaponFiles() {
		if err := lib.Reload(name); err != nil {
			logrus.WithError(err).Warnf("prefabs: skipping weapon file %s", name)
		}
	}
	return lib
}

// Reload (re)loads one definition file into the library.
func (l *Library) Reload(filename string) error {
	if l == nil {
		return fmt.Errorf("prefabs: nil library")
	}
	spec, err := LoadWeaponSpec(filename)
	if err != nil {
		return err
	}
	if l.specs == nil {
		l.specs = make(map[string]*WeaponSpec)
	}
	l.specs[spec.Weapon.Key] = spec
	logrus.Debugf("prefabs: loaded weapon %s (%s)", spec.Weapon.Key, spec.Weapon.Archetype)
	return nil
}

// Get returns the spec for a weapon key.
func (l *Library) Get(key string) (*WeaponSpec, bool) {
	if l == nil {
		return nil, false
	}
	spec, ok := l.specs[key]
	return spec, ok
}

// Keys returns the loaded weapon keys, sorted.
func (l *Library) Keys() []string {
	if l == nil {
		return nil
	}
	keys := make([]string, 0, len(l.specs))
	for k := range l.specs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns how many weapons loaded.
func (l *Library) Len() int {
	if l == nil {
		return 0
	}
	return len(l.specs)
}

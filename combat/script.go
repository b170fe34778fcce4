package combat

import (
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/sirupsen/logrus"
)

// CandidateFacts are the inputs a scoring script sees for one candidate.
type CandidateFacts struct {
	Dist        float64
	ETAMs       float64
	HP          float64
	PredictedHP float64
	Incoming    float64
	ShotDamage  float64
}

// ScriptScorer evaluates a tengo script per candidate. The script reads the
// fact globals and assigns its result to `score`; any runtime error falls
// back to the built-in scorer for that candidate.
type ScriptScorer struct {
	compiled *tengo.Compiled
	warned   bool
}

// NewScriptScorer compiles a scoring script. The script runs once per
// candidate with the fact globals set, e.g.:
//
//	score = -dist
//	if predicted_hp <= 0 {
//	    score -= 100
//	}
func NewScriptScorer(src string) (*ScriptScorer, error) {
	if strings.TrimSpace(src) == "" {
		return nil, fmt.Errorf("combat: empty scorer script")
	}
	script := tengo.NewScript([]byte(src))
	_ = script.Add("dist", 0.0)
	_ = script.Add("eta_ms", 0.0)
	_ = script.Add("hp", 0.0)
	_ = script.Add("predicted_hp", 0.0)
	_ = script.Add("incoming", 0.0)
	_ = script.Add("shot_damage", 0.0)
	_ = script.Add("score", 0.0)
	script.SetImports(stdlib.GetModuleMap("math"))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("combat: compile scorer script: %w", err)
	}
	return &ScriptScorer{compiled: compiled}, nil
}

// Score runs the script for one candidate. The bool result reports whether
// the script produced a usable score.
func (s *ScriptScorer) Score(f CandidateFacts) (float64, bool) {
	if s == nil || s.compiled == nil {
		return 0, false
	}
	c := s.compiled.Clone()
	_ = c.Set("dist", f.Dist)
	_ = c.Set("eta_ms", f.ETAMs)
	_ = c.Set("hp", f.HP)
	_ = c.Set("predicted_hp", f.PredictedHP)
	_ = c.Set("incoming", f.Incoming)
	_ = c.Set("shot_damage", f.ShotDamage)
	if err := c.Run(); err != nil {
		if !s.warned {
			s.warned = true
			logrus.WithError(err).Warn("combat: scorer script error, using built-in scoring")
		}
		return 0, false
	}
	if !c.IsDefined("score") {
		return 0, false
	}
	return c.Get("score").Float(), true
}

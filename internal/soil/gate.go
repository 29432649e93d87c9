package soil

import (
	"fmt"
	"strings"
)

// GateMode selects how a Gate decides readiness.
type GateMode string

const (
	// GateRules checks every field against its Rule.
	GateRules GateMode = "rules"
	// GateTruthy requires every value to be non-zero and the class non-empty.
	// Legitimate zeros (e.g. a plasticity index of 0) are rejected.
	GateTruthy GateMode = "truthy"
)

// ParseGateMode parses "rules" or "truthy".
func ParseGateMode(s string) (GateMode, error) {
	switch GateMode(strings.ToLower(strings.TrimSpace(s))) {
	case GateRules:
		return GateRules, nil
	case GateTruthy:
		return GateTruthy, nil
	}
	return "", fmt.Errorf("invalid gate mode %q (expected rules or truthy)", s)
}

// Rule is a lower bound: v > Min, or v >= Min when Inclusive.
type Rule struct {
	Min       float64 `json:"min" yaml:"min"`
	Inclusive bool    `json:"inclusive" yaml:"inclusive"`
}

// Allows reports whether v satisfies the rule.
func (r Rule) Allows(v float64) bool {
	if r.Inclusive {
		return v >= r.Min
	}
	return v > r.Min
}

func (r Rule) String() string {
	if r.Inclusive {
		return fmt.Sprintf(">= %g", r.Min)
	}
	return fmt.Sprintf("> %g", r.Min)
}

// Gate decides whether a snapshot is complete enough to predict.
type Gate struct {
	Mode  GateMode
	Rules map[string]Rule
}

// Verdict is the outcome of Gate.Check.
type Verdict struct {
	Ready  bool
	Failed []string
}

// Check evaluates s. Fields are reported in the variant's field order, with
// the soil class last.
func (v Variant) Check(s Snapshot) Verdict {
	var failed []string
	for _, f := range v.Fields {
		val, ok := s.Value(f.Key)
		if !ok {
			failed = append(failed, f.Key)
			continue
		}
		switch v.Gate.Mode {
		case GateTruthy:
			if val == 0 {
				failed = append(failed, f.Key)
			}
		default:
			rule, ok := v.Gate.Rules[f.Key]
			if !ok {
				rule = Rule{Min: 0}
			}
			if !rule.Allows(val) {
				failed = append(failed, f.Key)
			}
		}
	}
	if v.HasClass() && s.Class() == "" {
		failed = append(failed, KeySoilClass)
	}
	return Verdict{Ready: len(failed) == 0, Failed: failed}
}

// strictRules builds "> 0" rules for strict keys and ">= 0" for the rest.
func strictRules(strict, inclusive []string) map[string]Rule {
	rules := make(map[string]Rule, len(strict)+len(inclusive))
	for _, k := range strict {
		rules[k] = Rule{Min: 0}
	}
	for _, k := range inclusive {
		rules[k] = Rule{Min: 0, Inclusive: true}
	}
	return rules
}

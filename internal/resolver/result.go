// Package resolver computes the outcome of a single attack instance.
// It never mutates units: callers turn a Result into engine events.
package resolver

import (
	"fmt"

	"github.com/suderio/warband/internal/engine"
)

// Kind discriminates a Result.
type Kind int

const (
	// NoEffect: the target cannot be affected at all (retreated, or dead for a
	// non-revive attack). Distinct from Miss.
	NoEffect Kind = iota
	Miss
	Immunity
	Ward
	// Attack carries a numeric power (damage, heal) or none for boolean
	// attacks such as Fear or Revive.
	Attack
	// Effect carries a battle effect to apply.
	Effect
	// Skip: the attack does not apply to this target's current state. The
	// caller may fall through to a secondary attack.
	Skip
)

func (k Kind) String() string {
	switch k {
	case NoEffect:
		return "no effect"
	case Miss:
		return "miss"
	case Immunity:
		return "immunity"
	case Ward:
		return "ward"
	case Attack:
		return "attack"
	case Effect:
		return "effect"
	case Skip:
		return "skip"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Result is the outcome of resolving one attack against one target.
type Result struct {
	Kind       Kind
	AttackType engine.AttackType
	Power      int
	Critical   bool
	Duration   engine.Duration
	// DurationOwner is the unit whose turns decrement the resulting effect.
	DurationOwner engine.UnitID
	// WardByType tells which protection list the consumed ward came from.
	WardByType bool
}

// Succeeded reports whether the attack landed on the target.
func (r Result) Succeeded() bool {
	return r.Kind == Attack || r.Kind == Effect
}

func (r Result) String() string {
	switch r.Kind {
	case Attack:
		if r.Critical {
			return fmt.Sprintf("%s %d (critical)", r.AttackType, r.Power)
		}
		return fmt.Sprintf("%s %d", r.AttackType, r.Power)
	case Effect:
		return fmt.Sprintf("%s %d for %s", r.AttackType, r.Power, r.Duration)
	}
	return r.Kind.String()
}

package resolver

import (
	"fmt"

	"github.com/suderio/warband/internal/engine"
)

// effectDuration returns the lifetime of an effect created by an attack of
// type t. Infinite attacks either last the whole battle or roll a longer
// random range, depending on the class.
func effectDuration(rnd engine.Random, t engine.AttackType, infinite bool) engine.Duration {
	switch t {
	case engine.AttackParalyze, engine.AttackPetrify:
		if infinite {
			return engine.RandomDuration(rnd, 1, 3)
		}
		return engine.FiniteDuration(1)
	case engine.AttackPoison, engine.AttackFrostbite, engine.AttackBlister:
		if infinite {
			return engine.RandomDuration(rnd, 2, 4)
		}
		return engine.FiniteDuration(1)
	case engine.AttackReduceInitiative:
		if infinite {
			return engine.InfiniteDuration()
		}
		return engine.RandomDuration(rnd, 2, 4)
	case engine.AttackBoostDamage, engine.AttackReduceDamage:
		if infinite {
			return engine.InfiniteDuration()
		}
		return engine.FiniteDuration(1)
	case engine.AttackDefend:
		return engine.FiniteDuration(1)
	}
	panic(fmt.Errorf("resolver: attack type %s has no effect duration", t))
}

// durationOwner picks the unit whose turns count down the effect: boosts and
// curses last until the caster acts again, afflictions tick on the victim.
func durationOwner(t engine.AttackType, attacker, target *engine.Unit) engine.UnitID {
	switch t {
	case engine.AttackBoostDamage, engine.AttackReduceDamage:
		return attacker.ID
	}
	return target.ID
}

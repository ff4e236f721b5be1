package resolver

import (
	"fmt"

	"github.com/suderio/warband/internal/engine"
)

// criticalBonus is the share of base power a critical attack adds on top of
// armor.
const criticalBonus = 5

// Resolver resolves attacks against a field using a swappable random source.
type Resolver struct {
	field       *engine.Field
	rnd         engine.Random
	attackRange int
}

// New creates a resolver. Damage attacks add rnd.Uniform(0, attackRange) to
// their power.
func New(field *engine.Field, rnd engine.Random, attackRange int) *Resolver {
	return &Resolver{field: field, rnd: rnd, attackRange: attackRange}
}

// Field is the field the resolver reads.
func (r *Resolver) Field() *engine.Field { return r.field }

// Random is the resolver's random source.
func (r *Resolver) Random() engine.Random { return r.rnd }

// Power returns the attack power of the unit after its boost and reduce
// effects. Only damage attacks are modified.
func Power(attacker *engine.Unit, attack *engine.Attack) int {
	if !attack.Type.IsDamage() {
		return attack.Power
	}
	return attack.Power * attacker.DamageModifier() / 100
}

// CheckProtection returns the protection category the target holds against
// the attack. Attack-type protections are checked before source protections.
func CheckProtection(target *engine.Unit, attack *engine.Attack) (engine.ProtectionCategory, bool, bool) {
	for _, p := range target.TypeProtections {
		if p.Type == attack.Type {
			return p.Category, true, true
		}
	}
	for _, p := range target.SourceProtections {
		if p.Source == attack.Source {
			return p.Category, false, true
		}
	}
	return 0, false, false
}

// Resolve computes the outcome of one attack instance of attacker against
// target. Protections are checked before the accuracy roll; the defend
// halving is applied after the hit point clamp.
func (r *Resolver) Resolve(attacker, target *engine.Unit, attack *engine.Attack, power, accuracy int) Result {
	res := Result{AttackType: attack.Type, DurationOwner: engine.NoUnit}

	if target.Retreated {
		res.Kind = NoEffect
		return res
	}

	if target.Dead && attack.Type != engine.AttackRevive {
		if sec := attacker.SecondaryAttack(); sec != nil && sec.Type == engine.AttackRevive {
			res.Kind = Skip
			return res
		}
		res.Kind = NoEffect
		return res
	}

	if cat, byType, ok := CheckProtection(target, attack); ok {
		switch cat {
		case engine.Immunity:
			res.Kind = Immunity
		case engine.Ward:
			res.Kind = Ward
			res.WardByType = byType
		}
		return res
	}

	if roll := r.rnd.Uniform(0, 99); roll > accuracy {
		res.Kind = Miss
		return res
	}

	if !r.Applicable(attacker, target, attack, power) {
		res.Kind = Skip
		return res
	}

	switch attack.Type {
	case engine.AttackDamage, engine.AttackDrain, engine.AttackDrainOverflow:
		res.Kind = Attack
		res.Power, res.Critical = r.damage(target, attack, power)

	case engine.AttackHeal:
		res.Power = min(power, target.HitPointDeficit())
		if res.Power <= 0 {
			res.Kind = NoEffect
			return res
		}
		res.Kind = Attack

	case engine.AttackParalyze, engine.AttackPetrify,
		engine.AttackPoison, engine.AttackFrostbite, engine.AttackBlister,
		engine.AttackReduceDamage, engine.AttackReduceInitiative, engine.AttackBoostDamage:
		res.Kind = Effect
		res.Power = power
		res.Duration = effectDuration(r.rnd, attack.Type, attack.Infinite)
		res.DurationOwner = durationOwner(attack.Type, attacker, target)

	case engine.AttackFear, engine.AttackRevive, engine.AttackCure, engine.AttackGiveAdditionalAttack:
		res.Kind = Attack

	default:
		panic(fmt.Errorf("resolver: unhandled attack type %s", attack.Type))
	}
	return res
}

func (r *Resolver) damage(target *engine.Unit, attack *engine.Attack, power int) (int, bool) {
	dmg := power + r.rnd.Uniform(0, r.attackRange)
	dmg -= dmg * target.Armor() / 100
	critical := false
	if attack.Critical {
		dmg += attack.Power * criticalBonus / 100
		critical = true
	}
	dmg = min(dmg, target.HitPoints)
	if target.IsDefended() {
		dmg = (dmg + 1) / 2
	}
	if dmg < 0 {
		dmg = 0
	}
	return dmg, critical
}

// Applicable reports whether the attack makes sense against the target's
// current state.
func (r *Resolver) Applicable(attacker, target *engine.Unit, attack *engine.Attack, power int) bool {
	switch attack.Type {
	case engine.AttackHeal:
		return !target.IsFullHealth()
	case engine.AttackRevive:
		return target.Dead && !target.Revived
	case engine.AttackCure:
		for _, e := range target.Effects {
			if e.IsCurableBy(target.Player, r.field) {
				return true
			}
		}
		return false
	case engine.AttackFear:
		return !target.Retreating
	case engine.AttackGiveAdditionalAttack:
		return target.ID != attacker.ID && target.PrimaryAttack().Type != engine.AttackGiveAdditionalAttack
	case engine.AttackParalyze, engine.AttackPetrify:
		return !target.HasEffect(attack.Type)
	case engine.AttackPoison, engine.AttackFrostbite, engine.AttackBlister,
		engine.AttackBoostDamage, engine.AttackReduceDamage, engine.AttackReduceInitiative:
		if cur := target.Effect(attack.Type); cur != nil && cur.Power >= power {
			return false
		}
		return true
	}
	return true
}

// RevivedHitPoints is the hit points a unit comes back with.
func RevivedHitPoints(target *engine.Unit) int {
	return max(1, target.MaxHitPoints()/2)
}

// EffectDamage is the damage a damage-over-time effect deals to a bearer
// left with hitPoints when it fires. Armor does not apply.
func EffectDamage(hitPoints int, e *engine.BattleEffect) int {
	return max(0, min(e.Power, hitPoints))
}

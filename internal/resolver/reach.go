package resolver

import (
	"github.com/suderio/warband/internal/engine"
)

// CanTarget reports whether attacker may aim the attack at target under the
// squad reach rules.
func CanTarget(f *engine.Field, attacker, target *engine.Unit, attack *engine.Attack) bool {
	for _, u := range Targets(f, attacker, attack) {
		if u.ID == target.ID {
			return true
		}
	}
	return false
}

// Targets lists the units the attacker may choose as the target of the
// attack. For ReachAll attacks any listed unit selects the whole squad.
func Targets(f *engine.Field, attacker *engine.Unit, attack *engine.Attack) []*engine.Unit {
	if attacker.IsInactive() {
		return nil
	}
	if attack.Type.TargetsAllies() {
		var res []*engine.Unit
		for _, u := range f.Allies(attacker) {
			if u.Retreated {
				continue
			}
			if attack.Type == engine.AttackRevive {
				if u.Dead {
					res = append(res, u)
				}
				continue
			}
			if !u.Dead {
				res = append(res, u)
			}
		}
		return res
	}

	enemies := active(f.Enemies(attacker))
	if attack.Reach != engine.ReachAdjacent {
		return enemies
	}

	// Melee from the back line is blocked while the own front line stands.
	if attacker.Position.Line != engine.FrontLine && len(inLine(active(f.Allies(attacker)), engine.FrontLine)) > 0 {
		return nil
	}
	line := inLine(enemies, engine.FrontLine)
	if len(line) == 0 {
		line = inLine(enemies, engine.BackLine)
	}
	var near []*engine.Unit
	for _, u := range line {
		if abs(u.Position.Flank-attacker.Position.Flank) <= 1 {
			near = append(near, u)
		}
	}
	if len(near) > 0 {
		return near
	}
	return line
}

// Victims expands a chosen target into every unit hit by the attack.
func Victims(f *engine.Field, attacker, target *engine.Unit, attack *engine.Attack) []*engine.Unit {
	if attack.Reach != engine.ReachAll {
		return []*engine.Unit{target}
	}
	if attack.Type.TargetsAllies() {
		return Targets(f, attacker, attack)
	}
	return active(f.Squad(target.Player))
}

func active(units []*engine.Unit) []*engine.Unit {
	res := make([]*engine.Unit, 0, len(units))
	for _, u := range units {
		if u.IsActive() {
			res = append(res, u)
		}
	}
	return res
}

func inLine(units []*engine.Unit, line int) []*engine.Unit {
	var res []*engine.Unit
	for _, u := range units {
		if u.Position.Line == line {
			res = append(res, u)
		}
	}
	return res
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// CommandTargets lists every unit a command may name for the attacker: the
// primary attack's targets plus dead allies when the secondary attack revives.
func CommandTargets(f *engine.Field, attacker *engine.Unit) []*engine.Unit {
	res := Targets(f, attacker, attacker.PrimaryAttack())
	if sec := attacker.SecondaryAttack(); sec != nil && sec.Type == engine.AttackRevive {
		res = append(res, Targets(f, attacker, sec)...)
	}
	return res
}

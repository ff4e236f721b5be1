package action

import (
	"fmt"

	"github.com/suderio/warband/internal/engine"
	"github.com/suderio/warband/internal/resolver"
)

// initTurnTick walks every effect whose duration is controlled by u. The
// effects carried by u fire first (damage over time, at most once per round)
// and are then decremented; effects u cast on others only count down.
func (a *Action) initTurnTick(b Battle, u *engine.Unit) {
	if u.IsInactive() {
		return
	}
	f := b.Field()
	for _, t := range []engine.AttackType{engine.AttackPetrify, engine.AttackParalyze} {
		if u.HasEffect(t) {
			a.skipped = t
			break
		}
	}

	hp := u.HitPoints
	for _, e := range u.Effects {
		if !e.Type.IsDamageOverTime() || e.TriggeredRound == f.Round || hp == 0 {
			continue
		}
		dmg := resolver.EffectDamage(hp, e)
		hp -= dmg
		a.push(
			animationStep(e.Type.String(), u.Position, LayerEffect),
			applyStep(&engine.EffectTriggeredEvent{UnitID: u.ID, Name: u.Name(), EffectType: e.Type, Round: f.Round}),
			applyStep(&engine.HPChangedEvent{UnitID: u.ID, Name: u.Name(), Amount: -dmg}),
			messageStep(u.ID, fmt.Sprintf("-%d", dmg)),
		)
		if hp == 0 {
			killer := f.Unit(e.AppliedBy)
			a.push(
				animationStep(u.Type.ID+"/death", u.Position, LayerUnit),
				applyStep(&engine.UnitDiedEvent{UnitID: u.ID, Name: u.Name(), Killer: e.AppliedBy}),
			)
			if killer != nil && killer.IsActive() && !killer.IsAlly(u) && u.Type.XPKilled > 0 {
				a.push(applyStep(&engine.ExperienceGainedEvent{UnitID: killer.ID, Name: killer.Name(), Amount: u.Type.XPKilled}))
			}
		}
	}

	for _, bearer := range f.Units {
		if bearer.IsInactive() || (bearer.ID == u.ID && hp == 0) {
			continue
		}
		for _, e := range bearer.Effects {
			if e.DurationControl != u.ID || e.Duration.Infinite {
				continue
			}
			a.push(applyStep(&engine.EffectDecreasedEvent{UnitID: bearer.ID, EffectType: e.Type}))
			if e.Duration.Turns <= 1 {
				a.push(applyStep(&engine.EffectRemovedEvent{UnitID: bearer.ID, Name: bearer.Name(), EffectType: e.Type}))
			}
		}
	}

	if a.skipped != 0 && hp > 0 {
		a.push(applyStep(&engine.TurnSkippedEvent{UnitID: u.ID, Name: u.Name(), Reason: a.skipped}))
	}
}

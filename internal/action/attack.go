package action

import (
	"fmt"

	"github.com/suderio/warband/internal/engine"
	"github.com/suderio/warband/internal/resolver"
)

func (a *Action) initMainAttack(b Battle, u *engine.Unit) {
	f := b.Field()
	target := f.Unit(a.Target)
	if target == nil || u.IsInactive() {
		return
	}
	atk := u.PrimaryAttack()
	sec := u.SecondaryAttack()
	r := b.Resolver()

	a.push(animationStep(u.Type.ID+"/attack", u.Position, LayerUnit))
	power := resolver.Power(u, atk)
	for _, v := range resolver.Victims(f, u, target, atk) {
		res := r.Resolve(u, v, atk, power, atk.Accuracy)
		if res.Kind == resolver.Skip && sec != nil {
			// retried in place; the victim is not handed to the follow-up
			res = r.Resolve(u, v, sec, resolver.Power(u, sec), sec.Accuracy)
			a.outcome(b, u, v, sec, res)
			continue
		}
		if a.outcome(b, u, v, atk, res) {
			a.hits = append(a.hits, v.ID)
		}
	}
	a.drain(b, u, atk)
}

func (a *Action) initSecondaryAttack(b Battle, u *engine.Unit) {
	atk := u.SecondaryAttack()
	if atk == nil || u.IsInactive() {
		return
	}
	f := b.Field()
	r := b.Resolver()
	power := resolver.Power(u, atk)
	for _, id := range a.Victims {
		v := f.Unit(id)
		if v == nil {
			continue
		}
		if a.outcome(b, u, v, atk, r.Resolve(u, v, atk, power, atk.Accuracy)) {
			a.hits = append(a.hits, v.ID)
		}
	}
	a.drain(b, u, atk)
}

// outcome queues the steps of one resolved attack instance and reports
// whether it landed.
func (a *Action) outcome(b Battle, u, v *engine.Unit, atk *engine.Attack, res resolver.Result) bool {
	switch res.Kind {
	case resolver.NoEffect, resolver.Skip:
		a.push(applyStep(&engine.AttackIneffectiveEvent{Target: v.Name(), Attack: atk.Name, Reason: res.Kind.String()}))
		return false
	case resolver.Miss:
		a.push(
			applyStep(&engine.AttackMissedEvent{Attacker: u.Name(), Target: v.Name(), Attack: atk.Name}),
			messageStep(v.ID, "Miss"),
		)
		return false
	case resolver.Immunity:
		a.push(
			applyStep(&engine.AttackIneffectiveEvent{Target: v.Name(), Attack: atk.Name, Reason: "immunity"}),
			messageStep(v.ID, "Immune"),
		)
		return false
	case resolver.Ward:
		a.push(
			applyStep(&engine.WardConsumedEvent{UnitID: v.ID, Name: v.Name(), ByType: res.WardByType, Attack: atk.Type, Source: atk.Source}),
			messageStep(v.ID, "Ward"),
		)
		return false
	case resolver.Effect:
		a.push(
			animationStep(atk.Type.String(), v.Position, LayerEffect),
			applyStep(&engine.EffectAppliedEvent{UnitID: v.ID, Name: v.Name(), Effect: engine.BattleEffect{
				Type:            atk.Type,
				Source:          atk.Source,
				Power:           res.Power,
				Duration:        res.Duration,
				DurationControl: res.DurationOwner,
				AppliedBy:       u.ID,
			}}),
		)
		return true
	case resolver.Attack:
		a.landed(b.Field(), u, v, atk, res)
		return true
	}
	panic(fmt.Errorf("action: unhandled result kind %s", res.Kind))
}

func (a *Action) landed(f *engine.Field, u, v *engine.Unit, atk *engine.Attack, res resolver.Result) {
	switch atk.Type {
	case engine.AttackDamage, engine.AttackDrain, engine.AttackDrainOverflow:
		a.totalDamage += res.Power
		a.push(
			animationStep(v.Type.ID+"/hit", v.Position, LayerUnit),
			applyStep(&engine.HPChangedEvent{UnitID: v.ID, Name: v.Name(), Amount: -res.Power, Critical: res.Critical}),
			messageStep(v.ID, fmt.Sprintf("-%d", res.Power)),
		)
		if res.Power >= v.HitPoints {
			a.kill(u, v)
		}
	case engine.AttackHeal:
		a.push(
			animationStep(atk.Type.String(), v.Position, LayerEffect),
			applyStep(&engine.HPChangedEvent{UnitID: v.ID, Name: v.Name(), Amount: res.Power}),
			messageStep(v.ID, fmt.Sprintf("+%d", res.Power)),
		)
	case engine.AttackFear:
		a.push(
			animationStep(atk.Type.String(), v.Position, LayerEffect),
			applyStep(&engine.UnitFearedEvent{UnitID: v.ID, Name: v.Name()}),
		)
	case engine.AttackRevive:
		a.push(
			animationStep(atk.Type.String(), v.Position, LayerEffect),
			applyStep(&engine.UnitRevivedEvent{UnitID: v.ID, Name: v.Name(), HitPoints: resolver.RevivedHitPoints(v)}),
		)
	case engine.AttackCure:
		a.push(animationStep(atk.Type.String(), v.Position, LayerEffect))
		for _, e := range v.Effects {
			if e.IsCurableBy(v.Player, f) {
				a.push(applyStep(&engine.EffectRemovedEvent{UnitID: v.ID, Name: v.Name(), EffectType: e.Type, Cured: true}))
			}
		}
	case engine.AttackGiveAdditionalAttack:
		a.push(
			animationStep(atk.Type.String(), v.Position, LayerEffect),
			applyStep(&engine.ExtraTurnGrantedEvent{UnitID: v.ID, Name: v.Name()}),
		)
	default:
		panic(fmt.Errorf("action: unhandled attack type %s", atk.Type))
	}
}

// kill queues the death of v and the experience of its killer.
func (a *Action) kill(killer, v *engine.Unit) {
	a.push(
		animationStep(v.Type.ID+"/death", v.Position, LayerUnit),
		applyStep(&engine.UnitDiedEvent{UnitID: v.ID, Name: v.Name(), Killer: killer.ID}),
	)
	if killer.IsActive() && !killer.IsAlly(v) && v.Type.XPKilled > 0 {
		a.push(applyStep(&engine.ExperienceGainedEvent{UnitID: killer.ID, Name: killer.Name(), Amount: v.Type.XPKilled}))
	}
}

func (a *Action) drain(b Battle, u *engine.Unit, atk *engine.Attack) {
	if atk.Type != engine.AttackDrain && atk.Type != engine.AttackDrainOverflow {
		return
	}
	f := b.Field()
	for _, h := range resolver.DrainHeals(f, u, atk.Type, a.totalDamage) {
		mate := f.Unit(h.Unit)
		a.push(
			applyStep(&engine.HPChangedEvent{UnitID: h.Unit, Name: mate.Name(), Amount: h.Amount}),
			messageStep(h.Unit, fmt.Sprintf("+%d", h.Amount)),
		)
	}
}

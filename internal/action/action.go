// Package action sequences the unit actions of a battle.
//
// A unit action is a closed set of variants (main attack, secondary attack,
// defend, wait, retreat and the turn-start effect tick). Initializing an
// action resolves it against the field and queues its primitive steps;
// driving it plays the steps in order. The Sequencer holds at most one
// active action and one queued follow-up.
package action

import (
	"fmt"

	"github.com/suderio/warband/internal/engine"
	"github.com/suderio/warband/internal/resolver"
)

// Battle is what actions need from the battle they run in.
type Battle interface {
	Field() *engine.Field
	Resolver() *resolver.Resolver
	Presenter() Presenter
	// Apply mutates the field with the event and records it.
	Apply(ev engine.Event) error
	// Say shows a short text over a unit.
	Say(unit engine.UnitID, text string)
}

// Kind is the variant of an Action.
type Kind int

const (
	MainAttack Kind = iota + 1
	SecondaryAttack
	Defend
	Wait
	Retreat
	TurnTick
)

func (k Kind) String() string {
	switch k {
	case MainAttack:
		return "main attack"
	case SecondaryAttack:
		return "secondary attack"
	case Defend:
		return "defend"
	case Wait:
		return "wait"
	case Retreat:
		return "retreat"
	case TurnTick:
		return "turn tick"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Action is one unit action. Only the fields of its Kind are used.
type Action struct {
	Kind Kind
	Unit engine.UnitID

	// MainAttack
	Target engine.UnitID
	Repeat bool

	// SecondaryAttack
	Victims []engine.UnitID

	steps       []*Step
	initialized bool
	completed   bool
	followUp    *Action

	// results
	hits        []engine.UnitID
	totalDamage int
	skipped     engine.AttackType
}

// NewMainAttack attacks target with the unit's primary attack. Repeat marks
// the second hit of a double attacker.
func NewMainAttack(unit, target engine.UnitID, repeat bool) *Action {
	return &Action{Kind: MainAttack, Unit: unit, Target: target, Repeat: repeat}
}

// NewSecondaryAttack hits the given victims with the unit's secondary attack.
func NewSecondaryAttack(unit engine.UnitID, victims []engine.UnitID) *Action {
	return &Action{Kind: SecondaryAttack, Unit: unit, Target: engine.NoUnit, Victims: victims}
}

func NewDefend(unit engine.UnitID) *Action {
	return &Action{Kind: Defend, Unit: unit, Target: engine.NoUnit}
}

func NewWait(unit engine.UnitID) *Action {
	return &Action{Kind: Wait, Unit: unit, Target: engine.NoUnit}
}

func NewRetreat(unit engine.UnitID) *Action {
	return &Action{Kind: Retreat, Unit: unit, Target: engine.NoUnit}
}

// NewTurnTick processes the battle effects controlled by the unit at the
// start of its turn.
func NewTurnTick(unit engine.UnitID) *Action {
	return &Action{Kind: TurnTick, Unit: unit, Target: engine.NoUnit}
}

func (a *Action) String() string {
	if a.Target != engine.NoUnit {
		return fmt.Sprintf("%s of unit %d on unit %d", a.Kind, a.Unit, a.Target)
	}
	return fmt.Sprintf("%s of unit %d", a.Kind, a.Unit)
}

// IsCompleted reports whether every step has been played.
func (a *Action) IsCompleted() bool { return a.completed }

// ShouldPassTurn is false only for the first hit of a double attacker.
func (a *Action) ShouldPassTurn(f *engine.Field) bool {
	if a.Kind != MainAttack || a.Repeat {
		return true
	}
	u := f.Unit(a.Unit)
	return u == nil || !u.IsDoubleAttacker()
}

// Hits lists the victims the attack landed on.
func (a *Action) Hits() []engine.UnitID { return a.hits }

// TotalDamage is the damage dealt by the attack.
func (a *Action) TotalDamage() int { return a.totalDamage }

// Skipped is the disabling effect that made the unit lose its turn, or zero.
func (a *Action) Skipped() engine.AttackType { return a.skipped }

// Pending is the number of steps not yet played.
func (a *Action) Pending() int { return len(a.steps) }

// Initialize resolves the action and queues its steps. Leading steps that do
// not wait on the presenter are played at once, so an action without
// animations completes during initialization.
func (a *Action) Initialize(b Battle) error {
	if a.initialized {
		return nil
	}
	a.initialized = true
	f := b.Field()
	u := f.Unit(a.Unit)
	if u == nil {
		return fmt.Errorf("%s: %w", a, engine.ErrUnknownUnit)
	}

	switch a.Kind {
	case MainAttack:
		a.initMainAttack(b, u)
	case SecondaryAttack:
		a.initSecondaryAttack(b, u)
	case Defend:
		a.push(applyStep(&engine.EffectAppliedEvent{UnitID: u.ID, Name: u.Name(), Effect: engine.BattleEffect{
			Type:            engine.AttackDefend,
			Duration:        engine.FiniteDuration(1),
			DurationControl: u.ID,
			AppliedBy:       u.ID,
		}}))
	case Wait:
		a.push(applyStep(&engine.UnitWaitedEvent{UnitID: u.ID, Name: u.Name()}))
	case Retreat:
		a.push(animationStep(u.Type.ID+"/retreat", u.Position, LayerUnit))
		a.push(applyStep(&engine.UnitRetreatedEvent{UnitID: u.ID, Name: u.Name()}))
	case TurnTick:
		a.initTurnTick(b, u)
	default:
		panic(fmt.Errorf("action: unhandled action kind %s", a.Kind))
	}

	if err := a.BeforeUpdate(b); err != nil {
		return err
	}
	a.AfterUpdate(b)
	return nil
}

// BeforeUpdate plays steps until one has to wait for the presenter.
func (a *Action) BeforeUpdate(b Battle) error {
	for len(a.steps) > 0 {
		s := a.steps[0]
		switch s.Kind {
		case StepAnimation:
			if !s.started {
				s.handle = b.Presenter().PlayAnimation(s.Animation, s.Position, s.Layer, false)
				s.started = true
			}
			return nil
		case StepApply:
			if err := b.Apply(s.Event); err != nil {
				return fmt.Errorf("%s: %w", a, err)
			}
		case StepMessage:
			b.Say(s.Unit, s.Text)
		default:
			panic(fmt.Errorf("action: unknown step kind %d", s.Kind))
		}
		a.steps = a.steps[1:]
	}
	return nil
}

// AfterUpdate retires a finished animation and completes the action once
// nothing is left to play.
func (a *Action) AfterUpdate(b Battle) {
	if len(a.steps) > 0 {
		s := a.steps[0]
		if s.Kind == StepAnimation && s.started && b.Presenter().IsDestroyed(s.handle) {
			a.steps = a.steps[1:]
		}
	}
	if len(a.steps) == 0 && !a.completed {
		a.completed = true
		a.followUp = a.onCompleted(b)
	}
}

func (a *Action) onCompleted(b Battle) *Action {
	switch a.Kind {
	case MainAttack:
		u := b.Field().Unit(a.Unit)
		if u == nil || u.IsInactive() || u.SecondaryAttack() == nil || len(a.hits) == 0 {
			return nil
		}
		return NewSecondaryAttack(a.Unit, a.hits)
	case TurnTick:
		u := b.Field().Unit(a.Unit)
		if u != nil && u.IsActive() && u.Retreating && a.skipped == 0 {
			return NewRetreat(a.Unit)
		}
	}
	return nil
}

func (a *Action) push(steps ...*Step) {
	a.steps = append(a.steps, steps...)
}

package battle

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/suderio/warband/internal/action"
	"github.com/suderio/warband/internal/ai"
	"github.com/suderio/warband/internal/engine"
	"github.com/suderio/warband/internal/resolver"
)

func (c *Controller) awaiting() (*engine.Unit, error) {
	if c.field.Over {
		return nil, ErrBattleOver
	}
	if c.seq.State() != action.WaitingForPlayerTurn {
		return nil, ErrNotAwaitingCommand
	}
	return c.field.Unit(c.current), nil
}

func (c *Controller) issue(a *action.Action) error {
	c.command = a
	c.logger.Debug("command", zap.Stringer("action", a))
	return c.seq.Enqueue(a)
}

// BeginMainAttack attacks target with the current unit.
func (c *Controller) BeginMainAttack(target engine.UnitID) error {
	u, err := c.awaiting()
	if err != nil {
		return err
	}
	if !c.CanAttack(target) {
		return fmt.Errorf("%s cannot attack unit %d: %w", u, target, ErrInvalidTarget)
	}
	return c.issue(action.NewMainAttack(u.ID, target, c.secondAttack))
}

// Defend makes the current unit take half damage until its next turn.
func (c *Controller) Defend() error {
	u, err := c.awaiting()
	if err != nil {
		return err
	}
	return c.issue(action.NewDefend(u.ID))
}

// Wait defers the current unit to the end of the round. A unit may wait once
// per round and never during its second attack.
func (c *Controller) Wait() error {
	u, err := c.awaiting()
	if err != nil {
		return err
	}
	if c.secondAttack || c.waited[u.ID] {
		return fmt.Errorf("%s: %w", u, ErrCannotWait)
	}
	return c.issue(action.NewWait(u.ID))
}

// Retreat removes the current unit from the battle.
func (c *Controller) Retreat() error {
	u, err := c.awaiting()
	if err != nil {
		return err
	}
	return c.issue(action.NewRetreat(u.ID))
}

// UnitTurn lets the AI play the current unit.
func (c *Controller) UnitTurn() error {
	u, err := c.awaiting()
	if err != nil {
		return err
	}
	if c.ai == nil {
		return ErrNoDecisionMaker
	}
	cmd, err := c.ai.Command(c.resolver, u)
	if err != nil {
		return fmt.Errorf("ai for %s: %w", u, err)
	}
	c.logger.Debug("ai command", zap.Stringer("unit", u), zap.Stringer("command", cmd))
	return c.Execute(cmd)
}

// Execute issues a decided command for the current unit.
func (c *Controller) Execute(cmd ai.Command) error {
	switch cmd.Kind {
	case ai.CommandAttack:
		return c.BeginMainAttack(cmd.Target)
	case ai.CommandDefend:
		return c.Defend()
	case ai.CommandWait:
		return c.Wait()
	case ai.CommandRetreat:
		return c.Retreat()
	}
	return fmt.Errorf("unknown command %s", cmd.Kind)
}

// InstantResolve ends the battle at once in favour of the attacking squad.
func (c *Controller) InstantResolve() error {
	if c.field.Over {
		return ErrBattleOver
	}
	if c.seq.Busy() {
		return ErrNotAwaitingCommand
	}
	events := ai.InstantResolve(c.field)
	for _, ev := range events[:len(events)-1] {
		if err := c.Apply(ev); err != nil {
			return err
		}
	}
	c.end(events[len(events)-1].(*engine.BattleEndedEvent))
	return nil
}

// CurrentUnit is the unit whose turn it is, or nil.
func (c *Controller) CurrentUnit() *engine.Unit {
	return c.field.Unit(c.current)
}

// BattleState is the state of the action sequencer.
func (c *Controller) BattleState() action.State { return c.seq.State() }

// CanAttack reports whether the current unit may target the unit.
func (c *Controller) CanAttack(target engine.UnitID) bool {
	u := c.CurrentUnit()
	t := c.field.Unit(target)
	if u == nil || t == nil || c.field.Over {
		return false
	}
	for _, cand := range resolver.CommandTargets(c.field, u) {
		if cand.ID == target {
			return true
		}
	}
	return false
}

// Targets lists the units the current unit may attack.
func (c *Controller) Targets() []*engine.Unit {
	u := c.CurrentUnit()
	if u == nil || c.field.Over {
		return nil
	}
	return resolver.CommandTargets(c.field, u)
}

// IsSecondAttack reports whether the current unit is striking a second time.
func (c *Controller) IsSecondAttack() bool { return c.secondAttack }

// BattleUnits lists every unit of the battle.
func (c *Controller) BattleUnits() []*engine.Unit { return c.field.Units }

// IsOver reports whether the battle has a winner.
func (c *Controller) IsOver() bool { return c.field.Over }

// Winner is the winning side once the battle is over.
func (c *Controller) Winner() (engine.PlayerID, bool) {
	if !c.field.Over {
		return engine.NoPlayer, false
	}
	return c.field.Winner, true
}

// Pending lists the units still to act this round, in order.
func (c *Controller) Pending() []engine.UnitID {
	var ids []engine.UnitID
	for _, e := range c.scheduler.Pending() {
		ids = append(ids, e.Unit)
	}
	return ids
}

// Messages returns the battle log lines added since the last call.
func (c *Controller) Messages() []string {
	m := c.messages
	c.messages = nil
	return m
}

// Floating returns the floating texts added since the last call.
func (c *Controller) Floating() []Floating {
	f := c.floating
	c.floating = nil
	return f
}

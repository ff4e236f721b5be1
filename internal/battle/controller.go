// Package battle runs one battle: it owns the field, the turn scheduler and
// the action sequencer, exposes the command and query surface used by
// player input and the AI, and advances the battle from the per-frame hooks.
package battle

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/suderio/warband/internal/action"
	"github.com/suderio/warband/internal/ai"
	"github.com/suderio/warband/internal/engine"
	"github.com/suderio/warband/internal/resolver"
	"github.com/suderio/warband/internal/turn"
)

var (
	ErrNotAwaitingCommand = errors.New("battle is not awaiting a command")
	ErrInvalidTarget      = errors.New("invalid target")
	ErrBattleOver         = errors.New("battle is over")
	ErrCannotWait         = errors.New("unit cannot wait again this round")
	ErrNoDecisionMaker    = errors.New("no decision maker configured")
)

// Journal receives every event applied to the field.
type Journal interface {
	Append(evt engine.Event) error
}

// Options configures a Controller.
type Options struct {
	Random          engine.Random
	Presenter       action.Presenter
	InitiativeRange int
	AttackRange     int
	AI              *ai.DecisionMaker
	Journal         Journal
	Logger          *zap.Logger
}

// Floating is a short text shown over a unit.
type Floating struct {
	Unit engine.UnitID
	Text string
}

type phase int

const (
	phaseTick phase = iota
	phaseCommand
)

// Controller drives a battle.
type Controller struct {
	field     *engine.Field
	resolver  *resolver.Resolver
	scheduler *turn.Scheduler
	seq       *action.Sequencer
	presenter action.Presenter
	ai        *ai.DecisionMaker
	journal   Journal
	logger    *zap.Logger

	phase        phase
	current      engine.UnitID
	secondAttack bool
	tick         *action.Action
	command      *action.Action
	ticked       map[engine.UnitID]int
	waited       map[engine.UnitID]bool

	messages []string
	floating []Floating
}

// New builds the field from the setup events and prepares the battle. The
// setup events are journaled. Load starts the first round.
func New(setup []engine.Event, opts Options) (*Controller, error) {
	if opts.Random == nil {
		return nil, fmt.Errorf("battle: random source is required")
	}
	if opts.Presenter == nil {
		opts.Presenter = action.NewTickPresenter(0)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	c := &Controller{
		field:     engine.NewField(),
		scheduler: turn.NewScheduler(opts.Random, opts.InitiativeRange),
		presenter: opts.Presenter,
		ai:        opts.AI,
		journal:   opts.Journal,
		logger:    opts.Logger,
		current:   engine.NoUnit,
		ticked:    make(map[engine.UnitID]int),
		waited:    make(map[engine.UnitID]bool),
	}
	c.resolver = resolver.New(c.field, opts.Random, opts.AttackRange)
	c.seq = action.NewSequencer(c)
	for _, ev := range setup {
		if err := c.Apply(ev); err != nil {
			return nil, fmt.Errorf("battle setup: %w", err)
		}
	}
	return c, nil
}

// Load marks the battle as loaded and starts the first turn.
func (c *Controller) Load() error {
	if err := c.seq.Load(); err != nil {
		return err
	}
	if c.field.Over {
		c.seq.SetState(action.CompletedBattle)
		return nil
	}
	if err := c.nextTurn(); err != nil {
		return err
	}
	return c.advance()
}

// BeforeSceneUpdate is the first per-frame hook. It drives the active
// action and advances the turn once the sequencer is drained. Animation
// timing belongs to the presenter, so the frame duration is ignored.
func (c *Controller) BeforeSceneUpdate(time.Duration) error {
	if c.seq.State() == action.CompletedBattle {
		c.seq.SetState(action.WaitExit)
		return nil
	}
	if c.seq.State() == action.WaitExit {
		return nil
	}
	if err := c.seq.BeforeUpdate(); err != nil {
		return err
	}
	return c.advance()
}

// AfterSceneUpdate is the second per-frame hook.
func (c *Controller) AfterSceneUpdate() {
	c.seq.AfterUpdate()
}

func (c *Controller) advance() error {
	for c.seq.State() == action.CompletedUnitAction {
		if c.checkVictory() {
			return nil
		}
		if err := c.onCompleted(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Controller) onCompleted() error {
	u := c.field.Unit(c.current)
	switch c.phase {
	case phaseTick:
		if u.IsInactive() || c.tick.Skipped() != 0 {
			return c.nextTurn()
		}
		c.phase = phaseCommand
		c.seq.SetState(action.WaitingForPlayerTurn)
		return nil
	case phaseCommand:
		if u.IsActive() && !c.command.ShouldPassTurn(c.field) {
			return c.startTurn(u.ID, true)
		}
		return c.nextTurn()
	}
	return nil
}

func (c *Controller) nextTurn() error {
	id, ok := c.scheduler.NextUnit(c.field)
	if !ok {
		if err := c.Apply(&engine.RoundStartedEvent{Round: c.field.Round + 1}); err != nil {
			return err
		}
		c.logger.Info("round started", zap.Int("round", c.field.Round))
		clear(c.waited)
		if id, ok = c.scheduler.NextRound(c.field); !ok {
			c.checkVictory()
			return nil
		}
	}
	return c.startTurn(id, false)
}

func (c *Controller) startTurn(id engine.UnitID, repeat bool) error {
	u := c.field.Unit(id)
	c.secondAttack = repeat
	if err := c.Apply(&engine.TurnStartedEvent{UnitID: id, Name: u.Name(), Repeat: repeat}); err != nil {
		return err
	}
	c.current = id
	c.logger.Debug("turn started", zap.Stringer("unit", u), zap.Bool("repeat", repeat))
	if !repeat && c.ticked[id] != c.field.Round {
		c.ticked[id] = c.field.Round
		c.phase = phaseTick
		c.tick = action.NewTurnTick(id)
		return c.seq.Enqueue(c.tick)
	}
	c.phase = phaseCommand
	c.seq.SetState(action.WaitingForPlayerTurn)
	return nil
}

// checkVictory ends the battle once a squad is defeated.
func (c *Controller) checkVictory() bool {
	if c.field.Over {
		return true
	}
	winner, ok := c.field.BattleWinner()
	if !ok {
		return false
	}
	c.end(&engine.BattleEndedEvent{Winner: winner, WinnerName: c.field.Squads[winner].Name})
	return true
}

func (c *Controller) end(ev *engine.BattleEndedEvent) {
	if err := c.Apply(ev); err != nil {
		c.logger.Error("end battle", zap.Error(err))
	}
	c.seq.SetState(action.CompletedBattle)
	c.logger.Info("battle ended",
		zap.String("winner", ev.WinnerName),
		zap.Int("round", c.field.Round),
		zap.Bool("instant", ev.Instant))
}

// Apply mutates the field with the event, keeps the turn queue in sync and
// journals the event.
func (c *Controller) Apply(ev engine.Event) error {
	if err := ev.Apply(c.field); err != nil {
		return err
	}
	switch e := ev.(type) {
	case *engine.UnitWaitedEvent:
		c.scheduler.Wait(e.UnitID)
		c.waited[e.UnitID] = true
	case *engine.ExtraTurnGrantedEvent:
		c.scheduler.GrantTurn(c.field.Unit(e.UnitID))
	case *engine.EffectAppliedEvent:
		if e.Effect.Type == engine.AttackReduceInitiative {
			c.scheduler.Reorder(c.field.Unit(e.UnitID))
		}
	case *engine.EffectRemovedEvent:
		if e.EffectType == engine.AttackReduceInitiative {
			c.scheduler.Reorder(c.field.Unit(e.UnitID))
		}
	}
	if msg := ev.Message(); msg != "" {
		c.messages = append(c.messages, msg)
	}
	if c.journal != nil {
		if err := c.journal.Append(ev); err != nil {
			c.logger.Warn("journal append failed", zap.String("event", string(ev.Type())), zap.Error(err))
		}
	}
	return nil
}

// Say records a floating text.
func (c *Controller) Say(unit engine.UnitID, text string) {
	c.floating = append(c.floating, Floating{Unit: unit, Text: text})
}

func (c *Controller) Field() *engine.Field         { return c.field }
func (c *Controller) Resolver() *resolver.Resolver { return c.resolver }
func (c *Controller) Presenter() action.Presenter  { return c.presenter }

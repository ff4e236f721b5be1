package battle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/suderio/warband/internal/action"
	"github.com/suderio/warband/internal/engine"
)

// ErrStalled is returned by Run when the battle does not end within the
// tick budget.
var ErrStalled = errors.New("battle stalled")

// FrameTime is the tick reported to BeforeSceneUpdate by Run.
const FrameTime = time.Second / 60

// Placement puts a unit of a type at a squad position. HitPoints, when
// positive, starts the unit wounded.
type Placement struct {
	Type      *engine.UnitType
	Position  engine.Position
	HitPoints int
}

// SquadSetup is one side of a battle.
type SquadSetup struct {
	Name  string
	Units []Placement
}

// Setup returns the events placing both squads on a fresh field.
func Setup(attacker, defender SquadSetup) []engine.Event {
	events := []engine.Event{&engine.BattleStartedEvent{AttackerName: attacker.Name, DefenderName: defender.Name}}
	id := 0
	for p, squad := range []SquadSetup{attacker, defender} {
		for _, pl := range squad.Units {
			events = append(events, &engine.UnitAddedEvent{
				ID:        engine.UnitID(id),
				Player:    engine.PlayerID(p),
				UnitType:  pl.Type,
				Position:  pl.Position,
				HitPoints: pl.HitPoints,
			})
			id++
		}
	}
	return events
}

// Controls tells Run which side is played by the AI. Players return false
// for sides that are driven elsewhere.
type Controls func(p engine.PlayerID) bool

// AllAI lets the AI play both squads.
func AllAI(engine.PlayerID) bool { return true }

// Run drives the battle frame by frame until it is over, letting the AI
// play the units of the sides it controls. It returns ErrStalled after
// maxTicks frames. A headless presenter is ticked once per frame.
func Run(ctx context.Context, c *Controller, controls Controls, maxTicks int) error {
	ticker, _ := c.presenter.(interface{ Tick() })
	for i := 0; !c.IsOver(); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if i >= maxTicks {
			return fmt.Errorf("after %d ticks in round %d: %w", maxTicks, c.field.Round, ErrStalled)
		}
		if ticker != nil {
			ticker.Tick()
		}
		if err := c.BeforeSceneUpdate(FrameTime); err != nil {
			return err
		}
		if c.BattleState() == action.WaitingForPlayerTurn {
			u := c.CurrentUnit()
			if !controls(u.Player) {
				return nil
			}
			if err := c.UnitTurn(); err != nil {
				return err
			}
		}
		c.AfterSceneUpdate()
	}
	return nil
}

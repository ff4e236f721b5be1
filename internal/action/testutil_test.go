package action

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/suderio/warband/internal/engine"
	"github.com/suderio/warband/internal/resolver"
)

type fakeBattle struct {
	field     *engine.Field
	resolver  *resolver.Resolver
	presenter *TickPresenter
	rnd       *engine.QueueRandom
	events    []engine.Event
	said      []string
}

func (b *fakeBattle) Field() *engine.Field         { return b.field }
func (b *fakeBattle) Resolver() *resolver.Resolver { return b.resolver }
func (b *fakeBattle) Presenter() Presenter         { return b.presenter }
func (b *fakeBattle) Apply(ev engine.Event) error {
	if err := ev.Apply(b.field); err != nil {
		return err
	}
	b.events = append(b.events, ev)
	return nil
}
func (b *fakeBattle) Say(unit engine.UnitID, text string) {
	b.said = append(b.said, fmt.Sprintf("%d:%s", unit, text))
}

func (b *fakeBattle) eventTypes() []engine.EventType {
	res := make([]engine.EventType, 0, len(b.events))
	for _, ev := range b.events {
		res = append(res, ev.Type())
	}
	return res
}

func strike(t engine.AttackType, power, accuracy int) engine.Attack {
	return engine.Attack{Name: t.String(), Type: t, Source: engine.SourceWeapon, Reach: engine.ReachAdjacent, Power: power, Accuracy: accuracy}
}

func unitType(id string, hp int, primary engine.Attack) *engine.UnitType {
	return &engine.UnitType{ID: id, Name: id, HitPoints: hp, Initiative: 50, AttackCount: 1, XPKilled: 10, Primary: primary}
}

type member struct {
	player engine.PlayerID
	ut     *engine.UnitType
	pos    engine.Position
}

// newBattle builds a loaded battle. Random draws come from the queue and
// default to the lowest value (always hit, no damage spread).
func newBattle(t *testing.T, members ...member) *fakeBattle {
	events := []engine.Event{&engine.BattleStartedEvent{AttackerName: "a", DefenderName: "d"}, &engine.RoundStartedEvent{Round: 1}}
	for i, m := range members {
		events = append(events, &engine.UnitAddedEvent{ID: engine.UnitID(i), Player: m.player, UnitType: m.ut, Position: m.pos})
	}
	f, err := engine.NewProjector().Build(events)
	require.NoError(t, err)
	rnd := engine.NewQueueRandom()
	return &fakeBattle{field: f, rnd: rnd, resolver: resolver.New(f, rnd, 5), presenter: NewTickPresenter(1)}
}

// duelBattle is a knight (0) facing an orc (1).
func duelBattle(t *testing.T, knight engine.Attack, orcHP int) *fakeBattle {
	return newBattle(t,
		member{engine.Attacker, unitType("knight", 100, knight), engine.Position{}},
		member{engine.Defender, unitType("orc", orcHP, strike(engine.AttackDamage, 10, 80)), engine.Position{}},
	)
}

// drive ticks the sequencer until the queue is drained and returns the
// actions exposed as completed.
func drive(t *testing.T, b *fakeBattle, s *Sequencer) []*Action {
	var exposed []*Action
	for i := 0; i < 100 && s.State() != CompletedUnitAction; i++ {
		b.presenter.Tick()
		require.NoError(t, s.BeforeUpdate())
		s.AfterUpdate()
		if c := s.Completed(); c != nil {
			exposed = append(exposed, c)
		}
	}
	require.Equal(t, CompletedUnitAction, s.State(), "sequencer did not drain")
	return exposed
}

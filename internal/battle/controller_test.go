package battle

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suderio/warband/internal/action"
	"github.com/suderio/warband/internal/ai"
	"github.com/suderio/warband/internal/engine"
	"github.com/suderio/warband/internal/rules"
)

type memJournal struct {
	events []engine.Event
}

func (j *memJournal) Append(evt engine.Event) error {
	j.events = append(j.events, evt)
	return nil
}

func melee(power, accuracy int) engine.Attack {
	return engine.Attack{Name: "Strike", Type: engine.AttackDamage, Source: engine.SourceWeapon, Reach: engine.ReachAdjacent, Power: power, Accuracy: accuracy}
}

func unitType(id string, hp, initiative int, primary engine.Attack) *engine.UnitType {
	return &engine.UnitType{ID: id, Name: id, HitPoints: hp, Initiative: initiative, AttackCount: 1, XPKilled: 20, Primary: primary}
}

func at(line, flank int) engine.Position { return engine.Position{Line: line, Flank: flank} }

func newController(t *testing.T, rnd engine.Random, attacker, defender SquadSetup) (*Controller, *memJournal) {
	reg, err := rules.NewRegistry(rnd)
	require.NoError(t, err)
	dm, err := ai.New(reg, "")
	require.NoError(t, err)
	j := &memJournal{}
	c, err := New(Setup(attacker, defender), Options{
		Random:          rnd,
		Presenter:       action.NewTickPresenter(1),
		InitiativeRange: 0,
		AttackRange:     0,
		AI:              dm,
		Journal:         j,
	})
	require.NoError(t, err)
	require.NoError(t, c.Load())
	return c, j
}

// frame runs one update cycle.
func frame(t *testing.T, c *Controller) {
	c.presenter.(*action.TickPresenter).Tick()
	require.NoError(t, c.BeforeSceneUpdate(FrameTime))
	c.AfterSceneUpdate()
}

// settle runs frames until the controller waits for a command or the battle ends.
func settle(t *testing.T, c *Controller) {
	for i := 0; i < 200; i++ {
		st := c.BattleState()
		if st == action.WaitingForPlayerTurn || st == action.CompletedBattle || st == action.WaitExit {
			return
		}
		frame(t, c)
	}
	t.Fatalf("controller did not settle, state %s", c.BattleState())
}

func TestWaitingUnitsActLastInReverseOrder(t *testing.T) {
	c, _ := newController(t, engine.NewQueueRandom(),
		SquadSetup{Name: "Empire", Units: []Placement{
			{Type: unitType("u1", 100, 90, melee(10, 100)), Position: at(engine.FrontLine, 0)},
			{Type: unitType("u2", 100, 80, melee(10, 100)), Position: at(engine.FrontLine, 1)},
			{Type: unitType("u3", 100, 70, melee(10, 100)), Position: at(engine.FrontLine, 2)},
		}},
		SquadSetup{Name: "Horde", Units: []Placement{
			{Type: unitType("orc", 100, 10, melee(10, 100)), Position: at(engine.FrontLine, 1)},
		}},
	)

	var order []string
	for i := 0; i < 3; i++ {
		require.Equal(t, action.WaitingForPlayerTurn, c.BattleState())
		order = append(order, c.CurrentUnit().Name())
		require.NoError(t, c.Wait())
		settle(t, c)
	}
	assert.Equal(t, "orc", c.CurrentUnit().Name())
	require.NoError(t, c.Defend())
	settle(t, c)

	for i := 0; i < 3; i++ {
		order = append(order, c.CurrentUnit().Name())
		if i == 0 {
			assert.ErrorIs(t, c.Wait(), ErrCannotWait)
		}
		require.NoError(t, c.Defend())
		settle(t, c)
	}
	assert.Equal(t, []string{"u1", "u2", "u3", "u3", "u2", "u1"}, order)
	assert.Equal(t, 2, c.Field().Round)
}

func TestSimpleKillEndsBattle(t *testing.T) {
	c, j := newController(t, engine.NewQueueRandom(),
		SquadSetup{Name: "Empire", Units: []Placement{{Type: unitType("knight", 100, 60, melee(50, 100)), Position: at(engine.FrontLine, 1)}}},
		SquadSetup{Name: "Horde", Units: []Placement{{Type: unitType("orc", 30, 10, melee(10, 100)), Position: at(engine.FrontLine, 1)}}},
	)
	require.Equal(t, "knight", c.CurrentUnit().Name())

	require.NoError(t, c.BeginMainAttack(1))
	assert.ErrorIs(t, c.Defend(), ErrNotAwaitingCommand)
	settle(t, c)

	assert.True(t, c.IsOver())
	winner, ok := c.Winner()
	require.True(t, ok)
	assert.Equal(t, engine.Attacker, winner)
	orc := c.Field().Unit(1)
	assert.True(t, orc.Dead)
	assert.Equal(t, 0, orc.HitPoints)
	assert.Equal(t, 20, c.Field().Unit(0).Experience)
	assert.ErrorIs(t, c.Defend(), ErrBattleOver)

	frame(t, c)
	frame(t, c)
	assert.Equal(t, action.WaitExit, c.BattleState())
	assert.Equal(t, engine.EventBattleEnded, j.events[len(j.events)-1].Type())
	assert.Contains(t, c.Messages(), "Battle over. Empire wins.")
}

func TestInvalidTarget(t *testing.T) {
	c, _ := newController(t, engine.NewQueueRandom(),
		SquadSetup{Name: "Empire", Units: []Placement{
			{Type: unitType("knight", 100, 60, melee(50, 100)), Position: at(engine.FrontLine, 0)},
			{Type: unitType("squire", 100, 50, melee(50, 100)), Position: at(engine.FrontLine, 1)},
		}},
		SquadSetup{Name: "Horde", Units: []Placement{
			{Type: unitType("orc", 30, 10, melee(10, 100)), Position: at(engine.FrontLine, 0)},
			{Type: unitType("troll", 30, 10, melee(10, 100)), Position: at(engine.FrontLine, 2)},
		}},
	)

	assert.False(t, c.CanAttack(1))
	assert.False(t, c.CanAttack(3), "the troll is two flanks away")
	assert.True(t, c.CanAttack(2))
	assert.ErrorIs(t, c.BeginMainAttack(1), ErrInvalidTarget)
	assert.ErrorIs(t, c.BeginMainAttack(42), ErrInvalidTarget)
	assert.Equal(t, action.WaitingForPlayerTurn, c.BattleState())
}

func TestDoubleAttackRepeatsTurn(t *testing.T) {
	ogre := unitType("ogre", 100, 60, melee(10, 100))
	ogre.AttackCount = 2
	c, _ := newController(t, engine.NewQueueRandom(),
		SquadSetup{Name: "Empire", Units: []Placement{{Type: ogre, Position: at(engine.FrontLine, 1)}}},
		SquadSetup{Name: "Horde", Units: []Placement{{Type: unitType("orc", 100, 10, melee(10, 100)), Position: at(engine.FrontLine, 1)}}},
	)

	require.NoError(t, c.BeginMainAttack(1))
	settle(t, c)
	assert.Equal(t, "ogre", c.CurrentUnit().Name())
	assert.True(t, c.IsSecondAttack())
	assert.ErrorIs(t, c.Wait(), ErrCannotWait)

	require.NoError(t, c.BeginMainAttack(1))
	settle(t, c)
	assert.Equal(t, "orc", c.CurrentUnit().Name())
	assert.False(t, c.IsSecondAttack())
	assert.Equal(t, 80, c.Field().Unit(1).HitPoints)
}

func TestRetreatLosesBattle(t *testing.T) {
	c, _ := newController(t, engine.NewQueueRandom(),
		SquadSetup{Name: "Empire", Units: []Placement{{Type: unitType("knight", 100, 60, melee(50, 100)), Position: at(engine.FrontLine, 1)}}},
		SquadSetup{Name: "Horde", Units: []Placement{{Type: unitType("orc", 30, 10, melee(10, 100)), Position: at(engine.FrontLine, 1)}}},
	)

	require.NoError(t, c.Retreat())
	settle(t, c)

	winner, ok := c.Winner()
	require.True(t, ok)
	assert.Equal(t, engine.Defender, winner)
	assert.True(t, c.Field().Unit(0).Retreated)
}

func TestInstantResolve(t *testing.T) {
	c, _ := newController(t, engine.NewQueueRandom(),
		SquadSetup{Name: "Empire", Units: []Placement{{Type: unitType("knight", 100, 60, melee(50, 100)), Position: at(engine.FrontLine, 1)}}},
		SquadSetup{Name: "Horde", Units: []Placement{{Type: unitType("orc", 300, 10, melee(10, 100)), Position: at(engine.FrontLine, 1)}}},
	)

	require.NoError(t, c.InstantResolve())

	assert.Equal(t, action.CompletedBattle, c.BattleState())
	assert.Equal(t, 1, c.Field().Unit(0).HitPoints)
	assert.True(t, c.Field().Unit(1).Dead)
	winner, _ := c.Winner()
	assert.Equal(t, engine.Attacker, winner)
	assert.ErrorIs(t, c.InstantResolve(), ErrBattleOver)
}

func TestRunStopsForPlayer(t *testing.T) {
	c, _ := newController(t, engine.NewQueueRandom(),
		SquadSetup{Name: "Empire", Units: []Placement{{Type: unitType("knight", 100, 10, melee(10, 100)), Position: at(engine.FrontLine, 1)}}},
		SquadSetup{Name: "Horde", Units: []Placement{{Type: unitType("orc", 100, 60, melee(10, 100)), Position: at(engine.FrontLine, 1)}}},
	)

	err := Run(context.Background(), c, func(p engine.PlayerID) bool { return p == engine.Defender }, 1000)
	require.NoError(t, err)
	assert.Equal(t, "knight", c.CurrentUnit().Name())
	assert.Equal(t, 90, c.CurrentUnit().HitPoints)
}

func TestRunStalls(t *testing.T) {
	shield := unitType("shield", 100, 50, melee(10, 100))
	shield.TypeProtections = []engine.AttackTypeProtection{{Type: engine.AttackDamage, Category: engine.Immunity}}
	c, _ := newController(t, engine.NewQueueRandom(),
		SquadSetup{Name: "Empire", Units: []Placement{{Type: shield, Position: at(engine.FrontLine, 1)}}},
		SquadSetup{Name: "Horde", Units: []Placement{{Type: shield, Position: at(engine.FrontLine, 1)}}},
	)

	err := Run(context.Background(), c, AllAI, 100)
	assert.True(t, errors.Is(err, ErrStalled))
}

func TestGrantedTurnsAndInitiativeCurses(t *testing.T) {
	bard := unitType("bard", 60, 80, ranged(engine.AttackGiveAdditionalAttack, 0, 100))
	hexer := unitType("hexer", 60, 95, ranged(engine.AttackReduceInitiative, 50, 100))
	c, _ := newController(t, engine.NewQueueRandom(),
		SquadSetup{Name: "Empire", Units: []Placement{
			{Type: unitType("knight", 100, 90, melee(10, 100)), Position: at(engine.FrontLine, 1)},
			{Type: bard, Position: at(engine.BackLine, 1)},
		}},
		SquadSetup{Name: "Horde", Units: []Placement{
			{Type: hexer, Position: at(engine.BackLine, 1)},
			{Type: unitType("goblin", 100, 60, melee(10, 100)), Position: at(engine.FrontLine, 1)},
			{Type: unitType("orc", 100, 50, melee(10, 100)), Position: at(engine.FrontLine, 0)},
		}},
	)
	settle(t, c)
	require.Equal(t, "hexer", c.CurrentUnit().Name())
	assert.Equal(t, []engine.UnitID{0, 1, 3, 4}, c.Pending())

	require.NoError(t, c.BeginMainAttack(0))
	settle(t, c)
	assert.Equal(t, 45, c.Field().Unit(0).Initiative())
	assert.Equal(t, []engine.UnitID{3, 4, 0}, c.Pending(), "the cursed knight drops behind the orc")

	require.Equal(t, "bard", c.CurrentUnit().Name())
	require.NoError(t, c.BeginMainAttack(0))
	settle(t, c)
	assert.Equal(t, "knight", c.CurrentUnit().Name(), "the bard's song lets the knight act at once")
	assert.Equal(t, []engine.UnitID{3, 4, 0}, c.Pending())

	order := []string{"hexer", "bard"}
	for i := 0; c.Field().Round == 1 && i < 10; i++ {
		u := c.CurrentUnit()
		order = append(order, u.Name())
		switch u.Name() {
		case "knight":
			require.NoError(t, c.BeginMainAttack(3))
		case "goblin":
			require.NoError(t, c.Apply(&engine.EffectRemovedEvent{UnitID: 0, Name: "knight", EffectType: engine.AttackReduceInitiative}))
			assert.Equal(t, []engine.UnitID{0, 4}, c.Pending(), "the lifted curse restores the knight's place")
			require.NoError(t, c.Defend())
		default:
			require.NoError(t, c.Defend())
		}
		settle(t, c)
	}
	assert.Equal(t, []string{"hexer", "bard", "knight", "goblin", "knight", "orc"}, order)
	assert.Equal(t, 2, c.Field().Round)
}

package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/suderio/warband/internal/engine"
)

func attack(t engine.AttackType, power, accuracy int) engine.Attack {
	return engine.Attack{Name: t.String(), Type: t, Source: engine.SourceWeapon, Reach: engine.ReachAdjacent, Power: power, Accuracy: accuracy}
}

func unitType(id string, hp, armor int, primary engine.Attack) *engine.UnitType {
	return &engine.UnitType{ID: id, Name: id, HitPoints: hp, Armor: armor, Initiative: 50, AttackCount: 1, Primary: primary}
}

type slot struct {
	player engine.PlayerID
	ut     *engine.UnitType
	pos    engine.Position
}

func buildField(t testing.TB, slots ...slot) *engine.Field {
	events := []engine.Event{&engine.BattleStartedEvent{AttackerName: "a", DefenderName: "d"}}
	for i, s := range slots {
		events = append(events, &engine.UnitAddedEvent{ID: engine.UnitID(i), Player: s.player, UnitType: s.ut, Position: s.pos})
	}
	f, err := engine.NewProjector().Build(events)
	require.NoError(t, err)
	return f
}

// duel is attacker 0 against defender 1.
func duel(t testing.TB, primary engine.Attack, targetHP, armor int) *engine.Field {
	return buildField(t,
		slot{engine.Attacker, unitType("attacker", 100, 0, primary), engine.Position{}},
		slot{engine.Defender, unitType("target", targetHP, armor, attack(engine.AttackDamage, 10, 80)), engine.Position{}},
	)
}

func TestSimpleKill(t *testing.T) {
	f := duel(t, attack(engine.AttackDamage, 50, 100), 30, 0)
	// accuracy roll 0, attack range roll 0
	r := New(f, engine.NewQueueRandom(0, 0), 5)
	a, target := f.Unit(0), f.Unit(1)

	res := r.Resolve(a, target, a.PrimaryAttack(), Power(a, a.PrimaryAttack()), 100)
	assert.Equal(t, Attack, res.Kind)
	assert.Equal(t, 30, res.Power)

	require.NoError(t, (&engine.HPChangedEvent{UnitID: 1, Amount: -res.Power}).Apply(f))
	assert.Equal(t, 0, target.HitPoints)
}

func TestDefendedHalving(t *testing.T) {
	f := duel(t, attack(engine.AttackDamage, 50, 100), 30, 0)
	target := f.Unit(1)
	target.Effects = append(target.Effects, &engine.BattleEffect{Type: engine.AttackDefend, Duration: engine.FiniteDuration(1), DurationControl: 1, AppliedBy: 1})
	r := New(f, engine.NewQueueRandom(0, 0), 5)
	a := f.Unit(0)

	res := r.Resolve(a, target, a.PrimaryAttack(), 50, 100)
	assert.Equal(t, Attack, res.Kind)
	assert.Equal(t, 15, res.Power)
}

func TestDefendedHalvingRoundsUp(t *testing.T) {
	for hp, want := range map[int]int{1: 1, 2: 1, 3: 2, 31: 16} {
		f := duel(t, attack(engine.AttackDamage, 50, 100), 50, 0)
		target := f.Unit(1)
		target.HitPoints = hp
		target.Effects = append(target.Effects, &engine.BattleEffect{Type: engine.AttackDefend, Duration: engine.FiniteDuration(1), DurationControl: 1, AppliedBy: 1})
		a := f.Unit(0)

		res := New(f, engine.NewQueueRandom(0, 0), 5).Resolve(a, target, a.PrimaryAttack(), 50, 100)
		assert.Equal(t, Attack, res.Kind, "hp %d", hp)
		assert.Equal(t, want, res.Power, "hp %d", hp)
	}
}

func TestArmorAndRange(t *testing.T) {
	f := duel(t, attack(engine.AttackDamage, 40, 100), 200, 50)
	r := New(f, engine.NewQueueRandom(0, 10), 10)
	a := f.Unit(0)

	res := r.Resolve(a, f.Unit(1), a.PrimaryAttack(), 40, 100)
	assert.Equal(t, 25, res.Power) // (40 + 10) reduced by 50%
}

func TestCriticalIgnoresArmor(t *testing.T) {
	atk := attack(engine.AttackDamage, 100, 100)
	atk.Critical = true
	f := duel(t, atk, 500, 50)
	r := New(f, engine.NewQueueRandom(0, 0), 0)
	a := f.Unit(0)

	res := r.Resolve(a, f.Unit(1), a.PrimaryAttack(), 100, 100)
	assert.True(t, res.Critical)
	assert.Equal(t, 55, res.Power)
}

func TestImmunityShortCircuit(t *testing.T) {
	for _, accuracy := range []int{0, 100} {
		f := duel(t, attack(engine.AttackParalyze, 0, accuracy), 50, 0)
		f.Unit(1).TypeProtections = []engine.AttackTypeProtection{{Type: engine.AttackParalyze, Category: engine.Immunity}}
		rnd := engine.NewQueueRandom(99)
		r := New(f, rnd, 5)
		a := f.Unit(0)

		res := r.Resolve(a, f.Unit(1), a.PrimaryAttack(), 0, accuracy)
		assert.Equal(t, Immunity, res.Kind, "accuracy %d", accuracy)
		assert.Equal(t, 1, rnd.Len(), "no accuracy roll is drawn")
	}
}

func TestSourceWard(t *testing.T) {
	atk := attack(engine.AttackDamage, 30, 100)
	atk.Source = engine.SourceFire
	f := duel(t, atk, 50, 0)
	f.Unit(1).SourceProtections = []engine.AttackSourceProtection{{Source: engine.SourceFire, Category: engine.Ward}}
	r := New(f, engine.NewQueueRandom(), 5)
	a := f.Unit(0)

	res := r.Resolve(a, f.Unit(1), a.PrimaryAttack(), 30, 100)
	assert.Equal(t, Ward, res.Kind)
	assert.False(t, res.WardByType)
}

func TestTypeProtectionCheckedBeforeSource(t *testing.T) {
	atk := attack(engine.AttackPoison, 10, 100)
	atk.Source = engine.SourceDeath
	f := duel(t, atk, 50, 0)
	f.Unit(1).TypeProtections = []engine.AttackTypeProtection{{Type: engine.AttackPoison, Category: engine.Ward}}
	f.Unit(1).SourceProtections = []engine.AttackSourceProtection{{Source: engine.SourceDeath, Category: engine.Immunity}}

	cat, byType, ok := CheckProtection(f.Unit(1), &atk)
	require.True(t, ok)
	assert.Equal(t, engine.Ward, cat)
	assert.True(t, byType)
}

func TestMiss(t *testing.T) {
	f := duel(t, attack(engine.AttackDamage, 30, 80), 50, 0)
	a := f.Unit(0)

	res := New(f, engine.NewQueueRandom(81), 5).Resolve(a, f.Unit(1), a.PrimaryAttack(), 30, 80)
	assert.Equal(t, Miss, res.Kind)

	res = New(f, engine.NewQueueRandom(80, 0), 5).Resolve(a, f.Unit(1), a.PrimaryAttack(), 30, 80)
	assert.Equal(t, Attack, res.Kind)
}

func TestRetreatedTarget(t *testing.T) {
	f := duel(t, attack(engine.AttackDamage, 30, 100), 50, 0)
	f.Unit(1).Retreated = true
	a := f.Unit(0)

	res := New(f, engine.NewQueueRandom(), 5).Resolve(a, f.Unit(1), a.PrimaryAttack(), 30, 100)
	assert.Equal(t, NoEffect, res.Kind)
}

func TestDeadTarget(t *testing.T) {
	f := duel(t, attack(engine.AttackDamage, 30, 100), 50, 0)
	f.Unit(1).Dead = true
	a := f.Unit(0)
	r := New(f, engine.NewQueueRandom(), 5)

	assert.Equal(t, NoEffect, r.Resolve(a, f.Unit(1), a.PrimaryAttack(), 30, 100).Kind)

	revive := attack(engine.AttackRevive, 0, 100)
	a.Type.Secondary = &revive
	assert.Equal(t, Skip, r.Resolve(a, f.Unit(1), a.PrimaryAttack(), 30, 100).Kind)
	assert.Equal(t, Attack, r.Resolve(a, f.Unit(1), &revive, 0, 100).Kind)

	f.Unit(1).Revived = true
	assert.Equal(t, Skip, r.Resolve(a, f.Unit(1), &revive, 0, 100).Kind, "a unit is revived only once")
}

func TestHeal(t *testing.T) {
	f := buildField(t,
		slot{engine.Attacker, unitType("healer", 50, 0, attack(engine.AttackHeal, 40, 100)), engine.Position{Line: engine.BackLine}},
		slot{engine.Attacker, unitType("knight", 100, 0, attack(engine.AttackDamage, 10, 80)), engine.Position{}},
	)
	healer, knight := f.Unit(0), f.Unit(1)
	r := New(f, engine.NewQueueRandom(), 5)

	assert.Equal(t, Skip, r.Resolve(healer, knight, healer.PrimaryAttack(), 40, 100).Kind)

	knight.HitPoints = 75
	res := r.Resolve(healer, knight, healer.PrimaryAttack(), 40, 100)
	assert.Equal(t, Attack, res.Kind)
	assert.Equal(t, 25, res.Power)
}

func TestEffectDurations(t *testing.T) {
	tests := []struct {
		t        engine.AttackType
		infinite bool
		rolls    []int
		want     engine.Duration
		owner    engine.UnitID
	}{
		{engine.AttackParalyze, false, nil, engine.FiniteDuration(1), 1},
		{engine.AttackPetrify, true, []int{3}, engine.Duration{Turns: 3, Random: true}, 1},
		{engine.AttackPoison, false, nil, engine.FiniteDuration(1), 1},
		{engine.AttackFrostbite, true, []int{4}, engine.Duration{Turns: 4, Random: true}, 1},
		{engine.AttackBlister, true, []int{1}, engine.Duration{Turns: 2, Random: true}, 1},
		{engine.AttackReduceInitiative, false, []int{3}, engine.Duration{Turns: 3, Random: true}, 1},
		{engine.AttackReduceInitiative, true, nil, engine.InfiniteDuration(), 1},
		{engine.AttackReduceDamage, false, nil, engine.FiniteDuration(1), 0},
		{engine.AttackBoostDamage, true, nil, engine.InfiniteDuration(), 0},
	}
	for _, tt := range tests {
		t.Run(tt.t.String(), func(t *testing.T) {
			atk := attack(tt.t, 20, 100)
			atk.Infinite = tt.infinite
			f := duel(t, atk, 50, 0)
			a, target := f.Unit(0), f.Unit(1)
			if tt.t == engine.AttackBoostDamage {
				// boosts are cast on allies; the resolver does not care
				target = a
			}
			rnd := engine.NewQueueRandom(append([]int{0}, tt.rolls...)...)

			res := New(f, rnd, 5).Resolve(a, target, &atk, 20, 100)
			require.Equal(t, Effect, res.Kind)
			assert.Equal(t, tt.want, res.Duration)
			assert.Equal(t, 20, res.Power)
			assert.Equal(t, tt.owner, res.DurationOwner)
		})
	}
}

func TestStrongerEffectIsNotOverwritten(t *testing.T) {
	f := duel(t, attack(engine.AttackPoison, 10, 100), 50, 0)
	f.Unit(1).Effects = append(f.Unit(1).Effects, &engine.BattleEffect{Type: engine.AttackPoison, Power: 15, Duration: engine.FiniteDuration(2)})
	a := f.Unit(0)
	r := New(f, engine.NewQueueRandom(), 5)

	assert.Equal(t, Skip, r.Resolve(a, f.Unit(1), a.PrimaryAttack(), 10, 100).Kind)
	assert.Equal(t, Effect, r.Resolve(a, f.Unit(1), a.PrimaryAttack(), 20, 100).Kind)
}

func TestCureNeedsEnemyFiniteEffect(t *testing.T) {
	f := buildField(t,
		slot{engine.Attacker, unitType("priest", 50, 0, attack(engine.AttackCure, 0, 100)), engine.Position{Line: engine.BackLine}},
		slot{engine.Attacker, unitType("knight", 100, 0, attack(engine.AttackDamage, 10, 80)), engine.Position{}},
		slot{engine.Defender, unitType("lich", 100, 0, attack(engine.AttackPoison, 10, 80)), engine.Position{}},
	)
	priest, knight := f.Unit(0), f.Unit(1)
	r := New(f, engine.NewQueueRandom(), 5)

	knight.Effects = append(knight.Effects, &engine.BattleEffect{Type: engine.AttackBoostDamage, Power: 25, Duration: engine.FiniteDuration(1), AppliedBy: 0})
	knight.Effects = append(knight.Effects, &engine.BattleEffect{Type: engine.AttackPoison, Power: 10, Duration: engine.InfiniteDuration(), AppliedBy: 2})
	assert.Equal(t, Skip, r.Resolve(priest, knight, priest.PrimaryAttack(), 0, 100).Kind)

	knight.Effects = append(knight.Effects, &engine.BattleEffect{Type: engine.AttackFrostbite, Power: 10, Duration: engine.FiniteDuration(2), AppliedBy: 2})
	assert.Equal(t, Attack, r.Resolve(priest, knight, priest.PrimaryAttack(), 0, 100).Kind)
}

func TestFearAndAdditionalAttackApplicability(t *testing.T) {
	f := buildField(t,
		slot{engine.Attacker, unitType("bard", 50, 0, attack(engine.AttackGiveAdditionalAttack, 0, 100)), engine.Position{Line: engine.BackLine}},
		slot{engine.Attacker, unitType("knight", 100, 0, attack(engine.AttackDamage, 10, 80)), engine.Position{}},
		slot{engine.Defender, unitType("ghost", 100, 0, attack(engine.AttackFear, 0, 80)), engine.Position{}},
	)
	bard, knight, ghost := f.Unit(0), f.Unit(1), f.Unit(2)
	r := New(f, engine.NewQueueRandom(), 5)

	assert.Equal(t, Attack, r.Resolve(bard, knight, bard.PrimaryAttack(), 0, 100).Kind)
	assert.Equal(t, Skip, r.Resolve(bard, bard, bard.PrimaryAttack(), 0, 100).Kind)

	assert.Equal(t, Attack, r.Resolve(ghost, knight, ghost.PrimaryAttack(), 0, 100).Kind)
	knight.Retreating = true
	assert.Equal(t, Skip, r.Resolve(ghost, knight, ghost.PrimaryAttack(), 0, 100).Kind)
}

func TestUnhandledAttackTypePanics(t *testing.T) {
	f := duel(t, attack(engine.AttackDamage, 10, 100), 50, 0)
	bogus := attack(engine.AttackDefend, 0, 100)
	r := New(f, engine.NewQueueRandom(), 5)

	assert.Panics(t, func() { r.Resolve(f.Unit(0), f.Unit(1), &bogus, 0, 100) })
}

func TestBoostedPower(t *testing.T) {
	f := duel(t, attack(engine.AttackDamage, 40, 100), 50, 0)
	a := f.Unit(0)
	a.Effects = append(a.Effects, &engine.BattleEffect{Type: engine.AttackBoostDamage, Power: 50, Duration: engine.FiniteDuration(1)})
	assert.Equal(t, 60, Power(a, a.PrimaryAttack()))

	heal := attack(engine.AttackHeal, 40, 100)
	assert.Equal(t, 40, Power(a, &heal))
}

func TestDamageNeverExceedsHitPoints(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		power := rapid.IntRange(0, 500).Draw(rt, "power")
		hp := rapid.IntRange(1, 300).Draw(rt, "hp")
		armor := rapid.IntRange(0, 90).Draw(rt, "armor")
		defended := rapid.Bool().Draw(rt, "defended")
		seed := rapid.Uint64().Draw(rt, "seed")

		atk := attack(engine.AttackDamage, power, 100)
		atk.Critical = rapid.Bool().Draw(rt, "critical")
		f := duel(t, atk, 300, armor)
		target := f.Unit(1)
		target.HitPoints = hp
		if defended {
			target.Effects = append(target.Effects, &engine.BattleEffect{Type: engine.AttackDefend, Duration: engine.FiniteDuration(1)})
		}
		res := New(f, engine.NewRandom(seed), 20).Resolve(f.Unit(0), target, &atk, power, 100)
		if res.Kind != Attack {
			rt.Fatalf("expected attack, got %s", res.Kind)
		}
		if res.Power > hp || res.Power < 0 {
			rt.Fatalf("damage %d outside [0, %d]", res.Power, hp)
		}
	})
}

func TestHealNeverExceedsDeficit(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		power := rapid.IntRange(1, 300).Draw(rt, "power")
		maxHP := rapid.IntRange(1, 300).Draw(rt, "max")
		hp := rapid.IntRange(1, maxHP).Draw(rt, "hp")

		f := buildField(t,
			slot{engine.Attacker, unitType("healer", 50, 0, attack(engine.AttackHeal, power, 100)), engine.Position{Line: engine.BackLine}},
			slot{engine.Attacker, unitType("mate", maxHP, 0, attack(engine.AttackDamage, 10, 80)), engine.Position{}},
		)
		mate := f.Unit(1)
		mate.HitPoints = hp
		res := New(f, engine.NewQueueRandom(), 5).Resolve(f.Unit(0), mate, f.Unit(0).PrimaryAttack(), power, 100)
		if hp == maxHP {
			if res.Kind != Skip {
				rt.Fatalf("full health unit should be skipped, got %s", res.Kind)
			}
			return
		}
		if res.Power > maxHP-hp {
			rt.Fatalf("heal %d exceeds deficit %d", res.Power, maxHP-hp)
		}
	})
}

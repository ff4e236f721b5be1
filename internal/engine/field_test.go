package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBattleWinner(t *testing.T) {
	tests := []struct {
		name      string
		dead      []UnitID
		retreated []UnitID
		winner    PlayerID
		over      bool
	}{
		{"both squads alive", nil, nil, NoPlayer, false},
		{"defenders dead", []UnitID{2, 3}, nil, Attacker, true},
		{"attackers dead or retreated", []UnitID{0}, []UnitID{1}, Defender, true},
		{"one defender left", []UnitID{2}, nil, NoPlayer, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewProjector().Build(testBattleEvents())
			require.NoError(t, err)
			for _, id := range tt.dead {
				f.Unit(id).Dead = true
			}
			for _, id := range tt.retreated {
				f.Unit(id).Retreated = true
			}
			winner, over := f.BattleWinner()
			assert.Equal(t, tt.over, over)
			assert.Equal(t, tt.winner, winner)
		})
	}
}

func TestUnitModifiers(t *testing.T) {
	f, err := NewProjector().Build(testBattleEvents())
	require.NoError(t, err)
	u := f.Unit(0)

	assert.Equal(t, 100, u.DamageModifier())
	u.Effects = append(u.Effects, &BattleEffect{Type: AttackBoostDamage, Power: 50})
	assert.Equal(t, 150, u.DamageModifier())
	u.Effects = append(u.Effects, &BattleEffect{Type: AttackReduceDamage, Power: 25})
	assert.Equal(t, 125, u.DamageModifier())

	assert.Equal(t, 50, u.Initiative())
	u.Effects = append(u.Effects, &BattleEffect{Type: AttackReduceInitiative, Power: 50})
	assert.Equal(t, 25, u.Initiative())
}

func TestAttackTypeText(t *testing.T) {
	var at AttackType
	require.NoError(t, at.UnmarshalText([]byte("Drain_Overflow")))
	assert.Equal(t, AttackDrainOverflow, at)
	assert.Error(t, at.UnmarshalText([]byte("summon")))

	var src AttackSource
	require.NoError(t, src.UnmarshalText([]byte("death")))
	assert.Equal(t, SourceDeath, src)

	var r Reach
	require.NoError(t, r.UnmarshalText([]byte("all")))
	assert.Equal(t, ReachAll, r)
}

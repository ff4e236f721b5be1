package persistence

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suderio/warband/internal/engine"
)

func knight() *engine.UnitType {
	return &engine.UnitType{
		ID: "knight", Name: "Knight", HitPoints: 100, Initiative: 50, AttackCount: 1,
		Primary: engine.Attack{Name: "Sword", Type: engine.AttackDamage, Source: engine.SourceWeapon, Reach: engine.ReachAdjacent, Power: 40, Accuracy: 80},
	}
}

func TestStoreAppendLoad(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "log.jsonl"))
	require.NoError(t, err)
	defer store.Close()

	events := []engine.Event{
		&engine.BattleStartedEvent{AttackerName: "Empire", DefenderName: "Horde"},
		&engine.UnitAddedEvent{ID: 0, Player: engine.Attacker, UnitType: knight(), Position: engine.Position{Flank: 1}},
		&engine.UnitAddedEvent{ID: 1, Player: engine.Defender, UnitType: knight(), Position: engine.Position{Flank: 1}, HitPoints: 30},
		&engine.RoundStartedEvent{Round: 1},
		&engine.HPChangedEvent{UnitID: 1, Name: "Knight", Amount: -30, Critical: true},
		&engine.EffectAppliedEvent{UnitID: 0, Name: "Knight", Effect: engine.BattleEffect{Type: engine.AttackPoison, Source: engine.SourceDeath, Power: 10, Duration: engine.InfiniteDuration(), DurationControl: 1}},
		&engine.UnitDiedEvent{UnitID: 1, Name: "Knight", Killer: 0},
		&engine.BattleEndedEvent{Winner: engine.Attacker, WinnerName: "Empire"},
	}
	for _, ev := range events {
		require.NoError(t, store.Append(ev))
	}

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, events, loaded)

	field, err := engine.NewProjector().Build(loaded)
	require.NoError(t, err)
	assert.True(t, field.Unit(1).Dead)
	assert.True(t, field.Over)
	assert.True(t, field.Unit(0).HasEffect(engine.AttackPoison))
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"type":"Teleported","data":{}}`))
	assert.ErrorContains(t, err, "unknown event type")

	_, err = Decode(strings.NewReader("{\"type\":\"RoundStarted\",\"data\":{\"round\":1}}\nnot json\n"))
	assert.ErrorContains(t, err, "line 2")

	events, err := Decode(strings.NewReader("\n{\"type\":\"RoundStarted\",\"data\":{\"round\":4}}\n"))
	require.NoError(t, err)
	assert.Equal(t, []engine.Event{&engine.RoundStartedEvent{Round: 4}}, events)
}

func TestArchive(t *testing.T) {
	a := NewArchive(filepath.Join(t.TempDir(), "battles"))

	names, err := a.List()
	require.NoError(t, err)
	assert.Empty(t, names)

	for _, name := range []string{"siege", "ambush"} {
		s, err := a.Create(name)
		require.NoError(t, err)
		require.NoError(t, s.Append(&engine.RoundStartedEvent{Round: 1}))
		require.NoError(t, s.Close())
	}
	s, err := a.Create("siege")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	names, err = a.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"ambush", "siege"}, names)

	path, err := a.Resolve("ambush")
	require.NoError(t, err)
	events, err := ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, events, 1)

	path, err = a.Resolve("siege")
	require.NoError(t, err)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())

	_, err = a.Resolve("rout")
	assert.Error(t, err)
	path, err = a.Resolve("/tmp/elsewhere.jsonl")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/elsewhere.jsonl", path)
}

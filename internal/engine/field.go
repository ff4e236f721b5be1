package engine

import (
	"errors"
	"fmt"
)

// ErrUnknownUnit is returned when an event references a unit that is not on the field.
var ErrUnknownUnit = errors.New("unknown unit")

// Unit is one combatant. Units are never removed from the field: death and
// retreat are flags so that ids stay stable for the whole battle.
type Unit struct {
	ID         UnitID    `json:"id"`
	Player     PlayerID  `json:"player"`
	Type       *UnitType `json:"type"`
	Position   Position  `json:"position"`
	HitPoints  int       `json:"hit_points"`
	Level      int       `json:"level"`
	Experience int       `json:"experience"`

	Effects           []*BattleEffect          `json:"effects"`
	TypeProtections   []AttackTypeProtection   `json:"type_protections"`
	SourceProtections []AttackSourceProtection `json:"source_protections"`

	Dead      bool `json:"dead"`
	Retreated bool `json:"retreated"`
	// Retreating is set by fear; the unit flees at the start of its next turn.
	Retreating bool `json:"retreating"`
	Revived    bool `json:"revived"`
}

// NewUnit creates a unit at full health from its template.
func NewUnit(id UnitID, player PlayerID, t *UnitType, pos Position) *Unit {
	u := &Unit{
		ID:        id,
		Player:    player,
		Type:      t,
		Position:  pos,
		HitPoints: t.HitPoints,
		Level:     1,
		Effects:   make([]*BattleEffect, 0),
	}
	u.TypeProtections = append(u.TypeProtections, t.TypeProtections...)
	u.SourceProtections = append(u.SourceProtections, t.SourceProtections...)
	return u
}

func (u *Unit) Name() string                { return u.Type.Name }
func (u *Unit) MaxHitPoints() int           { return u.Type.HitPoints }
func (u *Unit) Armor() int                  { return u.Type.Armor }
func (u *Unit) PrimaryAttack() *Attack      { return &u.Type.Primary }
func (u *Unit) SecondaryAttack() *Attack    { return u.Type.Secondary }
func (u *Unit) IsDoubleAttacker() bool      { return u.Type.AttackCount > 1 }
func (u *Unit) IsInactive() bool            { return u.Dead || u.Retreated }
func (u *Unit) IsActive() bool              { return !u.IsInactive() }
func (u *Unit) IsFullHealth() bool          { return u.HitPoints >= u.MaxHitPoints() }
func (u *Unit) HitPointDeficit() int        { return u.MaxHitPoints() - u.HitPoints }
func (u *Unit) String() string              { return fmt.Sprintf("%s#%d", u.Type.Name, u.ID) }
func (u *Unit) IsAlly(other *Unit) bool     { return u.Player == other.Player }
func (u *Unit) IsDefended() bool            { return u.Effect(AttackDefend) != nil }
func (u *Unit) IsDisabled() bool            { return u.Effect(AttackParalyze) != nil || u.Effect(AttackPetrify) != nil }
func (u *Unit) HasEffect(t AttackType) bool { return u.Effect(t) != nil }

// Effect returns the active effect of the given type, or nil.
func (u *Unit) Effect(t AttackType) *BattleEffect {
	for _, e := range u.Effects {
		if e.Type == t {
			return e
		}
	}
	return nil
}

// Initiative is the unit's base initiative after ReduceInitiative effects.
func (u *Unit) Initiative() int {
	ini := u.Type.Initiative
	if e := u.Effect(AttackReduceInitiative); e != nil {
		ini -= ini * e.Power / 100
	}
	return ini
}

// DamageModifier is the percentage applied to the unit's outgoing damage by
// boost and reduce effects.
func (u *Unit) DamageModifier() int {
	mod := 100
	if e := u.Effect(AttackBoostDamage); e != nil {
		mod += e.Power
	}
	if e := u.Effect(AttackReduceDamage); e != nil {
		mod -= e.Power
	}
	if mod < 0 {
		mod = 0
	}
	return mod
}

func (u *Unit) clone() *Unit {
	c := *u
	c.Effects = make([]*BattleEffect, 0, len(u.Effects))
	for _, e := range u.Effects {
		ec := *e
		c.Effects = append(c.Effects, &ec)
	}
	c.TypeProtections = append([]AttackTypeProtection(nil), u.TypeProtections...)
	c.SourceProtections = append([]AttackSourceProtection(nil), u.SourceProtections...)
	return &c
}

// Squad is the roster of one player.
type Squad struct {
	Player PlayerID `json:"player"`
	Name   string   `json:"name"`
	Units  []UnitID `json:"units"`
}

// Field is the arena of all units of a battle, indexed by UnitID.
type Field struct {
	Units   []*Unit  `json:"units"`
	Squads  [2]Squad `json:"squads"`
	Round   int      `json:"round"`
	Current UnitID   `json:"current"`
	Winner  PlayerID `json:"winner"`
	Over    bool     `json:"over"`
}

// NewField creates an empty field.
func NewField() *Field {
	return &Field{
		Units:   make([]*Unit, 0),
		Squads:  [2]Squad{{Player: Attacker}, {Player: Defender}},
		Current: NoUnit,
		Winner:  NoPlayer,
	}
}

// Unit returns the unit with the given id or nil.
func (f *Field) Unit(id UnitID) *Unit {
	if id < 0 || int(id) >= len(f.Units) {
		return nil
	}
	return f.Units[id]
}

func (f *Field) lookup(id UnitID) (*Unit, error) {
	u := f.Unit(id)
	if u == nil {
		return nil, fmt.Errorf("%w: %d", ErrUnknownUnit, id)
	}
	return u, nil
}

// Squad returns every unit of a player in roster order.
func (f *Field) Squad(p PlayerID) []*Unit {
	res := make([]*Unit, 0, len(f.Squads[p].Units))
	for _, id := range f.Squads[p].Units {
		res = append(res, f.Units[id])
	}
	return res
}

// Allies returns the squad of u, including u itself.
func (f *Field) Allies(u *Unit) []*Unit { return f.Squad(u.Player) }

// Enemies returns the opposing squad of u.
func (f *Field) Enemies(u *Unit) []*Unit { return f.Squad(u.Player.Opponent()) }

// ActiveUnits returns every unit that is neither dead nor retreated.
func (f *Field) ActiveUnits() []*Unit {
	res := make([]*Unit, 0, len(f.Units))
	for _, u := range f.Units {
		if u.IsActive() {
			res = append(res, u)
		}
	}
	return res
}

// IsDefeated reports whether every unit of the player is dead or retreated.
func (f *Field) IsDefeated(p PlayerID) bool {
	for _, u := range f.Squad(p) {
		if u.IsActive() {
			return false
		}
	}
	return true
}

// BattleWinner returns the winning player, or false while both squads still
// have active units.
func (f *Field) BattleWinner() (PlayerID, bool) {
	attackerLost := f.IsDefeated(Attacker)
	defenderLost := f.IsDefeated(Defender)
	switch {
	case attackerLost && !defenderLost:
		return Defender, true
	case defenderLost && !attackerLost:
		return Attacker, true
	case attackerLost && defenderLost:
		// Mutual wipe (e.g. poison): the defender holds the ground.
		return Defender, true
	}
	return NoPlayer, false
}

// Clone returns a deep copy of the field. Unit templates are shared.
func (f *Field) Clone() *Field {
	c := *f
	c.Units = make([]*Unit, len(f.Units))
	for i, u := range f.Units {
		c.Units[i] = u.clone()
	}
	for i := range f.Squads {
		c.Squads[i].Units = append([]UnitID(nil), f.Squads[i].Units...)
	}
	return &c
}

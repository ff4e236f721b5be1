// Package engine holds the battle data model: unit templates, the unit arena,
// battle effects and the events that mutate them.
// Every state change of a battle is represented by an Event so that a recorded
// journal can be replayed onto a fresh Field.
package engine

import (
	"fmt"
	"strings"
)

// UnitID is a stable index into Field.Units.
type UnitID int

// NoUnit marks the absence of a unit reference.
const NoUnit UnitID = -1

// PlayerID identifies the owner of a squad. The attacking squad is always 0.
type PlayerID int

const (
	Attacker PlayerID = 0
	Defender PlayerID = 1
	NoPlayer PlayerID = -1
)

// Opponent returns the other side of the battle.
func (p PlayerID) Opponent() PlayerID {
	if p == Attacker {
		return Defender
	}
	return Attacker
}

// AttackType is the rule class of an attack or of a battle effect.
type AttackType int

const (
	AttackDamage AttackType = iota + 1
	AttackDrain
	AttackDrainOverflow
	AttackParalyze
	AttackPetrify
	AttackHeal
	AttackFear
	AttackBoostDamage
	AttackReduceDamage
	AttackReduceInitiative
	AttackPoison
	AttackFrostbite
	AttackBlister
	AttackRevive
	AttackCure
	AttackGiveAdditionalAttack
	// AttackDefend only ever appears as a battle effect.
	AttackDefend
)

var attackTypeNames = map[AttackType]string{
	AttackDamage:               "damage",
	AttackDrain:                "drain",
	AttackDrainOverflow:        "drain_overflow",
	AttackParalyze:             "paralyze",
	AttackPetrify:              "petrify",
	AttackHeal:                 "heal",
	AttackFear:                 "fear",
	AttackBoostDamage:          "boost_damage",
	AttackReduceDamage:         "reduce_damage",
	AttackReduceInitiative:     "reduce_initiative",
	AttackPoison:               "poison",
	AttackFrostbite:            "frostbite",
	AttackBlister:              "blister",
	AttackRevive:               "revive",
	AttackCure:                 "cure",
	AttackGiveAdditionalAttack: "give_additional_attack",
	AttackDefend:               "defend",
}

func (t AttackType) String() string {
	if n, ok := attackTypeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("attack_type(%d)", int(t))
}

func (t AttackType) MarshalText() ([]byte, error) {
	if _, ok := attackTypeNames[t]; !ok {
		return nil, fmt.Errorf("unknown attack type %d", int(t))
	}
	return []byte(t.String()), nil
}

func (t *AttackType) UnmarshalText(b []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(b)))
	for k, v := range attackTypeNames {
		if v == s {
			*t = k
			return nil
		}
	}
	return fmt.Errorf("unknown attack type %q", s)
}

// TargetsAllies reports whether attacks of this type are aimed at the
// attacker's own squad.
func (t AttackType) TargetsAllies() bool {
	switch t {
	case AttackHeal, AttackBoostDamage, AttackRevive, AttackCure, AttackGiveAdditionalAttack:
		return true
	}
	return false
}

// IsDamage reports whether the type deals direct damage.
func (t AttackType) IsDamage() bool {
	return t == AttackDamage || t == AttackDrain || t == AttackDrainOverflow
}

// IsDamageOverTime reports whether an effect of this type hurts its bearer
// at the start of each of its turns.
func (t AttackType) IsDamageOverTime() bool {
	return t == AttackPoison || t == AttackFrostbite || t == AttackBlister
}

// Disables reports whether an effect of this type makes its bearer skip turns.
func (t AttackType) Disables() bool {
	return t == AttackParalyze || t == AttackPetrify
}

// AttackSource is the damage school of an attack.
type AttackSource int

const (
	SourceWeapon AttackSource = iota + 1
	SourceFire
	SourceWater
	SourceEarth
	SourceAir
	SourceMind
	SourceLife
	SourceDeath
)

var attackSourceNames = map[AttackSource]string{
	SourceWeapon: "weapon",
	SourceFire:   "fire",
	SourceWater:  "water",
	SourceEarth:  "earth",
	SourceAir:    "air",
	SourceMind:   "mind",
	SourceLife:   "life",
	SourceDeath:  "death",
}

func (s AttackSource) String() string {
	if n, ok := attackSourceNames[s]; ok {
		return n
	}
	return fmt.Sprintf("attack_source(%d)", int(s))
}

func (s AttackSource) MarshalText() ([]byte, error) {
	if _, ok := attackSourceNames[s]; !ok {
		return nil, fmt.Errorf("unknown attack source %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *AttackSource) UnmarshalText(b []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(b)))
	for k, n := range attackSourceNames {
		if n == v {
			*s = k
			return nil
		}
	}
	return fmt.Errorf("unknown attack source %q", v)
}

// Reach is the targeting shape of an attack.
type Reach int

const (
	// ReachAny strikes one target anywhere in the opposing squad.
	ReachAny Reach = iota + 1
	// ReachAdjacent strikes one target subject to line and flank adjacency.
	ReachAdjacent
	// ReachAll strikes every unit of the targeted squad.
	ReachAll
)

var reachNames = map[Reach]string{
	ReachAny:      "any",
	ReachAdjacent: "adjacent",
	ReachAll:      "all",
}

func (r Reach) String() string {
	if n, ok := reachNames[r]; ok {
		return n
	}
	return fmt.Sprintf("reach(%d)", int(r))
}

func (r Reach) MarshalText() ([]byte, error) {
	if _, ok := reachNames[r]; !ok {
		return nil, fmt.Errorf("unknown reach %d", int(r))
	}
	return []byte(r.String()), nil
}

func (r *Reach) UnmarshalText(b []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(b)))
	for k, n := range reachNames {
		if n == v {
			*r = k
			return nil
		}
	}
	return fmt.Errorf("unknown reach %q", v)
}

// ProtectionCategory tells how a protection treats a matching attack.
type ProtectionCategory int

const (
	// Immunity: the attack never has any effect.
	Immunity ProtectionCategory = iota + 1
	// Ward: the attack is absorbed once and the ward is consumed.
	Ward
)

func (c ProtectionCategory) String() string {
	switch c {
	case Immunity:
		return "immunity"
	case Ward:
		return "ward"
	}
	return fmt.Sprintf("protection(%d)", int(c))
}

func (c ProtectionCategory) MarshalText() ([]byte, error) {
	if c != Immunity && c != Ward {
		return nil, fmt.Errorf("unknown protection category %d", int(c))
	}
	return []byte(c.String()), nil
}

func (c *ProtectionCategory) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "immunity":
		*c = Immunity
	case "ward":
		*c = Ward
	default:
		return fmt.Errorf("unknown protection category %q", string(b))
	}
	return nil
}

// AttackTypeProtection protects against one attack class.
type AttackTypeProtection struct {
	Type     AttackType         `json:"type" yaml:"type"`
	Category ProtectionCategory `json:"category" yaml:"category"`
}

// AttackSourceProtection protects against one damage school.
type AttackSourceProtection struct {
	Source   AttackSource       `json:"source" yaml:"source"`
	Category ProtectionCategory `json:"category" yaml:"category"`
}

// Attack is an immutable attack template.
type Attack struct {
	Name     string       `json:"name" yaml:"name"`
	Type     AttackType   `json:"type" yaml:"type"`
	Source   AttackSource `json:"source" yaml:"source"`
	Reach    Reach        `json:"reach" yaml:"reach"`
	Power    int          `json:"power" yaml:"power"`
	Accuracy int          `json:"accuracy" yaml:"accuracy"`
	// Infinite effects last until the end of the battle (or use the longer
	// random duration range, depending on the attack class).
	Infinite bool `json:"infinite" yaml:"infinite"`
	// Critical attacks add a fixed share of their power that ignores armor.
	Critical bool `json:"critical" yaml:"critical"`
}

// UnitType is the stats template a unit is created from.
type UnitType struct {
	ID                string                   `json:"id" yaml:"id"`
	Name              string                   `json:"name" yaml:"name"`
	HitPoints         int                      `json:"hit_points" yaml:"hit_points"`
	Armor             int                      `json:"armor" yaml:"armor"`
	Initiative        int                      `json:"initiative" yaml:"initiative"`
	AttackCount       int                      `json:"attack_count" yaml:"attack_count"`
	XPKilled          int                      `json:"xp_killed" yaml:"xp_killed"`
	Primary           Attack                   `json:"primary" yaml:"primary"`
	Secondary         *Attack                  `json:"secondary,omitempty" yaml:"secondary"`
	TypeProtections   []AttackTypeProtection   `json:"type_protections,omitempty" yaml:"type_protections"`
	SourceProtections []AttackSourceProtection `json:"source_protections,omitempty" yaml:"source_protections"`
}

// Validate checks that a template only uses attack classes the resolver knows.
func (t *UnitType) Validate() error {
	if t.HitPoints <= 0 {
		return fmt.Errorf("unit type %s: hit_points must be positive", t.ID)
	}
	if err := validateAttack(t.ID, &t.Primary); err != nil {
		return err
	}
	if t.Secondary != nil {
		if err := validateAttack(t.ID, t.Secondary); err != nil {
			return err
		}
	}
	if t.AttackCount < 1 || t.AttackCount > 2 {
		return fmt.Errorf("unit type %s: attack_count must be 1 or 2", t.ID)
	}
	return nil
}

func validateAttack(unitID string, a *Attack) error {
	if _, ok := attackTypeNames[a.Type]; !ok || a.Type == AttackDefend {
		return fmt.Errorf("unit type %s: attack %q has invalid type", unitID, a.Name)
	}
	if _, ok := attackSourceNames[a.Source]; !ok {
		return fmt.Errorf("unit type %s: attack %q has invalid source", unitID, a.Name)
	}
	if _, ok := reachNames[a.Reach]; !ok {
		return fmt.Errorf("unit type %s: attack %q has invalid reach", unitID, a.Name)
	}
	if a.Accuracy < 0 || a.Accuracy > 100 {
		return fmt.Errorf("unit type %s: attack %q accuracy out of range", unitID, a.Name)
	}
	return nil
}

// Position is a squad slot: Line 0 is the front line, Flank runs 0..2.
type Position struct {
	Line  int `json:"line" yaml:"line"`
	Flank int `json:"flank" yaml:"flank"`
}

const (
	FrontLine = 0
	BackLine  = 1
	Flanks    = 3
)

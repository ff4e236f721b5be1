package engine

import (
	"fmt"
	"strings"
)

type EventType string

const (
	EventBattleStarted      EventType = "BattleStarted"
	EventUnitAdded          EventType = "UnitAdded"
	EventRoundStarted       EventType = "RoundStarted"
	EventTurnStarted        EventType = "TurnStarted"
	EventUnitWaited         EventType = "UnitWaited"
	EventTurnSkipped        EventType = "TurnSkipped"
	EventAttackMissed       EventType = "AttackMissed"
	EventAttackIneffective  EventType = "AttackIneffective"
	EventHPChanged          EventType = "HPChanged"
	EventUnitDied           EventType = "UnitDied"
	EventUnitRevived        EventType = "UnitRevived"
	EventUnitRetreated      EventType = "UnitRetreated"
	EventUnitFeared         EventType = "UnitFeared"
	EventEffectApplied      EventType = "EffectApplied"
	EventEffectTriggered    EventType = "EffectTriggered"
	EventEffectDecreased    EventType = "EffectDecreased"
	EventEffectRemoved      EventType = "EffectRemoved"
	EventWardConsumed       EventType = "WardConsumed"
	EventExtraTurnGranted   EventType = "ExtraTurnGranted"
	EventExperienceGained   EventType = "ExperienceGained"
	EventBattleEnded        EventType = "BattleEnded"
)

// Event is the building block of the battle journal.
// Every state change is represented as an Event that can be applied to a Field.
type Event interface {
	Type() EventType
	Apply(f *Field) error
	Message() string
}

// BattleStartedEvent resets the field and names both squads.
type BattleStartedEvent struct {
	AttackerName string `json:"attacker_name"`
	DefenderName string `json:"defender_name"`
}

func (e *BattleStartedEvent) Type() EventType { return EventBattleStarted }
func (e *BattleStartedEvent) Apply(f *Field) error {
	*f = *NewField()
	f.Squads[Attacker].Name = e.AttackerName
	f.Squads[Defender].Name = e.DefenderName
	return nil
}
func (e *BattleStartedEvent) Message() string {
	return fmt.Sprintf("Battle started: %s attacks %s.", e.AttackerName, e.DefenderName)
}

// UnitAddedEvent brings a unit onto the field. IDs are assigned in order.
type UnitAddedEvent struct {
	ID       UnitID    `json:"id"`
	Player   PlayerID  `json:"player"`
	UnitType *UnitType `json:"unit_type"`
	Position Position  `json:"position"`
	// HitPoints overrides the template value when positive (wounded units).
	HitPoints int `json:"hit_points"`
}

func (e *UnitAddedEvent) Type() EventType { return EventUnitAdded }
func (e *UnitAddedEvent) Apply(f *Field) error {
	if int(e.ID) != len(f.Units) {
		return fmt.Errorf("unit %d added out of order (expected id %d)", e.ID, len(f.Units))
	}
	if e.Player != Attacker && e.Player != Defender {
		return fmt.Errorf("unit %d has invalid player %d", e.ID, e.Player)
	}
	u := NewUnit(e.ID, e.Player, e.UnitType, e.Position)
	if e.HitPoints > 0 && e.HitPoints < u.HitPoints {
		u.HitPoints = e.HitPoints
	}
	f.Units = append(f.Units, u)
	f.Squads[e.Player].Units = append(f.Squads[e.Player].Units, e.ID)
	return nil
}
func (e *UnitAddedEvent) Message() string {
	return fmt.Sprintf("%s joins squad %d at line %d, flank %d", e.UnitType.Name, e.Player, e.Position.Line, e.Position.Flank)
}

// RoundStartedEvent advances the round counter.
type RoundStartedEvent struct {
	Round int `json:"round"`
}

func (e *RoundStartedEvent) Type() EventType { return EventRoundStarted }
func (e *RoundStartedEvent) Apply(f *Field) error {
	f.Round = e.Round
	return nil
}
func (e *RoundStartedEvent) Message() string { return fmt.Sprintf("Round %d.", e.Round) }

// TurnStartedEvent marks the acting unit.
type TurnStartedEvent struct {
	UnitID UnitID `json:"unit_id"`
	Name   string `json:"name"`
	Repeat bool   `json:"repeat"`
}

func (e *TurnStartedEvent) Type() EventType { return EventTurnStarted }
func (e *TurnStartedEvent) Apply(f *Field) error {
	if _, err := f.lookup(e.UnitID); err != nil {
		return err
	}
	f.Current = e.UnitID
	return nil
}
func (e *TurnStartedEvent) Message() string {
	if e.Repeat {
		return fmt.Sprintf("%s strikes again.", e.Name)
	}
	return fmt.Sprintf("%s's turn.", e.Name)
}

// UnitWaitedEvent records a deferred turn.
type UnitWaitedEvent struct {
	UnitID UnitID `json:"unit_id"`
	Name   string `json:"name"`
}

func (e *UnitWaitedEvent) Type() EventType      { return EventUnitWaited }
func (e *UnitWaitedEvent) Apply(f *Field) error { return nil }
func (e *UnitWaitedEvent) Message() string      { return fmt.Sprintf("%s waits.", e.Name) }

// TurnSkippedEvent records a turn lost to paralysis or petrification.
type TurnSkippedEvent struct {
	UnitID UnitID     `json:"unit_id"`
	Name   string     `json:"name"`
	Reason AttackType `json:"reason"`
}

func (e *TurnSkippedEvent) Type() EventType      { return EventTurnSkipped }
func (e *TurnSkippedEvent) Apply(f *Field) error { return nil }
func (e *TurnSkippedEvent) Message() string {
	return fmt.Sprintf("%s cannot act (%s).", e.Name, e.Reason)
}

// AttackMissedEvent records a failed accuracy roll.
type AttackMissedEvent struct {
	Attacker string `json:"attacker"`
	Target   string `json:"target"`
	Attack   string `json:"attack"`
}

func (e *AttackMissedEvent) Type() EventType      { return EventAttackMissed }
func (e *AttackMissedEvent) Apply(f *Field) error { return nil }
func (e *AttackMissedEvent) Message() string {
	return fmt.Sprintf("%s misses %s with %s.", e.Attacker, e.Target, e.Attack)
}

// AttackIneffectiveEvent records an attack stopped by immunity or with nothing to do.
type AttackIneffectiveEvent struct {
	Target string `json:"target"`
	Attack string `json:"attack"`
	Reason string `json:"reason"`
}

func (e *AttackIneffectiveEvent) Type() EventType      { return EventAttackIneffective }
func (e *AttackIneffectiveEvent) Apply(f *Field) error { return nil }
func (e *AttackIneffectiveEvent) Message() string {
	return fmt.Sprintf("%s has no effect on %s (%s).", e.Attack, e.Target, e.Reason)
}

// HPChangedEvent modifies a unit's hit points (positive heals, negative damages).
// Hit points stay within [0, max]; reaching zero does not kill by itself,
// a UnitDiedEvent follows.
type HPChangedEvent struct {
	UnitID   UnitID `json:"unit_id"`
	Name     string `json:"name"`
	Amount   int    `json:"amount"`
	Critical bool   `json:"critical,omitempty"`
}

func (e *HPChangedEvent) Type() EventType { return EventHPChanged }
func (e *HPChangedEvent) Apply(f *Field) error {
	u, err := f.lookup(e.UnitID)
	if err != nil {
		return err
	}
	u.HitPoints += e.Amount
	if u.HitPoints < 0 {
		u.HitPoints = 0
	}
	if u.HitPoints > u.MaxHitPoints() {
		u.HitPoints = u.MaxHitPoints()
	}
	return nil
}
func (e *HPChangedEvent) Message() string {
	if e.Amount > 0 {
		return fmt.Sprintf("%s healed for %d HP", e.Name, e.Amount)
	} else if e.Amount < 0 {
		if e.Critical {
			return fmt.Sprintf("%s took %d damage (critical)", e.Name, -e.Amount)
		}
		return fmt.Sprintf("%s took %d damage", e.Name, -e.Amount)
	}
	return fmt.Sprintf("%s HP was unchanged", e.Name)
}

// UnitDiedEvent marks a unit dead and drops its effects.
type UnitDiedEvent struct {
	UnitID UnitID `json:"unit_id"`
	Name   string `json:"name"`
	Killer UnitID `json:"killer"`
}

func (e *UnitDiedEvent) Type() EventType { return EventUnitDied }
func (e *UnitDiedEvent) Apply(f *Field) error {
	u, err := f.lookup(e.UnitID)
	if err != nil {
		return err
	}
	u.Dead = true
	u.HitPoints = 0
	u.Retreating = false
	u.Effects = u.Effects[:0]
	return nil
}
func (e *UnitDiedEvent) Message() string { return fmt.Sprintf("%s dies.", e.Name) }

// UnitRevivedEvent brings a dead unit back.
type UnitRevivedEvent struct {
	UnitID    UnitID `json:"unit_id"`
	Name      string `json:"name"`
	HitPoints int    `json:"hit_points"`
}

func (e *UnitRevivedEvent) Type() EventType { return EventUnitRevived }
func (e *UnitRevivedEvent) Apply(f *Field) error {
	u, err := f.lookup(e.UnitID)
	if err != nil {
		return err
	}
	if !u.Dead {
		return fmt.Errorf("unit %d is not dead", e.UnitID)
	}
	u.Dead = false
	u.Revived = true
	u.HitPoints = e.HitPoints
	return nil
}
func (e *UnitRevivedEvent) Message() string {
	return fmt.Sprintf("%s is revived with %d HP.", e.Name, e.HitPoints)
}

// UnitRetreatedEvent removes a unit from the rest of the battle.
type UnitRetreatedEvent struct {
	UnitID UnitID `json:"unit_id"`
	Name   string `json:"name"`
}

func (e *UnitRetreatedEvent) Type() EventType { return EventUnitRetreated }
func (e *UnitRetreatedEvent) Apply(f *Field) error {
	u, err := f.lookup(e.UnitID)
	if err != nil {
		return err
	}
	u.Retreated = true
	u.Retreating = false
	return nil
}
func (e *UnitRetreatedEvent) Message() string { return fmt.Sprintf("%s retreats.", e.Name) }

// UnitFearedEvent makes a unit flee on its next turn.
type UnitFearedEvent struct {
	UnitID UnitID `json:"unit_id"`
	Name   string `json:"name"`
}

func (e *UnitFearedEvent) Type() EventType { return EventUnitFeared }
func (e *UnitFearedEvent) Apply(f *Field) error {
	u, err := f.lookup(e.UnitID)
	if err != nil {
		return err
	}
	u.Retreating = true
	return nil
}
func (e *UnitFearedEvent) Message() string { return fmt.Sprintf("%s is terrified.", e.Name) }

// EffectAppliedEvent adds a battle effect, replacing an existing one of the same type.
type EffectAppliedEvent struct {
	UnitID UnitID       `json:"unit_id"`
	Name   string       `json:"name"`
	Effect BattleEffect `json:"effect"`
}

func (e *EffectAppliedEvent) Type() EventType { return EventEffectApplied }
func (e *EffectAppliedEvent) Apply(f *Field) error {
	u, err := f.lookup(e.UnitID)
	if err != nil {
		return err
	}
	eff := e.Effect
	for i, cur := range u.Effects {
		if cur.Type == eff.Type {
			u.Effects[i] = &eff
			return nil
		}
	}
	u.Effects = append(u.Effects, &eff)
	return nil
}
func (e *EffectAppliedEvent) Message() string {
	if e.Effect.Power > 0 {
		return fmt.Sprintf("%s is affected by %s (%d) for %s", e.Name, e.Effect.Type, e.Effect.Power, e.Effect.Duration)
	}
	return fmt.Sprintf("%s is affected by %s for %s", e.Name, e.Effect.Type, e.Effect.Duration)
}

// EffectTriggeredEvent marks a damage-over-time effect as fired this round.
// The damage itself is a separate HPChangedEvent.
type EffectTriggeredEvent struct {
	UnitID     UnitID     `json:"unit_id"`
	Name       string     `json:"name"`
	EffectType AttackType `json:"effect_type"`
	Round      int        `json:"round"`
}

func (e *EffectTriggeredEvent) Type() EventType { return EventEffectTriggered }
func (e *EffectTriggeredEvent) Apply(f *Field) error {
	u, err := f.lookup(e.UnitID)
	if err != nil {
		return err
	}
	if eff := u.Effect(e.EffectType); eff != nil {
		eff.TriggeredRound = e.Round
	}
	return nil
}
func (e *EffectTriggeredEvent) Message() string {
	return fmt.Sprintf("%s suffers from %s.", e.Name, e.EffectType)
}

// EffectDecreasedEvent consumes one turn of an effect.
type EffectDecreasedEvent struct {
	UnitID     UnitID     `json:"unit_id"`
	EffectType AttackType `json:"effect_type"`
}

func (e *EffectDecreasedEvent) Type() EventType { return EventEffectDecreased }
func (e *EffectDecreasedEvent) Apply(f *Field) error {
	u, err := f.lookup(e.UnitID)
	if err != nil {
		return err
	}
	if eff := u.Effect(e.EffectType); eff != nil {
		eff.Duration.DecreaseTurn()
	}
	return nil
}
func (e *EffectDecreasedEvent) Message() string { return "" }

// EffectRemovedEvent drops an effect (expired or cured).
type EffectRemovedEvent struct {
	UnitID     UnitID     `json:"unit_id"`
	Name       string     `json:"name"`
	EffectType AttackType `json:"effect_type"`
	Cured      bool       `json:"cured,omitempty"`
}

func (e *EffectRemovedEvent) Type() EventType { return EventEffectRemoved }
func (e *EffectRemovedEvent) Apply(f *Field) error {
	u, err := f.lookup(e.UnitID)
	if err != nil {
		return err
	}
	for i, cur := range u.Effects {
		if cur.Type == e.EffectType {
			u.Effects = append(u.Effects[:i], u.Effects[i+1:]...)
			break
		}
	}
	return nil
}
func (e *EffectRemovedEvent) Message() string {
	if e.Cured {
		return fmt.Sprintf("%s is cured of %s.", e.Name, e.EffectType)
	}
	return fmt.Sprintf("%s is no longer affected by %s.", e.Name, e.EffectType)
}

// WardConsumedEvent removes a ward after it absorbed an attack.
type WardConsumedEvent struct {
	UnitID UnitID       `json:"unit_id"`
	Name   string       `json:"name"`
	ByType bool         `json:"by_type"`
	Attack AttackType   `json:"attack_type"`
	Source AttackSource `json:"attack_source"`
}

func (e *WardConsumedEvent) Type() EventType { return EventWardConsumed }
func (e *WardConsumedEvent) Apply(f *Field) error {
	u, err := f.lookup(e.UnitID)
	if err != nil {
		return err
	}
	if e.ByType {
		for i, p := range u.TypeProtections {
			if p.Type == e.Attack && p.Category == Ward {
				u.TypeProtections = append(u.TypeProtections[:i], u.TypeProtections[i+1:]...)
				return nil
			}
		}
		return nil
	}
	for i, p := range u.SourceProtections {
		if p.Source == e.Source && p.Category == Ward {
			u.SourceProtections = append(u.SourceProtections[:i], u.SourceProtections[i+1:]...)
			return nil
		}
	}
	return nil
}
func (e *WardConsumedEvent) Message() string {
	what := e.Source.String()
	if e.ByType {
		what = e.Attack.String()
	}
	return fmt.Sprintf("%s's ward against %s absorbs the attack.", e.Name, what)
}

// ExtraTurnGrantedEvent records a GiveAdditionalAttack. The turn queue itself
// is not part of the field.
type ExtraTurnGrantedEvent struct {
	UnitID UnitID `json:"unit_id"`
	Name   string `json:"name"`
}

func (e *ExtraTurnGrantedEvent) Type() EventType      { return EventExtraTurnGranted }
func (e *ExtraTurnGrantedEvent) Apply(f *Field) error { return nil }
func (e *ExtraTurnGrantedEvent) Message() string {
	return fmt.Sprintf("%s gains an additional attack.", e.Name)
}

// ExperienceGainedEvent credits experience to a unit.
type ExperienceGainedEvent struct {
	UnitID UnitID `json:"unit_id"`
	Name   string `json:"name"`
	Amount int    `json:"amount"`
}

func (e *ExperienceGainedEvent) Type() EventType { return EventExperienceGained }
func (e *ExperienceGainedEvent) Apply(f *Field) error {
	u, err := f.lookup(e.UnitID)
	if err != nil {
		return err
	}
	u.Experience += e.Amount
	return nil
}
func (e *ExperienceGainedEvent) Message() string {
	return fmt.Sprintf("%s gains %d experience.", e.Name, e.Amount)
}

// BattleEndedEvent closes the battle.
type BattleEndedEvent struct {
	Winner     PlayerID `json:"winner"`
	WinnerName string   `json:"winner_name"`
	Instant    bool     `json:"instant,omitempty"`
}

func (e *BattleEndedEvent) Type() EventType { return EventBattleEnded }
func (e *BattleEndedEvent) Apply(f *Field) error {
	f.Over = true
	f.Winner = e.Winner
	f.Current = NoUnit
	return nil
}
func (e *BattleEndedEvent) Message() string {
	var sb strings.Builder
	sb.WriteString("Battle over. ")
	if e.Instant {
		sb.WriteString("(resolved instantly) ")
	}
	sb.WriteString(fmt.Sprintf("%s wins.", e.WinnerName))
	return sb.String()
}

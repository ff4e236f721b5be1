package engine

import "fmt"

// Duration is the lifetime of a battle effect in turns of its control unit.
type Duration struct {
	Turns    int  `json:"turns"`
	Infinite bool `json:"infinite"`
	// Random records that Turns was rolled from a range; informational only.
	Random bool `json:"random,omitempty"`
}

// FiniteDuration lasts exactly n turns.
func FiniteDuration(n int) Duration {
	if n < 0 {
		n = 0
	}
	return Duration{Turns: n}
}

// RandomDuration lasts a number of turns drawn from [min, max].
func RandomDuration(rnd Random, min, max int) Duration {
	d := FiniteDuration(rnd.Uniform(min, max))
	d.Random = true
	return d
}

// InfiniteDuration lasts until the battle ends.
func InfiniteDuration() Duration {
	return Duration{Infinite: true}
}

// DecreaseTurn consumes one turn. It never goes below zero.
func (d *Duration) DecreaseTurn() {
	if d.Infinite || d.Turns == 0 {
		return
	}
	d.Turns--
}

// IsCompleted reports whether a finite duration has run out.
func (d Duration) IsCompleted() bool {
	return !d.Infinite && d.Turns <= 0
}

func (d Duration) String() string {
	if d.Infinite {
		return "infinite"
	}
	return fmt.Sprintf("%d turn(s)", d.Turns)
}

// BattleEffect is a status applied to a unit.
type BattleEffect struct {
	Type     AttackType   `json:"type"`
	Source   AttackSource `json:"source"`
	Power    int          `json:"power"`
	Duration Duration     `json:"duration"`
	// DurationControl is the unit whose turns decrement this effect. It is a
	// lookup key only, the effect is owned by the unit carrying it.
	DurationControl UnitID `json:"duration_control"`
	// AppliedBy is the unit whose attack created the effect.
	AppliedBy UnitID `json:"applied_by"`
	// TriggeredRound is the last round a damage-over-time effect fired.
	TriggeredRound int `json:"triggered_round"`
}

// IsCurableBy reports whether a Cure cast by a member of player p removes the
// effect: it must be finite and applied by the opposing side.
func (e *BattleEffect) IsCurableBy(p PlayerID, f *Field) bool {
	if e.Duration.Infinite || e.Type == AttackDefend {
		return false
	}
	src := f.Unit(e.AppliedBy)
	return src != nil && src.Player != p
}

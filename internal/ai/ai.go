// Package ai chooses commands for computer controlled units.
package ai

import (
	"fmt"
	"sort"

	"github.com/suderio/warband/internal/engine"
	"github.com/suderio/warband/internal/resolver"
	"github.com/suderio/warband/internal/rules"
)

// CommandKind is the kind of command a unit can be given on its turn.
type CommandKind int

const (
	CommandAttack CommandKind = iota + 1
	CommandDefend
	CommandWait
	CommandRetreat
)

func (k CommandKind) String() string {
	switch k {
	case CommandAttack:
		return "attack"
	case CommandDefend:
		return "defend"
	case CommandWait:
		return "wait"
	case CommandRetreat:
		return "retreat"
	}
	return fmt.Sprintf("command(%d)", int(k))
}

// Command is a turn decision. Target is only set for attacks.
type Command struct {
	Kind   CommandKind
	Target engine.UnitID
}

func (c Command) String() string {
	if c.Kind == CommandAttack {
		return fmt.Sprintf("attack unit %d", c.Target)
	}
	return c.Kind.String()
}

// Defend is the fallback command.
var Defend = Command{Kind: CommandDefend, Target: engine.NoUnit}

// DecisionMaker picks a command for a unit.
type DecisionMaker struct {
	rules    *rules.Registry
	priority string
}

// New creates a decision maker ranking offensive targets with the given CEL
// formula (higher first). An empty formula selects rules.DefaultPriority.
func New(reg *rules.Registry, priority string) (*DecisionMaker, error) {
	if priority == "" {
		priority = rules.DefaultPriority
	}
	if _, err := reg.Compile(priority); err != nil {
		return nil, fmt.Errorf("ai priority %q: %w", priority, err)
	}
	return &DecisionMaker{rules: reg, priority: priority}, nil
}

// Command decides what u does on its turn.
func (d *DecisionMaker) Command(r *resolver.Resolver, u *engine.Unit) (Command, error) {
	f := r.Field()
	atk := u.PrimaryAttack()
	if atk.Type.TargetsAllies() {
		return d.support(r, u), nil
	}

	type candidate struct {
		unit     *engine.Unit
		priority int
	}
	var cands []candidate
	power := resolver.Power(u, atk)
	for _, t := range resolver.Targets(f, u, atk) {
		cat, _, ok := resolver.CheckProtection(t, atk)
		if ok && cat == engine.Immunity {
			continue
		}
		if !r.Applicable(u, t, atk, power) {
			continue
		}
		p, err := d.rules.EvalInt(d.priority, rules.BuildEvalContext(f, u, t, ok && cat == engine.Ward))
		if err != nil {
			return Defend, fmt.Errorf("rank target %s: %w", t, err)
		}
		cands = append(cands, candidate{unit: t, priority: p})
	}
	if len(cands) == 0 {
		return Defend, nil
	}
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.priority != b.priority {
			return a.priority > b.priority
		}
		if a.unit.HitPoints != b.unit.HitPoints {
			return a.unit.HitPoints < b.unit.HitPoints
		}
		return a.unit.ID < b.unit.ID
	})
	return Command{Kind: CommandAttack, Target: cands[0].unit.ID}, nil
}

// support picks the ally with the lowest hit point ratio the unit's attack
// can still do something for. Dead allies count as zero when the secondary
// attack revives.
func (d *DecisionMaker) support(r *resolver.Resolver, u *engine.Unit) Command {
	f := r.Field()
	var best *engine.Unit
	consider := func(t *engine.Unit) {
		if best == nil || ratioLess(t, best) {
			best = t
		}
	}
	atk := u.PrimaryAttack()
	for _, t := range resolver.Targets(f, u, atk) {
		if r.Applicable(u, t, atk, resolver.Power(u, atk)) {
			consider(t)
		}
	}
	if sec := u.SecondaryAttack(); sec != nil && sec.Type == engine.AttackRevive {
		for _, t := range resolver.Targets(f, u, sec) {
			if r.Applicable(u, t, sec, sec.Power) {
				consider(t)
			}
		}
	}
	if best == nil {
		return Defend
	}
	return Command{Kind: CommandAttack, Target: best.ID}
}

// ratioLess compares hp/max_hp without division.
func ratioLess(a, b *engine.Unit) bool {
	l, r := a.HitPoints*b.MaxHitPoints(), b.HitPoints*a.MaxHitPoints()
	if l != r {
		return l < r
	}
	return a.ID < b.ID
}

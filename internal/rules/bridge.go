package rules

import (
	"github.com/suderio/warband/internal/engine"
)

// ContextFromUnit converts a unit into a map suitable for CEL evaluation.
func ContextFromUnit(u *engine.Unit) map[string]any {
	if u == nil {
		return map[string]any{}
	}
	effects := make([]string, 0, len(u.Effects))
	for _, e := range u.Effects {
		effects = append(effects, e.Type.String())
	}
	return map[string]any{
		"id":         int(u.ID),
		"name":       u.Name(),
		"type":       u.Type.ID,
		"hp":         u.HitPoints,
		"max_hp":     u.MaxHitPoints(),
		"armor":      u.Armor(),
		"initiative": u.Initiative(),
		"line":       u.Position.Line,
		"flank":      u.Position.Flank,
		"level":      u.Level,
		"effects":    effects,
		"defended":   u.IsDefended(),
	}
}

// BuildEvalContext creates the context of a target priority formula.
func BuildEvalContext(f *engine.Field, attacker, target *engine.Unit, ward bool) map[string]any {
	round := 0
	if f != nil {
		round = f.Round
	}
	return map[string]any{
		"attacker": ContextFromUnit(attacker),
		"target":   ContextFromUnit(target),
		"ward":     ward,
		"round":    round,
	}
}

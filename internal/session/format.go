package session

import (
	"fmt"
	"strings"

	"github.com/suderio/warband/internal/data"
	"github.com/suderio/warband/internal/engine"
)

// DescribeUnit renders one unit as a status line.
func DescribeUnit(u *engine.Unit) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%d] %-10s %3d/%-3d %s-%d", u.ID, u.Name(), u.HitPoints, u.MaxHitPoints(), data.Line(u.Position.Line), u.Position.Flank)
	switch {
	case u.Dead:
		b.WriteString(" dead")
	case u.Retreated:
		b.WriteString(" retreated")
	case u.Retreating:
		b.WriteString(" fleeing")
	}
	for _, e := range u.Effects {
		fmt.Fprintf(&b, " %s(%s)", e.Type, e.Duration)
	}
	return b.String()
}

// Status renders both squads.
func Status(f *engine.Field) []string {
	var lines []string
	for _, squad := range f.Squads {
		lines = append(lines, fmt.Sprintf("%s:", squad.Name))
		for _, id := range squad.Units {
			lines = append(lines, "  "+DescribeUnit(f.Unit(id)))
		}
	}
	return lines
}

package data

import (
	"fmt"

	"github.com/suderio/warband/internal/engine"
)

// MaxSquadSize is the number of slots of a squad: two lines of three flanks.
const MaxSquadSize = 2 * engine.Flanks

// Member places a unit type in a squad slot.
type Member struct {
	Type      string `json:"type" yaml:"type"`
	Line      Line   `json:"line" yaml:"line"`
	Flank     int    `json:"flank" yaml:"flank"`
	HitPoints int    `json:"hit_points,omitempty" yaml:"hit_points"`
}

// Position is the squad slot of the member.
func (m Member) Position() engine.Position {
	return engine.Position{Line: int(m.Line), Flank: m.Flank}
}

// Squad is a named group of units loaded from YAML.
type Squad struct {
	ID      string   `json:"id" yaml:"id"`
	Name    string   `json:"name" yaml:"name"`
	Members []Member `json:"members" yaml:"members"`
}

// Validate checks slot bounds and that no two members share a slot.
func (s *Squad) Validate() error {
	if len(s.Members) == 0 {
		return fmt.Errorf("squad %s has no members", s.ID)
	}
	if len(s.Members) > MaxSquadSize {
		return fmt.Errorf("squad %s has %d members, at most %d fit", s.ID, len(s.Members), MaxSquadSize)
	}
	taken := make(map[engine.Position]string)
	for _, m := range s.Members {
		pos := m.Position()
		if m.Flank < 0 || m.Flank >= engine.Flanks {
			return fmt.Errorf("squad %s: %s has invalid flank %d", s.ID, m.Type, m.Flank)
		}
		if other, ok := taken[pos]; ok {
			return fmt.Errorf("squad %s: %s and %s share line %s flank %d", s.ID, other, m.Type, m.Line, m.Flank)
		}
		taken[pos] = m.Type
	}
	return nil
}

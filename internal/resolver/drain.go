package resolver

import (
	"sort"

	"github.com/suderio/warband/internal/engine"
)

// Heal is one share of vampiric healing.
type Heal struct {
	Unit   engine.UnitID
	Amount int
}

// DrainHeals splits the life drained by one attack. Half of the damage dealt
// goes to the attacker; with DrainOverflow whatever the attacker cannot take
// flows to its damaged squad-mates. Mates are filled smallest deficit first
// and the rest of the pool is split evenly (rounding down, the last mate takes
// what is left). Healing that finds no deficit is lost.
func DrainHeals(f *engine.Field, attacker *engine.Unit, t engine.AttackType, totalDamage int) []Heal {
	pool := totalDamage / 2
	if pool <= 0 || attacker.IsInactive() {
		return nil
	}
	var heals []Heal
	if give := min(pool, attacker.HitPointDeficit()); give > 0 {
		heals = append(heals, Heal{Unit: attacker.ID, Amount: give})
		pool -= give
	}
	if t != engine.AttackDrainOverflow || pool == 0 {
		return heals
	}

	var mates []*engine.Unit
	for _, u := range f.Allies(attacker) {
		if u.ID != attacker.ID && u.IsActive() && u.HitPointDeficit() > 0 {
			mates = append(mates, u)
		}
	}
	sort.SliceStable(mates, func(i, j int) bool {
		return mates[i].HitPointDeficit() < mates[j].HitPointDeficit()
	})
	for i, u := range mates {
		share := pool / (len(mates) - i)
		give := min(share, u.HitPointDeficit())
		if give > 0 {
			heals = append(heals, Heal{Unit: u.ID, Amount: give})
			pool -= give
		}
	}
	return heals
}

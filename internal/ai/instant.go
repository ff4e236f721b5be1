package ai

import (
	"github.com/suderio/warband/internal/engine"
)

// InstantResolve skips the rest of the battle: every surviving attacker is
// left with 1 hit point, every surviving defender is killed and the
// attacking squad wins. It returns the events doing so.
func InstantResolve(f *engine.Field) []engine.Event {
	var events []engine.Event
	for _, u := range f.Squad(engine.Attacker) {
		if u.IsActive() && u.HitPoints != 1 {
			events = append(events, &engine.HPChangedEvent{UnitID: u.ID, Name: u.Name(), Amount: 1 - u.HitPoints})
		}
	}
	for _, u := range f.Squad(engine.Defender) {
		if u.IsActive() {
			events = append(events,
				&engine.HPChangedEvent{UnitID: u.ID, Name: u.Name(), Amount: -u.HitPoints},
				&engine.UnitDiedEvent{UnitID: u.ID, Name: u.Name(), Killer: engine.NoUnit},
			)
		}
	}
	return append(events, &engine.BattleEndedEvent{
		Winner:     engine.Attacker,
		WinnerName: f.Squads[engine.Attacker].Name,
		Instant:    true,
	})
}

package action

import (
	"github.com/suderio/warband/internal/engine"
)

// Handle identifies an animation started on a Presenter.
type Handle int

// Animation layers.
const (
	LayerUnit   = 0
	LayerEffect = 1
)

// Presenter plays animations. The engine only needs to know when a started
// animation is finished.
type Presenter interface {
	PlayAnimation(ref string, pos engine.Position, layer int, repeat bool) Handle
	IsDestroyed(h Handle) bool
}

// TickPresenter is a headless Presenter. Every animation is destroyed after
// a fixed number of calls to Tick, repeating ones included.
type TickPresenter struct {
	ticks     int
	next      Handle
	remaining map[Handle]int
	played    []string
}

// NewTickPresenter creates a presenter whose animations last ticks ticks.
func NewTickPresenter(ticks int) *TickPresenter {
	return &TickPresenter{ticks: ticks, remaining: make(map[Handle]int)}
}

func (p *TickPresenter) PlayAnimation(ref string, pos engine.Position, layer int, repeat bool) Handle {
	p.next++
	p.remaining[p.next] = p.ticks
	p.played = append(p.played, ref)
	return p.next
}

func (p *TickPresenter) IsDestroyed(h Handle) bool {
	n, ok := p.remaining[h]
	if !ok {
		return true
	}
	if n <= 0 {
		delete(p.remaining, h)
		return true
	}
	return false
}

// Tick advances every running animation by one frame.
func (p *TickPresenter) Tick() {
	for h := range p.remaining {
		p.remaining[h]--
	}
}

// Running is the number of animations not yet destroyed.
func (p *TickPresenter) Running() int { return len(p.remaining) }

// Played lists the animation refs started so far, oldest first.
func (p *TickPresenter) Played() []string { return p.played }

// Package turn decides which unit acts next.
//
// A round is a priority queue of units ordered by descending rolled
// initiative. Units that wait are pushed onto a LIFO stack which is drained
// once the main queue is empty.
package turn

import (
	"container/heap"
	"sort"

	"github.com/suderio/warband/internal/engine"
)

// Entry is a unit plus the initiative it rolled for the current round.
type Entry struct {
	Unit       engine.UnitID
	Roll       int
	Initiative int
	// Priority entries (additional attacks) act before everything else.
	Priority bool
	seq      int
}

type entryHeap []*Entry

func (h entryHeap) Len() int { return len(h) }
func (h entryHeap) Less(i, j int) bool {
	if h[i].Priority != h[j].Priority {
		return h[i].Priority
	}
	if h[i].Initiative != h[j].Initiative {
		return h[i].Initiative > h[j].Initiative
	}
	return h[i].seq < h[j].seq
}
func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *entryHeap) Push(x any)   { *h = append(*h, x.(*Entry)) }
func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// Scheduler holds the turn queue of the current round and the waiting stack.
type Scheduler struct {
	rnd             engine.Random
	initiativeRange int
	queue           entryHeap
	waiting         []engine.UnitID
	seq             int
}

// NewScheduler creates a scheduler rolling initiative as
// base + rnd.Uniform(0, initiativeRange).
func NewScheduler(rnd engine.Random, initiativeRange int) *Scheduler {
	return &Scheduler{rnd: rnd, initiativeRange: initiativeRange}
}

// NextRound rolls initiative for every active unit, rebuilds the queue and
// pops the first unit. It returns false when no unit can act.
func (s *Scheduler) NextRound(f *engine.Field) (engine.UnitID, bool) {
	s.queue = s.queue[:0]
	s.waiting = s.waiting[:0]
	for _, u := range f.ActiveUnits() {
		roll := s.rnd.Uniform(0, s.initiativeRange)
		s.push(&Entry{Unit: u.ID, Roll: roll, Initiative: u.Initiative() + roll})
	}
	return s.NextUnit(f)
}

// NextUnit pops the next unit that is still able to act: first from the
// main queue, then from the waiting stack. Dead or retreated units are
// dropped as they are reached. It returns false when the round is over.
func (s *Scheduler) NextUnit(f *engine.Field) (engine.UnitID, bool) {
	for s.queue.Len() > 0 {
		e := heap.Pop(&s.queue).(*Entry)
		if u := f.Unit(e.Unit); u != nil && u.IsActive() {
			return e.Unit, true
		}
	}
	for len(s.waiting) > 0 {
		id := s.waiting[len(s.waiting)-1]
		s.waiting = s.waiting[:len(s.waiting)-1]
		if u := f.Unit(id); u != nil && u.IsActive() {
			return id, true
		}
	}
	return engine.NoUnit, false
}

// Wait defers the unit until every non-waiting unit has acted this round.
func (s *Scheduler) Wait(id engine.UnitID) {
	s.waiting = append(s.waiting, id)
}

// Reorder recomputes the priority of a unit that has not acted yet, keeping
// its rolled random term. It reports whether the unit was still queued.
func (s *Scheduler) Reorder(u *engine.Unit) bool {
	for i, e := range s.queue {
		if e.Unit == u.ID {
			e.Initiative = u.Initiative() + e.Roll
			heap.Fix(&s.queue, i)
			return true
		}
	}
	return false
}

// GrantTurn makes the unit act next, ahead of the rest of the round. A
// pending entry of the unit in the main queue is kept.
func (s *Scheduler) GrantTurn(u *engine.Unit) {
	s.push(&Entry{Unit: u.ID, Initiative: u.Initiative(), Priority: true})
}

// IsWaiting reports whether the unit is on the waiting stack.
func (s *Scheduler) IsWaiting(id engine.UnitID) bool {
	for _, w := range s.waiting {
		if w == id {
			return true
		}
	}
	return false
}

// Pending returns the queued entries in acting order, followed by the
// waiting units in the order they will act.
func (s *Scheduler) Pending() []Entry {
	res := make([]Entry, 0, len(s.queue)+len(s.waiting))
	for _, e := range s.queue {
		res = append(res, *e)
	}
	sort.Slice(res, func(i, j int) bool {
		return entryHeap{&res[i], &res[j]}.Less(0, 1)
	})
	for i := len(s.waiting) - 1; i >= 0; i-- {
		res = append(res, Entry{Unit: s.waiting[i]})
	}
	return res
}

func (s *Scheduler) push(e *Entry) {
	e.seq = s.seq
	s.seq++
	heap.Push(&s.queue, e)
}

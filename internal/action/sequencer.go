package action

import (
	"errors"
	"fmt"
)

// ErrQueueOverflow is raised (as a panic) when an action is enqueued while
// one is active and another is already waiting.
var ErrQueueOverflow = errors.New("action queue overflow: one action active and one queued")

// State is the battle state driven by the sequencer.
type State int

const (
	WaitingForPlayerTurn State = iota
	BeginUnitAction
	ProcessingUnitAction
	CompletedUnitAction
	CompletedBattle
	WaitExit
)

func (s State) String() string {
	switch s {
	case WaitingForPlayerTurn:
		return "waiting for player turn"
	case BeginUnitAction:
		return "begin unit action"
	case ProcessingUnitAction:
		return "processing unit action"
	case CompletedUnitAction:
		return "completed unit action"
	case CompletedBattle:
		return "completed battle"
	case WaitExit:
		return "wait exit"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Sequencer runs unit actions one at a time. It holds at most one active
// action and one queued action.
type Sequencer struct {
	battle Battle
	loaded bool
	state  State

	active    *Action
	next      *Action
	completed *Action
	last      *Action
}

// NewSequencer creates a sequencer for the battle. Actions enqueued before
// Load are initialized when the battle is loaded.
func NewSequencer(b Battle) *Sequencer {
	return &Sequencer{battle: b, state: WaitingForPlayerTurn}
}

// Load marks the battle as loaded and initializes a pending active action.
func (s *Sequencer) Load() error {
	s.loaded = true
	if s.active != nil && !s.active.initialized {
		return s.start()
	}
	return nil
}

func (s *Sequencer) State() State { return s.state }

// SetState is used by the battle controller for the states it owns.
func (s *Sequencer) SetState(st State) { s.state = st }

// Active is the action being processed, if any.
func (s *Sequencer) Active() *Action { return s.active }

// Next is the queued action, if any.
func (s *Sequencer) Next() *Action { return s.next }

// Completed is the action that finished during the last update. It is only
// set for one tick.
func (s *Sequencer) Completed() *Action { return s.completed }

// Last is the most recently finished action, observable or not.
func (s *Sequencer) Last() *Action { return s.last }

// Busy reports whether an action is active or queued.
func (s *Sequencer) Busy() bool {
	return s.active != nil || s.next != nil || s.completed != nil
}

// Enqueue hands an action to the sequencer. With nothing active the action
// starts at once; otherwise it waits in the single queued slot. Enqueueing a
// third action panics with ErrQueueOverflow.
func (s *Sequencer) Enqueue(a *Action) error {
	if s.active == nil && s.completed == nil {
		s.active = a
		s.state = BeginUnitAction
		if s.loaded {
			return s.start()
		}
		return nil
	}
	if s.next != nil {
		panic(fmt.Errorf("enqueue %s: %w", a, ErrQueueOverflow))
	}
	s.next = a
	return nil
}

// BeforeUpdate retires the action completed last tick, promotes the queued
// one and drives the active action.
func (s *Sequencer) BeforeUpdate() error {
	if s.completed != nil {
		s.completed = nil
		s.active, s.next = s.next, nil
		if s.active == nil {
			s.state = CompletedUnitAction
			return nil
		}
		if err := s.start(); err != nil {
			return err
		}
	}
	if s.active == nil || !s.loaded {
		return nil
	}
	if !s.active.initialized {
		return s.start()
	}
	return s.active.BeforeUpdate(s.battle)
}

// AfterUpdate lets the active action observe its animations and exposes it
// as completed once it is drained.
func (s *Sequencer) AfterUpdate() {
	if s.active == nil || !s.active.initialized {
		return
	}
	s.active.AfterUpdate(s.battle)
	if !s.active.completed {
		return
	}
	a := s.active
	s.finish(a)
	s.completed = a
	s.active = nil
}

// start initializes the active action. Actions that complete during
// initialization are never exposed; the queue is pulled until an action
// needs updates or nothing is left.
func (s *Sequencer) start() error {
	for s.active != nil {
		a := s.active
		if err := a.Initialize(s.battle); err != nil {
			return err
		}
		if !a.completed {
			s.state = ProcessingUnitAction
			return nil
		}
		s.finish(a)
		s.active, s.next = s.next, nil
	}
	s.state = CompletedUnitAction
	return nil
}

// finish queues the follow-up of a completed action while it still holds
// the active slot.
func (s *Sequencer) finish(a *Action) {
	s.last = a
	if a.followUp != nil {
		if s.next != nil {
			panic(fmt.Errorf("follow-up %s: %w", a.followUp, ErrQueueOverflow))
		}
		s.next = a.followUp
	}
}

package action

import (
	"fmt"

	"github.com/suderio/warband/internal/engine"
)

// StepKind discriminates the primitive sub-actions of a unit action.
type StepKind int

const (
	// StepAnimation blocks the action until the presenter destroys it.
	StepAnimation StepKind = iota + 1
	// StepApply applies an event to the field and journals it.
	StepApply
	// StepMessage shows a short text over a unit.
	StepMessage
)

// Step is one primitive sub-action.
type Step struct {
	Kind StepKind

	Animation string
	Position  engine.Position
	Layer     int

	Event engine.Event

	Unit engine.UnitID
	Text string

	handle  Handle
	started bool
}

func animationStep(ref string, pos engine.Position, layer int) *Step {
	return &Step{Kind: StepAnimation, Animation: ref, Position: pos, Layer: layer}
}

func applyStep(ev engine.Event) *Step {
	return &Step{Kind: StepApply, Event: ev}
}

func messageStep(unit engine.UnitID, text string) *Step {
	return &Step{Kind: StepMessage, Unit: unit, Text: text}
}

func (s *Step) String() string {
	switch s.Kind {
	case StepAnimation:
		return "animation " + s.Animation
	case StepApply:
		return "apply " + string(s.Event.Type())
	case StepMessage:
		return fmt.Sprintf("message %q", s.Text)
	}
	return fmt.Sprintf("step(%d)", int(s.Kind))
}

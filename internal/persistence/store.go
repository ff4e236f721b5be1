// Package persistence keeps battle journals: append-only jsonl logs of the
// events applied to a battle field.
package persistence

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/suderio/warband/internal/engine"
)

// EventWrapper facilitates serialization of polymorphic events
type EventWrapper struct {
	Type  engine.EventType `json:"type"`
	Event json.RawMessage  `json:"data"`
}

// Store handles append-only storing of a battle journal.
type Store struct {
	file *os.File
}

// NewStore opens or creates the file at path for appending lines
func NewStore(path string) (*Store, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open store file: %w", err)
	}
	return &Store{file: file}, nil
}

// Append takes an Event interface and marshals it to jsonl log.
func (s *Store) Append(evt engine.Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	wrapper := EventWrapper{
		Type:  evt.Type(),
		Event: data,
	}

	wrapperData, err := json.Marshal(wrapper)
	if err != nil {
		return err
	}

	if _, err := s.file.Write(append(wrapperData, '\n')); err != nil {
		return err
	}
	return s.file.Sync()
}

// Load replays all jsonl lines and unpacks them to an Event slice.
func (s *Store) Load() ([]engine.Event, error) {
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return Decode(s.file)
}

// Close handles safe shutdown.
func (s *Store) Close() error {
	return s.file.Close()
}

// ReadFile loads the journal at path without opening it for writing.
func ReadFile(path string) ([]engine.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads jsonl event lines until EOF.
func Decode(r io.Reader) ([]engine.Event, error) {
	var events []engine.Event
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var wrapper EventWrapper
		if err := json.Unmarshal(scanner.Bytes(), &wrapper); err != nil {
			return nil, fmt.Errorf("line %d: failed to decode wrapper: %w", line, err)
		}

		evt, err := newEvent(wrapper.Type)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if err := json.Unmarshal(wrapper.Event, evt); err != nil {
			return nil, fmt.Errorf("line %d: failed to parse %s data: %w", line, wrapper.Type, err)
		}

		events = append(events, evt)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

func newEvent(t engine.EventType) (engine.Event, error) {
	switch t {
	case engine.EventBattleStarted:
		return &engine.BattleStartedEvent{}, nil
	case engine.EventUnitAdded:
		return &engine.UnitAddedEvent{}, nil
	case engine.EventRoundStarted:
		return &engine.RoundStartedEvent{}, nil
	case engine.EventTurnStarted:
		return &engine.TurnStartedEvent{}, nil
	case engine.EventUnitWaited:
		return &engine.UnitWaitedEvent{}, nil
	case engine.EventTurnSkipped:
		return &engine.TurnSkippedEvent{}, nil
	case engine.EventAttackMissed:
		return &engine.AttackMissedEvent{}, nil
	case engine.EventAttackIneffective:
		return &engine.AttackIneffectiveEvent{}, nil
	case engine.EventHPChanged:
		return &engine.HPChangedEvent{}, nil
	case engine.EventUnitDied:
		return &engine.UnitDiedEvent{}, nil
	case engine.EventUnitRevived:
		return &engine.UnitRevivedEvent{}, nil
	case engine.EventUnitRetreated:
		return &engine.UnitRetreatedEvent{}, nil
	case engine.EventUnitFeared:
		return &engine.UnitFearedEvent{}, nil
	case engine.EventEffectApplied:
		return &engine.EffectAppliedEvent{}, nil
	case engine.EventEffectTriggered:
		return &engine.EffectTriggeredEvent{}, nil
	case engine.EventEffectDecreased:
		return &engine.EffectDecreasedEvent{}, nil
	case engine.EventEffectRemoved:
		return &engine.EffectRemovedEvent{}, nil
	case engine.EventWardConsumed:
		return &engine.WardConsumedEvent{}, nil
	case engine.EventExtraTurnGranted:
		return &engine.ExtraTurnGrantedEvent{}, nil
	case engine.EventExperienceGained:
		return &engine.ExperienceGainedEvent{}, nil
	case engine.EventBattleEnded:
		return &engine.BattleEndedEvent{}, nil
	}
	return nil, fmt.Errorf("unknown event type in log: %s", t)
}

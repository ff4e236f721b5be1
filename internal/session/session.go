// Package session wires the data loader, the battle controller, the journal
// and the command parser into one interactive battle.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/alecthomas/participle/v2"
	"go.uber.org/zap"

	"github.com/suderio/warband/internal/action"
	"github.com/suderio/warband/internal/ai"
	"github.com/suderio/warband/internal/battle"
	"github.com/suderio/warband/internal/config"
	"github.com/suderio/warband/internal/data"
	"github.com/suderio/warband/internal/engine"
	"github.com/suderio/warband/internal/parser"
	"github.com/suderio/warband/internal/rules"
)

// DefaultMaxTicks bounds a single Advance.
const DefaultMaxTicks = 200000

// Options configures a battle.
type Options struct {
	Rules config.Rules
	// Seed feeds the random source; zero picks a time-based seed.
	Seed    uint64
	Journal battle.Journal
	// Controls selects the sides played by the AI. Nil leaves the attacker
	// to the player.
	Controls battle.Controls
	Logger   *zap.Logger
	MaxTicks int
}

// PlayerIsAttacker lets the AI play the defending squad only.
func PlayerIsAttacker(p engine.PlayerID) bool { return p == engine.Defender }

// SquadSetup turns a loaded squad into controller placements.
func SquadSetup(loader *data.Loader, squad *data.Squad) (battle.SquadSetup, error) {
	setup := battle.SquadSetup{Name: squad.Name}
	for _, m := range squad.Members {
		t, err := loader.LoadUnitType(m.Type)
		if err != nil {
			return setup, err
		}
		setup.Units = append(setup.Units, battle.Placement{Type: t, Position: m.Position(), HitPoints: m.HitPoints})
	}
	return setup, nil
}

// LoadSetups loads both squads with their unit types.
func LoadSetups(loader *data.Loader, attacker, defender string) ([2]battle.SquadSetup, error) {
	var setups [2]battle.SquadSetup
	for i, name := range []string{attacker, defender} {
		squad, err := loader.LoadSquad(name)
		if err != nil {
			return setups, err
		}
		if setups[i], err = SquadSetup(loader, squad); err != nil {
			return setups, err
		}
	}
	return setups, nil
}

// NewController loads both squads and builds a loaded controller for them.
func NewController(loader *data.Loader, attacker, defender string, opts Options) (*battle.Controller, error) {
	setups, err := LoadSetups(loader, attacker, defender)
	if err != nil {
		return nil, err
	}
	return Start(setups, opts)
}

// Start builds a loaded controller for two squads. Setups only share
// read-only unit types, so one may start several battles concurrently.
func Start(setups [2]battle.SquadSetup, opts Options) (*battle.Controller, error) {
	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rnd := engine.NewRandom(seed)
	reg, err := rules.NewRegistry(rnd)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize rules registry: %w", err)
	}
	dm, err := ai.New(reg, opts.Rules.AIPriority)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug("battle setup",
		zap.String("attacker", setups[0].Name),
		zap.String("defender", setups[1].Name),
		zap.Uint64("seed", seed))

	c, err := battle.New(battle.Setup(setups[0], setups[1]), battle.Options{
		Random:          rnd,
		Presenter:       action.NewTickPresenter(opts.Rules.AnimationTicks),
		InitiativeRange: opts.Rules.InitiativeRange,
		AttackRange:     opts.Rules.AttackRange,
		AI:              dm,
		Journal:         opts.Journal,
		Logger:          logger,
	})
	if err != nil {
		return nil, err
	}
	if err := c.Load(); err != nil {
		return nil, err
	}
	return c, nil
}

// Session manages the loop of taking commands, driving the controller and
// reporting the battle log.
type Session struct {
	loader     *data.Loader
	controller *battle.Controller
	journal    battle.Journal
	parser     *participle.Parser[parser.Command]
	controls   battle.Controls
	logger     *zap.Logger
	maxTicks   int
}

// New starts a battle between two squads and advances it to the first
// decision of the player.
func New(ctx context.Context, loader *data.Loader, attacker, defender string, opts Options) (*Session, []string, error) {
	c, err := NewController(loader, attacker, defender, opts)
	if err != nil {
		return nil, nil, err
	}
	s := &Session{
		loader:     loader,
		controller: c,
		journal:    opts.Journal,
		parser:     parser.Build(),
		controls:   opts.Controls,
		logger:     opts.Logger,
		maxTicks:   opts.MaxTicks,
	}
	if s.controls == nil {
		s.controls = PlayerIsAttacker
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.maxTicks <= 0 {
		s.maxTicks = DefaultMaxTicks
	}
	if err := s.Advance(ctx); err != nil {
		return nil, nil, err
	}
	return s, c.Messages(), nil
}

// Controller exposes the running battle.
func (s *Session) Controller() *battle.Controller { return s.controller }

// Loader returns the YAML reference loader.
func (s *Session) Loader() *data.Loader { return s.loader }

// Advance runs the battle until the player has to decide or it ends.
func (s *Session) Advance(ctx context.Context) error {
	return battle.Run(ctx, s.controller, s.controls, s.maxTicks)
}

// Floating drains the floating texts shown over units.
func (s *Session) Floating() []battle.Floating { return s.controller.Floating() }

// Prompt describes whose turn it is.
func (s *Session) Prompt() string {
	c := s.controller
	if winner, over := c.Winner(); over {
		return fmt.Sprintf("battle over, %s won", c.Field().Squads[winner].Name)
	}
	u := c.CurrentUnit()
	if u == nil {
		return ""
	}
	prompt := fmt.Sprintf("%s [%d] %d/%d", u.Name(), u.ID, u.HitPoints, u.MaxHitPoints())
	if c.IsSecondAttack() {
		prompt += " (second attack)"
	}
	return prompt
}

// Execute parses one line of input and runs it. Battle commands return the
// log lines they produced, queries return their report.
func (s *Session) Execute(ctx context.Context, input string) ([]string, error) {
	input = strings.TrimSpace(input)
	cmd, err := s.parser.ParseString("", input)
	if err != nil {
		return nil, parser.MapError(input, err)
	}
	c := s.controller

	switch {
	case cmd.Targets != nil:
		return s.targets(), nil
	case cmd.Status != nil:
		return Status(c.Field()), nil
	case cmd.Queue != nil:
		return s.queue(), nil
	case cmd.Help != nil:
		return help(cmd.Help.Command)
	}

	if _, over := c.Winner(); over {
		return nil, battle.ErrBattleOver
	}
	switch {
	case cmd.Attack != nil:
		var target engine.UnitID
		if target, err = s.resolveTarget(cmd.Attack.Target); err == nil {
			err = c.BeginMainAttack(target)
		}
	case cmd.Defend != nil:
		err = c.Defend()
	case cmd.Wait != nil:
		err = c.Wait()
	case cmd.Retreat != nil:
		err = c.Retreat()
	case cmd.Auto != nil:
		err = c.UnitTurn()
	case cmd.Resolve != nil:
		err = c.InstantResolve()
	default:
		return nil, fmt.Errorf("unsupported command pattern")
	}
	if err != nil {
		return nil, err
	}
	s.logger.Debug("player command", zap.String("input", input))

	if err := s.Advance(ctx); err != nil {
		return c.Messages(), err
	}
	return c.Messages(), nil
}

// resolveTarget maps an id or a unit name to a valid target of the current
// unit. Names pick the first matching target.
func (s *Session) resolveTarget(t *parser.TargetExpr) (engine.UnitID, error) {
	if t.ID != nil {
		return engine.UnitID(*t.ID), nil
	}
	for _, u := range s.controller.Targets() {
		if strings.EqualFold(u.Name(), t.Name) || strings.EqualFold(u.Type.ID, t.Name) {
			return u.ID, nil
		}
	}
	return engine.NoUnit, fmt.Errorf("no target named %s: %w", t.Name, battle.ErrInvalidTarget)
}

func (s *Session) targets() []string {
	targets := s.controller.Targets()
	if len(targets) == 0 {
		return []string{"no valid targets"}
	}
	lines := make([]string, 0, len(targets))
	for _, u := range targets {
		lines = append(lines, DescribeUnit(u))
	}
	return lines
}

func (s *Session) queue() []string {
	f := s.controller.Field()
	var names []string
	for _, id := range s.controller.Pending() {
		names = append(names, f.Unit(id).String())
	}
	if len(names) == 0 {
		return []string{fmt.Sprintf("round %d: nobody left to act", f.Round)}
	}
	return []string{fmt.Sprintf("round %d: %s", f.Round, strings.Join(names, ", "))}
}

func help(command string) ([]string, error) {
	if command != "" {
		usage, ok := parser.Usage[strings.ToLower(command)]
		if !ok {
			return nil, fmt.Errorf("unknown command %s", command)
		}
		return []string{usage}, nil
	}
	lines := make([]string, 0, len(parser.Usage))
	for _, usage := range parser.Usage {
		lines = append(lines, usage)
	}
	sort.Strings(lines)
	return lines, nil
}

// Close releases the journal when it holds a file.
func (s *Session) Close() error {
	if closer, ok := s.journal.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// IsUserError reports whether err comes from a rejected command rather than
// a broken battle.
func IsUserError(err error) bool {
	return errors.Is(err, battle.ErrInvalidTarget) ||
		errors.Is(err, battle.ErrCannotWait) ||
		errors.Is(err, battle.ErrNotAwaitingCommand) ||
		errors.Is(err, battle.ErrBattleOver)
}

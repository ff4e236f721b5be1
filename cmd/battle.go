/*
Copyright © 2026 Paulo Suderio
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/suderio/warband/internal/battle"
	"github.com/suderio/warband/internal/engine"
	"github.com/suderio/warband/internal/persistence"
	"github.com/suderio/warband/internal/session"
)

var battleCmd = &cobra.Command{
	Use:   "battle",
	Short: "Run, simulate and replay AI battles",
}

var battleRunCmd = &cobra.Command{
	Use:   "run <attacker_squad> <defender_squad>",
	Short: "Fight one battle with the AI playing both squads",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnvironment()
		if err != nil {
			return err
		}
		defer env.logger.Sync()

		opts := session.Options{Rules: env.cfg.Rules, Seed: env.cfg.Seed, Logger: env.logger}
		store, err := openJournal(cmd, env.cfg.BattlesDir)
		if err != nil {
			return err
		}
		if store != nil {
			defer store.Close()
			opts.Journal = store
		}

		c, err := session.NewController(env.loader, args[0], args[1], opts)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		err = battle.Run(cmd.Context(), c, battle.AllAI, session.DefaultMaxTicks)
		printLines(out, c.Messages())
		if errors.Is(err, battle.ErrStalled) {
			fmt.Fprintf(out, "No winner after %d rounds.\n", c.Field().Round)
			return nil
		}
		if err != nil {
			return err
		}
		if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
			printLines(out, session.Status(c.Field()))
		}
		return nil
	},
}

func openJournal(cmd *cobra.Command, battlesDir string) (*persistence.Store, error) {
	if path, _ := cmd.Flags().GetString("journal"); path != "" {
		return persistence.NewStore(path)
	}
	if name, _ := cmd.Flags().GetString("save"); name != "" {
		return persistence.NewArchive(battlesDir).Create(name)
	}
	return nil, nil
}

func printLines(w io.Writer, lines []string) {
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
}

// tally accumulates simulation results.
type tally struct {
	mu     sync.Mutex
	wins   [2]int
	draws  int
	rounds int
}

func (t *tally) record(c *battle.Controller) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rounds += c.Field().Round
	if winner, over := c.Winner(); over {
		t.wins[winner]++
		return
	}
	t.draws++
}

var battleSimulateCmd = &cobra.Command{
	Use:   "simulate <attacker_squad> <defender_squad>",
	Short: "Fight many AI battles and report win rates",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnvironment()
		if err != nil {
			return err
		}
		defer env.logger.Sync()

		n, _ := cmd.Flags().GetInt("count")
		if n <= 0 {
			return fmt.Errorf("--count must be positive")
		}
		workers, _ := cmd.Flags().GetInt("workers")
		if workers <= 0 {
			workers = runtime.NumCPU()
		}
		setups, err := session.LoadSetups(env.loader, args[0], args[1])
		if err != nil {
			return err
		}
		base := env.cfg.Seed
		if base == 0 {
			base = uint64(time.Now().UnixNano())
		}

		bar := progressbar.Default(int64(n), "Simulating")
		res := &tally{}
		seeds := make(chan uint64)
		errs := make(chan error, workers)
		var wg sync.WaitGroup
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for seed := range seeds {
					c, err := session.Start(setups, session.Options{Rules: env.cfg.Rules, Seed: seed, Logger: env.logger})
					if err == nil {
						err = battle.Run(ctx, c, battle.AllAI, session.DefaultMaxTicks)
					}
					if err != nil && !errors.Is(err, battle.ErrStalled) {
						errs <- fmt.Errorf("seed %d: %w", seed, err)
						cancel()
						return
					}
					res.record(c)
					_ = bar.Add(1)
				}
			}()
		}

	feed:
		for i := 0; i < n; i++ {
			select {
			case seeds <- base + uint64(i):
			case <-ctx.Done():
				break feed
			}
		}
		close(seeds)
		wg.Wait()
		close(errs)
		if err := <-errs; err != nil {
			return err
		}
		_ = bar.Finish()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "\n%d battles, seeds %d..%d\n", n, base, base+uint64(n)-1)
		for p, squad := range setups {
			fmt.Fprintf(out, "  %-24s %5d wins (%.1f%%)\n", squad.Name, res.wins[p], 100*float64(res.wins[p])/float64(n))
		}
		fmt.Fprintf(out, "  %-24s %5d\n", "draws", res.draws)
		fmt.Fprintf(out, "  average rounds: %.1f\n", float64(res.rounds)/float64(n))
		env.logger.Info("simulation finished", zap.Int("battles", n), zap.Int("draws", res.draws))
		return nil
	},
}

var battleReplayCmd = &cobra.Command{
	Use:   "replay <battle_name|journal.jsonl>",
	Short: "Rebuild a battle from its journal and print its log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnvironment()
		if err != nil {
			return err
		}
		path, err := persistence.NewArchive(env.cfg.BattlesDir).Resolve(args[0])
		if err != nil {
			return err
		}
		events, err := persistence.ReadFile(path)
		if err != nil {
			return err
		}
		field, err := engine.NewProjector().Build(events)
		if err != nil {
			return fmt.Errorf("failed to replay %s: %w", path, err)
		}

		out := cmd.OutOrStdout()
		for _, ev := range events {
			if msg := ev.Message(); msg != "" {
				fmt.Fprintln(out, msg)
			}
		}
		fmt.Fprintln(out)
		printLines(out, session.Status(field))
		if !field.Over {
			fmt.Fprintf(out, "Battle unfinished at round %d.\n", field.Round)
		}
		return nil
	},
}

var battleSquadsCmd = &cobra.Command{
	Use:   "squads",
	Short: "List the available squads",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnvironment()
		if err != nil {
			return err
		}
		ids, err := env.loader.ListSquads()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, id := range ids {
			squad, err := env.loader.LoadSquad(id)
			if err != nil {
				fmt.Fprintf(out, "%-12s invalid: %v\n", id, err)
				continue
			}
			fmt.Fprintf(out, "%-12s %s (%d units)\n", id, squad.Name, len(squad.Members))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(battleCmd)
	battleCmd.AddCommand(battleRunCmd, battleSimulateCmd, battleReplayCmd, battleSquadsCmd)

	battleRunCmd.Flags().String("journal", "", "write the battle journal to this file")
	battleRunCmd.Flags().String("save", "", "archive the battle journal under this name")
	battleRunCmd.Flags().BoolP("quiet", "q", false, "skip the final squad status")

	battleSimulateCmd.Flags().IntP("count", "n", 100, "number of battles")
	battleSimulateCmd.Flags().Int("workers", 0, "concurrent battles (default: number of CPUs)")
}

/*
Copyright © 2026 Paulo Suderio
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/suderio/warband/internal/persistence"
	"github.com/suderio/warband/internal/session"
)

var replCmd = &cobra.Command{
	Use:   "repl <attacker_squad> <defender_squad>",
	Short: "Play a battle in the interactive shell",
	Long: `Starts an interactive battle. You command the attacking squad, the AI
plays the defender. Usage:
	> attack to: 4
	> defend`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnvironment()
		if err != nil {
			return err
		}
		defer env.logger.Sync()

		opts := session.Options{Rules: env.cfg.Rules, Seed: env.cfg.Seed, Logger: env.logger}
		if name, _ := cmd.Flags().GetString("save"); name != "" {
			store, err := persistence.NewArchive(env.cfg.BattlesDir).Create(name)
			if err != nil {
				return err
			}
			opts.Journal = store
		}

		app, intro, err := session.New(cmd.Context(), env.loader, args[0], args[1], opts)
		if err != nil {
			return fmt.Errorf("failed to start battle: %w", err)
		}
		defer app.Close()
		env.logger.Info("repl started", zap.String("attacker", args[0]), zap.String("defender", args[1]))

		return RunTUI(cmd.Context(), app, fmt.Sprintf("%s vs %s", args[0], args[1]), intro)
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
	replCmd.Flags().String("save", "", "archive the battle journal under this name")
}

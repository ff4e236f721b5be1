/*
Copyright © 2026 Paulo Suderio
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/suderio/warband/internal/config"
	"github.com/suderio/warband/internal/data"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "warband",
	Short: "Turn-based squad battle engine",
	Long: `Warband resolves battles between two squads of up to six units laid out
in a front and a back line. Units act in initiative order and fight with
damage, drain, healing and lasting effects until one squad is defeated.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.warband.yaml)")
	rootCmd.PersistentFlags().StringSlice("data-dir", nil, "directories searched for units/ and squads/ before the built-in data")
	rootCmd.PersistentFlags().Uint64("seed", 0, "random seed, 0 picks one from the clock")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console or json)")

	_ = viper.BindPFlag("data_dirs", rootCmd.PersistentFlags().Lookup("data-dir"))
	_ = viper.BindPFlag("seed", rootCmd.PersistentFlags().Lookup("seed"))
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func initConfig() {
	config.SetDefaults(viper.GetViper())
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".warband")
	}

	viper.SetEnvPrefix("WARBAND")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// environment holds what every battle command needs.
type environment struct {
	cfg    *config.Config
	logger *zap.Logger
	loader *data.Loader
}

func loadEnvironment() (*environment, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return &environment{cfg: cfg, logger: logger, loader: data.NewLoader(cfg.DataDirs)}, nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pm-agent CLI. It pulls meeting
// notes from Granola, extracts PM tasks, development tickets and a summary
// with a language model, and writes them under the outputs directory.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pm-agent/internal/config"
	"github.com/pdiddy/pm-agent/internal/secrets"
	"github.com/pdiddy/pm-agent/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

const (
	secretsDir = ".secrets/"
	dotEnvFile = ".env"
)

// Set in PersistentPreRunE.
var (
	logger        *slog.Logger
	loadedSecrets secrets.Secrets
)

// rootCmd is the base command for the pm-agent CLI.
var rootCmd = &cobra.Command{
	Use:   "pm-agent",
	Short: "Turn Granola meeting notes into PM tasks, dev tickets and summaries",
	Long: `pm-agent reads meeting notes from Granola, merges the transcript, Granola's
enhanced notes and your manual notes into one Markdown document, and asks a
language model (Anthropic or OpenAI) for PM action items, development tickets
and a meeting summary. Results are written to the outputs directory and
processed meetings are tracked so they are not processed twice.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		debug, _ := cmd.Flags().GetBool("debug")
		logger = newLogger(debug)

		if err := config.LoadDotEnv(dotEnvFile); err != nil {
			return err
		}
		s, err := secrets.Load(secretsDir, logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if keys := s.Keys(); len(keys) > 0 {
			logger.Debug("loaded secrets", "keys", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pm-agent.yaml or ~/.config/pm-agent/pm-agent.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pm-agent")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pm-agent"))
		}
	}

	config.SetDefaults(viper.GetViper())
	if err := config.BindEnv(viper.GetViper()); err != nil {
		fmt.Fprintln(os.Stderr, "Binding environment:", err)
	}

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig assembles the run configuration from viper and the secrets
// loaded at startup.
func loadConfig() (types.Config, error) {
	return config.Load(viper.GetViper(), loadedSecrets)
}

// newLogger writes text to a terminal and JSON otherwise.
func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	fd := os.Stderr.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/aretw0/colloquy"
	"github.com/aretw0/colloquy/internal/cli"
	"github.com/aretw0/colloquy/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var contextsCmd = &cobra.Command{
	Use:   "contexts <session-id> <names>",
	Short: "Append NLU contexts to a session",
	Long: `Adds a comma separated list of contexts to an existing session.
A context already present gets its TTL refreshed. A TTL of 0 never expires.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, nil)
		if err != nil {
			return err
		}
		logger := newLogger(cfg)

		r, closeStore, err := cli.NewRunner(cmd.Context(), cfg, logger, debugHooks(cmd, logger), nil)
		if err != nil {
			return err
		}
		defer closeStore()

		ttl, _ := cmd.Flags().GetString("ttl")
		state, err := r.AppendContexts(cmd.Context(), args[0], args[1], colloquy.ResolveTTL(ttl))
		if err != nil {
			return err
		}
		if _, err := r.Manager.Flush(cmd.Context()); err != nil {
			logger.Warn("flush failed", "err", err)
		}
		return tui.NewPrinter(os.Stdout).Print(tui.ContextsMarkdown(state.Contexts))
	},
}

func init() {
	rootCmd.AddCommand(contextsCmd)
	contextsCmd.Flags().String("ttl", "1000", "Turns the contexts stay active")
}

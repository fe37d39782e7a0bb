package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/colloquy"
	"github.com/aretw0/colloquy/internal/cli"
	"github.com/aretw0/colloquy/internal/presentation/tui"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/nlu"
	"github.com/spf13/cobra"
)

type turnJSON struct {
	TurnID       string              `json:"turn_id"`
	Decision     string              `json:"decision"`
	Position     domain.Position     `json:"position"`
	Diff         *domain.SessionDiff `json:"diff,omitempty"`
	ForcePersist bool                `json:"force_persist"`
}

var turnCmd = &cobra.Command{
	Use:   "turn",
	Short: "Apply classifier output to a session",
	Long: `Applies one classified message to a session and prints the decision, the new
position and the session changes.

With --nlu the payload is read from a JSON file. Without it, stdin is read as a stream
of JSON lines and one JSON event is written per line.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, nil)
		if err != nil {
			return err
		}
		logger := newLogger(cfg)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		r, closeStore, err := cli.NewRunner(ctx, cfg, logger, debugHooks(cmd, logger), refTable(cmd))
		if err != nil {
			return err
		}
		defer closeStore()

		sessionID, _ := cmd.Flags().GetString("session")
		payload, _ := cmd.Flags().GetString("nlu")
		if payload == "" {
			return r.Stream(ctx, sessionID, os.Stdin, os.Stdout)
		}

		data, err := os.ReadFile(payload)
		if err != nil {
			return fmt.Errorf("read classifier output: %w", err)
		}
		u, err := nlu.DecodeJSON(data)
		if err != nil {
			return err
		}

		var opts []colloquy.TurnOption
		if topic, _ := cmd.Flags().GetString("topic"); topic != "" {
			opts = append(opts, colloquy.WithTopic(topic))
		}

		out, err := r.HandleTurn(ctx, sessionID, u, opts...)
		if err != nil {
			return err
		}
		if _, err := r.Manager.Flush(ctx); err != nil {
			logger.Warn("flush failed", "err", err)
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(turnJSON{
				TurnID:       out.TurnID,
				Decision:     out.Decision.Describe(),
				Position:     out.Session.Position,
				Diff:         out.Diff,
				ForcePersist: out.ForcePersist,
			})
		}
		return tui.NewPrinter(os.Stdout).Print(tui.TurnMarkdown(out.TurnResult, out.Diff))
	},
}

func init() {
	rootCmd.AddCommand(turnCmd)
	turnCmd.Flags().StringP("session", "s", "cli", "Session ID")
	turnCmd.Flags().String("nlu", "", "Path to a JSON file with the classifier output")
	turnCmd.Flags().String("topic", "", "Topic the message belongs to")
	turnCmd.Flags().Bool("json", false, "Print the turn result as JSON")
}

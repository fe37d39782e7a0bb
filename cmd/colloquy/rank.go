package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/colloquy/internal/presentation/tui"
	"github.com/aretw0/colloquy/internal/runtime"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/spf13/cobra"
)

var rankCmd = &cobra.Command{
	Use:   "rank [file]",
	Short: "Score and order triggers",
	Long:  `Reads a JSON object of triggers keyed by ID (from a file or stdin) and prints them best first.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := io.Reader(os.Stdin)
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}

		var triggers map[string]domain.Trigger
		if err := json.NewDecoder(in).Decode(&triggers); err != nil {
			return fmt.Errorf("decode triggers: %w", err)
		}

		ranked := runtime.RankTriggers(runtime.TriggersInOrder(triggers))
		return tui.NewPrinter(os.Stdout).Print(tui.RankingMarkdown(ranked))
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)
}

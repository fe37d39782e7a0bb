package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aretw0/colloquy/internal/cli"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/spf13/cobra"
)

var navigateCmd = &cobra.Command{
	Use:   "navigate <destination>",
	Short: "Resolve a destination from a position",
	Long: `Resolves a destination the way a transition would, without touching any session.
The destination may be a node of the current flow, a flow, a sub flow, "##" to return
to the caller, or "#" followed by a node of the caller.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, nil)
		if err != nil {
			return err
		}
		engine, err := cli.NewEngine(cfg, newLogger(cfg), domain.LifecycleHooks{}, nil)
		if err != nil {
			return err
		}

		pos := domain.Position{}
		pos.FlowName, _ = cmd.Flags().GetString("flow")
		pos.NodeName, _ = cmd.Flags().GetString("node")
		pos.PreviousFlowName, _ = cmd.Flags().GetString("prev-flow")
		pos.PreviousNodeName, _ = cmd.Flags().GetString("prev-node")

		target, err := engine.Navigate(cmd.Context(), pos, args[0])
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(target)
		}
		fmt.Println(target.String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(navigateCmd)
	navigateCmd.Flags().String("flow", "", "Current flow")
	navigateCmd.Flags().String("node", "", "Current node")
	navigateCmd.Flags().String("prev-flow", "", "Caller flow")
	navigateCmd.Flags().String("prev-node", "", "Caller node")
	navigateCmd.Flags().Bool("json", false, "Print the target as JSON")
	_ = navigateCmd.MarkFlagRequired("flow")
}

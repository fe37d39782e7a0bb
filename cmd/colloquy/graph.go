package main

import (
	"fmt"
	"os"

	"github.com/aretw0/colloquy/internal/cli"
	"github.com/aretw0/colloquy/internal/presentation/graph"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [dir]",
	Short: "Export the flow graph visualization",
	Long: `Loads every flow and outputs a Mermaid diagram (graph TD) with one subgraph per flow.
With --session, the nodes the session visited and its current node are highlighted.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd, args)
		if err != nil {
			fmt.Printf("Invalid configuration: %v\n", err)
			os.Exit(1)
		}
		logger := newLogger(cfg)

		engine, err := cli.NewEngine(cfg, logger, domain.LifecycleHooks{}, nil)
		if err != nil {
			fmt.Printf("Error initializing colloquy: %v\n", err)
			os.Exit(1)
		}

		flows, err := engine.Flows(cmd.Context())
		if err != nil {
			fmt.Printf("Error loading flows: %v\n", err)
			os.Exit(1)
		}

		var overlay *graph.GraphOverlay
		if sessionID, _ := cmd.Flags().GetString("session"); sessionID != "" {
			manager, closeStore, err := cli.NewManager(cmd.Context(), cfg, logger)
			if err != nil {
				fmt.Printf("Error opening sessions: %v\n", err)
				os.Exit(1)
			}
			state, err := manager.Load(cmd.Context(), sessionID)
			_ = closeStore()
			if err != nil {
				fmt.Printf("Error loading session '%s': %v\n", sessionID, err)
				os.Exit(1)
			}
			overlay = &graph.GraphOverlay{Visited: state.History, Current: state.Position.Current()}
		}

		fmt.Print(graph.GenerateMermaid(flows, overlay))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("session", "", "Highlight the path of this session")
}

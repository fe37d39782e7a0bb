package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aretw0/colloquy/internal/cli"
	"github.com/aretw0/colloquy/pkg/session"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage stored sessions",
	Long:  `List, inspect, and remove sessions kept by the configured session store.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withManager(cmd, func(m *session.Manager) error {
			ids, err := m.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list sessions: %w", err)
			}
			if len(ids) == 0 {
				fmt.Println("No sessions found.")
				return nil
			}
			fmt.Println("Sessions:")
			for _, id := range ids {
				fmt.Println("- " + id)
			}
			return nil
		})
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Print the state of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withManager(cmd, func(m *session.Manager) error {
			state, err := m.Load(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("load session '%s': %w", args[0], err)
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(state)
		})
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <session-id>",
	Short: "Delete a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withManager(cmd, func(m *session.Manager) error {
			if err := m.Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("delete session '%s': %w", args[0], err)
			}
			fmt.Printf("Session '%s' deleted.\n", args[0])
			return nil
		})
	},
}

func withManager(cmd *cobra.Command, fn func(*session.Manager) error) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}
	manager, closeStore, err := cli.NewManager(cmd.Context(), cfg, newLogger(cfg))
	if err != nil {
		return err
	}
	defer closeStore()
	return fn(manager)
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd, sessionInspectCmd, sessionRmCmd)
}

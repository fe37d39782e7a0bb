package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/colloquy/internal/cli"
	"github.com/aretw0/colloquy/internal/config"
	"github.com/aretw0/colloquy/internal/logging"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/spf13/cobra"
)

var v = config.New()

var rootCmd = &cobra.Command{
	Use:   "colloquy",
	Short: "Colloquy is a dialog navigation and turn-state engine",
	Long: `Colloquy decides where a conversation goes next. It reads flow documents,
applies classifier output to stored sessions and resolves the next node.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to a colloquy config file (yaml, json or toml)")
	flags.String("dir", ".", "Directory containing the flow documents")
	flags.String("bundle", "", "YAML file holding every flow (replaces --dir)")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.Bool("ndu", false, "Start sessions in NDU mode")
	flags.String("default-flow", "", "Flow new sessions start in")
	flags.String("store", config.BackendMemory, "Session store: memory, file, redis, sqlite or postgres")
	flags.String("store-path", "", "File or sqlite path for the session store")
	flags.String("redis-addr", "", "Redis address for the redis store")
	flags.String("database-url", "", "Postgres connection string")
	flags.String("durable", "", "Optional durable tier: file, sqlite or postgres")
	flags.String("durable-path", "", "File or sqlite path for the durable tier")
	flags.StringSlice("ref", nil, "Condition names that evaluate to true (repeatable)")

	for key, flag := range map[string]string{
		"flows_dir":          "dir",
		"flow_bundle":        "bundle",
		"log_level":          "log-level",
		"ndu_enabled":        "ndu",
		"default_flow":       "default-flow",
		"store.backend":      "store",
		"store.path":         "store-path",
		"store.redis_addr":   "redis-addr",
		"store.database_url": "database-url",
		"store.durable":      "durable",
		"store.durable_path": "durable-path",
	} {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}
}

// loadConfig merges the config file, environment and flags.
// A positional directory argument wins over --dir.
func loadConfig(cmd *cobra.Command, args []string) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(v, path)
	if err != nil {
		return config.Config{}, err
	}
	if len(args) > 0 && !cmd.Flags().Changed("dir") {
		cfg.FlowsDir = args[0]
	}
	return cfg, nil
}

func newLogger(cfg config.Config) *slog.Logger {
	return logging.New(logging.ParseLevel(cfg.LogLevel))
}

// debugHooks returns logging hooks when the logger is at debug level.
func debugHooks(cmd *cobra.Command, logger *slog.Logger) domain.LifecycleHooks {
	if !logger.Enabled(cmd.Context(), slog.LevelDebug) {
		return domain.LifecycleHooks{}
	}
	return cli.DebugHooks(logger)
}

// refTable turns --ref names into a condition table.
func refTable(cmd *cobra.Command) map[string]bool {
	names, _ := cmd.Flags().GetStringSlice("ref")
	if len(names) == 0 {
		return nil
	}
	table := make(map[string]bool, len(names))
	for _, n := range names {
		table[n] = true
	}
	return table
}

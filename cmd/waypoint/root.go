package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/waypoint/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "waypoint",
	Short: "Waypoint is an embeddable finite-state-machine engine",
	Long: `Waypoint loads state machines from XML or YAML definitions, Markdown vaults
or Redis, and drives them one message at a time.`,
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
	// Persistent flags (available to all commands). Defaults come from the environment.
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error or off (env WAYPOINT_LOG_LEVEL)")
	rootCmd.PersistentFlags().Bool("from-redis", false, "Read the definition from Redis instead of a path")
	rootCmd.PersistentFlags().String("redis-addr", "", "Redis address (env WAYPOINT_REDIS_ADDR)")
	rootCmd.PersistentFlags().Int("redis-db", 0, "Redis database (env WAYPOINT_REDIS_DB)")
	rootCmd.PersistentFlags().String("redis-key", "", "Redis key holding the definition (env WAYPOINT_REDIS_KEY)")
}

// loadSettings reads the environment and applies the flags the user set.
func loadSettings(cmd *cobra.Command) (cli.Settings, error) {
	s, err := cli.LoadSettings()
	if err != nil {
		return s, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		s.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("redis-addr") {
		s.RedisAddr, _ = flags.GetString("redis-addr")
	}
	if flags.Changed("redis-db") {
		s.RedisDB, _ = flags.GetInt("redis-db")
	}
	if flags.Changed("redis-key") {
		s.RedisKey, _ = flags.GetString("redis-key")
	}
	return s, nil
}

// setup resolves settings, the logger and the definition source of a command.
func setup(cmd *cobra.Command, args []string) (cli.Source, *slog.Logger, error) {
	settings, err := loadSettings(cmd)
	if err != nil {
		return cli.Source{}, nil, err
	}
	logger, err := cli.CreateLogger(settings.LogLevel)
	if err != nil {
		return cli.Source{}, nil, err
	}

	fromRedis, _ := cmd.Flags().GetBool("from-redis")
	src := cli.Source{FromRedis: fromRedis, Settings: settings}
	if len(args) > 0 {
		src.Path = args[0]
	}
	return src, logger, nil
}

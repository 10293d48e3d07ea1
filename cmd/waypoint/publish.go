package main

import (
	"fmt"

	"github.com/aretw0/waypoint/internal/cli"
	"github.com/spf13/cobra"
)

var publishCmd = &cobra.Command{
	Use:   "publish <path>",
	Short: "Store a definition in Redis",
	Long: `Validates the definition and stores it under the Redis key, bumping its revision
and notifying engines that watch the key.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		logger, err := cli.CreateLogger(settings.LogLevel)
		if err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		rev, err := cli.Publish(cmd.Context(), cli.PublishOptions{
			Path:     args[0],
			Format:   format,
			Settings: settings,
			Logger:   logger,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Published %s as revision %d of '%s'.\n", args[0], rev, settings.RedisKey)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(publishCmd)
	publishCmd.Flags().String("format", "", "Definition format (xml or yaml); detected from the extension by default")
}

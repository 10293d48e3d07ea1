package main

import (
	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/internal/cli"
	"github.com/aretw0/waypoint/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [path]",
	Short: "Describe the machine as a document",
	Long: `Prints every state with its transition table. States read from a Markdown vault
include the body of their document.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, logger, err := setup(cmd, args)
		if err != nil {
			return err
		}
		loader, closer, err := cli.OpenLoader(src, logger)
		defer func() { _ = closer() }()
		if err != nil {
			return err
		}

		name := src.Settings.RedisKey
		if !src.FromRedis {
			name = waypoint.NameFromPath(src.Path)
		}

		var render func(string) (string, error)
		if raw, _ := cmd.Flags().GetBool("raw"); !raw {
			render = tui.NewRenderer()
		}
		return cli.Inspect(cmd.Context(), loader, name, cmd.OutOrStdout(), render)
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().Bool("raw", false, "Print markdown without terminal styling")
}

package main

import (
	"github.com/aretw0/waypoint/internal/cli"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [path]",
	Short: "Export the machine as a Mermaid diagram",
	Long: `Outputs a Mermaid flowchart (graph TD) of the states and transitions.
With --walk, the listed messages are dispatched first and the states visited are highlighted.`,
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

		walk, _ := cmd.Flags().GetStringSlice("walk")
		return cli.Graph(cmd.Context(), loader, cmd.OutOrStdout(), walk)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringSlice("walk", nil, "Messages to dispatch before drawing, comma separated")
}

package main

import (
	"fmt"

	"github.com/aretw0/waypoint/internal/cli"
	"github.com/spf13/cobra"
)

var statesCmd = &cobra.Command{
	Use:   "states [path]",
	Short: "List the states and their transitions",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, logger, err := setup(cmd, args)
		if err != nil {
			return err
		}
		engine, closer, err := cli.CreateEngine(cmd.Context(), cli.EngineOptions{Source: src, Logger: logger})
		defer func() { _ = closer() }()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, id := range engine.States() {
			marker := " "
			if id == engine.Current() {
				marker = "*"
			}
			fmt.Fprintf(out, "%s %s\n", marker, id)

			infos, err := engine.Transitions(id)
			if err != nil {
				return err
			}
			for _, info := range infos {
				label := string(info.Message)
				if info.Action != "" {
					label += " / " + info.Action
				}
				fmt.Fprintf(out, "    %s -> %s\n", label, info.Next)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statesCmd)
}

package main

import (
	"github.com/aretw0/waypoint/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [path] [message...]",
	Short: "Drive a machine with messages",
	Long: `Builds an engine from the definition and dispatches the given messages in order.
Without messages, one message per line is read from stdin until EOF or "quit".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		src, logger, err := setup(cmd, args)
		if err != nil {
			return err
		}

		var messages []string
		switch {
		case src.FromRedis:
			messages = args
		case len(args) > 1:
			messages = args[1:]
		}

		allow, _ := cmd.Flags().GetBool("default-allow")
		jsonMode, _ := cmd.Flags().GetBool("json")
		quiet, _ := cmd.Flags().GetBool("quiet")
		trace, _ := cmd.Flags().GetBool("trace")

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		err = cli.Run(sigCtx, cli.RunOptions{
			Engine: cli.EngineOptions{
				Source:       src,
				Logger:       logger,
				DefaultAllow: allow,
				Trace:        trace,
			},
			Messages: messages,
			JSON:     jsonMode,
			Quiet:    quiet,
			In:       cmd.InOrStdin(),
			Out:      cmd.OutOrStdout(),
		})
		return cli.HandleExecutionError(err)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("default-allow", false, "Accept every transition that has no bound action")
	runCmd.Flags().Bool("json", false, "Print one JSON object per dispatch (NDJSON)")
	runCmd.Flags().BoolP("quiet", "q", false, "Do not print start and finish messages")
	runCmd.Flags().Bool("trace", false, "Log every dispatch and state change")
}

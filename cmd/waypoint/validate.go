package main

import (
	"errors"

	"github.com/aretw0/waypoint/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Check a definition for consistency",
	Long: `Loads the definition, checks that every transition leads to a declared state and
reports states that cannot be reached or cannot reach a terminal state.`,
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

		if watch, _ := cmd.Flags().GetBool("watch"); watch {
			sigCtx := cli.NewSignalContext(cmd.Context())
			defer sigCtx.Cancel()
			return cli.HandleExecutionError(cli.WatchValidate(sigCtx, loader, cmd.OutOrStdout(), logger))
		}

		if report := cli.Validate(cmd.Context(), loader, cmd.OutOrStdout()); !report.OK() {
			return errValidation
		}
		return nil
	},
}

var errValidation = errors.New("validation failed")

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolP("watch", "w", false, "Validate again whenever the definition changes")
}

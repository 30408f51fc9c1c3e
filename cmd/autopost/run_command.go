package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"autopost/internal/api"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Trigger a publishing run now",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp api.TriggerResponse
			if err := ctx.postJSON("/api/run", &resp); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Run started; watch progress with `autopost status`")
			return nil
		},
	}
}

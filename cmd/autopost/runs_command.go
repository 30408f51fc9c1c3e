package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"autopost/internal/api"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent publishing runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp api.RunsResponse
			path := fmt.Sprintf("/api/runs?limit=%d", limit)
			if err := ctx.getJSON(path, &resp); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(resp.Runs) == 0 {
				fmt.Fprintln(out, "No runs recorded yet")
				return nil
			}

			rows := make([][]string, 0, len(resp.Runs))
			for _, run := range resp.Runs {
				rows = append(rows, []string{
					shortRunID(run.ID),
					run.Trigger,
					run.StartedAt.UTC().Format(time.RFC3339),
					formatDuration(run.StartedAt, run.FinishedAt),
					formatCode(run.StatusCode),
					run.Summary,
				})
			}
			headers := []string{"Run", "Trigger", "Started", "Elapsed", "Code", "Summary"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft}
			fmt.Fprintln(out, renderTable(headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list")
	return cmd
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatDuration(started time.Time, finished *time.Time) string {
	if finished == nil {
		return "-"
	}
	return finished.Sub(started).Round(time.Second).String()
}

func formatCode(code *int) string {
	if code == nil {
		return "-"
	}
	return strconv.Itoa(*code)
}

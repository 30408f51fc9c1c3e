package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"autopost/internal/api"
	"autopost/internal/orchestrator"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

const statusLabelWidth = 18

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the publishing task status",
		RunE: func(cmd *cobra.Command, args []string) error {
			var status api.StatusResponse
			if err := ctx.getJSON("/api/status", &status); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(status)
			}

			renderStatus(out, status, shouldColorize(out))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit machine-readable JSON")
	return cmd
}

func renderStatus(out io.Writer, status api.StatusResponse, colorize bool) {
	running := "idle"
	if status.Running {
		running = "running"
	}
	fmt.Fprintln(out, statusLine("Task", running, colorFor(status.Running, colorize)))
	fmt.Fprintln(out, statusLine("Last run", formatTime(status.LastRun), ""))
	fmt.Fprintln(out, statusLine("Next scheduled", formatTime(status.NextScheduledRun), ""))

	if status.Result == nil {
		fmt.Fprintln(out, statusLine("Last result", "none", ""))
		return
	}
	color := ""
	if colorize {
		switch status.Result.StatusCode {
		case orchestrator.CodeSuccess:
			color = ansiGreen
		case orchestrator.CodePartial:
			color = ansiYellow
		default:
			color = ansiRed
		}
	}
	summary := fmt.Sprintf("%d %s", status.Result.StatusCode, status.Result.Body)
	fmt.Fprintln(out, statusLine("Last result", summary, color))
}

func statusLine(label, value, color string) string {
	base := fmt.Sprintf("  %-*s %s", statusLabelWidth, label+":", value)
	if color != "" {
		return color + base + ansiReset
	}
	return base
}

func colorFor(running bool, colorize bool) string {
	if !colorize {
		return ""
	}
	if running {
		return ansiYellow
	}
	return ansiGreen
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.UTC().Format(time.RFC3339)
}

func shouldColorize(out io.Writer) bool {
	file, ok := out.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

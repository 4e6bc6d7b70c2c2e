package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewStatusCmd создаёт команду просмотра состояния.
func NewStatusCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show transform progress and test status",
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := clientFn().State()
			if err != nil {
				return err
			}
			printState(outputFn(), state)
			return nil
		},
	}
}

func printState(out *Output, state *State) {
	out.Text(formatState(state), state)
}

// formatState — текстовое представление снимка состояния.
func formatState(state *State) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Updating: %t (%d/%d)\n", state.IsUpdating, state.Progress, state.Total)
	fmt.Fprintf(&b, "Testing:  %t\n", state.IsTesting)
	fmt.Fprintf(&b, "Deploy:   %t\n", state.IsDeploying)
	if state.TestResult != nil {
		fmt.Fprintf(&b, "Result:   %s\n", *state.TestResult)
	}
	for _, line := range state.TestProgress {
		fmt.Fprintf(&b, "  %s\n", line)
	}
	return b.String()
}

// NewLogsCmd создаёт команду просмотра логов деплоя.
func NewLogsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "logs [FILE]",
		Short: "List files with deploy logs or print the log of one file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if len(args) == 0 {
				names, err := client.ListLogs()
				if err != nil {
					return err
				}
				rows := make([][]string, len(names))
				for i, n := range names {
					rows[i] = []string{n}
				}
				out.Print([]string{"FILE"}, rows, names)
				return nil
			}

			log, err := client.GetLog(args[0])
			if err != nil {
				return err
			}
			out.Text(log.Log, log)
			return nil
		},
	}
}

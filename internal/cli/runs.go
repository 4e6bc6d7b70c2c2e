package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

const waitInterval = time.Second

// NewTransformCmd создаёт команду трансформации.
func NewTransformCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var prompt, mode string
	var wait bool

	cmd := &cobra.Command{
		Use:   "transform",
		Short: "Transform all files with a prompt",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if _, err := client.Transform(prompt, mode); err != nil {
				return err
			}
			out.Success("Transform started")

			if !wait {
				return nil
			}
			return waitAndReport(cmd.Context(), client, out, func(s *State) bool { return s.IsUpdating })
		},
	}

	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "Transformation prompt (required)")
	cmd.Flags().StringVar(&mode, "mode", "single", "Processing mode: single or multi")
	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "Wait until the run finishes")
	cmd.MarkFlagRequired("prompt")

	return cmd
}

// NewRethinkCmd создаёт команду rethink.
func NewRethinkCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var instruction string
	var wait bool

	cmd := &cobra.Command{
		Use:   "rethink",
		Short: "Reprocess the selected file with an instruction",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if _, err := client.Rethink(instruction); err != nil {
				return err
			}
			out.Success("Rethink started")

			if !wait {
				return nil
			}
			return waitAndReport(cmd.Context(), client, out, func(s *State) bool { return s.IsUpdating })
		},
	}

	cmd.Flags().StringVarP(&instruction, "instruction", "i", "", "Rethink instruction (required)")
	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "Wait until the run finishes")
	cmd.MarkFlagRequired("instruction")

	return cmd
}

// NewDeployCmd создаёт команду деплоя.
func NewDeployCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var wait bool

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Generate deployment artifacts and deploy every file",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if _, err := client.Deploy(); err != nil {
				return err
			}
			out.Success("Deploy started, follow it with 'codeshift logs'")

			if !wait {
				return nil
			}
			return waitAndReport(cmd.Context(), client, out, func(s *State) bool { return s.IsDeploying })
		},
	}

	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "Wait until the deploy finishes")
	return cmd
}

// NewTestCmd создаёт команду тестового прогона.
func NewTestCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var wait bool

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Generate unit tests and test deployment artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if _, err := client.Test(); err != nil {
				return err
			}
			out.Success("Test run started")

			if !wait {
				return nil
			}
			return waitAndReport(cmd.Context(), client, out, func(s *State) bool { return s.IsTesting })
		},
	}

	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "Wait until the test run finishes")
	return cmd
}

func waitAndReport(ctx context.Context, client *Client, out *Output, busy func(*State) bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	state, err := client.WaitIdle(ctx, waitInterval, busy)
	if err != nil {
		return err
	}
	printState(out, state)
	return nil
}

// NewRunsCmd создаёт команду просмотра истории запусков.
func NewRunsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var kind, status string
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List active and recent runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := clientFn().ListRuns(ListRunsOpts{Kind: kind, Status: status, Limit: limit})
			if err != nil {
				return err
			}

			headers := []string{"ID", "KIND", "MODE", "STATUS", "OK", "FAILED", "STARTED"}
			all := append(append([]Run(nil), runs.Active...), runs.History...)
			rows := make([][]string, len(all))
			for i, r := range all {
				rows[i] = []string{
					r.ID,
					r.Kind,
					r.Mode,
					r.Status,
					strconv.Itoa(r.Succeeded),
					fmt.Sprintf("%d/%d", r.Failed, r.Total),
					r.StartedAt,
				}
			}

			outputFn().Print(headers, rows, runs)
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "Filter by kind (transform, rethink, deploy, test)")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (RUNNING, SUCCEEDED, PARTIAL, FAILED)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results")

	return cmd
}

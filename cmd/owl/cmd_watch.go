package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/leofalp/owlgebra/providers/prover"
)

func newWatchCmd(a *app) *cobra.Command {
	var (
		interval   time.Duration
		maxRetries int
		quiet      bool
	)

	cmd := &cobra.Command{
		Use:   "watch <task-id>",
		Short: "Poll a task until it finishes or fails",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := prover.WatchOptions{Interval: a.config.PollInterval, MaxRetries: maxRetries}
			if cmd.Flags().Changed("interval") {
				opts.Interval = interval
			}
			return a.watchTask(cmd, args[0], opts, quiet)
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", time.Second, "time between polls (default from OWLGEBRA_POLL_INTERVAL)")
	cmd.Flags().IntVar(&maxRetries, "max-retries", 3, "consecutive transient errors tolerated")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print only the final state")
	return cmd
}

// watchTask follows a task, printing a line whenever its state or log
// volume changes, and renders the final details. A task that ends failed
// or unknown is reported as an error.
func (a *app) watchTask(cmd *cobra.Command, id string, opts prover.WatchOptions, quiet bool) error {
	out := cmd.OutOrStdout()

	lastStatus, lastMessages := "", -1
	details, err := a.client.Watch(cmd.Context(), id, opts, func(details prover.TaskDetails) {
		messages := countMessages(details)
		if quiet || (details.Status == lastStatus && messages == lastMessages) {
			return
		}
		lastStatus, lastMessages = details.Status, messages
		fmt.Fprintf(out, "%s %s %s\n",
			styles.Muted.Render(time.Now().Format("15:04:05")),
			statusStyle(details.Status).Render(fmt.Sprintf("%-9s", details.Status)),
			styles.Muted.Render(fmt.Sprintf("%d log line(s)", messages)),
		)
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(out, renderDetails(details))
	if details.Status != prover.StateFinished {
		return fmt.Errorf("task %s ended %s", id, details.Status)
	}
	return nil
}

func countMessages(details prover.TaskDetails) int {
	total := 0
	for _, group := range details.Logs {
		total += len(group.Messages)
	}
	return total
}

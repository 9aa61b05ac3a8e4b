package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTasksCmd(a *app) *cobra.Command {
	var (
		recent int
		filter string
	)

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List backend tasks by state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			board, err := a.client.Tasks(cmd.Context())
			if err != nil {
				return err
			}
			board = board.Filter(filter)
			if recent > 0 {
				board = board.Recent(recent)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderBoard(board))
			if first, ok := board.First(); ok {
				fmt.Fprintf(out, "\n%s owl status %s\n", styles.Muted.Render("next:"), first.ID)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&recent, "recent", "n", 3, "show only the last N tasks per state (0 for all)")
	cmd.Flags().StringVar(&filter, "filter", "", "case-insensitive substring filter")
	return cmd
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leofalp/owlgebra/internal/utils"
)

func newStatusCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "status <task-id>...",
		Short: "Show tasks with their logs grouped by step",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format, formatText, formatJSON); err != nil {
				return err
			}

			results, err := a.client.StatusMany(cmd.Context(), args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if format == formatJSON {
				_, err := fmt.Fprintln(out, utils.JSONToString(results, true))
				return err
			}
			for _, details := range results {
				fmt.Fprintln(out, renderDetails(details))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format: text or json")
	return cmd
}

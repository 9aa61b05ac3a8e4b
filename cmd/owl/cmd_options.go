package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newOptionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "Show the solver models and limits the backend accepts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			options, err := a.client.Options(cmd.Context())
			if err != nil {
				return err
			}

			current, err := a.config.Solver()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderOptions(options, current, current.ValidateAgainst(options)))
			return nil
		},
	}
}

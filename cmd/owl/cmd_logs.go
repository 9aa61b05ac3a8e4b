package main

import (
	"fmt"

	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"

	"github.com/leofalp/owlgebra/providers/prover"
)

func newLogsCmd(a *app) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "logs <task-id>",
		Short: "Stream the live log of a running task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			lastStep := ""
			return a.client.StreamLogs(cmd.Context(), args[0], func(entry prover.LogEntry) error {
				if entry.Step != "" && entry.Step != lastStep {
					lastStep = entry.Step
					if _, err := fmt.Fprintln(out, styles.Title.Render("── "+entry.Step)); err != nil {
						return err
					}
				}
				message := entry.Message
				if !raw {
					message = ansi.Strip(message)
				}
				_, err := fmt.Fprintln(out, message)
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "keep the ANSI color codes the backend embeds in messages")
	return cmd
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/techwithparamesh/agentflow/pkg/domain"
)

func newDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <old.json> <new.json>",
		Short: "Show what changed between two workflow files",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			before, err := readFlow(cmd, args[0])
			if err != nil {
				return err
			}
			after, err := readFlow(cmd, args[1])
			if err != nil {
				return err
			}
			diff := domain.Diff(before, after)
			if diff == nil {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "no changes")
				return err
			}
			return printJSON(cmd.OutOrStdout(), diff)
		},
	}
}

package main

import (
	"github.com/spf13/cobra"
)

func newPanelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "panel <flow.json> <node-id>",
		Short: "Show the configuration panel of a node",
		Long:  `Prints a node's derived status, its field errors and the fields currently visible given its config.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			flow, err := readFlow(cmd, args[0])
			if err != nil {
				return err
			}
			view, err := e.ws.Panel(flow, args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), view)
		},
	}
}

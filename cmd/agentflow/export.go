package main

import (
	"github.com/spf13/cobra"

	"github.com/techwithparamesh/agentflow/pkg/persistence/middleware"
)

func newExportCmd() *cobra.Command {
	var patterns []string
	cmd := &cobra.Command{
		Use:   "export <workflow.json|->",
		Short: "Print a workflow with credentials masked, for sharing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flow, err := readFlow(cmd, args[0])
			if err != nil {
				return err
			}
			r, err := middleware.NewRedactor(patterns...)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), r.Redact(flow))
		},
	}
	cmd.Flags().StringSliceVar(&patterns, "mask", nil, "Config key patterns to mask (default: credential keys)")
	return cmd
}

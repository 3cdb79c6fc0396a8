package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/techwithparamesh/agentflow/internal/presentation/tui"
	"github.com/techwithparamesh/agentflow/pkg/validation"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <flow.json>",
		Short: "Check a workflow for readiness",
		Long: `Validates a workflow file against the app catalog and reports its stage
(setup, configure or ready) together with every error and warning.
Use "-" to read the workflow from stdin.`,
		Args: cobra.ExactArgs(1),
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
			res := e.ws.Validate(flow)

			asJSON, _ := cmd.Flags().GetBool("json")
			if asJSON {
				err = printJSON(cmd.OutOrStdout(), res)
			} else {
				err = tui.PrintReport(cmd.OutOrStdout(), flow, res)
			}
			if err != nil {
				return err
			}

			strict, _ := cmd.Flags().GetBool("strict")
			switch {
			case !res.IsValid:
				return fmt.Errorf("workflow has %d errors", len(res.Errors))
			case strict && res.Stage != validation.StageReady:
				return fmt.Errorf("workflow is not ready (stage %s)", res.Stage)
			}
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "Print the result as JSON")
	cmd.Flags().Bool("strict", false, "Fail unless the workflow is ready to execute")
	return cmd
}

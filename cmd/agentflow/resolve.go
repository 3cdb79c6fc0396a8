package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/techwithparamesh/agentflow/pkg/expression"
)

func newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <template>",
		Short: "Resolve {{ }} expressions against a data context",
		Long: `Resolves every expression in the template. The data context is a JSON object
with optional trigger, nodes, env and input members, given inline with --data
or as a file with --context.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			raw, _ := cmd.Flags().GetString("data")
			if path, _ := cmd.Flags().GetString("context"); path != "" {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read context: %w", err)
				}
				raw = string(data)
			}
			var data expression.DataContext
			if raw != "" {
				if err := json.Unmarshal([]byte(raw), &data); err != nil {
					return fmt.Errorf("invalid data context: %w", err)
				}
			}

			res, err := e.ws.Resolve(args[0], &data)
			if err != nil {
				return err
			}
			for _, u := range res.Unresolved {
				e.logger.Warn("unresolved expression", "expression", u)
			}
			if expression.IsUnresolved(res.Value) {
				return fmt.Errorf("unresolved: %s", args[0])
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), expression.Stringify(res.Value))
			return err
		},
	}
	cmd.Flags().String("data", "", "Data context as inline JSON")
	cmd.Flags().String("context", "", "Data context JSON file")
	return cmd
}

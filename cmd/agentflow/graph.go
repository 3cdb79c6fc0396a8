package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/techwithparamesh/agentflow/internal/presentation/graph"
	"github.com/techwithparamesh/agentflow/pkg/domain"
	"github.com/techwithparamesh/agentflow/pkg/validation"
)

func newGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph <flow.json>",
		Short: "Export the workflow as a Mermaid diagram",
		Long:  `Outputs a Mermaid diagram (graph TD) of the workflow. With --status, nodes are coloured by their validation status.`,
		Args:  cobra.ExactArgs(1),
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

			var overlay *graph.Overlay
			if withStatus, _ := cmd.Flags().GetBool("status"); withStatus {
				overlay = &graph.Overlay{Status: make(map[string]domain.NodeStatus, len(flow.Nodes))}
				for _, n := range flow.Nodes {
					res, _ := validation.ValidateNode(n, e.ws.SchemaLookup())
					overlay.Status[n.ID] = res.Status
				}
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(flow, overlay))
			return err
		},
	}
	cmd.Flags().Bool("status", false, "Colour nodes by validation status")
	return cmd
}

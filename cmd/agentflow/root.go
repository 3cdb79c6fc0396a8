package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "agentflow",
		Short: "Agentflow validates and edits workflow automation graphs",
		Long: `Agentflow is the engine of a visual workflow editor. It validates workflows
against an app schema catalog, resolves {{ }} expressions and serves the
editing API over HTTP and MCP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags (available to all commands)
	root.PersistentFlags().String("config", "", "Config file (default agentflow.yaml)")
	root.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	root.PersistentFlags().String("catalog", "", "App catalog file (default: embedded catalog)")

	root.AddCommand(
		newValidateCmd(),
		newGraphCmd(),
		newResolveCmd(),
		newPanelCmd(),
		newDiffCmd(),
		newExportCmd(),
		newAppsCmd(),
		newServeCmd(),
		newMCPCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

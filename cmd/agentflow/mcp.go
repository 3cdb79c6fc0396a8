package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/techwithparamesh/agentflow/pkg/adapters/mcp"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the Model Context Protocol (MCP) server",
		Long: `Exposes workflow validation, node panels, expression resolution and app search
as MCP tools, so AI agents can inspect and fix workflows.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			transport, _ := cmd.Flags().GetString("transport")
			addr, _ := cmd.Flags().GetString("addr")
			srv := mcp.NewServer(e.ws, version, e.logger)

			switch transport {
			case "stdio":
				// Ensure logs don't corrupt JSON-RPC on Stdout
				log.SetOutput(os.Stderr)
				e.logger.Info("starting MCP server (stdio)")
				return srv.ServeStdio()
			case "sse":
				ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				baseURL, _ := cmd.Flags().GetString("base-url")
				if err := srv.ServeSSE(ctx, addr, baseURL); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				e.logger.Info("MCP server stopped")
				return nil
			default:
				return fmt.Errorf("unknown transport %q, supported: stdio, sse", transport)
			}
		},
	}
	cmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	cmd.Flags().String("addr", ":8081", "Address to listen on (only for SSE)")
	cmd.Flags().String("base-url", "http://localhost:8081", "Public base URL of the SSE endpoint")
	return cmd
}

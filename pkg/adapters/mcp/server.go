package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/techwithparamesh/agentflow/internal/logging"
	"github.com/techwithparamesh/agentflow/pkg/domain"
	"github.com/techwithparamesh/agentflow/pkg/editor"
	"github.com/techwithparamesh/agentflow/pkg/expression"
	"github.com/techwithparamesh/agentflow/pkg/schema"
	"github.com/techwithparamesh/agentflow/pkg/validation"
)

// AppsURI is the resource listing every app in the registry.
const AppsURI = "agentflow://apps"

// Workspace defines what the MCP server needs from the editing core.
type Workspace interface {
	Registry() schema.Registry
	Open(ctx context.Context, id string) (*editor.Manager, error)
	Validate(flow *domain.Flow) validation.WorkflowValidationResult
	Panel(flow *domain.Flow, nodeID string) (validation.NodeView, error)
	Resolve(template string, data *expression.DataContext) (expression.Result, error)
}

// Server exposes a Workspace as an MCP server.
type Server struct {
	ws        Workspace
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewServer creates a new MCP Server instance.
func NewServer(ws Workspace, version string, logger *slog.Logger) *Server {
	s := &Server{
		ws:        ws,
		mcpServer: server.NewMCPServer("agentflow-mcp", version),
		logger:    logging.OrNop(logger),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the MCP SSE transport on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	flowArgs := []mcp.ToolOption{
		mcp.WithString("flow", mcp.Description("The workflow as JSON (nodes and connections). Either flow or flow_id is required.")),
		mcp.WithString("flow_id", mcp.Description("Id of a stored workflow")),
	}

	s.mcpServer.AddTool(mcp.NewTool("validate_workflow", append([]mcp.ToolOption{
		mcp.WithDescription("Validate a workflow and report its stage (setup, configure, ready), errors and warnings."),
	}, flowArgs...)...), s.handleValidate)

	s.mcpServer.AddTool(mcp.NewTool("node_panel", append([]mcp.ToolOption{
		mcp.WithDescription("Show the configuration panel of one node: status, field errors and the fields currently visible."),
		mcp.WithString("node_id", mcp.Required(), mcp.Description("The node to inspect")),
	}, flowArgs...)...), s.handlePanel)

	s.mcpServer.AddTool(mcp.NewTool("resolve_expression",
		mcp.WithDescription("Resolve a template containing {{ }} expressions against a data context."),
		mcp.WithString("template", mcp.Required(), mcp.Description("Template text, e.g. \"Hello {{ $json.name }}\"")),
		mcp.WithString("context", mcp.Description("JSON object with trigger, nodes, env and input members")),
	), s.handleResolve)

	s.mcpServer.AddTool(mcp.NewTool("search_apps",
		mcp.WithDescription("Search the app catalog by id, name or category."),
		mcp.WithString("query", mcp.Description("Case-insensitive search text; empty lists every app")),
	), s.handleSearchApps)
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(AppsURI, "App Catalog",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(s.ws.Registry().SearchApps(""))
		if err != nil {
			return nil, fmt.Errorf("failed to encode catalog: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      AppsURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	flow, err := s.flowArg(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.ws.Validate(flow))
}

func (s *Server) handlePanel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	nodeID, err := request.RequireString("node_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	flow, err := s.flowArg(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	view, err := s.ws.Panel(flow, nodeID)
	if err != nil && !errors.Is(err, domain.ErrSchemaNotFound) {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(view)
}

type resolveResult struct {
	Value      any      `json:"value"`
	Resolved   bool     `json:"resolved"`
	Unresolved []string `json:"unresolved"`
}

func (s *Server) handleResolve(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	template, err := request.RequireString("template")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var data expression.DataContext
	if raw := request.GetString("context", ""); raw != "" {
		if err := json.Unmarshal([]byte(raw), &data); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid context: %v", err)), nil
		}
	}
	res, err := s.ws.Resolve(template, &data)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out := resolveResult{Value: res.Value, Resolved: res.Resolved(), Unresolved: res.Unresolved}
	if expression.IsUnresolved(out.Value) {
		out.Value = nil
	}
	if out.Unresolved == nil {
		out.Unresolved = []string{}
	}
	return jsonResult(out)
}

type appSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

func (s *Server) handleSearchApps(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	apps := s.ws.Registry().SearchApps(request.GetString("query", ""))
	out := make([]appSummary, len(apps))
	for i, a := range apps {
		out[i] = appSummary{ID: a.ID, Name: a.Name, Category: a.Category}
	}
	return jsonResult(out)
}

// flowArg reads the workflow either inline or from the workspace.
func (s *Server) flowArg(ctx context.Context, request mcp.CallToolRequest) (*domain.Flow, error) {
	if raw := request.GetString("flow", ""); raw != "" {
		return domain.DecodeFlow([]byte(raw))
	}
	if id := request.GetString("flow_id", ""); id != "" {
		m, err := s.ws.Open(ctx, id)
		if err != nil {
			return nil, err
		}
		return m.Flow(), nil
	}
	return nil, errors.New("either flow or flow_id is required")
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

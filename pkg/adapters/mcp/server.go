package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/colloquy"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/nlu"
	"github.com/aretw0/colloquy/pkg/runner"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NavigateResponse is the structured result of the navigate tool.
type NavigateResponse struct {
	Target domain.Target `json:"target" jsonschema_description:"The resolved flow and node"`
}

// TurnResponse is the structured result of the process_turn tool.
type TurnResponse struct {
	TurnID       string                 `json:"turn_id" jsonschema_description:"Time-sortable id of the turn"`
	Decision     string                 `json:"decision" jsonschema_description:"One-line description of the decision"`
	Position     domain.Position        `json:"position" jsonschema_description:"Session position after the turn"`
	Ranked       []domain.RankedTrigger `json:"ranked,omitempty" jsonschema_description:"Triggers ordered best first"`
	Diff         *domain.SessionDiff    `json:"diff,omitempty" jsonschema_description:"Changes made to the session"`
	ForcePersist bool                   `json:"force_persist" jsonschema_description:"Whether the turn wrote slots"`
}

// ContextsResponse is the structured result of the append_contexts tool.
type ContextsResponse struct {
	Contexts []domain.NLUContext `json:"contexts" jsonschema_description:"Active contexts after the append"`
}

// RankResponse is the structured result of the rank_triggers tool.
type RankResponse struct {
	Ranked []domain.RankedTrigger `json:"ranked" jsonschema_description:"Triggers ordered best first"`
}

// Server exposes a Runner as an MCP server.
type Server struct {
	runner    *runner.Runner
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewServer creates a new MCP Server instance.
func NewServer(r *runner.Runner) *Server {
	s := &Server{
		runner:    r,
		mcpServer: server.NewMCPServer("colloquy-mcp", strings.TrimSpace(colloquy.Version)),
		logger:    r.Logger,
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	baseURL := "http://localhost" + addr
	if !strings.HasPrefix(addr, ":") {
		baseURL = "http://" + addr
	}
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

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

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("navigate",
		mcp.WithDescription("Resolve a destination ('##', '#node', a node or a flow name) from a position."),
		mcp.WithString("destination", mcp.Required(), mcp.Description("Destination to resolve")),
		mcp.WithString("flow", mcp.Required(), mcp.Description("Current flow")),
		mcp.WithString("node", mcp.Required(), mcp.Description("Current node")),
		mcp.WithString("previous_flow", mcp.Description("Previous flow")),
		mcp.WithString("previous_node", mcp.Description("Previous node")),
		mcp.WithOutputSchema[NavigateResponse](),
	), mcp.NewStructuredToolHandler(s.handleNavigate))

	s.mcpServer.AddTool(mcp.NewTool("process_turn",
		mcp.WithDescription("Apply one classified message to a session, starting it when needed."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session to update")),
		mcp.WithString("understanding", mcp.Description("JSON classifier output: intent, slots, triggers, actions")),
		mcp.WithString("topic", mcp.Description("Topic to set before slots are merged")),
		mcp.WithOutputSchema[TurnResponse](),
	), mcp.NewStructuredToolHandler(s.handleTurn))

	s.mcpServer.AddTool(mcp.NewTool("append_contexts",
		mcp.WithDescription("Add comma-separated NLU contexts to an existing session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session to update")),
		mcp.WithString("names", mcp.Required(), mcp.Description("Comma-separated context names")),
		mcp.WithNumber("ttl", mcp.Description("Turns the contexts stay active; 0 never expires")),
		mcp.WithOutputSchema[ContextsResponse](),
	), mcp.NewStructuredToolHandler(s.handleAppendContexts))

	s.mcpServer.AddTool(mcp.NewTool("rank_triggers",
		mcp.WithDescription("Score triggers by the mean of their results and order them best first."),
		mcp.WithString("triggers", mcp.Required(), mcp.Description("JSON object of trigger id to {goal, result}")),
		mcp.WithOutputSchema[RankResponse](),
	), mcp.NewStructuredToolHandler(s.handleRankTriggers))

	s.mcpServer.AddTool(mcp.NewTool("list_flows",
		mcp.WithDescription("Get the flow definitions for introspection."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		flows, err := s.runner.Engine.Flows(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list flows failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(flows)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

func (s *Server) handleNavigate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (NavigateResponse, error) {
	pos := domain.Position{
		FlowName:         stringArg(args, "flow"),
		NodeName:         stringArg(args, "node"),
		PreviousFlowName: stringArg(args, "previous_flow"),
		PreviousNodeName: stringArg(args, "previous_node"),
	}
	target, err := s.runner.Engine.Navigate(ctx, pos, stringArg(args, "destination"))
	if err != nil {
		return NavigateResponse{}, err
	}
	return NavigateResponse{Target: target}, nil
}

func (s *Server) handleTurn(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (TurnResponse, error) {
	sessionID := stringArg(args, "session_id")
	if sessionID == "" {
		return TurnResponse{}, fmt.Errorf("session_id is required")
	}

	var u domain.Understanding
	if raw := stringArg(args, "understanding"); raw != "" {
		decoded, err := nlu.DecodeJSON([]byte(raw))
		if err != nil {
			return TurnResponse{}, err
		}
		u = decoded
	}

	var opts []colloquy.TurnOption
	if topic, ok := args["topic"].(string); ok {
		opts = append(opts, colloquy.WithTopic(topic))
	}

	out, err := s.runner.HandleTurn(ctx, sessionID, u, opts...)
	if err != nil {
		return TurnResponse{}, fmt.Errorf("turn failed: %w", err)
	}
	return TurnResponse{
		TurnID:       out.TurnID,
		Decision:     out.Decision.Describe(),
		Position:     out.Session.Position,
		Ranked:       out.Ranked,
		Diff:         out.Diff,
		ForcePersist: out.ForcePersist,
	}, nil
}

func (s *Server) handleAppendContexts(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ContextsResponse, error) {
	state, err := s.runner.AppendContexts(ctx, stringArg(args, "session_id"), stringArg(args, "names"), colloquy.ResolveTTL(args["ttl"]))
	if err != nil {
		return ContextsResponse{}, err
	}
	return ContextsResponse{Contexts: state.Contexts}, nil
}

func (s *Server) handleRankTriggers(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (RankResponse, error) {
	var triggers map[string]domain.Trigger
	if err := json.Unmarshal([]byte(stringArg(args, "triggers")), &triggers); err != nil {
		return RankResponse{}, fmt.Errorf("invalid triggers: %w", err)
	}
	return RankResponse{Ranked: s.runner.Engine.RankTriggers(triggers)}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("colloquy://flows", "Current Flow Definitions",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		flows, err := s.runner.Engine.Flows(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list flows: %w", err)
		}
		jsonBytes, _ := json.Marshal(flows)
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "colloquy://flows",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

func stringArg(args map[string]interface{}, key string) string {
	v, _ := args[key].(string)
	return v
}

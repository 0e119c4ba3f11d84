package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/tracery"
	"github.com/aretw0/tracery/internal/logging"
	"github.com/aretw0/tracery/pkg/domain"
	"github.com/aretw0/tracery/pkg/runner"
	"github.com/aretw0/tracery/pkg/session"
)

const (
	serverName = "tracery-mcp"

	// GrammarsURI lists every stored grammar.
	GrammarsURI = "tracery://grammars"
	// grammarURIPrefix addresses a single grammar: tracery://grammars/{name}.
	grammarURIPrefix = GrammarsURI + "/"

	defaultTemplate = "#origin#"
)

// FlattenInput is the flatten tool input.
type FlattenInput struct {
	Grammar  string `json:"grammar" jsonschema:"required" jsonschema_description:"Name of the stored grammar"`
	Template string `json:"template,omitempty" jsonschema_description:"Template to expand; defaults to #origin#"`
	Session  string `json:"session,omitempty" jsonschema_description:"Session ID; reuse it to keep the same random stream"`
	Count    int    `json:"count,omitempty" jsonschema_description:"Number of expansions (default 1, at most 1000)"`
}

// FlattenResult is the flatten tool output.
type FlattenResult struct {
	Session string   `json:"session" jsonschema_description:"Session that produced the results"`
	Results []string `json:"results" jsonschema_description:"Generated texts"`
}

// GrammarList is the list_grammars tool output.
type GrammarList struct {
	Grammars []string `json:"grammars" jsonschema_description:"Sorted grammar names"`
}

// Server exposes a session manager as an MCP server.
type Server struct {
	sessions     *session.Manager
	mcpServer    *server.MCPServer
	maxInputSize int
	logger       *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger used for rejected calls.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMaxInputSize bounds templates in bytes.
func WithMaxInputSize(n int) Option {
	return func(s *Server) {
		s.maxInputSize = n
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		sessions:     sessions,
		maxInputSize: runner.DefaultMaxInputSize,
		logger:       logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mcpServer = server.NewMCPServer(serverName, strings.TrimSpace(tracery.Version),
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
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
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("flatten",
		mcp.WithDescription("Generate text by expanding a template against a stored Tracery grammar."),
		mcp.WithInputSchema[FlattenInput](),
		mcp.WithOutputSchema[FlattenResult](),
	), s.flattenHandler())

	s.mcpServer.AddTool(mcp.NewTool("list_grammars",
		mcp.WithDescription("List the names of the stored grammars."),
		mcp.WithOutputSchema[GrammarList](),
	), s.listGrammarsHandler())
}

func (s *Server) flattenHandler() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var input FlattenInput
		if err := request.BindArguments(&input); err != nil {
			return mcp.NewToolResultErrorFromErr("invalid flatten arguments", err), nil
		}
		if input.Grammar == "" {
			return mcp.NewToolResultError("grammar is required"), nil
		}
		if input.Template == "" {
			input.Template = defaultTemplate
		}

		template, err := runner.SanitizeInputLimit(input.Template, s.maxInputSize)
		if err != nil {
			s.logger.Warn("MCP Flatten: Template rejected", "err", err, "size", len(input.Template))
			return mcp.NewToolResultErrorFromErr("template rejected", err), nil
		}

		resp, err := s.sessions.Flatten(ctx, session.Request{
			Session:  input.Session,
			Grammar:  input.Grammar,
			Template: template,
			Count:    input.Count,
		})
		if err != nil {
			if !errors.Is(err, domain.ErrRecursionLimit) && !errors.Is(err, domain.ErrGrammarNotFound) {
				s.logger.Error("MCP Flatten failed", "err", err)
			}
			return mcp.NewToolResultErrorFromErr("flatten failed", err), nil
		}

		return mcp.NewToolResultStructured(
			FlattenResult{Session: resp.Session, Results: resp.Results},
			strings.Join(resp.Results, "\n"),
		), nil
	}
}

func (s *Server) listGrammarsHandler() server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		names, err := s.sessions.Loader().List(ctx)
		if err != nil {
			return mcp.NewToolResultErrorFromErr("list failed", err), nil
		}
		if names == nil {
			names = []string{}
		}
		return mcp.NewToolResultStructured(GrammarList{Grammars: names}, strings.Join(names, "\n")), nil
	}
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(GrammarsURI, "Stored grammars",
		mcp.WithResourceDescription("Names of every stored grammar"),
		mcp.WithMIMEType("application/json"),
	), s.readGrammars)

	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(grammarURIPrefix+"{name}", "Grammar",
		mcp.WithTemplateDescription("Rules of a stored grammar"),
		mcp.WithTemplateMIMEType("application/json"),
	), s.readGrammar)
}

func (s *Server) readGrammars(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	names, err := s.sessions.Loader().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list grammars: %w", err)
	}
	if names == nil {
		names = []string{}
	}
	return jsonContents(GrammarsURI, names)
}

func (s *Server) readGrammar(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := request.Params.URI
	name := strings.TrimPrefix(uri, grammarURIPrefix)
	if name == "" || name == uri {
		return nil, fmt.Errorf("invalid grammar uri %q", uri)
	}

	g, err := s.sessions.Loader().Load(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load grammar: %w", err)
	}
	return jsonContents(uri, g)
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

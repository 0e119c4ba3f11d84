package cli

import (
	"context"
	"fmt"

	"github.com/aretw0/tracery/internal/config"
	"github.com/aretw0/tracery/pkg/adapters/mcp"
)

// MCP transports.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// MCPOptions selects the MCP transport.
type MCPOptions struct {
	Transport string
	// Addr and BaseURL apply to SSE only.
	Addr    string
	BaseURL string
}

// RunMCP serves the grammar tools over the Model Context Protocol.
func RunMCP(ctx context.Context, cfg *config.Config, opts MCPOptions) error {
	logger := createLogger(cfg)

	backend, err := OpenBackend(cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	manager, err := newManager(cfg, backend, nil)
	if err != nil {
		return err
	}
	srv := mcp.NewServer(manager,
		mcp.WithLogger(logger),
		mcp.WithMaxInputSize(cfg.MaxInputSize),
	)

	switch opts.Transport {
	case TransportStdio, "":
		// Logs go to Stderr so they don't corrupt JSON-RPC on Stdout.
		logger.Info("Starting Tracery MCP Server (Stdio)")
		return srv.ServeStdio()

	case TransportSSE:
		addr := opts.Addr
		if addr == "" {
			addr = cfg.Addr
		}
		baseURL := opts.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost" + addr
		}
		runCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			_ = manager.Run(runCtx, expireInterval)
		}()
		if err := srv.ServeSSE(ctx, addr, baseURL); err != nil {
			return err
		}
		logger.Info("MCP Server stopped gracefully")
		return nil

	default:
		return fmt.Errorf("unknown transport %q (supported: stdio, sse)", opts.Transport)
	}
}

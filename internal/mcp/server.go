// Package mcp serves the insight log to MCP clients over stdio.
package mcp

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/project-portfolio/internal/insight"
)

// Server exposes list, rank and search tools over an insight store.
type Server struct {
	store *insight.Store
	mcp   *server.MCPServer
}

// NewServer creates a server reading from store.
func NewServer(store *insight.Store, version string) (*Server, error) {
	if store == nil {
		return nil, fmt.Errorf("insight store is required")
	}

	s := server.NewMCPServer(
		"portfolio-mcp",
		version,
		server.WithToolCapabilities(true),
	)
	AddListInsightsTool(s, store)
	AddRankInsightsTool(s, store)
	AddSearchInsightsTool(s, store)

	return &Server{store: store, mcp: s}, nil
}

// MCP returns the underlying mcp-go server.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// Serve runs the stdio transport until the client disconnects, a signal
// arrives or ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Serving insights from %s on stdio...", s.store.Path())
		errCh <- server.ServeStdio(s.mcp)
	}()

	select {
	case <-sigCh:
		log.Printf("Received shutdown signal, stopping gracefully...")
		return nil
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("MCP server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

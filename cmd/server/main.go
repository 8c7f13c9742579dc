// Package main provides the entry point for the multikube server application
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/multikube/multikube/pkg/config"
	"github.com/multikube/multikube/pkg/kubeconfig"
	"github.com/multikube/multikube/pkg/mcp"
	"github.com/multikube/multikube/pkg/otel"
)

const (
	// Transport types
	transportStdio          = "stdio"
	transportSSE            = "sse"
	transportStreamableHTTP = "streamable-http"
)

func main() {
	settings, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Parse command line flags; environment values provide the defaults
	kubeconfigDir := flag.String("kubeconfig-dir", settings.KubeconfigDir,
		"Directory to scan for kubeconfig files. Can also be set via KUBECONFIG_DIR environment variable")
	addr := flag.String("addr", settings.Address(), "Address to listen on for network transports")
	enableRateLimiting := flag.Bool("enable-rate-limiting", settings.EnableRateLimiting,
		"Whether to enable rate limiting for tool calls. When false, no rate limiting will be applied")
	transport := flag.String("transport", settings.Transport,
		"Transport protocol to use: 'stdio', 'sse' or 'streamable-http'. Can also be set via MCP_TRANSPORT environment variable")

	flag.Parse()

	logger, err := newLogger(*transport)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("Received shutdown signal")
		cancel()
	}()

	// Set up tracing when enabled
	otelConfig := otel.DefaultConfig()
	if otelConfig.Enabled {
		provider, err := otel.NewProvider(ctx, otelConfig)
		if err != nil {
			logger.Fatal("Failed to create OpenTelemetry provider", zap.Error(err))
		}
		defer func() {
			if err := provider.Shutdown(context.Background()); err != nil {
				logger.Warn("Error shutting down OpenTelemetry provider", zap.Error(err))
			}
		}()
	}

	// Create the context registry and do an initial scan
	registry := kubeconfig.NewRegistry(*kubeconfigDir, logger)
	if contexts, err := registry.Refresh(); err != nil {
		logger.Warn("Initial kubeconfig scan failed", zap.String("dir", *kubeconfigDir), zap.Error(err))
	} else {
		logger.Info("Discovered contexts",
			zap.String("dir", *kubeconfigDir),
			zap.Int("count", len(contexts)))
	}

	mcpConfig := &mcp.Config{
		EnableRateLimiting: *enableRateLimiting,
		EnableTracing:      otelConfig.Enabled,
	}
	mcpServer := mcp.CreateServer(registry, mcpConfig, logger)

	// Stdio runs in the foreground until the client disconnects
	if strings.ToLower(*transport) == transportStdio {
		logger.Info("Using stdio transport")
		stdioServer := mcp.CreateStdioServer(mcpServer)
		if err := stdioServer.Listen(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
			logger.Error("Server error", zap.Error(err))
		}
		mcp.StopServer()
		return
	}

	// Create and start the appropriate transport server
	var transportServer interface {
		Start(string) error
		Shutdown(context.Context) error
	}

	switch strings.ToLower(*transport) {
	case transportStreamableHTTP:
		logger.Info("Using streamable-http transport")
		transportServer = mcp.CreateStreamableHTTPServer(mcpServer)
	case transportSSE:
		logger.Info("Using SSE transport")
		transportServer = mcp.CreateSSEServer(mcpServer)
	default:
		logger.Fatal("Invalid transport, must be 'stdio', 'sse' or 'streamable-http'",
			zap.String("transport", *transport))
	}

	// Channel to receive server errors
	serverErrCh := make(chan error, 1)

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting MCP server",
			zap.String("addr", *addr),
			zap.String("transport", *transport))
		if err := transportServer.Start(*addr); err != nil {
			serverErrCh <- err
		}
	}()

	// Wait for either a server error or a shutdown signal
	select {
	case err := <-serverErrCh:
		logger.Fatal("Server failed to start", zap.Error(err))
	case <-ctx.Done():
		logger.Info("Shutting down server...")
	}

	// Create a context with timeout for shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	// Attempt to shut down the server gracefully
	shutdownCh := make(chan error, 1)
	go func() {
		err := transportServer.Shutdown(shutdownCtx)
		if err != nil {
			logger.Warn("Error during shutdown", zap.Error(err))
		}

		// Stop the MCP server resources (including rate limiter)
		mcp.StopServer()

		shutdownCh <- err
		close(shutdownCh)
	}()

	// Wait for shutdown to complete or timeout
	select {
	case err, ok := <-shutdownCh:
		if ok && err != nil {
			logger.Warn("Server shutdown error", zap.Error(err))
		} else {
			logger.Info("Server shutdown completed gracefully")
		}
	case <-shutdownCtx.Done():
		logger.Error("Server shutdown timed out, forcing exit")
		os.Exit(1)
	}

	logger.Info("Server shutdown complete, exiting...")
}

// newLogger builds the process logger. With the stdio transport all logging
// must go to stderr since stdout carries the MCP protocol.
func newLogger(transport string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if strings.ToLower(transport) == transportStdio {
		cfg.OutputPaths = []string{"stderr"}
		cfg.ErrorOutputPaths = []string{"stderr"}
	}
	return cfg.Build()
}

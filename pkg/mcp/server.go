package mcp

import (
	"time"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/multikube/multikube/pkg/kubeconfig"
	"github.com/multikube/multikube/pkg/otel"
	"github.com/multikube/multikube/pkg/ratelimit"
)

// serverName reported during MCP initialization
const serverName = "multikube"

// serverVersion reported during MCP initialization
const serverVersion = "0.1.0"

// defaultHandlerTimeout bounds a single tool call end to end. Exec has its
// own tighter cap inside the k8s client.
const defaultHandlerTimeout = 2 * time.Minute

// Config holds configuration options for the MCP server
type Config struct {
	// EnableRateLimiting applies per-session per-tool rate limits
	EnableRateLimiting bool
	// EnableTracing adds OpenTelemetry tracing around every tool call
	EnableTracing bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		EnableRateLimiting: true,
	}
}

// rateLimiter is the process-wide limiter, kept so StopServer can stop its
// cleanup goroutine.
var rateLimiter *ratelimit.RateLimiter

// CreateServer creates the MCP server with every tool registered
func CreateServer(registry *kubeconfig.Registry, config *Config, logger *zap.Logger) *server.MCPServer {
	if config == nil {
		config = DefaultConfig()
	}

	impl := NewImplementation(registry, logger)

	options := []server.ServerOption{
		server.WithToolCapabilities(true),
		WithTimeoutContext(defaultHandlerTimeout),
	}
	if config.EnableTracing {
		options = append(options, server.WithToolHandlerMiddleware(otel.Middleware()))
	}
	if config.EnableRateLimiting {
		rateLimiter = ratelimit.GetDefaultRateLimiter()
		options = append(options, server.WithToolHandlerMiddleware(rateLimiter.Middleware()))
	}

	mcpServer := server.NewMCPServer(serverName, serverVersion, options...)
	registerTools(mcpServer, impl)
	return mcpServer
}

func registerTools(mcpServer *server.MCPServer, impl *Implementation) {
	mcpServer.AddTool(NewGetContextsTool(), impl.HandleGetContexts)
	mcpServer.AddTool(NewGetNamespacesTool(), impl.HandleGetNamespaces)
	mcpServer.AddTool(NewGetNodesTool(), impl.HandleGetNodes)
	mcpServer.AddTool(NewGetEventsTool(), impl.HandleGetEvents)
	mcpServer.AddTool(NewGetResourcesTool(), impl.HandleGetResources)
	mcpServer.AddTool(NewGetResourceTool(), impl.HandleGetResource)
	mcpServer.AddTool(NewDescribeTool(), impl.HandleDescribe)
	mcpServer.AddTool(NewGetPodLogsTool(), impl.HandleGetPodLogs)
	mcpServer.AddTool(NewTopNodesTool(), impl.HandleTopNodes)
	mcpServer.AddTool(NewTopPodsTool(), impl.HandleTopPods)

	mcpServer.AddTool(NewRolloutStatusTool(), impl.HandleRolloutStatus)
	mcpServer.AddTool(NewRolloutHistoryTool(), impl.HandleRolloutHistory)
	mcpServer.AddTool(NewRolloutUndoTool(), impl.HandleRolloutUndo)
	mcpServer.AddTool(NewRolloutRestartTool(), impl.HandleRolloutRestart)
	mcpServer.AddTool(NewRolloutPauseTool(), impl.HandleRolloutPause)
	mcpServer.AddTool(NewRolloutResumeTool(), impl.HandleRolloutResume)

	mcpServer.AddTool(NewScaleResourceTool(), impl.HandleScaleResource)
	mcpServer.AddTool(NewAutoscaleResourceTool(), impl.HandleAutoscaleResource)
	mcpServer.AddTool(NewUpdateResourcesTool(), impl.HandleUpdateResources)

	mcpServer.AddTool(NewDiagnoseApplicationTool(), impl.HandleDiagnoseApplication)
	mcpServer.AddTool(NewAPIsTool(), impl.HandleAPIs)
	mcpServer.AddTool(NewCRDsTool(), impl.HandleCRDs)

	mcpServer.AddTool(NewCreateResourceTool(), impl.HandleCreateResource)
	mcpServer.AddTool(NewApplyResourceTool(), impl.HandleApplyResource)
	mcpServer.AddTool(NewPatchResourceTool(), impl.HandlePatchResource)
	mcpServer.AddTool(NewLabelResourceTool(), impl.HandleLabelResource)
	mcpServer.AddTool(NewAnnotateResourceTool(), impl.HandleAnnotateResource)
	mcpServer.AddTool(NewExposeResourceTool(), impl.HandleExposeResource)

	mcpServer.AddTool(NewCordonNodeTool(), impl.HandleCordonNode)
	mcpServer.AddTool(NewUncordonNodeTool(), impl.HandleUncordonNode)
	mcpServer.AddTool(NewDrainNodeTool(), impl.HandleDrainNode)
	mcpServer.AddTool(NewTaintNodeTool(), impl.HandleTaintNode)
	mcpServer.AddTool(NewUntaintNodeTool(), impl.HandleUntaintNode)

	mcpServer.AddTool(NewPodExecTool(), impl.HandlePodExec)
}

// CreateSSEServer creates an SSE transport for the MCP server
func CreateSSEServer(mcpServer *server.MCPServer) *server.SSEServer {
	return server.NewSSEServer(mcpServer)
}

// CreateStreamableHTTPServer creates a streamable-http transport for the MCP server
func CreateStreamableHTTPServer(mcpServer *server.MCPServer) *server.StreamableHTTPServer {
	return server.NewStreamableHTTPServer(mcpServer)
}

// CreateStdioServer creates a stdio transport for the MCP server
func CreateStdioServer(mcpServer *server.MCPServer) *server.StdioServer {
	return server.NewStdioServer(mcpServer)
}

// StopServer releases server-wide resources, currently the rate limiter's
// cleanup goroutine
func StopServer() {
	if rateLimiter != nil {
		rateLimiter.Stop()
		rateLimiter = nil
	}
}

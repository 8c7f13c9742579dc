package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/multikube/multikube/pkg/types"
)

// NewTopNodesTool creates the top_nodes tool
func NewTopNodesTool() mcp.Tool {
	return mcp.NewTool(types.TopNodesToolName,
		mcp.WithDescription("Show node resource usage from the metrics API (requires metrics-server)"),
		withContextParam(),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:        "Node resource usage",
			ReadOnlyHint: BoolPtr(true),
		}),
	)
}

// HandleTopNodes handles the top_nodes tool
func (m *Implementation) HandleTopNodes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, contextName, err := m.clientFor(mcp.ParseString(request, "context", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	metrics, err := client.TopNodes(ctx)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("Failed to get node metrics", err), nil
	}

	return contextResult(contextName, "nodes", metrics)
}

// NewTopPodsTool creates the top_pods tool
func NewTopPodsTool() mcp.Tool {
	return mcp.NewTool(types.TopPodsToolName,
		mcp.WithDescription("Show pod resource usage from the metrics API (requires metrics-server)"),
		withContextParam(),
		mcp.WithString("namespace",
			mcp.Description("Namespace to scope to; empty for all namespaces")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:        "Pod resource usage",
			ReadOnlyHint: BoolPtr(true),
		}),
	)
}

// HandleTopPods handles the top_pods tool
func (m *Implementation) HandleTopPods(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	namespace := mcp.ParseString(request, "namespace", "")

	client, contextName, err := m.clientFor(mcp.ParseString(request, "context", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	metrics, err := client.TopPods(ctx, namespace)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("Failed to get pod metrics", err), nil
	}

	return contextResult(contextName, "pods", metrics)
}

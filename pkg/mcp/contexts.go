package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/multikube/multikube/pkg/types"
)

// NewGetContextsTool creates the tool that lists known kubeconfig contexts
func NewGetContextsTool() mcp.Tool {
	return mcp.NewTool(types.GetContextsToolName,
		mcp.WithDescription("List all Kubernetes contexts found in the kubeconfig directory"),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:        "List Kubernetes contexts",
			ReadOnlyHint: BoolPtr(true),
		}),
	)
}

// HandleGetContexts handles the get_contexts tool. The kubeconfig directory
// is rescanned on every call.
func (m *Implementation) HandleGetContexts(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names, err := m.registry.Refresh()
	if err != nil {
		return mcp.NewToolResultErrorFromErr("Failed to scan kubeconfig directory", err), nil
	}

	return jsonResult(map[string]interface{}{
		"directory": m.registry.Dir(),
		"contexts":  names,
		"count":     len(names),
	})
}

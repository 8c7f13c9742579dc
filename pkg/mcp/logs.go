package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/multikube/multikube/pkg/types"
)

// NewGetPodLogsTool creates the get_pod_logs tool
func NewGetPodLogsTool() mcp.Tool {
	return mcp.NewTool(types.GetPodLogsToolName,
		mcp.WithDescription("Get logs from a pod. Multi-container pods default to the first container"),
		withContextParam(),
		mcp.WithString("namespace",
			mcp.Description("Namespace of the pod"),
			mcp.Required()),
		mcp.WithString("pod",
			mcp.Description("Name of the pod"),
			mcp.Required()),
		mcp.WithBoolean("previous",
			mcp.Description("Return logs from the previous container instance")),
		mcp.WithString("since",
			mcp.Description("Relative duration like 5s, 2m, 3h or 1d")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:        "Get pod logs",
			ReadOnlyHint: BoolPtr(true),
		}),
	)
}

// HandleGetPodLogs handles the get_pod_logs tool
func (m *Implementation) HandleGetPodLogs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	namespace := mcp.ParseString(request, "namespace", "")
	pod := mcp.ParseString(request, "pod", "")
	if namespace == "" {
		return mcp.NewToolResultError("namespace is required"), nil
	}
	if pod == "" {
		return mcp.NewToolResultError("pod is required"), nil
	}
	previous := mcp.ParseBoolean(request, "previous", false)
	since := mcp.ParseString(request, "since", "")

	client, contextName, err := m.clientFor(mcp.ParseString(request, "context", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	logs, err := client.GetPodLogs(ctx, namespace, pod, previous, since)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("Failed to get pod logs", err), nil
	}

	return contextResult(contextName, "logs", logs)
}

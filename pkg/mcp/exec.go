package mcp

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/multikube/multikube/pkg/types"
)

// NewPodExecTool creates the pod_exec tool
func NewPodExecTool() mcp.Tool {
	return mcp.NewTool(types.PodExecToolName,
		mcp.WithDescription("Execute a command in a pod container and return its output"),
		withContextParam(),
		mcp.WithString("namespace",
			mcp.Description("Namespace of the pod"),
			mcp.Required()),
		mcp.WithString("pod",
			mcp.Description("Name of the pod"),
			mcp.Required()),
		mcp.WithArray("command",
			mcp.Description("Command and arguments to run"),
			mcp.Required()),
		mcp.WithString("container",
			mcp.Description("Container to run in; defaults to the first container")),
		mcp.WithNumber("timeout_seconds",
			mcp.Description("Command timeout in seconds (default 15, max 60)")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:           "Execute command in pod",
			ReadOnlyHint:    BoolPtr(false),
			DestructiveHint: BoolPtr(true),
		}),
	)
}

// HandlePodExec handles the pod_exec tool
func (m *Implementation) HandlePodExec(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	namespace := mcp.ParseString(request, "namespace", "")
	pod := mcp.ParseString(request, "pod", "")
	if namespace == "" || pod == "" {
		return mcp.NewToolResultError("namespace and pod are required"), nil
	}

	command := commandArg(request)
	if len(command) == 0 {
		return mcp.NewToolResultError("command is required and must be a non-empty array of strings"), nil
	}

	container := mcp.ParseString(request, "container", "")
	timeout := time.Duration(mcp.ParseInt64(request, "timeout_seconds", 0)) * time.Second

	client, contextName, err := m.clientFor(mcp.ParseString(request, "context", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := client.ExecInPod(ctx, namespace, pod, command, container, timeout)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("Failed to execute command in pod", err), nil
	}

	return contextResult(contextName, "result", result.Object)
}

// commandArg extracts the command array argument.
func commandArg(request mcp.CallToolRequest) []string {
	raw, exists := request.GetArguments()["command"]
	if !exists || raw == nil {
		return nil
	}
	slice, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	command := make([]string, 0, len(slice))
	for _, value := range slice {
		str, ok := value.(string)
		if !ok {
			return nil
		}
		command = append(command, str)
	}
	return command
}

package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/multikube/multikube/pkg/k8s"
	"github.com/multikube/multikube/pkg/types"
)

func withRolloutParams() []mcp.ToolOption {
	return []mcp.ToolOption{
		withContextParam(),
		mcp.WithString("resource_type",
			mcp.Description("Workload type: deployment, statefulset or daemonset"),
			mcp.Required()),
		mcp.WithString("namespace",
			mcp.Description("Namespace of the workload"),
			mcp.Required()),
		mcp.WithString("name",
			mcp.Description("Name of the workload"),
			mcp.Required()),
	}
}

// rolloutArgs extracts and validates the common rollout tool arguments.
func rolloutArgs(request mcp.CallToolRequest) (resourceType, namespace, name string, errResult *mcp.CallToolResult) {
	resourceType = mcp.ParseString(request, "resource_type", "")
	namespace = mcp.ParseString(request, "namespace", "")
	name = mcp.ParseString(request, "name", "")
	if resourceType == "" {
		return "", "", "", mcp.NewToolResultError("resource_type is required")
	}
	if namespace == "" {
		return "", "", "", mcp.NewToolResultError("namespace is required")
	}
	if name == "" {
		return "", "", "", mcp.NewToolResultError("name is required")
	}
	return resourceType, namespace, name, nil
}

// rolloutOp runs one rollout operation against the resolved context.
func (m *Implementation) rolloutOp(
	ctx context.Context,
	request mcp.CallToolRequest,
	failureMsg string,
	op func(ctx context.Context, client *k8s.Client, resourceType, namespace, name string) (map[string]interface{}, error),
) (*mcp.CallToolResult, error) {
	resourceType, namespace, name, errResult := rolloutArgs(request)
	if errResult != nil {
		return errResult, nil
	}

	client, contextName, err := m.clientFor(mcp.ParseString(request, "context", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := op(ctx, client, resourceType, namespace, name)
	if err != nil {
		return mcp.NewToolResultErrorFromErr(failureMsg, err), nil
	}
	result["context"] = contextName
	return jsonResult(result)
}

// NewRolloutStatusTool creates the rollout_status tool
func NewRolloutStatusTool() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Get the rollout status of a deployment, statefulset or daemonset"),
	}, withRolloutParams()...)
	opts = append(opts, mcp.WithToolAnnotation(mcp.ToolAnnotation{
		Title:        "Rollout status",
		ReadOnlyHint: BoolPtr(true),
	}))
	return mcp.NewTool(types.RolloutStatusToolName, opts...)
}

// HandleRolloutStatus handles the rollout_status tool
func (m *Implementation) HandleRolloutStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return m.rolloutOp(ctx, request, "Failed to get rollout status",
		func(ctx context.Context, client *k8s.Client, resourceType, namespace, name string) (map[string]interface{}, error) {
			return client.RolloutStatus(ctx, resourceType, namespace, name)
		})
}

// NewRolloutHistoryTool creates the rollout_history tool
func NewRolloutHistoryTool() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Get the revision history of a workload rollout"),
	}, withRolloutParams()...)
	opts = append(opts, mcp.WithToolAnnotation(mcp.ToolAnnotation{
		Title:        "Rollout history",
		ReadOnlyHint: BoolPtr(true),
	}))
	return mcp.NewTool(types.RolloutHistoryToolName, opts...)
}

// HandleRolloutHistory handles the rollout_history tool
func (m *Implementation) HandleRolloutHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return m.rolloutOp(ctx, request, "Failed to get rollout history",
		func(ctx context.Context, client *k8s.Client, resourceType, namespace, name string) (map[string]interface{}, error) {
			revisions, err := client.RolloutHistory(ctx, resourceType, namespace, name)
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{"revisions": revisions}, nil
		})
}

// NewRolloutUndoTool creates the rollout_undo tool
func NewRolloutUndoTool() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Roll a deployment, statefulset or daemonset back to a previous revision"),
	}, withRolloutParams()...)
	opts = append(opts,
		mcp.WithNumber("to_revision",
			mcp.Description("Revision to roll back to; 0 or omitted means the previous one")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:           "Rollout undo",
			ReadOnlyHint:    BoolPtr(false),
			DestructiveHint: BoolPtr(true),
		}),
	)
	return mcp.NewTool(types.RolloutUndoToolName, opts...)
}

// HandleRolloutUndo handles the rollout_undo tool
func (m *Implementation) HandleRolloutUndo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	toRevision := mcp.ParseInt64(request, "to_revision", 0)
	return m.rolloutOp(ctx, request, "Failed to undo rollout",
		func(ctx context.Context, client *k8s.Client, resourceType, namespace, name string) (map[string]interface{}, error) {
			return client.RolloutUndo(ctx, resourceType, namespace, name, toRevision)
		})
}

// NewRolloutRestartTool creates the rollout_restart tool
func NewRolloutRestartTool() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Trigger a rolling restart of a workload"),
	}, withRolloutParams()...)
	opts = append(opts, mcp.WithToolAnnotation(mcp.ToolAnnotation{
		Title:        "Rollout restart",
		ReadOnlyHint: BoolPtr(false),
	}))
	return mcp.NewTool(types.RolloutRestartToolName, opts...)
}

// HandleRolloutRestart handles the rollout_restart tool
func (m *Implementation) HandleRolloutRestart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return m.rolloutOp(ctx, request, "Failed to restart rollout",
		func(ctx context.Context, client *k8s.Client, resourceType, namespace, name string) (map[string]interface{}, error) {
			return client.RolloutRestart(ctx, resourceType, namespace, name)
		})
}

// NewRolloutPauseTool creates the rollout_pause tool
func NewRolloutPauseTool() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Pause a workload rollout"),
	}, withRolloutParams()...)
	opts = append(opts, mcp.WithToolAnnotation(mcp.ToolAnnotation{
		Title:        "Rollout pause",
		ReadOnlyHint: BoolPtr(false),
	}))
	return mcp.NewTool(types.RolloutPauseToolName, opts...)
}

// HandleRolloutPause handles the rollout_pause tool
func (m *Implementation) HandleRolloutPause(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return m.rolloutOp(ctx, request, "Failed to pause rollout",
		func(ctx context.Context, client *k8s.Client, resourceType, namespace, name string) (map[string]interface{}, error) {
			return client.RolloutPause(ctx, resourceType, namespace, name)
		})
}

// NewRolloutResumeTool creates the rollout_resume tool
func NewRolloutResumeTool() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Resume a paused workload rollout"),
	}, withRolloutParams()...)
	opts = append(opts, mcp.WithToolAnnotation(mcp.ToolAnnotation{
		Title:        "Rollout resume",
		ReadOnlyHint: BoolPtr(false),
	}))
	return mcp.NewTool(types.RolloutResumeToolName, opts...)
}

// HandleRolloutResume handles the rollout_resume tool
func (m *Implementation) HandleRolloutResume(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return m.rolloutOp(ctx, request, "Failed to resume rollout",
		func(ctx context.Context, client *k8s.Client, resourceType, namespace, name string) (map[string]interface{}, error) {
			return client.RolloutResume(ctx, resourceType, namespace, name)
		})
}

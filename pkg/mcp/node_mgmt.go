package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/multikube/multikube/pkg/k8s"
	"github.com/multikube/multikube/pkg/types"
)

func withNodeParam() mcp.ToolOption {
	return mcp.WithString("node",
		mcp.Description("Name of the node"),
		mcp.Required())
}

// nodeArg extracts the node argument or returns an error result.
func nodeArg(request mcp.CallToolRequest) (string, *mcp.CallToolResult) {
	node := mcp.ParseString(request, "node", "")
	if node == "" {
		return "", mcp.NewToolResultError("node is required")
	}
	return node, nil
}

// NewCordonNodeTool creates the cordon_node tool
func NewCordonNodeTool() mcp.Tool {
	return mcp.NewTool(types.CordonNodeToolName,
		mcp.WithDescription("Mark a node unschedulable"),
		withContextParam(),
		withNodeParam(),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:          "Cordon node",
			ReadOnlyHint:   BoolPtr(false),
			IdempotentHint: BoolPtr(true),
		}),
	)
}

// HandleCordonNode handles the cordon_node tool
func (m *Implementation) HandleCordonNode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	node, errResult := nodeArg(request)
	if errResult != nil {
		return errResult, nil
	}

	client, contextName, err := m.clientFor(mcp.ParseString(request, "context", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := client.Cordon(ctx, node)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("Failed to cordon node", err), nil
	}
	result["context"] = contextName
	return jsonResult(result)
}

// NewUncordonNodeTool creates the uncordon_node tool
func NewUncordonNodeTool() mcp.Tool {
	return mcp.NewTool(types.UncordonNodeToolName,
		mcp.WithDescription("Mark a node schedulable again"),
		withContextParam(),
		withNodeParam(),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:          "Uncordon node",
			ReadOnlyHint:   BoolPtr(false),
			IdempotentHint: BoolPtr(true),
		}),
	)
}

// HandleUncordonNode handles the uncordon_node tool
func (m *Implementation) HandleUncordonNode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	node, errResult := nodeArg(request)
	if errResult != nil {
		return errResult, nil
	}

	client, contextName, err := m.clientFor(mcp.ParseString(request, "context", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := client.Uncordon(ctx, node)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("Failed to uncordon node", err), nil
	}
	result["context"] = contextName
	return jsonResult(result)
}

// NewDrainNodeTool creates the drain_node tool
func NewDrainNodeTool() mcp.Tool {
	return mcp.NewTool(types.DrainNodeToolName,
		mcp.WithDescription("Cordon a node and evict its pods, reporting each pod's outcome"),
		withContextParam(),
		withNodeParam(),
		mcp.WithBoolean("force",
			mcp.Description("Evict unmanaged pods and pods with local storage")),
		mcp.WithBoolean("ignore_daemonsets",
			mcp.Description("Skip DaemonSet-managed pods (default true)")),
		mcp.WithBoolean("delete_local_data",
			mcp.Description("Evict pods using emptyDir volumes")),
		mcp.WithNumber("grace_period",
			mcp.Description("Eviction grace period in seconds; omit for the pod default")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:           "Drain node",
			ReadOnlyHint:    BoolPtr(false),
			DestructiveHint: BoolPtr(true),
		}),
	)
}

// HandleDrainNode handles the drain_node tool
func (m *Implementation) HandleDrainNode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	node, errResult := nodeArg(request)
	if errResult != nil {
		return errResult, nil
	}

	opts := k8s.DrainOptions{
		Force:            mcp.ParseBoolean(request, "force", false),
		IgnoreDaemonSets: mcp.ParseBoolean(request, "ignore_daemonsets", true),
		DeleteLocalData:  mcp.ParseBoolean(request, "delete_local_data", false),
	}
	if grace := mcp.ParseInt64(request, "grace_period", -1); grace >= 0 {
		opts.GracePeriod = &grace
	}

	client, contextName, err := m.clientFor(mcp.ParseString(request, "context", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := client.Drain(ctx, node, opts)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("Failed to drain node", err), nil
	}
	result["context"] = contextName
	return jsonResult(result)
}

// NewTaintNodeTool creates the taint_node tool
func NewTaintNodeTool() mcp.Tool {
	return mcp.NewTool(types.TaintNodeToolName,
		mcp.WithDescription("Add or update a taint on a node"),
		withContextParam(),
		withNodeParam(),
		mcp.WithString("key",
			mcp.Description("Taint key"),
			mcp.Required()),
		mcp.WithString("value",
			mcp.Description("Taint value")),
		mcp.WithString("effect",
			mcp.Description("Taint effect: NoSchedule, PreferNoSchedule or NoExecute"),
			mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:        "Taint node",
			ReadOnlyHint: BoolPtr(false),
		}),
	)
}

// HandleTaintNode handles the taint_node tool
func (m *Implementation) HandleTaintNode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	node, errResult := nodeArg(request)
	if errResult != nil {
		return errResult, nil
	}
	key := mcp.ParseString(request, "key", "")
	effect := mcp.ParseString(request, "effect", "")
	if key == "" || effect == "" {
		return mcp.NewToolResultError("key and effect are required"), nil
	}

	client, contextName, err := m.clientFor(mcp.ParseString(request, "context", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := client.Taint(ctx, node, key, mcp.ParseString(request, "value", ""), effect)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("Failed to taint node", err), nil
	}
	result["context"] = contextName
	return jsonResult(result)
}

// NewUntaintNodeTool creates the untaint_node tool
func NewUntaintNodeTool() mcp.Tool {
	return mcp.NewTool(types.UntaintNodeToolName,
		mcp.WithDescription("Remove taints with a key from a node, optionally narrowed to one effect"),
		withContextParam(),
		withNodeParam(),
		mcp.WithString("key",
			mcp.Description("Taint key to remove"),
			mcp.Required()),
		mcp.WithString("effect",
			mcp.Description("Only remove the taint with this effect")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:        "Untaint node",
			ReadOnlyHint: BoolPtr(false),
		}),
	)
}

// HandleUntaintNode handles the untaint_node tool
func (m *Implementation) HandleUntaintNode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	node, errResult := nodeArg(request)
	if errResult != nil {
		return errResult, nil
	}
	key := mcp.ParseString(request, "key", "")
	if key == "" {
		return mcp.NewToolResultError("key is required"), nil
	}

	client, contextName, err := m.clientFor(mcp.ParseString(request, "context", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := client.Untaint(ctx, node, key, mcp.ParseString(request, "effect", ""))
	if err != nil {
		return mcp.NewToolResultErrorFromErr("Failed to untaint node", err), nil
	}
	result["context"] = contextName
	return jsonResult(result)
}

package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/multikube/multikube/pkg/k8s"
	"github.com/multikube/multikube/pkg/types"
)

// NewScaleResourceTool creates the scale_resource tool
func NewScaleResourceTool() mcp.Tool {
	return mcp.NewTool(types.ScaleResourceToolName,
		mcp.WithDescription("Scale a deployment, statefulset or replicaset to a replica count"),
		withContextParam(),
		mcp.WithString("resource_type",
			mcp.Description("Workload type: deployment, statefulset or replicaset"),
			mcp.Required()),
		mcp.WithString("namespace",
			mcp.Description("Namespace of the workload"),
			mcp.Required()),
		mcp.WithString("name",
			mcp.Description("Name of the workload"),
			mcp.Required()),
		mcp.WithNumber("replicas",
			mcp.Description("Desired replica count"),
			mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:        "Scale workload",
			ReadOnlyHint: BoolPtr(false),
		}),
	)
}

// HandleScaleResource handles the scale_resource tool
func (m *Implementation) HandleScaleResource(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resourceType := mcp.ParseString(request, "resource_type", "")
	namespace := mcp.ParseString(request, "namespace", "")
	name := mcp.ParseString(request, "name", "")
	replicas := mcp.ParseInt64(request, "replicas", -1)
	if resourceType == "" || namespace == "" || name == "" {
		return mcp.NewToolResultError("resource_type, namespace and name are required"), nil
	}
	if replicas < 0 {
		return mcp.NewToolResultError("replicas is required and must be non-negative"), nil
	}

	client, contextName, err := m.clientFor(mcp.ParseString(request, "context", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := client.Scale(ctx, resourceType, namespace, name, int32(replicas))
	if err != nil {
		return mcp.NewToolResultErrorFromErr("Failed to scale resource", err), nil
	}
	result["context"] = contextName
	return jsonResult(result)
}

// NewAutoscaleResourceTool creates the autoscale_resource tool
func NewAutoscaleResourceTool() mcp.Tool {
	return mcp.NewTool(types.AutoscaleResourceToolName,
		mcp.WithDescription("Create or update a HorizontalPodAutoscaler for a workload"),
		withContextParam(),
		mcp.WithString("resource_type",
			mcp.Description("Workload type: deployment, statefulset or replicaset"),
			mcp.Required()),
		mcp.WithString("namespace",
			mcp.Description("Namespace of the workload"),
			mcp.Required()),
		mcp.WithString("name",
			mcp.Description("Name of the workload"),
			mcp.Required()),
		mcp.WithNumber("min_replicas",
			mcp.Description("Minimum replicas (default 1)")),
		mcp.WithNumber("max_replicas",
			mcp.Description("Maximum replicas"),
			mcp.Required()),
		mcp.WithNumber("cpu_percent",
			mcp.Description("Target CPU utilization percentage (default 80)")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:          "Autoscale workload",
			ReadOnlyHint:   BoolPtr(false),
			IdempotentHint: BoolPtr(true),
		}),
	)
}

// HandleAutoscaleResource handles the autoscale_resource tool
func (m *Implementation) HandleAutoscaleResource(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resourceType := mcp.ParseString(request, "resource_type", "")
	namespace := mcp.ParseString(request, "namespace", "")
	name := mcp.ParseString(request, "name", "")
	if resourceType == "" || namespace == "" || name == "" {
		return mcp.NewToolResultError("resource_type, namespace and name are required"), nil
	}
	minReplicas := mcp.ParseInt64(request, "min_replicas", 1)
	maxReplicas := mcp.ParseInt64(request, "max_replicas", 0)
	cpuPercent := mcp.ParseInt64(request, "cpu_percent", 80)
	if maxReplicas <= 0 {
		return mcp.NewToolResultError("max_replicas is required and must be positive"), nil
	}

	client, contextName, err := m.clientFor(mcp.ParseString(request, "context", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := client.Autoscale(ctx, resourceType, namespace, name, int32(minReplicas), int32(maxReplicas), int32(cpuPercent))
	if err != nil {
		return mcp.NewToolResultErrorFromErr("Failed to autoscale resource", err), nil
	}
	result["context"] = contextName
	return jsonResult(result)
}

// NewUpdateResourcesTool creates the update_resources tool
func NewUpdateResourcesTool() mcp.Tool {
	return mcp.NewTool(types.UpdateResourcesToolName,
		mcp.WithDescription("Update container CPU/memory requests and limits on a workload"),
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
		mcp.WithString("container",
			mcp.Description("Container to update"),
			mcp.Required()),
		mcp.WithString("cpu_request", mcp.Description("CPU request, e.g. 100m")),
		mcp.WithString("cpu_limit", mcp.Description("CPU limit, e.g. 500m")),
		mcp.WithString("memory_request", mcp.Description("Memory request, e.g. 128Mi")),
		mcp.WithString("memory_limit", mcp.Description("Memory limit, e.g. 512Mi")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:        "Update container resources",
			ReadOnlyHint: BoolPtr(false),
		}),
	)
}

// HandleUpdateResources handles the update_resources tool
func (m *Implementation) HandleUpdateResources(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resourceType := mcp.ParseString(request, "resource_type", "")
	namespace := mcp.ParseString(request, "namespace", "")
	name := mcp.ParseString(request, "name", "")
	container := mcp.ParseString(request, "container", "")
	if resourceType == "" || namespace == "" || name == "" {
		return mcp.NewToolResultError("resource_type, namespace and name are required"), nil
	}
	if container == "" {
		return mcp.NewToolResultError("container is required"), nil
	}

	update := k8s.ContainerResources{
		Container:     container,
		CPURequest:    mcp.ParseString(request, "cpu_request", ""),
		CPULimit:      mcp.ParseString(request, "cpu_limit", ""),
		MemoryRequest: mcp.ParseString(request, "memory_request", ""),
		MemoryLimit:   mcp.ParseString(request, "memory_limit", ""),
	}
	if update.CPURequest == "" && update.CPULimit == "" && update.MemoryRequest == "" && update.MemoryLimit == "" {
		return mcp.NewToolResultError("at least one of cpu_request, cpu_limit, memory_request, memory_limit is required"), nil
	}

	client, contextName, err := m.clientFor(mcp.ParseString(request, "context", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := client.UpdateContainerResources(ctx, resourceType, namespace, name, []k8s.ContainerResources{update})
	if err != nil {
		return mcp.NewToolResultErrorFromErr("Failed to update container resources", err), nil
	}
	result["context"] = contextName
	return jsonResult(result)
}

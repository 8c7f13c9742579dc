package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/multikube/multikube/pkg/router"
	"github.com/multikube/multikube/pkg/types"
)

func withKindParams() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("kind",
			mcp.Description("Resource kind, singular or plural (e.g. pod, deployments, widget)"),
			mcp.Required()),
		mcp.WithString("group",
			mcp.Description("Explicit API group; overrides the built-in kind table (e.g. apps, example.com)")),
		mcp.WithString("version",
			mcp.Description("API version (default v1)")),
	}
}

// NewGetResourcesTool creates the get_resources tool
func NewGetResourcesTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("List resources of a kind in a namespace. Built-in kinds return summaries, custom kinds return raw objects"),
		withContextParam(),
	}
	opts = append(opts, withKindParams()...)
	opts = append(opts,
		mcp.WithString("namespace",
			mcp.Description("Namespace to list from; empty for cluster-scoped kinds or all namespaces")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:        "List Kubernetes resources",
			ReadOnlyHint: BoolPtr(true),
		}),
	)
	return mcp.NewTool(types.GetResourcesToolName, opts...)
}

// HandleGetResources handles the get_resources tool
func (m *Implementation) HandleGetResources(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind := mcp.ParseString(request, "kind", "")
	if kind == "" {
		return mcp.NewToolResultError("kind is required"), nil
	}
	group := mcp.ParseString(request, "group", "")
	version := mcp.ParseString(request, "version", "")
	namespace := mcp.ParseString(request, "namespace", "")

	client, contextName, err := m.clientFor(mcp.ParseString(request, "context", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	gvr := router.ResolveCoordinate(kind, group, version)
	resources, err := client.ListResources(ctx, kind, namespace, gvr)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("Failed to list resources", err), nil
	}

	return jsonResult(map[string]interface{}{
		"context":   contextName,
		"kind":      kind,
		"namespace": namespace,
		"count":     len(resources),
		"items":     resources,
	})
}

// NewGetResourceTool creates the get_resource tool
func NewGetResourceTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Get a single resource by kind and name"),
		withContextParam(),
	}
	opts = append(opts, withKindParams()...)
	opts = append(opts,
		mcp.WithString("namespace",
			mcp.Description("Namespace of the resource; empty for cluster-scoped kinds")),
		mcp.WithString("name",
			mcp.Description("Name of the resource"),
			mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:        "Get Kubernetes resource",
			ReadOnlyHint: BoolPtr(true),
		}),
	)
	return mcp.NewTool(types.GetResourceToolName, opts...)
}

// HandleGetResource handles the get_resource tool
func (m *Implementation) HandleGetResource(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind := mcp.ParseString(request, "kind", "")
	name := mcp.ParseString(request, "name", "")
	if kind == "" {
		return mcp.NewToolResultError("kind is required"), nil
	}
	if name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}
	group := mcp.ParseString(request, "group", "")
	version := mcp.ParseString(request, "version", "")
	namespace := mcp.ParseString(request, "namespace", "")

	client, contextName, err := m.clientFor(mcp.ParseString(request, "context", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	gvr := router.ResolveCoordinate(kind, group, version)
	resource, err := client.GetResource(ctx, kind, namespace, name, gvr)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("Failed to get resource", err), nil
	}

	return contextResult(contextName, "resource", resource)
}

// NewDescribeTool creates the describe tool
func NewDescribeTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Describe a resource: full object plus the events that reference it"),
		withContextParam(),
	}
	opts = append(opts, withKindParams()...)
	opts = append(opts,
		mcp.WithString("namespace",
			mcp.Description("Namespace of the resource; empty for cluster-scoped kinds")),
		mcp.WithString("name",
			mcp.Description("Name of the resource"),
			mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:        "Describe Kubernetes resource",
			ReadOnlyHint: BoolPtr(true),
		}),
	)
	return mcp.NewTool(types.DescribeToolName, opts...)
}

// HandleDescribe handles the describe tool
func (m *Implementation) HandleDescribe(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind := mcp.ParseString(request, "kind", "")
	name := mcp.ParseString(request, "name", "")
	if kind == "" {
		return mcp.NewToolResultError("kind is required"), nil
	}
	if name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}
	group := mcp.ParseString(request, "group", "")
	version := mcp.ParseString(request, "version", "")
	namespace := mcp.ParseString(request, "namespace", "")

	client, contextName, err := m.clientFor(mcp.ParseString(request, "context", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	gvr := router.ResolveCoordinate(kind, group, version)
	description, err := client.Describe(ctx, kind, namespace, name, gvr)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("Failed to describe resource", err), nil
	}

	return contextResult(contextName, "description", description)
}

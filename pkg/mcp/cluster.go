package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/multikube/multikube/pkg/types"
)

// withContextParam adds the context selector every cluster-facing tool takes.
func withContextParam() mcp.ToolOption {
	return mcp.WithString("context",
		mcp.Description("Kubernetes context name or unique substring of it"),
		mcp.Required())
}

// NewGetNamespacesTool creates the get_namespaces tool
func NewGetNamespacesTool() mcp.Tool {
	return mcp.NewTool(types.GetNamespacesToolName,
		mcp.WithDescription("List namespaces in a Kubernetes cluster"),
		withContextParam(),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:        "List namespaces",
			ReadOnlyHint: BoolPtr(true),
		}),
	)
}

// HandleGetNamespaces handles the get_namespaces tool
func (m *Implementation) HandleGetNamespaces(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, contextName, err := m.clientFor(mcp.ParseString(request, "context", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	namespaces, err := client.ListNamespaces(ctx)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("Failed to list namespaces", err), nil
	}

	return contextResult(contextName, "namespaces", namespaces)
}

// NewGetNodesTool creates the get_nodes tool
func NewGetNodesTool() mcp.Tool {
	return mcp.NewTool(types.GetNodesToolName,
		mcp.WithDescription("List nodes in a Kubernetes cluster with roles, status and capacity"),
		withContextParam(),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:        "List nodes",
			ReadOnlyHint: BoolPtr(true),
		}),
	)
}

// HandleGetNodes handles the get_nodes tool
func (m *Implementation) HandleGetNodes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, contextName, err := m.clientFor(mcp.ParseString(request, "context", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	nodes, err := client.ListNodes(ctx)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("Failed to list nodes", err), nil
	}

	return contextResult(contextName, "nodes", nodes)
}

// NewGetEventsTool creates the get_events tool
func NewGetEventsTool() mcp.Tool {
	return mcp.NewTool(types.GetEventsToolName,
		mcp.WithDescription("Get recent events in a namespace, most recent first"),
		withContextParam(),
		mcp.WithString("namespace",
			mcp.Description("Namespace to get events from"),
			mcp.Required()),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of events to return (default 50)")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:        "Get events",
			ReadOnlyHint: BoolPtr(true),
		}),
	)
}

// HandleGetEvents handles the get_events tool
func (m *Implementation) HandleGetEvents(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	namespace := mcp.ParseString(request, "namespace", "")
	if namespace == "" {
		return mcp.NewToolResultError("namespace is required"), nil
	}
	limit := int(mcp.ParseInt64(request, "limit", 50))

	client, contextName, err := m.clientFor(mcp.ParseString(request, "context", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	events, err := client.ListEvents(ctx, namespace, limit)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("Failed to list events", err), nil
	}

	return contextResult(contextName, "events", events)
}

package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/multikube/multikube/pkg/types"
)

// NewAPIsTool creates the apis tool
func NewAPIsTool() mcp.Tool {
	return mcp.NewTool(types.APIsToolName,
		mcp.WithDescription("List the API resource types served by the cluster"),
		withContextParam(),
		mcp.WithString("group",
			mcp.Description("Filter to one API group (e.g. apps, networking.k8s.io)")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:        "List API resources",
			ReadOnlyHint: BoolPtr(true),
		}),
	)
}

// HandleAPIs handles the apis tool
func (m *Implementation) HandleAPIs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	group := mcp.ParseString(request, "group", "")

	client, contextName, err := m.clientFor(mcp.ParseString(request, "context", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resources, err := client.ListAPIResources(ctx, group)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("Failed to list API resources", err), nil
	}

	return contextResult(contextName, "resources", resources)
}

// NewCRDsTool creates the crds tool
func NewCRDsTool() mcp.Tool {
	return mcp.NewTool(types.CRDsToolName,
		mcp.WithDescription("List the CustomResourceDefinitions installed in the cluster"),
		withContextParam(),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:        "List CRDs",
			ReadOnlyHint: BoolPtr(true),
		}),
	)
}

// HandleCRDs handles the crds tool
func (m *Implementation) HandleCRDs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, contextName, err := m.clientFor(mcp.ParseString(request, "context", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	crds, err := client.ListCRDs(ctx)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("Failed to list CRDs", err), nil
	}

	return contextResult(contextName, "crds", crds)
}

// NewDiagnoseApplicationTool creates the diagnose_application tool
func NewDiagnoseApplicationTool() mcp.Tool {
	return mcp.NewTool(types.DiagnoseApplicationToolName,
		mcp.WithDescription("Diagnose a deployment: replica health, pod problems, warning events and recent logs"),
		withContextParam(),
		mcp.WithString("namespace",
			mcp.Description("Namespace of the deployment"),
			mcp.Required()),
		mcp.WithString("name",
			mcp.Description("Name of the deployment"),
			mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:        "Diagnose application",
			ReadOnlyHint: BoolPtr(true),
		}),
	)
}

// HandleDiagnoseApplication handles the diagnose_application tool
func (m *Implementation) HandleDiagnoseApplication(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	namespace := mcp.ParseString(request, "namespace", "")
	name := mcp.ParseString(request, "name", "")
	if namespace == "" || name == "" {
		return mcp.NewToolResultError("namespace and name are required"), nil
	}

	client, contextName, err := m.clientFor(mcp.ParseString(request, "context", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	diagnosis, err := client.DiagnoseApplication(ctx, namespace, name)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("Failed to diagnose application", err), nil
	}
	diagnosis["context"] = contextName
	return jsonResult(diagnosis)
}

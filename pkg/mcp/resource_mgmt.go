package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/multikube/multikube/pkg/k8s"
	"github.com/multikube/multikube/pkg/router"
	"github.com/multikube/multikube/pkg/types"
)

// NewCreateResourceTool creates the create_resource tool
func NewCreateResourceTool() mcp.Tool {
	return mcp.NewTool(types.CreateResourceToolName,
		mcp.WithDescription("Create a resource from a YAML or JSON manifest; fails if it already exists"),
		withContextParam(),
		mcp.WithString("manifest",
			mcp.Description("Resource manifest in YAML or JSON"),
			mcp.Required()),
		mcp.WithString("namespace",
			mcp.Description("Namespace when the manifest does not carry one")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:        "Create Kubernetes resource",
			ReadOnlyHint: BoolPtr(false),
		}),
	)
}

// HandleCreateResource handles the create_resource tool
func (m *Implementation) HandleCreateResource(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return m.manifestOp(ctx, request, "Failed to create resource",
		func(ctx context.Context, client *k8s.Client, manifest, namespace string) (map[string]interface{}, error) {
			return client.CreateFromManifest(ctx, manifest, namespace)
		})
}

// NewApplyResourceTool creates the apply_resource tool
func NewApplyResourceTool() mcp.Tool {
	return mcp.NewTool(types.ApplyResourceToolName,
		mcp.WithDescription("Apply (create or update) a resource from a YAML or JSON manifest"),
		withContextParam(),
		mcp.WithString("manifest",
			mcp.Description("Resource manifest in YAML or JSON"),
			mcp.Required()),
		mcp.WithString("namespace",
			mcp.Description("Namespace when the manifest does not carry one")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:          "Apply Kubernetes resource",
			ReadOnlyHint:   BoolPtr(false),
			IdempotentHint: BoolPtr(true),
		}),
	)
}

// HandleApplyResource handles the apply_resource tool
func (m *Implementation) HandleApplyResource(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return m.manifestOp(ctx, request, "Failed to apply resource",
		func(ctx context.Context, client *k8s.Client, manifest, namespace string) (map[string]interface{}, error) {
			return client.ApplyFromManifest(ctx, manifest, namespace)
		})
}

func (m *Implementation) manifestOp(
	ctx context.Context,
	request mcp.CallToolRequest,
	failureMsg string,
	op func(ctx context.Context, client *k8s.Client, manifest, namespace string) (map[string]interface{}, error),
) (*mcp.CallToolResult, error) {
	manifest := mcp.ParseString(request, "manifest", "")
	if manifest == "" {
		return mcp.NewToolResultError("manifest is required"), nil
	}
	namespace := mcp.ParseString(request, "namespace", "")

	client, contextName, err := m.clientFor(mcp.ParseString(request, "context", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := op(ctx, client, manifest, namespace)
	if err != nil {
		return mcp.NewToolResultErrorFromErr(failureMsg, err), nil
	}
	result["context"] = contextName
	return jsonResult(result)
}

// NewPatchResourceTool creates the patch_resource tool
func NewPatchResourceTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Patch a resource with a strategic, merge or JSON patch"),
		withContextParam(),
	}
	opts = append(opts, withKindParams()...)
	opts = append(opts,
		mcp.WithString("namespace",
			mcp.Description("Namespace of the resource; empty for cluster-scoped kinds")),
		mcp.WithString("name",
			mcp.Description("Name of the resource"),
			mcp.Required()),
		mcp.WithString("patch",
			mcp.Description("Patch body as JSON"),
			mcp.Required()),
		mcp.WithString("patch_type",
			mcp.Description("Patch type: strategic (default), merge or json")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:        "Patch Kubernetes resource",
			ReadOnlyHint: BoolPtr(false),
		}),
	)
	return mcp.NewTool(types.PatchResourceToolName, opts...)
}

// HandlePatchResource handles the patch_resource tool
func (m *Implementation) HandlePatchResource(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind := mcp.ParseString(request, "kind", "")
	name := mcp.ParseString(request, "name", "")
	patch := mcp.ParseString(request, "patch", "")
	if kind == "" || name == "" {
		return mcp.NewToolResultError("kind and name are required"), nil
	}
	if patch == "" {
		return mcp.NewToolResultError("patch is required"), nil
	}
	namespace := mcp.ParseString(request, "namespace", "")
	patchType := mcp.ParseString(request, "patch_type", "strategic")

	client, contextName, err := m.clientFor(mcp.ParseString(request, "context", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	gvr := router.ResolveCoordinate(kind, mcp.ParseString(request, "group", ""), mcp.ParseString(request, "version", ""))
	result, err := client.Patch(ctx, gvr, namespace, name, patchType, []byte(patch))
	if err != nil {
		return mcp.NewToolResultErrorFromErr("Failed to patch resource", err), nil
	}
	result["context"] = contextName
	return jsonResult(result)
}

// NewLabelResourceTool creates the label_resource tool
func NewLabelResourceTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Add, update or remove labels on a resource. A null value removes the key"),
		withContextParam(),
	}
	opts = append(opts, withKindParams()...)
	opts = append(opts,
		mcp.WithString("namespace",
			mcp.Description("Namespace of the resource; empty for cluster-scoped kinds")),
		mcp.WithString("name",
			mcp.Description("Name of the resource"),
			mcp.Required()),
		mcp.WithObject("labels",
			mcp.Description("Labels to set; null values remove keys"),
			mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:        "Label Kubernetes resource",
			ReadOnlyHint: BoolPtr(false),
		}),
	)
	return mcp.NewTool(types.LabelResourceToolName, opts...)
}

// HandleLabelResource handles the label_resource tool
func (m *Implementation) HandleLabelResource(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return m.metadataOp(ctx, request, "labels", "Failed to label resource")
}

// NewAnnotateResourceTool creates the annotate_resource tool
func NewAnnotateResourceTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Add, update or remove annotations on a resource. A null value removes the key"),
		withContextParam(),
	}
	opts = append(opts, withKindParams()...)
	opts = append(opts,
		mcp.WithString("namespace",
			mcp.Description("Namespace of the resource; empty for cluster-scoped kinds")),
		mcp.WithString("name",
			mcp.Description("Name of the resource"),
			mcp.Required()),
		mcp.WithObject("annotations",
			mcp.Description("Annotations to set; null values remove keys"),
			mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:        "Annotate Kubernetes resource",
			ReadOnlyHint: BoolPtr(false),
		}),
	)
	return mcp.NewTool(types.AnnotateResourceToolName, opts...)
}

// HandleAnnotateResource handles the annotate_resource tool
func (m *Implementation) HandleAnnotateResource(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return m.metadataOp(ctx, request, "annotations", "Failed to annotate resource")
}

// metadataOp runs the shared label/annotate path; field selects which
// metadata map the values apply to.
func (m *Implementation) metadataOp(ctx context.Context, request mcp.CallToolRequest, field, failureMsg string) (*mcp.CallToolResult, error) {
	kind := mcp.ParseString(request, "kind", "")
	name := mcp.ParseString(request, "name", "")
	if kind == "" || name == "" {
		return mcp.NewToolResultError("kind and name are required"), nil
	}
	values := nullableStringMapArg(request, field)
	if len(values) == 0 {
		return mcp.NewToolResultError(field + " is required"), nil
	}
	namespace := mcp.ParseString(request, "namespace", "")

	client, contextName, err := m.clientFor(mcp.ParseString(request, "context", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	gvr := router.ResolveCoordinate(kind, mcp.ParseString(request, "group", ""), mcp.ParseString(request, "version", ""))
	var result map[string]interface{}
	if field == "labels" {
		result, err = client.Label(ctx, gvr, namespace, name, values)
	} else {
		result, err = client.Annotate(ctx, gvr, namespace, name, values)
	}
	if err != nil {
		return mcp.NewToolResultErrorFromErr(failureMsg, err), nil
	}
	result["context"] = contextName
	return jsonResult(result)
}

// NewExposeResourceTool creates the expose_resource tool
func NewExposeResourceTool() mcp.Tool {
	return mcp.NewTool(types.ExposeResourceToolName,
		mcp.WithDescription("Create a Service exposing a deployment, statefulset, daemonset or pod"),
		withContextParam(),
		mcp.WithString("resource_type",
			mcp.Description("Workload type: deployment, statefulset, daemonset or pod"),
			mcp.Required()),
		mcp.WithString("namespace",
			mcp.Description("Namespace of the workload"),
			mcp.Required()),
		mcp.WithString("name",
			mcp.Description("Name of the workload"),
			mcp.Required()),
		mcp.WithNumber("port",
			mcp.Description("Port the Service listens on"),
			mcp.Required()),
		mcp.WithNumber("target_port",
			mcp.Description("Port on the pods (defaults to port)")),
		mcp.WithString("service_name",
			mcp.Description("Name for the Service (defaults to the workload name)")),
		mcp.WithString("service_type",
			mcp.Description("Service type: ClusterIP (default), NodePort or LoadBalancer")),
		mcp.WithString("protocol",
			mcp.Description("Protocol: TCP (default), UDP or SCTP")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:        "Expose workload",
			ReadOnlyHint: BoolPtr(false),
		}),
	)
}

// HandleExposeResource handles the expose_resource tool
func (m *Implementation) HandleExposeResource(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resourceType := mcp.ParseString(request, "resource_type", "")
	namespace := mcp.ParseString(request, "namespace", "")
	name := mcp.ParseString(request, "name", "")
	if resourceType == "" || namespace == "" || name == "" {
		return mcp.NewToolResultError("resource_type, namespace and name are required"), nil
	}
	port := mcp.ParseInt64(request, "port", 0)
	if port <= 0 {
		return mcp.NewToolResultError("port is required and must be positive"), nil
	}

	client, contextName, err := m.clientFor(mcp.ParseString(request, "context", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := client.Expose(ctx, resourceType, namespace, name, k8s.ExposeOptions{
		Name:       mcp.ParseString(request, "service_name", ""),
		Port:       int32(port),
		TargetPort: int32(mcp.ParseInt64(request, "target_port", 0)),
		Type:       mcp.ParseString(request, "service_type", ""),
		Protocol:   mcp.ParseString(request, "protocol", ""),
	})
	if err != nil {
		return mcp.NewToolResultErrorFromErr("Failed to expose resource", err), nil
	}
	result["context"] = contextName
	return jsonResult(result)
}

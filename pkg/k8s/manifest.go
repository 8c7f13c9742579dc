package k8s

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/yaml"

	"github.com/multikube/multikube/pkg/router"
)

// applyFieldManager identifies this server in managedFields entries.
const applyFieldManager = "multikube"

// CreateFromManifest creates a resource from a YAML or JSON manifest. It
// fails if the resource already exists.
func (c *Client) CreateFromManifest(ctx context.Context, manifest, namespace string) (map[string]interface{}, error) {
	obj, gvr, ns, err := c.decodeManifest(manifest, namespace)
	if err != nil {
		return nil, err
	}

	var created *unstructured.Unstructured
	if ns != "" {
		created, err = c.dynamicClient.Resource(gvr).Namespace(ns).Create(ctx, obj, metav1.CreateOptions{})
	} else {
		created, err = c.dynamicClient.Resource(gvr).Create(ctx, obj, metav1.CreateOptions{})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s %q: %w", obj.GetKind(), obj.GetName(), err)
	}

	return map[string]interface{}{
		"success":   true,
		"message":   fmt.Sprintf("Created %s/%s", strings.ToLower(created.GetKind()), created.GetName()),
		"name":      created.GetName(),
		"namespace": created.GetNamespace(),
		"kind":      created.GetKind(),
	}, nil
}

// ApplyFromManifest creates or updates a resource from a manifest using
// server-side apply
func (c *Client) ApplyFromManifest(ctx context.Context, manifest, namespace string) (map[string]interface{}, error) {
	obj, gvr, ns, err := c.decodeManifest(manifest, namespace)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(obj.Object)
	if err != nil {
		return nil, fmt.Errorf("failed to encode manifest for apply: %w", err)
	}

	options := metav1.PatchOptions{FieldManager: applyFieldManager}
	var applied *unstructured.Unstructured
	if ns != "" {
		applied, err = c.dynamicClient.Resource(gvr).Namespace(ns).Patch(ctx, obj.GetName(), types.ApplyPatchType, data, options)
	} else {
		applied, err = c.dynamicClient.Resource(gvr).Patch(ctx, obj.GetName(), types.ApplyPatchType, data, options)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to apply %s %q: %w", obj.GetKind(), obj.GetName(), err)
	}

	return map[string]interface{}{
		"success":   true,
		"message":   fmt.Sprintf("Applied %s/%s", strings.ToLower(applied.GetKind()), applied.GetName()),
		"name":      applied.GetName(),
		"namespace": applied.GetNamespace(),
		"kind":      applied.GetKind(),
	}, nil
}

// decodeManifest parses a manifest and derives the resource coordinate from
// its apiVersion and kind, falling back to the caller's namespace for
// namespaced objects that do not carry one.
func (c *Client) decodeManifest(manifest, namespace string) (*unstructured.Unstructured, schema.GroupVersionResource, string, error) {
	var gvr schema.GroupVersionResource

	parsed := map[string]interface{}{}
	if err := yaml.Unmarshal([]byte(manifest), &parsed); err != nil {
		return nil, gvr, "", fmt.Errorf("failed to parse manifest: %w", err)
	}

	obj := &unstructured.Unstructured{Object: parsed}
	if obj.GetKind() == "" {
		return nil, gvr, "", fmt.Errorf("manifest is missing kind")
	}
	if obj.GetAPIVersion() == "" {
		return nil, gvr, "", fmt.Errorf("manifest is missing apiVersion")
	}
	if obj.GetName() == "" {
		return nil, gvr, "", fmt.Errorf("manifest is missing metadata.name")
	}

	gv, err := schema.ParseGroupVersion(obj.GetAPIVersion())
	if err != nil {
		return nil, gvr, "", fmt.Errorf("invalid apiVersion %q: %w", obj.GetAPIVersion(), err)
	}
	gvr = router.ResolveCoordinate(obj.GetKind(), gv.Group, gv.Version)

	ns := obj.GetNamespace()
	if ns == "" && namespace != "" && !clusterScopedKind(obj.GetKind()) {
		ns = namespace
		obj.SetNamespace(ns)
	}
	return obj, gvr, ns, nil
}

// clusterScopedKind covers the common built-in cluster-scoped kinds; CRDs
// with cluster scope must carry no namespace in their manifest.
func clusterScopedKind(kind string) bool {
	switch strings.ToLower(kind) {
	case "namespace", "node", "persistentvolume", "clusterrole", "clusterrolebinding", "storageclass", "customresourcedefinition", "priorityclass":
		return true
	}
	return false
}

package k8s

import (
	"context"
	"encoding/json"
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/types"
)

// Patch applies a patch to an arbitrary resource through the dynamic client.
// patchType accepts "strategic", "merge" or "json".
func (c *Client) Patch(ctx context.Context, gvr schema.GroupVersionResource, namespace, name, patchType string, patch []byte) (map[string]interface{}, error) {
	pt, err := parsePatchType(patchType)
	if err != nil {
		return nil, err
	}
	if !json.Valid(patch) {
		return nil, fmt.Errorf("patch body is not valid JSON")
	}

	resource := c.dynamicClient.Resource(gvr)
	var patchErr error
	if namespace != "" {
		_, patchErr = resource.Namespace(namespace).Patch(ctx, name, pt, patch, metav1.PatchOptions{})
	} else {
		_, patchErr = resource.Patch(ctx, name, pt, patch, metav1.PatchOptions{})
	}
	if patchErr != nil {
		if IsNotFound(patchErr) {
			return nil, fmt.Errorf("%s %q not found", gvr.Resource, name)
		}
		return nil, fmt.Errorf("failed to patch %s %q: %w", gvr.Resource, name, patchErr)
	}

	return map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Patched %s/%s", gvr.Resource, name),
	}, nil
}

func parsePatchType(patchType string) (types.PatchType, error) {
	switch patchType {
	case "", "strategic":
		return types.StrategicMergePatchType, nil
	case "merge":
		return types.MergePatchType, nil
	case "json":
		return types.JSONPatchType, nil
	}
	return "", fmt.Errorf("invalid patch type %q; must be strategic, merge or json", patchType)
}

// Label adds, updates or removes labels on a resource. A nil value in labels
// removes that key.
func (c *Client) Label(ctx context.Context, gvr schema.GroupVersionResource, namespace, name string, labels map[string]*string) (map[string]interface{}, error) {
	return c.patchMetadata(ctx, gvr, namespace, name, "labels", labels)
}

// Annotate adds, updates or removes annotations on a resource. A nil value
// removes that key.
func (c *Client) Annotate(ctx context.Context, gvr schema.GroupVersionResource, namespace, name string, annotations map[string]*string) (map[string]interface{}, error) {
	return c.patchMetadata(ctx, gvr, namespace, name, "annotations", annotations)
}

func (c *Client) patchMetadata(ctx context.Context, gvr schema.GroupVersionResource, namespace, name, field string, values map[string]*string) (map[string]interface{}, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("no %s provided", field)
	}

	patch, err := json.Marshal(map[string]interface{}{
		"metadata": map[string]interface{}{
			field: values,
		},
	})
	if err != nil {
		return nil, err
	}

	resource := c.dynamicClient.Resource(gvr)
	var patchErr error
	if namespace != "" {
		_, patchErr = resource.Namespace(namespace).Patch(ctx, name, types.MergePatchType, patch, metav1.PatchOptions{})
	} else {
		_, patchErr = resource.Patch(ctx, name, types.MergePatchType, patch, metav1.PatchOptions{})
	}
	if patchErr != nil {
		if IsNotFound(patchErr) {
			return nil, fmt.Errorf("%s %q not found", gvr.Resource, name)
		}
		return nil, fmt.Errorf("failed to update %s on %s %q: %w", field, gvr.Resource, name, patchErr)
	}

	return map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Updated %s on %s/%s", field, gvr.Resource, name),
	}, nil
}

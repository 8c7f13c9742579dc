package k8s

import (
	"context"
	"fmt"
	"sort"
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

var crdGVR = schema.GroupVersionResource{
	Group:    "apiextensions.k8s.io",
	Version:  "v1",
	Resource: "customresourcedefinitions",
}

// APIResource describes one resource type served by the cluster.
type APIResource struct {
	Name       string   `json:"name"`
	Kind       string   `json:"kind"`
	Group      string   `json:"group"`
	Version    string   `json:"version"`
	Namespaced bool     `json:"namespaced"`
	ShortNames []string `json:"short_names,omitempty"`
	Verbs      []string `json:"verbs,omitempty"`
}

// CRDInfo summarizes one CustomResourceDefinition.
type CRDInfo struct {
	Name     string   `json:"name"`
	Group    string   `json:"group"`
	Kind     string   `json:"kind"`
	Plural   string   `json:"plural"`
	Scope    string   `json:"scope"`
	Versions []string `json:"versions"`
}

// ListAPIResources enumerates every resource type the API server exposes,
// optionally filtered to one API group
func (c *Client) ListAPIResources(ctx context.Context, groupFilter string) ([]APIResource, error) {
	_, resourceLists, err := c.discoveryClient.ServerGroupsAndResources()
	if err != nil {
		// Partial discovery failures still return usable lists; a stale
		// aggregated API should not hide every other group.
		if resourceLists == nil {
			return nil, fmt.Errorf("failed to discover API resources: %w", err)
		}
	}

	var resources []APIResource
	for _, resourceList := range resourceLists {
		gv, err := schema.ParseGroupVersion(resourceList.GroupVersion)
		if err != nil {
			continue
		}
		if groupFilter != "" && gv.Group != groupFilter {
			continue
		}
		for i := range resourceList.APIResources {
			apiResource := &resourceList.APIResources[i]
			// Skip subresources like pods/log and deployments/scale.
			if strings.Contains(apiResource.Name, "/") {
				continue
			}
			resources = append(resources, APIResource{
				Name:       apiResource.Name,
				Kind:       apiResource.Kind,
				Group:      gv.Group,
				Version:    gv.Version,
				Namespaced: apiResource.Namespaced,
				ShortNames: apiResource.ShortNames,
				Verbs:      apiResource.Verbs,
			})
		}
	}

	sort.Slice(resources, func(i, j int) bool {
		if resources[i].Group != resources[j].Group {
			return resources[i].Group < resources[j].Group
		}
		return resources[i].Name < resources[j].Name
	})
	return resources, nil
}

// ListCRDs lists the CustomResourceDefinitions installed in the cluster
func (c *Client) ListCRDs(ctx context.Context) ([]CRDInfo, error) {
	list, err := c.dynamicClient.Resource(crdGVR).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list custom resource definitions: %w", err)
	}

	crds := make([]CRDInfo, 0, len(list.Items))
	for i := range list.Items {
		item := &list.Items[i]
		group, _, _ := unstructured.NestedString(item.Object, "spec", "group")
		kind, _, _ := unstructured.NestedString(item.Object, "spec", "names", "kind")
		plural, _, _ := unstructured.NestedString(item.Object, "spec", "names", "plural")
		scope, _, _ := unstructured.NestedString(item.Object, "spec", "scope")

		var versions []string
		rawVersions, _, _ := unstructured.NestedSlice(item.Object, "spec", "versions")
		for _, raw := range rawVersions {
			version, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}
			name, _, _ := unstructured.NestedString(version, "name")
			served, _, _ := unstructured.NestedBool(version, "served")
			if served {
				versions = append(versions, name)
			}
		}

		crds = append(crds, CRDInfo{
			Name:     item.GetName(),
			Group:    group,
			Kind:     kind,
			Plural:   plural,
			Scope:    scope,
			Versions: versions,
		})
	}

	sort.Slice(crds, func(i, j int) bool { return crds[i].Name < crds[j].Name })
	return crds, nil
}

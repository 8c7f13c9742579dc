package k8s

import (
	"context"
	"fmt"
	"sort"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

var (
	nodeMetricsGVR = schema.GroupVersionResource{Group: "metrics.k8s.io", Version: "v1beta1", Resource: "nodes"}
	podMetricsGVR  = schema.GroupVersionResource{Group: "metrics.k8s.io", Version: "v1beta1", Resource: "pods"}
)

// NodeMetrics is the usage snapshot for one node from the metrics API.
type NodeMetrics struct {
	Name   string `json:"name"`
	CPU    string `json:"cpu"`
	Memory string `json:"memory"`
	Window string `json:"window,omitempty"`
}

// PodMetrics aggregates per-container usage for one pod.
type PodMetrics struct {
	Name       string             `json:"name"`
	Namespace  string             `json:"namespace"`
	Containers []ContainerMetrics `json:"containers"`
}

// ContainerMetrics is the usage of a single container.
type ContainerMetrics struct {
	Name   string `json:"name"`
	CPU    string `json:"cpu"`
	Memory string `json:"memory"`
}

// TopNodes returns resource usage for all nodes, sorted by name. Requires
// metrics-server to be installed in the cluster.
func (c *Client) TopNodes(ctx context.Context) ([]NodeMetrics, error) {
	list, err := c.dynamicClient.Resource(nodeMetricsGVR).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch node metrics (is metrics-server installed?): %w", err)
	}

	metrics := make([]NodeMetrics, 0, len(list.Items))
	for i := range list.Items {
		item := &list.Items[i]
		cpu, memory := usageFrom(item.Object)
		window, _, _ := unstructured.NestedString(item.Object, "window")
		metrics = append(metrics, NodeMetrics{
			Name:   item.GetName(),
			CPU:    cpu,
			Memory: memory,
			Window: window,
		})
	}

	sort.Slice(metrics, func(i, j int) bool { return metrics[i].Name < metrics[j].Name })
	return metrics, nil
}

// TopPods returns per-container resource usage for pods in a namespace, or
// across all namespaces when namespace is empty
func (c *Client) TopPods(ctx context.Context, namespace string) ([]PodMetrics, error) {
	var list *unstructured.UnstructuredList
	var err error
	if namespace == "" {
		list, err = c.dynamicClient.Resource(podMetricsGVR).List(ctx, metav1.ListOptions{})
	} else {
		list, err = c.dynamicClient.Resource(podMetricsGVR).Namespace(namespace).List(ctx, metav1.ListOptions{})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pod metrics (is metrics-server installed?): %w", err)
	}

	metrics := make([]PodMetrics, 0, len(list.Items))
	for i := range list.Items {
		item := &list.Items[i]
		pod := PodMetrics{
			Name:      item.GetName(),
			Namespace: item.GetNamespace(),
		}

		containers, _, _ := unstructured.NestedSlice(item.Object, "containers")
		for _, raw := range containers {
			container, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}
			name, _, _ := unstructured.NestedString(container, "name")
			cpu, memory := usageFrom(container)
			pod.Containers = append(pod.Containers, ContainerMetrics{
				Name:   name,
				CPU:    cpu,
				Memory: memory,
			})
		}
		metrics = append(metrics, pod)
	}

	sort.Slice(metrics, func(i, j int) bool {
		if metrics[i].Namespace != metrics[j].Namespace {
			return metrics[i].Namespace < metrics[j].Namespace
		}
		return metrics[i].Name < metrics[j].Name
	})
	return metrics, nil
}

func usageFrom(obj map[string]interface{}) (cpu, memory string) {
	cpu, _, _ = unstructured.NestedString(obj, "usage", "cpu")
	memory, _, _ = unstructured.NestedString(obj, "usage", "memory")
	return cpu, memory
}

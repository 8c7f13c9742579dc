package k8s

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// NodeInfo summarizes a node the way kubectl get nodes does, plus capacity
type NodeInfo struct {
	Name           string            `json:"name"`
	Status         string            `json:"status"`
	Roles          []string          `json:"roles"`
	KubeletVersion string            `json:"kubelet_version"`
	InternalIP     string            `json:"internal_ip,omitempty"`
	ExternalIP     string            `json:"external_ip,omitempty"`
	OSImage        string            `json:"os_image,omitempty"`
	Architecture   string            `json:"architecture,omitempty"`
	Capacity       map[string]string `json:"capacity"`
	Allocatable    map[string]string `json:"allocatable"`
	Created        string            `json:"created,omitempty"`
}

// EventInfo is a flattened cluster event
type EventInfo struct {
	Timestamp  string `json:"timestamp,omitempty"`
	Type       string `json:"type"`
	Reason     string `json:"reason"`
	Message    string `json:"message"`
	Count      int32  `json:"count"`
	SourceComp string `json:"source_component,omitempty"`
	SourceHost string `json:"source_host,omitempty"`
	ObjectKind string `json:"involved_object_kind"`
	ObjectNS   string `json:"involved_object_namespace,omitempty"`
	ObjectName string `json:"involved_object_name"`
}

// ListNamespaces returns the names of all namespaces in the cluster
func (c *Client) ListNamespaces(ctx context.Context) ([]string, error) {
	namespaces, err := c.clientset.CoreV1().Namespaces().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list namespaces: %w", err)
	}

	names := make([]string, 0, len(namespaces.Items))
	for _, ns := range namespaces.Items {
		names = append(names, ns.Name)
	}
	return names, nil
}

// ListNodes returns a summary of every node in the cluster
func (c *Client) ListNodes(ctx context.Context) ([]NodeInfo, error) {
	nodes, err := c.clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}

	result := make([]NodeInfo, 0, len(nodes.Items))
	for i := range nodes.Items {
		result = append(result, summarizeNode(&nodes.Items[i]))
	}
	return result, nil
}

func summarizeNode(node *corev1.Node) NodeInfo {
	info := NodeInfo{
		Name:   node.Name,
		Status: "Unknown",
	}

	// Role labels carry an empty value; presence is what counts.
	for key := range node.Labels {
		if strings.HasPrefix(key, "node-role.kubernetes.io/") {
			info.Roles = append(info.Roles, strings.TrimPrefix(key, "node-role.kubernetes.io/"))
		}
	}
	sort.Strings(info.Roles)
	if len(info.Roles) == 0 {
		info.Roles = []string{"<none>"}
	}

	for _, condition := range node.Status.Conditions {
		if condition.Type == corev1.NodeReady {
			if condition.Status == corev1.ConditionTrue {
				info.Status = "Ready"
			} else {
				info.Status = "NotReady"
			}
			break
		}
	}

	for _, addr := range node.Status.Addresses {
		switch addr.Type {
		case corev1.NodeInternalIP:
			info.InternalIP = addr.Address
		case corev1.NodeExternalIP:
			info.ExternalIP = addr.Address
		}
	}

	info.KubeletVersion = node.Status.NodeInfo.KubeletVersion
	info.OSImage = node.Status.NodeInfo.OSImage
	info.Architecture = node.Status.NodeInfo.Architecture
	info.Capacity = resourceListToMap(node.Status.Capacity)
	info.Allocatable = resourceListToMap(node.Status.Allocatable)
	if !node.CreationTimestamp.IsZero() {
		info.Created = node.CreationTimestamp.Format("2006-01-02T15:04:05Z07:00")
	}
	return info
}

func resourceListToMap(list corev1.ResourceList) map[string]string {
	result := make(map[string]string, 3)
	for _, key := range []corev1.ResourceName{corev1.ResourceCPU, corev1.ResourceMemory, corev1.ResourcePods} {
		if quantity, ok := list[key]; ok {
			result[string(key)] = quantity.String()
		}
	}
	return result
}

// ListEvents returns events in the namespace, most recent first, capped at
// limit when limit is positive
func (c *Client) ListEvents(ctx context.Context, namespace string, limit int) ([]EventInfo, error) {
	events, err := c.clientset.CoreV1().Events(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list events in namespace %s: %w", namespace, err)
	}

	items := events.Items
	sort.SliceStable(items, func(i, j int) bool {
		return eventTime(&items[i]).After(eventTime(&items[j]))
	})

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	result := make([]EventInfo, 0, len(items))
	for i := range items {
		event := &items[i]
		info := EventInfo{
			Type:       event.Type,
			Reason:     event.Reason,
			Message:    event.Message,
			Count:      event.Count,
			SourceComp: event.Source.Component,
			SourceHost: event.Source.Host,
			ObjectKind: event.InvolvedObject.Kind,
			ObjectNS:   event.InvolvedObject.Namespace,
			ObjectName: event.InvolvedObject.Name,
		}
		if ts := eventTime(event); !ts.IsZero() {
			info.Timestamp = ts.Format("2006-01-02T15:04:05Z07:00")
		}
		result = append(result, info)
	}
	return result, nil
}

// eventTime picks the best available timestamp; the populated field varies
// with the API version that recorded the event.
func eventTime(event *corev1.Event) time.Time {
	if !event.LastTimestamp.IsZero() {
		return event.LastTimestamp.Time
	}
	if !event.EventTime.IsZero() {
		return event.EventTime.Time
	}
	return event.CreationTimestamp.Time
}

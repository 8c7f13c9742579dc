package k8s

import (
	"context"
	"fmt"

	autoscalingv1 "k8s.io/api/autoscaling/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// Scale changes the replica count of a scalable workload through the scale
// subresource
func (c *Client) Scale(ctx context.Context, resourceType, namespace, name string, replicas int32) (map[string]interface{}, error) {
	if replicas < 0 {
		return nil, fmt.Errorf("replicas must be non-negative, got %d", replicas)
	}

	var previous int32
	var err error
	switch resourceType {
	case "deployment":
		previous, err = c.scaleDeployment(ctx, namespace, name, replicas)
	case "statefulset":
		previous, err = c.scaleStatefulSet(ctx, namespace, name, replicas)
	case "replicaset":
		previous, err = c.scaleReplicaSet(ctx, namespace, name, replicas)
	default:
		return nil, fmt.Errorf("unsupported resource type: %s; supported types: deployment, statefulset, replicaset", resourceType)
	}
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"success":           true,
		"message":           fmt.Sprintf("Scaled %s/%s from %d to %d replicas", resourceType, name, previous, replicas),
		"previous_replicas": previous,
		"replicas":          replicas,
	}, nil
}

func (c *Client) scaleDeployment(ctx context.Context, namespace, name string, replicas int32) (int32, error) {
	scale, err := c.clientset.AppsV1().Deployments(namespace).GetScale(ctx, name, metav1.GetOptions{})
	if err != nil {
		return 0, wrapWorkloadErr(err, "deployment", namespace, name)
	}
	previous := scale.Spec.Replicas
	scale.Spec.Replicas = replicas
	if _, err := c.clientset.AppsV1().Deployments(namespace).UpdateScale(ctx, name, scale, metav1.UpdateOptions{}); err != nil {
		return 0, fmt.Errorf("failed to scale deployment %s/%s: %w", namespace, name, err)
	}
	return previous, nil
}

func (c *Client) scaleStatefulSet(ctx context.Context, namespace, name string, replicas int32) (int32, error) {
	scale, err := c.clientset.AppsV1().StatefulSets(namespace).GetScale(ctx, name, metav1.GetOptions{})
	if err != nil {
		return 0, wrapWorkloadErr(err, "statefulset", namespace, name)
	}
	previous := scale.Spec.Replicas
	scale.Spec.Replicas = replicas
	if _, err := c.clientset.AppsV1().StatefulSets(namespace).UpdateScale(ctx, name, scale, metav1.UpdateOptions{}); err != nil {
		return 0, fmt.Errorf("failed to scale statefulset %s/%s: %w", namespace, name, err)
	}
	return previous, nil
}

func (c *Client) scaleReplicaSet(ctx context.Context, namespace, name string, replicas int32) (int32, error) {
	scale, err := c.clientset.AppsV1().ReplicaSets(namespace).GetScale(ctx, name, metav1.GetOptions{})
	if err != nil {
		return 0, wrapWorkloadErr(err, "replicaset", namespace, name)
	}
	previous := scale.Spec.Replicas
	scale.Spec.Replicas = replicas
	if _, err := c.clientset.AppsV1().ReplicaSets(namespace).UpdateScale(ctx, name, scale, metav1.UpdateOptions{}); err != nil {
		return 0, fmt.Errorf("failed to scale replicaset %s/%s: %w", namespace, name, err)
	}
	return previous, nil
}

// Autoscale creates or updates a HorizontalPodAutoscaler targeting a workload
func (c *Client) Autoscale(ctx context.Context, resourceType, namespace, name string, minReplicas, maxReplicas, cpuPercent int32) (map[string]interface{}, error) {
	switch resourceType {
	case "deployment", "statefulset", "replicaset":
	default:
		return nil, fmt.Errorf("unsupported resource type: %s; supported types: deployment, statefulset, replicaset", resourceType)
	}
	if minReplicas < 1 {
		minReplicas = 1
	}
	if maxReplicas < minReplicas {
		return nil, fmt.Errorf("max replicas (%d) must be >= min replicas (%d)", maxReplicas, minReplicas)
	}

	targetKind := map[string]string{
		"deployment":  "Deployment",
		"statefulset": "StatefulSet",
		"replicaset":  "ReplicaSet",
	}[resourceType]

	hpas := c.clientset.AutoscalingV1().HorizontalPodAutoscalers(namespace)
	existing, err := hpas.Get(ctx, name, metav1.GetOptions{})
	if err == nil {
		existing.Spec.MinReplicas = &minReplicas
		existing.Spec.MaxReplicas = maxReplicas
		existing.Spec.TargetCPUUtilizationPercentage = &cpuPercent
		existing.Spec.ScaleTargetRef = autoscalingv1.CrossVersionObjectReference{
			APIVersion: "apps/v1",
			Kind:       targetKind,
			Name:       name,
		}
		if _, err := hpas.Update(ctx, existing, metav1.UpdateOptions{}); err != nil {
			return nil, fmt.Errorf("failed to update autoscaler for %s/%s: %w", resourceType, name, err)
		}
		return map[string]interface{}{
			"success": true,
			"message": fmt.Sprintf("Updated autoscaler for %s/%s (min=%d max=%d cpu=%d%%)", resourceType, name, minReplicas, maxReplicas, cpuPercent),
			"created": false,
		}, nil
	}
	if !apierrors.IsNotFound(err) {
		return nil, fmt.Errorf("failed to check for existing autoscaler %s/%s: %w", namespace, name, err)
	}

	hpa := &autoscalingv1.HorizontalPodAutoscaler{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
		},
		Spec: autoscalingv1.HorizontalPodAutoscalerSpec{
			ScaleTargetRef: autoscalingv1.CrossVersionObjectReference{
				APIVersion: "apps/v1",
				Kind:       targetKind,
				Name:       name,
			},
			MinReplicas:                    &minReplicas,
			MaxReplicas:                    maxReplicas,
			TargetCPUUtilizationPercentage: &cpuPercent,
		},
	}
	if _, err := hpas.Create(ctx, hpa, metav1.CreateOptions{}); err != nil {
		return nil, fmt.Errorf("failed to create autoscaler for %s/%s: %w", resourceType, name, err)
	}

	return map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Created autoscaler for %s/%s (min=%d max=%d cpu=%d%%)", resourceType, name, minReplicas, maxReplicas, cpuPercent),
		"created": true,
	}, nil
}

// ContainerResources holds the requested limits and requests for one
// container of a workload.
type ContainerResources struct {
	Container     string `json:"container"`
	CPURequest    string `json:"cpu_request,omitempty"`
	CPULimit      string `json:"cpu_limit,omitempty"`
	MemoryRequest string `json:"memory_request,omitempty"`
	MemoryLimit   string `json:"memory_limit,omitempty"`
}

// UpdateContainerResources patches container resource requests and limits on
// a workload's pod template
func (c *Client) UpdateContainerResources(ctx context.Context, resourceType, namespace, name string, updates []ContainerResources) (map[string]interface{}, error) {
	if err := validRolloutKind(resourceType); err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("no container resource updates provided")
	}

	containers := make([]map[string]interface{}, 0, len(updates))
	for _, update := range updates {
		if update.Container == "" {
			return nil, fmt.Errorf("container name is required for resource updates")
		}
		requests := map[string]string{}
		limits := map[string]string{}
		for _, quantity := range []struct {
			value string
			dest  map[string]string
			key   string
		}{
			{update.CPURequest, requests, "cpu"},
			{update.MemoryRequest, requests, "memory"},
			{update.CPULimit, limits, "cpu"},
			{update.MemoryLimit, limits, "memory"},
		} {
			if quantity.value == "" {
				continue
			}
			if _, err := resource.ParseQuantity(quantity.value); err != nil {
				return nil, fmt.Errorf("invalid quantity %q for container %s: %w", quantity.value, update.Container, err)
			}
			quantity.dest[quantity.key] = quantity.value
		}

		resources := map[string]interface{}{}
		if len(requests) > 0 {
			resources["requests"] = requests
		}
		if len(limits) > 0 {
			resources["limits"] = limits
		}
		containers = append(containers, map[string]interface{}{
			"name":      update.Container,
			"resources": resources,
		})
	}

	patch := map[string]interface{}{
		"spec": map[string]interface{}{
			"template": map[string]interface{}{
				"spec": map[string]interface{}{
					"containers": containers,
				},
			},
		},
	}

	if err := c.patchWorkload(ctx, resourceType, namespace, name, patch); err != nil {
		return nil, fmt.Errorf("failed to update container resources: %w", err)
	}

	return map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Updated resources for %d container(s) in %s/%s", len(containers), resourceType, name),
	}, nil
}
